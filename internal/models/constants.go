package models

// Роли сессии. Признак администратора хранится только в токене.
const (
	RoleAnonymous = "anonymous"
	RoleUser      = "user"
	RoleAdmin     = "admin"
)

// Статусы пользователя.
const (
	UserStatusActive = "active"
	UserStatusBanned = "banned"
)

// Префиксы идентификаторов.
const (
	PrefixPost        = "post"
	PrefixUser        = "user"
	PrefixAnonymous   = "anon"
	PrefixAdmin       = "admin"
	PrefixReport      = "report"
	PrefixTransaction = "tx"
	PrefixNFT         = "nft"
	PrefixAdminLog    = "log"
	PrefixSession     = "sess"
)

// ValidUserStatuses список валидных статусов пользователей
var ValidUserStatuses = map[string]struct{}{
	UserStatusActive: {},
	UserStatusBanned: {},
}

// ValidRoles список валидных ролей
var ValidRoles = map[string]struct{}{
	RoleAnonymous: {},
	RoleUser:      {},
	RoleAdmin:     {},
}
