package models

import (
	"time"
)

// User описывает пользователя сайта.
// Признак администратора не хранится: он есть только у сессии.
type User struct {
	ID           string     `db:"id" json:"uid"`
	Email        *string    `db:"email" json:"email,omitempty"`
	PasswordHash *string    `db:"password_hash" json:"-"`
	IsAnonymous  bool       `db:"is_anonymous" json:"is_anonymous"`
	Status       string     `db:"status" json:"status"`
	BanReason    *string    `db:"ban_reason" json:"ban_reason,omitempty"`
	LastLoginAt  *time.Time `db:"last_login_at" json:"last_login_at,omitempty"`
	CreatedAt    time.Time  `db:"created_at" json:"created_at"`
}

// IsBanned сообщает, заблокирован ли пользователь.
func (u *User) IsBanned() bool {
	return u.Status == UserStatusBanned
}

// EmailValue возвращает email или пустую строку.
func (u *User) EmailValue() string {
	if u.Email == nil {
		return ""
	}
	return *u.Email
}

// Session представляет сохранённую сессию пользователя.
type Session struct {
	ID           string    `db:"id" json:"id"`
	UserID       string    `db:"user_id" json:"user_id"`
	Role         string    `db:"role" json:"role"`
	RefreshToken string    `db:"refresh_token" json:"refresh_token"`
	ExpiresAt    time.Time `db:"expires_at" json:"expires_at"`
	CreatedAt    time.Time `db:"created_at" json:"created_at"`
}

// Expired сообщает, истекла ли сессия на момент now.
func (s *Session) Expired(now time.Time) bool {
	return !now.Before(s.ExpiresAt)
}

// Actor - владелец текущей сессии, восстановленный из access токена.
type Actor struct {
	UserID      string
	Role        string
	Email       string
	IsAnonymous bool
}

// IsAdmin сообщает, выдана ли сессия администратору.
func (a Actor) IsAdmin() bool {
	return a.Role == RoleAdmin
}
