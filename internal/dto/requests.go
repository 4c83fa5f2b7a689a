package dto

// Запросы аутентификации.

type RegisterRequest struct {
	Email    string `json:"email" binding:"required"`
	Password string `json:"password" binding:"required"`
}

type LoginRequest struct {
	Email    string `json:"email" binding:"required"`
	Password string `json:"password" binding:"required"`
}

type RefreshRequest struct {
	RefreshToken string `json:"refresh_token" binding:"required"`
}

type LogoutRequest struct {
	RefreshToken string `json:"refresh_token"`
}

type ResetPasswordRequest struct {
	Email string `json:"email" binding:"required"`
}

// CreatePostRequest - JSON вариант создания поста, без медиафайлов.
type CreatePostRequest struct {
	Content       string `json:"content" form:"content"`
	CelebrityName string `json:"celebrity_name" form:"celebrity_name"`
}

type ReactionRequest struct {
	Reaction string `json:"reaction" binding:"required"`
}

type CreateReportRequest struct {
	Reason  string  `json:"reason" binding:"required"`
	Details *string `json:"details"`
}

type ReviewReportRequest struct {
	Status string `json:"status" binding:"required"`
	Notes  string `json:"notes"`
}

type DeletePostRequest struct {
	Reason string `json:"reason"`
}

type BanUserRequest struct {
	Reason string `json:"reason"`
}

// UpdateSettingsRequest содержит настройки целиком: частичное обновление не поддерживается.
type UpdateSettingsRequest struct {
	SiteName            string `json:"site_name"`
	SiteDescription     string `json:"site_description"`
	LogoURL             string `json:"logo_url"`
	PrimaryColor        string `json:"primary_color"`
	SecondaryColor      string `json:"secondary_color"`
	AllowAnonymous      bool   `json:"allow_anonymous"`
	ModerationEnabled   bool   `json:"moderation_enabled"`
	AutoModerationLevel string `json:"auto_moderation_level"`
	GuidelinesText      string `json:"guidelines_text"`
}

// ConnectWalletRequest: без адреса аккаунт запрашивается у провайдера.
type ConnectWalletRequest struct {
	Address string `json:"address"`
}

type RecordTransactionRequest struct {
	Type        string  `json:"type" binding:"required"`
	Amount      string  `json:"amount" binding:"required"`
	Currency    string  `json:"currency"`
	FromAddress *string `json:"from_address"`
	ToAddress   string  `json:"to_address" binding:"required"`
	TxHash      *string `json:"tx_hash"`
	PostID      *string `json:"post_id"`
	Status      string  `json:"status"`
}

type TipRequest struct {
	PostID    string `json:"post_id"`
	ToAddress string `json:"to_address"`
	Amount    string `json:"amount" binding:"required"`
}

type MintNFTRequest struct {
	PostID      string `json:"post_id" binding:"required"`
	Name        string `json:"name"`
	Description string `json:"description"`
	Price       string `json:"price"`
	Royalty     int    `json:"royalty"`
	Collection  string `json:"collection"`
}
