package models

import (
	"time"
)

// Действия, которые попадают в журнал модерации.
const (
	AdminActionDeletePost     = "delete_post"
	AdminActionResolveReport  = "resolve_report"
	AdminActionDismissReport  = "dismiss_report"
	AdminActionBanUser        = "ban_user"
	AdminActionUnbanUser      = "unban_user"
	AdminActionUpdateSettings = "update_settings"
	AdminActionMintNFT        = "mint_nft"
)

const (
	ModerationLow    = "low"
	ModerationMedium = "medium"
	ModerationHigh   = "high"
)

// ValidModerationLevels список уровней автомодерации
var ValidModerationLevels = map[string]struct{}{
	ModerationLow:    {},
	ModerationMedium: {},
	ModerationHigh:   {},
}

type AdminLog struct {
	ID        string    `db:"id" json:"id"`
	AdminID   string    `db:"admin_id" json:"admin_id"`
	Action    string    `db:"action" json:"action"`
	TargetID  string    `db:"target_id" json:"target_id"`
	Reason    *string   `db:"reason" json:"reason,omitempty"`
	CreatedAt time.Time `db:"created_at" json:"created_at"`
}

// Settings - настройки сайта, которые редактирует администратор.
type Settings struct {
	SiteName            string `db:"site_name" json:"site_name"`
	SiteDescription     string `db:"site_description" json:"site_description"`
	LogoURL             string `db:"logo_url" json:"logo_url"`
	PrimaryColor        string `db:"primary_color" json:"primary_color"`
	SecondaryColor      string `db:"secondary_color" json:"secondary_color"`
	AllowAnonymous      bool   `db:"allow_anonymous" json:"allow_anonymous"`
	ModerationEnabled   bool   `db:"moderation_enabled" json:"moderation_enabled"`
	AutoModerationLevel string `db:"auto_moderation_level" json:"auto_moderation_level"`
	GuidelinesText      string `db:"guidelines_text" json:"guidelines_text"`
}

const defaultGuidelines = `Welcome to RoastBlame! Please follow these community guidelines:

1. Keep it humorous and light-hearted
2. Target public figures and celebrities only
3. No personal attacks or harassment
4. Respect intellectual property
5. No spam or promotional content
6. Report inappropriate content

Remember: The goal is entertainment, not harm!`

// DefaultSettings возвращает настройки по умолчанию.
func DefaultSettings() Settings {
	return Settings{
		SiteName:            "RoastBlame",
		SiteDescription:     "The ultimate platform for celebrity roasts and humorous takes. Share, react, and have fun responsibly!",
		LogoURL:             "",
		PrimaryColor:        "#ec4899",
		SecondaryColor:      "#8b5cf6",
		AllowAnonymous:      true,
		ModerationEnabled:   true,
		AutoModerationLevel: ModerationMedium,
		GuidelinesText:      defaultGuidelines,
	}
}

// Overview - сводка для панели администратора.
type Overview struct {
	TotalPosts     int `json:"total_posts"`
	TotalUsers     int `json:"total_users"`
	PendingReports int `json:"pending_reports"`
	TotalReactions int `json:"total_reactions"`
	PostsLast24h   int `json:"posts_last_24h"`
	BannedUsers    int `json:"banned_users"`
}
