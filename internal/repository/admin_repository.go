package repository

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/jmoiron/sqlx"

	"github.com/ignatzorin/roastblame-backend/internal/models"
)

// AdminRepository хранит журнал модерации и настройки сайта.
type AdminRepository struct {
	db *sqlx.DB
}

func NewAdminRepository(db *sqlx.DB) *AdminRepository {
	return &AdminRepository{db: db}
}

func (r *AdminRepository) AppendLog(ctx context.Context, entry *models.AdminLog) error {
	_, err := r.db.NamedExecContext(ctx, `
		INSERT INTO admin_logs (id, admin_id, action, target_id, reason, created_at)
		VALUES (:id, :admin_id, :action, :target_id, :reason, :created_at)
	`, entry)
	if err != nil {
		return fmt.Errorf("admin repository: append log %w", err)
	}
	return nil
}

func (r *AdminRepository) ListLogs(ctx context.Context, limit int) ([]models.AdminLog, error) {
	if limit <= 0 {
		limit = 100
	}
	logs := []models.AdminLog{}
	if err := r.db.SelectContext(ctx, &logs, `
		SELECT * FROM admin_logs ORDER BY created_at DESC LIMIT $1
	`, limit); err != nil {
		return nil, fmt.Errorf("admin repository: list logs %w", err)
	}
	return logs, nil
}

// GetSettings возвращает настройки, недостающие поля берутся по умолчанию.
func (r *AdminRepository) GetSettings(ctx context.Context) (*models.Settings, error) {
	settings := models.DefaultSettings()

	var raw []byte
	if err := r.db.GetContext(ctx, &raw, `SELECT data FROM site_settings WHERE id = 1`); err != nil {
		if isNoRows(err) {
			return &settings, nil
		}
		return nil, fmt.Errorf("admin repository: get settings %w", err)
	}
	if err := json.Unmarshal(raw, &settings); err != nil {
		return nil, fmt.Errorf("admin repository: decode settings %w", err)
	}
	return &settings, nil
}

func (r *AdminRepository) SaveSettings(ctx context.Context, settings *models.Settings) error {
	raw, err := json.Marshal(settings)
	if err != nil {
		return fmt.Errorf("admin repository: encode settings %w", err)
	}
	if _, err := r.db.ExecContext(ctx, `
		INSERT INTO site_settings (id, data, updated_at) VALUES (1, $1, NOW())
		ON CONFLICT (id) DO UPDATE SET data = EXCLUDED.data, updated_at = NOW()
	`, raw); err != nil {
		return fmt.Errorf("admin repository: save settings %w", err)
	}
	return nil
}

// Overview собирает сводку одним запросом.
func (r *AdminRepository) Overview(ctx context.Context, since time.Time) (*models.Overview, error) {
	var row struct {
		TotalPosts     int `db:"total_posts"`
		TotalUsers     int `db:"total_users"`
		PendingReports int `db:"pending_reports"`
		TotalReactions int `db:"total_reactions"`
		PostsLast24h   int `db:"posts_last_24h"`
		BannedUsers    int `db:"banned_users"`
	}
	err := r.db.GetContext(ctx, &row, `
		SELECT
			(SELECT COUNT(*) FROM posts WHERE deleted_at IS NULL) AS total_posts,
			(SELECT COUNT(*) FROM users) AS total_users,
			(SELECT COUNT(*) FROM reports WHERE status = 'pending') AS pending_reports,
			(SELECT COALESCE(SUM(likes + dislikes + funny), 0) FROM posts WHERE deleted_at IS NULL) AS total_reactions,
			(SELECT COUNT(*) FROM posts WHERE deleted_at IS NULL AND created_at >= $1) AS posts_last_24h,
			(SELECT COUNT(*) FROM users WHERE status = 'banned') AS banned_users
	`, since)
	if err != nil {
		return nil, fmt.Errorf("admin repository: overview %w", err)
	}
	return &models.Overview{
		TotalPosts:     row.TotalPosts,
		TotalUsers:     row.TotalUsers,
		PendingReports: row.PendingReports,
		TotalReactions: row.TotalReactions,
		PostsLast24h:   row.PostsLast24h,
		BannedUsers:    row.BannedUsers,
	}, nil
}
