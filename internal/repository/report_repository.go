package repository

import (
	"context"
	"fmt"
	"time"

	"github.com/jmoiron/sqlx"

	"github.com/ignatzorin/roastblame-backend/internal/models"
	"github.com/ignatzorin/roastblame-backend/internal/repository/common"
)

type ReportRepository struct {
	db *sqlx.DB
}

func NewReportRepository(db *sqlx.DB) *ReportRepository {
	return &ReportRepository{db: db}
}

func (r *ReportRepository) Create(ctx context.Context, report *models.Report) error {
	_, err := r.db.ExecContext(ctx, `
		INSERT INTO reports (id, post_id, reason, details, reporter_id, status, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
	`, report.ID, report.PostID, report.Reason, report.Details, report.ReporterID, report.Status, report.CreatedAt)
	if err != nil {
		return fmt.Errorf("report repository: create %w", err)
	}
	return nil
}

func (r *ReportRepository) GetByID(ctx context.Context, id string) (*models.Report, error) {
	report, err := common.GetByID[models.Report](ctx, r.db, "reports", id)
	if err != nil {
		return nil, fmt.Errorf("report repository: get by id %w", err)
	}
	return report, nil
}

func (r *ReportRepository) List(ctx context.Context, status string) ([]models.Report, error) {
	reports := []models.Report{}
	err := r.db.SelectContext(ctx, &reports, `
		SELECT * FROM reports WHERE ($1 = '' OR status = $1) ORDER BY created_at DESC
	`, status)
	if err != nil {
		return nil, fmt.Errorf("report repository: list %w", err)
	}
	return reports, nil
}

// Review фиксирует решение модератора. Рассмотреть можно только жалобу в статусе pending.
func (r *ReportRepository) Review(ctx context.Context, id, status, notes, reviewerID string, at time.Time) error {
	res, err := r.db.ExecContext(ctx, `
		UPDATE reports SET status = $2, admin_notes = $3, reviewed_by = $4, reviewed_at = $5
		WHERE id = $1 AND status = 'pending'
	`, id, status, notes, reviewerID, at)
	if err != nil {
		return fmt.Errorf("report repository: review %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("report repository: review %w", err)
	}
	if n > 0 {
		return nil
	}

	// Ни одной строки: либо жалобы нет, либо она уже рассмотрена
	if _, err := r.GetByID(ctx, id); err != nil {
		return err
	}
	return fmt.Errorf("report repository: review %s: %w", id, common.ErrConflict)
}

func (r *ReportRepository) Stats(ctx context.Context) (*models.ReportStats, error) {
	var stats models.ReportStats
	err := r.db.GetContext(ctx, &stats, `
		SELECT
			COUNT(*) FILTER (WHERE status = 'pending') AS pending,
			COUNT(*) FILTER (WHERE status = 'resolved') AS resolved,
			COUNT(*) FILTER (WHERE status = 'dismissed') AS dismissed,
			COUNT(*) AS total
		FROM reports
	`)
	if err != nil {
		return nil, fmt.Errorf("report repository: stats %w", err)
	}
	return &stats, nil
}
