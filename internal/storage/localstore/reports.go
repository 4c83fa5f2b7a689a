package localstore

import (
	"context"
	"fmt"
	"time"

	"github.com/ignatzorin/roastblame-backend/internal/models"
	"github.com/ignatzorin/roastblame-backend/internal/repository/common"
)

type ReportRepository struct {
	store *Store
}

func NewReportRepository(store *Store) *ReportRepository {
	return &ReportRepository{store: store}
}

func (r *ReportRepository) Create(_ context.Context, report *models.Report) error {
	return mutate(r.store, KeyReports, func(reports *[]models.Report) error {
		*reports = append(*reports, *report)
		return nil
	})
}

func (r *ReportRepository) GetByID(_ context.Context, id string) (*models.Report, error) {
	reports, err := read[[]models.Report](r.store, KeyReports)
	if err != nil {
		return nil, err
	}
	for i := range reports {
		if reports[i].ID == id {
			return &reports[i], nil
		}
	}
	return nil, fmt.Errorf("report %s: %w", id, common.ErrNotFound)
}

// List возвращает жалобы, новые первыми. Пустой status - все.
func (r *ReportRepository) List(_ context.Context, status string) ([]models.Report, error) {
	reports, err := read[[]models.Report](r.store, KeyReports)
	if err != nil {
		return nil, err
	}
	result := make([]models.Report, 0, len(reports))
	for i := len(reports) - 1; i >= 0; i-- {
		if status == "" || reports[i].Status == status {
			result = append(result, reports[i])
		}
	}
	return result, nil
}

// Review фиксирует решение модератора. Рассмотреть можно только жалобу в статусе pending.
func (r *ReportRepository) Review(_ context.Context, id, status, notes, reviewerID string, at time.Time) error {
	return mutate(r.store, KeyReports, func(reports *[]models.Report) error {
		for i := range *reports {
			rep := &(*reports)[i]
			if rep.ID != id {
				continue
			}
			if rep.Status != models.ReportStatusPending {
				return fmt.Errorf("report %s: %w", id, common.ErrConflict)
			}
			rep.Status = status
			rep.AdminNotes = &notes
			rep.ReviewedBy = &reviewerID
			rep.ReviewedAt = &at
			return nil
		}
		return fmt.Errorf("report %s: %w", id, common.ErrNotFound)
	})
}

func (r *ReportRepository) Stats(_ context.Context) (*models.ReportStats, error) {
	reports, err := read[[]models.Report](r.store, KeyReports)
	if err != nil {
		return nil, err
	}
	stats := &models.ReportStats{Total: len(reports)}
	for _, rep := range reports {
		switch rep.Status {
		case models.ReportStatusPending:
			stats.Pending++
		case models.ReportStatusResolved:
			stats.Resolved++
		case models.ReportStatusDismissed:
			stats.Dismissed++
		}
	}
	return stats, nil
}
