package service

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/ignatzorin/roastblame-backend/internal/events"
	"github.com/ignatzorin/roastblame-backend/internal/ids"
	"github.com/ignatzorin/roastblame-backend/internal/metrics"
	"github.com/ignatzorin/roastblame-backend/internal/models"
	"github.com/ignatzorin/roastblame-backend/internal/pkg/apperror"
	"github.com/ignatzorin/roastblame-backend/internal/repository/common"
	"github.com/ignatzorin/roastblame-backend/internal/validation"
)

// ReportRepository - хранилище жалоб.
type ReportRepository interface {
	Create(ctx context.Context, report *models.Report) error
	GetByID(ctx context.Context, id string) (*models.Report, error)
	List(ctx context.Context, status string) ([]models.Report, error)
	Review(ctx context.Context, id, status, notes, reviewerID string, at time.Time) error
	Stats(ctx context.Context) (*models.ReportStats, error)
}

// PostReader отдаёт пост по id, включая скрытые.
type PostReader interface {
	GetByID(ctx context.Context, id string) (*models.Post, error)
}

type ReportService struct {
	repo   ReportRepository
	posts  PostReader
	logs   AdminLogWriter
	events EventPublisher
	now    func() time.Time
}

func NewReportService(repo ReportRepository, posts PostReader, logs AdminLogWriter, events EventPublisher) *ReportService {
	return &ReportService{
		repo:   repo,
		posts:  posts,
		logs:   logs,
		events: events,
		now:    time.Now,
	}
}

// CreateReport создаёт жалобу на пост в статусе pending.
func (s *ReportService) CreateReport(ctx context.Context, actor models.Actor, postID, reason string, details *string) (*models.Report, error) {
	if actor.UserID == "" {
		return nil, apperror.ErrUnauthorized
	}
	if err := validation.ValidateReport(reason, details); err != nil {
		return nil, apperror.Validation(err)
	}

	post, err := s.posts.GetByID(ctx, postID)
	if err != nil {
		return nil, storageError(err, apperror.ErrPostNotFound)
	}
	if post.IsDeleted() {
		return nil, apperror.ErrPostNotFound
	}

	report := &models.Report{
		ID:         ids.New(models.PrefixReport),
		PostID:     post.ID,
		Reason:     reason,
		ReporterID: actor.UserID,
		Status:     models.ReportStatusPending,
		CreatedAt:  s.now(),
	}
	if details != nil {
		if text := strings.TrimSpace(*details); text != "" {
			report.Details = &text
		}
	}

	if err := s.repo.Create(ctx, report); err != nil {
		return nil, storageError(err, nil)
	}

	metrics.ReportsCreated.WithLabelValues(reason).Inc()
	publishEvent(ctx, s.events, events.TopicReportCreated, report)
	return report, nil
}

// ListReports возвращает жалобы, новые первыми. Пустой статус - все.
func (s *ReportService) ListReports(ctx context.Context, actor models.Actor, status string) ([]models.Report, error) {
	if !actor.IsAdmin() {
		return nil, apperror.ErrForbidden
	}
	if status != "" {
		if _, ok := models.ValidReportStatuses[status]; !ok {
			return nil, apperror.New(apperror.ErrCodeValidation, "недопустимый статус жалобы")
		}
	}
	reports, err := s.repo.List(ctx, status)
	if err != nil {
		return nil, storageError(err, nil)
	}
	return reports, nil
}

func (s *ReportService) ReportStats(ctx context.Context, actor models.Actor) (*models.ReportStats, error) {
	if !actor.IsAdmin() {
		return nil, apperror.ErrForbidden
	}
	stats, err := s.repo.Stats(ctx)
	if err != nil {
		return nil, storageError(err, nil)
	}
	return stats, nil
}

// ReviewReport закрывает жалобу решением resolved или dismissed.
func (s *ReportService) ReviewReport(ctx context.Context, actor models.Actor, id, status, notes string) (*models.Report, error) {
	if !actor.IsAdmin() {
		return nil, apperror.ErrForbidden
	}
	notes = strings.TrimSpace(notes)
	if err := validation.ValidateReviewDecision(status, notes); err != nil {
		return nil, apperror.Validation(err)
	}

	now := s.now()
	if err := s.repo.Review(ctx, id, status, notes, actor.UserID, now); err != nil {
		if errors.Is(err, common.ErrConflict) {
			return nil, apperror.ErrReportAlreadyReviewed
		}
		return nil, storageError(err, apperror.ErrReportNotFound)
	}

	action := models.AdminActionResolveReport
	if status == models.ReportStatusDismissed {
		action = models.AdminActionDismissReport
	}
	writeAdminLog(ctx, s.logs, actor.UserID, action, id, notes, now)

	report, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, storageError(err, apperror.ErrReportNotFound)
	}
	return report, nil
}
