package service

import (
	"context"
	"strings"
	"time"

	"github.com/ignatzorin/roastblame-backend/internal/ids"
	"github.com/ignatzorin/roastblame-backend/internal/logger"
	"github.com/ignatzorin/roastblame-backend/internal/models"
	"github.com/ignatzorin/roastblame-backend/internal/pkg/apperror"
	"github.com/ignatzorin/roastblame-backend/internal/validation"
)

// DefaultAdminLogLimit - сколько записей журнала отдаётся по умолчанию.
const DefaultAdminLogLimit = 100

// AdminRepository - журнал модерации, настройки и сводка.
type AdminRepository interface {
	AppendLog(ctx context.Context, entry *models.AdminLog) error
	ListLogs(ctx context.Context, limit int) ([]models.AdminLog, error)
	GetSettings(ctx context.Context) (*models.Settings, error)
	SaveSettings(ctx context.Context, settings *models.Settings) error
	Overview(ctx context.Context, since time.Time) (*models.Overview, error)
}

// AdminService - панель модерации.
type AdminService struct {
	repo  AdminRepository
	users UserRepository
	now   func() time.Time
}

func NewAdminService(repo AdminRepository, users UserRepository) *AdminService {
	return &AdminService{repo: repo, users: users, now: time.Now}
}

// Overview считает сводку за последние 24 часа.
func (s *AdminService) Overview(ctx context.Context, actor models.Actor) (*models.Overview, error) {
	if !actor.IsAdmin() {
		return nil, apperror.ErrForbidden
	}
	overview, err := s.repo.Overview(ctx, s.now().Add(-24*time.Hour))
	if err != nil {
		return nil, storageError(err, nil)
	}
	return overview, nil
}

func (s *AdminService) ListUsers(ctx context.Context, actor models.Actor, status string) ([]models.User, error) {
	if !actor.IsAdmin() {
		return nil, apperror.ErrForbidden
	}
	if status != "" {
		if _, ok := models.ValidUserStatuses[status]; !ok {
			return nil, apperror.New(apperror.ErrCodeValidation, "недопустимый статус пользователя")
		}
	}
	users, err := s.users.List(ctx, status)
	if err != nil {
		return nil, storageError(err, nil)
	}
	return users, nil
}

// BanUser блокирует пользователя. Администраторов заблокировать нельзя.
func (s *AdminService) BanUser(ctx context.Context, actor models.Actor, userID, reason string) (*models.User, error) {
	if !actor.IsAdmin() {
		return nil, apperror.ErrForbidden
	}
	reason = strings.TrimSpace(reason)
	if err := validation.ValidateBanReason(reason); err != nil {
		return nil, apperror.Validation(err)
	}
	return s.setStatus(ctx, actor, userID, models.UserStatusBanned, &reason, models.AdminActionBanUser)
}

func (s *AdminService) UnbanUser(ctx context.Context, actor models.Actor, userID string) (*models.User, error) {
	if !actor.IsAdmin() {
		return nil, apperror.ErrForbidden
	}
	return s.setStatus(ctx, actor, userID, models.UserStatusActive, nil, models.AdminActionUnbanUser)
}

func (s *AdminService) setStatus(ctx context.Context, actor models.Actor, userID, status string, reason *string, action string) (*models.User, error) {
	if ids.HasPrefix(userID, models.PrefixAdmin) {
		return nil, apperror.New(apperror.ErrCodeValidation, "нельзя менять статус администратора")
	}
	if _, err := s.users.GetByID(ctx, userID); err != nil {
		return nil, storageError(err, apperror.ErrUserNotFound)
	}
	if err := s.users.SetStatus(ctx, userID, status, reason); err != nil {
		return nil, storageError(err, apperror.ErrUserNotFound)
	}

	logReason := ""
	if reason != nil {
		logReason = *reason
	}
	writeAdminLog(ctx, s.repo, actor.UserID, action, userID, logReason, s.now())

	logger.L().WithFields(map[string]interface{}{
		"admin_id": actor.UserID,
		"user_id":  userID,
		"status":   status,
	}).Info("admin service: статус пользователя изменён")

	user, err := s.users.GetByID(ctx, userID)
	if err != nil {
		return nil, storageError(err, apperror.ErrUserNotFound)
	}
	return user, nil
}

// ListAdminLogs возвращает журнал, новые записи первыми.
func (s *AdminService) ListAdminLogs(ctx context.Context, actor models.Actor, limit int) ([]models.AdminLog, error) {
	if !actor.IsAdmin() {
		return nil, apperror.ErrForbidden
	}
	if limit <= 0 || limit > 1000 {
		limit = DefaultAdminLogLimit
	}
	logs, err := s.repo.ListLogs(ctx, limit)
	if err != nil {
		return nil, storageError(err, nil)
	}
	return logs, nil
}

// GetSettings доступен всем: клиенту нужны цвета и правила.
func (s *AdminService) GetSettings(ctx context.Context) (*models.Settings, error) {
	settings, err := s.repo.GetSettings(ctx)
	if err != nil {
		return nil, storageError(err, nil)
	}
	return settings, nil
}

func (s *AdminService) UpdateSettings(ctx context.Context, actor models.Actor, settings models.Settings) (*models.Settings, error) {
	if !actor.IsAdmin() {
		return nil, apperror.ErrForbidden
	}
	settings.SiteName = strings.TrimSpace(settings.SiteName)
	settings.LogoURL = strings.TrimSpace(settings.LogoURL)
	if err := validation.ValidateSettings(settings); err != nil {
		return nil, apperror.Validation(err)
	}
	if err := s.repo.SaveSettings(ctx, &settings); err != nil {
		return nil, storageError(err, nil)
	}
	writeAdminLog(ctx, s.repo, actor.UserID, models.AdminActionUpdateSettings, "settings", "", s.now())
	return &settings, nil
}
