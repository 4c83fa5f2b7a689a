package service

import (
	"context"
	"crypto/subtle"
	"errors"
	"time"

	"golang.org/x/crypto/bcrypt"

	"github.com/ignatzorin/roastblame-backend/internal/ids"
	"github.com/ignatzorin/roastblame-backend/internal/logger"
	"github.com/ignatzorin/roastblame-backend/internal/models"
	"github.com/ignatzorin/roastblame-backend/internal/pkg/apperror"
	"github.com/ignatzorin/roastblame-backend/internal/repository/common"
	"github.com/ignatzorin/roastblame-backend/internal/validation"
)

// Демонстрационные учётные данные.
const (
	MockUserEmail    = "test@example.com"
	MockUserPassword = "password123"
)

type adminCredential struct {
	email    string
	password string
}

var adminCredentials = []adminCredential{
	{email: "admin@roastblame.com", password: "admin123"},
	{email: "moderator@roastblame.com", password: "mod123"},
}

// UserRepository описывает зависимости сервисов от хранилища пользователей.
type UserRepository interface {
	Create(ctx context.Context, user *models.User) error
	GetByID(ctx context.Context, id string) (*models.User, error)
	GetByEmail(ctx context.Context, email string) (*models.User, error)
	UpdateLastLoginAt(ctx context.Context, id string, at time.Time) error
	List(ctx context.Context, status string) ([]models.User, error)
	SetStatus(ctx context.Context, id, status string, reason *string) error
	CreateSession(ctx context.Context, session *models.Session) error
	GetSession(ctx context.Context, refreshToken string) (*models.Session, error)
	DeleteSession(ctx context.Context, refreshToken string) error
	DeleteExpiredSessions(ctx context.Context, now time.Time) (int, error)
}

// SettingsReader отдаёт текущие настройки сайта.
type SettingsReader interface {
	GetSettings(ctx context.Context) (*models.Settings, error)
}

// AuthService инкапсулирует вход, регистрацию и сессии.
type AuthService struct {
	repo         UserRepository
	settings     SettingsReader
	tokenManager *TokenManager
	now          func() time.Time
}

// RegisterInput содержит данные пользователя при регистрации.
type RegisterInput struct {
	Email    string
	Password string
}

// LoginInput содержит данные для входа.
type LoginInput struct {
	Email    string
	Password string
}

// AuthResult возвращает итог регистрации или авторизации.
type AuthResult struct {
	User      *models.User
	Role      string
	TokenPair *TokenPair
}

// NewAuthService создаёт сервис аутентификации.
func NewAuthService(repo UserRepository, settings SettingsReader, tokenManager *TokenManager) *AuthService {
	return &AuthService{
		repo:         repo,
		settings:     settings,
		tokenManager: tokenManager,
		now:          time.Now,
	}
}

// Register создаёт пользователя с паролем и открывает сессию.
func (s *AuthService) Register(ctx context.Context, in RegisterInput) (*AuthResult, error) {
	if err := validation.ValidateEmail(in.Email); err != nil {
		return nil, apperror.Validation(err)
	}
	if err := validation.ValidatePassword(in.Password); err != nil {
		return nil, apperror.Validation(err)
	}

	email := validation.NormalizeEmail(in.Email)
	if email == MockUserEmail || isAdminEmail(email) {
		return nil, apperror.ErrEmailTaken
	}

	if _, err := s.repo.GetByEmail(ctx, email); err == nil {
		return nil, apperror.ErrEmailTaken
	} else if !errors.Is(err, common.ErrNotFound) {
		return nil, storageError(err, nil)
	}

	passHash, err := bcrypt.GenerateFromPassword([]byte(in.Password), bcrypt.DefaultCost)
	if err != nil {
		return nil, apperror.Wrap(err, apperror.ErrCodeInternal, "не удалось захешировать пароль")
	}
	hash := string(passHash)

	user := &models.User{
		ID:           ids.New(models.PrefixUser),
		Email:        &email,
		PasswordHash: &hash,
		Status:       models.UserStatusActive,
		CreatedAt:    s.now(),
	}
	if err := s.repo.Create(ctx, user); err != nil {
		if errors.Is(err, common.ErrAlreadyExists) {
			return nil, apperror.ErrEmailTaken
		}
		return nil, storageError(err, nil)
	}

	return s.startSession(ctx, user, models.RoleUser)
}

// Login принимает демонстрационную пару или зарегистрированный аккаунт.
func (s *AuthService) Login(ctx context.Context, in LoginInput) (*AuthResult, error) {
	email := validation.NormalizeEmail(in.Email)
	if err := validation.ValidateEmail(email); err != nil {
		return nil, apperror.ErrInvalidCredentials
	}

	var user *models.User
	if matchMockCredential(in.Email, in.Password) {
		u, err := s.findOrCreate(ctx, MockUserEmail, models.PrefixUser)
		if err != nil {
			return nil, err
		}
		user = u
	} else {
		u, err := s.repo.GetByEmail(ctx, email)
		if err != nil {
			if errors.Is(err, common.ErrNotFound) {
				return nil, apperror.ErrInvalidCredentials
			}
			return nil, storageError(err, nil)
		}
		if u.PasswordHash == nil || !ids.HasPrefix(u.ID, models.PrefixUser) {
			return nil, apperror.ErrInvalidCredentials
		}
		if err := bcrypt.CompareHashAndPassword([]byte(*u.PasswordHash), []byte(in.Password)); err != nil {
			return nil, apperror.ErrInvalidCredentials
		}
		user = u
	}

	if user.IsBanned() {
		return nil, apperror.ErrUserBanned
	}

	return s.startSession(ctx, user, models.RoleUser)
}

// LoginAnonymously создаёт анонимного пользователя, если это разрешено настройками.
func (s *AuthService) LoginAnonymously(ctx context.Context) (*AuthResult, error) {
	settings, err := s.settings.GetSettings(ctx)
	if err != nil {
		return nil, storageError(err, nil)
	}
	if !settings.AllowAnonymous {
		return nil, apperror.ErrAnonymousDisabled
	}

	user := &models.User{
		ID:          ids.New(models.PrefixAnonymous),
		IsAnonymous: true,
		Status:      models.UserStatusActive,
		CreatedAt:   s.now(),
	}
	if err := s.repo.Create(ctx, user); err != nil {
		return nil, storageError(err, nil)
	}

	return s.startSession(ctx, user, models.RoleAnonymous)
}

// LoginAsAdmin принимает только две зашитые пары учётных данных в точности.
func (s *AuthService) LoginAsAdmin(ctx context.Context, in LoginInput) (*AuthResult, error) {
	// Пары сравниваются как есть: регистр и пробелы не нормализуются.
	if !matchAdminCredential(in.Email, in.Password) {
		logger.L().WithField("email", validation.NormalizeEmail(in.Email)).Warn("auth service: неудачный вход администратора")
		return nil, apperror.ErrInvalidAdminCredential
	}

	user, err := s.findOrCreate(ctx, in.Email, models.PrefixAdmin)
	if err != nil {
		return nil, err
	}
	if !ids.HasPrefix(user.ID, models.PrefixAdmin) {
		return nil, apperror.ErrInvalidAdminCredential
	}

	return s.startSession(ctx, user, models.RoleAdmin)
}

// Refresh выпускает новую пару токенов вместо переданной.
func (s *AuthService) Refresh(ctx context.Context, refreshToken string) (*AuthResult, error) {
	claims, err := s.tokenManager.ParseRefresh(refreshToken)
	if err != nil {
		return nil, apperror.Wrap(err, apperror.ErrCodeUnauthorized, "refresh токен невалиден")
	}

	session, err := s.repo.GetSession(ctx, refreshToken)
	if err != nil {
		return nil, storageError(err, apperror.New(apperror.ErrCodeUnauthorized, "сессия не найдена"))
	}
	if session.Expired(s.now()) || session.UserID != claims.Subject {
		return nil, apperror.New(apperror.ErrCodeUnauthorized, "сессия истекла")
	}

	user, err := s.repo.GetByID(ctx, session.UserID)
	if err != nil {
		return nil, storageError(err, apperror.ErrUserNotFound)
	}
	if user.IsBanned() {
		_ = s.repo.DeleteSession(ctx, refreshToken)
		return nil, apperror.ErrUserBanned
	}

	if err := s.repo.DeleteSession(ctx, refreshToken); err != nil {
		return nil, storageError(err, nil)
	}
	return s.startSession(ctx, user, session.Role)
}

// Logout завершает сессию. Повторный выход не считается ошибкой.
func (s *AuthService) Logout(ctx context.Context, refreshToken string) error {
	if refreshToken == "" {
		return nil
	}
	if err := s.repo.DeleteSession(ctx, refreshToken); err != nil {
		return storageError(err, nil)
	}
	return nil
}

// ResetPassword только проверяет адрес: письма не отправляются.
func (s *AuthService) ResetPassword(_ context.Context, email string) error {
	if err := validation.ValidateEmail(email); err != nil {
		return apperror.Validation(err)
	}
	logger.L().WithField("email", validation.NormalizeEmail(email)).Info("auth service: запрошен сброс пароля")
	return nil
}

// Me возвращает пользователя текущей сессии.
func (s *AuthService) Me(ctx context.Context, actor models.Actor) (*models.User, error) {
	user, err := s.repo.GetByID(ctx, actor.UserID)
	if err != nil {
		return nil, storageError(err, apperror.ErrUserNotFound)
	}
	return user, nil
}

// CleanupSessions удаляет истёкшие сессии.
func (s *AuthService) CleanupSessions(ctx context.Context) (int, error) {
	n, err := s.repo.DeleteExpiredSessions(ctx, s.now())
	if err != nil {
		return 0, storageError(err, nil)
	}
	return n, nil
}

func (s *AuthService) findOrCreate(ctx context.Context, email, prefix string) (*models.User, error) {
	user, err := s.repo.GetByEmail(ctx, email)
	if err == nil {
		return user, nil
	}
	if !errors.Is(err, common.ErrNotFound) {
		return nil, storageError(err, nil)
	}

	user = &models.User{
		ID:        ids.New(prefix),
		Email:     &email,
		Status:    models.UserStatusActive,
		CreatedAt: s.now(),
	}
	if err := s.repo.Create(ctx, user); err != nil {
		// Параллельный вход уже создал запись
		if errors.Is(err, common.ErrAlreadyExists) {
			existing, getErr := s.repo.GetByEmail(ctx, email)
			if getErr != nil {
				return nil, storageError(getErr, nil)
			}
			return existing, nil
		}
		return nil, storageError(err, nil)
	}
	return user, nil
}

func (s *AuthService) startSession(ctx context.Context, user *models.User, role string) (*AuthResult, error) {
	tokenPair, refreshExp, err := s.tokenManager.GeneratePair(user, role)
	if err != nil {
		return nil, apperror.Wrap(err, apperror.ErrCodeInternal, "не удалось выпустить токены")
	}

	now := s.now()
	session := &models.Session{
		ID:           ids.New(models.PrefixSession),
		UserID:       user.ID,
		Role:         role,
		RefreshToken: tokenPair.RefreshToken,
		ExpiresAt:    refreshExp,
		CreatedAt:    now,
	}
	if err := s.repo.CreateSession(ctx, session); err != nil {
		return nil, storageError(err, nil)
	}

	if err := s.repo.UpdateLastLoginAt(ctx, user.ID, now); err != nil {
		logger.L().WithFields(map[string]interface{}{
			"user_id": user.ID,
			"error":   err.Error(),
		}).Warn("auth service: не удалось обновить last_login_at")
	} else {
		user.LastLoginAt = &now
	}

	return &AuthResult{
		User:      user,
		Role:      role,
		TokenPair: tokenPair,
	}, nil
}

func isAdminEmail(email string) bool {
	for _, c := range adminCredentials {
		if c.email == email {
			return true
		}
	}
	return false
}

// matchAdminCredential сравнивает пары за постоянное время.
func matchAdminCredential(email, password string) bool {
	matched := 0
	for _, c := range adminCredentials {
		matched |= matchPair(c, email, password)
	}
	return matched == 1
}

// matchMockCredential проверяет демонстрационную пару без нормализации.
func matchMockCredential(email, password string) bool {
	return matchPair(adminCredential{email: MockUserEmail, password: MockUserPassword}, email, password) == 1
}

func matchPair(c adminCredential, email, password string) int {
	emailOK := subtle.ConstantTimeCompare([]byte(c.email), []byte(email))
	passOK := subtle.ConstantTimeCompare([]byte(c.password), []byte(password))
	return emailOK & passOK
}

