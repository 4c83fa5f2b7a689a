package repository

import (
	"context"
	"fmt"
	"time"

	"github.com/jmoiron/sqlx"

	"github.com/ignatzorin/roastblame-backend/internal/models"
	"github.com/ignatzorin/roastblame-backend/internal/repository/common"
)

const userColumns = `id, email, password_hash, is_anonymous, status, ban_reason, last_login_at, created_at`

// UserRepository отвечает за работу с таблицами users и user_sessions.
type UserRepository struct {
	db *sqlx.DB
}

// NewUserRepository создаёт экземпляр репозитория.
func NewUserRepository(db *sqlx.DB) *UserRepository {
	return &UserRepository{db: db}
}

// Create сохраняет нового пользователя.
func (r *UserRepository) Create(ctx context.Context, user *models.User) error {
	query := `
		INSERT INTO users (id, email, password_hash, is_anonymous, status, created_at)
		VALUES ($1, LOWER($2), $3, $4, $5, $6)
	`
	if _, err := r.db.ExecContext(
		ctx, query,
		user.ID, user.Email, user.PasswordHash, user.IsAnonymous, user.Status, user.CreatedAt,
	); err != nil {
		if common.IsUniqueViolation(err) {
			return fmt.Errorf("user repository: create %s: %w", user.ID, common.ErrAlreadyExists)
		}
		return fmt.Errorf("user repository: create %w", err)
	}
	return nil
}

// GetByEmail возвращает пользователя по email без учёта регистра.
func (r *UserRepository) GetByEmail(ctx context.Context, email string) (*models.User, error) {
	var user models.User
	query := `SELECT ` + userColumns + ` FROM users WHERE email = LOWER($1)`
	if err := r.db.GetContext(ctx, &user, query, email); err != nil {
		if isNoRows(err) {
			return nil, fmt.Errorf("user repository: get by email: %w", common.ErrNotFound)
		}
		return nil, fmt.Errorf("user repository: get by email %w", err)
	}
	return &user, nil
}

// GetByID возвращает пользователя по идентификатору.
func (r *UserRepository) GetByID(ctx context.Context, id string) (*models.User, error) {
	var user models.User
	query := `SELECT ` + userColumns + ` FROM users WHERE id = $1`
	if err := r.db.GetContext(ctx, &user, query, id); err != nil {
		if isNoRows(err) {
			return nil, fmt.Errorf("user repository: get by id: %w", common.ErrNotFound)
		}
		return nil, fmt.Errorf("user repository: get by id %w", err)
	}
	return &user, nil
}

// UpdateLastLoginAt обновляет время последнего входа.
func (r *UserRepository) UpdateLastLoginAt(ctx context.Context, id string, at time.Time) error {
	res, err := r.db.ExecContext(ctx, `UPDATE users SET last_login_at = $2 WHERE id = $1`, id, at)
	if err != nil {
		return fmt.Errorf("user repository: update last login %w", err)
	}
	return common.ExpectAffected(res, "user repository: update last login")
}

// List возвращает пользователей, новые первыми. Пустой status - все.
func (r *UserRepository) List(ctx context.Context, status string) ([]models.User, error) {
	users := []models.User{}
	query := `SELECT ` + userColumns + ` FROM users WHERE ($1 = '' OR status = $1) ORDER BY created_at DESC`
	if err := r.db.SelectContext(ctx, &users, query, status); err != nil {
		return nil, fmt.Errorf("user repository: list %w", err)
	}
	return users, nil
}

// SetStatus блокирует или разблокирует пользователя.
func (r *UserRepository) SetStatus(ctx context.Context, id, status string, reason *string) error {
	res, err := r.db.ExecContext(ctx, `UPDATE users SET status = $2, ban_reason = $3 WHERE id = $1`, id, status, reason)
	if err != nil {
		return fmt.Errorf("user repository: set status %w", err)
	}
	return common.ExpectAffected(res, "user repository: set status")
}

// CreateSession сохраняет новую сессию пользователя.
func (r *UserRepository) CreateSession(ctx context.Context, session *models.Session) error {
	query := `
		INSERT INTO user_sessions (id, user_id, role, refresh_token, expires_at, created_at)
		VALUES ($1, $2, $3, $4, $5, $6)
	`
	if _, err := r.db.ExecContext(
		ctx, query,
		session.ID, session.UserID, session.Role, session.RefreshToken, session.ExpiresAt, session.CreatedAt,
	); err != nil {
		return fmt.Errorf("user repository: create session %w", err)
	}
	return nil
}

// GetSession возвращает сессию по refresh токену.
func (r *UserRepository) GetSession(ctx context.Context, refreshToken string) (*models.Session, error) {
	session, err := common.GetByField[models.Session](ctx, r.db, "user_sessions", "refresh_token", refreshToken)
	if err != nil {
		return nil, fmt.Errorf("user repository: get session %w", err)
	}
	return session, nil
}

// DeleteSession удаляет сессию.
func (r *UserRepository) DeleteSession(ctx context.Context, refreshToken string) error {
	if _, err := r.db.ExecContext(ctx, `DELETE FROM user_sessions WHERE refresh_token = $1`, refreshToken); err != nil {
		return fmt.Errorf("user repository: delete session %w", err)
	}
	return nil
}

// DeleteExpiredSessions удаляет истёкшие сессии.
func (r *UserRepository) DeleteExpiredSessions(ctx context.Context, now time.Time) (int, error) {
	res, err := r.db.ExecContext(ctx, `DELETE FROM user_sessions WHERE expires_at <= $1`, now)
	if err != nil {
		return 0, fmt.Errorf("user repository: delete expired sessions %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return 0, fmt.Errorf("user repository: delete expired sessions %w", err)
	}
	return int(n), nil
}
