package localstore

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/ignatzorin/roastblame-backend/internal/models"
	"github.com/ignatzorin/roastblame-backend/internal/repository/common"
)

// userRecord сохраняет хеш пароля, который models.User не отдаёт в JSON.
type userRecord struct {
	models.User
	PasswordHash *string `json:"password_hash,omitempty"`
}

func (u userRecord) toModel() models.User {
	user := u.User
	user.PasswordHash = u.PasswordHash
	return user
}

func toRecord(u *models.User) userRecord {
	return userRecord{User: *u, PasswordHash: u.PasswordHash}
}

// UserRepository хранит пользователей и сессии.
type UserRepository struct {
	store *Store
}

func NewUserRepository(store *Store) *UserRepository {
	return &UserRepository{store: store}
}

func (r *UserRepository) Create(_ context.Context, user *models.User) error {
	return mutate(r.store, KeyUsers, func(users *[]userRecord) error {
		for _, u := range *users {
			if u.ID == user.ID {
				return fmt.Errorf("user %s: %w", user.ID, common.ErrAlreadyExists)
			}
			if user.Email != nil && u.Email != nil && strings.EqualFold(*u.Email, *user.Email) {
				return fmt.Errorf("user email %s: %w", *user.Email, common.ErrAlreadyExists)
			}
		}
		*users = append(*users, toRecord(user))
		return nil
	})
}

func (r *UserRepository) find(match func(u *userRecord) bool, what string) (*models.User, error) {
	users, err := read[[]userRecord](r.store, KeyUsers)
	if err != nil {
		return nil, err
	}
	for i := range users {
		if match(&users[i]) {
			user := users[i].toModel()
			return &user, nil
		}
	}
	return nil, fmt.Errorf("user %s: %w", what, common.ErrNotFound)
}

func (r *UserRepository) GetByID(_ context.Context, id string) (*models.User, error) {
	return r.find(func(u *userRecord) bool { return u.ID == id }, id)
}

func (r *UserRepository) GetByEmail(_ context.Context, email string) (*models.User, error) {
	return r.find(func(u *userRecord) bool {
		return u.Email != nil && strings.EqualFold(*u.Email, email)
	}, email)
}

func (r *UserRepository) update(id string, fn func(u *userRecord)) error {
	return mutate(r.store, KeyUsers, func(users *[]userRecord) error {
		for i := range *users {
			if (*users)[i].ID == id {
				fn(&(*users)[i])
				return nil
			}
		}
		return fmt.Errorf("user %s: %w", id, common.ErrNotFound)
	})
}

func (r *UserRepository) UpdateLastLoginAt(_ context.Context, id string, at time.Time) error {
	return r.update(id, func(u *userRecord) { u.LastLoginAt = &at })
}

// List возвращает пользователей, новые первыми. Пустой status - все.
func (r *UserRepository) List(_ context.Context, status string) ([]models.User, error) {
	users, err := read[[]userRecord](r.store, KeyUsers)
	if err != nil {
		return nil, err
	}
	result := make([]models.User, 0, len(users))
	for i := len(users) - 1; i >= 0; i-- {
		if status != "" && users[i].Status != status {
			continue
		}
		result = append(result, users[i].toModel())
	}
	return result, nil
}

func (r *UserRepository) SetStatus(_ context.Context, id, status string, reason *string) error {
	return r.update(id, func(u *userRecord) {
		u.Status = status
		u.BanReason = reason
	})
}

func (r *UserRepository) CreateSession(_ context.Context, session *models.Session) error {
	return mutate(r.store, KeySessions, func(sessions *[]models.Session) error {
		*sessions = append(*sessions, *session)
		return nil
	})
}

func (r *UserRepository) GetSession(_ context.Context, refreshToken string) (*models.Session, error) {
	sessions, err := read[[]models.Session](r.store, KeySessions)
	if err != nil {
		return nil, err
	}
	for i := range sessions {
		if sessions[i].RefreshToken == refreshToken {
			return &sessions[i], nil
		}
	}
	return nil, fmt.Errorf("session: %w", common.ErrNotFound)
}

// DeleteSession удаляет сессию. Отсутствующая сессия не считается ошибкой.
func (r *UserRepository) DeleteSession(_ context.Context, refreshToken string) error {
	return mutate(r.store, KeySessions, func(sessions *[]models.Session) error {
		kept := (*sessions)[:0]
		for _, s := range *sessions {
			if s.RefreshToken != refreshToken {
				kept = append(kept, s)
			}
		}
		*sessions = kept
		return nil
	})
}

// DeleteExpiredSessions удаляет истёкшие сессии и возвращает их количество.
func (r *UserRepository) DeleteExpiredSessions(_ context.Context, now time.Time) (int, error) {
	removed := 0
	err := mutate(r.store, KeySessions, func(sessions *[]models.Session) error {
		kept := (*sessions)[:0]
		for _, s := range *sessions {
			if s.Expired(now) {
				removed++
				continue
			}
			kept = append(kept, s)
		}
		*sessions = kept
		return nil
	})
	return removed, err
}
