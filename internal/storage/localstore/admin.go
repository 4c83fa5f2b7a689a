package localstore

import (
	"context"
	"time"

	"go.etcd.io/bbolt"

	"github.com/ignatzorin/roastblame-backend/internal/models"
)

type AdminRepository struct {
	store *Store
}

func NewAdminRepository(store *Store) *AdminRepository {
	return &AdminRepository{store: store}
}

func (r *AdminRepository) AppendLog(_ context.Context, entry *models.AdminLog) error {
	return mutate(r.store, KeyAdminLogs, func(logs *[]models.AdminLog) error {
		*logs = append(*logs, *entry)
		return nil
	})
}

// ListLogs возвращает последние записи журнала, новые первыми.
func (r *AdminRepository) ListLogs(_ context.Context, limit int) ([]models.AdminLog, error) {
	logs, err := read[[]models.AdminLog](r.store, KeyAdminLogs)
	if err != nil {
		return nil, err
	}
	result := make([]models.AdminLog, 0, len(logs))
	for i := len(logs) - 1; i >= 0; i-- {
		if limit > 0 && len(result) == limit {
			break
		}
		result = append(result, logs[i])
	}
	return result, nil
}

// GetSettings возвращает настройки, недостающие поля берутся по умолчанию.
func (r *AdminRepository) GetSettings(_ context.Context) (*models.Settings, error) {
	settings := models.DefaultSettings()
	err := r.store.view(func(b *bbolt.Bucket) error {
		return load(b, KeySettings, &settings)
	})
	if err != nil {
		return nil, err
	}
	return &settings, nil
}

func (r *AdminRepository) SaveSettings(_ context.Context, settings *models.Settings) error {
	return r.store.update(func(b *bbolt.Bucket) error {
		return save(b, KeySettings, settings)
	})
}

// Overview считает сводку по всем коллекциям в одной транзакции чтения.
func (r *AdminRepository) Overview(_ context.Context, since time.Time) (*models.Overview, error) {
	var (
		posts   []models.Post
		users   []userRecord
		reports []models.Report
	)
	err := r.store.view(func(b *bbolt.Bucket) error {
		if err := load(b, KeyPosts, &posts); err != nil {
			return err
		}
		if err := load(b, KeyUsers, &users); err != nil {
			return err
		}
		return load(b, KeyReports, &reports)
	})
	if err != nil {
		return nil, err
	}

	overview := &models.Overview{TotalUsers: len(users)}
	for _, p := range posts {
		if p.IsDeleted() {
			continue
		}
		overview.TotalPosts++
		overview.TotalReactions += p.Reactions.Total()
		if !p.CreatedAt.Before(since) {
			overview.PostsLast24h++
		}
	}
	for _, u := range users {
		if u.Status == models.UserStatusBanned {
			overview.BannedUsers++
		}
	}
	for _, rep := range reports {
		if rep.Status == models.ReportStatusPending {
			overview.PendingReports++
		}
	}
	return overview, nil
}
