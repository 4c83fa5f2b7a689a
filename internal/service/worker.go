package service

import (
	"context"
	"time"

	"github.com/ignatzorin/roastblame-backend/internal/goroutine"
	"github.com/ignatzorin/roastblame-backend/internal/logger"
)

// PeriodicTask - фоновая задача, возвращающая число обработанных записей.
type PeriodicTask func(ctx context.Context) (int, error)

// StartPeriodic запускает задачу по тикеру до отмены ctx.
func StartPeriodic(ctx context.Context, name string, interval time.Duration, task PeriodicTask) {
	if interval <= 0 {
		return
	}
	goroutine.SafeGoWithContext(ctx, name, func(ctx context.Context) {
		ticker := time.NewTicker(interval)
		defer ticker.Stop()

		log := logger.L().WithField("task", name)
		log.WithField("interval", interval.String()).Info("worker: запущен")

		for {
			select {
			case <-ctx.Done():
				log.Info("worker: остановлен")
				return
			case <-ticker.C:
				n, err := task(ctx)
				if err != nil {
					log.WithError(err).Warn("worker: ошибка выполнения")
					continue
				}
				if n > 0 {
					log.WithField("processed", n).Debug("worker: итерация завершена")
				}
			}
		}
	})
}
