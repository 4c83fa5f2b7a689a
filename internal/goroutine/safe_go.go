// Package goroutine запускает фоновые горутины, которые не роняют процесс при панике.
package goroutine

import (
	"context"
	"runtime/debug"

	"github.com/sirupsen/logrus"

	"github.com/ignatzorin/roastblame-backend/internal/logger"
	"github.com/ignatzorin/roastblame-backend/internal/metrics"
)

const anonymousTask = "anonymous"

// PanicHook вызывается после перехвата паники. Нужен тестам и для
// дополнительной реакции (например, закрыть соединение).
type PanicHook func(task string, recovered any)

// RecoveryHandler перехватывает панику, пишет её в лог и в метрику.
type RecoveryHandler struct {
	log  func() *logrus.Logger
	hook PanicHook
}

// NewRecoveryHandler создаёт обработчик. log берётся при каждой записи,
// чтобы учитывать logger.Init, вызванный позже.
func NewRecoveryHandler(log func() *logrus.Logger, hook PanicHook) *RecoveryHandler {
	return &RecoveryHandler{log: log, hook: hook}
}

// Go запускает fn в горутине под именем task.
func (rh *RecoveryHandler) Go(task string, fn func()) {
	go func() {
		defer rh.recover(task)
		fn()
	}()
}

func (rh *RecoveryHandler) recover(task string) {
	r := recover()
	if r == nil {
		return
	}
	metrics.GoroutinePanics.WithLabelValues(task).Inc()
	rh.log().WithFields(logrus.Fields{
		"task":  task,
		"panic": r,
		"stack": string(debug.Stack()),
	}).Error("goroutine: перехвачена паника")
	if rh.hook != nil {
		rh.hook(task, r)
	}
}

// DefaultRecoveryHandler пишет в глобальный логгер.
var DefaultRecoveryHandler = NewRecoveryHandler(logger.L, nil)

// SafeGo запускает безымянную безопасную горутину.
func SafeGo(fn func()) {
	DefaultRecoveryHandler.Go(anonymousTask, fn)
}

// SafeGoWithContext запускает именованную задачу с контекстом.
func SafeGoWithContext(ctx context.Context, task string, fn func(context.Context)) {
	DefaultRecoveryHandler.Go(task, func() { fn(ctx) })
}
