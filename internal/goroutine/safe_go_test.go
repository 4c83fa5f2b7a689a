package goroutine

import (
	"io"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ignatzorin/roastblame-backend/internal/metrics"
)

func quietLogger() *logrus.Logger {
	l := logrus.New()
	l.SetOutput(io.Discard)
	return l
}

func TestRecoveryHandler_RecoversAndReports(t *testing.T) {
	got := make(chan any, 1)
	rh := NewRecoveryHandler(quietLogger, func(task string, recovered any) {
		assert.Equal(t, "test panic task", task)
		got <- recovered
	})
	before := testutil.ToFloat64(metrics.GoroutinePanics.WithLabelValues("test panic task"))

	rh.Go("test panic task", func() { panic("boom") })

	select {
	case r := <-got:
		assert.Equal(t, "boom", r)
	case <-time.After(2 * time.Second):
		require.FailNow(t, "паника не перехвачена")
	}
	assert.Equal(t, before+1, testutil.ToFloat64(metrics.GoroutinePanics.WithLabelValues("test panic task")))
}

func TestRecoveryHandler_NoPanicNoHook(t *testing.T) {
	called := make(chan struct{}, 1)
	done := make(chan struct{})
	rh := NewRecoveryHandler(quietLogger, func(string, any) { called <- struct{}{} })

	rh.Go("calm", func() { close(done) })

	<-done
	select {
	case <-called:
		t.Fatal("hook вызван без паники")
	case <-time.After(50 * time.Millisecond):
	}
}
