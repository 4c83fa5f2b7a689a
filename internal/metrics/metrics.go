package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// HTTPRequestsTotal считает запросы по маршруту, методу и статусу.
	HTTPRequestsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "roastblame_http_requests_total",
		Help: "Total number of HTTP requests",
	}, []string{"method", "route", "status"})

	// HTTPRequestDuration - время обработки запроса.
	HTTPRequestDuration = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "roastblame_http_request_duration_seconds",
		Help:    "HTTP request latency in seconds",
		Buckets: prometheus.DefBuckets,
	}, []string{"method", "route"})

	PostsCreated = promauto.NewCounter(prometheus.CounterOpts{
		Name: "roastblame_posts_created_total",
		Help: "Total number of created posts",
	})

	// ReactionUpdates считает обновления реакций по результату: ok или rollback.
	ReactionUpdates = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "roastblame_reaction_updates_total",
		Help: "Total number of reaction updates by outcome",
	}, []string{"outcome"})

	ReportsCreated = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "roastblame_reports_created_total",
		Help: "Total number of reports by reason",
	}, []string{"reason"})

	// ModerationActions считает действия администраторов.
	ModerationActions = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "roastblame_moderation_actions_total",
		Help: "Total number of admin actions by type",
	}, []string{"action"})

	CryptoTransactions = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "roastblame_crypto_transactions_total",
		Help: "Crypto transactions by type and status",
	}, []string{"type", "status"})

	// WebSocketConnections - число активных WebSocket подключений.
	WebSocketConnections = promauto.NewGauge(prometheus.GaugeOpts{
		Name: "roastblame_websocket_connections",
		Help: "Number of active WebSocket connections",
	})

	// EventsPublished считает доменные события по топику.
	EventsPublished = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "roastblame_events_published_total",
		Help: "Domain events published by topic",
	}, []string{"topic"})

	// GoroutinePanics считает паники, перехваченные в фоновых горутинах.
	GoroutinePanics = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "roastblame_goroutine_panics_total",
		Help: "Recovered panics in background goroutines by task",
	}, []string{"task"})
)
