package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Alert ingestion metrics
var (
	// AlertsIngested counts successfully persisted SOS alerts
	AlertsIngested = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "alerts_ingested_total",
			Help: "Total SOS alerts persisted to the store",
		},
	)

	// AlertPersistFailures counts failed alert writes
	AlertPersistFailures = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "alert_persist_failures_total",
			Help: "Total SOS alerts that could not be persisted",
		},
	)
)

// WebSocket fan-out metrics
var (
	// WebSocketConnections tracks currently connected dashboard clients
	WebSocketConnections = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "websocket_connections_current",
			Help: "Currently connected dashboard WebSocket clients",
		},
	)

	// AlertBroadcasts counts broadcast passes over the connected clients
	AlertBroadcasts = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "alert_broadcasts_total",
			Help: "Total alert broadcast passes",
		},
	)

	// WebSocketSlowDisconnects counts clients dropped because their send
	// buffer was full during a broadcast
	WebSocketSlowDisconnects = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "websocket_slow_disconnects_total",
			Help: "Clients disconnected for not draining their send buffer",
		},
	)

	// WebSocketSendDuration tracks per-message write latency
	WebSocketSendDuration = promauto.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "websocket_message_send_duration_seconds",
			Help:    "WebSocket message send duration in seconds",
			Buckets: []float64{.001, .005, .01, .025, .05, .1, .25, .5, 1},
		},
	)

	// WebSocketPingFailures counts failed keep-alive pings
	WebSocketPingFailures = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "websocket_ping_failures_total",
			Help: "Total failed WebSocket keep-alive pings",
		},
	)
)
