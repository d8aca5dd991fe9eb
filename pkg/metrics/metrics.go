package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// HTTP request latency (seconds).
	HTTPRequestDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "http_request_duration_seconds",
			Help:    "HTTP request duration in seconds",
			Buckets: prometheus.ExponentialBuckets(0.001, 2, 12), // 1ms to ~4s
		},
		[]string{"method", "path", "status"},
	)

	// Database query latency (seconds).
	DBQueryDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "db_query_duration_seconds",
			Help:    "Database query duration in seconds",
			Buckets: prometheus.ExponentialBuckets(0.001, 2, 12), // 1ms to ~4s
		},
		[]string{"operation", "table"},
	)

	// Soft-delete / archive cascades executed.
	CascadeCount = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "lifecycle_cascade_count",
			Help: "Total number of soft-delete/archive cascades executed",
		},
		[]string{"entity"}, // entity: board, category, goal
	)

	// Outbox dispatch results.
	OutboxPublishCount = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "outbox_publish_count",
			Help: "Total number of outbox events published to the broker",
		},
		[]string{"status"}, // status: sent, failed
	)

	// Board list cache hits and misses.
	BoardCacheCount = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "board_cache_count",
			Help: "Board list cache lookups",
		},
		[]string{"outcome"}, // outcome: hit, miss
	)
)

func RecordHTTPRequestDuration(method, path, status string, duration time.Duration) {
	HTTPRequestDuration.WithLabelValues(method, path, status).Observe(duration.Seconds())
}

func RecordDBQueryDuration(operation, table string, duration time.Duration) {
	DBQueryDuration.WithLabelValues(operation, table).Observe(duration.Seconds())
}

func IncrementCascade(entity string) {
	CascadeCount.WithLabelValues(entity).Inc()
}

func IncrementOutboxPublish(status string) {
	OutboxPublishCount.WithLabelValues(status).Inc()
}

func IncrementBoardCache(outcome string) {
	BoardCacheCount.WithLabelValues(outcome).Inc()
}
