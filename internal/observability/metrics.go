package observability

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// RedisErrorRate counts Redis errors by operation type.
	RedisErrorRate = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "inkwell_redis_error_rate_total",
		Help: "Total number of Redis errors by operation type",
	}, []string{"operation"})

	// DatabaseQueryLatency records database query latency by operation and table.
	DatabaseQueryLatency = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "inkwell_database_query_latency_seconds",
		Help:    "Database query latency in seconds",
		Buckets: prometheus.DefBuckets,
	}, []string{"operation", "table"})

	// UploadsTotal counts stored uploads by backend and outcome.
	UploadsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "inkwell_uploads_total",
		Help: "Total number of upload attempts by storage backend and outcome",
	}, []string{"backend", "outcome"})

	// EngagementTotal counts like/unlike/comment mutations by kind.
	EngagementTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "inkwell_engagement_total",
		Help: "Total number of engagement mutations by kind",
	}, []string{"kind"})
)

// ObserveQuery records the latency of a database query.
func ObserveQuery(operation, table string, start time.Time) {
	DatabaseQueryLatency.WithLabelValues(operation, table).Observe(time.Since(start).Seconds())
}
