package backend

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Исходы запроса к backend для метрик.
const (
	outcomeOK        = "ok"
	outcomeHTTPError = "http_error"
	outcomeAuth      = "auth_error"
	outcomeTransport = "transport_error"
)

var (
	// backendRequestsTotal — общее количество запросов к backend.
	backendRequestsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "mq_backend_requests_total",
			Help: "Total number of requests to the MunQuest backend",
		},
		[]string{"operation", "outcome"},
	)

	// backendRequestDuration — длительность запросов к backend.
	backendRequestDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "mq_backend_request_duration_seconds",
			Help:    "MunQuest backend request duration in seconds",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"operation"},
	)
)

// observeRequest записывает метрики завершённого запроса.
func observeRequest(op, outcome string, start time.Time) {
	backendRequestsTotal.WithLabelValues(op, outcome).Inc()
	backendRequestDuration.WithLabelValues(op).Observe(time.Since(start).Seconds())
}
