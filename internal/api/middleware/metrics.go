// metrics.go — Prometheus HTTP метрики портала.
// Регистрирует метрики: mq_http_requests_total, mq_http_request_duration_seconds.
package middleware

import (
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// HTTP метрики
var (
	httpRequestsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "mq_http_requests_total",
			Help: "Общее количество HTTP-запросов к порталу",
		},
		[]string{"method", "path", "status"},
	)

	httpRequestDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "mq_http_request_duration_seconds",
			Help:    "Длительность HTTP-запросов к порталу в секундах",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"method", "path"},
	)
)

// MetricsMiddleware возвращает HTTP middleware для сбора Prometheus метрик.
func MetricsMiddleware() func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			start := time.Now()
			path := normalizePath(r.URL.Path)

			wrapped := newResponseWriter(w)
			next.ServeHTTP(wrapped, r)

			httpRequestsTotal.WithLabelValues(r.Method, path, strconv.Itoa(wrapped.statusCode)).Inc()
			httpRequestDuration.WithLabelValues(r.Method, path).Observe(time.Since(start).Seconds())
		})
	}
}

// rowSegments — сегменты пути, за которыми следует id строки.
var rowSegments = map[string]bool{"menu": true, "edit": true, "delete": true, "action": true}

// staticSegments — сегменты операций без id.
var staticSegments = map[string]bool{"close": true, "cancel": true, "confirm": true, "save": true}

// normalizePath заменяет id строк и мероприятий на {id} и {eventId},
// чтобы ограничить кардинальность метрик.
// /admin/committees/edit/12/save → /admin/committees/edit/{id}/save
func normalizePath(path string) string {
	if strings.HasPrefix(path, "/static/") {
		return "/static/*"
	}
	if !strings.HasPrefix(path, "/admin/") {
		return path
	}

	parts := strings.Split(path, "/")
	for i := 1; i < len(parts); i++ {
		prev := parts[i-1]
		switch {
		case prev == "events" && i >= 2 && parts[i-2] == "admin" && parts[i] != "system-status" && parts[i] != "":
			parts[i] = "{eventId}"
		case rowSegments[prev] && !staticSegments[parts[i]] && parts[i] != "":
			parts[i] = "{id}"
		}
	}
	return strings.Join(parts, "/")
}
