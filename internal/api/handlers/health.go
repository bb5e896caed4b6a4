// health.go — служебные endpoints портала.
// /health/live — проверка живости (процесс жив)
// /health/ready — проверка готовности (backend доступен, PostgreSQL при наличии)
// /metrics — Prometheus метрики
package handlers

import (
	"encoding/json"
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/munquest/admin-portal/internal/config"
)

// serviceName — имя сервиса в ответах health.
const serviceName = "munquest-admin"

// ReadinessChecker — интерфейс проверки готовности зависимости.
type ReadinessChecker interface {
	// CheckReady возвращает статус ("ok", "degraded", "fail") и сообщение.
	CheckReady() (status string, message string)
}

// HealthHandler — обработчик служебных endpoints.
type HealthHandler struct {
	backendChecker ReadinessChecker
	pgChecker      ReadinessChecker
	promHandler    http.Handler
}

// NewHealthHandler создаёт обработчик. backendChecker обязателен;
// pgChecker nil — журнал аудита отключён, PostgreSQL не проверяется.
func NewHealthHandler(backendChecker, pgChecker ReadinessChecker) *HealthHandler {
	return &HealthHandler{
		backendChecker: backendChecker,
		pgChecker:      pgChecker,
		promHandler:    promhttp.Handler(),
	}
}

type healthCheckResult struct {
	Status  string `json:"status"`
	Message string `json:"message,omitempty"`
}

type healthLiveResponse struct {
	Status    string `json:"status"`
	Timestamp string `json:"timestamp"`
	Version   string `json:"version"`
	Service   string `json:"service"`
}

type healthReadyResponse struct {
	Status    string                       `json:"status"`
	Timestamp string                       `json:"timestamp"`
	Version   string                       `json:"version"`
	Service   string                       `json:"service"`
	Checks    map[string]healthCheckResult `json:"checks"`
}

// HealthLive — проверка живости. Возвращает 200 если процесс жив.
func (h *HealthHandler) HealthLive(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, healthLiveResponse{
		Status:    "ok",
		Timestamp: time.Now().UTC().Format(time.RFC3339),
		Version:   config.Version,
		Service:   serviceName,
	})
}

// HealthReady — проверка готовности. Возвращает 200 (ok/degraded) или 503 (fail).
func (h *HealthHandler) HealthReady(w http.ResponseWriter, _ *http.Request) {
	resp := healthReadyResponse{
		Timestamp: time.Now().UTC().Format(time.RFC3339),
		Version:   config.Version,
		Service:   serviceName,
		Checks:    make(map[string]healthCheckResult, 2),
	}

	if h.backendChecker != nil {
		status, msg := h.backendChecker.CheckReady()
		resp.Checks["backend"] = healthCheckResult{Status: status, Message: msg}
	} else {
		resp.Checks["backend"] = healthCheckResult{Status: "fail", Message: "не инициализирован"}
	}
	if h.pgChecker != nil {
		status, msg := h.pgChecker.CheckReady()
		resp.Checks["postgresql"] = healthCheckResult{Status: status, Message: msg}
	}

	statuses := make([]string, 0, len(resp.Checks))
	for _, c := range resp.Checks {
		statuses = append(statuses, c.Status)
	}
	resp.Status = overallStatus(statuses...)

	code := http.StatusOK
	if resp.Status == "fail" {
		code = http.StatusServiceUnavailable
	}
	writeJSON(w, code, resp)
}

// GetMetrics — Prometheus метрики.
func (h *HealthHandler) GetMetrics(w http.ResponseWriter, r *http.Request) {
	h.promHandler.ServeHTTP(w, r)
}

// overallStatus: fail, если есть fail; degraded, если есть degraded; иначе ok.
func overallStatus(statuses ...string) string {
	hasDegraded := false
	for _, s := range statuses {
		if s == "fail" {
			return "fail"
		}
		if s == "degraded" {
			hasDegraded = true
		}
	}
	if hasDegraded {
		return "degraded"
	}
	return "ok"
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}
