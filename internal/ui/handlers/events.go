// events.go — SSE endpoint со статусами зависимостей портала.
// Каждый SSE-клиент обслуживается отдельной горутиной запроса.
package handlers

import (
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"
	"strings"
	"time"
)

// Статусы зависимостей для UI.
const (
	statusOnline      = "online"
	statusOffline     = "offline"
	statusUnavailable = "unavailable"
)

// HealthReporter — источник статусов проверок зависимостей (topologymetrics).
// Ключи — "dependency:host:port".
type HealthReporter interface {
	Health() map[string]bool
}

// Dependency — зависимость, показываемая на главной странице.
type Dependency struct {
	// Name — подпись в UI
	Name string
	// Check — имя зависимости в проверках
	Check string
}

// DependencyStatus собирает статусы зависимостей для UI.
type DependencyStatus struct {
	reporter HealthReporter
	deps     []Dependency
}

// NewDependencyStatus создаёт DependencyStatus. reporter может быть nil:
// тогда все зависимости показываются как unavailable.
func NewDependencyStatus(reporter HealthReporter, deps ...Dependency) *DependencyStatus {
	return &DependencyStatus{reporter: reporter, deps: deps}
}

// depStatusEvent — SSE-событие статусов зависимостей.
type depStatusEvent struct {
	Dependencies []DependencyState `json:"dependencies"`
}

// DependencyState — статус одной зависимости.
type DependencyState struct {
	Name   string `json:"name"`
	Status string `json:"status"`
}

// Snapshot возвращает текущие статусы зависимостей.
func (d *DependencyStatus) Snapshot() []DependencyState {
	items := make([]DependencyState, 0, len(d.deps))
	var health map[string]bool
	if d.reporter != nil {
		health = d.reporter.Health()
	}
	for _, dep := range d.deps {
		status := statusUnavailable
		if d.reporter != nil {
			if healthy, found := findHealthByPrefix(health, dep.Check); found {
				status = depHealthStatus(healthy)
			}
		}
		items = append(items, DependencyState{Name: dep.Name, Status: status})
	}
	return items
}

// EventsHandler — обработчик SSE endpoints.
type EventsHandler struct {
	status      *DependencyStatus
	sseInterval time.Duration
	logger      *slog.Logger
}

// NewEventsHandler создаёт новый EventsHandler.
func NewEventsHandler(status *DependencyStatus, sseInterval time.Duration, logger *slog.Logger) *EventsHandler {
	return &EventsHandler{
		status:      status,
		sseInterval: sseInterval,
		logger:      logger.With(slog.String("component", "ui.events")),
	}
}

// HandleSystemStatus обрабатывает GET /admin/events/system-status.
// Отправляет событие dep-status при подключении и далее с интервалом sseInterval
// до отключения клиента.
func (h *EventsHandler) HandleSystemStatus(w http.ResponseWriter, r *http.Request) {
	s, ok := session(w, r)
	if !ok {
		return
	}

	w.Header().Set("Content-Type", "text/event-stream")
	w.Header().Set("Cache-Control", "no-cache")
	w.Header().Set("Connection", "keep-alive")
	w.Header().Set("X-Accel-Buffering", "no")

	// ResponseController находит http.Flusher через Unwrap обёрток middleware.
	rc := http.NewResponseController(w)
	if err := rc.Flush(); err != nil {
		http.Error(w, "SSE не поддерживается", http.StatusInternalServerError)
		return
	}

	ctx := r.Context()
	h.logger.Debug("SSE клиент подключён",
		slog.String("user_id", s.UserID),
		slog.String("remote_addr", r.RemoteAddr),
	)

	h.sendDepStatus(w, rc)

	ticker := time.NewTicker(h.sseInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			h.logger.Debug("SSE клиент отключён", slog.String("user_id", s.UserID))
			return
		case <-ticker.C:
			h.sendDepStatus(w, rc)
		}
	}
}

// sendDepStatus отправляет событие dep-status.
func (h *EventsHandler) sendDepStatus(w http.ResponseWriter, rc *http.ResponseController) {
	data, err := json.Marshal(depStatusEvent{Dependencies: h.status.Snapshot()})
	if err != nil {
		h.logger.Error("Ошибка сериализации dep-status", slog.String("error", err.Error()))
		return
	}
	fmt.Fprintf(w, "event: dep-status\ndata: %s\n\n", data)
	_ = rc.Flush()
}

// findHealthByPrefix ищет статус зависимости по имени. Несколько
// найденных проверок считаются здоровыми, только если здоровы все.
func findHealthByPrefix(health map[string]bool, name string) (healthy, found bool) {
	healthy = true
	for key, ok := range health {
		if strings.HasPrefix(key, name+":") || key == name {
			found = true
			healthy = healthy && ok
		}
	}
	return healthy && found, found
}

func depHealthStatus(healthy bool) string {
	if healthy {
		return statusOnline
	}
	return statusOffline
}
