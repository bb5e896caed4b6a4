package middleware

import (
	"bytes"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
)

func TestNormalizePath(t *testing.T) {
	tests := []struct {
		path string
		want string
	}{
		{"/health/live", "/health/live"},
		{"/metrics", "/metrics"},
		{"/static/css/app.css", "/static/*"},
		{"/admin/committees", "/admin/committees"},
		{"/admin/committees/edit/12", "/admin/committees/edit/{id}"},
		{"/admin/committees/edit/12/save", "/admin/committees/edit/{id}/save"},
		{"/admin/committees/edit/cancel", "/admin/committees/edit/cancel"},
		{"/admin/users/action/5/set-global-role", "/admin/users/action/{id}/set-global-role"},
		{"/admin/users/menu/close", "/admin/users/menu/close"},
		{"/admin/committees/delete/confirm", "/admin/committees/delete/confirm"},
		{"/admin/events/42/leadership-roles/menu/7", "/admin/events/{eventId}/leadership-roles/menu/{id}"},
		{"/admin/events/system-status", "/admin/events/system-status"},
	}

	for _, tt := range tests {
		t.Run(tt.path, func(t *testing.T) {
			if got := normalizePath(tt.path); got != tt.want {
				t.Errorf("normalizePath(%q) = %q, ожидается %q", tt.path, got, tt.want)
			}
		})
	}
}

func TestRequestIDAndLogger(t *testing.T) {
	var buf bytes.Buffer
	logger := slog.New(slog.NewJSONHandler(&buf, &slog.HandlerOptions{Level: slog.LevelDebug}))

	var seen string
	h := RequestID(RequestLogger(logger)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		seen = RequestIDFromContext(r.Context())
		w.WriteHeader(http.StatusTeapot)
	})))

	t.Run("заголовок клиента", func(t *testing.T) {
		buf.Reset()
		req := httptest.NewRequest(http.MethodGet, "/admin/", nil)
		req.Header.Set(RequestIDHeader, "rid-1")
		rec := httptest.NewRecorder()
		h.ServeHTTP(rec, req)

		if seen != "rid-1" || rec.Header().Get(RequestIDHeader) != "rid-1" {
			t.Errorf("request id = %q, заголовок = %q", seen, rec.Header().Get(RequestIDHeader))
		}
		out := buf.String()
		if !strings.Contains(out, `"request_id":"rid-1"`) || !strings.Contains(out, `"status":418`) {
			t.Errorf("лог = %s", out)
		}
		if !strings.Contains(out, `"level":"WARN"`) {
			t.Errorf("4xx должен логироваться на WARN: %s", out)
		}
	})

	t.Run("генерация", func(t *testing.T) {
		rec := httptest.NewRecorder()
		h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/admin/", nil))
		if len(seen) != 36 {
			t.Errorf("сгенерированный id = %q, ожидается UUID", seen)
		}
	})
}
