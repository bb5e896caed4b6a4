package handlers

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
)

type stubChecker struct {
	status, message string
}

func (s stubChecker) CheckReady() (string, string) { return s.status, s.message }

func TestHealthReady(t *testing.T) {
	tests := []struct {
		name       string
		backend    ReadinessChecker
		pg         ReadinessChecker
		wantStatus string
		wantCode   int
		wantChecks int
	}{
		{"только backend", stubChecker{"ok", ""}, nil, "ok", http.StatusOK, 1},
		{"postgres degraded", stubChecker{"ok", ""}, stubChecker{"degraded", "ping"}, "degraded", http.StatusOK, 2},
		{"backend fail", stubChecker{"fail", "down"}, stubChecker{"ok", ""}, "fail", http.StatusServiceUnavailable, 2},
		{"backend не задан", nil, nil, "fail", http.StatusServiceUnavailable, 1},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			h := NewHealthHandler(tt.backend, tt.pg)
			rec := httptest.NewRecorder()
			h.HealthReady(rec, httptest.NewRequest(http.MethodGet, "/health/ready", nil))

			if rec.Code != tt.wantCode {
				t.Errorf("code = %d, ожидается %d", rec.Code, tt.wantCode)
			}
			var resp healthReadyResponse
			if err := json.NewDecoder(rec.Body).Decode(&resp); err != nil {
				t.Fatalf("декодирование: %v", err)
			}
			if resp.Status != tt.wantStatus {
				t.Errorf("status = %q, ожидается %q", resp.Status, tt.wantStatus)
			}
			if len(resp.Checks) != tt.wantChecks {
				t.Errorf("checks = %v", resp.Checks)
			}
		})
	}
}

func TestHealthLive(t *testing.T) {
	rec := httptest.NewRecorder()
	NewHealthHandler(nil, nil).HealthLive(rec, httptest.NewRequest(http.MethodGet, "/health/live", nil))
	if rec.Code != http.StatusOK {
		t.Fatalf("code = %d", rec.Code)
	}
	var resp healthLiveResponse
	if err := json.NewDecoder(rec.Body).Decode(&resp); err != nil {
		t.Fatalf("декодирование: %v", err)
	}
	if resp.Service != serviceName || resp.Status != "ok" {
		t.Errorf("ответ = %+v", resp)
	}
}
