package service

import (
	"context"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"os"
	"strings"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

func TestBackendHealthPath(t *testing.T) {
	tests := []struct {
		url  string
		want string
	}{
		{"http://backend:4000", "/api/v1"},
		{"http://backend:4000/", "/api/v1"},
		{"https://munquest.test/core", "/core/api/v1"},
	}
	for _, tt := range tests {
		if got := backendHealthPath(tt.url); got != tt.want {
			t.Errorf("backendHealthPath(%q) = %q, хотели %q", tt.url, got, tt.want)
		}
	}
}

func TestNewDephealthService_BackendOnly(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	}))
	defer srv.Close()

	logger := slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: slog.LevelError}))

	ds, err := NewDephealthServiceWithRegisterer("munquest-admin", "munquest",
		DephealthDeps{BackendURL: srv.URL}, 5*time.Second, logger, prometheus.NewRegistry())
	if err != nil {
		t.Fatalf("Ошибка создания DephealthService: %v", err)
	}
	if ds == nil {
		t.Fatal("DephealthService nil")
	}
}

func TestDephealthService_BackendHealth(t *testing.T) {
	tests := []struct {
		name   string
		status int
		want   bool
	}{
		{"backend доступен", http.StatusOK, true},
		{"backend отвечает 500", http.StatusInternalServerError, false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				w.WriteHeader(tt.status)
			}))
			defer srv.Close()

			logger := slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: slog.LevelError}))

			ds, err := NewDephealthServiceWithRegisterer("munquest-admin", "munquest",
				DephealthDeps{BackendURL: srv.URL}, time.Second, logger, prometheus.NewRegistry())
			if err != nil {
				t.Fatalf("Ошибка создания DephealthService: %v", err)
			}

			ctx, cancel := context.WithCancel(context.Background())
			defer cancel()

			if err := ds.Start(ctx); err != nil {
				t.Fatalf("Ошибка запуска: %v", err)
			}
			defer ds.Stop()

			// Даём время на первую проверку (интервал 1s + запас)
			time.Sleep(3 * time.Second)

			found := false
			for key, val := range ds.Health() {
				if strings.HasPrefix(key, DepBackend+":") {
					found = true
					if val != tt.want {
						t.Errorf("health[%q] = %v, хотели %v", key, val, tt.want)
					}
				}
			}
			if !found {
				t.Errorf("Нет записи %s в Health()", DepBackend)
			}
		})
	}
}
