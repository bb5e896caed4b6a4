// Пакет server — HTTP-сервер портала с graceful shutdown.
// Без TLS — HTTP внутри кластера, TLS termination на ingress.
package server

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/go-chi/chi/v5"

	apierrors "github.com/munquest/admin-portal/internal/api/errors"
	apihandlers "github.com/munquest/admin-portal/internal/api/handlers"
	"github.com/munquest/admin-portal/internal/api/middleware"
	"github.com/munquest/admin-portal/internal/config"
	uihandlers "github.com/munquest/admin-portal/internal/ui/handlers"
	"github.com/munquest/admin-portal/internal/ui/i18n"
	uimiddleware "github.com/munquest/admin-portal/internal/ui/middleware"
	"github.com/munquest/admin-portal/internal/ui/static"
)

// UI — обработчики портала администратора.
type UI struct {
	Auth      *uihandlers.AuthHandler
	Dashboard *uihandlers.DashboardHandler
	Tables    *uihandlers.TableHandler
	Audit     *uihandlers.AuditHandler
	Events    *uihandlers.EventsHandler
	UIAuth    *uimiddleware.UIAuth
	// CSRFKey — ключ gorilla/csrf
	CSRFKey string
}

// Server — HTTP-сервер портала.
type Server struct {
	httpServer *http.Server
	logger     *slog.Logger
	cfg        *config.Config
}

// New создаёт HTTP-сервер с маршрутами и middleware.
func New(cfg *config.Config, logger *slog.Logger, health *apihandlers.HealthHandler, ui *UI) *Server {
	srv := &http.Server{
		Addr:              fmt.Sprintf(":%d", cfg.Port),
		Handler:           NewRouter(cfg, logger, health, ui),
		ReadHeaderTimeout: 10 * time.Second,
		ReadTimeout:       30 * time.Second,
		// SSE держит соединение открытым, поэтому WriteTimeout не задаётся.
		IdleTimeout: 120 * time.Second,
	}

	return &Server{
		httpServer: srv,
		logger:     logger.With(slog.String("component", "server")),
		cfg:        cfg,
	}
}

// NewRouter собирает маршруты: служебные endpoints, статика и /admin.
func NewRouter(cfg *config.Config, logger *slog.Logger, health *apihandlers.HealthHandler, ui *UI) http.Handler {
	router := chi.NewRouter()

	router.Use(middleware.RequestID)
	router.Use(middleware.MetricsMiddleware())
	router.Use(middleware.RequestLogger(logger))

	router.NotFound(func(w http.ResponseWriter, r *http.Request) {
		if strings.HasPrefix(r.URL.Path, "/admin") {
			http.NotFound(w, r)
			return
		}
		apierrors.NotFound(w, "маршрут не найден")
	})
	router.MethodNotAllowed(func(w http.ResponseWriter, _ *http.Request) {
		apierrors.MethodNotAllowed(w, "метод не поддерживается")
	})

	router.Get("/health/live", health.HealthLive)
	router.Get("/health/ready", health.HealthReady)
	router.Get("/metrics", health.GetMetrics)

	router.Handle("/static/*", http.StripPrefix("/static/", http.FileServer(static.FileSystem())))

	router.Get("/", func(w http.ResponseWriter, r *http.Request) {
		http.Redirect(w, r, uihandlers.DashboardPath, http.StatusFound)
	})
	router.Get("/admin", func(w http.ResponseWriter, r *http.Request) {
		http.Redirect(w, r, uihandlers.DashboardPath, http.StatusMovedPermanently)
	})

	router.Group(func(r chi.Router) {
		r.Use(i18n.Middleware())
		r.Use(uimiddleware.CSRF(ui.CSRFKey, cfg.SecureCookie, logger))

		r.Get(uimiddleware.LoginPath, ui.Auth.HandleLoginPage)
		r.Post(uimiddleware.LoginPath, ui.Auth.HandleLogin)
		r.Post("/admin/set-language", uihandlers.HandleSetLanguage)

		r.Group(func(r chi.Router) {
			r.Use(ui.UIAuth.Middleware())

			r.Get(uihandlers.DashboardPath, ui.Dashboard.HandleDashboard)
			r.Post("/admin/catalog/refresh", ui.Dashboard.HandleCatalogRefresh)
			r.Post("/admin/logout", ui.Auth.HandleLogout)
			r.Get("/admin/events/system-status", ui.Events.HandleSystemStatus)
			r.With(uimiddleware.RequirePlatform).Get("/admin/audit", ui.Audit.HandleAudit)

			ui.Tables.Mount(r)
		})
	})

	return router
}

// Run запускает сервер и ожидает сигнала завершения (SIGINT, SIGTERM)
// или отмены ctx. После этого выполняется graceful shutdown.
func (s *Server) Run(ctx context.Context) error {
	errCh := make(chan error, 1)

	go func() {
		s.logger.Info("HTTP-сервер запущен",
			slog.String("addr", s.httpServer.Addr),
		)

		err := s.httpServer.ListenAndServe()
		if err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	defer signal.Stop(quit)

	select {
	case sig := <-quit:
		s.logger.Info("Получен сигнал завершения", slog.String("signal", sig.String()))
	case <-ctx.Done():
		s.logger.Info("Контекст сервера отменён")
	case err := <-errCh:
		if err != nil {
			return fmt.Errorf("ошибка HTTP-сервера: %w", err)
		}
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), s.cfg.ShutdownTimeout)
	defer cancel()

	s.logger.Info("Выполняется graceful shutdown...")
	if err := s.httpServer.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("ошибка при graceful shutdown: %w", err)
	}

	s.logger.Info("HTTP-сервер остановлен")
	return nil
}
