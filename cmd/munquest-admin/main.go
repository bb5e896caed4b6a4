// Точка входа MunQuest Admin Portal — портала администраторов и организаторов.
// Загружает конфигурацию, создаёт клиент backend и справочники, при заданном
// PostgreSQL подключает журнал аудита, запускает topologymetrics и HTTP-сервер
// с graceful shutdown.
package main

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"
	"os"

	"github.com/jackc/pgx/v5/stdlib"
	"github.com/joho/godotenv"
	flag "github.com/spf13/pflag"

	"github.com/munquest/admin-portal/internal/api/handlers"
	"github.com/munquest/admin-portal/internal/backend"
	"github.com/munquest/admin-portal/internal/config"
	"github.com/munquest/admin-portal/internal/database"
	"github.com/munquest/admin-portal/internal/repository"
	"github.com/munquest/admin-portal/internal/server"
	"github.com/munquest/admin-portal/internal/service"
	"github.com/munquest/admin-portal/internal/ui/auth"
	uihandlers "github.com/munquest/admin-portal/internal/ui/handlers"
	"github.com/munquest/admin-portal/internal/ui/i18n"
	uimiddleware "github.com/munquest/admin-portal/internal/ui/middleware"
	"github.com/munquest/admin-portal/internal/ui/state"
)

const serviceID = "munquest-admin"

func main() {
	flags := flag.NewFlagSet(serviceID, flag.ContinueOnError)
	envFile := flags.String("env-file", "", "файл .env с переменными MQ_*")
	showVersion := flags.BoolP("version", "v", false, "показать версию и выйти")
	if err := flags.Parse(os.Args[1:]); err != nil {
		if errors.Is(err, flag.ErrHelp) {
			return
		}
		os.Exit(2)
	}

	if *showVersion {
		fmt.Println(config.Version)
		return
	}

	// 1. Переменные окружения из .env (если указан)
	if *envFile != "" {
		if err := godotenv.Load(*envFile); err != nil {
			slog.Error("Ошибка чтения env-файла", slog.String("path", *envFile), slog.String("error", err.Error()))
			os.Exit(1)
		}
	}

	if err := run(); err != nil {
		slog.Error("Портал остановлен с ошибкой", slog.String("error", err.Error()))
		os.Exit(1)
	}
}

func run() error {
	// 2. Конфигурация и логирование
	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("загрузка конфигурации: %w", err)
	}

	logger := config.SetupLogger(cfg)
	logger.Info("MunQuest Admin Portal запускается",
		slog.String("version", config.Version),
		slog.Int("port", cfg.Port),
		slog.String("backend_url", cfg.BackendURL),
	)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// 3. Локализация
	if err := i18n.LoadEmbedded(i18n.Init(logger)); err != nil {
		return fmt.Errorf("загрузка переводов: %w", err)
	}

	// 4. Клиент backend
	client, err := backend.New(cfg.BackendURL, cfg.BackendCACertPath, cfg.BackendTimeout, logger)
	if err != nil {
		return fmt.Errorf("создание клиента backend: %w", err)
	}

	tokens, err := auth.NewTokenReader(cfg.JWKSURL, cfg.JWTIssuer, nil, logger)
	if err != nil {
		return fmt.Errorf("создание JWKS: %w", err)
	}
	if cfg.JWKSURL == "" {
		logger.Warn("MQ_JWKS_URL не задан, подпись токена при входе не проверяется")
	}

	sessionMgr, err := auth.NewSessionManager(cfg.SessionSecret, cfg.SecureCookie)
	if err != nil {
		return fmt.Errorf("создание session manager: %w", err)
	}
	if cfg.SessionSecret == "" {
		logger.Warn("MQ_SESSION_SECRET не задан, сессии не сохраняются между рестартами")
	}

	// 5. Журнал аудита (опционально)
	var (
		auditRepo repository.AuditLogRepository
		pgChecker handlers.ReadinessChecker
		pgDB      *sql.DB
	)
	if cfg.AuditEnabled() {
		logger.Info("Применение миграций журнала аудита...")
		if err := database.Migrate(cfg, logger); err != nil {
			return fmt.Errorf("миграции БД: %w", err)
		}

		pool, err := database.Connect(ctx, cfg, logger)
		if err != nil {
			return fmt.Errorf("подключение к PostgreSQL: %w", err)
		}
		defer pool.Close()

		// Проверка topologymetrics идёт через тот же пул соединений.
		pgDB = stdlib.OpenDBFromPool(pool)
		defer pgDB.Close()

		auditRepo = repository.NewAuditLogRepository(pool)
		pgChecker = database.NewReadinessChecker(pool)
	} else {
		logger.Info("MQ_DB_HOST не задан, журнал аудита отключён")
	}

	// 6. Сервисы
	auditSvc := service.NewAuditService(auditRepo, cfg.AuditPageSize, logger)
	catalog := service.NewCatalog(client, logger)
	tables := service.NewTables(client, catalog, service.Observers(catalog, auditSvc), logger)
	store := state.NewStore(cfg.StateMaxEntries, cfg.StateTTL, logger)

	// 7. topologymetrics
	deps := []uihandlers.Dependency{{Name: "Backend", Check: service.DepBackend}}
	if pgDB != nil {
		deps = append(deps, uihandlers.Dependency{Name: "PostgreSQL", Check: service.DepPostgres})
	}

	var reporter uihandlers.HealthReporter
	dephealthSvc, err := service.NewDephealthService(
		serviceID,
		cfg.DephealthGroup,
		service.DephealthDeps{
			BackendURL: cfg.BackendURL,
			DB:         pgDB,
			PGConnURL:  cfg.DatabaseURL(),
		},
		cfg.DephealthCheckInterval,
		logger,
	)
	if err != nil {
		logger.Warn("topologymetrics недоступен, запуск без мониторинга зависимостей",
			slog.String("error", err.Error()),
		)
	} else if err := dephealthSvc.Start(ctx); err != nil {
		logger.Warn("Ошибка запуска topologymetrics", slog.String("error", err.Error()))
	} else {
		defer dephealthSvc.Stop()
		reporter = dephealthSvc
	}

	// 8. UI
	uiAuth := uimiddleware.NewUIAuth(sessionMgr, store.Drop, logger)
	pages := &uihandlers.Pages{
		Store:        store,
		Tables:       tables,
		Auth:         uiAuth,
		AuditEnabled: auditSvc.Enabled(),
	}
	depStatus := uihandlers.NewDependencyStatus(reporter, deps...)

	csrfKey := cfg.CSRFKey
	if csrfKey == "" {
		csrfKey = cfg.SessionSecret
	}
	if csrfKey == "" {
		csrfKey = auth.NewSID()
	}

	ui := &server.UI{
		Auth:      uihandlers.NewAuthHandler(client, tokens, sessionMgr, uiAuth, catalog, logger),
		Dashboard: uihandlers.NewDashboardHandler(pages, catalog, depStatus, logger),
		Tables:    uihandlers.NewTableHandler(pages, catalog, logger),
		Audit:     uihandlers.NewAuditHandler(pages, auditSvc, logger),
		Events:    uihandlers.NewEventsHandler(depStatus, cfg.DephealthCheckInterval, logger),
		UIAuth:    uiAuth,
		CSRFKey:   csrfKey,
	}

	// 9. HTTP-сервер
	health := handlers.NewHealthHandler(client, pgChecker)
	srv := server.New(cfg, logger, health, ui)
	if err := srv.Run(ctx); err != nil {
		return err
	}

	logger.Info("MunQuest Admin Portal остановлен")
	return nil
}
