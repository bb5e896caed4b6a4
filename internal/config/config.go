// Пакет config — загрузка и валидация конфигурации MunQuest Admin Portal
// из переменных окружения.
package config

import (
	"fmt"
	"log/slog"
	"net/url"
	"os"
	"strconv"
	"strings"
	"time"
)

// Версия приложения, задаётся при сборке через -ldflags.
var Version = "dev"

// Config содержит все параметры конфигурации портала.
type Config struct {
	// --- Сервер ---

	// Порт HTTP-сервера
	Port int
	// Уровень логирования (debug, info, warn, error)
	LogLevel slog.Level
	// Формат логов (json, text)
	LogFormat string

	// --- Backend MunQuest ---

	// Базовый URL backend (например, https://api.munquest.org)
	BackendURL string
	// Путь к CA-сертификату для TLS-соединений с backend (опционально)
	BackendCACertPath string
	// Таймаут HTTP-клиента backend
	BackendTimeout time.Duration

	// --- JWT ---

	// URL JWKS endpoint для проверки подписи токена backend (опционально).
	// Если не задан — токен читается без проверки подписи, учитывается только exp.
	JWKSURL string
	// Ожидаемый issuer токена (опционально)
	JWTIssuer string

	// --- UI-сессии ---

	// Секрет шифрования cookie сессии (пустой — случайный ключ на время жизни процесса)
	SessionSecret string
	// Ключ CSRF (пустой — выводится из SessionSecret)
	CSRFKey string
	// Secure flag для cookie
	SecureCookie bool
	// Максимальное количество состояний таблиц в памяти
	StateMaxEntries int
	// Время жизни состояния таблиц
	StateTTL time.Duration

	// --- PostgreSQL (журнал аудита, опционально) ---

	// Хост PostgreSQL; пустое значение отключает журнал аудита
	DBHost string
	// Порт PostgreSQL
	DBPort int
	// Имя базы данных
	DBName string
	// Имя пользователя PostgreSQL
	DBUser string
	// Пароль пользователя PostgreSQL
	DBPassword string
	// Режим SSL: disable, require, verify-ca, verify-full
	DBSSLMode string
	// Количество записей на странице журнала аудита
	AuditPageSize int

	// --- topologymetrics ---

	// Группа в метриках зависимостей
	DephealthGroup string
	// Интервал проверки зависимостей
	DephealthCheckInterval time.Duration

	// --- Graceful shutdown ---

	// Таймаут graceful shutdown HTTP-сервера
	ShutdownTimeout time.Duration
}

// Load загружает конфигурацию из переменных окружения, валидирует
// обязательные поля и возвращает Config или ошибку.
func Load() (*Config, error) {
	cfg := &Config{}
	var err error

	// --- Сервер ---

	// MQ_PORT — порт HTTP-сервера (по умолчанию 8080)
	cfg.Port, err = getEnvInt("MQ_PORT", 8080)
	if err != nil {
		return nil, fmt.Errorf("MQ_PORT: %w", err)
	}
	if cfg.Port < 1 || cfg.Port > 65535 {
		return nil, fmt.Errorf("MQ_PORT: значение %d вне допустимого диапазона 1-65535", cfg.Port)
	}

	// MQ_LOG_LEVEL — уровень логирования (по умолчанию info)
	cfg.LogLevel, err = parseLogLevel(getEnvDefault("MQ_LOG_LEVEL", "info"))
	if err != nil {
		return nil, fmt.Errorf("MQ_LOG_LEVEL: %w", err)
	}

	// MQ_LOG_FORMAT — формат логов (по умолчанию json)
	cfg.LogFormat = getEnvDefault("MQ_LOG_FORMAT", "json")
	if cfg.LogFormat != "json" && cfg.LogFormat != "text" {
		return nil, fmt.Errorf("MQ_LOG_FORMAT: недопустимое значение %q, допустимые: json, text", cfg.LogFormat)
	}

	// --- Backend ---

	// MQ_BACKEND_URL — обязательный
	cfg.BackendURL, err = getEnvRequired("MQ_BACKEND_URL")
	if err != nil {
		return nil, err
	}
	cfg.BackendURL = strings.TrimRight(cfg.BackendURL, "/")
	if u, parseErr := url.Parse(cfg.BackendURL); parseErr != nil || (u.Scheme != "http" && u.Scheme != "https") || u.Host == "" {
		return nil, fmt.Errorf("MQ_BACKEND_URL: некорректный URL %q", cfg.BackendURL)
	}

	// MQ_BACKEND_CA_CERT_PATH — путь к CA-сертификату backend (опционально)
	cfg.BackendCACertPath = getEnvDefault("MQ_BACKEND_CA_CERT_PATH", "")

	// MQ_BACKEND_TIMEOUT — таймаут HTTP-клиента backend (по умолчанию 30s)
	cfg.BackendTimeout, err = getEnvDuration("MQ_BACKEND_TIMEOUT", 30*time.Second)
	if err != nil {
		return nil, fmt.Errorf("MQ_BACKEND_TIMEOUT: %w", err)
	}

	// --- JWT ---

	cfg.JWKSURL = getEnvDefault("MQ_JWKS_URL", "")
	cfg.JWTIssuer = getEnvDefault("MQ_JWT_ISSUER", "")

	// --- UI-сессии ---

	cfg.SessionSecret = getEnvDefault("MQ_SESSION_SECRET", "")
	cfg.CSRFKey = getEnvDefault("MQ_CSRF_KEY", "")

	// MQ_SECURE_COOKIE — Secure flag для cookie (по умолчанию: true, если backend по https)
	cfg.SecureCookie, err = getEnvBool("MQ_SECURE_COOKIE", strings.HasPrefix(cfg.BackendURL, "https://"))
	if err != nil {
		return nil, fmt.Errorf("MQ_SECURE_COOKIE: %w", err)
	}

	// MQ_STATE_MAX_ENTRIES — размер LRU состояний таблиц (по умолчанию 10000)
	cfg.StateMaxEntries, err = getEnvInt("MQ_STATE_MAX_ENTRIES", 10000)
	if err != nil {
		return nil, fmt.Errorf("MQ_STATE_MAX_ENTRIES: %w", err)
	}
	if cfg.StateMaxEntries < 1 {
		return nil, fmt.Errorf("MQ_STATE_MAX_ENTRIES: значение %d должно быть положительным", cfg.StateMaxEntries)
	}

	// MQ_STATE_TTL — время жизни состояния таблиц (по умолчанию 24h)
	cfg.StateTTL, err = getEnvDuration("MQ_STATE_TTL", 24*time.Hour)
	if err != nil {
		return nil, fmt.Errorf("MQ_STATE_TTL: %w", err)
	}

	// --- PostgreSQL ---

	// MQ_DB_HOST — опциональный; без него журнал аудита отключён
	cfg.DBHost = getEnvDefault("MQ_DB_HOST", "")

	cfg.DBPort, err = getEnvInt("MQ_DB_PORT", 5432)
	if err != nil {
		return nil, fmt.Errorf("MQ_DB_PORT: %w", err)
	}

	if cfg.DBHost != "" {
		// Остальные параметры БД обязательны, если задан хост
		if cfg.DBName, err = getEnvRequired("MQ_DB_NAME"); err != nil {
			return nil, err
		}
		if cfg.DBUser, err = getEnvRequired("MQ_DB_USER"); err != nil {
			return nil, err
		}
		if cfg.DBPassword, err = getEnvRequired("MQ_DB_PASSWORD"); err != nil {
			return nil, err
		}
	}

	// MQ_DB_SSL_MODE — режим SSL (по умолчанию disable)
	cfg.DBSSLMode = getEnvDefault("MQ_DB_SSL_MODE", "disable")
	validSSLModes := map[string]bool{
		"disable": true, "require": true, "verify-ca": true, "verify-full": true,
	}
	if !validSSLModes[cfg.DBSSLMode] {
		return nil, fmt.Errorf("MQ_DB_SSL_MODE: недопустимое значение %q, допустимые: disable, require, verify-ca, verify-full", cfg.DBSSLMode)
	}

	// MQ_AUDIT_PAGE_SIZE — записей на странице журнала (по умолчанию 100)
	cfg.AuditPageSize, err = getEnvInt("MQ_AUDIT_PAGE_SIZE", 100)
	if err != nil {
		return nil, fmt.Errorf("MQ_AUDIT_PAGE_SIZE: %w", err)
	}
	if cfg.AuditPageSize < 1 || cfg.AuditPageSize > 1000 {
		return nil, fmt.Errorf("MQ_AUDIT_PAGE_SIZE: значение %d вне допустимого диапазона 1-1000", cfg.AuditPageSize)
	}

	// --- topologymetrics ---

	cfg.DephealthGroup = getEnvDefault("MQ_DEPHEALTH_GROUP", "munquest")

	cfg.DephealthCheckInterval, err = getEnvDuration("MQ_DEPHEALTH_CHECK_INTERVAL", 15*time.Second)
	if err != nil {
		return nil, fmt.Errorf("MQ_DEPHEALTH_CHECK_INTERVAL: %w", err)
	}

	// --- Graceful shutdown ---

	cfg.ShutdownTimeout, err = getEnvDuration("MQ_SHUTDOWN_TIMEOUT", 5*time.Second)
	if err != nil {
		return nil, fmt.Errorf("MQ_SHUTDOWN_TIMEOUT: %w", err)
	}

	return cfg, nil
}

// AuditEnabled сообщает, настроен ли PostgreSQL для журнала аудита.
func (c *Config) AuditEnabled() bool {
	return c.DBHost != ""
}

// DatabaseDSN возвращает строку подключения к PostgreSQL.
func (c *Config) DatabaseDSN() string {
	return fmt.Sprintf(
		"host=%s port=%d dbname=%s user=%s password=%s sslmode=%s",
		c.DBHost, c.DBPort, c.DBName, c.DBUser, c.DBPassword, c.DBSSLMode,
	)
}

// DatabaseURL возвращает URL PostgreSQL (для лейблов topologymetrics и golang-migrate).
func (c *Config) DatabaseURL() string {
	return fmt.Sprintf("postgres://%s:%s@%s:%d/%s?sslmode=%s",
		url.QueryEscape(c.DBUser), url.QueryEscape(c.DBPassword),
		c.DBHost, c.DBPort, c.DBName, c.DBSSLMode,
	)
}

// SetupLogger настраивает глобальный slog-логгер на основе конфигурации.
func SetupLogger(cfg *Config) *slog.Logger {
	opts := &slog.HandlerOptions{
		Level: cfg.LogLevel,
	}

	var handler slog.Handler
	if cfg.LogFormat == "json" {
		handler = slog.NewJSONHandler(os.Stdout, opts)
	} else {
		handler = slog.NewTextHandler(os.Stdout, opts)
	}

	logger := slog.New(handler)
	slog.SetDefault(logger)
	return logger
}

// --- Вспомогательные функции ---

// getEnvRequired возвращает значение переменной окружения или ошибку, если она не задана.
func getEnvRequired(key string) (string, error) {
	val := os.Getenv(key)
	if val == "" {
		return "", fmt.Errorf("%s: обязательная переменная окружения не задана", key)
	}
	return val, nil
}

// getEnvDefault возвращает значение переменной окружения или значение по умолчанию.
func getEnvDefault(key, defaultVal string) string {
	val := os.Getenv(key)
	if val == "" {
		return defaultVal
	}
	return val
}

// getEnvInt возвращает целочисленное значение переменной окружения или значение по умолчанию.
func getEnvInt(key string, defaultVal int) (int, error) {
	val := os.Getenv(key)
	if val == "" {
		return defaultVal, nil
	}
	n, err := strconv.Atoi(val)
	if err != nil {
		return 0, fmt.Errorf("некорректное целое число: %q", val)
	}
	return n, nil
}

// getEnvBool возвращает булево значение переменной окружения или значение по умолчанию.
func getEnvBool(key string, defaultVal bool) (bool, error) {
	val := os.Getenv(key)
	if val == "" {
		return defaultVal, nil
	}
	b, err := strconv.ParseBool(val)
	if err != nil {
		return false, fmt.Errorf("некорректное булево значение: %q", val)
	}
	return b, nil
}

// getEnvDuration возвращает time.Duration из переменной окружения или значение по умолчанию.
func getEnvDuration(key string, defaultVal time.Duration) (time.Duration, error) {
	val := os.Getenv(key)
	if val == "" {
		return defaultVal, nil
	}
	d, err := time.ParseDuration(val)
	if err != nil {
		return 0, fmt.Errorf("некорректная длительность: %q (используйте формат Go: 30s, 1h, 15m)", val)
	}
	return d, nil
}

// parseLogLevel преобразует строку уровня логирования в slog.Level.
func parseLogLevel(level string) (slog.Level, error) {
	switch strings.ToLower(level) {
	case "debug":
		return slog.LevelDebug, nil
	case "info":
		return slog.LevelInfo, nil
	case "warn", "warning":
		return slog.LevelWarn, nil
	case "error":
		return slog.LevelError, nil
	default:
		return slog.LevelInfo, fmt.Errorf("недопустимый уровень %q, допустимые: debug, info, warn, error", level)
	}
}
