// Пакет backend — HTTP-клиент к REST API backend MunQuest.
// Одна функция на операцию backend: списки, создание, обновление, удаление
// и доменные действия (статус пользователя, глобальная роль, порядок ролей).
// Каждый запрос несёт Bearer-токен из явно переданной сессии.
// Повторов и backoff нет: один запрос на вызов, отмена — через context.
package backend

import (
	"bytes"
	"context"
	"crypto/tls"
	"crypto/x509"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"os"
	"strings"
	"time"
)

// apiPrefix — общий префикс REST API backend.
const apiPrefix = "/api/v1"

// maxResponseSize — ограничение размера тела ответа (10 MiB).
const maxResponseSize = 10 << 20

// Session — данные сессии, необходимые для запросов к backend.
// Передаётся явно в каждый вызов вместо глобального хранилища.
type Session struct {
	// Token — bearer-токен backend
	Token string
	// UserID — идентификатор пользователя
	UserID string
	// OrganiserID — идентификатор организатора (для таблиц организатора)
	OrganiserID string
}

// Client — HTTP-клиент backend MunQuest.
type Client struct {
	baseURL    string
	httpClient *http.Client
	schemas    *schemaSet
	logger     *slog.Logger
}

// New создаёт клиент backend.
// baseURL — базовый URL (например, https://api.munquest.org).
// caCertPath — путь к CA-сертификату для TLS (пустая строка — стандартный пул).
// timeout — таймаут HTTP-клиента.
func New(baseURL, caCertPath string, timeout time.Duration, logger *slog.Logger) (*Client, error) {
	httpClient := &http.Client{Timeout: timeout}

	if caCertPath != "" {
		tlsConfig, err := buildTLSConfig(caCertPath)
		if err != nil {
			return nil, fmt.Errorf("загрузка CA-сертификата backend: %w", err)
		}
		httpClient.Transport = &http.Transport{
			TLSClientConfig: tlsConfig,
		}
		logger.Info("CA-сертификат backend добавлен в пул доверия",
			slog.String("ca_cert", caCertPath),
		)
	}

	return NewWithHTTPClient(baseURL, httpClient, logger)
}

// NewWithHTTPClient создаёт клиент с готовым *http.Client.
// Используется в тестах с httptest.Server.
func NewWithHTTPClient(baseURL string, httpClient *http.Client, logger *slog.Logger) (*Client, error) {
	schemas, err := loadSchemas()
	if err != nil {
		return nil, err
	}

	return &Client{
		baseURL:    strings.TrimRight(baseURL, "/"),
		httpClient: httpClient,
		schemas:    schemas,
		logger:     logger.With(slog.String("component", "backend_client")),
	}, nil
}

// buildTLSConfig создаёт TLS-конфигурацию с кастомным CA.
func buildTLSConfig(caCertPath string) (*tls.Config, error) {
	caCert, err := os.ReadFile(caCertPath)
	if err != nil {
		return nil, fmt.Errorf("чтение CA-сертификата: %w", err)
	}

	caCertPool, err := x509.SystemCertPool()
	if err != nil {
		caCertPool = x509.NewCertPool()
	}
	caCertPool.AppendCertsFromPEM(caCert)

	return &tls.Config{
		RootCAs: caCertPool,
	}, nil
}

// --- HTTP helpers ---

// do выполняет запрос к backend и возвращает тело успешного (2xx) ответа.
// op — имя операции для метрик и ошибок.
// Ошибки транспорта и не-2xx статусы возвращаются как *APIError.
func (c *Client) do(ctx context.Context, s *Session, op, method, path string, body any) ([]byte, error) {
	start := time.Now()

	var bodyReader io.Reader
	if body != nil {
		data, err := json.Marshal(body)
		if err != nil {
			return nil, fmt.Errorf("%s: сериализация тела запроса: %w", op, err)
		}
		bodyReader = bytes.NewReader(data)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+apiPrefix+path, bodyReader)
	if err != nil {
		return nil, fmt.Errorf("%s: создание запроса: %w", op, err)
	}

	if s != nil && s.Token != "" {
		req.Header.Set("Authorization", "Bearer "+s.Token)
	}
	// Чтения тоже несут Content-Type, как и запросы с телом
	if body != nil || method == http.MethodGet {
		req.Header.Set("Content-Type", "application/json")
	}
	req.Header.Set("Accept", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		observeRequest(op, outcomeTransport, start)
		c.logger.Warn("Запрос к backend не выполнен",
			slog.String("operation", op),
			slog.String("error", err.Error()),
		)
		return nil, &APIError{Op: op, Message: networkErrorMessage, Err: err}
	}
	defer resp.Body.Close()

	data, err := io.ReadAll(io.LimitReader(resp.Body, maxResponseSize))
	if err != nil {
		observeRequest(op, outcomeTransport, start)
		return nil, &APIError{Op: op, Status: resp.StatusCode, Message: networkErrorMessage, Err: err}
	}

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		apiErr := newAPIError(op, resp.StatusCode, data)
		if IsAuthError(apiErr) {
			observeRequest(op, outcomeAuth, start)
		} else {
			observeRequest(op, outcomeHTTPError, start)
		}
		c.logger.Debug("backend вернул ошибку",
			slog.String("operation", op),
			slog.Int("status", resp.StatusCode),
			slog.String("message", apiErr.Message),
		)
		return nil, apiErr
	}

	observeRequest(op, outcomeOK, start)
	return data, nil
}

// decode проверяет тело ответа по схеме schemaName и декодирует его в target.
func (c *Client) decode(op, schemaName string, data []byte, target any) error {
	if err := c.schemas.Validate(schemaName, data); err != nil {
		c.logger.Warn("Ответ backend не соответствует схеме",
			slog.String("operation", op),
			slog.String("schema", schemaName),
			slog.String("error", err.Error()),
		)
		return fmt.Errorf("%s: %w: %v", op, ErrInvalidResponse, err)
	}
	if err := json.Unmarshal(data, target); err != nil {
		return fmt.Errorf("%s: %w: %v", op, ErrInvalidResponse, err)
	}
	return nil
}

// mutate выполняет изменяющий запрос и возвращает статус из конверта ответа.
func (c *Client) mutate(ctx context.Context, s Session, op, method, path string, body any) (*Status, error) {
	data, err := c.do(ctx, &s, op, method, path, body)
	if err != nil {
		return nil, err
	}

	var st Status
	if err := c.decode(op, "StatusResponse", data, &st); err != nil {
		return nil, err
	}
	return &st, nil
}

// validatable — запись, умеющая проверить собственные поля.
type validatable interface {
	Validate() error
}

// list выполняет GET-запрос списка, проверяет ответ по схеме и каждую запись отдельно.
// Записи, не прошедшие Validate, отбрасываются и учитываются в Rejected.
func list[T validatable](ctx context.Context, c *Client, s Session, op, path, schemaName string) (*ListResult[T], error) {
	data, err := c.do(ctx, &s, op, http.MethodGet, path, nil)
	if err != nil {
		return nil, err
	}

	var env Envelope[[]T]
	if err := c.decode(op, schemaName, data, &env); err != nil {
		return nil, err
	}

	result := &ListResult[T]{
		Status: Status{Success: env.Success, Message: env.Message},
		Items:  make([]T, 0, len(env.Data)),
	}
	for _, item := range env.Data {
		if err := item.Validate(); err != nil {
			result.Rejected++
			c.logger.Warn("Запись backend отброшена",
				slog.String("operation", op),
				slog.String("error", err.Error()),
			)
			continue
		}
		result.Items = append(result.Items, item)
	}
	return result, nil
}

// --- Readiness checker ---

// CheckReady проверяет доступность backend.
// Любой HTTP-ответ ниже 500 означает, что backend отвечает.
func (c *Client) CheckReady() (string, string) {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+apiPrefix, nil)
	if err != nil {
		return "fail", err.Error()
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return "fail", fmt.Sprintf("backend недоступен: %v", err)
	}
	defer resp.Body.Close()
	_, _ = io.Copy(io.Discard, resp.Body)

	if resp.StatusCode >= 500 {
		return "degraded", fmt.Sprintf("backend вернул статус %d", resp.StatusCode)
	}
	return "ok", "backend доступен"
}

// BaseURL возвращает базовый URL backend (для мониторинга зависимостей).
func (c *Client) BaseURL() string {
	return c.baseURL
}
