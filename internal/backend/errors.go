package backend

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strings"
)

// DefaultErrorMessage — сообщение, если backend не сообщил причину ошибки.
const DefaultErrorMessage = "Something went wrong"

// networkErrorMessage — сообщение при ошибке транспорта.
const networkErrorMessage = "Network error: unable to reach server"

// ErrInvalidResponse — ответ backend не соответствует ожидаемой схеме.
var ErrInvalidResponse = errors.New("некорректный ответ backend")

// APIError — ошибка запроса к backend: транспортная (Status == 0) или HTTP не-2xx.
type APIError struct {
	// Op — операция клиента (list_committees, update_user, ...)
	Op string
	// Status — HTTP-статус; 0 при ошибке транспорта
	Status int
	// Message — сообщение для пользователя
	Message string
	// Fields — ошибки валидации по полям, если backend их вернул
	Fields map[string]string
	// Err — исходная ошибка транспорта
	Err error
}

// Error реализует интерфейс error.
func (e *APIError) Error() string {
	if e.Status == 0 {
		return fmt.Sprintf("%s: %s: %v", e.Op, e.Message, e.Err)
	}
	return fmt.Sprintf("%s: HTTP %d: %s", e.Op, e.Status, e.Message)
}

// Unwrap возвращает исходную ошибку транспорта.
func (e *APIError) Unwrap() error {
	return e.Err
}

// IsAuthError сообщает, что ошибка связана с аутентификацией:
// 401 или 403 с сообщением о токене. Такие ошибки не показываются тостом,
// UI очищает сессию и перенаправляет на страницу входа.
func IsAuthError(err error) bool {
	var apiErr *APIError
	if !errors.As(err, &apiErr) {
		return false
	}
	switch apiErr.Status {
	case http.StatusUnauthorized:
		return true
	case http.StatusForbidden:
		msg := strings.ToLower(apiErr.Message)
		return strings.Contains(msg, "token") || strings.Contains(msg, "jwt") ||
			strings.Contains(msg, "expired")
	}
	return false
}

// Message возвращает пользовательское сообщение ошибки или DefaultErrorMessage.
func Message(err error) string {
	var apiErr *APIError
	if errors.As(err, &apiErr) && apiErr.Message != "" {
		return apiErr.Message
	}
	return DefaultErrorMessage
}

// errorBody — возможные формы тела ошибки backend.
type errorBody struct {
	Message string          `json:"message"`
	Error   json.RawMessage `json:"error"`
	Errors  json.RawMessage `json:"errors"`
}

// newAPIError разбирает тело ошибки backend.
// Сообщение ищется в message, error.message, error (строка), errors[0];
// errors в виде объекта сохраняется как ошибки по полям.
func newAPIError(op string, status int, body []byte) *APIError {
	apiErr := &APIError{Op: op, Status: status, Message: DefaultErrorMessage}

	var eb errorBody
	if err := json.Unmarshal(body, &eb); err != nil {
		return apiErr
	}

	fields := parseFieldErrors(eb.Errors)
	if len(fields) > 0 {
		apiErr.Fields = fields
	}

	switch {
	case strings.TrimSpace(eb.Message) != "":
		apiErr.Message = eb.Message
	case nestedMessage(eb.Error) != "":
		apiErr.Message = nestedMessage(eb.Error)
	case firstListMessage(eb.Errors) != "":
		apiErr.Message = firstListMessage(eb.Errors)
	}
	return apiErr
}

// nestedMessage извлекает сообщение из поля error: строка или объект с message.
func nestedMessage(raw json.RawMessage) string {
	if len(raw) == 0 {
		return ""
	}
	var s string
	if err := json.Unmarshal(raw, &s); err == nil {
		return strings.TrimSpace(s)
	}
	var obj struct {
		Message string `json:"message"`
	}
	if err := json.Unmarshal(raw, &obj); err == nil {
		return strings.TrimSpace(obj.Message)
	}
	return ""
}

// firstListMessage извлекает первое сообщение из массива errors.
func firstListMessage(raw json.RawMessage) string {
	if len(raw) == 0 {
		return ""
	}
	var list []json.RawMessage
	if err := json.Unmarshal(raw, &list); err != nil || len(list) == 0 {
		return ""
	}
	return nestedMessage(list[0])
}

// parseFieldErrors разбирает errors в виде {"field": "message"}.
func parseFieldErrors(raw json.RawMessage) map[string]string {
	if len(raw) == 0 {
		return nil
	}
	var fields map[string]string
	if err := json.Unmarshal(raw, &fields); err != nil {
		return nil
	}
	return fields
}
