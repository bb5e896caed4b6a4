// csrf.go — защита POST-форм Admin UI от CSRF (gorilla/csrf).
package middleware

import (
	"crypto/sha256"
	"log/slog"
	"net/http"

	"github.com/gorilla/csrf"
)

// CSRFFieldName — имя скрытого поля формы с токеном.
const CSRFFieldName = "csrf_token"

// CSRF возвращает middleware проверки CSRF-токена для форм /admin.
// key — произвольная строка, из неё выводится 32-байтный ключ.
// Без secure запросы помечаются как plaintext HTTP: проверка Referer
// для https не применяется.
func CSRF(key string, secure bool, logger *slog.Logger) func(http.Handler) http.Handler {
	logger = logger.With(slog.String("component", "csrf"))
	authKey := sha256.Sum256([]byte(key))

	protect := csrf.Protect(
		authKey[:],
		csrf.Secure(secure),
		csrf.Path("/admin"),
		csrf.FieldName(CSRFFieldName),
		csrf.SameSite(csrf.SameSiteLaxMode),
		csrf.ErrorHandler(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			reason := "unknown"
			if err := csrf.FailureReason(r); err != nil {
				reason = err.Error()
			}
			logger.Warn("CSRF-проверка не пройдена",
				slog.String("path", r.URL.Path),
				slog.String("reason", reason),
			)
			http.Error(w, "Недействительный CSRF-токен, обновите страницу", http.StatusForbidden)
		})),
	)

	return func(next http.Handler) http.Handler {
		protected := protect(next)
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if !secure {
				r = csrf.PlaintextHTTPRequest(r)
			}
			protected.ServeHTTP(w, r)
		})
	}
}

// CSRFToken возвращает токен для текущего запроса.
func CSRFToken(r *http.Request) string {
	return csrf.Token(r)
}
