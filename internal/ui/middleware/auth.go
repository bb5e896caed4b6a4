// Пакет middleware — HTTP middleware для Admin UI.
// auth.go — проверка UI-сессии (cookie-based) и прав доступа к разделам.
package middleware

import (
	"context"
	"log/slog"
	"net/http"

	"github.com/munquest/admin-portal/internal/ui/auth"
)

// contextKey — тип для ключей контекста UI (избегаем коллизий с API middleware).
type contextKey string

const (
	// ContextKeyUISession — данные UI-сессии в контексте запроса.
	ContextKeyUISession contextKey = "ui_session"
)

// LoginPath — страница входа.
const LoginPath = "/admin/login"

// SessionEndHook вызывается при завершении сессии (истёкший токен).
// Используется для очистки состояния таблиц сессии.
type SessionEndHook func(sid string)

// UIAuth — middleware для проверки аутентификации UI-пользователей.
// Извлекает сессию из зашифрованного cookie, redirect на /admin/login
// при отсутствии или истечении сессии.
type UIAuth struct {
	sessionManager *auth.SessionManager
	onEnd          SessionEndHook
	logger         *slog.Logger
}

// NewUIAuth создаёт новый UIAuth middleware. onEnd может быть nil.
func NewUIAuth(sessionManager *auth.SessionManager, onEnd SessionEndHook, logger *slog.Logger) *UIAuth {
	return &UIAuth{
		sessionManager: sessionManager,
		onEnd:          onEnd,
		logger:         logger.With(slog.String("component", "ui_auth_middleware")),
	}
}

// Middleware возвращает HTTP middleware для проверки UI-сессии.
// Применяется к маршрутам /admin/*, кроме /admin/login.
func (ua *UIAuth) Middleware() func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			session, err := ua.sessionManager.GetSessionFromRequest(r)
			if err != nil {
				ua.logger.Debug("Ошибка чтения UI-сессии",
					slog.String("error", err.Error()),
					slog.String("remote_addr", r.RemoteAddr),
				)
				// Повреждённый cookie — очищаем и redirect на login
				ua.sessionManager.ClearSessionCookie(w)
				http.Redirect(w, r, LoginPath, http.StatusFound)
				return
			}

			if session == nil || session.Token == "" {
				http.Redirect(w, r, LoginPath, http.StatusFound)
				return
			}

			if session.IsExpired() {
				ua.logger.Info("Сессия истекла, redirect на login",
					slog.String("user_id", session.UserID),
				)
				ua.End(w, session)
				http.Redirect(w, r, LoginPath, http.StatusFound)
				return
			}

			ctx := context.WithValue(r.Context(), ContextKeyUISession, session)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

// End завершает сессию: удаляет cookie и состояние таблиц.
func (ua *UIAuth) End(w http.ResponseWriter, session *auth.SessionData) {
	ua.sessionManager.ClearSessionCookie(w)
	if ua.onEnd != nil && session != nil && session.SID != "" {
		ua.onEnd(session.SID)
	}
}

// RequirePlatform пропускает только пользователей с глобальной ролью admin/superadmin.
func RequirePlatform(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		session := SessionFromContext(r.Context())
		if session == nil || !session.CanManagePlatform() {
			http.Error(w, "Недостаточно прав", http.StatusForbidden)
			return
		}
		next.ServeHTTP(w, r)
	})
}

// RequireOrganiser пропускает только организаторов с organiserId.
func RequireOrganiser(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		session := SessionFromContext(r.Context())
		if session == nil || !session.CanManageOrganiser() {
			http.Error(w, "Недостаточно прав", http.StatusForbidden)
			return
		}
		next.ServeHTTP(w, r)
	})
}

// SessionFromContext извлекает SessionData из контекста запроса.
// Возвращает nil если сессия не найдена (не прошёл через UIAuth middleware).
func SessionFromContext(ctx context.Context) *auth.SessionData {
	session, ok := ctx.Value(ContextKeyUISession).(*auth.SessionData)
	if !ok {
		return nil
	}
	return session
}

// WithSession помещает сессию в контекст.
func WithSession(ctx context.Context, session *auth.SessionData) context.Context {
	return context.WithValue(ctx, ContextKeyUISession, session)
}
