// auth.go — вход по email и паролю через backend и выход из портала.
package handlers

import (
	"context"
	"log/slog"
	"net/http"
	"strings"

	"github.com/munquest/admin-portal/internal/backend"
	"github.com/munquest/admin-portal/internal/service"
	"github.com/munquest/admin-portal/internal/ui/auth"
	"github.com/munquest/admin-portal/internal/ui/i18n"
	uimiddleware "github.com/munquest/admin-portal/internal/ui/middleware"
	"github.com/munquest/admin-portal/internal/ui/pages"
)

// Authenticator выполняет вход в backend.
type Authenticator interface {
	Login(ctx context.Context, creds backend.Credentials) (*backend.Envelope[backend.LoginData], error)
}

// AuthHandler — обработчики входа и выхода.
type AuthHandler struct {
	authenticator  Authenticator
	tokens         *auth.TokenReader
	sessionManager *auth.SessionManager
	uiAuth         *uimiddleware.UIAuth
	catalog        *service.Catalog
	logger         *slog.Logger
}

// NewAuthHandler создаёт новый AuthHandler.
func NewAuthHandler(
	authenticator Authenticator,
	tokens *auth.TokenReader,
	sessionManager *auth.SessionManager,
	uiAuth *uimiddleware.UIAuth,
	catalog *service.Catalog,
	logger *slog.Logger,
) *AuthHandler {
	return &AuthHandler{
		authenticator:  authenticator,
		tokens:         tokens,
		sessionManager: sessionManager,
		uiAuth:         uiAuth,
		catalog:        catalog,
		logger:         logger.With(slog.String("component", "ui.auth")),
	}
}

// HandleLoginPage обрабатывает GET /admin/login.
// Пользователь с действующей сессией перенаправляется на главную.
func (h *AuthHandler) HandleLoginPage(w http.ResponseWriter, r *http.Request) {
	if s, err := h.sessionManager.GetSessionFromRequest(r); err == nil && s != nil && s.Token != "" && !s.IsExpired() {
		http.Redirect(w, r, DashboardPath, http.StatusFound)
		return
	}
	h.renderLogin(w, r, http.StatusOK, pages.LoginData{})
}

// HandleLogin обрабатывает POST /admin/login.
func (h *AuthHandler) HandleLogin(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	creds := backend.Credentials{
		Email:    strings.TrimSpace(r.FormValue("email")),
		Password: r.FormValue("password"),
	}
	form := pages.LoginData{Email: creds.Email}

	if creds.Email == "" || creds.Password == "" {
		form.Error = i18n.T(ctx, "login.required")
		h.renderLogin(w, r, http.StatusUnprocessableEntity, form)
		return
	}

	env, err := h.authenticator.Login(ctx, creds)
	if err != nil {
		h.logger.Info("Вход отклонён backend",
			slog.String("email", creds.Email),
			slog.String("error", err.Error()),
		)
		form.Error = backend.Message(err)
		if form.Error == backend.DefaultErrorMessage {
			form.Error = i18n.T(ctx, "login.failed")
		}
		h.renderLogin(w, r, http.StatusUnauthorized, form)
		return
	}
	if !env.Success || env.Data.Token == "" {
		form.Error = env.Message
		if form.Error == "" {
			form.Error = i18n.T(ctx, "login.failed")
		}
		h.renderLogin(w, r, http.StatusUnauthorized, form)
		return
	}

	claims, err := h.tokens.Read(ctx, env.Data.Token)
	if err != nil {
		h.logger.Warn("Токен входа не прошёл проверку",
			slog.String("email", creds.Email),
			slog.String("error", err.Error()),
		)
		form.Error = i18n.T(ctx, "login.failed")
		h.renderLogin(w, r, http.StatusUnauthorized, form)
		return
	}

	session := &auth.SessionData{
		SID:         auth.NewSID(),
		Token:       env.Data.Token,
		UserID:      string(env.Data.User.ID),
		OrganiserID: string(env.Data.User.OrganiserID),
		UserRole:    env.Data.User.Role,
		GlobalRole:  env.Data.User.GlobalRole,
		Email:       creds.Email,
	}
	if !claims.ExpiresAt.IsZero() {
		session.ExpiresAt = claims.ExpiresAt.Unix()
	}

	if !session.CanManagePlatform() && !session.CanManageOrganiser() {
		h.logger.Info("Вход без доступа к порталу",
			slog.String("user_id", session.UserID),
			slog.String("role", session.UserRole),
			slog.String("global_role", session.GlobalRole),
		)
		form.Error = i18n.T(ctx, "login.no_access")
		h.renderLogin(w, r, http.StatusForbidden, form)
		return
	}

	if err := h.sessionManager.SetSessionCookie(w, session); err != nil {
		h.logger.Error("Ошибка установки session cookie",
			slog.String("error", err.Error()),
		)
		http.Error(w, "Ошибка создания сессии", http.StatusInternalServerError)
		return
	}

	// Частично загруженные справочники не мешают входу.
	_ = h.catalog.Refresh(ctx, session.Backend())

	h.logger.Info("Пользователь вошёл в портал",
		slog.String("user_id", session.UserID),
		slog.String("global_role", session.GlobalRole),
	)
	http.Redirect(w, r, DashboardPath, http.StatusSeeOther)
}

// HandleLogout обрабатывает POST /admin/logout.
// Удаляет cookie и состояние таблиц сессии.
func (h *AuthHandler) HandleLogout(w http.ResponseWriter, r *http.Request) {
	if s := uimiddleware.SessionFromContext(r.Context()); s != nil {
		h.uiAuth.End(w, s)
		h.logger.Info("Пользователь вышел из портала", slog.String("user_id", s.UserID))
	} else {
		h.sessionManager.ClearSessionCookie(w)
	}
	http.Redirect(w, r, uimiddleware.LoginPath, http.StatusSeeOther)
}

func (h *AuthHandler) renderLogin(w http.ResponseWriter, r *http.Request, status int, data pages.LoginData) {
	data.CSRFToken = uimiddleware.CSRFToken(r)
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.WriteHeader(status)
	if err := pages.Login(data).Render(r.Context(), w); err != nil {
		h.logger.Error("Ошибка рендеринга страницы входа", slog.String("error", err.Error()))
	}
}
