// Пакет handlers — HTTP-обработчики портала администратора.
// Страницы работают по схеме POST → redirect → GET: изменяющие запросы
// выполняют операцию над состоянием сессии и перенаправляют на страницу,
// страница рендерит текущее состояние и накопленные тосты.
package handlers

import (
	"log/slog"
	"net/http"

	"github.com/a-h/templ"

	"github.com/munquest/admin-portal/internal/service"
	"github.com/munquest/admin-portal/internal/ui/auth"
	"github.com/munquest/admin-portal/internal/ui/i18n"
	uimiddleware "github.com/munquest/admin-portal/internal/ui/middleware"
	"github.com/munquest/admin-portal/internal/ui/pages"
	"github.com/munquest/admin-portal/internal/ui/state"
)

// DashboardPath — главная страница портала.
const DashboardPath = "/admin/"

// Заголовки частичного обновления (соглашение htmx).
const (
	partialRequestHeader  = "HX-Request"
	partialRedirectHeader = "HX-Redirect"
)

// isPartial — запрос ожидает фрагмент страницы вместо перенаправления.
func isPartial(r *http.Request) bool {
	return r.Header.Get(partialRequestHeader) == "true"
}

// Pages — общие зависимости обработчиков страниц.
type Pages struct {
	Store  *state.Store
	Tables *service.Tables
	Auth   *uimiddleware.UIAuth
	// AuditEnabled — показывать раздел журнала аудита
	AuditEnabled bool
}

// nav строит боковое меню: главная, доступные таблицы и журнал аудита.
func (p *Pages) nav(r *http.Request, s *auth.SessionData, active string) []pages.NavItem {
	ctx := r.Context()
	items := []pages.NavItem{{Href: DashboardPath, Label: i18n.T(ctx, "nav.dashboard"), Active: active == ""}}
	for _, res := range p.Tables.List() {
		if res.Scoped || !res.Allowed(s.UserRole, s.GlobalRole, s.OrganiserID) {
			continue
		}
		items = append(items, pages.NavItem{
			Href:   "/admin/" + res.Key,
			Label:  i18n.T(ctx, "tables."+res.Key),
			Active: active == res.Key,
		})
	}
	if p.AuditEnabled && s.CanManagePlatform() {
		items = append(items, pages.NavItem{Href: "/admin/audit", Label: i18n.T(ctx, "nav.audit"), Active: active == "audit"})
	}
	return items
}

// render выводит страницу в общем каркасе и забирает тосты сессии.
func (p *Pages) render(w http.ResponseWriter, r *http.Request, logger *slog.Logger,
	s *auth.SessionData, title, active string, body templ.Component,
) {
	data := pages.LayoutData{
		Title:      title,
		UserID:     s.UserID,
		Email:      s.Email,
		GlobalRole: s.GlobalRole,
		Nav:        p.nav(r, s, active),
		Toasts:     p.Store.Get(s.SID).Toasts.Drain(),
		CSRFToken:  uimiddleware.CSRFToken(r),
	}

	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	if err := pages.Layout(data, body).Render(r.Context(), w); err != nil {
		logger.Error("Ошибка рендеринга страницы",
			slog.String("page", active),
			slog.String("error", err.Error()),
		)
		http.Error(w, "Ошибка рендеринга страницы", http.StatusInternalServerError)
	}
}

// endSession завершает сессию после ошибки аутентификации backend.
// Частичному запросу адрес входа передаётся заголовком HX-Redirect.
func (p *Pages) endSession(w http.ResponseWriter, r *http.Request, s *auth.SessionData) {
	p.Auth.End(w, s)
	if isPartial(r) {
		w.Header().Set(partialRedirectHeader, uimiddleware.LoginPath)
		w.WriteHeader(http.StatusOK)
		return
	}
	http.Redirect(w, r, uimiddleware.LoginPath, http.StatusSeeOther)
}

// session возвращает сессию запроса или перенаправляет на вход.
func session(w http.ResponseWriter, r *http.Request) (*auth.SessionData, bool) {
	s := uimiddleware.SessionFromContext(r.Context())
	if s == nil {
		http.Redirect(w, r, uimiddleware.LoginPath, http.StatusFound)
		return nil, false
	}
	return s, true
}
