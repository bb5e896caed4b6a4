// tables.go — страницы таблиц: показ, фильтрация и действия над строками.
// Все таблицы обслуживаются одним обработчиком; ресурс определяется реестром.
package handlers

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"net/url"
	"strings"

	"github.com/go-chi/chi/v5"

	"github.com/munquest/admin-portal/internal/backend"
	"github.com/munquest/admin-portal/internal/service"
	"github.com/munquest/admin-portal/internal/table"
	"github.com/munquest/admin-portal/internal/ui/auth"
	"github.com/munquest/admin-portal/internal/ui/i18n"
	uimiddleware "github.com/munquest/admin-portal/internal/ui/middleware"
	"github.com/munquest/admin-portal/internal/ui/pages"
)

// EventRolesPattern — маршрут таблицы ролей мероприятия.
const EventRolesPattern = "/admin/events/{eventId}/leadership-roles"

// TableHandler — обработчик страниц таблиц.
type TableHandler struct {
	*Pages
	catalog *service.Catalog
	logger  *slog.Logger
}

// NewTableHandler создаёт TableHandler.
func NewTableHandler(p *Pages, catalog *service.Catalog, logger *slog.Logger) *TableHandler {
	return &TableHandler{
		Pages:   p,
		catalog: catalog,
		logger:  logger.With(slog.String("component", "ui.tables")),
	}
}

// Mount регистрирует страницы всех таблиц реестра:
// /admin/{key} для обычных таблиц и EventRolesPattern для таблицы мероприятия.
func (h *TableHandler) Mount(router chi.Router) {
	for _, res := range h.Tables.List() {
		pattern := "/admin/" + res.Key
		if res.Scoped {
			pattern = EventRolesPattern
		}
		router.Route(pattern, func(r chi.Router) {
			h.routes(r, res)
		})
	}
	router.With(uimiddleware.RequireOrganiser).Get("/admin/events", h.HandleOpenEvent)
}

// tableOp — операция над таблицей, выполняемая POST-запросом.
type tableOp func(ctx context.Context, c table.Controller, s backend.Session, r *http.Request) error

func (h *TableHandler) routes(r chi.Router, res service.Resource) {
	r.Use(h.guard(res))
	r.Get("/", h.show(res))

	post := func(pattern string, op tableOp) {
		r.Post(pattern, h.mutate(res, op))
	}

	post("/refresh", func(ctx context.Context, c table.Controller, s backend.Session, _ *http.Request) error {
		return c.Refresh(ctx, s)
	})

	post("/menu/close", func(_ context.Context, c table.Controller, _ backend.Session, _ *http.Request) error {
		c.OutsideClick(false)
		return nil
	})
	post("/menu/{id}", func(_ context.Context, c table.Controller, _ backend.Session, r *http.Request) error {
		c.ToggleMenu(chi.URLParam(r, "id"))
		return nil
	})

	post("/edit/cancel", func(_ context.Context, c table.Controller, _ backend.Session, _ *http.Request) error {
		c.CancelEdit()
		return nil
	})
	post("/edit/{id}", func(_ context.Context, c table.Controller, _ backend.Session, r *http.Request) error {
		return c.BeginEdit(chi.URLParam(r, "id"))
	})
	post("/edit/{id}/save", func(ctx context.Context, c table.Controller, s backend.Session, r *http.Request) error {
		c.SetEditValues(formValues(r, c.FieldKeys()))
		return c.SaveEdit(ctx, s)
	})

	post("/add", func(_ context.Context, c table.Controller, _ backend.Session, _ *http.Request) error {
		return c.BeginAdd()
	})
	post("/add/save", func(ctx context.Context, c table.Controller, s backend.Session, r *http.Request) error {
		c.SetAddValues(formValues(r, c.FieldKeys()))
		return c.SaveAdd(ctx, s)
	})
	post("/add/cancel", func(_ context.Context, c table.Controller, _ backend.Session, _ *http.Request) error {
		c.CancelAdd()
		return nil
	})

	post("/delete/confirm", func(ctx context.Context, c table.Controller, s backend.Session, _ *http.Request) error {
		return c.ConfirmDelete(ctx, s)
	})
	post("/delete/cancel", func(_ context.Context, c table.Controller, _ backend.Session, _ *http.Request) error {
		c.CancelDelete()
		return nil
	})
	post("/delete/{id}", func(_ context.Context, c table.Controller, _ backend.Session, r *http.Request) error {
		return c.RequestDelete(chi.URLParam(r, "id"))
	})

	post("/action/{id}/{action}", func(ctx context.Context, c table.Controller, s backend.Session, r *http.Request) error {
		return c.RunAction(ctx, s, chi.URLParam(r, "id"), chi.URLParam(r, "action"), r.FormValue("arg"))
	})
}

// guard пропускает только пользователей с доступом к таблице.
func (h *TableHandler) guard(res service.Resource) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			s, ok := session(w, r)
			if !ok {
				return
			}
			if !res.Allowed(s.UserRole, s.GlobalRole, s.OrganiserID) {
				h.logger.Warn("Доступ к таблице запрещён",
					slog.String("table", res.Key),
					slog.String("user_id", s.UserID),
				)
				http.Error(w, "Недостаточно прав", http.StatusForbidden)
				return
			}
			if res.Scoped && chi.URLParam(r, "eventId") == "" {
				http.NotFound(w, r)
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}

// controller возвращает таблицу res из состояния сессии и путь её страницы.
func (h *TableHandler) controller(r *http.Request, s *auth.SessionData, res service.Resource) (table.Controller, string) {
	scope := service.Scope{
		EventID:    chi.URLParam(r, "eventId"),
		GlobalRole: s.GlobalRole,
	}
	c := h.Store.Get(s.SID).Table(res.StateKey(scope), func(n table.Notifier) table.Controller {
		return res.New(scope, n)
	})
	return c, tableBase(res, scope)
}

// tableBase — путь страницы таблицы.
func tableBase(res service.Resource, scope service.Scope) string {
	if res.Scoped {
		return "/admin/events/" + url.PathEscape(scope.EventID) + "/leadership-roles"
	}
	return "/admin/" + res.Key
}

// show обрабатывает GET страницы таблицы. Параметры q и category
// задают строку поиска и фильтр по категории.
func (h *TableHandler) show(res service.Resource) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		s, ok := session(w, r)
		if !ok {
			return
		}
		ctx := r.Context()
		c, base := h.controller(r, s, res)

		query := r.URL.Query()
		if query.Has("q") {
			c.SetSearchTerm(query.Get("q"))
		}
		if query.Has("category") {
			c.SetCategory(query.Get("category"))
		}

		if err := h.catalog.EnsureLoaded(ctx, s.Backend()); backend.IsAuthError(err) {
			h.endSession(w, r, s)
			return
		}
		if err := c.Open(ctx, s.Backend()); err != nil {
			if backend.IsAuthError(err) {
				h.endSession(w, r, s)
				return
			}
			h.logger.Debug("Таблица открыта с ошибкой загрузки",
				slog.String("table", res.Key),
				slog.String("error", err.Error()),
			)
		}

		body := pages.TablePage(pages.TableData{
			View:      c.View(),
			Base:      base,
			CSRFToken: uimiddleware.CSRFToken(r),
		})
		h.render(w, r, h.logger, s, i18n.T(ctx, "tables."+res.Key), res.Key, body)
	}
}

// mutate выполняет операцию над таблицей и перенаправляет на её страницу.
// Частичный запрос получает обновлённую панель таблицы вместе с тостами.
// Итоги операций показываются тостами контроллера; ошибка аутентификации
// backend завершает сессию.
func (h *TableHandler) mutate(res service.Resource, op tableOp) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		s, ok := session(w, r)
		if !ok {
			return
		}
		c, base := h.controller(r, s, res)

		if err := op(r.Context(), c, s.Backend(), r); err != nil {
			if backend.IsAuthError(err) {
				h.logger.Info("Токен backend отклонён, сессия завершена",
					slog.String("user_id", s.UserID),
				)
				h.endSession(w, r, s)
				return
			}
			level := slog.LevelDebug
			if !isUserFlowError(err) {
				level = slog.LevelWarn
			}
			h.logger.Log(r.Context(), level, "Операция таблицы не выполнена",
				slog.String("table", res.Key),
				slog.String("path", r.URL.Path),
				slog.String("error", err.Error()),
			)
		}
		if isPartial(r) {
			h.renderPanel(w, r, s, c, base)
			return
		}
		http.Redirect(w, r, base, http.StatusSeeOther)
	}
}

// renderPanel выводит панель таблицы без каркаса страницы.
func (h *TableHandler) renderPanel(w http.ResponseWriter, r *http.Request, s *auth.SessionData, c table.Controller, base string) {
	panel := pages.TablePanel(pages.TableData{
		View:      c.View(),
		Base:      base,
		CSRFToken: uimiddleware.CSRFToken(r),
		Toasts:    h.Store.Get(s.SID).Toasts.Drain(),
	})
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	if err := panel.Render(r.Context(), w); err != nil {
		h.logger.Error("Ошибка рендеринга панели таблицы",
			slog.String("path", base),
			slog.String("error", err.Error()),
		)
		http.Error(w, "Ошибка рендеринга страницы", http.StatusInternalServerError)
	}
}

// isUserFlowError — ошибки, ожидаемые при обычной работе с таблицей.
func isUserFlowError(err error) bool {
	for _, target := range []error{
		table.ErrValidation, table.ErrBusy, table.ErrNotFound,
		table.ErrModeActive, table.ErrIdle, table.ErrUnsupported,
		service.ErrValidation,
	} {
		if errors.Is(err, target) {
			return true
		}
	}
	var apiErr *backend.APIError
	return errors.As(err, &apiErr)
}

// formValues собирает значения редактируемых полей из формы.
// Отсутствующие в форме поля не передаются.
func formValues(r *http.Request, keys []string) table.Values {
	_ = r.ParseForm()
	v := make(table.Values, len(keys))
	for _, k := range keys {
		if vals, ok := r.PostForm[k]; ok && len(vals) > 0 {
			v[k] = vals[0]
		}
	}
	return v
}

// HandleOpenEvent обрабатывает GET /admin/events?eventId= — переход
// к таблице ролей мероприятия. Доступ проверяет RequireOrganiser.
// Таблицы ролей других мероприятий удаляются из состояния сессии.
func (h *TableHandler) HandleOpenEvent(w http.ResponseWriter, r *http.Request) {
	s, ok := session(w, r)
	if !ok {
		return
	}
	eventID := strings.TrimSpace(r.URL.Query().Get("eventId"))
	if eventID == "" {
		http.Redirect(w, r, DashboardPath, http.StatusSeeOther)
		return
	}

	keep := service.EventLeadershipRolesKey(eventID)
	st := h.Store.Get(s.SID)
	for _, key := range st.Keys() {
		if key != keep && strings.HasPrefix(key, service.KeyEventLeadershipRoles+":") {
			st.Forget(key)
			h.logger.Debug("Таблица прежнего мероприятия удалена из сессии",
				slog.String("table", key),
				slog.String("user_id", s.UserID),
			)
		}
	}
	http.Redirect(w, r, tableBase(service.Resource{Scoped: true}, service.Scope{EventID: eventID}), http.StatusSeeOther)
}
