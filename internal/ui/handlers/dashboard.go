// dashboard.go — главная страница портала и ручное обновление справочников.
package handlers

import (
	"context"
	"log/slog"
	"net/http"

	"github.com/munquest/admin-portal/internal/backend"
	"github.com/munquest/admin-portal/internal/service"
	"github.com/munquest/admin-portal/internal/ui/auth"
	"github.com/munquest/admin-portal/internal/ui/i18n"
	uimiddleware "github.com/munquest/admin-portal/internal/ui/middleware"
	"github.com/munquest/admin-portal/internal/ui/pages"
)

// DashboardHandler — обработчик главной страницы.
type DashboardHandler struct {
	*Pages
	catalog *service.Catalog
	health  *DependencyStatus
	logger  *slog.Logger
}

// NewDashboardHandler создаёт новый DashboardHandler.
func NewDashboardHandler(p *Pages, catalog *service.Catalog, health *DependencyStatus, logger *slog.Logger) *DashboardHandler {
	return &DashboardHandler{
		Pages:   p,
		catalog: catalog,
		health:  health,
		logger:  logger.With(slog.String("component", "ui.dashboard")),
	}
}

// HandleDashboard обрабатывает GET /admin/.
func (h *DashboardHandler) HandleDashboard(w http.ResponseWriter, r *http.Request) {
	s, ok := session(w, r)
	if !ok {
		return
	}
	ctx := r.Context()

	data := pages.DashboardData{
		Email:              s.Email,
		GlobalRole:         s.GlobalRole,
		UserRole:           s.UserRole,
		Cards:              h.cards(r, s),
		ShowEventForm:      s.CanManageOrganiser(),
		CatalogRefreshedAt: h.catalog.RefreshedAt(),
		CSRFToken:          uimiddleware.CSRFToken(r),
	}
	if !data.CatalogRefreshedAt.IsZero() {
		data.CatalogCounts, data.Localities = h.catalogSummary(ctx)
	}
	for _, item := range h.health.Snapshot() {
		data.Dependencies = append(data.Dependencies, pages.DepStatus{Name: item.Name, Status: item.Status})
	}

	h.render(w, r, h.logger, s, i18n.T(ctx, "dashboard.title"), "", pages.Dashboard(data))
}

// cards — ссылки на доступные пользователю таблицы.
func (h *DashboardHandler) cards(r *http.Request, s *auth.SessionData) []pages.DashboardCard {
	var cards []pages.DashboardCard
	for _, res := range h.Tables.List() {
		if res.Scoped || !res.Allowed(s.UserRole, s.GlobalRole, s.OrganiserID) {
			continue
		}
		cards = append(cards, pages.DashboardCard{
			Href:  "/admin/" + res.Key,
			Title: i18n.T(r.Context(), "tables."+res.Key),
		})
	}
	return cards
}

// catalogSummary — размеры справочников и число школ в каждом населённом пункте.
func (h *DashboardHandler) catalogSummary(ctx context.Context) ([]pages.CatalogCount, []pages.LocalitySchools) {
	localities := h.catalog.Localities()
	counts := []pages.CatalogCount{
		{Label: i18n.T(ctx, "catalog.localities"), Count: len(localities)},
		{Label: i18n.T(ctx, "catalog.schools"), Count: len(h.catalog.Schools())},
		{Label: i18n.T(ctx, "catalog.leadership_roles"), Count: len(h.catalog.LeadershipRoles())},
		{Label: i18n.T(ctx, "catalog.committees"), Count: len(h.catalog.Committees())},
	}

	rows := make([]pages.LocalitySchools, 0, len(localities))
	for _, l := range localities {
		rows = append(rows, pages.LocalitySchools{
			Name:    l.Name,
			Schools: len(h.catalog.SchoolsIn(l.ID.String())),
		})
	}
	return counts, rows
}

// HandleCatalogRefresh обрабатывает POST /admin/catalog/refresh.
func (h *DashboardHandler) HandleCatalogRefresh(w http.ResponseWriter, r *http.Request) {
	s, ok := session(w, r)
	if !ok {
		return
	}
	ctx := r.Context()
	toasts := h.Store.Get(s.SID).Toasts

	err := h.catalog.Refresh(ctx, s.Backend())
	switch {
	case backend.IsAuthError(err):
		h.endSession(w, r, s)
		return
	case err != nil:
		toasts.Warning("dashboard.catalog_failed")
	default:
		toasts.Success("dashboard.catalog_refreshed")
	}
	http.Redirect(w, r, DashboardPath, http.StatusSeeOther)
}
