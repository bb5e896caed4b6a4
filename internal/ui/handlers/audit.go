// audit.go — страница журнала изменений, выполненных через портал.
package handlers

import (
	"log/slog"
	"net/http"

	"github.com/munquest/admin-portal/internal/domain/model"
	"github.com/munquest/admin-portal/internal/service"
	"github.com/munquest/admin-portal/internal/table"
	"github.com/munquest/admin-portal/internal/ui/i18n"
	"github.com/munquest/admin-portal/internal/ui/pages"
)

// AuditHandler — обработчик страницы журнала аудита.
type AuditHandler struct {
	*Pages
	audit  *service.AuditService
	logger *slog.Logger
}

// NewAuditHandler создаёт новый AuditHandler.
func NewAuditHandler(p *Pages, audit *service.AuditService, logger *slog.Logger) *AuditHandler {
	return &AuditHandler{
		Pages:  p,
		audit:  audit,
		logger: logger.With(slog.String("component", "ui.audit")),
	}
}

// HandleAudit обрабатывает GET /admin/audit?resource=&q=.
func (h *AuditHandler) HandleAudit(w http.ResponseWriter, r *http.Request) {
	s, ok := session(w, r)
	if !ok {
		return
	}
	ctx := r.Context()
	query := r.URL.Query()

	data := pages.AuditData{
		Enabled:  h.audit.Enabled(),
		Search:   query.Get("q"),
		Resource: query.Get("resource"),
	}
	for _, res := range h.Tables.List() {
		data.Resources = append(data.Resources, table.Choice{Value: res.Key, Label: i18n.T(ctx, "tables."+res.Key)})
	}

	if data.Enabled {
		entries, err := h.audit.List(ctx, data.Resource, data.Search)
		if err != nil {
			h.logger.Error("Ошибка чтения журнала аудита", slog.String("error", err.Error()))
			h.Store.Get(s.SID).Toasts.Error("audit.failed")
			entries = []model.AuditEntry{}
		}
		data.Entries = entries
	}

	h.render(w, r, h.logger, s, i18n.T(ctx, "audit.title"), "audit", pages.Audit(data))
}
