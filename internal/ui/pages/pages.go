// Пакет pages — HTML-компоненты Admin UI на templ.
// Исходники компонентов — файлы *.templ; *_templ.go генерируются
// командой templ generate и хранятся в репозитории.
package pages

//go:generate templ generate

import (
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/munquest/admin-portal/internal/domain/model"
	"github.com/munquest/admin-portal/internal/table"
	"github.com/munquest/admin-portal/internal/ui/toast"
)

// CSRFFieldName — имя поля CSRF-токена в формах.
const CSRFFieldName = "csrf_token"

// NavItem — пункт бокового меню.
type NavItem struct {
	Href   string
	Label  string
	Active bool
}

// LayoutData — данные общего каркаса страницы.
type LayoutData struct {
	Title      string
	UserID     string
	Email      string
	GlobalRole string
	Nav        []NavItem
	Toasts     []toast.Toast
	CSRFToken  string
}

// LoginData — данные страницы входа.
type LoginData struct {
	Email     string
	Error     string
	CSRFToken string
}

// DashboardCard — ссылка на доступную таблицу.
type DashboardCard struct {
	Href  string
	Title string
}

// DepStatus — состояние зависимости портала.
type DepStatus struct {
	Name   string
	Status string // online, offline, unavailable
}

// CatalogCount — число записей одного справочника.
type CatalogCount struct {
	Label string
	Count int
}

// LocalitySchools — населённый пункт и число его школ.
type LocalitySchools struct {
	Name    string
	Schools int
}

// DashboardData — данные главной страницы.
type DashboardData struct {
	Email      string
	GlobalRole string
	UserRole   string
	Cards      []DashboardCard
	// ShowEventForm — показать переход к ролям мероприятия (организатор)
	ShowEventForm bool
	Dependencies  []DepStatus
	// CatalogRefreshedAt — время загрузки справочников; нулевое — не загружены
	CatalogRefreshedAt time.Time
	CatalogCounts      []CatalogCount
	Localities         []LocalitySchools
	CSRFToken          string
}

// AuditData — данные страницы журнала аудита.
type AuditData struct {
	Enabled   bool
	Entries   []model.AuditEntry
	Search    string
	Resource  string
	Resources []table.Choice
}

// Идентификаторы элементов страницы таблицы.
const (
	panelID    = "table-panel"
	editFormID = "edit-row"
	addFormID  = "add-row"
)

// TableData — данные страницы таблицы.
type TableData struct {
	View table.View
	// Base — путь страницы таблицы; действия отправляются на Base + "/..."
	Base      string
	CSRFToken string
	// Toasts выводятся внутри панели при частичном обновлении
	Toasts []toast.Toast
}

// path строит путь действия: base и экранированные сегменты.
func path(base string, segments ...string) string {
	var b strings.Builder
	b.WriteString(base)
	for _, s := range segments {
		b.WriteByte('/')
		b.WriteString(url.PathEscape(s))
	}
	return b.String()
}

func toastClass(t toast.Toast) string {
	return "toast toast-" + string(t.Level)
}

func depClass(d DepStatus) string {
	return "dep dep-" + d.Status
}

func hasOpenMenu(v table.View) bool {
	for _, r := range v.Rows {
		if r.MenuOpen {
			return true
		}
	}
	return false
}

func editingRow(v table.View) (string, bool) {
	for _, r := range v.Rows {
		if r.Editing {
			return r.ID, true
		}
	}
	return "", false
}

// editAction — адрес формы строки редактирования; пустой, если правки нет.
func editAction(d TableData) string {
	if id, ok := editingRow(d.View); ok {
		return path(d.Base, "edit", id, "save")
	}
	return ""
}

// hasRowMenu — у строки есть хотя бы один пункт меню.
func hasRowMenu(v table.View, row table.Row) bool {
	return v.CanEdit || v.CanDelete || len(row.Actions) > 0
}

func colspan(v table.View) string {
	return strconv.Itoa(len(v.Columns) + 1)
}

func auditCells(e model.AuditEntry) []string {
	return []string{e.Actor, e.Resource, e.Action, e.TargetID, e.Outcome, e.Message}
}

var auditColumns = []string{
	"audit.time", "audit.actor", "audit.resource", "audit.action",
	"audit.target", "audit.outcome", "audit.message",
}
