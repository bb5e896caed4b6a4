package handlers

import (
	"encoding/json"
	"net/http"
	"net/url"
	"strings"
	"testing"

	"github.com/google/go-cmp/cmp"

	"github.com/munquest/admin-portal/internal/backend"
	"github.com/munquest/admin-portal/internal/domain/rbac"
	"github.com/munquest/admin-portal/internal/service"
	"github.com/munquest/admin-portal/internal/ui/auth"
	"github.com/munquest/admin-portal/internal/ui/i18n"
	uimiddleware "github.com/munquest/admin-portal/internal/ui/middleware"
)

const usersList = `{"success":true,"data":[
	{"id":5,"username":"anna","fullname":"Anna Petrova","email":"anna@munquest.test","status":"active","globalRole":"user","role":"teacher"}
]}`

const eventRolesList = `{"success":true,"data":[
	{"id":1,"eventId":7,"leadershipRoleId":10,"abbr":"PR","leadershipRole":"President","ranking":1},
	{"id":2,"eventId":7,"leadershipRoleId":11,"abbr":"VP","leadershipRole":"Vice President","ranking":2}
]}`

func organiserSession() *auth.SessionData {
	s := adminSession()
	s.GlobalRole = rbac.GlobalRoleUser
	s.UserRole = rbac.RoleOrganiser
	s.OrganiserID = "7"
	return s
}

func TestTableEdit_SaveSendsPatch(t *testing.T) {
	p := setupPortal(t, map[string]string{
		"GET /api/v1/committees/all-committees":       committeesList,
		"PATCH /api/v1/committees/update-committee/3": `{"success":true}`,
	})
	s := adminSession()

	p.do(t, s, http.MethodGet, "/admin/committees", nil)
	rec := p.do(t, s, http.MethodPost, "/admin/committees/edit/3", url.Values{})
	if rec.Code != http.StatusSeeOther {
		t.Fatalf("edit: status = %d", rec.Code)
	}
	body := p.do(t, s, http.MethodGet, "/admin/committees", nil).Body.String()
	if !strings.Contains(body, `action="/admin/committees/edit/3/save"`) {
		t.Fatal("нет формы редактирования строки 3")
	}

	form := url.Values{"abbr": {"UNSC2"}, "committee": {"Security Council"}, "category": {"country"}}
	rec = p.do(t, s, http.MethodPost, "/admin/committees/edit/3/save", form)
	if rec.Code != http.StatusSeeOther || rec.Header().Get("Location") != "/admin/committees" {
		t.Fatalf("save: status = %d, Location = %q", rec.Code, rec.Header().Get("Location"))
	}

	updates := p.backend.calls(http.MethodPatch, "/api/v1/committees/update-committee/3")
	if len(updates) != 1 {
		t.Fatalf("запросов обновления = %d, ожидается 1", len(updates))
	}
	want := `{"abbr":"UNSC2","committee":"Security Council","category":"country"}`
	if updates[0].Body != want {
		t.Errorf("тело запроса = %s, ожидается %s", updates[0].Body, want)
	}

	body = p.do(t, s, http.MethodGet, "/admin/committees", nil).Body.String()
	if !strings.Contains(body, "Committee updated successfully") {
		t.Error("тост об успешном обновлении не показан")
	}
	if strings.Contains(body, `action="/admin/committees/edit/3/save"`) {
		t.Error("строка осталась в режиме редактирования")
	}
}

func TestTableAction_AssignRoleUsesArg(t *testing.T) {
	p := setupPortal(t, map[string]string{
		"GET /api/v1/users/all-users":              usersList,
		"PATCH /api/v1/users/update-global-role/5": `{"success":true}`,
	})
	s := adminSession()

	p.do(t, s, http.MethodGet, "/admin/users", nil)
	rec := p.do(t, s, http.MethodPost, "/admin/users/action/5/"+service.ActionAssignRole,
		url.Values{"arg": {rbac.GlobalRoleAdmin}})
	if rec.Code != http.StatusSeeOther {
		t.Fatalf("status = %d, ожидается 303", rec.Code)
	}

	calls := p.backend.calls(http.MethodPatch, "/api/v1/users/update-global-role/5")
	if len(calls) != 1 {
		t.Fatalf("запросов назначения роли = %d, ожидается 1", len(calls))
	}
	if want := `{"globalRole":"admin"}`; calls[0].Body != want {
		t.Errorf("тело запроса = %s, ожидается %s", calls[0].Body, want)
	}
	body := p.do(t, s, http.MethodGet, "/admin/users", nil).Body.String()
	if !strings.Contains(body, "Role assigned successfully") {
		t.Error("тост о назначении роли не показан")
	}

	// Роль вне списка допустимых не отправляется.
	p.do(t, s, http.MethodPost, "/admin/users/action/5/"+service.ActionAssignRole,
		url.Values{"arg": {rbac.GlobalRoleSuperadmin}})
	if n := len(p.backend.calls(http.MethodPatch, "/api/v1/users/update-global-role/5")); n != 1 {
		t.Errorf("запросов назначения роли = %d, ожидается 1", n)
	}
}

func TestEventRoles_MoveUp(t *testing.T) {
	p := setupPortal(t, map[string]string{
		"GET /api/v1/events/7/leadership-roles/all-leadership-roles": eventRolesList,
		"PATCH /api/v1/events/7/leadership-roles/update-ranking":     `{"success":true}`,
	})
	s := organiserSession()
	base := "/admin/events/7/leadership-roles"

	if rec := p.do(t, s, http.MethodGet, base, nil); rec.Code != http.StatusOK {
		t.Fatalf("GET: status = %d", rec.Code)
	}
	rec := p.do(t, s, http.MethodPost, base+"/action/2/"+service.ActionMoveUp, url.Values{})
	if rec.Code != http.StatusSeeOther || rec.Header().Get("Location") != base {
		t.Fatalf("move-up: status = %d, Location = %q", rec.Code, rec.Header().Get("Location"))
	}

	calls := p.backend.calls(http.MethodPatch, "/api/v1/events/7/leadership-roles/update-ranking")
	if len(calls) != 1 {
		t.Fatalf("запросов update-ranking = %d, ожидается 1", len(calls))
	}
	var got struct {
		Rankings []backend.RankingItem `json:"rankings"`
	}
	if err := json.Unmarshal([]byte(calls[0].Body), &got); err != nil {
		t.Fatalf("тело update-ranking: %v", err)
	}
	want := []backend.RankingItem{{ID: "2", Ranking: 1}, {ID: "1", Ranking: 2}}
	if diff := cmp.Diff(want, got.Rankings); diff != "" {
		t.Errorf("rankings (-want +got):\n%s", diff)
	}

	body := p.do(t, s, http.MethodGet, base, nil).Body.String()
	if !strings.Contains(body, "Ranking updated successfully") {
		t.Error("тост об изменении порядка не показан")
	}
}

func TestTablePartial_RendersPanel(t *testing.T) {
	p := setupPortal(t, map[string]string{
		"GET /api/v1/committees/all-committees":    committeesList,
		"POST /api/v1/committees/create-committee": `{"success":true}`,
	})
	s := adminSession()

	p.do(t, s, http.MethodGet, "/admin/committees", nil)

	rec := p.doPartial(t, s, http.MethodPost, "/admin/committees/add", url.Values{})
	if rec.Code != http.StatusOK {
		t.Fatalf("add: status = %d, ожидается 200", rec.Code)
	}
	body := rec.Body.String()
	if !strings.Contains(body, `id="table-panel"`) {
		t.Error("ответ не содержит панель таблицы")
	}
	if !strings.Contains(body, `action="/admin/committees/add/save"`) {
		t.Error("в панели нет строки добавления")
	}
	if strings.Contains(body, "<html") {
		t.Error("частичный ответ содержит каркас страницы")
	}

	form := url.Values{"abbr": {"WHO"}, "committee": {"World Health Organization"}, "category": {"country"}}
	rec = p.doPartial(t, s, http.MethodPost, "/admin/committees/add/save", form)
	if rec.Code != http.StatusOK {
		t.Fatalf("save: status = %d, ожидается 200", rec.Code)
	}
	if !strings.Contains(rec.Body.String(), "Committee created successfully") {
		t.Error("тост не выведен в панели")
	}
	// Тост уже показан в панели и не повторяется на странице.
	if strings.Contains(p.do(t, s, http.MethodGet, "/admin/committees", nil).Body.String(), "Committee created successfully") {
		t.Error("тост показан повторно")
	}
}

func TestTablePartial_AuthErrorRedirectsViaHeader(t *testing.T) {
	p := setupPortal(t, nil)
	p.backend.unauthorized = true
	s := adminSession()

	rec := p.doPartial(t, s, http.MethodPost, "/admin/committees/refresh", url.Values{})
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, ожидается 200", rec.Code)
	}
	if got := rec.Header().Get(partialRedirectHeader); got != uimiddleware.LoginPath {
		t.Errorf("%s = %q, ожидается %q", partialRedirectHeader, got, uimiddleware.LoginPath)
	}
	if _, ok := p.store.Peek(s.SID); ok {
		t.Error("состояние сессии не удалено")
	}
}

func TestToastTranslated(t *testing.T) {
	p := setupPortal(t, map[string]string{
		"GET /api/v1/committees/all-committees":    committeesList,
		"POST /api/v1/committees/create-committee": `{"success":true}`,
	})
	s := adminSession()

	p.do(t, s, http.MethodGet, "/admin/committees", nil)
	p.do(t, s, http.MethodPost, "/admin/committees/add", url.Values{})
	p.do(t, s, http.MethodPost, "/admin/committees/add/save", url.Values{"abbr": {" "}})

	req := p.request(t, s, http.MethodGet, "/admin/committees", nil)
	req.AddCookie(&http.Cookie{Name: i18n.LangCookieName, Value: "ru"})
	body := p.serve(req).Body.String()
	if !strings.Contains(body, "Заполните все поля") {
		t.Error("тост валидации не переведён")
	}
	if strings.Contains(body, "Please fill in all fields") {
		t.Error("тост выведен по-английски")
	}

	form := url.Values{"abbr": {"WHO"}, "committee": {"World Health Organization"}, "category": {"country"}}
	p.do(t, s, http.MethodPost, "/admin/committees/add/save", form)
	req = p.request(t, s, http.MethodGet, "/admin/committees", nil)
	req.AddCookie(&http.Cookie{Name: i18n.LangCookieName, Value: "ru"})
	if body := p.serve(req).Body.String(); !strings.Contains(body, "Committee: запись создана") {
		t.Error("тост создания не переведён")
	}
}

func TestHandleOpenEvent_ForgetsPreviousEvent(t *testing.T) {
	p := setupPortal(t, map[string]string{
		"GET /api/v1/events/7/leadership-roles/all-leadership-roles": eventRolesList,
		"GET /api/v1/events/8/leadership-roles/all-leadership-roles": `{"success":true,"data":[]}`,
	})
	s := organiserSession()

	p.do(t, s, http.MethodGet, "/admin/events/7/leadership-roles", nil)
	p.do(t, s, http.MethodGet, "/admin/organiser-committees", nil)
	p.do(t, s, http.MethodGet, "/admin/events?eventId=8", nil)

	st, ok := p.store.Peek(s.SID)
	if !ok {
		t.Fatal("состояние сессии не найдено")
	}
	for _, key := range st.Keys() {
		if key == service.EventLeadershipRolesKey("7") {
			t.Error("таблица прежнего мероприятия осталась в сессии")
		}
	}
	found := false
	for _, key := range st.Keys() {
		if key == service.KeyOrganiserCommittees {
			found = true
		}
	}
	if !found {
		t.Error("таблица вне мероприятия удалена при смене мероприятия")
	}

	// Повторное открытие загружает таблицу заново.
	lists := len(p.backend.calls(http.MethodGet, "/api/v1/events/7/leadership-roles/all-leadership-roles"))
	p.do(t, s, http.MethodGet, "/admin/events?eventId=7", nil)
	p.do(t, s, http.MethodGet, "/admin/events/7/leadership-roles", nil)
	if n := len(p.backend.calls(http.MethodGet, "/api/v1/events/7/leadership-roles/all-leadership-roles")); n != lists+1 {
		t.Errorf("запросов списка = %d, ожидается %d", n, lists+1)
	}
}
