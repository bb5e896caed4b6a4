package handlers

import (
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"net/url"
	"os"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/golang-jwt/jwt/v5"
	"github.com/google/go-cmp/cmp"

	"github.com/munquest/admin-portal/internal/backend"
	"github.com/munquest/admin-portal/internal/domain/rbac"
	"github.com/munquest/admin-portal/internal/service"
	"github.com/munquest/admin-portal/internal/ui/auth"
	"github.com/munquest/admin-portal/internal/ui/i18n"
	uimiddleware "github.com/munquest/admin-portal/internal/ui/middleware"
	"github.com/munquest/admin-portal/internal/ui/state"
)

func testLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: slog.LevelError}))
}

func TestMain(m *testing.M) {
	if err := i18n.LoadEmbedded(i18n.Init(testLogger())); err != nil {
		panic(err)
	}
	os.Exit(m.Run())
}

// --- mock backend ---

type request struct {
	Method string
	Path   string
	Body   string
}

// mockBackend отвечает по ключу "METHOD /path"; unauthorized — 401 на всё.
type mockBackend struct {
	mu           sync.Mutex
	requests     []request
	responses    map[string]string
	unauthorized bool
}

func (m *mockBackend) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	body, _ := io.ReadAll(r.Body)
	m.mu.Lock()
	m.requests = append(m.requests, request{Method: r.Method, Path: r.URL.Path, Body: string(body)})
	resp, ok := m.responses[r.Method+" "+r.URL.Path]
	unauthorized := m.unauthorized
	m.mu.Unlock()

	w.Header().Set("Content-Type", "application/json")
	switch {
	case unauthorized:
		w.WriteHeader(http.StatusUnauthorized)
		_, _ = io.WriteString(w, `{"success":false,"message":"Invalid token"}`)
	case !ok:
		w.WriteHeader(http.StatusNotFound)
		_, _ = io.WriteString(w, `{"success":false,"message":"not found"}`)
	default:
		_, _ = io.WriteString(w, resp)
	}
}

func (m *mockBackend) calls(method, path string) []request {
	m.mu.Lock()
	defer m.mu.Unlock()
	var out []request
	for _, r := range m.requests {
		if r.Method == method && r.Path == path {
			out = append(out, r)
		}
	}
	return out
}

const committeesList = `{"success":true,"data":[
	{"id":3,"abbr":"UNSC","committee":"Security Council","category":"country"},
	{"id":4,"abbr":"ICJ","committee":"International Court of Justice","category":"role"}
]}`

// --- окружение портала ---

type portal struct {
	router  http.Handler
	backend *mockBackend
	store   *state.Store
	sm      *auth.SessionManager
	catalog *service.Catalog
}

func setupPortal(t *testing.T, responses map[string]string) *portal {
	t.Helper()
	logger := testLogger()

	mock := &mockBackend{responses: responses}
	srv := httptest.NewServer(mock)
	t.Cleanup(srv.Close)

	client, err := backend.NewWithHTTPClient(srv.URL, srv.Client(), logger)
	if err != nil {
		t.Fatalf("NewWithHTTPClient: %v", err)
	}
	sm, err := auth.NewSessionManager("test-secret", false)
	if err != nil {
		t.Fatalf("NewSessionManager: %v", err)
	}

	store := state.NewStore(100, time.Hour, logger)
	catalog := service.NewCatalog(client, logger)
	tables := service.NewTables(client, catalog, service.Observers(catalog), logger)
	uiAuth := uimiddleware.NewUIAuth(sm, store.Drop, logger)
	p := &Pages{Store: store, Tables: tables, Auth: uiAuth}

	authHandler := NewAuthHandler(client, auth.NewTokenReaderWithKeyfunc(nil, "", logger), sm, uiAuth, catalog, logger)
	dashboard := NewDashboardHandler(p, catalog, NewDependencyStatus(nil, Dependency{Name: "Backend", Check: service.DepBackend}), logger)

	router := chi.NewRouter()
	router.Use(i18n.Middleware())
	router.Get("/admin/login", authHandler.HandleLoginPage)
	router.Post("/admin/login", authHandler.HandleLogin)
	router.Group(func(r chi.Router) {
		r.Use(uiAuth.Middleware())
		r.Get("/admin/", dashboard.HandleDashboard)
		r.Post("/admin/catalog/refresh", dashboard.HandleCatalogRefresh)
		r.Post("/admin/logout", authHandler.HandleLogout)
		NewTableHandler(p, catalog, logger).Mount(r)
	})

	return &portal{router: router, backend: mock, store: store, sm: sm, catalog: catalog}
}

func adminSession() *auth.SessionData {
	return &auth.SessionData{
		SID:        "sid-1",
		Token:      "tok",
		UserID:     "1",
		UserRole:   "teacher",
		GlobalRole: rbac.GlobalRoleAdmin,
		Email:      "admin@munquest.test",
	}
}

// request создаёт запрос от имени сессии s (nil — без cookie).
func (p *portal) request(t *testing.T, s *auth.SessionData, method, target string, form url.Values) *http.Request {
	t.Helper()
	var body io.Reader
	if form != nil {
		body = strings.NewReader(form.Encode())
	}
	req := httptest.NewRequest(method, target, body)
	if form != nil {
		req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	}
	if s != nil {
		value, err := p.sm.Encrypt(s)
		if err != nil {
			t.Fatalf("Encrypt: %v", err)
		}
		req.AddCookie(&http.Cookie{Name: auth.SessionCookieName, Value: value})
	}
	return req
}

func (p *portal) serve(req *http.Request) *httptest.ResponseRecorder {
	rec := httptest.NewRecorder()
	p.router.ServeHTTP(rec, req)
	return rec
}

// do выполняет запрос от имени сессии s (nil — без cookie).
func (p *portal) do(t *testing.T, s *auth.SessionData, method, target string, form url.Values) *httptest.ResponseRecorder {
	t.Helper()
	return p.serve(p.request(t, s, method, target, form))
}

// doPartial выполняет запрос частичного обновления панели.
func (p *portal) doPartial(t *testing.T, s *auth.SessionData, method, target string, form url.Values) *httptest.ResponseRecorder {
	t.Helper()
	req := p.request(t, s, method, target, form)
	req.Header.Set(partialRequestHeader, "true")
	return p.serve(req)
}

func TestTablePage_RendersRowsAndFilters(t *testing.T) {
	p := setupPortal(t, map[string]string{
		"GET /api/v1/committees/all-committees": committeesList,
	})
	s := adminSession()

	rec := p.do(t, s, http.MethodGet, "/admin/committees", nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, ожидается 200", rec.Code)
	}
	body := rec.Body.String()
	for _, want := range []string{"Security Council", "International Court of Justice", `action="/admin/committees/add"`} {
		if !strings.Contains(body, want) {
			t.Errorf("страница не содержит %q", want)
		}
	}

	listCalls := len(p.backend.calls(http.MethodGet, "/api/v1/committees/all-committees"))
	rec = p.do(t, s, http.MethodGet, "/admin/committees?q=court&category=", nil)
	body = rec.Body.String()
	if strings.Contains(body, "Security Council") {
		t.Error("фильтр по строке поиска не применён")
	}
	if !strings.Contains(body, "International Court of Justice") {
		t.Error("подходящая строка отфильтрована")
	}
	// Изменение фильтра не перезагружает коллекцию.
	if n := len(p.backend.calls(http.MethodGet, "/api/v1/committees/all-committees")); n != listCalls {
		t.Errorf("запросов списка = %d, ожидается %d", n, listCalls)
	}
}

func TestTablePage_Forbidden(t *testing.T) {
	p := setupPortal(t, nil)
	s := adminSession()
	s.GlobalRole = rbac.GlobalRoleUser
	s.UserRole = rbac.RoleOrganiser
	s.OrganiserID = "7"

	if rec := p.do(t, s, http.MethodGet, "/admin/users", nil); rec.Code != http.StatusForbidden {
		t.Errorf("status = %d, ожидается 403", rec.Code)
	}
	if rec := p.do(t, s, http.MethodPost, "/admin/users/refresh", url.Values{}); rec.Code != http.StatusForbidden {
		t.Errorf("POST status = %d, ожидается 403", rec.Code)
	}
}

func TestTablePage_RequiresSession(t *testing.T) {
	p := setupPortal(t, nil)
	rec := p.do(t, nil, http.MethodGet, "/admin/committees", nil)
	if rec.Code != http.StatusFound {
		t.Fatalf("status = %d, ожидается 302", rec.Code)
	}
	if loc := rec.Header().Get("Location"); loc != uimiddleware.LoginPath {
		t.Errorf("Location = %q", loc)
	}
}

func TestTableAdd_PostRedirectGet(t *testing.T) {
	p := setupPortal(t, map[string]string{
		"GET /api/v1/committees/all-committees":    committeesList,
		"POST /api/v1/committees/create-committee": `{"success":true}`,
	})
	s := adminSession()

	p.do(t, s, http.MethodGet, "/admin/committees", nil)

	rec := p.do(t, s, http.MethodPost, "/admin/committees/add", url.Values{})
	if rec.Code != http.StatusSeeOther || rec.Header().Get("Location") != "/admin/committees" {
		t.Fatalf("add: status = %d, Location = %q", rec.Code, rec.Header().Get("Location"))
	}

	form := url.Values{"abbr": {"WHO"}, "committee": {"World Health Organization"}, "category": {"country"}}
	rec = p.do(t, s, http.MethodPost, "/admin/committees/add/save", form)
	if rec.Code != http.StatusSeeOther {
		t.Fatalf("save: status = %d", rec.Code)
	}

	creates := p.backend.calls(http.MethodPost, "/api/v1/committees/create-committee")
	if len(creates) != 1 {
		t.Fatalf("запросов создания = %d, ожидается 1", len(creates))
	}
	if !strings.Contains(creates[0].Body, `"abbr":"WHO"`) {
		t.Errorf("тело запроса = %s", creates[0].Body)
	}

	rec = p.do(t, s, http.MethodGet, "/admin/committees", nil)
	if !strings.Contains(rec.Body.String(), "Committee created successfully") {
		t.Error("тост об успешном создании не показан")
	}
	// Тост показывается один раз.
	rec = p.do(t, s, http.MethodGet, "/admin/committees", nil)
	if strings.Contains(rec.Body.String(), "Committee created successfully") {
		t.Error("тост показан повторно")
	}
}

func TestTableAdd_ValidationKeepsRow(t *testing.T) {
	p := setupPortal(t, map[string]string{
		"GET /api/v1/committees/all-committees": committeesList,
	})
	s := adminSession()

	p.do(t, s, http.MethodGet, "/admin/committees", nil)
	p.do(t, s, http.MethodPost, "/admin/committees/add", url.Values{})
	p.do(t, s, http.MethodPost, "/admin/committees/add/save", url.Values{"abbr": {"  "}})

	if n := len(p.backend.calls(http.MethodPost, "/api/v1/committees/create-committee")); n != 0 {
		t.Errorf("запрос создания отправлен при незаполненных полях: %d", n)
	}
	body := p.do(t, s, http.MethodGet, "/admin/committees", nil).Body.String()
	if !strings.Contains(body, "Please fill in all fields") {
		t.Error("нет тоста валидации")
	}
	if !strings.Contains(body, `action="/admin/committees/add/save"`) {
		t.Error("строка добавления закрыта после ошибки валидации")
	}
}

func TestTableDelete_ConfirmFlow(t *testing.T) {
	p := setupPortal(t, map[string]string{
		"GET /api/v1/committees/all-committees":        committeesList,
		"DELETE /api/v1/committees/delete-committee/4": `{"success":true}`,
	})
	s := adminSession()

	p.do(t, s, http.MethodGet, "/admin/committees", nil)
	p.do(t, s, http.MethodPost, "/admin/committees/menu/4", url.Values{})
	p.do(t, s, http.MethodPost, "/admin/committees/delete/4", url.Values{})

	body := p.do(t, s, http.MethodGet, "/admin/committees", nil).Body.String()
	if !strings.Contains(body, `action="/admin/committees/delete/confirm"`) {
		t.Fatal("нет окна подтверждения удаления")
	}

	p.do(t, s, http.MethodPost, "/admin/committees/delete/confirm", url.Values{})
	if n := len(p.backend.calls(http.MethodDelete, "/api/v1/committees/delete-committee/4")); n != 1 {
		t.Errorf("запросов удаления = %d, ожидается 1", n)
	}
}

func TestAuthErrorEndsSession(t *testing.T) {
	p := setupPortal(t, nil)
	p.backend.unauthorized = true
	s := adminSession()
	p.store.Get(s.SID)

	rec := p.do(t, s, http.MethodGet, "/admin/committees", nil)
	if rec.Code != http.StatusSeeOther {
		t.Fatalf("status = %d, ожидается 303", rec.Code)
	}
	if loc := rec.Header().Get("Location"); loc != uimiddleware.LoginPath {
		t.Errorf("Location = %q", loc)
	}
	if _, ok := p.store.Peek(s.SID); ok {
		t.Error("состояние сессии не удалено")
	}

	cleared := false
	for _, c := range rec.Result().Cookies() {
		if c.Name == auth.SessionCookieName && c.MaxAge < 0 {
			cleared = true
		}
	}
	if !cleared {
		t.Error("cookie сессии не очищен")
	}
}

func TestHandleOpenEvent(t *testing.T) {
	p := setupPortal(t, nil)
	s := adminSession()
	s.GlobalRole = rbac.GlobalRoleUser
	s.UserRole = rbac.RoleOrganiser
	s.OrganiserID = "7"

	rec := p.do(t, s, http.MethodGet, "/admin/events?eventId=e%2F1", nil)
	if rec.Code != http.StatusSeeOther {
		t.Fatalf("status = %d", rec.Code)
	}
	if loc := rec.Header().Get("Location"); loc != "/admin/events/e%2F1/leadership-roles" {
		t.Errorf("Location = %q", loc)
	}

	student := adminSession()
	student.GlobalRole = rbac.GlobalRoleUser
	if rec := p.do(t, student, http.MethodGet, "/admin/events?eventId=1", nil); rec.Code != http.StatusForbidden {
		t.Errorf("status = %d, ожидается 403", rec.Code)
	}
}

// --- вход и выход ---

func signedToken(t *testing.T, exp time.Time) string {
	t.Helper()
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.RegisteredClaims{
		Subject:   "1",
		ExpiresAt: jwt.NewNumericDate(exp),
	})
	s, err := token.SignedString([]byte("backend-secret"))
	if err != nil {
		t.Fatalf("SignedString: %v", err)
	}
	return s
}

func TestHandleLogin(t *testing.T) {
	exp := time.Now().Add(time.Hour).Truncate(time.Second)

	tests := []struct {
		name       string
		form       url.Values
		user       string
		wantStatus int
		wantBody   string
	}{
		{
			name:       "администратор",
			form:       url.Values{"email": {" admin@munquest.test "}, "password": {"pw"}},
			user:       `{"id":1,"role":"teacher","globalRole":"admin"}`,
			wantStatus: http.StatusSeeOther,
		},
		{
			name:       "организатор с устаревшим ключом",
			form:       url.Values{"email": {"org@munquest.test"}, "password": {"pw"}},
			user:       `{"id":2,"role":"organiser","globalRole":"user","orgainiserId":7}`,
			wantStatus: http.StatusSeeOther,
		},
		{
			name:       "без доступа",
			form:       url.Values{"email": {"student@munquest.test"}, "password": {"pw"}},
			user:       `{"id":3,"role":"student","globalRole":"user"}`,
			wantStatus: http.StatusForbidden,
			wantBody:   "no access",
		},
		{
			name:       "пустой пароль",
			form:       url.Values{"email": {"admin@munquest.test"}},
			wantStatus: http.StatusUnprocessableEntity,
			wantBody:   "Please fill in all fields",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			responses := map[string]string{}
			if tt.user != "" {
				responses["POST /api/v1/auth/login"] = `{"success":true,"data":{"token":"` +
					signedToken(t, exp) + `","user":` + tt.user + `}}`
			}
			p := setupPortal(t, responses)

			rec := p.do(t, nil, http.MethodPost, "/admin/login", tt.form)
			if rec.Code != tt.wantStatus {
				t.Fatalf("status = %d, ожидается %d", rec.Code, tt.wantStatus)
			}
			if tt.wantBody != "" && !strings.Contains(rec.Body.String(), tt.wantBody) {
				t.Errorf("тело не содержит %q", tt.wantBody)
			}
			if tt.wantStatus != http.StatusSeeOther {
				return
			}

			var cookie *http.Cookie
			for _, c := range rec.Result().Cookies() {
				if c.Name == auth.SessionCookieName {
					cookie = c
				}
			}
			if cookie == nil {
				t.Fatal("cookie сессии не установлен")
			}
			got, err := p.sm.Decrypt(cookie.Value)
			if err != nil {
				t.Fatalf("Decrypt: %v", err)
			}
			if got.ExpiresAt != exp.Unix() {
				t.Errorf("ExpiresAt = %d, ожидается %d", got.ExpiresAt, exp.Unix())
			}
			if got.SID == "" || got.Email != strings.TrimSpace(tt.form.Get("email")) {
				t.Errorf("сессия = %+v", got)
			}
		})
	}
}

func TestHandleLogin_BackendRejects(t *testing.T) {
	p := setupPortal(t, nil)
	p.backend.unauthorized = true

	rec := p.do(t, nil, http.MethodPost, "/admin/login",
		url.Values{"email": {"a@b.c"}, "password": {"wrong"}})
	if rec.Code != http.StatusUnauthorized {
		t.Fatalf("status = %d, ожидается 401", rec.Code)
	}
	if !strings.Contains(rec.Body.String(), "Invalid token") {
		t.Error("сообщение backend не показано")
	}
}

func TestHandleLogout(t *testing.T) {
	p := setupPortal(t, nil)
	s := adminSession()
	p.store.Get(s.SID)

	rec := p.do(t, s, http.MethodPost, "/admin/logout", url.Values{})
	if rec.Code != http.StatusSeeOther || rec.Header().Get("Location") != uimiddleware.LoginPath {
		t.Fatalf("status = %d, Location = %q", rec.Code, rec.Header().Get("Location"))
	}
	if _, ok := p.store.Peek(s.SID); ok {
		t.Error("состояние сессии не удалено при выходе")
	}
}

func TestHandleLoginPage_RedirectsWithSession(t *testing.T) {
	p := setupPortal(t, nil)
	if rec := p.do(t, adminSession(), http.MethodGet, "/admin/login", nil); rec.Code != http.StatusFound {
		t.Errorf("status = %d, ожидается 302", rec.Code)
	}
	if rec := p.do(t, nil, http.MethodGet, "/admin/login", nil); rec.Code != http.StatusOK {
		t.Errorf("status = %d, ожидается 200", rec.Code)
	}
}

// --- главная страница ---

func TestDashboard_CardsByRole(t *testing.T) {
	p := setupPortal(t, nil)

	body := p.do(t, adminSession(), http.MethodGet, "/admin/", nil).Body.String()
	for _, want := range []string{`href="/admin/committees"`, `href="/admin/users"`} {
		if !strings.Contains(body, want) {
			t.Errorf("главная администратора не содержит %s", want)
		}
	}
	if strings.Contains(body, `action="/admin/events"`) {
		t.Error("форма мероприятия показана не организатору")
	}

	org := adminSession()
	org.GlobalRole = rbac.GlobalRoleUser
	org.UserRole = rbac.RoleOrganiser
	org.OrganiserID = "7"
	body = p.do(t, org, http.MethodGet, "/admin/", nil).Body.String()
	if strings.Contains(body, `href="/admin/users"`) {
		t.Error("организатору показана таблица пользователей")
	}
	if !strings.Contains(body, `href="/admin/organiser-committees"`) {
		t.Error("организатору не показаны его комитеты")
	}
}

func TestCatalogRefresh(t *testing.T) {
	p := setupPortal(t, map[string]string{
		"GET /api/v1/localities/all-localities":             `{"success":true,"data":[]}`,
		"GET /api/v1/schools/all-schools":                   `{"success":true,"data":[]}`,
		"GET /api/v1/leadership-roles/all-leadership-roles": `{"success":true,"data":[]}`,
		"GET /api/v1/committees/all-committees":             committeesList,
	})
	s := adminSession()

	rec := p.do(t, s, http.MethodPost, "/admin/catalog/refresh", url.Values{})
	if rec.Code != http.StatusSeeOther {
		t.Fatalf("status = %d", rec.Code)
	}
	if p.catalog.RefreshedAt().IsZero() {
		t.Error("справочники не обновлены")
	}
	if got := len(p.catalog.Committees()); got != 2 {
		t.Errorf("комитетов в справочнике = %d, ожидается 2", got)
	}
}

func TestDashboard_CatalogSummary(t *testing.T) {
	p := setupPortal(t, map[string]string{
		"GET /api/v1/localities/all-localities": `{"success":true,"data":[
			{"id":1,"name":"Moscow"},{"id":2,"name":"Kazan"}
		]}`,
		"GET /api/v1/schools/all-schools": `{"success":true,"data":[
			{"id":10,"name":"School 57","localityId":1},
			{"id":11,"name":"Lyceum 2","localityId":1},
			{"id":12,"name":"Gymnasium 1","localityId":2}
		]}`,
		"GET /api/v1/leadership-roles/all-leadership-roles": `{"success":true,"data":[]}`,
		"GET /api/v1/committees/all-committees":             committeesList,
	})
	s := adminSession()

	body := p.do(t, s, http.MethodGet, "/admin/", nil).Body.String()
	if strings.Contains(body, `class="localities"`) {
		t.Error("сводка справочников показана до их загрузки")
	}

	p.do(t, s, http.MethodPost, "/admin/catalog/refresh", url.Values{})
	body = p.do(t, s, http.MethodGet, "/admin/", nil).Body.String()
	for _, want := range []string{
		`data-catalog="Localities">Localities: <span class="count">2</span>`,
		`data-catalog="Schools">Schools: <span class="count">3</span>`,
		`data-catalog="Committees">Committees: <span class="count">2</span>`,
		`<tr><td>Moscow</td><td>2</td></tr>`,
		`<tr><td>Kazan</td><td>1</td></tr>`,
	} {
		if !strings.Contains(body, want) {
			t.Errorf("главная не содержит %s", want)
		}
	}
}

// --- статусы зависимостей и язык ---

type fakeReporter map[string]bool

func (f fakeReporter) Health() map[string]bool { return f }

func TestDependencyStatus_Snapshot(t *testing.T) {
	deps := []Dependency{
		{Name: "Backend", Check: service.DepBackend},
		{Name: "PostgreSQL", Check: service.DepPostgres},
		{Name: "Cache", Check: "redis"},
	}
	reporter := fakeReporter{
		"munquest-backend:api.munquest.test:443": true,
		"postgresql:db:5432":                     false,
	}

	got := NewDependencyStatus(reporter, deps...).Snapshot()
	want := []DependencyState{
		{Name: "Backend", Status: statusOnline},
		{Name: "PostgreSQL", Status: statusOffline},
		{Name: "Cache", Status: statusUnavailable},
	}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Errorf("Snapshot() (-want +got):\n%s", diff)
	}

	for _, st := range NewDependencyStatus(nil, deps...).Snapshot() {
		if st.Status != statusUnavailable {
			t.Errorf("%s = %s без проверок, ожидается unavailable", st.Name, st.Status)
		}
	}
}

func TestHandleSetLanguage(t *testing.T) {
	tests := []struct {
		name     string
		lang     string
		referer  string
		wantLang string
		wantLoc  string
	}{
		{"русский", "ru", "http://example.com/admin/users?q=a", "ru", "/admin/users?q=a"},
		{"неизвестный язык", "de", "", "en", DashboardPath},
		{"чужой хост", "en", "http://evil.test/phish", "en", DashboardPath},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodPost, "http://example.com/admin/set-language",
				strings.NewReader(url.Values{"lang": {tt.lang}}.Encode()))
			req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
			if tt.referer != "" {
				req.Header.Set("Referer", tt.referer)
			}
			rec := httptest.NewRecorder()
			HandleSetLanguage(rec, req)

			if loc := rec.Header().Get("Location"); loc != tt.wantLoc {
				t.Errorf("Location = %q, ожидается %q", loc, tt.wantLoc)
			}
			cookies := rec.Result().Cookies()
			if len(cookies) != 1 || cookies[0].Value != tt.wantLang {
				t.Errorf("cookie = %+v, ожидается lang=%s", cookies, tt.wantLang)
			}
		})
	}
}
