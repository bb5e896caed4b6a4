package service

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"os"
	"sync"
	"testing"

	"github.com/google/go-cmp/cmp"

	"github.com/munquest/admin-portal/internal/backend"
	"github.com/munquest/admin-portal/internal/domain/model"
	"github.com/munquest/admin-portal/internal/domain/rbac"
	"github.com/munquest/admin-portal/internal/repository"
	"github.com/munquest/admin-portal/internal/table"
	"github.com/munquest/admin-portal/internal/ui/i18n"
)

// testLogger создаёт logger для тестов.
func testLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: slog.LevelError}))
}

var testSession = backend.Session{Token: "tok", UserID: "u-1", OrganiserID: "7"}

// request — запрос, полученный mock backend.
type request struct {
	Method string
	Path   string
	Body   string
}

// mockBackend — backend с фиксированными ответами по пути и журналом запросов.
type mockBackend struct {
	mu        sync.Mutex
	requests  []request
	responses map[string]string
}

func (m *mockBackend) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	body, _ := io.ReadAll(r.Body)
	m.mu.Lock()
	m.requests = append(m.requests, request{Method: r.Method, Path: r.URL.Path, Body: string(body)})
	resp, ok := m.responses[r.Method+" "+r.URL.Path]
	m.mu.Unlock()

	w.Header().Set("Content-Type", "application/json")
	if !ok {
		w.WriteHeader(http.StatusNotFound)
		_, _ = io.WriteString(w, `{"success":false,"message":"not found"}`)
		return
	}
	_, _ = io.WriteString(w, resp)
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

func setupBackend(t *testing.T, responses map[string]string) (*backend.Client, *mockBackend) {
	t.Helper()
	mock := &mockBackend{responses: responses}
	srv := httptest.NewServer(mock)
	t.Cleanup(srv.Close)

	client, err := backend.NewWithHTTPClient(srv.URL, srv.Client(), testLogger())
	if err != nil {
		t.Fatalf("NewWithHTTPClient: %v", err)
	}
	return client, mock
}

// nopNotifier не показывает тосты.
type nopNotifier struct{}

func (nopNotifier) Success(string, ...any) {}
func (nopNotifier) Error(string, ...any)   {}
func (nopNotifier) Warning(string, ...any) {}

func eventRoles() []model.EventLeadershipRole {
	return []model.EventLeadershipRole{
		{ID: "c", Ranking: 3},
		{ID: "a", Ranking: 1},
		{ID: "b", Ranking: 2},
	}
}

func TestReorder(t *testing.T) {
	tests := []struct {
		name  string
		id    string
		delta int
		want  []backend.RankingItem
		ok    bool
	}{
		{
			name: "вверх", id: "b", delta: -1, ok: true,
			want: []backend.RankingItem{{ID: "b", Ranking: 1}, {ID: "a", Ranking: 2}, {ID: "c", Ranking: 3}},
		},
		{
			name: "вниз", id: "b", delta: 1, ok: true,
			want: []backend.RankingItem{{ID: "a", Ranking: 1}, {ID: "c", Ranking: 2}, {ID: "b", Ranking: 3}},
		},
		{name: "первая вверх", id: "a", delta: -1},
		{name: "последняя вниз", id: "c", delta: 1},
		{name: "нет такой роли", id: "zz", delta: 1},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, ok := Reorder(eventRoles(), tt.id, tt.delta)
			if ok != tt.ok {
				t.Fatalf("ok = %v, хотели %v", ok, tt.ok)
			}
			if diff := cmp.Diff(tt.want, got); diff != "" {
				t.Errorf("Reorder() (-want +got):\n%s", diff)
			}
		})
	}
}

const eventRolesList = `{"success":true,"data":[
	{"id":1,"leadershipRoleId":10,"abbr":"PR","leadershipRole":"President","ranking":1},
	{"id":2,"leadershipRoleId":11,"abbr":"VP","leadershipRole":"Vice President","ranking":2}
]}`

func TestEventRoleSource_MoveUp(t *testing.T) {
	client, mock := setupBackend(t, map[string]string{
		"GET /api/v1/events/e1/leadership-roles/all-leadership-roles": eventRolesList,
		"PATCH /api/v1/events/e1/leadership-roles/update-ranking":     `{"success":true}`,
	})
	src := eventRoleSource{client: client, eventID: "e1"}

	st, err := src.Do(context.Background(), testSession, "2", ActionMoveUp, "")
	if err != nil {
		t.Fatalf("Do() ошибка: %v", err)
	}
	if !st.Success {
		t.Fatalf("Do() success = false: %s", st.Message)
	}

	calls := mock.calls(http.MethodPatch, "/api/v1/events/e1/leadership-roles/update-ranking")
	if len(calls) != 1 {
		t.Fatalf("update-ranking вызван %d раз", len(calls))
	}
	var body struct {
		Rankings []backend.RankingItem `json:"rankings"`
	}
	if err := json.Unmarshal([]byte(calls[0].Body), &body); err != nil {
		t.Fatalf("тело update-ranking: %v", err)
	}
	want := []backend.RankingItem{{ID: "2", Ranking: 1}, {ID: "1", Ranking: 2}}
	if diff := cmp.Diff(want, body.Rankings); diff != "" {
		t.Errorf("rankings (-want +got):\n%s", diff)
	}
}

func TestEventRoleSource_MoveBeyondEdge(t *testing.T) {
	client, mock := setupBackend(t, map[string]string{
		"GET /api/v1/events/e1/leadership-roles/all-leadership-roles": eventRolesList,
	})
	src := eventRoleSource{client: client, eventID: "e1"}

	st, err := src.Do(context.Background(), testSession, "1", ActionMoveUp, "")
	if err != nil {
		t.Fatalf("Do() ошибка: %v", err)
	}
	if st.Success {
		t.Error("сдвиг первой роли вверх не должен быть успешным")
	}
	if st.Message != MsgCannotMove {
		t.Errorf("Message = %q, ожидается %q", st.Message, MsgCannotMove)
	}
	if n := len(mock.calls(http.MethodPatch, "/api/v1/events/e1/leadership-roles/update-ranking")); n != 0 {
		t.Errorf("update-ranking вызван %d раз, ожидали 0", n)
	}

	if _, err := src.Do(context.Background(), testSession, "1", "rotate", ""); !errors.Is(err, table.ErrUnknownAction) {
		t.Errorf("неизвестное действие: %v, ожидали ErrUnknownAction", err)
	}
}

func TestUserSource_Do(t *testing.T) {
	client, mock := setupBackend(t, map[string]string{
		"PATCH /api/v1/users/update-user-status/5": `{"success":true}`,
		"PATCH /api/v1/users/update-global-role/5": `{"success":true}`,
	})
	src := userSource{client: client}
	ctx := context.Background()

	tests := []struct {
		action, arg string
		path        string
		body        string
	}{
		{ActionBlock, "", "/api/v1/users/update-user-status/5", `{"status":"blocked"}`},
		{ActionUnblock, "", "/api/v1/users/update-user-status/5", `{"status":"active"}`},
		{ActionFlag, "", "/api/v1/users/update-user-status/5", `{"status":"flagged"}`},
		{ActionAssignRole, rbac.GlobalRoleAdmin, "/api/v1/users/update-global-role/5", `{"globalRole":"admin"}`},
	}
	for _, tt := range tests {
		t.Run(tt.action, func(t *testing.T) {
			before := len(mock.calls(http.MethodPatch, tt.path))
			if _, err := src.Do(ctx, testSession, "5", tt.action, tt.arg); err != nil {
				t.Fatalf("Do(%s) ошибка: %v", tt.action, err)
			}
			calls := mock.calls(http.MethodPatch, tt.path)
			if len(calls) != before+1 {
				t.Fatalf("вызовов %s: %d", tt.path, len(calls))
			}
			if got := calls[len(calls)-1].Body; got != tt.body {
				t.Errorf("body = %s, хотели %s", got, tt.body)
			}
		})
	}

	if _, err := src.Do(ctx, testSession, "5", ActionAssignRole, "owner"); !errors.Is(err, ErrValidation) {
		t.Errorf("неизвестная роль: %v, ожидали ErrValidation", err)
	}
	if _, err := src.Create(ctx, testSession, nil); !errors.Is(err, table.ErrUnsupported) {
		t.Errorf("Create: %v, ожидали ErrUnsupported", err)
	}
}

func TestUserSchema_AssignRole(t *testing.T) {
	schema := UserSchema(rbac.GlobalRoleAdmin)
	var assign table.Action[model.User]
	for _, a := range schema.Actions {
		if a.Key == ActionAssignRole {
			assign = a
		}
	}

	user := model.User{ID: "1", GlobalRole: rbac.GlobalRoleUser}
	if !assign.Visible(user) {
		t.Error("admin должен видеть назначение роли для user")
	}
	want := []table.Choice{{Value: rbac.GlobalRoleAdmin, Label: rbac.GlobalRoleAdmin}}
	if diff := cmp.Diff(want, assign.Choices(user)); diff != "" {
		t.Errorf("Choices (-want +got):\n%s", diff)
	}

	super := model.User{ID: "2", GlobalRole: rbac.GlobalRoleSuperadmin}
	if assign.Visible(super) {
		t.Error("admin не должен менять роль superadmin")
	}
	if schema.CanAdd {
		t.Error("таблица пользователей не поддерживает добавление")
	}
}

func TestOrganiserCommitteeInput(t *testing.T) {
	got := organiserCommitteeInput(table.Values{"committeeId": "3", "seats": "25"})
	want := backend.OrganiserCommitteeInput{CommitteeID: "3", Seats: 25}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Errorf("organiserCommitteeInput (-want +got):\n%s", diff)
	}
}

func catalogResponses() map[string]string {
	return map[string]string{
		"GET /api/v1/localities/all-localities":             `{"success":true,"data":[{"id":1,"name":"Moscow"}]}`,
		"GET /api/v1/schools/all-schools":                   `{"success":true,"data":[{"id":1,"name":"School 1","localityId":1},{"id":2,"name":"School 2","localityId":9}]}`,
		"GET /api/v1/leadership-roles/all-leadership-roles": `{"success":true,"data":[{"id":10,"abbr":"PR","leadershipRole":"President"}]}`,
		"GET /api/v1/committees/all-committees":             `{"success":true,"data":[{"id":3,"abbr":"UNSC","committee":"Security Council","category":"country"}]}`,
	}
}

func TestCatalog_Refresh(t *testing.T) {
	client, mock := setupBackend(t, catalogResponses())
	catalog := NewCatalog(client, testLogger())
	ctx := context.Background()

	if err := catalog.EnsureLoaded(ctx, testSession); err != nil {
		t.Fatalf("EnsureLoaded() ошибка: %v", err)
	}
	if err := catalog.EnsureLoaded(ctx, testSession); err != nil {
		t.Fatalf("повторный EnsureLoaded() ошибка: %v", err)
	}
	if n := len(mock.calls(http.MethodGet, "/api/v1/committees/all-committees")); n != 1 {
		t.Errorf("committees загружены %d раз, ожидали 1", n)
	}

	want := []table.Choice{{Value: "10", Label: "PR (President)"}}
	if diff := cmp.Diff(want, catalog.LeadershipRoleChoices()); diff != "" {
		t.Errorf("LeadershipRoleChoices (-want +got):\n%s", diff)
	}
	if got := catalog.SchoolsIn("1"); len(got) != 1 || got[0].Name != "School 1" {
		t.Errorf("SchoolsIn(1) = %+v", got)
	}
	if catalog.RefreshedAt().IsZero() {
		t.Error("RefreshedAt не установлен")
	}

	// Успешное изменение каталога комитетов перечитывает только комитеты
	catalog.Observe(ctx, testSession, table.Mutation{Table: KeyCommittees, Outcome: model.AuditOutcomeSuccess})
	catalog.Observe(ctx, testSession, table.Mutation{Table: KeyCommittees, Outcome: model.AuditOutcomeFailure})
	catalog.Observe(ctx, testSession, table.Mutation{Table: KeyUsers, Outcome: model.AuditOutcomeSuccess})
	if n := len(mock.calls(http.MethodGet, "/api/v1/committees/all-committees")); n != 2 {
		t.Errorf("committees загружены %d раз, ожидали 2", n)
	}
	if n := len(mock.calls(http.MethodGet, "/api/v1/leadership-roles/all-leadership-roles")); n != 1 {
		t.Errorf("leadership roles загружены %d раз, ожидали 1", n)
	}
}

func TestCatalog_PartialFailure(t *testing.T) {
	responses := catalogResponses()
	delete(responses, "GET /api/v1/schools/all-schools")
	client, _ := setupBackend(t, responses)
	catalog := NewCatalog(client, testLogger())

	if err := catalog.Refresh(context.Background(), testSession); err == nil {
		t.Fatal("Refresh() без школ должен вернуть ошибку")
	}
	if len(catalog.Localities()) != 1 || len(catalog.Committees()) != 1 {
		t.Error("загруженные части справочника должны сохраниться")
	}
	if len(catalog.Schools()) != 0 {
		t.Error("школы не должны быть загружены")
	}
}

func TestResource_Allowed(t *testing.T) {
	platform := Resource{Access: AccessPlatform}
	organiser := Resource{Access: AccessOrganiser}

	if !platform.Allowed("teacher", rbac.GlobalRoleAdmin, "") {
		t.Error("admin должен иметь доступ к таблицам платформы")
	}
	if platform.Allowed(rbac.RoleOrganiser, rbac.GlobalRoleUser, "7") {
		t.Error("организатор без глобальной роли не должен видеть таблицы платформы")
	}
	if !organiser.Allowed(rbac.RoleOrganiser, rbac.GlobalRoleUser, "7") {
		t.Error("организатор должен иметь доступ к своим таблицам")
	}
	if organiser.Allowed("student", rbac.GlobalRoleUser, "") {
		t.Error("студент не должен видеть таблицы организатора")
	}
}

func TestTables_Registry(t *testing.T) {
	client, _ := setupBackend(t, map[string]string{
		"GET /api/v1/committees/all-committees": `{"success":true,"data":[{"id":3,"abbr":"UNSC","committee":"Security Council","category":"country"}]}`,
	})
	tables := NewTables(client, NewCatalog(client, testLogger()), nil, testLogger())

	keys := make([]string, 0)
	for _, r := range tables.List() {
		keys = append(keys, r.Key)
	}
	wantKeys := []string{
		KeyCommittees, KeyLeadershipRoles, KeyUsers,
		KeyEventLeadershipRoles, KeyOrganiserCommittees, KeyOrganiserLeadershipRoles,
	}
	if diff := cmp.Diff(wantKeys, keys); diff != "" {
		t.Errorf("ключи таблиц (-want +got):\n%s", diff)
	}

	res, ok := tables.Get(KeyCommittees)
	if !ok {
		t.Fatal("таблица committees не найдена")
	}
	ctrl := res.New(Scope{}, nopNotifier{})
	if err := ctrl.Open(context.Background(), testSession); err != nil {
		t.Fatalf("Open() ошибка: %v", err)
	}
	view := ctrl.View()
	if len(view.Rows) != 1 || view.Rows[0].ID != "3" {
		t.Errorf("строки = %+v", view.Rows)
	}

	events, _ := tables.Get(KeyEventLeadershipRoles)
	scope := Scope{EventID: "e1"}
	if got := events.StateKey(scope); got != "event-leadership-roles:e1" {
		t.Errorf("StateKey = %q", got)
	}
	if got := events.New(scope, nopNotifier{}).Key(); got != "event-leadership-roles:e1" {
		t.Errorf("Key() = %q", got)
	}
	if _, ok := tables.Get("storage"); ok {
		t.Error("неизвестная таблица найдена")
	}
}

// fakeAuditRepo — журнал аудита в памяти.
type fakeAuditRepo struct {
	mu      sync.Mutex
	entries []model.AuditEntry
	err     error
}

func (r *fakeAuditRepo) Insert(_ context.Context, e *model.AuditEntry) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.err != nil {
		return r.err
	}
	r.entries = append(r.entries, *e)
	return nil
}

func (r *fakeAuditRepo) List(_ context.Context, f repository.AuditFilter) ([]model.AuditEntry, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []model.AuditEntry
	for _, e := range r.entries {
		if f.Resource == "" || e.Resource == f.Resource {
			out = append(out, e)
		}
	}
	return out, nil
}

func (r *fakeAuditRepo) Count(context.Context) (int, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.entries), nil
}

func TestAuditService(t *testing.T) {
	repo := &fakeAuditRepo{}
	audit := NewAuditService(repo, 100, testLogger())
	ctx := context.Background()

	if !audit.Enabled() {
		t.Fatal("Enabled() = false при заданном репозитории")
	}
	audit.Observe(ctx, testSession, table.Mutation{
		Table: KeyCommittees, Action: "delete", TargetID: "3",
		Outcome: model.AuditOutcomeSuccess, Message: "Committee deleted successfully",
	})

	entries, err := audit.List(ctx, KeyCommittees, "")
	if err != nil {
		t.Fatalf("List() ошибка: %v", err)
	}
	if len(entries) != 1 {
		t.Fatalf("записей %d, ожидали 1", len(entries))
	}
	e := entries[0]
	if e.Actor != "u-1" || e.Action != "delete" || e.TargetID != "3" || e.ID == "" || e.CreatedAt.IsZero() {
		t.Errorf("запись журнала = %+v", e)
	}

	// Ошибка записи не паникует и не прерывает операцию
	repo.err = errors.New("db down")
	audit.Observe(ctx, testSession, table.Mutation{Table: KeyUsers, Action: "block"})
}

func TestAuditService_Disabled(t *testing.T) {
	audit := NewAuditService(nil, 100, testLogger())
	if audit.Enabled() {
		t.Error("Enabled() = true без репозитория")
	}
	audit.Observe(context.Background(), testSession, table.Mutation{Table: KeyUsers})
	entries, err := audit.List(context.Background(), "", "")
	if err != nil || entries != nil {
		t.Errorf("List() = %v, %v; ожидали пусто", entries, err)
	}
}

// countingObserver считает полученные итоги.
type countingObserver struct{ n int }

func (o *countingObserver) Observe(context.Context, backend.Session, table.Mutation) { o.n++ }

func TestObservers(t *testing.T) {
	a, b := &countingObserver{}, &countingObserver{}
	obs := Observers(a, nil, b)
	obs.Observe(context.Background(), testSession, table.Mutation{})
	if a.n != 1 || b.n != 1 {
		t.Errorf("получено a=%d b=%d, ожидали по 1", a.n, b.n)
	}
}

// Ключи уведомлений действий переведены и имеют английский текст для аудита.
func TestActionMessagesTranslated(t *testing.T) {
	b := i18n.NewBundle(testLogger())
	if err := i18n.LoadEmbedded(b); err != nil {
		t.Fatalf("LoadEmbedded: %v", err)
	}
	for _, key := range []string{MsgUserBlocked, MsgUserUnblocked, MsgUserFlagged, MsgRoleAssigned, MsgCannotMove} {
		en := table.Text(key)
		if en == key {
			t.Errorf("%s: нет английского текста", key)
		}
		if got := b.Translate("en", key); got != en {
			t.Errorf("en[%s] = %q, ожидается %q", key, got, en)
		}
		if ru := b.Translate("ru", key); ru == en || ru == key {
			t.Errorf("ru[%s] не переведён: %q", key, ru)
		}
	}
}
