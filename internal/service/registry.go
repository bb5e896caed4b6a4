// registry.go — реестр таблиц портала: ключ, заголовок, уровень доступа
// и фабрика контроллера для сессии.
package service

import (
	"log/slog"

	"github.com/munquest/admin-portal/internal/backend"
	"github.com/munquest/admin-portal/internal/domain/rbac"
	"github.com/munquest/admin-portal/internal/table"
)

// Access — уровень доступа к таблице.
type Access int

const (
	// AccessPlatform — таблицы платформы (admin, superadmin).
	AccessPlatform Access = iota
	// AccessOrganiser — таблицы организатора.
	AccessOrganiser
)

// Scope — параметры создания контроллера.
type Scope struct {
	// EventID — мероприятие для таблицы ролей мероприятия
	EventID string
	// GlobalRole — глобальная роль текущего пользователя
	GlobalRole string
}

// Resource — описание таблицы в реестре.
type Resource struct {
	Key    string
	Title  string
	Access Access
	// Scoped — таблица требует Scope.EventID
	Scoped bool
	New    func(scope Scope, n table.Notifier) table.Controller
}

// Allowed проверяет доступ пользователя к таблице.
func (r Resource) Allowed(userRole, globalRole, organiserID string) bool {
	switch r.Access {
	case AccessPlatform:
		return rbac.CanManagePlatform(globalRole)
	case AccessOrganiser:
		return rbac.CanManageOrganiser(userRole, globalRole, organiserID)
	}
	return false
}

// Tables — реестр таблиц портала.
type Tables struct {
	resources []Resource
	byKey     map[string]Resource
}

// NewTables собирает реестр. observer получает итоги изменений всех таблиц.
func NewTables(client *backend.Client, catalog *Catalog, observer table.Observer, logger *slog.Logger) *Tables {
	resources := []Resource{
		{
			Key:    KeyCommittees,
			Title:  "Committees",
			Access: AccessPlatform,
			New: func(_ Scope, n table.Notifier) table.Controller {
				return table.New(CommitteeSchema(), committeeSource{client: client}, n, observer, logger)
			},
		},
		{
			Key:    KeyLeadershipRoles,
			Title:  "Leadership Roles",
			Access: AccessPlatform,
			New: func(_ Scope, n table.Notifier) table.Controller {
				return table.New(LeadershipRoleSchema(), leadershipRoleSource{client: client}, n, observer, logger)
			},
		},
		{
			Key:    KeyUsers,
			Title:  "Users",
			Access: AccessPlatform,
			New: func(scope Scope, n table.Notifier) table.Controller {
				return table.New(UserSchema(scope.GlobalRole), userSource{client: client}, n, observer, logger)
			},
		},
		{
			Key:    KeyEventLeadershipRoles,
			Title:  "Event Leadership Roles",
			Access: AccessOrganiser,
			Scoped: true,
			New: func(scope Scope, n table.Notifier) table.Controller {
				return table.New(EventLeadershipRoleSchema(scope.EventID, catalog),
					eventRoleSource{client: client, eventID: scope.EventID}, n, observer, logger)
			},
		},
		{
			Key:    KeyOrganiserCommittees,
			Title:  "My Committees",
			Access: AccessOrganiser,
			New: func(_ Scope, n table.Notifier) table.Controller {
				return table.New(OrganiserCommitteeSchema(catalog), organiserCommitteeSource{client: client}, n, observer, logger)
			},
		},
		{
			Key:    KeyOrganiserLeadershipRoles,
			Title:  "My Leadership Roles",
			Access: AccessOrganiser,
			New: func(_ Scope, n table.Notifier) table.Controller {
				return table.New(OrganiserLeadershipRoleSchema(), organiserRoleSource{client: client}, n, observer, logger)
			},
		},
	}

	t := &Tables{resources: resources, byKey: make(map[string]Resource, len(resources))}
	for _, r := range resources {
		t.byKey[r.Key] = r
	}
	return t
}

// Get возвращает таблицу по ключу.
func (t *Tables) Get(key string) (Resource, bool) {
	r, ok := t.byKey[key]
	return r, ok
}

// List возвращает таблицы в порядке навигации.
func (t *Tables) List() []Resource {
	return append([]Resource(nil), t.resources...)
}

// StateKey — ключ контроллера в состоянии сессии.
func (r Resource) StateKey(scope Scope) string {
	if r.Scoped {
		return EventLeadershipRolesKey(scope.EventID)
	}
	return r.Key
}
