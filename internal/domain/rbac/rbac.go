// Пакет rbac — логика доступа к разделам портала.
// Глобальная роль (user, admin, superadmin) открывает таблицы платформы,
// роль пользователя organiser с идентификатором организатора — таблицы организатора.
// Назначить глобальную роль можно только не выше собственной.
package rbac

// Глобальные роли в порядке возрастания привилегий.
const (
	GlobalRoleUser       = "user"
	GlobalRoleAdmin      = "admin"
	GlobalRoleSuperadmin = "superadmin"
)

// RoleOrganiser — роль пользователя, дающая доступ к разделу организатора.
const RoleOrganiser = "organiser"

// GlobalRoles — допустимые глобальные роли в порядке возрастания.
var GlobalRoles = []string{GlobalRoleUser, GlobalRoleAdmin, GlobalRoleSuperadmin}

// roleWeight — вес роли для сравнения.
// Чем выше вес, тем больше привилегий.
var roleWeight = map[string]int{
	GlobalRoleUser:       1,
	GlobalRoleAdmin:      2,
	GlobalRoleSuperadmin: 3,
}

// IsValidGlobalRole проверяет, является ли строка допустимой глобальной ролью.
func IsValidGlobalRole(role string) bool {
	_, ok := roleWeight[role]
	return ok
}

// CanManagePlatform — доступ к таблицам платформы (комитеты, роли, пользователи).
func CanManagePlatform(globalRole string) bool {
	return roleWeight[globalRole] >= roleWeight[GlobalRoleAdmin]
}

// CanManageOrganiser — доступ к таблицам организатора.
// Администраторы платформы тоже допускаются, если в сессии есть organiserId.
func CanManageOrganiser(userRole, globalRole, organiserID string) bool {
	if organiserID == "" {
		return false
	}
	return userRole == RoleOrganiser || CanManagePlatform(globalRole)
}

// CanAssign проверяет, может ли actorRole назначить target.
// Роль можно назначить только не выше собственной; user не назначает никому.
func CanAssign(actorRole, target string) bool {
	if !IsValidGlobalRole(target) || !CanManagePlatform(actorRole) {
		return false
	}
	return roleWeight[target] <= roleWeight[actorRole]
}

// AssignableRoles возвращает роли, которые actorRole может назначить.
func AssignableRoles(actorRole string) []string {
	var roles []string
	for _, r := range GlobalRoles {
		if CanAssign(actorRole, r) {
			roles = append(roles, r)
		}
	}
	return roles
}
