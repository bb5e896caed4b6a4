package model

import "fmt"

// Роли пользователей платформы (категория в таблице пользователей).
const (
	UserRoleStudent   = "student"
	UserRoleTeacher   = "teacher"
	UserRoleOrganiser = "organiser"
)

// UserRoles — категории пользователей в порядке отображения.
var UserRoles = []string{UserRoleStudent, UserRoleTeacher, UserRoleOrganiser}

// Статусы учётной записи.
const (
	UserStatusActive  = "active"
	UserStatusBlocked = "blocked"
	UserStatusFlagged = "flagged"
)

// UserStatuses — допустимые статусы.
var UserStatuses = []string{UserStatusActive, UserStatusBlocked, UserStatusFlagged}

// User — учётная запись платформы (студент, учитель, организатор).
// Не хранится локально — формируется из ответа backend.
type User struct {
	ID         ID     `json:"id"`
	Username   string `json:"username"`
	Fullname   string `json:"fullname"`
	Email      string `json:"email"`
	Status     string `json:"status"`
	GlobalRole string `json:"globalRole"`
	Role       string `json:"role"`
}

// Validate проверяет обязательные поля пользователя.
func (u User) Validate() error {
	if err := requireFields("user", "id", u.ID.String(), "username", u.Username, "email", u.Email); err != nil {
		return err
	}
	if u.Status != "" && !contains(UserStatuses, u.Status) {
		return fmt.Errorf("%w: неизвестный статус %q", ErrInvalidRecord, u.Status)
	}
	return nil
}

// contains проверяет наличие строки в срезе.
func contains(items []string, s string) bool {
	for _, item := range items {
		if item == s {
			return true
		}
	}
	return false
}
