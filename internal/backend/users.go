package backend

import (
	"context"
	"net/http"
	"net/url"

	"github.com/munquest/admin-portal/internal/domain/model"
)

// UserInput — тело запроса обновления пользователя.
type UserInput struct {
	Username string `json:"username"`
	Fullname string `json:"fullname"`
	Email    string `json:"email"`
}

// ListUsers возвращает всех пользователей платформы.
func (c *Client) ListUsers(ctx context.Context, s Session) (*ListResult[model.User], error) {
	return list[model.User](ctx, c, s, "list_users", "/users/all-users", "UserList")
}

// UpdateUser обновляет профиль пользователя id.
func (c *Client) UpdateUser(ctx context.Context, s Session, id string, in UserInput) (*Status, error) {
	return c.mutate(ctx, s, "update_user", http.MethodPatch,
		"/users/update-user/"+url.PathEscape(id), in)
}

// UpdateUserStatus меняет статус пользователя (active, blocked, flagged).
func (c *Client) UpdateUserStatus(ctx context.Context, s Session, id, status string) (*Status, error) {
	body := map[string]string{"status": status}
	return c.mutate(ctx, s, "update_user_status", http.MethodPatch,
		"/users/update-user-status/"+url.PathEscape(id), body)
}

// UpdateGlobalRole назначает пользователю глобальную роль.
func (c *Client) UpdateGlobalRole(ctx context.Context, s Session, id, globalRole string) (*Status, error) {
	body := map[string]string{"globalRole": globalRole}
	return c.mutate(ctx, s, "update_global_role", http.MethodPatch,
		"/users/update-global-role/"+url.PathEscape(id), body)
}

// DeleteUser удаляет пользователя id.
func (c *Client) DeleteUser(ctx context.Context, s Session, id string) (*Status, error) {
	return c.mutate(ctx, s, "delete_user", http.MethodDelete,
		"/users/delete-user/"+url.PathEscape(id), nil)
}
