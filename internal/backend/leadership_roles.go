package backend

import (
	"context"
	"net/http"
	"net/url"

	"github.com/munquest/admin-portal/internal/domain/model"
)

// LeadershipRoleInput — тело запроса создания/обновления руководящей роли.
type LeadershipRoleInput struct {
	Abbr           string `json:"abbr"`
	LeadershipRole string `json:"leadershipRole"`
}

// ListLeadershipRoles возвращает каталог руководящих ролей платформы.
func (c *Client) ListLeadershipRoles(ctx context.Context, s Session) (*ListResult[model.LeadershipRole], error) {
	return list[model.LeadershipRole](ctx, c, s, "list_leadership_roles",
		"/leadership-roles/all-leadership-roles", "LeadershipRoleList")
}

// CreateLeadershipRole создаёт руководящую роль.
func (c *Client) CreateLeadershipRole(ctx context.Context, s Session, in LeadershipRoleInput) (*Status, error) {
	return c.mutate(ctx, s, "create_leadership_role", http.MethodPost,
		"/leadership-roles/create-leadership-role", in)
}

// UpdateLeadershipRole обновляет руководящую роль id.
func (c *Client) UpdateLeadershipRole(ctx context.Context, s Session, id string, in LeadershipRoleInput) (*Status, error) {
	return c.mutate(ctx, s, "update_leadership_role", http.MethodPatch,
		"/leadership-roles/update-leadership-role/"+url.PathEscape(id), in)
}

// DeleteLeadershipRole удаляет руководящую роль id.
func (c *Client) DeleteLeadershipRole(ctx context.Context, s Session, id string) (*Status, error) {
	return c.mutate(ctx, s, "delete_leadership_role", http.MethodDelete,
		"/leadership-roles/delete-leadership-role/"+url.PathEscape(id), nil)
}
