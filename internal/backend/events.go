package backend

import (
	"context"
	"net/http"
	"net/url"

	"github.com/munquest/admin-portal/internal/domain/model"
)

// EventLeadershipRoleInput — тело запроса создания/обновления роли мероприятия.
type EventLeadershipRoleInput struct {
	LeadershipRoleID string `json:"leadershipRoleId"`
}

// RankingItem — позиция роли мероприятия в порядке отображения.
type RankingItem struct {
	ID      string `json:"id"`
	Ranking int    `json:"ranking"`
}

func eventRolesPath(eventID string) string {
	return "/events/" + url.PathEscape(eventID) + "/leadership-roles"
}

// ListEventLeadershipRoles возвращает руководящие роли мероприятия.
func (c *Client) ListEventLeadershipRoles(ctx context.Context, s Session, eventID string) (*ListResult[model.EventLeadershipRole], error) {
	return list[model.EventLeadershipRole](ctx, c, s, "list_event_leadership_roles",
		eventRolesPath(eventID)+"/all-leadership-roles", "EventLeadershipRoleList")
}

// CreateEventLeadershipRole добавляет руководящую роль в мероприятие.
func (c *Client) CreateEventLeadershipRole(ctx context.Context, s Session, eventID string, in EventLeadershipRoleInput) (*Status, error) {
	return c.mutate(ctx, s, "create_event_leadership_role", http.MethodPost,
		eventRolesPath(eventID)+"/create-leadership-role", in)
}

// UpdateEventLeadershipRole обновляет роль мероприятия id.
func (c *Client) UpdateEventLeadershipRole(ctx context.Context, s Session, eventID, id string, in EventLeadershipRoleInput) (*Status, error) {
	return c.mutate(ctx, s, "update_event_leadership_role", http.MethodPatch,
		eventRolesPath(eventID)+"/update-leadership-role/"+url.PathEscape(id), in)
}

// DeleteEventLeadershipRole удаляет роль мероприятия id.
func (c *Client) DeleteEventLeadershipRole(ctx context.Context, s Session, eventID, id string) (*Status, error) {
	return c.mutate(ctx, s, "delete_event_leadership_role", http.MethodDelete,
		eventRolesPath(eventID)+"/delete-leadership-role/"+url.PathEscape(id), nil)
}

// UpdateEventRanking сохраняет порядок ролей мероприятия.
func (c *Client) UpdateEventRanking(ctx context.Context, s Session, eventID string, items []RankingItem) (*Status, error) {
	body := map[string][]RankingItem{"rankings": items}
	return c.mutate(ctx, s, "update_event_ranking", http.MethodPatch,
		eventRolesPath(eventID)+"/update-ranking", body)
}
