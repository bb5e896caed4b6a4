package backend

import (
	"context"
	"net/http"
	"net/url"

	"github.com/munquest/admin-portal/internal/domain/model"
)

// OrganiserCommitteeInput — тело запроса комитета организатора.
type OrganiserCommitteeInput struct {
	CommitteeID string `json:"committeeId"`
	Seats       int    `json:"seats"`
}

// OrganiserLeadershipRoleInput — тело запроса руководящей роли организатора.
type OrganiserLeadershipRoleInput struct {
	Abbr           string `json:"abbr"`
	LeadershipRole string `json:"leadershipRole"`
}

func organiserPath(organiserID, resource string) string {
	return "/organisers/" + url.PathEscape(organiserID) + "/" + resource
}

// ListOrganiserCommittees возвращает комитеты организатора из сессии.
func (c *Client) ListOrganiserCommittees(ctx context.Context, s Session) (*ListResult[model.OrganiserCommittee], error) {
	return list[model.OrganiserCommittee](ctx, c, s, "list_organiser_committees",
		organiserPath(s.OrganiserID, "committees")+"/all-committees", "OrganiserCommitteeList")
}

// CreateOrganiserCommittee добавляет комитет организатору.
func (c *Client) CreateOrganiserCommittee(ctx context.Context, s Session, in OrganiserCommitteeInput) (*Status, error) {
	return c.mutate(ctx, s, "create_organiser_committee", http.MethodPost,
		organiserPath(s.OrganiserID, "committees")+"/create-committee", in)
}

// UpdateOrganiserCommittee обновляет комитет организатора id.
func (c *Client) UpdateOrganiserCommittee(ctx context.Context, s Session, id string, in OrganiserCommitteeInput) (*Status, error) {
	return c.mutate(ctx, s, "update_organiser_committee", http.MethodPatch,
		organiserPath(s.OrganiserID, "committees")+"/update-committee/"+url.PathEscape(id), in)
}

// DeleteOrganiserCommittee удаляет комитет организатора id.
func (c *Client) DeleteOrganiserCommittee(ctx context.Context, s Session, id string) (*Status, error) {
	return c.mutate(ctx, s, "delete_organiser_committee", http.MethodDelete,
		organiserPath(s.OrganiserID, "committees")+"/delete-committee/"+url.PathEscape(id), nil)
}

// ListOrganiserLeadershipRoles возвращает руководящие роли организатора.
func (c *Client) ListOrganiserLeadershipRoles(ctx context.Context, s Session) (*ListResult[model.OrganiserLeadershipRole], error) {
	return list[model.OrganiserLeadershipRole](ctx, c, s, "list_organiser_leadership_roles",
		organiserPath(s.OrganiserID, "leadership-roles")+"/all-leadership-roles", "OrganiserLeadershipRoleList")
}

// CreateOrganiserLeadershipRole создаёт руководящую роль организатора.
func (c *Client) CreateOrganiserLeadershipRole(ctx context.Context, s Session, in OrganiserLeadershipRoleInput) (*Status, error) {
	return c.mutate(ctx, s, "create_organiser_leadership_role", http.MethodPost,
		organiserPath(s.OrganiserID, "leadership-roles")+"/create-leadership-role", in)
}

// UpdateOrganiserLeadershipRole обновляет руководящую роль организатора id.
func (c *Client) UpdateOrganiserLeadershipRole(ctx context.Context, s Session, id string, in OrganiserLeadershipRoleInput) (*Status, error) {
	return c.mutate(ctx, s, "update_organiser_leadership_role", http.MethodPatch,
		organiserPath(s.OrganiserID, "leadership-roles")+"/update-leadership-role/"+url.PathEscape(id), in)
}

// DeleteOrganiserLeadershipRole удаляет руководящую роль организатора id.
func (c *Client) DeleteOrganiserLeadershipRole(ctx context.Context, s Session, id string) (*Status, error) {
	return c.mutate(ctx, s, "delete_organiser_leadership_role", http.MethodDelete,
		organiserPath(s.OrganiserID, "leadership-roles")+"/delete-leadership-role/"+url.PathEscape(id), nil)
}
