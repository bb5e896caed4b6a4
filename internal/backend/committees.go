package backend

import (
	"context"
	"net/http"
	"net/url"

	"github.com/munquest/admin-portal/internal/domain/model"
)

// CommitteeInput — тело запроса создания/обновления комитета.
type CommitteeInput struct {
	Abbr      string `json:"abbr"`
	Committee string `json:"committee"`
	Category  string `json:"category"`
}

// ListCommittees возвращает каталог комитетов платформы.
func (c *Client) ListCommittees(ctx context.Context, s Session) (*ListResult[model.Committee], error) {
	return list[model.Committee](ctx, c, s, "list_committees",
		"/committees/all-committees", "CommitteeList")
}

// CreateCommittee создаёт комитет.
func (c *Client) CreateCommittee(ctx context.Context, s Session, in CommitteeInput) (*Status, error) {
	return c.mutate(ctx, s, "create_committee", http.MethodPost,
		"/committees/create-committee", in)
}

// UpdateCommittee обновляет комитет id.
func (c *Client) UpdateCommittee(ctx context.Context, s Session, id string, in CommitteeInput) (*Status, error) {
	return c.mutate(ctx, s, "update_committee", http.MethodPatch,
		"/committees/update-committee/"+url.PathEscape(id), in)
}

// DeleteCommittee удаляет комитет id.
func (c *Client) DeleteCommittee(ctx context.Context, s Session, id string) (*Status, error) {
	return c.mutate(ctx, s, "delete_committee", http.MethodDelete,
		"/committees/delete-committee/"+url.PathEscape(id), nil)
}
