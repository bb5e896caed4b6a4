package backend

import (
	"context"

	"github.com/munquest/admin-portal/internal/domain/model"
)

// ListLocalities возвращает справочник населённых пунктов.
func (c *Client) ListLocalities(ctx context.Context, s Session) (*ListResult[model.Locality], error) {
	return list[model.Locality](ctx, c, s, "list_localities", "/localities/all-localities", "LocalityList")
}

// ListSchools возвращает справочник школ.
func (c *Client) ListSchools(ctx context.Context, s Session) (*ListResult[model.School], error) {
	return list[model.School](ctx, c, s, "list_schools", "/schools/all-schools", "SchoolList")
}
