package service

import (
	"context"

	"github.com/munquest/admin-portal/internal/backend"
	"github.com/munquest/admin-portal/internal/domain/model"
	"github.com/munquest/admin-portal/internal/table"
)

// KeyLeadershipRoles — ключ таблицы руководящих ролей платформы.
const KeyLeadershipRoles = "leadership-roles"

// LeadershipRoleSchema — настройка таблицы руководящих ролей.
func LeadershipRoleSchema() table.Schema[model.LeadershipRole] {
	return table.Schema[model.LeadershipRole]{
		Key:      KeyLeadershipRoles,
		Title:    "Leadership Roles",
		Resource: "Leadership role",
		Fields: []table.Field{
			{Key: "id", Label: "ID", Kind: table.FieldReadOnly},
			{Key: "abbr", Label: "Abbreviation", Required: true},
			{Key: "leadershipRole", Label: "Leadership Role", Required: true},
		},
		Searchable: []string{"abbr", "leadershipRole"},
		ID:         func(r model.LeadershipRole) string { return r.ID.String() },
		Values: func(r model.LeadershipRole) table.Values {
			return table.Values{
				"id":             r.ID.String(),
				"abbr":           r.Abbr,
				"leadershipRole": r.LeadershipRole,
			}
		},
		CanAdd:    true,
		CanEdit:   true,
		CanDelete: true,
	}
}

type leadershipRoleSource struct {
	client *backend.Client
}

func leadershipRoleInput(v table.Values) backend.LeadershipRoleInput {
	return backend.LeadershipRoleInput{
		Abbr:           v["abbr"],
		LeadershipRole: v["leadershipRole"],
	}
}

func (s leadershipRoleSource) List(ctx context.Context, sess backend.Session) (*backend.ListResult[model.LeadershipRole], error) {
	return s.client.ListLeadershipRoles(ctx, sess)
}

func (s leadershipRoleSource) Create(ctx context.Context, sess backend.Session, v table.Values) (*backend.Status, error) {
	return s.client.CreateLeadershipRole(ctx, sess, leadershipRoleInput(v))
}

func (s leadershipRoleSource) Update(ctx context.Context, sess backend.Session, id string, v table.Values) (*backend.Status, error) {
	return s.client.UpdateLeadershipRole(ctx, sess, id, leadershipRoleInput(v))
}

func (s leadershipRoleSource) Delete(ctx context.Context, sess backend.Session, id string) (*backend.Status, error) {
	return s.client.DeleteLeadershipRole(ctx, sess, id)
}

func (s leadershipRoleSource) Do(context.Context, backend.Session, string, string, string) (*backend.Status, error) {
	return nil, table.ErrUnsupported
}
