package service

import (
	"context"
	"strconv"

	"github.com/munquest/admin-portal/internal/backend"
	"github.com/munquest/admin-portal/internal/domain/model"
	"github.com/munquest/admin-portal/internal/table"
)

// Ключи таблиц организатора.
const (
	KeyOrganiserCommittees      = "organiser-committees"
	KeyOrganiserLeadershipRoles = "organiser-leadership-roles"
)

// OrganiserCommitteeSchema — настройка таблицы комитетов организатора.
func OrganiserCommitteeSchema(catalog *Catalog) table.Schema[model.OrganiserCommittee] {
	return table.Schema[model.OrganiserCommittee]{
		Key:      KeyOrganiserCommittees,
		Title:    "My Committees",
		Resource: "Committee",
		Fields: []table.Field{
			{Key: "id", Label: "ID", Kind: table.FieldReadOnly},
			{Key: "committeeId", Label: "Committee", Kind: table.FieldSelect, Required: true,
				Choices: catalog.CommitteeChoices},
			{Key: "category", Label: "Category", Kind: table.FieldReadOnly},
			{Key: "seats", Label: "Seats", Kind: table.FieldNumber, Required: true},
		},
		Searchable: []string{"abbr", "committee"},
		Categories: committeeCategoryChoices(),
		ID:         func(c model.OrganiserCommittee) string { return c.ID.String() },
		Values: func(c model.OrganiserCommittee) table.Values {
			return table.Values{
				"id":          c.ID.String(),
				"committeeId": c.CommitteeID.String(),
				"abbr":        c.Abbr,
				"committee":   c.Committee,
				"category":    c.Category,
				"seats":       strconv.Itoa(c.Seats),
			}
		},
		Category:  func(c model.OrganiserCommittee) string { return c.Category },
		CanAdd:    true,
		CanEdit:   true,
		CanDelete: true,
	}
}

type organiserCommitteeSource struct {
	client *backend.Client
}

// organiserCommitteeInput переводит значения формы в тело запроса.
// seats уже проверено таблицей как положительное целое.
func organiserCommitteeInput(v table.Values) backend.OrganiserCommitteeInput {
	seats, _ := strconv.Atoi(v["seats"])
	return backend.OrganiserCommitteeInput{CommitteeID: v["committeeId"], Seats: seats}
}

func (s organiserCommitteeSource) List(ctx context.Context, sess backend.Session) (*backend.ListResult[model.OrganiserCommittee], error) {
	return s.client.ListOrganiserCommittees(ctx, sess)
}

func (s organiserCommitteeSource) Create(ctx context.Context, sess backend.Session, v table.Values) (*backend.Status, error) {
	return s.client.CreateOrganiserCommittee(ctx, sess, organiserCommitteeInput(v))
}

func (s organiserCommitteeSource) Update(ctx context.Context, sess backend.Session, id string, v table.Values) (*backend.Status, error) {
	return s.client.UpdateOrganiserCommittee(ctx, sess, id, organiserCommitteeInput(v))
}

func (s organiserCommitteeSource) Delete(ctx context.Context, sess backend.Session, id string) (*backend.Status, error) {
	return s.client.DeleteOrganiserCommittee(ctx, sess, id)
}

func (s organiserCommitteeSource) Do(context.Context, backend.Session, string, string, string) (*backend.Status, error) {
	return nil, table.ErrUnsupported
}

// OrganiserLeadershipRoleSchema — настройка таблицы руководящих ролей организатора.
func OrganiserLeadershipRoleSchema() table.Schema[model.OrganiserLeadershipRole] {
	return table.Schema[model.OrganiserLeadershipRole]{
		Key:      KeyOrganiserLeadershipRoles,
		Title:    "My Leadership Roles",
		Resource: "Leadership role",
		Fields: []table.Field{
			{Key: "id", Label: "ID", Kind: table.FieldReadOnly},
			{Key: "abbr", Label: "Abbreviation", Required: true},
			{Key: "leadershipRole", Label: "Leadership Role", Required: true},
		},
		Searchable: []string{"abbr", "leadershipRole"},
		ID:         func(r model.OrganiserLeadershipRole) string { return r.ID.String() },
		Values: func(r model.OrganiserLeadershipRole) table.Values {
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

type organiserRoleSource struct {
	client *backend.Client
}

func organiserRoleInput(v table.Values) backend.OrganiserLeadershipRoleInput {
	return backend.OrganiserLeadershipRoleInput{Abbr: v["abbr"], LeadershipRole: v["leadershipRole"]}
}

func (s organiserRoleSource) List(ctx context.Context, sess backend.Session) (*backend.ListResult[model.OrganiserLeadershipRole], error) {
	return s.client.ListOrganiserLeadershipRoles(ctx, sess)
}

func (s organiserRoleSource) Create(ctx context.Context, sess backend.Session, v table.Values) (*backend.Status, error) {
	return s.client.CreateOrganiserLeadershipRole(ctx, sess, organiserRoleInput(v))
}

func (s organiserRoleSource) Update(ctx context.Context, sess backend.Session, id string, v table.Values) (*backend.Status, error) {
	return s.client.UpdateOrganiserLeadershipRole(ctx, sess, id, organiserRoleInput(v))
}

func (s organiserRoleSource) Delete(ctx context.Context, sess backend.Session, id string) (*backend.Status, error) {
	return s.client.DeleteOrganiserLeadershipRole(ctx, sess, id)
}

func (s organiserRoleSource) Do(context.Context, backend.Session, string, string, string) (*backend.Status, error) {
	return nil, table.ErrUnsupported
}
