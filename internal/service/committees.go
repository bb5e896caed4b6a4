package service

import (
	"context"

	"github.com/munquest/admin-portal/internal/backend"
	"github.com/munquest/admin-portal/internal/domain/model"
	"github.com/munquest/admin-portal/internal/table"
)

// KeyCommittees — ключ таблицы комитетов платформы.
const KeyCommittees = "committees"

// committeeCategoryChoices — категории комитетов.
func committeeCategoryChoices() []table.Choice {
	return []table.Choice{
		{Value: model.CommitteeCategoryCountry, Label: "Country"},
		{Value: model.CommitteeCategoryRole, Label: "Role"},
	}
}

// CommitteeSchema — настройка таблицы комитетов.
func CommitteeSchema() table.Schema[model.Committee] {
	return table.Schema[model.Committee]{
		Key:      KeyCommittees,
		Title:    "Committees",
		Resource: "Committee",
		Fields: []table.Field{
			{Key: "id", Label: "ID", Kind: table.FieldReadOnly},
			{Key: "abbr", Label: "Abbreviation", Required: true},
			{Key: "committee", Label: "Committee", Required: true},
			{Key: "category", Label: "Category", Kind: table.FieldSelect, Required: true,
				Default: model.CommitteeCategoryCountry, Choices: committeeCategoryChoices},
		},
		Searchable: []string{"abbr", "committee"},
		Categories: committeeCategoryChoices(),
		ID:         func(c model.Committee) string { return c.ID.String() },
		Values: func(c model.Committee) table.Values {
			return table.Values{
				"id":        c.ID.String(),
				"abbr":      c.Abbr,
				"committee": c.Committee,
				"category":  c.Category,
			}
		},
		Category:  func(c model.Committee) string { return c.Category },
		CanAdd:    true,
		CanEdit:   true,
		CanDelete: true,
	}
}

// committeeSource — операции backend для таблицы комитетов.
type committeeSource struct {
	client *backend.Client
}

func committeeInput(v table.Values) backend.CommitteeInput {
	return backend.CommitteeInput{
		Abbr:      v["abbr"],
		Committee: v["committee"],
		Category:  v["category"],
	}
}

func (s committeeSource) List(ctx context.Context, sess backend.Session) (*backend.ListResult[model.Committee], error) {
	return s.client.ListCommittees(ctx, sess)
}

func (s committeeSource) Create(ctx context.Context, sess backend.Session, v table.Values) (*backend.Status, error) {
	return s.client.CreateCommittee(ctx, sess, committeeInput(v))
}

func (s committeeSource) Update(ctx context.Context, sess backend.Session, id string, v table.Values) (*backend.Status, error) {
	return s.client.UpdateCommittee(ctx, sess, id, committeeInput(v))
}

func (s committeeSource) Delete(ctx context.Context, sess backend.Session, id string) (*backend.Status, error) {
	return s.client.DeleteCommittee(ctx, sess, id)
}

func (s committeeSource) Do(context.Context, backend.Session, string, string, string) (*backend.Status, error) {
	return nil, table.ErrUnsupported
}
