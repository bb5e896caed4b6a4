package service

import (
	"context"
	"fmt"
	"sort"
	"strconv"

	"github.com/munquest/admin-portal/internal/backend"
	"github.com/munquest/admin-portal/internal/domain/model"
	"github.com/munquest/admin-portal/internal/table"
)

// KeyEventLeadershipRoles — префикс ключа таблицы ролей мероприятия.
const KeyEventLeadershipRoles = "event-leadership-roles"

// Действия изменения порядка ролей мероприятия.
const (
	ActionMoveUp   = "move-up"
	ActionMoveDown = "move-down"
)

// MsgCannotMove — роль уже первая или последняя в порядке.
const MsgCannotMove = "event_roles.msg.cannot_move"

func init() {
	table.RegisterText(map[string]string{MsgCannotMove: "Role cannot be moved further"})
}

// EventLeadershipRolesKey — ключ таблицы ролей мероприятия eventID.
func EventLeadershipRolesKey(eventID string) string {
	return KeyEventLeadershipRoles + ":" + eventID
}

// EventLeadershipRoleSchema — настройка таблицы ролей мероприятия.
// Варианты роли берутся из каталога руководящих ролей.
func EventLeadershipRoleSchema(eventID string, catalog *Catalog) table.Schema[model.EventLeadershipRole] {
	return table.Schema[model.EventLeadershipRole]{
		Key:      EventLeadershipRolesKey(eventID),
		Title:    "Event Leadership Roles",
		Resource: "Leadership role",
		Fields: []table.Field{
			{Key: "id", Label: "ID", Kind: table.FieldReadOnly},
			{Key: "leadershipRoleId", Label: "Leadership Role", Kind: table.FieldSelect, Required: true,
				Choices: catalog.LeadershipRoleChoices},
			{Key: "abbr", Label: "Abbreviation", Kind: table.FieldReadOnly},
			{Key: "ranking", Label: "Ranking", Kind: table.FieldReadOnly},
		},
		Searchable: []string{"abbr", "leadershipRole"},
		ID:         func(r model.EventLeadershipRole) string { return r.ID.String() },
		Values: func(r model.EventLeadershipRole) table.Values {
			return table.Values{
				"id":               r.ID.String(),
				"leadershipRoleId": r.LeadershipRoleID.String(),
				"abbr":             r.Abbr,
				"leadershipRole":   r.LeadershipRole,
				"ranking":          strconv.Itoa(r.Ranking),
			}
		},
		CanAdd:    true,
		CanEdit:   true,
		CanDelete: true,
		Actions: []table.Action[model.EventLeadershipRole]{
			{Key: ActionMoveUp, Label: "Move up", Success: table.MsgRankingUpdated},
			{Key: ActionMoveDown, Label: "Move down", Success: table.MsgRankingUpdated},
		},
	}
}

// eventRoleSource — операции backend для ролей мероприятия.
type eventRoleSource struct {
	client  *backend.Client
	eventID string
}

func (s eventRoleSource) List(ctx context.Context, sess backend.Session) (*backend.ListResult[model.EventLeadershipRole], error) {
	return s.client.ListEventLeadershipRoles(ctx, sess, s.eventID)
}

func (s eventRoleSource) Create(ctx context.Context, sess backend.Session, v table.Values) (*backend.Status, error) {
	return s.client.CreateEventLeadershipRole(ctx, sess, s.eventID,
		backend.EventLeadershipRoleInput{LeadershipRoleID: v["leadershipRoleId"]})
}

func (s eventRoleSource) Update(ctx context.Context, sess backend.Session, id string, v table.Values) (*backend.Status, error) {
	return s.client.UpdateEventLeadershipRole(ctx, sess, s.eventID, id,
		backend.EventLeadershipRoleInput{LeadershipRoleID: v["leadershipRoleId"]})
}

func (s eventRoleSource) Delete(ctx context.Context, sess backend.Session, id string) (*backend.Status, error) {
	return s.client.DeleteEventLeadershipRole(ctx, sess, s.eventID, id)
}

// Do меняет позицию роли на одну вверх или вниз.
// Порядок берётся из свежего списка backend, затем отправляется целиком.
func (s eventRoleSource) Do(ctx context.Context, sess backend.Session, id, action, _ string) (*backend.Status, error) {
	var delta int
	switch action {
	case ActionMoveUp:
		delta = -1
	case ActionMoveDown:
		delta = 1
	default:
		return nil, fmt.Errorf("%w: %s", table.ErrUnknownAction, action)
	}

	res, err := s.client.ListEventLeadershipRoles(ctx, sess, s.eventID)
	if err != nil {
		return nil, err
	}
	if !res.Success {
		return &res.Status, nil
	}

	ranking, ok := Reorder(res.Items, id, delta)
	if !ok {
		return &backend.Status{Success: false, Message: MsgCannotMove}, nil
	}
	return s.client.UpdateEventRanking(ctx, sess, s.eventID, ranking)
}

// Reorder сдвигает роль id на delta позиций в порядке ranking и
// возвращает новую нумерацию с 1. false — роль не найдена или сдвиг
// выходит за границы списка.
func Reorder(roles []model.EventLeadershipRole, id string, delta int) ([]backend.RankingItem, bool) {
	sorted := append([]model.EventLeadershipRole(nil), roles...)
	sort.SliceStable(sorted, func(i, j int) bool { return sorted[i].Ranking < sorted[j].Ranking })

	pos := -1
	for i, r := range sorted {
		if r.ID.String() == id {
			pos = i
		}
	}
	target := pos + delta
	if pos < 0 || target < 0 || target >= len(sorted) {
		return nil, false
	}
	sorted[pos], sorted[target] = sorted[target], sorted[pos]

	out := make([]backend.RankingItem, 0, len(sorted))
	for i, r := range sorted {
		out = append(out, backend.RankingItem{ID: r.ID.String(), Ranking: i + 1})
	}
	return out, true
}
