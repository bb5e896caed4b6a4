package service

import (
	"context"
	"fmt"

	"github.com/munquest/admin-portal/internal/backend"
	"github.com/munquest/admin-portal/internal/domain/model"
	"github.com/munquest/admin-portal/internal/domain/rbac"
	"github.com/munquest/admin-portal/internal/table"
)

// KeyUsers — ключ таблицы пользователей.
const KeyUsers = "users"

// Действия меню таблицы пользователей.
const (
	ActionBlock      = "block"
	ActionUnblock    = "unblock"
	ActionFlag       = "flag"
	ActionAssignRole = "assign-role"
)

// Ключи уведомлений действий над пользователями.
const (
	MsgUserBlocked   = "users.msg.blocked"
	MsgUserUnblocked = "users.msg.unblocked"
	MsgUserFlagged   = "users.msg.flagged"
	MsgRoleAssigned  = "users.msg.role_assigned"
)

func init() {
	table.RegisterText(map[string]string{
		MsgUserBlocked:   "User blocked successfully",
		MsgUserUnblocked: "User unblocked successfully",
		MsgUserFlagged:   "User flagged successfully",
		MsgRoleAssigned:  "Role assigned successfully",
	})
}

// UserSchema — настройка таблицы пользователей.
// actorRole — глобальная роль текущего пользователя: определяет,
// какие роли он может назначать.
func UserSchema(actorRole string) table.Schema[model.User] {
	return table.Schema[model.User]{
		Key:      KeyUsers,
		Title:    "Users",
		Resource: "User",
		Fields: []table.Field{
			{Key: "id", Label: "ID", Kind: table.FieldReadOnly},
			{Key: "username", Label: "Username", Required: true},
			{Key: "fullname", Label: "Full Name", Required: true},
			{Key: "email", Label: "Email", Required: true},
			{Key: "role", Label: "Role", Kind: table.FieldReadOnly},
			{Key: "status", Label: "Status", Kind: table.FieldReadOnly},
			{Key: "globalRole", Label: "Global Role", Kind: table.FieldReadOnly},
		},
		Searchable: []string{"username", "fullname", "email"},
		Categories: []table.Choice{
			{Value: model.UserRoleStudent, Label: "Students"},
			{Value: model.UserRoleTeacher, Label: "Teachers"},
			{Value: model.UserRoleOrganiser, Label: "Organisers"},
		},
		ID: func(u model.User) string { return u.ID.String() },
		Values: func(u model.User) table.Values {
			return table.Values{
				"id":         u.ID.String(),
				"username":   u.Username,
				"fullname":   u.Fullname,
				"email":      u.Email,
				"role":       u.Role,
				"status":     u.Status,
				"globalRole": u.GlobalRole,
			}
		},
		Category:  func(u model.User) string { return u.Role },
		CanEdit:   true,
		CanDelete: true,
		Actions: []table.Action[model.User]{
			{
				Key:     ActionBlock,
				Label:   "Block",
				Success: MsgUserBlocked,
				Visible: func(u model.User) bool { return u.Status != model.UserStatusBlocked },
			},
			{
				Key:     ActionUnblock,
				Label:   "Unblock",
				Success: MsgUserUnblocked,
				Visible: func(u model.User) bool {
					return u.Status == model.UserStatusBlocked || u.Status == model.UserStatusFlagged
				},
			},
			{
				Key:     ActionFlag,
				Label:   "Flag",
				Success: MsgUserFlagged,
				Visible: func(u model.User) bool { return u.Status != model.UserStatusFlagged },
			},
			{
				Key:     ActionAssignRole,
				Label:   "Assign role",
				Success: MsgRoleAssigned,
				Visible: func(u model.User) bool {
					return rbac.CanManagePlatform(actorRole) && rbac.CanAssign(actorRole, orUser(u.GlobalRole))
				},
				Choices: func(u model.User) []table.Choice {
					var out []table.Choice
					for _, r := range rbac.AssignableRoles(actorRole) {
						if r != u.GlobalRole {
							out = append(out, table.Choice{Value: r, Label: r})
						}
					}
					return out
				},
			},
		},
	}
}

// orUser — пустая глобальная роль трактуется как user.
func orUser(role string) string {
	if role == "" {
		return rbac.GlobalRoleUser
	}
	return role
}

type userSource struct {
	client *backend.Client
}

func (s userSource) List(ctx context.Context, sess backend.Session) (*backend.ListResult[model.User], error) {
	return s.client.ListUsers(ctx, sess)
}

func (s userSource) Create(context.Context, backend.Session, table.Values) (*backend.Status, error) {
	return nil, table.ErrUnsupported
}

func (s userSource) Update(ctx context.Context, sess backend.Session, id string, v table.Values) (*backend.Status, error) {
	return s.client.UpdateUser(ctx, sess, id, backend.UserInput{
		Username: v["username"],
		Fullname: v["fullname"],
		Email:    v["email"],
	})
}

func (s userSource) Delete(ctx context.Context, sess backend.Session, id string) (*backend.Status, error) {
	return s.client.DeleteUser(ctx, sess, id)
}

func (s userSource) Do(ctx context.Context, sess backend.Session, id, action, arg string) (*backend.Status, error) {
	switch action {
	case ActionBlock:
		return s.client.UpdateUserStatus(ctx, sess, id, model.UserStatusBlocked)
	case ActionUnblock:
		return s.client.UpdateUserStatus(ctx, sess, id, model.UserStatusActive)
	case ActionFlag:
		return s.client.UpdateUserStatus(ctx, sess, id, model.UserStatusFlagged)
	case ActionAssignRole:
		if !rbac.IsValidGlobalRole(arg) {
			return nil, fmt.Errorf("%w: глобальная роль %q", ErrValidation, arg)
		}
		return s.client.UpdateGlobalRole(ctx, sess, id, arg)
	}
	return nil, fmt.Errorf("%w: %s", table.ErrUnknownAction, action)
}
