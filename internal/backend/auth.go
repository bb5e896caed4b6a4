package backend

import (
	"context"
	"encoding/json"
	"net/http"

	"github.com/munquest/admin-portal/internal/domain/model"
)

// Credentials — учётные данные для входа.
type Credentials struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

// LoginUser — пользователь из ответа на вход.
type LoginUser struct {
	ID          model.ID
	Role        string
	GlobalRole  string
	OrganiserID model.ID
}

// UnmarshalJSON принимает organiserId и устаревшее написание orgainiserId.
func (u *LoginUser) UnmarshalJSON(data []byte) error {
	var raw struct {
		ID                model.ID `json:"id"`
		Role              string   `json:"role"`
		GlobalRole        string   `json:"globalRole"`
		OrganiserID       model.ID `json:"organiserId"`
		LegacyOrganiserID model.ID `json:"orgainiserId"`
	}
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}

	u.ID = raw.ID
	u.Role = raw.Role
	u.GlobalRole = raw.GlobalRole
	u.OrganiserID = raw.OrganiserID
	if u.OrganiserID == "" {
		u.OrganiserID = raw.LegacyOrganiserID
	}
	return nil
}

// LoginData — данные успешного входа.
type LoginData struct {
	Token string    `json:"token"`
	User  LoginUser `json:"user"`
}

// Login выполняет вход и возвращает конверт с токеном.
// Запрос выполняется без сессии.
func (c *Client) Login(ctx context.Context, creds Credentials) (*Envelope[LoginData], error) {
	const op = "login"

	data, err := c.do(ctx, nil, op, http.MethodPost, "/auth/login", creds)
	if err != nil {
		return nil, err
	}

	var env Envelope[LoginData]
	if err := c.decode(op, "LoginResponse", data, &env); err != nil {
		return nil, err
	}
	return &env, nil
}
