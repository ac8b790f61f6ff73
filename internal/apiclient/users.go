package apiclient

import (
	"context"
	"net/http"
	"net/url"
)

type passwordChange struct {
	NewPassword string `json:"new_password"`
}

// ListUsers returns every account.
func (s *Session) ListUsers(ctx context.Context) ([]User, error) {
	var out []User
	err := s.call(ctx, Request{Name: "users.list", Method: http.MethodGet, Path: "/users/"}, &out)
	return out, err
}

// CreateUser posts the given fields as a JSON object.
func (s *Session) CreateUser(ctx context.Context, fields map[string]string) (User, error) {
	var out User
	err := s.sendJSON(ctx, "users.create", http.MethodPost, "/users/", nil, fields, &out)
	return out, err
}

// SetRole changes the role of an account.
func (s *Session) SetRole(ctx context.Context, id, role string) error {
	return s.call(ctx, Request{
		Name:   "users.role",
		Method: http.MethodPatch,
		Path:   "/users/" + url.PathEscape(id) + "/role",
		Query:  url.Values{"role": {role}},
	}, nil)
}

// ToggleState flips the active flag of an account.
func (s *Session) ToggleState(ctx context.Context, id string) error {
	return s.call(ctx, Request{Name: "users.state", Method: http.MethodPatch, Path: "/users/" + url.PathEscape(id) + "/state"}, nil)
}

// ChangePassword sets a new password.
func (s *Session) ChangePassword(ctx context.Context, id, password string) error {
	return s.sendJSON(ctx, "users.password", http.MethodPatch, "/users/"+url.PathEscape(id)+"/password", nil, passwordChange{NewPassword: password}, nil)
}
