package apiclient

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"strings"
)

type tokenResponse struct {
	AccessToken string `json:"access_token"`
	TokenType   string `json:"token_type"`
}

// Login exchanges credentials for a token and stores it. The request is
// form-encoded, as the auth endpoint expects an OAuth2 password form.
func (s *Session) Login(ctx context.Context, username, password string) error {
	form := url.Values{}
	form.Set("username", username)
	form.Set("password", password)
	resp, err := s.Do(ctx, Request{
		Name:        "auth.login",
		Method:      http.MethodPost,
		Path:        "/auth/login",
		Body:        strings.NewReader(form.Encode()),
		ContentType: "application/x-www-form-urlencoded",
	})
	if err != nil {
		if errors.Is(err, ErrUnauthorized) {
			return ErrInvalidCredentials
		}
		return err
	}
	if resp.Status == http.StatusBadRequest {
		return ErrInvalidCredentials
	}
	if !resp.OK() {
		return &StatusError{Status: resp.Status, Body: resp.Text()}
	}
	var out tokenResponse
	if err := json.Unmarshal(resp.Body, &out); err != nil {
		return fmt.Errorf("apiclient: decode auth.login: %w", err)
	}
	if out.AccessToken == "" {
		return fmt.Errorf("apiclient: auth.login: empty access token")
	}
	s.store.SetAccessToken(out.AccessToken)
	return nil
}

// Logout forgets the stored token. The API keeps no server-side session.
func (s *Session) Logout() {
	s.store.ClearAccessToken()
}

// Me returns the identity behind the stored token.
func (s *Session) Me(ctx context.Context) (Identity, error) {
	var id Identity
	err := s.call(ctx, Request{Name: "auth.me", Method: http.MethodGet, Path: "/auth/me"}, &id)
	return id, err
}
