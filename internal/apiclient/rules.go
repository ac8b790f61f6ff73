package apiclient

import (
	"context"
	"net/http"
	"strconv"
)

// ListRules returns every consumption rule.
func (s *Session) ListRules(ctx context.Context) ([]Rule, error) {
	var out []Rule
	err := s.call(ctx, Request{Name: "rules.list", Method: http.MethodGet, Path: "/rules/"}, &out)
	return out, err
}

// CreateRules posts several rules at once.
func (s *Session) CreateRules(ctx context.Context, in []RuleInput) ([]Rule, error) {
	var out []Rule
	err := s.sendJSON(ctx, "rules.create", http.MethodPost, "/rules/", nil, in, &out)
	return out, err
}

// DeleteRule removes one rule.
func (s *Session) DeleteRule(ctx context.Context, id int64) error {
	return s.call(ctx, Request{Name: "rules.delete", Method: http.MethodDelete, Path: "/rules/" + strconv.FormatInt(id, 10)}, nil)
}
