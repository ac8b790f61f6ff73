// Package users implements the account list with role, activity and
// password controls, and the account creation form.
package users

import (
	"context"
	"fmt"
	"net/url"
	"strings"

	"github.com/google/uuid"

	"github.com/stockdesk/console/internal/apiclient"
	"github.com/stockdesk/console/internal/panel"
	"github.com/stockdesk/console/internal/shared"
)

// API is the slice of the REST client the panel needs.
type API interface {
	ListUsers(ctx context.Context) ([]apiclient.User, error)
	CreateUser(ctx context.Context, fields map[string]string) (apiclient.User, error)
	SetRole(ctx context.Context, id, role string) error
	ToggleState(ctx context.Context, id string) error
	ChangePassword(ctx context.Context, id, password string) error
}

// Roles offered by the role selector.
var Roles = []string{apiclient.RoleAdmin, apiclient.RoleCollector}

// Row is one account of the table. Admin rows are read-only; the controls
// are rendered only when the matching flag is set.
type Row struct {
	ID       string
	Username string
	Role     string

	RoleSelect   bool
	StateToggle  bool
	ToggleIcon   string
	ToggleClass  string
	PasswordForm bool
}

// Model is the panel view-model.
type Model struct {
	Rows  []Row
	Roles []string
}

// BuildRow derives the controls of one account.
func BuildRow(u apiclient.User) Row {
	row := Row{ID: u.ID, Username: u.Username, Role: u.Role}
	if u.Role == apiclient.RoleAdmin {
		return row
	}
	row.RoleSelect = true
	row.StateToggle = true
	if u.IsActive {
		row.ToggleIcon, row.ToggleClass = "✔", "btn-success"
	} else {
		row.ToggleIcon, row.ToggleClass = "✖", "btn-outline-secondary"
	}
	row.PasswordForm = u.Role == apiclient.RoleCollector
	return row
}

// Build turns accounts into rows.
func Build(list []apiclient.User) Model {
	rows := make([]Row, 0, len(list))
	for _, u := range list {
		rows = append(rows, BuildRow(u))
	}
	return Model{Rows: rows, Roles: Roles}
}

// Load fetches and builds the panel.
func Load(ctx context.Context, api API) (Model, error) {
	list, err := api.ListUsers(ctx)
	if err != nil {
		return Model{}, fmt.Errorf("users: list: %w", err)
	}
	return Build(list), nil
}

func parseUserID(form url.Values) (string, error) {
	id, err := uuid.Parse(strings.TrimSpace(form.Get("id")))
	if err != nil {
		return "", panel.Invalid("Некорректный идентификатор")
	}
	return id.String(), nil
}

// SetRole changes the role of a collector.
func SetRole(ctx context.Context, api API, form url.Values) (panel.Outcome, error) {
	id, err := parseUserID(form)
	if err != nil {
		return panel.Outcome{}, err
	}
	role := form.Get("role")
	if role != apiclient.RoleAdmin && role != apiclient.RoleCollector {
		return panel.Outcome{}, panel.Invalid("Неизвестная роль")
	}
	if err := api.SetRole(ctx, id, role); err != nil {
		return panel.Outcome{}, fmt.Errorf("users: role %s: %w", id, err)
	}
	return panel.Outcome{}, nil
}

// ToggleState flips the active flag.
func ToggleState(ctx context.Context, api API, form url.Values) (panel.Outcome, error) {
	id, err := parseUserID(form)
	if err != nil {
		return panel.Outcome{}, err
	}
	if err := api.ToggleState(ctx, id); err != nil {
		return panel.Outcome{}, fmt.Errorf("users: state %s: %w", id, err)
	}
	return panel.Outcome{}, nil
}

// ChangePassword sets a new password for a collector.
func ChangePassword(ctx context.Context, api API, form url.Values) (panel.Outcome, error) {
	id, err := parseUserID(form)
	if err != nil {
		return panel.Outcome{}, err
	}
	password := strings.TrimSpace(form.Get("new_password"))
	if password == "" {
		return panel.Outcome{}, panel.Invalid("Введите новый пароль")
	}
	if err := api.ChangePassword(ctx, id, password); err != nil {
		return panel.Outcome{}, fmt.Errorf("users: password %s: %w", id, err)
	}
	return panel.Success("Пароль успешно изменён"), nil
}

// pageFields travel with every console form and are not account data.
var pageFields = map[string]bool{shared.CSRFFormField: true, "return": true, "month": true}

// CreateFields collects the creation form as-is, minus the page fields.
func CreateFields(form url.Values) map[string]string {
	fields := make(map[string]string, len(form))
	for key, values := range form {
		if pageFields[key] || len(values) == 0 {
			continue
		}
		fields[key] = values[0]
	}
	return fields
}

// Create posts a new account.
func Create(ctx context.Context, api API, form url.Values) (panel.Outcome, error) {
	if _, err := api.CreateUser(ctx, CreateFields(form)); err != nil {
		if se, ok := apiclient.AsStatusError(err); ok {
			return panel.Outcome{}, panel.Invalid(fmt.Sprintf("ошибка %d", se.Status))
		}
		return panel.Outcome{}, fmt.Errorf("users: create: %w", err)
	}
	return panel.Outcome{}, nil
}
