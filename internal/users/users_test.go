package users

import (
	"context"
	"net/url"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/stockdesk/console/internal/apiclient"
	"github.com/stockdesk/console/internal/panel"
)

const collectorID = "6f1f5a43-5c3e-4b7e-9c1a-2d4b8f0e9a11"

type fakeAPI struct {
	roles     map[string]string
	toggled   []string
	passwords map[string]string
	created   []map[string]string
	err       error
}

func newFake() *fakeAPI {
	return &fakeAPI{roles: map[string]string{}, passwords: map[string]string{}}
}

func (f *fakeAPI) ListUsers(context.Context) ([]apiclient.User, error) { return nil, f.err }

func (f *fakeAPI) CreateUser(_ context.Context, fields map[string]string) (apiclient.User, error) {
	f.created = append(f.created, fields)
	return apiclient.User{}, f.err
}

func (f *fakeAPI) SetRole(_ context.Context, id, role string) error {
	f.roles[id] = role
	return f.err
}

func (f *fakeAPI) ToggleState(_ context.Context, id string) error {
	f.toggled = append(f.toggled, id)
	return f.err
}

func (f *fakeAPI) ChangePassword(_ context.Context, id, password string) error {
	f.passwords[id] = password
	return f.err
}

func TestBuildRowControls(t *testing.T) {
	model := Build([]apiclient.User{
		{ID: "a", Username: "root", Role: "admin", IsActive: true},
		{ID: collectorID, Username: "anna", Role: "collector", IsActive: true},
		{ID: "c", Username: "boris", Role: "collector", IsActive: false},
	})
	require.Len(t, model.Rows, 3)

	admin := model.Rows[0]
	assert.False(t, admin.RoleSelect)
	assert.False(t, admin.StateToggle)
	assert.False(t, admin.PasswordForm)

	active := model.Rows[1]
	assert.True(t, active.RoleSelect)
	assert.True(t, active.PasswordForm)
	assert.Equal(t, "✔", active.ToggleIcon)
	assert.Equal(t, "btn-success", active.ToggleClass)

	inactive := model.Rows[2]
	assert.Equal(t, "✖", inactive.ToggleIcon)
	assert.Equal(t, "btn-outline-secondary", inactive.ToggleClass)
}

func TestSetRoleValidates(t *testing.T) {
	api := newFake()
	ctx := context.Background()

	_, err := SetRole(ctx, api, url.Values{"id": {"42"}, "role": {"admin"}})
	assert.Equal(t, "Некорректный идентификатор", panel.ErrorMessage(err))
	_, err = SetRole(ctx, api, url.Values{"id": {collectorID}, "role": {"root"}})
	assert.Equal(t, "Неизвестная роль", panel.ErrorMessage(err))

	_, err = SetRole(ctx, api, url.Values{"id": {collectorID}, "role": {"admin"}})
	require.NoError(t, err)
	assert.Equal(t, map[string]string{collectorID: "admin"}, api.roles)
}

func TestChangePassword(t *testing.T) {
	api := newFake()
	ctx := context.Background()

	_, err := ChangePassword(ctx, api, url.Values{"id": {collectorID}, "new_password": {"   "}})
	assert.Equal(t, "Введите новый пароль", panel.ErrorMessage(err))
	assert.Empty(t, api.passwords)

	out, err := ChangePassword(ctx, api, url.Values{"id": {collectorID}, "new_password": {" hunter22 "}})
	require.NoError(t, err)
	assert.Equal(t, "Пароль успешно изменён", out.Message)
	assert.Equal(t, "hunter22", api.passwords[collectorID])

	api.err = &apiclient.StatusError{Status: 404, Body: "User not found"}
	_, err = ChangePassword(ctx, api, url.Values{"id": {collectorID}, "new_password": {"x"}})
	assert.Equal(t, "Ошибка 404: User not found", panel.ErrorMessage(err))
}

func TestCreateForwardsFields(t *testing.T) {
	api := newFake()
	form := url.Values{"username": {"vera"}, "password": {"pw"}, "role": {"collector"}, "csrf_token": {"t"}}

	_, err := Create(context.Background(), api, form)
	require.NoError(t, err)
	assert.Equal(t, []map[string]string{{"username": "vera", "password": "pw", "role": "collector"}}, api.created)

	api.err = &apiclient.StatusError{Status: 409, Body: "exists"}
	_, err = Create(context.Background(), api, form)
	assert.Equal(t, "ошибка 409", panel.ErrorMessage(err))
}

func TestToggleState(t *testing.T) {
	api := newFake()
	_, err := ToggleState(context.Background(), api, url.Values{"id": {collectorID}})
	require.NoError(t, err)
	assert.Equal(t, []string{collectorID}, api.toggled)
}
