package orders

import (
	"context"
	"errors"
	"net/url"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/stockdesk/console/internal/apiclient"
	"github.com/stockdesk/console/internal/panel"
)

type fakeAPI struct {
	orders   []apiclient.Order
	ignored  []int64
	enabled  []int64
	imported int
	err      error
}

func (f *fakeAPI) ListOrders(context.Context) ([]apiclient.Order, error) { return f.orders, f.err }

func (f *fakeAPI) IgnoreOrder(_ context.Context, id int64) error {
	f.ignored = append(f.ignored, id)
	return f.err
}

func (f *fakeAPI) EnableOrder(_ context.Context, id int64) error {
	f.enabled = append(f.enabled, id)
	return f.err
}

func (f *fakeAPI) ImportOrders(context.Context) (int, error) { return f.imported, f.err }

func TestBuildRows(t *testing.T) {
	name := "Иван"
	created := apiclient.Timestamp{Time: time.Date(2024, 3, 5, 10, 20, 30, 0, time.UTC)}
	moscow := time.FixedZone("MSK", 3*3600)

	model := Build([]apiclient.Order{
		{ID: 1, Number: "1001", Customer: &name, CreatedAt: created, Lines: []apiclient.OrderLine{{ProductTitle: "Плёнка", Quantity: 2}}},
		{ID: 2, Number: "1002", CreatedAt: created, Ignored: true},
	}, moscow)

	require.Len(t, model.Rows, 2)
	live, hidden := model.Rows[0], model.Rows[1]

	assert.Equal(t, "Иван", live.Customer)
	assert.Equal(t, "05.03.2024, 13:20:30", live.CreatedAt)
	assert.Equal(t, "🗑️", live.ToggleIcon)
	assert.Equal(t, "btn-outline-danger", live.ToggleClass)
	assert.Equal(t, []Line{{Title: "Плёнка", Quantity: 2}}, live.Lines)

	assert.Equal(t, "без имени", hidden.Customer)
	assert.Equal(t, "⏎", hidden.ToggleIcon)
	assert.Equal(t, "btn-success", hidden.ToggleClass)
}

func TestToggleChoosesEndpoint(t *testing.T) {
	api := &fakeAPI{}

	_, err := Toggle(context.Background(), api, url.Values{"id": {"5"}, "ignored": {"false"}})
	require.NoError(t, err)
	_, err = Toggle(context.Background(), api, url.Values{"id": {"6"}, "ignored": {"true"}})
	require.NoError(t, err)

	assert.Equal(t, []int64{5}, api.ignored)
	assert.Equal(t, []int64{6}, api.enabled)

	_, err = Toggle(context.Background(), api, url.Values{"id": {"x"}})
	assert.Equal(t, "Некорректный идентификатор", panel.ErrorMessage(err))
}

func TestImportMessages(t *testing.T) {
	out, err := Import(context.Background(), &fakeAPI{imported: 4}, nil)
	require.NoError(t, err)
	assert.Equal(t, "Импортировано: 4", out.Message)

	_, err = Import(context.Background(), &fakeAPI{err: &apiclient.StatusError{Status: 502, Body: "timeout"}}, nil)
	assert.Equal(t, "Ошибка импорта: 502", panel.ErrorMessage(err))

	_, err = Import(context.Background(), &fakeAPI{err: apiclient.ErrUnauthorized}, nil)
	assert.True(t, errors.Is(err, apiclient.ErrUnauthorized))
}
