// Package orders implements the orders panel: the order list with its
// ignore/restore toggle and the manual import button.
package orders

import (
	"context"
	"fmt"
	"net/url"
	"strings"
	"time"

	"github.com/stockdesk/console/internal/apiclient"
	"github.com/stockdesk/console/internal/panel"
	"github.com/stockdesk/console/internal/view"
)

// API is the slice of the REST client the panel needs.
type API interface {
	ListOrders(ctx context.Context) ([]apiclient.Order, error)
	IgnoreOrder(ctx context.Context, id int64) error
	EnableOrder(ctx context.Context, id int64) error
	ImportOrders(ctx context.Context) (int, error)
}

// Line is one product line as shown under an order.
type Line struct {
	Title    string
	Quantity int
}

// Row is one order of the list.
type Row struct {
	ID        int64
	Number    string
	Customer  string
	CreatedAt string
	Ignored   bool
	// ToggleIcon and ToggleClass reflect the current state: a restore arrow
	// on ignored orders, a bin on live ones.
	ToggleIcon  string
	ToggleClass string
	ToggleTitle string
	Lines       []Line
}

// Model is the panel view-model.
type Model struct {
	Rows []Row
}

const anonymousCustomer = "без имени"

// Build turns API orders into rows.
func Build(orders []apiclient.Order, loc *time.Location) Model {
	rows := make([]Row, 0, len(orders))
	for _, o := range orders {
		customer := anonymousCustomer
		if o.Customer != nil && strings.TrimSpace(*o.Customer) != "" {
			customer = *o.Customer
		}
		row := Row{
			ID:        o.ID,
			Number:    o.Number,
			Customer:  customer,
			CreatedAt: view.FormatTime(o.CreatedAt.Time, loc),
			Ignored:   o.Ignored,
			Lines:     make([]Line, 0, len(o.Lines)),
		}
		if o.Ignored {
			row.ToggleIcon, row.ToggleClass, row.ToggleTitle = "⏎", "btn-success", "Вернуть заказ"
		} else {
			row.ToggleIcon, row.ToggleClass, row.ToggleTitle = "🗑️", "btn-outline-danger", "Игнорировать заказ"
		}
		for _, l := range o.Lines {
			row.Lines = append(row.Lines, Line{Title: l.ProductTitle, Quantity: l.Quantity})
		}
		rows = append(rows, row)
	}
	return Model{Rows: rows}
}

// Load fetches and builds the panel.
func Load(ctx context.Context, api API, loc *time.Location) (Model, error) {
	list, err := api.ListOrders(ctx)
	if err != nil {
		return Model{}, fmt.Errorf("orders: list: %w", err)
	}
	return Build(list, loc), nil
}

// Toggle hides a live order or restores an ignored one. The form carries the
// state the row was rendered with.
func Toggle(ctx context.Context, api API, form url.Values) (panel.Outcome, error) {
	id, err := panel.ParseID(form, "id")
	if err != nil {
		return panel.Outcome{}, err
	}
	if form.Get("ignored") == "true" {
		err = api.EnableOrder(ctx, id)
	} else {
		err = api.IgnoreOrder(ctx, id)
	}
	if err != nil {
		return panel.Outcome{}, fmt.Errorf("orders: toggle %d: %w", id, err)
	}
	return panel.Outcome{}, nil
}

// Import pulls new orders and reports how many arrived.
func Import(ctx context.Context, api API, _ url.Values) (panel.Outcome, error) {
	n, err := api.ImportOrders(ctx)
	if err != nil {
		if se, ok := apiclient.AsStatusError(err); ok {
			return panel.Outcome{}, panel.Invalid(fmt.Sprintf("Ошибка импорта: %d", se.Status))
		}
		return panel.Outcome{}, fmt.Errorf("orders: import: %w", err)
	}
	return panel.Success(fmt.Sprintf("Импортировано: %d", n)), nil
}
