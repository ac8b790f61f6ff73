// Package films lists the ready-made films shown on the collector page.
package films

import (
	"context"
	"fmt"

	"github.com/stockdesk/console/internal/apiclient"
)

// API is the slice of the REST client the panel needs.
type API interface {
	ListFilms(ctx context.Context) ([]apiclient.Film, error)
}

// Row is one film on the shelf.
type Row struct {
	Title    string
	Quantity int
	Empty    bool
}

// Model is the panel view-model.
type Model struct {
	Rows []Row
}

// Build keeps the API order, which is by title.
func Build(list []apiclient.Film) Model {
	rows := make([]Row, 0, len(list))
	for _, f := range list {
		rows = append(rows, Row{Title: f.Title, Quantity: f.Quantity, Empty: f.Quantity <= 0})
	}
	return Model{Rows: rows}
}

// Load fetches and builds the panel.
func Load(ctx context.Context, api API) (Model, error) {
	list, err := api.ListFilms(ctx)
	if err != nil {
		return Model{}, fmt.Errorf("films: list: %w", err)
	}
	return Build(list), nil
}
