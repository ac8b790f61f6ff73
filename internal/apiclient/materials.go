package apiclient

import (
	"context"
	"net/http"
	"net/url"
	"strconv"

	"github.com/shopspring/decimal"
)

func materialPath(id int64) string {
	return "/materials/" + strconv.FormatInt(id, 10)
}

// ListMaterials returns all material definitions.
func (s *Session) ListMaterials(ctx context.Context) ([]Material, error) {
	var out []Material
	err := s.call(ctx, Request{Name: "materials.list", Method: http.MethodGet, Path: "/materials/"}, &out)
	return out, err
}

// CreateMaterial adds a material.
func (s *Session) CreateMaterial(ctx context.Context, in MaterialInput) (Material, error) {
	var out Material
	err := s.sendJSON(ctx, "materials.create", http.MethodPost, "/materials/", nil, in, &out)
	return out, err
}

// UpdateMaterial replaces a material definition.
func (s *Session) UpdateMaterial(ctx context.Context, id int64, in MaterialInput) (Material, error) {
	var out Material
	err := s.sendJSON(ctx, "materials.update", http.MethodPut, materialPath(id), nil, in, &out)
	return out, err
}

// DeleteMaterial removes a material together with its rules.
func (s *Session) DeleteMaterial(ctx context.Context, id int64) error {
	return s.call(ctx, Request{Name: "materials.delete", Method: http.MethodDelete, Path: materialPath(id)}, nil)
}

// Stock returns the live quantity of every material.
func (s *Session) Stock(ctx context.Context) ([]StockRow, error) {
	var out []StockRow
	err := s.call(ctx, Request{Name: "materials.stock", Method: http.MethodGet, Path: "/materials/stock"}, &out)
	return out, err
}

// AdjustStock records a manual movement of delta units.
func (s *Session) AdjustStock(ctx context.Context, id int64, delta decimal.Decimal) error {
	return s.call(ctx, Request{
		Name:   "materials.adjust",
		Method: http.MethodPatch,
		Path:   materialPath(id) + "/adjust",
		Query:  url.Values{"delta": {delta.String()}},
	}, nil)
}

// SetMinimum sets the low-stock threshold.
func (s *Session) SetMinimum(ctx context.Context, id int64, value decimal.Decimal) error {
	return s.call(ctx, Request{
		Name:   "materials.min",
		Method: http.MethodPatch,
		Path:   materialPath(id) + "/min",
		Query:  url.Values{"value": {value.String()}},
	}, nil)
}

// History returns up to limit latest movements of a material, newest first.
func (s *Session) History(ctx context.Context, id int64, limit int) ([]HistoryEntry, error) {
	var out []HistoryEntry
	err := s.call(ctx, Request{
		Name:   "materials.history",
		Method: http.MethodGet,
		Path:   materialPath(id) + "/history",
		Query:  url.Values{"limit": {strconv.Itoa(limit)}},
	}, &out)
	return out, err
}
