package apiclient

import (
	"context"
	"net/http"
	"strconv"
)

type importResult struct {
	Imported int `json:"imported"`
}

// ListOrders returns every order, ignored ones included.
func (s *Session) ListOrders(ctx context.Context) ([]Order, error) {
	var out []Order
	err := s.call(ctx, Request{Name: "orders.list", Method: http.MethodGet, Path: "/orders/"}, &out)
	return out, err
}

// IgnoreOrder soft-hides an order.
func (s *Session) IgnoreOrder(ctx context.Context, id int64) error {
	return s.call(ctx, Request{Name: "orders.ignore", Method: http.MethodDelete, Path: "/orders/" + strconv.FormatInt(id, 10)}, nil)
}

// EnableOrder restores an ignored order.
func (s *Session) EnableOrder(ctx context.Context, id int64) error {
	return s.call(ctx, Request{Name: "orders.enable", Method: http.MethodPatch, Path: "/orders/" + strconv.FormatInt(id, 10) + "/enable"}, nil)
}

// ImportOrders asks the API to pull fresh orders and returns how many arrived.
func (s *Session) ImportOrders(ctx context.Context) (int, error) {
	var out importResult
	if err := s.call(ctx, Request{Name: "orders.import", Method: http.MethodPost, Path: "/orders/import"}, &out); err != nil {
		return 0, err
	}
	return out.Imported, nil
}
