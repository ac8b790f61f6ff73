package apiclient

import (
	"context"
	"net/http"
	"net/url"
	"strconv"
)

// Period selects a calendar month. The zero value means the trailing twelve
// months.
type Period struct {
	Year  int
	Month int
}

// IsZero reports the trailing-twelve-months period.
func (p Period) IsZero() bool {
	return p.Year == 0 || p.Month == 0
}

// Query renders the period as /stats/totals parameters.
func (p Period) Query() url.Values {
	if p.IsZero() {
		return nil
	}
	return url.Values{
		"year":  {strconv.Itoa(p.Year)},
		"month": {strconv.Itoa(p.Month)},
	}
}

// Totals returns net consumption per material for the period.
func (s *Session) Totals(ctx context.Context, p Period) (Totals, error) {
	var out Totals
	err := s.call(ctx, Request{Name: "stats.totals", Method: http.MethodGet, Path: "/stats/totals", Query: p.Query()}, &out)
	return out, err
}
