package apiclient

import (
	"context"
	"net/http"
)

// ListFilms returns the ready films currently on the shelf.
func (s *Session) ListFilms(ctx context.Context) ([]Film, error) {
	var out []Film
	err := s.call(ctx, Request{Name: "films.list", Method: http.MethodGet, Path: "/films/"}, &out)
	return out, err
}
