package films

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/stockdesk/console/internal/apiclient"
)

type fakeAPI struct {
	films []apiclient.Film
	err   error
}

func (f fakeAPI) ListFilms(context.Context) ([]apiclient.Film, error) { return f.films, f.err }

func TestLoad(t *testing.T) {
	model, err := Load(context.Background(), fakeAPI{films: []apiclient.Film{{Title: "Матовая", Quantity: 3}, {Title: "Глянец", Quantity: 0}}})
	require.NoError(t, err)
	assert.Equal(t, []Row{{Title: "Матовая", Quantity: 3}, {Title: "Глянец", Empty: true}}, model.Rows)

	_, err = Load(context.Background(), fakeAPI{err: apiclient.ErrUnauthorized})
	assert.True(t, errors.Is(err, apiclient.ErrUnauthorized))
}
