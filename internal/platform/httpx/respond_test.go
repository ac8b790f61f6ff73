package httpx

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRespondErrorMapping(t *testing.T) {
	cases := map[error]int{
		fmt.Errorf("action: %w", ErrNotFound):  http.StatusNotFound,
		ErrForbidden:                          http.StatusForbidden,
		ErrUnauthorized:                       http.StatusUnauthorized,
		ErrValidation:                         http.StatusBadRequest,
		errors.New("boom"):                    http.StatusInternalServerError,
	}
	for err, want := range cases {
		rec := httptest.NewRecorder()
		RespondError(rec, err)
		assert.Equal(t, want, rec.Code, err.Error())
		assert.Equal(t, "application/problem+json", rec.Header().Get("Content-Type"))
	}
}

func TestRedirectModes(t *testing.T) {
	req := httptest.NewRequest(http.MethodPost, "/actions/order.import", nil)
	rec := httptest.NewRecorder()
	Redirect(rec, req, "/login")
	assert.Equal(t, http.StatusSeeOther, rec.Code)
	assert.Equal(t, "/login", rec.Header().Get("Location"))

	req.Header.Set(FragmentHeader, "1")
	rec = httptest.NewRecorder()
	Redirect(rec, req, "/login")
	assert.Equal(t, http.StatusUnauthorized, rec.Code)

	var body Fragment
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	assert.Equal(t, "/login", body.Redirect)
}
