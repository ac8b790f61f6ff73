package apiclient

import (
	"errors"
	"fmt"
	"strings"
)

var (
	// ErrUnauthorized is returned for any 401 from the API. The token has
	// already been cleared when callers see it.
	ErrUnauthorized = errors.New("apiclient: unauthorized")
	// ErrInvalidCredentials is returned by Login when the API rejects the pair.
	ErrInvalidCredentials = errors.New("apiclient: invalid credentials")
)

// StatusError reports a non-OK, non-401 response.
type StatusError struct {
	Status int
	Body   string
}

func (e *StatusError) Error() string {
	body := strings.TrimSpace(e.Body)
	if body == "" {
		return fmt.Sprintf("apiclient: status %d", e.Status)
	}
	return fmt.Sprintf("apiclient: status %d: %s", e.Status, body)
}

// AsStatusError unwraps err into a StatusError when possible.
func AsStatusError(err error) (*StatusError, bool) {
	var se *StatusError
	if errors.As(err, &se) {
		return se, true
	}
	return nil, false
}
