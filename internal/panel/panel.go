// Package panel holds the vocabulary shared by the dashboard panels: panel
// identifiers, action outcomes and form parsing that mirrors what operators
// type into the console.
package panel

import (
	"errors"
	"fmt"
	"net/url"
	"regexp"
	"strconv"
	"strings"

	"github.com/shopspring/decimal"

	"github.com/stockdesk/console/internal/apiclient"
	"github.com/stockdesk/console/internal/shared"
)

// ID names one self-contained section of a page.
type ID string

// Panels of the admin dashboard and the collector page.
const (
	Orders    ID = "orders"
	Materials ID = "materials"
	Stock     ID = "stock"
	Rules     ID = "rules"
	Stats     ID = "stats"
	Users     ID = "users"
	Films     ID = "films"
)

// Outcome is the operator-facing result of an action.
type Outcome struct {
	Kind    string
	Message string
}

// Success builds a success outcome.
func Success(message string) Outcome {
	return Outcome{Kind: shared.FlashSuccess, Message: message}
}

// Info builds an informational outcome.
func Info(message string) Outcome {
	return Outcome{Kind: shared.FlashInfo, Message: message}
}

// ValidationError is a local rejection that never reached the API.
type ValidationError struct {
	Message string
}

func (e *ValidationError) Error() string {
	return e.Message
}

// Invalid returns a ValidationError with message.
func Invalid(message string) error {
	return &ValidationError{Message: message}
}

// ErrorMessage renders err for the operator: local rejections verbatim, API
// failures as "Ошибка <status>: <body>".
func ErrorMessage(err error) string {
	var ve *ValidationError
	if errors.As(err, &ve) {
		return ve.Message
	}
	if se, ok := apiclient.AsStatusError(err); ok {
		return fmt.Sprintf("Ошибка %d: %s", se.Status, strings.TrimSpace(se.Body))
	}
	return "Ошибка: сервис недоступен"
}

// ParseID reads a positive integer identifier from form.
func ParseID(form url.Values, key string) (int64, error) {
	id, err := strconv.ParseInt(strings.TrimSpace(form.Get(key)), 10, 64)
	if err != nil || id <= 0 {
		return 0, Invalid("Некорректный идентификатор")
	}
	return id, nil
}

var numberPrefix = regexp.MustCompile(`^[+-]?(\d+(\.\d*)?|\.\d+)([eE][+-]?\d+)?`)

// ParseNumber reads the leading number of s, accepting a decimal comma.
// Input without a leading number yields fallback.
func ParseNumber(s string, fallback decimal.Decimal) decimal.Decimal {
	s = strings.ReplaceAll(strings.TrimSpace(s), ",", ".")
	s = strings.ReplaceAll(s, " ", "")
	match := numberPrefix.FindString(s)
	if match == "" {
		return fallback
	}
	d, err := decimal.NewFromString(strings.TrimSuffix(match, "."))
	if err != nil {
		return fallback
	}
	return d
}
