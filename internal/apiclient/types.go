package apiclient

import (
	"bytes"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/shopspring/decimal"
)

// Role names issued by the API.
const (
	RoleAdmin     = "admin"
	RoleCollector = "collector"
)

// Identity is the answer of /auth/me.
type Identity struct {
	ID       string `json:"id,omitempty"`
	Username string `json:"username"`
	Role     string `json:"role"`
}

// Timestamp accepts RFC 3339 values and the naive ISO form the API emits for
// UTC columns.
type Timestamp struct {
	time.Time
}

var naiveLayouts = []string{
	"2006-01-02T15:04:05.999999999",
	"2006-01-02 15:04:05.999999999",
	"2006-01-02T15:04",
	"2006-01-02",
}

// UnmarshalJSON implements json.Unmarshaler.
func (t *Timestamp) UnmarshalJSON(data []byte) error {
	raw := strings.Trim(string(bytes.TrimSpace(data)), `"`)
	if raw == "" || raw == "null" {
		t.Time = time.Time{}
		return nil
	}
	if parsed, err := time.Parse(time.RFC3339Nano, raw); err == nil {
		t.Time = parsed
		return nil
	}
	for _, layout := range naiveLayouts {
		if parsed, err := time.ParseInLocation(layout, raw, time.UTC); err == nil {
			t.Time = parsed
			return nil
		}
	}
	return fmt.Errorf("apiclient: unsupported timestamp %q", raw)
}

// MarshalJSON implements json.Marshaler.
func (t Timestamp) MarshalJSON() ([]byte, error) {
	if t.IsZero() {
		return []byte("null"), nil
	}
	return json.Marshal(t.UTC().Format(time.RFC3339Nano))
}

// OrderLine is one product line of an order.
type OrderLine struct {
	ProductID    int64  `json:"product_id"`
	ProductTitle string `json:"product_title"`
	Quantity     int    `json:"quantity"`
}

// Order is a row of GET /orders/.
type Order struct {
	ID        int64       `json:"id"`
	Number    string      `json:"number"`
	Customer  *string     `json:"customer"`
	CreatedAt Timestamp   `json:"created_at"`
	Ignored   bool        `json:"ignored"`
	Lines     []OrderLine `json:"lines"`
}

// Material is a static material definition.
type Material struct {
	ID      int64           `json:"id"`
	Name    string          `json:"name"`
	Unit    string          `json:"unit"`
	BaseQty decimal.Decimal `json:"base_qty"`
	MinQty  decimal.Decimal `json:"min_qty"`
}

// MaterialInput is the body of POST /materials/ and PUT /materials/{id}.
type MaterialInput struct {
	Name    string  `json:"name"`
	Unit    string  `json:"unit"`
	BaseQty float64 `json:"base_qty"`
}

// StockRow is the live quantity of one material.
type StockRow struct {
	ID     int64           `json:"id"`
	Name   string          `json:"name"`
	Unit   string          `json:"unit"`
	Qty    decimal.Decimal `json:"qty"`
	MinQty decimal.Decimal `json:"min_qty"`
}

// HistoryEntry is one stock movement of a material.
type HistoryEntry struct {
	OrderID     *int64          `json:"order_id"`
	OrderNumber *string         `json:"order_number"`
	Qty         decimal.Decimal `json:"qty"`
	DT          Timestamp       `json:"dt"`
}

// Rule maps an order line pattern to a material deduction.
type Rule struct {
	ID         int64           `json:"id"`
	Pattern    string          `json:"pattern"`
	MaterialID int64           `json:"material_id"`
	Qty        decimal.Decimal `json:"qty"`
	Material   Material        `json:"material"`
}

// RuleInput is one element of the POST /rules/ array.
type RuleInput struct {
	Pattern    string  `json:"pattern"`
	MaterialID int64   `json:"material_id"`
	Qty        float64 `json:"qty"`
}

// User is a console account.
type User struct {
	ID       string `json:"id"`
	Username string `json:"username"`
	Role     string `json:"role"`
	IsActive bool   `json:"is_active"`
}

// Film is a ready-made film kept on the shelf.
type Film struct {
	Title    string `json:"title"`
	Quantity int    `json:"quantity"`
}

// Total is one category of the statistics response.
type Total struct {
	Label string
	Value decimal.Decimal
}

// Totals keeps the key order of the JSON object returned by /stats/totals.
type Totals []Total

// UnmarshalJSON implements json.Unmarshaler.
func (t *Totals) UnmarshalJSON(data []byte) error {
	dec := json.NewDecoder(bytes.NewReader(data))
	dec.UseNumber()
	tok, err := dec.Token()
	if err != nil {
		return fmt.Errorf("apiclient: totals: %w", err)
	}
	if tok == nil {
		*t = nil
		return nil
	}
	if delim, ok := tok.(json.Delim); !ok || delim != '{' {
		return fmt.Errorf("apiclient: totals: expected object")
	}
	out := Totals{}
	for dec.More() {
		keyTok, err := dec.Token()
		if err != nil {
			return fmt.Errorf("apiclient: totals key: %w", err)
		}
		key, ok := keyTok.(string)
		if !ok {
			return fmt.Errorf("apiclient: totals: non-string key")
		}
		var num json.Number
		if err := dec.Decode(&num); err != nil {
			return fmt.Errorf("apiclient: totals %q: %w", key, err)
		}
		value, err := decimal.NewFromString(num.String())
		if err != nil {
			return fmt.Errorf("apiclient: totals %q: %w", key, err)
		}
		out = append(out, Total{Label: key, Value: value})
	}
	if _, err := dec.Token(); err != nil {
		return fmt.Errorf("apiclient: totals: %w", err)
	}
	*t = out
	return nil
}
