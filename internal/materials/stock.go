package materials

import (
	"context"
	"fmt"
	"net/url"

	"github.com/shopspring/decimal"

	"github.com/stockdesk/console/internal/apiclient"
	"github.com/stockdesk/console/internal/panel"
	"github.com/stockdesk/console/internal/view"
)

// StockRow is one editable line of the stock table.
type StockRow struct {
	ID   int64
	Name string
	Unit string
	// Qty and Min are the raw values put into the edit cells; the forms
	// send them back as the "before" value.
	Qty string
	Min string
	// Low marks rows at or below a non-zero minimum.
	Low bool
}

// StockModel is the stock panel view-model.
type StockModel struct {
	Rows []StockRow
}

// BuildStock turns API stock rows into table rows.
func BuildStock(rows []apiclient.StockRow) StockModel {
	out := StockModel{Rows: make([]StockRow, 0, len(rows))}
	for _, r := range rows {
		out.Rows = append(out.Rows, StockRow{
			ID:   r.ID,
			Name: r.Name,
			Unit: r.Unit,
			Qty:  view.PlainQty(r.Qty),
			Min:  view.PlainQty(r.MinQty),
			Low:  r.MinQty.IsPositive() && r.Qty.LessThanOrEqual(r.MinQty),
		})
	}
	return out
}

// LoadStock fetches and builds the stock table.
func LoadStock(ctx context.Context, api API) (StockModel, error) {
	rows, err := api.Stock(ctx)
	if err != nil {
		return StockModel{}, fmt.Errorf("materials: stock: %w", err)
	}
	return BuildStock(rows), nil
}

// Edited cells of the stock table.
const (
	FieldQty = "qty"
	FieldMin = "min"
)

// Edit is the single call an inline edit results in.
type Edit struct {
	Field string
	// Value is the delta for FieldQty and the new threshold for FieldMin.
	Value decimal.Decimal
}

// PlanEdit compares the cell value before and after editing. Unparsable
// input counts as zero. It returns false when nothing changed.
func PlanEdit(field, before, after string) (Edit, bool) {
	prev := panel.ParseNumber(before, decimal.Zero)
	next := panel.ParseNumber(after, decimal.Zero)
	if prev.Equal(next) {
		return Edit{}, false
	}
	if field == FieldMin {
		return Edit{Field: FieldMin, Value: next}, true
	}
	return Edit{Field: FieldQty, Value: next.Sub(prev)}, true
}

// EditStock applies one inline edit: the form carries id, field, before and
// value.
func EditStock(ctx context.Context, api API, form url.Values) (panel.Outcome, error) {
	id, err := panel.ParseID(form, "id")
	if err != nil {
		return panel.Outcome{}, err
	}
	field := form.Get("field")
	if field != FieldQty && field != FieldMin {
		return panel.Outcome{}, panel.Invalid("Неизвестное поле")
	}
	edit, changed := PlanEdit(field, form.Get("before"), form.Get("value"))
	if !changed {
		return panel.Outcome{}, nil
	}
	if edit.Field == FieldMin {
		err = api.SetMinimum(ctx, id, edit.Value)
	} else {
		err = api.AdjustStock(ctx, id, edit.Value)
	}
	if err != nil {
		return panel.Outcome{}, fmt.Errorf("materials: %s %d: %w", edit.Field, id, err)
	}
	return panel.Outcome{}, nil
}
