package materials

import (
	"context"
	"fmt"
	"time"

	"github.com/stockdesk/console/internal/apiclient"
	"github.com/stockdesk/console/internal/view"
)

// DefaultHistoryLimit is how many movements the dialog shows.
const DefaultHistoryLimit = 50

// HistoryRow is one movement of the dialog.
type HistoryRow struct {
	Order    string
	Qty      string
	Positive bool
	At       string
}

// HistoryModel is the history dialog view-model.
type HistoryModel struct {
	MaterialID int64
	Rows       []HistoryRow
}

// BuildHistory formats movements, newest first as returned.
func BuildHistory(id int64, entries []apiclient.HistoryEntry, loc *time.Location) HistoryModel {
	out := HistoryModel{MaterialID: id, Rows: make([]HistoryRow, 0, len(entries))}
	for _, e := range entries {
		order := "#руч."
		if e.OrderNumber != nil && *e.OrderNumber != "" {
			order = "#" + *e.OrderNumber
		}
		out.Rows = append(out.Rows, HistoryRow{
			Order:    order,
			Qty:      view.SignedQty(e.Qty),
			Positive: e.Qty.IsPositive(),
			At:       view.FormatTime(e.DT.Time, loc),
		})
	}
	return out
}

// LoadHistory fetches up to limit movements of material id.
func LoadHistory(ctx context.Context, api API, id int64, limit int, loc *time.Location) (HistoryModel, error) {
	if limit <= 0 {
		limit = DefaultHistoryLimit
	}
	entries, err := api.History(ctx, id, limit)
	if err != nil {
		return HistoryModel{}, fmt.Errorf("materials: history %d: %w", id, err)
	}
	return BuildHistory(id, entries, loc), nil
}
