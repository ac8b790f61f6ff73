// Package materials implements the material definitions list with its shared
// create/update form, the live stock table and the movement history.
package materials

import (
	"context"
	"fmt"
	"net/url"
	"strconv"
	"strings"

	"github.com/shopspring/decimal"

	"github.com/stockdesk/console/internal/apiclient"
	"github.com/stockdesk/console/internal/panel"
	"github.com/stockdesk/console/internal/view"
)

// DefaultUnit is applied when the unit field is left blank.
const DefaultUnit = "шт"

// API is the slice of the REST client the panels need.
type API interface {
	ListMaterials(ctx context.Context) ([]apiclient.Material, error)
	CreateMaterial(ctx context.Context, in apiclient.MaterialInput) (apiclient.Material, error)
	UpdateMaterial(ctx context.Context, id int64, in apiclient.MaterialInput) (apiclient.Material, error)
	DeleteMaterial(ctx context.Context, id int64) error
	Stock(ctx context.Context) ([]apiclient.StockRow, error)
	AdjustStock(ctx context.Context, id int64, delta decimal.Decimal) error
	SetMinimum(ctx context.Context, id int64, value decimal.Decimal) error
	History(ctx context.Context, id int64, limit int) ([]apiclient.HistoryEntry, error)
}

// Item is one line of the material list.
type Item struct {
	ID    int64
	Label string
}

// Form is the shared create/update form. EditID is the pending-edit marker:
// zero means the next save creates a material.
type Form struct {
	EditID  int64
	Name    string
	Unit    string
	BaseQty string
}

// Editing reports whether the form updates an existing material.
func (f Form) Editing() bool {
	return f.EditID > 0
}

// Model is the materials panel view-model.
type Model struct {
	Items []Item
	Form  Form
}

// Build produces the list and the form. When editID names a listed
// material the form is pre-filled from it.
func Build(list []apiclient.Material, editID int64) Model {
	model := Model{
		Items: make([]Item, 0, len(list)),
		Form:  Form{Unit: DefaultUnit, BaseQty: "0"},
	}
	for _, m := range list {
		model.Items = append(model.Items, Item{
			ID:    m.ID,
			Label: fmt.Sprintf("%s (%s) баз.: %s", m.Name, m.Unit, view.PlainQty(m.BaseQty)),
		})
		if editID > 0 && m.ID == editID {
			model.Form = Form{EditID: m.ID, Name: m.Name, Unit: m.Unit, BaseQty: view.PlainQty(m.BaseQty)}
		}
	}
	return model
}

// EditParam is the query parameter that opens the form in edit mode.
const EditParam = "edit_material"

// Load fetches the materials and builds the panel; query may carry EditParam.
func Load(ctx context.Context, api API, query url.Values) (Model, error) {
	list, err := api.ListMaterials(ctx)
	if err != nil {
		return Model{}, fmt.Errorf("materials: list: %w", err)
	}
	editID, _ := strconv.ParseInt(query.Get(EditParam), 10, 64)
	return Build(list, editID), nil
}

// ParseInput validates the form fields of a save.
func ParseInput(form url.Values) (apiclient.MaterialInput, error) {
	in := apiclient.MaterialInput{
		Name: strings.TrimSpace(form.Get("name")),
		Unit: strings.TrimSpace(form.Get("unit")),
	}
	if in.Name == "" {
		return in, panel.Invalid("Введите название!")
	}
	if in.Unit == "" {
		in.Unit = DefaultUnit
	}
	in.BaseQty = panel.ParseNumber(form.Get("base_qty"), decimal.Zero).InexactFloat64()
	return in, nil
}

// Save creates a material, or updates the one named by edit_id.
func Save(ctx context.Context, api API, form url.Values) (panel.Outcome, error) {
	in, err := ParseInput(form)
	if err != nil {
		return panel.Outcome{}, err
	}
	if strings.TrimSpace(form.Get("edit_id")) != "" {
		id, err := panel.ParseID(form, "edit_id")
		if err != nil {
			return panel.Outcome{}, err
		}
		if _, err := api.UpdateMaterial(ctx, id, in); err != nil {
			return panel.Outcome{}, fmt.Errorf("materials: update %d: %w", id, err)
		}
		return panel.Outcome{}, nil
	}
	if _, err := api.CreateMaterial(ctx, in); err != nil {
		return panel.Outcome{}, fmt.Errorf("materials: create: %w", err)
	}
	return panel.Outcome{}, nil
}

// Delete removes a material. The API drops its rules as well.
func Delete(ctx context.Context, api API, form url.Values) (panel.Outcome, error) {
	id, err := panel.ParseID(form, "id")
	if err != nil {
		return panel.Outcome{}, err
	}
	if err := api.DeleteMaterial(ctx, id); err != nil {
		return panel.Outcome{}, fmt.Errorf("materials: delete %d: %w", id, err)
	}
	return panel.Outcome{}, nil
}
