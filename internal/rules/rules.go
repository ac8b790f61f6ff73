// Package rules implements the consumption rules panel: the list grouped by
// pattern and the multi-row builder.
package rules

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

// API is the slice of the REST client the panel needs.
type API interface {
	ListRules(ctx context.Context) ([]apiclient.Rule, error)
	CreateRules(ctx context.Context, in []apiclient.RuleInput) ([]apiclient.Rule, error)
	DeleteRule(ctx context.Context, id int64) error
	ListMaterials(ctx context.Context) ([]apiclient.Material, error)
}

// Item is one material deduction of a group.
type Item struct {
	ID    int64
	Label string
}

// Group collects the rules of one pattern.
type Group struct {
	Pattern string
	Title   string
	Items   []Item
}

// Option is a material choice of the builder.
type Option struct {
	ID   int64
	Name string
}

// Model is the panel view-model.
type Model struct {
	Groups    []Group
	Materials []Option
}

// GroupByPattern buckets rules by pattern keeping the order in which each pattern
// first appears.
func GroupByPattern(list []apiclient.Rule) []Group {
	index := make(map[string]int)
	var groups []Group
	for _, r := range list {
		i, ok := index[r.Pattern]
		if !ok {
			i = len(groups)
			index[r.Pattern] = i
			groups = append(groups, Group{Pattern: r.Pattern, Title: "«" + r.Pattern + "»"})
		}
		groups[i].Items = append(groups[i].Items, Item{
			ID:    r.ID,
			Label: fmt.Sprintf("%s × %s", r.Material.Name, view.PlainQty(r.Qty)),
		})
	}
	return groups
}

// Build assembles the panel from the rules and the material choices.
func Build(list []apiclient.Rule, materials []apiclient.Material) Model {
	opts := make([]Option, 0, len(materials))
	for _, m := range materials {
		opts = append(opts, Option{ID: m.ID, Name: m.Name})
	}
	return Model{Groups: GroupByPattern(list), Materials: opts}
}

// Load fetches rules and materials.
func Load(ctx context.Context, api API) (Model, error) {
	list, err := api.ListRules(ctx)
	if err != nil {
		return Model{}, fmt.Errorf("rules: list: %w", err)
	}
	materials, err := api.ListMaterials(ctx)
	if err != nil {
		return Model{}, fmt.Errorf("rules: materials: %w", err)
	}
	return Build(list, materials), nil
}

// BuildPayload turns the builder form into the POST body. Rows are the
// parallel material_id and qty fields; rows without a material are dropped
// and a missing or zero quantity means one.
func BuildPayload(form url.Values) ([]apiclient.RuleInput, error) {
	pattern := strings.TrimSpace(form.Get("pattern"))
	if pattern == "" {
		return nil, panel.Invalid("Введите подстроку!")
	}
	ids := form["material_id"]
	qtys := form["qty"]
	one := decimal.NewFromInt(1)

	var payload []apiclient.RuleInput
	for i, raw := range ids {
		id, err := strconv.ParseInt(strings.TrimSpace(raw), 10, 64)
		if err != nil || id == 0 {
			continue
		}
		qty := one
		if i < len(qtys) {
			qty = panel.ParseNumber(qtys[i], one)
			if qty.IsZero() {
				qty = one
			}
		}
		payload = append(payload, apiclient.RuleInput{Pattern: pattern, MaterialID: id, Qty: qty.InexactFloat64()})
	}
	if len(payload) == 0 {
		return nil, panel.Invalid("Выберите материал!")
	}
	return payload, nil
}

// Create posts the builder rows.
func Create(ctx context.Context, api API, form url.Values) (panel.Outcome, error) {
	payload, err := BuildPayload(form)
	if err != nil {
		return panel.Outcome{}, err
	}
	if _, err := api.CreateRules(ctx, payload); err != nil {
		return panel.Outcome{}, fmt.Errorf("rules: create: %w", err)
	}
	return panel.Outcome{}, nil
}

// Delete removes one rule.
func Delete(ctx context.Context, api API, form url.Values) (panel.Outcome, error) {
	id, err := panel.ParseID(form, "id")
	if err != nil {
		return panel.Outcome{}, err
	}
	if err := api.DeleteRule(ctx, id); err != nil {
		return panel.Outcome{}, fmt.Errorf("rules: delete %d: %w", id, err)
	}
	return panel.Outcome{}, nil
}
