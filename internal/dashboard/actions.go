package dashboard

import (
	"context"
	"net/url"

	"github.com/stockdesk/console/internal/materials"
	"github.com/stockdesk/console/internal/orders"
	"github.com/stockdesk/console/internal/panel"
	"github.com/stockdesk/console/internal/rules"
	"github.com/stockdesk/console/internal/users"
)

// Action is one entry of the dispatch table: who may run it, the single
// mutating call it makes and the panels that must be re-fetched afterwards.
type Action struct {
	Roles   []string
	Reloads []panel.ID
	Run     func(ctx context.Context, api API, form url.Values) (panel.Outcome, error)
}

// Allowed reports whether role may run the action.
func (a Action) Allowed(role string) bool {
	return hasRole(a.Roles, role)
}

// DefaultActions returns the dispatch table keyed by action type.
func DefaultActions() map[string]Action {
	return map[string]Action{
		"order.toggle": {
			Roles:   adminOnly,
			Reloads: []panel.ID{panel.Orders, panel.Stock, panel.Stats},
			Run: func(ctx context.Context, api API, form url.Values) (panel.Outcome, error) {
				return orders.Toggle(ctx, api, form)
			},
		},
		"order.import": {
			Roles:   adminOnly,
			Reloads: []panel.ID{panel.Orders, panel.Stock},
			Run: func(ctx context.Context, api API, form url.Values) (panel.Outcome, error) {
				return orders.Import(ctx, api, form)
			},
		},
		"material.save": {
			Roles:   adminOnly,
			Reloads: []panel.ID{panel.Materials, panel.Stock, panel.Rules},
			Run: func(ctx context.Context, api API, form url.Values) (panel.Outcome, error) {
				return materials.Save(ctx, api, form)
			},
		},
		"material.delete": {
			Roles:   adminOnly,
			Reloads: []panel.ID{panel.Materials, panel.Stock, panel.Rules},
			Run: func(ctx context.Context, api API, form url.Values) (panel.Outcome, error) {
				return materials.Delete(ctx, api, form)
			},
		},
		"stock.edit": {
			Roles:   everyone,
			Reloads: []panel.ID{panel.Stock},
			Run: func(ctx context.Context, api API, form url.Values) (panel.Outcome, error) {
				return materials.EditStock(ctx, api, form)
			},
		},
		"rule.create": {
			Roles:   adminOnly,
			Reloads: []panel.ID{panel.Rules},
			Run: func(ctx context.Context, api API, form url.Values) (panel.Outcome, error) {
				return rules.Create(ctx, api, form)
			},
		},
		"rule.delete": {
			Roles:   adminOnly,
			Reloads: []panel.ID{panel.Rules},
			Run: func(ctx context.Context, api API, form url.Values) (panel.Outcome, error) {
				return rules.Delete(ctx, api, form)
			},
		},
		"user.create": {
			Roles:   adminOnly,
			Reloads: []panel.ID{panel.Users},
			Run: func(ctx context.Context, api API, form url.Values) (panel.Outcome, error) {
				return users.Create(ctx, api, form)
			},
		},
		"user.role": {
			Roles:   adminOnly,
			Reloads: []panel.ID{panel.Users},
			Run: func(ctx context.Context, api API, form url.Values) (panel.Outcome, error) {
				return users.SetRole(ctx, api, form)
			},
		},
		"user.state": {
			Roles:   adminOnly,
			Reloads: []panel.ID{panel.Users},
			Run: func(ctx context.Context, api API, form url.Values) (panel.Outcome, error) {
				return users.ToggleState(ctx, api, form)
			},
		},
		"user.password": {
			Roles: adminOnly,
			Run: func(ctx context.Context, api API, form url.Values) (panel.Outcome, error) {
				return users.ChangePassword(ctx, api, form)
			},
		},
	}
}
