// Package dashboard composes the console pages from panels and dispatches
// the operator's actions through a declarative table.
package dashboard

import (
	"context"
	"net/url"
	"slices"
	"time"

	"github.com/stockdesk/console/internal/apiclient"
	"github.com/stockdesk/console/internal/films"
	"github.com/stockdesk/console/internal/materials"
	"github.com/stockdesk/console/internal/orders"
	"github.com/stockdesk/console/internal/panel"
	"github.com/stockdesk/console/internal/rules"
	"github.com/stockdesk/console/internal/stats"
	"github.com/stockdesk/console/internal/users"
)

// API is everything the panels call on the inventory API.
type API interface {
	orders.API
	materials.API
	rules.API
	stats.API
	users.API
	films.API
}

// Env carries per-deployment display settings into loaders.
type Env struct {
	Location     *time.Location
	HistoryLimit int
	Now          func() time.Time
}

func (e Env) now() time.Time {
	if e.Now == nil {
		return time.Now().In(e.location())
	}
	return e.Now().In(e.location())
}

func (e Env) location() *time.Location {
	if e.Location == nil {
		return time.UTC
	}
	return e.Location
}

// Loader fetches and builds one panel. query carries the page state the
// panel depends on, such as the selected month.
type Loader func(ctx context.Context, api API, query url.Values, env Env) (any, error)

// PanelSpec describes how a panel is loaded and rendered.
type PanelSpec struct {
	Template string
	Roles    []string
	Load     Loader
}

var (
	adminOnly = []string{apiclient.RoleAdmin}
	everyone  = []string{apiclient.RoleAdmin, apiclient.RoleCollector}
)

// DefaultPanels returns the panels of the admin dashboard and the collector
// page.
func DefaultPanels() map[panel.ID]PanelSpec {
	return map[panel.ID]PanelSpec{
		panel.Orders: {
			Template: "partials/orders.html",
			Roles:    adminOnly,
			Load: func(ctx context.Context, api API, _ url.Values, env Env) (any, error) {
				return orders.Load(ctx, api, env.location())
			},
		},
		panel.Materials: {
			Template: "partials/materials.html",
			Roles:    adminOnly,
			Load: func(ctx context.Context, api API, query url.Values, _ Env) (any, error) {
				return materials.Load(ctx, api, query)
			},
		},
		panel.Stock: {
			Template: "partials/stock.html",
			Roles:    everyone,
			Load: func(ctx context.Context, api API, _ url.Values, _ Env) (any, error) {
				return materials.LoadStock(ctx, api)
			},
		},
		panel.Rules: {
			Template: "partials/rules.html",
			Roles:    adminOnly,
			Load: func(ctx context.Context, api API, _ url.Values, _ Env) (any, error) {
				return rules.Load(ctx, api)
			},
		},
		panel.Stats: {
			Template: "partials/stats.html",
			Roles:    adminOnly,
			Load: func(ctx context.Context, api API, query url.Values, env Env) (any, error) {
				return stats.Load(ctx, api, query.Get(stats.MonthParam), env.now())
			},
		},
		panel.Users: {
			Template: "partials/users.html",
			Roles:    adminOnly,
			Load: func(ctx context.Context, api API, _ url.Values, _ Env) (any, error) {
				return users.Load(ctx, api)
			},
		},
		panel.Films: {
			Template: "partials/films.html",
			Roles:    everyone,
			Load: func(ctx context.Context, api API, _ url.Values, _ Env) (any, error) {
				return films.Load(ctx, api)
			},
		},
	}
}

// Page layouts: which panels each page shows, in order.
var (
	DashboardPanels = []panel.ID{panel.Orders, panel.Materials, panel.Stock, panel.Rules, panel.Stats, panel.Users}
	CollectorPanels = []panel.ID{panel.Stock, panel.Films}
)

// Allowed reports whether role may see the panel.
func (p PanelSpec) Allowed(role string) bool {
	return hasRole(p.Roles, role)
}

func hasRole(roles []string, role string) bool {
	return slices.Contains(roles, role)
}
