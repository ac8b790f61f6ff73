package dashboard

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"html/template"
	"log/slog"
	"mime"
	"net/http"
	"net/url"
	"strconv"

	"github.com/go-chi/chi/v5"
	"golang.org/x/sync/errgroup"

	"github.com/stockdesk/console/internal/apiclient"
	"github.com/stockdesk/console/internal/auth"
	"github.com/stockdesk/console/internal/materials"
	"github.com/stockdesk/console/internal/panel"
	"github.com/stockdesk/console/internal/platform/httpx"
	"github.com/stockdesk/console/internal/shared"
	"github.com/stockdesk/console/internal/stats"
	"github.com/stockdesk/console/internal/view"
)

// Form fields that carry page state through an action.
const (
	ReturnField = "return"
	MonthField  = "month"
)

// Authorizer guards routes by role.
type Authorizer interface {
	RequireRole(roles ...string) func(http.Handler) http.Handler
}

// Config groups the handler dependencies.
type Config struct {
	Logger    *slog.Logger
	Templates *view.Engine
	CSRF      *shared.CSRFManager
	Guard     Authorizer
	Client    *apiclient.Client
	// Bind overrides how a session becomes an API; defaults to Client.Bind.
	Bind    func(store apiclient.TokenStore) API
	Env     Env
	Panels  map[panel.ID]PanelSpec
	Actions map[string]Action
}

// Handler serves the dashboard, the collector page and the action endpoint.
type Handler struct {
	logger    *slog.Logger
	templates *view.Engine
	csrf      *shared.CSRFManager
	guard     Authorizer
	bind      func(store apiclient.TokenStore) API
	env       Env
	panels    map[panel.ID]PanelSpec
	actions   map[string]Action
}

// NewHandler constructs a Handler.
func NewHandler(cfg Config) *Handler {
	h := &Handler{
		logger:    cfg.Logger,
		templates: cfg.Templates,
		csrf:      cfg.CSRF,
		guard:     cfg.Guard,
		bind:      cfg.Bind,
		env:       cfg.Env,
		panels:    cfg.Panels,
		actions:   cfg.Actions,
	}
	if h.logger == nil {
		h.logger = slog.Default()
	}
	if h.bind == nil {
		client := cfg.Client
		h.bind = func(store apiclient.TokenStore) API { return client.Bind(store) }
	}
	if h.panels == nil {
		h.panels = DefaultPanels()
	}
	if h.actions == nil {
		h.actions = DefaultActions()
	}
	if h.env.HistoryLimit <= 0 {
		h.env.HistoryLimit = materials.DefaultHistoryLimit
	}
	return h
}

// MountRoutes registers the console pages.
func (h *Handler) MountRoutes(r chi.Router) {
	r.With(h.guard.RequireRole(adminOnly...)).Get("/", h.showDashboard)
	r.With(h.guard.RequireRole(adminOnly...)).Get("/stats/export.{format}", h.exportStats)

	r.Group(func(r chi.Router) {
		r.Use(h.guard.RequireRole(everyone...))
		r.Get("/collector", h.showCollector)
		r.Get("/materials/{id}/history", h.showHistory)
		r.Get("/panels/{id}", h.showPanel)
		r.Post("/actions/{type}", h.handleAction)
	})
}

// PanelView is what a panel partial renders.
type PanelView struct {
	ID        string
	Role      string
	CSRFToken string
	Month     string
	Return    string
	Error     string
	Data      any
}

// Admin reports whether the viewer may use admin-only controls in the panel.
func (v PanelView) Admin() bool {
	return v.Role == apiclient.RoleAdmin
}

type pageData struct {
	Panels map[string]PanelView
	Month  string
}

func (h *Handler) showDashboard(w http.ResponseWriter, r *http.Request) {
	h.renderPage(w, r, "pages/dashboard.html", "Панель управления", "/", DashboardPanels)
}

func (h *Handler) showCollector(w http.ResponseWriter, r *http.Request) {
	h.renderPage(w, r, "pages/collector.html", "Склад", "/collector", CollectorPanels)
}

func (h *Handler) renderPage(w http.ResponseWriter, r *http.Request, page, title, home string, ids []panel.ID) {
	ctx := r.Context()
	sess := shared.SessionFromContext(ctx)
	identity, _ := auth.IdentityFromContext(ctx)
	csrfToken, _ := h.csrf.EnsureToken(ctx, sess)

	views, err := h.loadPanels(ctx, h.bind(sess), ids, r.URL.Query(), panelState{
		role:      identity.Role,
		csrfToken: csrfToken,
		returnTo:  home,
	})
	if err != nil {
		h.fail(w, r, err)
		return
	}
	data := view.TemplateData{
		Title:       title,
		CSRFToken:   csrfToken,
		Flash:       shared.PopFlash(ctx),
		CurrentPath: r.URL.Path,
		Username:    identity.Username,
		Role:        identity.Role,
		Data:        pageData{Panels: views, Month: r.URL.Query().Get(stats.MonthParam)},
	}
	if err := h.templates.Render(w, page, data); err != nil {
		h.logger.Error("render page", slog.String("page", page), slog.Any("error", err))
		http.Error(w, http.StatusText(http.StatusInternalServerError), http.StatusInternalServerError)
	}
}

type panelState struct {
	role      string
	csrfToken string
	returnTo  string
}

// loadPanels fetches ids concurrently. A 401 from any panel aborts the lot;
// every other failure is rendered inside the panel that produced it.
func (h *Handler) loadPanels(ctx context.Context, api API, ids []panel.ID, query url.Values, state panelState) (map[string]PanelView, error) {
	views := make([]PanelView, len(ids))
	g, gctx := errgroup.WithContext(ctx)
	for i, id := range ids {
		spec, ok := h.panels[id]
		if !ok || !spec.Allowed(state.role) {
			continue
		}
		g.Go(func() error {
			v := PanelView{
				ID:        string(id),
				Role:      state.role,
				CSRFToken: state.csrfToken,
				Month:     query.Get(stats.MonthParam),
				Return:    state.returnTo,
			}
			data, err := spec.Load(gctx, api, query, h.env)
			if err != nil {
				if errors.Is(err, apiclient.ErrUnauthorized) {
					return err
				}
				h.logger.Warn("panel load failed", slog.String("panel", string(id)), slog.Any("error", err))
				v.Error = panel.ErrorMessage(err)
			} else {
				v.Data = data
			}
			views[i] = v
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	out := make(map[string]PanelView, len(ids))
	for _, v := range views {
		if v.ID != "" {
			out[v.ID] = v
		}
	}
	return out, nil
}

func (h *Handler) renderPanels(views map[string]PanelView) (map[string]template.HTML, error) {
	out := make(map[string]template.HTML, len(views))
	for id, v := range views {
		html, err := h.templates.Fragment(h.panels[panel.ID(id)].Template, v)
		if err != nil {
			return nil, fmt.Errorf("dashboard: render %s: %w", id, err)
		}
		out[id] = html
	}
	return out, nil
}

func (h *Handler) showPanel(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	id := panel.ID(chi.URLParam(r, "id"))
	spec, ok := h.panels[id]
	if !ok {
		httpx.RespondError(w, fmt.Errorf("panel %q: %w", id, httpx.ErrNotFound))
		return
	}
	identity, _ := auth.IdentityFromContext(ctx)
	if !spec.Allowed(identity.Role) {
		httpx.RespondError(w, fmt.Errorf("panel %q: %w", id, httpx.ErrForbidden))
		return
	}
	sess := shared.SessionFromContext(ctx)
	csrfToken, _ := h.csrf.EnsureToken(ctx, sess)
	views, err := h.loadPanels(ctx, h.bind(sess), []panel.ID{id}, r.URL.Query(), panelState{
		role:      identity.Role,
		csrfToken: csrfToken,
		returnTo:  returnPath(r.URL.Query().Get(ReturnField)),
	})
	if err != nil {
		h.fail(w, r, err)
		return
	}
	rendered, err := h.renderPanels(views)
	if err != nil {
		h.logger.Error("render panel", slog.Any("error", err))
		http.Error(w, http.StatusText(http.StatusInternalServerError), http.StatusInternalServerError)
		return
	}
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	_, _ = w.Write([]byte(rendered[string(id)]))
}

func (h *Handler) handleAction(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	name := chi.URLParam(r, "type")
	act, ok := h.actions[name]
	if !ok {
		httpx.RespondError(w, fmt.Errorf("action %q: %w", name, httpx.ErrNotFound))
		return
	}
	identity, _ := auth.IdentityFromContext(ctx)
	if !act.Allowed(identity.Role) {
		httpx.RespondError(w, fmt.Errorf("action %q: %w", name, httpx.ErrForbidden))
		return
	}
	if err := r.ParseForm(); err != nil {
		httpx.RespondError(w, fmt.Errorf("action %q: %w", name, httpx.ErrValidation))
		return
	}

	sess := shared.SessionFromContext(ctx)
	api := h.bind(sess)
	outcome, err := act.Run(ctx, api, r.PostForm)
	reloads := act.Reloads
	if err != nil {
		if errors.Is(err, apiclient.ErrUnauthorized) {
			httpx.Redirect(w, r, auth.LoginPath)
			return
		}
		var invalid *panel.ValidationError
		if errors.As(err, &invalid) {
			reloads = nil
		} else {
			h.logger.Warn("action failed", slog.String("action", name), slog.Any("error", err))
		}
		outcome = panel.Outcome{Kind: shared.FlashError, Message: panel.ErrorMessage(err)}
	}

	if !httpx.WantsFragment(r) {
		shared.AddFlash(ctx, outcome.Kind, outcome.Message)
		http.Redirect(w, r, redirectTarget(r.PostForm, act.Reloads), http.StatusSeeOther)
		return
	}

	query := url.Values{}
	if month := r.PostForm.Get(MonthField); month != "" {
		query.Set(stats.MonthParam, month)
	}
	csrfToken, _ := h.csrf.EnsureToken(ctx, sess)
	views, err := h.loadPanels(ctx, api, reloads, query, panelState{
		role:      identity.Role,
		csrfToken: csrfToken,
		returnTo:  returnPath(r.PostForm.Get(ReturnField)),
	})
	if err != nil {
		h.fail(w, r, err)
		return
	}
	rendered, err := h.renderPanels(views)
	if err != nil {
		h.logger.Error("render panels", slog.String("action", name), slog.Any("error", err))
		http.Error(w, http.StatusText(http.StatusInternalServerError), http.StatusInternalServerError)
		return
	}
	httpx.JSON(w, http.StatusOK, httpx.Fragment{
		Message: outcome.Message,
		Kind:    outcome.Kind,
		Panels:  rendered,
	})
}

func (h *Handler) showHistory(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	id, err := strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
	if err != nil || id <= 0 {
		httpx.RespondError(w, fmt.Errorf("material id: %w", httpx.ErrNotFound))
		return
	}
	sess := shared.SessionFromContext(ctx)
	identity, _ := auth.IdentityFromContext(ctx)
	v := PanelView{ID: "history"}
	model, err := materials.LoadHistory(ctx, h.bind(sess), id, h.env.HistoryLimit, h.env.location())
	if err != nil {
		if errors.Is(err, apiclient.ErrUnauthorized) {
			httpx.Redirect(w, r, auth.LoginPath)
			return
		}
		h.logger.Warn("history load failed", slog.Int64("material_id", id), slog.Any("error", err))
		v.Error = panel.ErrorMessage(err)
	} else {
		v.Data = model
	}

	if httpx.WantsFragment(r) {
		html, err := h.templates.Fragment("partials/history.html", v)
		if err != nil {
			h.logger.Error("render history", slog.Any("error", err))
			http.Error(w, http.StatusText(http.StatusInternalServerError), http.StatusInternalServerError)
			return
		}
		w.Header().Set("Content-Type", "text/html; charset=utf-8")
		_, _ = w.Write([]byte(html))
		return
	}
	data := view.TemplateData{
		Title:       "История движения",
		CurrentPath: r.URL.Path,
		Flash:       shared.PopFlash(ctx),
		Username:    identity.Username,
		Role:        identity.Role,
		Data:        v,
	}
	data.CSRFToken, _ = h.csrf.EnsureToken(ctx, sess)
	if err := h.templates.Render(w, "pages/history.html", data); err != nil {
		h.logger.Error("render history page", slog.Any("error", err))
		http.Error(w, http.StatusText(http.StatusInternalServerError), http.StatusInternalServerError)
	}
}

func (h *Handler) exportStats(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	ext := chi.URLParam(r, "format")
	format, ok := stats.Formats[ext]
	if !ok {
		httpx.RespondError(w, fmt.Errorf("export %q: %w", ext, httpx.ErrNotFound))
		return
	}
	month := r.URL.Query().Get(stats.MonthParam)
	var buf bytes.Buffer
	if err := stats.Export(ctx, h.bind(shared.SessionFromContext(ctx)), month, format, &buf); err != nil {
		if errors.Is(err, apiclient.ErrUnauthorized) {
			httpx.Redirect(w, r, auth.LoginPath)
			return
		}
		h.logger.Warn("stats export failed", slog.Any("error", err))
		shared.AddFlash(ctx, shared.FlashError, panel.ErrorMessage(err))
		http.Redirect(w, r, redirectTarget(url.Values{MonthField: {month}}, []panel.ID{panel.Stats}), http.StatusSeeOther)
		return
	}
	w.Header().Set("Content-Type", format.ContentType)
	w.Header().Set("Content-Disposition", mime.FormatMediaType("attachment", map[string]string{
		"filename": stats.FileName(stats.ParseMonth(month), format.Ext),
	}))
	w.Header().Set("Content-Length", strconv.Itoa(buf.Len()))
	_, _ = buf.WriteTo(w)
}

// fail answers a load error: 401 sends the operator to login, anything else
// is a 500.
func (h *Handler) fail(w http.ResponseWriter, r *http.Request, err error) {
	if errors.Is(err, apiclient.ErrUnauthorized) {
		httpx.Redirect(w, r, auth.LoginPath)
		return
	}
	h.logger.Error("dashboard request failed", slog.String("path", r.URL.Path), slog.Any("error", err))
	http.Error(w, http.StatusText(http.StatusInternalServerError), http.StatusInternalServerError)
}

// returnPath keeps redirects on the console's own pages.
func returnPath(value string) string {
	if value == "/collector" {
		return value
	}
	return "/"
}

// redirectTarget is where a plain form post lands: the page it came from,
// the selected month and the anchor of the first panel it touched.
func redirectTarget(form url.Values, reloads []panel.ID) string {
	target := returnPath(form.Get(ReturnField))
	if month := form.Get(MonthField); month != "" && target == "/" {
		target += "?" + url.Values{stats.MonthParam: {month}}.Encode()
	}
	if len(reloads) > 0 {
		target += "#panel-" + string(reloads[0])
	}
	return target
}
