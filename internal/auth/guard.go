// Package auth guards console pages by the role the inventory API reports
// and serves the login form.
package auth

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"slices"
	"time"

	"github.com/stockdesk/console/internal/apiclient"
	"github.com/stockdesk/console/internal/platform/httpx"
	"github.com/stockdesk/console/internal/shared"
)

// LoginPath is where unauthenticated operators are sent.
const LoginPath = "/login"

// AccessDenied is flashed when the role does not match the page.
const AccessDenied = "Доступ запрещён"

// Identifier resolves the identity behind the current token.
type Identifier interface {
	Authenticated() bool
	Me(ctx context.Context) (apiclient.Identity, error)
}

// WhoAmI returns the caller's role, or "" when there is no token or the
// identity check fails.
func WhoAmI(ctx context.Context, api Identifier) string {
	if api == nil || !api.Authenticated() {
		return ""
	}
	id, err := api.Me(ctx)
	if err != nil {
		return ""
	}
	return id.Role
}

type identityContextKey struct{}

// ContextWithIdentity stores the resolved identity.
func ContextWithIdentity(ctx context.Context, id apiclient.Identity) context.Context {
	return context.WithValue(ctx, identityContextKey{}, id)
}

// IdentityFromContext returns the identity stored by RequireRole.
func IdentityFromContext(ctx context.Context) (apiclient.Identity, bool) {
	id, ok := ctx.Value(identityContextKey{}).(apiclient.Identity)
	return id, ok
}

// Guard checks every guarded request against /auth/me before any panel
// loads.
type Guard struct {
	client *apiclient.Client
	logger *slog.Logger
	now    func() time.Time
}

// NewGuard constructs a Guard.
func NewGuard(client *apiclient.Client, logger *slog.Logger) *Guard {
	if logger == nil {
		logger = slog.Default()
	}
	return &Guard{client: client, logger: logger, now: time.Now}
}

// RequireRole admits requests whose identity carries one of roles.
func (g *Guard) RequireRole(roles ...string) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			sess := shared.SessionFromContext(r.Context())
			if sess == nil {
				httpx.Redirect(w, r, LoginPath)
				return
			}
			if apiclient.TokenExpired(sess.AccessToken(), g.now()) {
				sess.ClearAccessToken()
				httpx.Redirect(w, r, LoginPath)
				return
			}
			id, err := g.client.Bind(sess).Me(r.Context())
			if err != nil {
				if !errors.Is(err, apiclient.ErrUnauthorized) {
					g.logger.Warn("identity check failed", slog.Any("error", err))
				}
				httpx.Redirect(w, r, LoginPath)
				return
			}
			if !slices.Contains(roles, id.Role) {
				sess.AddFlash(shared.FlashMessage{Kind: shared.FlashError, Message: AccessDenied})
				httpx.Redirect(w, r, LoginPath)
				return
			}
			next.ServeHTTP(w, r.WithContext(ContextWithIdentity(r.Context(), id)))
		})
	}
}

// LandingPath is the page a role starts on.
func LandingPath(role string) string {
	if role == apiclient.RoleCollector {
		return "/collector"
	}
	return "/"
}
