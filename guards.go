package session

import (
	"context"
	"net/http"
	"sync/atomic"

	"github.com/goliatone/go-print"
	"github.com/goliatone/go-router"
)

// Guard gates navigation on session state. It never inspects tokens or
// talks to the network on the request path; decisions come from the
// store snapshot alone, so gateway failures can never surface here as
// exceptions.
type Guard struct {
	store  *Store
	routes Routes
	logger Logger

	// pendingCheck collapses concurrent profile-retry triggers into one.
	pendingCheck atomic.Bool
}

// GuardOption customizes guard construction.
type GuardOption func(*Guard)

// WithGuardLogger overrides the default logger.
func WithGuardLogger(logger Logger) GuardOption {
	return func(g *Guard) {
		if logger != nil {
			g.logger = logger
		}
	}
}

// NewGuard builds a Guard for the given route layout.
func NewGuard(store *Store, routes Routes, opts ...GuardOption) (*Guard, error) {
	if err := routes.Validate(); err != nil {
		return nil, err
	}

	g := &Guard{
		store:  store,
		routes: routes,
		logger: defLogger{},
	}

	for _, opt := range opts {
		if opt != nil {
			opt(g)
		}
	}

	return g, nil
}

// Protected admits authenticated sessions, optionally restricted to a
// role set. An authenticated session whose profile is still pending
// passes the role check (the role is not known yet, denying would
// punish a trusted credential) and triggers a background profile
// retry.
func (g *Guard) Protected(allowedRoles ...Role) router.MiddlewareFunc {
	return func(hf router.HandlerFunc) router.HandlerFunc {
		return func(c router.Context) error {
			snap := g.store.Snapshot()

			if !snap.IsAuthenticated() {
				g.logger.Debug("protected route rejected: %s", c.OriginalURL())
				return g.redirect(c, g.routes.Login)
			}

			if snap.User == nil {
				g.retryProfile()
				return hf(c)
			}

			if !RoleIn(snap.User.Role, allowedRoles) {
				g.logger.Info(
					"role %q not allowed for %s, session: %s",
					snap.User.Role,
					c.OriginalURL(),
					print.MaybePrettyJSON(map[string]any{
						"status": snap.Status,
						"user":   snap.User.ID,
					}),
				)
				return g.redirect(c, g.routes.Landing)
			}

			return hf(c)
		}
	}
}

// Public admits anonymous visitors and bounces known users to their
// role dashboard. A pending profile renders the public tree rather
// than guessing a dashboard.
func (g *Guard) Public() router.MiddlewareFunc {
	return func(hf router.HandlerFunc) router.HandlerFunc {
		return func(c router.Context) error {
			snap := g.store.Snapshot()

			if snap.IsAuthenticated() && snap.User != nil {
				return g.redirect(c, g.routes.DashboardFor(snap.User.Role))
			}

			return hf(c)
		}
	}
}

// retryProfile re-runs CheckAuth off the request path, at most one at a
// time. Navigation is the retry trigger for sessions stuck in the
// pending-profile state.
func (g *Guard) retryProfile() {
	if !g.pendingCheck.CompareAndSwap(false, true) {
		return
	}

	go func() {
		defer g.pendingCheck.Store(false)
		// The request context ends with the response; the retry must
		// outlive it.
		g.store.CheckAuth(context.Background())
	}()
}

func (g *Guard) redirect(c router.Context, target string) error {
	statusCode := http.StatusSeeOther
	if c.Method() == string(router.GET) {
		statusCode = http.StatusFound
	}
	return c.Redirect(target, statusCode)
}
