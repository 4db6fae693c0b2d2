package session

import (
	"net/http"
	"time"

	"github.com/goliatone/go-router"
)

// Reconciler turns an OAuth redirect into a live session. The tokens on
// the redirect were just minted by a trusted provider exchange, so the
// session is installed optimistically before the profile is known —
// unlike CheckAuth, a profile fetch failure here keeps the session
// alive instead of logging out.
type Reconciler struct {
	store    *Store
	gateway  Gateway
	routes   Routes
	notifier Notifier
	logger   Logger
	sink     ActivitySink
}

// ReconcilerOption customizes reconciler construction.
type ReconcilerOption func(*Reconciler)

// WithReconcilerNotifier overrides the log-backed default notifier.
func WithReconcilerNotifier(n Notifier) ReconcilerOption {
	return func(r *Reconciler) {
		if n != nil {
			r.notifier = n
		}
	}
}

// WithReconcilerLogger overrides the default logger.
func WithReconcilerLogger(logger Logger) ReconcilerOption {
	return func(r *Reconciler) {
		if logger != nil {
			r.logger = logger
		}
	}
}

// WithReconcilerActivitySink sets the sink for callback outcomes.
func WithReconcilerActivitySink(sink ActivitySink) ReconcilerOption {
	return func(r *Reconciler) {
		r.sink = normalizeActivitySink(sink)
	}
}

// NewReconciler builds the callback handler for the given route layout.
func NewReconciler(store *Store, gateway Gateway, routes Routes, opts ...ReconcilerOption) (*Reconciler, error) {
	if err := routes.Validate(); err != nil {
		return nil, err
	}

	r := &Reconciler{
		store:   store,
		gateway: gateway,
		routes:  routes,
		logger:  defLogger{},
		sink:    noopActivitySink{},
	}

	for _, opt := range opts {
		if opt != nil {
			opt(r)
		}
	}

	if r.notifier == nil {
		r.notifier = logNotifier{logger: r.logger}
	}

	return r, nil
}

// Handler serves the OAuth redirect route. Every terminal outcome
// navigates away exactly once.
func (r *Reconciler) Handler() router.HandlerFunc {
	return func(c router.Context) (err error) {
		// A panic past this point is the only path that fully reverts
		// the optimistic session.
		defer func() {
			if rec := recover(); rec != nil {
				r.logger.Error("callback reconciliation panicked: %v", rec)
				r.store.Reset(c.Context())
				r.notifier.NotifyError("Something went wrong completing sign-in. Please try again.")
				r.recordFailure(c, "panic")
				err = c.Redirect(r.routes.Login, http.StatusFound)
			}
		}()

		token := c.Query("token", "")
		refreshToken := c.Query("refreshToken", "")
		errCode := c.Query("error", "")
		errDesc := c.Query("description", "")
		roleHint := c.Query("role", "")

		if errCode != "" {
			msg := errDesc
			if msg == "" {
				msg = errCode
			}
			r.logger.Info("OAuth provider returned error %q: %s", errCode, errDesc)
			r.notifier.NotifyError(msg)
			r.recordFailure(c, errCode)
			return c.Redirect(r.routes.Login, http.StatusFound)
		}

		if token == "" || refreshToken == "" {
			r.logger.Warn("OAuth callback missing credentials: token=%t refresh=%t", token != "", refreshToken != "")
			r.notifier.NotifyError(ErrCallbackMalformed.Message)
			r.recordFailure(c, "missing_credentials")
			return c.Redirect(r.routes.Login, http.StatusFound)
		}

		r.store.AdoptCredential(c.Context(), Credential{
			Token:        token,
			RefreshToken: refreshToken,
		})

		user, fetchErr := r.gateway.CurrentUser(c.Context())
		if fetchErr != nil {
			// Keep the optimistic session: the tokens were just issued
			// by the provider, a flaky profile fetch does not condemn
			// them the way a stale stored credential would.
			r.logger.Warn("profile fetch failed after OAuth redirect (role hint %q): %v", roleHint, fetchErr)
			r.notifier.NotifyInfo("Signed in. Some profile data may still be loading.")
			r.recordCompleted(c, "", true)
			return c.Redirect(r.routes.DefaultDashboard, http.StatusFound)
		}

		r.store.ConfirmUser(user)
		r.recordCompleted(c, userID(user), false)
		return c.Redirect(r.routes.DashboardFor(user.Role), http.StatusFound)
	}
}

func (r *Reconciler) recordCompleted(c router.Context, id string, profilePending bool) {
	err := r.sink.Record(c.Context(), ActivityEvent{
		EventType:  ActivityEventOAuthCompleted,
		UserID:     id,
		ToStatus:   r.store.Snapshot().Status,
		Metadata:   map[string]any{"profile_pending": profilePending},
		OccurredAt: time.Now(),
	})
	if err != nil {
		r.logger.Warn("activity sink record error: %v", err)
	}
}

func (r *Reconciler) recordFailure(c router.Context, reason string) {
	err := r.sink.Record(c.Context(), ActivityEvent{
		EventType:  ActivityEventOAuthFailure,
		Metadata:   map[string]any{"reason": reason},
		OccurredAt: time.Now(),
	})
	if err != nil {
		r.logger.Warn("activity sink record error: %v", err)
	}
}
