package session

import (
	validation "github.com/go-ozzo/ozzo-validation"
)

// Routes names the navigation targets the guards and the OAuth
// reconciler redirect to.
type Routes struct {
	// Login is where unauthenticated visitors of protected routes land.
	Login string
	// Landing is the public landing route, also the fallback for role
	// mismatches and unknown roles.
	Landing string
	// Callback is the OAuth redirect route the reconciler serves.
	Callback string
	// Dashboards maps each role to its dashboard route.
	Dashboards map[Role]string
	// DefaultDashboard is the landing target when the role is not yet
	// known (e.g. profile still pending after an OAuth redirect).
	DefaultDashboard string
}

// DefaultRoutes returns the Wisal route layout.
func DefaultRoutes() Routes {
	return Routes{
		Login:    "/login",
		Landing:  "/",
		Callback: "/auth/callback",
		Dashboards: map[Role]string{
			RoleActivist: "/dashboard",
			RoleLawyer:   "/lawyer/dashboard",
			RoleAdmin:    "/admin",
		},
		DefaultDashboard: "/dashboard",
	}
}

// Validate checks that every target is present.
func (r Routes) Validate() error {
	return validation.ValidateStruct(&r,
		validation.Field(&r.Login, validation.Required),
		validation.Field(&r.Landing, validation.Required),
		validation.Field(&r.Callback, validation.Required),
		validation.Field(&r.Dashboards, validation.Required),
		validation.Field(&r.DefaultDashboard, validation.Required),
	)
}

// DashboardFor resolves the dashboard for a role; unknown roles fall
// back to the public landing route.
func (r Routes) DashboardFor(role Role) string {
	if path, ok := r.Dashboards[role]; ok {
		return path
	}
	return r.Landing
}
