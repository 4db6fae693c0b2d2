package session

// Status is the three-valued authentication state. A plain boolean
// cannot represent the window between credential acceptance (e.g. an
// OAuth redirect) and profile fetch completion, so consumers get an
// explicit pending state to decide on instead of inferring it from a
// missing user.
type Status string

const (
	// StatusAnonymous means no accepted credential.
	StatusAnonymous Status = "anonymous"
	// StatusPendingProfile means a credential was accepted but the
	// profile has not been confirmed yet. The User may be nil here.
	StatusPendingProfile Status = "pending_profile"
	// StatusAuthenticated means credential and profile are confirmed.
	StatusAuthenticated Status = "authenticated"
)

// Authenticated reports whether the status counts as logged in for
// guard purposes. The pending state counts: the credential was already
// accepted by a trusted signal.
func (s Status) Authenticated() bool {
	return s == StatusPendingProfile || s == StatusAuthenticated
}

// statusTransitions is the allowed transition graph. Every state may
// collapse to anonymous (logout, expiry); the pending state exists only
// on the way to authenticated.
var statusTransitions = map[Status]map[Status]struct{}{
	StatusAnonymous: {
		StatusPendingProfile: {},
		StatusAuthenticated:  {},
	},
	StatusPendingProfile: {
		StatusAuthenticated: {},
		StatusAnonymous:     {},
	},
	StatusAuthenticated: {
		StatusAnonymous: {},
		// A refreshed credential restarts profile confirmation.
		StatusPendingProfile: {},
	},
}

func canTransition(from, to Status) bool {
	if from == to {
		return true
	}
	allowed, ok := statusTransitions[from]
	if !ok {
		return false
	}
	_, exists := allowed[to]
	return exists
}
