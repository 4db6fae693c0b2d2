package session

import (
	"context"
	"sync"
	"time"
)

// Snapshot is an immutable view of the session state. Consumers must
// treat it as read-only per read; the contained User is a copy.
type Snapshot struct {
	User         *User
	Token        string
	RefreshToken string
	Status       Status
	Loading      bool
	LastError    string
}

// IsAuthenticated derives the guard-facing boolean from the status.
func (s Snapshot) IsAuthenticated() bool {
	return s.Status.Authenticated()
}

// Store owns the session state for one running consumer. All mutations
// go through its methods; reads go through Snapshot or Subscribe.
//
// Overlapping identity-resolving calls (Login, Register, CheckAuth) are
// not sequenced or cancelled: whichever response lands last wins. The
// triggers are human-driven, so the race is accepted rather than
// coordinated away.
type Store struct {
	mu      sync.Mutex
	gateway Gateway
	vault   TokenVault
	logger  Logger
	sink    ActivitySink
	now     func() time.Time

	user         *User
	token        string
	refreshToken string
	status       Status
	loading      bool
	lastError    string

	subscribers map[int]func(Snapshot)
	nextSubID   int
}

// StoreOption customizes store construction.
type StoreOption func(*Store)

// WithLogger overrides the default logger.
func WithLogger(logger Logger) StoreOption {
	return func(s *Store) {
		if logger != nil {
			s.logger = logger
		}
	}
}

// WithActivitySink sets the ActivitySink used to publish session
// lifecycle events.
func WithActivitySink(sink ActivitySink) StoreOption {
	return func(s *Store) {
		s.sink = normalizeActivitySink(sink)
	}
}

// WithClock injects a custom clock (useful for tests).
func WithClock(clock func() time.Time) StoreOption {
	return func(s *Store) {
		if clock != nil {
			s.now = clock
		}
	}
}

// NewStore builds a Store seeded from the vault: a persisted credential
// rehydrates the token only, the session stays anonymous until
// CheckAuth confirms a profile for it.
func NewStore(ctx context.Context, gateway Gateway, vault TokenVault, opts ...StoreOption) *Store {
	s := &Store{
		gateway:     gateway,
		vault:       vault,
		logger:      defLogger{},
		sink:        noopActivitySink{},
		now:         time.Now,
		status:      StatusAnonymous,
		subscribers: map[int]func(Snapshot){},
	}

	for _, opt := range opts {
		if opt != nil {
			opt(s)
		}
	}

	cred := vault.Load(ctx)
	s.token = cred.Token
	s.refreshToken = cred.RefreshToken

	return s
}

// Snapshot returns a copy of the current state.
func (s *Store) Snapshot() Snapshot {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.snapshotLocked()
}

// Subscribe registers fn to run after every state change. The returned
// function removes the subscription. fn is invoked outside the store
// lock and may call back into the store.
func (s *Store) Subscribe(fn func(Snapshot)) func() {
	s.mu.Lock()
	defer s.mu.Unlock()

	id := s.nextSubID
	s.nextSubID++
	s.subscribers[id] = fn

	return func() {
		s.mu.Lock()
		defer s.mu.Unlock()
		delete(s.subscribers, id)
	}
}

// Login exchanges credentials for a session. On success user and token
// are replaced atomically; on failure prior state is kept, the error
// message is stored for the UI, and the failure is re-signalled to the
// caller.
func (s *Store) Login(ctx context.Context, creds Credentials) (*User, error) {
	s.beginResolving()

	res, err := s.gateway.Login(ctx, creds)
	if err != nil {
		s.failResolving(ctx, ActivityEventLoginFailure, err, "Unable to log in")
		return nil, err
	}

	user := s.adoptResult(ctx, res)
	s.record(ctx, ActivityEvent{
		EventType: ActivityEventLoginSuccess,
		UserID:    userID(user),
		ToStatus:  StatusAuthenticated,
	})
	return user, nil
}

// Register creates an account and logs it in. Identical contract to
// Login; role and role-specific validation is the gateway's job.
func (s *Store) Register(ctx context.Context, payload RegisterPayload) (*User, error) {
	s.beginResolving()

	res, err := s.gateway.Register(ctx, payload)
	if err != nil {
		s.failResolving(ctx, ActivityEventRegisterFailure, err, "Unable to register")
		return nil, err
	}

	user := s.adoptResult(ctx, res)
	s.record(ctx, ActivityEvent{
		EventType: ActivityEventRegisterSuccess,
		UserID:    userID(user),
		ToStatus:  StatusAuthenticated,
	})
	return user, nil
}

// Logout ends the session. Gateway errors are swallowed so the local
// session always ends up cleared; this cannot fail from the caller's
// perspective.
func (s *Store) Logout(ctx context.Context) {
	if err := s.gateway.Logout(ctx); err != nil {
		s.logger.Warn("gateway logout failed, clearing local session anyway: %v", err)
	}

	s.mu.Lock()
	id := userID(s.user)
	from := s.status
	s.resetLocked()
	s.mu.Unlock()

	s.vault.Clear(ctx)
	s.record(ctx, ActivityEvent{
		EventType:  ActivityEventLogout,
		UserID:     id,
		FromStatus: from,
		ToStatus:   StatusAnonymous,
	})
	s.notify()
}

// CheckAuth reconciles a persisted credential with a fresh profile
// fetch. Without a credential it resolves immediately without touching
// the network. Any fetch failure is treated as "session is no longer
// valid": full reset, no error message surfaced. Returns whether the
// session is authenticated after the check.
func (s *Store) CheckAuth(ctx context.Context) bool {
	s.mu.Lock()
	if s.token == "" {
		s.setStatusLocked(StatusAnonymous)
		s.mu.Unlock()
		s.notify()
		return false
	}
	s.loading = true
	s.mu.Unlock()
	s.notify()

	user, err := s.gateway.CurrentUser(ctx)
	if err != nil {
		s.mu.Lock()
		id := userID(s.user)
		from := s.status
		s.resetLocked()
		s.mu.Unlock()

		s.vault.Clear(ctx)
		s.logger.Info("session check failed, degrading to anonymous: %v", err)
		s.record(ctx, ActivityEvent{
			EventType:  ActivityEventExpired,
			UserID:     id,
			FromStatus: from,
			ToStatus:   StatusAnonymous,
		})
		s.notify()
		return false
	}

	s.mu.Lock()
	s.user = user.Clone()
	s.setStatusLocked(StatusAuthenticated)
	s.loading = false
	s.mu.Unlock()
	s.notify()
	return true
}

// UpdateUser shallow-merges the patch into the current user. A missing
// user makes this a no-op, not an error.
func (s *Store) UpdateUser(patch UserPatch) {
	s.mu.Lock()
	if s.user == nil {
		s.mu.Unlock()
		return
	}
	user := s.user.Clone()
	patch.Apply(user)
	s.user = user
	s.mu.Unlock()
	s.notify()
}

// ClearError drops the stored failure message. No other side effects.
func (s *Store) ClearError() {
	s.mu.Lock()
	s.lastError = ""
	s.mu.Unlock()
	s.notify()
}

// AdoptCredential installs an externally validated credential (the
// OAuth redirect path) without a gateway exchange. The session becomes
// authenticated-pending-profile before the user is known.
func (s *Store) AdoptCredential(ctx context.Context, cred Credential) {
	s.mu.Lock()
	s.token = cred.Token
	s.refreshToken = cred.RefreshToken
	s.user = nil
	s.loading = false
	s.lastError = ""
	s.setStatusLocked(StatusPendingProfile)
	s.mu.Unlock()

	s.vault.Store(ctx, cred)
	s.notify()
}

// ConfirmUser resolves a pending profile. Ignored when the session is
// anonymous (e.g. it got reset while the fetch was in flight).
func (s *Store) ConfirmUser(user *User) {
	s.mu.Lock()
	if s.status == StatusAnonymous || user == nil {
		s.mu.Unlock()
		return
	}
	s.user = user.Clone()
	s.setStatusLocked(StatusAuthenticated)
	s.loading = false
	s.mu.Unlock()
	s.notify()
}

// Reset clears the session locally without calling the gateway. Used by
// the reconciler's exception path; Logout is the polite variant.
func (s *Store) Reset(ctx context.Context) {
	s.mu.Lock()
	s.resetLocked()
	s.mu.Unlock()

	s.vault.Clear(ctx)
	s.notify()
}

func (s *Store) beginResolving() {
	s.mu.Lock()
	s.loading = true
	s.lastError = ""
	s.mu.Unlock()
	s.notify()
}

func (s *Store) failResolving(ctx context.Context, event ActivityEventType, err error, fallback string) {
	msg := userMessage(err, fallback)

	s.mu.Lock()
	s.loading = false
	s.lastError = msg
	from := s.status
	s.mu.Unlock()

	s.record(ctx, ActivityEvent{
		EventType:  event,
		FromStatus: from,
		ToStatus:   from,
		Metadata:   map[string]any{"error": msg},
	})
	s.notify()
}

func (s *Store) adoptResult(ctx context.Context, res *AuthResult) *User {
	s.mu.Lock()
	s.user = res.User.Clone()
	s.token = res.Token
	s.refreshToken = res.RefreshToken
	s.loading = false
	s.lastError = ""
	s.setStatusLocked(StatusAuthenticated)
	user := s.user.Clone()
	s.mu.Unlock()

	s.vault.Store(ctx, Credential{Token: res.Token, RefreshToken: res.RefreshToken})
	s.notify()
	return user
}

func (s *Store) resetLocked() {
	s.user = nil
	s.token = ""
	s.refreshToken = ""
	s.loading = false
	s.lastError = ""
	s.setStatusLocked(StatusAnonymous)
}

func (s *Store) setStatusLocked(to Status) {
	if !canTransition(s.status, to) {
		s.logger.Warn("invalid session status transition %s -> %s", s.status, to)
		return
	}
	s.status = to
}

func (s *Store) snapshotLocked() Snapshot {
	return Snapshot{
		User:         s.user.Clone(),
		Token:        s.token,
		RefreshToken: s.refreshToken,
		Status:       s.status,
		Loading:      s.loading,
		LastError:    s.lastError,
	}
}

func (s *Store) notify() {
	s.mu.Lock()
	snap := s.snapshotLocked()
	subs := make([]func(Snapshot), 0, len(s.subscribers))
	for _, fn := range s.subscribers {
		subs = append(subs, fn)
	}
	s.mu.Unlock()

	for _, fn := range subs {
		fn(snap)
	}
}

func (s *Store) record(ctx context.Context, event ActivityEvent) {
	if event.OccurredAt.IsZero() {
		event.OccurredAt = s.now()
	}
	if err := s.sink.Record(ctx, event); err != nil {
		s.logger.Warn("activity sink record error: %v", err)
	}
}

func userID(u *User) string {
	if u == nil {
		return ""
	}
	return u.ID.String()
}
