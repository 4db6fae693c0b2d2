package session

import (
	"context"
	"fmt"
)

type Logger interface {
	Debug(format string, args ...any)
	Info(format string, args ...any)
	Warn(format string, args ...any)
	Error(format string, args ...any)
}

// Gateway is the network-facing collaborator that performs the actual
// credential exchange with the Wisal API. It is the Store's only
// dependency on the outside world.
type Gateway interface {
	Login(ctx context.Context, creds Credentials) (*AuthResult, error)
	Register(ctx context.Context, payload RegisterPayload) (*AuthResult, error)
	CurrentUser(ctx context.Context) (*User, error)
	// Logout invalidates server-side credential artifacts. Best effort:
	// the Store swallows its error so the local session always ends up
	// cleared.
	Logout(ctx context.Context) error
}

// AuthResult is what the gateway hands back on a successful credential
// exchange.
type AuthResult struct {
	User         *User  `json:"user"`
	Token        string `json:"token"`
	RefreshToken string `json:"refreshToken,omitempty"`
}

// TokenVault mirrors the bearer credential into durable storage. Only
// the credential is ever persisted; the user profile is re-fetched on
// every rehydration. Implementations must degrade gracefully: a broken
// backing store reads as "no credential" and swallows writes.
type TokenVault interface {
	Load(ctx context.Context) Credential
	Store(ctx context.Context, cred Credential)
	Clear(ctx context.Context)
}

// Credential is the persisted slice of the session. Adding a field here
// means deliberately choosing to persist it.
type Credential struct {
	Token        string `json:"token"`
	RefreshToken string `json:"refresh_token,omitempty"`
}

func (c Credential) Empty() bool {
	return c.Token == ""
}

// Notifier surfaces user-visible notices outside the session state
// itself, e.g. toast messages raised by the OAuth reconciler.
type Notifier interface {
	NotifyError(message string)
	NotifyInfo(message string)
}

// NotifierFunc pair adapting plain functions to Notifier.
type notifierFuncs struct {
	errFn  func(string)
	infoFn func(string)
}

func (n notifierFuncs) NotifyError(message string) {
	if n.errFn != nil {
		n.errFn(message)
	}
}

func (n notifierFuncs) NotifyInfo(message string) {
	if n.infoFn != nil {
		n.infoFn(message)
	}
}

// NewNotifier builds a Notifier from two plain functions. Either may be
// nil.
func NewNotifier(errFn, infoFn func(string)) Notifier {
	return notifierFuncs{errFn: errFn, infoFn: infoFn}
}

type logNotifier struct {
	logger Logger
}

func (n logNotifier) NotifyError(message string) {
	n.logger.Error("notice: %s", message)
}

func (n logNotifier) NotifyInfo(message string) {
	n.logger.Info("notice: %s", message)
}

type defLogger struct{}

func (d defLogger) Error(format string, args ...any) {
	fmt.Printf("[ERR] SESSION "+newline(format), args...)
}

func (d defLogger) Warn(format string, args ...any) {
	fmt.Printf("[WRN] SESSION "+newline(format), args...)
}

func (d defLogger) Info(format string, args ...any) {
	fmt.Printf("[INF] SESSION "+newline(format), args...)
}

func (d defLogger) Debug(format string, args ...any) {
	fmt.Printf("[DBG] SESSION "+newline(format), args...)
}

func newline(s string) string {
	if len(s) > 0 && s[len(s)-1] != '\n' {
		s += "\n"
	}
	return s
}
