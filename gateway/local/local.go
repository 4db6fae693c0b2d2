// Package local is an embedded Gateway for development and tests: the
// full credential exchange without a network or a Wisal API instance.
// It is also where payload validation lives — the session store never
// pre-validates, the gateway is the source of truth.
package local

import (
	"context"
	"strings"
	"sync"
	"time"

	validation "github.com/go-ozzo/ozzo-validation"
	"github.com/go-ozzo/ozzo-validation/is"
	"github.com/golang-jwt/jwt/v5"
	goerrors "github.com/goliatone/go-errors"
	"github.com/goliatone/hashid/pkg/hashid"
	"github.com/nyaruka/phonenumbers"
	"golang.org/x/crypto/bcrypt"

	session "github.com/wisal-platform/go-session"
)

const tokenTTL = 24 * time.Hour

type account struct {
	user         *session.User
	passwordHash string
}

// Gateway keeps accounts in memory and mints HS256 tokens. Tokens are
// validated on CurrentUser the same way the real API does, so expiry
// and revocation behavior is faithful enough for integration tests.
type Gateway struct {
	mu         sync.Mutex
	accounts   map[string]*account // keyed by lowercased email
	byID       map[string]*account
	signingKey []byte
	issuer     string
	now        func() time.Time

	// current mirrors the bearer the caller would send; set on
	// login/register, checked by CurrentUser.
	currentToken string
}

// Option customizes the local gateway.
type Option func(*Gateway)

// WithSigningKey overrides the development signing key.
func WithSigningKey(key []byte) Option {
	return func(g *Gateway) {
		if len(key) > 0 {
			g.signingKey = key
		}
	}
}

// WithClock injects a custom clock (useful for expiry tests).
func WithClock(clock func() time.Time) Option {
	return func(g *Gateway) {
		if clock != nil {
			g.now = clock
		}
	}
}

// New returns an empty local gateway.
func New(opts ...Option) *Gateway {
	g := &Gateway{
		accounts:   map[string]*account{},
		byID:       map[string]*account{},
		signingKey: []byte("wisal-dev-signing-key"),
		issuer:     "wisal-local",
		now:        time.Now,
	}
	for _, opt := range opts {
		if opt != nil {
			opt(g)
		}
	}
	return g
}

// Login implements session.Gateway.
func (g *Gateway) Login(ctx context.Context, creds session.Credentials) (*session.AuthResult, error) {
	g.mu.Lock()
	defer g.mu.Unlock()

	acct, ok := g.accounts[strings.ToLower(creds.Email)]
	if !ok {
		return nil, session.ErrInvalidCredentials
	}

	if err := bcrypt.CompareHashAndPassword([]byte(acct.passwordHash), []byte(creds.Password)); err != nil {
		return nil, session.ErrInvalidCredentials
	}

	return g.issueLocked(acct)
}

// Register implements session.Gateway. Validates the payload,
// normalizes lawyer contact numbers to E.164, and derives a
// deterministic user ID from the email.
func (g *Gateway) Register(ctx context.Context, payload session.RegisterPayload) (*session.AuthResult, error) {
	if err := validatePayload(payload); err != nil {
		return nil, goerrors.Wrap(err, goerrors.CategoryValidation, err.Error()).
			WithTextCode(session.TextCodeRegistrationFailed).
			WithCode(goerrors.CodeBadRequest)
	}

	g.mu.Lock()
	defer g.mu.Unlock()

	key := strings.ToLower(payload.Email)
	if _, exists := g.accounts[key]; exists {
		return nil, goerrors.New("an account with this email already exists", goerrors.CategoryConflict).
			WithTextCode(session.TextCodeRegistrationFailed).
			WithCode(goerrors.CodeConflict)
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(payload.Password), bcrypt.DefaultCost)
	if err != nil {
		return nil, goerrors.Wrap(err, goerrors.CategoryInternal, "failed to hash password")
	}

	id, err := hashid.NewUUID(key)
	if err != nil {
		return nil, goerrors.Wrap(err, goerrors.CategoryInternal, "failed to derive user id")
	}

	now := g.now().UTC()
	user := &session.User{
		ID:              id,
		Email:           payload.Email,
		Name:            payload.Name,
		Role:            payload.Role,
		LawyerProfile:   payload.LawyerProfile,
		ActivistProfile: payload.ActivistProfile,
		CreatedAt:       &now,
		UpdatedAt:       &now,
	}

	if user.LawyerProfile != nil && user.LawyerProfile.Phone != "" {
		lp := *user.LawyerProfile
		lp.Phone = normalizePhone(lp.Phone)
		user.LawyerProfile = &lp
	}

	acct := &account{user: user, passwordHash: string(hash)}
	g.accounts[key] = acct
	g.byID[id.String()] = acct

	return g.issueLocked(acct)
}

// CurrentUser implements session.Gateway: validates the last issued
// bearer and resolves it to a user.
func (g *Gateway) CurrentUser(ctx context.Context) (*session.User, error) {
	g.mu.Lock()
	defer g.mu.Unlock()

	if g.currentToken == "" {
		return nil, session.ErrSessionInvalid
	}

	claims := &jwt.RegisteredClaims{}
	token, err := jwt.ParseWithClaims(g.currentToken, claims, func(t *jwt.Token) (any, error) {
		return g.signingKey, nil
	}, jwt.WithTimeFunc(g.now))
	if err != nil || !token.Valid {
		return nil, session.ErrSessionInvalid
	}

	acct, ok := g.byID[claims.Subject]
	if !ok {
		return nil, session.ErrSessionInvalid
	}

	return acct.user.Clone(), nil
}

// Logout implements session.Gateway.
func (g *Gateway) Logout(ctx context.Context) error {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.currentToken = ""
	return nil
}

// Seed registers an account without logging it in; test fixture helper.
func (g *Gateway) Seed(user *session.User, password string) error {
	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.MinCost)
	if err != nil {
		return err
	}

	g.mu.Lock()
	defer g.mu.Unlock()

	acct := &account{user: user.Clone(), passwordHash: string(hash)}
	g.accounts[strings.ToLower(user.Email)] = acct
	g.byID[user.ID.String()] = acct
	return nil
}

// RevokeAll invalidates any outstanding bearer; test fixture helper for
// the session-expired paths.
func (g *Gateway) RevokeAll() {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.currentToken = ""
}

func (g *Gateway) issueLocked(acct *account) (*session.AuthResult, error) {
	now := g.now()
	claims := &jwt.RegisteredClaims{
		Issuer:    g.issuer,
		Subject:   acct.user.ID.String(),
		IssuedAt:  jwt.NewNumericDate(now),
		ExpiresAt: jwt.NewNumericDate(now.Add(tokenTTL)),
	}

	token, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(g.signingKey)
	if err != nil {
		return nil, goerrors.Wrap(err, goerrors.CategoryInternal, "failed to sign token")
	}

	g.currentToken = token

	return &session.AuthResult{
		User:  acct.user.Clone(),
		Token: token,
	}, nil
}

func validatePayload(p session.RegisterPayload) error {
	return validation.ValidateStruct(&p,
		validation.Field(&p.Email, validation.Required, is.Email),
		validation.Field(&p.Password, validation.Required, validation.Length(8, 128)),
		validation.Field(&p.Name, validation.Required),
		validation.Field(&p.Role, validation.Required, validation.By(func(value any) error {
			role, _ := value.(string)
			if !session.IsValidRole(role) {
				return goerrors.New("unknown role", goerrors.CategoryValidation)
			}
			return nil
		})),
	)
}

// normalizePhone formats to E.164 when the number parses; raw input is
// kept otherwise, the directory flags it for review instead.
func normalizePhone(raw string) string {
	num, err := phonenumbers.Parse(raw, "US")
	if err != nil || !phonenumbers.IsValidNumber(num) {
		return raw
	}
	return phonenumbers.Format(num, phonenumbers.E164)
}
