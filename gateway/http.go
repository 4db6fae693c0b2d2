// Package gateway provides Gateway implementations for the session
// store: the HTTP client for the Wisal auth API, and (in the local
// subpackage) an embedded gateway for development and tests.
package gateway

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	goerrors "github.com/goliatone/go-errors"

	session "github.com/wisal-platform/go-session"
)

const (
	loginPath       = "/api/auth/login"
	registerPath    = "/api/auth/register"
	currentUserPath = "/api/auth/me"
	logoutPath      = "/api/auth/logout"
)

// HTTP talks to the Wisal auth API. The bearer credential is read
// through the vault on every call, so the store remains the only
// writer and the two can never disagree about the persisted token.
type HTTP struct {
	baseURL string
	client  *http.Client
	vault   session.TokenVault
	logger  session.Logger
}

// HTTPOption customizes the HTTP gateway.
type HTTPOption func(*HTTP)

// WithHTTPClient overrides the default client (10s timeout).
func WithHTTPClient(client *http.Client) HTTPOption {
	return func(g *HTTP) {
		if client != nil {
			g.client = client
		}
	}
}

// WithHTTPLogger overrides the default logger.
func WithHTTPLogger(logger session.Logger) HTTPOption {
	return func(g *HTTP) {
		if logger != nil {
			g.logger = logger
		}
	}
}

// NewHTTP builds a gateway for the API at baseURL, reading the bearer
// credential through vault.
func NewHTTP(baseURL string, vault session.TokenVault, opts ...HTTPOption) *HTTP {
	g := &HTTP{
		baseURL: baseURL,
		vault:   vault,
		client:  &http.Client{Timeout: 10 * time.Second},
		logger:  noLogger{},
	}
	for _, opt := range opts {
		if opt != nil {
			opt(g)
		}
	}
	return g
}

// Login implements session.Gateway.
func (g *HTTP) Login(ctx context.Context, creds session.Credentials) (*session.AuthResult, error) {
	return g.exchange(ctx, loginPath, creds, session.TextCodeInvalidCreds)
}

// Register implements session.Gateway.
func (g *HTTP) Register(ctx context.Context, payload session.RegisterPayload) (*session.AuthResult, error) {
	return g.exchange(ctx, registerPath, payload, session.TextCodeRegistrationFailed)
}

// CurrentUser implements session.Gateway.
func (g *HTTP) CurrentUser(ctx context.Context) (*session.User, error) {
	token := g.vault.Load(ctx).Token
	if token == "" {
		return nil, session.ErrSessionInvalid
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, g.baseURL+currentUserPath, nil)
	if err != nil {
		return nil, goerrors.Wrap(err, goerrors.CategoryInternal, "building current-user request")
	}
	req.Header.Set("Authorization", "Bearer "+token)

	resp, err := g.client.Do(req)
	if err != nil {
		return nil, goerrors.Wrap(err, goerrors.CategoryOperation, "auth gateway unavailable").
			WithTextCode(session.TextCodeGatewayUnavailable)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		g.logger.Debug("current-user fetch rejected with status %d", resp.StatusCode)
		return nil, session.ErrSessionInvalid
	}

	var user session.User
	if err := json.NewDecoder(resp.Body).Decode(&user); err != nil {
		return nil, goerrors.Wrap(err, goerrors.CategoryBadInput, "decoding current-user response")
	}

	return &user, nil
}

// Logout implements session.Gateway. Best effort: callers clear local
// state regardless of the outcome here.
func (g *HTTP) Logout(ctx context.Context) error {
	token := g.vault.Load(ctx).Token
	if token == "" {
		return nil
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, g.baseURL+logoutPath, nil)
	if err != nil {
		return goerrors.Wrap(err, goerrors.CategoryInternal, "building logout request")
	}
	req.Header.Set("Authorization", "Bearer "+token)

	resp, err := g.client.Do(req)
	if err != nil {
		return goerrors.Wrap(err, goerrors.CategoryOperation, "auth gateway unavailable").
			WithTextCode(session.TextCodeGatewayUnavailable)
	}
	defer resp.Body.Close()

	if resp.StatusCode >= http.StatusBadRequest {
		return goerrors.New(
			fmt.Sprintf("logout rejected with status %d", resp.StatusCode),
			goerrors.CategoryOperation,
		)
	}

	return nil
}

func (g *HTTP) exchange(ctx context.Context, path string, payload any, rejectionCode string) (*session.AuthResult, error) {
	body, err := json.Marshal(payload)
	if err != nil {
		return nil, goerrors.Wrap(err, goerrors.CategoryInternal, "encoding auth payload")
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, g.baseURL+path, bytes.NewReader(body))
	if err != nil {
		return nil, goerrors.Wrap(err, goerrors.CategoryInternal, "building auth request")
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := g.client.Do(req)
	if err != nil {
		return nil, goerrors.Wrap(err, goerrors.CategoryOperation, "auth gateway unavailable").
			WithTextCode(session.TextCodeGatewayUnavailable)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK && resp.StatusCode != http.StatusCreated {
		return nil, goerrors.New(serverMessage(resp.Body), goerrors.CategoryAuth).
			WithTextCode(rejectionCode).
			WithCode(goerrors.CodeUnauthorized).
			WithMetadata(map[string]any{"status": resp.StatusCode})
	}

	var result session.AuthResult
	if err := json.NewDecoder(resp.Body).Decode(&result); err != nil {
		return nil, goerrors.Wrap(err, goerrors.CategoryBadInput, "decoding auth response")
	}

	return &result, nil
}

// serverMessage pulls the human-readable rejection out of an API error
// body, falling back to a generic line.
func serverMessage(r io.Reader) string {
	var payload struct {
		Message string `json:"message"`
		Error   string `json:"error"`
	}
	if err := json.NewDecoder(io.LimitReader(r, 1<<16)).Decode(&payload); err == nil {
		if payload.Message != "" {
			return payload.Message
		}
		if payload.Error != "" {
			return payload.Error
		}
	}
	return "the credentials provided are invalid"
}

type noLogger struct{}

func (noLogger) Debug(string, ...any) {}
func (noLogger) Info(string, ...any)  {}
func (noLogger) Warn(string, ...any)  {}
func (noLogger) Error(string, ...any) {}
