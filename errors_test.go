package session_test

import (
	"errors"
	"fmt"
	"testing"

	goerrors "github.com/goliatone/go-errors"
	"github.com/stretchr/testify/assert"

	session "github.com/wisal-platform/go-session"
)

func TestIsCredentialError(t *testing.T) {
	tests := []struct {
		name     string
		err      error
		expected bool
	}{
		{
			name:     "invalid credentials sentinel",
			err:      session.ErrInvalidCredentials,
			expected: true,
		},
		{
			name: "registration rejection",
			err: goerrors.New("email already registered", goerrors.CategoryConflict).
				WithTextCode(session.TextCodeRegistrationFailed),
			expected: true,
		},
		{
			name:     "wrapped credential rejection",
			err:      fmt.Errorf("login: %w", session.ErrInvalidCredentials),
			expected: true,
		},
		{
			name:     "session invalid is not a credential error",
			err:      session.ErrSessionInvalid,
			expected: false,
		},
		{
			name:     "plain error",
			err:      errors.New("something else"),
			expected: false,
		},
		{
			name:     "nil error",
			err:      nil,
			expected: false,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, session.IsCredentialError(tt.err))
		})
	}
}

func TestIsSessionInvalid(t *testing.T) {
	tests := []struct {
		name     string
		err      error
		expected bool
	}{
		{
			name:     "session invalid sentinel",
			err:      session.ErrSessionInvalid,
			expected: true,
		},
		{
			name:     "wrapped sentinel",
			err:      fmt.Errorf("check: %w", session.ErrSessionInvalid),
			expected: true,
		},
		{
			name:     "gateway unavailable is a different failure",
			err:      session.ErrGatewayUnavailable,
			expected: false,
		},
		{
			name:     "plain error",
			err:      errors.New("nope"),
			expected: false,
		},
		{
			name:     "nil error",
			err:      nil,
			expected: false,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, session.IsSessionInvalid(tt.err))
		})
	}
}

func TestSentinelCategories(t *testing.T) {
	assert.Equal(t, goerrors.CategoryAuth, session.ErrInvalidCredentials.Category)
	assert.Equal(t, goerrors.CategoryAuth, session.ErrSessionInvalid.Category)
	assert.Equal(t, goerrors.CategoryOperation, session.ErrGatewayUnavailable.Category)
	assert.Equal(t, goerrors.CategoryBadInput, session.ErrCallbackMalformed.Category)
	assert.Equal(t, session.TextCodeCallbackDenied, session.ErrCallbackDenied.TextCode)
}
