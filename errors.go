package session

import (
	goerrors "github.com/goliatone/go-errors"
)

// Text codes attached to structured errors so callers can branch
// without string matching.
const (
	TextCodeInvalidCreds       = "INVALID_CREDENTIALS"
	TextCodeSessionInvalid     = "SESSION_INVALID"
	TextCodeGatewayUnavailable = "AUTH_GATEWAY_UNAVAILABLE"
	TextCodeCallbackMalformed  = "OAUTH_CALLBACK_MALFORMED"
	TextCodeCallbackDenied     = "OAUTH_CALLBACK_DENIED"
	TextCodeRegistrationFailed = "REGISTRATION_REJECTED"
)

// ErrInvalidCredentials is returned when the gateway rejects a login or
// register payload. Recovered locally: surfaced via the store's error
// field, session state untouched.
var ErrInvalidCredentials = goerrors.New("the credentials provided are invalid", goerrors.CategoryAuth).
	WithTextCode(TextCodeInvalidCreds).
	WithCode(goerrors.CodeUnauthorized)

// ErrSessionInvalid marks a failed current-user fetch for a persisted
// credential. Fatal to the session: the store resets to anonymous and
// deliberately surfaces no error message for this path.
var ErrSessionInvalid = goerrors.New("session is no longer valid", goerrors.CategoryAuth).
	WithTextCode(TextCodeSessionInvalid).
	WithCode(goerrors.CodeUnauthorized)

// ErrGatewayUnavailable wraps transport-level failures talking to the
// auth gateway.
var ErrGatewayUnavailable = goerrors.New("auth gateway unavailable", goerrors.CategoryOperation).
	WithTextCode(TextCodeGatewayUnavailable).
	WithCode(goerrors.CodeInternal)

// ErrCallbackMalformed is raised when an OAuth redirect lands without
// the tokens it promised.
var ErrCallbackMalformed = goerrors.New("OAuth callback is missing credentials", goerrors.CategoryBadInput).
	WithTextCode(TextCodeCallbackMalformed).
	WithCode(goerrors.CodeBadRequest)

// ErrCallbackDenied is raised when the OAuth provider reports an error
// on the redirect.
var ErrCallbackDenied = goerrors.New("OAuth provider denied the request", goerrors.CategoryAuth).
	WithTextCode(TextCodeCallbackDenied).
	WithCode(goerrors.CodeUnauthorized)

// IsCredentialError reports whether err is a credential rejection the
// UI should surface inline (bad login/register payload).
func IsCredentialError(err error) bool {
	if err == nil {
		return false
	}
	var richErr *goerrors.Error
	if goerrors.As(err, &richErr) {
		return richErr.TextCode == TextCodeInvalidCreds ||
			richErr.TextCode == TextCodeRegistrationFailed
	}
	return false
}

// IsSessionInvalid reports whether err means the persisted credential
// no longer resolves to a user.
func IsSessionInvalid(err error) bool {
	if err == nil {
		return false
	}
	var richErr *goerrors.Error
	if goerrors.As(err, &richErr) {
		return richErr.TextCode == TextCodeSessionInvalid
	}
	return false
}

// userMessage extracts the message a human should see for a gateway
// failure, falling back to a generic line when the error carries none.
func userMessage(err error, fallback string) string {
	if err == nil {
		return fallback
	}
	var richErr *goerrors.Error
	if goerrors.As(err, &richErr) && richErr.Message != "" {
		return richErr.Message
	}
	if msg := err.Error(); msg != "" {
		return msg
	}
	return fallback
}
