package oauth

import (
	"errors"
	"fmt"
)

// ErrCsrfMismatch is returned when the state echoed in the callback does
// not match the one generated for this login attempt.
var ErrCsrfMismatch = errors.New("state mismatch: possible CSRF attack. Please try again.")

// MissingParameterError is returned when the callback query string lacks a
// required parameter.
type MissingParameterError struct {
	Name string
}

func (e *MissingParameterError) Error() string {
	if e.Name == "code" {
		return "no 'code' parameter in callback. Authorization may have been denied."
	}
	return fmt.Sprintf("no '%s' parameter in callback", e.Name)
}

// TransportError wraps a network-level failure talking to the provider.
type TransportError struct {
	Err error
}

func (e *TransportError) Error() string {
	return fmt.Sprintf("token exchange request failed: %v", e.Err)
}

func (e *TransportError) Unwrap() error { return e.Err }

// ProviderError is returned when the provider answers but reports failure,
// or when its response lacks the access token. Message carries the
// provider's own error string when one was supplied.
type ProviderError struct {
	Message string
}

func (e *ProviderError) Error() string {
	return fmt.Sprintf("oauth.v2.access failed: %s", e.Message)
}
