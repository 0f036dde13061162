package nativeapp

import (
	"errors"
	"fmt"
)

var (
	// ErrWaitTimeout is returned by WaitForCode when no redirect arrived in time.
	ErrWaitTimeout = errors.New("timed out waiting for the authorization code")
	// ErrReceiverStopped is returned by WaitForCode when the receiver was stopped while waiting.
	ErrReceiverStopped = errors.New("verification code receiver stopped")
	// ErrReceiverNotStarted is returned when WaitForCode is called before Start.
	ErrReceiverNotStarted = errors.New("verification code receiver not started")
	// ErrPlaceholderSecrets is returned when client_secrets.json still holds the template values.
	ErrPlaceholderSecrets = errors.New("client secrets contain placeholder values")
)

// AuthorizationDeniedError is the redirect outcome when the user (or the provider) refused consent.
type AuthorizationDeniedError struct {
	Code        string
	Description string
}

func (e *AuthorizationDeniedError) Error() string {
	if e.Description != "" {
		return fmt.Sprintf("authorization failed: %s: %s", e.Code, e.Description)
	}
	return "authorization failed: " + e.Code
}

// ProviderError is a structured error answered by the token or revocation endpoint (RFC 6749 §5.2).
type ProviderError struct {
	StatusCode  int
	Code        string
	Description string
	URI         string
}

func (e *ProviderError) Error() string {
	msg := fmt.Sprintf("provider error (status %d): %s", e.StatusCode, e.Code)
	if e.Description != "" {
		msg += ": " + e.Description
	}
	return msg
}

// TransportError means the provider could not be reached or its answer could not be read.
type TransportError struct {
	Op  string
	Err error
}

func (e *TransportError) Error() string {
	return e.Op + ": " + e.Err.Error()
}

func (e *TransportError) Unwrap() error {
	return e.Err
}
