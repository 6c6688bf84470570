package stremio

import (
	"errors"
	"fmt"
)

// Sentinel errors shared by every API call. Transport failures are folded
// into one of the first two by the client so callers can branch with
// errors.Is instead of inspecting net internals.
var (
	ErrTimeout          = errors.New("request timed out")
	ErrConnection       = errors.New("connection error")
	ErrNotAuthenticated = errors.New("not authenticated")
)

// ServerError is returned when the API answers with a non-200 status code.
type ServerError struct {
	Status int
}

func (e *ServerError) Error() string {
	return fmt.Sprintf("request failed with status code %d", e.Status)
}

// ProtocolError is returned when a 200 response does not follow the API
// envelope: the body carries an explicit error payload, lacks a result
// field, or does not decode as JSON.
type ProtocolError struct {
	Message string
}

func (e *ProtocolError) Error() string {
	return e.Message
}

// AuthReason is the user-facing classification of a failed login.
type AuthReason string

const (
	ReasonBadCredentials AuthReason = "bad_credentials"
	ReasonConnection     AuthReason = "connection"
	ReasonTimeout        AuthReason = "timeout"
	ReasonGeneric        AuthReason = "generic"
)

// AuthError wraps a failed login attempt with a friendly message suitable
// for direct display. The underlying error stays reachable via Unwrap.
type AuthError struct {
	Reason  AuthReason
	Message string
	Err     error
}

func (e *AuthError) Error() string {
	return e.Message
}

func (e *AuthError) Unwrap() error {
	return e.Err
}
