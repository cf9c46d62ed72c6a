package domain

import (
	"errors"
	"fmt"
	"time"
)

var (
	// ErrNotConfirmed is returned when a destructive call was not
	// confirmed by the operator. No request is sent.
	ErrNotConfirmed = errors.New("operation not confirmed")

	// ErrInFlight is returned when a single-flight operation is triggered
	// while a previous trigger is still outstanding.
	ErrInFlight = errors.New("operation already in progress")

	// ErrLocked is returned by every evaluation input once the evaluation
	// has been submitted.
	ErrLocked = errors.New("evaluation already submitted")

	// ErrBackendUnavailable is returned while the transport's circuit
	// breaker is open.
	ErrBackendUnavailable = errors.New("evaluation service unavailable")
)

// AuthError reports a missing, invalid or expired credential. The session
// has been cleared by the time callers see it.
type AuthError struct {
	Status int
	Reason string
}

func (e *AuthError) Error() string {
	if e.Status != 0 {
		return fmt.Sprintf("unauthorized (HTTP %d): %s", e.Status, e.Reason)
	}
	return "unauthorized: " + e.Reason
}

// ValidationError is a local field check failure. No request was sent.
type ValidationError struct {
	Field   string
	Message string
}

func (e *ValidationError) Error() string {
	return e.Field + ": " + e.Message
}

// HTTPError is a non-2xx, non-auth response.
type HTTPError struct {
	Status int
	Detail string
}

func (e *HTTPError) Error() string {
	if e.Detail == "" {
		return fmt.Sprintf("HTTP %d", e.Status)
	}
	return fmt.Sprintf("HTTP %d: %s", e.Status, e.Detail)
}

// ParseError reports a malformed document. It is never fatal to a view.
type ParseError struct {
	What string
	Err  error
}

func (e *ParseError) Error() string {
	return "parsing " + e.What + ": " + e.Err.Error()
}

func (e *ParseError) Unwrap() error { return e.Err }

// TimeoutError reports a request that exceeded its deadline.
type TimeoutError struct {
	Route string
	After time.Duration
}

func (e *TimeoutError) Error() string {
	return fmt.Sprintf("%s: timed out after %s", e.Route, e.After)
}

// NetworkError reports a request that never got an HTTP response.
type NetworkError struct {
	Route string
	Err   error
}

func (e *NetworkError) Error() string {
	return e.Route + ": " + e.Err.Error()
}

func (e *NetworkError) Unwrap() error { return e.Err }

// IsUnreachable reports whether err means the server could not be
// reached: a network failure, a timeout or an open breaker.
func IsUnreachable(err error) bool {
	var netErr *NetworkError
	var timeoutErr *TimeoutError
	return errors.As(err, &netErr) || errors.As(err, &timeoutErr) || errors.Is(err, ErrBackendUnavailable)
}

// IsAuth reports whether err is an authorization failure.
func IsAuth(err error) bool {
	var authErr *AuthError
	return errors.As(err, &authErr)
}

// HTTPStatus returns the status of an HTTPError in err's chain, or 0.
func HTTPStatus(err error) int {
	var httpErr *HTTPError
	if errors.As(err, &httpErr) {
		return httpErr.Status
	}
	return 0
}
