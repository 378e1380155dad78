// Package apperror defines the application's error taxonomy.
//
// Services and upstream clients return these typed errors; the HTTP layer maps
// them to status codes with errors.Is/errors.As. Nothing below the handler
// package thinks in HTTP statuses — except the upstream categories, which may
// carry the third-party API's own status through.
package apperror

import (
	"errors"
	"fmt"
)

var (
	ErrNotFound     = errors.New("not found")
	ErrValidation   = errors.New("validation failed")
	ErrUnauthorized = errors.New("unauthorized")

	// ErrUpstreamAuth marks a failure while authenticating against an external
	// platform (token exchange, profile fetch). Client-facing: 400 or the
	// upstream's own status.
	ErrUpstreamAuth = errors.New("upstream authentication failed")

	// ErrUpstream marks a failed downstream listing/content call. Client-facing:
	// 500 with the upstream status and body embedded in the detail.
	ErrUpstream = errors.New("upstream call failed")
)

// AppError wraps a sentinel error with a client-visible message.
//
// Status, when non-zero, overrides the default HTTP mapping — used to pass an
// upstream platform's status code through to the caller.
type AppError struct {
	Err     error  // sentinel from the list above
	Message string // client-visible detail
	Status  int    // optional explicit HTTP status
}

func (e *AppError) Error() string {
	return e.Message
}

func (e *AppError) Unwrap() error {
	return e.Err
}

// NotFound reports that a referenced entity does not exist.
func NotFound(message string) *AppError {
	return &AppError{
		Err:     ErrNotFound,
		Message: message,
	}
}

// ValidationFailed reports malformed input or a malformed upstream response.
func ValidationFailed(message string) *AppError {
	return &AppError{
		Err:     ErrValidation,
		Message: message,
	}
}

// Unauthorized reports a failed credential check on this system's own users.
func Unauthorized(message string) *AppError {
	return &AppError{
		Err:     ErrUnauthorized,
		Message: message,
	}
}

// UpstreamAuth reports a failed OAuth exchange or profile fetch. The status is
// surfaced to the client as-is.
func UpstreamAuth(status int, message string) *AppError {
	return &AppError{
		Err:     ErrUpstreamAuth,
		Message: message,
		Status:  status,
	}
}

// Upstream reports a failed platform API call. The upstream status and body
// end up in the detail string; the response status stays 500.
func Upstream(status int, body string) *AppError {
	return &AppError{
		Err:     ErrUpstream,
		Message: fmt.Sprintf("upstream returned status %d: %s", status, body),
	}
}

// Upstreamf is Upstream with a caller-supplied message format.
func Upstreamf(format string, args ...any) *AppError {
	return &AppError{
		Err:     ErrUpstream,
		Message: fmt.Sprintf(format, args...),
	}
}
