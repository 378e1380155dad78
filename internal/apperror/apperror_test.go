package apperror

import (
	"errors"
	"fmt"
	"testing"
)

func TestErrorsIs(t *testing.T) {
	tests := []struct {
		name      string
		err       error
		target    error
		wantMatch bool
	}{
		{
			name:      "NotFound wraps ErrNotFound",
			err:       NotFound("student not found"),
			target:    ErrNotFound,
			wantMatch: true,
		},
		{
			name:      "ValidationFailed wraps ErrValidation",
			err:       ValidationFailed("missing user id"),
			target:    ErrValidation,
			wantMatch: true,
		},
		{
			name:      "Unauthorized wraps ErrUnauthorized",
			err:       Unauthorized("Incorrect username or password"),
			target:    ErrUnauthorized,
			wantMatch: true,
		},
		{
			name:      "UpstreamAuth wraps ErrUpstreamAuth",
			err:       UpstreamAuth(400, "bad verification code"),
			target:    ErrUpstreamAuth,
			wantMatch: true,
		},
		{
			name:      "Upstream wraps ErrUpstream",
			err:       Upstream(502, "bad gateway"),
			target:    ErrUpstream,
			wantMatch: true,
		},
		{
			name:      "NotFound does NOT match ErrValidation",
			err:       NotFound("student not found"),
			target:    ErrValidation,
			wantMatch: false,
		},
		{
			name:      "UpstreamAuth does NOT match ErrUpstream",
			err:       UpstreamAuth(400, "nope"),
			target:    ErrUpstream,
			wantMatch: false,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := errors.Is(tt.err, tt.target); got != tt.wantMatch {
				t.Errorf("errors.Is() = %v, want %v", got, tt.wantMatch)
			}
		})
	}
}

// Wrapping with fmt.Errorf("%w") must keep the chain intact — that's how the
// handler layer sees through service-level wrapping.
func TestErrorsIs_ThroughWrapping(t *testing.T) {
	wrapped := fmt.Errorf("importing repositories: %w", NotFound("student not found"))

	if !errors.Is(wrapped, ErrNotFound) {
		t.Error("errors.Is() should match ErrNotFound through fmt.Errorf wrapping")
	}

	var appErr *AppError
	if !errors.As(wrapped, &appErr) {
		t.Fatal("errors.As() should extract *AppError through wrapping")
	}
	if appErr.Message != "student not found" {
		t.Errorf("Message = %q, want %q", appErr.Message, "student not found")
	}
}

func TestUpstreamMessageEmbedsStatusAndBody(t *testing.T) {
	err := Upstream(503, "service unavailable")

	want := "upstream returned status 503: service unavailable"
	if err.Message != want {
		t.Errorf("Message = %q, want %q", err.Message, want)
	}
	if err.Status != 0 {
		t.Errorf("Status = %d, want 0 (upstream errors map to 500, not the upstream status)", err.Status)
	}
}

func TestUpstreamAuthCarriesStatus(t *testing.T) {
	err := UpstreamAuth(403, "Failed to fetch GitHub user data.")

	if err.Status != 403 {
		t.Errorf("Status = %d, want 403", err.Status)
	}
	if err.Error() != "Failed to fetch GitHub user data." {
		t.Errorf("Error() = %q", err.Error())
	}
}
