package handler

import (
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sajj-ina/only-code-connect/internal/apperror"
)

func TestWriteError_StatusMapping(t *testing.T) {
	tests := []struct {
		name       string
		err        error
		wantStatus int
		wantDetail string
	}{
		{
			name:       "validation maps to 400",
			err:        apperror.ValidationFailed("Authorization code not provided."),
			wantStatus: http.StatusBadRequest,
			wantDetail: "Authorization code not provided.",
		},
		{
			name:       "not found maps to 404",
			err:        apperror.NotFound("Student not found for this access token. Please link your account first."),
			wantStatus: http.StatusNotFound,
			wantDetail: "Student not found for this access token. Please link your account first.",
		},
		{
			name:       "unauthorized maps to 401",
			err:        apperror.Unauthorized("Incorrect username or password"),
			wantStatus: http.StatusUnauthorized,
			wantDetail: "Incorrect username or password",
		},
		{
			name:       "upstream auth carries its status through",
			err:        apperror.UpstreamAuth(http.StatusUnauthorized, "Failed to fetch GitHub user data."),
			wantStatus: http.StatusUnauthorized,
			wantDetail: "Failed to fetch GitHub user data.",
		},
		{
			name:       "upstream call maps to 500 with detail intact",
			err:        apperror.Upstream(http.StatusForbidden, "rate limited"),
			wantStatus: http.StatusInternalServerError,
			wantDetail: "upstream returned status 403: rate limited",
		},
		{
			name:       "wrapped domain error still maps",
			err:        fmt.Errorf("service/importer: resolving token: %w", apperror.NotFound("no such token")),
			wantStatus: http.StatusNotFound,
			wantDetail: "no such token",
		},
		{
			name:       "unknown error hides internals",
			err:        errors.New("pq: connection refused"),
			wantStatus: http.StatusInternalServerError,
			wantDetail: "An internal error occurred",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rr := httptest.NewRecorder()
			writeError(rr, tt.err)

			assert.Equal(t, tt.wantStatus, rr.Code)
			assert.Equal(t, "application/json", rr.Header().Get("Content-Type"))
			assert.JSONEq(t, fmt.Sprintf(`{"detail": %q}`, tt.wantDetail), rr.Body.String())
		})
	}
}

func TestWriteError_UnauthorizedSetsChallenge(t *testing.T) {
	rr := httptest.NewRecorder()
	writeError(rr, apperror.Unauthorized("Incorrect username or password"))

	require.Equal(t, http.StatusUnauthorized, rr.Code)
	assert.Equal(t, "Bearer", rr.Header().Get("WWW-Authenticate"))
}

func TestWriteJSON(t *testing.T) {
	rr := httptest.NewRecorder()
	writeJSON(rr, http.StatusCreated, map[string]int{"count": 3})

	assert.Equal(t, http.StatusCreated, rr.Code)
	assert.JSONEq(t, `{"count": 3}`, rr.Body.String())
}
