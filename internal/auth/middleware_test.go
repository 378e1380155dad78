package auth

import (
	"net/http"
	"net/http/httptest"
	"testing"
)

// echoHandler records whether it ran and what username the middleware stored.
func echoHandler(called *bool, username *string) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		*called = true
		*username, _ = UsernameFromContext(r.Context())
	})
}

func TestRequireAuth_ValidToken(t *testing.T) {
	ts := newTestTokenService(t)
	token, err := ts.Generate("johndoe")
	if err != nil {
		t.Fatalf("Generate() error = %v", err)
	}

	var (
		called   bool
		username string
	)
	handler := RequireAuth(ts)(echoHandler(&called, &username))

	req := httptest.NewRequest(http.MethodGet, "/validate-token", nil)
	req.Header.Set("Authorization", "Bearer "+token)
	rr := httptest.NewRecorder()
	handler.ServeHTTP(rr, req)

	if !called {
		t.Fatal("protected handler was not called")
	}
	if username != "johndoe" {
		t.Errorf("username in context = %q, want %q", username, "johndoe")
	}
}

func TestRequireAuth_Rejections(t *testing.T) {
	ts := newTestTokenService(t)

	tests := []struct {
		name   string
		header string
	}{
		{"no header", ""},
		{"wrong scheme", "Basic am9objpzZWNyZXQ="},
		{"empty bearer", "Bearer "},
		{"garbage token", "Bearer not.a.jwt"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var (
				called   bool
				username string
			)
			handler := RequireAuth(ts)(echoHandler(&called, &username))

			req := httptest.NewRequest(http.MethodGet, "/validate-token", nil)
			if tt.header != "" {
				req.Header.Set("Authorization", tt.header)
			}
			rr := httptest.NewRecorder()
			handler.ServeHTTP(rr, req)

			if called {
				t.Error("protected handler ran without valid credentials")
			}
			if rr.Code != http.StatusUnauthorized {
				t.Errorf("status = %d, want 401", rr.Code)
			}
			if got := rr.Header().Get("WWW-Authenticate"); got != "Bearer" {
				t.Errorf("WWW-Authenticate = %q, want %q", got, "Bearer")
			}
		})
	}
}

func TestUsernameFromContext_Anonymous(t *testing.T) {
	req := httptest.NewRequest(http.MethodGet, "/", nil)

	if name, ok := UsernameFromContext(req.Context()); ok || name != "" {
		t.Errorf("UsernameFromContext() = (%q, %v), want empty", name, ok)
	}
}
