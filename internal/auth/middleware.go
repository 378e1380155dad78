package auth

import (
	"context"
	"errors"
	"net/http"
	"strings"
)

// contextKey is an unexported type for context keys in this package, so no
// other package can read or shadow the values we store.
type contextKey string

const usernameKey contextKey = "username"

// RequireAuth enforces bearer-token authentication on protected routes.
//
// The JWT travels in the Authorization header ("Bearer <token>") — this API is
// consumed programmatically, not by a cookie-carrying browser session. On a
// valid token the username lands in the request context; otherwise the chain
// stops with a 401 and a WWW-Authenticate challenge.
func RequireAuth(tokens *TokenService) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			username, err := extractUsername(r, tokens)
			if err != nil {
				w.Header().Set("WWW-Authenticate", "Bearer")
				w.Header().Set("Content-Type", "application/json")
				w.WriteHeader(http.StatusUnauthorized)
				w.Write([]byte(`{"detail":"Could not validate credentials"}`))
				return
			}

			ctx := context.WithValue(r.Context(), usernameKey, username)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

// UsernameFromContext retrieves the authenticated username set by RequireAuth.
// Returns ("", false) on an anonymous request.
func UsernameFromContext(ctx context.Context) (string, bool) {
	name, ok := ctx.Value(usernameKey).(string)
	return name, ok && name != ""
}

var errNoBearerToken = errors.New("auth: no bearer token in Authorization header")

// extractUsername reads and validates the bearer token from the request.
func extractUsername(r *http.Request, tokens *TokenService) (string, error) {
	header := r.Header.Get("Authorization")
	tokenStr, ok := strings.CutPrefix(header, "Bearer ")
	if !ok || tokenStr == "" {
		return "", errNoBearerToken
	}

	return tokens.Validate(tokenStr)
}
