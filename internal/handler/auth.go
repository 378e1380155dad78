package handler

import (
	"log/slog"
	"net/http"

	"github.com/sajj-ina/only-code-connect/internal/apperror"
	"github.com/sajj-ina/only-code-connect/internal/auth"
	"github.com/sajj-ina/only-code-connect/internal/service"
)

// AuthHandler serves the application's own password-grant login.
type AuthHandler struct {
	accounts *service.AccountService
	logger   *slog.Logger
}

// NewAuthHandler creates an AuthHandler.
func NewAuthHandler(accounts *service.AccountService, logger *slog.Logger) *AuthHandler {
	return &AuthHandler{
		accounts: accounts,
		logger:   logger,
	}
}

// tokenResponse is the OAuth2-style password grant response.
type tokenResponse struct {
	AccessToken string `json:"access_token"`
	TokenType   string `json:"token_type"`
}

// HandleToken exchanges form credentials for a bearer token.
//
// HTTP: POST /token (application/x-www-form-urlencoded: username, password)
func (h *AuthHandler) HandleToken(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseForm(); err != nil {
		writeError(w, apperror.ValidationFailed("Could not parse form data."))
		return
	}

	username := r.PostFormValue("username")
	password := r.PostFormValue("password")
	if username == "" || password == "" {
		writeError(w, apperror.ValidationFailed("username and password are required."))
		return
	}

	token, err := h.accounts.Login(username, password)
	if err != nil {
		writeError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, tokenResponse{
		AccessToken: token,
		TokenType:   "bearer",
	})
}

// HandleValidate confirms that the bearer token on the request is valid.
//
// HTTP: GET /validate-token
// Auth: required — RequireAuth puts the username in the context.
func (h *AuthHandler) HandleValidate(w http.ResponseWriter, r *http.Request) {
	username, ok := auth.UsernameFromContext(r.Context())
	if !ok {
		// Unreachable behind RequireAuth, kept for direct use.
		writeError(w, apperror.Unauthorized("Could not validate credentials"))
		return
	}

	writeJSON(w, http.StatusOK, map[string]string{
		"message": "you are now authenticated",
		"user":    username,
	})
}
