package handler

import (
	"fmt"
	"log/slog"
	"net/http"

	"github.com/rs/xid"

	"github.com/sajj-ina/only-code-connect/internal/apperror"
	"github.com/sajj-ina/only-code-connect/internal/service"
)

const stateCookieName = "oauth_state"

// GitHubHandler serves the GitHub linking flow and the import endpoints.
//
//   - HandleLogin    → redirect the browser to GitHub's authorization page
//   - HandleCallback → exchange the code, link the account, hand back the token
//   - HandleStudent  → return the token owner's stored profile
//   - HandleRepos    → import the token owner's repositories as projects
//   - HandleProjects → list the token owner's stored projects
type GitHubHandler struct {
	linker   *service.LinkerService
	importer *service.ImporterService
	logger   *slog.Logger
}

// NewGitHubHandler creates a GitHubHandler with its services injected.
func NewGitHubHandler(linker *service.LinkerService, importer *service.ImporterService, logger *slog.Logger) *GitHubHandler {
	return &GitHubHandler{
		linker:   linker,
		importer: importer,
		logger:   logger,
	}
}

// HandleLogin redirects the user to GitHub's authorization page.
//
// HTTP: GET /api/github/login
//
// A random state value goes into a short-lived HttpOnly cookie; the callback
// compares it against the state GitHub echoes back.
func (h *GitHubHandler) HandleLogin(w http.ResponseWriter, r *http.Request) {
	state := xid.New().String()

	http.SetCookie(w, &http.Cookie{
		Name:     stateCookieName,
		Value:    state,
		Path:     "/",
		MaxAge:   600,
		HttpOnly: true,
		SameSite: http.SameSiteLaxMode,
	})

	http.Redirect(w, r, h.linker.AuthURL(state), http.StatusTemporaryRedirect)
}

// HandleCallback completes the OAuth flow.
//
// HTTP: GET /api/github/callback?code=xxx&state=yyy
//
// The state check is lenient: it only fires when the state cookie is present,
// so callbacks initiated outside a browser session (no cookie jar) still work.
func (h *GitHubHandler) HandleCallback(w http.ResponseWriter, r *http.Request) {
	if stateCookie, err := r.Cookie(stateCookieName); err == nil && stateCookie.Value != "" {
		if r.URL.Query().Get("state") != stateCookie.Value {
			h.logger.Warn("github callback: state mismatch",
				slog.String("got", r.URL.Query().Get("state")),
			)
			writeError(w, apperror.ValidationFailed("Invalid OAuth state."))
			return
		}
		// Single-use: clear the cookie once matched.
		http.SetCookie(w, &http.Cookie{
			Name:   stateCookieName,
			Value:  "",
			Path:   "/",
			MaxAge: -1,
		})
	}

	code := r.URL.Query().Get("code")
	if code == "" {
		writeError(w, apperror.ValidationFailed("Authorization code not provided."))
		return
	}

	result, err := h.linker.HandleCallback(r.Context(), code)
	if err != nil {
		h.logger.Error("github callback failed", slog.String("error", err.Error()))
		writeError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, map[string]string{
		"message":      "GitHub account linked!",
		"access_token": result.AccessToken,
	})
}

// HandleStudent returns the stored profile of the token owner.
//
// HTTP: GET /api/github/student?access_token=xxx
func (h *GitHubHandler) HandleStudent(w http.ResponseWriter, r *http.Request) {
	accessToken := r.URL.Query().Get("access_token")
	if accessToken == "" {
		writeError(w, apperror.ValidationFailed("access_token query parameter is required."))
		return
	}

	student, err := h.linker.Student(r.Context(), accessToken)
	if err != nil {
		h.logger.Error("student lookup failed", slog.String("error", err.Error()))
		writeError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, student)
}

// HandleRepos imports the token owner's repositories.
//
// HTTP: GET /api/github/repos?access_token=xxx
func (h *GitHubHandler) HandleRepos(w http.ResponseWriter, r *http.Request) {
	accessToken := r.URL.Query().Get("access_token")
	if accessToken == "" {
		writeError(w, apperror.ValidationFailed("access_token query parameter is required."))
		return
	}

	count, err := h.importer.ImportRepos(r.Context(), accessToken)
	if err != nil {
		h.logger.Error("repository import failed", slog.String("error", err.Error()))
		writeError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, map[string]string{
		"message": fmt.Sprintf("%d repositories has been saved to database", count),
	})
}

// HandleProjects lists the token owner's stored projects.
//
// HTTP: GET /api/github/projects?access_token=xxx
func (h *GitHubHandler) HandleProjects(w http.ResponseWriter, r *http.Request) {
	accessToken := r.URL.Query().Get("access_token")
	if accessToken == "" {
		writeError(w, apperror.ValidationFailed("access_token query parameter is required."))
		return
	}

	projects, err := h.importer.Projects(r.Context(), accessToken)
	if err != nil {
		h.logger.Error("project listing failed", slog.String("error", err.Error()))
		writeError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, projects)
}
