// Package github is the GitHub client used by the linker and importer: the
// OAuth authorization-code flow plus the three REST calls the system needs
// (authenticated user, repository list, repository README).
package github

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"strconv"
	"time"

	"golang.org/x/oauth2"
	ghendpoint "golang.org/x/oauth2/github"

	"github.com/sajj-ina/only-code-connect/internal/apperror"
)

const defaultAPIBaseURL = "https://api.github.com"

// Config carries everything the client needs. It is built once at startup from
// the application config — the client itself never touches the environment.
//
// AuthBaseURL and APIBaseURL exist for tests, which point both at an
// httptest server. Leave them empty in production.
type Config struct {
	ClientID     string
	ClientSecret string
	CallbackURL  string
	AuthBaseURL  string
	APIBaseURL   string
}

// Profile is the portion of the GitHub /user response we care about.
// GitHub returns a much larger object — we only unmarshal what we use.
type Profile struct {
	ID    int64  `json:"id"`    // GitHub's numeric user id — stable, never changes
	Login string `json:"login"` // username, e.g. "octocat"
	Name  string `json:"name"`  // full display name; empty if unset
	Email string `json:"email"` // primary email; empty if hidden
}

// Repo is one entry of the /user/repos response.
type Repo struct {
	Name        string `json:"name"`
	Description string `json:"description"`
	Language    string `json:"language"`
	Owner       struct {
		Login string `json:"login"`
	} `json:"owner"`
}

// Client wraps golang.org/x/oauth2 for the authorization-code flow and carries
// a timeout-bounded HTTP client for the REST calls. A hung GitHub call fails
// after the timeout instead of pinning a request handler forever.
type Client struct {
	oauth  *oauth2.Config
	apiURL string
	http   *http.Client
	logger *slog.Logger
}

// New creates a GitHub client from explicit configuration.
func New(cfg Config, logger *slog.Logger) *Client {
	endpoint := ghendpoint.Endpoint
	if cfg.AuthBaseURL != "" {
		endpoint = oauth2.Endpoint{
			AuthURL:  cfg.AuthBaseURL + "/login/oauth/authorize",
			TokenURL: cfg.AuthBaseURL + "/login/oauth/access_token",
		}
	}
	apiURL := cfg.APIBaseURL
	if apiURL == "" {
		apiURL = defaultAPIBaseURL
	}

	return &Client{
		oauth: &oauth2.Config{
			ClientID:     cfg.ClientID,
			ClientSecret: cfg.ClientSecret,
			RedirectURL:  cfg.CallbackURL,
			Scopes:       []string{"repo", "user"},
			Endpoint:     endpoint,
		},
		apiURL: apiURL,
		http:   &http.Client{Timeout: 15 * time.Second},
		logger: logger,
	}
}

// AuthURL returns the authorization URL the browser is redirected to.
// The state round-trips through GitHub and is verified on callback.
func (c *Client) AuthURL(state string) string {
	return c.oauth.AuthCodeURL(state, oauth2.AccessTypeOnline)
}

// Exchange trades an authorization code for an access token.
//
// GitHub reports bad codes with an OAuth error payload; x/oauth2 surfaces that
// as a *RetrieveError, whose description we pass on to the caller. A response
// with no token and no error payload gets a generic message.
func (c *Client) Exchange(ctx context.Context, code string) (string, error) {
	tok, err := c.oauth.Exchange(c.withHTTPClient(ctx), code)
	if err != nil {
		var rerr *oauth2.RetrieveError
		if errors.As(err, &rerr) && rerr.ErrorDescription != "" {
			return "", apperror.UpstreamAuth(http.StatusBadRequest, rerr.ErrorDescription)
		}
		return "", apperror.UpstreamAuth(http.StatusBadRequest, "GitHub token exchange failed.")
	}
	if tok.AccessToken == "" {
		return "", apperror.UpstreamAuth(http.StatusBadRequest, "GitHub token exchange failed.")
	}
	return tok.AccessToken, nil
}

// User fetches the authenticated user's profile with the given token.
func (c *Client) User(ctx context.Context, accessToken string) (*Profile, error) {
	resp, err := c.api(ctx, accessToken).Get(c.apiURL + "/user")
	if err != nil {
		return nil, fmt.Errorf("github: calling /user: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, apperror.UpstreamAuth(resp.StatusCode, "Failed to fetch GitHub user data.")
	}

	var profile Profile
	if err := json.NewDecoder(resp.Body).Decode(&profile); err != nil {
		return nil, fmt.Errorf("github: decoding /user response: %w", err)
	}
	if profile.ID == 0 {
		return nil, apperror.ValidationFailed("Could not retrieve unique GitHub User ID.")
	}

	return &profile, nil
}

// Repos lists the authenticated user's repositories.
func (c *Client) Repos(ctx context.Context, accessToken string) ([]Repo, error) {
	resp, err := c.api(ctx, accessToken).Get(c.apiURL + "/user/repos")
	if err != nil {
		return nil, fmt.Errorf("github: calling /user/repos: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(resp.Body)
		return nil, apperror.Upstreamf("Failed to fetch repositories (status %d): %s",
			resp.StatusCode, string(body))
	}

	var repos []Repo
	if err := json.NewDecoder(resp.Body).Decode(&repos); err != nil {
		return nil, fmt.Errorf("github: decoding /user/repos response: %w", err)
	}
	return repos, nil
}

// Readme fetches the repository README as raw text.
//
// Absence is not an error: a 404 (no README) and any other non-200 status both
// report absent, so a missing or broken README can never fail an import. The
// bool result makes absence explicit at every call site.
func (c *Client) Readme(ctx context.Context, accessToken, owner, repo string) (string, bool) {
	url := fmt.Sprintf("%s/repos/%s/%s/readme", c.apiURL, owner, repo)
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		c.logger.Warn("github: building readme request",
			slog.String("repo", owner+"/"+repo),
			slog.String("error", err.Error()),
		)
		return "", false
	}
	// The raw media type makes GitHub return the file content directly instead
	// of a JSON envelope with base64 content.
	req.Header.Set("Accept", "application/vnd.github.v3.raw")

	resp, err := c.api(ctx, accessToken).Do(req)
	if err != nil {
		c.logger.Warn("github: fetching readme",
			slog.String("repo", owner+"/"+repo),
			slog.String("error", err.Error()),
		)
		return "", false
	}
	defer resp.Body.Close()

	switch resp.StatusCode {
	case http.StatusOK:
		body, err := io.ReadAll(resp.Body)
		if err != nil {
			c.logger.Warn("github: reading readme body",
				slog.String("repo", owner+"/"+repo),
				slog.String("error", err.Error()),
			)
			return "", false
		}
		return string(body), true
	case http.StatusNotFound:
		c.logger.Debug("github: no readme, falling back to description",
			slog.String("repo", owner+"/"+repo),
		)
		return "", false
	default:
		c.logger.Warn("github: unexpected readme status",
			slog.String("repo", owner+"/"+repo),
			slog.Int("status", resp.StatusCode),
		)
		return "", false
	}
}

// api returns an HTTP client that attaches the bearer token to every request.
func (c *Client) api(ctx context.Context, accessToken string) *http.Client {
	src := oauth2.StaticTokenSource(&oauth2.Token{AccessToken: accessToken})
	return oauth2.NewClient(c.withHTTPClient(ctx), src)
}

// withHTTPClient tells x/oauth2 to run its requests through our
// timeout-bounded client.
func (c *Client) withHTTPClient(ctx context.Context) context.Context {
	return context.WithValue(ctx, oauth2.HTTPClient, c.http)
}

// FormatUserID renders GitHub's numeric user id in the string form the token
// store uses as the platform user id.
func FormatUserID(id int64) string {
	return strconv.FormatInt(id, 10)
}
