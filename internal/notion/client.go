// Package notion wraps the Notion SDK for the two things the importer needs:
// searching the workspace for pages and reading a page's block children.
//
// The workspace is reached with a single integration token from configuration —
// Notion's internal-integration model, matching how the import endpoints treat
// Notion as a content source rather than an identity provider.
package notion

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"

	"github.com/jomei/notionapi"

	"github.com/sajj-ina/only-code-connect/internal/apperror"
)

// Config carries the integration credential and, for tests, a replacement
// HTTP client. The SDK pins its base URL, so tests redirect requests with a
// rewriting transport instead of a base-URL override. Leave HTTPClient nil in
// production.
type Config struct {
	APIKey     string
	HTTPClient *http.Client
}

// Page is the slim view of a Notion page the handlers expose: the page id and
// a best-effort title.
type Page struct {
	ID    string `json:"id"`
	Title string `json:"title"`
}

// Client wraps a notionapi.Client.
type Client struct {
	api    *notionapi.Client
	logger *slog.Logger
}

// New creates a Notion client from explicit configuration.
func New(cfg Config, logger *slog.Logger) *Client {
	var opts []notionapi.ClientOption
	if cfg.HTTPClient != nil {
		opts = append(opts, notionapi.WithHTTPClient(cfg.HTTPClient))
	}
	return &Client{
		api:    notionapi.NewClient(notionapi.Token(cfg.APIKey), opts...),
		logger: logger,
	}
}

// SearchPages returns every page the integration can see, teamspace pages
// included. Pages without a readable title come back as "Untitled Page".
func (c *Client) SearchPages(ctx context.Context) ([]Page, error) {
	resp, err := c.api.Search.Do(ctx, &notionapi.SearchRequest{
		Filter: notionapi.SearchFilter{
			Value:    "page",
			Property: "object",
		},
	})
	if err != nil {
		return nil, c.wrapErr("searching pages", err)
	}

	pages := make([]Page, 0, len(resp.Results))
	for _, result := range resp.Results {
		page, ok := result.(*notionapi.Page)
		if !ok {
			continue
		}
		pages = append(pages, Page{
			ID:    string(page.ID),
			Title: pageTitle(page),
		})
	}
	return pages, nil
}

// PageBlocks returns the raw block children of one page. The handler serves
// them as-is; no interpretation happens on this side.
func (c *Client) PageBlocks(ctx context.Context, pageID string) ([]notionapi.Block, error) {
	resp, err := c.api.Block.GetChildren(ctx, notionapi.BlockID(pageID), nil)
	if err != nil {
		return nil, c.wrapErr(fmt.Sprintf("fetching blocks for page %s", pageID), err)
	}
	return resp.Results, nil
}

// wrapErr turns SDK errors into the upstream error category, keeping Notion's
// own status and message when the SDK provides them.
func (c *Client) wrapErr(op string, err error) error {
	c.logger.Error("notion: "+op, slog.String("error", err.Error()))

	var apiErr *notionapi.Error
	if errors.As(err, &apiErr) {
		return apperror.Upstream(apiErr.Status, apiErr.Message)
	}
	return fmt.Errorf("notion: %s: %w", op, err)
}

// pageTitle digs the plain-text title out of a page's property map.
//
// Notion models a page title as a title-type property holding a list of rich
// text fragments; the property key is usually "title" but can be renamed, so
// we match on the property type instead of the key.
func pageTitle(page *notionapi.Page) string {
	for _, prop := range page.Properties {
		title, ok := prop.(*notionapi.TitleProperty)
		if !ok || len(title.Title) == 0 {
			continue
		}
		if text := title.Title[0].PlainText; text != "" {
			return text
		}
	}
	return "Untitled Page"
}
