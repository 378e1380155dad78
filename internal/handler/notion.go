package handler

import (
	"fmt"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/sajj-ina/only-code-connect/internal/apperror"
	"github.com/sajj-ina/only-code-connect/internal/service"
)

// NotionHandler serves the Notion browsing and import endpoints.
type NotionHandler struct {
	importer *service.ImporterService
	logger   *slog.Logger
}

// NewNotionHandler creates a NotionHandler.
func NewNotionHandler(importer *service.ImporterService, logger *slog.Logger) *NotionHandler {
	return &NotionHandler{
		importer: importer,
		logger:   logger,
	}
}

// HandlePages lists the pages visible to the Notion integration.
//
// HTTP: GET /api/notion/pages
func (h *NotionHandler) HandlePages(w http.ResponseWriter, r *http.Request) {
	pages, err := h.importer.Pages(r.Context())
	if err != nil {
		h.logger.Error("notion page listing failed", slog.String("error", err.Error()))
		writeError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, pages)
}

// HandlePage returns the block content of one page.
//
// HTTP: GET /api/notion/page/{id}
func (h *NotionHandler) HandlePage(w http.ResponseWriter, r *http.Request) {
	pageID := chi.URLParam(r, "id")
	if pageID == "" {
		writeError(w, apperror.ValidationFailed("Page ID is required."))
		return
	}

	blocks, err := h.importer.PageBlocks(r.Context(), pageID)
	if err != nil {
		h.logger.Error("notion page fetch failed",
			slog.String("pageID", pageID),
			slog.String("error", err.Error()),
		)
		writeError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, blocks)
}

// HandleLoadPages imports every visible page as a project of the token owner.
//
// HTTP: GET /api/notion/load_pages?access_token=xxx
func (h *NotionHandler) HandleLoadPages(w http.ResponseWriter, r *http.Request) {
	accessToken := r.URL.Query().Get("access_token")
	if accessToken == "" {
		writeError(w, apperror.ValidationFailed("access_token query parameter is required."))
		return
	}

	count, err := h.importer.ImportPages(r.Context(), accessToken)
	if err != nil {
		h.logger.Error("notion import failed", slog.String("error", err.Error()))
		writeError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, map[string]string{
		"message": fmt.Sprintf("Imported %d Notion pages.", count),
	})
}
