package service

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/jomei/notionapi"

	"github.com/sajj-ina/only-code-connect/internal/github"
	"github.com/sajj-ina/only-code-connect/internal/model"
	"github.com/sajj-ina/only-code-connect/internal/notion"
	"github.com/sajj-ina/only-code-connect/internal/repository"
)

const (
	// MaxContentLength caps project content. Longer bodies are cut hard, with
	// the last three characters of the budget spent on the ellipsis marker.
	MaxContentLength = 2000
	ellipsis         = "..."

	noContentPlaceholder = "No description or README provided."
)

// ImporterService pulls remote items (GitHub repositories, Notion pages) and
// reconciles them into the project store.
type ImporterService struct {
	github   *github.Client
	notion   *notion.Client
	accounts repository.AccountRepository
	projects repository.ProjectRepository
	logger   *slog.Logger
}

// NewImporterService creates an ImporterService with all dependencies injected.
func NewImporterService(
	gh *github.Client,
	nc *notion.Client,
	accounts repository.AccountRepository,
	projects repository.ProjectRepository,
	logger *slog.Logger,
) *ImporterService {
	return &ImporterService{
		github:   gh,
		notion:   nc,
		accounts: accounts,
		projects: projects,
		logger:   logger,
	}
}

// ImportRepos lists the credential owner's repositories and upserts each one
// as a project. Returns the number of repositories processed.
//
// Per repository the content is, in order of preference: the README text, the
// short description, a fixed placeholder — then truncated to the content cap.
// A failed README fetch is absence, never an import failure.
func (s *ImporterService) ImportRepos(ctx context.Context, accessToken string) (int, error) {
	studentID, err := s.accounts.StudentIDByToken(ctx, accessToken)
	if err != nil {
		return 0, fmt.Errorf("service/importer: resolving token: %w", err)
	}

	repos, err := s.github.Repos(ctx, accessToken)
	if err != nil {
		return 0, fmt.Errorf("service/importer: listing repositories: %w", err)
	}

	for _, repo := range repos {
		content, ok := s.github.Readme(ctx, accessToken, repo.Owner.Login, repo.Name)
		if !ok || content == "" {
			content = repo.Description
		}
		if content == "" {
			content = noContentPlaceholder
		}

		project := &model.Project{
			StudentID:      studentID,
			Title:          repo.Name,
			Content:        truncateContent(content),
			Skills:         map[string]string{"language": repo.Language},
			Context:        "Extracurricular",
			Type:           "Code",
			SourcePlatform: "GitHub",
		}
		if err := s.projects.Upsert(ctx, project); err != nil {
			return 0, fmt.Errorf("service/importer: saving repository %q: %w", repo.Name, err)
		}
	}

	s.logger.Info("repositories imported",
		slog.Int64("studentID", studentID),
		slog.Int("count", len(repos)),
	)

	return len(repos), nil
}

// Projects returns the stored projects of the credential owner.
func (s *ImporterService) Projects(ctx context.Context, accessToken string) ([]model.Project, error) {
	studentID, err := s.accounts.StudentIDByToken(ctx, accessToken)
	if err != nil {
		return nil, fmt.Errorf("service/importer: resolving token: %w", err)
	}

	projects, err := s.projects.ListByStudent(ctx, studentID)
	if err != nil {
		return nil, fmt.Errorf("service/importer: listing projects for student %d: %w", studentID, err)
	}
	return projects, nil
}

// Pages lists the Notion pages visible to the integration. Read-only.
func (s *ImporterService) Pages(ctx context.Context) ([]notion.Page, error) {
	pages, err := s.notion.SearchPages(ctx)
	if err != nil {
		return nil, fmt.Errorf("service/importer: searching notion pages: %w", err)
	}
	return pages, nil
}

// PageBlocks returns the raw block content of one Notion page. Read-only.
func (s *ImporterService) PageBlocks(ctx context.Context, pageID string) ([]notionapi.Block, error) {
	blocks, err := s.notion.PageBlocks(ctx, pageID)
	if err != nil {
		return nil, fmt.Errorf("service/importer: fetching page %s: %w", pageID, err)
	}
	return blocks, nil
}

// ImportPages imports every visible Notion page as a project of the credential
// owner. Returns the number of pages processed. Re-importing refreshes the
// existing rows through the same natural-key upsert the repositories use.
func (s *ImporterService) ImportPages(ctx context.Context, accessToken string) (int, error) {
	studentID, err := s.accounts.StudentIDByToken(ctx, accessToken)
	if err != nil {
		return 0, fmt.Errorf("service/importer: resolving token: %w", err)
	}

	pages, err := s.notion.SearchPages(ctx)
	if err != nil {
		return 0, fmt.Errorf("service/importer: searching notion pages: %w", err)
	}

	for _, page := range pages {
		project := &model.Project{
			StudentID:      studentID,
			Title:          page.Title,
			Content:        fmt.Sprintf("Imported Notion Page ID: %s", page.ID),
			Skills:         map[string]string{"source": "Notion"},
			Context:        "Notes",
			Type:           "Documentation",
			SourcePlatform: "Notion",
		}
		if err := s.projects.Upsert(ctx, project); err != nil {
			return 0, fmt.Errorf("service/importer: saving page %q: %w", page.Title, err)
		}
	}

	s.logger.Info("notion pages imported",
		slog.Int64("studentID", studentID),
		slog.Int("count", len(pages)),
	)

	return len(pages), nil
}

// truncateContent enforces the content cap: bodies over the limit come back
// exactly MaxContentLength characters long, ending in the ellipsis marker.
// Counted in runes, not bytes — the cap is a character budget.
func truncateContent(content string) string {
	runes := []rune(content)
	if len(runes) <= MaxContentLength {
		return content
	}
	return string(runes[:MaxContentLength-len(ellipsis)]) + ellipsis
}
