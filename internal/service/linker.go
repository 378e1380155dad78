// Package service contains the business logic layer: the OAuth account linker,
// the content importer, and the password-grant account service. Handlers parse
// HTTP and delegate here; repositories and upstream clients do the I/O.
package service

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	"github.com/sajj-ina/only-code-connect/internal/github"
	"github.com/sajj-ina/only-code-connect/internal/model"
	"github.com/sajj-ina/only-code-connect/internal/repository"
)

// githubUniversity is the affiliation placeholder for students created from a
// GitHub login — the platform has no such field.
const githubUniversity = "Not Provided (GitHub)"

// LinkerService drives the GitHub authorization-code flow and reconciles the
// resulting identity against the store.
type LinkerService struct {
	github   *github.Client
	accounts repository.AccountRepository
	students repository.StudentRepository
	logger   *slog.Logger
}

// NewLinkerService creates a LinkerService with all dependencies injected.
func NewLinkerService(
	gh *github.Client,
	accounts repository.AccountRepository,
	students repository.StudentRepository,
	logger *slog.Logger,
) *LinkerService {
	return &LinkerService{
		github:   gh,
		accounts: accounts,
		students: students,
		logger:   logger,
	}
}

// LinkResult is what a completed callback hands back to the HTTP layer.
//
// AccessToken is the raw upstream token: it is both the stored credential and
// the caller's session credential for the import endpoints. No separate
// session token is issued for this flow.
type LinkResult struct {
	Student     *model.Student
	AccessToken string
}

// AuthURL returns the GitHub authorization URL for the login redirect.
func (s *LinkerService) AuthURL(state string) string {
	return s.github.AuthURL(state)
}

// HandleCallback completes the OAuth flow for an authorization code:
//
//  1. exchange the code for an access token
//  2. fetch the user's profile with that token
//  3. derive name/surname/email from the profile
//  4. reconcile student + platform account in one transaction
//
// No database write happens before both upstream calls have succeeded.
func (s *LinkerService) HandleCallback(ctx context.Context, code string) (*LinkResult, error) {
	accessToken, err := s.github.Exchange(ctx, code)
	if err != nil {
		return nil, fmt.Errorf("service/linker: exchanging code: %w", err)
	}

	profile, err := s.github.User(ctx, accessToken)
	if err != nil {
		return nil, fmt.Errorf("service/linker: fetching profile: %w", err)
	}

	student := studentFromProfile(profile)
	account := &model.PlatformAccount{
		PlatformName:   "GitHub",
		AccessToken:    accessToken,
		PlatformUserID: github.FormatUserID(profile.ID),
	}

	if err := s.accounts.Link(ctx, student, account); err != nil {
		return nil, fmt.Errorf("service/linker: linking account (platformUserID=%s): %w",
			account.PlatformUserID, err)
	}

	s.logger.Info("github account linked",
		slog.Int64("studentID", student.ID),
		slog.String("platformUserID", account.PlatformUserID),
		slog.String("login", profile.Login),
	)

	return &LinkResult{
		Student:     student,
		AccessToken: accessToken,
	}, nil
}

// Student returns the stored profile of the credential owner.
func (s *LinkerService) Student(ctx context.Context, accessToken string) (*model.Student, error) {
	studentID, err := s.accounts.StudentIDByToken(ctx, accessToken)
	if err != nil {
		return nil, fmt.Errorf("service/linker: resolving token: %w", err)
	}

	student, err := s.students.GetByID(ctx, studentID)
	if err != nil {
		return nil, fmt.Errorf("service/linker: loading student %d: %w", studentID, err)
	}
	return student, nil
}

// studentFromProfile derives the student profile fields from a GitHub profile.
//
// Display name preference: the full name, falling back to the login handle.
// The first whitespace token becomes the name; the last becomes the surname
// when there is more than one token. A hidden email is replaced with a
// deterministic placeholder on the platform's domain.
func studentFromProfile(profile *github.Profile) *model.Student {
	display := profile.Name
	if display == "" {
		display = profile.Login
	}

	parts := strings.Fields(display)
	name := profile.Login
	if len(parts) > 0 {
		name = parts[0]
	}
	surname := ""
	if len(parts) > 1 {
		surname = parts[len(parts)-1]
	}

	email := profile.Email
	if email == "" {
		email = fmt.Sprintf("user_%d@github.com", profile.ID)
	}

	return &model.Student{
		Name:       name,
		Surname:    surname,
		University: githubUniversity,
		Email:      email,
	}
}
