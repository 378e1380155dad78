// Package repository defines the storage interfaces the service layer programs
// against. The sqlite subpackage is the concrete implementation; tests use
// in-memory mocks.
package repository

import (
	"context"

	"github.com/sajj-ina/only-code-connect/internal/model"
)

// AccountRepository is the token store: it owns the platform-account rows and
// the student rows they point at.
type AccountRepository interface {
	// Link reconciles an OAuth login against the store, keyed by
	// account.PlatformUserID, in a single transaction:
	//
	//   - unknown platform user: insert the student, then insert the account
	//   - known platform user: refresh the student's name/surname/email
	//
	// In both cases the account's access token is then updated unconditionally,
	// keyed by platform user id. On return student.ID and account.StudentID are
	// populated with the (new or existing) student identity.
	Link(ctx context.Context, student *model.Student, account *model.PlatformAccount) error

	// StudentIDByToken resolves an access token to the owning student.
	// Returns apperror.ErrNotFound if no account holds that token.
	StudentIDByToken(ctx context.Context, accessToken string) (int64, error)
}

// StudentRepository reads student profiles.
type StudentRepository interface {
	GetByID(ctx context.Context, id int64) (*model.Student, error)
}

// ProjectRepository owns imported content items.
type ProjectRepository interface {
	// Upsert inserts the project or, when a row with the same
	// (student_id, title) exists, updates only its content and skills.
	// Title, context, type and source platform are immutable after first
	// import. The write is atomic — no check-then-act window.
	Upsert(ctx context.Context, project *model.Project) error

	// ListByStudent returns all projects owned by the student, oldest first.
	ListByStudent(ctx context.Context, studentID int64) ([]model.Project, error)
}
