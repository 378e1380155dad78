package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/sajj-ina/only-code-connect/internal/apperror"
	"github.com/sajj-ina/only-code-connect/internal/model"
	"github.com/sajj-ina/only-code-connect/internal/repository"
)

// compile-time check that *DB implements repository.AccountRepository
var _ repository.AccountRepository = (*DB)(nil)

// Link reconciles an OAuth login inside one transaction.
//
// The lookup key is the platform's own user id — stable across logins even when
// the user renames themselves or rotates tokens. First login inserts a student
// and its platform account; every later login refreshes the student profile.
// The token update at the end runs on both paths, keyed by platform user id,
// so repeating it is harmless.
func (db *DB) Link(ctx context.Context, student *model.Student, account *model.PlatformAccount) error {
	tx, err := db.conn.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("sqlite: beginning link transaction: %w", err)
	}
	defer tx.Rollback()

	var studentID int64
	err = tx.QueryRowContext(ctx,
		`SELECT student_id FROM platform_accounts WHERE platform_user_id = ?`,
		account.PlatformUserID,
	).Scan(&studentID)

	switch {
	case errors.Is(err, sql.ErrNoRows):
		// New platform identity: create the student first, then bind the
		// account to the generated id.
		res, err := tx.ExecContext(ctx,
			`INSERT INTO students (name, surname, university, email)
			 VALUES (?, ?, ?, ?)`,
			student.Name,
			student.Surname,
			student.University,
			student.Email,
		)
		if err != nil {
			return fmt.Errorf("sqlite: inserting student (platformUserID=%s): %w",
				account.PlatformUserID, err)
		}
		studentID, err = res.LastInsertId()
		if err != nil {
			return fmt.Errorf("sqlite: reading new student id: %w", err)
		}

		_, err = tx.ExecContext(ctx,
			`INSERT INTO platform_accounts
			   (student_id, platform_name, access_token, refresh_token, platform_user_id)
			 VALUES (?, ?, ?, ?, ?)`,
			studentID,
			account.PlatformName,
			account.AccessToken,
			nullableString(account.RefreshToken),
			account.PlatformUserID,
		)
		if err != nil {
			return fmt.Errorf("sqlite: inserting platform account (platformUserID=%s): %w",
				account.PlatformUserID, err)
		}

	case err != nil:
		return fmt.Errorf("sqlite: looking up platform account %s: %w",
			account.PlatformUserID, err)

	default:
		// Known platform identity: the latest upstream profile overwrites the
		// stored one.
		_, err = tx.ExecContext(ctx,
			`UPDATE students SET name = ?, surname = ?, email = ? WHERE id = ?`,
			student.Name,
			student.Surname,
			student.Email,
			studentID,
		)
		if err != nil {
			return fmt.Errorf("sqlite: updating student %d: %w", studentID, err)
		}
	}

	// Always store the freshest access token.
	_, err = tx.ExecContext(ctx,
		`UPDATE platform_accounts SET access_token = ? WHERE platform_user_id = ?`,
		account.AccessToken,
		account.PlatformUserID,
	)
	if err != nil {
		return fmt.Errorf("sqlite: updating access token (platformUserID=%s): %w",
			account.PlatformUserID, err)
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("sqlite: committing link transaction: %w", err)
	}

	student.ID = studentID
	account.StudentID = studentID
	return nil
}

// StudentIDByToken resolves an access token to the owning student id.
func (db *DB) StudentIDByToken(ctx context.Context, accessToken string) (int64, error) {
	var studentID int64
	err := db.conn.QueryRowContext(ctx,
		`SELECT student_id FROM platform_accounts WHERE access_token = ?`,
		accessToken,
	).Scan(&studentID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return 0, apperror.NotFound(
				"Student not found for this access token. Please link your account first.")
		}
		return 0, fmt.Errorf("sqlite: looking up student by token: %w", err)
	}
	return studentID, nil
}

// nullableString maps "" to NULL for optional columns like refresh_token.
func nullableString(s string) sql.NullString {
	return sql.NullString{String: s, Valid: s != ""}
}
