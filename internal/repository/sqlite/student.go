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

// compile-time check that *DB implements repository.StudentRepository
var _ repository.StudentRepository = (*DB)(nil)

// GetByID retrieves a student by internal id.
// Returns apperror.ErrNotFound if no such student exists.
func (db *DB) GetByID(ctx context.Context, id int64) (*model.Student, error) {
	var s model.Student

	err := db.conn.QueryRowContext(ctx,
		`SELECT id, name, surname, university, email
		 FROM students WHERE id = ?`,
		id,
	).Scan(
		&s.ID,
		&s.Name,
		&s.Surname,
		&s.University,
		&s.Email,
	)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, apperror.NotFound(fmt.Sprintf("student %d not found", id))
		}
		return nil, fmt.Errorf("sqlite: getting student %d: %w", id, err)
	}

	return &s, nil
}
