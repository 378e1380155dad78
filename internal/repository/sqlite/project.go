package sqlite

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/sajj-ina/only-code-connect/internal/model"
	"github.com/sajj-ina/only-code-connect/internal/repository"
)

// compile-time check that *DB implements repository.ProjectRepository
var _ repository.ProjectRepository = (*DB)(nil)

// Upsert inserts a project or refreshes an existing one, atomically.
//
// The UNIQUE(student_id, title) constraint plus ON CONFLICT pushes the
// insert-or-update decision into the store, so two concurrent imports of the
// same item cannot race into duplicate rows. Only content and skills are
// refreshed on conflict — title, context, type and source_platform keep their
// first-import values.
func (db *DB) Upsert(ctx context.Context, project *model.Project) error {
	skills, err := json.Marshal(project.Skills)
	if err != nil {
		return fmt.Errorf("sqlite: encoding skills for %q: %w", project.Title, err)
	}

	// RETURNING hands back the row id on both paths — the fresh id on insert,
	// the existing row's id on conflict. LastInsertId would report a stale id
	// on the update path.
	err = db.conn.QueryRowContext(ctx,
		`INSERT INTO projects
		   (student_id, title, content, skills, context, type, source_platform)
		 VALUES (?, ?, ?, ?, ?, ?, ?)
		 ON CONFLICT(student_id, title) DO UPDATE SET
		   content = excluded.content,
		   skills  = excluded.skills
		 RETURNING id`,
		project.StudentID,
		project.Title,
		project.Content,
		string(skills),
		project.Context,
		project.Type,
		project.SourcePlatform,
	).Scan(&project.ID)
	if err != nil {
		return fmt.Errorf("sqlite: upserting project %q (studentID=%d): %w",
			project.Title, project.StudentID, err)
	}

	return nil
}

// ListByStudent returns all projects owned by the student, oldest first.
func (db *DB) ListByStudent(ctx context.Context, studentID int64) ([]model.Project, error) {
	rows, err := db.conn.QueryContext(ctx,
		`SELECT id, student_id, title, content, skills, context, type, source_platform
		 FROM projects
		 WHERE student_id = ?
		 ORDER BY id`,
		studentID,
	)
	if err != nil {
		return nil, fmt.Errorf("sqlite: listing projects for student %d: %w", studentID, err)
	}
	defer rows.Close()

	projects := make([]model.Project, 0)
	for rows.Next() {
		var (
			p      model.Project
			skills string
		)
		if err := rows.Scan(
			&p.ID, &p.StudentID, &p.Title, &p.Content,
			&skills, &p.Context, &p.Type, &p.SourcePlatform,
		); err != nil {
			return nil, fmt.Errorf("sqlite: scanning project row: %w", err)
		}
		if err := json.Unmarshal([]byte(skills), &p.Skills); err != nil {
			return nil, fmt.Errorf("sqlite: decoding skills for project %d: %w", p.ID, err)
		}
		projects = append(projects, p)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("sqlite: iterating projects: %w", err)
	}

	return projects, nil
}
