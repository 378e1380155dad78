// Package sqlite implements the repository interfaces using SQLite as the
// storage backend.
//
// modernc.org/sqlite is a pure-Go translation of SQLite — no CGo, no external
// database server. The blank import below registers it with database/sql under
// the driver name "sqlite".
package sqlite

import (
	"database/sql"
	"fmt"

	_ "modernc.org/sqlite"
)

// DB wraps a sql.DB connection pool and provides the repository methods.
// New creates it, Close releases it; the server owns the lifecycle.
type DB struct {
	conn *sql.DB
}

// New opens the SQLite database at dbPath (":memory:" for tests) and runs the
// schema migration before returning. Migration is explicit and idempotent —
// it happens here, once, before the server starts taking traffic.
func New(dbPath string) (*DB, error) {
	conn, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return nil, fmt.Errorf("sqlite: opening database: %w", err)
	}

	// Force an immediate connection so a bad path surfaces now, not on the
	// first query.
	if err := conn.Ping(); err != nil {
		conn.Close()
		return nil, fmt.Errorf("sqlite: pinging database: %w", err)
	}

	// WAL allows concurrent reads while a write is in progress — several
	// import requests can hit the store at once.
	if _, err := conn.Exec("PRAGMA journal_mode=WAL"); err != nil {
		conn.Close()
		return nil, fmt.Errorf("sqlite: setting WAL mode: %w", err)
	}

	// Referential integrity for platform_accounts.student_id and
	// projects.student_id. Off by default in SQLite.
	if _, err := conn.Exec("PRAGMA foreign_keys=ON"); err != nil {
		conn.Close()
		return nil, fmt.Errorf("sqlite: enabling foreign keys: %w", err)
	}

	db := &DB{conn: conn}

	if err := db.migrate(); err != nil {
		conn.Close()
		return nil, fmt.Errorf("sqlite: running migrations: %w", err)
	}

	return db, nil
}

// Close closes the database connection pool.
func (db *DB) Close() error {
	return db.conn.Close()
}

// migrate creates the schema if it is absent. Safe to run on every startup.
//
// Two uniqueness rules are enforced here rather than in application code:
//   - platform_accounts.platform_user_id — one row per external identity
//   - projects (student_id, title)       — the import upsert's natural key
func (db *DB) migrate() error {
	_, err := db.conn.Exec(`
		CREATE TABLE IF NOT EXISTS students (
			id         INTEGER PRIMARY KEY AUTOINCREMENT,
			name       TEXT NOT NULL DEFAULT '',
			surname    TEXT NOT NULL DEFAULT '',
			university TEXT NOT NULL DEFAULT '',
			email      TEXT NOT NULL UNIQUE
		);
	`)
	if err != nil {
		return fmt.Errorf("creating students table: %w", err)
	}

	_, err = db.conn.Exec(`
		CREATE TABLE IF NOT EXISTS platform_accounts (
			id               INTEGER PRIMARY KEY AUTOINCREMENT,
			student_id       INTEGER NOT NULL REFERENCES students(id),
			platform_name    TEXT NOT NULL,
			access_token     TEXT NOT NULL,
			refresh_token    TEXT,
			platform_user_id TEXT NOT NULL UNIQUE
		);
		CREATE INDEX IF NOT EXISTS idx_platform_accounts_access_token
			ON platform_accounts(access_token);
	`)
	if err != nil {
		return fmt.Errorf("creating platform_accounts table: %w", err)
	}

	_, err = db.conn.Exec(`
		CREATE TABLE IF NOT EXISTS projects (
			id              INTEGER PRIMARY KEY AUTOINCREMENT,
			student_id      INTEGER NOT NULL REFERENCES students(id),
			title           TEXT NOT NULL,
			content         TEXT NOT NULL DEFAULT '',
			skills          TEXT NOT NULL DEFAULT '{}',
			context         TEXT NOT NULL DEFAULT '',
			type            TEXT NOT NULL DEFAULT '',
			source_platform TEXT NOT NULL DEFAULT '',
			UNIQUE(student_id, title)
		);
	`)
	if err != nil {
		return fmt.Errorf("creating projects table: %w", err)
	}

	return nil
}
