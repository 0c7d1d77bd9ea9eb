// Package sqlite implements the repository interfaces on an embedded
// SQLite database via the pure-Go modernc.org/sqlite driver.
package sqlite

import (
	"database/sql"
	"fmt"
	"strings"

	// Registers the "sqlite" driver with database/sql.
	_ "modernc.org/sqlite"

	"github.com/sakif/portfolio-backend/internal/apperror"
)

// DB wraps a sql.DB connection pool and provides the repository methods.
// One DB value serves all repositories; the server owns its lifecycle.
type DB struct {
	conn *sql.DB
}

// New opens (or creates) the database at dbPath, configures it, and runs
// migrations. Use ":memory:" for tests.
func New(dbPath string) (*DB, error) {
	conn, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return nil, fmt.Errorf("sqlite: opening database: %w", err)
	}

	if err := conn.Ping(); err != nil {
		conn.Close()
		return nil, fmt.Errorf("sqlite: pinging database: %w", err)
	}

	// WAL lets reads proceed during writes; foreign keys are off by
	// default in SQLite and the schema relies on them for cascades.
	if _, err := conn.Exec("PRAGMA journal_mode=WAL"); err != nil {
		conn.Close()
		return nil, fmt.Errorf("sqlite: setting WAL mode: %w", err)
	}
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

// Close closes the connection pool.
func (db *DB) Close() error {
	return db.conn.Close()
}

func (db *DB) migrate() error {
	_, err := db.conn.Exec(`
		CREATE TABLE IF NOT EXISTS users (
			id            TEXT PRIMARY KEY,
			username      TEXT NOT NULL UNIQUE,
			email         TEXT UNIQUE,
			password_hash TEXT NOT NULL,
			is_admin      INTEGER NOT NULL DEFAULT 0,
			github_id     INTEGER,
			created_at    DATETIME NOT NULL,
			updated_at    DATETIME NOT NULL,
			last_login    DATETIME
		);
		CREATE UNIQUE INDEX IF NOT EXISTS idx_users_github_id
			ON users(github_id) WHERE github_id IS NOT NULL;
	`)
	if err != nil {
		return fmt.Errorf("creating users table: %w", err)
	}

	_, err = db.conn.Exec(`
		CREATE TABLE IF NOT EXISTS files (
			id         TEXT PRIMARY KEY,
			name       TEXT NOT NULL,
			file_type  TEXT NOT NULL,
			extension  TEXT NOT NULL,
			created_at DATETIME NOT NULL
		);
	`)
	if err != nil {
		return fmt.Errorf("creating files table: %w", err)
	}

	_, err = db.conn.Exec(`
		CREATE TABLE IF NOT EXISTS projects (
			id          TEXT PRIMARY KEY,
			title       TEXT NOT NULL,
			description TEXT NOT NULL,
			tags        TEXT NOT NULL,
			link        TEXT NOT NULL DEFAULT '',
			is_featured INTEGER NOT NULL DEFAULT 0,
			image_id    TEXT REFERENCES files(id) ON DELETE SET NULL,
			owner_id    TEXT NOT NULL REFERENCES users(id) ON DELETE CASCADE,
			created_at  DATETIME NOT NULL,
			updated_at  DATETIME NOT NULL
		);
		CREATE INDEX IF NOT EXISTS idx_projects_owner_id ON projects(owner_id);
	`)
	if err != nil {
		return fmt.Errorf("creating projects table: %w", err)
	}

	_, err = db.conn.Exec(`
		CREATE TABLE IF NOT EXISTS page_data (
			page     TEXT PRIMARY KEY,
			data     TEXT NOT NULL,
			owner_id TEXT NOT NULL REFERENCES users(id) ON DELETE CASCADE
		);
	`)
	if err != nil {
		return fmt.Errorf("creating page_data table: %w", err)
	}

	return nil
}

// constraintError translates a UNIQUE-constraint violation into the
// duplicate-field conflict the service layer expects, or returns nil when
// err is something else.
func constraintError(err error) error {
	if err == nil {
		return nil
	}
	msg := err.Error()
	if !strings.Contains(msg, "UNIQUE constraint failed") {
		return nil
	}
	switch {
	case strings.Contains(msg, "users.username"):
		return apperror.Duplicate("username")
	case strings.Contains(msg, "users.email"):
		return apperror.Duplicate("email")
	case strings.Contains(msg, "users.github_id"), strings.Contains(msg, "idx_users_github_id"):
		return apperror.Duplicate("github account")
	case strings.Contains(msg, "page_data.page"):
		return apperror.Duplicate("page")
	}
	return apperror.Duplicate("record")
}
