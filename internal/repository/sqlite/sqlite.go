// Package sqlite implements the repository interfaces on an embedded SQLite
// database (modernc.org/sqlite — pure Go, no C toolchain needed).
//
// Every mutation goes straight to the database before the call returns
// (write-through), so a crash immediately after an operation loses no
// committed state. Use ":memory:" for tests.
package sqlite

import (
	"database/sql"
	"fmt"

	// Registers the "sqlite" driver with database/sql.
	_ "modernc.org/sqlite"
)

// DB wraps the sql.DB pool and implements the repository interfaces.
type DB struct {
	conn *sql.DB
}

// New opens (or creates) the database at dbPath and runs migrations.
func New(dbPath string) (*DB, error) {
	conn, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return nil, fmt.Errorf("sqlite: opening database: %w", err)
	}

	// One connection: SQLite has a single writer anyway, and ":memory:"
	// databases are per-connection, so a pool would see different data.
	conn.SetMaxOpenConns(1)

	if err := conn.Ping(); err != nil {
		conn.Close()
		return nil, fmt.Errorf("sqlite: pinging database: %w", err)
	}

	// WAL keeps reads available while a write is in flight.
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

// Close closes the connection pool. Callers should defer this right after New.
func (db *DB) Close() error {
	return db.conn.Close()
}

// migrate creates all tables. CREATE TABLE IF NOT EXISTS keeps this safe to
// run on every start. An empty table is the "absent key" case — callers get
// empty collections, never an error.
func (db *DB) migrate() error {
	_, err := db.conn.Exec(`
		CREATE TABLE IF NOT EXISTS users (
			id            TEXT PRIMARY KEY,
			username      TEXT NOT NULL,
			display_name  TEXT NOT NULL DEFAULT '',
			bio           TEXT NOT NULL DEFAULT '',
			followers     INTEGER NOT NULL DEFAULT 0,
			following     INTEGER NOT NULL DEFAULT 0,
			location      TEXT NOT NULL DEFAULT '',
			website       TEXT NOT NULL DEFAULT '',
			avatar_url    TEXT NOT NULL DEFAULT '',
			email         TEXT NOT NULL UNIQUE,
			password_hash TEXT NOT NULL,
			created_at    DATETIME NOT NULL,
			updated_at    DATETIME NOT NULL
		);
	`)
	if err != nil {
		return fmt.Errorf("creating users table: %w", err)
	}

	_, err = db.conn.Exec(`
		CREATE TABLE IF NOT EXISTS repositories (
			id          TEXT PRIMARY KEY,
			name        TEXT NOT NULL,
			description TEXT NOT NULL DEFAULT '',
			language    TEXT NOT NULL DEFAULT '',
			stars       INTEGER NOT NULL DEFAULT 0,
			forks       INTEGER NOT NULL DEFAULT 0,
			is_private  INTEGER NOT NULL DEFAULT 0,
			pinned      INTEGER NOT NULL DEFAULT 0,
			owner       TEXT NOT NULL DEFAULT '',
			created_at  DATETIME NOT NULL,
			updated_at  DATETIME NOT NULL
		);
		CREATE INDEX IF NOT EXISTS idx_repositories_created_at ON repositories(created_at);
		CREATE INDEX IF NOT EXISTS idx_repositories_owner ON repositories(owner);
		CREATE INDEX IF NOT EXISTS idx_repositories_pinned ON repositories(pinned);
	`)
	if err != nil {
		return fmt.Errorf("creating repositories table: %w", err)
	}

	_, err = db.conn.Exec(`
		CREATE TABLE IF NOT EXISTS audit_logs (
			id         TEXT PRIMARY KEY,
			type       TEXT NOT NULL,
			message    TEXT NOT NULL,
			email      TEXT NOT NULL DEFAULT '',
			username   TEXT NOT NULL DEFAULT '',
			created_at DATETIME NOT NULL
		);
		CREATE INDEX IF NOT EXISTS idx_audit_logs_created_at ON audit_logs(created_at);
	`)
	if err != nil {
		return fmt.Errorf("creating audit_logs table: %w", err)
	}

	_, err = db.conn.Exec(`
		CREATE TABLE IF NOT EXISTS session_cookies (
			id          TEXT PRIMARY KEY,
			email       TEXT NOT NULL,
			username    TEXT NOT NULL DEFAULT '',
			user_agent  TEXT NOT NULL DEFAULT '',
			status      TEXT NOT NULL,
			avatar_url  TEXT NOT NULL DEFAULT '',
			repo_count  INTEGER NOT NULL DEFAULT 0,
			last_active DATETIME NOT NULL,
			created_at  DATETIME NOT NULL
		);
		CREATE INDEX IF NOT EXISTS idx_session_cookies_email_status ON session_cookies(email, status);
	`)
	if err != nil {
		return fmt.Errorf("creating session_cookies table: %w", err)
	}

	return nil
}
