// Package db is the persistence layer: a single todos table with a
// self-referencing parent_id, plus server-side sessions.
package db

import (
	"errors"
	"fmt"

	_ "github.com/jackc/pgx/v5/stdlib"
	"github.com/jmoiron/sqlx"
	_ "modernc.org/sqlite"
)

// Sentinel errors surfaced by store operations. Handlers map these to
// HTTP statuses with errors.Is.
var (
	ErrNotFound     = errors.New("not found")
	ErrNameRequired = errors.New("name is required")
	ErrBadDate      = errors.New("date must be YYYY-MM-DD")
)

// Store wraps the database handle. Queries are written with ? placeholders
// and rebound per driver, so the same statements run on sqlite and postgres.
type Store struct {
	db     *sqlx.DB
	driver string
}

// Open connects to the database and applies the schema. driver is "sqlite"
// or "postgres"; dsn is a file path for sqlite or a connection URL for
// postgres.
func Open(driver, dsn string) (*Store, error) {
	driverName := driver
	if driver == "postgres" {
		driverName = "pgx"
	} else if driver == "sqlite" {
		dsn = dsn + "?_pragma=journal_mode(wal)&_pragma=foreign_keys(on)"
	}

	db, err := sqlx.Open(driverName, dsn)
	if err != nil {
		return nil, fmt.Errorf("open db: %w", err)
	}

	s := &Store{db: db, driver: driver}
	if err := s.migrate(); err != nil {
		db.Close()
		return nil, fmt.Errorf("migrate: %w", err)
	}
	return s, nil
}

func (s *Store) Close() error {
	return s.db.Close()
}

var migrations = map[string][]string{
	"sqlite": {
		`CREATE TABLE IF NOT EXISTS todos (
			id INTEGER PRIMARY KEY AUTOINCREMENT,
			name TEXT NOT NULL,
			done BOOLEAN NOT NULL DEFAULT 0,
			description TEXT,
			date TEXT,
			parent_id INTEGER REFERENCES todos(id) ON DELETE CASCADE
		)`,
		`CREATE TABLE IF NOT EXISTS sessions (
			id INTEGER PRIMARY KEY AUTOINCREMENT,
			token TEXT NOT NULL UNIQUE,
			created_at DATETIME DEFAULT CURRENT_TIMESTAMP,
			expires_at DATETIME NOT NULL
		)`,
	},
	"postgres": {
		`CREATE TABLE IF NOT EXISTS todos (
			id BIGSERIAL PRIMARY KEY,
			name TEXT NOT NULL,
			done BOOLEAN NOT NULL DEFAULT FALSE,
			description TEXT,
			date TEXT,
			parent_id BIGINT REFERENCES todos(id) ON DELETE CASCADE
		)`,
		`CREATE TABLE IF NOT EXISTS sessions (
			id BIGSERIAL PRIMARY KEY,
			token TEXT NOT NULL UNIQUE,
			created_at TIMESTAMPTZ DEFAULT NOW(),
			expires_at TIMESTAMPTZ NOT NULL
		)`,
	},
}

func (s *Store) migrate() error {
	for _, m := range migrations[s.driver] {
		if _, err := s.db.Exec(m); err != nil {
			return fmt.Errorf("exec migration: %w", err)
		}
	}
	return nil
}
