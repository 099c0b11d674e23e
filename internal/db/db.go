// Package db provides SQLite persistence for launch history.
package db

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/mirandabohm/Auto-Launcher/internal/logging"
	"github.com/rs/zerolog"
	_ "modernc.org/sqlite"
)

// DefaultDBFile is the history database filename resolved relative to the
// working directory when no path is given.
const DefaultDBFile = "auto_launcher.db"

// DB wraps the sqlite handle used by the repositories.
type DB struct {
	*sql.DB
	logger zerolog.Logger
}

// Open opens (creating if needed) the history database at path.
func Open(path string) (*DB, error) {
	if path == "" {
		path = DefaultDBFile
	}

	handle, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("open database %s: %w", path, err)
	}

	// modernc sqlite is single-writer; serialize through one connection.
	handle.SetMaxOpenConns(1)

	if _, err := handle.Exec(`PRAGMA journal_mode = WAL; PRAGMA foreign_keys = ON;`); err != nil {
		handle.Close()
		return nil, fmt.Errorf("configure database: %w", err)
	}

	return &DB{DB: handle, logger: logging.Component("db")}, nil
}

// OpenInMemory opens a private in-memory database, for tests.
func OpenInMemory() (*DB, error) {
	handle, err := sql.Open("sqlite", ":memory:")
	if err != nil {
		return nil, fmt.Errorf("open in-memory database: %w", err)
	}
	handle.SetMaxOpenConns(1)
	return &DB{DB: handle, logger: logging.Component("db")}, nil
}

// Migrate applies the schema. Idempotent.
func (d *DB) Migrate(ctx context.Context) error {
	_, err := d.ExecContext(ctx, `
		CREATE TABLE IF NOT EXISTS launch_records (
			id          TEXT PRIMARY KEY,
			profile     TEXT NOT NULL,
			item_type   TEXT NOT NULL,
			item_label  TEXT NOT NULL,
			status      TEXT NOT NULL,
			message     TEXT NOT NULL,
			recorded_at TEXT NOT NULL
		);
		CREATE INDEX IF NOT EXISTS idx_launch_records_profile
			ON launch_records(profile);
		CREATE INDEX IF NOT EXISTS idx_launch_records_recorded_at
			ON launch_records(recorded_at);
	`)
	if err != nil {
		return fmt.Errorf("migrate schema: %w", err)
	}

	d.logger.Debug().Msg("schema migrated")
	return nil
}
