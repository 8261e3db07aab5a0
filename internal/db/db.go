package db

import (
	"database/sql"
	"fmt"
	"os"
	"path/filepath"

	"github.com/rs/zerolog"
	_ "modernc.org/sqlite"
)

// DB wraps the single exclusive connection to the embedded store.
type DB struct {
	*sql.DB
}

// Open opens a SQLite database at the given path. On any setup failure
// the half-open handle is closed before returning, so the caller never
// sees partial state.
func Open(path string) (*DB, error) {
	conn, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	if path != ":memory:" {
		dir := filepath.Dir(path)
		if err := os.MkdirAll(dir, 0755); err != nil {
			conn.Close()
			return nil, fmt.Errorf("failed to create database directory: %w", err)
		}
	}

	// WAL mode for better concurrency
	if _, err := conn.Exec("PRAGMA journal_mode=WAL;"); err != nil {
		conn.Close()
		return nil, fmt.Errorf("failed to enable WAL mode: %w", err)
	}

	// Foreign keys support
	if _, err := conn.Exec("PRAGMA foreign_keys=ON;"); err != nil {
		conn.Close()
		return nil, fmt.Errorf("failed to enable foreign keys: %w", err)
	}

	// SQLite works best with a single writer.
	conn.SetMaxOpenConns(1)

	return &DB{DB: conn}, nil
}

// Close releases the connection. Safe to call on a DB that was never
// opened.
func (db *DB) Close() error {
	if db == nil || db.DB == nil {
		return nil
	}
	return db.DB.Close()
}

// RemoveFile deletes a previous run's database file. Best effort: a
// missing file counts as success and a failed delete is logged without
// aborting the caller.
func RemoveFile(path string, log zerolog.Logger) bool {
	err := os.Remove(path)
	if err == nil {
		log.Debug().Str("path", path).Msg("removed old database file")
		return true
	}
	if os.IsNotExist(err) {
		return true
	}
	log.Warn().Err(err).Str("path", path).Msg("failed to remove old database file")
	return false
}
