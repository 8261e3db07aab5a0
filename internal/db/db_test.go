package db

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/rs/zerolog"
)

func TestOpenInMemory(t *testing.T) {
	db, err := Open(":memory:")
	if err != nil {
		t.Fatalf("Failed to open database: %v", err)
	}
	defer db.Close()

	var fk int
	if err := db.QueryRow("PRAGMA foreign_keys;").Scan(&fk); err != nil {
		t.Fatalf("Failed to read foreign_keys pragma: %v", err)
	}
	if fk != 1 {
		t.Errorf("Expected foreign_keys 1, got %d", fk)
	}
}

func TestOpenFileCreatesDirectory(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nested", "dir", "test.db")

	db, err := Open(path)
	if err != nil {
		t.Fatalf("Failed to open database: %v", err)
	}
	defer db.Close()

	var mode string
	if err := db.QueryRow("PRAGMA journal_mode;").Scan(&mode); err != nil {
		t.Fatalf("Failed to read journal_mode pragma: %v", err)
	}
	if mode != "wal" {
		t.Errorf("Expected journal mode wal, got %s", mode)
	}

	if _, err := os.Stat(path); err != nil {
		t.Errorf("Expected database file to exist: %v", err)
	}
}

func TestCloseNeverOpened(t *testing.T) {
	var db *DB
	if err := db.Close(); err != nil {
		t.Errorf("Expected nil Close on nil DB, got %v", err)
	}

	db = &DB{}
	if err := db.Close(); err != nil {
		t.Errorf("Expected nil Close on empty DB, got %v", err)
	}
}

func TestRemoveFile(t *testing.T) {
	log := zerolog.Nop()

	path := filepath.Join(t.TempDir(), "old.db")
	if err := os.WriteFile(path, []byte("x"), 0644); err != nil {
		t.Fatalf("Failed to write file: %v", err)
	}

	if !RemoveFile(path, log) {
		t.Errorf("Expected removal of existing file to succeed")
	}
	if _, err := os.Stat(path); !os.IsNotExist(err) {
		t.Errorf("Expected file to be gone, stat err: %v", err)
	}

	// A missing file counts as success.
	if !RemoveFile(path, log) {
		t.Errorf("Expected removal of missing file to report success")
	}
}
