package config

import (
	"testing"
)

func TestLoadDefaults(t *testing.T) {
	cfg, err := Load()
	if err != nil {
		t.Fatalf("Failed to load config: %v", err)
	}

	if cfg.Database.Path != ".tasklite/tasklite.db" {
		t.Errorf("Expected default database path, got %s", cfg.Database.Path)
	}
	if cfg.Export.Path != ".tasklite/tasks.jsonl" {
		t.Errorf("Expected default export path, got %s", cfg.Export.Path)
	}
	if cfg.Log.Level != "info" {
		t.Errorf("Expected default log level info, got %s", cfg.Log.Level)
	}
}

func TestLoadFromEnv(t *testing.T) {
	t.Setenv("TASKLITE_DATABASE_PATH", "/tmp/custom.db")
	t.Setenv("TASKLITE_LOG_LEVEL", "debug")

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Failed to load config: %v", err)
	}

	if cfg.Database.Path != "/tmp/custom.db" {
		t.Errorf("Expected overridden database path, got %s", cfg.Database.Path)
	}
	if cfg.Log.Level != "debug" {
		t.Errorf("Expected overridden log level, got %s", cfg.Log.Level)
	}
	// Untouched values keep their defaults.
	if cfg.Export.Path != ".tasklite/tasks.jsonl" {
		t.Errorf("Expected default export path, got %s", cfg.Export.Path)
	}
}
