// Package config loads environment configuration (optionally from a
// .env file) into structured Go types and validates it.
package config

import (
	"fmt"
	"strings"

	"github.com/go-playground/validator/v10"
	// Side-effect import: loads a .env file into the process env, if
	// one exists, before anything reads env vars.
	_ "github.com/joho/godotenv/autoload"
	"github.com/knadh/koanf/providers/env"
	"github.com/knadh/koanf/v2"
)

// Config is the root configuration object. Values come from env vars
// with the TASKLITE_ prefix, e.g. TASKLITE_DATABASE_PATH.
type Config struct {
	Database DatabaseConfig `koanf:"database" validate:"required"`
	Export   ExportConfig   `koanf:"export"`
	Log      LogConfig      `koanf:"log"`
}

type DatabaseConfig struct {
	Path string `koanf:"path" validate:"required"`
}

// ExportConfig points at the JSONL file used by the export and import
// commands.
type ExportConfig struct {
	Path string `koanf:"path"`
}

type LogConfig struct {
	Level string `koanf:"level"`
}

// Load reads env vars into a Config, applying defaults for anything
// unset.
func Load() (*Config, error) {
	cfg := &Config{
		Database: DatabaseConfig{Path: ".tasklite/tasklite.db"},
		Export:   ExportConfig{Path: ".tasklite/tasks.jsonl"},
		Log:      LogConfig{Level: "info"},
	}

	k := koanf.New(".")
	err := k.Load(env.Provider("TASKLITE_", ".", func(s string) string {
		return strings.ReplaceAll(strings.ToLower(strings.TrimPrefix(s, "TASKLITE_")), "_", ".")
	}), nil)
	if err != nil {
		return nil, fmt.Errorf("failed to load environment: %w", err)
	}

	if err := k.Unmarshal("", cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}

	if err := validator.New().Struct(cfg); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}

	return cfg, nil
}
