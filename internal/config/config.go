// Package config assembles runtime configuration from layered providers:
// flag defaults, then an optional YAML file, then FLASHDECK_* environment
// variables, then explicitly set flags. The merged result is validated
// before use.
package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/go-playground/validator/v10"
	kyaml "github.com/knadh/koanf/parsers/yaml"
	"github.com/knadh/koanf/providers/env"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/providers/posflag"
	"github.com/knadh/koanf/v2"
	"github.com/spf13/pflag"
)

const envPrefix = "FLASHDECK_"

// Config is the validated runtime configuration.
type Config struct {
	DB       string   `koanf:"db" validate:"required"`
	Progress string   `koanf:"progress" validate:"required"`
	Listen   string   `koanf:"listen" validate:"required,hostname_port"`
	Sources  []string `koanf:"sources" validate:"dive,min=1"`
	Repos    string   `koanf:"repos" validate:"required"`
	Export   string   `koanf:"export" validate:"required"`
	Seed     bool     `koanf:"seed"`
}

// DefaultDir returns the per-user data directory, ~/.config/flashdeck on
// most systems.
func DefaultDir() (string, error) {
	cfg, err := os.UserConfigDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(cfg, "flashdeck"), nil
}

// RegisterFlags declares the shared configuration flags on fs. Flag
// defaults double as configuration defaults through the posflag provider.
func RegisterFlags(fs *pflag.FlagSet, baseDir string) {
	fs.String("config", "", "path to a YAML config file")
	fs.String("db", filepath.Join(baseDir, "flashdeck.db"), "path to the card catalog database")
	fs.String("progress", filepath.Join(baseDir, "flashcard-progress.json"), "path to the progress snapshot")
	fs.String("listen", "127.0.0.1:8484", "address for the web UI")
	fs.StringSlice("sources", nil, "deck sources (local dirs or git URLs)")
	fs.String("repos", filepath.Join(baseDir, "repos"), "cache directory for git deck sources")
	fs.String("export", ".", "directory for exported snapshots")
	fs.Bool("seed", true, "seed the built-in starter decks when the catalog is empty")
}

// Load merges all configuration layers behind fs and validates the result.
func Load(fs *pflag.FlagSet) (*Config, error) {
	k := koanf.New(".")

	if path, _ := fs.GetString("config"); path != "" {
		if err := k.Load(file.Provider(path), kyaml.Parser()); err != nil {
			return nil, fmt.Errorf("load config file %s: %w", path, err)
		}
	}

	if err := k.Load(env.Provider(envPrefix, ".", func(s string) string {
		return strings.ToLower(strings.TrimPrefix(s, envPrefix))
	}), nil); err != nil {
		return nil, fmt.Errorf("load env config: %w", err)
	}

	if err := k.Load(posflag.Provider(fs, ".", k), nil); err != nil {
		return nil, fmt.Errorf("load flag config: %w", err)
	}

	var cfg Config
	if err := k.Unmarshal("", &cfg); err != nil {
		return nil, fmt.Errorf("unmarshal config: %w", err)
	}
	if err := validator.New().Struct(&cfg); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}
	return &cfg, nil
}
