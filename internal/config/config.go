// Package config loads client settings from defaults, an optional
// TOML file, and environment overrides, in that order.
package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"time"

	"github.com/BurntSushi/toml"
)

const configFileName = "config.toml"

// Config holds everything tunable about the client.
type Config struct {
	APIURL         string `toml:"api_url"`
	TimeoutSeconds int    `toml:"timeout_seconds"`
	Theme          string `toml:"theme"`
	Debug          bool   `toml:"debug"`
}

// Default returns the built-in configuration.
func Default() Config {
	return Config{
		APIURL:         "http://localhost:3001",
		TimeoutSeconds: 15,
		Theme:          "classic",
	}
}

// Timeout returns the per-request timeout as a duration.
func (c Config) Timeout() time.Duration {
	return time.Duration(c.TimeoutSeconds) * time.Second
}

// Load resolves the effective configuration: defaults, then
// ~/.todoterm/config.toml if present, then environment variables.
func Load() (Config, error) {
	cfg := Default()
	path, err := configPath()
	if err != nil {
		return cfg, err
	}
	if err := loadFile(&cfg, path); err != nil {
		return cfg, err
	}
	applyEnv(&cfg)
	return cfg, nil
}

func configPath() (string, error) {
	home, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("home: %w", err)
	}
	return filepath.Join(home, ".todoterm", configFileName), nil
}

// loadFile overlays settings from a TOML file. A missing file is not
// an error; the defaults simply stand.
func loadFile(cfg *Config, path string) error {
	if _, err := toml.DecodeFile(path, cfg); err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil
		}
		return fmt.Errorf("parse %s: %w", path, err)
	}
	return nil
}

// applyEnv overrides config from environment variables.
func applyEnv(cfg *Config) {
	if v := os.Getenv("TODOTERM_API_URL"); v != "" {
		cfg.APIURL = v
	}
	if v := os.Getenv("TODOTERM_TIMEOUT"); v != "" {
		if n, err := strconv.Atoi(v); err == nil && n > 0 {
			cfg.TimeoutSeconds = n
		}
	}
	if v := os.Getenv("TODOTERM_THEME"); v != "" {
		cfg.Theme = v
	}
	if v := os.Getenv("TODOTERM_DEBUG"); v != "" {
		cfg.Debug = boolFromString(v)
	}
}

func boolFromString(s string) bool {
	switch s {
	case "1", "true", "yes", "on":
		return true
	}
	return false
}
