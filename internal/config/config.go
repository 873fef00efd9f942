// Package config loads the console client configuration from an optional
// YAML file with environment variable overrides.
package config

import (
	"fmt"
	"os"
	"path/filepath"

	"gopkg.in/yaml.v3"
)

// Config holds the console client settings.
type Config struct {
	BackendURL     string `yaml:"backend_url"`
	TimeoutSeconds int    `yaml:"timeout_seconds"`
	LogLevel       string `yaml:"log_level"`
}

// DefaultPath returns the default config file location
// (~/.console/config.yaml).
func DefaultPath() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return ""
	}
	return filepath.Join(home, ".console", "config.yaml")
}

// Load reads configuration from path, then applies env overrides
// (CONSOLE_BACKEND_URL, LOG_LEVEL). A missing file is not an error; the
// defaults apply.
func Load(path string) (*Config, error) {
	cfg := &Config{
		BackendURL:     "http://localhost:8000",
		TimeoutSeconds: 30,
	}

	if path != "" {
		data, err := os.ReadFile(path)
		switch {
		case os.IsNotExist(err):
			// fall through to env overrides
		case err != nil:
			return nil, fmt.Errorf("read config: %w", err)
		default:
			if err := yaml.Unmarshal(data, cfg); err != nil {
				return nil, fmt.Errorf("parse config: %w", err)
			}
		}
	}

	if url := os.Getenv("CONSOLE_BACKEND_URL"); url != "" {
		cfg.BackendURL = url
	}
	if level := os.Getenv("LOG_LEVEL"); level != "" {
		cfg.LogLevel = level
	}

	if cfg.BackendURL == "" {
		cfg.BackendURL = "http://localhost:8000"
	}
	if cfg.TimeoutSeconds <= 0 {
		cfg.TimeoutSeconds = 30
	}
	return cfg, nil
}
