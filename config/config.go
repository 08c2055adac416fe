// Package config loads runtime settings from an optional YAML file.
package config

import (
	"fmt"
	"os"
	"strings"

	"gopkg.in/yaml.v3"
)

type Config struct {
	// TickIntervalMs is the live simulation granularity.
	TickIntervalMs int `yaml:"tick_interval_ms"`
	// AutosaveIntervalMs is how often the session is persisted.
	AutosaveIntervalMs int `yaml:"autosave_interval_ms"`
	// SaveDir is where save blobs live.
	SaveDir string `yaml:"save_dir"`
	// ContentDir holds the Lua content files.
	ContentDir string `yaml:"content_dir"`
	// Seed fixes the RNG; 0 means derive from the clock.
	Seed int64 `yaml:"seed"`
}

// Load reads cfg from path. An empty path returns the defaults; a
// partial file overrides only the keys it sets.
func Load(path string) (Config, error) {
	cfg := defaults()
	if strings.TrimSpace(path) == "" {
		return cfg, nil
	}
	b, err := os.ReadFile(path)
	if err != nil {
		return cfg, err
	}
	if err := yaml.Unmarshal(b, &cfg); err != nil {
		return cfg, fmt.Errorf("%s: %w", path, err)
	}
	if err := cfg.Validate(); err != nil {
		return cfg, fmt.Errorf("%s: %w", path, err)
	}
	return cfg, nil
}

func defaults() Config {
	return Config{
		TickIntervalMs:     100,
		AutosaveIntervalMs: 30_000,
		SaveDir:            "saves",
		ContentDir:         "content",
	}
}

func (c Config) Validate() error {
	if c.TickIntervalMs <= 0 {
		return fmt.Errorf("tick_interval_ms must be positive, got %d", c.TickIntervalMs)
	}
	if c.AutosaveIntervalMs <= 0 {
		return fmt.Errorf("autosave_interval_ms must be positive, got %d", c.AutosaveIntervalMs)
	}
	if strings.TrimSpace(c.SaveDir) == "" {
		return fmt.Errorf("save_dir must not be empty")
	}
	if strings.TrimSpace(c.ContentDir) == "" {
		return fmt.Errorf("content_dir must not be empty")
	}
	return nil
}
