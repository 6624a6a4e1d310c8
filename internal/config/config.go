// Package config holds taskdeck configuration, stored as YAML at
// <workspace>/.taskdeck/config.yaml. Missing files yield defaults; unknown
// keys are ignored so older binaries tolerate newer configs.
package config

import (
	"fmt"
	"os"
	"path/filepath"

	"gopkg.in/yaml.v3"
)

// Config holds all taskdeck configuration.
type Config struct {
	Store   StoreConfig   `yaml:"store"`
	Logging LoggingConfig `yaml:"logging"`
	UI      UIConfig      `yaml:"ui"`
}

// StoreConfig configures the SQLite store.
type StoreConfig struct {
	// Path of the database file, relative to the workspace unless absolute.
	Path string `yaml:"path"`
}

// LoggingConfig controls the file logger.
type LoggingConfig struct {
	Debug bool `yaml:"debug"`
}

// UIConfig configures the REPL.
type UIConfig struct {
	Theme string `yaml:"theme"` // light, dark, auto
}

// Default returns the configuration used when no file exists.
func Default() Config {
	return Config{
		Store: StoreConfig{Path: filepath.Join(".taskdeck", "taskdeck.db")},
		UI:    UIConfig{Theme: "auto"},
	}
}

func configPath(workspace string) string {
	return filepath.Join(workspace, ".taskdeck", "config.yaml")
}

// Load reads the config for a workspace, falling back to defaults when the
// file does not exist.
func Load(workspace string) (Config, error) {
	cfg := Default()
	data, err := os.ReadFile(configPath(workspace))
	if err != nil {
		if os.IsNotExist(err) {
			return cfg, nil
		}
		return cfg, fmt.Errorf("failed to read config: %w", err)
	}
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return Default(), fmt.Errorf("failed to parse config: %w", err)
	}
	if cfg.Store.Path == "" {
		cfg.Store.Path = Default().Store.Path
	}
	return cfg, nil
}

// Save writes the config for a workspace, creating the directory if needed.
func Save(workspace string, cfg Config) error {
	dir := filepath.Dir(configPath(workspace))
	if err := os.MkdirAll(dir, 0755); err != nil {
		return fmt.Errorf("failed to create config directory: %w", err)
	}
	data, err := yaml.Marshal(cfg)
	if err != nil {
		return fmt.Errorf("failed to encode config: %w", err)
	}
	return os.WriteFile(configPath(workspace), data, 0644)
}

// DBPath resolves the database path against the workspace.
func (c Config) DBPath(workspace string) string {
	if filepath.IsAbs(c.Store.Path) {
		return c.Store.Path
	}
	return filepath.Join(workspace, c.Store.Path)
}
