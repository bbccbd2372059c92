// Package config holds fairmatch configuration, loaded from a YAML file
// with environment variable overrides.
package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"time"

	"gopkg.in/yaml.v3"

	"fairmatch/internal/engine"
)

// Config holds all fairmatch configuration.
type Config struct {
	// Engine defaults applied when the CLI or dashboard starts a session
	// without explicit parameters.
	Engine engine.Config `yaml:"engine"`

	// Source configures origin loading.
	Source SourceConfig `yaml:"source"`

	// Store configures run persistence.
	Store StoreConfig `yaml:"store"`

	// Dashboard configures the TUI.
	Dashboard DashboardConfig `yaml:"dashboard"`

	// Logging configures the process logger.
	Logging LoggingConfig `yaml:"logging"`
}

// SourceConfig configures origin loading.
type SourceConfig struct {
	HTTPTimeout string `yaml:"http_timeout"` // e.g. "10s"
}

// StoreConfig configures run persistence.
type StoreConfig struct {
	DatabasePath string `yaml:"database_path"`
}

// DashboardConfig configures the TUI.
type DashboardConfig struct {
	Theme         string `yaml:"theme"`         // light, dark, auto
	TickInterval  string `yaml:"tick_interval"` // playback speed, e.g. "400ms"
	DefaultOrigin string `yaml:"default_origin"`
}

// LoggingConfig configures the process logger.
type LoggingConfig struct {
	Verbose    bool `yaml:"verbose"`
	JSONFormat bool `yaml:"json_format"`
}

// DefaultConfig returns the configuration used when no file exists.
func DefaultConfig() *Config {
	return &Config{
		Engine: engine.DefaultConfig(),
		Source: SourceConfig{HTTPTimeout: "10s"},
		Store:  StoreConfig{DatabasePath: defaultDatabasePath()},
		Dashboard: DashboardConfig{
			Theme:         "auto",
			TickInterval:  "400ms",
			DefaultOrigin: "gauss:players=24,mean=1500,stddev=200,seed=1",
		},
	}
}

func defaultDatabasePath() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return "fairmatch.db"
	}
	return filepath.Join(home, ".fairmatch", "runs.db")
}

// Load reads the config file, falling back to defaults when it does not
// exist, then applies environment overrides.
func Load(path string) (*Config, error) {
	cfg := DefaultConfig()
	data, err := os.ReadFile(path)
	if err == nil {
		if err := yaml.Unmarshal(data, cfg); err != nil {
			return nil, fmt.Errorf("parsing config %s: %w", path, err)
		}
	} else if !os.IsNotExist(err) {
		return nil, fmt.Errorf("reading config %s: %w", path, err)
	}
	cfg.applyEnv()
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Save writes the config as YAML, creating parent directories.
func (c *Config) Save(path string) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("creating config directory: %w", err)
	}
	data, err := yaml.Marshal(c)
	if err != nil {
		return fmt.Errorf("encoding config: %w", err)
	}
	return os.WriteFile(path, data, 0o644)
}

// applyEnv applies FAIRMATCH_* overrides on top of the file values.
func (c *Config) applyEnv() {
	if v := os.Getenv("FAIRMATCH_DB"); v != "" {
		c.Store.DatabasePath = v
	}
	if v := os.Getenv("FAIRMATCH_THEME"); v != "" {
		c.Dashboard.Theme = v
	}
	if v := os.Getenv("FAIRMATCH_VERBOSE"); v != "" {
		if b, err := strconv.ParseBool(v); err == nil {
			c.Logging.Verbose = b
		}
	}
}

// Validate checks the duration fields and engine parameters.
func (c *Config) Validate() error {
	if err := c.Engine.Validate(); err != nil {
		return fmt.Errorf("engine config: %w", err)
	}
	if _, err := c.HTTPTimeout(); err != nil {
		return err
	}
	if _, err := c.TickInterval(); err != nil {
		return err
	}
	return nil
}

// HTTPTimeout parses the source timeout.
func (c *Config) HTTPTimeout() (time.Duration, error) {
	if c.Source.HTTPTimeout == "" {
		return 10 * time.Second, nil
	}
	d, err := time.ParseDuration(c.Source.HTTPTimeout)
	if err != nil {
		return 0, fmt.Errorf("source.http_timeout: %w", err)
	}
	return d, nil
}

// TickInterval parses the dashboard playback interval.
func (c *Config) TickInterval() (time.Duration, error) {
	if c.Dashboard.TickInterval == "" {
		return 400 * time.Millisecond, nil
	}
	d, err := time.ParseDuration(c.Dashboard.TickInterval)
	if err != nil {
		return 0, fmt.Errorf("dashboard.tick_interval: %w", err)
	}
	return d, nil
}

// DefaultPath is where the CLI looks for the config file.
func DefaultPath() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return "fairmatch.yaml"
	}
	return filepath.Join(home, ".fairmatch", "config.yaml")
}
