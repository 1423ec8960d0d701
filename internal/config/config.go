package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"fibcalc/internal/fib"

	"gopkg.in/yaml.v3"
)

// Config holds all fibcalc configuration.
type Config struct {
	// Core settings
	Name    string `yaml:"name"`
	Version string `yaml:"version"`

	// How terms are computed
	Compute ComputeConfig `yaml:"compute"`

	// Batch evaluation
	Batch BatchConfig `yaml:"batch"`

	// Term cache
	Store StoreConfig `yaml:"store"`

	// Logging
	Logging LoggingConfig `yaml:"logging"`
}

// ComputeConfig selects the arithmetic used for terms.
type ComputeConfig struct {
	Mode     string `yaml:"mode"`      // wrap, checked, big
	Width    int    `yaml:"width"`     // 32 or 64, ignored by big
	MaxIndex int64  `yaml:"max_index"` // 0 = unlimited
}

// BatchConfig configures the batch runner.
type BatchConfig struct {
	Workers int    `yaml:"workers"`
	Timeout string `yaml:"timeout"`
}

// StoreConfig configures the SQLite term cache.
type StoreConfig struct {
	Enabled      bool   `yaml:"enabled"`
	DatabasePath string `yaml:"database_path"` // relative paths resolve against the workspace
}

// DirName is the per-workspace directory holding config, logs and the cache.
const DirName = ".fib"

// DefaultConfig returns the default configuration.
func DefaultConfig() *Config {
	return &Config{
		Name:    "fibcalc",
		Version: "0.3.0",

		Compute: ComputeConfig{
			Mode:     string(fib.ModeWrap),
			Width:    int(fib.Width32),
			MaxIndex: 1000000,
		},

		Batch: BatchConfig{
			Workers: 4,
			Timeout: "30s",
		},

		Store: StoreConfig{
			Enabled:      false,
			DatabasePath: filepath.Join(DirName, "terms.db"),
		},

		Logging: LoggingConfig{
			Level:  "info",
			Format: "text",
		},
	}
}

// DefaultPath returns the config file location for a workspace.
func DefaultPath(workspace string) string {
	return filepath.Join(workspace, DirName, "config.yaml")
}

// Load loads configuration from a YAML file.
// A missing file yields the defaults. Environment overrides apply in both cases.
func Load(path string) (*Config, error) {
	cfg := DefaultConfig()

	data, err := os.ReadFile(path)
	if err != nil {
		if !os.IsNotExist(err) {
			return nil, fmt.Errorf("failed to read config: %w", err)
		}
	} else if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config: %w", err)
	}

	// Override with environment variables
	if err := cfg.applyEnvOverrides(); err != nil {
		return nil, err
	}

	return cfg, nil
}

// Save saves configuration to a YAML file.
func (c *Config) Save(path string) error {
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return fmt.Errorf("failed to create config directory: %w", err)
	}

	data, err := yaml.Marshal(c)
	if err != nil {
		return fmt.Errorf("failed to marshal config: %w", err)
	}

	if err := os.WriteFile(path, data, 0644); err != nil {
		return fmt.Errorf("failed to write config: %w", err)
	}

	return nil
}

// applyEnvOverrides applies environment variable overrides.
func (c *Config) applyEnvOverrides() error {
	if mode := os.Getenv("FIB_MODE"); mode != "" {
		c.Compute.Mode = mode
	}
	if width := os.Getenv("FIB_WIDTH"); width != "" {
		w, err := strconv.Atoi(width)
		if err != nil {
			return fmt.Errorf("invalid FIB_WIDTH %q: %w", width, err)
		}
		c.Compute.Width = w
	}
	if maxIdx := os.Getenv("FIB_MAX_INDEX"); maxIdx != "" {
		m, err := strconv.ParseInt(maxIdx, 10, 64)
		if err != nil {
			return fmt.Errorf("invalid FIB_MAX_INDEX %q: %w", maxIdx, err)
		}
		c.Compute.MaxIndex = m
	}
	if workers := os.Getenv("FIB_WORKERS"); workers != "" {
		n, err := strconv.Atoi(workers)
		if err != nil {
			return fmt.Errorf("invalid FIB_WORKERS %q: %w", workers, err)
		}
		c.Batch.Workers = n
	}

	// Setting a database path implies the cache is wanted
	if path := os.Getenv("FIB_DB_PATH"); path != "" {
		c.Store.DatabasePath = path
		c.Store.Enabled = true
	}

	if debug := os.Getenv("FIB_DEBUG"); debug != "" {
		c.Logging.DebugMode = debug == "1" || strings.EqualFold(debug, "true")
	}
	if level := os.Getenv("FIB_LOG_LEVEL"); level != "" {
		c.Logging.Level = level
	}
	return nil
}

// GetBatchTimeout returns the batch timeout as a duration.
func (c *Config) GetBatchTimeout() time.Duration {
	d, err := time.ParseDuration(c.Batch.Timeout)
	if err != nil {
		return 30 * time.Second
	}
	return d
}

// GetDatabasePath resolves the cache path against the workspace.
func (c *Config) GetDatabasePath(workspace string) string {
	if filepath.IsAbs(c.Store.DatabasePath) {
		return c.Store.DatabasePath
	}
	return filepath.Join(workspace, c.Store.DatabasePath)
}

// Evaluator builds the fib.Evaluator described by the compute section.
func (c *Config) Evaluator() fib.Evaluator {
	return fib.Evaluator{
		Mode:     fib.Mode(c.Compute.Mode),
		Width:    fib.Width(c.Compute.Width),
		MaxIndex: c.Compute.MaxIndex,
	}
}

// Validate validates the configuration.
func (c *Config) Validate() error {
	if err := c.Evaluator().Validate(); err != nil {
		return fmt.Errorf("compute: %w", err)
	}
	if c.Batch.Workers < 1 {
		return fmt.Errorf("batch.workers must be >= 1, got %d", c.Batch.Workers)
	}
	if _, err := time.ParseDuration(c.Batch.Timeout); err != nil {
		return fmt.Errorf("batch.timeout: %w", err)
	}
	if c.Store.Enabled && c.Store.DatabasePath == "" {
		return fmt.Errorf("store.database_path is required when the store is enabled")
	}
	if !isValidLevel(c.Logging.Level) {
		return fmt.Errorf("invalid logging level: %s (valid: %v)", c.Logging.Level, ValidLevels)
	}
	return nil
}
