// Package config handles configuration file loading and validation.
//
// This package is responsible for:
//   - Loading the YAML configuration file
//   - Expanding environment variables
//   - Applying documented defaults
//   - Validating all values once at load time
//
// The resulting Config is a plain struct with named fields; components read
// the fields they need and nothing is looked up dynamically after startup.
package config

import (
	"fmt"
	"os"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/xtxerr/utiltrack/internal/errors"
)

// =============================================================================
// Defaults
// =============================================================================

const (
	// DefaultCollectionIntervalSec is how often a collection tick runs.
	// Override via config: collection_interval
	DefaultCollectionIntervalSec = 60

	// DefaultRetentionDays is how long samples are kept before the
	// retention sweep deletes them.
	// Override via config: retention_days
	DefaultRetentionDays = 30

	// DefaultPruneInterval is how often the retention sweep runs,
	// independent of the tick cadence.
	DefaultPruneInterval = 24 * time.Hour

	// DefaultDatabasePath is the DuckDB file location.
	// Override via config: database.path
	DefaultDatabasePath = "/var/lib/utiltrack/metrics.duckdb"
)

// =============================================================================
// Types
// =============================================================================

// Config is the complete daemon configuration.
type Config struct {
	// CollectionInterval is the tick period in seconds. Minimum 1.
	CollectionIntervalSec int `yaml:"collection_interval"`

	// RetentionDays is the sample retention period in days. Minimum 1.
	RetentionDays int `yaml:"retention_days"`

	Database DatabaseConfig `yaml:"database"`
	Logging  LoggingConfig  `yaml:"logging"`
	Metrics  MetricsConfig  `yaml:"metrics"`
}

// DatabaseConfig locates the backing store.
type DatabaseConfig struct {
	Path string `yaml:"path"`
}

// LoggingConfig configures the log destination and verbosity.
type LoggingConfig struct {
	// Path is the log file. Empty logs to stderr.
	Path string `yaml:"path"`

	// Level is one of debug, info, warn, error.
	Level string `yaml:"level"`

	// Format is "text" or "json".
	Format string `yaml:"format"`
}

// MetricsConfig holds the per-family enable flags. CPU and Memory both
// gate the combined system sample; LoadAverage only controls whether the
// load fields are populated within it.
type MetricsConfig struct {
	CPU         bool `yaml:"cpu"`
	Memory      bool `yaml:"memory"`
	Disk        bool `yaml:"disk"`
	LoadAverage bool `yaml:"load_average"`
	Temperature bool `yaml:"temperature"`
	GPU         bool `yaml:"gpu"`
}

// CollectionInterval returns the tick period as a duration.
func (c *Config) CollectionInterval() time.Duration {
	return time.Duration(c.CollectionIntervalSec) * time.Second
}

// Retention returns the retention period as a duration.
func (c *Config) Retention() time.Duration {
	return time.Duration(c.RetentionDays) * 24 * time.Hour
}

// SystemEnabled reports whether the system family is collected.
func (c *Config) SystemEnabled() bool {
	return c.Metrics.CPU || c.Metrics.Memory
}

// =============================================================================
// Load
// =============================================================================

// Default returns a Config populated with documented defaults.
func Default() *Config {
	return &Config{
		CollectionIntervalSec: DefaultCollectionIntervalSec,
		RetentionDays:         DefaultRetentionDays,
		Database: DatabaseConfig{
			Path: DefaultDatabasePath,
		},
		Logging: LoggingConfig{
			Level:  "info",
			Format: "text",
		},
		Metrics: MetricsConfig{
			CPU:         true,
			Memory:      true,
			Disk:        true,
			LoadAverage: true,
			Temperature: true,
			GPU:         false,
		},
	}
}

// Load loads configuration from a YAML file. Environment variables in the
// file are expanded before parsing. Missing keys keep their defaults.
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read config: %w", err)
	}

	expanded := os.ExpandEnv(string(data))

	cfg := Default()
	if err := yaml.Unmarshal([]byte(expanded), cfg); err != nil {
		return nil, fmt.Errorf("parse config: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	return cfg, nil
}

// =============================================================================
// Validate
// =============================================================================

// Validate checks all configuration values. It is called once at load time;
// an error here is fatal and the daemon must not start.
func (c *Config) Validate() error {
	if c.CollectionIntervalSec < 1 {
		return errors.NewValidation("collection_interval",
			fmt.Sprintf("must be at least 1 second, got %d", c.CollectionIntervalSec))
	}
	if c.RetentionDays < 1 {
		return errors.NewValidation("retention_days",
			fmt.Sprintf("must be at least 1 day, got %d", c.RetentionDays))
	}
	if c.Database.Path == "" {
		return errors.NewValidation("database.path", "must not be empty")
	}
	switch c.Logging.Level {
	case "", "debug", "info", "warn", "warning", "error":
	default:
		return errors.NewValidation("logging.level",
			fmt.Sprintf("unknown level %q", c.Logging.Level))
	}
	switch c.Logging.Format {
	case "", "text", "json":
	default:
		return errors.NewValidation("logging.format",
			fmt.Sprintf("unknown format %q", c.Logging.Format))
	}
	if !c.SystemEnabled() && !c.Metrics.Disk && !c.Metrics.Temperature && !c.Metrics.GPU {
		return errors.NewValidation("metrics", "all metric families are disabled")
	}
	return nil
}
