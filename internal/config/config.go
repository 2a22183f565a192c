// Package config provides configuration management for neuropulse.
package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/nvandessel/neuropulse/internal/constants"
	"github.com/nvandessel/neuropulse/internal/dataset"
	"github.com/nvandessel/neuropulse/internal/models"
	"github.com/nvandessel/neuropulse/internal/regime"
	"github.com/nvandessel/neuropulse/internal/scoring"
	"github.com/nvandessel/neuropulse/internal/store"
)

// FileName is the config file inside ~/.neuropulse.
const FileName = "config.yaml"

// NeuropulseConfig represents the complete neuropulse configuration.
type NeuropulseConfig struct {
	// Generation controls dataset size, seed and user pool.
	Generation GenerationConfig `json:"generation" yaml:"generation"`

	// Regimes optionally replaces the built-in time-of-day regime table.
	Regimes *RegimesConfig `json:"regimes,omitempty" yaml:"regimes,omitempty"`

	// Scoring holds the label model weights and thresholds.
	Scoring scoring.Config `json:"scoring" yaml:"scoring"`

	// Logging controls log verbosity.
	Logging LoggingConfig `json:"logging" yaml:"logging"`

	// Storage controls where runs are kept.
	Storage StorageConfig `json:"storage" yaml:"storage"`
}

// GenerationConfig holds the dataset assembler inputs.
type GenerationConfig struct {
	// Samples is the number of sessions generated per run.
	Samples int `json:"samples" yaml:"samples"`

	// Seed makes runs reproducible.
	Seed uint64 `json:"seed" yaml:"seed"`

	// UserPool is the number of distinct user ids.
	UserPool int `json:"user_pool" yaml:"user_pool"`
}

// RegimesConfig is a full regime table: ordered intervals, checked first
// to last, plus the catch-all.
type RegimesConfig struct {
	Ordered  []regime.Descriptor `json:"ordered" yaml:"ordered"`
	Fallback regime.Descriptor   `json:"fallback" yaml:"fallback"`
}

// LoggingConfig controls logging behavior.
type LoggingConfig struct {
	// Level is the log verbosity: "warn", "info" (default), "debug" or "trace".
	// At debug and trace a per-record trace file is written.
	Level string `json:"level" yaml:"level"`

	// TraceDir is where traces.jsonl goes. Empty means ~/.neuropulse.
	TraceDir string `json:"trace_dir,omitempty" yaml:"trace_dir,omitempty"`
}

// StorageConfig controls persistence.
type StorageConfig struct {
	// DBPath is the SQLite database. Empty means ~/.neuropulse/neuropulse.db.
	DBPath string `json:"db_path,omitempty" yaml:"db_path,omitempty"`
}

// Default returns a configuration with default values.
func Default() *NeuropulseConfig {
	return &NeuropulseConfig{
		Generation: GenerationConfig{
			Samples:  constants.DefaultSamples,
			Seed:     constants.DefaultSeed,
			UserPool: constants.DefaultUserPool,
		},
		Scoring: scoring.DefaultConfig(),
		Logging: LoggingConfig{
			Level: "info",
		},
	}
}

// Path returns ~/.neuropulse/config.yaml.
func Path() (string, error) {
	dir, err := store.HomeDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(dir, FileName), nil
}

// Load reads ~/.neuropulse/config.yaml if it exists and applies
// environment overrides. Missing files are not an error.
func Load() (*NeuropulseConfig, error) {
	config := Default()

	if configPath, err := Path(); err == nil {
		if _, statErr := os.Stat(configPath); statErr == nil {
			fileConfig, loadErr := LoadFromFile(configPath)
			if loadErr != nil {
				return nil, fmt.Errorf("loading config file: %w", loadErr)
			}
			config = fileConfig
		}
	}

	if err := applyEnvOverrides(config); err != nil {
		return nil, err
	}
	return config, nil
}

// LoadFromFile reads configuration from a YAML file on top of the defaults.
func LoadFromFile(path string) (*NeuropulseConfig, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading config file: %w", err)
	}

	config := Default()
	if err := yaml.Unmarshal(data, config); err != nil {
		return nil, fmt.Errorf("parsing config file: %w", err)
	}
	config.Storage.DBPath = expandPath(config.Storage.DBPath)
	config.Logging.TraceDir = expandPath(config.Logging.TraceDir)
	return config, nil
}

// Save writes the configuration as YAML, creating the directory if needed.
func (c *NeuropulseConfig) Save(path string) error {
	data, err := yaml.Marshal(c)
	if err != nil {
		return fmt.Errorf("marshaling config: %w", err)
	}
	if err := os.MkdirAll(filepath.Dir(path), 0700); err != nil {
		return fmt.Errorf("creating config directory: %w", err)
	}
	if err := os.WriteFile(path, data, 0600); err != nil {
		return fmt.Errorf("writing config file: %w", err)
	}
	return nil
}

// Validate checks that the configuration values are within acceptable ranges.
func (c *NeuropulseConfig) Validate() error {
	if c.Generation.Samples <= 0 {
		return fmt.Errorf("samples must be positive, got %d: %w", c.Generation.Samples, models.ErrInvalidArgument)
	}
	if c.Generation.UserPool <= 0 {
		return fmt.Errorf("user_pool must be positive, got %d: %w", c.Generation.UserPool, models.ErrInvalidArgument)
	}
	if err := c.Scoring.Validate(); err != nil {
		return fmt.Errorf("scoring: %w", err)
	}
	if _, err := c.Table(); err != nil {
		return err
	}

	validLevels := map[string]bool{"warn": true, "info": true, "debug": true, "trace": true}
	if c.Logging.Level != "" && !validLevels[strings.ToLower(c.Logging.Level)] {
		return fmt.Errorf("invalid log level: %s (valid: warn, info, debug, trace, or empty for default): %w",
			c.Logging.Level, models.ErrInvalidArgument)
	}
	return nil
}

// Table builds the regime table, falling back to the built-in one.
func (c *NeuropulseConfig) Table() (*regime.Table, error) {
	if c.Regimes == nil {
		return regime.DefaultTable(), nil
	}
	t, err := regime.NewTable(c.Regimes.Ordered, c.Regimes.Fallback)
	if err != nil {
		return nil, fmt.Errorf("regimes: %w", err)
	}
	return t, nil
}

// Dataset returns the assembler configuration.
func (c *NeuropulseConfig) Dataset() (dataset.Config, error) {
	table, err := c.Table()
	if err != nil {
		return dataset.Config{}, err
	}
	return dataset.Config{
		Table:    table,
		Scoring:  c.Scoring,
		UserPool: c.Generation.UserPool,
	}, nil
}

// ResolveDBPath returns Storage.DBPath or the default location.
func (c *NeuropulseConfig) ResolveDBPath() (string, error) {
	if c.Storage.DBPath != "" {
		return c.Storage.DBPath, nil
	}
	return store.DefaultDBPath()
}

// ResolveTraceDir returns Logging.TraceDir or ~/.neuropulse.
func (c *NeuropulseConfig) ResolveTraceDir() (string, error) {
	if c.Logging.TraceDir != "" {
		return c.Logging.TraceDir, nil
	}
	return store.HomeDir()
}

// applyEnvOverrides applies NEUROPULSE_* environment variables.
// A malformed number is an error.
func applyEnvOverrides(config *NeuropulseConfig) error {
	if v := os.Getenv("NEUROPULSE_SAMPLES"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil {
			return fmt.Errorf("NEUROPULSE_SAMPLES: %w", err)
		}
		config.Generation.Samples = n
	}
	if v := os.Getenv("NEUROPULSE_SEED"); v != "" {
		n, err := strconv.ParseUint(v, 10, 64)
		if err != nil {
			return fmt.Errorf("NEUROPULSE_SEED: %w", err)
		}
		config.Generation.Seed = n
	}
	if v := os.Getenv("NEUROPULSE_USER_POOL"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil {
			return fmt.Errorf("NEUROPULSE_USER_POOL: %w", err)
		}
		config.Generation.UserPool = n
	}
	if v := os.Getenv("NEUROPULSE_LOG_LEVEL"); v != "" {
		config.Logging.Level = v
	}
	if v := os.Getenv("NEUROPULSE_DB_PATH"); v != "" {
		config.Storage.DBPath = expandPath(v)
	}
	return nil
}

// expandPath expands ${VAR} references and a leading ~/.
func expandPath(p string) string {
	if strings.Contains(p, "${") {
		p = os.Expand(p, os.Getenv)
	}
	if strings.HasPrefix(p, "~/") {
		if home, err := os.UserHomeDir(); err == nil {
			p = filepath.Join(home, p[2:])
		}
	}
	return p
}
