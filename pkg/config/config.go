// Package config loads and validates the resilix configuration file.
//
// Configuration is a plain YAML file, validated with struct tags. Every
// field has a sensible default; a missing file is not an error.
package config

import (
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/go-playground/validator/v10"
	"gopkg.in/yaml.v3"
)

// Config is the root configuration for resilix.
type Config struct {
	Logging      LoggingConfig      `yaml:"logging"`
	Execution    ExecutionConfig    `yaml:"execution"`
	Capabilities CapabilitiesConfig `yaml:"capabilities"`
	History      HistoryConfig      `yaml:"history"`
	Metrics      MetricsConfig      `yaml:"metrics"`
	Tracing      TracingConfig      `yaml:"tracing"`
}

// LoggingConfig controls log output.
type LoggingConfig struct {
	Level  string `yaml:"level" validate:"oneof=trace debug info warn error fatal"`
	Format string `yaml:"format" validate:"oneof=console json"`
}

// ExecutionConfig controls the executor.
type ExecutionConfig struct {
	// RequireConfirmation gates mutating tiers behind a y/N prompt.
	RequireConfirmation bool `yaml:"require_confirmation"`

	// CommandTimeoutSeconds bounds every external command invocation.
	CommandTimeoutSeconds int `yaml:"command_timeout_seconds" validate:"gte=1,lte=3600"`

	// PreferredTier, when set, is used as the default tier override.
	PreferredTier string `yaml:"preferred_tier" validate:"omitempty,oneof=native_api modern_cli legacy_cli instructions"`
}

// CommandTimeout returns the configured timeout as a duration.
func (c ExecutionConfig) CommandTimeout() time.Duration {
	return time.Duration(c.CommandTimeoutSeconds) * time.Second
}

// CapabilitiesConfig controls the capability snapshot cache.
type CapabilitiesConfig struct {
	// CachePath is where the JSON snapshot lives. Empty selects the
	// default under the user config directory.
	CachePath string `yaml:"cache_path"`

	// CacheTTLMinutes is how long a cached snapshot stays fresh. Zero
	// means the cache never expires.
	CacheTTLMinutes int `yaml:"cache_ttl_minutes" validate:"gte=0"`
}

// CacheTTL returns the configured TTL as a duration.
func (c CapabilitiesConfig) CacheTTL() time.Duration {
	return time.Duration(c.CacheTTLMinutes) * time.Minute
}

// HistoryConfig controls the execution-history store.
type HistoryConfig struct {
	Enabled bool `yaml:"enabled"`

	// Path is the SQLite database file. Empty selects the default under
	// the user config directory.
	Path string `yaml:"path"`
}

// MetricsConfig controls the optional Prometheus endpoint.
type MetricsConfig struct {
	Enabled       bool   `yaml:"enabled"`
	ListenAddress string `yaml:"listen_address" validate:"required_with=Enabled"`
}

// TracingConfig controls optional trace export.
type TracingConfig struct {
	Enabled  bool   `yaml:"enabled"`
	Exporter string `yaml:"exporter" validate:"omitempty,oneof=otlp stdout none"`
	Endpoint string `yaml:"endpoint"`
}

// Default returns the built-in configuration.
func Default() *Config {
	return &Config{
		Logging: LoggingConfig{
			Level:  "info",
			Format: "console",
		},
		Execution: ExecutionConfig{
			RequireConfirmation:   true,
			CommandTimeoutSeconds: 60,
		},
		Capabilities: CapabilitiesConfig{
			CacheTTLMinutes: 60,
		},
		History: HistoryConfig{
			Enabled: true,
		},
		Metrics: MetricsConfig{
			Enabled:       false,
			ListenAddress: ":9090",
		},
		Tracing: TracingConfig{
			Enabled:  false,
			Exporter: "stdout",
		},
	}
}

// DefaultPath returns the default config file location.
func DefaultPath() (string, error) {
	configDir, err := os.UserConfigDir()
	if err != nil {
		return "", fmt.Errorf("failed to resolve user config dir: %w", err)
	}
	return filepath.Join(configDir, "resilix", "config.yaml"), nil
}

// DataDir returns the directory where resilix keeps its state files.
func DataDir() (string, error) {
	configDir, err := os.UserConfigDir()
	if err != nil {
		return "", fmt.Errorf("failed to resolve user config dir: %w", err)
	}
	return filepath.Join(configDir, "resilix"), nil
}

// Load reads the config file at path, layering it over the defaults.
// A missing file yields the defaults; a malformed or invalid file is an
// error.
func Load(path string) (*Config, error) {
	cfg := Default()

	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return cfg, nil
		}
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}

	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config file: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid config file %s: %w", path, err)
	}

	return cfg, nil
}

// Validate checks the configuration against its struct tags.
func (c *Config) Validate() error {
	return validator.New().Struct(c)
}
