package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/viper"
)

// Config represents the complete data room configuration.
//
// This structure captures all configurable aspects of the data room:
//   - Logging configuration
//   - Item store selection and configuration (store-specific)
//   - Service limits and hardening switches
//   - Prometheus metrics endpoint
//   - Snapshot sink selection and configuration (sink-specific)
//
// Configuration sources (in order of precedence):
//  1. Environment variables (DATAROOM_*)
//  2. Configuration file (YAML or TOML)
//  3. Default values (lowest priority)
//
// Store Configuration Pattern:
// Each store implementation defines its own configuration type. The Config
// struct contains type-specific sections (e.g., store.memory, store.badger)
// and only the section matching the selected type is used.
type Config struct {
	// Logging controls log output behavior
	Logging LoggingConfig `mapstructure:"logging" yaml:"logging"`

	// Store specifies the item store type and type-specific configuration
	Store StoreConfig `mapstructure:"store" yaml:"store"`

	// Service tunes the folder and file services
	Service ServiceConfig `mapstructure:"service" yaml:"service"`

	// Metrics controls the Prometheus endpoint
	Metrics MetricsConfig `mapstructure:"metrics" yaml:"metrics"`

	// Snapshot specifies where exports are written and imports are read
	Snapshot SnapshotConfig `mapstructure:"snapshot" yaml:"snapshot"`
}

// LoggingConfig controls logging behavior.
type LoggingConfig struct {
	// Level is the minimum log level to output
	// Valid values: DEBUG, INFO, WARN, ERROR (case-insensitive, normalized to uppercase)
	Level string `mapstructure:"level" yaml:"level" validate:"required,oneof=DEBUG INFO WARN ERROR debug info warn error"`

	// Format specifies the log output format
	// Valid values: text, json
	Format string `mapstructure:"format" yaml:"format" validate:"required,oneof=text json"`

	// Output specifies where logs are written
	// Valid values: stdout, stderr, or a file path
	Output string `mapstructure:"output" yaml:"output" validate:"required"`
}

// StoreConfig specifies item store configuration.
//
// The Type field determines which store implementation is used.
// Only the corresponding type-specific configuration section is used.
type StoreConfig struct {
	// Type specifies which item store implementation to use
	// Valid values: memory, badger
	Type string `mapstructure:"type" yaml:"type" validate:"required,oneof=memory badger"`

	// Memory contains memory-specific configuration
	// Only used when Type = "memory"
	Memory map[string]any `mapstructure:"memory" yaml:"memory"`

	// Badger contains BadgerDB-specific configuration
	// Only used when Type = "badger"
	Badger map[string]any `mapstructure:"badger" yaml:"badger"`
}

// ServiceConfig tunes the folder and file services.
type ServiceConfig struct {
	// MaxFileSize is the largest accepted upload in bytes
	MaxFileSize int64 `mapstructure:"max_file_size" yaml:"max_file_size" validate:"gt=0"`

	// AllowedMimeTypes lists the media types accepted on upload
	AllowedMimeTypes []string `mapstructure:"allowed_mime_types" yaml:"allowed_mime_types" validate:"min=1,dive,required"`

	// VerifyContentType sniffs uploaded bytes against AllowedMimeTypes
	VerifyContentType bool `mapstructure:"verify_content_type" yaml:"verify_content_type"`

	// TransactionalCascade deletes a folder subtree in one store transaction
	TransactionalCascade bool `mapstructure:"transactional_cascade" yaml:"transactional_cascade"`

	// SerializeMutations serializes creations and renames per parent folder
	SerializeMutations bool `mapstructure:"serialize_mutations" yaml:"serialize_mutations"`
}

// MetricsConfig controls the Prometheus metrics endpoint.
type MetricsConfig struct {
	// Enabled starts the metrics HTTP server
	Enabled bool `mapstructure:"enabled" yaml:"enabled"`

	// Port is the HTTP port of the metrics server
	Port int `mapstructure:"port" yaml:"port" validate:"omitempty,min=1,max=65535"`

	// RateLimit caps requests per second to /metrics and /healthz (0 = unlimited)
	RateLimit uint `mapstructure:"rate_limit" yaml:"rate_limit"`

	// RateBurst is the burst capacity of the rate limiter (0 = same as RateLimit)
	RateBurst uint `mapstructure:"rate_burst" yaml:"rate_burst" validate:"omitempty,gtefield=RateLimit"`
}

// SnapshotConfig specifies the snapshot sink.
//
// The Type field determines which sink implementation is used.
// Only the corresponding type-specific configuration section is used.
type SnapshotConfig struct {
	// Type specifies which sink implementation to use
	// Valid values: file, s3
	Type string `mapstructure:"type" yaml:"type" validate:"required,oneof=file s3"`

	// File contains file-specific configuration
	// Only used when Type = "file"
	File map[string]any `mapstructure:"file" yaml:"file"`

	// S3 contains S3-specific configuration
	// Only used when Type = "s3"
	S3 map[string]any `mapstructure:"s3" yaml:"s3"`
}

// Load loads configuration from file, environment, and defaults.
//
// Configuration precedence (highest to lowest):
//  1. Environment variables (DATAROOM_*)
//  2. Configuration file
//  3. Default values
//
// Parameters:
//   - configPath: Path to config file (empty string uses default location)
//
// Returns:
//   - *Config: Loaded and validated configuration
//   - error: Configuration loading or validation error
func Load(configPath string) (*Config, error) {
	v := viper.New()

	// Configure viper
	setupViper(v, configPath)

	// Read configuration file if it exists
	if err := readConfigFile(v); err != nil {
		return nil, err
	}

	// Unmarshal into config struct
	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}

	// Apply defaults for any missing values
	ApplyDefaults(&cfg)

	// Validate configuration
	if err := Validate(&cfg); err != nil {
		return nil, fmt.Errorf("configuration validation failed: %w", err)
	}

	return &cfg, nil
}

// envKeys lists the scalar keys that can be set from the environment
// without a config file. Viper only consults AutomaticEnv for keys it
// already knows about.
var envKeys = []string{
	"logging.level",
	"logging.format",
	"logging.output",
	"store.type",
	"store.badger.db_path",
	"service.max_file_size",
	"service.verify_content_type",
	"service.transactional_cascade",
	"service.serialize_mutations",
	"metrics.enabled",
	"metrics.port",
	"metrics.rate_limit",
	"metrics.rate_burst",
	"snapshot.type",
	"snapshot.file.path",
	"snapshot.s3.bucket",
	"snapshot.s3.region",
	"snapshot.s3.endpoint",
	"snapshot.s3.access_key_id",
	"snapshot.s3.secret_access_key",
}

// setupViper configures viper with environment variables and config file settings.
func setupViper(v *viper.Viper, configPath string) {
	// Set up environment variable support
	// Environment variables use DATAROOM_ prefix and underscores
	// Example: DATAROOM_LOGGING_LEVEL=DEBUG
	v.SetEnvPrefix("DATAROOM")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()
	for _, key := range envKeys {
		_ = v.BindEnv(key)
	}

	// Configure config file search
	if configPath != "" {
		// Use explicitly specified config file
		v.SetConfigFile(configPath)
	} else {
		// Use default location: $XDG_CONFIG_HOME/dataroom/config.{yaml,toml}
		configDir := getConfigDir()
		v.AddConfigPath(configDir)
		v.SetConfigName("config")
		v.SetConfigType("yaml") // Primary format
	}
}

// readConfigFile reads the configuration file if it exists.
func readConfigFile(v *viper.Viper) error {
	if err := v.ReadInConfig(); err != nil {
		// Check if error is "config file not found"
		if _, ok := err.(viper.ConfigFileNotFoundError); ok {
			// Config file not found is acceptable - use defaults
			return nil
		}
		// An explicit path that does not exist is reported by the OS instead
		if errors.Is(err, os.ErrNotExist) {
			return nil
		}
		// Other errors are problems
		return fmt.Errorf("failed to read config file: %w", err)
	}

	return nil
}

// getConfigDir returns the configuration directory path.
//
// Uses XDG_CONFIG_HOME if set, otherwise ~/.config, or falls back to current
// directory (.) if home directory cannot be determined.
func getConfigDir() string {
	// Check XDG_CONFIG_HOME
	if xdgConfig := os.Getenv("XDG_CONFIG_HOME"); xdgConfig != "" {
		return filepath.Join(xdgConfig, "dataroom")
	}

	// Fall back to ~/.config
	home, err := os.UserHomeDir()
	if err != nil {
		// If we can't get home dir, use current directory as last resort
		return "."
	}

	return filepath.Join(home, ".config", "dataroom")
}

// GetDefaultConfigPath returns the default configuration file path.
func GetDefaultConfigPath() string {
	return filepath.Join(getConfigDir(), "config.yaml")
}

// ConfigExists checks if a config file exists at the default location.
func ConfigExists() bool {
	path := GetDefaultConfigPath()
	_, err := os.Stat(path)
	return err == nil
}

// GetConfigDir returns the configuration directory path (exposed for init command).
func GetConfigDir() string {
	return getConfigDir()
}
