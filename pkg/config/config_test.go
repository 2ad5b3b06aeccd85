package config

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func TestLoad_DefaultConfig(t *testing.T) {
	// Create a temporary config file
	tmpDir := t.TempDir()
	configPath := filepath.Join(tmpDir, "config.yaml")

	// Write minimal config
	configContent := `
logging:
  level: "debug"

store:
  type: "memory"
`
	if err := os.WriteFile(configPath, []byte(configContent), 0644); err != nil {
		t.Fatalf("Failed to write config file: %v", err)
	}

	// Load config
	cfg, err := Load(configPath)
	if err != nil {
		t.Fatalf("Failed to load config: %v", err)
	}

	// Verify normalization and defaults
	if cfg.Logging.Level != "DEBUG" {
		t.Errorf("Expected normalized level 'DEBUG', got %q", cfg.Logging.Level)
	}
	if cfg.Logging.Format != "text" {
		t.Errorf("Expected default format 'text', got %q", cfg.Logging.Format)
	}
	if cfg.Logging.Output != "stdout" {
		t.Errorf("Expected default output 'stdout', got %q", cfg.Logging.Output)
	}
	if cfg.Service.MaxFileSize != 10*1024*1024 {
		t.Errorf("Expected default max_file_size 10MiB, got %d", cfg.Service.MaxFileSize)
	}
	if cfg.Metrics.Port != 9090 {
		t.Errorf("Expected default metrics port 9090, got %d", cfg.Metrics.Port)
	}
	if cfg.Snapshot.Type != "file" {
		t.Errorf("Expected default snapshot type 'file', got %q", cfg.Snapshot.Type)
	}
}

func TestLoad_NoConfigFile(t *testing.T) {
	// Use a temporary directory with a non-existent config file path
	// This ensures we don't load the user's config from ~/.config/dataroom/
	tmpDir := t.TempDir()
	nonExistentPath := filepath.Join(tmpDir, "nonexistent.yaml")

	cfg, err := Load(nonExistentPath)
	if err != nil {
		t.Fatalf("Expected no error with missing config file, got: %v", err)
	}

	// Verify defaults
	if cfg.Logging.Level != "INFO" {
		t.Errorf("Expected default level 'INFO', got %q", cfg.Logging.Level)
	}
	if cfg.Store.Type != "memory" {
		t.Errorf("Expected default store type 'memory', got %q", cfg.Store.Type)
	}
}

func TestLoad_InvalidYAML(t *testing.T) {
	tmpDir := t.TempDir()
	configPath := filepath.Join(tmpDir, "invalid.yaml")

	invalidContent := `
logging:
  level: "INFO"
  invalid yaml here [[[
`
	if err := os.WriteFile(configPath, []byte(invalidContent), 0644); err != nil {
		t.Fatalf("Failed to write config file: %v", err)
	}

	_, err := Load(configPath)
	if err == nil {
		t.Fatal("Expected error with invalid YAML, got nil")
	}
}

func TestLoad_ValidationFailure(t *testing.T) {
	tmpDir := t.TempDir()
	configPath := filepath.Join(tmpDir, "config.yaml")

	configContent := `
store:
  type: "postgres"
`
	if err := os.WriteFile(configPath, []byte(configContent), 0644); err != nil {
		t.Fatalf("Failed to write config file: %v", err)
	}

	_, err := Load(configPath)
	if err == nil {
		t.Fatal("Expected validation error for unknown store type")
	}
	if !strings.Contains(err.Error(), "configuration validation failed") {
		t.Errorf("Expected validation failure, got: %v", err)
	}
}

func TestLoad_BadgerAndS3Sections(t *testing.T) {
	tmpDir := t.TempDir()
	configPath := filepath.Join(tmpDir, "config.yaml")

	configContent := `
store:
  type: badger
  badger:
    db_path: /var/lib/dataroom/items
    block_cache_size_mb: 128

service:
  max_file_size: 5242880
  allowed_mime_types: ["application/pdf", "image/png"]
  serialize_mutations: true

snapshot:
  type: s3
  s3:
    bucket: rooms
    region: eu-west-1
    endpoint: http://localhost:9000
`
	if err := os.WriteFile(configPath, []byte(configContent), 0644); err != nil {
		t.Fatalf("Failed to write config file: %v", err)
	}

	cfg, err := Load(configPath)
	if err != nil {
		t.Fatalf("Failed to load config: %v", err)
	}

	if cfg.Store.Badger["db_path"] != "/var/lib/dataroom/items" {
		t.Errorf("Expected badger db_path from file, got %v", cfg.Store.Badger["db_path"])
	}
	if cfg.Service.MaxFileSize != 5242880 {
		t.Errorf("Expected max_file_size 5242880, got %d", cfg.Service.MaxFileSize)
	}
	if len(cfg.Service.AllowedMimeTypes) != 2 {
		t.Errorf("Expected 2 allowed mime types, got %v", cfg.Service.AllowedMimeTypes)
	}
	if !cfg.Service.SerializeMutations {
		t.Error("Expected serialize_mutations to be true")
	}
	if cfg.Snapshot.S3["bucket"] != "rooms" {
		t.Errorf("Expected S3 bucket 'rooms', got %v", cfg.Snapshot.S3["bucket"])
	}
}

func TestLoad_EnvironmentOverrides(t *testing.T) {
	tmpDir := t.TempDir()

	t.Setenv("DATAROOM_LOGGING_LEVEL", "warn")
	t.Setenv("DATAROOM_STORE_TYPE", "badger")
	t.Setenv("DATAROOM_STORE_BADGER_DB_PATH", filepath.Join(tmpDir, "db"))
	t.Setenv("DATAROOM_SERVICE_TRANSACTIONAL_CASCADE", "true")

	cfg, err := Load(filepath.Join(tmpDir, "absent.yaml"))
	if err != nil {
		t.Fatalf("Failed to load config: %v", err)
	}

	if cfg.Logging.Level != "WARN" {
		t.Errorf("Expected level 'WARN' from environment, got %q", cfg.Logging.Level)
	}
	if cfg.Store.Type != "badger" {
		t.Errorf("Expected store type 'badger' from environment, got %q", cfg.Store.Type)
	}
	if cfg.Store.Badger["db_path"] != filepath.Join(tmpDir, "db") {
		t.Errorf("Expected db_path from environment, got %v", cfg.Store.Badger["db_path"])
	}
	if !cfg.Service.TransactionalCascade {
		t.Error("Expected transactional_cascade from environment")
	}
}

func TestGetConfigDir_XDG(t *testing.T) {
	tmpDir := t.TempDir()
	t.Setenv("XDG_CONFIG_HOME", tmpDir)

	if got := GetConfigDir(); got != filepath.Join(tmpDir, "dataroom") {
		t.Errorf("Expected XDG config dir, got %q", got)
	}
	if got := GetDefaultConfigPath(); got != filepath.Join(tmpDir, "dataroom", "config.yaml") {
		t.Errorf("Expected config path under XDG dir, got %q", got)
	}
	if ConfigExists() {
		t.Error("Expected no config file in a fresh directory")
	}
}
