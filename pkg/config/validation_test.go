package config

import (
	"strings"
	"testing"
)

func TestValidate_ValidConfig(t *testing.T) {
	cfg := GetDefaultConfig()

	err := Validate(cfg)
	if err != nil {
		t.Errorf("Expected valid config to pass validation, got error: %v", err)
	}
}

func TestValidate_InvalidLogLevel(t *testing.T) {
	cfg := GetDefaultConfig()
	cfg.Logging.Level = "INVALID"

	err := Validate(cfg)
	if err == nil {
		t.Fatal("Expected validation error for invalid log level")
	}
	if !strings.Contains(err.Error(), "oneof") {
		t.Errorf("Expected 'oneof' validation error, got: %v", err)
	}
}

func TestValidate_InvalidLogFormat(t *testing.T) {
	cfg := GetDefaultConfig()
	cfg.Logging.Format = "xml"

	err := Validate(cfg)
	if err == nil {
		t.Fatal("Expected validation error for invalid log format")
	}
}

func TestValidate_InvalidStoreType(t *testing.T) {
	cfg := GetDefaultConfig()
	cfg.Store.Type = "postgres"

	err := Validate(cfg)
	if err == nil {
		t.Fatal("Expected validation error for unimplemented store type")
	}
}

func TestValidate_BadgerRequiresPath(t *testing.T) {
	cfg := GetDefaultConfig()
	cfg.Store.Type = "badger"
	cfg.Store.Badger["db_path"] = ""

	err := Validate(cfg)
	if err == nil {
		t.Fatal("Expected validation error for missing badger db_path")
	}
	if !strings.Contains(err.Error(), "db_path is required") {
		t.Errorf("Expected 'db_path is required' error, got: %v", err)
	}

	cfg.Store.Badger["in_memory"] = true
	if err := Validate(cfg); err != nil {
		t.Errorf("Expected in-memory badger to need no path, got: %v", err)
	}
}

func TestValidate_MaxFileSize(t *testing.T) {
	cfg := GetDefaultConfig()
	cfg.Service.MaxFileSize = -1

	err := Validate(cfg)
	if err == nil {
		t.Fatal("Expected validation error for negative max file size")
	}
	if !strings.Contains(err.Error(), "MaxFileSize") {
		t.Errorf("Expected error to name MaxFileSize, got: %v", err)
	}
}

func TestValidate_AllowedMimeTypes(t *testing.T) {
	cfg := GetDefaultConfig()
	cfg.Service.AllowedMimeTypes = []string{}

	if err := Validate(cfg); err == nil {
		t.Fatal("Expected validation error for empty allowed mime types")
	}

	cfg.Service.AllowedMimeTypes = []string{"application/pdf", "not a type;;"}
	err := Validate(cfg)
	if err == nil {
		t.Fatal("Expected validation error for malformed media type")
	}
	if !strings.Contains(err.Error(), "allowed_mime_types[1]") {
		t.Errorf("Expected error to point at the bad entry, got: %v", err)
	}
}

func TestValidate_MetricsPort(t *testing.T) {
	cfg := GetDefaultConfig()
	cfg.Metrics.Port = 70000

	if err := Validate(cfg); err == nil {
		t.Fatal("Expected validation error for out-of-range metrics port")
	}
}

func TestValidate_SnapshotS3(t *testing.T) {
	cfg := GetDefaultConfig()
	cfg.Snapshot.Type = "s3"

	err := Validate(cfg)
	if err == nil {
		t.Fatal("Expected validation error for S3 sink without bucket")
	}
	if !strings.Contains(err.Error(), "bucket is required") {
		t.Errorf("Expected 'bucket is required' error, got: %v", err)
	}

	cfg.Snapshot.S3["bucket"] = "rooms"
	err = Validate(cfg)
	if err == nil || !strings.Contains(err.Error(), "region is required") {
		t.Errorf("Expected 'region is required' error, got: %v", err)
	}

	cfg.Snapshot.S3["region"] = "eu-west-1"
	if err := Validate(cfg); err != nil {
		t.Errorf("Expected complete S3 config to be valid, got: %v", err)
	}
}

func TestValidate_InvalidSnapshotType(t *testing.T) {
	cfg := GetDefaultConfig()
	cfg.Snapshot.Type = "ftp"

	if err := Validate(cfg); err == nil {
		t.Fatal("Expected validation error for unknown snapshot type")
	}
}

func TestValidate_MetricsRateBurst(t *testing.T) {
	cfg := GetDefaultConfig()
	cfg.Metrics.RateLimit = 10
	cfg.Metrics.RateBurst = 5

	if err := Validate(cfg); err == nil {
		t.Fatal("Expected validation error for burst below rate limit")
	}

	cfg.Metrics.RateBurst = 0
	if err := Validate(cfg); err != nil {
		t.Errorf("Expected zero burst to default to the rate, got: %v", err)
	}
}
