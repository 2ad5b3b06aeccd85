package config

import (
	"fmt"
	"mime"

	"github.com/go-playground/validator/v10"
)

// validate is the singleton validator instance
var validate *validator.Validate

func init() {
	validate = validator.New()
}

// Validate validates the configuration using struct tags and custom rules.
//
// This function uses go-playground/validator for declarative validation
// via struct tags, with additional custom validation for complex rules
// that cannot be expressed in tags.
//
// Note: Log level normalization is handled in ApplyDefaults, not here.
// Validation accepts both uppercase and lowercase log levels.
//
// Returns an error describing validation failures.
func Validate(cfg *Config) error {
	// Run struct tag validation
	if err := validate.Struct(cfg); err != nil {
		return formatValidationError(err)
	}

	// Custom validation rules that can't be expressed in tags
	if err := validateCustomRules(cfg); err != nil {
		return err
	}

	return nil
}

// validateCustomRules performs custom validation beyond struct tags.
func validateCustomRules(cfg *Config) error {
	// A persistent badger store needs a path unless it runs in memory
	if cfg.Store.Type == "badger" {
		inMemory, _ := cfg.Store.Badger["in_memory"].(bool)
		if path, _ := cfg.Store.Badger["db_path"].(string); path == "" && !inMemory {
			return fmt.Errorf("store.badger: db_path is required")
		}
	}

	// Allowed media types must be well formed
	for i, mimeType := range cfg.Service.AllowedMimeTypes {
		if _, _, err := mime.ParseMediaType(mimeType); err != nil {
			return fmt.Errorf("service.allowed_mime_types[%d]: invalid media type %q", i, mimeType)
		}
	}

	// The S3 sink needs a bucket and a region
	if cfg.Snapshot.Type == "s3" {
		for _, key := range []string{"bucket", "region"} {
			if value, _ := cfg.Snapshot.S3[key].(string); value == "" {
				return fmt.Errorf("snapshot.s3: %s is required", key)
			}
		}
	}

	return nil
}

// formatValidationError converts validator errors into user-friendly messages.
func formatValidationError(err error) error {
	if validationErrs, ok := err.(validator.ValidationErrors); ok {
		// Return the first validation error with context
		if len(validationErrs) > 0 {
			e := validationErrs[0]
			return fmt.Errorf("%s: validation failed on '%s' tag (value: %v)",
				e.Namespace(), e.Tag(), e.Value())
		}
	}
	return err
}
