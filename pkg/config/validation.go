package config

import (
	"fmt"

	"github.com/go-playground/validator/v10"
)

// validate is the singleton validator instance
var validate *validator.Validate

func init() {
	validate = validator.New()
}

// Validate validates the configuration using struct tags and custom rules.
//
// Note: Log level normalization is handled in ApplyDefaults, not here.
// Validation accepts both uppercase and lowercase log levels.
func Validate(cfg *Config) error {
	if err := validate.Struct(cfg); err != nil {
		return formatValidationError(err)
	}

	if err := validateCustomRules(cfg); err != nil {
		return err
	}

	return nil
}

// validateCustomRules performs custom validation beyond struct tags.
func validateCustomRules(cfg *Config) error {
	root := cfg.Repository.Root
	if root != "/" && root[len(root)-1] == '/' {
		return fmt.Errorf("repository.root: must not end with a separator: %q", root)
	}

	if cfg.Repository.RateLimit.Burst > 0 && cfg.Repository.RateLimit.RequestsPerSecond == 0 {
		return fmt.Errorf("repository.rate_limit: burst requires requests_per_second")
	}

	if cfg.Repository.Type == "s3" {
		for _, key := range []string{"bucket", "region"} {
			if s, _ := cfg.Repository.S3[key].(string); s == "" {
				return fmt.Errorf("repository.s3: %s is required", key)
			}
		}
	}

	return nil
}

// formatValidationError converts validator errors into user-friendly messages.
func formatValidationError(err error) error {
	if validationErrs, ok := err.(validator.ValidationErrors); ok {
		if len(validationErrs) > 0 {
			e := validationErrs[0]
			return fmt.Errorf("%s: validation failed on '%s' tag (value: %v)",
				e.Namespace(), e.Tag(), e.Value())
		}
	}
	return err
}
