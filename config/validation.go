package config

import (
	"fmt"
	"strings"
)

// ValidationError represents a configuration validation error
type ValidationError struct {
	Field   string
	Message string
}

func (e ValidationError) Error() string {
	return fmt.Sprintf("%s: %s", e.Field, e.Message)
}

// ValidateConfig checks if the configuration meets the requirements for the current environment
func ValidateConfig(cfg *Config) error {
	var errs []string

	if cfg.Port == "" {
		errs = append(errs, ValidationError{"PORT", "must not be empty"}.Error())
	}
	if cfg.DatabaseURL == "" {
		errs = append(errs, ValidationError{"DATABASE_URL", "must not be empty"}.Error())
	}
	if cfg.JWTSecret == "" {
		errs = append(errs, ValidationError{"JWT_SECRET", "must not be empty"}.Error())
	}
	if cfg.JWTExpiresIn <= 0 {
		errs = append(errs, ValidationError{"JWT_EXPIRES_IN", "must be positive"}.Error())
	}
	if cfg.MaxIngredients < 1 {
		errs = append(errs, ValidationError{"MAX_INGREDIENTS", "must be at least 1"}.Error())
	}
	if cfg.DefaultServings < 1 || cfg.DefaultServings > 20 {
		errs = append(errs, ValidationError{"DEFAULT_SERVINGS", "must be between 1 and 20"}.Error())
	}

	switch cfg.Environment {
	case Production:
		if cfg.JWTSecret == DefaultJWTSecret {
			errs = append(errs, "jwt_secret secret is required in production")
		}
		if !strings.HasPrefix(cfg.DatabaseURL, "postgres") {
			errs = append(errs, "DATABASE_URL must point at postgres in production")
		}
	case CI:
		if cfg.JWTSecret == DefaultJWTSecret {
			errs = append(errs, "JWT_SECRET environment variable is required in CI environment")
		}
	}

	if len(errs) > 0 {
		return fmt.Errorf("configuration validation failed:\n%s", strings.Join(errs, "\n"))
	}

	return nil
}
