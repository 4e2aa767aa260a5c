package config

import (
	"fmt"
	"strings"
)

// ValidationError represents a configuration validation error
type ValidationError struct {
	Field   string
	Value   string
	Message string
}

func (e ValidationError) Error() string {
	return fmt.Sprintf("config validation error for field '%s' with value '%s': %s", e.Field, e.Value, e.Message)
}

// Validator accumulates configuration validation errors.
type Validator struct {
	errors []ValidationError
}

func NewValidator() *Validator {
	return &Validator{errors: make([]ValidationError, 0)}
}

func (v *Validator) AddError(field, value, message string) {
	v.errors = append(v.errors, ValidationError{Field: field, Value: value, Message: message})
}

func (v *Validator) HasErrors() bool { return len(v.errors) > 0 }

func (v *Validator) ErrorsAsString() string {
	msgs := make([]string, 0, len(v.errors))
	for _, err := range v.errors {
		msgs = append(msgs, err.Error())
	}
	return strings.Join(msgs, "\n")
}

// Validate checks the loaded configuration for values the server cannot run
// without. Returns nil when the config is usable.
func Validate(cfg *Config) error {
	v := NewValidator()

	if cfg.DatabaseURL == "" {
		v.AddError("DATABASE_URL", "", "database connection string is required")
	}
	if cfg.GoogleMapsAPIKey == "" {
		v.AddError("GOOGLE_MAPS_API_KEY", "", "place-data provider API key is required")
	}
	if cfg.RateLimitDefault <= 0 {
		v.AddError("RATE_LIMIT_DEFAULT", fmt.Sprintf("%d", cfg.RateLimitDefault), "must be positive")
	}
	if cfg.RateLimitWindowMinutes <= 0 {
		v.AddError("RATE_LIMIT_WINDOW_MINUTES", fmt.Sprintf("%d", cfg.RateLimitWindowMinutes), "must be positive")
	}
	if cfg.LogFormat != "json" && cfg.LogFormat != "text" {
		v.AddError("LOG_FORMAT", cfg.LogFormat, "must be json or text")
	}

	if v.HasErrors() {
		return fmt.Errorf("invalid configuration:\n%s", v.ErrorsAsString())
	}
	return nil
}
