package config

import (
	"fmt"
	"strings"
)

// ValidationError represents a configuration validation error.
type ValidationError struct {
	Field   string
	Message string
}

// Error implements the error interface.
func (e *ValidationError) Error() string {
	return fmt.Sprintf("%s: %s", e.Field, e.Message)
}

// ValidationErrors is a collection of validation errors.
type ValidationErrors []ValidationError

// Error implements the error interface.
func (e ValidationErrors) Error() string {
	if len(e) == 0 {
		return "no validation errors"
	}
	if len(e) == 1 {
		return e[0].Error()
	}

	var sb strings.Builder
	sb.WriteString(fmt.Sprintf("%d validation errors:\n", len(e)))
	for _, err := range e {
		sb.WriteString(fmt.Sprintf("  - %s\n", err.Error()))
	}
	return sb.String()
}

// Validator validates configuration.
//
// Slack endpoints and OAuth client credentials are intentionally not checked:
// a blank value surfaces as a failing API call rather than a startup error.
type Validator struct {
	errors ValidationErrors
}

// NewValidator creates a new configuration validator.
func NewValidator() *Validator {
	return &Validator{
		errors: make(ValidationErrors, 0),
	}
}

// Validate validates the entire configuration.
func (v *Validator) Validate(cfg *Config) error {
	v.errors = make(ValidationErrors, 0)

	v.validateServer(&cfg.Server)
	v.validateSlack(&cfg.Slack)
	v.validateOAuth(&cfg.OAuth)
	v.validateState(&cfg.State, &cfg.Redis)
	v.validateLogger(&cfg.Logger)

	if len(v.errors) > 0 {
		return v.errors
	}
	return nil
}

func (v *Validator) validateServer(cfg *ServerConfig) {
	if cfg.Port < 0 || cfg.Port > 65535 {
		v.addError("server.port", "port must be between 0 and 65535")
	}
}

func (v *Validator) validateSlack(cfg *SlackConfig) {
	if cfg.Timeout < 0 {
		v.addError("slack.timeout", "timeout must be non-negative")
	}
	if cfg.RatePerMinute < 0 {
		v.addError("slack.rate_per_minute", "rate_per_minute must be non-negative")
	}
	if cfg.PageSize < 0 || cfg.PageSize > 1000 {
		v.addError("slack.page_size", "page_size must be between 0 and 1000")
	}
}

func (v *Validator) validateOAuth(cfg *OAuthConfig) {
	if cfg.StateTTL < 0 {
		v.addError("oauth.state_ttl", "state_ttl must be non-negative")
	}
}

func (v *Validator) validateState(cfg *StateConfig, redis *RedisConfig) {
	switch strings.ToLower(strings.TrimSpace(cfg.Backend)) {
	case "", "file":
		if strings.TrimSpace(cfg.FilePath) == "" {
			v.addError("state.file_path", "file_path is required for the file backend")
		}
	case "redis":
		if strings.TrimSpace(redis.Addr) == "" {
			v.addError("redis.addr", "addr is required for the redis backend")
		}
	default:
		v.addError("state.backend", "backend must be one of: file, redis")
	}
}

func (v *Validator) validateLogger(cfg *LoggerConfig) {
	switch strings.ToLower(cfg.Level) {
	case "", "debug", "info", "warn", "error":
	default:
		v.addError("logger.level", "level must be one of: debug, info, warn, error")
	}
}

// addError adds a validation error.
func (v *Validator) addError(field, message string) {
	v.errors = append(v.errors, ValidationError{
		Field:   field,
		Message: message,
	})
}

// ValidateConfig is a convenience function to validate a configuration.
func ValidateConfig(cfg *Config) error {
	validator := NewValidator()
	return validator.Validate(cfg)
}
