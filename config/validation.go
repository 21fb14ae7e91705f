package config

import (
	"errors"
	"fmt"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/robfig/cron/v3"
)

// ValidationError represents a configuration validation error
type ValidationError struct {
	Field   string
	Message string
}

func (e ValidationError) Error() string {
	return fmt.Sprintf("%s: %s", e.Field, e.Message)
}

var validate = validator.New()

// envNames maps Config fields to the variables they are loaded from
var envNames = map[string]string{
	"ServerHost":          "SERVER_HOST",
	"ServerPort":          "SERVER_PORT",
	"OllamaBaseURL":       "OLLAMA_BASE_URL",
	"OllamaModel":         "OLLAMA_MODEL",
	"OllamaTimeout":       "OLLAMA_TIMEOUT",
	"HealthProbeSchedule": "HEALTH_PROBE_SCHEDULE",
	"CORSAllowOrigins":    "CORS_ALLOW_ORIGINS",
	"RateLimitPerMinute":  "RATE_LIMIT_PER_MINUTE",
}

// ValidateConfig checks that every field holds a usable value
func ValidateConfig(cfg *Config) error {
	if cfg == nil {
		return errors.New("config is nil")
	}

	var problems []string

	if err := validate.Struct(cfg); err != nil {
		var fieldErrs validator.ValidationErrors
		if !errors.As(err, &fieldErrs) {
			return err
		}
		for _, fe := range fieldErrs {
			problems = append(problems, fieldError(fe).Error())
		}
	}

	if cfg.HealthProbeSchedule != "" {
		if _, err := cron.ParseStandard(cfg.HealthProbeSchedule); err != nil {
			problems = append(problems, ValidationError{
				Field:   "HEALTH_PROBE_SCHEDULE",
				Message: fmt.Sprintf("invalid cron schedule: %v", err),
			}.Error())
		}
	}

	if len(problems) > 0 {
		return fmt.Errorf("%s", strings.Join(problems, "\n"))
	}
	return nil
}

func fieldError(fe validator.FieldError) ValidationError {
	field := fe.StructField()
	if name, ok := envNames[field]; ok {
		field = name
	}

	var msg string
	switch fe.Tag() {
	case "required":
		msg = "is required"
	case "url":
		msg = fmt.Sprintf("%q is not a valid URL", fe.Value())
	case "numeric":
		msg = fmt.Sprintf("%q is not a number", fe.Value())
	default:
		msg = fmt.Sprintf("failed %s=%s check", fe.Tag(), fe.Param())
	}
	return ValidationError{Field: field, Message: msg}
}
