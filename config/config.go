package config

import (
	"fmt"
	"log"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

const (
	DefaultServerHost          = "0.0.0.0"
	DefaultServerPort          = "8080"
	DefaultOllamaBaseURL       = "http://localhost:11434"
	DefaultOllamaModel         = "llama3.2"
	DefaultOllamaTimeout       = 60 * time.Second
	DefaultHealthProbeSchedule = "@every 30s"
	DefaultCORSAllowOrigins    = "http://localhost:4200,http://localhost:5173"
	DefaultRateLimitPerMinute  = 30
)

// Config holds all configuration for the application
type Config struct {
	Environment Environment

	// Server configuration
	ServerHost string `validate:"required"`
	ServerPort string `validate:"required,numeric"`

	// Inference service configuration
	OllamaBaseURL string        `validate:"required,url"`
	OllamaModel   string        `validate:"required"`
	OllamaTimeout time.Duration `validate:"gt=0"`

	// HealthProbeSchedule is a cron spec ("@every 30s", "*/1 * * * *")
	HealthProbeSchedule string `validate:"required"`

	CORSAllowOrigins []string `validate:"dive,url"`

	// Redis backs the rate limiter when set; otherwise an in-process limiter is used
	RedisURL string

	// RateLimitPerMinute of 0 disables rate limiting on the suggestion endpoint
	RateLimitPerMinute int `validate:"gte=0"`
}

// Default returns a Config populated with the documented defaults
func Default() *Config {
	return &Config{
		Environment:         GetEnvironment(),
		ServerHost:          DefaultServerHost,
		ServerPort:          DefaultServerPort,
		OllamaBaseURL:       DefaultOllamaBaseURL,
		OllamaModel:         DefaultOllamaModel,
		OllamaTimeout:       DefaultOllamaTimeout,
		HealthProbeSchedule: DefaultHealthProbeSchedule,
		CORSAllowOrigins:    splitAndTrim(DefaultCORSAllowOrigins),
		RateLimitPerMinute:  DefaultRateLimitPerMinute,
	}
}

// LoadConfig creates a new Config instance with values from environment variables or secrets
func LoadConfig() (*Config, error) {
	// Best-effort load of a local .env file for development
	if !IsProduction() {
		if err := godotenv.Load(); err != nil && !os.IsNotExist(err) {
			log.Printf("Warning: failed to load .env file: %v", err)
		}
	}

	cfg := Default()
	cfg.Environment = GetEnvironment()
	cfg.ServerHost = getEnv("SERVER_HOST", cfg.ServerHost)
	cfg.ServerPort = getEnv("SERVER_PORT", cfg.ServerPort)
	cfg.OllamaBaseURL = strings.TrimRight(getEnv("OLLAMA_BASE_URL", cfg.OllamaBaseURL), "/")
	cfg.OllamaModel = getEnv("OLLAMA_MODEL", cfg.OllamaModel)
	cfg.HealthProbeSchedule = getEnv("HEALTH_PROBE_SCHEDULE", cfg.HealthProbeSchedule)
	cfg.CORSAllowOrigins = splitAndTrim(getEnv("CORS_ALLOW_ORIGINS", DefaultCORSAllowOrigins))

	timeout, err := getEnvAsDuration("OLLAMA_TIMEOUT", cfg.OllamaTimeout)
	if err != nil {
		return nil, err
	}
	cfg.OllamaTimeout = timeout

	limit, err := getEnvAsInt("RATE_LIMIT_PER_MINUTE", cfg.RateLimitPerMinute)
	if err != nil {
		return nil, err
	}
	cfg.RateLimitPerMinute = limit

	// In production the Redis URL may carry a password, so prefer the Docker secret
	cfg.RedisURL = os.Getenv("REDIS_URL")
	if cfg.RedisURL == "" {
		cfg.RedisURL = readSecret("redis_url")
	}

	if err := ValidateConfig(cfg); err != nil {
		return nil, fmt.Errorf("configuration validation failed: %w", err)
	}

	return cfg, nil
}

// Addr returns the listen address for the HTTP server
func (c *Config) Addr() string {
	return c.ServerHost + ":" + c.ServerPort
}

// readSecret reads a Docker secret from the secrets directory
func readSecret(name string) string {
	secretsDir := os.Getenv("SECRETS_DIR")
	if secretsDir == "" {
		secretsDir = "/run/secrets"
	}
	if data, err := os.ReadFile(filepath.Join(secretsDir, name)); err == nil {
		return strings.TrimSpace(string(data))
	}
	return ""
}

func getEnv(key, defaultValue string) string {
	if value := strings.TrimSpace(os.Getenv(key)); value != "" {
		return value
	}
	return defaultValue
}

func getEnvAsInt(key string, defaultValue int) (int, error) {
	raw := os.Getenv(key)
	if raw == "" {
		return defaultValue, nil
	}
	value, err := strconv.Atoi(strings.TrimSpace(raw))
	if err != nil {
		return 0, ValidationError{Field: key, Message: fmt.Sprintf("invalid integer %q", raw)}
	}
	return value, nil
}

func getEnvAsDuration(key string, defaultValue time.Duration) (time.Duration, error) {
	raw := os.Getenv(key)
	if raw == "" {
		return defaultValue, nil
	}
	value, err := time.ParseDuration(strings.TrimSpace(raw))
	if err != nil {
		return 0, ValidationError{Field: key, Message: fmt.Sprintf("invalid duration %q", raw)}
	}
	return value, nil
}

func splitAndTrim(raw string) []string {
	var out []string
	for _, p := range strings.Split(raw, ",") {
		if trimmed := strings.TrimSpace(p); trimmed != "" {
			out = append(out, trimmed)
		}
	}
	return out
}
