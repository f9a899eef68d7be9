package config

import (
	"os"
	"strconv"
	"strings"
	"time"
)

// Config holds all configuration for the application
type Config struct {
	// Server Configuration
	Port        string
	Host        string
	Environment string

	// OpenRouter Configuration
	OpenRouterAPIKey  string
	OpenRouterModel   string
	OpenRouterBaseURL string

	// Logging Configuration
	LogLevel  string
	LogFormat string

	// Completion Client Configuration
	RequestTimeout     time.Duration
	MaxRetries         int
	RateLimitPerMinute int

	// Tutoring Configuration
	MaxCodeLength          int
	MaxConversationHistory int

	// Feature Toggles
	EnableStreaming bool
	EnableMetrics   bool
}

// Load loads configuration from environment variables with defaults
func Load() *Config {
	return &Config{
		Port:        getEnv("PORT", "8080"),
		Host:        getEnv("HOST", "localhost"),
		Environment: getEnv("ENVIRONMENT", "development"),

		OpenRouterAPIKey:  getEnv("OPENROUTER_API_KEY", ""),
		OpenRouterModel:   getEnv("OPENROUTER_MODEL", "deepseek/deepseek-r1-distill-llama-70b:free"),
		OpenRouterBaseURL: getEnv("OPENROUTER_BASE_URL", "https://openrouter.ai/api/v1/chat/completions"),

		LogLevel:  strings.ToLower(getEnv("LOG_LEVEL", "info")),
		LogFormat: strings.ToLower(getEnv("LOG_FORMAT", "json")),

		RequestTimeout:     time.Duration(getEnvAsInt("REQUEST_TIMEOUT", 30)) * time.Second,
		MaxRetries:         getEnvAsInt("MAX_RETRIES", 3),
		RateLimitPerMinute: getEnvAsInt("RATE_LIMIT_PER_MINUTE", 60),

		MaxCodeLength:          getEnvAsInt("MAX_CODE_LENGTH", 10000),
		MaxConversationHistory: getEnvAsInt("MAX_CONVERSATION_HISTORY", 50),

		EnableStreaming: getEnvAsBool("ENABLE_STREAMING", true),
		EnableMetrics:   getEnvAsBool("ENABLE_METRICS", true),
	}
}

// getEnv gets an environment variable with a fallback default value
func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

// getEnvAsInt gets an environment variable as integer with a fallback default value
func getEnvAsInt(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if intValue, err := strconv.Atoi(value); err == nil {
			return intValue
		}
	}
	return defaultValue
}

// getEnvAsBool gets an environment variable as boolean with a fallback default value
func getEnvAsBool(key string, defaultValue bool) bool {
	if value := os.Getenv(key); value != "" {
		if boolValue, err := strconv.ParseBool(value); err == nil {
			return boolValue
		}
	}
	return defaultValue
}

// IsDevelopment returns true if the environment is development
func (c *Config) IsDevelopment() bool {
	return c.Environment == "development"
}

// IsProduction returns true if the environment is production
func (c *Config) IsProduction() bool {
	return c.Environment == "production"
}

// HasCredential reports whether an API key is configured. The completion
// client refuses requests without one; the server still starts so the
// static-check endpoints stay usable.
func (c *Config) HasCredential() bool {
	return c.OpenRouterAPIKey != ""
}

// GetServerAddress returns the full server address
func (c *Config) GetServerAddress() string {
	return c.Host + ":" + c.Port
}

// Validate validates the configuration and returns any errors
func (c *Config) Validate() []string {
	var errors []string

	if c.Port == "" {
		errors = append(errors, "PORT is required")
	}

	if c.Host == "" {
		errors = append(errors, "HOST is required")
	}

	validLogLevels := []string{"debug", "info", "warn", "error"}
	if !contains(validLogLevels, c.LogLevel) {
		errors = append(errors, "LOG_LEVEL must be one of: debug, info, warn, error")
	}

	validLogFormats := []string{"json", "text"}
	if !contains(validLogFormats, c.LogFormat) {
		errors = append(errors, "LOG_FORMAT must be one of: json, text")
	}

	validEnvironments := []string{"development", "staging", "production"}
	if !contains(validEnvironments, c.Environment) {
		errors = append(errors, "ENVIRONMENT must be one of: development, staging, production")
	}

	if c.MaxRetries < 1 {
		errors = append(errors, "MAX_RETRIES must be at least 1")
	}

	if c.RequestTimeout <= 0 {
		errors = append(errors, "REQUEST_TIMEOUT must be positive")
	}

	if c.MaxCodeLength < 1 {
		errors = append(errors, "MAX_CODE_LENGTH must be at least 1")
	}

	return errors
}

// contains checks if a slice contains a string
func contains(slice []string, item string) bool {
	for _, s := range slice {
		if s == item {
			return true
		}
	}
	return false
}
