package config

import (
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestLoad_Defaults(t *testing.T) {
	// Blank values read as unset.
	for _, key := range []string{"PORT", "HOST", "ENVIRONMENT", "OPENROUTER_API_KEY",
		"OPENROUTER_MODEL", "REQUEST_TIMEOUT", "MAX_RETRIES", "ENABLE_STREAMING"} {
		t.Setenv(key, "")
	}

	cfg := Load()

	assert.Equal(t, "8080", cfg.Port)
	assert.Equal(t, "localhost", cfg.Host)
	assert.Equal(t, "development", cfg.Environment)
	assert.Equal(t, "deepseek/deepseek-r1-distill-llama-70b:free", cfg.OpenRouterModel)
	assert.Equal(t, "https://openrouter.ai/api/v1/chat/completions", cfg.OpenRouterBaseURL)
	assert.Equal(t, 30*time.Second, cfg.RequestTimeout)
	assert.Equal(t, 3, cfg.MaxRetries)
	assert.Equal(t, 60, cfg.RateLimitPerMinute)
	assert.Equal(t, 10000, cfg.MaxCodeLength)
	assert.Equal(t, 50, cfg.MaxConversationHistory)
	assert.True(t, cfg.EnableStreaming)
	assert.True(t, cfg.EnableMetrics)
}

func TestLoad_EnvironmentOverrides(t *testing.T) {
	t.Setenv("PORT", "9090")
	t.Setenv("ENVIRONMENT", "production")
	t.Setenv("OPENROUTER_API_KEY", "test-key")
	t.Setenv("OPENROUTER_MODEL", "some/other-model")
	t.Setenv("REQUEST_TIMEOUT", "5")
	t.Setenv("MAX_RETRIES", "7")
	t.Setenv("ENABLE_STREAMING", "false")

	cfg := Load()

	assert.Equal(t, "9090", cfg.Port)
	assert.Equal(t, "production", cfg.Environment)
	assert.Equal(t, "test-key", cfg.OpenRouterAPIKey)
	assert.Equal(t, "some/other-model", cfg.OpenRouterModel)
	assert.Equal(t, 5*time.Second, cfg.RequestTimeout)
	assert.Equal(t, 7, cfg.MaxRetries)
	assert.False(t, cfg.EnableStreaming)
	assert.True(t, cfg.IsProduction())
	assert.True(t, cfg.HasCredential())
}

func TestLoad_InvalidValuesFallBack(t *testing.T) {
	t.Setenv("MAX_RETRIES", "not-a-number")
	t.Setenv("ENABLE_METRICS", "not-a-bool")

	cfg := Load()

	assert.Equal(t, 3, cfg.MaxRetries)
	assert.True(t, cfg.EnableMetrics)
}

func TestConfig_Validate(t *testing.T) {
	tests := []struct {
		name      string
		mutate    func(*Config)
		wantError string
	}{
		{
			name:      "valid defaults",
			mutate:    func(c *Config) {},
			wantError: "",
		},
		{
			name:      "missing port",
			mutate:    func(c *Config) { c.Port = "" },
			wantError: "PORT",
		},
		{
			name:      "bad log level",
			mutate:    func(c *Config) { c.LogLevel = "verbose" },
			wantError: "LOG_LEVEL",
		},
		{
			name:      "bad environment",
			mutate:    func(c *Config) { c.Environment = "qa" },
			wantError: "ENVIRONMENT",
		},
		{
			name:      "zero retries",
			mutate:    func(c *Config) { c.MaxRetries = 0 },
			wantError: "MAX_RETRIES",
		},
		{
			name:      "non-positive timeout",
			mutate:    func(c *Config) { c.RequestTimeout = 0 },
			wantError: "REQUEST_TIMEOUT",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := Load()
			tt.mutate(cfg)

			errors := cfg.Validate()
			if tt.wantError == "" {
				assert.Empty(t, errors)
				return
			}

			found := false
			for _, e := range errors {
				if strings.Contains(e, tt.wantError) {
					found = true
				}
			}
			assert.True(t, found, "expected a validation error mentioning %s, got %v", tt.wantError, errors)
		})
	}
}

func TestConfig_GetServerAddress(t *testing.T) {
	cfg := &Config{Host: "localhost", Port: "8080"}
	assert.Equal(t, "localhost:8080", cfg.GetServerAddress())
}
