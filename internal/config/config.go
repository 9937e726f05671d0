// Package config loads and validates application configuration from environment variables.
package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"
)

// Config holds all configuration values for the API server.
// Values are populated by Load from environment variables.
type Config struct {
	// Port is the TCP port the HTTP server listens on. Defaults to "8080".
	Port string

	// DatabaseURL is the Postgres connection string. Required.
	DatabaseURL string

	// OpenAIAPIKey authenticates requests to the OpenAI API. Required.
	OpenAIAPIKey string

	// OpenAIModel is the chat model used for assistant replies.
	// Defaults to "gpt-4o-mini".
	OpenAIModel string

	// LogLevel controls the minimum log level. Defaults to "info".
	// Valid values: debug, info, warn, error.
	LogLevel string

	// CORSOrigins is the list of allowed cross-origin request origins.
	// Defaults to ["http://localhost:5173"] (Vite dev server).
	// Set CORS_ORIGINS to a comma-separated list to override.
	CORSOrigins []string

	// StagingTTL is how long a proposed change stays confirmable.
	// Defaults to 15m. Set STAGING_TTL to any time.ParseDuration string.
	StagingTTL time.Duration

	// HistoryLimit is the number of conversation turns kept per plan.
	// Defaults to 20.
	HistoryLimit int
}

// Load reads configuration from environment variables and returns a Config.
// Returns an error listing any required variables that are not set.
func Load() (Config, error) {
	cfg := Config{
		Port:        getEnv("PORT", "8080"),
		OpenAIModel: getEnv("OPENAI_MODEL", "gpt-4o-mini"),
		LogLevel:    getEnv("LOG_LEVEL", "info"),
		CORSOrigins: splitCSV(getEnv("CORS_ORIGINS", "http://localhost:5173")),
	}

	ttl, err := time.ParseDuration(getEnv("STAGING_TTL", "15m"))
	if err != nil {
		return Config{}, fmt.Errorf("invalid STAGING_TTL: %w", err)
	}
	cfg.StagingTTL = ttl

	limit, err := strconv.Atoi(getEnv("HISTORY_LIMIT", "20"))
	if err != nil {
		return Config{}, fmt.Errorf("invalid HISTORY_LIMIT: %w", err)
	}
	cfg.HistoryLimit = limit

	var missing []string

	cfg.DatabaseURL = os.Getenv("DATABASE_URL")
	if cfg.DatabaseURL == "" {
		missing = append(missing, "DATABASE_URL")
	}

	cfg.OpenAIAPIKey = os.Getenv("OPENAI_API_KEY")
	if cfg.OpenAIAPIKey == "" {
		missing = append(missing, "OPENAI_API_KEY")
	}

	if len(missing) > 0 {
		return Config{}, fmt.Errorf("required environment variables not set: %s", strings.Join(missing, ", "))
	}

	return cfg, nil
}

// getEnv returns the value of the environment variable named by key,
// or fallback if the variable is not set or is empty.
func getEnv(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

// splitCSV splits a comma-separated string into a trimmed slice, ignoring empty entries.
func splitCSV(s string) []string {
	var out []string
	for _, part := range strings.Split(s, ",") {
		if t := strings.TrimSpace(part); t != "" {
			out = append(out, t)
		}
	}
	return out
}
