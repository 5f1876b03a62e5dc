// Package config loads daemon configuration from the environment, with an
// optional .env file for local development.
package config

import (
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"
)

// Config holds the statuscope daemon configuration.
type Config struct {
	// BackendBaseURL is the status backend API base URL.
	BackendBaseURL string

	// ListenAddr is the local API listen address.
	ListenAddr string

	// PageSize per product listing request.
	PageSize int

	// RefreshInterval between background refresh ticks.
	RefreshInterval time.Duration

	// DebounceDelay applied to query changes.
	DebounceDelay time.Duration

	// RequestTimeout for individual backend calls.
	RequestTimeout time.Duration

	// Environment name (development, production).
	Environment string

	// OTLPEndpoint for telemetry export; telemetry is disabled unless
	// OTELEnabled is set.
	OTLPEndpoint string
	OTELEnabled  bool
}

// Load reads configuration from the environment. A missing .env file is
// not an error.
func Load() Config {
	_ = godotenv.Load()

	return Config{
		BackendBaseURL:  getEnv("STATUSCOPE_BACKEND_URL", "http://localhost:8000/api"),
		ListenAddr:      getEnv("STATUSCOPE_LISTEN_ADDR", ":8080"),
		PageSize:        getEnvInt("STATUSCOPE_PAGE_SIZE", 10),
		RefreshInterval: getEnvDuration("STATUSCOPE_REFRESH_INTERVAL", 30*time.Second),
		DebounceDelay:   getEnvDuration("STATUSCOPE_QUERY_DEBOUNCE", 300*time.Millisecond),
		RequestTimeout:  getEnvDuration("STATUSCOPE_REQUEST_TIMEOUT", 10*time.Second),
		Environment:     getEnv("APP_ENV", "development"),
		OTLPEndpoint:    getEnv("OTEL_EXPORTER_OTLP_ENDPOINT", "localhost:4317"),
		OTELEnabled:     getEnv("OTEL_ENABLED", "") == "true",
	}
}

func getEnv(key, fallback string) string {
	if value, ok := os.LookupEnv(key); ok && value != "" {
		return value
	}
	return fallback
}

func getEnvInt(key string, fallback int) int {
	if value, ok := os.LookupEnv(key); ok {
		if parsed, err := strconv.Atoi(value); err == nil && parsed > 0 {
			return parsed
		}
	}
	return fallback
}

func getEnvDuration(key string, fallback time.Duration) time.Duration {
	if value, ok := os.LookupEnv(key); ok {
		if parsed, err := time.ParseDuration(value); err == nil && parsed > 0 {
			return parsed
		}
	}
	return fallback
}
