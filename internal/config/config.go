// Package config loads and validates application configuration from environment variables.
package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"

	"github.com/pkordes/permit-log/backend/internal/domain"
)

// Config holds all configuration values for the API server.
// Values are populated by Load from environment variables.
type Config struct {
	// Port is the TCP port the HTTP server listens on. Defaults to "8080".
	Port string

	// DatabaseURL is the Postgres connection string. Required.
	DatabaseURL string

	// JWTSecret is the HMAC key used to verify identity-provider tokens. Required.
	JWTSecret string

	// LogLevel controls the minimum log level. Defaults to "info".
	// Valid values: debug, info, warn, error.
	LogLevel string

	// CORSOrigins is the list of allowed cross-origin request origins.
	// Defaults to ["http://localhost:5173"] (Vite dev server).
	// Set CORS_ORIGINS to a comma-separated list to override.
	CORSOrigins []string

	// NightWindow is the night-driving band, parsed from NIGHT_START and
	// NIGHT_END ("HH:MM"). Defaults to 21:00-06:00.
	NightWindow domain.NightWindow

	// MinTripMinutes is the shortest timer run that may be stopped.
	// Defaults to 5.
	MinTripMinutes int

	// MaxBodyBytes caps incoming request body sizes. Defaults to 1 MiB.
	MaxBodyBytes int64
}

// Load reads configuration from environment variables and returns a Config.
// Returns an error listing any required variables that are not set, or
// describing the first malformed value.
func Load() (Config, error) {
	cfg := Config{
		Port:         getEnv("PORT", "8080"),
		LogLevel:     getEnv("LOG_LEVEL", "info"),
		CORSOrigins:  splitCSV(getEnv("CORS_ORIGINS", "http://localhost:5173")),
		MaxBodyBytes: 1 << 20,
	}

	var missing []string

	cfg.DatabaseURL = os.Getenv("DATABASE_URL")
	if cfg.DatabaseURL == "" {
		missing = append(missing, "DATABASE_URL")
	}
	cfg.JWTSecret = os.Getenv("JWT_SECRET")
	if cfg.JWTSecret == "" {
		missing = append(missing, "JWT_SECRET")
	}
	if len(missing) > 0 {
		return Config{}, fmt.Errorf("required environment variables not set: %s", strings.Join(missing, ", "))
	}

	nightStart, err := domain.ParseTimeOfDay(getEnv("NIGHT_START", "21:00"))
	if err != nil {
		return Config{}, fmt.Errorf("NIGHT_START: %w", err)
	}
	nightEnd, err := domain.ParseTimeOfDay(getEnv("NIGHT_END", "06:00"))
	if err != nil {
		return Config{}, fmt.Errorf("NIGHT_END: %w", err)
	}
	cfg.NightWindow = domain.NightWindow{Start: nightStart, End: nightEnd}

	cfg.MinTripMinutes, err = strconv.Atoi(getEnv("MIN_TRIP_MINUTES", "5"))
	if err != nil || cfg.MinTripMinutes < 0 {
		return Config{}, fmt.Errorf("MIN_TRIP_MINUTES must be a non-negative integer")
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
