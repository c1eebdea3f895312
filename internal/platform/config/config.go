// Package config loads and validates application configuration from
// environment variables.
package config

import (
	"fmt"
	"log/slog"
	"os"
	"strings"
	"time"
)

// Config holds all configuration values for the sync daemon.
type Config struct {
	// StorageBackend selects the trip store adapter: memory, postgres, or rtdb.
	StorageBackend string

	// DatabaseURL is the Postgres connection string. Required for the
	// postgres backend.
	DatabaseURL string

	// RTDBURL is the Realtime Database url. Required for the rtdb backend.
	RTDBURL string
	// RTDBCredentialsFile points at a service-account key file; empty means
	// ambient application-default credentials.
	RTDBCredentialsFile string

	// SessionSecret signs session tokens. Required.
	SessionSecret string
	SessionTTL    time.Duration

	// OpsPort is the TCP port the ops HTTP server listens on.
	OpsPort string

	// CountdownInterval is the countdown recomputation tick. Values above
	// one minute are clamped by the tracker.
	CountdownInterval time.Duration

	// PrefsFile is the JSON file backing client preferences.
	PrefsFile string

	// LogLevel controls the minimum log level: debug, info, warn, error.
	LogLevel string

	// DevUserEmail/DevUserPassword/DevUserID seed a local login for
	// development. All three must be set together; empty means no seeding.
	DevUserEmail    string
	DevUserPassword string
	DevUserID       string
}

// Load reads configuration from environment variables and returns a Config.
// Returns an error listing any required variables that are not set.
func Load() (Config, error) {
	cfg := Config{
		StorageBackend:      getenv("STORAGE_BACKEND", "memory"),
		DatabaseURL:         os.Getenv("DATABASE_URL"),
		RTDBURL:             os.Getenv("RTDB_URL"),
		RTDBCredentialsFile: os.Getenv("RTDB_CREDENTIALS_FILE"),
		SessionSecret:       os.Getenv("SESSION_SECRET"),
		SessionTTL:          24 * time.Hour,
		OpsPort:             getenv("OPS_PORT", "8080"),
		CountdownInterval:   time.Minute,
		PrefsFile:           getenv("PREFS_FILE", "tripsync_prefs.json"),
		LogLevel:            getenv("LOG_LEVEL", "info"),
		DevUserEmail:        os.Getenv("DEV_USER_EMAIL"),
		DevUserPassword:     os.Getenv("DEV_USER_PASSWORD"),
		DevUserID:           os.Getenv("DEV_USER_ID"),
	}

	if v := os.Getenv("SESSION_TTL"); v != "" {
		d, err := time.ParseDuration(v)
		if err != nil {
			return Config{}, fmt.Errorf("SESSION_TTL must be a duration (e.g. 24h): %w", err)
		}
		cfg.SessionTTL = d
	}
	if v := os.Getenv("COUNTDOWN_INTERVAL"); v != "" {
		d, err := time.ParseDuration(v)
		if err != nil {
			return Config{}, fmt.Errorf("COUNTDOWN_INTERVAL must be a duration (e.g. 30s): %w", err)
		}
		cfg.CountdownInterval = d
	}

	var missing []string
	if cfg.SessionSecret == "" {
		missing = append(missing, "SESSION_SECRET")
	}
	switch cfg.StorageBackend {
	case "memory":
	case "postgres":
		if cfg.DatabaseURL == "" {
			missing = append(missing, "DATABASE_URL")
		}
	case "rtdb":
		if cfg.RTDBURL == "" {
			missing = append(missing, "RTDB_URL")
		}
	default:
		return Config{}, fmt.Errorf("STORAGE_BACKEND must be memory, postgres, or rtdb (got %q)", cfg.StorageBackend)
	}
	if len(missing) > 0 {
		return Config{}, fmt.Errorf("required environment variables not set: %s", strings.Join(missing, ", "))
	}

	return cfg, nil
}

// SlogLevel maps the configured level name onto a slog level.
func (c Config) SlogLevel() (slog.Level, error) {
	switch c.LogLevel {
	case "debug":
		return slog.LevelDebug, nil
	case "info", "":
		return slog.LevelInfo, nil
	case "warn":
		return slog.LevelWarn, nil
	case "error":
		return slog.LevelError, nil
	default:
		return slog.LevelInfo, fmt.Errorf("LOG_LEVEL must be debug, info, warn, or error (got %q)", c.LogLevel)
	}
}

func getenv(k, def string) string {
	if v := os.Getenv(k); v != "" {
		return v
	}
	return def
}
