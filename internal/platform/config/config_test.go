package config

import (
	"log/slog"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func clearEnv(t *testing.T) {
	t.Helper()
	for _, k := range []string{
		"STORAGE_BACKEND", "DATABASE_URL", "RTDB_URL", "RTDB_CREDENTIALS_FILE",
		"SESSION_SECRET", "SESSION_TTL", "OPS_PORT", "COUNTDOWN_INTERVAL",
		"PREFS_FILE", "LOG_LEVEL", "DEV_USER_EMAIL", "DEV_USER_PASSWORD", "DEV_USER_ID",
	} {
		t.Setenv(k, "")
	}
}

func TestLoadDefaults(t *testing.T) {
	clearEnv(t)
	t.Setenv("SESSION_SECRET", "s3cret")

	cfg, err := Load()
	require.NoError(t, err)
	assert.Equal(t, "memory", cfg.StorageBackend)
	assert.Equal(t, "8080", cfg.OpsPort)
	assert.Equal(t, 24*time.Hour, cfg.SessionTTL)
	assert.Equal(t, time.Minute, cfg.CountdownInterval)
	assert.Equal(t, "tripsync_prefs.json", cfg.PrefsFile)
	assert.Equal(t, "info", cfg.LogLevel)
}

func TestLoadReportsMissingVariables(t *testing.T) {
	clearEnv(t)

	_, err := Load()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "SESSION_SECRET")

	t.Setenv("SESSION_SECRET", "s3cret")
	t.Setenv("STORAGE_BACKEND", "postgres")
	_, err = Load()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "DATABASE_URL")

	t.Setenv("STORAGE_BACKEND", "rtdb")
	_, err = Load()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "RTDB_URL")
}

func TestLoadRejectsUnknownBackend(t *testing.T) {
	clearEnv(t)
	t.Setenv("SESSION_SECRET", "s3cret")
	t.Setenv("STORAGE_BACKEND", "cassandra")

	_, err := Load()
	assert.Error(t, err)
}

func TestLoadParsesDurations(t *testing.T) {
	clearEnv(t)
	t.Setenv("SESSION_SECRET", "s3cret")
	t.Setenv("SESSION_TTL", "2h")
	t.Setenv("COUNTDOWN_INTERVAL", "30s")

	cfg, err := Load()
	require.NoError(t, err)
	assert.Equal(t, 2*time.Hour, cfg.SessionTTL)
	assert.Equal(t, 30*time.Second, cfg.CountdownInterval)

	t.Setenv("SESSION_TTL", "soon")
	_, err = Load()
	assert.Error(t, err)
}

func TestSlogLevel(t *testing.T) {
	for name, want := range map[string]slog.Level{
		"debug": slog.LevelDebug,
		"info":  slog.LevelInfo,
		"warn":  slog.LevelWarn,
		"error": slog.LevelError,
	} {
		level, err := Config{LogLevel: name}.SlogLevel()
		require.NoError(t, err)
		assert.Equal(t, want, level)
	}

	_, err := Config{LogLevel: "verbose"}.SlogLevel()
	assert.Error(t, err)
}
