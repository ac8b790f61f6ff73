package app

import (
	"log/slog"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func setRequired(t *testing.T) {
	t.Helper()
	t.Setenv("SESSION_SECRET", "s3cret")
	t.Setenv("CSRF_SECRET", "csrf")
}

func TestLoadConfigDefaults(t *testing.T) {
	setRequired(t)
	cfg, err := LoadConfig()
	require.NoError(t, err)

	assert.Equal(t, ":8080", cfg.AppAddr)
	assert.Equal(t, "http://127.0.0.1:8000", cfg.APIBaseURL)
	assert.Equal(t, "/api", cfg.APIPrefix)
	assert.Equal(t, 20*time.Second, cfg.APITimeout)
	assert.Equal(t, 50, cfg.HistoryLimit)
	assert.Equal(t, "Europe/Moscow", cfg.Location().String())
	assert.False(t, cfg.IsProduction())
	assert.False(t, cfg.WorkerEnabled())
}

func TestLoadConfigRequiresSecrets(t *testing.T) {
	t.Setenv("SESSION_SECRET", "")
	t.Setenv("CSRF_SECRET", "")
	_, err := LoadConfig()
	assert.Error(t, err)
}

func TestLoadConfigValidates(t *testing.T) {
	setRequired(t)
	t.Setenv("DISPLAY_TZ", "Mars/Olympus")
	_, err := LoadConfig()
	assert.ErrorContains(t, err, "display timezone")

	t.Setenv("DISPLAY_TZ", "UTC")
	t.Setenv("HISTORY_LIMIT", "0")
	_, err = LoadConfig()
	assert.ErrorContains(t, err, "history limit")
}

func TestWorkerEnabled(t *testing.T) {
	setRequired(t)
	t.Setenv("WORKER_USERNAME", "robot")
	t.Setenv("WORKER_PASSWORD", "pw")
	cfg, err := LoadConfig()
	require.NoError(t, err)
	assert.True(t, cfg.WorkerEnabled())
	assert.Equal(t, "@every 5m", cfg.ImportCron)
}

func TestLogLevel(t *testing.T) {
	assert.Equal(t, slog.LevelDebug, logLevel(&Config{LogLevel: "debug"}))
	assert.Equal(t, slog.LevelWarn, logLevel(&Config{LogLevel: "WARN"}))
	assert.Equal(t, slog.LevelInfo, logLevel(&Config{LogLevel: "loud"}))
	assert.Equal(t, slog.LevelInfo, logLevel(nil))
}
