package config

import (
	"os"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDefault(t *testing.T) {
	cfg := Default()

	assert.Equal(t, "7070", cfg.Server.Port)
	assert.Equal(t, "0.0.0.0", cfg.Server.Host)

	assert.Equal(t, "info", cfg.Logging.Level)
	assert.False(t, cfg.Logging.Development)

	assert.Equal(t, 30, cfg.Session.TimeoutSeconds)
	assert.Equal(t, 8192, cfg.Session.BufferSize)
	assert.False(t, cfg.Session.Constrain)
}

func TestLoadOrDefault(t *testing.T) {
	cfg := LoadOrDefault()

	assert.NotNil(t, cfg)
	assert.Equal(t, "7070", cfg.Server.Port)
	assert.Equal(t, "info", cfg.Logging.Level)
}

func TestLoadWithEnvironmentVariables(t *testing.T) {
	envVars := map[string]string{
		"PORT":                "9000",
		"HOST":                "127.0.0.1",
		"LOG_LEVEL":           "debug",
		"LOG_DEV":             "true",
		"SESSION_TIMEOUT":     "5",
		"SESSION_BUFFER_SIZE": "4096",
		"SESSION_CONSTRAIN":   "true",
	}
	for key, value := range envVars {
		err := os.Setenv(key, value)
		require.NoError(t, err)
		defer os.Unsetenv(key)
	}

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, "9000", cfg.Server.Port)
	assert.Equal(t, "127.0.0.1", cfg.Server.Host)

	assert.Equal(t, "debug", cfg.Logging.Level)
	assert.True(t, cfg.Logging.Development)

	assert.Equal(t, 5, cfg.Session.TimeoutSeconds)
	assert.Equal(t, 4096, cfg.Session.BufferSize)
	assert.True(t, cfg.Session.Constrain)
}

func TestLoadWithPartialEnvironmentVariables(t *testing.T) {
	err := os.Setenv("SESSION_TIMEOUT", "120")
	require.NoError(t, err)
	defer os.Unsetenv("SESSION_TIMEOUT")

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, 120, cfg.Session.TimeoutSeconds)

	// Defaults still apply for everything else.
	assert.Equal(t, "7070", cfg.Server.Port)
	assert.Equal(t, 8192, cfg.Session.BufferSize)
}

func TestSessionTimeoutDuration(t *testing.T) {
	tests := []struct {
		name    string
		seconds int
		want    time.Duration
	}{
		{name: "default", seconds: 30, want: 30 * time.Second},
		{name: "short", seconds: 1, want: time.Second},
		{name: "long", seconds: 300, want: 5 * time.Minute},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			sc := SessionConfig{TimeoutSeconds: tt.seconds}
			assert.Equal(t, tt.want, sc.Timeout())
		})
	}
}
