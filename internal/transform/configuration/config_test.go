package configuration

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDefaultConfig(t *testing.T) {
	cfg := DefaultConfig()

	assert.Equal(t, 30*time.Second, cfg.HTTPTimeout)
	assert.Equal(t, DefaultTokenEnv, cfg.TokenEnv)
	assert.Equal(t, DefaultPollInterval, cfg.Poll.Interval)
	assert.Equal(t, DefaultPollTimeout, cfg.Poll.Timeout)
	assert.Equal(t, "info", cfg.Observability.LogLevel)
	assert.True(t, cfg.Observability.RedactPayloads)
}

func TestConfig_Validate(t *testing.T) {
	valid := DefaultConfig()
	valid.Endpoint = "https://transform.example.com"
	require.NoError(t, valid.Validate())

	t.Run("missing endpoint", func(t *testing.T) {
		cfg := DefaultConfig()
		assert.Error(t, cfg.Validate())
	})

	t.Run("negative interval", func(t *testing.T) {
		cfg := DefaultConfig()
		cfg.Endpoint = "https://transform.example.com"
		cfg.Poll.Interval = -time.Second
		assert.Error(t, cfg.Validate())
	})

	t.Run("negative timeout", func(t *testing.T) {
		cfg := DefaultConfig()
		cfg.Endpoint = "https://transform.example.com"
		cfg.Poll.Timeout = -time.Second
		assert.Error(t, cfg.Validate())
	})

	t.Run("zero poll values allowed", func(t *testing.T) {
		cfg := DefaultConfig()
		cfg.Endpoint = "https://transform.example.com"
		cfg.Poll.Interval = 0
		cfg.Poll.Timeout = 0
		assert.NoError(t, cfg.Validate())
	})
}

func TestLoadFile(t *testing.T) {
	writeConfig := func(t *testing.T, content string) string {
		t.Helper()
		path := filepath.Join(t.TempDir(), "worker.toml")
		require.NoError(t, os.WriteFile(path, []byte(content), 0o600))
		return path
	}

	t.Run("full config", func(t *testing.T) {
		path := writeConfig(t, `
endpoint = "https://transform.example.com"
http_timeout_seconds = 10
token_env = "MY_TOKEN"

[poll]
interval_seconds = 2
timeout_seconds = 600

[observability]
log_level = "debug"
redact_payloads = false
`)

		cfg, err := LoadFile(path)
		require.NoError(t, err)
		assert.Equal(t, "https://transform.example.com", cfg.Endpoint)
		assert.Equal(t, 10*time.Second, cfg.HTTPTimeout)
		assert.Equal(t, "MY_TOKEN", cfg.TokenEnv)
		assert.Equal(t, 2*time.Second, cfg.Poll.Interval)
		assert.Equal(t, 10*time.Minute, cfg.Poll.Timeout)
		assert.Equal(t, "debug", cfg.Observability.LogLevel)
		assert.False(t, cfg.Observability.RedactPayloads)
	})

	t.Run("partial config keeps defaults", func(t *testing.T) {
		path := writeConfig(t, `endpoint = "https://transform.example.com"`)

		cfg, err := LoadFile(path)
		require.NoError(t, err)
		assert.Equal(t, DefaultPollInterval, cfg.Poll.Interval)
		assert.Equal(t, DefaultPollTimeout, cfg.Poll.Timeout)
		assert.True(t, cfg.Observability.RedactPayloads)
	})

	t.Run("missing endpoint fails validation", func(t *testing.T) {
		path := writeConfig(t, `[poll]
interval_seconds = 2`)

		_, err := LoadFile(path)
		assert.Error(t, err)
	})

	t.Run("malformed toml", func(t *testing.T) {
		path := writeConfig(t, `endpoint = `)

		_, err := LoadFile(path)
		assert.Error(t, err)
	})

	t.Run("missing file", func(t *testing.T) {
		_, err := LoadFile(filepath.Join(t.TempDir(), "absent.toml"))
		assert.Error(t, err)
	})
}
