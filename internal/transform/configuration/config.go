// Package configuration holds the transformation client and poller
// configuration with production defaults and TOML file loading.
package configuration

import (
	"errors"
	"fmt"
	"net/http"
	"time"
)

// Configuration validation errors.
var (
	errEndpointRequired = errors.New("endpoint is required")
	errIntervalNegative = errors.New("poll interval must be >= 0")
	errTimeoutNegative  = errors.New("poll timeout must be >= 0")
)

// Config holds configuration for the transformation client and the poll
// loop driving it.
type Config struct {
	// Endpoint is the transformation service base URL.
	Endpoint string `toml:"endpoint" json:"endpoint"`

	// HTTPTimeout bounds individual HTTP calls.
	HTTPTimeout time.Duration `toml:"http_timeout" json:"http_timeout"`

	// HTTPClient overrides the default HTTP client when set.
	HTTPClient *http.Client `toml:"-" json:"-"`

	// TokenEnv names the environment variable carrying the bearer token.
	TokenEnv string `toml:"token_env" json:"token_env"`

	// Poll configures loop pacing.
	Poll PollConfig `toml:"poll" json:"poll"`

	// Observability configures logging behavior.
	Observability ObservabilityConfig `toml:"observability" json:"observability"`
}

// PollConfig controls poll loop pacing. Both values may be zero, meaning no
// artificial delay and no deadline (test mode).
type PollConfig struct {
	// Interval is the wait between status queries.
	Interval time.Duration `toml:"interval" json:"interval"`

	// Timeout bounds the loop in wall-clock time since loop start.
	Timeout time.Duration `toml:"timeout" json:"timeout"`
}

// ObservabilityConfig controls structured logging for client operations.
type ObservabilityConfig struct {
	// LogLevel is the minimum slog level ("debug", "info", "warn", "error").
	LogLevel string `toml:"log_level" json:"log_level"`

	// RedactPayloads suppresses progress-update descriptions in logs;
	// payloads may contain customer source metadata.
	RedactPayloads bool `toml:"redact_payloads" json:"redact_payloads"`
}

// Validate checks the configuration for structural problems.
func (c *Config) Validate() error {
	if c.Endpoint == "" {
		return errEndpointRequired
	}
	if c.Poll.Interval < 0 {
		return fmt.Errorf("%w, got %v", errIntervalNegative, c.Poll.Interval)
	}
	if c.Poll.Timeout < 0 {
		return fmt.Errorf("%w, got %v", errTimeoutNegative, c.Poll.Timeout)
	}
	return nil
}
