package configuration

import "time"

// HTTP and connection constants.
const (
	DefaultMaxIdleConns       = 100
	DefaultIdleTimeoutSeconds = 90
	DefaultTLSTimeoutSeconds  = 10
	DefaultHTTPTimeoutSeconds = 30
)

// Poll loop constants.
const (
	// DefaultPollInterval matches the cadence the remote service expects
	// from well-behaved clients.
	DefaultPollInterval = 5 * time.Second

	// DefaultPollTimeout bounds a transformation job watch; large code
	// bases routinely take tens of minutes.
	DefaultPollTimeout = 2 * time.Hour
)

// DefaultTokenEnv names the environment variable the worker reads the
// bearer token from when no token source is injected.
const DefaultTokenEnv = "TRANSFORM_BEARER_TOKEN"

// DefaultConfig returns production-ready configuration with sensible
// defaults. The endpoint must still be supplied by the caller or a config
// file.
func DefaultConfig() *Config {
	return &Config{
		HTTPTimeout: DefaultHTTPTimeoutSeconds * time.Second,
		TokenEnv:    DefaultTokenEnv,
		Poll: PollConfig{
			Interval: DefaultPollInterval,
			Timeout:  DefaultPollTimeout,
		},
		Observability: ObservabilityConfig{
			LogLevel:       "info",
			RedactPayloads: true,
		},
	}
}
