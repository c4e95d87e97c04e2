package configuration

import (
	"fmt"
	"os"
	"time"

	"github.com/pelletier/go-toml/v2"
)

// fileConfig is the TOML wire schema. Durations are expressed in seconds so
// config files stay free of Go-specific duration syntax.
type fileConfig struct {
	Endpoint           string `toml:"endpoint"`
	HTTPTimeoutSeconds int    `toml:"http_timeout_seconds"`
	TokenEnv           string `toml:"token_env"`

	Poll struct {
		IntervalSeconds int `toml:"interval_seconds"`
		TimeoutSeconds  int `toml:"timeout_seconds"`
	} `toml:"poll"`

	Observability struct {
		LogLevel       string `toml:"log_level"`
		RedactPayloads *bool  `toml:"redact_payloads"`
	} `toml:"observability"`
}

// LoadFile reads a TOML config file and overlays it on DefaultConfig.
// Unset fields keep their defaults.
func LoadFile(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}
	return parse(data)
}

// parse decodes TOML bytes into a Config overlaid on defaults.
func parse(data []byte) (*Config, error) {
	var fc fileConfig
	if err := toml.Unmarshal(data, &fc); err != nil {
		return nil, fmt.Errorf("failed to parse config: %w", err)
	}

	cfg := DefaultConfig()

	if fc.Endpoint != "" {
		cfg.Endpoint = fc.Endpoint
	}
	if fc.HTTPTimeoutSeconds > 0 {
		cfg.HTTPTimeout = time.Duration(fc.HTTPTimeoutSeconds) * time.Second
	}
	if fc.TokenEnv != "" {
		cfg.TokenEnv = fc.TokenEnv
	}
	if fc.Poll.IntervalSeconds > 0 {
		cfg.Poll.Interval = time.Duration(fc.Poll.IntervalSeconds) * time.Second
	}
	if fc.Poll.TimeoutSeconds > 0 {
		cfg.Poll.Timeout = time.Duration(fc.Poll.TimeoutSeconds) * time.Second
	}
	if fc.Observability.LogLevel != "" {
		cfg.Observability.LogLevel = fc.Observability.LogLevel
	}
	if fc.Observability.RedactPayloads != nil {
		cfg.Observability.RedactPayloads = *fc.Observability.RedactPayloads
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}
