// Package worker provides initialization and registration for the Temporal
// worker that runs transformation tracking. Setup logic lives here so the
// tracking package stays focused on activity logic.
package worker

import (
	"fmt"
	"log/slog"
	"os"

	"github.com/ahrav/go-modernize/internal/poller"
	"github.com/ahrav/go-modernize/internal/transform"
	"github.com/ahrav/go-modernize/internal/transform/auth"
	"github.com/ahrav/go-modernize/internal/transform/configuration"
)

// TaskQueue is the Temporal task queue for transformation tracking.
const TaskQueue = "transformation-tracking"

// NewLogger builds the process logger from the configured level.
// Unknown levels fall back to info.
func NewLogger(cfg *configuration.Config) *slog.Logger {
	var level slog.Level
	switch cfg.Observability.LogLevel {
	case "debug":
		level = slog.LevelDebug
	case "warn":
		level = slog.LevelWarn
	case "error":
		level = slog.LevelError
	default:
		level = slog.LevelInfo
	}
	return slog.New(slog.NewJSONHandler(os.Stderr, &slog.HandlerOptions{Level: level}))
}

// InitializePoller creates the status poller with its transformation client
// and credential source. The credential comes from the environment variable
// named in the config, re-read on each refresh so an external rotation
// process can supply fresh tokens.
func InitializePoller(cfg *configuration.Config, logger *slog.Logger) (*poller.Poller, error) {
	tokens := auth.NewEnvTokenSource(cfg.TokenEnv)

	client, err := transform.NewClient(cfg, tokens, logger)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize transformation client: %w", err)
	}

	return poller.New(client, tokens, logger), nil
}
