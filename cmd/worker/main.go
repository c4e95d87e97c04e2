// Command worker runs the Temporal worker hosting the transformation
// tracking workflow and activities.
package main

import (
	"flag"
	"fmt"
	"log/slog"
	"os"

	"github.com/joho/godotenv"
	"go.temporal.io/sdk/client"
	sdkworker "go.temporal.io/sdk/worker"

	"github.com/ahrav/go-modernize/internal/transform/configuration"
	"github.com/ahrav/go-modernize/internal/worker"
)

func main() {
	if err := run(); err != nil {
		fmt.Fprintf(os.Stderr, "worker: %v\n", err)
		os.Exit(1)
	}
}

func run() error {
	configPath := flag.String("config", "worker.toml", "path to the worker config file")
	temporalHost := flag.String("temporal", "", "Temporal server host:port (overrides TEMPORAL_ADDRESS)")
	flag.Parse()

	// Local development convenience; missing .env is not an error.
	_ = godotenv.Load()

	cfg, err := configuration.LoadFile(*configPath)
	if err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}

	logger := worker.NewLogger(cfg)
	slog.SetDefault(logger)

	statusPoller, err := worker.InitializePoller(cfg, logger)
	if err != nil {
		return err
	}

	hostPort := *temporalHost
	if hostPort == "" {
		hostPort = os.Getenv("TEMPORAL_ADDRESS")
	}
	if hostPort == "" {
		hostPort = client.DefaultHostPort
	}

	temporalClient, err := client.Dial(client.Options{HostPort: hostPort})
	if err != nil {
		return fmt.Errorf("failed to connect to Temporal at %s: %w", hostPort, err)
	}
	defer temporalClient.Close()

	w := sdkworker.New(temporalClient, worker.TaskQueue, sdkworker.Options{})
	worker.RegisterAll(w, statusPoller, cfg)

	logger.Info("worker starting",
		"task_queue", worker.TaskQueue,
		"temporal", hostPort,
		"endpoint", cfg.Endpoint)

	if err := w.Run(sdkworker.InterruptCh()); err != nil {
		return fmt.Errorf("worker stopped: %w", err)
	}
	return nil
}
