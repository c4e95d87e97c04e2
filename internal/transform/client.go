// Package transform provides the client for the remote code-transformation
// service. It exposes status and plan queries through a middleware-chained
// HTTP pipeline with structured logging and a typed error taxonomy.
//
// Architecture:
//   - Thin Client interface mapping domain types to service calls
//   - Middleware chain for composable observability
//   - Typed errors distinguishing the recoverable authorization class
//     (access denied, invalid grant) from terminal failures
package transform

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/ahrav/go-modernize/internal/domain"
	"github.com/ahrav/go-modernize/internal/transform/auth"
	"github.com/ahrav/go-modernize/internal/transform/configuration"
	"github.com/ahrav/go-modernize/internal/transform/transport"
)

// StatusResult is the outcome of one status query: the reported status, the
// job record snapshot, and any attached progress updates.
type StatusResult struct {
	Status          domain.TransformationStatus
	Record          domain.JobRecord
	ProgressUpdates []domain.ProgressUpdate
}

// Client provides access to the remote transformation service.
// Implementations must surface authorization failures as the typed errors
// in the errors package so callers can apply the refresh-once policy.
type Client interface {
	// GetTransformationStatus queries the current job status, record, and
	// progress updates.
	GetTransformationStatus(ctx context.Context, jobID domain.JobID) (*StatusResult, error)

	// GetTransformationPlan fetches the transformation plan for a job.
	// Only meaningful once the job has reached a planning-complete status.
	GetTransformationPlan(ctx context.Context, jobID domain.JobID) (*domain.TransformationPlan, error)
}

// client implements Client through the transport middleware pipeline.
type client struct {
	config  *configuration.Config
	handler transport.Handler
}

// NewClient creates a transformation service client with the logging
// middleware pipeline. A nil token source sends unauthenticated requests
// (test servers).
func NewClient(cfg *configuration.Config, tokens auth.TokenSource, logger *slog.Logger) (Client, error) {
	if cfg == nil {
		cfg = configuration.DefaultConfig()
	}
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid client configuration: %w", err)
	}

	httpClient := cfg.HTTPClient
	if httpClient == nil {
		httpTransport := &http.Transport{
			Proxy:                 http.ProxyFromEnvironment,
			MaxIdleConns:          configuration.DefaultMaxIdleConns,
			IdleConnTimeout:       configuration.DefaultIdleTimeoutSeconds * time.Second,
			TLSHandshakeTimeout:   configuration.DefaultTLSTimeoutSeconds * time.Second,
			ExpectContinueTimeout: 1 * time.Second,
		}
		httpClient = &http.Client{
			Transport: httpTransport,
			Timeout:   cfg.HTTPTimeout,
		}
	}

	var tokenProvider transport.TokenProvider
	if tokens != nil {
		tokenProvider = tokens
	}
	coreHandler := transport.NewHTTPHandler(httpClient, cfg.Endpoint, tokenProvider)

	handler := transport.Chain(coreHandler,
		NewLoggingMiddleware(cfg.Observability, logger, nil),
	)

	return &client{config: cfg, handler: handler}, nil
}

// GetTransformationStatus implements Client.
func (c *client) GetTransformationStatus(ctx context.Context, jobID domain.JobID) (*StatusResult, error) {
	resp, err := c.handler.Handle(ctx, &transport.Request{
		Operation: transport.OpGetStatus,
		JobID:     jobID,
	})
	if err != nil {
		return nil, err
	}

	return &StatusResult{
		Status:          resp.Status,
		Record:          resp.Record,
		ProgressUpdates: resp.ProgressUpdates,
	}, nil
}

// GetTransformationPlan implements Client.
func (c *client) GetTransformationPlan(ctx context.Context, jobID domain.JobID) (*domain.TransformationPlan, error) {
	resp, err := c.handler.Handle(ctx, &transport.Request{
		Operation: transport.OpGetPlan,
		JobID:     jobID,
	})
	if err != nil {
		return nil, err
	}

	return &domain.TransformationPlan{
		JobID: jobID,
		Body:  resp.Plan,
	}, nil
}
