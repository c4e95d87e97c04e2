package transform

import (
	"context"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"github.com/ahrav/go-modernize/internal/transform/configuration"
	transformerrors "github.com/ahrav/go-modernize/internal/transform/errors"
	"github.com/ahrav/go-modernize/internal/transform/transport"
)

// Metrics provides observability data collection for client operations.
// Supports counters and histograms with tag-based dimensionality.
type Metrics interface {
	IncrementCounter(name string, tags map[string]string, value float64)
	RecordHistogram(name string, tags map[string]string, value float64)
}

// NoOpMetrics provides a no-op metrics implementation for testing and
// development.
type NoOpMetrics struct{}

// NewNoOpMetrics creates a no-op metrics collector.
func NewNoOpMetrics() *NoOpMetrics { return &NoOpMetrics{} }

func (n *NoOpMetrics) IncrementCounter(_ string, _ map[string]string, _ float64) {}

func (n *NoOpMetrics) RecordHistogram(_ string, _ map[string]string, _ float64) {}

// LoggingMiddleware provides observability for the transformation request
// lifecycle: structured logs, latency metrics, and error classification,
// with configurable redaction for progress payloads.
type LoggingMiddleware struct {
	logger         *slog.Logger
	metrics        Metrics
	redactPayloads bool
}

// NewLoggingMiddleware creates observability middleware with structured
// logging. Nil logger and metrics fall back to defaults.
func NewLoggingMiddleware(cfg configuration.ObservabilityConfig, logger *slog.Logger, metrics Metrics) transport.Middleware {
	if logger == nil {
		logger = slog.Default()
	}
	if metrics == nil {
		metrics = NewNoOpMetrics()
	}

	lm := &LoggingMiddleware{
		logger:         logger,
		metrics:        metrics,
		redactPayloads: cfg.RedactPayloads,
	}

	return lm.Middleware
}

// Middleware wraps handlers with request/response logging and metrics.
func (m *LoggingMiddleware) Middleware(next transport.Handler) transport.Handler {
	return transport.HandlerFunc(func(ctx context.Context, req *transport.Request) (*transport.Response, error) {
		requestID := req.TraceID
		if requestID == "" {
			requestID = uuid.New().String()
			req.TraceID = requestID
		}

		baseTags := map[string]string{"operation": string(req.Operation)}

		m.logger.Debug("transformation request started",
			"request_id", requestID,
			"operation", req.Operation,
			"job_id", req.JobID)
		m.metrics.IncrementCounter("transform.requests.total", baseTags, 1)

		start := time.Now()
		resp, err := next.Handle(ctx, req)
		duration := time.Since(start)

		m.metrics.RecordHistogram("transform.request.duration_ms", baseTags, float64(duration.Milliseconds()))

		if err != nil {
			errorType := string(transformerrors.ErrorTypeUnknown)
			if tErr := transformerrors.ClassifyTransformError(err); tErr != nil {
				errorType = string(tErr.Type)
			}
			errorTags := map[string]string{
				"operation":  string(req.Operation),
				"error_type": errorType,
			}
			m.metrics.IncrementCounter("transform.requests.errors", errorTags, 1)

			m.logger.Error("transformation request failed",
				"request_id", requestID,
				"operation", req.Operation,
				"job_id", req.JobID,
				"duration_ms", duration.Milliseconds(),
				"error_type", errorType,
				"error", err.Error())
			return resp, err
		}

		m.metrics.IncrementCounter("transform.requests.success", baseTags, 1)

		fields := []any{
			"request_id", requestID,
			"operation", req.Operation,
			"job_id", req.JobID,
			"duration_ms", duration.Milliseconds(),
		}
		if req.Operation == transport.OpGetStatus {
			fields = append(fields, "status", resp.Status)
			if m.redactPayloads {
				fields = append(fields, "progress_updates", len(resp.ProgressUpdates))
			} else {
				fields = append(fields, "progress_updates", resp.ProgressUpdates)
			}
		}

		m.logger.Info("transformation request completed", fields...)
		return resp, nil
	})
}
