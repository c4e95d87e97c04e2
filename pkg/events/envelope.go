// Package events provides the generic event infrastructure for domain event
// emission. It defines the Envelope type wrapping domain events with
// consistent metadata and the EventSink interface for event delivery.
package events

import (
	"context"
	"encoding/json"
	"time"
)

// Envelope wraps domain events with consistent metadata for reliable event
// processing. The envelope pattern enables schema evolution through
// versioning, deduplication via idempotency keys, and correlation with the
// workflow execution that produced the event.
type Envelope struct {
	// ID uniquely identifies this event instance. Generated as a UUID for
	// each emission.
	ID string `json:"id"`

	// Type identifies the event for routing and processing.
	// Examples: "tracking.status_changed", "tracking.transformation_tracked"
	Type string `json:"type"`

	// Source identifies the component that emitted this event.
	// Example: "tracking-activity"
	Source string `json:"source"`

	// Version enables schema evolution. Starts at "1.0.0".
	Version string `json:"version"`

	// Timestamp records when the event was emitted.
	Timestamp time.Time `json:"timestamp"`

	// IdempotencyKey ensures exactly-once processing during activity
	// retries. Derived deterministically from workflow context and event
	// content, never from wall-clock time.
	IdempotencyKey string `json:"idempotency_key"`

	// WorkflowID identifies the Temporal workflow that triggered this event.
	WorkflowID string `json:"workflow_id"`

	// RunID identifies the specific workflow execution run.
	RunID string `json:"run_id"`

	// Payload contains the domain-specific event data as JSON.
	// Schema varies by Type and Version.
	Payload json.RawMessage `json:"payload"`
}

// EventSink delivers events to downstream consumers. Implementations range
// from database outbox patterns to message queues to log outputs.
type EventSink interface {
	// Append adds an event to the sink with best-effort delivery.
	// Implementations should treat duplicate idempotency keys as no-ops
	// and return quickly. Sink failures must not fail the caller's
	// primary operation.
	Append(ctx context.Context, envelope Envelope) error
}

// NoOpEventSink is a null EventSink for testing or when events are disabled.
type NoOpEventSink struct{}

// Append implements EventSink with no-op behavior.
func (n *NoOpEventSink) Append(_ context.Context, _ Envelope) error { return nil }

// NewNoOpEventSink creates a no-op event sink.
func NewNoOpEventSink() EventSink { return &NoOpEventSink{} }
