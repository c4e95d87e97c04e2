package transport

import (
	"encoding/json"
	"time"

	"github.com/ahrav/go-modernize/internal/domain"
)

// Operation identifies the transformation service call being made.
type Operation string

const (
	// OpGetStatus queries the current job status and progress updates.
	OpGetStatus Operation = "get_status"

	// OpGetPlan fetches the transformation plan for a job.
	OpGetPlan Operation = "get_plan"
)

// Request describes a single transformation service call.
// Requests flow through the middleware chain before reaching the HTTP core.
type Request struct {
	Operation Operation     // Service call kind
	JobID     domain.JobID  // Target job
	TraceID   string        // Correlation ID, generated when empty
	Timeout   time.Duration // Per-request timeout, 0 uses the client default
}

// Response carries the parsed result of a transformation service call.
// Status/Record/ProgressUpdates are populated for OpGetStatus; Plan for
// OpGetPlan.
type Response struct {
	Status          domain.TransformationStatus `json:"status,omitempty"`
	Record          domain.JobRecord            `json:"record,omitempty"`
	ProgressUpdates []domain.ProgressUpdate     `json:"progress_updates,omitempty"`
	Plan            json.RawMessage             `json:"plan,omitempty"`
	LatencyMs       int64                       `json:"latency_ms"`
}
