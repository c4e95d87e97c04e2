// Package tracking implements the Temporal activity that tracks a remote
// transformation job: polling status to completion, reporting transitions,
// and deriving the plan table mapping and billing notice.
package tracking

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/ahrav/go-modernize/internal/domain"
	"github.com/ahrav/go-modernize/pkg/activity"
	"github.com/ahrav/go-modernize/pkg/events"
)

// statusChangedEvent records one observed status transition of a tracked
// job. Emitted once per distinct consecutive status, never for repeats.
type statusChangedEvent struct {
	JobID       domain.JobID                `json:"job_id"`
	Status      domain.TransformationStatus `json:"status"`
	Reason      string                      `json:"reason,omitempty"`
	LinesOfCode int64                       `json:"lines_of_code"`
	Transition  int                         `json:"transition"`
	ObservedAt  time.Time                   `json:"observed_at"`
}

// transformationTrackedEvent records the terminal outcome of a tracking
// activity. Emitted once per activity regardless of how the loop ended.
type transformationTrackedEvent struct {
	JobID       domain.JobID                `json:"job_id"`
	FinalStatus domain.TransformationStatus `json:"final_status"`
	Succeeded   bool                        `json:"succeeded"`
	ExitReason  domain.PollExitReason       `json:"exit_reason"`
	Transitions int                         `json:"transitions"`
	LinesOfCode int64                       `json:"lines_of_code"`
	ChargeCents int64                       `json:"charge_cents"`
}

// EventEmitter handles event emission for the tracking domain.
type EventEmitter struct {
	base activity.BaseActivities
}

// NewEventEmitter creates an EventEmitter with the provided base activities.
func NewEventEmitter(base activity.BaseActivities) *EventEmitter {
	return &EventEmitter{base: base}
}

// EmitStatusChanged emits an event for one observed status transition.
func (e *EventEmitter) EmitStatusChanged(
	ctx context.Context,
	wfCtx activity.WorkflowContext,
	jobID domain.JobID,
	record domain.JobRecord,
	status domain.TransformationStatus,
	transition int,
) {
	event := statusChangedEvent{
		JobID:       jobID,
		Status:      status,
		Reason:      record.Reason,
		LinesOfCode: record.LinesOfCode,
		Transition:  transition,
		ObservedAt:  time.Now(),
	}

	payload, err := json.Marshal(event)
	if err != nil {
		activity.SafeLogError(ctx, "Failed to marshal status change event",
			"job_id", jobID,
			"error", err)
		return
	}

	envelope := events.Envelope{
		ID:             uuid.New().String(),
		Type:           "tracking.status_changed",
		Source:         "tracking-activity",
		Version:        "1.0.0",
		Timestamp:      time.Now(),
		IdempotencyKey: domain.StatusChangedIdempotencyKey(wfCtx.WorkflowID, jobID, transition),
		WorkflowID:     wfCtx.WorkflowID,
		RunID:          wfCtx.RunID,
		Payload:        payload,
	}

	e.base.EmitEventSafe(ctx, envelope, fmt.Sprintf("StatusChanged[%s]", status))
}

// EmitTransformationTracked emits the terminal outcome event for a tracking
// activity.
func (e *EventEmitter) EmitTransformationTracked(
	ctx context.Context,
	wfCtx activity.WorkflowContext,
	output *domain.TrackTransformationOutput,
	jobID domain.JobID,
	charge domain.Cents,
) {
	event := transformationTrackedEvent{
		JobID:       jobID,
		FinalStatus: output.FinalStatus,
		Succeeded:   output.Succeeded,
		ExitReason:  output.ExitReason,
		Transitions: output.Transitions,
		LinesOfCode: output.LinesOfCode,
		ChargeCents: int64(charge),
	}

	payload, err := json.Marshal(event)
	if err != nil {
		activity.SafeLogError(ctx, "Failed to marshal tracking outcome event",
			"job_id", jobID,
			"error", err)
		return
	}

	envelope := events.Envelope{
		ID:             uuid.New().String(),
		Type:           "tracking.transformation_tracked",
		Source:         "tracking-activity",
		Version:        "1.0.0",
		Timestamp:      time.Now(),
		IdempotencyKey: domain.TransformationTrackedIdempotencyKey(wfCtx.WorkflowID, jobID),
		WorkflowID:     wfCtx.WorkflowID,
		RunID:          wfCtx.RunID,
		Payload:        payload,
	}

	e.base.EmitEventSafe(ctx, envelope, "TransformationTracked")
}
