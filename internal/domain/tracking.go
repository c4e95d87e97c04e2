package domain

import (
	"fmt"
	"time"
)

// TrackTransformationInput is the request to track a remote transformation
// job to completion. Status sets and poll tuning are optional; empty values
// fall back to the defaults. Statuses travel as slices so the input stays
// JSON-serializable across the Temporal payload boundary.
type TrackTransformationInput struct {
	JobID JobID `json:"job_id"`

	SuccessStatuses []TransformationStatus `json:"success_statuses,omitempty"`
	FailureStatuses []TransformationStatus `json:"failure_statuses,omitempty"`

	PollIntervalSeconds int `json:"poll_interval_seconds,omitempty"`
	PollTimeoutSeconds  int `json:"poll_timeout_seconds,omitempty"`
}

// Validate checks the input before the poll loop starts.
func (in TrackTransformationInput) Validate() error {
	if in.JobID.IsEmpty() {
		return fmt.Errorf("%w: empty job id", ErrInvalidPollSpec)
	}
	if in.PollIntervalSeconds < 0 || in.PollTimeoutSeconds < 0 {
		return fmt.Errorf("%w: negative poll interval or timeout", ErrInvalidPollSpec)
	}
	return nil
}

// PollSpec converts the input into a poll spec, applying the default status
// sets and poll tuning where the input leaves them unset.
func (in TrackTransformationInput) PollSpec(defaultInterval, defaultTimeout time.Duration) PollSpec {
	spec := PollSpec{
		JobID:           in.JobID,
		SuccessStatuses: DefaultSuccessStatuses(),
		FailureStatuses: DefaultFailureStatuses(),
		Interval:        defaultInterval,
		Timeout:         defaultTimeout,
	}
	if len(in.SuccessStatuses) > 0 {
		spec.SuccessStatuses = NewStatusSet(in.SuccessStatuses...)
	}
	if len(in.FailureStatuses) > 0 {
		spec.FailureStatuses = NewStatusSet(in.FailureStatuses...)
	}
	if in.PollIntervalSeconds > 0 {
		spec.Interval = time.Duration(in.PollIntervalSeconds) * time.Second
	}
	if in.PollTimeoutSeconds > 0 {
		spec.Timeout = time.Duration(in.PollTimeoutSeconds) * time.Second
	}
	return spec
}

// TrackTransformationOutput is the result of tracking a transformation job:
// the terminal status (or the last status before cancellation/timeout), the
// plan on success, and the derived display artifacts.
type TrackTransformationOutput struct {
	FinalStatus TransformationStatus `json:"final_status"`
	Succeeded   bool                 `json:"succeeded"`
	ExitReason  PollExitReason       `json:"exit_reason"`
	Transitions int                  `json:"transitions"`

	// Plan is set only when the job reached a success status.
	Plan *TransformationPlan `json:"plan,omitempty"`

	// TableMapping maps progress table names to their latest description
	// payloads, derived from the plan's progress updates.
	TableMapping map[string]string `json:"table_mapping,omitempty"`

	// LinesOfCode and BillingText carry the job size and the customer
	// billing notice derived from it.
	LinesOfCode int64  `json:"lines_of_code"`
	BillingText string `json:"billing_text,omitempty"`
}

// StatusChangedIdempotencyKey derives the deduplication key for a status
// change event. Keyed on workflow, job, and transition ordinal so activity
// retries re-emit identical keys.
func StatusChangedIdempotencyKey(workflowID string, jobID JobID, transition int) string {
	return fmt.Sprintf("status-changed-%s-%s-%d", workflowID, jobID, transition)
}

// TransformationTrackedIdempotencyKey derives the deduplication key for the
// terminal tracking event of a workflow run.
func TransformationTrackedIdempotencyKey(workflowID string, jobID JobID) string {
	return fmt.Sprintf("transformation-tracked-%s-%s", workflowID, jobID)
}
