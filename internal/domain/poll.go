package domain

import (
	"encoding/json"
	"fmt"
	"time"
)

// PollExitReason distinguishes how a poll loop came to an end.
type PollExitReason string

const (
	// ExitTerminalStatus indicates the loop observed a status in the
	// success or failure set.
	ExitTerminalStatus PollExitReason = "terminal_status"

	// ExitCancelled indicates the cooperative cancellation flag was set.
	ExitCancelled PollExitReason = "cancelled"

	// ExitTimedOut indicates the wall-clock deadline elapsed before a
	// terminal status was observed.
	ExitTimedOut PollExitReason = "timed_out"
)

// PollSpec describes a single poll loop invocation: which job to watch and
// which statuses end the loop. Interval and Timeout may both be zero, which
// means no artificial delay and no deadline (test mode).
type PollSpec struct {
	JobID JobID

	// SuccessStatuses ends the loop with Succeeded=true; the plan is
	// fetched once when a member is observed.
	SuccessStatuses StatusSet

	// FailureStatuses ends the loop with Succeeded=false; the plan is
	// never fetched.
	FailureStatuses StatusSet

	// Interval is the wait between status queries. Zero yields
	// cooperatively without blocking.
	Interval time.Duration

	// Timeout bounds the loop in wall-clock time since loop start.
	// Zero means no deadline.
	Timeout time.Duration
}

// Validate checks that the spec can drive a well-formed poll loop.
// Success and failure sets must be non-empty and disjoint; a status in both
// sets would make the outcome ambiguous.
func (s PollSpec) Validate() error {
	if s.JobID.IsEmpty() {
		return fmt.Errorf("%w: empty job id", ErrInvalidPollSpec)
	}
	if s.SuccessStatuses.IsEmpty() {
		return fmt.Errorf("%w: empty success status set", ErrInvalidPollSpec)
	}
	if s.FailureStatuses.IsEmpty() {
		return fmt.Errorf("%w: empty failure status set", ErrInvalidPollSpec)
	}
	if s.SuccessStatuses.Intersects(s.FailureStatuses) {
		return fmt.Errorf("%w: success and failure status sets overlap", ErrInvalidPollSpec)
	}
	if s.Interval < 0 || s.Timeout < 0 {
		return fmt.Errorf("%w: negative interval or timeout", ErrInvalidPollSpec)
	}
	return nil
}

// TransformationPlan is the plan payload fetched once a job reaches a
// success status. The body is opaque to the tracking layer; the progress
// updates attached to it feed BuildTableMapping for display.
type TransformationPlan struct {
	JobID           JobID            `json:"job_id"`
	Body            json.RawMessage  `json:"body,omitempty"`
	ProgressUpdates []ProgressUpdate `json:"progress_updates,omitempty"`
}

// PollOutcome is the result of a completed poll loop.
type PollOutcome struct {
	// FinalStatus is the last status observed before the loop stopped.
	FinalStatus TransformationStatus

	// Succeeded is true iff FinalStatus is a member of the success set.
	Succeeded bool

	// Reason records how the loop ended. Cancellation and timeout are
	// expected operational exits, not errors.
	Reason PollExitReason

	// Plan holds the transformation plan, fetched exactly once after a
	// success status. Nil on failure, cancellation, and timeout.
	Plan *TransformationPlan

	// Transitions counts the distinct consecutive statuses reported to
	// the caller's callback.
	Transitions int
}
