package tracking

import (
	"context"
	"errors"
	"fmt"
	"sync/atomic"
	"time"

	"go.temporal.io/sdk/temporal"

	"github.com/ahrav/go-modernize/internal/domain"
	"github.com/ahrav/go-modernize/internal/poller"
	transformerrors "github.com/ahrav/go-modernize/internal/transform/errors"
	"github.com/ahrav/go-modernize/pkg/activity"
)

// StatusPoller drives a poll loop to completion. Implemented by the poller
// package; abstracted here so activity tests can script outcomes.
type StatusPoller interface {
	PollStatusAndPlan(ctx context.Context, spec domain.PollSpec, cancel *poller.CancelFlag, onUpdate poller.StatusCallback) (*domain.PollOutcome, error)
}

// Activities handles tracking-specific Temporal activities.
// It wraps the poll loop with workflow plumbing: heartbeats, per-transition
// events, and the derived table mapping and billing notice.
type Activities struct {
	activity.BaseActivities
	poller          StatusPoller
	defaultInterval time.Duration
	defaultTimeout  time.Duration
	events          *EventEmitter
}

// NewActivities creates tracking activities with the provided dependencies.
// The default interval and timeout apply when the workflow input leaves
// poll tuning unset.
func NewActivities(
	base activity.BaseActivities,
	p StatusPoller,
	defaultInterval time.Duration,
	defaultTimeout time.Duration,
) *Activities {
	return &Activities{
		BaseActivities:  base,
		poller:          p,
		defaultInterval: defaultInterval,
		defaultTimeout:  defaultTimeout,
		events:          NewEventEmitter(base),
	}
}

// TrackTransformation polls a transformation job until it reaches a success
// or failure status, the wall-clock timeout elapses, or the activity is
// cancelled. Each distinct consecutive status is heartbeated and emitted as
// an event; on success the plan is fetched once and the table mapping and
// billing notice are derived from it.
//
// Cancellation and timeout produce a normal output with the matching exit
// reason, not an error. Returns non-retryable errors for invalid input and
// for the authorization class that already consumed its single refresh, and
// retryable errors for transient service failures.
func (a *Activities) TrackTransformation(
	ctx context.Context,
	input domain.TrackTransformationInput,
) (*domain.TrackTransformationOutput, error) {
	if err := input.Validate(); err != nil {
		return nil, nonRetryable("TrackTransformation", err, "invalid input")
	}

	wfCtx := a.GetWorkflowContext(ctx)
	activity.SafeLog(ctx, "Starting TrackTransformation activity",
		"workflow_id", wfCtx.WorkflowID,
		"activity_id", wfCtx.ActivityID,
		"job_id", input.JobID)

	spec := input.PollSpec(a.defaultInterval, a.defaultTimeout)

	// Cooperative cancellation: Temporal cancels the activity context, the
	// flag turns that into a clean cancelled outcome at the next iteration
	// boundary.
	cancelFlag := poller.NewCancelFlag()
	stop := context.AfterFunc(ctx, cancelFlag.Cancel)
	defer stop()

	var linesOfCode atomic.Int64
	startTime := time.Now()

	outcome, err := a.poller.PollStatusAndPlan(ctx, spec, cancelFlag,
		func(status domain.TransformationStatus, record domain.JobRecord, _ []domain.ProgressUpdate) {
			linesOfCode.Store(record.LinesOfCode)
			a.RecordHeartbeat(ctx, fmt.Sprintf("status %s", status))
			activity.SafeLog(ctx, "Transformation status changed",
				"job_id", input.JobID,
				"status", status)
		})
	if err != nil {
		if errors.Is(err, context.Canceled) {
			return nil, err
		}
		if tErr := transformerrors.ClassifyTransformError(err); tErr != nil && tErr.ShouldRetry() {
			return nil, retryable("TrackTransformation", err, tErr.Message)
		}
		return nil, nonRetryable("TrackTransformation", err, "tracking failed")
	}

	output := a.buildOutput(outcome, linesOfCode.Load())

	a.emitTrackingEvents(ctx, wfCtx, input.JobID, outcome, output)

	activity.SafeLog(ctx, "TrackTransformation completed",
		"job_id", input.JobID,
		"final_status", output.FinalStatus,
		"exit_reason", output.ExitReason,
		"transitions", output.Transitions,
		"latency_ms", time.Since(startTime).Milliseconds())

	return output, nil
}

// buildOutput derives the activity output from the poll outcome: the table
// mapping and billing notice come from the plan and job size, both only
// meaningful on success.
func (a *Activities) buildOutput(outcome *domain.PollOutcome, linesOfCode int64) *domain.TrackTransformationOutput {
	output := &domain.TrackTransformationOutput{
		FinalStatus: outcome.FinalStatus,
		Succeeded:   outcome.Succeeded,
		ExitReason:  outcome.Reason,
		Transitions: outcome.Transitions,
		Plan:        outcome.Plan,
		LinesOfCode: linesOfCode,
	}

	if outcome.Succeeded {
		if outcome.Plan != nil {
			output.TableMapping = domain.BuildTableMapping(outcome.Plan.ProgressUpdates)
		}
		output.BillingText = domain.BillingText(linesOfCode)
	}

	return output
}

// emitTrackingEvents emits per-transition and terminal events for the
// tracked job. Event failures are logged but never fail the activity.
func (a *Activities) emitTrackingEvents(
	ctx context.Context,
	wfCtx activity.WorkflowContext,
	jobID domain.JobID,
	outcome *domain.PollOutcome,
	output *domain.TrackTransformationOutput,
) {
	record := domain.JobRecord{ID: jobID, Status: output.FinalStatus, LinesOfCode: output.LinesOfCode}
	if output.FinalStatus != "" {
		a.events.EmitStatusChanged(ctx, wfCtx, jobID, record, output.FinalStatus, outcome.Transitions)
	}

	var charge domain.Cents
	if output.Succeeded {
		if estimate, err := domain.NewBillingEstimate(output.LinesOfCode); err == nil {
			charge = estimate.Charge.Cents()
		}
	}
	a.events.EmitTransformationTracked(ctx, wfCtx, output, jobID, charge)
}

// nonRetryable wraps an error as a Temporal non-retryable application error.
func nonRetryable(tag string, cause error, msg string) error {
	return temporal.NewNonRetryableApplicationError(msg, tag, cause)
}

// retryable wraps an error as a Temporal retryable application error.
func retryable(tag string, cause error, msg string) error {
	return temporal.NewApplicationError(msg, tag, cause)
}
