package workflow

import (
	"time"

	"go.temporal.io/sdk/temporal"
	"go.temporal.io/sdk/workflow"

	"github.com/ahrav/go-modernize/internal/domain"
)

// TrackTransformationActivity is the registered name of the tracking
// activity. The workflow invokes it by name so the two sides stay
// independently testable.
const TrackTransformationActivity = "TrackTransformation"

// trackTimeoutMargin pads the activity start-to-close timeout beyond the
// poll loop's own wall-clock deadline, so the loop always gets to report a
// timed-out outcome instead of being killed mid-iteration.
const trackTimeoutMargin = 5 * time.Minute

// defaultTrackTimeout bounds the activity when the input carries no poll
// timeout of its own (the loop then runs without a deadline).
const defaultTrackTimeout = 4 * time.Hour

// TransformationWorkflow tracks a remote transformation job to completion.
// It validates the input, runs the tracking activity with a timeout derived
// from the poll deadline, and returns the tracking output: final status,
// plan, table mapping, and billing notice.
//
// Cancellation of the workflow cancels the activity context; the poll loop
// turns that into a clean cancelled outcome rather than an error.
func TransformationWorkflow(
	ctx workflow.Context,
	input domain.TrackTransformationInput,
) (*domain.TrackTransformationOutput, error) {
	// Version gate enables safe evolution of the tracking flow.
	const currentVersion = 1
	_ = workflow.GetVersion(ctx, "transformation.v", workflow.DefaultVersion, currentVersion)

	if err := input.Validate(); err != nil {
		return nil, temporal.NewNonRetryableApplicationError(
			"invalid tracking request",
			"Validation",
			err,
		)
	}

	startToClose := defaultTrackTimeout
	if input.PollTimeoutSeconds > 0 {
		startToClose = time.Duration(input.PollTimeoutSeconds)*time.Second + trackTimeoutMargin
	}

	ao := workflow.ActivityOptions{
		StartToCloseTimeout: startToClose,
		WaitForCancellation: true,
		RetryPolicy: &temporal.RetryPolicy{
			InitialInterval:    time.Second,
			BackoffCoefficient: 2.0,
			MaximumInterval:    time.Minute,
			MaximumAttempts:    3,
		},
	}
	ctx = workflow.WithActivityOptions(ctx, ao)

	logger := workflow.GetLogger(ctx)
	logger.Info("Tracking transformation job", "job_id", input.JobID)

	var output domain.TrackTransformationOutput
	if err := workflow.ExecuteActivity(ctx, TrackTransformationActivity, input).Get(ctx, &output); err != nil {
		logger.Error("Transformation tracking failed", "job_id", input.JobID, "error", err)
		return nil, err
	}

	logger.Info("Transformation tracking finished",
		"job_id", input.JobID,
		"final_status", output.FinalStatus,
		"exit_reason", output.ExitReason,
		"succeeded", output.Succeeded)

	return &output, nil
}
