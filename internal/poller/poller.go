// Package poller implements the status poll loop for remote transformation
// jobs. The loop queries status until a caller-supplied success or failure
// status is observed, reporting each distinct status transition through a
// callback, with cooperative cancellation and a wall-clock deadline as
// non-error exits.
package poller

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync/atomic"
	"time"

	"github.com/ahrav/go-modernize/internal/domain"
	"github.com/ahrav/go-modernize/internal/transform"
	"github.com/ahrav/go-modernize/internal/transform/auth"
	transformerrors "github.com/ahrav/go-modernize/internal/transform/errors"
)

// CancelFlag is a cooperative cancellation signal shared between the poll
// loop and whoever requests a stop. Setting the flag ends the loop at the
// next iteration boundary without an error.
type CancelFlag struct{ flag atomic.Bool }

// NewCancelFlag creates an unset cancellation flag.
func NewCancelFlag() *CancelFlag { return &CancelFlag{} }

// Cancel requests loop termination. Safe for concurrent use.
func (c *CancelFlag) Cancel() { c.flag.Store(true) }

// Cancelled reports whether termination was requested.
func (c *CancelFlag) Cancelled() bool { return c.flag.Load() }

// StatusCallback receives each distinct consecutive status observed by the
// loop, together with the job record snapshot and progress updates from the
// same query. Repeated identical statuses are not re-reported.
type StatusCallback func(status domain.TransformationStatus, record domain.JobRecord, updates []domain.ProgressUpdate)

// Poller drives the status poll loop against the transformation service.
type Poller struct {
	client transform.Client
	tokens auth.TokenSource
	logger *slog.Logger
}

// New creates a poller. The token source may be nil when the client needs no
// credential refresh (test servers); auth-class errors are then terminal.
func New(client transform.Client, tokens auth.TokenSource, logger *slog.Logger) *Poller {
	if logger == nil {
		logger = slog.Default()
	}
	return &Poller{client: client, tokens: tokens, logger: logger}
}

// PollStatusAndPlan polls job status until a status in the spec's success or
// failure set is observed, the cancel flag is set, or the spec's timeout
// elapses. Each distinct consecutive status is reported through onUpdate.
// On a success status the transformation plan is fetched exactly once and
// attached to the outcome; on a failure status the plan is never fetched.
//
// Cancellation and timeout are operational outcomes, not errors. An error
// return means a status query failed terminally (after at most one token
// refresh and retry for the authorization class) or the context ended.
func (p *Poller) PollStatusAndPlan(ctx context.Context, spec domain.PollSpec, cancel *CancelFlag, onUpdate StatusCallback) (*domain.PollOutcome, error) {
	if err := spec.Validate(); err != nil {
		return nil, err
	}
	if cancel == nil {
		cancel = NewCancelFlag()
	}

	var deadline time.Time
	if spec.Timeout > 0 {
		deadline = time.Now().Add(spec.Timeout)
	}

	var (
		lastReported domain.TransformationStatus
		lastUpdates  []domain.ProgressUpdate
		transitions  int
	)

	for {
		// Cancellation wins over timeout when both hold at the same
		// iteration boundary.
		if cancel.Cancelled() {
			p.logger.Info("poll loop cancelled",
				"job_id", spec.JobID,
				"last_status", lastReported,
				"transitions", transitions)
			return &domain.PollOutcome{
				FinalStatus: lastReported,
				Reason:      domain.ExitCancelled,
				Transitions: transitions,
			}, nil
		}
		if !deadline.IsZero() && !time.Now().Before(deadline) {
			p.logger.Warn("poll loop timed out",
				"job_id", spec.JobID,
				"timeout", spec.Timeout,
				"last_status", lastReported,
				"transitions", transitions)
			return &domain.PollOutcome{
				FinalStatus: lastReported,
				Reason:      domain.ExitTimedOut,
				Transitions: transitions,
			}, nil
		}

		result, err := p.queryStatus(ctx, spec.JobID)
		if err != nil {
			var throttleErr *transformerrors.ThrottlingError
			if errors.As(err, &throttleErr) {
				// Throttling is transient for a poller; wait out the
				// service's guidance and poll again on schedule.
				wait := spec.Interval
				if ra := throttleErr.GetRetryAfter(); ra > wait {
					wait = ra
				}
				p.logger.Warn("status query throttled",
					"job_id", spec.JobID,
					"retry_after", throttleErr.GetRetryAfter())
				if err := p.wait(ctx, wait); err != nil {
					return nil, err
				}
				continue
			}
			return nil, fmt.Errorf("status query for job %s failed: %w", spec.JobID, err)
		}

		if result.Status != lastReported {
			lastReported = result.Status
			transitions++
			if onUpdate != nil {
				onUpdate(result.Status, result.Record, result.ProgressUpdates)
			}
		}
		if len(result.ProgressUpdates) > 0 {
			lastUpdates = result.ProgressUpdates
		}

		if spec.SuccessStatuses.Contains(result.Status) {
			plan, err := p.fetchPlan(ctx, spec.JobID)
			if err != nil {
				return nil, fmt.Errorf("plan fetch for job %s failed: %w", spec.JobID, err)
			}
			plan.ProgressUpdates = lastUpdates
			p.logger.Info("poll loop observed success status",
				"job_id", spec.JobID,
				"status", result.Status,
				"transitions", transitions)
			return &domain.PollOutcome{
				FinalStatus: result.Status,
				Succeeded:   true,
				Reason:      domain.ExitTerminalStatus,
				Plan:        plan,
				Transitions: transitions,
			}, nil
		}
		if spec.FailureStatuses.Contains(result.Status) {
			p.logger.Info("poll loop observed failure status",
				"job_id", spec.JobID,
				"status", result.Status,
				"reason", result.Record.Reason,
				"transitions", transitions)
			return &domain.PollOutcome{
				FinalStatus: result.Status,
				Succeeded:   false,
				Reason:      domain.ExitTerminalStatus,
				Transitions: transitions,
			}, nil
		}

		if err := p.wait(ctx, spec.Interval); err != nil {
			return nil, err
		}
	}
}

// queryStatus performs one status query with the refresh-once policy: an
// authorization-class failure triggers exactly one token refresh and one
// retry. Any further failure is terminal for the loop.
func (p *Poller) queryStatus(ctx context.Context, jobID domain.JobID) (*transform.StatusResult, error) {
	result, err := p.client.GetTransformationStatus(ctx, jobID)
	if err == nil {
		return result, nil
	}
	if !transformerrors.IsRecoverableAuthError(err) || p.tokens == nil {
		return nil, err
	}

	p.logger.Info("refreshing credentials after authorization failure",
		"job_id", jobID,
		"error", err.Error())
	if refreshErr := p.tokens.Refresh(ctx); refreshErr != nil {
		return nil, fmt.Errorf("%w: %v (original: %v)",
			transformerrors.ErrTokenRefreshFailed, refreshErr, err)
	}

	result, retryErr := p.client.GetTransformationStatus(ctx, jobID)
	if retryErr != nil {
		return nil, fmt.Errorf("%w: %v", transformerrors.ErrRetryAfterRefreshFailed, retryErr)
	}
	return result, nil
}

// fetchPlan retrieves the transformation plan with the same refresh-once
// policy as status queries.
func (p *Poller) fetchPlan(ctx context.Context, jobID domain.JobID) (*domain.TransformationPlan, error) {
	plan, err := p.client.GetTransformationPlan(ctx, jobID)
	if err == nil {
		return plan, nil
	}
	if !transformerrors.IsRecoverableAuthError(err) || p.tokens == nil {
		return nil, err
	}

	if refreshErr := p.tokens.Refresh(ctx); refreshErr != nil {
		return nil, fmt.Errorf("%w: %v (original: %v)",
			transformerrors.ErrTokenRefreshFailed, refreshErr, err)
	}

	plan, retryErr := p.client.GetTransformationPlan(ctx, jobID)
	if retryErr != nil {
		return nil, fmt.Errorf("%w: %v", transformerrors.ErrRetryAfterRefreshFailed, retryErr)
	}
	return plan, nil
}

// wait sleeps for the poll interval, waking early if the context ends.
// A zero interval only yields the context check.
func (p *Poller) wait(ctx context.Context, interval time.Duration) error {
	if interval <= 0 {
		select {
		case <-ctx.Done():
			return ctx.Err()
		default:
			return nil
		}
	}

	timer := time.NewTimer(interval)
	defer timer.Stop()
	select {
	case <-timer.C:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}
