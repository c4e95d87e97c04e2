package poller

import (
	"context"
	"encoding/json"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ahrav/go-modernize/internal/domain"
	"github.com/ahrav/go-modernize/internal/transform"
	transformerrors "github.com/ahrav/go-modernize/internal/transform/errors"
)

// statusStep scripts one status query response.
type statusStep struct {
	status  domain.TransformationStatus
	updates []domain.ProgressUpdate
	err     error
}

// fakeClient plays back scripted status responses. Once the script is
// exhausted the last step repeats, so timeout tests can spin safely.
type fakeClient struct {
	steps       []statusStep
	statusCalls int

	planBody  json.RawMessage
	planErrs  []error
	planCalls int
}

func (f *fakeClient) GetTransformationStatus(_ context.Context, jobID domain.JobID) (*transform.StatusResult, error) {
	idx := f.statusCalls
	f.statusCalls++
	if idx >= len(f.steps) {
		idx = len(f.steps) - 1
	}
	step := f.steps[idx]
	if step.err != nil {
		return nil, step.err
	}
	return &transform.StatusResult{
		Status:          step.status,
		Record:          domain.JobRecord{ID: jobID, Status: step.status, LinesOfCode: 376},
		ProgressUpdates: step.updates,
	}, nil
}

func (f *fakeClient) GetTransformationPlan(_ context.Context, jobID domain.JobID) (*domain.TransformationPlan, error) {
	idx := f.planCalls
	f.planCalls++
	if idx < len(f.planErrs) && f.planErrs[idx] != nil {
		return nil, f.planErrs[idx]
	}
	return &domain.TransformationPlan{JobID: jobID, Body: f.planBody}, nil
}

// fakeTokens counts refreshes and optionally fails them.
type fakeTokens struct {
	refreshes  int
	refreshErr error
}

func (f *fakeTokens) Token(_ context.Context) (string, error) { return "token", nil }

func (f *fakeTokens) Refresh(_ context.Context) error {
	f.refreshes++
	return f.refreshErr
}

func testSpec(jobID string) domain.PollSpec {
	return domain.PollSpec{
		JobID:           domain.JobID(jobID),
		SuccessStatuses: domain.DefaultSuccessStatuses(),
		FailureStatuses: domain.DefaultFailureStatuses(),
	}
}

func TestPollStatusAndPlan_ReportsDistinctTransitions(t *testing.T) {
	client := &fakeClient{
		steps: []statusStep{
			{status: domain.StatusCreated},
			{status: domain.StatusTransforming},
			{status: domain.StatusTransforming},
			{status: domain.StatusStarted},
			{status: domain.StatusCompleted},
		},
		planBody: json.RawMessage(`{"steps":[]}`),
	}

	spec := testSpec("job-1")
	spec.SuccessStatuses = domain.NewStatusSet(domain.StatusStarted)

	var reported []domain.TransformationStatus
	outcome, err := New(client, &fakeTokens{}, nil).PollStatusAndPlan(
		context.Background(), spec, nil,
		func(status domain.TransformationStatus, _ domain.JobRecord, _ []domain.ProgressUpdate) {
			reported = append(reported, status)
		})
	require.NoError(t, err)

	// Repeated TRANSFORMING is reported once; the loop stops at STARTED
	// and never sees COMPLETED.
	assert.Equal(t, []domain.TransformationStatus{
		domain.StatusCreated,
		domain.StatusTransforming,
		domain.StatusStarted,
	}, reported)
	assert.Equal(t, 4, client.statusCalls)
	assert.Equal(t, 1, client.planCalls)

	assert.True(t, outcome.Succeeded)
	assert.Equal(t, domain.StatusStarted, outcome.FinalStatus)
	assert.Equal(t, domain.ExitTerminalStatus, outcome.Reason)
	assert.Equal(t, 3, outcome.Transitions)
	require.NotNil(t, outcome.Plan)
	assert.JSONEq(t, `{"steps":[]}`, string(outcome.Plan.Body))
}

func TestPollStatusAndPlan_FailureSkipsPlan(t *testing.T) {
	client := &fakeClient{
		steps: []statusStep{
			{status: domain.StatusTransforming},
			{status: domain.StatusFailed},
		},
	}

	var reported []domain.TransformationStatus
	outcome, err := New(client, &fakeTokens{}, nil).PollStatusAndPlan(
		context.Background(), testSpec("job-1"), nil,
		func(status domain.TransformationStatus, _ domain.JobRecord, _ []domain.ProgressUpdate) {
			reported = append(reported, status)
		})
	require.NoError(t, err)

	assert.Equal(t, 2, client.statusCalls)
	assert.Equal(t, 0, client.planCalls)
	assert.False(t, outcome.Succeeded)
	assert.Equal(t, domain.StatusFailed, outcome.FinalStatus)
	assert.Equal(t, domain.ExitTerminalStatus, outcome.Reason)
	assert.Equal(t, []domain.TransformationStatus{domain.StatusTransforming, domain.StatusFailed}, reported)
}

func TestPollStatusAndPlan_RefreshesOnceOnAuthError(t *testing.T) {
	client := &fakeClient{
		steps: []statusStep{
			{err: &transformerrors.AccessDeniedError{Operation: "get_status", Message: "expired"}},
			{status: domain.StatusCompleted},
		},
	}
	tokens := &fakeTokens{}

	outcome, err := New(client, tokens, nil).PollStatusAndPlan(
		context.Background(), testSpec("job-1"), nil, nil)
	require.NoError(t, err)

	assert.Equal(t, 1, tokens.refreshes)
	assert.Equal(t, 2, client.statusCalls)
	assert.True(t, outcome.Succeeded)
}

func TestPollStatusAndPlan_RefreshFailureIsTerminal(t *testing.T) {
	client := &fakeClient{
		steps: []statusStep{
			{err: &transformerrors.InvalidGrantError{Message: "revoked"}},
		},
	}
	tokens := &fakeTokens{refreshErr: errors.New("sso offline")}

	_, err := New(client, tokens, nil).PollStatusAndPlan(
		context.Background(), testSpec("job-1"), nil, nil)
	require.Error(t, err)

	assert.ErrorIs(t, err, transformerrors.ErrTokenRefreshFailed)
	assert.Equal(t, 1, tokens.refreshes)
	assert.Equal(t, 1, client.statusCalls)
}

func TestPollStatusAndPlan_SingleRetryAfterRefresh(t *testing.T) {
	client := &fakeClient{
		steps: []statusStep{
			{err: &transformerrors.AccessDeniedError{Message: "expired"}},
			{err: &transformerrors.AccessDeniedError{Message: "still expired"}},
		},
	}
	tokens := &fakeTokens{}

	_, err := New(client, tokens, nil).PollStatusAndPlan(
		context.Background(), testSpec("job-1"), nil, nil)
	require.Error(t, err)

	// One refresh, one retry, then terminal. No second refresh.
	assert.ErrorIs(t, err, transformerrors.ErrRetryAfterRefreshFailed)
	assert.Equal(t, 1, tokens.refreshes)
	assert.Equal(t, 2, client.statusCalls)
}

func TestPollStatusAndPlan_NonAuthErrorIsTerminal(t *testing.T) {
	client := &fakeClient{
		steps: []statusStep{
			{err: &transformerrors.ServiceError{StatusCode: 500, Type: transformerrors.ErrorTypeService, Message: "boom"}},
		},
	}
	tokens := &fakeTokens{}

	_, err := New(client, tokens, nil).PollStatusAndPlan(
		context.Background(), testSpec("job-1"), nil, nil)
	require.Error(t, err)

	assert.Equal(t, 0, tokens.refreshes)
	assert.Equal(t, 1, client.statusCalls)
}

func TestPollStatusAndPlan_ThrottlingIsTransient(t *testing.T) {
	client := &fakeClient{
		steps: []statusStep{
			{err: &transformerrors.ThrottlingError{Operation: "get_status"}},
			{status: domain.StatusCompleted},
		},
	}

	outcome, err := New(client, &fakeTokens{}, nil).PollStatusAndPlan(
		context.Background(), testSpec("job-1"), nil, nil)
	require.NoError(t, err)

	assert.Equal(t, 2, client.statusCalls)
	assert.True(t, outcome.Succeeded)
}

func TestPollStatusAndPlan_CancelledBeforeFirstQuery(t *testing.T) {
	client := &fakeClient{steps: []statusStep{{status: domain.StatusTransforming}}}

	cancel := NewCancelFlag()
	cancel.Cancel()

	outcome, err := New(client, &fakeTokens{}, nil).PollStatusAndPlan(
		context.Background(), testSpec("job-1"), cancel, nil)
	require.NoError(t, err)

	assert.Equal(t, 0, client.statusCalls)
	assert.Equal(t, domain.ExitCancelled, outcome.Reason)
	assert.False(t, outcome.Succeeded)
	assert.Empty(t, outcome.FinalStatus)
}

func TestPollStatusAndPlan_CancelledMidLoop(t *testing.T) {
	client := &fakeClient{steps: []statusStep{{status: domain.StatusTransforming}}}

	cancel := NewCancelFlag()
	outcome, err := New(client, &fakeTokens{}, nil).PollStatusAndPlan(
		context.Background(), testSpec("job-1"), cancel,
		func(_ domain.TransformationStatus, _ domain.JobRecord, _ []domain.ProgressUpdate) {
			cancel.Cancel()
		})
	require.NoError(t, err)

	assert.Equal(t, 1, client.statusCalls)
	assert.Equal(t, domain.ExitCancelled, outcome.Reason)
	assert.Equal(t, domain.StatusTransforming, outcome.FinalStatus)
	assert.Equal(t, 0, client.planCalls)
}

func TestPollStatusAndPlan_TimesOut(t *testing.T) {
	client := &fakeClient{steps: []statusStep{{status: domain.StatusTransforming}}}

	spec := testSpec("job-1")
	spec.Timeout = 20 * time.Millisecond

	outcome, err := New(client, &fakeTokens{}, nil).PollStatusAndPlan(
		context.Background(), spec, nil, nil)
	require.NoError(t, err)

	assert.Equal(t, domain.ExitTimedOut, outcome.Reason)
	assert.False(t, outcome.Succeeded)
	assert.Equal(t, domain.StatusTransforming, outcome.FinalStatus)
	assert.Equal(t, 0, client.planCalls)
	assert.GreaterOrEqual(t, client.statusCalls, 1)
}

func TestPollStatusAndPlan_ContextCancelDuringWait(t *testing.T) {
	client := &fakeClient{steps: []statusStep{{status: domain.StatusTransforming}}}

	spec := testSpec("job-1")
	spec.Interval = time.Minute

	ctx, cancelCtx := context.WithCancel(context.Background())
	go func() {
		time.Sleep(10 * time.Millisecond)
		cancelCtx()
	}()

	_, err := New(client, &fakeTokens{}, nil).PollStatusAndPlan(ctx, spec, nil, nil)
	assert.ErrorIs(t, err, context.Canceled)
}

func TestPollStatusAndPlan_AttachesLatestProgressToPlan(t *testing.T) {
	first := []domain.ProgressUpdate{{Name: "0", Description: "{}", Status: "IN_PROGRESS"}}
	second := []domain.ProgressUpdate{
		{Name: "0", Description: `{"rows":[]}`, Status: "COMPLETED"},
		{Name: "1", Description: "{}", Status: "COMPLETED"},
	}
	client := &fakeClient{
		steps: []statusStep{
			{status: domain.StatusTransforming, updates: first},
			{status: domain.StatusCompleted, updates: second},
		},
		planBody: json.RawMessage(`{}`),
	}

	outcome, err := New(client, &fakeTokens{}, nil).PollStatusAndPlan(
		context.Background(), testSpec("job-1"), nil, nil)
	require.NoError(t, err)

	require.NotNil(t, outcome.Plan)
	assert.Equal(t, second, outcome.Plan.ProgressUpdates)
}

func TestPollStatusAndPlan_PlanFetchRefreshOnce(t *testing.T) {
	client := &fakeClient{
		steps:    []statusStep{{status: domain.StatusCompleted}},
		planBody: json.RawMessage(`{}`),
		planErrs: []error{&transformerrors.AccessDeniedError{Operation: "get_plan", Message: "expired"}},
	}
	tokens := &fakeTokens{}

	outcome, err := New(client, tokens, nil).PollStatusAndPlan(
		context.Background(), testSpec("job-1"), nil, nil)
	require.NoError(t, err)

	assert.Equal(t, 1, tokens.refreshes)
	assert.Equal(t, 2, client.planCalls)
	require.NotNil(t, outcome.Plan)
}

func TestPollStatusAndPlan_InvalidSpec(t *testing.T) {
	client := &fakeClient{steps: []statusStep{{status: domain.StatusCompleted}}}

	tests := []struct {
		name   string
		mutate func(*domain.PollSpec)
	}{
		{"empty job id", func(s *domain.PollSpec) { s.JobID = "" }},
		{"empty success set", func(s *domain.PollSpec) { s.SuccessStatuses = domain.NewStatusSet() }},
		{"overlapping sets", func(s *domain.PollSpec) {
			s.FailureStatuses = domain.NewStatusSet(domain.StatusCompleted)
		}},
		{"negative interval", func(s *domain.PollSpec) { s.Interval = -time.Second }},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			spec := testSpec("job-1")
			tt.mutate(&spec)
			_, err := New(client, &fakeTokens{}, nil).PollStatusAndPlan(
				context.Background(), spec, nil, nil)
			assert.ErrorIs(t, err, domain.ErrInvalidPollSpec)
		})
	}
}
