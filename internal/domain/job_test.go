package domain

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestStatusSet(t *testing.T) {
	t.Run("contains members only", func(t *testing.T) {
		set := NewStatusSet(StatusCompleted, StatusPartiallyCompleted)

		assert.True(t, set.Contains(StatusCompleted))
		assert.True(t, set.Contains(StatusPartiallyCompleted))
		assert.False(t, set.Contains(StatusFailed))
		assert.False(t, set.Contains(StatusStarted))
	})

	t.Run("empty set contains nothing", func(t *testing.T) {
		var set StatusSet
		assert.True(t, set.IsEmpty())
		assert.False(t, set.Contains(StatusCompleted))
	})

	t.Run("intersects", func(t *testing.T) {
		success := NewStatusSet(StatusCompleted)
		failure := NewStatusSet(StatusFailed, StatusStopped)
		overlapping := NewStatusSet(StatusCompleted, StatusFailed)

		assert.False(t, success.Intersects(failure))
		assert.False(t, failure.Intersects(success))
		assert.True(t, success.Intersects(overlapping))
		assert.True(t, overlapping.Intersects(failure))
	})

	t.Run("defaults are disjoint", func(t *testing.T) {
		assert.False(t, DefaultSuccessStatuses().Intersects(DefaultFailureStatuses()))
	})
}

func TestTransformationStatus_IsKnown(t *testing.T) {
	assert.True(t, StatusTransforming.IsKnown())
	assert.True(t, StatusPartiallyCompleted.IsKnown())
	assert.False(t, TransformationStatus("SOMETHING_NEW").IsKnown())
}

func TestJobRecord_Validate(t *testing.T) {
	valid := JobRecord{
		ID:           JobID("job-123"),
		Status:       StatusStarted,
		LinesOfCode:  376,
		CreatedAt:    time.Now(),
		LastUpdateAt: time.Now(),
	}
	require.NoError(t, valid.Validate())

	t.Run("empty id", func(t *testing.T) {
		r := valid
		r.ID = ""
		assert.ErrorIs(t, r.Validate(), ErrInvalidJobRecord)
	})

	t.Run("negative lines", func(t *testing.T) {
		r := valid
		r.LinesOfCode = -1
		assert.ErrorIs(t, r.Validate(), ErrInvalidJobRecord)
	})
}

func TestPollSpec_Validate(t *testing.T) {
	valid := PollSpec{
		JobID:           JobID("job-123"),
		SuccessStatuses: NewStatusSet(StatusCompleted),
		FailureStatuses: NewStatusSet(StatusFailed),
		Interval:        time.Second,
		Timeout:         time.Minute,
	}
	require.NoError(t, valid.Validate())

	tests := []struct {
		name   string
		mutate func(*PollSpec)
	}{
		{
			name:   "empty job id",
			mutate: func(s *PollSpec) { s.JobID = "" },
		},
		{
			name:   "empty success set",
			mutate: func(s *PollSpec) { s.SuccessStatuses = StatusSet{} },
		},
		{
			name:   "empty failure set",
			mutate: func(s *PollSpec) { s.FailureStatuses = StatusSet{} },
		},
		{
			name: "overlapping sets",
			mutate: func(s *PollSpec) {
				s.FailureStatuses = NewStatusSet(StatusCompleted, StatusFailed)
			},
		},
		{
			name:   "negative interval",
			mutate: func(s *PollSpec) { s.Interval = -time.Second },
		},
		{
			name:   "negative timeout",
			mutate: func(s *PollSpec) { s.Timeout = -time.Second },
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			spec := valid
			tt.mutate(&spec)
			assert.ErrorIs(t, spec.Validate(), ErrInvalidPollSpec)
		})
	}

	t.Run("zero interval and timeout are allowed", func(t *testing.T) {
		spec := valid
		spec.Interval = 0
		spec.Timeout = 0
		assert.NoError(t, spec.Validate())
	})
}
