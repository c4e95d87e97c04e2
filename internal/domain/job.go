// Package domain contains the core types for transformation job tracking:
// job identity, status enumeration, progress updates, poll outcomes, and
// billing estimation. Types here are pure values with no I/O dependencies.
package domain

import (
	"fmt"
	"time"
)

// JobID uniquely identifies a remote transformation job.
// Created at job submission and immutable for the job's lifetime.
type JobID string

// String returns the raw job identifier.
func (id JobID) String() string { return string(id) }

// IsEmpty reports whether the identifier is unset.
func (id JobID) IsEmpty() bool { return id == "" }

// TransformationStatus describes the progress of a remote transformation job.
// Supplied by the remote service on each status query.
type TransformationStatus string

const (
	// StatusCreated indicates the job record exists but has not been accepted.
	StatusCreated TransformationStatus = "CREATED"

	// StatusAccepted indicates the service accepted the job for processing.
	StatusAccepted TransformationStatus = "ACCEPTED"

	// StatusStarted indicates processing has begun.
	StatusStarted TransformationStatus = "STARTED"

	// StatusPreparing indicates source analysis is in progress.
	StatusPreparing TransformationStatus = "PREPARING"

	// StatusPrepared indicates source analysis finished.
	StatusPrepared TransformationStatus = "PREPARED"

	// StatusPlanning indicates the transformation plan is being built.
	StatusPlanning TransformationStatus = "PLANNING"

	// StatusPlanned indicates the transformation plan is available.
	StatusPlanned TransformationStatus = "PLANNED"

	// StatusTransforming indicates code transformation is in progress.
	StatusTransforming TransformationStatus = "TRANSFORMING"

	// StatusTransformed indicates code transformation finished.
	StatusTransformed TransformationStatus = "TRANSFORMED"

	// StatusCompleted indicates the job finished successfully.
	StatusCompleted TransformationStatus = "COMPLETED"

	// StatusPartiallyCompleted indicates the job finished with some failures.
	StatusPartiallyCompleted TransformationStatus = "PARTIALLY_COMPLETED"

	// StatusFailed indicates the job failed.
	StatusFailed TransformationStatus = "FAILED"

	// StatusStopping indicates a stop was requested and is in progress.
	StatusStopping TransformationStatus = "STOPPING"

	// StatusStopped indicates the job was stopped before completion.
	StatusStopped TransformationStatus = "STOPPED"
)

// knownStatuses enumerates every status value the remote service emits.
var knownStatuses = map[TransformationStatus]struct{}{
	StatusCreated:            {},
	StatusAccepted:           {},
	StatusStarted:            {},
	StatusPreparing:          {},
	StatusPrepared:           {},
	StatusPlanning:           {},
	StatusPlanned:            {},
	StatusTransforming:       {},
	StatusTransformed:        {},
	StatusCompleted:          {},
	StatusPartiallyCompleted: {},
	StatusFailed:             {},
	StatusStopping:           {},
	StatusStopped:            {},
}

// IsKnown reports whether the status is one the remote service documents.
// Unknown statuses are still polled through; the loop only terminates on
// membership in the caller's success or failure sets.
func (s TransformationStatus) IsKnown() bool {
	_, ok := knownStatuses[s]
	return ok
}

// StatusSet is an immutable membership set over transformation statuses.
// Used for the caller-supplied success and failure sets that terminate a
// poll loop.
type StatusSet struct {
	members map[TransformationStatus]struct{}
}

// NewStatusSet builds a set from the given statuses.
func NewStatusSet(statuses ...TransformationStatus) StatusSet {
	members := make(map[TransformationStatus]struct{}, len(statuses))
	for _, s := range statuses {
		members[s] = struct{}{}
	}
	return StatusSet{members: members}
}

// Contains reports whether the status is a member of the set.
func (ss StatusSet) Contains(s TransformationStatus) bool {
	_, ok := ss.members[s]
	return ok
}

// IsEmpty reports whether the set has no members.
func (ss StatusSet) IsEmpty() bool { return len(ss.members) == 0 }

// Len returns the number of members.
func (ss StatusSet) Len() int { return len(ss.members) }

// Intersects reports whether any member of other is also a member of ss.
func (ss StatusSet) Intersects(other StatusSet) bool {
	small, large := ss, other
	if large.Len() < small.Len() {
		small, large = large, small
	}
	for s := range small.members {
		if large.Contains(s) {
			return true
		}
	}
	return false
}

// Members returns the set contents as a slice. Order is unspecified.
func (ss StatusSet) Members() []TransformationStatus {
	out := make([]TransformationStatus, 0, len(ss.members))
	for s := range ss.members {
		out = append(out, s)
	}
	return out
}

// DefaultSuccessStatuses returns the statuses treated as success when the
// caller does not supply a set.
func DefaultSuccessStatuses() StatusSet {
	return NewStatusSet(StatusCompleted, StatusPartiallyCompleted)
}

// DefaultFailureStatuses returns the statuses treated as failure when the
// caller does not supply a set.
func DefaultFailureStatuses() StatusSet {
	return NewStatusSet(StatusFailed, StatusStopped)
}

// JobRecord is the job metadata snapshot returned alongside each status
// query. Fields mirror what the remote service reports; the record is
// treated as read-only by the tracking layer.
type JobRecord struct {
	ID           JobID                `json:"id"`
	Status       TransformationStatus `json:"status"`
	Reason       string               `json:"reason,omitempty"`
	LinesOfCode  int64                `json:"lines_of_code"`
	CreatedAt    time.Time            `json:"created_at"`
	LastUpdateAt time.Time            `json:"last_update_at"`
}

// Validate checks structural invariants on a job record.
func (r JobRecord) Validate() error {
	if r.ID.IsEmpty() {
		return fmt.Errorf("%w: empty job id", ErrInvalidJobRecord)
	}
	if r.LinesOfCode < 0 {
		return fmt.Errorf("%w: negative lines of code %d", ErrInvalidJobRecord, r.LinesOfCode)
	}
	return nil
}
