package domain

import "errors"

// ErrInvalidPollSpec indicates that a poll specification contains invalid data.
var ErrInvalidPollSpec = errors.New("invalid poll spec")

// ErrInvalidJobRecord indicates that a job record fails structural validation.
var ErrInvalidJobRecord = errors.New("invalid job record")

// ErrInvalidLineCount indicates a negative line count in a billing estimate.
var ErrInvalidLineCount = errors.New("invalid line count")
