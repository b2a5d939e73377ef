package srs

import (
	"errors"
	"time"

	"github.com/prepdeck/prepdeck-api/internal/domain"
)

// Common errors
var (
	ErrNilState      = errors.New("review state cannot be nil")
	ErrInvalidRating = errors.New("invalid review rating")
)

// Scheduler defines the interface for spaced repetition scheduling.
type Scheduler interface {
	// Schedule computes the post-review state for a difficulty rating.
	// The input state is never mutated; the returned state carries the new
	// interval, ease factor, bucket, and next review time for the caller to
	// persist. Execution is synchronous and O(1).
	Schedule(
		state *domain.ReviewState,
		rating domain.ReviewRating,
		now time.Time,
	) (*domain.ReviewState, error)
}

// defaultScheduler is the standard implementation of the Scheduler interface.
type defaultScheduler struct {
	params *Params
}

// NewDefaultScheduler creates a Scheduler with the default parameters.
func NewDefaultScheduler() Scheduler {
	return &defaultScheduler{
		params: NewDefaultParams(),
	}
}

// NewSchedulerWithParams creates a Scheduler with custom parameters.
func NewSchedulerWithParams(params *Params) Scheduler {
	return &defaultScheduler{
		params: params,
	}
}

// Schedule implements the Scheduler interface.
func (s *defaultScheduler) Schedule(
	state *domain.ReviewState,
	rating domain.ReviewRating,
	now time.Time,
) (*domain.ReviewState, error) {
	if state == nil {
		return nil, ErrNilState
	}

	if !rating.Valid() {
		return nil, ErrInvalidRating
	}

	return nextState(state, rating, now, s.params), nil
}
