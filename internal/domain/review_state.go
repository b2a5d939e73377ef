package domain

import (
	"errors"
	"time"

	"github.com/google/uuid"
)

// ReviewRating represents the learner's self-reported recall quality for a
// flashcard review.
type ReviewRating string

// Possible review rating values
const (
	RatingAgain ReviewRating = "again"
	RatingHard  ReviewRating = "hard"
	RatingGood  ReviewRating = "good"
	RatingEasy  ReviewRating = "easy"
)

// Valid reports whether the rating is one of the four known values.
func (r ReviewRating) Valid() bool {
	switch r {
	case RatingAgain, RatingHard, RatingGood, RatingEasy:
		return true
	default:
		return false
	}
}

// MasteryBucket is the coarse learning-stage classification of a card for
// one learner, derived from interval and lapse history.
type MasteryBucket string

// Possible mastery bucket values, ordered new < learning < reviewing < mastered.
const (
	BucketNew       MasteryBucket = "new"
	BucketLearning  MasteryBucket = "learning"
	BucketReviewing MasteryBucket = "reviewing"
	BucketMastered  MasteryBucket = "mastered"
)

// Rank returns the bucket's position in the progression order, with
// BucketNew at 0. Unknown buckets rank below new.
func (b MasteryBucket) Rank() int {
	switch b {
	case BucketNew:
		return 0
	case BucketLearning:
		return 1
	case BucketReviewing:
		return 2
	case BucketMastered:
		return 3
	default:
		return -1
	}
}

// RecentRatingWindow is how many trailing ratings a ReviewState retains.
// Bucket promotion rules inspect at most the last three ratings, so the
// window never needs to grow beyond that.
const RecentRatingWindow = 3

// Common validation errors for ReviewState
var (
	ErrEmptyStateUserID  = errors.New("review state user ID cannot be empty")
	ErrEmptyStateCardID  = errors.New("review state card ID cannot be empty")
	ErrNegativeInterval  = errors.New("interval must be greater than or equal to 0")
	ErrEaseOutOfRange    = errors.New("ease factor out of range")
	ErrUnknownBucket     = errors.New("unknown mastery bucket")
	ErrNegativeLapses    = errors.New("lapses must be greater than or equal to 0")
	ErrPastNextReview    = errors.New("next review time cannot precede the review that produced it")
)

// ReviewState tracks one learner's spaced repetition schedule for one card.
// It is created on first exposure, mutated only by the scheduler, and never
// deleted while the card is active.
type ReviewState struct {
	UserID         uuid.UUID      `json:"user_id"`
	CardID         uuid.UUID      `json:"card_id"`
	DomainID       uuid.UUID      `json:"domain_id"`
	IntervalDays   int            `json:"interval_days"`
	EaseFactor     float64        `json:"ease_factor"`
	ReviewCount    int            `json:"review_count"`
	Lapses         int            `json:"lapses"`
	Bucket         MasteryBucket  `json:"bucket"`
	RecentRatings  []ReviewRating `json:"recent_ratings"` // newest last, at most RecentRatingWindow
	LastReviewedAt time.Time      `json:"last_reviewed_at"`
	NextReviewAt   time.Time      `json:"next_review_at"`
	CreatedAt      time.Time      `json:"created_at"`
	UpdatedAt      time.Time      `json:"updated_at"`
}

// NewReviewState creates scheduling state for a card the learner is seeing
// for the first time. The card is due immediately.
func NewReviewState(userID, cardID, domainID uuid.UUID) (*ReviewState, error) {
	now := time.Now().UTC()
	state := &ReviewState{
		UserID:       userID,
		CardID:       cardID,
		DomainID:     domainID,
		IntervalDays: 0,
		EaseFactor:   2.5,
		ReviewCount:  0,
		Lapses:       0,
		Bucket:       BucketNew,
		NextReviewAt: now,
		CreatedAt:    now,
		UpdatedAt:    now,
	}

	if err := state.Validate(); err != nil {
		return nil, err
	}

	return state, nil
}

// Validate checks if the ReviewState has valid data.
// Returns an error if any field fails validation.
func (s *ReviewState) Validate() error {
	if s.UserID == uuid.Nil {
		return ErrEmptyStateUserID
	}

	if s.CardID == uuid.Nil {
		return ErrEmptyStateCardID
	}

	if s.IntervalDays < 0 {
		return ErrNegativeInterval
	}

	if s.EaseFactor <= 1.0 {
		return ErrEaseOutOfRange
	}

	if s.Lapses < 0 {
		return ErrNegativeLapses
	}

	if s.Bucket.Rank() < 0 {
		return ErrUnknownBucket
	}

	// The scheduler always places the next review at or after the update that
	// produced it; an earlier timestamp means corrupted state.
	if s.NextReviewAt.Before(s.UpdatedAt) {
		return ErrPastNextReview
	}

	return nil
}

// Clone returns a deep copy of the state. The scheduler never mutates the
// input state; it clones and returns a new value for the caller to persist.
func (s *ReviewState) Clone() *ReviewState {
	clone := *s
	clone.RecentRatings = make([]ReviewRating, len(s.RecentRatings))
	copy(clone.RecentRatings, s.RecentRatings)
	return &clone
}

// Clamp forces persisted values back into the ranges the engine guarantees.
// It returns true if anything had to change, which read paths treat as an
// invariant violation worth logging but never worth failing a request over.
func (s *ReviewState) Clamp() bool {
	changed := false

	if s.IntervalDays < 0 {
		s.IntervalDays = 0
		changed = true
	}

	if s.EaseFactor < 1.3 {
		s.EaseFactor = 1.3
		changed = true
	}
	if s.EaseFactor > 3.0 {
		s.EaseFactor = 3.0
		changed = true
	}

	if s.Lapses < 0 {
		s.Lapses = 0
		changed = true
	}

	if s.Bucket.Rank() < 0 {
		s.Bucket = BucketNew
		changed = true
	}

	return changed
}
