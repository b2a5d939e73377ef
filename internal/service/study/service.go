// Package study implements the learner-facing study loop: selecting due and
// new cards, recording review outcomes through the spaced repetition
// scheduler, and tracking daily goals.
package study

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/prepdeck/prepdeck-api/internal/domain"
)

// Common error types for the study service
var (
	// ErrInvalidRating indicates the review carried an unknown difficulty rating.
	ErrInvalidRating = errors.New("invalid review rating")

	// ErrInvalidLimit indicates a non-positive selection limit.
	ErrInvalidLimit = errors.New("limit must be a positive number")

	// ErrCardNotFound indicates the card does not exist or is inactive.
	ErrCardNotFound = errors.New("card not found")

	// ErrInvalidGoal indicates a daily goal below one card.
	ErrInvalidGoal = errors.New("daily goal must be a positive number")
)

// DueCard is one entry of a study queue. ReviewState is nil for cards the
// learner has never seen.
type DueCard struct {
	Card        *domain.Flashcard
	ReviewState *domain.ReviewState
}

// ReviewResult is the outcome of recording a review. Duplicate is true when
// the review arrived inside the debounce window and the prior state was
// returned without scheduling a second time.
type ReviewResult struct {
	State     *domain.ReviewState
	Duplicate bool
}

// StudyStats summarizes a learner's current workload and progress.
type StudyStats struct {
	DueToday  int               `json:"due_today"`
	NewCards  int               `json:"new_cards"`
	Buckets   BucketBreakdown   `json:"mastery"`
	DailyGoal DailyGoalProgress `json:"daily_goal"`
}

// BucketBreakdown counts the learner's seen cards per mastery bucket.
type BucketBreakdown struct {
	Learning  int `json:"learning"`
	Reviewing int `json:"reviewing"`
	Mastered  int `json:"mastered"`
}

// DailyGoalProgress is today's slice of the daily goal record.
type DailyGoalProgress struct {
	CardsReviewedToday int `json:"cards_reviewed_today"`
	FlashcardGoal      int `json:"flashcard_goal"`
}

// StudyService provides the study loop operations.
type StudyService interface {
	// GetDueCards assembles the study queue for a user: overdue cards first,
	// most overdue leading, with unseen cards interleaved at a fixed cadence
	// up to the new-card share of the limit. A domainID of uuid.Nil selects
	// across all domains. Returning fewer than limit cards is not an error.
	GetDueCards(ctx context.Context, userID, domainID uuid.UUID, limit int) ([]DueCard, error)

	// ReviewCard records a review outcome: it runs the scheduler, persists
	// the new state, appends the outcome event, and advances the daily goal
	// counter, all in one transaction. A duplicate review of the same card
	// inside the debounce window returns the prior state with Duplicate set
	// instead of scheduling twice.
	ReviewCard(ctx context.Context, userID, cardID uuid.UUID, rating domain.ReviewRating) (*ReviewResult, error)

	// GetStudyStats reports the user's due count, unseen count, bucket
	// breakdown, and daily goal progress.
	GetStudyStats(ctx context.Context, userID uuid.UUID) (*StudyStats, error)

	// UpdateDailyGoal sets the user's daily review target.
	UpdateDailyGoal(ctx context.Context, userID uuid.UUID, flashcardGoal int) (*domain.DailyGoal, error)
}

// ServiceError wraps study service failures with the failed operation so
// callers can log context without string matching.
type ServiceError struct {
	Operation string
	Err       error
}

// Error implements the error interface.
func (e *ServiceError) Error() string {
	return fmt.Sprintf("%s operation failed: %v", e.Operation, e.Err)
}

// Unwrap returns the wrapped error to support errors.Is/errors.As.
func (e *ServiceError) Unwrap() error {
	return e.Err
}

// Config holds the tunable knobs of the study loop.
type Config struct {
	// NewCardShare is the fraction of the selection limit reserved for
	// unseen cards.
	NewCardShare float64

	// NewPerDueRatio interleaves one unseen card after this many due cards.
	NewPerDueRatio int

	// ReviewDebounce is the window within which a repeat review of the same
	// card is answered with the prior result.
	ReviewDebounce time.Duration

	// DefaultLimit is used when a caller passes no limit.
	DefaultLimit int
}

// DefaultConfig returns the standard study loop configuration.
func DefaultConfig() Config {
	return Config{
		NewCardShare:   0.2,
		NewPerDueRatio: 4,
		ReviewDebounce: 2 * time.Second,
		DefaultLimit:   20,
	}
}
