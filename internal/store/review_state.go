package store

import (
	"context"
	"database/sql"
	"time"

	"github.com/google/uuid"
	"github.com/prepdeck/prepdeck-api/internal/domain"
)

// BucketCounts summarizes a user's cards by mastery bucket.
type BucketCounts struct {
	New       int
	Learning  int
	Reviewing int
	Mastered  int
}

// ReviewStateStore defines the interface for per-user scheduling state.
// One row exists per (userID, cardID) pair, created on first exposure and
// mutated only through the scheduler's output.
type ReviewStateStore interface {
	// Get retrieves the review state for a user and card.
	// Returns ErrReviewStateNotFound if the user has never seen the card.
	Get(ctx context.Context, userID, cardID uuid.UUID) (*domain.ReviewState, error)

	// GetForUpdate retrieves the review state and locks the row for the
	// duration of the surrounding transaction (SELECT ... FOR UPDATE). It
	// serializes concurrent reviews of the same card; call it only through
	// WithTx inside store.RunInTransaction.
	// Returns ErrReviewStateNotFound if the user has never seen the card.
	GetForUpdate(ctx context.Context, userID, cardID uuid.UUID) (*domain.ReviewState, error)

	// Save upserts a review state keyed by (userID, cardID).
	// Returns validation errors if the state is invalid.
	Save(ctx context.Context, state *domain.ReviewState) error

	// ListDue returns review states with nextReviewAt <= now for the user,
	// optionally filtered by domain, most overdue first, up to limit.
	ListDue(
		ctx context.Context,
		userID uuid.UUID,
		domainID uuid.UUID, // uuid.Nil means all domains
		now time.Time,
		limit int,
	) ([]*domain.ReviewState, error)

	// CountDue counts review states due at or before now for the user,
	// optionally filtered by domain.
	CountDue(ctx context.Context, userID uuid.UUID, domainID uuid.UUID, now time.Time) (int, error)

	// CountByBucket tallies the user's cards per mastery bucket.
	CountByBucket(ctx context.Context, userID uuid.UUID) (BucketCounts, error)

	// WithTx returns a ReviewStateStore bound to the given transaction.
	WithTx(tx *sql.Tx) ReviewStateStore
}
