package store

import (
	"context"
	"database/sql"

	"github.com/google/uuid"
	"github.com/prepdeck/prepdeck-api/internal/domain"
)

// GoalStore defines the interface for daily goal persistence.
type GoalStore interface {
	// Get retrieves the user's daily goal record.
	// Returns ErrGoalNotFound if the user has never configured or touched one.
	Get(ctx context.Context, userID uuid.UUID) (*domain.DailyGoal, error)

	// Upsert writes the goal record keyed by userID.
	Upsert(ctx context.Context, goal *domain.DailyGoal) error

	// WithTx returns a GoalStore bound to the given transaction.
	WithTx(tx *sql.Tx) GoalStore
}
