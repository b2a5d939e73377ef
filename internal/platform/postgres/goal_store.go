package postgres

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"

	"github.com/google/uuid"
	"github.com/prepdeck/prepdeck-api/internal/domain"
	"github.com/prepdeck/prepdeck-api/internal/platform/logger"
	"github.com/prepdeck/prepdeck-api/internal/store"
)

// PostgresGoalStore implements the store.GoalStore interface using a
// PostgreSQL database as the storage backend.
type PostgresGoalStore struct {
	db     store.DBTX
	logger *slog.Logger
}

// NewPostgresGoalStore creates a new PostgreSQL implementation of the
// GoalStore interface. If logger is nil, the default logger is used.
func NewPostgresGoalStore(db store.DBTX, logger *slog.Logger) *PostgresGoalStore {
	if db == nil {
		panic("db cannot be nil")
	}

	if logger == nil {
		logger = slog.Default()
	}

	return &PostgresGoalStore{
		db:     db,
		logger: logger.With(slog.String("component", "goal_store")),
	}
}

// Ensure PostgresGoalStore implements store.GoalStore interface
var _ store.GoalStore = (*PostgresGoalStore)(nil)

// WithTx implements store.GoalStore.WithTx
func (s *PostgresGoalStore) WithTx(tx *sql.Tx) store.GoalStore {
	return &PostgresGoalStore{
		db:     tx,
		logger: s.logger,
	}
}

// Get implements store.GoalStore.Get
func (s *PostgresGoalStore) Get(ctx context.Context, userID uuid.UUID) (*domain.DailyGoal, error) {
	query := `
		SELECT user_id, flashcard_goal, cards_reviewed_today, last_reset_date, updated_at
		FROM daily_goals
		WHERE user_id = $1
	`

	var goal domain.DailyGoal
	err := s.db.QueryRowContext(ctx, query, userID).Scan(
		&goal.UserID,
		&goal.FlashcardGoal,
		&goal.CardsReviewedToday,
		&goal.LastResetDate,
		&goal.UpdatedAt,
	)
	if err != nil {
		if IsNotFoundError(err) {
			return nil, store.ErrGoalNotFound
		}
		return nil, MapError(err)
	}

	return &goal, nil
}

// Upsert implements store.GoalStore.Upsert
func (s *PostgresGoalStore) Upsert(ctx context.Context, goal *domain.DailyGoal) error {
	log := logger.FromContextOrDefault(ctx, s.logger)

	if err := goal.Validate(); err != nil {
		log.Warn("daily goal validation failed during upsert",
			slog.String("error", err.Error()),
			slog.String("user_id", goal.UserID.String()))
		return fmt.Errorf("%w: %v", store.ErrInvalidEntity, err)
	}

	query := `
		INSERT INTO daily_goals (user_id, flashcard_goal, cards_reviewed_today, last_reset_date, updated_at)
		VALUES ($1, $2, $3, $4, $5)
		ON CONFLICT (user_id) DO UPDATE SET
			flashcard_goal = EXCLUDED.flashcard_goal,
			cards_reviewed_today = EXCLUDED.cards_reviewed_today,
			last_reset_date = EXCLUDED.last_reset_date,
			updated_at = EXCLUDED.updated_at
	`
	_, err := s.db.ExecContext(
		ctx,
		query,
		goal.UserID,
		goal.FlashcardGoal,
		goal.CardsReviewedToday,
		goal.LastResetDate,
		goal.UpdatedAt,
	)
	if err != nil {
		log.Error("failed to upsert daily goal",
			slog.String("error", err.Error()),
			slog.String("user_id", goal.UserID.String()))
		return MapError(err)
	}

	return nil
}
