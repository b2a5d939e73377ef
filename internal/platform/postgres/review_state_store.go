package postgres

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"
	"github.com/prepdeck/prepdeck-api/internal/domain"
	"github.com/prepdeck/prepdeck-api/internal/platform/logger"
	"github.com/prepdeck/prepdeck-api/internal/store"
)

// PostgresReviewStateStore implements the store.ReviewStateStore interface
// using a PostgreSQL database as the storage backend.
type PostgresReviewStateStore struct {
	db     store.DBTX
	logger *slog.Logger
}

// NewPostgresReviewStateStore creates a new PostgreSQL implementation of the
// ReviewStateStore interface. If logger is nil, the default logger is used.
func NewPostgresReviewStateStore(db store.DBTX, logger *slog.Logger) *PostgresReviewStateStore {
	if db == nil {
		panic("db cannot be nil")
	}

	if logger == nil {
		logger = slog.Default()
	}

	return &PostgresReviewStateStore{
		db:     db,
		logger: logger.With(slog.String("component", "review_state_store")),
	}
}

// Ensure PostgresReviewStateStore implements store.ReviewStateStore interface
var _ store.ReviewStateStore = (*PostgresReviewStateStore)(nil)

// WithTx implements store.ReviewStateStore.WithTx
func (s *PostgresReviewStateStore) WithTx(tx *sql.Tx) store.ReviewStateStore {
	return &PostgresReviewStateStore{
		db:     tx,
		logger: s.logger,
	}
}

const reviewStateColumns = `
	user_id, card_id, domain_id, interval_days, ease_factor, review_count,
	lapses, bucket, recent_ratings, last_reviewed_at, next_review_at,
	created_at, updated_at
`

// Get implements store.ReviewStateStore.Get
func (s *PostgresReviewStateStore) Get(ctx context.Context, userID, cardID uuid.UUID) (*domain.ReviewState, error) {
	query := `SELECT ` + reviewStateColumns + `
		FROM review_states
		WHERE user_id = $1 AND card_id = $2
	`
	return s.getOne(ctx, query, userID, cardID)
}

// GetForUpdate implements store.ReviewStateStore.GetForUpdate
func (s *PostgresReviewStateStore) GetForUpdate(ctx context.Context, userID, cardID uuid.UUID) (*domain.ReviewState, error) {
	query := `SELECT ` + reviewStateColumns + `
		FROM review_states
		WHERE user_id = $1 AND card_id = $2
		FOR UPDATE
	`
	return s.getOne(ctx, query, userID, cardID)
}

func (s *PostgresReviewStateStore) getOne(ctx context.Context, query string, userID, cardID uuid.UUID) (*domain.ReviewState, error) {
	log := logger.FromContextOrDefault(ctx, s.logger)

	row := s.db.QueryRowContext(ctx, query, userID, cardID)
	state, err := scanReviewState(row)
	if err != nil {
		if IsNotFoundError(err) {
			return nil, store.ErrReviewStateNotFound
		}
		return nil, MapError(err)
	}

	// Repair values corrupted outside the scheduler rather than failing the
	// read path.
	if state.Clamp() {
		log.Warn("review state failed invariant check, clamped",
			slog.String("user_id", state.UserID.String()),
			slog.String("card_id", state.CardID.String()))
	}

	return state, nil
}

// Save implements store.ReviewStateStore.Save
func (s *PostgresReviewStateStore) Save(ctx context.Context, state *domain.ReviewState) error {
	log := logger.FromContextOrDefault(ctx, s.logger)

	if err := state.Validate(); err != nil {
		log.Warn("review state validation failed during save",
			slog.String("error", err.Error()),
			slog.String("user_id", state.UserID.String()),
			slog.String("card_id", state.CardID.String()))
		return fmt.Errorf("%w: %v", store.ErrInvalidEntity, err)
	}

	ratings, err := json.Marshal(state.RecentRatings)
	if err != nil {
		return fmt.Errorf("failed to marshal recent ratings: %w", err)
	}

	query := `
		INSERT INTO review_states (` + reviewStateColumns + `)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13)
		ON CONFLICT (user_id, card_id) DO UPDATE SET
			interval_days = EXCLUDED.interval_days,
			ease_factor = EXCLUDED.ease_factor,
			review_count = EXCLUDED.review_count,
			lapses = EXCLUDED.lapses,
			bucket = EXCLUDED.bucket,
			recent_ratings = EXCLUDED.recent_ratings,
			last_reviewed_at = EXCLUDED.last_reviewed_at,
			next_review_at = EXCLUDED.next_review_at,
			updated_at = EXCLUDED.updated_at
	`
	_, err = s.db.ExecContext(
		ctx,
		query,
		state.UserID,
		state.CardID,
		state.DomainID,
		state.IntervalDays,
		state.EaseFactor,
		state.ReviewCount,
		state.Lapses,
		state.Bucket,
		ratings,
		nullableTime(state.LastReviewedAt),
		state.NextReviewAt,
		state.CreatedAt,
		state.UpdatedAt,
	)
	if err != nil {
		log.Error("failed to save review state",
			slog.String("error", err.Error()),
			slog.String("user_id", state.UserID.String()),
			slog.String("card_id", state.CardID.String()))
		return MapError(err)
	}

	return nil
}

// ListDue implements store.ReviewStateStore.ListDue
func (s *PostgresReviewStateStore) ListDue(
	ctx context.Context,
	userID uuid.UUID,
	domainID uuid.UUID,
	now time.Time,
	limit int,
) ([]*domain.ReviewState, error) {
	// Most overdue first.
	query := `SELECT ` + reviewStateColumns + `
		FROM review_states
		WHERE user_id = $1
		  AND ($2::uuid IS NULL OR domain_id = $2)
		  AND next_review_at <= $3
		ORDER BY next_review_at, card_id
		LIMIT $4
	`

	rows, err := s.db.QueryContext(ctx, query, userID, nullableUUID(domainID), now, limit)
	if err != nil {
		return nil, MapError(err)
	}
	defer func() { _ = rows.Close() }()

	var states []*domain.ReviewState
	for rows.Next() {
		state, err := scanReviewState(rows)
		if err != nil {
			return nil, MapError(err)
		}
		state.Clamp()
		states = append(states, state)
	}
	return states, rows.Err()
}

// CountDue implements store.ReviewStateStore.CountDue
func (s *PostgresReviewStateStore) CountDue(
	ctx context.Context,
	userID uuid.UUID,
	domainID uuid.UUID,
	now time.Time,
) (int, error) {
	query := `
		SELECT COUNT(*)
		FROM review_states
		WHERE user_id = $1
		  AND ($2::uuid IS NULL OR domain_id = $2)
		  AND next_review_at <= $3
	`

	var count int
	if err := s.db.QueryRowContext(ctx, query, userID, nullableUUID(domainID), now).Scan(&count); err != nil {
		return 0, MapError(err)
	}
	return count, nil
}

// CountByBucket implements store.ReviewStateStore.CountByBucket
func (s *PostgresReviewStateStore) CountByBucket(ctx context.Context, userID uuid.UUID) (store.BucketCounts, error) {
	query := `
		SELECT bucket, COUNT(*)
		FROM review_states
		WHERE user_id = $1
		GROUP BY bucket
	`

	rows, err := s.db.QueryContext(ctx, query, userID)
	if err != nil {
		return store.BucketCounts{}, MapError(err)
	}
	defer func() { _ = rows.Close() }()

	var counts store.BucketCounts
	for rows.Next() {
		var bucket domain.MasteryBucket
		var n int
		if err := rows.Scan(&bucket, &n); err != nil {
			return store.BucketCounts{}, MapError(err)
		}
		switch bucket {
		case domain.BucketNew:
			counts.New = n
		case domain.BucketLearning:
			counts.Learning = n
		case domain.BucketReviewing:
			counts.Reviewing = n
		case domain.BucketMastered:
			counts.Mastered = n
		}
	}
	return counts, rows.Err()
}

// rowScanner covers both *sql.Row and *sql.Rows.
type rowScanner interface {
	Scan(dest ...any) error
}

func scanReviewState(row rowScanner) (*domain.ReviewState, error) {
	var state domain.ReviewState
	var ratings []byte
	var lastReviewed sql.NullTime

	err := row.Scan(
		&state.UserID,
		&state.CardID,
		&state.DomainID,
		&state.IntervalDays,
		&state.EaseFactor,
		&state.ReviewCount,
		&state.Lapses,
		&state.Bucket,
		&ratings,
		&lastReviewed,
		&state.NextReviewAt,
		&state.CreatedAt,
		&state.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}

	if len(ratings) > 0 {
		if err := json.Unmarshal(ratings, &state.RecentRatings); err != nil {
			return nil, fmt.Errorf("failed to unmarshal recent ratings: %w", err)
		}
	}
	if lastReviewed.Valid {
		state.LastReviewedAt = lastReviewed.Time
	}

	return &state, nil
}

// nullableTime renders the zero time as SQL NULL.
func nullableTime(t time.Time) any {
	if t.IsZero() {
		return nil
	}
	return t
}
