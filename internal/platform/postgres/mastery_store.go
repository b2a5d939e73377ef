package postgres

import (
	"context"
	"database/sql"
	"log/slog"

	"github.com/google/uuid"
	"github.com/prepdeck/prepdeck-api/internal/domain"
	"github.com/prepdeck/prepdeck-api/internal/platform/logger"
	"github.com/prepdeck/prepdeck-api/internal/store"
)

// PostgresMasteryStore implements the store.MasteryStore interface using a
// PostgreSQL database as the storage backend.
type PostgresMasteryStore struct {
	db     store.DBTX
	logger *slog.Logger
}

// NewPostgresMasteryStore creates a new PostgreSQL implementation of the
// MasteryStore interface. If logger is nil, the default logger is used.
func NewPostgresMasteryStore(db store.DBTX, logger *slog.Logger) *PostgresMasteryStore {
	if db == nil {
		panic("db cannot be nil")
	}

	if logger == nil {
		logger = slog.Default()
	}

	return &PostgresMasteryStore{
		db:     db,
		logger: logger.With(slog.String("component", "mastery_store")),
	}
}

// Ensure PostgresMasteryStore implements store.MasteryStore interface
var _ store.MasteryStore = (*PostgresMasteryStore)(nil)

// WithTx implements store.MasteryStore.WithTx
func (s *PostgresMasteryStore) WithTx(tx *sql.Tx) store.MasteryStore {
	return &PostgresMasteryStore{
		db:     tx,
		logger: s.logger,
	}
}

const masteryColumns = `
	user_id, domain_id, score, accuracy_rate, consistency_score,
	difficulty_score, trend, question_count, peak_score, last_activity_at,
	updated_at
`

// Get implements store.MasteryStore.Get
func (s *PostgresMasteryStore) Get(ctx context.Context, userID, domainID uuid.UUID) (*domain.DomainMastery, error) {
	query := `SELECT ` + masteryColumns + `
		FROM domain_masteries
		WHERE user_id = $1 AND domain_id = $2
	`

	mastery, err := scanMastery(s.db.QueryRowContext(ctx, query, userID, domainID))
	if err != nil {
		if IsNotFoundError(err) {
			return nil, store.ErrMasteryNotFound
		}
		return nil, MapError(err)
	}

	s.clampIfCorrupt(ctx, mastery)
	return mastery, nil
}

// ListForUser implements store.MasteryStore.ListForUser
func (s *PostgresMasteryStore) ListForUser(ctx context.Context, userID uuid.UUID) ([]*domain.DomainMastery, error) {
	query := `SELECT ` + masteryColumns + `
		FROM domain_masteries
		WHERE user_id = $1
		ORDER BY domain_id
	`

	rows, err := s.db.QueryContext(ctx, query, userID)
	if err != nil {
		return nil, MapError(err)
	}
	defer func() { _ = rows.Close() }()

	var masteries []*domain.DomainMastery
	for rows.Next() {
		mastery, err := scanMastery(rows)
		if err != nil {
			return nil, MapError(err)
		}
		s.clampIfCorrupt(ctx, mastery)
		masteries = append(masteries, mastery)
	}
	return masteries, rows.Err()
}

// Upsert implements store.MasteryStore.Upsert
func (s *PostgresMasteryStore) Upsert(ctx context.Context, mastery *domain.DomainMastery) error {
	log := logger.FromContextOrDefault(ctx, s.logger)

	query := `
		INSERT INTO domain_masteries (` + masteryColumns + `)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11)
		ON CONFLICT (user_id, domain_id) DO UPDATE SET
			score = EXCLUDED.score,
			accuracy_rate = EXCLUDED.accuracy_rate,
			consistency_score = EXCLUDED.consistency_score,
			difficulty_score = EXCLUDED.difficulty_score,
			trend = EXCLUDED.trend,
			question_count = EXCLUDED.question_count,
			peak_score = EXCLUDED.peak_score,
			last_activity_at = EXCLUDED.last_activity_at,
			updated_at = EXCLUDED.updated_at
	`
	_, err := s.db.ExecContext(
		ctx,
		query,
		mastery.UserID,
		mastery.DomainID,
		mastery.Score,
		mastery.AccuracyRate,
		mastery.ConsistencyScore,
		mastery.DifficultyScore,
		mastery.Trend,
		mastery.QuestionCount,
		mastery.PeakScore,
		nullableTime(mastery.LastActivityAt),
		nullableTime(mastery.UpdatedAt),
	)
	if err != nil {
		log.Error("failed to upsert domain mastery",
			slog.String("error", err.Error()),
			slog.String("user_id", mastery.UserID.String()),
			slog.String("domain_id", mastery.DomainID.String()))
		return MapError(err)
	}

	return nil
}

func (s *PostgresMasteryStore) clampIfCorrupt(ctx context.Context, mastery *domain.DomainMastery) {
	if mastery.Clamp() {
		logger.FromContextOrDefault(ctx, s.logger).Warn(
			"domain mastery failed invariant check, clamped",
			slog.String("user_id", mastery.UserID.String()),
			slog.String("domain_id", mastery.DomainID.String()))
	}
}

func scanMastery(row rowScanner) (*domain.DomainMastery, error) {
	var mastery domain.DomainMastery
	var lastActivity, updatedAt sql.NullTime

	err := row.Scan(
		&mastery.UserID,
		&mastery.DomainID,
		&mastery.Score,
		&mastery.AccuracyRate,
		&mastery.ConsistencyScore,
		&mastery.DifficultyScore,
		&mastery.Trend,
		&mastery.QuestionCount,
		&mastery.PeakScore,
		&lastActivity,
		&updatedAt,
	)
	if err != nil {
		return nil, err
	}

	if lastActivity.Valid {
		mastery.LastActivityAt = lastActivity.Time
	}
	if updatedAt.Valid {
		mastery.UpdatedAt = updatedAt.Time
	}

	return &mastery, nil
}
