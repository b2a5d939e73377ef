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

// PostgresFlashcardStore implements the store.FlashcardStore interface
// using a PostgreSQL database as the storage backend.
type PostgresFlashcardStore struct {
	db     store.DBTX
	logger *slog.Logger
}

// NewPostgresFlashcardStore creates a new PostgreSQL implementation of the
// FlashcardStore interface. It accepts a database connection or transaction
// managed by the caller. If logger is nil, the default logger is used.
func NewPostgresFlashcardStore(db store.DBTX, logger *slog.Logger) *PostgresFlashcardStore {
	if db == nil {
		panic("db cannot be nil")
	}

	if logger == nil {
		logger = slog.Default()
	}

	return &PostgresFlashcardStore{
		db:     db,
		logger: logger.With(slog.String("component", "flashcard_store")),
	}
}

// Ensure PostgresFlashcardStore implements store.FlashcardStore interface
var _ store.FlashcardStore = (*PostgresFlashcardStore)(nil)

// WithTx implements store.FlashcardStore.WithTx
func (s *PostgresFlashcardStore) WithTx(tx *sql.Tx) store.FlashcardStore {
	return &PostgresFlashcardStore{
		db:     tx,
		logger: s.logger,
	}
}

// CreateMultiple implements store.FlashcardStore.CreateMultiple
func (s *PostgresFlashcardStore) CreateMultiple(ctx context.Context, cards []*domain.Flashcard) error {
	log := logger.FromContextOrDefault(ctx, s.logger)

	for _, card := range cards {
		if err := card.Validate(); err != nil {
			log.Warn("card validation failed during create",
				slog.String("error", err.Error()),
				slog.String("card_id", card.ID.String()))
			return fmt.Errorf("%w: %v", store.ErrInvalidEntity, err)
		}
	}

	query := `
		INSERT INTO flashcards (id, domain_id, front, back, difficulty, active, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
	`
	for _, card := range cards {
		_, err := s.db.ExecContext(
			ctx,
			query,
			card.ID,
			card.DomainID,
			card.Front,
			card.Back,
			card.Difficulty,
			card.Active,
			card.CreatedAt,
			card.UpdatedAt,
		)
		if err != nil {
			log.Error("failed to create flashcard",
				slog.String("error", err.Error()),
				slog.String("card_id", card.ID.String()))
			return MapError(err)
		}
	}

	log.Info("flashcards created",
		slog.Int("count", len(cards)))
	return nil
}

// GetByID implements store.FlashcardStore.GetByID
func (s *PostgresFlashcardStore) GetByID(ctx context.Context, id uuid.UUID) (*domain.Flashcard, error) {
	query := `
		SELECT id, domain_id, front, back, difficulty, active, created_at, updated_at
		FROM flashcards
		WHERE id = $1
	`

	var card domain.Flashcard
	err := s.db.QueryRowContext(ctx, query, id).Scan(
		&card.ID,
		&card.DomainID,
		&card.Front,
		&card.Back,
		&card.Difficulty,
		&card.Active,
		&card.CreatedAt,
		&card.UpdatedAt,
	)
	if err != nil {
		if IsNotFoundError(err) {
			return nil, store.ErrCardNotFound
		}
		return nil, MapError(err)
	}

	return &card, nil
}

// GetByIDs implements store.FlashcardStore.GetByIDs
func (s *PostgresFlashcardStore) GetByIDs(ctx context.Context, ids []uuid.UUID) ([]*domain.Flashcard, error) {
	if len(ids) == 0 {
		return nil, nil
	}

	query := `
		SELECT id, domain_id, front, back, difficulty, active, created_at, updated_at
		FROM flashcards
		WHERE id = ANY($1::uuid[])
	`

	rows, err := s.db.QueryContext(ctx, query, uuidArray(ids))
	if err != nil {
		return nil, MapError(err)
	}
	defer func() { _ = rows.Close() }()

	byID := make(map[uuid.UUID]*domain.Flashcard, len(ids))
	for rows.Next() {
		var card domain.Flashcard
		if err := rows.Scan(
			&card.ID,
			&card.DomainID,
			&card.Front,
			&card.Back,
			&card.Difficulty,
			&card.Active,
			&card.CreatedAt,
			&card.UpdatedAt,
		); err != nil {
			return nil, MapError(err)
		}
		byID[card.ID] = &card
	}
	if err := rows.Err(); err != nil {
		return nil, MapError(err)
	}

	// Preserve the caller's ordering, dropping unknown ids.
	cards := make([]*domain.Flashcard, 0, len(ids))
	for _, id := range ids {
		if card, ok := byID[id]; ok {
			cards = append(cards, card)
		}
	}
	return cards, nil
}

// ListNewForUser implements store.FlashcardStore.ListNewForUser
func (s *PostgresFlashcardStore) ListNewForUser(
	ctx context.Context,
	userID uuid.UUID,
	domainID uuid.UUID,
	limit int,
) ([]*domain.Flashcard, error) {
	query := `
		SELECT c.id, c.domain_id, c.front, c.back, c.difficulty, c.active, c.created_at, c.updated_at
		FROM flashcards c
		WHERE c.active
		  AND ($2::uuid IS NULL OR c.domain_id = $2)
		  AND NOT EXISTS (
		      SELECT 1 FROM review_states rs
		      WHERE rs.user_id = $1 AND rs.card_id = c.id
		  )
		ORDER BY c.created_at, c.id
		LIMIT $3
	`

	rows, err := s.db.QueryContext(ctx, query, userID, nullableUUID(domainID), limit)
	if err != nil {
		return nil, MapError(err)
	}
	defer func() { _ = rows.Close() }()

	var cards []*domain.Flashcard
	for rows.Next() {
		var card domain.Flashcard
		if err := rows.Scan(
			&card.ID,
			&card.DomainID,
			&card.Front,
			&card.Back,
			&card.Difficulty,
			&card.Active,
			&card.CreatedAt,
			&card.UpdatedAt,
		); err != nil {
			return nil, MapError(err)
		}
		cards = append(cards, &card)
	}
	return cards, rows.Err()
}

// CountNewForUser implements store.FlashcardStore.CountNewForUser
func (s *PostgresFlashcardStore) CountNewForUser(
	ctx context.Context,
	userID uuid.UUID,
	domainID uuid.UUID,
) (int, error) {
	query := `
		SELECT COUNT(*)
		FROM flashcards c
		WHERE c.active
		  AND ($2::uuid IS NULL OR c.domain_id = $2)
		  AND NOT EXISTS (
		      SELECT 1 FROM review_states rs
		      WHERE rs.user_id = $1 AND rs.card_id = c.id
		  )
	`

	var count int
	if err := s.db.QueryRowContext(ctx, query, userID, nullableUUID(domainID)).Scan(&count); err != nil {
		return 0, MapError(err)
	}
	return count, nil
}
