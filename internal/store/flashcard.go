package store

import (
	"context"
	"database/sql"

	"github.com/google/uuid"
	"github.com/prepdeck/prepdeck-api/internal/domain"
)

// FlashcardStore defines the interface for flashcard content persistence.
// Cards are authored content: learners never mutate them.
type FlashcardStore interface {
	// CreateMultiple saves multiple cards to the store. Run it within a
	// transaction (WithTx + store.RunInTransaction) when atomicity across
	// the batch matters, e.g. when persisting a generated draft set.
	// Returns validation errors if any card data is invalid.
	CreateMultiple(ctx context.Context, cards []*domain.Flashcard) error

	// GetByID retrieves a card by its unique ID.
	// Returns ErrCardNotFound if the card does not exist.
	GetByID(ctx context.Context, id uuid.UUID) (*domain.Flashcard, error)

	// GetByIDs retrieves the given cards, preserving the input order and
	// skipping ids that do not exist.
	GetByIDs(ctx context.Context, ids []uuid.UUID) ([]*domain.Flashcard, error)

	// ListNewForUser returns active cards the user has no review state for,
	// optionally filtered by domain, oldest first, up to limit.
	ListNewForUser(
		ctx context.Context,
		userID uuid.UUID,
		domainID uuid.UUID, // uuid.Nil means all domains
		limit int,
	) ([]*domain.Flashcard, error)

	// CountNewForUser counts active cards the user has never seen,
	// optionally filtered by domain.
	CountNewForUser(ctx context.Context, userID uuid.UUID, domainID uuid.UUID) (int, error)

	// WithTx returns a FlashcardStore bound to the given transaction.
	WithTx(tx *sql.Tx) FlashcardStore
}
