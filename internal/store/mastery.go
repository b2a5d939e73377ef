package store

import (
	"context"
	"database/sql"

	"github.com/google/uuid"
	"github.com/prepdeck/prepdeck-api/internal/domain"
)

// MasteryStore defines the interface for cached DomainMastery snapshots.
// Snapshots are fully derived from the event log; this cache exists for read
// performance and may lag writes by a bounded staleness window.
type MasteryStore interface {
	// Get retrieves the mastery snapshot for a user and domain.
	// Returns ErrMasteryNotFound if no snapshot has been computed yet.
	Get(ctx context.Context, userID, domainID uuid.UUID) (*domain.DomainMastery, error)

	// ListForUser returns all mastery snapshots for the user, ordered by
	// domain ID for deterministic output.
	ListForUser(ctx context.Context, userID uuid.UUID) ([]*domain.DomainMastery, error)

	// Upsert writes a snapshot keyed by (userID, domainID).
	Upsert(ctx context.Context, mastery *domain.DomainMastery) error

	// WithTx returns a MasteryStore bound to the given transaction.
	WithTx(tx *sql.Tx) MasteryStore
}

// DomainStore defines the interface for the exam blueprint.
type DomainStore interface {
	// GetByID retrieves an exam domain.
	// Returns ErrDomainNotFound if the domain does not exist.
	GetByID(ctx context.Context, id uuid.UUID) (*domain.ExamDomain, error)

	// List returns all exam domains ordered by name.
	List(ctx context.Context) ([]*domain.ExamDomain, error)
}
