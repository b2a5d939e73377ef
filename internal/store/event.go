package store

import (
	"context"
	"database/sql"
	"time"

	"github.com/google/uuid"
	"github.com/prepdeck/prepdeck-api/internal/domain"
)

// EventStore defines the interface for the append-only outcome log.
// Events are immutable once written and are the source of truth for all
// derived analytics.
type EventStore interface {
	// Append writes one event. Events are never updated or deleted.
	// Returns validation errors if the event is invalid.
	Append(ctx context.Context, event *domain.ReviewEvent) error

	// ListRecentByDomain returns the most recent events for a user and
	// domain, ordered oldest first, up to limit. This is the aggregator's
	// input window.
	ListRecentByDomain(
		ctx context.Context,
		userID, domainID uuid.UUID,
		limit int,
	) ([]*domain.ReviewEvent, error)

	// ListSince returns all of the user's events recorded after the cutoff,
	// across domains, ordered oldest first. Used for weekly insight
	// comparisons.
	ListSince(ctx context.Context, userID uuid.UUID, cutoff time.Time) ([]*domain.ReviewEvent, error)

	// CountByDomain returns the user's all-time attempt count for a domain.
	CountByDomain(ctx context.Context, userID, domainID uuid.UUID) (int, error)

	// WithTx returns an EventStore bound to the given transaction.
	WithTx(tx *sql.Tx) EventStore
}
