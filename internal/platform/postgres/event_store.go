package postgres

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"
	"github.com/prepdeck/prepdeck-api/internal/domain"
	"github.com/prepdeck/prepdeck-api/internal/platform/logger"
	"github.com/prepdeck/prepdeck-api/internal/store"
)

// PostgresEventStore implements the store.EventStore interface using a
// PostgreSQL database as the storage backend. The table is append-only:
// no update or delete statements exist here.
type PostgresEventStore struct {
	db     store.DBTX
	logger *slog.Logger
}

// NewPostgresEventStore creates a new PostgreSQL implementation of the
// EventStore interface. If logger is nil, the default logger is used.
func NewPostgresEventStore(db store.DBTX, logger *slog.Logger) *PostgresEventStore {
	if db == nil {
		panic("db cannot be nil")
	}

	if logger == nil {
		logger = slog.Default()
	}

	return &PostgresEventStore{
		db:     db,
		logger: logger.With(slog.String("component", "event_store")),
	}
}

// Ensure PostgresEventStore implements store.EventStore interface
var _ store.EventStore = (*PostgresEventStore)(nil)

// WithTx implements store.EventStore.WithTx
func (s *PostgresEventStore) WithTx(tx *sql.Tx) store.EventStore {
	return &PostgresEventStore{
		db:     tx,
		logger: s.logger,
	}
}

const eventColumns = `
	id, user_id, item_id, domain_id, session_id, kind, rating, correct,
	difficulty, recorded_at
`

// Append implements store.EventStore.Append
func (s *PostgresEventStore) Append(ctx context.Context, event *domain.ReviewEvent) error {
	log := logger.FromContextOrDefault(ctx, s.logger)

	if err := event.Validate(); err != nil {
		log.Warn("event validation failed during append",
			slog.String("error", err.Error()),
			slog.String("event_id", event.ID.String()))
		return fmt.Errorf("%w: %v", store.ErrInvalidEntity, err)
	}

	query := `
		INSERT INTO review_events (` + eventColumns + `)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)
	`
	_, err := s.db.ExecContext(
		ctx,
		query,
		event.ID,
		event.UserID,
		event.ItemID,
		event.DomainID,
		nullableUUID(event.SessionID),
		event.Kind,
		nullableString(string(event.Rating)),
		event.Correct,
		event.Difficulty,
		event.RecordedAt,
	)
	if err != nil {
		log.Error("failed to append event",
			slog.String("error", err.Error()),
			slog.String("event_id", event.ID.String()))
		return MapError(err)
	}

	return nil
}

// ListRecentByDomain implements store.EventStore.ListRecentByDomain
func (s *PostgresEventStore) ListRecentByDomain(
	ctx context.Context,
	userID, domainID uuid.UUID,
	limit int,
) ([]*domain.ReviewEvent, error) {
	// Newest N selected first, then flipped so callers get oldest first.
	query := `
		SELECT ` + eventColumns + ` FROM (
			SELECT ` + eventColumns + `
			FROM review_events
			WHERE user_id = $1 AND domain_id = $2
			ORDER BY recorded_at DESC, id DESC
			LIMIT $3
		) recent
		ORDER BY recorded_at, id
	`

	rows, err := s.db.QueryContext(ctx, query, userID, domainID, limit)
	if err != nil {
		return nil, MapError(err)
	}
	defer func() { _ = rows.Close() }()

	return scanEvents(rows)
}

// ListSince implements store.EventStore.ListSince
func (s *PostgresEventStore) ListSince(
	ctx context.Context,
	userID uuid.UUID,
	cutoff time.Time,
) ([]*domain.ReviewEvent, error) {
	query := `
		SELECT ` + eventColumns + `
		FROM review_events
		WHERE user_id = $1 AND recorded_at > $2
		ORDER BY recorded_at, id
	`

	rows, err := s.db.QueryContext(ctx, query, userID, cutoff)
	if err != nil {
		return nil, MapError(err)
	}
	defer func() { _ = rows.Close() }()

	return scanEvents(rows)
}

// CountByDomain implements store.EventStore.CountByDomain
func (s *PostgresEventStore) CountByDomain(ctx context.Context, userID, domainID uuid.UUID) (int, error) {
	query := `
		SELECT COUNT(*)
		FROM review_events
		WHERE user_id = $1 AND domain_id = $2
	`

	var count int
	if err := s.db.QueryRowContext(ctx, query, userID, domainID).Scan(&count); err != nil {
		return 0, MapError(err)
	}
	return count, nil
}

func scanEvents(rows *sql.Rows) ([]*domain.ReviewEvent, error) {
	var events []*domain.ReviewEvent
	for rows.Next() {
		var event domain.ReviewEvent
		var sessionID sql.NullString
		var rating sql.NullString

		err := rows.Scan(
			&event.ID,
			&event.UserID,
			&event.ItemID,
			&event.DomainID,
			&sessionID,
			&event.Kind,
			&rating,
			&event.Correct,
			&event.Difficulty,
			&event.RecordedAt,
		)
		if err != nil {
			return nil, MapError(err)
		}

		if sessionID.Valid {
			id, err := uuid.Parse(sessionID.String)
			if err != nil {
				return nil, fmt.Errorf("failed to parse session id: %w", err)
			}
			event.SessionID = id
		}
		if rating.Valid {
			event.Rating = domain.ReviewRating(rating.String)
		}

		events = append(events, &event)
	}
	return events, rows.Err()
}

// nullableString renders the empty string as SQL NULL.
func nullableString(s string) any {
	if s == "" {
		return nil
	}
	return s
}
