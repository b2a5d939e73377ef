package postgres

import (
	"context"
	"log/slog"

	"github.com/google/uuid"
	"github.com/prepdeck/prepdeck-api/internal/domain"
	"github.com/prepdeck/prepdeck-api/internal/store"
)

// PostgresDomainStore implements the store.DomainStore interface using a
// PostgreSQL database as the storage backend. The exam blueprint is seeded
// by migration and changes rarely.
type PostgresDomainStore struct {
	db     store.DBTX
	logger *slog.Logger
}

// NewPostgresDomainStore creates a new PostgreSQL implementation of the
// DomainStore interface. If logger is nil, the default logger is used.
func NewPostgresDomainStore(db store.DBTX, logger *slog.Logger) *PostgresDomainStore {
	if db == nil {
		panic("db cannot be nil")
	}

	if logger == nil {
		logger = slog.Default()
	}

	return &PostgresDomainStore{
		db:     db,
		logger: logger.With(slog.String("component", "domain_store")),
	}
}

// Ensure PostgresDomainStore implements store.DomainStore interface
var _ store.DomainStore = (*PostgresDomainStore)(nil)

// GetByID implements store.DomainStore.GetByID
func (s *PostgresDomainStore) GetByID(ctx context.Context, id uuid.UUID) (*domain.ExamDomain, error) {
	query := `
		SELECT id, name, exam_weight, mastery_target, created_at, updated_at
		FROM exam_domains
		WHERE id = $1
	`

	var d domain.ExamDomain
	err := s.db.QueryRowContext(ctx, query, id).Scan(
		&d.ID,
		&d.Name,
		&d.ExamWeight,
		&d.MasteryTarget,
		&d.CreatedAt,
		&d.UpdatedAt,
	)
	if err != nil {
		if IsNotFoundError(err) {
			return nil, store.ErrDomainNotFound
		}
		return nil, MapError(err)
	}

	return &d, nil
}

// List implements store.DomainStore.List
func (s *PostgresDomainStore) List(ctx context.Context) ([]*domain.ExamDomain, error) {
	query := `
		SELECT id, name, exam_weight, mastery_target, created_at, updated_at
		FROM exam_domains
		ORDER BY name
	`

	rows, err := s.db.QueryContext(ctx, query)
	if err != nil {
		return nil, MapError(err)
	}
	defer func() { _ = rows.Close() }()

	var domains []*domain.ExamDomain
	for rows.Next() {
		var d domain.ExamDomain
		if err := rows.Scan(
			&d.ID,
			&d.Name,
			&d.ExamWeight,
			&d.MasteryTarget,
			&d.CreatedAt,
			&d.UpdatedAt,
		); err != nil {
			return nil, MapError(err)
		}
		domains = append(domains, &d)
	}
	return domains, rows.Err()
}
