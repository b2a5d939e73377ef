// Package content holds author-facing operations on study content. Learners
// never call these; they go through the study and analytics services.
package content

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"

	"github.com/google/uuid"
	"github.com/prepdeck/prepdeck-api/internal/domain"
	"github.com/prepdeck/prepdeck-api/internal/generation"
	"github.com/prepdeck/prepdeck-api/internal/platform/logger"
	"github.com/prepdeck/prepdeck-api/internal/store"
)

// Draft service errors
var (
	// ErrGenerationDisabled is returned when no generator is configured,
	// for example when the deployment has no LLM API key.
	ErrGenerationDisabled = errors.New("card generation is disabled")

	// ErrDomainNotFound is returned when the target exam domain does not exist.
	ErrDomainNotFound = errors.New("exam domain not found")

	// ErrInvalidCount is returned when the requested draft count is out of range.
	ErrInvalidCount = errors.New("draft count out of range")
)

const (
	defaultDraftCount = 10
	maxDraftCount     = 25
)

// DraftService drafts flashcards with an LLM and persists them inactive for
// author approval.
type DraftService struct {
	db        *sql.DB
	domains   store.DomainStore
	cards     store.FlashcardStore
	generator generation.Generator
	logger    *slog.Logger
}

// NewDraftService creates a DraftService. The generator may be nil; drafting
// then fails with ErrGenerationDisabled.
func NewDraftService(
	db *sql.DB,
	domains store.DomainStore,
	cards store.FlashcardStore,
	generator generation.Generator,
	log *slog.Logger,
) *DraftService {
	if db == nil {
		panic("db cannot be nil")
	}
	if domains == nil {
		panic("domains cannot be nil")
	}
	if cards == nil {
		panic("cards cannot be nil")
	}
	if log == nil {
		log = slog.Default()
	}

	return &DraftService{
		db:        db,
		domains:   domains,
		cards:     cards,
		generator: generator,
		logger:    log.With(slog.String("component", "draft_service")),
	}
}

// GenerateDrafts drafts count flashcards for the domain and saves them
// inactive. A zero count uses the default batch size.
func (s *DraftService) GenerateDrafts(
	ctx context.Context,
	domainID uuid.UUID,
	topic string,
	count int,
) ([]*domain.Flashcard, error) {
	log := logger.FromContextOrDefault(ctx, s.logger)

	if s.generator == nil {
		return nil, ErrGenerationDisabled
	}

	if count == 0 {
		count = defaultDraftCount
	}
	if count < 0 || count > maxDraftCount {
		return nil, fmt.Errorf("%w: %d", ErrInvalidCount, count)
	}

	examDomain, err := s.domains.GetByID(ctx, domainID)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return nil, ErrDomainNotFound
		}
		return nil, fmt.Errorf("failed to load exam domain: %w", err)
	}

	drafts, err := s.generator.DraftCards(ctx, generation.DraftRequest{
		Domain: examDomain,
		Topic:  topic,
		Count:  count,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to draft cards: %w", err)
	}

	err = store.RunInTransaction(ctx, s.db, func(ctx context.Context, tx *sql.Tx) error {
		return s.cards.WithTx(tx).CreateMultiple(ctx, drafts)
	})
	if err != nil {
		return nil, fmt.Errorf("failed to save drafts: %w", err)
	}

	log.Info("card drafts saved for approval",
		slog.String("domain_id", domainID.String()),
		slog.Int("count", len(drafts)))
	return drafts, nil
}
