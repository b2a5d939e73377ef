package content

import (
	"context"
	"database/sql"
	"testing"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/prepdeck/prepdeck-api/internal/domain"
	"github.com/prepdeck/prepdeck-api/internal/generation"
	"github.com/prepdeck/prepdeck-api/internal/store"
)

type fakeDomainStore struct {
	domains map[uuid.UUID]*domain.ExamDomain
}

func (s *fakeDomainStore) GetByID(_ context.Context, id uuid.UUID) (*domain.ExamDomain, error) {
	d, ok := s.domains[id]
	if !ok {
		return nil, store.ErrDomainNotFound
	}
	return d, nil
}

func (s *fakeDomainStore) List(context.Context) ([]*domain.ExamDomain, error) {
	out := make([]*domain.ExamDomain, 0, len(s.domains))
	for _, d := range s.domains {
		out = append(out, d)
	}
	return out, nil
}

type fakeCardStore struct {
	created []*domain.Flashcard
}

func (s *fakeCardStore) CreateMultiple(_ context.Context, cards []*domain.Flashcard) error {
	s.created = append(s.created, cards...)
	return nil
}

func (s *fakeCardStore) GetByID(context.Context, uuid.UUID) (*domain.Flashcard, error) {
	return nil, store.ErrCardNotFound
}

func (s *fakeCardStore) GetByIDs(context.Context, []uuid.UUID) ([]*domain.Flashcard, error) {
	return nil, nil
}

func (s *fakeCardStore) ListNewForUser(
	context.Context, uuid.UUID, uuid.UUID, int,
) ([]*domain.Flashcard, error) {
	return nil, nil
}

func (s *fakeCardStore) CountNewForUser(context.Context, uuid.UUID, uuid.UUID) (int, error) {
	return 0, nil
}

func (s *fakeCardStore) WithTx(*sql.Tx) store.FlashcardStore { return s }

type fakeGenerator struct {
	lastReq generation.DraftRequest
	cards   []*domain.Flashcard
	err     error
}

func (g *fakeGenerator) DraftCards(
	_ context.Context,
	req generation.DraftRequest,
) ([]*domain.Flashcard, error) {
	g.lastReq = req
	return g.cards, g.err
}

func draftCard(t *testing.T, domainID uuid.UUID) *domain.Flashcard {
	t.Helper()
	card, err := domain.NewFlashcard(domainID, "front", "back", domain.DifficultyMedium)
	require.NoError(t, err)
	card.Active = false
	return card
}

func TestGenerateDraftsSavesInactiveCards(t *testing.T) {
	t.Parallel()

	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer func() { _ = db.Close() }()
	mock.ExpectBegin()
	mock.ExpectCommit()

	domainID := uuid.New()
	gen := &fakeGenerator{cards: []*domain.Flashcard{
		draftCard(t, domainID),
		draftCard(t, domainID),
	}}
	cards := &fakeCardStore{}
	domains := &fakeDomainStore{domains: map[uuid.UUID]*domain.ExamDomain{
		domainID: {ID: domainID, Name: "Process", ExamWeight: 41},
	}}

	svc := NewDraftService(db, domains, cards, gen, nil)
	drafts, err := svc.GenerateDrafts(context.Background(), domainID, "risk management", 2)
	require.NoError(t, err)

	assert.Len(t, drafts, 2)
	assert.Len(t, cards.created, 2)
	for _, card := range cards.created {
		assert.False(t, card.Active)
	}
	assert.Equal(t, "risk management", gen.lastReq.Topic)
	assert.Equal(t, 2, gen.lastReq.Count)
	assert.Equal(t, "Process", gen.lastReq.Domain.Name)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestGenerateDraftsDefaultsCount(t *testing.T) {
	t.Parallel()

	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer func() { _ = db.Close() }()
	mock.ExpectBegin()
	mock.ExpectCommit()

	domainID := uuid.New()
	gen := &fakeGenerator{cards: []*domain.Flashcard{draftCard(t, domainID)}}
	domains := &fakeDomainStore{domains: map[uuid.UUID]*domain.ExamDomain{
		domainID: {ID: domainID, Name: "People"},
	}}

	svc := NewDraftService(db, domains, &fakeCardStore{}, gen, nil)
	_, err = svc.GenerateDrafts(context.Background(), domainID, "", 0)
	require.NoError(t, err)
	assert.Equal(t, defaultDraftCount, gen.lastReq.Count)
}

func TestGenerateDraftsRejectsBadInput(t *testing.T) {
	t.Parallel()

	db, _, err := sqlmock.New()
	require.NoError(t, err)
	defer func() { _ = db.Close() }()

	domainID := uuid.New()
	domains := &fakeDomainStore{domains: map[uuid.UUID]*domain.ExamDomain{
		domainID: {ID: domainID, Name: "People"},
	}}
	svc := NewDraftService(db, domains, &fakeCardStore{}, &fakeGenerator{}, nil)

	_, err = svc.GenerateDrafts(context.Background(), domainID, "", maxDraftCount+1)
	assert.ErrorIs(t, err, ErrInvalidCount)

	_, err = svc.GenerateDrafts(context.Background(), uuid.New(), "", 5)
	assert.ErrorIs(t, err, ErrDomainNotFound)
}

func TestGenerateDraftsWithoutGenerator(t *testing.T) {
	t.Parallel()

	db, _, err := sqlmock.New()
	require.NoError(t, err)
	defer func() { _ = db.Close() }()

	svc := NewDraftService(db, &fakeDomainStore{}, &fakeCardStore{}, nil, nil)
	_, err = svc.GenerateDrafts(context.Background(), uuid.New(), "", 5)
	assert.ErrorIs(t, err, ErrGenerationDisabled)
}

func TestGenerateDraftsSurfacesGeneratorFailure(t *testing.T) {
	t.Parallel()

	db, _, err := sqlmock.New()
	require.NoError(t, err)
	defer func() { _ = db.Close() }()

	domainID := uuid.New()
	domains := &fakeDomainStore{domains: map[uuid.UUID]*domain.ExamDomain{
		domainID: {ID: domainID, Name: "People"},
	}}
	gen := &fakeGenerator{err: generation.ErrTransientFailure}

	svc := NewDraftService(db, domains, &fakeCardStore{}, gen, nil)
	_, err = svc.GenerateDrafts(context.Background(), domainID, "", 5)
	assert.ErrorIs(t, err, generation.ErrTransientFailure)
}
