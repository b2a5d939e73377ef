package api

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/prepdeck/prepdeck-api/internal/domain"
	"github.com/prepdeck/prepdeck-api/internal/service/content"
)

type fakeDraftService struct {
	drafts    []*domain.Flashcard
	err       error
	lastTopic string
	lastCount int
}

func (s *fakeDraftService) GenerateDrafts(
	_ context.Context, _ uuid.UUID, topic string, count int,
) ([]*domain.Flashcard, error) {
	s.lastTopic = topic
	s.lastCount = count
	return s.drafts, s.err
}

func inactiveCard(t *testing.T, domainID uuid.UUID) *domain.Flashcard {
	t.Helper()
	card, err := domain.NewFlashcard(domainID, "front", "back", domain.DifficultyHard)
	require.NoError(t, err)
	card.Active = false
	return card
}

func TestGenerateCardsCreatesDrafts(t *testing.T) {
	t.Parallel()

	domainID := uuid.New()
	svc := &fakeDraftService{drafts: []*domain.Flashcard{
		inactiveCard(t, domainID),
		inactiveCard(t, domainID),
	}}
	h := NewAdminHandler(svc, nil)

	req := authedRequest(t, http.MethodPost, "/api/admin/cards/generate",
		GenerateCardsRequest{DomainID: domainID.String(), Topic: "agile", Count: 2}, uuid.New())
	rec := httptest.NewRecorder()
	h.GenerateCards(rec, req)

	require.Equal(t, http.StatusCreated, rec.Code)
	assert.Equal(t, "agile", svc.lastTopic)
	assert.Equal(t, 2, svc.lastCount)

	var resp GenerateCardsResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.Equal(t, 2, resp.Drafted)
	require.Len(t, resp.Cards, 2)
	assert.Equal(t, domainID.String(), resp.Cards[0].DomainID)
}

func TestGenerateCardsValidatesInput(t *testing.T) {
	t.Parallel()

	svc := &fakeDraftService{}
	h := NewAdminHandler(svc, nil)

	cases := []struct {
		name string
		body GenerateCardsRequest
	}{
		{name: "missing domain", body: GenerateCardsRequest{Count: 5}},
		{name: "non-uuid domain", body: GenerateCardsRequest{DomainID: "pmp", Count: 5}},
		{name: "count too large", body: GenerateCardsRequest{DomainID: uuid.New().String(), Count: 100}},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			req := authedRequest(t, http.MethodPost, "/api/admin/cards/generate", tc.body, uuid.New())
			rec := httptest.NewRecorder()
			h.GenerateCards(rec, req)
			assert.Equal(t, http.StatusBadRequest, rec.Code)
		})
	}
}

func TestGenerateCardsWhenGenerationDisabled(t *testing.T) {
	t.Parallel()

	svc := &fakeDraftService{err: content.ErrGenerationDisabled}
	h := NewAdminHandler(svc, nil)

	req := authedRequest(t, http.MethodPost, "/api/admin/cards/generate",
		GenerateCardsRequest{DomainID: uuid.New().String(), Count: 5}, uuid.New())
	rec := httptest.NewRecorder()
	h.GenerateCards(rec, req)

	assert.Equal(t, http.StatusServiceUnavailable, rec.Code)
	assert.Contains(t, rec.Body.String(), "not configured")
}

func TestGenerateCardsUnknownDomain(t *testing.T) {
	t.Parallel()

	svc := &fakeDraftService{err: content.ErrDomainNotFound}
	h := NewAdminHandler(svc, nil)

	req := authedRequest(t, http.MethodPost, "/api/admin/cards/generate",
		GenerateCardsRequest{DomainID: uuid.New().String(), Count: 5}, uuid.New())
	rec := httptest.NewRecorder()
	h.GenerateCards(rec, req)

	assert.Equal(t, http.StatusNotFound, rec.Code)
}
