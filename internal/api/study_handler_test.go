package api

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/prepdeck/prepdeck-api/internal/api/shared"
	"github.com/prepdeck/prepdeck-api/internal/domain"
	"github.com/prepdeck/prepdeck-api/internal/service/study"
)

type fakeStudyService struct {
	dueCards     []study.DueCard
	dueErr       error
	lastDomainID uuid.UUID
	lastLimit    int

	reviewResult *study.ReviewResult
	reviewErr    error
	lastRating   domain.ReviewRating

	stats    *study.StudyStats
	statsErr error

	goal    *domain.DailyGoal
	goalErr error
}

func (s *fakeStudyService) GetDueCards(
	_ context.Context, _, domainID uuid.UUID, limit int,
) ([]study.DueCard, error) {
	s.lastDomainID = domainID
	s.lastLimit = limit
	return s.dueCards, s.dueErr
}

func (s *fakeStudyService) ReviewCard(
	_ context.Context, _, _ uuid.UUID, rating domain.ReviewRating,
) (*study.ReviewResult, error) {
	s.lastRating = rating
	return s.reviewResult, s.reviewErr
}

func (s *fakeStudyService) GetStudyStats(context.Context, uuid.UUID) (*study.StudyStats, error) {
	return s.stats, s.statsErr
}

func (s *fakeStudyService) UpdateDailyGoal(
	_ context.Context, _ uuid.UUID, flashcardGoal int,
) (*domain.DailyGoal, error) {
	if s.goalErr != nil {
		return nil, s.goalErr
	}
	goal := *s.goal
	goal.FlashcardGoal = flashcardGoal
	return &goal, nil
}

func studyRouter(svc study.StudyService) chi.Router {
	h := NewStudyHandler(svc, nil)
	r := chi.NewRouter()
	r.Get("/api/cards/due", h.GetDueCards)
	r.Post("/api/cards/{id}/review", h.SubmitReview)
	r.Get("/api/study/stats", h.GetStudyStats)
	r.Put("/api/study/goal", h.UpdateDailyGoal)
	return r
}

func authedRequest(t *testing.T, method, target string, body any, userID uuid.UUID) *http.Request {
	t.Helper()

	var reader *bytes.Reader
	if body != nil {
		raw, err := json.Marshal(body)
		require.NoError(t, err)
		reader = bytes.NewReader(raw)
	} else {
		reader = bytes.NewReader(nil)
	}

	req := httptest.NewRequest(method, target, reader)
	if userID != uuid.Nil {
		ctx := context.WithValue(req.Context(), shared.UserIDContextKey, userID)
		req = req.WithContext(ctx)
	}
	return req
}

func testCard(t *testing.T, domainID uuid.UUID) *domain.Flashcard {
	t.Helper()
	card, err := domain.NewFlashcard(domainID, "What is a risk register?", "A log of identified risks.", domain.DifficultyMedium)
	require.NoError(t, err)
	return card
}

func TestGetDueCardsReturnsQueue(t *testing.T) {
	t.Parallel()

	domainID := uuid.New()
	userID := uuid.New()
	seen := testCard(t, domainID)
	fresh := testCard(t, domainID)

	state, err := domain.NewReviewState(userID, seen.ID, domainID)
	require.NoError(t, err)
	state.IntervalDays = 3
	state.Bucket = domain.BucketLearning

	svc := &fakeStudyService{dueCards: []study.DueCard{
		{Card: seen, ReviewState: state},
		{Card: fresh},
	}}

	req := authedRequest(t, http.MethodGet,
		"/api/cards/due?domain="+domainID.String()+"&limit=10", nil, userID)
	rec := httptest.NewRecorder()
	studyRouter(svc).ServeHTTP(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, domainID, svc.lastDomainID)
	assert.Equal(t, 10, svc.lastLimit)

	var resp DueCardsResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	require.Equal(t, 2, resp.Count)
	require.NotNil(t, resp.Cards[0].ReviewInfo)
	assert.Equal(t, 3, resp.Cards[0].ReviewInfo.IntervalDays)
	assert.Equal(t, domain.BucketLearning, resp.Cards[0].ReviewInfo.Bucket)
	assert.Nil(t, resp.Cards[1].ReviewInfo)
}

func TestGetDueCardsRejectsBadQuery(t *testing.T) {
	t.Parallel()

	svc := &fakeStudyService{}
	router := studyRouter(svc)
	userID := uuid.New()

	for _, target := range []string{
		"/api/cards/due?limit=abc",
		"/api/cards/due?limit=-1",
		"/api/cards/due?domain=not-a-uuid",
	} {
		req := authedRequest(t, http.MethodGet, target, nil, userID)
		rec := httptest.NewRecorder()
		router.ServeHTTP(rec, req)
		assert.Equal(t, http.StatusBadRequest, rec.Code, target)
	}
}

func TestGetDueCardsRequiresAuthenticatedUser(t *testing.T) {
	t.Parallel()

	svc := &fakeStudyService{}
	req := authedRequest(t, http.MethodGet, "/api/cards/due", nil, uuid.Nil)
	rec := httptest.NewRecorder()
	studyRouter(svc).ServeHTTP(rec, req)

	assert.Equal(t, http.StatusUnauthorized, rec.Code)
}

func TestSubmitReviewRecordsOutcome(t *testing.T) {
	t.Parallel()

	userID := uuid.New()
	cardID := uuid.New()
	domainID := uuid.New()

	state, err := domain.NewReviewState(userID, cardID, domainID)
	require.NoError(t, err)
	state.IntervalDays = 6
	state.ReviewCount = 2
	state.Bucket = domain.BucketReviewing
	state.NextReviewAt = time.Now().Add(6 * 24 * time.Hour)

	svc := &fakeStudyService{reviewResult: &study.ReviewResult{State: state}}

	req := authedRequest(t, http.MethodPost, "/api/cards/"+cardID.String()+"/review",
		ReviewRequest{Difficulty: "good"}, userID)
	rec := httptest.NewRecorder()
	studyRouter(svc).ServeHTTP(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, domain.RatingGood, svc.lastRating)

	var resp ReviewStateResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.Equal(t, cardID.String(), resp.CardID)
	assert.Equal(t, 6, resp.IntervalDays)
	assert.Equal(t, domain.BucketReviewing, resp.Bucket)
	assert.False(t, resp.Duplicate)
}

func TestSubmitReviewReportsDuplicate(t *testing.T) {
	t.Parallel()

	userID := uuid.New()
	cardID := uuid.New()
	state, err := domain.NewReviewState(userID, cardID, uuid.New())
	require.NoError(t, err)

	svc := &fakeStudyService{reviewResult: &study.ReviewResult{State: state, Duplicate: true}}

	req := authedRequest(t, http.MethodPost, "/api/cards/"+cardID.String()+"/review",
		ReviewRequest{Difficulty: "easy"}, userID)
	rec := httptest.NewRecorder()
	studyRouter(svc).ServeHTTP(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)
	var resp ReviewStateResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.True(t, resp.Duplicate)
}

func TestSubmitReviewValidatesInput(t *testing.T) {
	t.Parallel()

	svc := &fakeStudyService{}
	router := studyRouter(svc)
	userID := uuid.New()
	cardID := uuid.New()

	t.Run("unknown difficulty", func(t *testing.T) {
		req := authedRequest(t, http.MethodPost, "/api/cards/"+cardID.String()+"/review",
			ReviewRequest{Difficulty: "impossible"}, userID)
		rec := httptest.NewRecorder()
		router.ServeHTTP(rec, req)
		assert.Equal(t, http.StatusBadRequest, rec.Code)
	})

	t.Run("missing difficulty", func(t *testing.T) {
		req := authedRequest(t, http.MethodPost, "/api/cards/"+cardID.String()+"/review",
			map[string]string{}, userID)
		rec := httptest.NewRecorder()
		router.ServeHTTP(rec, req)
		assert.Equal(t, http.StatusBadRequest, rec.Code)
	})

	t.Run("malformed card ID", func(t *testing.T) {
		req := authedRequest(t, http.MethodPost, "/api/cards/not-a-uuid/review",
			ReviewRequest{Difficulty: "good"}, userID)
		rec := httptest.NewRecorder()
		router.ServeHTTP(rec, req)
		assert.Equal(t, http.StatusBadRequest, rec.Code)
	})
}

func TestSubmitReviewUnknownCard(t *testing.T) {
	t.Parallel()

	svc := &fakeStudyService{reviewErr: study.ErrCardNotFound}
	req := authedRequest(t, http.MethodPost, "/api/cards/"+uuid.New().String()+"/review",
		ReviewRequest{Difficulty: "good"}, uuid.New())
	rec := httptest.NewRecorder()
	studyRouter(svc).ServeHTTP(rec, req)

	assert.Equal(t, http.StatusNotFound, rec.Code)
	assert.Contains(t, rec.Body.String(), "Card not found")
}

func TestGetStudyStats(t *testing.T) {
	t.Parallel()

	svc := &fakeStudyService{stats: &study.StudyStats{
		DueToday: 12,
		NewCards: 30,
		Buckets:  study.BucketBreakdown{Learning: 5, Reviewing: 7, Mastered: 2},
		DailyGoal: study.DailyGoalProgress{
			CardsReviewedToday: 8,
			FlashcardGoal:      20,
		},
	}}

	req := authedRequest(t, http.MethodGet, "/api/study/stats", nil, uuid.New())
	rec := httptest.NewRecorder()
	studyRouter(svc).ServeHTTP(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)
	var resp study.StudyStats
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.Equal(t, 12, resp.DueToday)
	assert.Equal(t, 7, resp.Buckets.Reviewing)
	assert.Equal(t, 8, resp.DailyGoal.CardsReviewedToday)
}

func TestUpdateDailyGoal(t *testing.T) {
	t.Parallel()

	userID := uuid.New()
	svc := &fakeStudyService{goal: &domain.DailyGoal{
		UserID:             userID,
		FlashcardGoal:      20,
		CardsReviewedToday: 4,
	}}
	router := studyRouter(svc)

	t.Run("updates the target", func(t *testing.T) {
		req := authedRequest(t, http.MethodPut, "/api/study/goal",
			UpdateGoalRequest{FlashcardGoal: 35}, userID)
		rec := httptest.NewRecorder()
		router.ServeHTTP(rec, req)

		require.Equal(t, http.StatusOK, rec.Code)
		var resp DailyGoalResponse
		require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
		assert.Equal(t, 35, resp.FlashcardGoal)
		assert.Equal(t, 4, resp.CardsReviewedToday)
	})

	t.Run("rejects a non-positive goal", func(t *testing.T) {
		req := authedRequest(t, http.MethodPut, "/api/study/goal",
			map[string]int{"flashcard_goal": 0}, userID)
		rec := httptest.NewRecorder()
		router.ServeHTTP(rec, req)
		assert.Equal(t, http.StatusBadRequest, rec.Code)
	})
}
