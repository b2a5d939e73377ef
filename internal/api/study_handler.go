// Package api provides the HTTP handlers for the service.
package api

import (
	"log/slog"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"github.com/prepdeck/prepdeck-api/internal/api/shared"
	"github.com/prepdeck/prepdeck-api/internal/domain"
	"github.com/prepdeck/prepdeck-api/internal/platform/logger"
	"github.com/prepdeck/prepdeck-api/internal/redact"
	"github.com/prepdeck/prepdeck-api/internal/service/study"
)

// StudyHandler handles the learner-facing study loop endpoints.
type StudyHandler struct {
	studyService study.StudyService
	logger       *slog.Logger
}

// NewStudyHandler creates a new StudyHandler.
func NewStudyHandler(studyService study.StudyService, log *slog.Logger) *StudyHandler {
	if studyService == nil {
		panic("studyService cannot be nil")
	}
	if log == nil {
		log = slog.Default()
	}

	return &StudyHandler{
		studyService: studyService,
		logger:       log.With(slog.String("component", "study_handler")),
	}
}

// GetDueCards handles GET /api/cards/due requests. The optional domain query
// parameter narrows the queue to one exam domain; limit caps the batch.
func (h *StudyHandler) GetDueCards(w http.ResponseWriter, r *http.Request) {
	log := logger.FromContextOrDefault(r.Context(), h.logger)

	userID, ok := requireUserID(w, r, log)
	if !ok {
		return
	}

	domainID := uuid.Nil
	if raw := r.URL.Query().Get("domain"); raw != "" {
		parsed, err := uuid.Parse(raw)
		if err != nil {
			shared.RespondWithError(w, r, http.StatusBadRequest, "Invalid domain ID")
			return
		}
		domainID = parsed
	}

	limit := 0
	if raw := r.URL.Query().Get("limit"); raw != "" {
		parsed, err := strconv.Atoi(raw)
		if err != nil || parsed <= 0 {
			shared.RespondWithError(w, r, http.StatusBadRequest, "Invalid limit")
			return
		}
		limit = parsed
	}

	cards, err := h.studyService.GetDueCards(r.Context(), userID, domainID, limit)
	if err != nil {
		shared.RespondWithErrorAndLog(w, r, MapErrorToStatusCode(err), GetSafeErrorMessage(err), err)
		return
	}

	resp := DueCardsResponse{
		Cards: make([]DueCardResponse, 0, len(cards)),
		Count: len(cards),
	}
	for _, dc := range cards {
		resp.Cards = append(resp.Cards, dueCardToResponse(dc))
	}

	log.Debug("due cards selected",
		slog.String("user_id", userID.String()),
		slog.Int("count", len(cards)))
	shared.RespondWithJSON(w, r, http.StatusOK, resp)
}

// SubmitReview handles POST /api/cards/{id}/review requests.
func (h *StudyHandler) SubmitReview(w http.ResponseWriter, r *http.Request) {
	log := logger.FromContextOrDefault(r.Context(), h.logger)

	userID, ok := requireUserID(w, r, log)
	if !ok {
		return
	}

	cardID, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		shared.RespondWithError(w, r, http.StatusBadRequest, "Invalid card ID format")
		return
	}

	var req ReviewRequest
	if err := shared.DecodeJSON(r, &req); err != nil {
		log.Warn("invalid request format",
			slog.String("error", redact.Error(err)),
			slog.String("card_id", cardID.String()))
		shared.RespondWithError(w, r, http.StatusBadRequest, "Invalid request format")
		return
	}

	if err := shared.Validate.Struct(req); err != nil {
		shared.RespondWithErrorAndLog(w, r, http.StatusBadRequest, SanitizeValidationError(err), err)
		return
	}

	result, err := h.studyService.ReviewCard(r.Context(), userID, cardID, domain.ReviewRating(req.Difficulty))
	if err != nil {
		shared.RespondWithErrorAndLog(w, r, MapErrorToStatusCode(err), GetSafeErrorMessage(err), err)
		return
	}

	log.Debug("review recorded",
		slog.String("user_id", userID.String()),
		slog.String("card_id", cardID.String()),
		slog.String("rating", req.Difficulty),
		slog.Bool("duplicate", result.Duplicate))
	shared.RespondWithJSON(w, r, http.StatusOK, reviewResultToResponse(result))
}

// GetStudyStats handles GET /api/study/stats requests.
func (h *StudyHandler) GetStudyStats(w http.ResponseWriter, r *http.Request) {
	log := logger.FromContextOrDefault(r.Context(), h.logger)

	userID, ok := requireUserID(w, r, log)
	if !ok {
		return
	}

	stats, err := h.studyService.GetStudyStats(r.Context(), userID)
	if err != nil {
		shared.RespondWithErrorAndLog(w, r, MapErrorToStatusCode(err), GetSafeErrorMessage(err), err)
		return
	}

	shared.RespondWithJSON(w, r, http.StatusOK, stats)
}

// UpdateDailyGoal handles PUT /api/study/goal requests.
func (h *StudyHandler) UpdateDailyGoal(w http.ResponseWriter, r *http.Request) {
	log := logger.FromContextOrDefault(r.Context(), h.logger)

	userID, ok := requireUserID(w, r, log)
	if !ok {
		return
	}

	var req UpdateGoalRequest
	if err := shared.DecodeJSON(r, &req); err != nil {
		shared.RespondWithError(w, r, http.StatusBadRequest, "Invalid request format")
		return
	}

	if err := shared.Validate.Struct(req); err != nil {
		shared.RespondWithErrorAndLog(w, r, http.StatusBadRequest, SanitizeValidationError(err), err)
		return
	}

	goal, err := h.studyService.UpdateDailyGoal(r.Context(), userID, req.FlashcardGoal)
	if err != nil {
		shared.RespondWithErrorAndLog(w, r, MapErrorToStatusCode(err), GetSafeErrorMessage(err), err)
		return
	}

	log.Debug("daily goal updated",
		slog.String("user_id", userID.String()),
		slog.Int("flashcard_goal", goal.FlashcardGoal))
	shared.RespondWithJSON(w, r, http.StatusOK, DailyGoalResponse{
		FlashcardGoal:      goal.FlashcardGoal,
		CardsReviewedToday: goal.CardsReviewedToday,
	})
}

// requireUserID extracts the authenticated user ID set by the auth
// middleware, answering 401 when it is missing.
func requireUserID(w http.ResponseWriter, r *http.Request, log *slog.Logger) (uuid.UUID, bool) {
	userID, ok := r.Context().Value(shared.UserIDContextKey).(uuid.UUID)
	if !ok || userID == uuid.Nil {
		log.Warn("user ID not found or invalid in request context")
		shared.RespondWithError(w, r, http.StatusUnauthorized, "User ID not found or invalid")
		return uuid.Nil, false
	}
	return userID, true
}
