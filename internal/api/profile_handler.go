package api

import (
	"context"
	"log/slog"
	"net/http"

	"github.com/google/uuid"
	"github.com/prepdeck/prepdeck-api/internal/api/shared"
	"github.com/prepdeck/prepdeck-api/internal/platform/logger"
	"github.com/prepdeck/prepdeck-api/internal/service/analytics"
)

// ProfileService is the slice of the analytics service the profile handler
// depends on.
type ProfileService interface {
	GetLearningProfile(ctx context.Context, userID uuid.UUID) (*analytics.LearningProfile, error)
}

// ProfileHandler handles learning profile requests.
type ProfileHandler struct {
	profileService ProfileService
	logger         *slog.Logger
}

// NewProfileHandler creates a new ProfileHandler.
func NewProfileHandler(profileService ProfileService, log *slog.Logger) *ProfileHandler {
	if profileService == nil {
		panic("profileService cannot be nil")
	}
	if log == nil {
		log = slog.Default()
	}

	return &ProfileHandler{
		profileService: profileService,
		logger:         log.With(slog.String("component", "profile_handler")),
	}
}

// GetProfile handles GET /api/profile requests. It returns the learner's
// per-domain mastery, knowledge gaps, and recent insights.
func (h *ProfileHandler) GetProfile(w http.ResponseWriter, r *http.Request) {
	log := logger.FromContextOrDefault(r.Context(), h.logger)

	userID, ok := requireUserID(w, r, log)
	if !ok {
		return
	}

	profile, err := h.profileService.GetLearningProfile(r.Context(), userID)
	if err != nil {
		shared.RespondWithErrorAndLog(w, r, MapErrorToStatusCode(err), GetSafeErrorMessage(err), err)
		return
	}

	log.Debug("learning profile served",
		slog.String("user_id", userID.String()),
		slog.Int("domains", len(profile.DomainMasteries)))
	shared.RespondWithJSON(w, r, http.StatusOK, profile)
}
