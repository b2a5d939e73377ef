package api

import (
	"context"
	"log/slog"
	"net/http"

	"github.com/google/uuid"
	"github.com/prepdeck/prepdeck-api/internal/api/shared"
	"github.com/prepdeck/prepdeck-api/internal/domain"
	"github.com/prepdeck/prepdeck-api/internal/platform/logger"
	"github.com/prepdeck/prepdeck-api/internal/redact"
)

// DraftService is the slice of the content service the admin handler
// depends on.
type DraftService interface {
	GenerateDrafts(
		ctx context.Context,
		domainID uuid.UUID,
		topic string,
		count int,
	) ([]*domain.Flashcard, error)
}

// AdminHandler handles author-facing content administration endpoints.
type AdminHandler struct {
	draftService DraftService
	logger       *slog.Logger
}

// NewAdminHandler creates a new AdminHandler.
func NewAdminHandler(draftService DraftService, log *slog.Logger) *AdminHandler {
	if draftService == nil {
		panic("draftService cannot be nil")
	}
	if log == nil {
		log = slog.Default()
	}

	return &AdminHandler{
		draftService: draftService,
		logger:       log.With(slog.String("component", "admin_handler")),
	}
}

// GenerateCards handles POST /api/admin/cards/generate requests. Drafted
// cards are saved inactive; they reach learners only after approval.
func (h *AdminHandler) GenerateCards(w http.ResponseWriter, r *http.Request) {
	log := logger.FromContextOrDefault(r.Context(), h.logger)

	var req GenerateCardsRequest
	if err := shared.DecodeJSON(r, &req); err != nil {
		log.Warn("invalid request format", slog.String("error", redact.Error(err)))
		shared.RespondWithError(w, r, http.StatusBadRequest, "Invalid request format")
		return
	}

	if err := shared.Validate.Struct(req); err != nil {
		shared.RespondWithErrorAndLog(w, r, http.StatusBadRequest, SanitizeValidationError(err), err)
		return
	}

	domainID, err := uuid.Parse(req.DomainID)
	if err != nil {
		shared.RespondWithError(w, r, http.StatusBadRequest, "Invalid domain ID")
		return
	}

	drafts, err := h.draftService.GenerateDrafts(r.Context(), domainID, req.Topic, req.Count)
	if err != nil {
		shared.RespondWithErrorAndLog(w, r, MapErrorToStatusCode(err), GetSafeErrorMessage(err), err)
		return
	}

	log.Info("card drafts generated",
		slog.String("domain_id", domainID.String()),
		slog.Int("drafted", len(drafts)))
	shared.RespondWithJSON(w, r, http.StatusCreated, draftsToResponse(drafts))
}
