package api

import (
	"time"

	"github.com/prepdeck/prepdeck-api/internal/domain"
	"github.com/prepdeck/prepdeck-api/internal/service/study"
)

// ReviewRequest is the body of POST /api/cards/{id}/review.
type ReviewRequest struct {
	Difficulty string `json:"difficulty" validate:"required,oneof=again hard good easy"`
}

// UpdateGoalRequest is the body of PUT /api/study/goal.
type UpdateGoalRequest struct {
	FlashcardGoal int `json:"flashcard_goal" validate:"required,gt=0"`
}

// GenerateCardsRequest is the body of POST /api/admin/cards/generate.
// A zero count uses the service default batch size.
type GenerateCardsRequest struct {
	DomainID string `json:"domain_id" validate:"required,uuid"`
	Topic    string `json:"topic" validate:"max=200"`
	Count    int    `json:"count" validate:"gte=0,lte=25"`
}

// ReviewInfo is the scheduling state attached to a due card the learner has
// seen before. Unseen cards carry no review info.
type ReviewInfo struct {
	IntervalDays   int                  `json:"interval_days"`
	EaseFactor     float64              `json:"ease_factor"`
	ReviewCount    int                  `json:"review_count"`
	Lapses         int                  `json:"lapses"`
	Bucket         domain.MasteryBucket `json:"bucket"`
	LastReviewedAt time.Time            `json:"last_reviewed_at"`
	NextReviewAt   time.Time            `json:"next_review_at"`
}

// DueCardResponse is one entry of the study queue.
type DueCardResponse struct {
	ID         string            `json:"id"`
	DomainID   string            `json:"domain_id"`
	Front      string            `json:"front"`
	Back       string            `json:"back"`
	Difficulty domain.Difficulty `json:"difficulty"`
	ReviewInfo *ReviewInfo       `json:"review_info,omitempty"`
}

// DueCardsResponse is the body of GET /api/cards/due.
type DueCardsResponse struct {
	Cards []DueCardResponse `json:"cards"`
	Count int               `json:"count"`
}

// ReviewStateResponse summarizes the schedule produced by a review.
// Duplicate is true when the submission was debounced and the prior schedule
// was returned unchanged.
type ReviewStateResponse struct {
	CardID         string               `json:"card_id"`
	DomainID       string               `json:"domain_id"`
	IntervalDays   int                  `json:"interval_days"`
	EaseFactor     float64              `json:"ease_factor"`
	ReviewCount    int                  `json:"review_count"`
	Lapses         int                  `json:"lapses"`
	Bucket         domain.MasteryBucket `json:"bucket"`
	LastReviewedAt time.Time            `json:"last_reviewed_at"`
	NextReviewAt   time.Time            `json:"next_review_at"`
	Duplicate      bool                 `json:"duplicate"`
}

// DailyGoalResponse is the body of PUT /api/study/goal.
type DailyGoalResponse struct {
	FlashcardGoal      int `json:"flashcard_goal"`
	CardsReviewedToday int `json:"cards_reviewed_today"`
}

// DraftCardResponse is one drafted card awaiting author approval.
type DraftCardResponse struct {
	ID         string            `json:"id"`
	DomainID   string            `json:"domain_id"`
	Front      string            `json:"front"`
	Back       string            `json:"back"`
	Difficulty domain.Difficulty `json:"difficulty"`
}

// GenerateCardsResponse is the body of POST /api/admin/cards/generate.
type GenerateCardsResponse struct {
	Drafted int                 `json:"drafted"`
	Cards   []DraftCardResponse `json:"cards"`
}

func dueCardToResponse(dc study.DueCard) DueCardResponse {
	resp := DueCardResponse{
		ID:         dc.Card.ID.String(),
		DomainID:   dc.Card.DomainID.String(),
		Front:      dc.Card.Front,
		Back:       dc.Card.Back,
		Difficulty: dc.Card.Difficulty,
	}
	if dc.ReviewState != nil {
		resp.ReviewInfo = &ReviewInfo{
			IntervalDays:   dc.ReviewState.IntervalDays,
			EaseFactor:     dc.ReviewState.EaseFactor,
			ReviewCount:    dc.ReviewState.ReviewCount,
			Lapses:         dc.ReviewState.Lapses,
			Bucket:         dc.ReviewState.Bucket,
			LastReviewedAt: dc.ReviewState.LastReviewedAt,
			NextReviewAt:   dc.ReviewState.NextReviewAt,
		}
	}
	return resp
}

func reviewResultToResponse(result *study.ReviewResult) ReviewStateResponse {
	state := result.State
	return ReviewStateResponse{
		CardID:         state.CardID.String(),
		DomainID:       state.DomainID.String(),
		IntervalDays:   state.IntervalDays,
		EaseFactor:     state.EaseFactor,
		ReviewCount:    state.ReviewCount,
		Lapses:         state.Lapses,
		Bucket:         state.Bucket,
		LastReviewedAt: state.LastReviewedAt,
		NextReviewAt:   state.NextReviewAt,
		Duplicate:      result.Duplicate,
	}
}

func draftsToResponse(cards []*domain.Flashcard) GenerateCardsResponse {
	resp := GenerateCardsResponse{
		Drafted: len(cards),
		Cards:   make([]DraftCardResponse, 0, len(cards)),
	}
	for _, card := range cards {
		resp.Cards = append(resp.Cards, DraftCardResponse{
			ID:         card.ID.String(),
			DomainID:   card.DomainID.String(),
			Front:      card.Front,
			Back:       card.Back,
			Difficulty: card.Difficulty,
		})
	}
	return resp
}
