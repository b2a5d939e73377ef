package domain

import (
	"errors"
	"time"

	"github.com/google/uuid"
)

// Event-specific validation errors
var (
	ErrEventIDEmpty       = errors.New("event ID cannot be empty")
	ErrEventUserIDEmpty   = errors.New("event user ID cannot be empty")
	ErrEventItemIDEmpty   = errors.New("event item ID cannot be empty")
	ErrEventDomainIDEmpty = errors.New("event domain ID cannot be empty")
	ErrInvalidEventKind   = errors.New("invalid event kind")
)

// EventKind distinguishes the two sources of answer outcomes.
type EventKind string

// Possible event kinds
const (
	EventKindFlashcardReview EventKind = "flashcard_review"
	EventKindPracticeAnswer  EventKind = "practice_answer"
)

// Valid reports whether the kind is one of the known values.
func (k EventKind) Valid() bool {
	switch k {
	case EventKindFlashcardReview, EventKindPracticeAnswer:
		return true
	default:
		return false
	}
}

// ReviewEvent is one append-only record of an answer or review outcome.
// Events are immutable once written and are the source of truth for all
// derived analytics. For flashcard reviews Rating carries the difficulty
// rating and Correct is derived (anything but "again" counts as correct);
// for practice answers Rating is empty and Correct is the graded result.
type ReviewEvent struct {
	ID         uuid.UUID    `json:"id"`
	UserID     uuid.UUID    `json:"user_id"`
	ItemID     uuid.UUID    `json:"item_id"`
	DomainID   uuid.UUID    `json:"domain_id"`
	SessionID  uuid.UUID    `json:"session_id"`
	Kind       EventKind    `json:"kind"`
	Rating     ReviewRating `json:"rating,omitempty"`
	Correct    bool         `json:"correct"`
	Difficulty Difficulty   `json:"difficulty"`
	RecordedAt time.Time    `json:"recorded_at"`
}

// NewFlashcardReviewEvent records the outcome of a flashcard review.
// A rating of "again" is counted as an incorrect outcome.
func NewFlashcardReviewEvent(
	userID, cardID, domainID, sessionID uuid.UUID,
	rating ReviewRating,
	difficulty Difficulty,
	at time.Time,
) (*ReviewEvent, error) {
	if !rating.Valid() {
		return nil, ErrInvalidRating
	}

	event := &ReviewEvent{
		ID:         uuid.New(),
		UserID:     userID,
		ItemID:     cardID,
		DomainID:   domainID,
		SessionID:  sessionID,
		Kind:       EventKindFlashcardReview,
		Rating:     rating,
		Correct:    rating != RatingAgain,
		Difficulty: difficulty,
		RecordedAt: at,
	}

	if err := event.Validate(); err != nil {
		return nil, err
	}

	return event, nil
}

// NewPracticeAnswerEvent records the graded outcome of a practice question.
func NewPracticeAnswerEvent(
	userID, questionID, domainID, sessionID uuid.UUID,
	correct bool,
	difficulty Difficulty,
	at time.Time,
) (*ReviewEvent, error) {
	event := &ReviewEvent{
		ID:         uuid.New(),
		UserID:     userID,
		ItemID:     questionID,
		DomainID:   domainID,
		SessionID:  sessionID,
		Kind:       EventKindPracticeAnswer,
		Correct:    correct,
		Difficulty: difficulty,
		RecordedAt: at,
	}

	if err := event.Validate(); err != nil {
		return nil, err
	}

	return event, nil
}

// Validate checks if the ReviewEvent has valid data.
func (e *ReviewEvent) Validate() error {
	if e.ID == uuid.Nil {
		return ErrEventIDEmpty
	}

	if e.UserID == uuid.Nil {
		return ErrEventUserIDEmpty
	}

	if e.ItemID == uuid.Nil {
		return ErrEventItemIDEmpty
	}

	if e.DomainID == uuid.Nil {
		return ErrEventDomainIDEmpty
	}

	if !e.Kind.Valid() {
		return ErrInvalidEventKind
	}

	if e.Kind == EventKindFlashcardReview && !e.Rating.Valid() {
		return ErrInvalidRating
	}

	if !e.Difficulty.Valid() {
		return ErrInvalidDifficulty
	}

	return nil
}
