package domain

import (
	"errors"
	"time"

	"github.com/google/uuid"
)

// DefaultFlashcardGoal is the number of daily card reviews a learner is
// nudged toward before they configure their own goal.
const DefaultFlashcardGoal = 20

// ErrInvalidGoal is returned when a daily goal is not a positive number.
var ErrInvalidGoal = errors.New("daily goal must be a positive number")

// DailyGoal tracks a learner's daily review target and today's progress.
// The counter resets when the first review of a new calendar day arrives.
type DailyGoal struct {
	UserID             uuid.UUID `json:"user_id"`
	FlashcardGoal      int       `json:"flashcard_goal"`
	CardsReviewedToday int       `json:"cards_reviewed_today"`
	LastResetDate      time.Time `json:"last_reset_date"`
	UpdatedAt          time.Time `json:"updated_at"`
}

// NewDailyGoal creates a goal record with the default target.
func NewDailyGoal(userID uuid.UUID) *DailyGoal {
	now := time.Now().UTC()
	return &DailyGoal{
		UserID:        userID,
		FlashcardGoal: DefaultFlashcardGoal,
		LastResetDate: now,
		UpdatedAt:     now,
	}
}

// Validate checks if the DailyGoal has valid data.
func (g *DailyGoal) Validate() error {
	if g.UserID == uuid.Nil {
		return ErrEmptyStateUserID
	}

	if g.FlashcardGoal < 1 {
		return ErrInvalidGoal
	}

	return nil
}

// ResetIfStale zeroes today's counter when the stored progress belongs to an
// earlier calendar day. Returns true if a reset happened.
func (g *DailyGoal) ResetIfStale(now time.Time) bool {
	last := g.LastResetDate.UTC()
	today := now.UTC()

	if last.Year() == today.Year() && last.YearDay() == today.YearDay() {
		return false
	}

	g.CardsReviewedToday = 0
	g.LastResetDate = today
	return true
}
