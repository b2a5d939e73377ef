package domain

import (
	"errors"
	"time"

	"github.com/google/uuid"
)

// Flashcard-specific validation errors
var (
	// ErrCardIDEmpty is returned when a card ID is empty or nil.
	ErrCardIDEmpty = errors.New("card ID cannot be empty")

	// ErrCardDomainIDEmpty is returned when a card's domain ID is empty or nil.
	ErrCardDomainIDEmpty = errors.New("card domain ID cannot be empty")

	// ErrCardFrontEmpty is returned when a card's front text is empty.
	ErrCardFrontEmpty = errors.New("card front cannot be empty")

	// ErrCardBackEmpty is returned when a card's back text is empty.
	ErrCardBackEmpty = errors.New("card back cannot be empty")
)

// Difficulty is the author-assigned difficulty tag of a flashcard or
// practice question.
type Difficulty string

// Possible difficulty values
const (
	DifficultyEasy   Difficulty = "EASY"
	DifficultyMedium Difficulty = "MEDIUM"
	DifficultyHard   Difficulty = "HARD"
)

// Weight returns the numeric weight of the difficulty on a 0-100 scale,
// used by the mastery aggregator's difficulty score.
func (d Difficulty) Weight() float64 {
	switch d {
	case DifficultyEasy:
		return 33
	case DifficultyMedium:
		return 66
	case DifficultyHard:
		return 100
	default:
		return 0
	}
}

// Valid reports whether the difficulty is one of the known values.
func (d Difficulty) Valid() bool {
	switch d {
	case DifficultyEasy, DifficultyMedium, DifficultyHard:
		return true
	default:
		return false
	}
}

// Flashcard is an immutable piece of study content authored for a specific
// exam domain. Learners never mutate flashcards; all per-learner state lives
// in ReviewState.
type Flashcard struct {
	ID         uuid.UUID  `json:"id"`
	DomainID   uuid.UUID  `json:"domain_id"`
	Front      string     `json:"front"`
	Back       string     `json:"back"`
	Difficulty Difficulty `json:"difficulty"`
	Active     bool       `json:"active"`
	CreatedAt  time.Time  `json:"created_at"`
	UpdatedAt  time.Time  `json:"updated_at"`
}

// NewFlashcard creates a new active Flashcard for the given domain.
// It generates a new UUID for the card and sets the timestamps.
// Returns an error if validation fails.
func NewFlashcard(domainID uuid.UUID, front, back string, difficulty Difficulty) (*Flashcard, error) {
	now := time.Now().UTC()
	card := &Flashcard{
		ID:         uuid.New(),
		DomainID:   domainID,
		Front:      front,
		Back:       back,
		Difficulty: difficulty,
		Active:     true,
		CreatedAt:  now,
		UpdatedAt:  now,
	}

	if err := card.Validate(); err != nil {
		return nil, err
	}

	return card, nil
}

// Validate checks if the Flashcard has valid data.
// Returns an error if any field fails validation.
func (c *Flashcard) Validate() error {
	if c.ID == uuid.Nil {
		return ErrCardIDEmpty
	}

	if c.DomainID == uuid.Nil {
		return ErrCardDomainIDEmpty
	}

	if c.Front == "" {
		return ErrCardFrontEmpty
	}

	if c.Back == "" {
		return ErrCardBackEmpty
	}

	if !c.Difficulty.Valid() {
		return ErrInvalidDifficulty
	}

	return nil
}
