// Package generation defines the boundary between the application core and
// external LLM services that draft flashcard content. Implementations live in
// internal/platform; the core depends only on this interface.
package generation

import (
	"context"

	"github.com/prepdeck/prepdeck-api/internal/domain"
)

// DraftRequest describes a batch of flashcards to draft for one exam domain.
type DraftRequest struct {
	// Domain is the exam domain the cards belong to. Its name feeds the
	// prompt.
	Domain *domain.ExamDomain

	// Topic optionally narrows the drafts to a subtopic within the domain.
	Topic string

	// Count is the number of cards to draft.
	Count int
}

// Generator drafts flashcards for authors to review. Drafted cards are
// inactive; they never reach learners until approved.
type Generator interface {
	// DraftCards generates Count inactive flashcards for the request's
	// domain. It returns generation errors defined in this package; callers
	// can match them with errors.Is.
	DraftCards(ctx context.Context, req DraftRequest) ([]*domain.Flashcard, error)
}
