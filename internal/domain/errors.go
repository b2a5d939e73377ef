package domain

import "errors"

// Common domain errors used across the application.
var (
	// ErrValidation is returned when a domain entity fails validation.
	// This is often wrapped with a more specific error message.
	ErrValidation = errors.New("validation failed")

	// ErrInvalidID is returned when an ID is malformed or invalid.
	ErrInvalidID = errors.New("invalid ID")

	// ErrInvalidRating is returned when a review rating is not one of
	// again, hard, good, easy.
	ErrInvalidRating = errors.New("invalid review rating")

	// ErrInvalidDifficulty is returned when a card difficulty tag is not
	// one of EASY, MEDIUM, HARD.
	ErrInvalidDifficulty = errors.New("invalid difficulty")

	// ErrEmptyContent is returned when required card content is empty.
	ErrEmptyContent = errors.New("content cannot be empty")

	// ErrInvariantViolation is returned when persisted state carries values
	// outside the ranges the engine guarantees (e.g. a negative interval).
	// Read paths clamp and log rather than fail on this condition.
	ErrInvariantViolation = errors.New("invariant violation")
)
