package api

import (
	"errors"
	"fmt"
	"net/http"
	"strings"

	"github.com/prepdeck/prepdeck-api/internal/generation"
	"github.com/prepdeck/prepdeck-api/internal/service/content"
	"github.com/prepdeck/prepdeck-api/internal/service/study"
	"github.com/prepdeck/prepdeck-api/internal/store"
)

// MapErrorToStatusCode maps internal errors to HTTP status codes without
// leaking internal error types or messages to clients.
func MapErrorToStatusCode(err error) int {
	switch {
	// Bad request errors
	case errors.Is(err, study.ErrInvalidRating),
		errors.Is(err, study.ErrInvalidLimit),
		errors.Is(err, study.ErrInvalidGoal),
		errors.Is(err, content.ErrInvalidCount):
		return http.StatusBadRequest

	// Not found errors
	case errors.Is(err, study.ErrCardNotFound),
		errors.Is(err, content.ErrDomainNotFound),
		errors.Is(err, store.ErrNotFound):
		return http.StatusNotFound

	// Generation errors
	case errors.Is(err, content.ErrGenerationDisabled):
		return http.StatusServiceUnavailable
	case errors.Is(err, generation.ErrContentBlocked),
		errors.Is(err, generation.ErrInvalidResponse):
		return http.StatusUnprocessableEntity
	case errors.Is(err, generation.ErrTransientFailure):
		return http.StatusBadGateway

	default:
		return http.StatusInternalServerError
	}
}

// GetSafeErrorMessage returns a sanitized, user-facing message for the error.
func GetSafeErrorMessage(err error) string {
	if err == nil {
		return "An unexpected error occurred"
	}

	switch {
	case errors.Is(err, study.ErrInvalidRating):
		return "Invalid review rating"

	case errors.Is(err, study.ErrInvalidLimit):
		return "Invalid limit"

	case errors.Is(err, study.ErrInvalidGoal):
		return "Daily goal must be a positive number"

	case errors.Is(err, content.ErrInvalidCount):
		return "Invalid card count"

	case errors.Is(err, study.ErrCardNotFound):
		return "Card not found"

	case errors.Is(err, content.ErrDomainNotFound):
		return "Exam domain not found"

	case errors.Is(err, store.ErrNotFound):
		return "Not found"

	case errors.Is(err, content.ErrGenerationDisabled):
		return "Card generation is not configured"

	case errors.Is(err, generation.ErrContentBlocked),
		errors.Is(err, generation.ErrInvalidResponse):
		return "Card generation produced no usable cards"

	case errors.Is(err, generation.ErrTransientFailure):
		return "Card generation is temporarily unavailable"

	default:
		return "An unexpected error occurred"
	}
}

// SanitizeValidationError turns a validator error into a short user-facing
// message naming the offending field but none of the struct internals.
func SanitizeValidationError(err error) string {
	errMsg := err.Error()
	if !strings.Contains(errMsg, "Field validation") {
		return "Validation error"
	}

	// Example: "Key: 'ReviewRequest.Difficulty' Error:Field validation for
	// 'Difficulty' failed on the 'oneof' tag"
	parts := strings.Split(errMsg, "Error:")
	if len(parts) < 2 {
		return "Validation error"
	}
	fieldParts := strings.Split(parts[1], "'")
	if len(fieldParts) < 3 {
		return "Validation error"
	}

	field := fieldParts[1]
	var tag string
	if len(fieldParts) >= 5 {
		tag = fieldParts[3]
	}
	if tag == "" {
		return fmt.Sprintf("Invalid %s", field)
	}
	return fmt.Sprintf("Invalid %s: %s", field, validationTagMessage(tag))
}

func validationTagMessage(tag string) string {
	switch tag {
	case "required":
		return "required field"
	case "uuid":
		return "must be a UUID"
	case "min", "gte":
		return "too small"
	case "max", "lte":
		return "too large"
	case "gt":
		return "must be positive"
	case "oneof":
		return "invalid value"
	default:
		return "validation failed"
	}
}
