package api

import (
	"errors"
	"fmt"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/prepdeck/prepdeck-api/internal/api/shared"
	"github.com/prepdeck/prepdeck-api/internal/generation"
	"github.com/prepdeck/prepdeck-api/internal/service/content"
	"github.com/prepdeck/prepdeck-api/internal/service/study"
	"github.com/prepdeck/prepdeck-api/internal/store"
)

func TestMapErrorToStatusCode(t *testing.T) {
	t.Parallel()

	cases := []struct {
		name string
		err  error
		want int
	}{
		{name: "invalid rating", err: study.ErrInvalidRating, want: http.StatusBadRequest},
		{name: "invalid limit", err: study.ErrInvalidLimit, want: http.StatusBadRequest},
		{name: "invalid goal", err: study.ErrInvalidGoal, want: http.StatusBadRequest},
		{name: "invalid draft count", err: content.ErrInvalidCount, want: http.StatusBadRequest},
		{name: "card not found", err: study.ErrCardNotFound, want: http.StatusNotFound},
		{name: "domain not found", err: content.ErrDomainNotFound, want: http.StatusNotFound},
		{name: "store not found", err: store.ErrMasteryNotFound, want: http.StatusNotFound},
		{name: "generation disabled", err: content.ErrGenerationDisabled, want: http.StatusServiceUnavailable},
		{name: "content blocked", err: generation.ErrContentBlocked, want: http.StatusUnprocessableEntity},
		{name: "transient generation failure", err: generation.ErrTransientFailure, want: http.StatusBadGateway},
		{name: "unknown error", err: errors.New("boom"), want: http.StatusInternalServerError},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			assert.Equal(t, tc.want, MapErrorToStatusCode(tc.err))
		})
	}
}

func TestMapErrorToStatusCodeUnwrapsServiceErrors(t *testing.T) {
	t.Parallel()

	wrapped := &study.ServiceError{
		Operation: "ReviewCard",
		Err:       fmt.Errorf("loading card: %w", study.ErrCardNotFound),
	}
	assert.Equal(t, http.StatusNotFound, MapErrorToStatusCode(wrapped))
	assert.Equal(t, "Card not found", GetSafeErrorMessage(wrapped))
}

func TestGetSafeErrorMessageNeverEchoesInternals(t *testing.T) {
	t.Parallel()

	err := errors.New("dial tcp 10.0.0.5:5432: connect: connection refused")
	msg := GetSafeErrorMessage(err)
	assert.Equal(t, "An unexpected error occurred", msg)
	assert.NotContains(t, msg, "10.0.0.5")
}

func TestSanitizeValidationError(t *testing.T) {
	t.Parallel()

	err := shared.Validate.Struct(ReviewRequest{Difficulty: "impossible"})
	if err == nil {
		t.Fatal("expected a validation error")
	}

	got := SanitizeValidationError(err)
	assert.Contains(t, got, "Difficulty")
	assert.NotContains(t, got, "ReviewRequest")
}
