package store

import (
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestEntityErrorsWrapGenericOnes(t *testing.T) {
	for _, err := range []error{
		ErrCardNotFound,
		ErrReviewStateNotFound,
		ErrDomainNotFound,
		ErrMasteryNotFound,
		ErrGoalNotFound,
		ErrTaskNotFound,
	} {
		assert.True(t, errors.Is(err, ErrNotFound), "%v should wrap ErrNotFound", err)
		assert.True(t, IsNotFoundError(err))
	}

	assert.False(t, IsNotFoundError(ErrDuplicate))
	assert.True(t, IsDuplicateError(ErrDuplicate))
}

func TestStoreError(t *testing.T) {
	cause := ErrCardNotFound
	err := NewStoreError("flashcard", "get", "lookup failed", cause)

	assert.Contains(t, err.Error(), "get operation on flashcard failed")
	assert.True(t, errors.Is(err, ErrCardNotFound))
	assert.True(t, errors.Is(err, ErrNotFound))

	bare := NewStoreError("flashcard", "create", "validation rejected", nil)
	assert.NotContains(t, bare.Error(), "%!v")
	assert.NoError(t, errors.Unwrap(bare))
}

func TestWrappedChainsSurviveFormatting(t *testing.T) {
	err := fmt.Errorf("loading review state: %w", ErrReviewStateNotFound)
	assert.True(t, IsNotFoundError(err))
}
