package task

import (
	"context"
	"sync"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/prepdeck/prepdeck-api/internal/events"
)

type fakeSubmitter struct {
	mu        sync.Mutex
	submitted []Task
	err       error
}

func (s *fakeSubmitter) Submit(_ context.Context, task Task) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.err != nil {
		return s.err
	}
	s.submitted = append(s.submitted, task)
	return nil
}

func TestRecomputeEventHandlerSubmitsTask(t *testing.T) {
	t.Parallel()

	recomputer := &fakeRecomputer{}
	factory := NewMasteryRecomputeTaskFactory(recomputer, discardLogger())
	submitter := &fakeSubmitter{}
	handler := NewRecomputeEventHandler(factory, submitter, discardLogger())

	userID := uuid.New()
	domainID := uuid.New()
	event, err := NewRecomputeRequestEvent(userID, domainID)
	require.NoError(t, err)

	require.NoError(t, handler.HandleEvent(context.Background(), event))
	require.Len(t, submitter.submitted, 1)
	assert.Equal(t, TaskTypeMasteryRecompute, submitter.submitted[0].Type())

	require.NoError(t, submitter.submitted[0].Execute(context.Background()))
	assert.Equal(t, userID, recomputer.lastUser)
	assert.Equal(t, domainID, recomputer.lastDomain)
}

func TestRecomputeEventHandlerIgnoresOtherEventTypes(t *testing.T) {
	t.Parallel()

	factory := NewMasteryRecomputeTaskFactory(&fakeRecomputer{}, discardLogger())
	submitter := &fakeSubmitter{}
	handler := NewRecomputeEventHandler(factory, submitter, discardLogger())

	event, err := events.NewTaskRequestEvent("card_generation", map[string]string{"user_id": uuid.New().String()})
	require.NoError(t, err)

	require.NoError(t, handler.HandleEvent(context.Background(), event))
	assert.Empty(t, submitter.submitted)
}

func TestRecomputeEventHandlerRejectsMalformedPayload(t *testing.T) {
	t.Parallel()

	factory := NewMasteryRecomputeTaskFactory(&fakeRecomputer{}, discardLogger())
	submitter := &fakeSubmitter{}
	handler := NewRecomputeEventHandler(factory, submitter, discardLogger())

	event, err := events.NewTaskRequestEvent(TaskTypeMasteryRecompute, map[string]string{
		"user_id":   "not-a-uuid",
		"domain_id": uuid.New().String(),
	})
	require.NoError(t, err)

	assert.Error(t, handler.HandleEvent(context.Background(), event))
	assert.Empty(t, submitter.submitted)
}
