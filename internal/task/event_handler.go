package task

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/google/uuid"
	"github.com/prepdeck/prepdeck-api/internal/events"
)

// TaskSubmitter accepts tasks for background processing. Satisfied by
// *TaskRunner.
type TaskSubmitter interface {
	Submit(ctx context.Context, task Task) error
}

// RecomputeEventHandler implements events.EventHandler. It turns mastery
// recompute request events into tasks and submits them to the runner, so
// services can request recomputation without depending on this package.
type RecomputeEventHandler struct {
	factory   *MasteryRecomputeTaskFactory
	submitter TaskSubmitter
	logger    *slog.Logger
}

// NewRecomputeEventHandler creates an event handler that builds mastery
// recompute tasks from events and hands them to the given submitter.
func NewRecomputeEventHandler(
	factory *MasteryRecomputeTaskFactory,
	submitter TaskSubmitter,
	logger *slog.Logger,
) *RecomputeEventHandler {
	if factory == nil {
		panic("factory cannot be nil")
	}
	if submitter == nil {
		panic("submitter cannot be nil")
	}
	if logger == nil {
		logger = slog.Default()
	}

	return &RecomputeEventHandler{
		factory:   factory,
		submitter: submitter,
		logger:    logger.With(slog.String("component", "recompute_event_handler")),
	}
}

// Ensure RecomputeEventHandler implements events.EventHandler
var _ events.EventHandler = (*RecomputeEventHandler)(nil)

// HandleEvent processes mastery recompute request events. Events of other
// types are ignored so additional handlers can share the same emitter.
func (h *RecomputeEventHandler) HandleEvent(ctx context.Context, event *events.TaskRequestEvent) error {
	if event.Type != TaskTypeMasteryRecompute {
		h.logger.Debug("ignoring event with unsupported type",
			"event_type", event.Type,
			"event_id", event.ID)
		return nil
	}

	var payload struct {
		UserID   string `json:"user_id"`
		DomainID string `json:"domain_id"`
	}
	if err := event.UnmarshalPayload(&payload); err != nil {
		h.logger.Error("failed to unmarshal payload", "error", err, "event_id", event.ID)
		return fmt.Errorf("failed to unmarshal payload: %w", err)
	}

	userID, err := uuid.Parse(payload.UserID)
	if err != nil {
		h.logger.Error("invalid user ID in event payload",
			"error", err,
			"user_id", payload.UserID,
			"event_id", event.ID)
		return fmt.Errorf("invalid user ID: %w", err)
	}

	domainID, err := uuid.Parse(payload.DomainID)
	if err != nil {
		h.logger.Error("invalid domain ID in event payload",
			"error", err,
			"domain_id", payload.DomainID,
			"event_id", event.ID)
		return fmt.Errorf("invalid domain ID: %w", err)
	}

	task, err := h.factory.CreateTask(userID, domainID)
	if err != nil {
		h.logger.Error("failed to create task",
			"error", err,
			"user_id", userID,
			"domain_id", domainID,
			"event_id", event.ID)
		return fmt.Errorf("failed to create task: %w", err)
	}

	if err := h.submitter.Submit(ctx, task); err != nil {
		h.logger.Error("failed to submit task",
			"error", err,
			"task_id", task.ID(),
			"event_id", event.ID)
		return fmt.Errorf("failed to submit task: %w", err)
	}

	h.logger.Debug("recompute task submitted",
		"task_id", task.ID(),
		"user_id", userID,
		"domain_id", domainID,
		"event_id", event.ID)
	return nil
}

// NewRecomputeRequestEvent builds the event a service emits to request a
// mastery recompute for one user and domain.
func NewRecomputeRequestEvent(userID, domainID uuid.UUID) (*events.TaskRequestEvent, error) {
	return events.NewTaskRequestEvent(TaskTypeMasteryRecompute, map[string]string{
		"user_id":   userID.String(),
		"domain_id": domainID.String(),
	})
}
