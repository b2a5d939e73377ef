package task

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"

	"github.com/google/uuid"
)

// Common errors returned during recompute task creation
var (
	ErrNilRecomputer = errors.New("recomputer cannot be nil")
	ErrEmptyUserID   = errors.New("user ID cannot be empty")
	ErrEmptyDomainID = errors.New("domain ID cannot be empty")
)

// MasteryRecomputer rebuilds a user's mastery snapshot for one exam domain
// from the stored review events.
type MasteryRecomputer interface {
	Recompute(ctx context.Context, userID, domainID uuid.UUID) error
}

// recomputePayload is the serialized form of a mastery recompute task.
type recomputePayload struct {
	UserID   uuid.UUID `json:"user_id"`
	DomainID uuid.UUID `json:"domain_id"`
}

// MasteryRecomputeTask recomputes one user's mastery for one domain. The
// task carries only identifiers; the recomputer reads the event log itself,
// so re-running the task is always safe.
type MasteryRecomputeTask struct {
	id         uuid.UUID
	userID     uuid.UUID
	domainID   uuid.UUID
	payload    []byte
	recomputer MasteryRecomputer
	status     TaskStatus
	logger     *slog.Logger
}

// NewMasteryRecomputeTask creates a new task for recomputing the mastery
// snapshot of the given user and domain.
func NewMasteryRecomputeTask(
	userID, domainID uuid.UUID,
	recomputer MasteryRecomputer,
	logger *slog.Logger,
) (*MasteryRecomputeTask, error) {
	if userID == uuid.Nil {
		return nil, ErrEmptyUserID
	}
	if domainID == uuid.Nil {
		return nil, ErrEmptyDomainID
	}
	if recomputer == nil {
		return nil, ErrNilRecomputer
	}
	if logger == nil {
		logger = slog.Default()
	}

	payload, err := json.Marshal(recomputePayload{UserID: userID, DomainID: domainID})
	if err != nil {
		return nil, fmt.Errorf("failed to marshal task payload: %w", err)
	}

	return &MasteryRecomputeTask{
		id:         uuid.New(),
		userID:     userID,
		domainID:   domainID,
		payload:    payload,
		recomputer: recomputer,
		status:     TaskStatusPending,
		logger:     logger.With(slog.String("component", "mastery_recompute_task")),
	}, nil
}

// ID returns the task's unique identifier
func (t *MasteryRecomputeTask) ID() uuid.UUID {
	return t.id
}

// Type returns the task type identifier
func (t *MasteryRecomputeTask) Type() string {
	return TaskTypeMasteryRecompute
}

// Payload returns the serialized user and domain identifiers
func (t *MasteryRecomputeTask) Payload() []byte {
	return t.payload
}

// Status returns the current task status
func (t *MasteryRecomputeTask) Status() TaskStatus {
	return t.status
}

// Execute recomputes the mastery snapshot.
func (t *MasteryRecomputeTask) Execute(ctx context.Context) error {
	t.logger.Debug("recomputing mastery",
		"task_id", t.id,
		"user_id", t.userID,
		"domain_id", t.domainID)

	if err := t.recomputer.Recompute(ctx, t.userID, t.domainID); err != nil {
		return fmt.Errorf("mastery recompute failed for user %s domain %s: %w",
			t.userID, t.domainID, err)
	}
	return nil
}

// MasteryRecomputeTaskFactory creates mastery recompute tasks with their
// dependencies wired in. It also rehydrates tasks recovered from the
// database after a restart.
type MasteryRecomputeTaskFactory struct {
	recomputer MasteryRecomputer
	logger     *slog.Logger
}

// NewMasteryRecomputeTaskFactory creates a new factory.
func NewMasteryRecomputeTaskFactory(
	recomputer MasteryRecomputer,
	logger *slog.Logger,
) *MasteryRecomputeTaskFactory {
	if recomputer == nil {
		panic("recomputer cannot be nil")
	}
	if logger == nil {
		logger = slog.Default()
	}

	return &MasteryRecomputeTaskFactory{
		recomputer: recomputer,
		logger:     logger,
	}
}

// CreateTask creates a new mastery recompute task for the given user and domain.
func (f *MasteryRecomputeTaskFactory) CreateTask(userID, domainID uuid.UUID) (Task, error) {
	return NewMasteryRecomputeTask(userID, domainID, f.recomputer, f.logger)
}

// Hydrate rebuilds an executable task from a payload persisted by a previous
// run. Used during recovery, when only the serialized form survives.
func (f *MasteryRecomputeTaskFactory) Hydrate(taskType string, payload []byte) (func(ctx context.Context) error, error) {
	if taskType != TaskTypeMasteryRecompute {
		return nil, fmt.Errorf("unknown task type %q", taskType)
	}

	var data recomputePayload
	if err := json.Unmarshal(payload, &data); err != nil {
		return nil, fmt.Errorf("failed to unmarshal task payload: %w", err)
	}
	if data.UserID == uuid.Nil {
		return nil, ErrEmptyUserID
	}
	if data.DomainID == uuid.Nil {
		return nil, ErrEmptyDomainID
	}

	return func(ctx context.Context) error {
		if err := f.recomputer.Recompute(ctx, data.UserID, data.DomainID); err != nil {
			return fmt.Errorf("mastery recompute failed for user %s domain %s: %w",
				data.UserID, data.DomainID, err)
		}
		return nil
	}, nil
}
