package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"
	"github.com/prepdeck/prepdeck-api/internal/platform/logger"
	"github.com/prepdeck/prepdeck-api/internal/store"
	"github.com/prepdeck/prepdeck-api/internal/task"
)

// TaskHydrator rebuilds the execution function for a task recovered from
// the database. Satisfied by *task.MasteryRecomputeTaskFactory.
type TaskHydrator interface {
	Hydrate(taskType string, payload []byte) (func(ctx context.Context) error, error)
}

// PostgresTaskStore implements the task.TaskStore interface using a
// PostgreSQL database as the storage backend.
type PostgresTaskStore struct {
	db       store.DBTX
	logger   *slog.Logger
	hydrator TaskHydrator
}

// NewPostgresTaskStore creates a new PostgreSQL implementation of the
// TaskStore interface. If logger is nil, the default logger is used.
func NewPostgresTaskStore(db store.DBTX, logger *slog.Logger) *PostgresTaskStore {
	if db == nil {
		panic("db cannot be nil")
	}

	if logger == nil {
		logger = slog.Default()
	}

	return &PostgresTaskStore{
		db:     db,
		logger: logger.With(slog.String("component", "task_store")),
	}
}

// Ensure PostgresTaskStore implements task.TaskStore interface
var _ task.TaskStore = (*PostgresTaskStore)(nil)

// SetHydrator wires the component that turns persisted payloads back into
// executable tasks. Set after construction because the factory is built
// later during startup wiring.
func (s *PostgresTaskStore) SetHydrator(h TaskHydrator) {
	s.hydrator = h
}

// WithTx implements task.TaskStore.WithTx
func (s *PostgresTaskStore) WithTx(tx *sql.Tx) task.TaskStore {
	return &PostgresTaskStore{
		db:       tx,
		logger:   s.logger,
		hydrator: s.hydrator,
	}
}

// SaveTask implements task.TaskStore.SaveTask
func (s *PostgresTaskStore) SaveTask(ctx context.Context, t task.Task) error {
	log := logger.FromContextOrDefault(ctx, s.logger)

	query := `
		INSERT INTO tasks (id, type, payload, status, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6)
	`

	now := time.Now().UTC()
	_, err := s.db.ExecContext(ctx, query,
		t.ID(),
		t.Type(),
		t.Payload(),
		t.Status(),
		now,
		now,
	)
	if err != nil {
		log.Error("failed to save task",
			slog.String("task_id", t.ID().String()),
			slog.String("task_type", t.Type()),
			slog.String("error", err.Error()))
		return MapError(err)
	}

	return nil
}

// UpdateTaskStatus implements task.TaskStore.UpdateTaskStatus
func (s *PostgresTaskStore) UpdateTaskStatus(ctx context.Context, taskID uuid.UUID, status task.TaskStatus, errorMsg string) error {
	log := logger.FromContextOrDefault(ctx, s.logger)

	query := `
		UPDATE tasks
		SET status = $1, error_message = $2, updated_at = $3
		WHERE id = $4
	`

	result, err := s.db.ExecContext(ctx, query, status, errorMsg, time.Now().UTC(), taskID)
	if err != nil {
		log.Error("failed to update task status",
			slog.String("task_id", taskID.String()),
			slog.String("status", string(status)),
			slog.String("error", err.Error()))
		return MapError(err)
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get rows affected: %w", err)
	}

	// A missing row is a no-op: the task may have been pruned.
	if rowsAffected == 0 {
		log.Warn("no task found with ID to update status",
			slog.String("task_id", taskID.String()))
	}

	return nil
}

// GetPendingTasks implements task.TaskStore.GetPendingTasks
func (s *PostgresTaskStore) GetPendingTasks(ctx context.Context) ([]task.Task, error) {
	return s.getTasksByStatus(ctx, task.TaskStatusPending, 0)
}

// GetProcessingTasks implements task.TaskStore.GetProcessingTasks
func (s *PostgresTaskStore) GetProcessingTasks(ctx context.Context, olderThan time.Duration) ([]task.Task, error) {
	return s.getTasksByStatus(ctx, task.TaskStatusProcessing, olderThan)
}

func (s *PostgresTaskStore) getTasksByStatus(ctx context.Context, status task.TaskStatus, olderThan time.Duration) ([]task.Task, error) {
	query := `
		SELECT id, type, payload, status
		FROM tasks
		WHERE status = $1
	`
	args := []any{status}

	if olderThan > 0 {
		query += ` AND updated_at < $2`
		args = append(args, time.Now().UTC().Add(-olderThan))
	}
	query += ` ORDER BY created_at ASC`

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, MapError(err)
	}
	defer func() { _ = rows.Close() }()

	var tasks []task.Task
	for rows.Next() {
		t := &recoveredTask{}
		if err := rows.Scan(&t.id, &t.taskType, &t.payload, &t.status); err != nil {
			return nil, MapError(err)
		}

		if s.hydrator != nil {
			executeFn, err := s.hydrator.Hydrate(t.taskType, t.payload)
			if err != nil {
				s.logger.Warn("failed to hydrate recovered task, it will fail on execution",
					slog.String("task_id", t.id.String()),
					slog.String("task_type", t.taskType),
					slog.String("error", err.Error()))
			} else {
				t.executeFn = executeFn
			}
		}

		tasks = append(tasks, t)
	}
	return tasks, rows.Err()
}

// recoveredTask implements task.Task for rows loaded from the database.
// The execution function is rebuilt from the payload by the hydrator.
type recoveredTask struct {
	id        uuid.UUID
	taskType  string
	payload   []byte
	status    task.TaskStatus
	executeFn func(ctx context.Context) error
}

func (t *recoveredTask) ID() uuid.UUID           { return t.id }
func (t *recoveredTask) Type() string            { return t.taskType }
func (t *recoveredTask) Payload() []byte         { return t.payload }
func (t *recoveredTask) Status() task.TaskStatus { return t.status }

func (t *recoveredTask) Execute(ctx context.Context) error {
	if t.executeFn == nil {
		return errors.New("no execution function hydrated for recovered task")
	}
	return t.executeFn(ctx)
}
