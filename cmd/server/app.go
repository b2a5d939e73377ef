package main

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"
	"time"

	"github.com/prepdeck/prepdeck-api/internal/config"
	"github.com/prepdeck/prepdeck-api/internal/domain/srs"
	"github.com/prepdeck/prepdeck-api/internal/events"
	"github.com/prepdeck/prepdeck-api/internal/generation"
	"github.com/prepdeck/prepdeck-api/internal/platform/gemini"
	"github.com/prepdeck/prepdeck-api/internal/platform/postgres"
	"github.com/prepdeck/prepdeck-api/internal/service/analytics"
	"github.com/prepdeck/prepdeck-api/internal/service/content"
	"github.com/prepdeck/prepdeck-api/internal/service/study"
	"github.com/prepdeck/prepdeck-api/internal/task"
)

// application bundles the wired components the server runs on.
type application struct {
	config *config.Config
	logger *slog.Logger
	db     *sql.DB

	studyService   study.StudyService
	profileService *analytics.ProfileService
	draftService   *content.DraftService

	taskRunner *task.TaskRunner
}

// newApplication wires stores, the scheduler, background recomputation, and
// the services. The task store's hydrator is set after the factory exists;
// recovered tasks need it to rebuild their execute functions.
func newApplication(cfg *config.Config, db *sql.DB, logger *slog.Logger) (*application, error) {
	cardStore := postgres.NewPostgresFlashcardStore(db, logger)
	stateStore := postgres.NewPostgresReviewStateStore(db, logger)
	eventStore := postgres.NewPostgresEventStore(db, logger)
	goalStore := postgres.NewPostgresGoalStore(db, logger)
	masteryStore := postgres.NewPostgresMasteryStore(db, logger)
	domainStore := postgres.NewPostgresDomainStore(db, logger)
	taskStore := postgres.NewPostgresTaskStore(db, logger)

	recomputer := analytics.NewRecomputer(eventStore, masteryStore, logger)
	taskFactory := task.NewMasteryRecomputeTaskFactory(recomputer, logger)
	taskStore.SetHydrator(taskFactory)

	taskRunner := task.NewTaskRunner(taskStore, taskRunnerConfig(cfg.Task), logger)

	emitter := events.NewInMemoryEventEmitter(logger)
	emitter.RegisterHandler(task.NewRecomputeEventHandler(taskFactory, taskRunner, logger))

	studyService := study.NewStudyService(
		db,
		cardStore,
		stateStore,
		eventStore,
		goalStore,
		srs.NewDefaultScheduler(),
		emitter,
		studyConfig(cfg.Study),
		logger,
	)

	profileService := analytics.NewProfileService(domainStore, masteryStore, eventStore, logger)

	generator, err := setupGenerator(cfg, logger)
	if err != nil {
		return nil, err
	}
	draftService := content.NewDraftService(db, domainStore, cardStore, generator, logger)

	return &application{
		config:         cfg,
		logger:         logger,
		db:             db,
		studyService:   studyService,
		profileService: profileService,
		draftService:   draftService,
		taskRunner:     taskRunner,
	}, nil
}

// setupGenerator builds the LLM card drafter. Without an API key the server
// runs fine; only the admin drafting endpoint is disabled.
func setupGenerator(cfg *config.Config, logger *slog.Logger) (generation.Generator, error) {
	if cfg.LLM.GeminiAPIKey == "" {
		logger.Info("no LLM API key configured, card drafting disabled")
		return nil, nil
	}

	generator, err := gemini.NewGeminiGenerator(context.Background(), cfg.LLM, logger)
	if err != nil {
		return nil, fmt.Errorf("failed to create card generator: %w", err)
	}
	return generator, nil
}

func studyConfig(cfg config.StudyConfig) study.Config {
	return study.Config{
		NewCardShare:   cfg.NewCardShare,
		NewPerDueRatio: cfg.NewPerDueRatio,
		ReviewDebounce: time.Duration(cfg.ReviewDebounceSeconds) * time.Second,
		DefaultLimit:   cfg.DefaultSelectionLimit,
	}
}

func taskRunnerConfig(cfg config.TaskConfig) task.TaskRunnerConfig {
	runnerCfg := task.DefaultTaskRunnerConfig()
	runnerCfg.WorkerCount = cfg.WorkerCount
	runnerCfg.QueueSize = cfg.QueueSize
	runnerCfg.MaxRetries = cfg.MaxRetries
	runnerCfg.BaseDelay = time.Duration(cfg.BaseDelayMS) * time.Millisecond
	runnerCfg.StuckTaskAge = time.Duration(cfg.StuckTaskMin) * time.Minute
	return runnerCfg
}

// cleanup stops the background workers. The HTTP server is already drained
// when this runs.
func (app *application) cleanup() {
	app.taskRunner.Stop()
}
