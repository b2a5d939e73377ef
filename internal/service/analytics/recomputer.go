// Package analytics derives mastery snapshots, knowledge gaps, and insights
// from the append-only review event log.
package analytics

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"

	"github.com/google/uuid"
	"github.com/prepdeck/prepdeck-api/internal/domain"
	"github.com/prepdeck/prepdeck-api/internal/domain/mastery"
	"github.com/prepdeck/prepdeck-api/internal/platform/logger"
	"github.com/prepdeck/prepdeck-api/internal/store"
	"github.com/prepdeck/prepdeck-api/internal/task"
)

// Verify the recomputer satisfies the task package's contract
var _ task.MasteryRecomputer = (*Recomputer)(nil)

type recomputeKey struct {
	userID   uuid.UUID
	domainID uuid.UUID
}

type inflight struct {
	rerun bool
}

// Recomputer rebuilds one user's mastery snapshot for one domain from the
// recent event window. Concurrent requests for the same (user, domain) pair
// coalesce: at most one recompute runs at a time, and requests that arrive
// mid-run schedule exactly one follow-up run over the then-current window.
type Recomputer struct {
	events    store.EventStore
	masteries store.MasteryStore
	calc      *mastery.Calculator
	params    *mastery.Params
	logger    *slog.Logger

	mu      sync.Mutex
	running map[recomputeKey]*inflight
}

// NewRecomputer creates a Recomputer with the default mastery parameters.
func NewRecomputer(
	events store.EventStore,
	masteries store.MasteryStore,
	logger *slog.Logger,
) *Recomputer {
	return NewRecomputerWithParams(events, masteries, mastery.NewDefaultParams(), logger)
}

// NewRecomputerWithParams creates a Recomputer with custom mastery parameters.
func NewRecomputerWithParams(
	events store.EventStore,
	masteries store.MasteryStore,
	params *mastery.Params,
	logger *slog.Logger,
) *Recomputer {
	if events == nil {
		panic("events cannot be nil")
	}
	if masteries == nil {
		panic("masteries cannot be nil")
	}
	if logger == nil {
		logger = slog.Default()
	}

	return &Recomputer{
		events:    events,
		masteries: masteries,
		calc:      mastery.NewCalculatorWithParams(params),
		params:    params,
		logger:    logger.With(slog.String("component", "mastery_recomputer")),
		running:   make(map[recomputeKey]*inflight),
	}
}

// Recompute implements task.MasteryRecomputer. When another recompute for the
// same pair is already running it returns nil immediately and the running one
// repeats itself once, so the final snapshot reflects the newest events.
func (r *Recomputer) Recompute(ctx context.Context, userID, domainID uuid.UUID) error {
	key := recomputeKey{userID: userID, domainID: domainID}

	r.mu.Lock()
	if current, ok := r.running[key]; ok {
		current.rerun = true
		r.mu.Unlock()
		return nil
	}
	run := &inflight{}
	r.running[key] = run
	r.mu.Unlock()

	for {
		err := r.recomputeOnce(ctx, userID, domainID)

		r.mu.Lock()
		if err == nil && run.rerun {
			run.rerun = false
			r.mu.Unlock()
			continue
		}
		delete(r.running, key)
		r.mu.Unlock()
		return err
	}
}

func (r *Recomputer) recomputeOnce(ctx context.Context, userID, domainID uuid.UUID) error {
	log := logger.FromContextOrDefault(ctx, r.logger)

	window, err := r.events.ListRecentByDomain(ctx, userID, domainID, r.params.WindowSize)
	if err != nil {
		return fmt.Errorf("failed to load event window: %w", err)
	}

	total, err := r.events.CountByDomain(ctx, userID, domainID)
	if err != nil {
		return fmt.Errorf("failed to count events: %w", err)
	}

	prev, err := r.masteries.Get(ctx, userID, domainID)
	if err != nil && !errors.Is(err, store.ErrNotFound) {
		return fmt.Errorf("failed to load previous snapshot: %w", err)
	}

	if len(window) == 0 && prev == nil {
		log.Debug("no events and no snapshot, nothing to recompute",
			slog.String("user_id", userID.String()),
			slog.String("domain_id", domainID.String()))
		return nil
	}

	events := make([]domain.ReviewEvent, len(window))
	for i, e := range window {
		events[i] = *e
	}

	snapshot := r.calc.Snapshot(mastery.Input{
		UserID:         userID,
		DomainID:       domainID,
		Events:         events,
		TotalQuestions: total,
		Prev:           prev,
	})

	if err := r.masteries.Upsert(ctx, snapshot); err != nil {
		return fmt.Errorf("failed to save snapshot: %w", err)
	}

	log.Debug("mastery snapshot recomputed",
		slog.String("user_id", userID.String()),
		slog.String("domain_id", domainID.String()),
		slog.Float64("score", snapshot.Score),
		slog.Int("window", len(events)))
	return nil
}
