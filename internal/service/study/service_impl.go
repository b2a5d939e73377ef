package study

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"
	"github.com/prepdeck/prepdeck-api/internal/domain"
	"github.com/prepdeck/prepdeck-api/internal/domain/srs"
	evt "github.com/prepdeck/prepdeck-api/internal/events"
	"github.com/prepdeck/prepdeck-api/internal/platform/logger"
	"github.com/prepdeck/prepdeck-api/internal/store"
	"github.com/prepdeck/prepdeck-api/internal/task"
)

// Verify interface compliance at compile time
var _ StudyService = (*studyServiceImpl)(nil)

// studyServiceImpl implements the StudyService interface.
type studyServiceImpl struct {
	db        *sql.DB
	cards     store.FlashcardStore
	states    store.ReviewStateStore
	events    store.EventStore
	goals     store.GoalStore
	scheduler srs.Scheduler
	emitter   evt.EventEmitter
	cfg       Config
	logger    *slog.Logger
	now       func() time.Time
}

// NewStudyService creates a new StudyService implementation. The emitter
// receives a mastery recompute request after each successful review; it may
// be nil in contexts where no background processing exists.
func NewStudyService(
	db *sql.DB,
	cards store.FlashcardStore,
	states store.ReviewStateStore,
	events store.EventStore,
	goals store.GoalStore,
	scheduler srs.Scheduler,
	emitter evt.EventEmitter,
	cfg Config,
	logger *slog.Logger,
) StudyService {
	if db == nil {
		panic("db cannot be nil")
	}
	if cards == nil {
		panic("cards cannot be nil")
	}
	if states == nil {
		panic("states cannot be nil")
	}
	if events == nil {
		panic("events cannot be nil")
	}
	if goals == nil {
		panic("goals cannot be nil")
	}
	if scheduler == nil {
		panic("scheduler cannot be nil")
	}

	if logger == nil {
		logger = slog.Default()
	}

	return &studyServiceImpl{
		db:        db,
		cards:     cards,
		states:    states,
		events:    events,
		goals:     goals,
		scheduler: scheduler,
		emitter:   emitter,
		cfg:       cfg,
		logger:    logger.With(slog.String("component", "study_service")),
		now:       func() time.Time { return time.Now().UTC() },
	}
}

// GetDueCards implements StudyService.GetDueCards.
func (s *studyServiceImpl) GetDueCards(
	ctx context.Context,
	userID, domainID uuid.UUID,
	limit int,
) ([]DueCard, error) {
	log := logger.FromContextOrDefault(ctx, s.logger)

	if limit < 0 {
		return nil, ErrInvalidLimit
	}
	if limit == 0 {
		limit = s.cfg.DefaultLimit
	}

	now := s.now()

	dueStates, err := s.states.ListDue(ctx, userID, domainID, now, limit)
	if err != nil {
		return nil, &ServiceError{Operation: "get_due_cards", Err: fmt.Errorf("failed to list due states: %w", err)}
	}

	due, err := s.resolveDueCards(ctx, log, dueStates)
	if err != nil {
		return nil, &ServiceError{Operation: "get_due_cards", Err: err}
	}

	var fresh []DueCard
	if n := newCardCap(limit, s.cfg.NewCardShare); n > 0 {
		freshCards, err := s.cards.ListNewForUser(ctx, userID, domainID, n)
		if err != nil {
			return nil, &ServiceError{Operation: "get_due_cards", Err: fmt.Errorf("failed to list new cards: %w", err)}
		}
		for _, card := range freshCards {
			fresh = append(fresh, DueCard{Card: card})
		}
	}

	queue := interleave(due, fresh, s.cfg.NewPerDueRatio, limit)

	log.Debug("assembled study queue",
		slog.String("user_id", userID.String()),
		slog.Int("due", len(due)),
		slog.Int("new", len(fresh)),
		slog.Int("selected", len(queue)))
	return queue, nil
}

// resolveDueCards joins due review states with their card content, dropping
// states whose card has vanished or gone inactive.
func (s *studyServiceImpl) resolveDueCards(
	ctx context.Context,
	log *slog.Logger,
	states []*domain.ReviewState,
) ([]DueCard, error) {
	if len(states) == 0 {
		return nil, nil
	}

	ids := make([]uuid.UUID, len(states))
	for i, state := range states {
		ids[i] = state.CardID
	}

	cards, err := s.cards.GetByIDs(ctx, ids)
	if err != nil {
		return nil, fmt.Errorf("failed to load due cards: %w", err)
	}

	byID := make(map[uuid.UUID]*domain.Flashcard, len(cards))
	for _, card := range cards {
		byID[card.ID] = card
	}

	due := make([]DueCard, 0, len(states))
	for _, state := range states {
		card, ok := byID[state.CardID]
		if !ok || !card.Active {
			log.Warn("due review state references missing or inactive card",
				slog.String("user_id", state.UserID.String()),
				slog.String("card_id", state.CardID.String()))
			continue
		}
		due = append(due, DueCard{Card: card, ReviewState: state})
	}
	return due, nil
}

// ReviewCard implements StudyService.ReviewCard.
func (s *studyServiceImpl) ReviewCard(
	ctx context.Context,
	userID, cardID uuid.UUID,
	rating domain.ReviewRating,
) (*ReviewResult, error) {
	log := logger.FromContextOrDefault(ctx, s.logger)

	if !rating.Valid() {
		log.Warn("invalid review rating",
			slog.String("user_id", userID.String()),
			slog.String("card_id", cardID.String()),
			slog.String("rating", string(rating)))
		return nil, ErrInvalidRating
	}

	now := s.now()
	var result *ReviewResult
	var domainID uuid.UUID

	err := store.RunInTransaction(ctx, s.db, func(ctx context.Context, tx *sql.Tx) error {
		cards := s.cards.WithTx(tx)
		states := s.states.WithTx(tx)
		events := s.events.WithTx(tx)
		goals := s.goals.WithTx(tx)

		card, err := cards.GetByID(ctx, cardID)
		if err != nil {
			if errors.Is(err, store.ErrNotFound) {
				return ErrCardNotFound
			}
			return fmt.Errorf("failed to get card: %w", err)
		}
		if !card.Active {
			return ErrCardNotFound
		}
		domainID = card.DomainID

		// The row lock serializes concurrent reviews of the same card.
		state, err := states.GetForUpdate(ctx, userID, cardID)
		if err != nil {
			if !errors.Is(err, store.ErrNotFound) {
				return fmt.Errorf("failed to get review state: %w", err)
			}
			state, err = domain.NewReviewState(userID, cardID, card.DomainID)
			if err != nil {
				return fmt.Errorf("failed to create review state: %w", err)
			}
		}

		// A repeat submission inside the debounce window is answered with
		// the already-persisted result instead of scheduling twice.
		if !state.LastReviewedAt.IsZero() && now.Sub(state.LastReviewedAt) < s.cfg.ReviewDebounce {
			log.Debug("debounced duplicate review",
				slog.String("user_id", userID.String()),
				slog.String("card_id", cardID.String()))
			result = &ReviewResult{State: state, Duplicate: true}
			return nil
		}

		newState, err := s.scheduler.Schedule(state, rating, now)
		if err != nil {
			if errors.Is(err, srs.ErrInvalidRating) {
				return ErrInvalidRating
			}
			return fmt.Errorf("failed to schedule review: %w", err)
		}

		if err := states.Save(ctx, newState); err != nil {
			return fmt.Errorf("failed to save review state: %w", err)
		}

		event, err := domain.NewFlashcardReviewEvent(
			userID, cardID, card.DomainID, uuid.Nil, rating, card.Difficulty, now)
		if err != nil {
			return fmt.Errorf("failed to build review event: %w", err)
		}
		if err := events.Append(ctx, event); err != nil {
			return fmt.Errorf("failed to append review event: %w", err)
		}

		if err := s.advanceDailyGoal(ctx, goals, userID, now); err != nil {
			return fmt.Errorf("failed to advance daily goal: %w", err)
		}

		result = &ReviewResult{State: newState}
		return nil
	})
	if err != nil {
		if errors.Is(err, ErrCardNotFound) || errors.Is(err, ErrInvalidRating) {
			return nil, err
		}
		log.Error("failed to record review",
			slog.String("error", err.Error()),
			slog.String("user_id", userID.String()),
			slog.String("card_id", cardID.String()))
		return nil, &ServiceError{Operation: "review_card", Err: err}
	}

	// The recompute runs out of band; a failure to even request it must not
	// fail the already-committed review.
	if !result.Duplicate {
		s.requestRecompute(ctx, log, userID, domainID)
	}

	log.Debug("review recorded",
		slog.String("user_id", userID.String()),
		slog.String("card_id", cardID.String()),
		slog.String("rating", string(rating)),
		slog.Bool("duplicate", result.Duplicate),
		slog.Int("interval_days", result.State.IntervalDays),
		slog.Time("next_review_at", result.State.NextReviewAt))
	return result, nil
}

// advanceDailyGoal increments today's review counter, resetting it first if
// the stored progress belongs to an earlier day.
func (s *studyServiceImpl) advanceDailyGoal(
	ctx context.Context,
	goals store.GoalStore,
	userID uuid.UUID,
	now time.Time,
) error {
	goal, err := goals.Get(ctx, userID)
	if err != nil {
		if !errors.Is(err, store.ErrNotFound) {
			return err
		}
		goal = domain.NewDailyGoal(userID)
	}

	goal.ResetIfStale(now)
	goal.CardsReviewedToday++
	goal.UpdatedAt = now
	return goals.Upsert(ctx, goal)
}

func (s *studyServiceImpl) requestRecompute(ctx context.Context, log *slog.Logger, userID, domainID uuid.UUID) {
	if s.emitter == nil {
		return
	}

	event, err := task.NewRecomputeRequestEvent(userID, domainID)
	if err != nil {
		log.Warn("failed to build recompute request event",
			slog.String("error", err.Error()),
			slog.String("user_id", userID.String()),
			slog.String("domain_id", domainID.String()))
		return
	}

	if err := s.emitter.EmitEvent(ctx, event); err != nil {
		log.Warn("failed to emit recompute request",
			slog.String("error", err.Error()),
			slog.String("user_id", userID.String()),
			slog.String("domain_id", domainID.String()))
	}
}

// GetStudyStats implements StudyService.GetStudyStats.
func (s *studyServiceImpl) GetStudyStats(ctx context.Context, userID uuid.UUID) (*StudyStats, error) {
	now := s.now()

	dueCount, err := s.states.CountDue(ctx, userID, uuid.Nil, now)
	if err != nil {
		return nil, &ServiceError{Operation: "get_study_stats", Err: fmt.Errorf("failed to count due cards: %w", err)}
	}

	newCount, err := s.cards.CountNewForUser(ctx, userID, uuid.Nil)
	if err != nil {
		return nil, &ServiceError{Operation: "get_study_stats", Err: fmt.Errorf("failed to count new cards: %w", err)}
	}

	buckets, err := s.states.CountByBucket(ctx, userID)
	if err != nil {
		return nil, &ServiceError{Operation: "get_study_stats", Err: fmt.Errorf("failed to count buckets: %w", err)}
	}

	goal, err := s.goals.Get(ctx, userID)
	if err != nil {
		if !errors.Is(err, store.ErrNotFound) {
			return nil, &ServiceError{Operation: "get_study_stats", Err: fmt.Errorf("failed to get daily goal: %w", err)}
		}
		goal = domain.NewDailyGoal(userID)
	}
	// Display-only reset; the persisted counter resets on the next review.
	goal.ResetIfStale(now)

	return &StudyStats{
		DueToday: dueCount,
		NewCards: newCount,
		Buckets: BucketBreakdown{
			Learning:  buckets.Learning,
			Reviewing: buckets.Reviewing,
			Mastered:  buckets.Mastered,
		},
		DailyGoal: DailyGoalProgress{
			CardsReviewedToday: goal.CardsReviewedToday,
			FlashcardGoal:      goal.FlashcardGoal,
		},
	}, nil
}

// UpdateDailyGoal implements StudyService.UpdateDailyGoal.
func (s *studyServiceImpl) UpdateDailyGoal(
	ctx context.Context,
	userID uuid.UUID,
	flashcardGoal int,
) (*domain.DailyGoal, error) {
	log := logger.FromContextOrDefault(ctx, s.logger)

	if flashcardGoal < 1 {
		return nil, ErrInvalidGoal
	}

	now := s.now()

	goal, err := s.goals.Get(ctx, userID)
	if err != nil {
		if !errors.Is(err, store.ErrNotFound) {
			return nil, &ServiceError{Operation: "update_daily_goal", Err: fmt.Errorf("failed to get daily goal: %w", err)}
		}
		goal = domain.NewDailyGoal(userID)
	}

	goal.ResetIfStale(now)
	goal.FlashcardGoal = flashcardGoal
	goal.UpdatedAt = now

	if err := s.goals.Upsert(ctx, goal); err != nil {
		return nil, &ServiceError{Operation: "update_daily_goal", Err: fmt.Errorf("failed to save daily goal: %w", err)}
	}

	log.Info("daily goal updated",
		slog.String("user_id", userID.String()),
		slog.Int("flashcard_goal", flashcardGoal))
	return goal, nil
}
