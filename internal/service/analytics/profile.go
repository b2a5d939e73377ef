package analytics

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"
	"github.com/prepdeck/prepdeck-api/internal/domain"
	"github.com/prepdeck/prepdeck-api/internal/domain/mastery"
	"github.com/prepdeck/prepdeck-api/internal/platform/logger"
	"github.com/prepdeck/prepdeck-api/internal/store"
)

// insightLookback is how far back the profile reads events for the weekly
// accuracy comparison: the current week against the one before it.
const insightLookback = 14 * 24 * time.Hour

// DomainMasteryView is one domain's mastery snapshot flattened for clients,
// with decay already applied.
type DomainMasteryView struct {
	DomainID         uuid.UUID    `json:"domain_id"`
	DomainName       string       `json:"domain_name"`
	ExamWeight       float64      `json:"exam_weight"`
	Score            float64      `json:"score"`
	AccuracyRate     float64      `json:"accuracy_rate"`
	ConsistencyScore float64      `json:"consistency_score"`
	DifficultyScore  float64      `json:"difficulty_score"`
	Trend            domain.Trend `json:"trend"`
	QuestionCount    int          `json:"question_count"`
	LastActivityAt   *time.Time   `json:"last_activity_at,omitempty"`
}

// LearningProfile is the full analytics view for one learner.
type LearningProfile struct {
	DomainMasteries []DomainMasteryView    `json:"domain_masteries"`
	KnowledgeGaps   []mastery.KnowledgeGap `json:"knowledge_gaps"`
	RecentInsights  []mastery.Insight      `json:"recent_insights"`
}

// ProfileService assembles learning profiles from cached mastery snapshots,
// the exam blueprint, and the recent event log.
type ProfileService struct {
	domains   store.DomainStore
	masteries store.MasteryStore
	events    store.EventStore
	calc      *mastery.Calculator
	logger    *slog.Logger
	now       func() time.Time
}

// NewProfileService creates a new ProfileService.
func NewProfileService(
	domains store.DomainStore,
	masteries store.MasteryStore,
	events store.EventStore,
	logger *slog.Logger,
) *ProfileService {
	if domains == nil {
		panic("domains cannot be nil")
	}
	if masteries == nil {
		panic("masteries cannot be nil")
	}
	if events == nil {
		panic("events cannot be nil")
	}
	if logger == nil {
		logger = slog.Default()
	}

	return &ProfileService{
		domains:   domains,
		masteries: masteries,
		events:    events,
		calc:      mastery.NewCalculator(),
		logger:    logger.With(slog.String("component", "profile_service")),
		now:       func() time.Time { return time.Now().UTC() },
	}
}

// GetLearningProfile returns the learner's per-domain mastery (decayed for
// inactivity), detected knowledge gaps, and recent insights. Domains the
// learner has never touched appear with a zero snapshot so gap detection can
// classify them as never learned.
func (s *ProfileService) GetLearningProfile(ctx context.Context, userID uuid.UUID) (*LearningProfile, error) {
	log := logger.FromContextOrDefault(ctx, s.logger)
	now := s.now()

	domains, err := s.domains.List(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to list exam domains: %w", err)
	}

	snapshots, err := s.masteries.ListForUser(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to list mastery snapshots: %w", err)
	}
	byDomain := make(map[uuid.UUID]*domain.DomainMastery, len(snapshots))
	for _, snap := range snapshots {
		byDomain[snap.DomainID] = snap
	}

	standings := make([]mastery.DomainStanding, 0, len(domains))
	views := make([]DomainMasteryView, 0, len(domains))
	for _, d := range domains {
		snap := byDomain[d.ID]
		if snap != nil {
			snap = s.calc.ApplyDecay(snap, now)
		}
		standings = append(standings, mastery.DomainStanding{Domain: d, Mastery: snap})
		views = append(views, buildView(d, snap))
	}

	gaps := mastery.DetectGaps(standings)

	recent, err := s.events.ListSince(ctx, userID, now.Add(-insightLookback))
	if err != nil {
		return nil, fmt.Errorf("failed to list recent events: %w", err)
	}
	events := make([]domain.ReviewEvent, len(recent))
	for i, e := range recent {
		events[i] = *e
	}

	insights := mastery.BuildInsights(standings, events, now)

	log.Debug("learning profile assembled",
		slog.String("user_id", userID.String()),
		slog.Int("domains", len(views)),
		slog.Int("gaps", len(gaps)),
		slog.Int("insights", len(insights)))

	return &LearningProfile{
		DomainMasteries: views,
		KnowledgeGaps:   gaps,
		RecentInsights:  insights,
	}, nil
}

func buildView(d *domain.ExamDomain, snap *domain.DomainMastery) DomainMasteryView {
	view := DomainMasteryView{
		DomainID:   d.ID,
		DomainName: d.Name,
		ExamWeight: d.ExamWeight,
		Trend:      domain.TrendStable,
	}
	if snap == nil {
		return view
	}

	view.Score = snap.Score
	view.AccuracyRate = snap.AccuracyRate
	view.ConsistencyScore = snap.ConsistencyScore
	view.DifficultyScore = snap.DifficultyScore
	view.Trend = snap.Trend
	view.QuestionCount = snap.QuestionCount
	if !snap.LastActivityAt.IsZero() {
		at := snap.LastActivityAt
		view.LastActivityAt = &at
	}
	return view
}
