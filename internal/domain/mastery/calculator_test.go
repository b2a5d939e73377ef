package mastery

import (
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/prepdeck/prepdeck-api/internal/domain"
)

// eventAt builds a practice answer event for test windows.
func eventAt(t *testing.T, userID, domainID, sessionID uuid.UUID, correct bool, difficulty domain.Difficulty, at time.Time) domain.ReviewEvent {
	t.Helper()
	e, err := domain.NewPracticeAnswerEvent(userID, uuid.New(), domainID, sessionID, correct, difficulty, at)
	if err != nil {
		t.Fatalf("failed to create event: %v", err)
	}
	return *e
}

func TestSnapshotEmptyWindow(t *testing.T) {
	t.Parallel()
	calc := NewCalculator()
	userID, domainID := uuid.New(), uuid.New()

	m := calc.Snapshot(Input{UserID: userID, DomainID: domainID})

	if m.Score != 0 || m.AccuracyRate != 0 || m.ConsistencyScore != 0 || m.DifficultyScore != 0 {
		t.Errorf("expected zeroed components, got %+v", m)
	}
	if m.Trend != domain.TrendStable {
		t.Errorf("expected stable trend, got %s", m.Trend)
	}
	if m.QuestionCount != 0 {
		t.Errorf("expected question count 0, got %d", m.QuestionCount)
	}
}

func TestSnapshotComponentsInRange(t *testing.T) {
	t.Parallel()
	calc := NewCalculator()
	userID, domainID := uuid.New(), uuid.New()
	base := time.Date(2026, 8, 1, 12, 0, 0, 0, time.UTC)

	difficulties := []domain.Difficulty{domain.DifficultyEasy, domain.DifficultyMedium, domain.DifficultyHard}
	events := make([]domain.ReviewEvent, 0, 60)
	session := uuid.New()
	for i := 0; i < 60; i++ {
		if i%12 == 0 {
			session = uuid.New()
		}
		events = append(events, eventAt(t, userID, domainID, session,
			i%3 != 0, difficulties[i%3], base.Add(time.Duration(i)*time.Hour)))
	}

	m := calc.Snapshot(Input{UserID: userID, DomainID: domainID, Events: events, TotalQuestions: 60})

	for name, v := range map[string]float64{
		"score":       m.Score,
		"accuracy":    m.AccuracyRate,
		"consistency": m.ConsistencyScore,
		"difficulty":  m.DifficultyScore,
	} {
		if v < 0 || v > 100 {
			t.Errorf("%s out of range: %v", name, v)
		}
	}
	if m.QuestionCount != 60 {
		t.Errorf("expected question count 60, got %d", m.QuestionCount)
	}
	if !m.LastActivityAt.Equal(events[len(events)-1].RecordedAt) {
		t.Errorf("expected last activity %v, got %v", events[len(events)-1].RecordedAt, m.LastActivityAt)
	}
}

func TestSnapshotIsIdempotent(t *testing.T) {
	t.Parallel()
	calc := NewCalculator()
	userID, domainID := uuid.New(), uuid.New()
	base := time.Date(2026, 7, 10, 9, 0, 0, 0, time.UTC)

	session := uuid.New()
	events := make([]domain.ReviewEvent, 0, 20)
	for i := 0; i < 20; i++ {
		events = append(events, eventAt(t, userID, domainID, session,
			i%4 != 0, domain.DifficultyMedium, base.Add(time.Duration(i)*time.Minute)))
	}

	in := Input{UserID: userID, DomainID: domainID, Events: events, TotalQuestions: 20}
	first := calc.Snapshot(in)
	second := calc.Snapshot(in)

	if *first != *second {
		t.Errorf("replaying the same window diverged:\n%+v\n%+v", first, second)
	}
}

func TestSnapshotCompositeWeights(t *testing.T) {
	t.Parallel()
	calc := NewCalculator()

	// Direct check of the published weighting.
	if got := calc.compositeScore(80, 90, 70); got != 81 {
		t.Errorf("expected composite 81, got %v", got)
	}
	if got := calc.compositeScore(0, 0, 0); got != 0 {
		t.Errorf("expected composite 0, got %v", got)
	}
	if got := calc.compositeScore(100, 100, 100); got != 100 {
		t.Errorf("expected composite 100, got %v", got)
	}
}

func TestSnapshotAccuracyWeightsRecentEventsHigher(t *testing.T) {
	t.Parallel()
	calc := NewCalculator()
	userID, domainID := uuid.New(), uuid.New()
	base := time.Date(2026, 6, 1, 0, 0, 0, 0, time.UTC)
	session := uuid.New()

	// Old failures, recent successes.
	improving := []domain.ReviewEvent{}
	for i := 0; i < 10; i++ {
		improving = append(improving, eventAt(t, userID, domainID, session, false, domain.DifficultyMedium, base.AddDate(0, 0, i)))
	}
	for i := 10; i < 20; i++ {
		improving = append(improving, eventAt(t, userID, domainID, session, true, domain.DifficultyMedium, base.AddDate(0, 0, i)))
	}

	// The mirror image: old successes, recent failures.
	declining := []domain.ReviewEvent{}
	for i := 0; i < 10; i++ {
		declining = append(declining, eventAt(t, userID, domainID, session, true, domain.DifficultyMedium, base.AddDate(0, 0, i)))
	}
	for i := 10; i < 20; i++ {
		declining = append(declining, eventAt(t, userID, domainID, session, false, domain.DifficultyMedium, base.AddDate(0, 0, i)))
	}

	up := calc.Snapshot(Input{UserID: userID, DomainID: domainID, Events: improving, TotalQuestions: 20})
	down := calc.Snapshot(Input{UserID: userID, DomainID: domainID, Events: declining, TotalQuestions: 20})

	if up.AccuracyRate <= 50 {
		t.Errorf("recent successes should outweigh old failures, accuracy %v", up.AccuracyRate)
	}
	if down.AccuracyRate >= 50 {
		t.Errorf("recent failures should outweigh old successes, accuracy %v", down.AccuracyRate)
	}
	if up.Trend != domain.TrendImproving {
		t.Errorf("expected improving trend, got %s", up.Trend)
	}
	if down.Trend != domain.TrendDeclining {
		t.Errorf("expected declining trend, got %s", down.Trend)
	}
}

func TestSnapshotConsistency(t *testing.T) {
	t.Parallel()
	calc := NewCalculator()
	userID, domainID := uuid.New(), uuid.New()
	base := time.Date(2026, 8, 1, 0, 0, 0, 0, time.UTC)

	// Two sessions with identical accuracy: no spread, full consistency.
	steady := []domain.ReviewEvent{}
	for s := 0; s < 2; s++ {
		session := uuid.New()
		for i := 0; i < 4; i++ {
			steady = append(steady, eventAt(t, userID, domainID, session,
				i < 3, domain.DifficultyMedium, base.Add(time.Duration(s*24)*time.Hour).Add(time.Duration(i)*time.Minute)))
		}
	}
	m := calc.Snapshot(Input{UserID: userID, DomainID: domainID, Events: steady, TotalQuestions: 8})
	if m.ConsistencyScore != 100 {
		t.Errorf("expected consistency 100 for equal sessions, got %v", m.ConsistencyScore)
	}

	// A perfect session followed by a failed one: large spread, low consistency.
	swingy := []domain.ReviewEvent{}
	for s := 0; s < 2; s++ {
		session := uuid.New()
		for i := 0; i < 4; i++ {
			swingy = append(swingy, eventAt(t, userID, domainID, session,
				s == 0, domain.DifficultyMedium, base.Add(time.Duration(s*24)*time.Hour).Add(time.Duration(i)*time.Minute)))
		}
	}
	m = calc.Snapshot(Input{UserID: userID, DomainID: domainID, Events: swingy, TotalQuestions: 8})
	if m.ConsistencyScore != 0 {
		t.Errorf("expected consistency 0 for opposite sessions, got %v", m.ConsistencyScore)
	}

	// A lone session cannot show spread.
	single := steady[:4]
	m = calc.Snapshot(Input{UserID: userID, DomainID: domainID, Events: single, TotalQuestions: 4})
	if m.ConsistencyScore != 100 {
		t.Errorf("expected consistency 100 for a single session, got %v", m.ConsistencyScore)
	}
}

func TestSnapshotDifficultyScore(t *testing.T) {
	t.Parallel()
	calc := NewCalculator()
	userID, domainID := uuid.New(), uuid.New()
	base := time.Date(2026, 8, 1, 0, 0, 0, 0, time.UTC)
	session := uuid.New()

	events := []domain.ReviewEvent{
		eventAt(t, userID, domainID, session, true, domain.DifficultyEasy, base),
		eventAt(t, userID, domainID, session, true, domain.DifficultyMedium, base.Add(time.Minute)),
		eventAt(t, userID, domainID, session, true, domain.DifficultyHard, base.Add(2*time.Minute)),
	}

	m := calc.Snapshot(Input{UserID: userID, DomainID: domainID, Events: events, TotalQuestions: 3})

	want := float64(33+66+100) / 3
	if m.DifficultyScore < want-0.01 || m.DifficultyScore > want+0.01 {
		t.Errorf("expected difficulty %.2f, got %v", want, m.DifficultyScore)
	}
}

func TestSnapshotWindowTrimming(t *testing.T) {
	t.Parallel()
	calc := NewCalculator()
	userID, domainID := uuid.New(), uuid.New()
	base := time.Date(2026, 5, 1, 0, 0, 0, 0, time.UTC)
	session := uuid.New()

	// 80 old failures followed by 50 successes. Only the last 50 events fit
	// the window, so the old failures must not influence the result.
	events := []domain.ReviewEvent{}
	for i := 0; i < 80; i++ {
		events = append(events, eventAt(t, userID, domainID, session, false, domain.DifficultyMedium, base.Add(time.Duration(i)*time.Minute)))
	}
	for i := 80; i < 130; i++ {
		events = append(events, eventAt(t, userID, domainID, session, true, domain.DifficultyMedium, base.Add(time.Duration(i)*time.Minute)))
	}

	m := calc.Snapshot(Input{UserID: userID, DomainID: domainID, Events: events, TotalQuestions: 130})

	if m.AccuracyRate != 100 {
		t.Errorf("expected accuracy 100 from the trimmed window, got %v", m.AccuracyRate)
	}
	if m.QuestionCount != 130 {
		t.Errorf("expected question count to reflect all attempts, got %d", m.QuestionCount)
	}
}

func TestSnapshotPeakScoreIsSticky(t *testing.T) {
	t.Parallel()
	calc := NewCalculator()
	userID, domainID := uuid.New(), uuid.New()
	base := time.Date(2026, 8, 1, 0, 0, 0, 0, time.UTC)
	session := uuid.New()

	events := []domain.ReviewEvent{}
	for i := 0; i < 10; i++ {
		events = append(events, eventAt(t, userID, domainID, session, i%2 == 0, domain.DifficultyEasy, base.Add(time.Duration(i)*time.Minute)))
	}

	prev := &domain.DomainMastery{UserID: userID, DomainID: domainID, Score: 90, PeakScore: 90}
	m := calc.Snapshot(Input{UserID: userID, DomainID: domainID, Events: events, TotalQuestions: 10, Prev: prev})

	if m.PeakScore != 90 {
		t.Errorf("expected peak 90 to survive a weaker window, got %v", m.PeakScore)
	}
	if m.Score >= 90 {
		t.Errorf("expected current score below the old peak, got %v", m.Score)
	}
}

func TestApplyDecay(t *testing.T) {
	t.Parallel()
	calc := NewCalculator()
	now := time.Date(2026, 8, 31, 0, 0, 0, 0, time.UTC)

	testCases := []struct {
		name         string
		score        float64
		peak         float64
		inactiveDays int
		expected     float64
	}{
		{name: "active domain is untouched", score: 80, peak: 80, inactiveDays: 3, expected: 80},
		{name: "threshold day is untouched", score: 80, peak: 80, inactiveDays: 7, expected: 80},
		{name: "one week past threshold loses five percent", score: 80, peak: 80, inactiveDays: 14, expected: 76},
		{name: "long inactivity floors at half of peak", score: 80, peak: 80, inactiveDays: 120, expected: 40},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			m := &domain.DomainMastery{
				Score:          tc.score,
				PeakScore:      tc.peak,
				LastActivityAt: now.AddDate(0, 0, -tc.inactiveDays),
			}
			got := calc.ApplyDecay(m, now)
			if got.Score != tc.expected {
				t.Errorf("expected score %v, got %v", tc.expected, got.Score)
			}
		})
	}

	t.Run("decay does not mutate the input", func(t *testing.T) {
		m := &domain.DomainMastery{Score: 80, PeakScore: 80, LastActivityAt: now.AddDate(0, 0, -30)}
		_ = calc.ApplyDecay(m, now)
		if m.Score != 80 {
			t.Errorf("input was mutated: %v", m.Score)
		}
	})
}
