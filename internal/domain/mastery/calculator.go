package mastery

import (
	"math"
	"time"

	"github.com/google/uuid"
	"github.com/prepdeck/prepdeck-api/internal/domain"
)

// Input carries everything a snapshot computation needs. Events must be
// ordered oldest first and belong to a single user and domain; the calculator
// trims them to the configured window. TotalQuestions is the all-time attempt
// count for the domain, which typically exceeds the window.
type Input struct {
	UserID         uuid.UUID
	DomainID       uuid.UUID
	Events         []domain.ReviewEvent
	TotalQuestions int
	Prev           *domain.DomainMastery
}

// Calculator computes DomainMastery snapshots from event windows.
type Calculator struct {
	params *Params
}

// NewCalculator creates a Calculator with the default parameters.
func NewCalculator() *Calculator {
	return &Calculator{params: NewDefaultParams()}
}

// NewCalculatorWithParams creates a Calculator with custom parameters.
func NewCalculatorWithParams(params *Params) *Calculator {
	return &Calculator{params: params}
}

// Snapshot derives a DomainMastery from the event window.
//
// All time weighting is anchored to the newest event's timestamp rather than
// the wall clock, so replaying an unchanged window always yields an identical
// snapshot.
func (c *Calculator) Snapshot(in Input) *domain.DomainMastery {
	m := &domain.DomainMastery{
		UserID:        in.UserID,
		DomainID:      in.DomainID,
		Trend:         domain.TrendStable,
		QuestionCount: in.TotalQuestions,
	}
	if in.Prev != nil {
		m.PeakScore = in.Prev.PeakScore
	}

	window := in.Events
	if len(window) > c.params.WindowSize {
		window = window[len(window)-c.params.WindowSize:]
	}
	if len(window) == 0 {
		return m
	}

	ref := window[len(window)-1].RecordedAt
	m.LastActivityAt = ref
	m.UpdatedAt = ref

	m.AccuracyRate = c.accuracyRate(window, ref)
	m.ConsistencyScore = c.consistencyScore(window)
	m.DifficultyScore = c.difficultyScore(window)
	m.Score = c.compositeScore(m.AccuracyRate, m.ConsistencyScore, m.DifficultyScore)
	m.Trend = c.trend(window, ref)

	if m.Score > m.PeakScore {
		m.PeakScore = m.Score
	}

	return m
}

// accuracyRate is the exponentially time-weighted fraction of correct
// outcomes, scaled to [0,100]. More recent events count more.
func (c *Calculator) accuracyRate(events []domain.ReviewEvent, ref time.Time) float64 {
	var weightSum, correctSum float64
	for _, e := range events {
		ageDays := ref.Sub(e.RecordedAt).Hours() / 24
		if ageDays < 0 {
			ageDays = 0
		}
		w := math.Pow(0.5, ageDays/c.params.AccuracyHalfLifeDays)
		weightSum += w
		if e.Correct {
			correctSum += w
		}
	}
	if weightSum == 0 {
		return 0
	}
	return clamp(correctSum / weightSum * 100)
}

// consistencyScore is 100 minus a penalty proportional to the standard
// deviation of per-session accuracy. A single session cannot show spread and
// scores full marks.
func (c *Calculator) consistencyScore(events []domain.ReviewEvent) float64 {
	type tally struct{ total, correct int }
	sessions := make(map[string]*tally)
	for _, e := range events {
		s, ok := sessions[sessionKey(e)]
		if !ok {
			s = &tally{}
			sessions[sessionKey(e)] = s
		}
		s.total++
		if e.Correct {
			s.correct++
		}
	}

	if len(sessions) < 2 {
		return 100
	}

	accuracies := make([]float64, 0, len(sessions))
	for _, s := range sessions {
		accuracies = append(accuracies, float64(s.correct)/float64(s.total)*100)
	}

	var mean float64
	for _, a := range accuracies {
		mean += a
	}
	mean /= float64(len(accuracies))

	var variance float64
	for _, a := range accuracies {
		variance += (a - mean) * (a - mean)
	}
	variance /= float64(len(accuracies))

	return clamp(100 - c.params.ConsistencySpreadPenalty*math.Sqrt(variance))
}

// sessionKey groups events for the consistency calculation. Events recorded
// outside an explicit session fall back to their UTC calendar day.
func sessionKey(e domain.ReviewEvent) string {
	if e.SessionID != uuid.Nil {
		return e.SessionID.String()
	}
	return e.RecordedAt.UTC().Format("2006-01-02")
}

// difficultyScore is the mean difficulty weight of attempted items,
// reflecting engagement with harder material.
func (c *Calculator) difficultyScore(events []domain.ReviewEvent) float64 {
	var sum, n float64
	for _, e := range events {
		if !e.Difficulty.Valid() {
			continue
		}
		sum += float64(e.Difficulty.Weight())
		n++
	}
	if n == 0 {
		return 0
	}
	return clamp(sum / n)
}

func (c *Calculator) compositeScore(accuracy, consistency, difficulty float64) float64 {
	raw := accuracy*c.params.AccuracyWeight +
		consistency*c.params.ConsistencyWeight +
		difficulty*c.params.DifficultyWeight
	return clamp(math.Round(raw))
}

// trend compares the composite score of the newer half of the window against
// the older half. Small windows are reported as stable.
func (c *Calculator) trend(events []domain.ReviewEvent, ref time.Time) domain.Trend {
	if len(events) < c.params.MinTrendEvents {
		return domain.TrendStable
	}

	mid := len(events) / 2
	older, newer := events[:mid], events[mid:]

	delta := c.halfScore(newer, ref) - c.halfScore(older, ref)
	switch {
	case delta > c.params.TrendThreshold:
		return domain.TrendImproving
	case delta < -c.params.TrendThreshold:
		return domain.TrendDeclining
	default:
		return domain.TrendStable
	}
}

func (c *Calculator) halfScore(events []domain.ReviewEvent, ref time.Time) float64 {
	return c.compositeScore(
		c.accuracyRate(events, ref),
		c.consistencyScore(events),
		c.difficultyScore(events),
	)
}

// ApplyDecay returns a copy of the mastery with inactivity decay applied as
// of now: 5% per week past the inactivity threshold, floored at half the
// peak score. Masteries with recent activity are returned unchanged.
func (c *Calculator) ApplyDecay(m *domain.DomainMastery, now time.Time) *domain.DomainMastery {
	if m.LastActivityAt.IsZero() {
		return m
	}

	inactiveDays := now.Sub(m.LastActivityAt).Hours() / 24
	if inactiveDays <= float64(c.params.InactivityThresholdDays) {
		return m
	}

	inactiveWeeks := (inactiveDays - float64(c.params.InactivityThresholdDays)) / 7
	decayed := m.Score * (1 - inactiveWeeks*c.params.DecayRatePerWeek)

	floor := m.PeakScore * c.params.DecayFloorFraction
	if decayed < floor {
		decayed = floor
	}
	if decayed < 0 {
		decayed = 0
	}

	if decayed == m.Score {
		return m
	}

	out := *m
	out.Score = math.Round(decayed)
	return &out
}

func clamp(v float64) float64 {
	if v < 0 {
		return 0
	}
	if v > 100 {
		return 100
	}
	return v
}
