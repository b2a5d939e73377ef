package domain

import (
	"errors"
	"time"

	"github.com/google/uuid"
)

// Mastery-specific validation errors
var (
	ErrMasteryUserIDEmpty   = errors.New("mastery user ID cannot be empty")
	ErrMasteryDomainIDEmpty = errors.New("mastery domain ID cannot be empty")
	ErrScoreOutOfRange      = errors.New("mastery scores must be between 0 and 100")
	ErrInvalidTrend         = errors.New("invalid trend direction")
)

// Trend classifies the direction of a learner's recent performance in a
// domain, comparing the newer half of the event window against the older.
type Trend string

// Possible trend values
const (
	TrendImproving Trend = "improving"
	TrendStable    Trend = "stable"
	TrendDeclining Trend = "declining"
)

// Valid reports whether the trend is one of the known values.
func (t Trend) Valid() bool {
	switch t {
	case TrendImproving, TrendStable, TrendDeclining:
		return true
	default:
		return false
	}
}

// DomainMastery is the derived per-learner, per-domain proficiency snapshot.
// It is fully recomputable from the event log and cached for reads. All four
// score components lie in [0, 100].
type DomainMastery struct {
	UserID           uuid.UUID `json:"user_id"`
	DomainID         uuid.UUID `json:"domain_id"`
	Score            float64   `json:"score"`
	AccuracyRate     float64   `json:"accuracy_rate"`
	ConsistencyScore float64   `json:"consistency_score"`
	DifficultyScore  float64   `json:"difficulty_score"`
	Trend            Trend     `json:"trend"`
	QuestionCount    int       `json:"question_count"`
	PeakScore        float64   `json:"peak_score"`
	LastActivityAt   time.Time `json:"last_activity_at"`
	UpdatedAt        time.Time `json:"updated_at"`
}

// Validate checks if the DomainMastery has valid data.
func (m *DomainMastery) Validate() error {
	if m.UserID == uuid.Nil {
		return ErrMasteryUserIDEmpty
	}

	if m.DomainID == uuid.Nil {
		return ErrMasteryDomainIDEmpty
	}

	for _, v := range []float64{m.Score, m.AccuracyRate, m.ConsistencyScore, m.DifficultyScore} {
		if v < 0 || v > 100 {
			return ErrScoreOutOfRange
		}
	}

	if !m.Trend.Valid() {
		return ErrInvalidTrend
	}

	return nil
}

// Clamp forces persisted scores back into [0, 100]. It returns true if
// anything had to change; read paths log the correction instead of failing.
func (m *DomainMastery) Clamp() bool {
	changed := false

	clamp := func(v *float64) {
		if *v < 0 {
			*v = 0
			changed = true
		}
		if *v > 100 {
			*v = 100
			changed = true
		}
	}

	clamp(&m.Score)
	clamp(&m.AccuracyRate)
	clamp(&m.ConsistencyScore)
	clamp(&m.DifficultyScore)
	clamp(&m.PeakScore)

	if !m.Trend.Valid() {
		m.Trend = TrendStable
		changed = true
	}

	return changed
}
