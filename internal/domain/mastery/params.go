// Package mastery derives per-domain analytics from the append-only event
// history: a composite mastery score with trend classification, inactivity
// decay, exam-weighted knowledge gaps, and deterministic insight messages.
//
// Everything here is pure computation over inputs the caller fetched; the
// service layer owns persistence and scheduling of recomputation.
package mastery

// Params defines all configurable parameters for mastery analytics.
type Params struct {
	// WindowSize is the number of most recent events considered per domain.
	WindowSize int

	// AccuracyHalfLifeDays controls the exponential time weighting of
	// correctness: an event this many days older than the newest one counts
	// half as much.
	AccuracyHalfLifeDays float64

	// Composite score weights. Must sum to 1.
	AccuracyWeight    float64
	ConsistencyWeight float64
	DifficultyWeight  float64

	// ConsistencySpreadPenalty converts the standard deviation of per-session
	// accuracy into a score deduction.
	ConsistencySpreadPenalty float64

	// TrendThreshold is the composite-score delta between window halves that
	// separates improving/declining from stable.
	TrendThreshold float64

	// MinTrendEvents is the smallest window that supports a trend call;
	// below it the trend is reported as stable.
	MinTrendEvents int

	// Inactivity decay
	DecayRatePerWeek        float64
	DecayFloorFraction      float64 // of peak score
	InactivityThresholdDays int
}

// NewDefaultParams creates a Params instance with the production defaults.
func NewDefaultParams() *Params {
	return &Params{
		WindowSize:           50,
		AccuracyHalfLifeDays: 7,

		AccuracyWeight:    0.5,
		ConsistencyWeight: 0.3,
		DifficultyWeight:  0.2,

		ConsistencySpreadPenalty: 2.0,

		TrendThreshold: 5,
		MinTrendEvents: 4,

		DecayRatePerWeek:        0.05,
		DecayFloorFraction:      0.5,
		InactivityThresholdDays: 7,
	}
}
