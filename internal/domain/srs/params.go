// Package srs implements the spaced repetition scheduler: a deterministic
// SM-2 variant that converts a difficulty rating into a new review interval,
// ease factor, and mastery bucket.
package srs

import (
	"github.com/prepdeck/prepdeck-api/internal/domain"
)

// Params defines all configurable parameters for the scheduling algorithm.
type Params struct {
	// Ease factor limits and default
	MinEaseFactor     float64
	MaxEaseFactor     float64
	DefaultEaseFactor float64

	// Ease adjustments per rating
	EaseAdjustment map[domain.ReviewRating]float64

	// Interval growth
	HardIntervalModifier float64 // applied to the previous interval on "hard"
	EasyBonus            float64 // extra multiplier on top of the ease factor on "easy"
	MaxIntervalDays      int

	// First-review intervals (previous interval of zero)
	FirstReviewGoodDays int
	FirstReviewEasyDays int

	// AgainRequeueMinutes is how long a lapsed card waits before re-entering
	// the due pool. The interval is zero days but the card must not come back
	// the same instant.
	AgainRequeueMinutes int

	// Bucket promotion thresholds
	ReviewingMinIntervalDays int     // learning -> reviewing
	MasteredMinIntervalDays  int     // reviewing -> mastered
	MasteredMinEaseFactor    float64 // reviewing -> mastered
}

// NewDefaultParams creates a Params instance with the production defaults.
func NewDefaultParams() *Params {
	return &Params{
		MinEaseFactor:     1.3,
		MaxEaseFactor:     3.0,
		DefaultEaseFactor: 2.5,

		EaseAdjustment: map[domain.ReviewRating]float64{
			domain.RatingAgain: -0.20,
			domain.RatingHard:  -0.15,
			domain.RatingGood:  0.0,
			domain.RatingEasy:  0.15,
		},

		HardIntervalModifier: 1.2,
		EasyBonus:            1.3,
		MaxIntervalDays:      365,

		FirstReviewGoodDays: 3,
		FirstReviewEasyDays: 5,

		AgainRequeueMinutes: 10,

		ReviewingMinIntervalDays: 3,
		MasteredMinIntervalDays:  21,
		MasteredMinEaseFactor:    2.5,
	}
}

// ParamsConfig allows overriding individual defaults when constructing Params.
// Zero values mean "keep the default".
type ParamsConfig struct {
	MinEaseFactor     float64
	MaxEaseFactor     float64
	DefaultEaseFactor float64

	AgainEaseAdjustment float64
	HardEaseAdjustment  float64
	EasyEaseAdjustment  float64

	HardIntervalModifier float64
	EasyBonus            float64
	MaxIntervalDays      int

	FirstReviewGoodDays int
	FirstReviewEasyDays int

	AgainRequeueMinutes int

	ReviewingMinIntervalDays int
	MasteredMinIntervalDays  int
	MasteredMinEaseFactor    float64
}

// NewParams creates a Params instance with the given overrides applied on
// top of the defaults.
func NewParams(config ParamsConfig) *Params {
	params := NewDefaultParams()

	if config.MinEaseFactor > 0 {
		params.MinEaseFactor = config.MinEaseFactor
	}
	if config.MaxEaseFactor > 0 {
		params.MaxEaseFactor = config.MaxEaseFactor
	}
	if config.DefaultEaseFactor > 0 {
		params.DefaultEaseFactor = config.DefaultEaseFactor
	}

	if config.AgainEaseAdjustment != 0 {
		params.EaseAdjustment[domain.RatingAgain] = config.AgainEaseAdjustment
	}
	if config.HardEaseAdjustment != 0 {
		params.EaseAdjustment[domain.RatingHard] = config.HardEaseAdjustment
	}
	if config.EasyEaseAdjustment != 0 {
		params.EaseAdjustment[domain.RatingEasy] = config.EasyEaseAdjustment
	}

	if config.HardIntervalModifier > 0 {
		params.HardIntervalModifier = config.HardIntervalModifier
	}
	if config.EasyBonus > 0 {
		params.EasyBonus = config.EasyBonus
	}
	if config.MaxIntervalDays > 0 {
		params.MaxIntervalDays = config.MaxIntervalDays
	}

	if config.FirstReviewGoodDays > 0 {
		params.FirstReviewGoodDays = config.FirstReviewGoodDays
	}
	if config.FirstReviewEasyDays > 0 {
		params.FirstReviewEasyDays = config.FirstReviewEasyDays
	}

	if config.AgainRequeueMinutes > 0 {
		params.AgainRequeueMinutes = config.AgainRequeueMinutes
	}

	if config.ReviewingMinIntervalDays > 0 {
		params.ReviewingMinIntervalDays = config.ReviewingMinIntervalDays
	}
	if config.MasteredMinIntervalDays > 0 {
		params.MasteredMinIntervalDays = config.MasteredMinIntervalDays
	}
	if config.MasteredMinEaseFactor > 0 {
		params.MasteredMinEaseFactor = config.MasteredMinEaseFactor
	}

	return params
}
