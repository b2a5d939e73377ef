package srs

import (
	"math"
	"time"

	"github.com/prepdeck/prepdeck-api/internal/domain"
)

// nextEaseFactor applies the rating's ease adjustment and clamps the result
// to [MinEaseFactor, MaxEaseFactor].
//
// Adjustments with the default params: again -0.20, hard -0.15, good 0,
// easy +0.15.
func nextEaseFactor(currentEF float64, rating domain.ReviewRating, params *Params) float64 {
	newEF := currentEF + params.EaseAdjustment[rating]

	if newEF < params.MinEaseFactor {
		newEF = params.MinEaseFactor
	}
	if newEF > params.MaxEaseFactor {
		newEF = params.MaxEaseFactor
	}

	return newEF
}

// nextInterval computes the new review interval in days.
//
// The ease factor passed in is the one in effect before this review's
// adjustment: the interval a rating earns is based on the schedule the card
// was on, not the schedule it is moving to.
//
// A previous interval of zero marks the first step — either a genuinely new
// card or one relearning after a lapse — and uses the fixed first-step
// intervals instead of multiplying zero.
func nextInterval(prevInterval int, easeFactor float64, rating domain.ReviewRating, params *Params) int {
	var interval int

	switch rating {
	case domain.RatingAgain:
		return 0

	case domain.RatingHard:
		interval = int(math.Round(float64(prevInterval) * params.HardIntervalModifier))
		if interval < 1 {
			interval = 1
		}

	case domain.RatingGood:
		if prevInterval == 0 {
			interval = params.FirstReviewGoodDays
		} else {
			interval = int(math.Round(float64(prevInterval) * easeFactor))
		}

	case domain.RatingEasy:
		if prevInterval == 0 {
			interval = params.FirstReviewEasyDays
		} else {
			interval = int(math.Round(float64(prevInterval) * easeFactor * params.EasyBonus))
		}
	}

	if interval > params.MaxIntervalDays {
		interval = params.MaxIntervalDays
	}

	return interval
}

// nextBucket advances or demotes the mastery bucket for this review.
//
// An "again" rating always lands the card in learning, whatever it was
// before. Any other rating moves a new card to learning; the promotion gates
// only apply from learning onward, so a card advances at most one level per
// review:
//
//   - learning -> reviewing once the interval reaches ReviewingMinIntervalDays
//     and neither of the two most recent ratings was "again"
//   - reviewing -> mastered once the interval reaches MasteredMinIntervalDays,
//     the ease factor is at least MasteredMinEaseFactor, and none of the last
//     three ratings was "again"
//
// recentRatings must already include the rating being applied, newest last.
func nextBucket(
	current domain.MasteryBucket,
	rating domain.ReviewRating,
	newInterval int,
	newEase float64,
	recentRatings []domain.ReviewRating,
	params *Params,
) domain.MasteryBucket {
	if rating == domain.RatingAgain {
		return domain.BucketLearning
	}

	// A new card's first successful review lands in learning, full stop. The
	// first-step intervals can already satisfy the reviewing gate, so falling
	// through here would skip a level.
	if current == domain.BucketNew {
		return domain.BucketLearning
	}

	switch current {
	case domain.BucketLearning:
		if newInterval >= params.ReviewingMinIntervalDays && noAgainAmong(recentRatings, 2) {
			return domain.BucketReviewing
		}

	case domain.BucketReviewing:
		if newInterval >= params.MasteredMinIntervalDays &&
			newEase >= params.MasteredMinEaseFactor &&
			noAgainAmong(recentRatings, 3) {
			return domain.BucketMastered
		}
	}

	return current
}

// noAgainAmong reports whether none of the last n ratings was "again".
// Ratings are ordered newest last.
func noAgainAmong(ratings []domain.ReviewRating, n int) bool {
	start := len(ratings) - n
	if start < 0 {
		start = 0
	}
	for _, r := range ratings[start:] {
		if r == domain.RatingAgain {
			return false
		}
	}
	return true
}

// nextState computes the full post-review state. It never mutates the input;
// the caller persists the returned copy.
func nextState(
	state *domain.ReviewState,
	rating domain.ReviewRating,
	now time.Time,
	params *Params,
) *domain.ReviewState {
	newState := state.Clone()

	newState.ReviewCount++
	newState.LastReviewedAt = now
	newState.UpdatedAt = now

	if rating == domain.RatingAgain {
		newState.Lapses++
	}

	newState.EaseFactor = nextEaseFactor(state.EaseFactor, rating, params)
	newState.IntervalDays = nextInterval(state.IntervalDays, state.EaseFactor, rating, params)

	newState.RecentRatings = append(newState.RecentRatings, rating)
	if len(newState.RecentRatings) > domain.RecentRatingWindow {
		newState.RecentRatings = newState.RecentRatings[len(newState.RecentRatings)-domain.RecentRatingWindow:]
	}

	newState.Bucket = nextBucket(
		state.Bucket,
		rating,
		newState.IntervalDays,
		newState.EaseFactor,
		newState.RecentRatings,
		params,
	)

	if rating == domain.RatingAgain {
		// Immediate re-queue, not a zero-length loop: the card re-enters the
		// session's due pool after a short delay.
		newState.NextReviewAt = now.Add(time.Duration(params.AgainRequeueMinutes) * time.Minute)
	} else {
		newState.NextReviewAt = now.AddDate(0, 0, newState.IntervalDays)
	}

	return newState
}
