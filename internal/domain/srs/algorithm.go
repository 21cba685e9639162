package srs

import (
	"math"

	"github.com/phrazzld/scry-srs/internal/domain"
)

// calculateNewEaseFactor applies the rating's ease adjustment.
// The floor is not applied here; see clampEaseFactor.
func calculateNewEaseFactor(currentEF float64, rating domain.Rating, params *Params) float64 {
	switch rating {
	case domain.RatingEasy:
		return currentEF + params.EasyEaseDelta
	case domain.RatingHard:
		return currentEF - params.HardEasePenalty
	default:
		return currentEF
	}
}

// calculateNewRepetitions resets the streak on Hard and extends it otherwise.
func calculateNewRepetitions(current int, rating domain.Rating) int {
	if rating == domain.RatingHard {
		return 0
	}
	return current + 1
}

// calculateNewInterval determines the next interval in days.
//
// Hard always yields params.HardInterval. For Normal and Easy the first two
// qualifying reviews use the fixed FirstInterval and SecondInterval; later
// reviews multiply the previous interval by the updated (unclamped) ease
// factor and round half to even.
//
// A previous interval of 0 with repetitions >= 3 yields 0, which makes the
// item due again on the same day.
func calculateNewInterval(
	prevInterval int,
	newRepetitions int,
	newEaseFactor float64,
	rating domain.Rating,
	params *Params,
) int {
	if rating == domain.RatingHard {
		return params.HardInterval
	}

	switch newRepetitions {
	case 1:
		return params.FirstInterval
	case 2:
		return params.SecondInterval
	default:
		return int(math.RoundToEven(float64(prevInterval) * newEaseFactor))
	}
}

func clampEaseFactor(ef float64, params *Params) float64 {
	return math.Max(params.MinEaseFactor, ef)
}

// calculateNextState returns a new ReviewState after applying rating on today.
// The input state is never modified. Archive flag, flip count and rating
// histogram are carried over unchanged.
func calculateNextState(
	state domain.ReviewState,
	rating domain.Rating,
	today domain.Date,
	params *Params,
) domain.ReviewState {
	next := state
	if state.RatingCounts != nil {
		next.RatingCounts = make(map[domain.Rating]int, len(state.RatingCounts))
		for k, v := range state.RatingCounts {
			next.RatingCounts[k] = v
		}
	}

	next.Repetitions = calculateNewRepetitions(state.Repetitions, rating)
	ef := calculateNewEaseFactor(state.EaseFactor, rating, params)
	next.Interval = calculateNewInterval(state.Interval, next.Repetitions, ef, rating, params)
	next.EaseFactor = clampEaseFactor(ef, params)
	next.NextReviewDate = today.AddDays(next.Interval)

	return next
}
