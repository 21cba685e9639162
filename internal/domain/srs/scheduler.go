// Package srs implements the SM-2 variant that schedules item reviews.
package srs

import (
	"fmt"

	"github.com/phrazzld/scry-srs/internal/domain"
)

// Scheduler computes the next review state of an item from a rating.
// Implementations are pure: the same inputs always give the same output,
// and "today" is supplied by the caller.
type Scheduler interface {
	// Next returns the state that follows state after rating on today.
	// It returns domain.ErrInvalidRating for ratings outside Hard/Normal/Easy,
	// in which case the returned state is the input unchanged.
	Next(state domain.ReviewState, rating domain.Rating, today domain.Date) (domain.ReviewState, error)
}

// defaultScheduler is the standard implementation of the Scheduler interface
type defaultScheduler struct {
	params *Params
}

// NewDefaultScheduler creates a scheduler with the default SM-2 parameters
func NewDefaultScheduler() Scheduler {
	return &defaultScheduler{params: NewDefaultParams()}
}

// NewSchedulerWithParams creates a scheduler with custom parameters
func NewSchedulerWithParams(params *Params) Scheduler {
	if params == nil {
		params = NewDefaultParams()
	}
	return &defaultScheduler{params: params}
}

// Next implements Scheduler.
func (s *defaultScheduler) Next(
	state domain.ReviewState,
	rating domain.Rating,
	today domain.Date,
) (domain.ReviewState, error) {
	if !rating.Valid() {
		return state, fmt.Errorf("%w: %d", domain.ErrInvalidRating, int(rating))
	}
	return calculateNextState(state, rating, today, s.params), nil
}
