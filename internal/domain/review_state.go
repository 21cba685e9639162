package domain

import (
	"errors"
)

// Scheduling defaults for a never-reviewed item.
const (
	DefaultEaseFactor = 2.5
	MinEaseFactor     = 1.3
)

// Validation errors for ReviewState
var (
	ErrInvalidInterval    = errors.New("interval must be greater than or equal to 0")
	ErrInvalidRepetitions = errors.New("repetitions must be greater than or equal to 0")
	ErrInvalidEaseFactor  = errors.New("ease factor must be at least 1.3")
	ErrInvalidFlipCount   = errors.New("flip count must be greater than or equal to 0")
)

// ReviewState holds the persisted scheduling fields of one item.
// NextReviewDate always equals the review day plus Interval.
type ReviewState struct {
	Interval       int            `json:"interval"`    // days until next review
	Repetitions    int            `json:"repetitions"` // consecutive non-Hard reviews
	EaseFactor     float64        `json:"ease_factor"`
	NextReviewDate Date           `json:"next_review_date"`
	IsArchived     bool           `json:"is_archived"`
	FlipCount      int            `json:"flip_count"`
	RatingCounts   map[Rating]int `json:"rating_counts,omitempty"`
}

// NewReviewState returns the state of a freshly created item, due today.
func NewReviewState(today Date) ReviewState {
	return ReviewState{
		Interval:       0,
		Repetitions:    0,
		EaseFactor:     DefaultEaseFactor,
		NextReviewDate: today,
	}
}

// IsDue reports whether the item should be presented on today.
func (s ReviewState) IsDue(today Date) bool {
	return !s.IsArchived && !s.NextReviewDate.After(today)
}

// Validate checks the numeric invariants of the state.
func (s ReviewState) Validate() error {
	if s.Interval < 0 {
		return ErrInvalidInterval
	}
	if s.Repetitions < 0 {
		return ErrInvalidRepetitions
	}
	if s.EaseFactor < MinEaseFactor {
		return ErrInvalidEaseFactor
	}
	if s.FlipCount < 0 {
		return ErrInvalidFlipCount
	}
	return nil
}
