package domain

import "fmt"

// Rating is the recall-quality signal a user gives after reviewing an item.
type Rating int

// Supported ratings.
const (
	RatingHard   Rating = 1
	RatingNormal Rating = 2
	RatingEasy   Rating = 3
)

// Ratings lists every valid rating in ascending order.
var Ratings = []Rating{RatingHard, RatingNormal, RatingEasy}

// Valid reports whether r is Hard, Normal or Easy.
func (r Rating) Valid() bool {
	switch r {
	case RatingHard, RatingNormal, RatingEasy:
		return true
	default:
		return false
	}
}

func (r Rating) String() string {
	switch r {
	case RatingHard:
		return "hard"
	case RatingNormal:
		return "normal"
	case RatingEasy:
		return "easy"
	default:
		return fmt.Sprintf("rating(%d)", int(r))
	}
}
