package review

import (
	"time"

	"github.com/phrazzld/scry-srs/internal/domain"
)

// Clock returns the current instant.
type Clock func() time.Time

// Option configures a review service.
type Option func(*reviewServiceImpl)

// WithClock replaces time.Now.
func WithClock(clock Clock) Option {
	return func(s *reviewServiceImpl) {
		if clock != nil {
			s.clock = clock
		}
	}
}

// WithLocation sets the time zone whose calendar date counts as "today".
func WithLocation(loc *time.Location) Option {
	return func(s *reviewServiceImpl) {
		if loc != nil {
			s.location = loc
		}
	}
}

func (s *reviewServiceImpl) today() domain.Date {
	return domain.DateOf(s.clock().In(s.location))
}
