package domain

import "math"

// Archive browsing and sampling policy.
const (
	// ArchivedPerPage is the fixed page size of the archived listing.
	ArchivedPerPage = 8

	MinSampleCount = 1
	MaxSampleCount = 100
)

// ArchivedPage is one page of the archived listing.
type ArchivedPage struct {
	Items      []*Item `json:"items"`
	TotalCount int     `json:"total_count"`
	Page       int     `json:"page"`
	PerPage    int     `json:"per_page"`
	TotalPages int     `json:"total_pages"`
	Search     string  `json:"search,omitempty"`
}

// TotalPages returns ceil(total/perPage), reporting a single page for an
// empty result.
func TotalPages(total, perPage int) int {
	if perPage <= 0 || total <= 0 {
		return 1
	}
	return (total + perPage - 1) / perPage
}

// NormalizePage coerces a page number to at least 1.
func NormalizePage(page int) int {
	if page < 1 {
		return 1
	}
	return page
}

// PageOffset returns the row offset of a 1-indexed page. Pages too large to
// address saturate at the largest representable offset instead of
// overflowing.
func PageOffset(page, perPage int) int {
	if perPage <= 0 {
		return 0
	}
	skipped := NormalizePage(page) - 1
	if skipped > math.MaxInt/perPage {
		return math.MaxInt / perPage * perPage
	}
	return skipped * perPage
}

// ValidateSampleCount checks that a sample size is within policy bounds.
func ValidateSampleCount(count int) error {
	if count < MinSampleCount || count > MaxSampleCount {
		return ErrInvalidCount
	}
	return nil
}
