package api

import (
	"time"

	"github.com/google/uuid"
	"github.com/phrazzld/scry-srs/internal/domain"
)

// DefaultSampleCount is used when GET /items/archived/random has no count.
const DefaultSampleCount = 10

// CreateItemRequest is the body of POST /items.
type CreateItemRequest struct {
	Front        string `json:"front"                   validate:"required,max=500"`
	Back         string `json:"back"                    validate:"required,max=500"`
	Category     string `json:"category"                validate:"required,max=100"`
	ExampleFront string `json:"example_front,omitempty" validate:"max=1000"`
	ExampleBack  string `json:"example_back,omitempty"  validate:"max=1000"`
}

// UpdateBackRequest is the body of PUT /items/{id}.
type UpdateBackRequest struct {
	Back string `json:"back" validate:"required,max=500"`
}

// RateRequest is the body of POST /items/{id}/rating. The range check is
// left to the review service so that every rating error has one message.
type RateRequest struct {
	Rating *int `json:"rating" validate:"required"`
}

// BulkUnarchiveRequest is the body of POST /items/unarchive.
type BulkUnarchiveRequest struct {
	IDs []uuid.UUID `json:"ids" validate:"max=500"`
}

// ItemResponse is the wire form of an item with its review state.
type ItemResponse struct {
	ID             uuid.UUID      `json:"id"`
	Front          string         `json:"front"`
	Back           string         `json:"back"`
	Category       string         `json:"category"`
	ExampleFront   string         `json:"example_front,omitempty"`
	ExampleBack    string         `json:"example_back,omitempty"`
	Interval       int            `json:"interval"`
	Repetitions    int            `json:"repetitions"`
	EaseFactor     float64        `json:"ease_factor"`
	NextReviewDate domain.Date    `json:"next_review_date"`
	IsArchived     bool           `json:"is_archived"`
	FlipCount      int            `json:"flip_count"`
	RatingCounts   map[string]int `json:"rating_counts,omitempty"`
	CreatedAt      time.Time      `json:"created_at"`
	UpdatedAt      time.Time      `json:"updated_at"`
}

// ArchivedPageResponse is one page of archived items.
type ArchivedPageResponse struct {
	Items      []ItemResponse `json:"items"`
	TotalCount int            `json:"total_count"`
	Page       int            `json:"page"`
	PerPage    int            `json:"per_page"`
	TotalPages int            `json:"total_pages"`
	Search     string         `json:"search,omitempty"`
}

// FlipResponse reports whether the flip was counted.
type FlipResponse struct {
	Success bool `json:"success"`
}

// BulkUnarchiveResponse reports how many items changed state.
type BulkUnarchiveResponse struct {
	Unarchived int `json:"unarchived"`
}

func itemToResponse(item *domain.Item) ItemResponse {
	resp := ItemResponse{
		ID:             item.ID,
		Front:          item.Front,
		Back:           item.Back,
		Category:       item.Category,
		ExampleFront:   item.ExampleFront,
		ExampleBack:    item.ExampleBack,
		Interval:       item.State.Interval,
		Repetitions:    item.State.Repetitions,
		EaseFactor:     item.State.EaseFactor,
		NextReviewDate: item.State.NextReviewDate,
		IsArchived:     item.State.IsArchived,
		FlipCount:      item.State.FlipCount,
		CreatedAt:      item.CreatedAt,
		UpdatedAt:      item.UpdatedAt,
	}
	if len(item.State.RatingCounts) > 0 {
		resp.RatingCounts = make(map[string]int, len(item.State.RatingCounts))
		for rating, n := range item.State.RatingCounts {
			resp.RatingCounts[rating.String()] = n
		}
	}
	return resp
}

func itemsToResponse(items []*domain.Item) []ItemResponse {
	out := make([]ItemResponse, 0, len(items))
	for _, item := range items {
		out = append(out, itemToResponse(item))
	}
	return out
}

func archivedPageToResponse(page *domain.ArchivedPage) ArchivedPageResponse {
	return ArchivedPageResponse{
		Items:      itemsToResponse(page.Items),
		TotalCount: page.TotalCount,
		Page:       page.Page,
		PerPage:    page.PerPage,
		TotalPages: page.TotalPages,
		Search:     page.Search,
	}
}
