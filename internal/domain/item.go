package domain

import (
	"errors"
	"strings"
	"time"

	"github.com/google/uuid"
)

// Item-specific validation errors
var (
	// ErrItemIDEmpty is returned when an item ID is empty or nil.
	ErrItemIDEmpty = errors.New("item ID cannot be empty")

	// ErrItemOwnerIDEmpty is returned when an item's owner ID is empty or nil.
	ErrItemOwnerIDEmpty = errors.New("item owner ID cannot be empty")

	// ErrItemFrontEmpty is returned when the prompt side of an item is blank.
	ErrItemFrontEmpty = errors.New("item front cannot be empty")

	// ErrItemBackEmpty is returned when the answer side of an item is blank.
	ErrItemBackEmpty = errors.New("item back cannot be empty")

	// ErrItemCategoryEmpty is returned when an item has no category.
	ErrItemCategoryEmpty = errors.New("item category cannot be empty")
)

// Item is a flashcard owned by exactly one account, together with its
// review state.
type Item struct {
	ID           uuid.UUID   `json:"id"`
	OwnerID      uuid.UUID   `json:"owner_id"`
	Front        string      `json:"front"`
	Back         string      `json:"back"`
	Category     string      `json:"category"`
	ExampleFront string      `json:"example_front,omitempty"`
	ExampleBack  string      `json:"example_back,omitempty"`
	State        ReviewState `json:"state"`
	CreatedAt    time.Time   `json:"created_at"`
	UpdatedAt    time.Time   `json:"updated_at"`
}

// NewItem creates a new Item with default review state, due on today.
// Returns an error if validation fails.
func NewItem(ownerID uuid.UUID, front, back, category string, today Date) (*Item, error) {
	now := time.Now().UTC()
	item := &Item{
		ID:        uuid.New(),
		OwnerID:   ownerID,
		Front:     strings.TrimSpace(front),
		Back:      strings.TrimSpace(back),
		Category:  strings.TrimSpace(category),
		State:     NewReviewState(today),
		CreatedAt: now,
		UpdatedAt: now,
	}

	if err := item.Validate(); err != nil {
		return nil, err
	}

	return item, nil
}

// Validate checks if the Item has valid data.
func (i *Item) Validate() error {
	if i.ID == uuid.Nil {
		return ErrItemIDEmpty
	}
	if i.OwnerID == uuid.Nil {
		return ErrItemOwnerIDEmpty
	}
	if strings.TrimSpace(i.Front) == "" {
		return ErrItemFrontEmpty
	}
	if strings.TrimSpace(i.Back) == "" {
		return ErrItemBackEmpty
	}
	if strings.TrimSpace(i.Category) == "" {
		return ErrItemCategoryEmpty
	}
	return i.State.Validate()
}

// IsOwnedBy reports whether ownerID owns the item.
func (i *Item) IsOwnedBy(ownerID uuid.UUID) bool {
	return i.OwnerID == ownerID
}
