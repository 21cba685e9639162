package review

import (
	"context"

	"github.com/google/uuid"
	"github.com/phrazzld/scry-srs/internal/domain"
)

// NewItemInput carries the fields a caller supplies when creating an item.
type NewItemInput struct {
	Front        string
	Back         string
	Category     string
	ExampleFront string
	ExampleBack  string
}

// ReviewService schedules, browses and edits a user's items.
// Every method is scoped by ownerID; items owned by someone else are
// reported as ErrItemNotOwned, never silently ignored.
type ReviewService interface {
	// Rate applies a recall rating to an item and persists the new review
	// state. The read, ownership check and write happen in one transaction
	// holding the item's row lock.
	//
	// Returns:
	//   - (*domain.Item, nil): the item with its updated review state
	//   - (nil, ErrItemNotFound): the item does not exist
	//   - (nil, ErrItemNotOwned): the item belongs to another user
	//   - (nil, ErrInvalidRating): rating is not Hard, Normal or Easy
	//   - (nil, ErrPersistence): the store failed; nothing was written
	Rate(ctx context.Context, ownerID, itemID uuid.UUID, rating domain.Rating) (*domain.Item, error)

	// SetArchived moves an item between the active and archived sets.
	// Setting the state an item already has succeeds.
	SetArchived(ctx context.Context, ownerID, itemID uuid.UUID, archived bool) error

	// BulkUnarchive restores the listed items and returns how many changed.
	// Unknown, foreign or already active ids are skipped.
	BulkUnarchive(ctx context.Context, ownerID uuid.UUID, itemIDs []uuid.UUID) (int, error)

	// Categories lists the distinct categories of the user's items.
	Categories(ctx context.Context, ownerID uuid.UUID) ([]string, error)

	// DueItems lists active items in category due on or before today.
	DueItems(ctx context.Context, ownerID uuid.UUID, category string) ([]*domain.Item, error)

	// CreateItem stores a new item due today.
	CreateItem(ctx context.Context, ownerID uuid.UUID, input NewItemInput) (*domain.Item, error)

	// GetItem returns an item with its rating histogram.
	GetItem(ctx context.Context, ownerID, itemID uuid.UUID) (*domain.Item, error)

	// ListArchived returns one page of archived items. Pages below 1 are
	// treated as 1.
	ListArchived(ctx context.Context, ownerID uuid.UUID, page int, search string) (*domain.ArchivedPage, error)

	// SampleArchived returns up to count archived items chosen at random.
	SampleArchived(ctx context.Context, ownerID uuid.UUID, count int) ([]*domain.Item, error)

	// Flip counts one reveal of an item's answer side. It reports false when
	// the counter could not be incremented.
	Flip(ctx context.Context, ownerID, itemID uuid.UUID) (bool, error)

	// UpdateBack replaces the answer side of an item.
	UpdateBack(ctx context.Context, ownerID, itemID uuid.UUID, back string) (*domain.Item, error)

	// DeleteItem removes an item together with its review history.
	DeleteItem(ctx context.Context, ownerID, itemID uuid.UUID) error
}
