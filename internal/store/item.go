package store

import (
	"context"
	"database/sql"

	"github.com/google/uuid"
	"github.com/phrazzld/scry-srs/internal/domain"
)

// ItemStore defines the interface for item and review state persistence.
//
// Mutations that take an owner only touch rows whose owner matches; a row
// owned by someone else is indistinguishable from a missing one.
type ItemStore interface {
	// Create saves a new item together with its initial review state.
	// Returns validation errors from the domain Item if data is invalid.
	Create(ctx context.Context, item *domain.Item) error

	// GetByID retrieves an item by its unique ID.
	// Returns ErrItemNotFound if the item does not exist.
	// NOTE: This method does NOT provide any row locking.
	GetByID(ctx context.Context, id uuid.UUID) (*domain.Item, error)

	// GetForUpdate retrieves an item and locks its row until the surrounding
	// transaction ends. It must be called on a store returned by WithTx.
	// Returns ErrItemNotFound if the item does not exist.
	GetForUpdate(ctx context.Context, id uuid.UUID) (*domain.Item, error)

	// UpdateReviewState writes interval, repetitions, ease factor and next
	// review date in a single statement. Archive flag and counters are not
	// touched. Returns ErrItemNotFound if the item does not exist.
	UpdateReviewState(ctx context.Context, id uuid.UUID, state domain.ReviewState) error

	// FindDueItems returns the owner's active items in category whose next
	// review date is on or before today, oldest first.
	FindDueItems(
		ctx context.Context,
		ownerID uuid.UUID,
		category string,
		today domain.Date,
	) ([]*domain.Item, error)

	// ListCategories returns the distinct categories of the owner's items in
	// alphabetical order.
	ListCategories(ctx context.Context, ownerID uuid.UUID) ([]string, error)

	// SetArchived sets the archive flag of an item. It reports whether a row
	// matching both id and owner exists; setting the flag to its current
	// value still reports true.
	SetArchived(ctx context.Context, id, ownerID uuid.UUID, archived bool) (bool, error)

	// BulkUnarchive clears the archive flag of the owner's items in ids and
	// returns how many rows actually changed. Unknown ids, foreign items and
	// items that are already active are skipped.
	BulkUnarchive(ctx context.Context, ids []uuid.UUID, ownerID uuid.UUID) (int, error)

	// ListArchived returns one 1-indexed page of the owner's archived items,
	// newest first, and the total number of matching items. A non-empty
	// search filters case-insensitively on front and back.
	ListArchived(
		ctx context.Context,
		ownerID uuid.UUID,
		page, perPage int,
		search string,
	) ([]*domain.Item, int, error)

	// SampleArchived returns up to count archived items chosen uniformly at
	// random without replacement. Returns domain.ErrInvalidCount when count
	// is outside [domain.MinSampleCount, domain.MaxSampleCount].
	SampleArchived(ctx context.Context, ownerID uuid.UUID, count int) ([]*domain.Item, error)

	// IncrementFlip adds one to the flip counter. It reports whether the item exists.
	IncrementFlip(ctx context.Context, id uuid.UUID) (bool, error)

	// RecordRating adds one to the histogram bucket of rating.
	RecordRating(ctx context.Context, id uuid.UUID, rating domain.Rating) error

	// RatingCounts returns the rating histogram of an item. Ratings never
	// given are absent from the map.
	RatingCounts(ctx context.Context, id uuid.UUID) (map[domain.Rating]int, error)

	// UpdateBack replaces the answer side of an owned item. It reports
	// whether a row matched.
	UpdateBack(ctx context.Context, id, ownerID uuid.UUID, back string) (bool, error)

	// Delete permanently removes an owned item. The review state and rating
	// histogram go with it. It reports whether a row matched.
	Delete(ctx context.Context, id, ownerID uuid.UUID) (bool, error)

	// WithTx returns a new ItemStore instance that uses the provided transaction.
	// This allows for multiple operations to be executed within a single transaction.
	// The transaction should be created and managed by the caller (typically a service).
	WithTx(tx *sql.Tx) ItemStore

	// DB returns the underlying database connection, which services use to
	// start transactions with RunInTransaction.
	DB() *sql.DB
}
