package review

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/phrazzld/scry-srs/internal/domain"
	"github.com/phrazzld/scry-srs/internal/domain/srs"
	"github.com/phrazzld/scry-srs/internal/platform/logger"
	"github.com/phrazzld/scry-srs/internal/store"
)

// Verify interface compliance at compile time
var _ ReviewService = (*reviewServiceImpl)(nil)

type reviewServiceImpl struct {
	items     store.ItemStore
	scheduler srs.Scheduler
	logger    *slog.Logger
	clock     Clock
	location  *time.Location
}

// NewReviewService creates a ReviewService backed by items and scheduler.
// It panics when items or scheduler is nil.
func NewReviewService(
	items store.ItemStore,
	scheduler srs.Scheduler,
	logger *slog.Logger,
	opts ...Option,
) ReviewService {
	if items == nil {
		panic("items cannot be nil")
	}
	if scheduler == nil {
		panic("scheduler cannot be nil")
	}
	if logger == nil {
		logger = slog.Default()
	}

	s := &reviewServiceImpl{
		items:     items,
		scheduler: scheduler,
		logger:    logger.With(slog.String("component", "review_service")),
		clock:     time.Now,
		location:  time.UTC,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Rate implements ReviewService.Rate.
func (s *reviewServiceImpl) Rate(
	ctx context.Context,
	ownerID, itemID uuid.UUID,
	rating domain.Rating,
) (*domain.Item, error) {
	log := logger.FromContextOrDefault(ctx, s.logger).With(
		slog.String("user_id", ownerID.String()),
		slog.String("item_id", itemID.String()))

	today := s.today()
	var updated *domain.Item
	err := s.runInTransaction(ctx, func(ctx context.Context, items store.ItemStore) error {
		item, err := s.lockOwned(ctx, items, ownerID, itemID)
		if err != nil {
			return err
		}

		// an invalid rating is rejected here, before any write
		next, err := s.scheduler.Next(item.State, rating, today)
		if err != nil {
			return err
		}

		if err := items.UpdateReviewState(ctx, itemID, next); err != nil {
			return persistenceError("rate", "failed to update review state", err)
		}

		item.State = next
		updated = item
		return nil
	})
	if err != nil {
		return nil, s.finish(log, "rate", err)
	}

	// The histogram is informational; a failed upsert leaves the rating applied.
	if err := s.items.RecordRating(ctx, itemID, rating); err != nil {
		log.Warn("failed to record rating histogram",
			slog.String("rating", rating.String()),
			slog.String("error", err.Error()))
	}

	log.Debug("applied rating",
		slog.String("rating", rating.String()),
		slog.Int("interval", updated.State.Interval),
		slog.Int("repetitions", updated.State.Repetitions),
		slog.Float64("ease_factor", updated.State.EaseFactor),
		slog.String("next_review_date", updated.State.NextReviewDate.String()))

	return updated, nil
}

// SetArchived implements ReviewService.SetArchived.
func (s *reviewServiceImpl) SetArchived(
	ctx context.Context,
	ownerID, itemID uuid.UUID,
	archived bool,
) error {
	log := logger.FromContextOrDefault(ctx, s.logger).With(
		slog.String("user_id", ownerID.String()),
		slog.String("item_id", itemID.String()))

	err := s.runInTransaction(ctx, func(ctx context.Context, items store.ItemStore) error {
		if _, err := s.lockOwned(ctx, items, ownerID, itemID); err != nil {
			return err
		}
		matched, err := items.SetArchived(ctx, itemID, ownerID, archived)
		if err != nil {
			return persistenceError("set_archived", "failed to update archive flag", err)
		}
		if !matched {
			return ErrItemNotFound
		}
		return nil
	})
	if err != nil {
		return s.finish(log, "set_archived", err)
	}

	log.Debug("updated archive flag", slog.Bool("archived", archived))
	return nil
}

// BulkUnarchive implements ReviewService.BulkUnarchive.
func (s *reviewServiceImpl) BulkUnarchive(
	ctx context.Context,
	ownerID uuid.UUID,
	itemIDs []uuid.UUID,
) (int, error) {
	log := logger.FromContextOrDefault(ctx, s.logger).With(slog.String("user_id", ownerID.String()))

	if len(itemIDs) == 0 {
		return 0, nil
	}

	n, err := s.items.BulkUnarchive(ctx, itemIDs, ownerID)
	if err != nil {
		return 0, s.finish(log, "bulk_unarchive",
			persistenceError("bulk_unarchive", "failed to unarchive items", err))
	}

	log.Debug("unarchived items",
		slog.Int("requested", len(itemIDs)),
		slog.Int("changed", n))
	return n, nil
}

// Categories implements ReviewService.Categories.
func (s *reviewServiceImpl) Categories(ctx context.Context, ownerID uuid.UUID) ([]string, error) {
	log := logger.FromContextOrDefault(ctx, s.logger).With(slog.String("user_id", ownerID.String()))

	categories, err := s.items.ListCategories(ctx, ownerID)
	if err != nil {
		return nil, s.finish(log, "categories",
			persistenceError("categories", "failed to list categories", err))
	}
	return categories, nil
}

// DueItems implements ReviewService.DueItems.
func (s *reviewServiceImpl) DueItems(
	ctx context.Context,
	ownerID uuid.UUID,
	category string,
) ([]*domain.Item, error) {
	log := logger.FromContextOrDefault(ctx, s.logger).With(
		slog.String("user_id", ownerID.String()),
		slog.String("category", category))

	today := s.today()
	items, err := s.items.FindDueItems(ctx, ownerID, category, today)
	if err != nil {
		return nil, s.finish(log, "due_items",
			persistenceError("due_items", "failed to find due items", err))
	}

	log.Debug("found due items",
		slog.Int("count", len(items)),
		slog.String("today", today.String()))
	return items, nil
}

// CreateItem implements ReviewService.CreateItem.
func (s *reviewServiceImpl) CreateItem(
	ctx context.Context,
	ownerID uuid.UUID,
	input NewItemInput,
) (*domain.Item, error) {
	log := logger.FromContextOrDefault(ctx, s.logger).With(slog.String("user_id", ownerID.String()))

	item, err := domain.NewItem(ownerID, input.Front, input.Back, input.Category, s.today())
	if err != nil {
		log.Warn("invalid item", slog.String("error", err.Error()))
		return nil, fmt.Errorf("%w: %w", domain.ErrValidation, err)
	}
	item.ExampleFront = strings.TrimSpace(input.ExampleFront)
	item.ExampleBack = strings.TrimSpace(input.ExampleBack)

	if err := s.items.Create(ctx, item); err != nil {
		return nil, s.finish(log, "create_item",
			persistenceError("create_item", "failed to create item", err))
	}

	log.Debug("created item",
		slog.String("item_id", item.ID.String()),
		slog.String("category", item.Category))
	return item, nil
}

// GetItem implements ReviewService.GetItem.
func (s *reviewServiceImpl) GetItem(ctx context.Context, ownerID, itemID uuid.UUID) (*domain.Item, error) {
	log := logger.FromContextOrDefault(ctx, s.logger).With(
		slog.String("user_id", ownerID.String()),
		slog.String("item_id", itemID.String()))

	item, err := s.getOwned(ctx, s.items, ownerID, itemID)
	if err != nil {
		return nil, s.finish(log, "get_item", err)
	}

	counts, err := s.items.RatingCounts(ctx, itemID)
	if err != nil {
		log.Warn("failed to load rating histogram", slog.String("error", err.Error()))
		counts = map[domain.Rating]int{}
	}
	item.State.RatingCounts = counts
	return item, nil
}

// ListArchived implements ReviewService.ListArchived.
func (s *reviewServiceImpl) ListArchived(
	ctx context.Context,
	ownerID uuid.UUID,
	page int,
	search string,
) (*domain.ArchivedPage, error) {
	log := logger.FromContextOrDefault(ctx, s.logger).With(slog.String("user_id", ownerID.String()))

	page = domain.NormalizePage(page)
	search = strings.TrimSpace(search)

	items, total, err := s.items.ListArchived(ctx, ownerID, page, domain.ArchivedPerPage, search)
	if err != nil {
		return nil, s.finish(log, "list_archived",
			persistenceError("list_archived", "failed to list archived items", err))
	}
	if items == nil {
		items = []*domain.Item{}
	}

	return &domain.ArchivedPage{
		Items:      items,
		TotalCount: total,
		Page:       page,
		PerPage:    domain.ArchivedPerPage,
		TotalPages: domain.TotalPages(total, domain.ArchivedPerPage),
		Search:     search,
	}, nil
}

// SampleArchived implements ReviewService.SampleArchived.
func (s *reviewServiceImpl) SampleArchived(
	ctx context.Context,
	ownerID uuid.UUID,
	count int,
) ([]*domain.Item, error) {
	log := logger.FromContextOrDefault(ctx, s.logger).With(slog.String("user_id", ownerID.String()))

	if err := domain.ValidateSampleCount(count); err != nil {
		log.Warn("invalid sample count", slog.Int("count", count))
		return nil, ErrInvalidCount
	}

	items, err := s.items.SampleArchived(ctx, ownerID, count)
	if err != nil {
		return nil, s.finish(log, "sample_archived",
			persistenceError("sample_archived", "failed to sample archived items", err))
	}
	return items, nil
}

// Flip implements ReviewService.Flip.
func (s *reviewServiceImpl) Flip(ctx context.Context, ownerID, itemID uuid.UUID) (bool, error) {
	log := logger.FromContextOrDefault(ctx, s.logger).With(
		slog.String("user_id", ownerID.String()),
		slog.String("item_id", itemID.String()))

	if _, err := s.getOwned(ctx, s.items, ownerID, itemID); err != nil {
		return false, s.finish(log, "flip", err)
	}

	ok, err := s.items.IncrementFlip(ctx, itemID)
	if err != nil {
		log.Warn("failed to increment flip count", slog.String("error", err.Error()))
		return false, nil
	}
	return ok, nil
}

// UpdateBack implements ReviewService.UpdateBack.
func (s *reviewServiceImpl) UpdateBack(
	ctx context.Context,
	ownerID, itemID uuid.UUID,
	back string,
) (*domain.Item, error) {
	log := logger.FromContextOrDefault(ctx, s.logger).With(
		slog.String("user_id", ownerID.String()),
		slog.String("item_id", itemID.String()))

	back = strings.TrimSpace(back)
	if back == "" {
		return nil, fmt.Errorf("%w: %w", domain.ErrValidation, domain.ErrItemBackEmpty)
	}

	var updated *domain.Item
	err := s.runInTransaction(ctx, func(ctx context.Context, items store.ItemStore) error {
		item, err := s.lockOwned(ctx, items, ownerID, itemID)
		if err != nil {
			return err
		}
		matched, err := items.UpdateBack(ctx, itemID, ownerID, back)
		if err != nil {
			return persistenceError("update_back", "failed to update item", err)
		}
		if !matched {
			return ErrItemNotFound
		}
		item.Back = back
		updated = item
		return nil
	})
	if err != nil {
		return nil, s.finish(log, "update_back", err)
	}
	return updated, nil
}

// DeleteItem implements ReviewService.DeleteItem.
func (s *reviewServiceImpl) DeleteItem(ctx context.Context, ownerID, itemID uuid.UUID) error {
	log := logger.FromContextOrDefault(ctx, s.logger).With(
		slog.String("user_id", ownerID.String()),
		slog.String("item_id", itemID.String()))

	err := s.runInTransaction(ctx, func(ctx context.Context, items store.ItemStore) error {
		if _, err := s.lockOwned(ctx, items, ownerID, itemID); err != nil {
			return err
		}
		deleted, err := items.Delete(ctx, itemID, ownerID)
		if err != nil {
			return persistenceError("delete_item", "failed to delete item", err)
		}
		if !deleted {
			return ErrItemNotFound
		}
		return nil
	})
	if err != nil {
		return s.finish(log, "delete_item", err)
	}

	log.Debug("deleted item")
	return nil
}

// lockOwned loads an item under the row lock and checks that ownerID owns it.
func (s *reviewServiceImpl) lockOwned(
	ctx context.Context,
	items store.ItemStore,
	ownerID, itemID uuid.UUID,
) (*domain.Item, error) {
	item, err := items.GetForUpdate(ctx, itemID)
	return s.checkOwner(item, err, ownerID)
}

// getOwned loads an item without locking and checks that ownerID owns it.
func (s *reviewServiceImpl) getOwned(
	ctx context.Context,
	items store.ItemStore,
	ownerID, itemID uuid.UUID,
) (*domain.Item, error) {
	item, err := items.GetByID(ctx, itemID)
	return s.checkOwner(item, err, ownerID)
}

func (s *reviewServiceImpl) checkOwner(item *domain.Item, err error, ownerID uuid.UUID) (*domain.Item, error) {
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return nil, ErrItemNotFound
		}
		return nil, persistenceError("get_item", "failed to load item", err)
	}
	if !item.IsOwnedBy(ownerID) {
		return nil, ErrItemNotOwned
	}
	return item, nil
}

// finish logs err at a level matching its kind and returns it unchanged.
func (s *reviewServiceImpl) finish(log *slog.Logger, operation string, err error) error {
	if isDomainError(err) {
		log.Debug("operation rejected",
			slog.String("operation", operation),
			slog.String("reason", err.Error()))
		return err
	}
	log.Error("operation failed",
		slog.String("operation", operation),
		slog.String("error", err.Error()))
	if errors.Is(err, ErrPersistence) {
		return err
	}
	return persistenceError(operation, "transaction failed", err)
}

// runInTransaction runs fn with a store bound to a single transaction.
func (s *reviewServiceImpl) runInTransaction(
	ctx context.Context,
	fn func(ctx context.Context, items store.ItemStore) error,
) error {
	return store.RunInTransaction(ctx, s.items.DB(), func(ctx context.Context, tx *sql.Tx) error {
		return fn(ctx, s.items.WithTx(tx))
	})
}
