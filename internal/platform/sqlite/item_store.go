package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"log/slog"
	"time"

	"github.com/Masterminds/squirrel"
	"github.com/google/uuid"
	"github.com/phrazzld/scry-srs/internal/domain"
	"github.com/phrazzld/scry-srs/internal/platform/logger"
	"github.com/phrazzld/scry-srs/internal/store"
)

var sqlBuilder = squirrel.StatementBuilder.PlaceholderFormat(squirrel.Question)

var itemColumns = []string{
	"id", "owner_id", "front", "back", "category", "example_front", "example_back",
	"interval_days", "repetitions", "ease_factor", "next_review_date",
	"is_archived", "flip_count", "created_at", "updated_at",
}

// SQLiteItemStore implements the store.ItemStore interface on top of a
// sqlite database opened with Open.
type SQLiteItemStore struct {
	db     store.DBTX
	sqlDB  *sql.DB
	logger *slog.Logger
}

// NewSQLiteItemStore creates a sqlite implementation of the ItemStore interface.
// If logger is nil, a default logger will be used.
func NewSQLiteItemStore(db *sql.DB, logger *slog.Logger) *SQLiteItemStore {
	if db == nil {
		panic("db cannot be nil")
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &SQLiteItemStore{
		db:     db,
		sqlDB:  db,
		logger: logger.With(slog.String("component", "item_store"), slog.String("driver", "sqlite")),
	}
}

var _ store.ItemStore = (*SQLiteItemStore)(nil)

// WithTx implements store.ItemStore.WithTx
func (s *SQLiteItemStore) WithTx(tx *sql.Tx) store.ItemStore {
	return &SQLiteItemStore{db: tx, sqlDB: s.sqlDB, logger: s.logger}
}

// DB implements store.ItemStore.DB
func (s *SQLiteItemStore) DB() *sql.DB {
	return s.sqlDB
}

// Create implements store.ItemStore.Create
func (s *SQLiteItemStore) Create(ctx context.Context, item *domain.Item) error {
	log := logger.FromContextOrDefault(ctx, s.logger)

	if err := item.Validate(); err != nil {
		log.Warn("item validation failed during create",
			slog.String("error", err.Error()),
			slog.String("item_id", item.ID.String()))
		return err
	}

	query, args, err := sqlBuilder.Insert("items").
		Columns(itemColumns...).
		Values(
			item.ID.String(),
			item.OwnerID.String(),
			item.Front,
			item.Back,
			item.Category,
			item.ExampleFront,
			item.ExampleBack,
			item.State.Interval,
			item.State.Repetitions,
			item.State.EaseFactor,
			item.State.NextReviewDate,
			item.State.IsArchived,
			item.State.FlipCount,
			item.CreatedAt.UTC(),
			item.UpdatedAt.UTC(),
		).ToSql()
	if err != nil {
		return store.NewStoreError("item", "create", "failed to build query", err)
	}

	if _, err := s.db.ExecContext(ctx, query, args...); err != nil {
		if isDuplicate(err) {
			return store.ErrItemExists
		}
		log.Error("failed to create item",
			slog.String("error", err.Error()),
			slog.String("item_id", item.ID.String()))
		return store.NewStoreError("item", "create", "failed to insert item", MapError(err))
	}

	log.Debug("item created",
		slog.String("item_id", item.ID.String()),
		slog.String("owner_id", item.OwnerID.String()))
	return nil
}

// GetByID implements store.ItemStore.GetByID
func (s *SQLiteItemStore) GetByID(ctx context.Context, id uuid.UUID) (*domain.Item, error) {
	log := logger.FromContextOrDefault(ctx, s.logger)

	query, args, err := sqlBuilder.Select(itemColumns...).
		From("items").
		Where(squirrel.Eq{"id": id.String()}).
		ToSql()
	if err != nil {
		return nil, store.NewStoreError("item", "get", "failed to build query", err)
	}

	item, err := scanItem(s.db.QueryRowContext(ctx, query, args...))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			log.Debug("item not found", slog.String("item_id", id.String()))
			return nil, store.ErrItemNotFound
		}
		log.Error("failed to get item",
			slog.String("error", err.Error()),
			slog.String("item_id", id.String()))
		return nil, store.NewStoreError("item", "get", "failed to load item", MapError(err))
	}
	return item, nil
}

// GetForUpdate implements store.ItemStore.GetForUpdate
// sqlite has no row locks. The transaction already holds the database write
// lock because it was started with BEGIN IMMEDIATE (see DSN), so a plain
// read is serialized against every other writer.
func (s *SQLiteItemStore) GetForUpdate(ctx context.Context, id uuid.UUID) (*domain.Item, error) {
	return s.GetByID(ctx, id)
}

// UpdateReviewState implements store.ItemStore.UpdateReviewState
func (s *SQLiteItemStore) UpdateReviewState(
	ctx context.Context,
	id uuid.UUID,
	state domain.ReviewState,
) error {
	log := logger.FromContextOrDefault(ctx, s.logger)

	if err := state.Validate(); err != nil {
		return err
	}

	n, err := s.execUpdate(ctx, "update", sqlBuilder.Update("items").
		SetMap(map[string]any{
			"interval_days":    state.Interval,
			"repetitions":      state.Repetitions,
			"ease_factor":      state.EaseFactor,
			"next_review_date": state.NextReviewDate,
			"updated_at":       time.Now().UTC(),
		}).
		Where(squirrel.Eq{"id": id.String()}))
	if err != nil {
		log.Error("failed to update review state",
			slog.String("error", err.Error()),
			slog.String("item_id", id.String()))
		return err
	}
	if n == 0 {
		return store.ErrItemNotFound
	}

	log.Debug("review state updated",
		slog.String("item_id", id.String()),
		slog.Int("interval", state.Interval),
		slog.Int("repetitions", state.Repetitions),
		slog.Float64("ease_factor", state.EaseFactor),
		slog.String("next_review_date", state.NextReviewDate.String()))
	return nil
}

// FindDueItems implements store.ItemStore.FindDueItems
func (s *SQLiteItemStore) FindDueItems(
	ctx context.Context,
	ownerID uuid.UUID,
	category string,
	today domain.Date,
) ([]*domain.Item, error) {
	return s.queryItems(ctx, "find_due", sqlBuilder.Select(itemColumns...).
		From("items").
		Where(squirrel.Eq{
			"owner_id":    ownerID.String(),
			"category":    category,
			"is_archived": false,
		}).
		Where(squirrel.LtOrEq{"next_review_date": today}).
		OrderBy("created_at", "id"))
}

// ListCategories implements store.ItemStore.ListCategories
func (s *SQLiteItemStore) ListCategories(ctx context.Context, ownerID uuid.UUID) ([]string, error) {
	query, args, err := sqlBuilder.Select("DISTINCT category").
		From("items").
		Where(squirrel.Eq{"owner_id": ownerID.String()}).
		OrderBy("category").
		ToSql()
	if err != nil {
		return nil, store.NewStoreError("item", "list_categories", "failed to build query", err)
	}

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		logger.FromContextOrDefault(ctx, s.logger).Error("failed to list categories",
			slog.String("error", err.Error()))
		return nil, store.NewStoreError("item", "list_categories", "query failed", MapError(err))
	}
	defer func() { _ = rows.Close() }()

	categories := []string{}
	for rows.Next() {
		var c string
		if err := rows.Scan(&c); err != nil {
			return nil, store.NewStoreError("item", "list_categories", "scan failed", err)
		}
		categories = append(categories, c)
	}
	if err := rows.Err(); err != nil {
		return nil, store.NewStoreError("item", "list_categories", "iteration failed", err)
	}
	return categories, nil
}

// SetArchived implements store.ItemStore.SetArchived
// sqlite counts every row matched by the WHERE clause as changed, so setting
// the current value still reports true.
func (s *SQLiteItemStore) SetArchived(
	ctx context.Context,
	id, ownerID uuid.UUID,
	archived bool,
) (bool, error) {
	n, err := s.execUpdate(ctx, "set_archived", sqlBuilder.Update("items").
		Set("is_archived", archived).
		Set("updated_at", time.Now().UTC()).
		Where(squirrel.Eq{"id": id.String(), "owner_id": ownerID.String()}))
	if err != nil {
		return false, err
	}
	return n > 0, nil
}

// BulkUnarchive implements store.ItemStore.BulkUnarchive
func (s *SQLiteItemStore) BulkUnarchive(
	ctx context.Context,
	ids []uuid.UUID,
	ownerID uuid.UUID,
) (int, error) {
	if len(ids) == 0 {
		return 0, nil
	}

	n, err := s.execUpdate(ctx, "bulk_unarchive", sqlBuilder.Update("items").
		Set("is_archived", false).
		Set("updated_at", time.Now().UTC()).
		Where(squirrel.Eq{
			"id":          uuidStrings(ids),
			"owner_id":    ownerID.String(),
			"is_archived": true,
		}))
	if err != nil {
		return 0, err
	}

	logger.FromContextOrDefault(ctx, s.logger).Debug("items unarchived",
		slog.Int("requested", len(ids)),
		slog.Int64("changed", n))
	return int(n), nil
}

// ListArchived implements store.ItemStore.ListArchived
func (s *SQLiteItemStore) ListArchived(
	ctx context.Context,
	ownerID uuid.UUID,
	page, perPage int,
	search string,
) ([]*domain.Item, int, error) {
	filter := squirrel.And{
		squirrel.Eq{"owner_id": ownerID.String(), "is_archived": true},
	}
	if search != "" {
		pattern := store.SearchPattern(search)
		filter = append(filter, squirrel.Or{
			squirrel.Expr(lowerFunc+"(front) LIKE ? ESCAPE '"+store.LikeEscape+"'", pattern),
			squirrel.Expr(lowerFunc+"(back) LIKE ? ESCAPE '"+store.LikeEscape+"'", pattern),
		})
	}

	countQuery, countArgs, err := sqlBuilder.Select("COUNT(*)").From("items").Where(filter).ToSql()
	if err != nil {
		return nil, 0, store.NewStoreError("item", "list_archived", "failed to build query", err)
	}
	var total int
	if err := s.db.QueryRowContext(ctx, countQuery, countArgs...).Scan(&total); err != nil {
		logger.FromContextOrDefault(ctx, s.logger).Error("failed to count archived items",
			slog.String("error", err.Error()))
		return nil, 0, store.NewStoreError("item", "list_archived", "count failed", MapError(err))
	}

	offset := domain.PageOffset(page, perPage)
	if offset >= total {
		return []*domain.Item{}, total, nil
	}

	items, err := s.queryItems(ctx, "list_archived", sqlBuilder.Select(itemColumns...).
		From("items").
		Where(filter).
		OrderBy("created_at DESC", "id").
		Limit(uint64(perPage)).
		Offset(uint64(offset)))
	if err != nil {
		return nil, 0, err
	}
	return items, total, nil
}

// SampleArchived implements store.ItemStore.SampleArchived
func (s *SQLiteItemStore) SampleArchived(
	ctx context.Context,
	ownerID uuid.UUID,
	count int,
) ([]*domain.Item, error) {
	if err := domain.ValidateSampleCount(count); err != nil {
		return nil, err
	}
	return s.queryItems(ctx, "sample_archived", sqlBuilder.Select(itemColumns...).
		From("items").
		Where(squirrel.Eq{"owner_id": ownerID.String(), "is_archived": true}).
		OrderBy("RANDOM()").
		Limit(uint64(count)))
}

// IncrementFlip implements store.ItemStore.IncrementFlip
func (s *SQLiteItemStore) IncrementFlip(ctx context.Context, id uuid.UUID) (bool, error) {
	n, err := s.execUpdate(ctx, "increment_flip", sqlBuilder.Update("items").
		Set("flip_count", squirrel.Expr("flip_count + 1")).
		Where(squirrel.Eq{"id": id.String()}))
	if err != nil {
		return false, err
	}
	return n > 0, nil
}

// RecordRating implements store.ItemStore.RecordRating
func (s *SQLiteItemStore) RecordRating(ctx context.Context, id uuid.UUID, rating domain.Rating) error {
	if !rating.Valid() {
		return domain.ErrInvalidRating
	}

	query, args, err := sqlBuilder.Insert("item_rating_counts").
		Columns("item_id", "rating", "count").
		Values(id.String(), int(rating), 1).
		Suffix("ON CONFLICT (item_id, rating) DO UPDATE SET count = count + 1").
		ToSql()
	if err != nil {
		return store.NewStoreError("item", "record_rating", "failed to build query", err)
	}

	if _, err := s.db.ExecContext(ctx, query, args...); err != nil {
		if isForeignKeyViolation(err) {
			return store.ErrItemNotFound
		}
		return store.NewStoreError("item", "record_rating", "upsert failed", MapError(err))
	}
	return nil
}

// RatingCounts implements store.ItemStore.RatingCounts
func (s *SQLiteItemStore) RatingCounts(ctx context.Context, id uuid.UUID) (map[domain.Rating]int, error) {
	query, args, err := sqlBuilder.Select("rating", "count").
		From("item_rating_counts").
		Where(squirrel.Eq{"item_id": id.String()}).
		ToSql()
	if err != nil {
		return nil, store.NewStoreError("item", "rating_counts", "failed to build query", err)
	}

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, store.NewStoreError("item", "rating_counts", "query failed", MapError(err))
	}
	defer func() { _ = rows.Close() }()

	counts := make(map[domain.Rating]int)
	for rows.Next() {
		var rating, count int
		if err := rows.Scan(&rating, &count); err != nil {
			return nil, store.NewStoreError("item", "rating_counts", "scan failed", err)
		}
		counts[domain.Rating(rating)] = count
	}
	if err := rows.Err(); err != nil {
		return nil, store.NewStoreError("item", "rating_counts", "iteration failed", err)
	}
	return counts, nil
}

// UpdateBack implements store.ItemStore.UpdateBack
func (s *SQLiteItemStore) UpdateBack(
	ctx context.Context,
	id, ownerID uuid.UUID,
	back string,
) (bool, error) {
	n, err := s.execUpdate(ctx, "update_back", sqlBuilder.Update("items").
		Set("back", back).
		Set("updated_at", time.Now().UTC()).
		Where(squirrel.Eq{"id": id.String(), "owner_id": ownerID.String()}))
	if err != nil {
		return false, err
	}
	return n > 0, nil
}

// Delete implements store.ItemStore.Delete
// The rating histogram is removed by ON DELETE CASCADE.
func (s *SQLiteItemStore) Delete(ctx context.Context, id, ownerID uuid.UUID) (bool, error) {
	query, args, err := sqlBuilder.Delete("items").
		Where(squirrel.Eq{"id": id.String(), "owner_id": ownerID.String()}).
		ToSql()
	if err != nil {
		return false, store.NewStoreError("item", "delete", "failed to build query", err)
	}

	result, err := s.db.ExecContext(ctx, query, args...)
	if err != nil {
		return false, store.NewStoreError("item", "delete", "delete failed", MapError(err))
	}
	n, err := result.RowsAffected()
	if err != nil {
		return false, store.NewStoreError("item", "delete", "delete failed", err)
	}
	if n > 0 {
		logger.FromContextOrDefault(ctx, s.logger).Info("item deleted",
			slog.String("item_id", id.String()))
	}
	return n > 0, nil
}

func (s *SQLiteItemStore) execUpdate(
	ctx context.Context,
	op string,
	builder squirrel.UpdateBuilder,
) (int64, error) {
	query, args, err := builder.ToSql()
	if err != nil {
		return 0, store.NewStoreError("item", op, "failed to build query", err)
	}

	result, err := s.db.ExecContext(ctx, query, args...)
	if err != nil {
		logger.FromContextOrDefault(ctx, s.logger).Error("item update failed",
			slog.String("operation", op),
			slog.String("error", err.Error()))
		return 0, store.NewStoreError("item", op, "update failed", MapError(err))
	}

	n, err := result.RowsAffected()
	if err != nil {
		return 0, store.NewStoreError("item", op, "failed to get rows affected", err)
	}
	return n, nil
}

func (s *SQLiteItemStore) queryItems(
	ctx context.Context,
	op string,
	builder squirrel.SelectBuilder,
) ([]*domain.Item, error) {
	log := logger.FromContextOrDefault(ctx, s.logger)

	query, args, err := builder.ToSql()
	if err != nil {
		return nil, store.NewStoreError("item", op, "failed to build query", err)
	}

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		log.Error("item query failed",
			slog.String("operation", op),
			slog.String("error", err.Error()))
		return nil, store.NewStoreError("item", op, "query failed", MapError(err))
	}
	defer func() { _ = rows.Close() }()

	items := []*domain.Item{}
	for rows.Next() {
		item, err := scanItem(rows)
		if err != nil {
			return nil, store.NewStoreError("item", op, "scan failed", err)
		}
		items = append(items, item)
	}
	if err := rows.Err(); err != nil {
		return nil, store.NewStoreError("item", op, "iteration failed", err)
	}

	log.Debug("items loaded", slog.String("operation", op), slog.Int("count", len(items)))
	return items, nil
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanItem(row rowScanner) (*domain.Item, error) {
	var item domain.Item
	err := row.Scan(
		&item.ID,
		&item.OwnerID,
		&item.Front,
		&item.Back,
		&item.Category,
		&item.ExampleFront,
		&item.ExampleBack,
		&item.State.Interval,
		&item.State.Repetitions,
		&item.State.EaseFactor,
		&item.State.NextReviewDate,
		&item.State.IsArchived,
		&item.State.FlipCount,
		&item.CreatedAt,
		&item.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	return &item, nil
}

func uuidStrings(ids []uuid.UUID) []string {
	out := make([]string, len(ids))
	for i, id := range ids {
		out[i] = id.String()
	}
	return out
}
