package postgres

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
	"github.com/phrazzld/scry-srs/internal/platform/logger"
	"github.com/phrazzld/scry-srs/internal/store"
)

// itemColumns is the column list shared by every query that returns items.
const itemColumns = `
	id, owner_id, front, back, category, example_front, example_back,
	interval_days, repetitions, ease_factor, next_review_date,
	is_archived, flip_count, created_at, updated_at`

// PostgresItemStore implements the store.ItemStore interface
// using a PostgreSQL database as the storage backend.
type PostgresItemStore struct {
	db     store.DBTX
	sqlDB  *sql.DB
	logger *slog.Logger
}

// NewPostgresItemStore creates a new PostgreSQL implementation of the ItemStore interface.
// It accepts a database connection that should be initialized and managed by the caller.
// If logger is nil, a default logger will be used.
func NewPostgresItemStore(db *sql.DB, logger *slog.Logger) *PostgresItemStore {
	if db == nil {
		panic("db cannot be nil")
	}
	if logger == nil {
		logger = slog.Default()
	}

	return &PostgresItemStore{
		db:     db,
		sqlDB:  db,
		logger: logger.With(slog.String("component", "item_store")),
	}
}

// Ensure PostgresItemStore implements store.ItemStore interface
var _ store.ItemStore = (*PostgresItemStore)(nil)

// WithTx implements store.ItemStore.WithTx
func (s *PostgresItemStore) WithTx(tx *sql.Tx) store.ItemStore {
	return &PostgresItemStore{
		db:     tx,
		sqlDB:  s.sqlDB,
		logger: s.logger,
	}
}

// DB implements store.ItemStore.DB
func (s *PostgresItemStore) DB() *sql.DB {
	return s.sqlDB
}

// Create implements store.ItemStore.Create
func (s *PostgresItemStore) Create(ctx context.Context, item *domain.Item) error {
	log := logger.FromContextOrDefault(ctx, s.logger)

	if err := item.Validate(); err != nil {
		log.Warn("item validation failed during create",
			slog.String("error", err.Error()),
			slog.String("item_id", item.ID.String()))
		return err
	}

	query := `
		INSERT INTO items (` + itemColumns + `)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15)
	`
	_, err := s.db.ExecContext(ctx, query,
		item.ID,
		item.OwnerID,
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
		item.CreatedAt,
		item.UpdatedAt,
	)
	if err != nil {
		if IsUniqueViolation(err) {
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
func (s *PostgresItemStore) GetByID(ctx context.Context, id uuid.UUID) (*domain.Item, error) {
	return s.getOne(ctx, id, "SELECT "+itemColumns+" FROM items WHERE id = $1")
}

// GetForUpdate implements store.ItemStore.GetForUpdate
// The row stays locked until the surrounding transaction commits or rolls back,
// which serializes concurrent rating updates of the same item.
func (s *PostgresItemStore) GetForUpdate(ctx context.Context, id uuid.UUID) (*domain.Item, error) {
	return s.getOne(ctx, id, "SELECT "+itemColumns+" FROM items WHERE id = $1 FOR UPDATE")
}

func (s *PostgresItemStore) getOne(ctx context.Context, id uuid.UUID, query string) (*domain.Item, error) {
	log := logger.FromContextOrDefault(ctx, s.logger)

	item, err := scanItem(s.db.QueryRowContext(ctx, query, id))
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

// UpdateReviewState implements store.ItemStore.UpdateReviewState
func (s *PostgresItemStore) UpdateReviewState(
	ctx context.Context,
	id uuid.UUID,
	state domain.ReviewState,
) error {
	log := logger.FromContextOrDefault(ctx, s.logger)

	if err := state.Validate(); err != nil {
		return err
	}

	result, err := s.db.ExecContext(ctx, `
		UPDATE items
		SET interval_days = $1, repetitions = $2, ease_factor = $3,
		    next_review_date = $4, updated_at = $5
		WHERE id = $6
	`, state.Interval, state.Repetitions, state.EaseFactor, state.NextReviewDate, time.Now().UTC(), id)
	if err != nil {
		log.Error("failed to update review state",
			slog.String("error", err.Error()),
			slog.String("item_id", id.String()))
		return store.NewStoreError("item", "update", "failed to update review state", MapError(err))
	}

	n, err := rowsAffected(result)
	if err != nil {
		return store.NewStoreError("item", "update", "failed to update review state", err)
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
func (s *PostgresItemStore) FindDueItems(
	ctx context.Context,
	ownerID uuid.UUID,
	category string,
	today domain.Date,
) ([]*domain.Item, error) {
	query := `
		SELECT ` + itemColumns + `
		FROM items
		WHERE owner_id = $1 AND category = $2
		  AND NOT is_archived AND next_review_date <= $3
		ORDER BY created_at, id
	`
	return s.queryItems(ctx, "find_due", query, ownerID, category, today)
}

// ListCategories implements store.ItemStore.ListCategories
func (s *PostgresItemStore) ListCategories(ctx context.Context, ownerID uuid.UUID) ([]string, error) {
	log := logger.FromContextOrDefault(ctx, s.logger)

	rows, err := s.db.QueryContext(ctx,
		`SELECT DISTINCT category FROM items WHERE owner_id = $1 ORDER BY category`, ownerID)
	if err != nil {
		log.Error("failed to list categories", slog.String("error", err.Error()))
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
// Postgres reports matched rows for UPDATE, so setting the current value
// still counts as a match.
func (s *PostgresItemStore) SetArchived(
	ctx context.Context,
	id, ownerID uuid.UUID,
	archived bool,
) (bool, error) {
	log := logger.FromContextOrDefault(ctx, s.logger)

	result, err := s.db.ExecContext(ctx, `
		UPDATE items SET is_archived = $1, updated_at = $2
		WHERE id = $3 AND owner_id = $4
	`, archived, time.Now().UTC(), id, ownerID)
	if err != nil {
		log.Error("failed to set archived flag",
			slog.String("error", err.Error()),
			slog.String("item_id", id.String()))
		return false, store.NewStoreError("item", "set_archived", "update failed", MapError(err))
	}

	n, err := rowsAffected(result)
	if err != nil {
		return false, store.NewStoreError("item", "set_archived", "update failed", err)
	}
	return n > 0, nil
}

// BulkUnarchive implements store.ItemStore.BulkUnarchive
func (s *PostgresItemStore) BulkUnarchive(
	ctx context.Context,
	ids []uuid.UUID,
	ownerID uuid.UUID,
) (int, error) {
	if len(ids) == 0 {
		return 0, nil
	}
	log := logger.FromContextOrDefault(ctx, s.logger)

	result, err := s.db.ExecContext(ctx, `
		UPDATE items SET is_archived = FALSE, updated_at = $1
		WHERE id = ANY($2) AND owner_id = $3 AND is_archived
	`, time.Now().UTC(), uuidArray(ids), ownerID)
	if err != nil {
		log.Error("failed to unarchive items",
			slog.String("error", err.Error()),
			slog.Int("requested", len(ids)))
		return 0, store.NewStoreError("item", "bulk_unarchive", "update failed", MapError(err))
	}

	n, err := rowsAffected(result)
	if err != nil {
		return 0, store.NewStoreError("item", "bulk_unarchive", "update failed", err)
	}

	log.Debug("items unarchived",
		slog.Int("requested", len(ids)),
		slog.Int64("changed", n))
	return int(n), nil
}

// ListArchived implements store.ItemStore.ListArchived
func (s *PostgresItemStore) ListArchived(
	ctx context.Context,
	ownerID uuid.UUID,
	page, perPage int,
	search string,
) ([]*domain.Item, int, error) {
	where := "owner_id = $1 AND is_archived"
	args := []any{ownerID}
	if search != "" {
		where += " AND (front ILIKE $2 ESCAPE '\\' OR back ILIKE $2 ESCAPE '\\')"
		args = append(args, store.SearchPattern(search))
	}

	var total int
	if err := s.db.QueryRowContext(ctx, "SELECT COUNT(*) FROM items WHERE "+where, args...).
		Scan(&total); err != nil {
		logger.FromContextOrDefault(ctx, s.logger).Error("failed to count archived items",
			slog.String("error", err.Error()))
		return nil, 0, store.NewStoreError("item", "list_archived", "count failed", MapError(err))
	}

	offset := domain.PageOffset(page, perPage)
	if offset >= total {
		return []*domain.Item{}, total, nil
	}

	n := len(args)
	query := fmt.Sprintf(`
		SELECT %s FROM items WHERE %s
		ORDER BY created_at DESC, id
		LIMIT $%d OFFSET $%d
	`, itemColumns, where, n+1, n+2)
	args = append(args, perPage, offset)

	items, err := s.queryItems(ctx, "list_archived", query, args...)
	if err != nil {
		return nil, 0, err
	}
	return items, total, nil
}

// SampleArchived implements store.ItemStore.SampleArchived
// The database picks the rows, so the archived set is never loaded into memory.
func (s *PostgresItemStore) SampleArchived(
	ctx context.Context,
	ownerID uuid.UUID,
	count int,
) ([]*domain.Item, error) {
	if err := domain.ValidateSampleCount(count); err != nil {
		return nil, err
	}
	query := `
		SELECT ` + itemColumns + `
		FROM items
		WHERE owner_id = $1 AND is_archived
		ORDER BY RANDOM()
		LIMIT $2
	`
	return s.queryItems(ctx, "sample_archived", query, ownerID, count)
}

// IncrementFlip implements store.ItemStore.IncrementFlip
func (s *PostgresItemStore) IncrementFlip(ctx context.Context, id uuid.UUID) (bool, error) {
	result, err := s.db.ExecContext(ctx,
		`UPDATE items SET flip_count = flip_count + 1 WHERE id = $1`, id)
	if err != nil {
		logger.FromContextOrDefault(ctx, s.logger).Error("failed to increment flip count",
			slog.String("error", err.Error()),
			slog.String("item_id", id.String()))
		return false, store.NewStoreError("item", "increment_flip", "update failed", MapError(err))
	}
	n, err := rowsAffected(result)
	if err != nil {
		return false, store.NewStoreError("item", "increment_flip", "update failed", err)
	}
	return n > 0, nil
}

// RecordRating implements store.ItemStore.RecordRating
func (s *PostgresItemStore) RecordRating(ctx context.Context, id uuid.UUID, rating domain.Rating) error {
	if !rating.Valid() {
		return domain.ErrInvalidRating
	}
	_, err := s.db.ExecContext(ctx, `
		INSERT INTO item_rating_counts (item_id, rating, count)
		VALUES ($1, $2, 1)
		ON CONFLICT (item_id, rating) DO UPDATE SET count = item_rating_counts.count + 1
	`, id, int(rating))
	if err != nil {
		if hasCode(err, foreignKeyViolationCode) {
			return store.ErrItemNotFound
		}
		return store.NewStoreError("item", "record_rating", "upsert failed", MapError(err))
	}
	return nil
}

// RatingCounts implements store.ItemStore.RatingCounts
func (s *PostgresItemStore) RatingCounts(ctx context.Context, id uuid.UUID) (map[domain.Rating]int, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT rating, count FROM item_rating_counts WHERE item_id = $1`, id)
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
func (s *PostgresItemStore) UpdateBack(
	ctx context.Context,
	id, ownerID uuid.UUID,
	back string,
) (bool, error) {
	result, err := s.db.ExecContext(ctx, `
		UPDATE items SET back = $1, updated_at = $2
		WHERE id = $3 AND owner_id = $4
	`, back, time.Now().UTC(), id, ownerID)
	if err != nil {
		return false, store.NewStoreError("item", "update_back", "update failed", MapError(err))
	}
	n, err := rowsAffected(result)
	if err != nil {
		return false, store.NewStoreError("item", "update_back", "update failed", err)
	}
	return n > 0, nil
}

// Delete implements store.ItemStore.Delete
// The rating histogram is removed by ON DELETE CASCADE.
func (s *PostgresItemStore) Delete(ctx context.Context, id, ownerID uuid.UUID) (bool, error) {
	result, err := s.db.ExecContext(ctx,
		`DELETE FROM items WHERE id = $1 AND owner_id = $2`, id, ownerID)
	if err != nil {
		return false, store.NewStoreError("item", "delete", "delete failed", MapError(err))
	}
	n, err := rowsAffected(result)
	if err != nil {
		return false, store.NewStoreError("item", "delete", "delete failed", err)
	}
	if n > 0 {
		logger.FromContextOrDefault(ctx, s.logger).Info("item deleted",
			slog.String("item_id", id.String()))
	}
	return n > 0, nil
}

func (s *PostgresItemStore) queryItems(
	ctx context.Context,
	op, query string,
	args ...any,
) ([]*domain.Item, error) {
	log := logger.FromContextOrDefault(ctx, s.logger)

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

// uuidArray renders ids as a Postgres array literal for use with = ANY($n).
func uuidArray(ids []uuid.UUID) string {
	parts := make([]string, len(ids))
	for i, id := range ids {
		parts[i] = id.String()
	}
	return "{" + strings.Join(parts, ",") + "}"
}
