package review_test

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"
	"math"
	"sync"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/phrazzld/scry-srs/internal/domain"
	"github.com/phrazzld/scry-srs/internal/domain/srs"
	"github.com/phrazzld/scry-srs/internal/platform/logger"
	"github.com/phrazzld/scry-srs/internal/platform/sqlite"
	"github.com/phrazzld/scry-srs/internal/service/review"
	"github.com/phrazzld/scry-srs/internal/store"
	"github.com/phrazzld/scry-srs/internal/testdb"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var (
	now   = time.Date(2026, time.May, 20, 10, 0, 0, 0, time.UTC)
	today = domain.DateOf(now)
)

// faultyStore wraps a real store and injects failures into selected methods.
type faultyStore struct {
	store.ItemStore
	updateErr    error
	recordErr    error
	incrementErr error
	countsErr    error
}

func (f *faultyStore) WithTx(tx *sql.Tx) store.ItemStore {
	c := *f
	c.ItemStore = f.ItemStore.WithTx(tx)
	return &c
}

func (f *faultyStore) UpdateReviewState(ctx context.Context, id uuid.UUID, state domain.ReviewState) error {
	if f.updateErr != nil {
		return f.updateErr
	}
	return f.ItemStore.UpdateReviewState(ctx, id, state)
}

func (f *faultyStore) RecordRating(ctx context.Context, id uuid.UUID, rating domain.Rating) error {
	if f.recordErr != nil {
		return f.recordErr
	}
	return f.ItemStore.RecordRating(ctx, id, rating)
}

func (f *faultyStore) IncrementFlip(ctx context.Context, id uuid.UUID) (bool, error) {
	if f.incrementErr != nil {
		return false, f.incrementErr
	}
	return f.ItemStore.IncrementFlip(ctx, id)
}

func (f *faultyStore) RatingCounts(ctx context.Context, id uuid.UUID) (map[domain.Rating]int, error) {
	if f.countsErr != nil {
		return nil, f.countsErr
	}
	return f.ItemStore.RatingCounts(ctx, id)
}

type fixture struct {
	items   *faultyStore
	service review.ReviewService
	logs    *logger.TestLogBuffer
	owner   uuid.UUID
	other   uuid.UUID
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	db := testdb.NewSQLiteDB(t)
	items := &faultyStore{ItemStore: sqlite.NewSQLiteItemStore(db, nil)}
	log, logs := logger.NewTestLogger(t)
	svc := review.NewReviewService(items, srs.NewDefaultScheduler(), log,
		review.WithClock(func() time.Time { return now }))
	return &fixture{
		items:   items,
		service: svc,
		logs:    logs,
		owner:   uuid.New(),
		other:   uuid.New(),
	}
}

func (f *fixture) create(t *testing.T, owner uuid.UUID, front string) *domain.Item {
	t.Helper()
	item, err := f.service.CreateItem(context.Background(), owner, review.NewItemInput{
		Front:    front,
		Back:     "back of " + front,
		Category: "Vocabulary",
	})
	require.NoError(t, err)
	return item
}

func (f *fixture) reload(t *testing.T, id uuid.UUID) *domain.Item {
	t.Helper()
	item, err := f.items.GetByID(context.Background(), id)
	require.NoError(t, err)
	return item
}

func TestNewReviewServicePanicsOnNilDependencies(t *testing.T) {
	t.Parallel()
	assert.Panics(t, func() { review.NewReviewService(nil, srs.NewDefaultScheduler(), nil) })
	assert.Panics(t, func() { review.NewReviewService(&faultyStore{}, nil, nil) })
}

func TestRate(t *testing.T) {
	t.Parallel()
	ctx := context.Background()

	t.Run("easy on a new item", func(t *testing.T) {
		t.Parallel()
		f := newFixture(t)
		item := f.create(t, f.owner, "hola")

		updated, err := f.service.Rate(ctx, f.owner, item.ID, domain.RatingEasy)
		require.NoError(t, err)
		assert.Equal(t, 1, updated.State.Repetitions)
		assert.Equal(t, 1, updated.State.Interval)
		assert.InDelta(t, 2.36, updated.State.EaseFactor, 1e-9)
		assert.Equal(t, today.AddDays(1), updated.State.NextReviewDate)

		stored := f.reload(t, item.ID)
		assert.Equal(t, updated.State.Interval, stored.State.Interval)
		assert.Equal(t, updated.State.Repetitions, stored.State.Repetitions)
		assert.InDelta(t, updated.State.EaseFactor, stored.State.EaseFactor, 1e-9)
		assert.Equal(t, updated.State.NextReviewDate, stored.State.NextReviewDate)
	})

	t.Run("normal ratings grow the interval", func(t *testing.T) {
		t.Parallel()
		f := newFixture(t)
		item := f.create(t, f.owner, "gato")

		var intervals []int
		for i := 0; i < 3; i++ {
			updated, err := f.service.Rate(ctx, f.owner, item.ID, domain.RatingNormal)
			require.NoError(t, err)
			intervals = append(intervals, updated.State.Interval)
		}
		assert.Equal(t, []int{1, 6, 15}, intervals)
		assert.Equal(t, today.AddDays(15), f.reload(t, item.ID).State.NextReviewDate)
	})

	t.Run("hard resets progress", func(t *testing.T) {
		t.Parallel()
		f := newFixture(t)
		item := f.create(t, f.owner, "perro")
		_, err := f.service.Rate(ctx, f.owner, item.ID, domain.RatingNormal)
		require.NoError(t, err)
		_, err = f.service.Rate(ctx, f.owner, item.ID, domain.RatingNormal)
		require.NoError(t, err)

		updated, err := f.service.Rate(ctx, f.owner, item.ID, domain.RatingHard)
		require.NoError(t, err)
		assert.Equal(t, 0, updated.State.Repetitions)
		assert.Equal(t, 1, updated.State.Interval)
		assert.InDelta(t, 2.3, updated.State.EaseFactor, 1e-9)
	})

	t.Run("unknown item", func(t *testing.T) {
		t.Parallel()
		f := newFixture(t)
		_, err := f.service.Rate(ctx, f.owner, uuid.New(), domain.RatingEasy)
		assert.ErrorIs(t, err, review.ErrItemNotFound)
		assert.ErrorIs(t, err, store.ErrNotFound)
	})

	t.Run("foreign item is left untouched", func(t *testing.T) {
		t.Parallel()
		f := newFixture(t)
		item := f.create(t, f.other, "ajeno")

		_, err := f.service.Rate(ctx, f.owner, item.ID, domain.RatingEasy)
		assert.ErrorIs(t, err, review.ErrItemNotOwned)
		assert.Equal(t, item.State.Repetitions, f.reload(t, item.ID).State.Repetitions)
	})

	t.Run("invalid rating", func(t *testing.T) {
		t.Parallel()
		f := newFixture(t)
		item := f.create(t, f.owner, "casa")

		for _, rating := range []domain.Rating{0, 4, -1} {
			_, err := f.service.Rate(ctx, f.owner, item.ID, rating)
			assert.ErrorIs(t, err, review.ErrInvalidRating)
		}
		assert.Equal(t, 0, f.reload(t, item.ID).State.Repetitions)
	})

	t.Run("lookup and ownership are checked before the rating", func(t *testing.T) {
		t.Parallel()
		f := newFixture(t)
		foreign := f.create(t, f.other, "ajeno")

		_, err := f.service.Rate(ctx, f.owner, uuid.New(), domain.Rating(9))
		assert.ErrorIs(t, err, review.ErrItemNotFound)
		assert.NotErrorIs(t, err, review.ErrInvalidRating)

		_, err = f.service.Rate(ctx, f.owner, foreign.ID, domain.Rating(0))
		assert.ErrorIs(t, err, review.ErrItemNotOwned)
		assert.NotErrorIs(t, err, review.ErrInvalidRating)
	})

	t.Run("write failure rolls back", func(t *testing.T) {
		t.Parallel()
		f := newFixture(t)
		item := f.create(t, f.owner, "libro")
		f.items.updateErr = errors.New("disk full")

		_, err := f.service.Rate(ctx, f.owner, item.ID, domain.RatingEasy)
		assert.ErrorIs(t, err, review.ErrPersistence)

		var svcErr *review.ServiceError
		require.ErrorAs(t, err, &svcErr)
		assert.Equal(t, "rate", svcErr.Operation)

		stored := f.reload(t, item.ID)
		assert.Equal(t, 0, stored.State.Repetitions)
		assert.InDelta(t, domain.DefaultEaseFactor, stored.State.EaseFactor, 1e-9)
	})

	t.Run("histogram failure does not fail the rating", func(t *testing.T) {
		t.Parallel()
		f := newFixture(t)
		item := f.create(t, f.owner, "mesa")
		f.items.recordErr = errors.New("histogram unavailable")

		updated, err := f.service.Rate(ctx, f.owner, item.ID, domain.RatingNormal)
		require.NoError(t, err)
		assert.Equal(t, 1, updated.State.Repetitions)
		assert.True(t, f.logs.HasMessage(slog.LevelWarn, "failed to record rating histogram"))

		f.items.recordErr = nil
		got, err := f.service.GetItem(ctx, f.owner, item.ID)
		require.NoError(t, err)
		assert.Empty(t, got.State.RatingCounts)
	})
}

func TestRateConcurrentRatingsAreSerialized(t *testing.T) {
	t.Parallel()
	f := newFixture(t)
	item := f.create(t, f.owner, "silla")
	ctx := context.Background()

	const raters = 6
	var wg sync.WaitGroup
	errs := make(chan error, raters)
	for i := 0; i < raters; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, err := f.service.Rate(ctx, f.owner, item.ID, domain.RatingNormal)
			errs <- err
		}()
	}
	wg.Wait()
	close(errs)
	for err := range errs {
		require.NoError(t, err)
	}

	got, err := f.service.GetItem(ctx, f.owner, item.ID)
	require.NoError(t, err)
	assert.Equal(t, raters, got.State.Repetitions)
	assert.Equal(t, raters, got.State.RatingCounts[domain.RatingNormal])
}

func TestGetItemIncludesRatingCounts(t *testing.T) {
	t.Parallel()
	f := newFixture(t)
	ctx := context.Background()
	item := f.create(t, f.owner, "agua")

	for _, r := range []domain.Rating{domain.RatingEasy, domain.RatingEasy, domain.RatingHard} {
		_, err := f.service.Rate(ctx, f.owner, item.ID, r)
		require.NoError(t, err)
	}

	got, err := f.service.GetItem(ctx, f.owner, item.ID)
	require.NoError(t, err)
	assert.Equal(t, map[domain.Rating]int{domain.RatingEasy: 2, domain.RatingHard: 1}, got.State.RatingCounts)

	_, err = f.service.GetItem(ctx, f.other, item.ID)
	assert.ErrorIs(t, err, review.ErrItemNotOwned)

	f.items.countsErr = errors.New("boom")
	got, err = f.service.GetItem(ctx, f.owner, item.ID)
	require.NoError(t, err)
	assert.Empty(t, got.State.RatingCounts)
}

func TestSetArchived(t *testing.T) {
	t.Parallel()
	f := newFixture(t)
	ctx := context.Background()
	item := f.create(t, f.owner, "sol")

	require.NoError(t, f.service.SetArchived(ctx, f.owner, item.ID, true))
	require.NoError(t, f.service.SetArchived(ctx, f.owner, item.ID, true), "archiving twice succeeds")
	assert.True(t, f.reload(t, item.ID).State.IsArchived)

	due, err := f.service.DueItems(ctx, f.owner, "Vocabulary")
	require.NoError(t, err)
	assert.Empty(t, due)

	err = f.service.SetArchived(ctx, f.other, item.ID, false)
	assert.ErrorIs(t, err, review.ErrItemNotOwned)
	assert.True(t, f.reload(t, item.ID).State.IsArchived)

	err = f.service.SetArchived(ctx, f.owner, uuid.New(), true)
	assert.ErrorIs(t, err, review.ErrItemNotFound)

	require.NoError(t, f.service.SetArchived(ctx, f.owner, item.ID, false))
	due, err = f.service.DueItems(ctx, f.owner, "Vocabulary")
	require.NoError(t, err)
	require.Len(t, due, 1)
	assert.Equal(t, item.ID, due[0].ID)
}

func TestBulkUnarchive(t *testing.T) {
	t.Parallel()
	f := newFixture(t)
	ctx := context.Background()

	a := f.create(t, f.owner, "uno")
	b := f.create(t, f.owner, "dos")
	active := f.create(t, f.owner, "tres")
	foreign := f.create(t, f.other, "cuatro")
	for _, it := range []*domain.Item{a, b, foreign} {
		require.NoError(t, f.service.SetArchived(ctx, it.OwnerID, it.ID, true))
	}

	n, err := f.service.BulkUnarchive(ctx, f.owner, []uuid.UUID{a.ID, b.ID, active.ID, foreign.ID, uuid.New()})
	require.NoError(t, err)
	assert.Equal(t, 2, n)
	assert.True(t, f.reload(t, foreign.ID).State.IsArchived)

	n, err = f.service.BulkUnarchive(ctx, f.owner, nil)
	require.NoError(t, err)
	assert.Zero(t, n)
}

func TestListArchived(t *testing.T) {
	t.Parallel()
	f := newFixture(t)
	ctx := context.Background()

	empty, err := f.service.ListArchived(ctx, f.owner, 1, "")
	require.NoError(t, err)
	assert.NotNil(t, empty.Items)
	assert.Empty(t, empty.Items)
	assert.Equal(t, 1, empty.TotalPages)

	for i := 0; i < 17; i++ {
		it := f.create(t, f.owner, fmt.Sprintf("palabra %02d", i))
		require.NoError(t, f.service.SetArchived(ctx, f.owner, it.ID, true))
	}

	page, err := f.service.ListArchived(ctx, f.owner, 0, "")
	require.NoError(t, err)
	assert.Equal(t, 1, page.Page, "pages below 1 are coerced")
	assert.Len(t, page.Items, domain.ArchivedPerPage)
	assert.Equal(t, 17, page.TotalCount)
	assert.Equal(t, 3, page.TotalPages)

	last, err := f.service.ListArchived(ctx, f.owner, 3, "")
	require.NoError(t, err)
	assert.Len(t, last.Items, 1)

	beyond, err := f.service.ListArchived(ctx, f.owner, math.MaxInt/domain.ArchivedPerPage+2, "")
	require.NoError(t, err, "pages past the end are empty, not failures")
	assert.NotNil(t, beyond.Items)
	assert.Empty(t, beyond.Items)
	assert.Equal(t, 17, beyond.TotalCount)

	search, err := f.service.ListArchived(ctx, f.owner, 1, "  PALABRA 1 ")
	require.NoError(t, err)
	assert.Equal(t, "PALABRA 1", search.Search)
	assert.Equal(t, 7, search.TotalCount)
}

func TestSampleArchived(t *testing.T) {
	t.Parallel()
	f := newFixture(t)
	ctx := context.Background()

	for _, count := range []int{0, -3, 101} {
		_, err := f.service.SampleArchived(ctx, f.owner, count)
		assert.ErrorIs(t, err, review.ErrInvalidCount, "count %d", count)
	}

	ids := map[uuid.UUID]bool{}
	for i := 0; i < 5; i++ {
		it := f.create(t, f.owner, fmt.Sprintf("muestra %d", i))
		require.NoError(t, f.service.SetArchived(ctx, f.owner, it.ID, true))
		ids[it.ID] = true
	}

	sample, err := f.service.SampleArchived(ctx, f.owner, 3)
	require.NoError(t, err)
	require.Len(t, sample, 3)
	seen := map[uuid.UUID]bool{}
	for _, it := range sample {
		assert.True(t, ids[it.ID])
		assert.False(t, seen[it.ID], "sampled without replacement")
		seen[it.ID] = true
	}

	all, err := f.service.SampleArchived(ctx, f.owner, 100)
	require.NoError(t, err)
	assert.Len(t, all, 5)
}

func TestFlip(t *testing.T) {
	t.Parallel()
	f := newFixture(t)
	ctx := context.Background()
	item := f.create(t, f.owner, "luna")

	ok, err := f.service.Flip(ctx, f.owner, item.ID)
	require.NoError(t, err)
	assert.True(t, ok)
	assert.Equal(t, 1, f.reload(t, item.ID).State.FlipCount)

	_, err = f.service.Flip(ctx, f.other, item.ID)
	assert.ErrorIs(t, err, review.ErrItemNotOwned)

	_, err = f.service.Flip(ctx, f.owner, uuid.New())
	assert.ErrorIs(t, err, review.ErrItemNotFound)

	f.items.incrementErr = errors.New("locked")
	ok, err = f.service.Flip(ctx, f.owner, item.ID)
	require.NoError(t, err)
	assert.False(t, ok)
	assert.True(t, f.logs.HasMessage(slog.LevelWarn, "failed to increment flip count"))
}

func TestCreateItem(t *testing.T) {
	t.Parallel()
	f := newFixture(t)
	ctx := context.Background()

	item, err := f.service.CreateItem(ctx, f.owner, review.NewItemInput{
		Front:        " el perro ",
		Back:         "the dog",
		Category:     "Animals",
		ExampleFront: "El perro ladra.",
		ExampleBack:  "The dog barks.",
	})
	require.NoError(t, err)
	assert.Equal(t, "el perro", item.Front)
	assert.Equal(t, today, item.State.NextReviewDate)

	got, err := f.service.GetItem(ctx, f.owner, item.ID)
	require.NoError(t, err)
	assert.Equal(t, "The dog barks.", got.ExampleBack)

	categories, err := f.service.Categories(ctx, f.owner)
	require.NoError(t, err)
	assert.Equal(t, []string{"Animals"}, categories)

	_, err = f.service.CreateItem(ctx, f.owner, review.NewItemInput{Front: "x", Category: "Animals"})
	assert.ErrorIs(t, err, domain.ErrValidation)
	assert.ErrorIs(t, err, domain.ErrItemBackEmpty)
}

func TestTodayUsesConfiguredLocation(t *testing.T) {
	t.Parallel()
	db := testdb.NewSQLiteDB(t)
	late := time.Date(2026, time.May, 20, 23, 30, 0, 0, time.UTC)
	svc := review.NewReviewService(sqlite.NewSQLiteItemStore(db, nil), srs.NewDefaultScheduler(), nil,
		review.WithClock(func() time.Time { return late }),
		review.WithLocation(time.FixedZone("UTC+9", 9*60*60)))

	item, err := svc.CreateItem(context.Background(), uuid.New(), review.NewItemInput{
		Front: "mañana", Back: "tomorrow", Category: "Time",
	})
	require.NoError(t, err)
	assert.Equal(t, domain.NewDate(2026, time.May, 21), item.State.NextReviewDate)
}

func TestUpdateBackAndDelete(t *testing.T) {
	t.Parallel()
	f := newFixture(t)
	ctx := context.Background()
	item := f.create(t, f.owner, "rojo")

	updated, err := f.service.UpdateBack(ctx, f.owner, item.ID, " red ")
	require.NoError(t, err)
	assert.Equal(t, "red", updated.Back)
	assert.Equal(t, "red", f.reload(t, item.ID).Back)

	_, err = f.service.UpdateBack(ctx, f.owner, item.ID, "   ")
	assert.ErrorIs(t, err, domain.ErrValidation)

	_, err = f.service.UpdateBack(ctx, f.other, item.ID, "blue")
	assert.ErrorIs(t, err, review.ErrItemNotOwned)

	assert.ErrorIs(t, f.service.DeleteItem(ctx, f.other, item.ID), review.ErrItemNotOwned)
	require.NoError(t, f.service.DeleteItem(ctx, f.owner, item.ID))
	assert.ErrorIs(t, f.service.DeleteItem(ctx, f.owner, item.ID), review.ErrItemNotFound)

	_, err = f.items.GetByID(ctx, item.ID)
	assert.ErrorIs(t, err, store.ErrNotFound)
}
