package mocks

import (
	"context"

	"github.com/google/uuid"
	"github.com/phrazzld/scry-srs/internal/domain"
	"github.com/phrazzld/scry-srs/internal/service/review"
	"github.com/stretchr/testify/mock"
)

// MockReviewService implements review.ReviewService with testify/mock.
//
//	svc := new(mocks.MockReviewService)
//	svc.On("Rate", mock.Anything, owner, id, domain.RatingEasy).Return(item, nil)
type MockReviewService struct {
	mock.Mock
}

var _ review.ReviewService = (*MockReviewService)(nil)

func (m *MockReviewService) Rate(
	ctx context.Context,
	ownerID, itemID uuid.UUID,
	rating domain.Rating,
) (*domain.Item, error) {
	args := m.Called(ctx, ownerID, itemID, rating)
	return item(args, 0), args.Error(1)
}

func (m *MockReviewService) SetArchived(ctx context.Context, ownerID, itemID uuid.UUID, archived bool) error {
	args := m.Called(ctx, ownerID, itemID, archived)
	return args.Error(0)
}

func (m *MockReviewService) BulkUnarchive(ctx context.Context, ownerID uuid.UUID, itemIDs []uuid.UUID) (int, error) {
	args := m.Called(ctx, ownerID, itemIDs)
	return args.Int(0), args.Error(1)
}

func (m *MockReviewService) Categories(ctx context.Context, ownerID uuid.UUID) ([]string, error) {
	args := m.Called(ctx, ownerID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]string), args.Error(1)
}

func (m *MockReviewService) DueItems(ctx context.Context, ownerID uuid.UUID, category string) ([]*domain.Item, error) {
	args := m.Called(ctx, ownerID, category)
	return items(args, 0), args.Error(1)
}

func (m *MockReviewService) CreateItem(
	ctx context.Context,
	ownerID uuid.UUID,
	input review.NewItemInput,
) (*domain.Item, error) {
	args := m.Called(ctx, ownerID, input)
	return item(args, 0), args.Error(1)
}

func (m *MockReviewService) GetItem(ctx context.Context, ownerID, itemID uuid.UUID) (*domain.Item, error) {
	args := m.Called(ctx, ownerID, itemID)
	return item(args, 0), args.Error(1)
}

func (m *MockReviewService) ListArchived(
	ctx context.Context,
	ownerID uuid.UUID,
	page int,
	search string,
) (*domain.ArchivedPage, error) {
	args := m.Called(ctx, ownerID, page, search)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.ArchivedPage), args.Error(1)
}

func (m *MockReviewService) SampleArchived(ctx context.Context, ownerID uuid.UUID, count int) ([]*domain.Item, error) {
	args := m.Called(ctx, ownerID, count)
	return items(args, 0), args.Error(1)
}

func (m *MockReviewService) Flip(ctx context.Context, ownerID, itemID uuid.UUID) (bool, error) {
	args := m.Called(ctx, ownerID, itemID)
	return args.Bool(0), args.Error(1)
}

func (m *MockReviewService) UpdateBack(
	ctx context.Context,
	ownerID, itemID uuid.UUID,
	back string,
) (*domain.Item, error) {
	args := m.Called(ctx, ownerID, itemID, back)
	return item(args, 0), args.Error(1)
}

func (m *MockReviewService) DeleteItem(ctx context.Context, ownerID, itemID uuid.UUID) error {
	args := m.Called(ctx, ownerID, itemID)
	return args.Error(0)
}

func item(args mock.Arguments, i int) *domain.Item {
	if args.Get(i) == nil {
		return nil
	}
	return args.Get(i).(*domain.Item)
}

func items(args mock.Arguments, i int) []*domain.Item {
	if args.Get(i) == nil {
		return nil
	}
	return args.Get(i).([]*domain.Item)
}
