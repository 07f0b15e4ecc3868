package review_test

import (
	"context"
	"testing"

	"github.com/gofrs/uuid"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/lara-shop/lara-api/internal/product"
	"github.com/lara-shop/lara-api/internal/review"
)

type MockReviewRepository struct {
	mock.Mock
}

func (m *MockReviewRepository) Create(ctx context.Context, rev *review.Review) error {
	args := m.Called(ctx, rev)
	return args.Error(0)
}

func (m *MockReviewRepository) GetByID(ctx context.Context, id uuid.UUID) (*review.Review, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*review.Review), args.Error(1)
}

func (m *MockReviewRepository) ListByProduct(ctx context.Context, productID uuid.UUID) ([]review.Review, error) {
	args := m.Called(ctx, productID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]review.Review), args.Error(1)
}

func (m *MockReviewRepository) Delete(ctx context.Context, id uuid.UUID) error {
	args := m.Called(ctx, id)
	return args.Error(0)
}

func (m *MockReviewRepository) Aggregate(ctx context.Context, productID uuid.UUID) (float64, int, error) {
	args := m.Called(ctx, productID)
	return args.Get(0).(float64), args.Int(1), args.Error(2)
}

type MockReviewCatalog struct {
	mock.Mock
}

func (m *MockReviewCatalog) GetByID(ctx context.Context, id uuid.UUID) (*product.Product, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*product.Product), args.Error(1)
}

func (m *MockReviewCatalog) UpdateRating(ctx context.Context, productID uuid.UUID, rating float64, numReviews int) error {
	args := m.Called(ctx, productID, rating, numReviews)
	return args.Error(0)
}

func TestReviewService_Create_RecomputesRating(t *testing.T) {
	mockRepo := new(MockReviewRepository)
	mockCatalog := new(MockReviewCatalog)
	service := review.NewService(mockRepo, mockCatalog)

	productID := uuid.Must(uuid.NewV4())
	userID := uuid.Must(uuid.NewV4())

	mockCatalog.On("GetByID", mock.Anything, productID).
		Return(&product.Product{ID: productID}, nil).Once()
	mockRepo.On("Create", mock.Anything, mock.AnythingOfType("*review.Review")).Return(nil).Once()
	mockRepo.On("Aggregate", mock.Anything, productID).Return(4.5, 2, nil).Once()
	mockCatalog.On("UpdateRating", mock.Anything, productID, 4.5, 2).Return(nil).Once()

	created, err := service.Create(context.Background(), productID, userID, "Dana", review.CreateInput{Rating: 5, Comment: "Lovely"})

	require.NoError(t, err)
	require.Equal(t, "Dana", created.UserName)
	mockCatalog.AssertExpectations(t)
}

func TestReviewService_Create_RatingBounds(t *testing.T) {
	service := review.NewService(new(MockReviewRepository), new(MockReviewCatalog))

	for _, rating := range []int{0, 6, -1} {
		_, err := service.Create(context.Background(), uuid.Must(uuid.NewV4()), uuid.Must(uuid.NewV4()), "Dana", review.CreateInput{Rating: rating, Comment: "x"})
		require.ErrorIs(t, err, review.ErrInvalidRating)
	}
}

func TestReviewService_Create_DuplicateRejected(t *testing.T) {
	mockRepo := new(MockReviewRepository)
	mockCatalog := new(MockReviewCatalog)
	service := review.NewService(mockRepo, mockCatalog)

	productID := uuid.Must(uuid.NewV4())
	mockCatalog.On("GetByID", mock.Anything, productID).
		Return(&product.Product{ID: productID}, nil).Once()
	mockRepo.On("Create", mock.Anything, mock.Anything).Return(review.ErrAlreadyReviewed).Once()

	_, err := service.Create(context.Background(), productID, uuid.Must(uuid.NewV4()), "Dana", review.CreateInput{Rating: 4, Comment: "again"})

	require.ErrorIs(t, err, review.ErrAlreadyReviewed)
	mockCatalog.AssertNotCalled(t, "UpdateRating", mock.Anything, mock.Anything, mock.Anything, mock.Anything)
}

func TestReviewService_Create_UnknownProduct(t *testing.T) {
	mockRepo := new(MockReviewRepository)
	mockCatalog := new(MockReviewCatalog)
	service := review.NewService(mockRepo, mockCatalog)

	productID := uuid.Must(uuid.NewV4())
	mockCatalog.On("GetByID", mock.Anything, productID).Return(nil, product.ErrNotFound).Once()

	_, err := service.Create(context.Background(), productID, uuid.Must(uuid.NewV4()), "Dana", review.CreateInput{Rating: 4, Comment: "x"})

	require.ErrorIs(t, err, review.ErrProductNotFound)
}

func TestReviewService_Delete_OwnerAllowed(t *testing.T) {
	mockRepo := new(MockReviewRepository)
	mockCatalog := new(MockReviewCatalog)
	service := review.NewService(mockRepo, mockCatalog)

	ownerID := uuid.Must(uuid.NewV4())
	rev := &review.Review{
		ID:        uuid.Must(uuid.NewV4()),
		ProductID: uuid.Must(uuid.NewV4()),
		UserID:    ownerID,
	}

	mockRepo.On("GetByID", mock.Anything, rev.ID).Return(rev, nil).Once()
	mockRepo.On("Delete", mock.Anything, rev.ID).Return(nil).Once()
	mockRepo.On("Aggregate", mock.Anything, rev.ProductID).Return(0.0, 0, nil).Once()
	mockCatalog.On("UpdateRating", mock.Anything, rev.ProductID, 0.0, 0).Return(nil).Once()

	err := service.Delete(context.Background(), rev.ID, ownerID, false)

	require.NoError(t, err)
	mockRepo.AssertExpectations(t)
}

func TestReviewService_Delete_StrangerForbidden(t *testing.T) {
	mockRepo := new(MockReviewRepository)
	mockCatalog := new(MockReviewCatalog)
	service := review.NewService(mockRepo, mockCatalog)

	rev := &review.Review{
		ID:        uuid.Must(uuid.NewV4()),
		ProductID: uuid.Must(uuid.NewV4()),
		UserID:    uuid.Must(uuid.NewV4()),
	}

	mockRepo.On("GetByID", mock.Anything, rev.ID).Return(rev, nil).Once()

	err := service.Delete(context.Background(), rev.ID, uuid.Must(uuid.NewV4()), false)

	require.ErrorIs(t, err, review.ErrForbidden)
	mockRepo.AssertNotCalled(t, "Delete", mock.Anything, mock.Anything)
}
