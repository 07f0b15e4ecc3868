package cart_test

import (
	"context"
	"testing"

	"github.com/gofrs/uuid"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/lara-shop/lara-api/internal/cart"
	"github.com/lara-shop/lara-api/internal/product"
)

type MockCartRepository struct {
	mock.Mock
}

func (m *MockCartRepository) Upsert(ctx context.Context, userID, productID uuid.UUID, size product.Size, quantity int) error {
	args := m.Called(ctx, userID, productID, size, quantity)
	return args.Error(0)
}

func (m *MockCartRepository) List(ctx context.Context, userID uuid.UUID) ([]cart.Item, error) {
	args := m.Called(ctx, userID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]cart.Item), args.Error(1)
}

func (m *MockCartRepository) SetQuantity(ctx context.Context, userID, itemID uuid.UUID, quantity int) error {
	args := m.Called(ctx, userID, itemID, quantity)
	return args.Error(0)
}

func (m *MockCartRepository) Delete(ctx context.Context, userID, itemID uuid.UUID) error {
	args := m.Called(ctx, userID, itemID)
	return args.Error(0)
}

func (m *MockCartRepository) Clear(ctx context.Context, userID uuid.UUID) error {
	args := m.Called(ctx, userID)
	return args.Error(0)
}

func (m *MockCartRepository) Replace(ctx context.Context, userID uuid.UUID, items []cart.Item) error {
	args := m.Called(ctx, userID, items)
	return args.Error(0)
}

type MockCartCatalog struct {
	mock.Mock
}

func (m *MockCartCatalog) GetByID(ctx context.Context, id uuid.UUID) (*product.Product, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*product.Product), args.Error(1)
}

func (m *MockCartCatalog) GetByIDs(ctx context.Context, ids []uuid.UUID) ([]product.Product, error) {
	args := m.Called(ctx, ids)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]product.Product), args.Error(1)
}

func cartProduct() *product.Product {
	return &product.Product{
		ID:    uuid.Must(uuid.NewV4()),
		Title: "Citrus Bloom",
		Image: "citrus.jpg",
		Variants: []product.Variant{
			{Size: product.Size50ml, Price: 35, Stock: 3},
		},
	}
}

func TestCartService_Add_Success(t *testing.T) {
	mockRepo := new(MockCartRepository)
	mockCatalog := new(MockCartCatalog)
	service := cart.NewService(mockRepo, mockCatalog)

	userID := uuid.Must(uuid.NewV4())
	p := cartProduct()

	mockCatalog.On("GetByID", mock.Anything, p.ID).Return(p, nil).Once()
	mockRepo.On("Upsert", mock.Anything, userID, p.ID, product.Size50ml, 2).Return(nil).Once()

	err := service.Add(context.Background(), userID, cart.AddInput{ProductID: p.ID, Size: product.Size50ml, Quantity: 2})

	require.NoError(t, err)
	mockRepo.AssertExpectations(t)
}

func TestCartService_Add_Validation(t *testing.T) {
	mockRepo := new(MockCartRepository)
	mockCatalog := new(MockCartCatalog)
	service := cart.NewService(mockRepo, mockCatalog)
	userID := uuid.Must(uuid.NewV4())
	p := cartProduct()

	err := service.Add(context.Background(), userID, cart.AddInput{ProductID: p.ID, Size: product.Size50ml, Quantity: 0})
	require.ErrorIs(t, err, cart.ErrInvalidQuantity)

	mockCatalog.On("GetByID", mock.Anything, p.ID).Return(p, nil)

	err = service.Add(context.Background(), userID, cart.AddInput{ProductID: p.ID, Size: product.Size200ml, Quantity: 1})
	require.ErrorIs(t, err, cart.ErrVariantNotFound)

	err = service.Add(context.Background(), userID, cart.AddInput{ProductID: p.ID, Size: product.Size50ml, Quantity: 10})
	require.ErrorIs(t, err, cart.ErrInsufficientStock)

	mockRepo.AssertNotCalled(t, "Upsert", mock.Anything, mock.Anything, mock.Anything, mock.Anything, mock.Anything)
}

func TestCartService_Add_UnknownProduct(t *testing.T) {
	mockRepo := new(MockCartRepository)
	mockCatalog := new(MockCartCatalog)
	service := cart.NewService(mockRepo, mockCatalog)
	missing := uuid.Must(uuid.NewV4())

	mockCatalog.On("GetByID", mock.Anything, missing).Return(nil, product.ErrNotFound).Once()

	err := service.Add(context.Background(), uuid.Must(uuid.NewV4()), cart.AddInput{ProductID: missing, Size: product.Size50ml, Quantity: 1})

	require.ErrorIs(t, err, cart.ErrProductNotFound)
}

// Reads enrich stored rows with live catalog data and drop rows whose
// product has vanished.
func TestCartService_Get_EnrichesAndDropsOrphans(t *testing.T) {
	mockRepo := new(MockCartRepository)
	mockCatalog := new(MockCartCatalog)
	service := cart.NewService(mockRepo, mockCatalog)

	userID := uuid.Must(uuid.NewV4())
	p := cartProduct()
	orphanID := uuid.Must(uuid.NewV4())

	stored := []cart.Item{
		{ID: uuid.Must(uuid.NewV4()), UserID: userID, ProductID: p.ID, Size: product.Size50ml, Quantity: 2},
		{ID: uuid.Must(uuid.NewV4()), UserID: userID, ProductID: orphanID, Size: product.Size50ml, Quantity: 1},
	}

	mockRepo.On("List", mock.Anything, userID).Return(stored, nil).Once()
	mockCatalog.On("GetByIDs", mock.Anything, []uuid.UUID{p.ID, orphanID}).
		Return([]product.Product{*p}, nil).Once()

	items, err := service.Get(context.Background(), userID)

	require.NoError(t, err)
	require.Len(t, items, 1)
	require.Equal(t, "Citrus Bloom", items[0].Title)
	require.InDelta(t, 35.0, items[0].Price, 1e-9)
}

func TestCartService_Sync_KeepsOnlyResolvableItems(t *testing.T) {
	mockRepo := new(MockCartRepository)
	mockCatalog := new(MockCartCatalog)
	service := cart.NewService(mockRepo, mockCatalog)

	userID := uuid.Must(uuid.NewV4())
	p := cartProduct()
	goneID := uuid.Must(uuid.NewV4())

	inputs := []cart.AddInput{
		{ProductID: p.ID, Size: product.Size50ml, Quantity: 1},
		{ProductID: goneID, Size: product.Size50ml, Quantity: 2},
		{ProductID: p.ID, Size: product.Size200ml, Quantity: 1},
	}

	mockCatalog.On("GetByIDs", mock.Anything, mock.Anything).
		Return([]product.Product{*p}, nil)
	mockRepo.On("Replace", mock.Anything, userID, mock.MatchedBy(func(items []cart.Item) bool {
		return len(items) == 1 && items[0].ProductID == p.ID && items[0].Size == product.Size50ml
	})).Return(nil).Once()
	mockRepo.On("List", mock.Anything, userID).Return([]cart.Item{
		{ProductID: p.ID, Size: product.Size50ml, Quantity: 1},
	}, nil).Once()

	items, err := service.Sync(context.Background(), userID, inputs)

	require.NoError(t, err)
	require.Len(t, items, 1)
	mockRepo.AssertExpectations(t)
}
