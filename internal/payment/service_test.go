package payment_test

import (
	"context"
	"testing"
	"time"

	"github.com/gofrs/uuid"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/lara-shop/lara-api/internal/order"
	"github.com/lara-shop/lara-api/internal/payment"
)

type MockPaymentRepository struct {
	mock.Mock
}

func (m *MockPaymentRepository) Create(ctx context.Context, p *payment.Payment) error {
	args := m.Called(ctx, p)
	return args.Error(0)
}

func (m *MockPaymentRepository) GetByOrder(ctx context.Context, orderID uuid.UUID) (*payment.Payment, error) {
	args := m.Called(ctx, orderID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*payment.Payment), args.Error(1)
}

type MockOrders struct {
	mock.Mock
}

func (m *MockOrders) GetByID(ctx context.Context, id uuid.UUID) (*order.Order, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*order.Order), args.Error(1)
}

func (m *MockOrders) SetPaid(ctx context.Context, id uuid.UUID, paidAt time.Time) error {
	args := m.Called(ctx, id, paidAt)
	return args.Error(0)
}

func unpaidOrder(buyerID uuid.UUID) *order.Order {
	return &order.Order{
		ID:         uuid.Must(uuid.NewV4()),
		UserID:     buyerID,
		TotalPrice: 132,
	}
}

func TestPaymentService_Verify_MarksPaidAndRecords(t *testing.T) {
	mockRepo := new(MockPaymentRepository)
	mockOrders := new(MockOrders)
	service := payment.NewService(mockRepo, mockOrders)
	buyerID := uuid.Must(uuid.NewV4())
	o := unpaidOrder(buyerID)

	mockOrders.On("GetByID", mock.Anything, o.ID).Return(o, nil).Once()
	mockOrders.On("SetPaid", mock.Anything, o.ID, mock.AnythingOfType("time.Time")).Return(nil).Once()
	mockRepo.On("Create", mock.Anything, mock.AnythingOfType("*payment.Payment")).
		Run(func(args mock.Arguments) {
			p := args.Get(1).(*payment.Payment)
			require.Equal(t, o.ID, p.OrderID)
			require.Equal(t, buyerID, p.UserID)
			require.Equal(t, "pi_123", p.ProviderID)
			require.InDelta(t, 132.0, p.Amount, 1e-9)
			require.Equal(t, payment.StatusSucceeded, p.Status)
		}).
		Return(nil).Once()

	paid, err := service.Verify(context.Background(), o.ID, buyerID, payment.VerifyInput{ProviderID: "pi_123", Method: "card"})

	require.NoError(t, err)
	require.True(t, paid.IsPaid)
	require.NotNil(t, paid.PaidAt)
	mockRepo.AssertExpectations(t)
	mockOrders.AssertExpectations(t)
}

// Verifying an already-paid order succeeds without touching anything:
// no second paid-at, no duplicate payment row.
func TestPaymentService_Verify_Idempotent(t *testing.T) {
	mockRepo := new(MockPaymentRepository)
	mockOrders := new(MockOrders)
	service := payment.NewService(mockRepo, mockOrders)
	buyerID := uuid.Must(uuid.NewV4())

	paidAt := time.Now().Add(-time.Hour).UTC()
	o := unpaidOrder(buyerID)
	o.IsPaid = true
	o.PaidAt = &paidAt

	mockOrders.On("GetByID", mock.Anything, o.ID).Return(o, nil).Once()

	result, err := service.Verify(context.Background(), o.ID, buyerID, payment.VerifyInput{ProviderID: "pi_again", Method: "card"})

	require.NoError(t, err)
	require.True(t, result.IsPaid)
	require.Equal(t, paidAt, *result.PaidAt)
	mockOrders.AssertNotCalled(t, "SetPaid", mock.Anything, mock.Anything, mock.Anything)
	mockRepo.AssertNotCalled(t, "Create", mock.Anything, mock.Anything)
}

// A concurrent verify losing the guarded update race is treated the
// same as the idempotent replay.
func TestPaymentService_Verify_RaceFallsBackToReload(t *testing.T) {
	mockRepo := new(MockPaymentRepository)
	mockOrders := new(MockOrders)
	service := payment.NewService(mockRepo, mockOrders)
	buyerID := uuid.Must(uuid.NewV4())
	o := unpaidOrder(buyerID)

	paidAt := time.Now().UTC()
	settled := *o
	settled.IsPaid = true
	settled.PaidAt = &paidAt

	mockOrders.On("GetByID", mock.Anything, o.ID).Return(o, nil).Once()
	mockOrders.On("SetPaid", mock.Anything, o.ID, mock.Anything).Return(order.ErrAlreadyPaid).Once()
	mockOrders.On("GetByID", mock.Anything, o.ID).Return(&settled, nil).Once()

	result, err := service.Verify(context.Background(), o.ID, buyerID, payment.VerifyInput{ProviderID: "pi_race", Method: "card"})

	require.NoError(t, err)
	require.True(t, result.IsPaid)
	mockRepo.AssertNotCalled(t, "Create", mock.Anything, mock.Anything)
}

func TestPaymentService_Verify_NotOwnerForbidden(t *testing.T) {
	mockRepo := new(MockPaymentRepository)
	mockOrders := new(MockOrders)
	service := payment.NewService(mockRepo, mockOrders)
	o := unpaidOrder(uuid.Must(uuid.NewV4()))

	mockOrders.On("GetByID", mock.Anything, o.ID).Return(o, nil).Once()

	_, err := service.Verify(context.Background(), o.ID, uuid.Must(uuid.NewV4()), payment.VerifyInput{ProviderID: "pi_x", Method: "card"})

	require.ErrorIs(t, err, payment.ErrForbidden)
}

func TestPaymentService_CreateIntent_AlreadyPaidRejected(t *testing.T) {
	mockRepo := new(MockPaymentRepository)
	mockOrders := new(MockOrders)
	service := payment.NewService(mockRepo, mockOrders)
	buyerID := uuid.Must(uuid.NewV4())
	o := unpaidOrder(buyerID)
	o.IsPaid = true

	mockOrders.On("GetByID", mock.Anything, o.ID).Return(o, nil).Once()

	_, err := service.CreateIntent(context.Background(), o.ID, buyerID)

	require.ErrorIs(t, err, order.ErrAlreadyPaid)
}

func TestPaymentService_CreateIntent_Success(t *testing.T) {
	mockRepo := new(MockPaymentRepository)
	mockOrders := new(MockOrders)
	service := payment.NewService(mockRepo, mockOrders)
	buyerID := uuid.Must(uuid.NewV4())
	o := unpaidOrder(buyerID)

	mockOrders.On("GetByID", mock.Anything, o.ID).Return(o, nil).Once()

	intent, err := service.CreateIntent(context.Background(), o.ID, buyerID)

	require.NoError(t, err)
	require.Equal(t, o.ID, intent.OrderID)
	require.NotEmpty(t, intent.ClientSecret)
	require.InDelta(t, 132.0, intent.Amount, 1e-9)
}

func TestPaymentService_ConfirmCOD_RecordsPending(t *testing.T) {
	mockRepo := new(MockPaymentRepository)
	mockOrders := new(MockOrders)
	service := payment.NewService(mockRepo, mockOrders)
	buyerID := uuid.Must(uuid.NewV4())
	o := unpaidOrder(buyerID)

	mockOrders.On("GetByID", mock.Anything, o.ID).Return(o, nil).Once()
	mockRepo.On("Create", mock.Anything, mock.AnythingOfType("*payment.Payment")).
		Run(func(args mock.Arguments) {
			p := args.Get(1).(*payment.Payment)
			require.Equal(t, payment.StatusPending, p.Status)
			require.Equal(t, buyerID, p.UserID)
			require.Equal(t, "COD", p.Method)
		}).
		Return(nil).Once()

	result, err := service.ConfirmCOD(context.Background(), o.ID, buyerID)

	require.NoError(t, err)
	require.False(t, result.IsPaid)
	mockOrders.AssertNotCalled(t, "SetPaid", mock.Anything, mock.Anything, mock.Anything)
}

func TestPaymentService_MarkPaid_Idempotent(t *testing.T) {
	mockRepo := new(MockPaymentRepository)
	mockOrders := new(MockOrders)
	service := payment.NewService(mockRepo, mockOrders)
	o := unpaidOrder(uuid.Must(uuid.NewV4()))
	o.IsPaid = true

	mockOrders.On("GetByID", mock.Anything, o.ID).Return(o, nil).Once()

	result, err := service.MarkPaid(context.Background(), o.ID)

	require.NoError(t, err)
	require.True(t, result.IsPaid)
	mockOrders.AssertNotCalled(t, "SetPaid", mock.Anything, mock.Anything, mock.Anything)
}
