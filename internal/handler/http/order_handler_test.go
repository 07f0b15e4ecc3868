package http_test

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/go-chi/chi/v5"
	"github.com/gofrs/uuid"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/lara-shop/lara-api/internal/auth"
	apihttp "github.com/lara-shop/lara-api/internal/handler/http"
	"github.com/lara-shop/lara-api/internal/order"
	"github.com/lara-shop/lara-api/internal/product"
)

type MockOrderService struct {
	mock.Mock
}

func (m *MockOrderService) Create(ctx context.Context, input order.CreateInput, buyerID uuid.UUID) (*order.Order, error) {
	args := m.Called(ctx, input, buyerID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*order.Order), args.Error(1)
}

func (m *MockOrderService) GetByID(ctx context.Context, id uuid.UUID, actorID uuid.UUID, actorIsAdmin bool) (*order.Order, error) {
	args := m.Called(ctx, id, actorID, actorIsAdmin)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*order.Order), args.Error(1)
}

func (m *MockOrderService) ListMine(ctx context.Context, userID uuid.UUID) ([]order.Order, error) {
	args := m.Called(ctx, userID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]order.Order), args.Error(1)
}

func (m *MockOrderService) ListAll(ctx context.Context) ([]order.Order, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]order.Order), args.Error(1)
}

func (m *MockOrderService) ListVendor(ctx context.Context, vendorID uuid.UUID) ([]order.Order, error) {
	args := m.Called(ctx, vendorID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]order.Order), args.Error(1)
}

func (m *MockOrderService) UpdateLineStatus(ctx context.Context, orderID, lineID uuid.UUID, status order.Status, actorID uuid.UUID, actorIsAdmin bool) (*order.Order, error) {
	args := m.Called(ctx, orderID, lineID, status, actorID, actorIsAdmin)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*order.Order), args.Error(1)
}

func (m *MockOrderService) Cancel(ctx context.Context, orderID uuid.UUID, actorID uuid.UUID) (*order.Order, error) {
	args := m.Called(ctx, orderID, actorID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*order.Order), args.Error(1)
}

func (m *MockOrderService) MarkDelivered(ctx context.Context, orderID uuid.UUID) (*order.Order, error) {
	args := m.Called(ctx, orderID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*order.Order), args.Error(1)
}

func (m *MockOrderService) Invoice(ctx context.Context, orderID uuid.UUID, actorID uuid.UUID, actorIsAdmin bool) (string, error) {
	args := m.Called(ctx, orderID, actorID, actorIsAdmin)
	return args.String(0), args.Error(1)
}

func newOrderRouter(service order.Service) (chi.Router, *auth.Principal) {
	router := chi.NewRouter()
	handler := apihttp.NewOrderHandler(service)
	handler.RegisterProtectedRoutes(router)
	handler.RegisterVendorRoutes(router)
	handler.RegisterAdminRoutes(router)

	p := &auth.Principal{
		ID:    uuid.Must(uuid.NewV4()),
		Name:  "Test Buyer",
		Email: "buyer@example.com",
	}
	return router, p
}

func doRequest(router chi.Router, p *auth.Principal, method, target string, body any) *httptest.ResponseRecorder {
	var buf bytes.Buffer
	if body != nil {
		_ = json.NewEncoder(&buf).Encode(body)
	}
	req := httptest.NewRequest(method, target, &buf)
	req = req.WithContext(auth.WithPrincipal(req.Context(), p))
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)
	return rec
}

func TestOrderHandler_Create_Success(t *testing.T) {
	mockService := new(MockOrderService)
	router, p := newOrderRouter(mockService)

	productID := uuid.Must(uuid.NewV4())
	body := map[string]any{
		"order_items": []map[string]any{
			{"product_id": productID, "size": "100ml", "quantity": 2},
		},
		"shipping_address": map[string]any{
			"address": "1 Rose St", "city": "Dubai", "postal_code": "0000", "country": "AE",
		},
		"payment_method": "card",
	}

	created := &order.Order{
		ID:         uuid.Must(uuid.NewV4()),
		UserID:     p.ID,
		Status:     order.StatusProcessing,
		TotalPrice: 132,
	}
	mockService.On("Create", mock.Anything, mock.MatchedBy(func(input order.CreateInput) bool {
		return len(input.Lines) == 1 &&
			input.Lines[0].ProductID == productID &&
			input.Lines[0].Size == product.Size100ml &&
			input.Lines[0].Quantity == 2 &&
			input.PaymentMethod == "card"
	}), p.ID).Return(created, nil).Once()

	rec := doRequest(router, p, http.MethodPost, "/orders", body)

	require.Equal(t, http.StatusCreated, rec.Code)

	var resp struct {
		Success bool        `json:"success"`
		Data    order.Order `json:"data"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	require.True(t, resp.Success)
	require.Equal(t, created.ID, resp.Data.ID)
	mockService.AssertExpectations(t)
}

func TestOrderHandler_Create_EmptyItemsRejectedByValidation(t *testing.T) {
	mockService := new(MockOrderService)
	router, p := newOrderRouter(mockService)

	body := map[string]any{
		"order_items": []map[string]any{},
		"shipping_address": map[string]any{
			"address": "1 Rose St", "city": "Dubai", "postal_code": "0000", "country": "AE",
		},
		"payment_method": "card",
	}

	rec := doRequest(router, p, http.MethodPost, "/orders", body)

	require.Equal(t, http.StatusBadRequest, rec.Code)
	mockService.AssertNotCalled(t, "Create", mock.Anything, mock.Anything, mock.Anything)
}

func TestOrderHandler_Create_InsufficientStockMapsTo400(t *testing.T) {
	mockService := new(MockOrderService)
	router, p := newOrderRouter(mockService)

	body := map[string]any{
		"order_items": []map[string]any{
			{"product_id": uuid.Must(uuid.NewV4()), "size": "100ml", "quantity": 2},
		},
		"shipping_address": map[string]any{
			"address": "1 Rose St", "city": "Dubai", "postal_code": "0000", "country": "AE",
		},
		"payment_method": "card",
	}

	mockService.On("Create", mock.Anything, mock.Anything, p.ID).
		Return(nil, order.ErrInsufficientStock).Once()

	rec := doRequest(router, p, http.MethodPost, "/orders", body)

	require.Equal(t, http.StatusBadRequest, rec.Code)

	var resp struct {
		Success bool   `json:"success"`
		Message string `json:"message"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	require.False(t, resp.Success)
	require.Contains(t, resp.Message, "insufficient stock")
}

func TestOrderHandler_Cancel_ForbiddenMapsTo403(t *testing.T) {
	mockService := new(MockOrderService)
	router, p := newOrderRouter(mockService)
	orderID := uuid.Must(uuid.NewV4())

	mockService.On("Cancel", mock.Anything, orderID, p.ID).
		Return(nil, order.ErrForbidden).Once()

	rec := doRequest(router, p, http.MethodPost, "/orders/"+orderID.String()+"/cancel", nil)

	require.Equal(t, http.StatusForbidden, rec.Code)
}

func TestOrderHandler_UpdateLineStatus_InvalidUUID(t *testing.T) {
	mockService := new(MockOrderService)
	router, p := newOrderRouter(mockService)

	rec := doRequest(router, p, http.MethodPut, "/orders/not-a-uuid/items/also-bad/status",
		map[string]any{"status": "Shipped"})

	require.Equal(t, http.StatusBadRequest, rec.Code)
	mockService.AssertNotCalled(t, "UpdateLineStatus",
		mock.Anything, mock.Anything, mock.Anything, mock.Anything, mock.Anything, mock.Anything)
}

func TestOrderHandler_GetByID_NotFoundMapsTo404(t *testing.T) {
	mockService := new(MockOrderService)
	router, p := newOrderRouter(mockService)
	orderID := uuid.Must(uuid.NewV4())

	mockService.On("GetByID", mock.Anything, orderID, p.ID, false).
		Return(nil, order.ErrOrderNotFound).Once()

	rec := doRequest(router, p, http.MethodGet, "/orders/"+orderID.String(), nil)

	require.Equal(t, http.StatusNotFound, rec.Code)
}

func TestOrderHandler_Invoice_PlainText(t *testing.T) {
	mockService := new(MockOrderService)
	router, p := newOrderRouter(mockService)
	orderID := uuid.Must(uuid.NewV4())

	mockService.On("Invoice", mock.Anything, orderID, p.ID, false).
		Return("INVOICE #"+orderID.String()+"\nTotal: $43.00\n", nil).Once()

	rec := doRequest(router, p, http.MethodGet, "/orders/"+orderID.String()+"/invoice", nil)

	require.Equal(t, http.StatusOK, rec.Code)
	require.Contains(t, rec.Header().Get("Content-Type"), "text/plain")
	require.Contains(t, rec.Body.String(), "Total: $43.00")
}
