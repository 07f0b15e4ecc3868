package http

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-playground/validator/v10"
	"github.com/gofrs/uuid"

	"github.com/lara-shop/lara-api/internal/middleware"
	"github.com/lara-shop/lara-api/internal/order"
	"github.com/lara-shop/lara-api/internal/product"
)

type OrderLineRequest struct {
	ProductID uuid.UUID    `json:"product_id" validate:"required"`
	Size      product.Size `json:"size" validate:"required"`
	Quantity  int          `json:"quantity" validate:"required,gt=0"`
}

type ShippingAddressRequest struct {
	Address    string `json:"address" validate:"required"`
	City       string `json:"city" validate:"required"`
	PostalCode string `json:"postal_code" validate:"required"`
	Country    string `json:"country" validate:"required"`
}

type CreateOrderRequest struct {
	Items           []OrderLineRequest     `json:"order_items" validate:"required,min=1,dive"`
	ShippingAddress ShippingAddressRequest `json:"shipping_address" validate:"required"`
	PaymentMethod   string                 `json:"payment_method" validate:"required"`
	CouponCode      string                 `json:"coupon_code,omitempty"`
}

type UpdateLineStatusRequest struct {
	Status order.Status `json:"status" validate:"required"`
}

type OrderHandler struct {
	service  order.Service
	validate *validator.Validate
}

func NewOrderHandler(service order.Service) *OrderHandler {
	return &OrderHandler{service: service, validate: validator.New()}
}

func (h *OrderHandler) RegisterProtectedRoutes(router chi.Router) {
	router.Post("/orders", h.handleCreate)
	router.Get("/orders/mine", h.handleListMine)
	router.Get("/orders/{id}", h.handleGet)
	router.Get("/orders/{id}/invoice", h.handleInvoice)
	router.Post("/orders/{id}/cancel", h.handleCancel)
}

func (h *OrderHandler) RegisterVendorRoutes(router chi.Router) {
	router.Get("/vendor/orders", h.handleListVendor)
	router.Put("/orders/{id}/items/{itemID}/status", h.handleUpdateLineStatus)
}

func (h *OrderHandler) RegisterAdminRoutes(router chi.Router) {
	router.Get("/orders", h.handleListAll)
	router.Put("/orders/{id}/deliver", h.handleMarkDelivered)
}

func (h *OrderHandler) handleCreate(w http.ResponseWriter, r *http.Request) {
	p, ok := principal(w, r)
	if !ok {
		return
	}

	var req CreateOrderRequest
	if !decodeAndValidate(w, r, h.validate, &req) {
		return
	}

	lines := make([]order.LineInput, 0, len(req.Items))
	for _, item := range req.Items {
		lines = append(lines, order.LineInput{
			ProductID: item.ProductID,
			Size:      item.Size,
			Quantity:  item.Quantity,
		})
	}
	input := order.CreateInput{
		Lines: lines,
		ShippingAddress: order.ShippingAddress{
			Address:    req.ShippingAddress.Address,
			City:       req.ShippingAddress.City,
			PostalCode: req.ShippingAddress.PostalCode,
			Country:    req.ShippingAddress.Country,
		},
		PaymentMethod: req.PaymentMethod,
		CouponCode:    req.CouponCode,
	}

	created, err := h.service.Create(r.Context(), input, p.ID)
	if err != nil {
		respondServiceError(w, err, "Failed to create order")
		return
	}

	middleware.OrdersCreated.Inc()
	respondWithData(w, http.StatusCreated, created)
}

func (h *OrderHandler) handleGet(w http.ResponseWriter, r *http.Request) {
	p, ok := principal(w, r)
	if !ok {
		return
	}
	id, ok := uuidParam(w, r, "id")
	if !ok {
		return
	}

	o, err := h.service.GetByID(r.Context(), id, p.ID, p.IsAdmin)
	if err != nil {
		respondServiceError(w, err, "Failed to fetch order")
		return
	}
	respondWithData(w, http.StatusOK, o)
}

func (h *OrderHandler) handleListMine(w http.ResponseWriter, r *http.Request) {
	p, ok := principal(w, r)
	if !ok {
		return
	}

	orders, err := h.service.ListMine(r.Context(), p.ID)
	if err != nil {
		respondServiceError(w, err, "Failed to fetch orders")
		return
	}
	respondWithData(w, http.StatusOK, orders)
}

func (h *OrderHandler) handleListAll(w http.ResponseWriter, r *http.Request) {
	orders, err := h.service.ListAll(r.Context())
	if err != nil {
		respondServiceError(w, err, "Failed to fetch orders")
		return
	}
	respondWithData(w, http.StatusOK, orders)
}

func (h *OrderHandler) handleListVendor(w http.ResponseWriter, r *http.Request) {
	p, ok := principal(w, r)
	if !ok {
		return
	}

	orders, err := h.service.ListVendor(r.Context(), p.ID)
	if err != nil {
		respondServiceError(w, err, "Failed to fetch vendor orders")
		return
	}
	respondWithData(w, http.StatusOK, orders)
}

func (h *OrderHandler) handleUpdateLineStatus(w http.ResponseWriter, r *http.Request) {
	p, ok := principal(w, r)
	if !ok {
		return
	}
	orderID, ok := uuidParam(w, r, "id")
	if !ok {
		return
	}
	itemID, ok := uuidParam(w, r, "itemID")
	if !ok {
		return
	}

	var req UpdateLineStatusRequest
	if !decodeAndValidate(w, r, h.validate, &req) {
		return
	}

	o, err := h.service.UpdateLineStatus(r.Context(), orderID, itemID, req.Status, p.ID, p.IsAdmin)
	if err != nil {
		respondServiceError(w, err, "Failed to update item status")
		return
	}
	respondWithData(w, http.StatusOK, o)
}

func (h *OrderHandler) handleCancel(w http.ResponseWriter, r *http.Request) {
	p, ok := principal(w, r)
	if !ok {
		return
	}
	id, ok := uuidParam(w, r, "id")
	if !ok {
		return
	}

	o, err := h.service.Cancel(r.Context(), id, p.ID)
	if err != nil {
		respondServiceError(w, err, "Failed to cancel order")
		return
	}
	respondWithData(w, http.StatusOK, o)
}

func (h *OrderHandler) handleMarkDelivered(w http.ResponseWriter, r *http.Request) {
	id, ok := uuidParam(w, r, "id")
	if !ok {
		return
	}

	o, err := h.service.MarkDelivered(r.Context(), id)
	if err != nil {
		respondServiceError(w, err, "Failed to mark order delivered")
		return
	}
	respondWithData(w, http.StatusOK, o)
}

func (h *OrderHandler) handleInvoice(w http.ResponseWriter, r *http.Request) {
	p, ok := principal(w, r)
	if !ok {
		return
	}
	id, ok := uuidParam(w, r, "id")
	if !ok {
		return
	}

	invoice, err := h.service.Invoice(r.Context(), id, p.ID, p.IsAdmin)
	if err != nil {
		respondServiceError(w, err, "Failed to build invoice")
		return
	}

	w.Header().Set("Content-Type", "text/plain; charset=utf-8")
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write([]byte(invoice))
}
