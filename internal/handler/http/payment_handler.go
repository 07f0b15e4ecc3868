package http

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-playground/validator/v10"

	"github.com/lara-shop/lara-api/internal/payment"
)

type PaymentHandler struct {
	service  payment.Service
	validate *validator.Validate
}

func NewPaymentHandler(service payment.Service) *PaymentHandler {
	return &PaymentHandler{service: service, validate: validator.New()}
}

func (h *PaymentHandler) RegisterProtectedRoutes(router chi.Router) {
	router.Post("/orders/{id}/payment/intent", h.handleCreateIntent)
	router.Post("/orders/{id}/payment/verify", h.handleVerify)
	router.Post("/orders/{id}/payment/cod", h.handleConfirmCOD)
}

func (h *PaymentHandler) RegisterAdminRoutes(router chi.Router) {
	router.Put("/orders/{id}/pay", h.handleMarkPaid)
}

func (h *PaymentHandler) handleCreateIntent(w http.ResponseWriter, r *http.Request) {
	p, ok := principal(w, r)
	if !ok {
		return
	}
	id, ok := uuidParam(w, r, "id")
	if !ok {
		return
	}

	intent, err := h.service.CreateIntent(r.Context(), id, p.ID)
	if err != nil {
		respondServiceError(w, err, "Failed to create payment intent")
		return
	}
	respondWithData(w, http.StatusCreated, intent)
}

func (h *PaymentHandler) handleVerify(w http.ResponseWriter, r *http.Request) {
	p, ok := principal(w, r)
	if !ok {
		return
	}
	id, ok := uuidParam(w, r, "id")
	if !ok {
		return
	}

	var req payment.VerifyInput
	if !decodeAndValidate(w, r, h.validate, &req) {
		return
	}

	o, err := h.service.Verify(r.Context(), id, p.ID, req)
	if err != nil {
		respondServiceError(w, err, "Failed to verify payment")
		return
	}
	respondWithData(w, http.StatusOK, o)
}

func (h *PaymentHandler) handleConfirmCOD(w http.ResponseWriter, r *http.Request) {
	p, ok := principal(w, r)
	if !ok {
		return
	}
	id, ok := uuidParam(w, r, "id")
	if !ok {
		return
	}

	o, err := h.service.ConfirmCOD(r.Context(), id, p.ID)
	if err != nil {
		respondServiceError(w, err, "Failed to confirm cash on delivery")
		return
	}
	respondWithData(w, http.StatusOK, o)
}

func (h *PaymentHandler) handleMarkPaid(w http.ResponseWriter, r *http.Request) {
	id, ok := uuidParam(w, r, "id")
	if !ok {
		return
	}

	o, err := h.service.MarkPaid(r.Context(), id)
	if err != nil {
		respondServiceError(w, err, "Failed to mark order paid")
		return
	}
	respondWithData(w, http.StatusOK, o)
}
