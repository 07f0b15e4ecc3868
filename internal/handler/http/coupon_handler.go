package http

import (
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-playground/validator/v10"

	"github.com/lara-shop/lara-api/internal/coupon"
)

type CreateCouponRequest struct {
	Code               string    `json:"code" validate:"required,min=3"`
	DiscountPercentage int       `json:"discount_percentage" validate:"required,gte=1,lte=100"`
	ExpiryDate         time.Time `json:"expiry_date" validate:"required"`
}

type ValidateCouponRequest struct {
	Code string `json:"code" validate:"required"`
}

type CouponHandler struct {
	service  coupon.Service
	validate *validator.Validate
}

func NewCouponHandler(service coupon.Service) *CouponHandler {
	return &CouponHandler{service: service, validate: validator.New()}
}

func (h *CouponHandler) RegisterProtectedRoutes(router chi.Router) {
	router.Post("/coupons/validate", h.handleValidate)
}

func (h *CouponHandler) RegisterAdminRoutes(router chi.Router) {
	router.Post("/coupons", h.handleCreate)
	router.Get("/coupons", h.handleList)
	router.Put("/coupons/{id}/toggle", h.handleToggle)
}

// handleValidate is the strict path: an invalid or expired code is an
// error here, unlike checkout where it silently falls back to full price.
func (h *CouponHandler) handleValidate(w http.ResponseWriter, r *http.Request) {
	var req ValidateCouponRequest
	if !decodeAndValidate(w, r, h.validate, &req) {
		return
	}

	c, err := h.service.Validate(r.Context(), req.Code)
	if err != nil {
		respondServiceError(w, err, "Failed to validate coupon")
		return
	}
	respondWithData(w, http.StatusOK, c)
}

func (h *CouponHandler) handleCreate(w http.ResponseWriter, r *http.Request) {
	var req CreateCouponRequest
	if !decodeAndValidate(w, r, h.validate, &req) {
		return
	}

	c, err := h.service.Create(r.Context(), req.Code, req.DiscountPercentage, req.ExpiryDate)
	if err != nil {
		respondServiceError(w, err, "Failed to create coupon")
		return
	}
	respondWithData(w, http.StatusCreated, c)
}

func (h *CouponHandler) handleList(w http.ResponseWriter, r *http.Request) {
	coupons, err := h.service.List(r.Context())
	if err != nil {
		respondServiceError(w, err, "Failed to list coupons")
		return
	}
	respondWithData(w, http.StatusOK, coupons)
}

func (h *CouponHandler) handleToggle(w http.ResponseWriter, r *http.Request) {
	id, ok := uuidParam(w, r, "id")
	if !ok {
		return
	}

	c, err := h.service.ToggleActive(r.Context(), id)
	if err != nil {
		respondServiceError(w, err, "Failed to toggle coupon")
		return
	}
	respondWithData(w, http.StatusOK, c)
}
