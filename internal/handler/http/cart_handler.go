package http

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-playground/validator/v10"

	"github.com/lara-shop/lara-api/internal/cart"
)

type UpdateQuantityRequest struct {
	Quantity int `json:"quantity" validate:"required,gt=0"`
}

type SyncCartRequest struct {
	Items []cart.AddInput `json:"items" validate:"dive"`
}

type CartHandler struct {
	service  cart.Service
	validate *validator.Validate
}

func NewCartHandler(service cart.Service) *CartHandler {
	return &CartHandler{service: service, validate: validator.New()}
}

func (h *CartHandler) RegisterRoutes(router chi.Router) {
	router.Get("/cart", h.handleGet)
	router.Post("/cart", h.handleAdd)
	router.Post("/cart/sync", h.handleSync)
	router.Put("/cart/{itemID}", h.handleUpdateQuantity)
	router.Delete("/cart/{itemID}", h.handleRemove)
	router.Delete("/cart", h.handleClear)
}

func (h *CartHandler) handleGet(w http.ResponseWriter, r *http.Request) {
	p, ok := principal(w, r)
	if !ok {
		return
	}

	items, err := h.service.Get(r.Context(), p.ID)
	if err != nil {
		respondServiceError(w, err, "Failed to fetch cart")
		return
	}
	respondWithData(w, http.StatusOK, items)
}

func (h *CartHandler) handleAdd(w http.ResponseWriter, r *http.Request) {
	p, ok := principal(w, r)
	if !ok {
		return
	}

	var req cart.AddInput
	if !decodeAndValidate(w, r, h.validate, &req) {
		return
	}

	if err := h.service.Add(r.Context(), p.ID, req); err != nil {
		respondServiceError(w, err, "Failed to add cart item")
		return
	}
	respondWithMessage(w, http.StatusCreated, "Item added to cart")
}

func (h *CartHandler) handleSync(w http.ResponseWriter, r *http.Request) {
	p, ok := principal(w, r)
	if !ok {
		return
	}

	var req SyncCartRequest
	if !decodeAndValidate(w, r, h.validate, &req) {
		return
	}

	items, err := h.service.Sync(r.Context(), p.ID, req.Items)
	if err != nil {
		respondServiceError(w, err, "Failed to sync cart")
		return
	}
	respondWithData(w, http.StatusOK, items)
}

func (h *CartHandler) handleUpdateQuantity(w http.ResponseWriter, r *http.Request) {
	p, ok := principal(w, r)
	if !ok {
		return
	}
	itemID, ok := uuidParam(w, r, "itemID")
	if !ok {
		return
	}

	var req UpdateQuantityRequest
	if !decodeAndValidate(w, r, h.validate, &req) {
		return
	}

	if err := h.service.SetQuantity(r.Context(), p.ID, itemID, req.Quantity); err != nil {
		respondServiceError(w, err, "Failed to update cart item")
		return
	}
	respondWithMessage(w, http.StatusOK, "Cart item updated")
}

func (h *CartHandler) handleRemove(w http.ResponseWriter, r *http.Request) {
	p, ok := principal(w, r)
	if !ok {
		return
	}
	itemID, ok := uuidParam(w, r, "itemID")
	if !ok {
		return
	}

	if err := h.service.Remove(r.Context(), p.ID, itemID); err != nil {
		respondServiceError(w, err, "Failed to remove cart item")
		return
	}
	respondWithMessage(w, http.StatusOK, "Cart item removed")
}

func (h *CartHandler) handleClear(w http.ResponseWriter, r *http.Request) {
	p, ok := principal(w, r)
	if !ok {
		return
	}

	if err := h.service.Clear(r.Context(), p.ID); err != nil {
		respondServiceError(w, err, "Failed to clear cart")
		return
	}
	respondWithMessage(w, http.StatusOK, "Cart cleared")
}
