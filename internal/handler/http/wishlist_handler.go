package http

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/lara-shop/lara-api/internal/wishlist"
)

type WishlistHandler struct {
	service wishlist.Service
}

func NewWishlistHandler(service wishlist.Service) *WishlistHandler {
	return &WishlistHandler{service: service}
}

func (h *WishlistHandler) RegisterRoutes(router chi.Router) {
	router.Get("/wishlist", h.handleList)
	router.Post("/wishlist/{productID}", h.handleAdd)
	router.Delete("/wishlist/{productID}", h.handleRemove)
}

func (h *WishlistHandler) handleList(w http.ResponseWriter, r *http.Request) {
	p, ok := principal(w, r)
	if !ok {
		return
	}

	products, err := h.service.List(r.Context(), p.ID)
	if err != nil {
		respondServiceError(w, err, "Failed to fetch wishlist")
		return
	}
	respondWithData(w, http.StatusOK, products)
}

func (h *WishlistHandler) handleAdd(w http.ResponseWriter, r *http.Request) {
	p, ok := principal(w, r)
	if !ok {
		return
	}
	productID, ok := uuidParam(w, r, "productID")
	if !ok {
		return
	}

	if err := h.service.Add(r.Context(), p.ID, productID); err != nil {
		respondServiceError(w, err, "Failed to add wishlist entry")
		return
	}
	respondWithMessage(w, http.StatusCreated, "Added to wishlist")
}

func (h *WishlistHandler) handleRemove(w http.ResponseWriter, r *http.Request) {
	p, ok := principal(w, r)
	if !ok {
		return
	}
	productID, ok := uuidParam(w, r, "productID")
	if !ok {
		return
	}

	if err := h.service.Remove(r.Context(), p.ID, productID); err != nil {
		respondServiceError(w, err, "Failed to remove wishlist entry")
		return
	}
	respondWithMessage(w, http.StatusOK, "Removed from wishlist")
}
