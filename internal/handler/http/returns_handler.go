package http

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-playground/validator/v10"

	"github.com/lara-shop/lara-api/internal/returns"
)

type ResolveReturnRequest struct {
	Approve bool `json:"approve"`
}

type ReturnsHandler struct {
	service  returns.Service
	validate *validator.Validate
}

func NewReturnsHandler(service returns.Service) *ReturnsHandler {
	return &ReturnsHandler{service: service, validate: validator.New()}
}

func (h *ReturnsHandler) RegisterProtectedRoutes(router chi.Router) {
	router.Post("/returns", h.handleCreate)
	router.Get("/returns/mine", h.handleListMine)
}

func (h *ReturnsHandler) RegisterAdminRoutes(router chi.Router) {
	router.Get("/returns", h.handleListAll)
	router.Put("/returns/{id}/resolve", h.handleResolve)
}

func (h *ReturnsHandler) handleCreate(w http.ResponseWriter, r *http.Request) {
	p, ok := principal(w, r)
	if !ok {
		return
	}

	var req returns.CreateInput
	if !decodeAndValidate(w, r, h.validate, &req) {
		return
	}

	created, err := h.service.Create(r.Context(), p.ID, req)
	if err != nil {
		respondServiceError(w, err, "Failed to create return request")
		return
	}
	respondWithData(w, http.StatusCreated, created)
}

func (h *ReturnsHandler) handleListMine(w http.ResponseWriter, r *http.Request) {
	p, ok := principal(w, r)
	if !ok {
		return
	}

	requests, err := h.service.ListMine(r.Context(), p.ID)
	if err != nil {
		respondServiceError(w, err, "Failed to fetch return requests")
		return
	}
	respondWithData(w, http.StatusOK, requests)
}

func (h *ReturnsHandler) handleListAll(w http.ResponseWriter, r *http.Request) {
	requests, err := h.service.ListAll(r.Context())
	if err != nil {
		respondServiceError(w, err, "Failed to fetch return requests")
		return
	}
	respondWithData(w, http.StatusOK, requests)
}

func (h *ReturnsHandler) handleResolve(w http.ResponseWriter, r *http.Request) {
	id, ok := uuidParam(w, r, "id")
	if !ok {
		return
	}

	var req ResolveReturnRequest
	if !decodeAndValidate(w, r, h.validate, &req) {
		return
	}

	resolved, err := h.service.Resolve(r.Context(), id, req.Approve)
	if err != nil {
		respondServiceError(w, err, "Failed to resolve return request")
		return
	}
	respondWithData(w, http.StatusOK, resolved)
}
