package http

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/lara-shop/lara-api/internal/stats"
	"github.com/lara-shop/lara-api/internal/user"
)

// AdminHandler groups account administration and reporting.
type AdminHandler struct {
	users user.Service
	stats stats.Service
}

func NewAdminHandler(users user.Service, stats stats.Service) *AdminHandler {
	return &AdminHandler{users: users, stats: stats}
}

func (h *AdminHandler) RegisterAdminRoutes(router chi.Router) {
	router.Get("/users", h.handleListUsers)
	router.Put("/users/{id}/block", h.handleToggleBlock)
	router.Put("/users/{id}/approve", h.handleApproveVendor)
	router.Delete("/users/{id}", h.handleDeleteUser)
	router.Get("/stats/dashboard", h.handleDashboard)
}

func (h *AdminHandler) RegisterVendorRoutes(router chi.Router) {
	router.Get("/vendor/stats", h.handleVendorStats)
}

func (h *AdminHandler) handleListUsers(w http.ResponseWriter, r *http.Request) {
	users, err := h.users.ListActive(r.Context())
	if err != nil {
		respondServiceError(w, err, "Failed to list users")
		return
	}
	respondWithData(w, http.StatusOK, users)
}

func (h *AdminHandler) handleToggleBlock(w http.ResponseWriter, r *http.Request) {
	id, ok := uuidParam(w, r, "id")
	if !ok {
		return
	}

	u, err := h.users.ToggleBlock(r.Context(), id)
	if err != nil {
		respondServiceError(w, err, "Failed to toggle user block")
		return
	}
	respondWithData(w, http.StatusOK, u)
}

func (h *AdminHandler) handleApproveVendor(w http.ResponseWriter, r *http.Request) {
	id, ok := uuidParam(w, r, "id")
	if !ok {
		return
	}

	u, err := h.users.ApproveVendor(r.Context(), id)
	if err != nil {
		respondServiceError(w, err, "Failed to approve vendor")
		return
	}
	respondWithData(w, http.StatusOK, u)
}

func (h *AdminHandler) handleDeleteUser(w http.ResponseWriter, r *http.Request) {
	id, ok := uuidParam(w, r, "id")
	if !ok {
		return
	}

	if err := h.users.SoftDelete(r.Context(), id); err != nil {
		respondServiceError(w, err, "Failed to delete user")
		return
	}
	respondWithMessage(w, http.StatusOK, "User deleted")
}

func (h *AdminHandler) handleDashboard(w http.ResponseWriter, r *http.Request) {
	dashboard, err := h.stats.Dashboard(r.Context())
	if err != nil {
		respondServiceError(w, err, "Failed to build dashboard")
		return
	}
	respondWithData(w, http.StatusOK, dashboard)
}

func (h *AdminHandler) handleVendorStats(w http.ResponseWriter, r *http.Request) {
	p, ok := principal(w, r)
	if !ok {
		return
	}

	vendorStats, err := h.stats.VendorStats(r.Context(), p.ID)
	if err != nil {
		respondServiceError(w, err, "Failed to build vendor stats")
		return
	}
	respondWithData(w, http.StatusOK, vendorStats)
}
