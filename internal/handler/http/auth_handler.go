package http

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-playground/validator/v10"
	"github.com/rs/zerolog/log"

	"github.com/lara-shop/lara-api/internal/auth"
	"github.com/lara-shop/lara-api/internal/user"
)

type RegisterRequest struct {
	Name     string `json:"name" validate:"required,min=2"`
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required,min=8"`
	Phone    string `json:"phone,omitempty" validate:"omitempty,min=7"`
	IsVendor bool   `json:"is_vendor"`
}

type LoginRequest struct {
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required"`
}

type UpdateProfileRequest struct {
	Name     string  `json:"name" validate:"required,min=2"`
	Email    string  `json:"email" validate:"required,email"`
	Phone    string  `json:"phone,omitempty" validate:"omitempty,min=7"`
	Password *string `json:"password,omitempty" validate:"omitempty,min=8"`
}

type AuthResponse struct {
	Token string     `json:"token"`
	User  *user.User `json:"user"`
}

type AuthHandler struct {
	service  user.Service
	tokens   *auth.Manager
	validate *validator.Validate
}

func NewAuthHandler(service user.Service, tokens *auth.Manager) *AuthHandler {
	return &AuthHandler{
		service:  service,
		tokens:   tokens,
		validate: validator.New(),
	}
}

func (h *AuthHandler) RegisterPublicRoutes(router chi.Router) {
	router.Post("/auth/register", h.handleRegister)
	router.Post("/auth/login", h.handleLogin)
}

func (h *AuthHandler) RegisterProtectedRoutes(router chi.Router) {
	router.Get("/auth/profile", h.handleGetProfile)
	router.Put("/auth/profile", h.handleUpdateProfile)
}

func (h *AuthHandler) handleRegister(w http.ResponseWriter, r *http.Request) {
	var req RegisterRequest
	if !decodeAndValidate(w, r, h.validate, &req) {
		return
	}

	u := &user.User{
		Name:     req.Name,
		Email:    req.Email,
		Phone:    req.Phone,
		IsVendor: req.IsVendor,
	}
	created, err := h.service.Register(r.Context(), u, req.Password)
	if err != nil {
		respondServiceError(w, err, "Failed to register user")
		return
	}

	token, err := h.tokens.Issue(created.ID)
	if err != nil {
		log.Error().Err(err).Msg("Failed to issue token after registration")
		respondWithError(w, http.StatusInternalServerError, "Failed to issue token")
		return
	}

	respondWithData(w, http.StatusCreated, AuthResponse{Token: token, User: created})
}

func (h *AuthHandler) handleLogin(w http.ResponseWriter, r *http.Request) {
	var req LoginRequest
	if !decodeAndValidate(w, r, h.validate, &req) {
		return
	}

	u, err := h.service.Authenticate(r.Context(), req.Email, req.Password)
	if err != nil {
		respondServiceError(w, err, "Failed to authenticate")
		return
	}

	token, err := h.tokens.Issue(u.ID)
	if err != nil {
		log.Error().Err(err).Msg("Failed to issue token after login")
		respondWithError(w, http.StatusInternalServerError, "Failed to issue token")
		return
	}

	respondWithData(w, http.StatusOK, AuthResponse{Token: token, User: u})
}

func (h *AuthHandler) handleGetProfile(w http.ResponseWriter, r *http.Request) {
	p, ok := principal(w, r)
	if !ok {
		return
	}

	u, err := h.service.GetByID(r.Context(), p.ID)
	if err != nil {
		respondServiceError(w, err, "Failed to fetch profile")
		return
	}
	respondWithData(w, http.StatusOK, u)
}

func (h *AuthHandler) handleUpdateProfile(w http.ResponseWriter, r *http.Request) {
	p, ok := principal(w, r)
	if !ok {
		return
	}

	var req UpdateProfileRequest
	if !decodeAndValidate(w, r, h.validate, &req) {
		return
	}

	updated, err := h.service.UpdateProfile(r.Context(), p.ID, req.Name, req.Email, req.Phone, req.Password)
	if err != nil {
		respondServiceError(w, err, "Failed to update profile")
		return
	}
	respondWithData(w, http.StatusOK, updated)
}
