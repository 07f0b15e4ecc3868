package http

import (
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"
	"github.com/go-playground/validator/v10"

	"github.com/lara-shop/lara-api/internal/product"
	"github.com/lara-shop/lara-api/internal/review"
)

type VariantRequest struct {
	Size  product.Size `json:"size" validate:"required"`
	Price float64      `json:"price" validate:"required,gt=0"`
	Stock int          `json:"stock" validate:"gte=0"`
}

type ProductRequest struct {
	Title       string           `json:"title" validate:"required,min=2"`
	Description string           `json:"description" validate:"required"`
	Image       string           `json:"image" validate:"required"`
	Category    product.Category `json:"category" validate:"required"`
	Gender      product.Gender   `json:"gender" validate:"required"`
	Variants    []VariantRequest `json:"variants" validate:"required,min=1,dive"`
	IsFeatured  bool             `json:"is_featured"`
	IsApproved  bool             `json:"is_approved"`
}

type ProductHandler struct {
	service  product.Service
	reviews  review.Service
	validate *validator.Validate
}

func NewProductHandler(service product.Service, reviews review.Service) *ProductHandler {
	return &ProductHandler{
		service:  service,
		reviews:  reviews,
		validate: validator.New(),
	}
}

func (h *ProductHandler) RegisterPublicRoutes(router chi.Router) {
	router.Get("/products", h.handleList)
	router.Get("/products/featured", h.handleFeatured)
	router.Get("/products/{id}", h.handleGet)
	router.Get("/products/{id}/reviews", h.handleListReviews)
}

func (h *ProductHandler) RegisterProtectedRoutes(router chi.Router) {
	router.Post("/products/{id}/reviews", h.handleCreateReview)
	router.Delete("/reviews/{id}", h.handleDeleteReview)
}

func (h *ProductHandler) RegisterVendorRoutes(router chi.Router) {
	router.Post("/products", h.handleCreate)
	router.Put("/products/{id}", h.handleUpdate)
	router.Delete("/products/{id}", h.handleDelete)
}

func (h *ProductHandler) handleList(w http.ResponseWriter, r *http.Request) {
	filter := filterFromQuery(r)

	products, err := h.service.List(r.Context(), filter)
	if err != nil {
		respondServiceError(w, err, "Failed to list products")
		return
	}
	respondWithData(w, http.StatusOK, products)
}

func (h *ProductHandler) handleFeatured(w http.ResponseWriter, r *http.Request) {
	limit := 8
	if raw := r.URL.Query().Get("limit"); raw != "" {
		if n, err := strconv.Atoi(raw); err == nil && n > 0 {
			limit = n
		}
	}

	products, err := h.service.GetFeatured(r.Context(), limit)
	if err != nil {
		respondServiceError(w, err, "Failed to list featured products")
		return
	}
	respondWithData(w, http.StatusOK, products)
}

func (h *ProductHandler) handleGet(w http.ResponseWriter, r *http.Request) {
	id, ok := uuidParam(w, r, "id")
	if !ok {
		return
	}

	p, err := h.service.GetByID(r.Context(), id)
	if err != nil {
		respondServiceError(w, err, "Failed to fetch product")
		return
	}
	respondWithData(w, http.StatusOK, p)
}

func (h *ProductHandler) handleCreate(w http.ResponseWriter, r *http.Request) {
	p, ok := principal(w, r)
	if !ok {
		return
	}

	var req ProductRequest
	if !decodeAndValidate(w, r, h.validate, &req) {
		return
	}

	created, err := h.service.Create(r.Context(), productFromRequest(&req), p.ID, p.IsAdmin)
	if err != nil {
		respondServiceError(w, err, "Failed to create product")
		return
	}
	respondWithData(w, http.StatusCreated, created)
}

func (h *ProductHandler) handleUpdate(w http.ResponseWriter, r *http.Request) {
	p, ok := principal(w, r)
	if !ok {
		return
	}
	id, ok := uuidParam(w, r, "id")
	if !ok {
		return
	}

	var req ProductRequest
	if !decodeAndValidate(w, r, h.validate, &req) {
		return
	}

	upd := productFromRequest(&req)
	upd.ID = id
	updated, err := h.service.Update(r.Context(), upd, p.ID, p.IsAdmin)
	if err != nil {
		respondServiceError(w, err, "Failed to update product")
		return
	}
	respondWithData(w, http.StatusOK, updated)
}

func (h *ProductHandler) handleDelete(w http.ResponseWriter, r *http.Request) {
	p, ok := principal(w, r)
	if !ok {
		return
	}
	id, ok := uuidParam(w, r, "id")
	if !ok {
		return
	}

	if err := h.service.SoftDelete(r.Context(), id, p.ID, p.IsAdmin); err != nil {
		respondServiceError(w, err, "Failed to delete product")
		return
	}
	respondWithMessage(w, http.StatusOK, "Product deleted")
}

func (h *ProductHandler) handleListReviews(w http.ResponseWriter, r *http.Request) {
	id, ok := uuidParam(w, r, "id")
	if !ok {
		return
	}

	reviews, err := h.reviews.ListByProduct(r.Context(), id)
	if err != nil {
		respondServiceError(w, err, "Failed to list reviews")
		return
	}
	respondWithData(w, http.StatusOK, reviews)
}

func (h *ProductHandler) handleCreateReview(w http.ResponseWriter, r *http.Request) {
	p, ok := principal(w, r)
	if !ok {
		return
	}
	id, ok := uuidParam(w, r, "id")
	if !ok {
		return
	}

	var req review.CreateInput
	if !decodeAndValidate(w, r, h.validate, &req) {
		return
	}

	created, err := h.reviews.Create(r.Context(), id, p.ID, p.Name, req)
	if err != nil {
		respondServiceError(w, err, "Failed to create review")
		return
	}
	respondWithData(w, http.StatusCreated, created)
}

func (h *ProductHandler) handleDeleteReview(w http.ResponseWriter, r *http.Request) {
	p, ok := principal(w, r)
	if !ok {
		return
	}
	id, ok := uuidParam(w, r, "id")
	if !ok {
		return
	}

	if err := h.reviews.Delete(r.Context(), id, p.ID, p.IsAdmin); err != nil {
		respondServiceError(w, err, "Failed to delete review")
		return
	}
	respondWithMessage(w, http.StatusOK, "Review deleted")
}

func productFromRequest(req *ProductRequest) *product.Product {
	variants := make([]product.Variant, 0, len(req.Variants))
	for _, v := range req.Variants {
		variants = append(variants, product.Variant{Size: v.Size, Price: v.Price, Stock: v.Stock})
	}
	return &product.Product{
		Title:       req.Title,
		Description: req.Description,
		Image:       req.Image,
		Category:    req.Category,
		Gender:      req.Gender,
		Variants:    variants,
		IsFeatured:  req.IsFeatured,
		IsApproved:  req.IsApproved,
	}
}

func filterFromQuery(r *http.Request) product.Filter {
	q := r.URL.Query()
	filter := product.Filter{
		Keyword:  q.Get("keyword"),
		Category: product.Category(q.Get("category")),
		Gender:   product.Gender(q.Get("gender")),
		Sort:     product.Sort(q.Get("sort")),
	}
	if raw := q.Get("min_price"); raw != "" {
		if v, err := strconv.ParseFloat(raw, 64); err == nil {
			filter.MinPrice = &v
		}
	}
	if raw := q.Get("max_price"); raw != "" {
		if v, err := strconv.ParseFloat(raw, 64); err == nil {
			filter.MaxPrice = &v
		}
	}
	if raw := q.Get("min_rating"); raw != "" {
		if v, err := strconv.ParseFloat(raw, 64); err == nil {
			filter.MinRating = &v
		}
	}
	return filter
}
