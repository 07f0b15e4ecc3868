package http

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/lara-shop/lara-api/internal/auth"
	"github.com/lara-shop/lara-api/internal/middleware"
	"github.com/lara-shop/lara-api/internal/ratelimit"
)

// Handlers bundles everything the router mounts.
type Handlers struct {
	Auth     *AuthHandler
	Product  *ProductHandler
	Cart     *CartHandler
	Order    *OrderHandler
	Payment  *PaymentHandler
	Coupon   *CouponHandler
	Returns  *ReturnsHandler
	Wishlist *WishlistHandler
	Admin    *AdminHandler
}

// NewRouter assembles the full API under /api/v1. Route groups:
// public (no token), authenticated, approved-vendor, and admin.
func NewRouter(h Handlers, authMW *auth.Middleware, limiter *ratelimit.Limiter) http.Handler {
	router := chi.NewRouter()

	router.Use(chimiddleware.RequestID)
	router.Use(chimiddleware.RealIP)
	router.Use(middleware.RequestLogger)
	router.Use(chimiddleware.Recoverer)
	router.Use(middleware.Metrics)
	router.Use(limiter.Middleware)

	router.Get("/healthz", func(w http.ResponseWriter, r *http.Request) {
		respondWithMessage(w, http.StatusOK, "ok")
	})
	router.Method(http.MethodGet, "/metrics", promhttp.Handler())

	router.Route("/api/v1", func(api chi.Router) {
		api.Group(func(public chi.Router) {
			h.Auth.RegisterPublicRoutes(public)
			h.Product.RegisterPublicRoutes(public)
		})

		api.Group(func(protected chi.Router) {
			protected.Use(authMW.Authenticate)

			h.Auth.RegisterProtectedRoutes(protected)
			h.Product.RegisterProtectedRoutes(protected)
			h.Cart.RegisterRoutes(protected)
			h.Order.RegisterProtectedRoutes(protected)
			h.Payment.RegisterProtectedRoutes(protected)
			h.Coupon.RegisterProtectedRoutes(protected)
			h.Returns.RegisterProtectedRoutes(protected)
			h.Wishlist.RegisterRoutes(protected)

			protected.Group(func(vendor chi.Router) {
				vendor.Use(auth.RequireVendor)
				h.Product.RegisterVendorRoutes(vendor)
				h.Order.RegisterVendorRoutes(vendor)
				h.Admin.RegisterVendorRoutes(vendor)
			})

			protected.Group(func(admin chi.Router) {
				admin.Use(auth.RequireAdmin)
				h.Order.RegisterAdminRoutes(admin)
				h.Payment.RegisterAdminRoutes(admin)
				h.Coupon.RegisterAdminRoutes(admin)
				h.Returns.RegisterAdminRoutes(admin)
				h.Admin.RegisterAdminRoutes(admin)
			})
		})
	})

	return router
}
