package auth

import (
	"context"
	"encoding/json"
	"net/http"
	"strings"

	"github.com/gofrs/uuid"
	"github.com/rs/zerolog/log"

	"github.com/lara-shop/lara-api/internal/user"
)

// UserLoader resolves a token subject to a live account.
// user.Service satisfies it.
type UserLoader interface {
	GetByID(ctx context.Context, id uuid.UUID) (*user.User, error)
}

type Middleware struct {
	manager *Manager
	users   UserLoader
}

func NewMiddleware(manager *Manager, users UserLoader) *Middleware {
	return &Middleware{manager: manager, users: users}
}

// Authenticate requires a valid bearer token and a live, unblocked
// account, then attaches the Principal to the request context.
func (m *Middleware) Authenticate(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		header := r.Header.Get("Authorization")
		token, ok := strings.CutPrefix(header, "Bearer ")
		if !ok || token == "" {
			unauthorized(w, "missing or malformed authorization header")
			return
		}

		userID, err := m.manager.Parse(token)
		if err != nil {
			unauthorized(w, "invalid or expired token")
			return
		}

		u, err := m.users.GetByID(r.Context(), userID)
		if err != nil {
			log.Warn().Err(err).Stringer("user_id", userID).Msg("auth: token subject not resolvable")
			unauthorized(w, "account not found")
			return
		}
		if u.IsBlocked || u.IsDeleted {
			forbidden(w, "account is blocked")
			return
		}

		p := &Principal{
			ID:         u.ID,
			Name:       u.Name,
			Email:      u.Email,
			IsAdmin:    u.IsAdmin,
			IsVendor:   u.IsVendor,
			IsApproved: u.IsApproved,
		}
		next.ServeHTTP(w, r.WithContext(WithPrincipal(r.Context(), p)))
	})
}

// RequireAdmin must be mounted inside Authenticate.
func RequireAdmin(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		p := PrincipalFrom(r.Context())
		if p == nil || !p.IsAdmin {
			forbidden(w, "admin access required")
			return
		}
		next.ServeHTTP(w, r)
	})
}

// RequireVendor admits approved vendors and admins.
func RequireVendor(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		p := PrincipalFrom(r.Context())
		if p == nil || (!p.IsAdmin && !(p.IsVendor && p.IsApproved)) {
			forbidden(w, "vendor access required")
			return
		}
		next.ServeHTTP(w, r)
	})
}

func unauthorized(w http.ResponseWriter, msg string) {
	writeJSONError(w, http.StatusUnauthorized, msg)
}

func forbidden(w http.ResponseWriter, msg string) {
	writeJSONError(w, http.StatusForbidden, msg)
}

func writeJSONError(w http.ResponseWriter, status int, msg string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(map[string]any{"success": false, "message": msg})
}
