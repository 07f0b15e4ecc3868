package auth

import (
	"context"

	"github.com/gofrs/uuid"
)

// Principal is the authenticated caller as attached to the request
// context by the middleware.
type Principal struct {
	ID         uuid.UUID
	Name       string
	Email      string
	IsAdmin    bool
	IsVendor   bool
	IsApproved bool
}

type contextKey struct{}

func WithPrincipal(ctx context.Context, p *Principal) context.Context {
	return context.WithValue(ctx, contextKey{}, p)
}

// PrincipalFrom returns the caller, or nil on unauthenticated routes.
func PrincipalFrom(ctx context.Context) *Principal {
	p, _ := ctx.Value(contextKey{}).(*Principal)
	return p
}
