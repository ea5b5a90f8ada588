package auth

import (
	"context"
	"slices"
	"time"

	"github.com/isdelr/inventory-manager-be/internal/models"
)

// Principal is the authenticated identity attached to one request.
type Principal struct {
	ID        int64       `json:"id"`
	Username  string      `json:"username"`
	Role      models.Role `json:"role"`
	TokenID   string      `json:"-"`
	ExpiresAt time.Time   `json:"-"`
}

// HasRole reports whether the principal's role is in allowed. There is no
// role hierarchy: admin only satisfies lists that name admin.
func (p Principal) HasRole(allowed ...models.Role) bool {
	return slices.Contains(allowed, p.Role)
}

type contextKey string

const principalKey = contextKey("principal")

// WithPrincipal returns a copy of ctx carrying p.
func WithPrincipal(ctx context.Context, p Principal) context.Context {
	return context.WithValue(ctx, principalKey, p)
}

// PrincipalFrom returns the principal stored in ctx, if any.
func PrincipalFrom(ctx context.Context) (Principal, bool) {
	p, ok := ctx.Value(principalKey).(Principal)
	return p, ok
}

// Authorize is the role gate: it permits the principal in ctx when its role
// is in allowed.
func Authorize(ctx context.Context, allowed ...models.Role) (Principal, error) {
	p, ok := PrincipalFrom(ctx)
	if !ok {
		return Principal{}, ErrUnauthenticated
	}
	if !p.HasRole(allowed...) {
		return p, ErrForbidden
	}
	return p, nil
}
