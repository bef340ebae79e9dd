// Package auth adapts the external identity provider to the rest of the
// application: it verifies bearer tokens and exposes the resulting
// (user, role) pair as a typed Identity in the request context.
package auth

import (
	"context"

	"github.com/google/uuid"
)

// Roles issued by the identity provider.
const (
	RoleParent  = "PARENT"
	RoleStudent = "STUDENT"
)

// Identity is the authenticated caller: the opaque user handle issued by the
// identity provider plus its role attribute. The core never sees credentials,
// only this pair.
type Identity struct {
	UserID uuid.UUID
	Role   string
}

// ctxKey is unexported so no other package can collide with our context key.
type ctxKey struct{}

// WithIdentity returns a copy of ctx carrying the identity.
func WithIdentity(ctx context.Context, id Identity) context.Context {
	return context.WithValue(ctx, ctxKey{}, id)
}

// FromContext extracts the Identity stored by the middleware.
// The second return is false for unauthenticated requests.
func FromContext(ctx context.Context) (Identity, bool) {
	id, ok := ctx.Value(ctxKey{}).(Identity)
	return id, ok
}
