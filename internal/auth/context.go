// Package auth provides password hashing, credential verification, and
// request identity plumbing.
package auth

import (
	"context"

	"github.com/projectdesk/projectdesk/internal/model"
)

// contextKey is a custom type for context keys to avoid collisions.
type contextKey string

const (
	// identityContextKey is the context key for storing Identity.
	identityContextKey contextKey = "identity"
)

// Identity is the resolved caller of a request. A request without a
// valid, unrevoked token carries no Identity (anonymous).
type Identity struct {
	UserID   int64
	Username string
	Role     model.Role
}

// ContextWithIdentity adds the caller identity to the context.
func ContextWithIdentity(ctx context.Context, ident *Identity) context.Context {
	return context.WithValue(ctx, identityContextKey, ident)
}

// IdentityFromContext retrieves the caller identity from the context.
// Returns nil for anonymous requests.
func IdentityFromContext(ctx context.Context) *Identity {
	ident, ok := ctx.Value(identityContextKey).(*Identity)
	if !ok {
		return nil
	}
	return ident
}

// UsernameFromContext is a convenience function to get the caller's
// username. Returns empty string if not authenticated.
func UsernameFromContext(ctx context.Context) string {
	ident := IdentityFromContext(ctx)
	if ident == nil {
		return ""
	}
	return ident.Username
}
