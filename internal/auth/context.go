package auth

import "context"

type identityKey struct{}

// Identity is the authenticated caller attached to request contexts by
// the middleware.
type Identity struct {
	Role    Role
	Subject string
}

// WithIdentity attaches the caller identity to the context.
func WithIdentity(ctx context.Context, identity Identity) context.Context {
	return context.WithValue(ctx, identityKey{}, identity)
}

// IdentityFromContext extracts the caller identity, if any.
func IdentityFromContext(ctx context.Context) (Identity, bool) {
	if ctx == nil {
		return Identity{}, false
	}
	identity, ok := ctx.Value(identityKey{}).(Identity)
	return identity, ok
}
