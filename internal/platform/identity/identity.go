// Package identity establishes who owns a request. The owner identifier is
// the subject of a verified bearer token, or a configured default when
// authentication is disabled for local development.
package identity

import "context"

type (
	ownerKey struct{}
	tokenKey struct{}
)

// WithOwner returns a copy of ctx carrying the given owner identifier.
func WithOwner(ctx context.Context, ownerID string) context.Context {
	return context.WithValue(ctx, ownerKey{}, ownerID)
}

// OwnerFromContext returns the owner identifier stored by WithOwner.
// The second result is false when no non-empty owner is present.
func OwnerFromContext(ctx context.Context) (string, bool) {
	id, ok := ctx.Value(ownerKey{}).(string)
	if !ok || id == "" {
		return "", false
	}
	return id, true
}

// WithToken returns a copy of ctx carrying the verified raw bearer token.
func WithToken(ctx context.Context, raw string) context.Context {
	return context.WithValue(ctx, tokenKey{}, raw)
}

// TokenFromContext returns the bearer token stored by WithToken.
func TokenFromContext(ctx context.Context) (string, bool) {
	raw, ok := ctx.Value(tokenKey{}).(string)
	if !ok || raw == "" {
		return "", false
	}
	return raw, true
}
