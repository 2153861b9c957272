package authz

import "context"

type claimsContextKey struct{}

// ContextWithClaims stores a copy of the claims in ctx.
func ContextWithClaims(ctx context.Context, c Claims) context.Context {
	return context.WithValue(ctx, claimsContextKey{}, c.Clone())
}

// ClaimsFromContext extracts the claims placed by the route guard.
func ClaimsFromContext(ctx context.Context) (Claims, bool) {
	c, ok := ctx.Value(claimsContextKey{}).(Claims)
	return c, ok
}
