package guard

import (
	"context"

	"github.com/posternauth/postern/pkg/bearer"
)

type principalKey struct{}
type tokenKey struct{}
type compactKey struct{}

func withSession[U any](ctx context.Context, principal U, tok bearer.Token, compact string) context.Context {
	ctx = context.WithValue(ctx, principalKey{}, principal)
	ctx = context.WithValue(ctx, tokenKey{}, tok)
	ctx = context.WithValue(ctx, compactKey{}, compact)
	return ctx
}

// WithPrincipal returns a context carrying the principal, the way the
// middleware attaches it. Useful when exercising handlers outside a Guard.
func WithPrincipal[U any](ctx context.Context, principal U) context.Context {
	return context.WithValue(ctx, principalKey{}, principal)
}

// PrincipalFrom returns the authenticated principal attached by Require,
// Optional or an authenticate middleware.
func PrincipalFrom[U any](ctx context.Context) (U, bool) {
	u, ok := ctx.Value(principalKey{}).(U)
	return u, ok
}

// TokenFrom returns the decoded bearer token for the current session.
func TokenFrom(ctx context.Context) (bearer.Token, bool) {
	t, ok := ctx.Value(tokenKey{}).(bearer.Token)
	return t, ok
}

// CompactFrom returns the serialized form of the current session token.
func CompactFrom(ctx context.Context) (string, bool) {
	s, ok := ctx.Value(compactKey{}).(string)
	return s, ok
}
