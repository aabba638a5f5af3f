package service

import "context"

type contextKey string

const principalKey contextKey = "admin.principal"

// WithPrincipal stores the resolved principal on the request context.
func WithPrincipal(ctx context.Context, p *Principal) context.Context {
	return context.WithValue(ctx, principalKey, p)
}

// PrincipalFrom returns the principal stored by the admin guard, or nil
// outside a guarded route.
func PrincipalFrom(ctx context.Context) *Principal {
	p, _ := ctx.Value(principalKey).(*Principal)
	return p
}
