package auth

import (
	"context"
	"strings"

	"tokenestate-backend/internal/domain/apperr"
)

// Authorizer confirms that the caller of the current request acts as principal.
// It is checked synchronously, before any state is touched.
type Authorizer interface {
	Authorize(ctx context.Context, principal string) error
}

type ctxKey struct{}

// WithPrincipal returns a context carrying the authenticated caller.
func WithPrincipal(ctx context.Context, principal string) context.Context {
	return context.WithValue(ctx, ctxKey{}, principal)
}

// PrincipalFrom returns the authenticated caller, if any.
func PrincipalFrom(ctx context.Context) (string, bool) {
	p, ok := ctx.Value(ctxKey{}).(string)
	return p, ok && p != ""
}

// ContextAuthorizer authorizes when the principal placed on the context by the
// transport layer equals the principal an operation requires.
type ContextAuthorizer struct{}

func (ContextAuthorizer) Authorize(ctx context.Context, principal string) error {
	caller, ok := PrincipalFrom(ctx)
	if !ok || principal == "" || caller != principal {
		return apperr.ErrUnauthorized
	}
	return nil
}

// AuthorizerFunc adapts a function to Authorizer.
type AuthorizerFunc func(ctx context.Context, principal string) error

func (f AuthorizerFunc) Authorize(ctx context.Context, principal string) error {
	return f(ctx, principal)
}

// RegistrationPolicy decides who may register properties: the admin, plus any
// whitelisted builder.
type RegistrationPolicy struct {
	Admin     string
	Whitelist []string
}

// NewRegistrationPolicy trims and drops empty whitelist entries.
func NewRegistrationPolicy(admin string, whitelist []string) RegistrationPolicy {
	p := RegistrationPolicy{Admin: strings.TrimSpace(admin)}
	for _, w := range whitelist {
		if w = strings.TrimSpace(w); w != "" {
			p.Whitelist = append(p.Whitelist, w)
		}
	}
	return p
}

func (p RegistrationPolicy) Allows(builder string) bool {
	if builder == "" {
		return false
	}
	if builder == p.Admin {
		return true
	}
	for _, w := range p.Whitelist {
		if w == builder {
			return true
		}
	}
	return false
}
