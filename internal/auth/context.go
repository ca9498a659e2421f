package auth

import (
	"context"

	"github.com/example/solar-storefront/internal/checkout"
)

type contextKey string

const (
	claimsContextKey contextKey = "user"
	tokenContextKey  contextKey = "token"
)

// WithClaims returns ctx carrying the validated claims and the raw token they came from.
func WithClaims(ctx context.Context, claims *Claims, token string) context.Context {
	ctx = context.WithValue(ctx, claimsContextKey, claims)
	return context.WithValue(ctx, tokenContextKey, token)
}

// ClaimsFromContext retrieves user claims from the request context
func ClaimsFromContext(ctx context.Context) (*Claims, bool) {
	claims, ok := ctx.Value(claimsContextKey).(*Claims)
	return claims, ok && claims != nil
}

// TokenFromContext returns the raw access token of the caller, for forwarding.
func TokenFromContext(ctx context.Context) string {
	token, _ := ctx.Value(tokenContextKey).(string)
	return token
}

// ContextIdentity resolves the checkout identity from claims placed in the request
// context by the auth middleware. A request without claims is a guest.
type ContextIdentity struct{}

func (ContextIdentity) Identity(ctx context.Context) (checkout.Account, bool) {
	claims, ok := ClaimsFromContext(ctx)
	if !ok {
		return checkout.Account{}, false
	}
	return checkout.Account{
		UserID: claims.UserID,
		Contact: checkout.Contact{
			Name:     claims.Name,
			Email:    claims.Email,
			Phone:    claims.Phone,
			Location: claims.Location,
		},
	}, true
}
