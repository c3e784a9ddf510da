package middleware

import "context"

type contextKey struct{}

// WithAccountID stores the authenticated account ID in the context.
func WithAccountID(ctx context.Context, accountID string) context.Context {
	return context.WithValue(ctx, contextKey{}, accountID)
}

// AccountIDFromContext retrieves the account ID from the context. Empty
// means no authenticated session.
func AccountIDFromContext(ctx context.Context) string {
	id, _ := ctx.Value(contextKey{}).(string)
	return id
}
