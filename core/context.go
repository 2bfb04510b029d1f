package core

import "context"

// Context keys for request scoped values
type contextKey string

const userKey contextKey = "user"

// WithUser attaches the authenticated user to the context.
func WithUser(ctx context.Context, user string) context.Context {
	return context.WithValue(ctx, userKey, user)
}

// UserFrom returns the authenticated user of the context.
func UserFrom(ctx context.Context) (string, bool) {
	val := ctx.Value(userKey)
	if val == nil {
		return "", false // default: anonymous
	}
	user, ok := val.(string)
	return user, ok && user != ""
}
