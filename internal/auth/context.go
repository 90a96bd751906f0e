package auth

import (
	"context"
	"strings"
)

type ctxKey string

const userIDKey ctxKey = "session_user_id"

// ContextWithUser stores the resolved identity in the context for
// downstream consumers.
func ContextWithUser(ctx context.Context, userID string) context.Context {
	return context.WithValue(ctx, userIDKey, strings.TrimSpace(userID))
}

// UserIDFromContext extracts the authenticated user id from context.
func UserIDFromContext(ctx context.Context) (string, bool) {
	v, ok := ctx.Value(userIDKey).(string)
	if !ok || strings.TrimSpace(v) == "" {
		return "", false
	}
	return v, true
}
