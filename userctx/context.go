package userctx

import "context"

// Context key type
type contextKey string

const userEmailKey contextKey = "user_email"
const userIDKey contextKey = "user_id"

// SetUser adds the signed-in user's identity to the request context
func SetUser(ctx context.Context, id int, email string) context.Context {
	ctx = context.WithValue(ctx, userIDKey, id)
	return context.WithValue(ctx, userEmailKey, email)
}

// GetUserEmail retrieves the user email from the request context
func GetUserEmail(ctx context.Context) string {
	email, ok := ctx.Value(userEmailKey).(string)
	if !ok {
		return "anonymous"
	}
	return email
}

// GetUserID retrieves the user ID from the request context, 0 if absent
func GetUserID(ctx context.Context) int {
	id, ok := ctx.Value(userIDKey).(int)
	if !ok {
		return 0
	}
	return id
}
