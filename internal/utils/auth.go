package utils

import "context"

type contextKey string

// SetAdminContext stores the authenticated support account (called by middleware).
func SetAdminContext(ctx context.Context, username string, role string) context.Context {
	ctx = context.WithValue(ctx, AdminUsernameKey, username)
	ctx = context.WithValue(ctx, AdminRoleKey, role)
	return ctx
}

// GetAdminFromContext retrieves the support account username safely.
func GetAdminFromContext(ctx context.Context) (string, bool) {
	username, ok := ctx.Value(AdminUsernameKey).(string)
	return username, ok && username != ""
}

func GetRoleFromContext(ctx context.Context) string {
	role, _ := ctx.Value(AdminRoleKey).(string)
	return role
}
