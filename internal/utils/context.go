package utils

const (
	AdminUsernameKey contextKey = "admin_username"
	AdminRoleKey     contextKey = "role"
)

const RoleAdmin = "ADMIN"
