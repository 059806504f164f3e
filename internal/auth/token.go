package auth

import (
	"net/http"
	"strings"
)

// CookieName is the cookie set by the admin login endpoint.
const CookieName = "access_token"

// ExtractAccessToken reads the admin token from the login cookie, falling
// back to a Bearer Authorization header.
func ExtractAccessToken(r *http.Request) string {
	if cookie, err := r.Cookie(CookieName); err == nil {
		if cookie.Value != "" {
			return cookie.Value
		}
	}

	authHeader := r.Header.Get("Authorization")
	if strings.HasPrefix(authHeader, "Bearer ") {
		return strings.TrimPrefix(authHeader, "Bearer ")
	}

	return ""
}
