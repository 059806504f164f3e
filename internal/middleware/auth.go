package middleware

import (
	"net/http"

	"bladeshop-be/internal/auth"
	"bladeshop-be/internal/logger"
	"bladeshop-be/internal/utils"

	"go.uber.org/zap"
)

// TokenParser validates admin session tokens.
type TokenParser interface {
	ParseJWT(tokenStr string) (*auth.Claims, error)
}

// AdminAuth rejects requests that do not carry a valid support-account
// token and stores the account in the request context otherwise.
func AdminAuth(tokens TokenParser) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			tokenStr := auth.ExtractAccessToken(r)
			if tokenStr == "" {
				utils.WriteJSONError(w, "Unauthorized", http.StatusUnauthorized)
				return
			}

			claims, err := tokens.ParseJWT(tokenStr)
			if err != nil {
				logger.FromCtx(r.Context()).Warn("admin token rejected",
					zap.String("layer", "middleware"),
					zap.Error(err),
				)
				utils.WriteJSONError(w, "Unauthorized", http.StatusUnauthorized)
				return
			}

			if claims.Role != utils.RoleAdmin {
				utils.WriteJSONError(w, "Forbidden", http.StatusForbidden)
				return
			}

			ctx := utils.SetAdminContext(r.Context(), claims.Username, claims.Role)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}
