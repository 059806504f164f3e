package handler

import (
	"net/http"

	"bladeshop-be/internal/auth"
	"bladeshop-be/internal/logger"
	"bladeshop-be/internal/order"
	"bladeshop-be/internal/utils"

	"go.uber.org/zap"
)

type loginRequest struct {
	Username string `json:"username"`
	Password string `json:"password"`
}

type loginResponse struct {
	Token string `json:"token"`
}

// AdminLogin handles POST /admin/login. The token is returned in the body
// and also set as an HttpOnly cookie.
func (h *Handler) AdminLogin(w http.ResponseWriter, r *http.Request) {
	var req loginRequest
	if err := decodeJSON(w, r, &req); err != nil {
		writeError(w, r, "AdminLogin", err)
		return
	}
	if req.Username == "" || req.Password == "" {
		writeError(w, r, "AdminLogin", order.NewValidationError("credentials", "username and password are required"))
		return
	}

	token, err := h.admin.Login(req.Username, req.Password)
	if err != nil {
		logger.FromCtx(r.Context()).Warn("admin login failed",
			zap.String("layer", "handler"),
			zap.String("username", req.Username),
		)
		writeError(w, r, "AdminLogin", err)
		return
	}

	http.SetCookie(w, &http.Cookie{
		Name:     auth.CookieName,
		Value:    token,
		Path:     "/admin",
		HttpOnly: true,
		Secure:   h.cfg.SecureCookie,
		SameSite: http.SameSiteStrictMode,
	})
	utils.WriteJSON(w, http.StatusOK, loginResponse{Token: token})
}

// RetryPayment handles POST /admin/orders/{orderId}/payment.
func (h *Handler) RetryPayment(w http.ResponseWriter, r *http.Request) {
	orderID := r.PathValue("orderId")
	username, _ := utils.GetAdminFromContext(r.Context())

	res, err := h.checkout.RetryPayment(r.Context(), orderID)
	if err != nil {
		writeError(w, r, "RetryPayment", err)
		return
	}

	logger.FromCtx(r.Context()).Info("payment retried by support",
		zap.String("layer", "handler"),
		zap.String("order_id", orderID),
		zap.String("admin", username),
	)
	utils.WriteJSON(w, http.StatusOK, res)
}

// Metrics handles GET /admin/metrics.
func (h *Handler) Metrics(w http.ResponseWriter, r *http.Request) {
	utils.WriteJSON(w, http.StatusOK, h.cfg.Metrics.Snapshot())
}
