package handler

import (
	"context"
	"net/http"

	"bladeshop-be/internal/checkout"
	"bladeshop-be/internal/metrics"
	"bladeshop-be/internal/order"
	"bladeshop-be/internal/payment"
	"bladeshop-be/internal/product"
)

// StatusReader answers payment status polls.
type StatusReader interface {
	PaymentStatus(ctx context.Context, orderID string) (*payment.StatusView, error)
}

// Authenticator exchanges support-account credentials for a session token.
type Authenticator interface {
	Login(username, password string) (string, error)
}

type Config struct {
	// SecureCookie marks the admin session cookie Secure.
	SecureCookie bool
	Metrics      *metrics.Payments
}

// Handler serves the storefront and support REST endpoints.
type Handler struct {
	checkout checkout.Service
	orders   order.Service
	status   StatusReader
	products product.Service
	admin    Authenticator
	cfg      Config
}

func New(
	checkoutSvc checkout.Service,
	orders order.Service,
	status StatusReader,
	products product.Service,
	admin Authenticator,
	cfg Config,
) *Handler {
	if cfg.Metrics == nil {
		cfg.Metrics = metrics.Default
	}
	return &Handler{
		checkout: checkoutSvc,
		orders:   orders,
		status:   status,
		products: products,
		admin:    admin,
		cfg:      cfg,
	}
}

func (h *Handler) Health(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "text/plain; charset=utf-8")
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write([]byte("OK"))
}
