package payment

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"bladeshop-be/internal/logger"
	"bladeshop-be/internal/metrics"

	"go.uber.org/zap"
)

const (
	DefaultGatewayURL     = "https://api.yookassa.ru/v3"
	defaultGatewayTimeout = 15 * time.Second
)

// Gateway is the outbound payment provider.
type Gateway interface {
	// CreatePayment must be called with the order's stored idempotence key;
	// repeating a call with the same key never creates a second payment.
	CreatePayment(ctx context.Context, req CreatePaymentRequest, idempotenceKey string) (*GatewayPayment, error)
	GetPayment(ctx context.Context, paymentID string) (*GatewayPayment, error)
}

type Metadata struct {
	OrderID string `json:"orderId,omitempty"`
}

type Confirmation struct {
	Type            string `json:"type"`
	ReturnURL       string `json:"return_url,omitempty"`
	ConfirmationURL string `json:"confirmation_url,omitempty"`
}

type ReceiptCustomer struct {
	Email string `json:"email,omitempty"`
	Phone string `json:"phone,omitempty"`
}

type ReceiptItem struct {
	Description string `json:"description"`
	Quantity    string `json:"quantity"`
	Amount      Amount `json:"amount"`
	VatCode     int    `json:"vat_code"`
}

type Receipt struct {
	Customer ReceiptCustomer `json:"customer"`
	Items    []ReceiptItem   `json:"items"`
}

// CreatePaymentRequest is the body of POST /payments. Amount and
// Confirmation are required; Receipt is sent only when fiscal receipts are on.
type CreatePaymentRequest struct {
	Amount       Amount       `json:"amount"`
	Capture      bool         `json:"capture"`
	Description  string       `json:"description,omitempty"`
	Metadata     Metadata     `json:"metadata"`
	Confirmation Confirmation `json:"confirmation"`
	Receipt      *Receipt     `json:"receipt,omitempty"`
}

func (r CreatePaymentRequest) validate() error {
	if r.Amount.Value == "" || r.Amount.Currency == "" {
		return fmt.Errorf("amount is required")
	}
	if r.Confirmation.Type == "" {
		return fmt.Errorf("confirmation is required")
	}
	return nil
}

// GatewayPayment is the provider's view of a payment.
type GatewayPayment struct {
	ID           string        `json:"id"`
	Status       Status        `json:"status"`
	Paid         bool          `json:"paid"`
	Amount       Amount        `json:"amount"`
	Confirmation *Confirmation `json:"confirmation,omitempty"`
	CreatedAt    string        `json:"created_at"`
	Metadata     Metadata      `json:"metadata"`
}

func (p *GatewayPayment) ConfirmationURL() string {
	if p.Confirmation == nil {
		return ""
	}
	return p.Confirmation.ConfirmationURL
}

type GatewayConfig struct {
	ShopID    string
	SecretKey string
	BaseURL   string
	Timeout   time.Duration
}

type yooKassaGateway struct {
	shopID     string
	secretKey  string
	baseURL    string
	httpClient *http.Client
	metrics    *metrics.Payments
}

func NewYooKassaGateway(cfg GatewayConfig, m *metrics.Payments) Gateway {
	if cfg.ShopID == "" || cfg.SecretKey == "" {
		logger.L().Warn("YooKassa credentials are empty")
	}
	if cfg.BaseURL == "" {
		cfg.BaseURL = DefaultGatewayURL
	}
	if cfg.Timeout <= 0 {
		cfg.Timeout = defaultGatewayTimeout
	}
	if m == nil {
		m = metrics.Default
	}

	return &yooKassaGateway{
		shopID:    cfg.ShopID,
		secretKey: cfg.SecretKey,
		baseURL:   strings.TrimRight(cfg.BaseURL, "/"),
		httpClient: &http.Client{
			Timeout: cfg.Timeout,
		},
		metrics: m,
	}
}

func (g *yooKassaGateway) CreatePayment(
	ctx context.Context,
	req CreatePaymentRequest,
	idempotenceKey string,
) (*GatewayPayment, error) {
	log := logger.FromCtx(ctx).With(
		zap.String("layer", "gateway"),
		zap.String("method", "CreatePayment"),
		zap.String("order_id", req.Metadata.OrderID),
		zap.String("amount", req.Amount.Value),
	)

	if idempotenceKey == "" {
		return nil, fmt.Errorf("idempotence key is required")
	}
	if err := req.validate(); err != nil {
		return nil, err
	}

	body, err := json.Marshal(req)
	if err != nil {
		log.Error("failed to marshal payment request", zap.Error(err))
		return nil, err
	}

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, g.baseURL+"/payments", bytes.NewReader(body))
	if err != nil {
		return nil, err
	}
	httpReq.Header.Set("Content-Type", "application/json")
	httpReq.Header.Set("Idempotence-Key", idempotenceKey)

	log.Info("sending payment request to gateway")

	var res GatewayPayment
	if err := g.do(httpReq, &res); err != nil {
		log.Error("gateway payment creation failed", zap.Error(err))
		return nil, err
	}

	log.Info("gateway payment created",
		zap.String("payment_id", res.ID),
		zap.String("status", string(res.Status)),
	)
	return &res, nil
}

func (g *yooKassaGateway) GetPayment(ctx context.Context, paymentID string) (*GatewayPayment, error) {
	log := logger.FromCtx(ctx).With(
		zap.String("layer", "gateway"),
		zap.String("method", "GetPayment"),
		zap.String("payment_id", paymentID),
	)

	if paymentID == "" {
		return nil, fmt.Errorf("payment id is required")
	}

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodGet, g.baseURL+"/payments/"+url.PathEscape(paymentID), nil)
	if err != nil {
		return nil, err
	}

	var res GatewayPayment
	if err := g.do(httpReq, &res); err != nil {
		log.Warn("gateway payment lookup failed", zap.Error(err))
		return nil, err
	}

	return &res, nil
}

// do sends an authenticated request and decodes a 2xx JSON body into out.
func (g *yooKassaGateway) do(req *http.Request, out interface{}) error {
	req.SetBasicAuth(g.shopID, g.secretKey)
	req.Header.Set("Accept", "application/json")

	g.metrics.GatewayRequests.Inc()
	timer := metrics.StartTimer()
	defer timer.ObserveInto(&g.metrics.GatewayMillis)

	resp, err := g.httpClient.Do(req)
	if err != nil {
		g.metrics.GatewayFailures.Inc()
		return fmt.Errorf("gateway request failed: %w", err)
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(io.LimitReader(resp.Body, 1<<20))
	if err != nil {
		g.metrics.GatewayFailures.Inc()
		return fmt.Errorf("failed to read gateway response: %w", err)
	}

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		g.metrics.GatewayFailures.Inc()
		gwErr := &GatewayError{StatusCode: resp.StatusCode}
		var body struct {
			Code        string `json:"code"`
			Description string `json:"description"`
		}
		if json.Unmarshal(raw, &body) == nil {
			gwErr.Code = body.Code
			gwErr.Description = body.Description
		}
		return gwErr
	}

	if err := json.Unmarshal(raw, out); err != nil {
		g.metrics.GatewayFailures.Inc()
		return fmt.Errorf("failed to decode gateway response: %w", err)
	}
	return nil
}
