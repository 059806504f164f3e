package webhook

import (
	"context"
	"crypto/subtle"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"

	"bladeshop-be/internal/logger"
	"bladeshop-be/internal/metrics"
	"bladeshop-be/internal/payment"
	"bladeshop-be/internal/utils"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

const (
	Provider = "yookassa"

	EventSucceeded         = "payment.succeeded"
	EventCanceled          = "payment.canceled"
	EventWaitingForCapture = "payment.waiting_for_capture"

	maxBodyBytes = 1 << 20
)

// Event is the gateway's notification envelope.
type Event struct {
	Type   string `json:"type"`
	Event  string `json:"event"`
	Object struct {
		ID       string           `json:"id"`
		Status   payment.Status   `json:"status"`
		Paid     bool             `json:"paid"`
		Amount   payment.Amount   `json:"amount"`
		Metadata payment.Metadata `json:"metadata"`
	} `json:"object"`
}

// Name returns the event name. The gateway puts it in "event" and sends
// type "notification"; older payloads carry it in "type".
func (e *Event) Name() string {
	if strings.HasPrefix(e.Type, "payment.") {
		return e.Type
	}
	return e.Event
}

var transitions = map[string]payment.Status{
	EventSucceeded:         payment.StatusSucceeded,
	EventCanceled:          payment.StatusCanceled,
	EventWaitingForCapture: payment.StatusWaitingForCapture,
}

// Receiver handles POST /webhooks/payment-gateway/{token}.
type Receiver struct {
	payments payment.Repository
	gateway  payment.Gateway
	notifier payment.PaymentNotifier
	token    string
	metrics  *metrics.Payments
}

func NewReceiver(
	payments payment.Repository,
	gateway payment.Gateway,
	notifier payment.PaymentNotifier,
	token string,
	m *metrics.Payments,
) *Receiver {
	if m == nil {
		m = metrics.Default
	}
	return &Receiver{
		payments: payments,
		gateway:  gateway,
		notifier: notifier,
		token:    token,
		metrics:  m,
	}
}

func (h *Receiver) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	log := logger.FromCtx(ctx).With(zap.String("layer", "webhook"))

	h.metrics.WebhooksReceived.Inc()

	if !h.authorized(r.PathValue("token")) {
		h.metrics.WebhooksRejected.Inc()
		log.Warn("webhook rejected: bad token", zap.String("ip", r.RemoteAddr))
		utils.WriteJSONError(w, "Unauthorized", http.StatusUnauthorized)
		return
	}

	raw, err := io.ReadAll(io.LimitReader(r.Body, maxBodyBytes))
	if err != nil {
		utils.WriteJSONError(w, "Failed to read body", http.StatusBadRequest)
		return
	}

	var ev Event
	if err := json.Unmarshal(raw, &ev); err != nil {
		log.Warn("webhook rejected: invalid JSON", zap.Error(err))
		utils.WriteJSONError(w, "Invalid JSON payload", http.StatusBadRequest)
		return
	}

	name := ev.Name()
	paymentID := ev.Object.ID
	orderID := ev.Object.Metadata.OrderID

	log = log.With(
		zap.String("event", name),
		zap.String("payment_id", paymentID),
		zap.String("order_id", orderID),
	)
	log.Info("webhook received")

	if paymentID == "" {
		log.Warn("webhook rejected: missing payment id")
		utils.WriteJSONError(w, "Missing payment id", http.StatusBadRequest)
		return
	}
	if orderID == "" {
		log.Warn("webhook rejected: missing orderId in metadata")
		utils.WriteJSONError(w, "Missing orderId", http.StatusBadRequest)
		return
	}

	webhookID, processed, err := h.payments.SaveWebhook(ctx, payment.WebhookRecord{
		Provider:  Provider,
		EventKey:  name + ":" + paymentID,
		EventType: name,
		PaymentID: paymentID,
		OrderID:   orderID,
		Payload:   raw,
	})
	if err != nil {
		log.Error("failed to record webhook", zap.Error(err))
		webhookID = 0
	} else if processed {
		h.metrics.WebhooksDuplicate.Inc()
		log.Info("webhook already processed")
		writeOK(w)
		return
	}

	status, code, err := h.process(ctx, name, paymentID, orderID)
	if err != nil {
		h.metrics.WebhooksFailed.Inc()
		h.markFailed(ctx, webhookID, err)
		log.Error("webhook processing failed", zap.Int("status", code), zap.Error(err))
		utils.WriteJSONError(w, status, code)
		return
	}

	if webhookID != 0 {
		if err := h.payments.MarkWebhookProcessed(ctx, webhookID); err != nil {
			log.Warn("failed to mark webhook processed", zap.Error(err))
		}
	}

	writeOK(w)
}

// process reconciles the payment and applies the transition. On failure it
// returns the client message and HTTP status to answer with.
func (h *Receiver) process(ctx context.Context, name, paymentID, orderID string) (string, int, error) {
	log := logger.FromCtx(ctx).With(
		zap.String("layer", "webhook"),
		zap.String("payment_id", paymentID),
		zap.String("order_id", orderID),
	)

	existing, err := h.payments.GetByPaymentID(ctx, paymentID)
	switch {
	case errors.Is(err, payment.ErrPaymentNotFound):
		if msg, code, err := h.createFromGateway(ctx, paymentID, orderID); err != nil {
			return msg, code, err
		}
	case err != nil:
		return "Webhook processing failed", http.StatusInternalServerError, err
	case existing.OrderID != orderID:
		return "Order mismatch", http.StatusConflict, &payment.MismatchError{
			PaymentID:      paymentID,
			ClaimedOrderID: orderID,
			GatewayOrderID: existing.OrderID,
		}
	}

	status, ok := transitions[name]
	if !ok {
		h.metrics.WebhooksIgnored.Inc()
		log.Info("unhandled webhook event ignored", zap.String("event", name))
		return "", http.StatusOK, nil
	}

	changed, err := h.payments.ApplyTransition(ctx, payment.Transition{
		OrderID:       orderID,
		PaymentID:     paymentID,
		PaymentStatus: status,
	})
	if err != nil {
		return "Webhook processing failed", http.StatusInternalServerError, err
	}

	if changed && status == payment.StatusSucceeded && h.notifier != nil {
		h.notifier.PaymentReceived(orderID)
	}

	return "", http.StatusOK, nil
}

// createFromGateway closes the gap between a gateway payment and a missing
// local row, after checking the gateway attributes it to the same order.
func (h *Receiver) createFromGateway(ctx context.Context, paymentID, orderID string) (string, int, error) {
	gp, err := h.gateway.GetPayment(ctx, paymentID)
	if err != nil {
		return "Webhook processing failed", http.StatusBadGateway, fmt.Errorf("verify payment: %w", err)
	}

	if gp.Metadata.OrderID != orderID {
		return "Order mismatch", http.StatusConflict, &payment.MismatchError{
			PaymentID:      paymentID,
			ClaimedOrderID: orderID,
			GatewayOrderID: gp.Metadata.OrderID,
		}
	}

	amount, err := gp.Amount.Units()
	if err != nil {
		return "Webhook processing failed", http.StatusInternalServerError, err
	}

	status := gp.Status
	if status == "" {
		status = payment.StatusPending
	}

	created, err := h.payments.CreateIfAbsent(ctx, &payment.Payment{
		ID:        uuid.NewString(),
		OrderID:   orderID,
		PaymentID: paymentID,
		Status:    status,
		Amount:    amount,
		Currency:  gp.Amount.Currency,
	})
	if err != nil {
		return "Webhook processing failed", http.StatusInternalServerError, err
	}

	logger.FromCtx(ctx).Info("payment reconciled from gateway",
		zap.String("payment_id", paymentID),
		zap.String("order_id", orderID),
		zap.Bool("created", created),
	)
	return "", http.StatusOK, nil
}

func (h *Receiver) authorized(token string) bool {
	if h.token == "" || token == "" {
		return false
	}
	return subtle.ConstantTimeCompare([]byte(token), []byte(h.token)) == 1
}

func (h *Receiver) markFailed(ctx context.Context, webhookID int64, cause error) {
	if webhookID == 0 {
		return
	}
	if err := h.payments.MarkWebhookFailed(ctx, webhookID, cause.Error()); err != nil {
		logger.FromCtx(ctx).Warn("failed to mark webhook failed", zap.Error(err))
	}
}

func writeOK(w http.ResponseWriter) {
	utils.WriteJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}
