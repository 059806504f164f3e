package payment

import (
	"context"
	"errors"

	"bladeshop-be/internal/logger"
	"bladeshop-be/internal/order"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

// PaymentNotifier is told when an order has just become paid. Implementations
// must return immediately.
type PaymentNotifier interface {
	PaymentReceived(orderID string)
}

// Derivation is the reported payment status for an order plus the follow-up
// work needed to keep persisted rows in line with it.
type Derivation struct {
	PaymentStatus string
	// FetchPaymentID is set when the gateway must be asked for a live status.
	FetchPaymentID string
	// MarkPaid is set when a succeeded payment has not yet advanced the order.
	MarkPaid bool
}

// DeriveStatus computes the externally reported payment status from persisted
// state alone. p is the latest payment of the order, or nil.
func DeriveStatus(o *order.Order, p *Payment) Derivation {
	if o.Status == order.StatusManualProcessing {
		return Derivation{PaymentStatus: order.PaymentStatusManual}
	}

	if p != nil && p.Status != StatusPending {
		return Derivation{
			PaymentStatus: string(p.Status),
			MarkPaid:      p.Status == StatusSucceeded && o.Status != order.StatusPaid,
		}
	}

	paymentID := ""
	if o.PaymentID != nil {
		paymentID = *o.PaymentID
	} else if p != nil {
		paymentID = p.PaymentID
	}

	if paymentID != "" {
		last := string(o.Status)
		if p != nil {
			last = string(p.Status)
		}
		return Derivation{PaymentStatus: last, FetchPaymentID: paymentID}
	}

	return Derivation{PaymentStatus: string(o.Status)}
}

// StatusService answers payment status polls, reconciling with the gateway
// while the local payment is still pending.
type StatusService struct {
	orders   order.Repository
	payments Repository
	gateway  Gateway
	notifier PaymentNotifier
}

func NewStatusService(orders order.Repository, payments Repository, gateway Gateway, notifier PaymentNotifier) *StatusService {
	return &StatusService{
		orders:   orders,
		payments: payments,
		gateway:  gateway,
		notifier: notifier,
	}
}

func (s *StatusService) PaymentStatus(ctx context.Context, orderID string) (*StatusView, error) {
	log := logger.FromCtx(ctx).With(
		zap.String("layer", "service"),
		zap.String("method", "PaymentStatus"),
		zap.String("order_id", orderID),
	)

	o, err := s.orders.GetOrder(ctx, orderID)
	if err != nil {
		return nil, err
	}

	var p *Payment
	if o.Status != order.StatusManualProcessing {
		p, err = s.payments.GetLatestByOrder(ctx, o.ID)
		if errors.Is(err, ErrPaymentNotFound) {
			p = nil
		} else if err != nil {
			log.Error("failed to load payment", zap.Error(err))
			return nil, err
		}
	}

	d := DeriveStatus(o, p)
	view := &StatusView{
		OrderID:       o.ID,
		Status:        string(o.Status),
		PaymentStatus: d.PaymentStatus,
		Amount:        o.TotalAmount,
		Currency:      o.Currency,
		Items:         order.ToItemViews(o.Items),
	}

	if d.MarkPaid {
		changed, err := s.payments.MarkOrderPaid(ctx, o.ID)
		if err != nil {
			log.Error("failed to advance order to paid", zap.Error(err))
		} else {
			view.Status = string(order.StatusPaid)
			if changed {
				s.paymentReceived(o.ID)
			}
		}
	}

	if d.FetchPaymentID == "" {
		return view, nil
	}

	gp, err := s.gateway.GetPayment(ctx, d.FetchPaymentID)
	if err != nil || gp.Status == "" {
		log.Warn("live payment lookup failed, reporting last known status",
			zap.String("payment_id", d.FetchPaymentID),
			zap.Error(err),
		)
		return view, nil
	}

	if p == nil || p.Status != gp.Status {
		advanced, err := s.payments.SyncStatus(ctx, &Payment{
			ID:            uuid.NewString(),
			OrderID:       o.ID,
			PaymentID:     d.FetchPaymentID,
			Status:        gp.Status,
			Amount:        o.TotalAmount,
			Currency:      o.Currency,
			CustomerEmail: emailOf(o, p),
		})
		if err != nil {
			log.Error("failed to persist live payment status", zap.Error(err))
			return view, nil
		}
		if advanced {
			s.paymentReceived(o.ID)
		}
	}

	view.PaymentStatus = string(gp.Status)
	if gp.Status == StatusSucceeded {
		view.Status = string(order.StatusPaid)
	}

	return view, nil
}

func (s *StatusService) paymentReceived(orderID string) {
	if s.notifier != nil {
		s.notifier.PaymentReceived(orderID)
	}
}

func emailOf(o *order.Order, p *Payment) *string {
	if p != nil && p.CustomerEmail != nil {
		return p.CustomerEmail
	}
	if o.Email == "" {
		return nil
	}
	email := o.Email
	return &email
}
