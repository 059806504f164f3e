package checkout

import (
	"context"
	"fmt"

	"bladeshop-be/internal/logger"
	"bladeshop-be/internal/order"
	"bladeshop-be/internal/payment"

	"go.uber.org/zap"
)

// Initiator starts a gateway payment for a persisted order.
type Initiator interface {
	Initiate(ctx context.Context, o *order.Order) (*payment.Initiation, error)
}

// PaymentError reports a payment initiation failure for an order that was
// created and kept, so the caller can retry against it.
type PaymentError struct {
	OrderID string
	Err     error
}

func (e *PaymentError) Error() string {
	return fmt.Sprintf("order %s: %v", e.OrderID, e.Err)
}

func (e *PaymentError) Unwrap() error {
	return e.Err
}

type Service interface {
	// Checkout creates a pending order and starts its gateway payment.
	Checkout(ctx context.Context, input order.CheckoutInput) (*payment.Initiation, error)
	// RetryPayment starts the payment of a pending order whose first
	// initiation failed, reusing the order's idempotence key.
	RetryPayment(ctx context.Context, orderID string) (*payment.Initiation, error)
}

type service struct {
	orders    order.Service
	initiator Initiator
}

func NewService(orders order.Service, initiator Initiator) Service {
	return &service{orders: orders, initiator: initiator}
}

func (s *service) Checkout(ctx context.Context, input order.CheckoutInput) (*payment.Initiation, error) {
	o, err := s.orders.CreateCheckoutOrder(ctx, input)
	if err != nil {
		return nil, err
	}

	res, err := s.initiator.Initiate(ctx, o)
	if err != nil {
		logger.FromCtx(ctx).Warn("order kept without payment",
			zap.String("layer", "service"),
			zap.String("method", "Checkout"),
			zap.String("order_id", o.ID),
			zap.Error(err),
		)
		return nil, &PaymentError{OrderID: o.ID, Err: err}
	}

	return res, nil
}

func (s *service) RetryPayment(ctx context.Context, orderID string) (*payment.Initiation, error) {
	log := logger.FromCtx(ctx).With(
		zap.String("layer", "service"),
		zap.String("method", "RetryPayment"),
		zap.String("order_id", orderID),
	)

	o, err := s.orders.GetOrder(ctx, orderID)
	if err != nil {
		return nil, err
	}

	if o.Status != order.StatusPending || o.PaymentID != nil {
		log.Warn("payment retry refused",
			zap.String("status", string(o.Status)),
			zap.Bool("has_payment", o.PaymentID != nil),
		)
		return nil, payment.ErrNotRetryable
	}

	res, err := s.initiator.Initiate(ctx, o)
	if err != nil {
		return nil, &PaymentError{OrderID: o.ID, Err: err}
	}

	log.Info("payment retry succeeded", zap.String("payment_id", res.PaymentID))
	return res, nil
}
