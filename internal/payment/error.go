package payment

import (
	"errors"
	"fmt"
)

var (
	ErrPaymentNotFound = errors.New("payment not found")
	// ErrPaymentCreation wraps every failure to start a gateway payment.
	ErrPaymentCreation = errors.New("failed to create payment")
	ErrNotRetryable    = errors.New("order is not awaiting payment initiation")
)

// GatewayError is a non-2xx answer from the payment gateway.
type GatewayError struct {
	StatusCode  int
	Code        string
	Description string
}

func (e *GatewayError) Error() string {
	if e.Description == "" {
		return fmt.Sprintf("gateway error: status %d", e.StatusCode)
	}
	return fmt.Sprintf("gateway error: status %d: %s (%s)", e.StatusCode, e.Description, e.Code)
}

// MismatchError means the gateway's own record attributes a payment to a
// different order than the caller claimed.
type MismatchError struct {
	PaymentID      string
	ClaimedOrderID string
	GatewayOrderID string
}

func (e *MismatchError) Error() string {
	return fmt.Sprintf("payment %s belongs to order %q, not %q",
		e.PaymentID, e.GatewayOrderID, e.ClaimedOrderID)
}
