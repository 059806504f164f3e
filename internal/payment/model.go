package payment

import (
	"time"

	"bladeshop-be/internal/order"
)

// Status mirrors the gateway's payment vocabulary.
type Status string

const (
	StatusPending           Status = "pending"
	StatusWaitingForCapture Status = "waiting_for_capture"
	StatusSucceeded         Status = "succeeded"
	StatusCanceled          Status = "canceled"
)

// Terminal reports whether no further gateway transition is expected.
func (s Status) Terminal() bool {
	return s == StatusSucceeded || s == StatusCanceled
}

type Payment struct {
	ID            string
	OrderID       string
	PaymentID     string
	Status        Status
	Amount        int64
	Currency      string
	CustomerEmail *string
	CreatedAt     time.Time
	UpdatedAt     time.Time
}

// Transition is a gateway-reported status change applied to a payment and
// its order in one step.
type Transition struct {
	OrderID       string
	PaymentID     string
	PaymentStatus Status
}

// OrderStatus returns the order status implied by the transition, if any.
func (t Transition) OrderStatus() (order.Status, bool) {
	switch t.PaymentStatus {
	case StatusSucceeded:
		return order.StatusPaid, true
	case StatusCanceled:
		return order.StatusCancelled, true
	}
	return "", false
}

// Initiation is what a client needs to continue to the gateway's payment page.
type Initiation struct {
	OrderID         string `json:"orderId"`
	PaymentID       string `json:"paymentId"`
	ConfirmationURL string `json:"confirmationUrl"`
}

// StatusView is the reconciled payment state reported to polling clients.
type StatusView struct {
	OrderID       string           `json:"orderId"`
	Status        string           `json:"status"`
	PaymentStatus string           `json:"paymentStatus"`
	Amount        int64            `json:"amount"`
	Currency      string           `json:"currency"`
	Items         []order.ItemView `json:"items"`
}
