package notify

import (
	"context"
	"fmt"
	"time"
	_ "time/tzdata"

	"bladeshop-be/internal/logger"
	"bladeshop-be/internal/order"

	"go.uber.org/zap"
)

// Submitter accepts background jobs without blocking.
type Submitter interface {
	Submit(job Job) bool
}

// OrderLoader reads an order with its items.
type OrderLoader interface {
	GetOrder(ctx context.Context, orderID string) (*order.Order, error)
}

// Notifier turns order events into e-mails sent in the background.
type Notifier struct {
	mailer     Mailer
	jobs       Submitter
	orders     OrderLoader
	adminEmail string
	loc        *time.Location
	now        func() time.Time
}

func NewNotifier(mailer Mailer, jobs Submitter, orders OrderLoader, adminEmail string) *Notifier {
	loc, err := time.LoadLocation("Europe/Moscow")
	if err != nil {
		logger.L().Error("failed to load Moscow location, defaulting to UTC", zap.Error(err))
		loc = time.UTC
	}

	return &Notifier{
		mailer:     mailer,
		jobs:       jobs,
		orders:     orders,
		adminEmail: adminEmail,
		loc:        loc,
		now:        time.Now,
	}
}

// ManualOrderPlaced queues the admin alert and the customer confirmation.
func (n *Notifier) ManualOrderPlaced(o *order.Order) {
	now := n.now().In(n.loc)

	if n.adminEmail != "" {
		n.jobs.Submit(Job{
			Name: "admin-order-email:" + o.ID,
			Run: func(ctx context.Context) error {
				msg, err := AdminOrderMessage(n.adminEmail, o, now)
				if err != nil {
					return fmt.Errorf("render admin email: %w", err)
				}
				return n.mailer.Send(ctx, msg)
			},
		})
	} else {
		logger.L().Warn("ADMIN_EMAIL not set, admin notification skipped", zap.String("order_id", o.ID))
	}

	n.jobs.Submit(Job{
		Name: "customer-order-email:" + o.ID,
		Run: func(ctx context.Context) error {
			msg, err := CustomerOrderMessage(o, now)
			if err != nil {
				return fmt.Errorf("render customer email: %w", err)
			}
			return n.mailer.Send(ctx, msg)
		},
	})
}

// PaymentReceived queues the customer's payment confirmation. The order is
// loaded inside the job so the caller never waits on the database.
func (n *Notifier) PaymentReceived(orderID string) {
	now := n.now().In(n.loc)

	n.jobs.Submit(Job{
		Name: "payment-received-email:" + orderID,
		Run: func(ctx context.Context) error {
			o, err := n.orders.GetOrder(ctx, orderID)
			if err != nil {
				return fmt.Errorf("load order: %w", err)
			}
			msg, err := PaymentReceivedMessage(o, now)
			if err != nil {
				return fmt.Errorf("render payment email: %w", err)
			}
			return n.mailer.Send(ctx, msg)
		},
	})
}
