package payment

import (
	"context"
	"errors"
	"testing"

	"bladeshop-be/internal/order"
	"bladeshop-be/internal/utils"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

func TestDeriveStatus(t *testing.T) {
	payID := utils.StrPtr("pay-1")

	tests := []struct {
		name     string
		order    *order.Order
		payment  *Payment
		expected Derivation
	}{
		{
			name:     "manual order ignores payment",
			order:    &order.Order{Status: order.StatusManualProcessing, PaymentID: payID},
			payment:  &Payment{PaymentID: "pay-1", Status: StatusSucceeded},
			expected: Derivation{PaymentStatus: "manual"},
		},
		{
			name:     "persisted non-pending status wins",
			order:    &order.Order{Status: order.StatusPending, PaymentID: payID},
			payment:  &Payment{PaymentID: "pay-1", Status: StatusWaitingForCapture},
			expected: Derivation{PaymentStatus: "waiting_for_capture"},
		},
		{
			name:     "succeeded payment with unpaid order",
			order:    &order.Order{Status: order.StatusPending, PaymentID: payID},
			payment:  &Payment{PaymentID: "pay-1", Status: StatusSucceeded},
			expected: Derivation{PaymentStatus: "succeeded", MarkPaid: true},
		},
		{
			name:     "succeeded payment with paid order",
			order:    &order.Order{Status: order.StatusPaid, PaymentID: payID},
			payment:  &Payment{PaymentID: "pay-1", Status: StatusSucceeded},
			expected: Derivation{PaymentStatus: "succeeded"},
		},
		{
			name:     "pending payment needs live fetch",
			order:    &order.Order{Status: order.StatusPending, PaymentID: payID},
			payment:  &Payment{PaymentID: "pay-1", Status: StatusPending},
			expected: Derivation{PaymentStatus: "pending", FetchPaymentID: "pay-1"},
		},
		{
			name:     "payment id without local row",
			order:    &order.Order{Status: order.StatusPending, PaymentID: payID},
			expected: Derivation{PaymentStatus: "pending", FetchPaymentID: "pay-1"},
		},
		{
			name:     "no payment at all",
			order:    &order.Order{Status: order.StatusCancelled},
			expected: Derivation{PaymentStatus: "cancelled"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, DeriveStatus(tt.order, tt.payment))
		})
	}
}

func TestStatusService_PaymentStatus(t *testing.T) {
	ctx := context.Background()

	pendingOrder := func() *order.Order {
		return &order.Order{
			ID:          "ord-1",
			Email:       "buyer@example.com",
			Status:      order.StatusPending,
			PaymentID:   utils.StrPtr("pay-1"),
			TotalAmount: 15990,
			Currency:    "RUB",
			Items:       []*order.OrderItem{{Quantity: 1, Price: 15990, ProductName: "JRZ Pro Black DLC"}},
		}
	}

	type deps struct {
		orders   *MockOrderRepository
		payments *MockRepository
		gateway  *MockGateway
		notifier *MockNotifier
		svc      *StatusService
	}
	setup := func() deps {
		d := deps{
			orders:   new(MockOrderRepository),
			payments: new(MockRepository),
			gateway:  new(MockGateway),
			notifier: new(MockNotifier),
		}
		d.svc = NewStatusService(d.orders, d.payments, d.gateway, d.notifier)
		return d
	}

	t.Run("ManualOrderNeverCallsGateway", func(t *testing.T) {
		d := setup()
		d.orders.On("GetOrder", ctx, "ord-1").
			Return(&order.Order{ID: "ord-1", Status: order.StatusManualProcessing, TotalAmount: 15990}, nil)

		view, err := d.svc.PaymentStatus(ctx, "ord-1")

		require.NoError(t, err)
		assert.Equal(t, "manual", view.PaymentStatus)
		assert.Equal(t, "manual_processing", view.Status)
		d.gateway.AssertNotCalled(t, "GetPayment", mock.Anything, mock.Anything)
		d.payments.AssertNotCalled(t, "GetLatestByOrder", mock.Anything, mock.Anything)
	})

	t.Run("PersistedStatusWithoutGatewayCall", func(t *testing.T) {
		d := setup()
		d.orders.On("GetOrder", ctx, "ord-1").Return(pendingOrder(), nil)
		d.payments.On("GetLatestByOrder", ctx, "ord-1").
			Return(&Payment{PaymentID: "pay-1", Status: StatusCanceled}, nil)

		view, err := d.svc.PaymentStatus(ctx, "ord-1")

		require.NoError(t, err)
		assert.Equal(t, "canceled", view.PaymentStatus)
		assert.Equal(t, int64(15990), view.Amount)
		assert.Len(t, view.Items, 1)
		d.gateway.AssertNotCalled(t, "GetPayment", mock.Anything, mock.Anything)
	})

	t.Run("SucceededPaymentAdvancesOrder", func(t *testing.T) {
		d := setup()
		d.orders.On("GetOrder", ctx, "ord-1").Return(pendingOrder(), nil)
		d.payments.On("GetLatestByOrder", ctx, "ord-1").
			Return(&Payment{PaymentID: "pay-1", Status: StatusSucceeded}, nil)
		d.payments.On("MarkOrderPaid", ctx, "ord-1").Return(true, nil)
		d.notifier.On("PaymentReceived", "ord-1").Return()

		view, err := d.svc.PaymentStatus(ctx, "ord-1")

		require.NoError(t, err)
		assert.Equal(t, "paid", view.Status)
		assert.Equal(t, "succeeded", view.PaymentStatus)
		d.notifier.AssertExpectations(t)
		d.gateway.AssertNotCalled(t, "GetPayment", mock.Anything, mock.Anything)
	})

	t.Run("LiveFetchSucceeded", func(t *testing.T) {
		d := setup()
		d.orders.On("GetOrder", ctx, "ord-1").Return(pendingOrder(), nil)
		d.payments.On("GetLatestByOrder", ctx, "ord-1").
			Return(&Payment{PaymentID: "pay-1", Status: StatusPending}, nil)
		d.gateway.On("GetPayment", ctx, "pay-1").
			Return(&GatewayPayment{ID: "pay-1", Status: StatusSucceeded}, nil)
		d.payments.On("SyncStatus", ctx, mock.MatchedBy(func(p *Payment) bool {
			return p.OrderID == "ord-1" && p.PaymentID == "pay-1" && p.Status == StatusSucceeded
		})).Return(true, nil)
		d.notifier.On("PaymentReceived", "ord-1").Return()

		view, err := d.svc.PaymentStatus(ctx, "ord-1")

		require.NoError(t, err)
		assert.Equal(t, "succeeded", view.PaymentStatus)
		assert.Equal(t, "paid", view.Status)
		d.payments.AssertExpectations(t)
		d.notifier.AssertExpectations(t)
	})

	t.Run("LiveFetchUnchanged_NoWrite", func(t *testing.T) {
		d := setup()
		d.orders.On("GetOrder", ctx, "ord-1").Return(pendingOrder(), nil)
		d.payments.On("GetLatestByOrder", ctx, "ord-1").
			Return(&Payment{PaymentID: "pay-1", Status: StatusPending}, nil)
		d.gateway.On("GetPayment", ctx, "pay-1").
			Return(&GatewayPayment{ID: "pay-1", Status: StatusPending}, nil)

		view, err := d.svc.PaymentStatus(ctx, "ord-1")

		require.NoError(t, err)
		assert.Equal(t, "pending", view.PaymentStatus)
		d.payments.AssertNotCalled(t, "SyncStatus", mock.Anything, mock.Anything)
	})

	t.Run("StalePendingNeverRegressesPaidOrder", func(t *testing.T) {
		d := setup()
		o := pendingOrder()
		o.Status = order.StatusPaid
		d.orders.On("GetOrder", ctx, "ord-1").Return(o, nil)
		d.payments.On("GetLatestByOrder", ctx, "ord-1").
			Return(&Payment{PaymentID: "pay-1", Status: StatusSucceeded}, nil)

		for i := 0; i < 3; i++ {
			view, err := d.svc.PaymentStatus(ctx, "ord-1")
			require.NoError(t, err)
			assert.Equal(t, "paid", view.Status)
			assert.Equal(t, "succeeded", view.PaymentStatus)
		}
		d.gateway.AssertNotCalled(t, "GetPayment", mock.Anything, mock.Anything)
		d.payments.AssertNotCalled(t, "MarkOrderPaid", mock.Anything, mock.Anything)
	})

	t.Run("GatewayFailureFallsBack", func(t *testing.T) {
		d := setup()
		d.orders.On("GetOrder", ctx, "ord-1").Return(pendingOrder(), nil)
		d.payments.On("GetLatestByOrder", ctx, "ord-1").Return(nil, ErrPaymentNotFound)
		d.gateway.On("GetPayment", ctx, "pay-1").Return(nil, errors.New("timeout"))

		view, err := d.svc.PaymentStatus(ctx, "ord-1")

		require.NoError(t, err)
		assert.Equal(t, "pending", view.PaymentStatus)
		assert.Equal(t, "pending", view.Status)
		d.payments.AssertNotCalled(t, "SyncStatus", mock.Anything, mock.Anything)
	})

	t.Run("NoPaymentYet", func(t *testing.T) {
		d := setup()
		o := pendingOrder()
		o.PaymentID = nil
		d.orders.On("GetOrder", ctx, "ord-1").Return(o, nil)
		d.payments.On("GetLatestByOrder", ctx, "ord-1").Return(nil, ErrPaymentNotFound)

		view, err := d.svc.PaymentStatus(ctx, "ord-1")

		require.NoError(t, err)
		assert.Equal(t, "pending", view.PaymentStatus)
		d.gateway.AssertNotCalled(t, "GetPayment", mock.Anything, mock.Anything)
	})

	t.Run("OrderNotFound", func(t *testing.T) {
		d := setup()
		d.orders.On("GetOrder", ctx, "missing").Return(nil, order.ErrOrderNotFound)

		_, err := d.svc.PaymentStatus(ctx, "missing")
		assert.ErrorIs(t, err, order.ErrOrderNotFound)
	})
}

func TestTransition_OrderStatus(t *testing.T) {
	tests := []struct {
		status Status
		want   order.Status
		ok     bool
	}{
		{StatusSucceeded, order.StatusPaid, true},
		{StatusCanceled, order.StatusCancelled, true},
		{StatusWaitingForCapture, "", false},
		{StatusPending, "", false},
	}

	for _, tt := range tests {
		t.Run(string(tt.status), func(t *testing.T) {
			got, ok := Transition{PaymentStatus: tt.status}.OrderStatus()
			assert.Equal(t, tt.ok, ok)
			assert.Equal(t, tt.want, got)
		})
	}
}
