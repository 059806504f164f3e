package checkout

import (
	"context"
	"errors"
	"testing"

	"bladeshop-be/internal/order"
	"bladeshop-be/internal/payment"
	"bladeshop-be/internal/utils"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

type MockOrderService struct {
	mock.Mock
}

func (m *MockOrderService) CreateCheckoutOrder(ctx context.Context, input order.CheckoutInput) (*order.Order, error) {
	args := m.Called(ctx, input)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*order.Order), args.Error(1)
}

func (m *MockOrderService) CreateManualOrder(ctx context.Context, input order.ManualOrderInput) (*order.Order, error) {
	args := m.Called(ctx, input)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*order.Order), args.Error(1)
}

func (m *MockOrderService) GetOrder(ctx context.Context, orderID string) (*order.Order, error) {
	args := m.Called(ctx, orderID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*order.Order), args.Error(1)
}

type MockInitiator struct {
	mock.Mock
}

func (m *MockInitiator) Initiate(ctx context.Context, o *order.Order) (*payment.Initiation, error) {
	args := m.Called(ctx, o)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*payment.Initiation), args.Error(1)
}

func TestService_Checkout(t *testing.T) {
	ctx := context.Background()
	input := order.CheckoutInput{
		Email: "buyer@example.com",
		Items: []order.ItemInput{{VariantID: "V1", Quantity: 2}},
	}

	t.Run("Success", func(t *testing.T) {
		orders := new(MockOrderService)
		initiator := new(MockInitiator)
		o := &order.Order{ID: "ord-1", Status: order.StatusPending, IdempotenceKey: "idem-1"}

		orders.On("CreateCheckoutOrder", ctx, input).Return(o, nil)
		initiator.On("Initiate", ctx, o).Return(&payment.Initiation{
			OrderID: "ord-1", PaymentID: "pay-1", ConfirmationURL: "https://gateway.test/confirm",
		}, nil)

		res, err := NewService(orders, initiator).Checkout(ctx, input)

		require.NoError(t, err)
		assert.Equal(t, "pay-1", res.PaymentID)
		assert.Equal(t, "https://gateway.test/confirm", res.ConfirmationURL)
	})

	t.Run("OrderFailure_NoInitiation", func(t *testing.T) {
		orders := new(MockOrderService)
		initiator := new(MockInitiator)

		orders.On("CreateCheckoutOrder", ctx, input).Return(nil, order.ErrItemsUnavailable)

		_, err := NewService(orders, initiator).Checkout(ctx, input)

		assert.ErrorIs(t, err, order.ErrItemsUnavailable)
		initiator.AssertNotCalled(t, "Initiate", mock.Anything, mock.Anything)
	})

	t.Run("PaymentFailure_KeepsOrderID", func(t *testing.T) {
		orders := new(MockOrderService)
		initiator := new(MockInitiator)
		o := &order.Order{ID: "ord-1", Status: order.StatusPending}

		orders.On("CreateCheckoutOrder", ctx, input).Return(o, nil)
		initiator.On("Initiate", ctx, o).
			Return(nil, errors.Join(payment.ErrPaymentCreation, errors.New("timeout")))

		_, err := NewService(orders, initiator).Checkout(ctx, input)

		var perr *PaymentError
		require.ErrorAs(t, err, &perr)
		assert.Equal(t, "ord-1", perr.OrderID)
		assert.ErrorIs(t, err, payment.ErrPaymentCreation)
	})
}

func TestService_RetryPayment(t *testing.T) {
	ctx := context.Background()

	t.Run("ReusesStoredOrder", func(t *testing.T) {
		orders := new(MockOrderService)
		initiator := new(MockInitiator)
		o := &order.Order{ID: "ord-1", Status: order.StatusPending, IdempotenceKey: "idem-1"}

		orders.On("GetOrder", ctx, "ord-1").Return(o, nil)
		initiator.On("Initiate", ctx, mock.MatchedBy(func(got *order.Order) bool {
			return got.IdempotenceKey == "idem-1"
		})).Return(&payment.Initiation{OrderID: "ord-1", PaymentID: "pay-1"}, nil)

		res, err := NewService(orders, initiator).RetryPayment(ctx, "ord-1")

		require.NoError(t, err)
		assert.Equal(t, "pay-1", res.PaymentID)
		initiator.AssertExpectations(t)
	})

	t.Run("AlreadyHasPayment", func(t *testing.T) {
		orders := new(MockOrderService)
		initiator := new(MockInitiator)

		orders.On("GetOrder", ctx, "ord-1").
			Return(&order.Order{ID: "ord-1", Status: order.StatusPending, PaymentID: utils.StrPtr("pay-1")}, nil)

		_, err := NewService(orders, initiator).RetryPayment(ctx, "ord-1")

		assert.ErrorIs(t, err, payment.ErrNotRetryable)
		initiator.AssertNotCalled(t, "Initiate", mock.Anything, mock.Anything)
	})

	t.Run("ManualOrder", func(t *testing.T) {
		orders := new(MockOrderService)
		initiator := new(MockInitiator)

		orders.On("GetOrder", ctx, "ord-2").
			Return(&order.Order{ID: "ord-2", Status: order.StatusManualProcessing}, nil)

		_, err := NewService(orders, initiator).RetryPayment(ctx, "ord-2")

		assert.ErrorIs(t, err, payment.ErrNotRetryable)
	})

	t.Run("NotFound", func(t *testing.T) {
		orders := new(MockOrderService)
		orders.On("GetOrder", ctx, "missing").Return(nil, order.ErrOrderNotFound)

		_, err := NewService(orders, new(MockInitiator)).RetryPayment(ctx, "missing")

		assert.ErrorIs(t, err, order.ErrOrderNotFound)
	})
}
