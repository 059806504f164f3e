package payment

import (
	"context"

	"bladeshop-be/internal/order"

	"github.com/stretchr/testify/mock"
)

type MockGateway struct {
	mock.Mock
}

func (m *MockGateway) CreatePayment(ctx context.Context, req CreatePaymentRequest, key string) (*GatewayPayment, error) {
	args := m.Called(ctx, req, key)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*GatewayPayment), args.Error(1)
}

func (m *MockGateway) GetPayment(ctx context.Context, paymentID string) (*GatewayPayment, error) {
	args := m.Called(ctx, paymentID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*GatewayPayment), args.Error(1)
}

type MockRepository struct {
	mock.Mock
}

func (m *MockRepository) CreatePaymentAndLink(ctx context.Context, p *Payment) error {
	return m.Called(ctx, p).Error(0)
}

func (m *MockRepository) GetByPaymentID(ctx context.Context, paymentID string) (*Payment, error) {
	args := m.Called(ctx, paymentID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*Payment), args.Error(1)
}

func (m *MockRepository) GetLatestByOrder(ctx context.Context, orderID string) (*Payment, error) {
	args := m.Called(ctx, orderID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*Payment), args.Error(1)
}

func (m *MockRepository) CreateIfAbsent(ctx context.Context, p *Payment) (bool, error) {
	args := m.Called(ctx, p)
	return args.Bool(0), args.Error(1)
}

func (m *MockRepository) SyncStatus(ctx context.Context, p *Payment) (bool, error) {
	args := m.Called(ctx, p)
	return args.Bool(0), args.Error(1)
}

func (m *MockRepository) ApplyTransition(ctx context.Context, t Transition) (bool, error) {
	args := m.Called(ctx, t)
	return args.Bool(0), args.Error(1)
}

func (m *MockRepository) MarkOrderPaid(ctx context.Context, orderID string) (bool, error) {
	args := m.Called(ctx, orderID)
	return args.Bool(0), args.Error(1)
}

func (m *MockRepository) SaveWebhook(ctx context.Context, ev WebhookRecord) (int64, bool, error) {
	args := m.Called(ctx, ev)
	return args.Get(0).(int64), args.Bool(1), args.Error(2)
}

func (m *MockRepository) MarkWebhookProcessed(ctx context.Context, id int64) error {
	return m.Called(ctx, id).Error(0)
}

func (m *MockRepository) MarkWebhookFailed(ctx context.Context, id int64, reason string) error {
	return m.Called(ctx, id, reason).Error(0)
}

type MockOrderRepository struct {
	mock.Mock
}

func (m *MockOrderRepository) CreateOrder(ctx context.Context, o *order.Order) error {
	return m.Called(ctx, o).Error(0)
}

func (m *MockOrderRepository) GetOrder(ctx context.Context, orderID string) (*order.Order, error) {
	args := m.Called(ctx, orderID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*order.Order), args.Error(1)
}

type MockNotifier struct {
	mock.Mock
}

func (m *MockNotifier) PaymentReceived(orderID string) {
	m.Called(orderID)
}
