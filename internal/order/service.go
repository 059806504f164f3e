package order

import (
	"context"
	"strings"

	"bladeshop-be/internal/logger"
	"bladeshop-be/internal/product"
	"bladeshop-be/internal/utils"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

// Notifier is told about orders that need human follow-up. Implementations
// must not block the caller.
type Notifier interface {
	ManualOrderPlaced(order *Order)
}

type Service interface {
	// CreateCheckoutOrder prices a cart against current product data and
	// persists a gateway-backed order in StatusPending. Repeated identical
	// submissions create distinct orders.
	CreateCheckoutOrder(ctx context.Context, input CheckoutInput) (*Order, error)
	// CreateManualOrder persists an order in StatusManualProcessing; it never
	// touches the payment gateway.
	CreateManualOrder(ctx context.Context, input ManualOrderInput) (*Order, error)
	GetOrder(ctx context.Context, orderID string) (*Order, error)
}

type service struct {
	repo     Repository
	variants product.Repository
	notifier Notifier
}

func NewService(repo Repository, variants product.Repository, notifier Notifier) Service {
	if notifier == nil {
		notifier = noopNotifier{}
	}
	return &service{
		repo:     repo,
		variants: variants,
		notifier: notifier,
	}
}

func (s *service) CreateCheckoutOrder(ctx context.Context, input CheckoutInput) (*Order, error) {
	log := logger.FromCtx(ctx).With(
		zap.String("layer", "service"),
		zap.String("method", "CreateCheckoutOrder"),
		zap.Int("item_count", len(input.Items)),
	)

	log.Info("create checkout order started")

	// 1. Validate payload
	if err := Validate(input); err != nil {
		log.Warn("invalid checkout payload", zap.Error(err))
		return nil, err
	}

	// 2. Price items against active variants
	items, total, err := s.priceItems(ctx, input.Items)
	if err != nil {
		log.Warn("failed to price cart", zap.Error(err))
		return nil, err
	}

	// 3. Build order; the idempotence key is only used for the gateway call
	order := &Order{
		ID:             uuid.NewString(),
		Email:          strings.TrimSpace(input.Email),
		Phone:          normalizeOptional(input.Phone),
		TotalAmount:    total,
		Currency:       CurrencyRUB,
		Status:         StatusPending,
		IdempotenceKey: uuid.NewString(),
		Locale:         localeOrDefault(input.Locale),
		Items:          items,
	}
	attachOrderID(order)

	log = log.With(zap.String("order_id", order.ID), zap.Int64("total_amount", total))

	// 4. Persist atomically
	if err := s.repo.CreateOrder(ctx, order); err != nil {
		log.Error("failed to create order", zap.Error(err))
		return nil, err
	}

	log.Info("checkout order created")
	return order, nil
}

func (s *service) CreateManualOrder(ctx context.Context, input ManualOrderInput) (*Order, error) {
	log := logger.FromCtx(ctx).With(
		zap.String("layer", "service"),
		zap.String("method", "CreateManualOrder"),
		zap.Int("item_count", len(input.Items)),
	)

	if err := Validate(input); err != nil {
		log.Warn("invalid manual order payload", zap.Error(err))
		return nil, err
	}

	items, total, err := s.priceItems(ctx, input.Items)
	if err != nil {
		log.Warn("failed to price manual order", zap.Error(err))
		return nil, err
	}

	if input.TotalAmount != total {
		log.Warn("client total differs from server total, using server total",
			zap.Int64("client_total", input.TotalAmount),
			zap.Int64("server_total", total),
		)
	}

	country := strings.TrimSpace(input.Country)
	if country == "" {
		country = "Russia"
	}

	order := &Order{
		ID:             uuid.NewString(),
		Email:          strings.TrimSpace(input.Email),
		Phone:          utils.NilIfEmpty(input.Phone),
		TotalAmount:    total,
		Currency:       CurrencyRUB,
		Status:         StatusManualProcessing,
		IdempotenceKey: "manual_" + uuid.NewString(),
		Locale:         localeOrDefault(input.Locale),
		Shipping: &Shipping{
			FullName:   strings.TrimSpace(input.FullName),
			Address:    strings.TrimSpace(input.Address),
			City:       strings.TrimSpace(input.City),
			Region:     strings.TrimSpace(input.Region),
			PostalCode: strings.TrimSpace(input.PostalCode),
			Country:    country,
		},
		Items: items,
	}
	attachOrderID(order)

	if err := s.repo.CreateOrder(ctx, order); err != nil {
		log.Error("failed to create manual order", zap.Error(err))
		return nil, err
	}

	log.Info("manual order created",
		zap.String("order_id", order.ID),
		zap.Int64("total_amount", total),
	)

	s.notifier.ManualOrderPlaced(order)

	return order, nil
}

func (s *service) GetOrder(ctx context.Context, orderID string) (*Order, error) {
	if strings.TrimSpace(orderID) == "" {
		return nil, ErrOrderNotFound
	}
	return s.repo.GetOrder(ctx, orderID)
}

// priceItems resolves every requested variant among the active ones and
// snapshots the product price. Any unknown or inactive id fails the whole cart.
func (s *service) priceItems(ctx context.Context, input []ItemInput) ([]*OrderItem, int64, error) {
	ids := make([]string, 0, len(input))
	seen := make(map[string]bool, len(input))
	for _, it := range input {
		if !seen[it.VariantID] {
			seen[it.VariantID] = true
			ids = append(ids, it.VariantID)
		}
	}

	variants, err := s.variants.FindActiveVariants(ctx, ids)
	if err != nil {
		return nil, 0, err
	}
	if len(variants) != len(ids) {
		return nil, 0, ErrItemsUnavailable
	}

	byID := make(map[string]*product.Variant, len(variants))
	for _, v := range variants {
		byID[v.ID] = v
	}

	items := make([]*OrderItem, 0, len(input))
	var total int64
	for i, it := range input {
		v, ok := byID[it.VariantID]
		if !ok || v.Product == nil || !v.Active || !v.Product.Active {
			return nil, 0, ErrItemsUnavailable
		}

		item := &OrderItem{
			ID:          uuid.NewString(),
			VariantID:   v.ID,
			Position:    i,
			Quantity:    it.Quantity,
			Price:       v.Product.Price,
			ProductName: v.Product.Name,
			VariantType: string(v.Type),
			VariantSize: v.Size,
		}
		total += item.Subtotal()
		items = append(items, item)
	}

	return items, total, nil
}

func attachOrderID(o *Order) {
	for _, it := range o.Items {
		it.OrderID = o.ID
	}
}

func normalizeOptional(s *string) *string {
	if s == nil {
		return nil
	}
	return utils.NilIfEmpty(*s)
}

func localeOrDefault(locale string) string {
	if locale == "" {
		return DefaultLocale
	}
	return locale
}

type noopNotifier struct{}

func (noopNotifier) ManualOrderPlaced(*Order) {}
