package order

import (
	"context"
	"database/sql"
	"fmt"

	"bladeshop-be/internal/logger"
	"bladeshop-be/internal/utils"

	"go.uber.org/zap"
)

type Repository interface {
	// CreateOrder persists the order, its items and optional shipping details
	// in one transaction.
	CreateOrder(ctx context.Context, order *Order) error
	GetOrder(ctx context.Context, orderID string) (*Order, error)
}

type repository struct {
	db *sql.DB
}

func NewRepository(db *sql.DB) Repository {
	return &repository{db: db}
}

func (r *repository) CreateOrder(ctx context.Context, order *Order) error {
	log := logger.FromCtx(ctx).With(
		zap.String("layer", "repository"),
		zap.String("method", "CreateOrder"),
		zap.String("order_id", order.ID),
	)

	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		log.Error("failed to begin transaction", zap.Error(err))
		return err
	}
	defer tx.Rollback()

	// 1. Insert order
	err = tx.QueryRowContext(ctx, `
		INSERT INTO orders (
			id, email, phone, total_amount, currency,
			status, idempotence_key, locale
		) VALUES ($1,$2,$3,$4,$5,$6,$7,$8)
		RETURNING created_at, updated_at
	`,
		order.ID,
		order.Email,
		order.Phone,
		order.TotalAmount,
		order.Currency,
		order.Status,
		order.IdempotenceKey,
		order.Locale,
	).Scan(&order.CreatedAt, &order.UpdatedAt)
	if err != nil {
		log.Error("failed to insert order", zap.Error(err))
		return fmt.Errorf("insert order: %w", err)
	}

	// 2. Insert items
	for _, item := range order.Items {
		_, err = tx.ExecContext(ctx, `
			INSERT INTO order_items (
				id, order_id, variant_id, position, quantity, price
			) VALUES ($1,$2,$3,$4,$5,$6)
		`,
			item.ID,
			order.ID,
			item.VariantID,
			item.Position,
			item.Quantity,
			item.Price,
		)
		if err != nil {
			log.Error("failed to insert order item",
				zap.String("variant_id", item.VariantID),
				zap.Error(err),
			)
			return fmt.Errorf("insert order item: %w", err)
		}
	}

	// 3. Shipping details (manual orders only)
	if s := order.Shipping; s != nil {
		_, err = tx.ExecContext(ctx, `
			INSERT INTO order_shipping (
				order_id, full_name, address, city, region, postal_code, country
			) VALUES ($1,$2,$3,$4,$5,$6,$7)
		`,
			order.ID, s.FullName, s.Address, s.City, s.Region, s.PostalCode, s.Country,
		)
		if err != nil {
			log.Error("failed to insert shipping details", zap.Error(err))
			return fmt.Errorf("insert shipping: %w", err)
		}
	}

	if err := tx.Commit(); err != nil {
		log.Error("failed to commit order", zap.Error(err))
		return err
	}

	log.Info("order persisted", zap.Int("items", len(order.Items)))
	return nil
}

func (r *repository) GetOrder(ctx context.Context, orderID string) (*Order, error) {
	const q = `
		SELECT o.id, o.email, o.phone, o.total_amount, o.currency, o.status,
		       o.idempotence_key, o.payment_id, o.locale, o.created_at, o.updated_at,
		       s.full_name, s.address, s.city, s.region, s.postal_code, s.country
		FROM orders o
		LEFT JOIN order_shipping s ON s.order_id = o.id
		WHERE o.id = $1
	`

	var (
		o                                            Order
		fullName, address, city, region, postal, cty *string
	)
	err := r.db.QueryRowContext(ctx, q, orderID).Scan(
		&o.ID, &o.Email, &o.Phone, &o.TotalAmount, &o.Currency, &o.Status,
		&o.IdempotenceKey, &o.PaymentID, &o.Locale, &o.CreatedAt, &o.UpdatedAt,
		&fullName, &address, &city, &region, &postal, &cty,
	)
	if err == sql.ErrNoRows {
		return nil, ErrOrderNotFound
	}
	if err != nil {
		logger.FromCtx(ctx).Error("failed to load order",
			zap.String("order_id", orderID),
			zap.Error(err),
		)
		return nil, err
	}

	if fullName != nil {
		o.Shipping = &Shipping{
			FullName:   *fullName,
			Address:    utils.PtrString(address),
			City:       utils.PtrString(city),
			Region:     utils.PtrString(region),
			PostalCode: utils.PtrString(postal),
			Country:    utils.PtrString(cty),
		}
	}

	items, err := r.fetchItems(ctx, orderID)
	if err != nil {
		return nil, err
	}
	o.Items = items

	return &o, nil
}

func (r *repository) fetchItems(ctx context.Context, orderID string) ([]*OrderItem, error) {
	const q = `
		SELECT oi.id, oi.order_id, oi.variant_id, oi.position, oi.quantity, oi.price,
		       p.name, v.type, v.size
		FROM order_items oi
		JOIN variants v ON v.id = oi.variant_id
		JOIN products p ON p.id = v.product_id
		WHERE oi.order_id = $1
		ORDER BY oi.position
	`

	rows, err := r.db.QueryContext(ctx, q, orderID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	items := []*OrderItem{}
	for rows.Next() {
		var it OrderItem
		if err := rows.Scan(
			&it.ID, &it.OrderID, &it.VariantID, &it.Position, &it.Quantity, &it.Price,
			&it.ProductName, &it.VariantType, &it.VariantSize,
		); err != nil {
			return nil, err
		}
		items = append(items, &it)
	}

	return items, rows.Err()
}
