package product

import (
	"context"
	"database/sql"

	"bladeshop-be/internal/logger"

	"github.com/lib/pq"
	"go.uber.org/zap"
)

type Repository interface {
	// FindActiveVariants returns the active variants among ids, each with its
	// owning product. Unknown and inactive ids are silently absent.
	FindActiveVariants(ctx context.Context, ids []string) ([]*Variant, error)
	ListActiveProducts(ctx context.Context) ([]*Product, error)
	GetProduct(ctx context.Context, productID string) (*Product, error)
}

type repository struct {
	db *sql.DB
}

func NewRepository(db *sql.DB) Repository {
	return &repository{db: db}
}

func (r *repository) FindActiveVariants(ctx context.Context, ids []string) ([]*Variant, error) {
	log := logger.FromCtx(ctx).With(
		zap.String("layer", "repository"),
		zap.String("method", "FindActiveVariants"),
		zap.Int("requested", len(ids)),
	)

	if len(ids) == 0 {
		return []*Variant{}, nil
	}

	const q = `
		SELECT v.id, v.product_id, v.type, v.size, v.sku, v.stock, v.active,
		       p.name, p.description, p.price, p.currency, p.active
		FROM variants v
		JOIN products p ON p.id = v.product_id
		WHERE v.id = ANY($1) AND v.active = TRUE AND p.active = TRUE
	`

	rows, err := r.db.QueryContext(ctx, q, pq.Array(ids))
	if err != nil {
		log.Error("failed to query variants", zap.Error(err))
		return nil, err
	}
	defer rows.Close()

	variants := make([]*Variant, 0, len(ids))
	for rows.Next() {
		v := &Variant{Product: &Product{}}
		if err := rows.Scan(
			&v.ID, &v.ProductID, &v.Type, &v.Size, &v.SKU, &v.Stock, &v.Active,
			&v.Product.Name, &v.Product.Description, &v.Product.Price, &v.Product.Currency, &v.Product.Active,
		); err != nil {
			log.Error("failed to scan variant", zap.Error(err))
			return nil, err
		}
		v.Product.ID = v.ProductID
		variants = append(variants, v)
	}

	if err := rows.Err(); err != nil {
		return nil, err
	}

	log.Debug("variants loaded", zap.Int("found", len(variants)))
	return variants, nil
}

func (r *repository) ListActiveProducts(ctx context.Context) ([]*Product, error) {
	const q = `
		SELECT p.id, p.name, p.description, p.price, p.currency, p.active,
		       v.id, v.type, v.size, v.sku, v.stock, v.active
		FROM products p
		JOIN variants v ON v.product_id = p.id AND v.active = TRUE
		WHERE p.active = TRUE
		ORDER BY p.name, v.type, v.size
	`

	rows, err := r.db.QueryContext(ctx, q)
	if err != nil {
		logger.FromCtx(ctx).Error("failed to list products", zap.Error(err))
		return nil, err
	}
	defer rows.Close()

	var products []*Product
	index := make(map[string]*Product)

	for rows.Next() {
		var p Product
		v := &Variant{}
		if err := rows.Scan(
			&p.ID, &p.Name, &p.Description, &p.Price, &p.Currency, &p.Active,
			&v.ID, &v.Type, &v.Size, &v.SKU, &v.Stock, &v.Active,
		); err != nil {
			return nil, err
		}

		existing, ok := index[p.ID]
		if !ok {
			existing = &p
			index[p.ID] = existing
			products = append(products, existing)
		}
		v.ProductID = existing.ID
		existing.Variants = append(existing.Variants, v)
	}

	return products, rows.Err()
}

func (r *repository) GetProduct(ctx context.Context, productID string) (*Product, error) {
	const q = `
		SELECT id, name, description, price, currency, active
		FROM products
		WHERE id = $1
	`

	var p Product
	err := r.db.QueryRowContext(ctx, q, productID).
		Scan(&p.ID, &p.Name, &p.Description, &p.Price, &p.Currency, &p.Active)
	if err == sql.ErrNoRows {
		return nil, ErrProductNotFound
	}
	if err != nil {
		return nil, err
	}

	const vq = `
		SELECT id, type, size, sku, stock, active
		FROM variants
		WHERE product_id = $1 AND active = TRUE
		ORDER BY type, size
	`

	rows, err := r.db.QueryContext(ctx, vq, productID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	for rows.Next() {
		v := &Variant{ProductID: p.ID}
		if err := rows.Scan(&v.ID, &v.Type, &v.Size, &v.SKU, &v.Stock, &v.Active); err != nil {
			return nil, err
		}
		p.Variants = append(p.Variants, v)
	}

	return &p, rows.Err()
}
