package payment

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"

	"bladeshop-be/internal/logger"

	"go.uber.org/zap"
)

type Repository interface {
	// CreatePaymentAndLink stores a freshly initiated payment and points
	// orders.payment_id at it.
	CreatePaymentAndLink(ctx context.Context, p *Payment) error
	GetByPaymentID(ctx context.Context, paymentID string) (*Payment, error)
	GetLatestByOrder(ctx context.Context, orderID string) (*Payment, error)
	// CreateIfAbsent inserts a payment learned from the gateway unless a row
	// for the same payment id already exists, and links the order when it
	// has no payment yet.
	CreateIfAbsent(ctx context.Context, p *Payment) (bool, error)
	// SyncStatus upserts a live-fetched status. A local terminal status is
	// never overwritten. Reports whether the order was advanced to paid.
	SyncStatus(ctx context.Context, p *Payment) (bool, error)
	// ApplyTransition updates payment and order together. Reports whether the
	// order row changed.
	ApplyTransition(ctx context.Context, t Transition) (bool, error)
	// MarkOrderPaid is a no-op for orders that are already paid.
	MarkOrderPaid(ctx context.Context, orderID string) (bool, error)

	SaveWebhook(ctx context.Context, ev WebhookRecord) (webhookID int64, processed bool, err error)
	MarkWebhookProcessed(ctx context.Context, webhookID int64) error
	MarkWebhookFailed(ctx context.Context, webhookID int64, reason string) error
}

// WebhookRecord is one delivery stored in the audit log.
type WebhookRecord struct {
	Provider  string
	EventKey  string
	EventType string
	PaymentID string
	OrderID   string
	Payload   json.RawMessage
}

type repository struct {
	db *sql.DB
}

func NewRepository(db *sql.DB) Repository {
	return &repository{db: db}
}

const paymentColumns = `id, order_id, payment_id, status, amount, currency, customer_email, created_at, updated_at`

func scanPayment(row interface{ Scan(...interface{}) error }) (*Payment, error) {
	var p Payment
	err := row.Scan(
		&p.ID, &p.OrderID, &p.PaymentID, &p.Status, &p.Amount,
		&p.Currency, &p.CustomerEmail, &p.CreatedAt, &p.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	return &p, nil
}

func (r *repository) CreatePaymentAndLink(ctx context.Context, p *Payment) error {
	log := logger.FromCtx(ctx).With(
		zap.String("layer", "repository"),
		zap.String("method", "CreatePaymentAndLink"),
		zap.String("order_id", p.OrderID),
		zap.String("payment_id", p.PaymentID),
	)

	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		log.Error("failed to begin transaction", zap.Error(err))
		return err
	}
	defer tx.Rollback()

	err = tx.QueryRowContext(ctx, `
		INSERT INTO payments (
			id, order_id, payment_id, status, amount, currency, customer_email
		) VALUES ($1,$2,$3,$4,$5,$6,$7)
		RETURNING created_at, updated_at
	`,
		p.ID, p.OrderID, p.PaymentID, p.Status, p.Amount, p.Currency, p.CustomerEmail,
	).Scan(&p.CreatedAt, &p.UpdatedAt)
	if err != nil {
		log.Error("failed to insert payment", zap.Error(err))
		return fmt.Errorf("insert payment: %w", err)
	}

	if _, err = tx.ExecContext(ctx, `
		UPDATE orders SET payment_id = $2, updated_at = now() WHERE id = $1
	`, p.OrderID, p.PaymentID); err != nil {
		log.Error("failed to link payment to order", zap.Error(err))
		return fmt.Errorf("link payment: %w", err)
	}

	return tx.Commit()
}

func (r *repository) GetByPaymentID(ctx context.Context, paymentID string) (*Payment, error) {
	p, err := scanPayment(r.db.QueryRowContext(ctx,
		`SELECT `+paymentColumns+` FROM payments WHERE payment_id = $1`, paymentID))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrPaymentNotFound
	}
	return p, err
}

func (r *repository) GetLatestByOrder(ctx context.Context, orderID string) (*Payment, error) {
	p, err := scanPayment(r.db.QueryRowContext(ctx,
		`SELECT `+paymentColumns+` FROM payments WHERE order_id = $1 ORDER BY created_at DESC LIMIT 1`, orderID))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrPaymentNotFound
	}
	return p, err
}

func (r *repository) CreateIfAbsent(ctx context.Context, p *Payment) (bool, error) {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return false, err
	}
	defer tx.Rollback()

	res, err := tx.ExecContext(ctx, `
		INSERT INTO payments (
			id, order_id, payment_id, status, amount, currency, customer_email
		) VALUES ($1,$2,$3,$4,$5,$6,$7)
		ON CONFLICT (payment_id) DO NOTHING
	`,
		p.ID, p.OrderID, p.PaymentID, p.Status, p.Amount, p.Currency, p.CustomerEmail,
	)
	if err != nil {
		return false, fmt.Errorf("insert payment: %w", err)
	}

	created, err := res.RowsAffected()
	if err != nil {
		return false, err
	}

	if _, err = tx.ExecContext(ctx, `
		UPDATE orders SET payment_id = $2, updated_at = now()
		WHERE id = $1 AND payment_id IS NULL
	`, p.OrderID, p.PaymentID); err != nil {
		return false, fmt.Errorf("link payment: %w", err)
	}

	if err := tx.Commit(); err != nil {
		return false, err
	}
	return created > 0, nil
}

func (r *repository) SyncStatus(ctx context.Context, p *Payment) (bool, error) {
	log := logger.FromCtx(ctx).With(
		zap.String("layer", "repository"),
		zap.String("method", "SyncStatus"),
		zap.String("order_id", p.OrderID),
		zap.String("payment_id", p.PaymentID),
		zap.String("status", string(p.Status)),
	)

	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		log.Error("failed to begin transaction", zap.Error(err))
		return false, err
	}
	defer tx.Rollback()

	if _, err = tx.ExecContext(ctx, `
		INSERT INTO payments (
			id, order_id, payment_id, status, amount, currency, customer_email
		) VALUES ($1,$2,$3,$4,$5,$6,$7)
		ON CONFLICT (payment_id) DO UPDATE
		SET status = EXCLUDED.status, updated_at = now()
		WHERE payments.status NOT IN ('succeeded', 'canceled')
	`,
		p.ID, p.OrderID, p.PaymentID, p.Status, p.Amount, p.Currency, p.CustomerEmail,
	); err != nil {
		log.Error("failed to upsert payment", zap.Error(err))
		return false, fmt.Errorf("upsert payment: %w", err)
	}

	var advanced bool
	if p.Status == StatusSucceeded {
		res, err := tx.ExecContext(ctx, `
			UPDATE orders SET status = 'paid', updated_at = now()
			WHERE id = $1 AND status <> 'paid'
		`, p.OrderID)
		if err != nil {
			log.Error("failed to mark order paid", zap.Error(err))
			return false, fmt.Errorf("mark order paid: %w", err)
		}
		n, _ := res.RowsAffected()
		advanced = n > 0
	}

	if err := tx.Commit(); err != nil {
		log.Error("failed to commit status sync", zap.Error(err))
		return false, err
	}
	return advanced, nil
}

func (r *repository) ApplyTransition(ctx context.Context, t Transition) (bool, error) {
	log := logger.FromCtx(ctx).With(
		zap.String("layer", "repository"),
		zap.String("method", "ApplyTransition"),
		zap.String("order_id", t.OrderID),
		zap.String("payment_id", t.PaymentID),
		zap.String("status", string(t.PaymentStatus)),
	)

	var paymentQuery string
	switch t.PaymentStatus {
	case StatusSucceeded:
		paymentQuery = `UPDATE payments SET status = 'succeeded', updated_at = now()
			WHERE payment_id = $1`
	case StatusCanceled:
		paymentQuery = `UPDATE payments SET status = 'canceled', updated_at = now()
			WHERE payment_id = $1 AND status <> 'succeeded'`
	case StatusWaitingForCapture:
		paymentQuery = `UPDATE payments SET status = 'waiting_for_capture', updated_at = now()
			WHERE payment_id = $1 AND status IN ('pending', 'waiting_for_capture')`
	default:
		return false, fmt.Errorf("unsupported transition to %q", t.PaymentStatus)
	}

	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		log.Error("failed to begin transaction", zap.Error(err))
		return false, err
	}
	defer tx.Rollback()

	if _, err := tx.ExecContext(ctx, paymentQuery, t.PaymentID); err != nil {
		log.Error("failed to update payment", zap.Error(err))
		return false, fmt.Errorf("update payment: %w", err)
	}

	// A paid order is final; any other order moves at most once per target status.
	var changed bool
	if status, ok := t.OrderStatus(); ok {
		res, err := tx.ExecContext(ctx, `
			UPDATE orders SET status = $2, updated_at = now()
			WHERE id = $1 AND status NOT IN ('paid', $2)
		`, t.OrderID, string(status))
		if err != nil {
			log.Error("failed to update order", zap.Error(err))
			return false, fmt.Errorf("update order: %w", err)
		}
		n, _ := res.RowsAffected()
		changed = n > 0
	}

	if err := tx.Commit(); err != nil {
		log.Error("failed to commit transition", zap.Error(err))
		return false, err
	}

	log.Info("payment transition applied", zap.Bool("order_changed", changed))
	return changed, nil
}

func (r *repository) MarkOrderPaid(ctx context.Context, orderID string) (bool, error) {
	res, err := r.db.ExecContext(ctx, `
		UPDATE orders SET status = 'paid', updated_at = now()
		WHERE id = $1 AND status <> 'paid'
	`, orderID)
	if err != nil {
		return false, err
	}
	n, err := res.RowsAffected()
	return n > 0, err
}

func (r *repository) SaveWebhook(ctx context.Context, ev WebhookRecord) (int64, bool, error) {
	const q = `
	INSERT INTO payment_webhooks (
		provider,
		event_key,
		event_type,
		payment_id,
		order_id,
		payload
	)
	VALUES ($1, $2, $3, $4, $5, $6)
	ON CONFLICT (provider, event_key)
	DO UPDATE SET
		delivery_count = payment_webhooks.delivery_count + 1,
		last_received_at = now()
	RETURNING id, processed_at IS NOT NULL;
	`

	var (
		id        int64
		processed bool
	)
	err := r.db.QueryRowContext(
		ctx,
		q,
		ev.Provider,
		ev.EventKey,
		ev.EventType,
		ev.PaymentID,
		ev.OrderID,
		[]byte(ev.Payload),
	).Scan(&id, &processed)
	if err != nil {
		return 0, false, err
	}

	return id, processed, nil
}

func (r *repository) MarkWebhookProcessed(ctx context.Context, webhookID int64) error {
	const q = `
	UPDATE payment_webhooks
	SET processed_at = now(), process_error = NULL
	WHERE id = $1;
	`

	_, err := r.db.ExecContext(ctx, q, webhookID)
	return err
}

func (r *repository) MarkWebhookFailed(ctx context.Context, webhookID int64, reason string) error {
	const q = `
	UPDATE payment_webhooks
	SET process_error = $2
	WHERE id = $1;
	`

	_, err := r.db.ExecContext(ctx, q, webhookID, reason)
	return err
}
