package payment

import (
	"context"
	"fmt"
	"net/url"
	"strconv"
	"strings"

	"bladeshop-be/internal/logger"
	"bladeshop-be/internal/order"
	"bladeshop-be/internal/utils"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

const (
	receiptProductName = "JRZ Pro Black DLC"
	// vatCodeNone is the gateway code for "without VAT".
	vatCodeNone = 1
)

type InitiatorConfig struct {
	BaseURL     string
	SendReceipt bool
}

// Initiator starts gateway payments for persisted orders.
type Initiator struct {
	gateway Gateway
	repo    Repository
	cfg     InitiatorConfig
}

func NewInitiator(gateway Gateway, repo Repository, cfg InitiatorConfig) *Initiator {
	cfg.BaseURL = strings.TrimRight(cfg.BaseURL, "/")
	return &Initiator{gateway: gateway, repo: repo, cfg: cfg}
}

// Initiate creates the gateway payment under the order's idempotence key and
// records it locally. Gateway failures leave the order untouched and are
// reported as ErrPaymentCreation.
func (i *Initiator) Initiate(ctx context.Context, o *order.Order) (*Initiation, error) {
	log := logger.FromCtx(ctx).With(
		zap.String("layer", "service"),
		zap.String("method", "InitiatePayment"),
		zap.String("order_id", o.ID),
	)

	req := i.BuildRequest(o)

	gp, err := i.gateway.CreatePayment(ctx, req, o.IdempotenceKey)
	if err != nil {
		log.Error("gateway rejected payment creation", zap.Error(err))
		return nil, fmt.Errorf("%w: %w", ErrPaymentCreation, err)
	}

	status := gp.Status
	if status == "" {
		status = StatusPending
	}

	p := &Payment{
		ID:            uuid.NewString(),
		OrderID:       o.ID,
		PaymentID:     gp.ID,
		Status:        status,
		Amount:        o.TotalAmount,
		Currency:      o.Currency,
		CustomerEmail: utils.NilIfEmpty(o.Email),
	}

	// The gateway payment already exists at this point; a webhook for it will
	// lazily recreate the row if this write is lost.
	if err := i.repo.CreatePaymentAndLink(ctx, p); err != nil {
		log.Error("failed to persist initiated payment",
			zap.String("payment_id", gp.ID),
			zap.Error(err),
		)
		return nil, err
	}

	o.PaymentID = &p.PaymentID

	log.Info("payment initiated",
		zap.String("payment_id", gp.ID),
		zap.String("status", string(status)),
	)

	return &Initiation{
		OrderID:         o.ID,
		PaymentID:       gp.ID,
		ConfirmationURL: gp.ConfirmationURL(),
	}, nil
}

// BuildRequest maps an order to the gateway's create-payment body.
func (i *Initiator) BuildRequest(o *order.Order) CreatePaymentRequest {
	currency := o.Currency
	if currency == "" {
		currency = order.CurrencyRUB
	}

	req := CreatePaymentRequest{
		Amount:      NewAmount(o.TotalAmount, currency),
		Capture:     true,
		Description: "Order #" + o.ID,
		Metadata:    Metadata{OrderID: o.ID},
		Confirmation: Confirmation{
			Type:      "redirect",
			ReturnURL: i.returnURL(o),
		},
	}

	phone := ""
	if o.Phone != nil {
		phone = utils.NormalizePhoneRU(*o.Phone)
	}
	if i.cfg.SendReceipt && (o.Email != "" || phone != "") {
		items := make([]ReceiptItem, 0, len(o.Items))
		for _, it := range o.Items {
			items = append(items, ReceiptItem{
				Description: fmt.Sprintf("%s - %s %s", receiptProductName, it.VariantType, it.VariantSize),
				Quantity:    strconv.Itoa(it.Quantity),
				Amount:      NewAmount(it.Price, currency),
				VatCode:     vatCodeNone,
			})
		}
		req.Receipt = &Receipt{
			Customer: ReceiptCustomer{Email: o.Email, Phone: phone},
			Items:    items,
		}
	}

	return req
}

func (i *Initiator) returnURL(o *order.Order) string {
	locale := o.Locale
	if locale == "" {
		locale = order.DefaultLocale
	}
	return fmt.Sprintf("%s/%s/order/thanks?orderId=%s", i.cfg.BaseURL, locale, url.QueryEscape(o.ID))
}
