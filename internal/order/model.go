package order

import "time"

type Status string

const (
	// StatusPending is a gateway-backed order awaiting payment.
	StatusPending Status = "pending"
	// StatusManualProcessing is an order taken outside the gateway flow.
	StatusManualProcessing Status = "manual_processing"
	StatusPaid             Status = "paid"
	StatusCancelled        Status = "cancelled"
)

const (
	CurrencyRUB   = "RUB"
	DefaultLocale = "ru"
)

type Order struct {
	ID             string
	Email          string
	Phone          *string
	TotalAmount    int64
	Currency       string
	Status         Status
	IdempotenceKey string
	PaymentID      *string
	Locale         string
	Shipping       *Shipping
	CreatedAt      time.Time
	UpdatedAt      time.Time
	Items          []*OrderItem
}

// OrderItem freezes quantity and unit price at creation time. The display
// fields are read back from the referenced variant and product.
type OrderItem struct {
	ID        string
	OrderID   string
	VariantID string
	Position  int
	Quantity  int
	Price     int64

	ProductName string
	VariantType string
	VariantSize string
}

func (i *OrderItem) Subtotal() int64 {
	return i.Price * int64(i.Quantity)
}

// Shipping holds the delivery details collected by the manual order form.
type Shipping struct {
	FullName   string
	Address    string
	City       string
	Region     string
	PostalCode string
	Country    string
}

type ItemInput struct {
	VariantID string `json:"variantId" validate:"required"`
	Quantity  int    `json:"quantity" validate:"gt=0,lte=999"`
}

type CheckoutInput struct {
	Email  string      `json:"email" validate:"required,email"`
	Phone  *string     `json:"phone,omitempty" validate:"omitempty,max=32"`
	Items  []ItemInput `json:"items" validate:"required,min=1,dive"`
	Locale string      `json:"locale" validate:"omitempty,oneof=ru en"`
}

type ManualOrderInput struct {
	FullName    string      `json:"fullName" validate:"required,min=2"`
	Email       string      `json:"email" validate:"required,email"`
	Phone       string      `json:"phone" validate:"required,min=10,max=32"`
	Address     string      `json:"address" validate:"required,min=5"`
	City        string      `json:"city" validate:"required,min=2"`
	Region      string      `json:"region" validate:"required,min=2"`
	PostalCode  string      `json:"postalCode" validate:"required,min=5"`
	Country     string      `json:"country"`
	Items       []ItemInput `json:"items" validate:"required,min=1,dive"`
	TotalAmount int64       `json:"totalAmount" validate:"gt=0"`
	Locale      string      `json:"locale" validate:"omitempty,oneof=ru en"`
}
