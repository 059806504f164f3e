package order

// PaymentStatusManual is reported for orders outside the gateway flow.
const PaymentStatusManual = "manual"

type ProductView struct {
	Name string `json:"name"`
}

type VariantView struct {
	Type    string      `json:"type"`
	Size    string      `json:"size"`
	Product ProductView `json:"product"`
}

type ItemView struct {
	Quantity int         `json:"quantity"`
	Price    int64       `json:"price"`
	Variant  VariantView `json:"variant"`
}

// View is the order snapshot returned by GET /orders/{orderId}.
type View struct {
	OrderID       string     `json:"orderId"`
	Status        string     `json:"status"`
	PaymentStatus string     `json:"paymentStatus"`
	Amount        int64      `json:"amount"`
	Currency      string     `json:"currency"`
	Items         []ItemView `json:"items"`
}

func ToItemViews(items []*OrderItem) []ItemView {
	views := make([]ItemView, 0, len(items))
	for _, it := range items {
		views = append(views, ItemView{
			Quantity: it.Quantity,
			Price:    it.Price,
			Variant: VariantView{
				Type:    it.VariantType,
				Size:    it.VariantSize,
				Product: ProductView{Name: it.ProductName},
			},
		})
	}
	return views
}

// ToView mirrors the order status, except manual orders which report "manual".
func ToView(o *Order) *View {
	if o == nil {
		return nil
	}

	paymentStatus := string(o.Status)
	if o.Status == StatusManualProcessing {
		paymentStatus = PaymentStatusManual
	}

	return &View{
		OrderID:       o.ID,
		Status:        string(o.Status),
		PaymentStatus: paymentStatus,
		Amount:        o.TotalAmount,
		Currency:      o.Currency,
		Items:         ToItemViews(o.Items),
	}
}
