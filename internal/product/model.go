package product

type VariantType string

const (
	VariantPlayer VariantType = "player"
	VariantGoalie VariantType = "goalie"
)

type Product struct {
	ID          string     `json:"id"`
	Name        string     `json:"name"`
	Description *string    `json:"description,omitempty"`
	Price       int64      `json:"price"`
	Currency    string     `json:"currency"`
	Active      bool       `json:"active"`
	Variants    []*Variant `json:"variants,omitempty"`
}

// Variant is a purchasable type/size configuration of a Product. Product is
// populated by lookups that join the owning product for pricing.
type Variant struct {
	ID        string      `json:"id"`
	ProductID string      `json:"productId"`
	Type      VariantType `json:"type"`
	Size      string      `json:"size"`
	SKU       string      `json:"sku"`
	Stock     int         `json:"stock"`
	Active    bool        `json:"active"`
	Product   *Product    `json:"-"`
}
