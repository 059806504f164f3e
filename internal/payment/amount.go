package payment

import (
	"fmt"

	"github.com/shopspring/decimal"
)

// Amount is the gateway's money representation.
type Amount struct {
	Value    string `json:"value"`
	Currency string `json:"currency"`
}

// NewAmount formats a whole-unit amount as a fixed-point string ("15990.00").
func NewAmount(value int64, currency string) Amount {
	return Amount{
		Value:    decimal.NewFromInt(value).StringFixed(2),
		Currency: currency,
	}
}

// Units parses the value back to whole currency units, rounding fractions.
func (a Amount) Units() (int64, error) {
	if a.Value == "" {
		return 0, nil
	}
	d, err := decimal.NewFromString(a.Value)
	if err != nil {
		return 0, fmt.Errorf("invalid amount %q: %w", a.Value, err)
	}
	return d.Round(0).IntPart(), nil
}
