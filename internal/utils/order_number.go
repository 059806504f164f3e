package utils

import "strings"

// ShortOrderNumber is the customer-facing order reference: the last eight
// characters of the order id, upper-cased.
func ShortOrderNumber(orderID string) string {
	id := strings.ReplaceAll(orderID, "-", "")
	if len(id) > 8 {
		id = id[len(id)-8:]
	}
	return strings.ToUpper(id)
}
