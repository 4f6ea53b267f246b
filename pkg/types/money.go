package types

import (
	"fmt"

	"github.com/shopspring/decimal"
)

// ParsePrice converts a catalog price string into a decimal amount.
// Prices are plain numeric strings without a currency marker.
func ParsePrice(raw string) (decimal.Decimal, error) {
	amount, err := decimal.NewFromString(raw)
	if err != nil {
		return decimal.Zero, fmt.Errorf("parsing price %q: %w", raw, err)
	}
	if amount.IsNegative() {
		return decimal.Zero, fmt.Errorf("price %q is negative", raw)
	}
	return amount, nil
}

// FormatMoney renders an amount for user-facing messages.
func FormatMoney(amount decimal.Decimal) string {
	return "$" + amount.StringFixed(2)
}
