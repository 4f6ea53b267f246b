package cart

import (
	"github.com/shopspring/decimal"
)

// Item is an immutable snapshot of a committed draft. It is never edited in
// place; changing an order line means building a new draft and committing it.
type Item struct {
	Drink       string          `json:"drink"`
	Base        string          `json:"base"`
	Size        string          `json:"size"`
	Milk        string          `json:"milk"`
	Temperature string          `json:"temperature"`
	AddOns      []string        `json:"add_ons,omitempty"`
	Quantity    int             `json:"quantity"`
	Price       decimal.Decimal `json:"price"`
	Subtotal    decimal.Decimal `json:"subtotal"`
}

// Draft carries the fields needed to price and freeze a cart item.
type Draft struct {
	Drink       string
	Base        string
	Size        string
	Milk        string
	Temperature string
	AddOns      []string
	Quantity    int
}

// Total recomputes the cart total from its items. Totals are never cached.
func Total(items []Item) decimal.Decimal {
	total := decimal.Zero
	for _, item := range items {
		total = total.Add(item.Subtotal)
	}
	return total
}
