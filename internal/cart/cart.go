// Package cart is the single source of truth for a session's shopping
// cart. A store operates in one of two modes: guest carts live entirely
// in local durable storage, synced carts mirror the commerce API and
// treat its responses as authoritative.
package cart

import (
	"github.com/shopspring/decimal"
)

// Item is one cart line, uniquely identified by its (product, variant)
// pair. Guest lines carry a locally generated uuid until the commerce
// API assigns a real id.
type Item struct {
	ID        string  `json:"id"`
	ProductID uint    `json:"product_id"`
	VariantID uint    `json:"variant_id,omitempty"`
	Price     float64 `json:"price"`
	Quantity  uint    `json:"quantity"`
	Name      string  `json:"name"`
	Image     string  `json:"image,omitempty"`
}

// SameLine reports whether the item and the given pair are the same
// cart line. A zero variant id means "no variant" on both sides.
func (i Item) SameLine(productID, variantID uint) bool {
	return i.ProductID == productID && i.VariantID == variantID
}

// Product is what a screen passes when adding to the cart. Price and
// display fields come from the catalog view the user acted on.
type Product struct {
	ProductID uint    `json:"product_id"`
	VariantID uint    `json:"variant_id,omitempty"`
	Price     float64 `json:"price"`
	Name      string  `json:"name"`
	Image     string  `json:"image,omitempty"`
}

// State is the cart as the screens see it. Total is always recomputed
// from the items, never mutated independently. CartID is only set once
// the commerce API owns the cart. Busy mirrors an in-flight sync call.
type State struct {
	Items  []Item  `json:"items"`
	Total  float64 `json:"total"`
	CartID uint    `json:"cart_id,omitempty"`
	Busy   bool    `json:"busy"`
}

// Snapshot is the persisted form of a guest cart: items and total only.
// The busy flag and the server cart id never survive a reload.
type Snapshot struct {
	Items []Item  `json:"items"`
	Total float64 `json:"total"`
}

// ComputeTotal sums price times quantity over the items with decimal
// arithmetic, rounded to cents.
func ComputeTotal(items []Item) float64 {
	total := decimal.Zero
	for _, it := range items {
		line := decimal.NewFromFloat(it.Price).Mul(decimal.NewFromInt(int64(it.Quantity)))
		total = total.Add(line)
	}
	f, _ := total.Round(2).Float64()
	return f
}

func copyItems(items []Item) []Item {
	if items == nil {
		return nil
	}
	out := make([]Item, len(items))
	copy(out, items)
	return out
}
