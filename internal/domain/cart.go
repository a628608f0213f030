package domain

import (
	"encoding/json"

	"github.com/shopspring/decimal"
)

// CartLineItem is a product paired with a quantity. It encodes as the product's
// fields followed by "quantity".
type CartLineItem struct {
	Product
	Quantity int `json:"quantity"`
}

// MarshalJSON keeps the line flat. Without it the promoted
// Product.MarshalJSON would drop the quantity.
func (li CartLineItem) MarshalJSON() ([]byte, error) {
	return json.Marshal(struct {
		productJSON
		Quantity int `json:"quantity"`
	}{li.Product.wire(), li.Quantity})
}

// LineTotal returns unit price times quantity.
func (li CartLineItem) LineTotal() decimal.Decimal {
	return li.UnitPrice().Mul(decimal.NewFromInt(int64(li.Quantity)))
}

// Cart is an ordered list of line items; insertion order is display order.
type Cart []CartLineItem

// Total returns the sum of unit price times quantity over all line items.
func (c Cart) Total() decimal.Decimal {
	total := decimal.Zero
	for _, item := range c {
		total = total.Add(item.LineTotal())
	}
	return total
}

// Count returns the sum of quantities (a badge count, not a line count).
func (c Cart) Count() int {
	var count int
	for _, item := range c {
		count += item.Quantity
	}
	return count
}

// IndexOf returns the index of the line item for the given product id, or -1.
func (c Cart) IndexOf(id ID) int {
	for i := range c {
		if c[i].ID == id {
			return i
		}
	}
	return -1
}

// Clone returns a deep-enough copy for handing out snapshots.
func (c Cart) Clone() Cart {
	if c == nil {
		return Cart{}
	}
	out := make(Cart, len(c))
	copy(out, c)
	return out
}
