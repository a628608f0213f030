package domain

import (
	"bytes"
	"encoding/json"
	"fmt"

	"github.com/shopspring/decimal"
)

// ID identifies a record owned by the storefront backend. The backend emits
// numeric ids for some resources and string ids for others, so ID accepts
// both forms on decode and always encodes as a JSON string.
type ID string

// UnmarshalJSON accepts a JSON string or number.
func (id *ID) UnmarshalJSON(b []byte) error {
	b = bytes.TrimSpace(b)
	if len(b) == 0 || bytes.Equal(b, []byte("null")) {
		*id = ""
		return nil
	}
	if b[0] == '"' {
		var s string
		if err := json.Unmarshal(b, &s); err != nil {
			return fmt.Errorf("decode id: %w", err)
		}
		*id = ID(s)
		return nil
	}
	var n json.Number
	if err := json.Unmarshal(b, &n); err != nil {
		return fmt.Errorf("decode id: %w", err)
	}
	*id = ID(n.String())
	return nil
}

// String returns the id as a plain string.
func (id ID) String() string { return string(id) }

// Product is a catalog item as served by the storefront backend.
//
// Prices on a product sent by the client are display values only: the
// backend re-prices every order from its own catalog when it is placed.
type Product struct {
	ID             ID               `json:"id" validate:"required"`
	Name           string           `json:"name" validate:"required"`
	Price          decimal.Decimal  `json:"price" validate:"gte=0"`
	SalePrice      *decimal.Decimal `json:"sale_price,omitempty" validate:"omitempty,gte=0"`
	Images         []string         `json:"images,omitempty"`
	Category       string           `json:"category,omitempty"`
	CategoryName   string           `json:"category_name,omitempty"`
	CollectionName string           `json:"collection_name,omitempty"`
	Fabric         string           `json:"fabric,omitempty"`
	Colors         []string         `json:"colors,omitempty"`
	Description    string           `json:"description,omitempty"`
}

// UnitPrice is the price charged per unit in the cart.
func (p Product) UnitPrice() decimal.Decimal {
	return p.Price
}

// productFields is Product without its JSON methods.
type productFields Product

// productJSON is the wire form of a Product: prices are JSON numbers, the
// way the storefront has always stored them.
type productJSON struct {
	productFields
	Price     json.Number  `json:"price"`
	SalePrice *json.Number `json:"sale_price,omitempty"`
}

func (p Product) wire() productJSON {
	out := productJSON{
		productFields: productFields(p),
		Price:         json.Number(p.Price.String()),
	}
	if p.SalePrice != nil {
		sale := json.Number(p.SalePrice.String())
		out.SalePrice = &sale
	}
	return out
}

// MarshalJSON encodes the product with numeric prices. Decoding accepts
// prices as numbers or strings.
func (p Product) MarshalJSON() ([]byte, error) {
	return json.Marshal(p.wire())
}
