package domain

import "github.com/shopspring/decimal"

// FallbackPincodes marks the zone used when no other zone matches a pincode.
const FallbackPincodes = "All India"

// ShippingZone is a delivery zone with a flat charge and a free-shipping threshold.
// Pincodes is a comma-separated list of exact pincodes and "start-end" ranges,
// or FallbackPincodes.
type ShippingZone struct {
	ID           ID              `json:"id,omitempty"`
	ZoneName     string          `json:"zone_name" validate:"required"`
	Pincodes     string          `json:"pincodes" validate:"required"`
	Charge       decimal.Decimal `json:"charge"`
	FreeAbove    decimal.Decimal `json:"free_above"`
	DeliveryTime string          `json:"delivery_time"`
}

// IsFallback reports whether this is the catch-all zone.
func (z ShippingZone) IsFallback() bool {
	return z.Pincodes == FallbackPincodes
}

// ChargeFor returns the shipping charge for an order of the given total.
// A zone without a positive FreeAbove never ships free.
func (z ShippingZone) ChargeFor(orderTotal decimal.Decimal) decimal.Decimal {
	if z.FreeAbove.IsPositive() && orderTotal.GreaterThanOrEqual(z.FreeAbove) {
		return decimal.Zero
	}
	return z.Charge
}

// ShippingQuote is the result of matching a pincode against the zone table.
type ShippingQuote struct {
	Zone         string          `json:"zone"`
	Charge       decimal.Decimal `json:"charge"`
	DeliveryTime string          `json:"delivery_time"`
	FreeAbove    decimal.Decimal `json:"free_above"`
}
