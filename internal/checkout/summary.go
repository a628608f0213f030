package checkout

import (
	"github.com/shopspring/decimal"

	"github.com/Sandanitin/AJ-Mana-Style/internal/domain"
)

// gstRate is applied to the discounted subtotal.
var gstRate = decimal.RequireFromString("0.18")

// Summary is the price breakdown shown on the cart and checkout pages.
type Summary struct {
	Subtotal      decimal.Decimal       `json:"subtotal"`
	Discount      decimal.Decimal       `json:"discount"`
	Shipping      decimal.Decimal       `json:"shipping"`
	Tax           decimal.Decimal       `json:"tax"`
	Total         decimal.Decimal       `json:"total"`
	Coupon        *domain.AppliedCoupon `json:"coupon,omitempty"`
	ShippingQuote *domain.ShippingQuote `json:"shipping_quote,omitempty"`
}

// Summarize computes the breakdown for a subtotal, an optional coupon and a
// shipping charge. Tax is GST on the subtotal after discount. Every amount is
// rounded to paise.
func Summarize(subtotal decimal.Decimal, coupon *domain.AppliedCoupon, shipping decimal.Decimal) Summary {
	discount := decimal.Zero
	if coupon != nil {
		discount = coupon.AmountOff(subtotal).Round(2)
	}
	taxable := subtotal.Sub(discount)
	tax := taxable.Mul(gstRate).Round(2)

	return Summary{
		Subtotal: subtotal.Round(2),
		Discount: discount,
		Shipping: shipping.Round(2),
		Tax:      tax,
		Total:    taxable.Add(shipping).Add(tax).Round(2),
		Coupon:   coupon,
	}
}
