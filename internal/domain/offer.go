package domain

import (
	"bytes"
	"encoding/json"
	"strings"
	"time"

	"github.com/shopspring/decimal"
)

// Offer types.
const (
	OfferTypePercentage = "percentage"
	OfferTypeFixed      = "fixed"
)

// Flag is a boolean that also decodes the 0/1 and "0"/"1" forms the backend emits.
type Flag bool

// UnmarshalJSON accepts true/false, 0/1 and their quoted forms.
func (f *Flag) UnmarshalJSON(b []byte) error {
	s := strings.Trim(string(bytes.TrimSpace(b)), `"`)
	switch strings.ToLower(s) {
	case "1", "true", "yes":
		*f = true
	default:
		*f = false
	}
	return nil
}

// MarshalJSON encodes the flag as a JSON boolean.
func (f Flag) MarshalJSON() ([]byte, error) {
	return json.Marshal(bool(f))
}

// OfferBanner is a promotional banner; banners carrying a coupon code double as coupons.
type OfferBanner struct {
	ID             ID               `json:"id,omitempty"`
	Type           string           `json:"type" validate:"required,oneof=percentage fixed coupon"`
	Title          string           `json:"title" validate:"required"`
	DiscountValue  decimal.Decimal  `json:"discount_value"`
	CouponCode     string           `json:"coupon_code,omitempty"`
	MinOrderAmount *decimal.Decimal `json:"min_order_amount,omitempty"`
	BgColor        string           `json:"bg_color,omitempty"`
	TextColor      string           `json:"text_color,omitempty"`
	IsActive       Flag             `json:"is_active"`
	StartDate      string           `json:"start_date,omitempty"`
	EndDate        string           `json:"end_date,omitempty"`
}

var bannerDateLayouts = []string{time.DateTime, time.DateOnly}

func parseBannerDate(s string) (time.Time, bool) {
	for _, layout := range bannerDateLayouts {
		if t, err := time.Parse(layout, s); err == nil {
			return t, true
		}
	}
	return time.Time{}, false
}

// Active reports whether the banner is switched on and now falls inside its
// date window. Unparseable or empty dates leave that side of the window open.
// A date-only end date covers the whole day.
func (b OfferBanner) Active(now time.Time) bool {
	if !b.IsActive {
		return false
	}
	if start, ok := parseBannerDate(b.StartDate); ok && now.Before(start) {
		return false
	}
	if end, ok := parseBannerDate(b.EndDate); ok {
		if len(b.EndDate) == len(time.DateOnly) {
			end = end.Add(24 * time.Hour)
		}
		if !now.Before(end) {
			return false
		}
	}
	return true
}

// MinimumOrder returns the minimum subtotal for the coupon, zero when unset.
func (b OfferBanner) MinimumOrder() decimal.Decimal {
	if b.MinOrderAmount == nil {
		return decimal.Zero
	}
	return *b.MinOrderAmount
}
