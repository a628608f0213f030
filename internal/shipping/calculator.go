// Package shipping prices delivery by matching a pincode against the
// configured shipping zones.
package shipping

import (
	"net/http"
	"strconv"
	"strings"

	"github.com/shopspring/decimal"

	"github.com/Sandanitin/AJ-Mana-Style/internal/domain"
	apperrors "github.com/Sandanitin/AJ-Mana-Style/pkg/errors"
)

// PincodeLength is the length of an Indian postal code.
const PincodeLength = 6

// ErrNoZone is returned when neither a specific zone nor the fallback zone covers a pincode.
var ErrNoZone = &apperrors.AppError{
	Code:    "NO_SHIPPING_ZONE",
	Message: "no shipping zone found",
	Status:  http.StatusUnprocessableEntity,
	Err:     apperrors.ErrNotFound,
}

// ValidatePincode checks that pincode is exactly six digits.
func ValidatePincode(pincode string) error {
	if len(pincode) != PincodeLength {
		return apperrors.InvalidInput("please enter a valid 6-digit pincode")
	}
	for _, r := range pincode {
		if r < '0' || r > '9' {
			return apperrors.InvalidInput("please enter a valid 6-digit pincode")
		}
	}
	return nil
}

// Matches reports whether zone lists pincode, either exactly or inside a
// "start-end" range. The fallback zone matches nothing here.
func Matches(zone domain.ShippingZone, pincode string) bool {
	if zone.IsFallback() {
		return false
	}
	for _, entry := range strings.Split(zone.Pincodes, ",") {
		entry = strings.TrimSpace(entry)
		if lo, hi, ok := strings.Cut(entry, "-"); ok {
			if inRange(pincode, lo, hi) {
				return true
			}
			continue
		}
		if entry == pincode {
			return true
		}
	}
	return false
}

func inRange(pincode, lo, hi string) bool {
	pin, err := leadingInt(pincode)
	if err != nil {
		return false
	}
	start, err := leadingInt(lo)
	if err != nil {
		return false
	}
	// "a-b-c" compares against a and b only.
	hi, _, _ = strings.Cut(hi, "-")
	end, err := leadingInt(hi)
	if err != nil {
		return false
	}
	return pin >= start && pin <= end
}

// leadingInt parses the leading decimal digits of s after trimming spaces.
func leadingInt(s string) (int, error) {
	s = strings.TrimSpace(s)
	n := 0
	for n < len(s) && s[n] >= '0' && s[n] <= '9' {
		n++
	}
	return strconv.Atoi(s[:n])
}

// Calculate scans zones in order and prices the first one covering pincode,
// falling back to the "All India" zone when none does.
func Calculate(zones []domain.ShippingZone, pincode string, orderTotal decimal.Decimal) (domain.ShippingQuote, error) {
	for _, z := range zones {
		if Matches(z, pincode) {
			return quote(z, orderTotal), nil
		}
	}
	for _, z := range zones {
		if z.IsFallback() {
			return quote(z, orderTotal), nil
		}
	}
	return domain.ShippingQuote{}, ErrNoZone
}

func quote(z domain.ShippingZone, orderTotal decimal.Decimal) domain.ShippingQuote {
	return domain.ShippingQuote{
		Zone:         z.ZoneName,
		Charge:       z.ChargeFor(orderTotal),
		DeliveryTime: z.DeliveryTime,
		FreeAbove:    z.FreeAbove,
	}
}
