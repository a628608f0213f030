package shipping

import (
	"errors"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Sandanitin/AJ-Mana-Style/internal/domain"
	apperrors "github.com/Sandanitin/AJ-Mana-Style/pkg/errors"
)

func zone(name, pincodes string, charge, freeAbove int64) domain.ShippingZone {
	return domain.ShippingZone{
		ZoneName:     name,
		Pincodes:     pincodes,
		Charge:       decimal.NewFromInt(charge),
		FreeAbove:    decimal.NewFromInt(freeAbove),
		DeliveryTime: name + " days",
	}
}

func sampleZones() []domain.ShippingZone {
	return []domain.ShippingZone{
		zone("Rest of India", domain.FallbackPincodes, 150, 5000),
		zone("Andhra Pradesh", "500001-535999, 515001", 50, 1500),
		zone("Bengaluru", " 560001 , 560002,560100-560110 ", 80, 2500),
	}
}

func TestValidatePincode(t *testing.T) {
	assert.NoError(t, ValidatePincode("560001"))

	for _, bad := range []string{"", "56000", "5600011", "56000a", "56 001"} {
		err := ValidatePincode(bad)
		require.Error(t, err, bad)
		assert.True(t, errors.Is(err, apperrors.ErrInvalidInput), bad)
	}
}

func TestMatches(t *testing.T) {
	z := sampleZones()[2]

	tests := []struct {
		pin  string
		want bool
	}{
		{"560001", true},
		{"560002", true},
		{"560100", true},
		{"560105", true},
		{"560110", true},
		{"560111", false},
		{"560003", false},
	}
	for _, tt := range tests {
		t.Run(tt.pin, func(t *testing.T) {
			assert.Equal(t, tt.want, Matches(z, tt.pin))
		})
	}
}

func TestMatches_FallbackNeverMatchesDirectly(t *testing.T) {
	assert.False(t, Matches(zone("All", domain.FallbackPincodes, 0, 0), "560001"))
}

func TestMatches_MalformedRangeIgnored(t *testing.T) {
	z := zone("Broken", "abc-def, 400001-x", 10, 0)
	assert.False(t, Matches(z, "400001"))
}

func TestCalculate_RangeMatch(t *testing.T) {
	q, err := Calculate(sampleZones(), "520010", decimal.NewFromInt(1000))
	require.NoError(t, err)
	assert.Equal(t, "Andhra Pradesh", q.Zone)
	assert.Equal(t, "50", q.Charge.String())
	assert.Equal(t, "1500", q.FreeAbove.String())
	assert.Equal(t, "Andhra Pradesh days", q.DeliveryTime)
}

func TestCalculate_ExactMatchAfterRange(t *testing.T) {
	q, err := Calculate(sampleZones(), "515001", decimal.NewFromInt(1000))
	require.NoError(t, err)
	assert.Equal(t, "Andhra Pradesh", q.Zone)
}

func TestCalculate_FreeAboveThreshold(t *testing.T) {
	q, err := Calculate(sampleZones(), "560001", decimal.NewFromInt(2500))
	require.NoError(t, err)
	assert.Equal(t, "Bengaluru", q.Zone)
	assert.True(t, q.Charge.IsZero())

	q, err = Calculate(sampleZones(), "560001", decimal.RequireFromString("2499.99"))
	require.NoError(t, err)
	assert.Equal(t, "80", q.Charge.String())
}

func TestCalculate_FirstMatchWins(t *testing.T) {
	zones := []domain.ShippingZone{
		zone("First", "400000-400100", 10, 0),
		zone("Second", "400001", 20, 0),
	}
	q, err := Calculate(zones, "400001", decimal.Zero)
	require.NoError(t, err)
	assert.Equal(t, "First", q.Zone)
}

func TestCalculate_FallsBackToAllIndia(t *testing.T) {
	// The fallback is listed first but only used after every other zone misses.
	q, err := Calculate(sampleZones(), "110001", decimal.NewFromInt(100))
	require.NoError(t, err)
	assert.Equal(t, "Rest of India", q.Zone)
	assert.Equal(t, "150", q.Charge.String())
}

func TestCalculate_NoZone(t *testing.T) {
	_, err := Calculate(sampleZones()[1:], "110001", decimal.NewFromInt(100))
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrNoZone)
	assert.Equal(t, 422, apperrors.HTTPStatus(err))
}

func TestCalculate_EmptyTable(t *testing.T) {
	_, err := Calculate(nil, "110001", decimal.Zero)
	assert.ErrorIs(t, err, ErrNoZone)
}
