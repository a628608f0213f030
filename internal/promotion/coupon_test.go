package promotion

import (
	"context"
	"errors"
	"log/slog"
	"os"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/Sandanitin/AJ-Mana-Style/internal/domain"
	apperrors "github.com/Sandanitin/AJ-Mana-Style/pkg/errors"
)

func dec(s string) decimal.Decimal { return decimal.RequireFromString(s) }

func decPtr(s string) *decimal.Decimal {
	d := dec(s)
	return &d
}

func sampleBanners() []domain.OfferBanner {
	return []domain.OfferBanner{
		{ID: "1", Type: "coupon", Title: "Festive", DiscountValue: dec("300"), CouponCode: "FEST300", IsActive: true},
		{ID: "2", Type: domain.OfferTypePercentage, Title: "Diwali", DiscountValue: dec("10"), CouponCode: "Diwali10", MinOrderAmount: decPtr("2000"), IsActive: true},
		{ID: "3", Type: domain.OfferTypePercentage, Title: "Banner only", DiscountValue: dec("5"), IsActive: true},
	}
}

func TestValidate_CaseInsensitive(t *testing.T) {
	c, err := Validate(sampleBanners(), "diwali10", dec("2500"))
	require.NoError(t, err)
	assert.Equal(t, "Diwali10", c.Code)
	assert.Equal(t, domain.OfferTypePercentage, c.Type)
	assert.Equal(t, "Diwali", c.Title)
	assert.Equal(t, "250", c.AmountOff(dec("2500")).String())
}

func TestValidate_NonPercentageIsFixed(t *testing.T) {
	c, err := Validate(sampleBanners(), "FEST300", dec("1000"))
	require.NoError(t, err)
	assert.Equal(t, domain.OfferTypeFixed, c.Type)
	assert.Equal(t, "300", c.AmountOff(dec("1000")).String())
}

func TestValidate_BelowMinimum(t *testing.T) {
	_, err := Validate(sampleBanners(), "DIWALI10", dec("1999.99"))
	require.Error(t, err)
	assert.ErrorIs(t, err, apperrors.ErrInvalidInput)
	assert.Contains(t, err.Error(), "2000.00")
}

func TestValidate_AtMinimum(t *testing.T) {
	_, err := Validate(sampleBanners(), "DIWALI10", dec("2000"))
	assert.NoError(t, err)
}

func TestValidate_Unknown(t *testing.T) {
	_, err := Validate(sampleBanners(), "NOPE", dec("5000"))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "invalid coupon code")
}

func TestValidate_EmptyCodeNeverMatchesBannerWithoutCoupon(t *testing.T) {
	_, err := Validate(sampleBanners(), "  ", dec("5000"))
	assert.ErrorIs(t, err, apperrors.ErrInvalidInput)
}

func TestAmountOff_CappedAtSubtotal(t *testing.T) {
	c := domain.AppliedCoupon{Type: domain.OfferTypeFixed, Discount: dec("500")}
	assert.Equal(t, "200", c.AmountOff(dec("200")).String())

	neg := domain.AppliedCoupon{Type: domain.OfferTypeFixed, Discount: dec("-5")}
	assert.True(t, neg.AmountOff(dec("200")).IsZero())
}

func TestActiveOnly(t *testing.T) {
	now := time.Date(2026, 10, 18, 0, 0, 0, 0, time.UTC)
	banners := []domain.OfferBanner{
		{ID: "on", IsActive: true},
		{ID: "off", IsActive: false},
		{ID: "expired", IsActive: true, EndDate: "2026-10-01"},
	}
	got := ActiveOnly(banners, now)
	require.Len(t, got, 1)
	assert.Equal(t, domain.ID("on"), got[0].ID)
}

// --- Service ---

type mockBannerSource struct {
	mock.Mock
}

func (m *mockBannerSource) ActiveOfferBanners(ctx context.Context) ([]domain.OfferBanner, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]domain.OfferBanner), args.Error(1)
}

func newTestLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{Level: slog.LevelError}))
}

func TestService_Apply_IgnoresExpiredBanners(t *testing.T) {
	banners := sampleBanners()
	banners[0].EndDate = "2026-01-01"

	src := new(mockBannerSource)
	src.On("ActiveOfferBanners", mock.Anything).Return(banners, nil)

	s := NewService(src, newTestLogger())
	s.now = func() time.Time { return time.Date(2026, 10, 18, 0, 0, 0, 0, time.UTC) }

	_, err := s.Apply(context.Background(), "FEST300", dec("1000"))
	assert.ErrorIs(t, err, apperrors.ErrInvalidInput)

	c, err := s.Apply(context.Background(), "DIWALI10", dec("3000"))
	require.NoError(t, err)
	assert.Equal(t, "Diwali10", c.Code)
}

func TestService_Apply_SourceError(t *testing.T) {
	src := new(mockBannerSource)
	src.On("ActiveOfferBanners", mock.Anything).Return(nil, errors.New("timeout"))

	_, err := NewService(src, newTestLogger()).Apply(context.Background(), "X", dec("1"))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "load offer banners")
}

func TestService_Banners(t *testing.T) {
	src := new(mockBannerSource)
	src.On("ActiveOfferBanners", mock.Anything).Return(sampleBanners(), nil)

	got, err := NewService(src, newTestLogger()).Banners(context.Background())
	require.NoError(t, err)
	assert.Len(t, got, 3)
}
