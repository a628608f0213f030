// Package promotion validates coupon codes against the offer banners.
package promotion

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/shopspring/decimal"

	"github.com/Sandanitin/AJ-Mana-Style/internal/domain"
	apperrors "github.com/Sandanitin/AJ-Mana-Style/pkg/errors"
)

// Validate finds the banner whose coupon code equals code, ignoring case,
// and checks the subtotal against its minimum order. Callers pass only the
// banners currently on offer.
func Validate(banners []domain.OfferBanner, code string, subtotal decimal.Decimal) (domain.AppliedCoupon, error) {
	code = strings.TrimSpace(code)
	if code == "" {
		return domain.AppliedCoupon{}, apperrors.InvalidInput("coupon code is required")
	}

	for _, b := range banners {
		if b.CouponCode == "" || !strings.EqualFold(b.CouponCode, code) {
			continue
		}

		if minOrder := b.MinimumOrder(); minOrder.IsPositive() && subtotal.LessThan(minOrder) {
			return domain.AppliedCoupon{}, apperrors.InvalidInput(
				fmt.Sprintf("this coupon requires a minimum order of ₹%s", minOrder.StringFixed(2)))
		}

		couponType := domain.OfferTypeFixed
		if b.Type == domain.OfferTypePercentage {
			couponType = domain.OfferTypePercentage
		}
		return domain.AppliedCoupon{
			Code:     b.CouponCode,
			Discount: b.DiscountValue,
			Type:     couponType,
			Title:    b.Title,
		}, nil
	}

	return domain.AppliedCoupon{}, apperrors.InvalidInput("invalid coupon code")
}

// ActiveOnly keeps the banners that are switched on and inside their date window.
func ActiveOnly(banners []domain.OfferBanner, now time.Time) []domain.OfferBanner {
	out := make([]domain.OfferBanner, 0, len(banners))
	for _, b := range banners {
		if b.Active(now) {
			out = append(out, b)
		}
	}
	return out
}

// BannerSource loads the offer banners currently flagged active by the backend.
type BannerSource interface {
	ActiveOfferBanners(ctx context.Context) ([]domain.OfferBanner, error)
}

// Service validates coupons against the live banner list.
type Service struct {
	source BannerSource
	logger *slog.Logger
	now    func() time.Time
}

// NewService creates a coupon service.
func NewService(source BannerSource, logger *slog.Logger) *Service {
	return &Service{source: source, logger: logger, now: time.Now}
}

// Apply validates code for subtotal.
func (s *Service) Apply(ctx context.Context, code string, subtotal decimal.Decimal) (domain.AppliedCoupon, error) {
	banners, err := s.source.ActiveOfferBanners(ctx)
	if err != nil {
		return domain.AppliedCoupon{}, fmt.Errorf("load offer banners: %w", err)
	}

	coupon, err := Validate(ActiveOnly(banners, s.now()), code, subtotal)
	if err != nil {
		s.logger.InfoContext(ctx, "coupon rejected",
			slog.String("code", code),
			slog.String("subtotal", subtotal.String()),
			slog.String("reason", err.Error()),
		)
		return domain.AppliedCoupon{}, err
	}

	s.logger.InfoContext(ctx, "coupon applied",
		slog.String("code", coupon.Code),
		slog.String("type", coupon.Type),
	)
	return coupon, nil
}

// Banners returns the banners currently on offer.
func (s *Service) Banners(ctx context.Context) ([]domain.OfferBanner, error) {
	banners, err := s.source.ActiveOfferBanners(ctx)
	if err != nil {
		return nil, fmt.Errorf("load offer banners: %w", err)
	}
	return ActiveOnly(banners, s.now()), nil
}
