package shipping

import (
	"context"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/shopspring/decimal"

	"github.com/Sandanitin/AJ-Mana-Style/internal/domain"
)

// ZoneSource loads the shipping zone table.
type ZoneSource interface {
	ShippingZones(ctx context.Context) ([]domain.ShippingZone, error)
}

// Service quotes shipping from a cached copy of the zone table.
type Service struct {
	source ZoneSource
	ttl    time.Duration
	logger *slog.Logger
	now    func() time.Time

	mu        sync.Mutex
	zones     []domain.ShippingZone
	fetchedAt time.Time
}

// NewService creates a shipping service. A ttl of zero disables caching.
func NewService(source ZoneSource, ttl time.Duration, logger *slog.Logger) *Service {
	return &Service{
		source: source,
		ttl:    ttl,
		logger: logger,
		now:    time.Now,
	}
}

// Quote validates pincode and prices shipping for an order of orderTotal.
func (s *Service) Quote(ctx context.Context, pincode string, orderTotal decimal.Decimal) (domain.ShippingQuote, error) {
	if err := ValidatePincode(pincode); err != nil {
		return domain.ShippingQuote{}, err
	}

	zones, err := s.Zones(ctx)
	if err != nil {
		return domain.ShippingQuote{}, err
	}

	q, err := Calculate(zones, pincode, orderTotal)
	if err != nil {
		s.logger.WarnContext(ctx, "no shipping zone for pincode",
			slog.String("pincode", pincode),
			slog.Int("zones", len(zones)),
		)
		return domain.ShippingQuote{}, err
	}
	return q, nil
}

// Zones returns the zone table, refreshing it when the cached copy is older
// than the ttl. A stale table is served if the refresh fails.
func (s *Service) Zones(ctx context.Context) ([]domain.ShippingZone, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.zones != nil && s.ttl > 0 && s.now().Sub(s.fetchedAt) < s.ttl {
		return s.zones, nil
	}

	zones, err := s.source.ShippingZones(ctx)
	if err != nil {
		if s.zones != nil {
			s.logger.WarnContext(ctx, "shipping zone refresh failed, serving stale table",
				slog.String("error", err.Error()),
			)
			return s.zones, nil
		}
		return nil, fmt.Errorf("load shipping zones: %w", err)
	}
	if zones == nil {
		zones = []domain.ShippingZone{}
	}

	s.zones = zones
	s.fetchedAt = s.now()
	return zones, nil
}

// Invalidate drops the cached zone table. Admin writes call this so the next
// quote sees the change.
func (s *Service) Invalidate() {
	s.mu.Lock()
	s.zones = nil
	s.mu.Unlock()
}
