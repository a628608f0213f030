package backend

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"

	"github.com/Sandanitin/AJ-Mana-Style/internal/domain"
)

// Backend endpoints.
const (
	EndpointShipping     = "shipping.php"
	EndpointOfferBanners = "offer-banners.php"
	EndpointFAQs         = "faqs.php"
	EndpointTestimonials = "testimonials.php"
	EndpointCategories   = "categories.php"
	EndpointNewsletter   = "newsletter.php"
	EndpointCreateOrder  = "create-order.php"
	EndpointVerify       = "verify-payment.php"
	EndpointCODOrder     = "create-cod-order.php"
	EndpointOrders       = "get-orders.php"
	EndpointTrackOrder   = "track-order.php"
)

// Storefront groups the typed endpoints the storefront uses.
type Storefront struct {
	*Client

	Zones        *Resource[domain.ShippingZone]
	Banners      *Resource[domain.OfferBanner]
	FAQs         *Resource[domain.FAQ]
	Testimonials *Resource[domain.Testimonial]
	Categories   *Resource[domain.Category]
}

// NewStorefront wires every resource onto client.
func NewStorefront(client *Client) *Storefront {
	return &Storefront{
		Client:       client,
		Zones:        NewResource[domain.ShippingZone](client, EndpointShipping, DeleteByQuery),
		Banners:      NewResource[domain.OfferBanner](client, EndpointOfferBanners, DeleteByQuery),
		FAQs:         NewResource[domain.FAQ](client, EndpointFAQs, DeleteByBody),
		Testimonials: NewResource[domain.Testimonial](client, EndpointTestimonials, DeleteByBody),
		Categories:   NewResource[domain.Category](client, EndpointCategories, DeleteByQuery),
	}
}

// ShippingZones returns the full zone table.
func (s *Storefront) ShippingZones(ctx context.Context) ([]domain.ShippingZone, error) {
	return s.Zones.List(ctx, nil)
}

// ActiveOfferBanners returns the banners the backend flags active.
func (s *Storefront) ActiveOfferBanners(ctx context.Context) ([]domain.OfferBanner, error) {
	return s.Banners.List(ctx, url.Values{"active": {"1"}})
}

// ActiveFAQs returns the FAQs shown on the storefront.
func (s *Storefront) ActiveFAQs(ctx context.Context) ([]domain.FAQ, error) {
	return s.FAQs.List(ctx, url.Values{"active": {"true"}})
}

// FeaturedTestimonials returns the testimonials shown on the homepage.
func (s *Storefront) FeaturedTestimonials(ctx context.Context) ([]domain.Testimonial, error) {
	return s.Testimonials.List(ctx, url.Values{"featured": {"true"}})
}

// CreateGatewayOrder registers an online order and returns the payment
// gateway order the client-side widget needs.
func (s *Storefront) CreateGatewayOrder(ctx context.Context, payload domain.OrderPayload) (domain.GatewayOrder, error) {
	var out domain.GatewayOrder
	if err := s.call(ctx, http.MethodPost, EndpointCreateOrder, nil, payload, &out); err != nil {
		return domain.GatewayOrder{}, err
	}
	if out.OrderID == "" {
		return domain.GatewayOrder{}, fmt.Errorf("%s: response carried no order id", EndpointCreateOrder)
	}
	return out, nil
}

// VerifyPayment hands the gateway callback to the backend, which checks the
// signature and records the order.
func (s *Storefront) VerifyPayment(ctx context.Context, v domain.PaymentVerification) (domain.OrderConfirmation, error) {
	var out domain.OrderConfirmation
	if err := s.call(ctx, http.MethodPost, EndpointVerify, nil, v, &out); err != nil {
		return domain.OrderConfirmation{}, err
	}
	return out, nil
}

// CreateCODOrder records a cash-on-delivery order.
func (s *Storefront) CreateCODOrder(ctx context.Context, payload domain.OrderPayload) (domain.OrderConfirmation, error) {
	var out domain.OrderConfirmation
	if err := s.call(ctx, http.MethodPost, EndpointCODOrder, nil, payload, &out); err != nil {
		return domain.OrderConfirmation{}, err
	}
	return out, nil
}

// OrdersByEmail lists the orders placed with email.
func (s *Storefront) OrdersByEmail(ctx context.Context, email string) ([]domain.Order, error) {
	var out []domain.Order
	if err := s.call(ctx, http.MethodGet, EndpointOrders, url.Values{"email": {email}}, nil, &out); err != nil {
		return nil, err
	}
	if out == nil {
		out = []domain.Order{}
	}
	return out, nil
}

// TrackOrder returns shipment tracking for an order. This endpoint does not
// use the success envelope.
func (s *Storefront) TrackOrder(ctx context.Context, orderID string) (domain.Tracking, error) {
	resp, err := s.send(ctx, http.MethodGet, EndpointTrackOrder, url.Values{"order_id": {orderID}}, nil)
	if err != nil {
		return domain.Tracking{}, err
	}
	defer resp.Body.Close()

	var out domain.Tracking
	if err := json.NewDecoder(io.LimitReader(resp.Body, maxBodyBytes)).Decode(&out); err != nil {
		return domain.Tracking{}, fmt.Errorf("decode %s response: %w", EndpointTrackOrder, err)
	}
	return out, nil
}

// Subscribers lists newsletter subscribers.
func (s *Storefront) Subscribers(ctx context.Context) ([]domain.Subscriber, error) {
	var out []domain.Subscriber
	if err := s.call(ctx, http.MethodGet, EndpointNewsletter, nil, nil, &out); err != nil {
		return nil, err
	}
	if out == nil {
		out = []domain.Subscriber{}
	}
	return out, nil
}

// Subscribe adds email to the newsletter.
func (s *Storefront) Subscribe(ctx context.Context, email string) error {
	return s.call(ctx, http.MethodPost, EndpointNewsletter, nil, map[string]string{"email": email}, nil)
}

// Campaigns lists previously sent newsletter campaigns.
func (s *Storefront) Campaigns(ctx context.Context) ([]json.RawMessage, error) {
	var out []json.RawMessage
	if err := s.call(ctx, http.MethodGet, EndpointNewsletter, url.Values{"action": {"campaigns"}}, nil, &out); err != nil {
		return nil, err
	}
	if out == nil {
		out = []json.RawMessage{}
	}
	return out, nil
}

// SendCampaign mails c to all active subscribers.
func (s *Storefront) SendCampaign(ctx context.Context, c domain.NewsletterCampaign) error {
	return s.call(ctx, http.MethodPost, EndpointNewsletter, url.Values{"action": {"send"}}, c, nil)
}
