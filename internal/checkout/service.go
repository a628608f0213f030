// Package checkout prices the cart and places orders with the backend.
package checkout

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"strings"

	"github.com/shopspring/decimal"

	"github.com/Sandanitin/AJ-Mana-Style/internal/cart"
	"github.com/Sandanitin/AJ-Mana-Style/internal/domain"
	"github.com/Sandanitin/AJ-Mana-Style/internal/kvstore"
	apperrors "github.com/Sandanitin/AJ-Mana-Style/pkg/errors"
	"github.com/Sandanitin/AJ-Mana-Style/pkg/validator"
)

// pendingPrefix namespaces online orders awaiting payment verification.
const pendingPrefix = "checkout:pending:"

// ShippingQuoter quotes the shipping charge for a pincode.
type ShippingQuoter interface {
	Quote(ctx context.Context, pincode string, orderTotal decimal.Decimal) (domain.ShippingQuote, error)
}

// CouponApplier validates a coupon code against a subtotal.
type CouponApplier interface {
	Apply(ctx context.Context, code string, subtotal decimal.Decimal) (domain.AppliedCoupon, error)
}

// OrderBackend records orders and verifies online payments.
type OrderBackend interface {
	CreateGatewayOrder(ctx context.Context, payload domain.OrderPayload) (domain.GatewayOrder, error)
	VerifyPayment(ctx context.Context, v domain.PaymentVerification) (domain.OrderConfirmation, error)
	CreateCODOrder(ctx context.Context, payload domain.OrderPayload) (domain.OrderConfirmation, error)
}

// OrderEvents announces placed orders.
type OrderEvents interface {
	PublishOrderPlaced(ctx context.Context, session, orderID, method string, payload domain.OrderPayload) error
}

// Service implements the checkout flow on top of a session's cart container.
type Service struct {
	shipping ShippingQuoter
	coupons  CouponApplier
	backend  OrderBackend
	events   OrderEvents
	pending  kvstore.Store
	logger   *slog.Logger
}

// NewService creates a checkout service. Online orders awaiting payment are
// kept in pending until verified.
func NewService(
	shipping ShippingQuoter,
	coupons CouponApplier,
	backend OrderBackend,
	events OrderEvents,
	pending kvstore.Store,
	logger *slog.Logger,
) *Service {
	return &Service{
		shipping: shipping,
		coupons:  coupons,
		backend:  backend,
		events:   events,
		pending:  pending,
		logger:   logger,
	}
}

// PlaceOrderRequest is what the checkout form submits.
type PlaceOrderRequest struct {
	PaymentMethod       string             `json:"payment_method" validate:"required,oneof=online cod"`
	Contact             domain.ContactInfo `json:"contact" validate:"required"`
	ShippingAddress     domain.Address     `json:"shipping_address" validate:"required"`
	CouponCode          string             `json:"coupon_code,omitempty"`
	SpecialInstructions string             `json:"special_instructions,omitempty" validate:"max=500"`
}

// PlaceOrderResult is returned once an order has been handed to the backend.
// Online orders carry the gateway order the client pays against; COD orders
// carry the backend order id.
type PlaceOrderResult struct {
	PaymentMethod string               `json:"payment_method"`
	Summary       Summary              `json:"summary"`
	GatewayOrder  *domain.GatewayOrder `json:"gateway_order,omitempty"`
	OrderID       domain.ID            `json:"order_id,omitempty"`
}

type pendingOrder struct {
	Session string              `json:"session"`
	Payload domain.OrderPayload `json:"payload"`
}

// Quote prices the cart. An empty pincode leaves shipping at zero and an
// empty coupon code applies no discount.
func (s *Service) Quote(ctx context.Context, c *cart.Container, pincode, couponCode string) (Summary, error) {
	return s.summarize(ctx, c.CartTotal(), pincode, couponCode)
}

func (s *Service) summarize(ctx context.Context, subtotal decimal.Decimal, pincode, couponCode string) (Summary, error) {
	var coupon *domain.AppliedCoupon
	if code := strings.TrimSpace(couponCode); code != "" {
		applied, err := s.coupons.Apply(ctx, code, subtotal)
		if err != nil {
			return Summary{}, err
		}
		coupon = &applied
	}

	var quote *domain.ShippingQuote
	charge := decimal.Zero
	if pincode != "" {
		q, err := s.shipping.Quote(ctx, pincode, subtotal)
		if err != nil {
			return Summary{}, err
		}
		quote = &q
		charge = q.Charge
	}

	summary := Summarize(subtotal, coupon, charge)
	summary.ShippingQuote = quote
	return summary, nil
}

// PlaceOrder submits the session's cart as an order. COD orders are recorded
// immediately and the cart is cleared. Online orders create a gateway order
// and wait for VerifyPayment before the cart is cleared.
func (s *Service) PlaceOrder(ctx context.Context, c *cart.Container, req PlaceOrderRequest) (*PlaceOrderResult, error) {
	if err := validator.Validate(req); err != nil {
		return nil, err
	}

	items := c.CartItems()
	if len(items) == 0 {
		return nil, apperrors.InvalidInput("cart is empty")
	}

	summary, err := s.summarize(ctx, items.Total(), req.ShippingAddress.ZipCode, req.CouponCode)
	if err != nil {
		return nil, err
	}

	payload := domain.OrderPayload{
		Amount: summary.Total,
		CustomerInfo: domain.CustomerInfo{
			Email: req.Contact.Email,
			Phone: req.Contact.Phone,
			Name:  req.ShippingAddress.FullName(),
		},
		CartItems:           items,
		ShippingAddress:     req.ShippingAddress,
		SpecialInstructions: req.SpecialInstructions,
		AppliedCoupon:       summary.Coupon,
		ShippingCharge:      summary.Shipping,
		Tax:                 summary.Tax,
		Discount:            summary.Discount,
	}

	result := &PlaceOrderResult{PaymentMethod: req.PaymentMethod, Summary: summary}

	if req.PaymentMethod == domain.PaymentMethodCOD {
		confirmation, err := s.backend.CreateCODOrder(ctx, payload)
		if err != nil {
			return nil, fmt.Errorf("create cod order: %w", err)
		}
		result.OrderID = confirmation.OrderID
		s.complete(ctx, c, string(confirmation.OrderID), domain.PaymentMethodCOD, payload)
		return result, nil
	}

	payload.Currency = domain.CurrencyINR
	payload.CustomerInfo.Address = req.ShippingAddress.OneLine()

	gatewayOrder, err := s.backend.CreateGatewayOrder(ctx, payload)
	if err != nil {
		return nil, fmt.Errorf("create gateway order: %w", err)
	}

	data, err := json.Marshal(pendingOrder{Session: c.Session(), Payload: payload})
	if err != nil {
		return nil, fmt.Errorf("marshal pending order: %w", err)
	}
	if err := s.pending.Set(ctx, pendingPrefix+gatewayOrder.OrderID, data); err != nil {
		return nil, fmt.Errorf("save pending order: %w", err)
	}

	s.logger.InfoContext(ctx, "gateway order created",
		slog.String("gateway_order_id", gatewayOrder.OrderID),
		slog.String("amount", summary.Total.StringFixed(2)),
	)

	result.GatewayOrder = &gatewayOrder
	return result, nil
}

// VerifyPayment confirms an online payment with the backend, attaching the
// order details saved by PlaceOrder. The order must have been placed from the
// same session. On success the cart is cleared.
func (s *Service) VerifyPayment(ctx context.Context, c *cart.Container, v domain.PaymentVerification) (domain.OrderConfirmation, error) {
	if err := validator.Validate(v); err != nil {
		return domain.OrderConfirmation{}, err
	}

	key := pendingPrefix + v.GatewayOrderID
	data, err := s.pending.Get(ctx, key)
	if err != nil {
		if kvstore.IsNotFound(err) {
			return domain.OrderConfirmation{}, apperrors.NotFound("pending order", v.GatewayOrderID)
		}
		return domain.OrderConfirmation{}, fmt.Errorf("load pending order: %w", err)
	}

	var pending pendingOrder
	if err := json.Unmarshal(data, &pending); err != nil {
		return domain.OrderConfirmation{}, fmt.Errorf("decode pending order: %w", err)
	}
	if pending.Session != c.Session() {
		return domain.OrderConfirmation{}, apperrors.NotFound("pending order", v.GatewayOrderID)
	}

	v.OrderDetails = &pending.Payload
	confirmation, err := s.backend.VerifyPayment(ctx, v)
	if err != nil {
		return domain.OrderConfirmation{}, fmt.Errorf("verify payment: %w", err)
	}

	if err := s.pending.Delete(ctx, key); err != nil {
		s.logger.WarnContext(ctx, "failed to remove pending order",
			slog.String("gateway_order_id", v.GatewayOrderID),
			slog.String("error", err.Error()),
		)
	}

	s.complete(ctx, c, string(confirmation.OrderID), domain.PaymentMethodOnline, pending.Payload)
	return confirmation, nil
}

func (s *Service) complete(ctx context.Context, c *cart.Container, orderID, method string, payload domain.OrderPayload) {
	c.ClearCart(ctx)

	s.logger.InfoContext(ctx, "order placed",
		slog.String("order_id", orderID),
		slog.String("payment_method", method),
	)

	if err := s.events.PublishOrderPlaced(ctx, c.Session(), orderID, method, payload); err != nil {
		s.logger.ErrorContext(ctx, "failed to publish order placed event",
			slog.String("order_id", orderID),
			slog.String("error", err.Error()),
		)
	}
}
