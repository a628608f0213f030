package http

import (
	"errors"
	"log/slog"
	"net/http"

	"github.com/Sandanitin/AJ-Mana-Style/internal/cart"
	"github.com/Sandanitin/AJ-Mana-Style/internal/checkout"
	"github.com/Sandanitin/AJ-Mana-Style/internal/domain"
	"github.com/Sandanitin/AJ-Mana-Style/internal/shipping"
	"github.com/Sandanitin/AJ-Mana-Style/pkg/httputil"
	"github.com/Sandanitin/AJ-Mana-Style/pkg/validator"
)

// CheckoutHandler serves pricing and order placement for the session's cart.
type CheckoutHandler struct {
	registry *cart.Registry
	checkout *checkout.Service
	shipping *shipping.Service
	logger   *slog.Logger
}

// NewCheckoutHandler creates a new checkout HTTP handler.
func NewCheckoutHandler(registry *cart.Registry, checkoutSvc *checkout.Service, shippingSvc *shipping.Service, logger *slog.Logger) *CheckoutHandler {
	return &CheckoutHandler{
		registry: registry,
		checkout: checkoutSvc,
		shipping: shippingSvc,
		logger:   logger,
	}
}

// QuoteRequest is the JSON request body for pricing the cart.
type QuoteRequest struct {
	Pincode    string `json:"pincode" validate:"omitempty,pincode"`
	CouponCode string `json:"coupon_code" validate:"max=64"`
}

func (h *CheckoutHandler) container(r *http.Request) *cart.Container {
	return h.registry.Get(r.Context(), sessionFromContext(r.Context()))
}

// ShippingQuote handles GET /api/v1/shipping/quote?pincode=
func (h *CheckoutHandler) ShippingQuote(w http.ResponseWriter, r *http.Request) {
	pincode := r.URL.Query().Get("pincode")
	quote, err := h.shipping.Quote(r.Context(), pincode, h.container(r).CartTotal())
	if err != nil {
		httputil.WriteError(w, r, err, h.logger)
		return
	}

	httputil.WriteData(w, http.StatusOK, quote)
}

// Quote handles POST /api/v1/checkout/quote
func (h *CheckoutHandler) Quote(w http.ResponseWriter, r *http.Request) {
	var req QuoteRequest
	if !decodeJSON(w, r, &req) {
		return
	}
	if err := validator.Validate(req); err != nil {
		httputil.WriteValidationError(w, r, err)
		return
	}

	summary, err := h.checkout.Quote(r.Context(), h.container(r), req.Pincode, req.CouponCode)
	if err != nil {
		httputil.WriteError(w, r, err, h.logger)
		return
	}

	httputil.WriteData(w, http.StatusOK, summary)
}

// PlaceOrder handles POST /api/v1/checkout/orders
func (h *CheckoutHandler) PlaceOrder(w http.ResponseWriter, r *http.Request) {
	var req checkout.PlaceOrderRequest
	if !decodeJSON(w, r, &req) {
		return
	}

	result, err := h.checkout.PlaceOrder(r.Context(), h.container(r), req)
	if err != nil {
		h.writeError(w, r, err)
		return
	}

	httputil.WriteData(w, http.StatusCreated, result)
}

// VerifyPayment handles POST /api/v1/checkout/payments/verify
func (h *CheckoutHandler) VerifyPayment(w http.ResponseWriter, r *http.Request) {
	var req domain.PaymentVerification
	if !decodeJSON(w, r, &req) {
		return
	}
	req.OrderDetails = nil

	confirmation, err := h.checkout.VerifyPayment(r.Context(), h.container(r), req)
	if err != nil {
		h.writeError(w, r, err)
		return
	}

	httputil.WriteData(w, http.StatusOK, confirmation)
}

func (h *CheckoutHandler) writeError(w http.ResponseWriter, r *http.Request, err error) {
	var valErr *validator.ValidationError
	if errors.As(err, &valErr) {
		httputil.WriteValidationError(w, r, err)
		return
	}
	httputil.WriteError(w, r, err, h.logger)
}
