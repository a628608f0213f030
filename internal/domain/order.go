package domain

import (
	"encoding/json"
	"fmt"

	"github.com/shopspring/decimal"
)

// Payment methods accepted at checkout.
const (
	PaymentMethodOnline = "online"
	PaymentMethodCOD    = "cod"
)

// CurrencyINR is the only currency the storefront sells in.
const CurrencyINR = "INR"

// ContactInfo is how the customer is reached about an order.
type ContactInfo struct {
	Email string `json:"email" validate:"required,email"`
	Phone string `json:"phone" validate:"required,inphone"`
}

// Address is a delivery address. ZipCode is the 6-digit Indian pincode.
type Address struct {
	FirstName     string `json:"firstName" validate:"required"`
	LastName      string `json:"lastName" validate:"required"`
	StreetAddress string `json:"streetAddress" validate:"required"`
	Apartment     string `json:"apartment,omitempty"`
	City          string `json:"city" validate:"required"`
	State         string `json:"state" validate:"required"`
	ZipCode       string `json:"zipCode" validate:"required,pincode"`
	Country       string `json:"country,omitempty"`
}

// FullName joins first and last name.
func (a Address) FullName() string {
	return a.FirstName + " " + a.LastName
}

// OneLine renders the address the way the payment widget and backend expect it.
func (a Address) OneLine() string {
	return fmt.Sprintf("%s, %s, %s - %s", a.StreetAddress, a.City, a.State, a.ZipCode)
}

// CustomerInfo is the customer block sent with every order.
type CustomerInfo struct {
	Email   string `json:"email"`
	Phone   string `json:"phone"`
	Name    string `json:"name"`
	Address string `json:"address,omitempty"`
}

// AppliedCoupon is a coupon that passed validation for the current subtotal.
type AppliedCoupon struct {
	Code     string          `json:"code"`
	Discount decimal.Decimal `json:"discount"`
	Type     string          `json:"type"`
	Title    string          `json:"title,omitempty"`
}

// AmountOff returns the money taken off subtotal. Discount holds a percentage
// for percentage coupons and a flat amount otherwise. The result never
// exceeds subtotal.
func (c AppliedCoupon) AmountOff(subtotal decimal.Decimal) decimal.Decimal {
	off := c.Discount
	if c.Type == OfferTypePercentage {
		off = subtotal.Mul(c.Discount).Div(decimal.NewFromInt(100))
	}
	if off.IsNegative() {
		return decimal.Zero
	}
	if off.GreaterThan(subtotal) {
		return subtotal
	}
	return off
}

// OrderPayload is the order document posted to the backend for both online
// and cash-on-delivery orders.
type OrderPayload struct {
	Amount              decimal.Decimal `json:"amount"`
	Currency            string          `json:"currency,omitempty"`
	CustomerInfo        CustomerInfo    `json:"customerInfo"`
	CartItems           Cart            `json:"cartItems"`
	ShippingAddress     Address         `json:"shippingAddress"`
	SpecialInstructions string          `json:"specialInstructions,omitempty"`
	AppliedCoupon       *AppliedCoupon  `json:"appliedCoupon"`
	ShippingCharge      decimal.Decimal `json:"shippingCharge"`
	Tax                 decimal.Decimal `json:"tax"`
	Discount            decimal.Decimal `json:"discount"`
}

// GatewayOrder is the payment-gateway order created by the backend for an
// online payment. Amount is in paise.
type GatewayOrder struct {
	OrderID  string `json:"orderId"`
	Amount   int64  `json:"amount"`
	Currency string `json:"currency"`
}

// PaymentVerification carries the gateway callback fields back to the backend.
type PaymentVerification struct {
	GatewayOrderID   string        `json:"razorpay_order_id" validate:"required"`
	GatewayPaymentID string        `json:"razorpay_payment_id" validate:"required"`
	Signature        string        `json:"razorpay_signature" validate:"required"`
	OrderDetails     *OrderPayload `json:"orderDetails,omitempty"`
}

// OrderConfirmation is returned once the backend has recorded an order.
type OrderConfirmation struct {
	OrderID ID `json:"order_id"`
}

// Order is a placed order as listed by the backend.
type Order struct {
	ID          ID              `json:"id"`
	OrderID     string          `json:"order_id"`
	Status      string          `json:"status"`
	TotalAmount decimal.Decimal `json:"total_amount"`
	PaymentMode string          `json:"payment_method,omitempty"`
	CreatedAt   string          `json:"created_at"`
	Items       json.RawMessage `json:"items,omitempty"`
}

// Tracking is the shipment tracking view of an order. Order and Shipment are
// passed through as the backend returns them.
type Tracking struct {
	Order    json.RawMessage `json:"order,omitempty"`
	Shipment json.RawMessage `json:"tracking,omitempty"`
	Message  string          `json:"message,omitempty"`
	Error    string          `json:"error,omitempty"`
}
