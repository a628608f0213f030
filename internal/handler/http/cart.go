package http

import (
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/shopspring/decimal"

	"github.com/Sandanitin/AJ-Mana-Style/internal/cart"
	"github.com/Sandanitin/AJ-Mana-Style/internal/domain"
	"github.com/Sandanitin/AJ-Mana-Style/pkg/httputil"
	"github.com/Sandanitin/AJ-Mana-Style/pkg/validator"
)

// CartHandler exposes a session's cart and wishlist container.
type CartHandler struct {
	registry *cart.Registry
	logger   *slog.Logger
}

// NewCartHandler creates a new cart HTTP handler.
func NewCartHandler(registry *cart.Registry, logger *slog.Logger) *CartHandler {
	return &CartHandler{
		registry: registry,
		logger:   logger,
	}
}

// --- Request DTOs ---

// AddItemRequest is the JSON request body for adding a product to the cart.
type AddItemRequest struct {
	Product  domain.Product `json:"product" validate:"required"`
	Quantity int            `json:"quantity" validate:"required,gte=1,lte=100"`
}

// UpdateQuantityRequest is the JSON request body for setting a line's
// quantity. Zero removes the line.
type UpdateQuantityRequest struct {
	Quantity int `json:"quantity" validate:"gte=0,lte=100"`
}

// WishlistItemRequest is the JSON request body for saving a product.
type WishlistItemRequest struct {
	Product domain.Product `json:"product" validate:"required"`
}

// --- Response views ---

// CartView is the cart as rendered by the cart page and header badge.
type CartView struct {
	Items domain.Cart     `json:"items"`
	Total decimal.Decimal `json:"total"`
	Count int             `json:"count"`
}

// WishlistView is the wishlist page payload.
type WishlistView struct {
	Items domain.Wishlist `json:"items"`
	Count int             `json:"count"`
}

func cartView(c *cart.Container) CartView {
	items := c.CartItems()
	return CartView{Items: items, Total: items.Total(), Count: items.Count()}
}

func wishlistView(c *cart.Container) WishlistView {
	items := c.WishlistItems()
	return WishlistView{Items: items, Count: len(items)}
}

func (h *CartHandler) container(r *http.Request) *cart.Container {
	return h.registry.Get(r.Context(), sessionFromContext(r.Context()))
}

func productIDParam(r *http.Request) domain.ID {
	return domain.ID(chi.URLParam(r, "productId"))
}

// --- Cart handlers ---

// GetCart handles GET /api/v1/cart
func (h *CartHandler) GetCart(w http.ResponseWriter, r *http.Request) {
	httputil.WriteData(w, http.StatusOK, cartView(h.container(r)))
}

// AddItem handles POST /api/v1/cart/items
func (h *CartHandler) AddItem(w http.ResponseWriter, r *http.Request) {
	var req AddItemRequest
	if !decodeJSON(w, r, &req) {
		return
	}
	if err := validator.Validate(req); err != nil {
		httputil.WriteValidationError(w, r, err)
		return
	}

	c := h.container(r)
	c.AddToCart(r.Context(), req.Product, req.Quantity)

	httputil.WriteData(w, http.StatusOK, cartView(c))
}

// UpdateQuantity handles PUT /api/v1/cart/items/{productId}
func (h *CartHandler) UpdateQuantity(w http.ResponseWriter, r *http.Request) {
	var req UpdateQuantityRequest
	if !decodeJSON(w, r, &req) {
		return
	}
	if err := validator.Validate(req); err != nil {
		httputil.WriteValidationError(w, r, err)
		return
	}

	c := h.container(r)
	c.UpdateQuantity(r.Context(), productIDParam(r), req.Quantity)

	httputil.WriteData(w, http.StatusOK, cartView(c))
}

// RemoveItem handles DELETE /api/v1/cart/items/{productId}
func (h *CartHandler) RemoveItem(w http.ResponseWriter, r *http.Request) {
	c := h.container(r)
	c.RemoveFromCart(r.Context(), productIDParam(r))

	httputil.WriteData(w, http.StatusOK, cartView(c))
}

// ClearCart handles DELETE /api/v1/cart
func (h *CartHandler) ClearCart(w http.ResponseWriter, r *http.Request) {
	c := h.container(r)
	c.ClearCart(r.Context())

	httputil.WriteData(w, http.StatusOK, cartView(c))
}

// --- Wishlist handlers ---

// GetWishlist handles GET /api/v1/wishlist
func (h *CartHandler) GetWishlist(w http.ResponseWriter, r *http.Request) {
	httputil.WriteData(w, http.StatusOK, wishlistView(h.container(r)))
}

// AddToWishlist handles POST /api/v1/wishlist/items
func (h *CartHandler) AddToWishlist(w http.ResponseWriter, r *http.Request) {
	var req WishlistItemRequest
	if !decodeJSON(w, r, &req) {
		return
	}
	if err := validator.Validate(req); err != nil {
		httputil.WriteValidationError(w, r, err)
		return
	}

	c := h.container(r)
	c.AddToWishlist(r.Context(), req.Product)

	httputil.WriteData(w, http.StatusOK, wishlistView(c))
}

// RemoveFromWishlist handles DELETE /api/v1/wishlist/items/{productId}
func (h *CartHandler) RemoveFromWishlist(w http.ResponseWriter, r *http.Request) {
	c := h.container(r)
	c.RemoveFromWishlist(r.Context(), productIDParam(r))

	httputil.WriteData(w, http.StatusOK, wishlistView(c))
}

// WishlistMembership handles GET /api/v1/wishlist/items/{productId}
func (h *CartHandler) WishlistMembership(w http.ResponseWriter, r *http.Request) {
	id := productIDParam(r)
	httputil.WriteData(w, http.StatusOK, map[string]any{
		"product_id":  id,
		"in_wishlist": h.container(r).IsInWishlist(id),
	})
}

// MoveToCart handles POST /api/v1/wishlist/items/{productId}/move
func (h *CartHandler) MoveToCart(w http.ResponseWriter, r *http.Request) {
	c := h.container(r)
	c.MoveToCart(r.Context(), productIDParam(r))

	httputil.WriteData(w, http.StatusOK, map[string]any{
		"cart":     cartView(c),
		"wishlist": wishlistView(c),
	})
}
