package http

import (
	"log/slog"
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"

	"github.com/Sandanitin/AJ-Mana-Style/internal/backend"
	"github.com/Sandanitin/AJ-Mana-Style/internal/promotion"
	"github.com/Sandanitin/AJ-Mana-Style/pkg/httputil"
	"github.com/Sandanitin/AJ-Mana-Style/pkg/validator"
)

// ContentHandler serves the public storefront content read from the backend.
type ContentHandler struct {
	backend    *backend.Storefront
	promotions *promotion.Service
	logger     *slog.Logger
}

// NewContentHandler creates a new content HTTP handler.
func NewContentHandler(sf *backend.Storefront, promotions *promotion.Service, logger *slog.Logger) *ContentHandler {
	return &ContentHandler{
		backend:    sf,
		promotions: promotions,
		logger:     logger,
	}
}

// SubscribeRequest is the JSON request body for the newsletter signup form.
type SubscribeRequest struct {
	Email string `json:"email" validate:"required,email"`
}

type ordersQuery struct {
	Email string `validate:"required,email"`
}

// ListFAQs handles GET /api/v1/faqs
func (h *ContentHandler) ListFAQs(w http.ResponseWriter, r *http.Request) {
	faqs, err := h.backend.ActiveFAQs(r.Context())
	if err != nil {
		httputil.WriteError(w, r, err, h.logger)
		return
	}
	httputil.WriteData(w, http.StatusOK, faqs)
}

// ListTestimonials handles GET /api/v1/testimonials
func (h *ContentHandler) ListTestimonials(w http.ResponseWriter, r *http.Request) {
	testimonials, err := h.backend.FeaturedTestimonials(r.Context())
	if err != nil {
		httputil.WriteError(w, r, err, h.logger)
		return
	}
	httputil.WriteData(w, http.StatusOK, testimonials)
}

// ListOffers handles GET /api/v1/offers
func (h *ContentHandler) ListOffers(w http.ResponseWriter, r *http.Request) {
	banners, err := h.promotions.Banners(r.Context())
	if err != nil {
		httputil.WriteError(w, r, err, h.logger)
		return
	}
	httputil.WriteData(w, http.StatusOK, banners)
}

// Subscribe handles POST /api/v1/newsletter/subscribe
func (h *ContentHandler) Subscribe(w http.ResponseWriter, r *http.Request) {
	var req SubscribeRequest
	if !decodeJSON(w, r, &req) {
		return
	}
	req.Email = strings.TrimSpace(req.Email)
	if err := validator.Validate(req); err != nil {
		httputil.WriteValidationError(w, r, err)
		return
	}

	if err := h.backend.Subscribe(r.Context(), req.Email); err != nil {
		httputil.WriteError(w, r, err, h.logger)
		return
	}
	httputil.WriteData(w, http.StatusCreated, map[string]string{"status": "subscribed"})
}

// ListOrders handles GET /api/v1/orders?email=
func (h *ContentHandler) ListOrders(w http.ResponseWriter, r *http.Request) {
	q := ordersQuery{Email: strings.TrimSpace(r.URL.Query().Get("email"))}
	if err := validator.Validate(q); err != nil {
		httputil.WriteValidationError(w, r, err)
		return
	}

	orders, err := h.backend.OrdersByEmail(r.Context(), q.Email)
	if err != nil {
		httputil.WriteError(w, r, err, h.logger)
		return
	}
	httputil.WriteData(w, http.StatusOK, orders)
}

// TrackOrder handles GET /api/v1/orders/{orderId}/tracking
func (h *ContentHandler) TrackOrder(w http.ResponseWriter, r *http.Request) {
	orderID := chi.URLParam(r, "orderId")

	tracking, err := h.backend.TrackOrder(r.Context(), orderID)
	if err != nil {
		httputil.WriteError(w, r, err, h.logger)
		return
	}
	if tracking.Error != "" {
		httputil.WriteErrorCode(w, r, http.StatusNotFound, "NOT_FOUND", tracking.Error)
		return
	}
	httputil.WriteData(w, http.StatusOK, tracking)
}
