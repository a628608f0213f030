package http

import (
	"context"
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/Sandanitin/AJ-Mana-Style/pkg/health"
	"github.com/Sandanitin/AJ-Mana-Style/pkg/middleware"
)

// Handlers groups the route handlers mounted by NewRouter. A nil Admin
// handler leaves the admin routes unmounted.
type Handlers struct {
	Cart     *CartHandler
	Checkout *CheckoutHandler
	Content  *ContentHandler
	Admin    *AdminHandler
}

// RouterConfig holds the cross-cutting settings of the HTTP surface.
type RouterConfig struct {
	ServiceName    string
	PprofCIDRs     []string
	CORS           middleware.CORSConfig
	RateLimitRPS   float64
	RateLimitBurst int
	// AdminTokens validates bearer tokens on the admin routes.
	AdminTokens middleware.TokenValidator
	// ContentMaxAge is the Cache-Control max-age for public content, in seconds.
	ContentMaxAge int
	// Metrics receives HTTP request metrics. Nil uses the default registry.
	Metrics *middleware.HTTPMetrics
}

// NewRouter creates a chi router with every storefront route registered.
// ctx bounds background work started by the middleware.
func NewRouter(ctx context.Context, h Handlers, healthHandler *health.Handler, logger *slog.Logger, cfg RouterConfig) http.Handler {
	r := chi.NewRouter()

	// Global middleware
	r.Use(middleware.RequestLogging(logger))
	r.Use(middleware.Recovery(logger))
	r.Use(middleware.CORS(cfg.CORS))
	r.Use(chimw.Compress(5))
	r.Use(chimw.Timeout(30 * time.Second))
	r.Use(middleware.PrometheusMetrics(cfg.ServiceName, cfg.Metrics))
	r.Use(middleware.Tracing(cfg.ServiceName))
	r.Use(SessionFromHeader)
	r.Use(middleware.RequestLogger(logger))

	// Health check endpoints
	r.Get("/health/live", healthHandler.LivenessHandler())
	r.Get("/health/ready", healthHandler.ReadinessHandler())
	r.Get("/metrics", func(w http.ResponseWriter, r *http.Request) {
		promhttp.Handler().ServeHTTP(w, r)
	})

	// Pprof debug endpoints with IP allowlist.
	middleware.RegisterPprof(r, cfg.PprofCIDRs, logger)

	r.Route("/api/v1", func(r chi.Router) {
		r.Use(ContentTypeJSON)
		if cfg.RateLimitRPS > 0 {
			r.Use(middleware.RateLimit(ctx, cfg.RateLimitRPS, cfg.RateLimitBurst, logger))
		}

		r.Route("/cart", func(r chi.Router) {
			r.Use(middleware.NoStore(SessionHeader))
			r.Get("/", h.Cart.GetCart)
			r.Delete("/", h.Cart.ClearCart)

			r.Post("/items", h.Cart.AddItem)
			r.Put("/items/{productId}", h.Cart.UpdateQuantity)
			r.Delete("/items/{productId}", h.Cart.RemoveItem)
		})

		r.Route("/wishlist", func(r chi.Router) {
			r.Use(middleware.NoStore(SessionHeader))
			r.Get("/", h.Cart.GetWishlist)

			r.Post("/items", h.Cart.AddToWishlist)
			r.Get("/items/{productId}", h.Cart.WishlistMembership)
			r.Delete("/items/{productId}", h.Cart.RemoveFromWishlist)
			r.Post("/items/{productId}/move", h.Cart.MoveToCart)
		})

		r.Get("/shipping/quote", h.Checkout.ShippingQuote)

		r.Route("/checkout", func(r chi.Router) {
			r.Use(middleware.NoStore(SessionHeader))
			r.Post("/quote", h.Checkout.Quote)
			r.Post("/orders", h.Checkout.PlaceOrder)
			r.Post("/payments/verify", h.Checkout.VerifyPayment)
		})

		r.Group(func(r chi.Router) {
			r.Use(middleware.CacheControl(cfg.ContentMaxAge))
			r.Get("/faqs", h.Content.ListFAQs)
			r.Get("/testimonials", h.Content.ListTestimonials)
			r.Get("/offers", h.Content.ListOffers)
		})
		r.Post("/newsletter/subscribe", h.Content.Subscribe)
		r.Get("/orders", h.Content.ListOrders)
		r.Get("/orders/{orderId}/tracking", h.Content.TrackOrder)

		if h.Admin != nil && cfg.AdminTokens != nil {
			r.Route("/admin", func(r chi.Router) {
				r.Use(middleware.Auth(cfg.AdminTokens))
				r.Use(middleware.RequireRole("admin"))
				r.Use(middleware.RequestLogger(logger))
				h.Admin.Routes(r)
			})
		}
	})

	return r
}
