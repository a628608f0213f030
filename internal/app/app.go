package app

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/redis/go-redis/v9"
	"github.com/sony/gobreaker/v2"

	"github.com/Sandanitin/AJ-Mana-Style/internal/backend"
	"github.com/Sandanitin/AJ-Mana-Style/internal/cart"
	"github.com/Sandanitin/AJ-Mana-Style/internal/checkout"
	"github.com/Sandanitin/AJ-Mana-Style/internal/config"
	"github.com/Sandanitin/AJ-Mana-Style/internal/event"
	handler "github.com/Sandanitin/AJ-Mana-Style/internal/handler/http"
	"github.com/Sandanitin/AJ-Mana-Style/internal/kvstore"
	"github.com/Sandanitin/AJ-Mana-Style/internal/promotion"
	"github.com/Sandanitin/AJ-Mana-Style/internal/shipping"
	"github.com/Sandanitin/AJ-Mana-Style/pkg/database"
	"github.com/Sandanitin/AJ-Mana-Style/pkg/health"
	"github.com/Sandanitin/AJ-Mana-Style/pkg/httpclient"
	pkgkafka "github.com/Sandanitin/AJ-Mana-Style/pkg/kafka"
	"github.com/Sandanitin/AJ-Mana-Style/pkg/middleware"
	"github.com/Sandanitin/AJ-Mana-Style/pkg/tracing"
)

// ServiceName identifies this service in logs, metrics, traces and events.
const ServiceName = "storefront"

// App wires together all dependencies and runs the storefront service.
type App struct {
	cfg            *config.Config
	logger         *slog.Logger
	rdb            *redis.Client
	producer       *pkgkafka.Producer
	registry       *cart.Registry
	watchDone      chan struct{}
	tracerShutdown func(context.Context) error
	httpServer     *http.Server
	stop           context.CancelFunc
}

// NewApp creates a new application instance, initializing all dependencies.
func NewApp(cfg *config.Config, logger *slog.Logger) (*App, error) {
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	a := &App{cfg: cfg, logger: logger}

	tracerShutdown, err := tracing.InitTracer(ctx, tracing.Config{
		ServiceName:    ServiceName,
		ServiceVersion: "0.1.0",
		Environment:    cfg.Environment,
		OTLPEndpoint:   cfg.OTELEndpoint,
		SampleRate:     cfg.OTELSampleRate,
		Enabled:        cfg.OTELEnabled,
	})
	if err != nil {
		return nil, fmt.Errorf("init tracer: %w", err)
	}
	a.tracerShutdown = tracerShutdown

	store, err := a.openStore(ctx)
	if err != nil {
		return nil, err
	}

	// Event publishing.
	var publisher event.Publisher = event.Discard{}
	if cfg.EventsEnabled {
		a.producer = pkgkafka.NewProducer(pkgkafka.DefaultProducerConfig(cfg.KafkaBrokers), logger)
		publisher = a.producer
		logger.Info("kafka producer initialized", slog.Any("brokers", cfg.KafkaBrokers))
	}
	events := event.NewProducer(publisher, logger)

	a.registry = cart.NewRegistry(store, logger,
		cart.WithContainerObserver(events.ContainerObserver()),
		cart.WithMaxSessions(cfg.MaxSessions),
		cart.WithIdleTTL(cfg.SessionIdleTTL()),
	)

	// Backend API client with retries behind a circuit breaker.
	hc := httpclient.New(httpclient.Config{
		Timeout:         time.Duration(cfg.BackendTimeout) * time.Second,
		MaxRetries:      cfg.BackendMaxRetries,
		RetryWaitMin:    200 * time.Millisecond,
		RetryWaitMax:    2 * time.Second,
		MaxConnsPerHost: 50,
	})
	cb := httpclient.NewCircuitBreakerClient(hc, httpclient.CircuitBreakerConfig{
		Name:         "storefront-backend",
		MaxRequests:  cfg.CBMaxRequests,
		Interval:     time.Duration(cfg.CBInterval) * time.Second,
		Timeout:      time.Duration(cfg.CBTimeout) * time.Second,
		FailureRatio: cfg.CBFailureRatio,
		MinRequests:  cfg.CBMinRequests,
	}, logger).WithFallback(backend.CircuitOpenFallback)
	sf := backend.NewStorefront(backend.NewClient(cb, cfg.BackendURL, logger))

	// Domain services.
	shippingSvc := shipping.NewService(sf, cfg.ShippingZoneCacheTTL(), logger)
	promotionSvc := promotion.NewService(sf, logger)
	checkoutSvc := checkout.NewService(shippingSvc, promotionSvc, sf, events, store, logger)

	// Health checks.
	healthHandler := health.NewHandler()
	healthHandler.RegisterCritical("store", store.Ping)
	healthHandler.RegisterNonCritical("backend", func(context.Context) error {
		if cb.State() == gobreaker.StateOpen {
			return errors.New("circuit breaker open")
		}
		return nil
	})
	if a.producer != nil {
		healthHandler.RegisterNonCritical("kafka", a.producer.Ping)
	}

	corsCfg := middleware.DefaultCORSConfig()
	corsCfg.AllowedOrigins = cfg.CORSAllowedOrigins
	corsCfg.AllowedHeaders = append(corsCfg.AllowedHeaders, handler.SessionHeader)
	corsCfg.Environment = cfg.Environment

	routerCtx, stop := context.WithCancel(context.Background())
	a.stop = stop

	if cfg.StoreWatch {
		a.watchDone = make(chan struct{})
		go a.watchStore(routerCtx)
	}

	router := handler.NewRouter(routerCtx, handler.Handlers{
		Cart:     handler.NewCartHandler(a.registry, logger),
		Checkout: handler.NewCheckoutHandler(a.registry, checkoutSvc, shippingSvc, logger),
		Content:  handler.NewContentHandler(sf, promotionSvc, logger),
		Admin:    handler.NewAdminHandler(sf, logger, shippingSvc.Invalidate),
	}, healthHandler, logger, handler.RouterConfig{
		ServiceName:    ServiceName,
		PprofCIDRs:     cfg.PprofAllowedCIDRs,
		CORS:           corsCfg,
		RateLimitRPS:   cfg.RateLimitRPS,
		RateLimitBurst: cfg.RateLimitBurst,
		AdminTokens:    middleware.HMACValidator(cfg.AdminJWTSecret),
		ContentMaxAge:  cfg.ContentCacheSeconds,
	})

	a.httpServer = &http.Server{
		Addr:         fmt.Sprintf(":%d", cfg.HTTPPort),
		Handler:      router,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 35 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	return a, nil
}

// openStore builds the key-value store selected by STORE_BACKEND.
func (a *App) openStore(ctx context.Context) (kvstore.Store, error) {
	if a.cfg.StoreBackend == config.StoreMemory {
		a.logger.Warn("using in-memory store; carts are lost on restart")
		return kvstore.NewMemoryStore(), nil
	}

	redisCfg := database.DefaultRedisConfig()
	redisCfg.URL = a.cfg.RedisURL
	redisCfg.Addr = a.cfg.RedisAddr
	redisCfg.Password = a.cfg.RedisPass
	redisCfg.DB = a.cfg.RedisDB
	redisCfg.ClientName = ServiceName
	rdb, err := database.NewRedisClient(ctx, redisCfg)
	if err != nil {
		return nil, fmt.Errorf("connect to redis: %w", err)
	}
	a.rdb = rdb
	a.logger.Info("connected to Redis",
		slog.String("addr", rdb.Options().Addr),
		slog.Int("db", rdb.Options().DB),
	)

	if err := database.RegisterPoolMetrics(prometheus.DefaultRegisterer, rdb, ServiceName); err != nil {
		a.logger.Warn("redis pool metrics not registered", slog.String("error", err.Error()))
	}
	database.SetSlowCommandLogging(time.Duration(a.cfg.SlowCommandThresholdMs)*time.Millisecond, a.logger)

	return kvstore.NewRedisStore(rdb, kvstore.WithTTL(a.cfg.StoreTTLDuration())), nil
}

// watchStore keeps the registry following external writes, resubscribing
// after the change feed drops.
func (a *App) watchStore(ctx context.Context) {
	defer close(a.watchDone)
	for {
		err := a.registry.Watch(ctx)
		if ctx.Err() != nil {
			return
		}
		a.logger.Warn("store watch stopped, resubscribing", slog.String("error", err.Error()))
		select {
		case <-ctx.Done():
			return
		case <-time.After(5 * time.Second):
		}
	}
}

// Run starts the HTTP server and blocks until the context is canceled.
func (a *App) Run(ctx context.Context) error {
	errCh := make(chan error, 1)

	go func() {
		a.logger.Info("starting HTTP server",
			slog.String("addr", a.httpServer.Addr),
		)
		if err := a.httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- fmt.Errorf("http server: %w", err)
		}
	}()

	select {
	case <-ctx.Done():
		a.logger.Info("shutdown signal received")
	case err := <-errCh:
		_ = a.Shutdown()
		return err
	}

	return a.Shutdown()
}

// Shutdown gracefully stops all components.
func (a *App) Shutdown() error {
	a.logger.Info("shutting down application...")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := a.httpServer.Shutdown(shutdownCtx); err != nil {
		a.logger.Error("http server shutdown error", slog.String("error", err.Error()))
	}
	a.stop()

	// Let the store watcher finish before the connection it reads from goes away.
	if a.watchDone != nil {
		select {
		case <-a.watchDone:
		case <-shutdownCtx.Done():
		}
	}

	if a.producer != nil {
		if err := a.producer.Close(); err != nil {
			a.logger.Error("kafka producer close error", slog.String("error", err.Error()))
		}
	}

	if a.rdb != nil {
		if err := a.rdb.Close(); err != nil {
			a.logger.Error("redis close error", slog.String("error", err.Error()))
		}
	}

	if err := a.tracerShutdown(shutdownCtx); err != nil {
		a.logger.Error("tracer shutdown error", slog.String("error", err.Error()))
	}

	a.logger.Info("application shutdown complete")
	return nil
}
