// Package app wires together all storefront dependencies and runs the
// HTTP server.
package app

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/redis/go-redis/v9"

	"github.com/blomcosmetics/storefront/internal/config"
	"github.com/blomcosmetics/storefront/internal/domain"
	"github.com/blomcosmetics/storefront/internal/event"
	"github.com/blomcosmetics/storefront/internal/gateway"
	handler "github.com/blomcosmetics/storefront/internal/handler/http"
	"github.com/blomcosmetics/storefront/internal/notify"
	"github.com/blomcosmetics/storefront/internal/payment"
	pgrepo "github.com/blomcosmetics/storefront/internal/repository/postgres"
	"github.com/blomcosmetics/storefront/internal/repository/postgres/migrations"
	"github.com/blomcosmetics/storefront/internal/search"
	esengine "github.com/blomcosmetics/storefront/internal/search/elasticsearch"
	memengine "github.com/blomcosmetics/storefront/internal/search/memory"
	"github.com/blomcosmetics/storefront/internal/service"
	"github.com/blomcosmetics/storefront/internal/store"
	"github.com/blomcosmetics/storefront/pkg/database"
	"github.com/blomcosmetics/storefront/pkg/health"
	"github.com/blomcosmetics/storefront/pkg/httpclient"
	pkgkafka "github.com/blomcosmetics/storefront/pkg/kafka"
	"github.com/blomcosmetics/storefront/pkg/middleware"
	"github.com/blomcosmetics/storefront/pkg/tracing"
)

// App wires together all dependencies and runs the storefront service.
type App struct {
	cfg        *config.Config
	logger     *slog.Logger
	pool       *pgxpool.Pool
	rdb        *redis.Client
	producer   *pkgkafka.Producer
	httpServer *http.Server

	tracerShutdown func(context.Context) error
}

// NewApp creates a new application instance, initializing all dependencies.
func NewApp(cfg *config.Config, logger *slog.Logger) (*App, error) {
	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	// Tracing.
	traceCfg := tracing.DefaultConfig("storefront")
	traceCfg.Environment = cfg.Environment
	if cfg.OTLPEndpoint != "" {
		traceCfg.OTLPEndpoint = cfg.OTLPEndpoint
		traceCfg.Enabled = true
	}
	tracerShutdown, err := tracing.InitTracer(ctx, traceCfg)
	if err != nil {
		return nil, fmt.Errorf("init tracer: %w", err)
	}

	// Postgres pool and schema.
	pgCfg := database.DefaultPostgresConfig()
	pgCfg.Host = cfg.PostgresHost
	pgCfg.Port = cfg.PostgresPort
	pgCfg.User = cfg.PostgresUser
	pgCfg.Password = cfg.PostgresPass
	pgCfg.DBName = cfg.PostgresDB
	pgCfg.SSLMode = cfg.PostgresSSLMode

	pool, err := database.NewPostgresPool(ctx, &pgCfg, logger)
	if err != nil {
		return nil, fmt.Errorf("connect to postgres: %w", err)
	}
	if err := database.RunMigrations(ctx, pool, migrations.FS, logger); err != nil {
		return nil, fmt.Errorf("run migrations: %w", err)
	}

	// Session state backend. Redis when configured, memory otherwise.
	sessionTTL := time.Duration(cfg.SessionTTL) * time.Hour
	var (
		rdb     *redis.Client
		backend store.Store
	)
	if cfg.RedisHost != "" {
		rdb, err = database.NewRedisClient(ctx, database.RedisConfig{
			Host:     cfg.RedisHost,
			Port:     cfg.RedisPort,
			Password: cfg.RedisPass,
			DB:       cfg.RedisDB,
		})
		if err != nil {
			return nil, fmt.Errorf("connect to redis: %w", err)
		}
		backend = store.NewRedisStore(rdb, sessionTTL)
		logger.Info("session stores backed by redis",
			slog.String("host", cfg.RedisHost),
			slog.Int("db", cfg.RedisDB),
		)
	} else {
		backend = store.NewMemoryStore()
		logger.Warn("session stores backed by process memory, state is lost on restart")
	}

	// Search engine. Elasticsearch when configured, memory otherwise.
	var engine search.Engine
	if cfg.ElasticsearchURL != "" {
		esEngine, err := esengine.New(cfg.ElasticsearchURL, cfg.ElasticsearchIndex, logger)
		if err != nil {
			return nil, fmt.Errorf("init elasticsearch engine: %w", err)
		}
		engine = esEngine
	} else {
		engine = memengine.New()
		logger.Warn("search backed by in-memory engine")
	}

	// Kafka producer.
	kafkaCfg := pkgkafka.DefaultProducerConfig(cfg.KafkaBrokers)
	kafkaProducer := pkgkafka.NewProducer(kafkaCfg, logger)
	producer := event.NewProducer(kafkaProducer, logger)
	logger.Info("kafka producer initialized", slog.Any("brokers", cfg.KafkaBrokers))

	// Session stores, announced over kafka.
	carts := store.NewCartStore(backend, logger)
	carts.Subscribe(func(ctx context.Context, cart *domain.Cart) {
		_ = producer.PublishCartUpdated(ctx, cart)
	})
	wishlists := store.NewWishlistStore(backend, logger)
	wishlists.Subscribe(func(ctx context.Context, wl *domain.Wishlist) {
		_ = producer.PublishWishlistUpdated(ctx, wl)
	})

	// Repositories.
	products := pgrepo.NewProductRepository(pool)
	orders := pgrepo.NewOrderRepository(pool)
	reviews := pgrepo.NewReviewRepository(pool)
	coupons := pgrepo.NewCouponRepository(pool)
	addresses := pgrepo.NewAddressRepository(pool)
	profiles := pgrepo.NewProfileRepository(pool)

	// Services.
	catalogSvc := service.NewCatalogService(products, engine, producer, logger)
	checkoutSvc := service.NewCheckoutService(carts, orders, coupons, producer, logger)
	reviewSvc := service.NewReviewService(reviews, products, logger)
	accountSvc := service.NewAccountService(profiles, addresses, orders, logger)

	// Outbound clients.
	outbound := httpclient.New(httpclient.DefaultConfig())
	courierBreaker := httpclient.NewCircuitBreakerClient(outbound,
		httpclient.DefaultCircuitBreakerConfig("courier"), logger)
	pickups := gateway.NewPickupClient(courierBreaker, cfg.CourierBaseURL, logger)
	addressComplete := gateway.NewAddressClient(outbound, cfg.AddressBaseURL, cfg.AddressAPIKey, logger)
	invoices := gateway.NewInvoiceClient(outbound, cfg.InvoiceBaseURL, logger)
	mailer := notify.NewMailer(cfg.ResendAPIKey, cfg.ReceiptFromEmail, logger)

	// Payment confirmation poller with post-settlement side effects.
	reconciler := payment.NewReconciler(outbound, cfg.ReconcileURL, logger)
	poller := payment.NewPoller(orders, carts, logger,
		payment.WithInterval(cfg.PollInterval),
		payment.WithMaxTries(cfg.PollMaxTries),
		payment.WithReconciler(reconciler),
		payment.WithSettlementHook(func(ctx context.Context, order *domain.Order) {
			mailer.SendReceipt(ctx, order)
		}),
		payment.WithSettlementHook(func(ctx context.Context, order *domain.Order) {
			_ = producer.PublishOrderSettled(ctx, order)
		}),
	)

	// Health checks.
	healthHandler := health.NewHandler()
	healthHandler.Register("postgres", func(ctx context.Context) error {
		return pool.Ping(ctx)
	})
	if rdb != nil {
		healthHandler.Register("redis", func(ctx context.Context) error {
			return rdb.Ping(ctx).Err()
		})
	}

	// HTTP router.
	corsCfg := middleware.DefaultCORSConfig()
	corsCfg.AllowedOrigins = cfg.CORSAllowedOrigins

	router := handler.NewRouter(handler.RouterConfig{
		Cart:           handler.NewCartHandler(carts, logger),
		Wishlist:       handler.NewWishlistHandler(wishlists, logger),
		Catalog:        handler.NewCatalogHandler(catalogSvc, logger),
		Checkout:       handler.NewCheckoutHandler(checkoutSvc, poller, invoices, logger),
		Review:         handler.NewReviewHandler(reviewSvc, logger),
		Account:        handler.NewAccountHandler(accountSvc, logger),
		Pickup:         handler.NewPickupHandler(pickups, addressComplete, logger),
		Health:         healthHandler,
		JWTSecret:      cfg.JWTSecret,
		CORS:           corsCfg,
		RateLimitRPS:   cfg.RateLimitRPS,
		RateLimitBurst: cfg.RateLimitBurst,
	}, logger)

	httpServer := &http.Server{
		Addr:        fmt.Sprintf(":%d", cfg.HTTPPort),
		Handler:     router,
		ReadTimeout: 15 * time.Second,
		// Write timeout must outlast a full payment confirmation poll.
		WriteTimeout: 90 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	return &App{
		cfg:            cfg,
		logger:         logger,
		pool:           pool,
		rdb:            rdb,
		producer:       kafkaProducer,
		httpServer:     httpServer,
		tracerShutdown: tracerShutdown,
	}, nil
}

// Run starts the HTTP server and blocks until the context is canceled.
func (a *App) Run(ctx context.Context) error {
	errCh := make(chan error, 1)

	go func() {
		a.logger.Info("starting HTTP server",
			slog.String("addr", a.httpServer.Addr),
		)
		if err := a.httpServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			errCh <- fmt.Errorf("http server: %w", err)
		}
	}()

	select {
	case <-ctx.Done():
		a.logger.Info("shutdown signal received")
	case err := <-errCh:
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

	if err := a.producer.Close(); err != nil {
		a.logger.Error("kafka producer close error", slog.String("error", err.Error()))
	}

	if a.rdb != nil {
		if err := a.rdb.Close(); err != nil {
			a.logger.Error("redis close error", slog.String("error", err.Error()))
		}
	}

	a.pool.Close()

	if err := a.tracerShutdown(shutdownCtx); err != nil {
		a.logger.Error("tracer shutdown error", slog.String("error", err.Error()))
	}

	a.logger.Info("application shutdown complete")
	return nil
}
