package main

import (
	"context"
	"errors"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/dukerupert/billsync/internal"
	"github.com/dukerupert/billsync/internal/billing"
	"github.com/dukerupert/billsync/internal/cache"
	"github.com/dukerupert/billsync/internal/event"
	"github.com/dukerupert/billsync/internal/handler"
	"github.com/dukerupert/billsync/internal/handler/checkout"
	"github.com/dukerupert/billsync/internal/handler/webhook"
	"github.com/dukerupert/billsync/internal/middleware"
	"github.com/dukerupert/billsync/internal/notify"
	"github.com/dukerupert/billsync/internal/reconcile"
	"github.com/dukerupert/billsync/internal/repository"
	"github.com/dukerupert/billsync/internal/router"
	"github.com/dukerupert/billsync/internal/routes"
	"github.com/dukerupert/billsync/internal/service"
	"github.com/dukerupert/billsync/internal/telemetry"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/jackc/pgx/v5/stdlib"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

const metricsNamespace = "billsync"

func run() error {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	// Load configuration
	cfg, err := internal.NewConfig()
	if err != nil {
		return fmt.Errorf("config initialization failed: %w", err)
	}

	// Configure logger
	logger := internal.NewLogger(os.Stdout, cfg.Env, cfg.LogLevel)

	flushSentry, err := telemetry.InitSentry(telemetry.SentryConfig{
		DSN:              cfg.Sentry.DSN,
		Enabled:          cfg.Sentry.Enabled,
		Environment:      cfg.Sentry.Environment,
		Release:          cfg.Sentry.Release,
		SampleRate:       cfg.Sentry.SampleRate,
		TracesSampleRate: cfg.Sentry.TracesSampleRate,
		Debug:            cfg.Sentry.Debug,
	}, logger)
	if err != nil {
		return fmt.Errorf("sentry initialization failed: %w", err)
	}
	defer flushSentry()

	// Initialize pgx connection pool
	logger.Info("Connecting to database...")
	pool, err := pgxpool.New(ctx, cfg.DatabaseUrl)
	if err != nil {
		return fmt.Errorf("failed to create connection pool: %w", err)
	}
	defer pool.Close()

	if err := pool.Ping(ctx); err != nil {
		return fmt.Errorf("database ping failed: %w", err)
	}
	logger.Info("Database connection established")

	// Run migrations over a database/sql handle borrowed from the pool
	logger.Info("Running database migrations...")
	sqlDB := stdlib.OpenDBFromPool(pool)
	if err := internal.RunMigrations(ctx, sqlDB, logger); err != nil {
		sqlDB.Close()
		return fmt.Errorf("migration failed: %w", err)
	}
	sqlDB.Close()
	logger.Info("Database migrations completed successfully")

	repo := repository.New(pool)

	// Processor client
	provider, err := billing.NewStripeProvider(billing.StripeConfig{
		APIKey:        cfg.Stripe.SecretKey,
		WebhookSecret: cfg.Stripe.WebhookSecret,
		Timeout:       cfg.Stripe.LookupTimeout,
		APIBase:       cfg.Stripe.APIBase,
		Transport:     &telemetry.HTTPTransport{},
	})
	if err != nil {
		return fmt.Errorf("failed to initialize stripe provider: %w", err)
	}

	healthChecks := []handler.HealthCheck{{Name: "database", Check: pool.Ping}}

	// Committed-key cache is optional; the unique constraint stays authoritative
	var keys service.CommittedKeys
	if cfg.RedisURL != "" {
		rdb, err := cache.NewRedisClient(ctx, cfg.RedisURL)
		if err != nil {
			return fmt.Errorf("redis connection failed: %w", err)
		}
		defer rdb.Close()
		keys = cache.NewRedisKeys(rdb, metricsNamespace, cache.DefaultTTL)
		healthChecks = append(healthChecks, handler.HealthCheck{Name: "redis", Check: cache.Healthcheck(rdb)})
		logger.Info("Committed-key cache enabled")
	}

	var publisher notify.Publisher = notify.Nop{}
	if cfg.NATS.URL != "" {
		nc, err := notify.Connect(cfg.NATS.URL, logger)
		if err != nil {
			return fmt.Errorf("nats connection failed: %w", err)
		}
		defer func() {
			if err := nc.Drain(); err != nil {
				logger.Warn("nats drain failed", "error", err)
			}
		}()
		publisher = notify.NewNATSPublisher(nc, cfg.NATS.SubjectPrefix)
		logger.Info("Change notifications enabled", "url", cfg.NATS.URL)
	}

	// Metrics
	reg := prometheus.NewRegistry()
	reg.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	billingMetrics := telemetry.NewBillingMetrics(metricsNamespace, reg)
	httpMetrics := middleware.NewMetrics(metricsNamespace, reg)

	// Initialize services
	timeout := cfg.Stripe.LookupTimeout
	accounts := service.NewAccountService(repo, provider, timeout, logger)
	guard := service.NewGuard(repo, keys, logger)
	payments := service.NewPaymentService(repo, accounts, guard, provider, timeout, logger, billingMetrics)
	plans := service.NewPlanResolver(provider, cfg.Stripe.PriceTable(), timeout, logger, billingMetrics)
	lifecycle := service.NewSubscriptionLifecycle(repo, accounts, plans, provider, timeout, logger, billingMetrics)
	checkoutService := service.NewCheckoutService(repo, accounts, provider, service.CheckoutConfig{
		BaseURL:        cfg.BaseURL,
		OneTimePriceID: cfg.Stripe.OneTimePriceID,
		PlanPrices:     cfg.Stripe.PlanPrices(),
	}, timeout, logger)

	dispatcher := reconcile.NewDispatcher(payments, lifecycle, accounts, publisher, billingMetrics, logger, cfg.Webhook.HandlerTimeout)
	stripeWebhook := webhook.NewStripeHandler(event.NewVerifier(cfg.Stripe.WebhookSecret), dispatcher, logger)
	checkoutHandler := checkout.NewHandler(checkoutService, payments, accounts, publisher, cfg.Stripe.PublishableKey, logger)

	// Checkout submissions get their own rate limiter
	checkoutLimiter := middleware.NewRateLimiter(middleware.CheckoutRateLimiterConfig(cfg.Checkout.RateLimit, cfg.Checkout.RateBurst))
	defer checkoutLimiter.Stop()

	// ==========================================================================
	// Create router and register routes
	// ==========================================================================

	// Recovery sits inside the logger and metrics so panics are recorded as
	// 500s, and inside SentryMiddleware so reports carry the request.
	r := router.New(
		middleware.RequestID,
		middleware.WithRequestLogger(logger),
		telemetry.SentryMiddleware(),
		router.Logger(logger),
		httpMetrics.Middleware,
		router.Recovery(logger),
		middleware.SecurityHeaders(middleware.APISecurityHeadersConfig(cfg.Env == "prod")),
		router.CORS(cfg.CORSOrigins),
	)

	routes.RegisterWebhookRoutes(r, routes.WebhookDeps{StripeHandler: stripeWebhook.HandleWebhook})
	routes.RegisterCheckoutRoutes(r, routes.CheckoutDeps{
		Handler: checkoutHandler,
		SubmitMiddleware: []router.Middleware{
			checkoutLimiter.Middleware,
			middleware.MaxBodySize(middleware.FormMaxBodySize),
		},
	})
	routes.RegisterOpsRoutes(r, routes.OpsDeps{
		Health:  handler.HealthHandler(logger, 2*time.Second, healthChecks...),
		Metrics: promhttp.HandlerFor(reg, promhttp.HandlerOpts{Registry: reg}),
	})
	r.NotFound(handler.NotFoundResponse)

	// ==========================================================================
	// Start server
	// ==========================================================================

	srv := &http.Server{
		Addr:              fmt.Sprintf(":%d", cfg.Port),
		Handler:           r,
		ReadHeaderTimeout: 10 * time.Second,
		ReadTimeout:       30 * time.Second,
		WriteTimeout:      cfg.Webhook.HandlerTimeout + 10*time.Second,
		IdleTimeout:       120 * time.Second,
	}

	serverErr := make(chan error, 1)
	go func() {
		logger.Info("Starting billing server", "address", srv.Addr, "env", cfg.Env)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			serverErr <- err
		}
		close(serverErr)
	}()

	select {
	case err := <-serverErr:
		if err != nil {
			telemetry.CaptureError(err, map[string]interface{}{"component": "http_server"})
			return fmt.Errorf("server failed: %w", err)
		}
	case <-ctx.Done():
	}

	telemetry.AddBreadcrumb("lifecycle", "shutdown requested", nil)
	logger.Info("Shutting down server...")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.Webhook.HandlerTimeout)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("server shutdown failed: %w", err)
	}

	logger.Info("Server stopped")
	return nil
}

func main() {
	if err := run(); err != nil {
		log.Fatal(err)
	}
}
