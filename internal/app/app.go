package app

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/render"
	"go.opentelemetry.io/otel/metric/noop"

	"quantdesk/internal/config"
	apierrors "quantdesk/internal/errors"
	"quantdesk/internal/infrastructure"
	"quantdesk/internal/marketdata"
	"quantdesk/internal/middleware"
	"quantdesk/internal/services"
	handlers "quantdesk/internal/transport/http"
)

// runtimeSampleInterval is how often the runtime collector observes
// process gauges for the metrics endpoint.
const runtimeSampleInterval = 15 * time.Second

// Application is the composition root: it owns configuration, telemetry,
// the market data client, the analysis services, and the HTTP server, and
// wires them together at startup.
type Application struct {
	Config        *config.Config
	Router        *chi.Mux
	Server        *http.Server
	Logger        *slog.Logger
	OTelProviders *infrastructure.OTelProviders
	Metrics       *infrastructure.Metrics
	Runtime       *infrastructure.RuntimeCollector
	MarketData    *marketdata.Client
	Cache         *marketdata.Cache
	Services      *ServiceContainer
}

// ServiceContainer holds the request-facing services.
type ServiceContainer struct {
	HRP     *services.HRPService
	StatArb *services.StatArbService
	Options *services.OptionsService
	Health  *services.HealthService
}

// NewApplication loads configuration and builds a fully wired application.
// Nothing starts listening until Start or Run is called.
func NewApplication() (*Application, error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, fmt.Errorf("failed to load configuration: %w", err)
	}

	logger, err := infrastructure.InitializeLogger(cfg.Logging)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize logger: %w", err)
	}

	logger.Info("application starting",
		slog.String("name", config.AppName),
		slog.String("version", config.AppVersion),
		slog.Int("port", cfg.Server.Port))

	otelProviders, err := infrastructure.InitializeOTel(infrastructure.DefaultOTelConfig(), logger)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize telemetry: %w", err)
	}

	app := &Application{
		Config:        cfg,
		Logger:        logger,
		OTelProviders: otelProviders,
	}

	if err := app.initializeServices(); err != nil {
		return nil, fmt.Errorf("failed to initialize services: %w", err)
	}

	app.setupRouter()
	app.createServer()

	return app, nil
}

// initializeServices builds the metrics set, the market data client with
// its optional cache, and the analysis services, and registers readiness
// probes for the external dependencies.
func (a *Application) initializeServices() error {
	// The meter is nil when the metric exporter is "none"; instruments
	// still get created, they just record into a noop provider.
	meter := a.OTelProviders.Meter
	if meter == nil {
		meter = noop.NewMeterProvider().Meter(infrastructure.MeterName)
	}

	metrics, err := infrastructure.NewMetrics(meter)
	if err != nil {
		return fmt.Errorf("failed to create metrics: %w", err)
	}
	a.Metrics = metrics

	collector, err := infrastructure.NewRuntimeCollector(meter, runtimeSampleInterval)
	if err != nil {
		return fmt.Errorf("failed to create runtime collector: %w", err)
	}
	a.Runtime = collector

	// The Redis cache is optional: no configured address means every
	// fetch goes straight to the provider.
	md := a.Config.MarketData
	if md.RedisAddr != "" {
		a.Cache = marketdata.NewCache(md.RedisAddr, md.RedisPassword, md.RedisDB, md.CacheTTL, a.Logger)
	}

	a.MarketData = marketdata.NewClient(marketdata.Config{
		ProviderName:      md.ProviderName,
		BaseURL:           md.BaseURL,
		Timeout:           md.Timeout,
		RequestsPerSecond: md.RequestsPerSecond,
		Burst:             md.Burst,
		FetchConcurrency:  md.FetchConcurrency,
		RiskFreeRate:      md.RiskFreeRate,
	}, a.Cache, a.Logger)

	healthService := services.NewHealthService(config.AppVersion, collector, a.Logger)
	healthService.Register("provider", a.MarketData.Ping)
	if a.Cache != nil {
		healthService.Register("cache", a.Cache.Ping)
	}

	a.Services = &ServiceContainer{
		HRP:     services.NewHRPService(a.MarketData, a.Config.Analytics, metrics, a.Logger),
		StatArb: services.NewStatArbService(a.MarketData, a.Config.Analytics, metrics, a.Logger),
		Options: services.NewOptionsService(a.MarketData, a.Config.Analytics, metrics, a.Logger),
		Health:  healthService,
	}

	return nil
}

// setupRouter configures the HTTP router. RequestID and RealIP run for
// every route; the API group adds telemetry, logging, recovery, security
// headers, CORS, rate limiting, and compression. The Prometheus endpoint
// stays outside the group so scrapes skip request logging and limits.
func (a *Application) setupRouter() {
	r := chi.NewRouter()

	// RequestID must run first so every later middleware and handler
	// logs with a trace id.
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)

	errorHandler := apierrors.NewErrorHandler(a.Logger, a.Config.Logging.Development)
	r.NotFound(errorHandler.NotFound)
	r.MethodNotAllowed(errorHandler.MethodNotAllowed)

	r.Group(func(r chi.Router) {
		telemetry := middleware.NewTelemetry(a.OTelProviders.Tracer, a.Metrics)
		r.Use(telemetry.Handler)
		r.Use(middleware.StructuredLogger(a.Logger))
		r.Use(middleware.Recoverer(errorHandler))
		r.Use(middleware.SecurityHeaders)

		if a.Config.Security.EnableCORS {
			r.Use(middleware.CORS(a.corsConfig()))
		}
		if a.Config.Security.RateLimit.Enabled {
			limiter := middleware.NewRateLimiter(
				a.Config.Security.RateLimit.RPS,
				a.Config.Security.RateLimit.Burst,
				a.Logger,
				errorHandler,
			)
			r.Use(limiter.Handler)
		}
		r.Use(middleware.Compress(5))

		a.setupAPIRoutes(r, errorHandler)
	})

	if a.OTelProviders.PrometheusHTTP != nil {
		r.Handle("/metrics", a.OTelProviders.PrometheusHTTP)
	}

	a.Router = r
}

// setupAPIRoutes mounts the JSON API under /api.
func (a *Application) setupAPIRoutes(r chi.Router, errorHandler *apierrors.ErrorHandler) {
	r.Route("/api", func(r chi.Router) {
		r.Use(render.SetContentType(render.ContentTypeJSON))
		r.Use(middleware.ContentTypeValidator("application/json"))
		r.Use(middleware.Timeout(a.Config.Server.RequestTimeout, a.Logger, errorHandler))

		healthHandler := handlers.NewHealthHandler(a.Services.Health, a.Logger)
		r.Get("/health", healthHandler.HealthCheck)
		r.Get("/health/ready", healthHandler.ReadinessCheck)
		r.Get("/health/live", healthHandler.LivenessCheck)
		r.Get("/version", healthHandler.Version)

		hrpHandler := handlers.NewHRPHandler(a.Services.HRP, a.Logger, errorHandler)
		r.Mount("/hrp", hrpHandler.Routes())

		statArbHandler := handlers.NewStatArbHandler(a.Services.StatArb, a.Logger, errorHandler)
		r.Mount("/statarb", statArbHandler.Routes())

		optionsHandler := handlers.NewOptionsHandler(a.Services.Options, a.Logger, errorHandler)
		r.Mount("/options", optionsHandler.Routes())
	})
}

// corsConfig builds the CORS policy from the security configuration.
func (a *Application) corsConfig() middleware.CORSConfig {
	return middleware.CORSConfig{
		AllowedOrigins:   a.Config.Security.AllowedOrigins,
		AllowedMethods:   []string{"GET", "POST", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type", "X-Request-ID"},
		ExposedHeaders:   []string{"X-Request-ID"},
		AllowCredentials: true,
		MaxAge:           300,
		Logger:           a.Logger,
	}
}

// createServer creates the HTTP server around the configured router.
func (a *Application) createServer() {
	a.Server = &http.Server{
		Addr:           fmt.Sprintf(":%d", a.Config.Server.Port),
		Handler:        a.Router,
		ReadTimeout:    a.Config.Server.ReadTimeout,
		WriteTimeout:   a.Config.Server.WriteTimeout,
		IdleTimeout:    a.Config.Server.IdleTimeout,
		MaxHeaderBytes: a.Config.Server.MaxHeaderBytes,
	}
}

// Start begins serving and starts the runtime collector. A server error
// after startup cancels the supplied context so Run can unwind.
func (a *Application) Start(ctx context.Context, cancel context.CancelFunc) error {
	go a.Runtime.Start(ctx)

	go func() {
		if err := a.Server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			a.Logger.ErrorContext(ctx, "server error", slog.String("error", err.Error()))
			cancel()
		}
	}()

	a.Logger.InfoContext(ctx, "application started",
		slog.String("address", fmt.Sprintf("http://localhost:%d", a.Config.Server.Port)),
		slog.String("provider", a.Config.MarketData.ProviderName),
		slog.Bool("cache", a.Cache != nil))

	return nil
}

// Stop drains in-flight requests within the configured shutdown timeout,
// then releases the collector, cache, and telemetry providers.
func (a *Application) Stop(ctx context.Context) error {
	a.Logger.InfoContext(ctx, "shutting down application")

	shutdownCtx, cancel := context.WithTimeout(ctx, a.Config.Server.ShutdownTimeout)
	defer cancel()

	if err := a.Server.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("server shutdown: %w", err)
	}

	a.Runtime.Stop()

	if a.Cache != nil {
		if err := a.Cache.Close(); err != nil {
			a.Logger.ErrorContext(ctx, "cache close failed", slog.String("error", err.Error()))
		}
	}

	if a.OTelProviders != nil {
		if err := a.OTelProviders.Shutdown(shutdownCtx); err != nil {
			a.Logger.ErrorContext(ctx, "telemetry shutdown failed", slog.String("error", err.Error()))
		}
	}

	a.Logger.InfoContext(ctx, "application shutdown complete")
	return nil
}

// Run starts the application and blocks until an interrupt arrives or the
// server fails, then shuts down gracefully. Shutdown uses a fresh context
// because the run context is already cancelled on the failure path.
func (a *Application) Run() error {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, os.Interrupt, syscall.SIGTERM)
	defer signal.Stop(sigChan)

	if err := a.Start(ctx, cancel); err != nil {
		return err
	}

	select {
	case sig := <-sigChan:
		a.Logger.InfoContext(ctx, "received shutdown signal", slog.String("signal", sig.String()))
	case <-ctx.Done():
	}

	return a.Stop(context.Background())
}
