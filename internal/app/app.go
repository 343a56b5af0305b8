package app

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/render"

	"playerstats/internal/config"
	"playerstats/internal/dataprocessing"
	apierrors "playerstats/internal/errors"
	"playerstats/internal/infrastructure"
	customMiddleware "playerstats/internal/middleware"
	"playerstats/internal/services"
	httphandlers "playerstats/internal/transport/http"
	ws "playerstats/internal/websocket"
	"playerstats/pkg/contracts"
)

// Application represents the main application container
type Application struct {
	Config        *config.Config
	Router        *chi.Mux
	Server        *http.Server
	Logger        *slog.Logger
	OTelProviders *infrastructure.OTelProviders
	Metrics       *infrastructure.BusinessMetrics
	Loader        *dataprocessing.Loader
	StatsService  *services.StatsService
	HealthService *services.HealthService
	WebSocketHub  *ws.Hub
	ErrorHandler  *apierrors.ErrorHandler
	Validator     *customMiddleware.Validator

	listener net.Listener
}

// NewApplication creates a new application instance from cfg
func NewApplication(cfg *config.Config, logger *slog.Logger) (*Application, error) {
	if logger == nil {
		logger = infrastructure.GetLogger()
	}

	logger.Info("Application starting",
		slog.String("name", config.AppName),
		slog.String("version", contracts.Version),
		slog.String("source_kind", cfg.Source.Kind),
		slog.String("preset", cfg.Pipeline.Preset))

	otelProviders, err := infrastructure.InitializeOTel(otelConfig(cfg), logger)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize OpenTelemetry: %w", err)
	}

	metrics, err := infrastructure.CreateBusinessMetrics(otelProviders.Meter)
	if err != nil {
		return nil, fmt.Errorf("failed to create business metrics: %w", err)
	}

	app := &Application{
		Config:        cfg,
		Logger:        logger,
		OTelProviders: otelProviders,
		Metrics:       metrics,
		ErrorHandler:  apierrors.NewErrorHandler(logger, cfg.Telemetry.Environment == "development"),
		Validator:     customMiddleware.NewValidator(logger),
	}

	if err := app.initializeServices(); err != nil {
		return nil, fmt.Errorf("failed to initialize services: %w", err)
	}

	app.setupRouter()
	app.createServer()
	return app, nil
}

func otelConfig(cfg *config.Config) *infrastructure.OTelConfig {
	oc := infrastructure.DefaultOTelConfig()
	oc.ServiceName = cfg.Telemetry.ServiceName
	oc.ServiceVersion = contracts.Version
	oc.Environment = cfg.Telemetry.Environment
	oc.EnableMetrics = cfg.Telemetry.MetricsEnabled
	oc.EnableTracing = cfg.Telemetry.TracingEnabled
	return oc
}

// initializeServices initializes all application services
func (a *Application) initializeServices() error {
	pipeline, err := NewPipeline(a.Config.Pipeline, a.Config.Filters)
	if err != nil {
		return apierrors.NewConfigError("invalid pipeline configuration", err)
	}

	source, err := NewSource(context.Background(), a.Config.Source, a.Logger)
	if err != nil {
		return apierrors.NewConfigError("invalid source configuration", err)
	}

	a.Loader = dataprocessing.NewLoader(source, pipeline, a.Logger)
	a.StatsService = services.NewStatsService(a.Loader, pipeline, a.Metrics, a.OTelProviders.Tracer, a.Logger)

	wsMetrics, err := ws.NewMetrics(a.OTelProviders.Meter, a.Metrics)
	if err != nil {
		return fmt.Errorf("failed to create websocket metrics: %w", err)
	}
	a.WebSocketHub = ws.NewHub(wsMetrics, a.Logger)

	a.HealthService = services.NewHealthService(contracts.Version, a.Loader, source.Describe(), a.WebSocketHub, a.Logger)
	return nil
}

// setupRouter configures the HTTP router with all routes
func (a *Application) setupRouter() {
	r := chi.NewRouter()

	// Safe for WebSocket: neither wraps the ResponseWriter.
	r.Use(customMiddleware.RequestID)
	r.Use(customMiddleware.RealIP)

	r.With(customMiddleware.WebSocketTraceMiddleware(a.OTelProviders.Tracer, a.Logger)).
		Handle("/ws/stats", ws.NewHandler(a.WebSocketHub, a.StatsService, a.Validator, a.websocketOptions(), a.ErrorHandler, a.Logger))

	r.Group(func(r chi.Router) {
		// RequestID → RealIP → OTel → Logger → Recoverer → Timeout
		r.Use(customMiddleware.NewOTelMiddleware(a.OTelProviders.Tracer, a.Metrics, a.Logger).Handler)
		r.Use(customMiddleware.StructuredLogger(a.Logger))
		r.Use(a.ErrorHandler.Recoverer)
		r.Use(customMiddleware.Timeout(a.Config.Server.RequestTimeout))
		r.Use(customMiddleware.SecurityHeaders)
		r.Use(customMiddleware.Compress(5))

		if a.Config.Security.EnableCORS {
			r.Use(customMiddleware.CORS(a.getCORSConfig()))
		}

		if a.Config.Security.RateLimit.Enabled {
			r.Use(customMiddleware.NewRateLimiter(
				a.Config.Security.RateLimit.RPS,
				a.Config.Security.RateLimit.Burst,
				a.Logger,
			).Handler)
		}

		a.setupAPIRoutes(r)
	})

	if a.OTelProviders.PrometheusHTTP != nil {
		r.Handle("/metrics", a.OTelProviders.PrometheusHTTP)
	}

	r.NotFound(a.ErrorHandler.NotFound)
	r.MethodNotAllowed(a.ErrorHandler.MethodNotAllowed)

	a.Router = r
}

// setupAPIRoutes configures API endpoints
func (a *Application) setupAPIRoutes(r chi.Router) {
	healthHandler := httphandlers.NewHealthHandler(a.HealthService, a.Logger)
	statsHandler := httphandlers.NewStatsHandler(a.StatsService, a.Validator, a.ErrorHandler, a.Logger)

	r.Route("/api", func(r chi.Router) {
		r.Use(render.SetContentType(render.ContentTypeJSON))

		r.Get("/health", healthHandler.HealthCheck)
		r.Get("/health/ready", healthHandler.ReadinessCheck)
		r.Get("/health/live", healthHandler.LivenessCheck)
		r.Get("/version", healthHandler.Version)

		r.Mount("/stats", statsHandler.Routes())
	})
}

func (a *Application) getCORSConfig() customMiddleware.CORSConfig {
	return customMiddleware.CORSConfig{
		AllowedOrigins: a.Config.Security.AllowedOrigins,
		AllowedMethods: []string{"GET", "POST", "OPTIONS"},
		AllowedHeaders: []string{
			"Accept",
			"Content-Type",
			"X-Request-ID",
			"X-Requested-With",
		},
		AllowCredentials: false,
		MaxAge:           300,
		Logger:           a.Logger,
	}
}

func (a *Application) websocketOptions() ws.Options {
	wc := a.Config.WebSocket
	return ws.Options{
		ReadBufferSize:  wc.ReadBufferSize,
		WriteBufferSize: wc.WriteBufferSize,
		MaxMessageSize:  wc.MaxMessageSize,
		PingPeriod:      wc.PingPeriod,
		PongWait:        wc.PongWait,
		WriteWait:       wc.WriteWait,
		RequestTimeout:  a.Config.Server.RequestTimeout,
		AllowedOrigins:  a.Config.Security.AllowedOrigins,
	}
}

// createServer creates the HTTP server
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

// Start begins serving in the background. A fatal server error calls cancel.
func (a *Application) Start(ctx context.Context, cancel context.CancelFunc) error {
	listener, err := net.Listen("tcp", a.Server.Addr)
	if err != nil {
		return fmt.Errorf("failed to listen on %s: %w", a.Server.Addr, err)
	}
	a.listener = listener

	a.WebSocketHub.Start()

	go func() {
		if err := a.Server.Serve(listener); err != nil && !errors.Is(err, http.ErrServerClosed) {
			a.Logger.ErrorContext(ctx, "Server error", slog.String("error", err.Error()))
			cancel()
		}
	}()

	// Warm the table cache so the first request does not pay for the download.
	go func() {
		if _, err := a.Loader.Table(ctx); err != nil {
			a.Logger.WarnContext(ctx, "Initial player table load failed; requests will retry",
				slog.String("error", err.Error()))
		}
	}()

	a.Logger.InfoContext(ctx, "Application started successfully",
		slog.String("address", listener.Addr().String()),
		slog.String("source", a.Loader.Source().Describe()))
	return nil
}

// Addr returns the bound listen address, once started
func (a *Application) Addr() string {
	if a.listener == nil {
		return ""
	}
	return a.listener.Addr().String()
}

// Stop gracefully stops the application
func (a *Application) Stop(ctx context.Context) error {
	a.Logger.InfoContext(ctx, "Shutting down application")

	shutdownCtx, cancel := context.WithTimeout(ctx, a.Config.Server.ShutdownTimeout)
	defer cancel()

	var errs []error
	if err := a.Server.Shutdown(shutdownCtx); err != nil {
		errs = append(errs, fmt.Errorf("server shutdown error: %w", err))
	}

	// Hijacked WebSocket connections are not tracked by Shutdown.
	if err := a.WebSocketHub.Stop(shutdownCtx); err != nil {
		errs = append(errs, fmt.Errorf("websocket hub shutdown error: %w", err))
	}

	if a.OTelProviders != nil {
		if err := a.OTelProviders.Shutdown(shutdownCtx); err != nil {
			a.Logger.ErrorContext(ctx, "Error shutting down OpenTelemetry", slog.String("error", err.Error()))
		}
	}

	a.Logger.InfoContext(ctx, "Application shutdown complete")
	return errors.Join(errs...)
}

// Run runs the application until interrupted
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
		a.Logger.InfoContext(ctx, "Received interrupt signal", slog.String("signal", sig.String()))
	case <-ctx.Done():
		a.Logger.WarnContext(ctx, "Server stopped unexpectedly")
	}

	stopCtx, stopCancel := context.WithTimeout(context.Background(), a.Config.Server.ShutdownTimeout+5*time.Second)
	defer stopCancel()
	return a.Stop(stopCtx)
}
