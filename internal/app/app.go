package app

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/render"
	"golang.org/x/sync/errgroup"

	"faultgate/internal/config"
	"faultgate/internal/errfeed"
	"faultgate/internal/faults"
	"faultgate/internal/infrastructure"
	"faultgate/internal/metrics"
	custommw "faultgate/internal/middleware"
	"faultgate/internal/services"
	httptransport "faultgate/internal/transport/http"
)

// Version is the application version, overridable at build time with
// -ldflags "-X faultgate/internal/app.Version=...".
var Version = "dev"

// BuildTime is stamped at build time alongside Version.
var BuildTime = "unknown"

// OuterHeader is injected by middleware around the echo subtree. It must
// be present on error responses as well as successes.
const OuterHeader = "X-Echo-Outer"

// Application holds the assembled service.
type Application struct {
	Config  *config.Config
	Logger  *slog.Logger
	Router  *chi.Mux
	Server  *http.Server
	Metrics *metrics.Registry
	FeedHub *errfeed.Hub
	OTel    *infrastructure.OTelProviders

	publicFaults *faults.Handler
	adminFaults  *faults.Handler
}

// NewApplication loads configuration and wires every component together.
func NewApplication() (*Application, error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, fmt.Errorf("failed to load configuration: %w", err)
	}

	logger, err := infrastructure.InitializeLogger(cfg.Logging)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize logger: %w", err)
	}

	otelProviders, err := infrastructure.InitializeOTel(infrastructure.OTelConfig{
		ServiceName:    infrastructure.ServiceName,
		ServiceVersion: Version,
		Environment:    cfg.Tracing.Environment,
		Enabled:        cfg.Tracing.Enabled,
		SampleRatio:    cfg.Tracing.SampleRatio,
	}, logger)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize tracing: %w", err)
	}

	reg := metrics.New()

	var hub *errfeed.Hub
	var publisher faults.Publisher
	if cfg.Feed.Enabled {
		hub = errfeed.NewHub(logger, reg)
		publisher = hub
	}

	scrubber := faults.NewScrubber(cfg.Faults.Secrets...)

	// The public mapper is registered explicitly: the divide-by-zero rule
	// runs before the built-in arithmetic rule, so it wins for that
	// sentinel while every other arithmetic fault keeps the generic
	// mapping.
	publicMapper := faults.NewMapper(divideByZeroRule()).Then(faults.NewMapper(faults.BuiltinRules()...))

	publicFaults := faults.NewHandler(logger, faults.Options{
		Mapper:       publicMapper,
		ExposeDetail: cfg.Faults.ExposeDetail,
		IncludeStack: cfg.Faults.IncludeStack,
		Scrubber:     scrubber,
		Metrics:      reg,
		Publisher:    publisher,
	})

	// The admin handler maps everything, errors and panics alike, to a
	// bare 503. Mounted on the /api/admin sub-router it overrides the
	// public handler for that subtree only.
	adminFaults := faults.NewHandler(logger, faults.Options{
		Mapper:    faults.NewMapper(serviceUnavailableRule()),
		Scrubber:  scrubber,
		Metrics:   reg,
		Publisher: publisher,
	})

	app := &Application{
		Config:       cfg,
		Logger:       logger,
		Metrics:      reg,
		FeedHub:      hub,
		OTel:         otelProviders,
		publicFaults: publicFaults,
		adminFaults:  adminFaults,
	}

	app.Router = app.setupRouter()
	app.Server = &http.Server{
		Addr:           cfg.Addr(),
		Handler:        app.Router,
		ReadTimeout:    cfg.Server.ReadTimeout,
		WriteTimeout:   cfg.Server.WriteTimeout,
		IdleTimeout:    cfg.Server.IdleTimeout,
		MaxHeaderBytes: cfg.Server.MaxHeaderBytes,
	}

	return app, nil
}

// divideByZeroRule maps the division sentinel to a 400 with a fixed
// message, demonstrating an explicit rule that shadows a built-in one.
func divideByZeroRule() faults.Rule {
	return faults.On(faults.ErrDivideByZero, func(err error, r *http.Request) *faults.Problem {
		return faults.NewProblem(
			http.StatusBadRequest,
			faults.TypeArithmetic,
			"Arithmetic Error",
			"you cannot divide by zero!",
			r.URL.Path,
		)
	})
}

// serviceUnavailableRule matches every error and responds 503 with no
// detail beyond the title.
func serviceUnavailableRule() faults.Rule {
	return faults.OnMatch(func(error) bool { return true }, func(err error, r *http.Request) *faults.Problem {
		return faults.NewProblem(
			http.StatusServiceUnavailable,
			faults.TypeServiceDown,
			"Service Unavailable",
			"The admin interface is temporarily unavailable",
			r.URL.Path,
		)
	})
}

// setupRouter builds the chi router with the full middleware chain and
// all route groups.
func (app *Application) setupRouter() *chi.Mux {
	r := chi.NewRouter()

	r.Use(custommw.RequestID)
	r.Use(custommw.RealIP)
	r.Use(custommw.StructuredLogger(app.Logger))
	r.Use(custommw.RequestMetrics(app.Metrics))
	r.Use(custommw.SecurityHeaders)
	if app.Config.Security.RateLimit.Enabled {
		limiter := custommw.NewRateLimiter(
			app.Config.Security.RateLimit.RPS,
			app.Config.Security.RateLimit.Burst,
			app.Logger,
		)
		r.Use(limiter.Handler)
	}
	r.Use(custommw.Recoverer(app.publicFaults))

	r.NotFound(app.publicFaults.NotFound)
	r.MethodNotAllowed(app.publicFaults.MethodNotAllowed)

	calcService := services.NewCalcService(app.Logger)
	resourceService := services.NewResourceService(app.Logger, map[string]string{
		"welcome": "hello from faultgate",
	})

	var feedStats services.FeedStats
	if app.FeedHub != nil {
		feedStats = app.FeedHub
	}
	healthService := services.NewHealthService(Version, BuildTime, feedStats, app.Logger)

	calcHandler := httptransport.NewCalcHandler(calcService, app.publicFaults, app.Logger)
	resourceHandler := httptransport.NewResourceHandler(resourceService, app.publicFaults, app.Logger)
	echoHandler := httptransport.NewEchoHandler(app.publicFaults, app.Logger)
	healthHandler := httptransport.NewHealthHandler(healthService, app.Logger)
	adminHandler := httptransport.NewAdminHandler(resourceService, feedStats, app.adminFaults, app.Logger)

	r.Route("/api", func(r chi.Router) {
		r.Use(render.SetContentType(render.ContentTypeJSON))
		r.Use(custommw.Timeout(app.Config.Server.RequestTimeout))

		r.Get("/health", healthHandler.HealthCheck)
		r.Get("/health/ready", healthHandler.ReadinessCheck)
		r.Get("/health/live", healthHandler.LivenessCheck)
		r.Get("/version", healthHandler.Version)

		r.Mount("/calc", calcHandler.Routes())
		r.Mount("/resources", resourceHandler.Routes())

		// The echo subtree combines header injection with fault
		// handling: the outer header must appear on rejected requests
		// too, since it is set before the inner handler runs.
		r.Route("/echo", func(r chi.Router) {
			r.Use(custommw.InjectHeader(OuterHeader, "faultgate"))
			r.Mount("/", echoHandler.Routes())
		})

		// Admin routes run behind their own recoverer so the stricter
		// handler owns both errors and panics in this subtree.
		r.Route("/admin", func(r chi.Router) {
			r.Use(custommw.Recoverer(app.adminFaults))
			r.Mount("/", adminHandler.Routes())
		})
	})

	r.Handle("/metrics", app.Metrics.Handler())

	if app.Config.Feed.Enabled && app.FeedHub != nil {
		r.Get("/ws/errors", errfeed.Handler(app.FeedHub, app.Config.Feed, app.Logger))
	}

	return r
}

// Run starts the server and blocks until shutdown completes.
func (app *Application) Run(ctx context.Context) error {
	ctx, stop := signal.NotifyContext(ctx, os.Interrupt, syscall.SIGTERM)
	defer stop()

	if app.FeedHub != nil {
		app.FeedHub.Start()
	}

	g, gctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		app.Logger.Info("starting FaultGate server",
			slog.String("addr", app.Server.Addr),
			slog.String("version", Version))

		if err := app.Server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return fmt.Errorf("server error: %w", err)
		}
		return nil
	})

	g.Go(func() error {
		<-gctx.Done()
		app.Logger.Info("shutting down server")

		shutdownCtx, cancel := context.WithTimeout(context.Background(), app.Config.Server.ShutdownTimeout)
		defer cancel()

		if err := app.Server.Shutdown(shutdownCtx); err != nil {
			return fmt.Errorf("server shutdown failed: %w", err)
		}
		return nil
	})

	err := g.Wait()

	if app.FeedHub != nil {
		app.FeedHub.Stop()
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), app.Config.Server.ShutdownTimeout)
	defer cancel()
	if otelErr := app.OTel.Shutdown(shutdownCtx); otelErr != nil {
		app.Logger.Warn("tracing shutdown failed", slog.String("error", otelErr.Error()))
	}

	infrastructure.CloseLogFile()

	return err
}
