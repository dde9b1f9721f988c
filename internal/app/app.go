package app

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"path/filepath"
	"time"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/render"
	"golang.org/x/sync/errgroup"

	"github.com/Ang3l-dev/Ang3l-Dash/internal/auth"
	"github.com/Ang3l-dev/Ang3l-Dash/internal/config"
	apperrors "github.com/Ang3l-dev/Ang3l-Dash/internal/errors"
	"github.com/Ang3l-dev/Ang3l-Dash/internal/infrastructure"
	customMiddleware "github.com/Ang3l-dev/Ang3l-Dash/internal/middleware"
	"github.com/Ang3l-dev/Ang3l-Dash/internal/services"
	"github.com/Ang3l-dev/Ang3l-Dash/internal/storage"
	handlers "github.com/Ang3l-dev/Ang3l-Dash/internal/transport/http"
	ws "github.com/Ang3l-dev/Ang3l-Dash/internal/websocket"
)

// BuildTime is set at link time with -ldflags "-X ...app.BuildTime=...".
var BuildTime = ""

// Application represents the main application container
type Application struct {
	Config        *config.Config
	Paths         *config.Paths
	Logger        *slog.Logger
	OTelProviders *infrastructure.OTelProviders
	Metrics       *infrastructure.BusinessMetrics
	ErrorHandler  *apperrors.ErrorHandler

	Users           *auth.Directory
	Store           storage.ArtifactStore
	Artifacts       *services.ArtifactRepository
	WebSocketHub    *ws.Hub
	WebSocketServer *ws.Server
	WorkflowService *services.WorkflowService
	HealthService   *services.HealthService
	Router          *chi.Mux
	Server          *http.Server
}

// NewApplication loads the configuration, initializes the global logger
// and builds the application.
func NewApplication(ctx context.Context) (*Application, error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, fmt.Errorf("failed to load configuration: %w", err)
	}
	if !filepath.IsAbs(cfg.Logging.FilePath) {
		cfg.Logging.FilePath = filepath.Join(cfg.Paths.ExecutableDir, cfg.Logging.FilePath)
	}

	logger, err := infrastructure.InitializeLogger(cfg.Logging)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize logger: %w", err)
	}
	return New(ctx, cfg, logger)
}

// New wires every component of the application from cfg.
func New(ctx context.Context, cfg *config.Config, logger *slog.Logger) (*Application, error) {
	if logger == nil {
		logger = slog.Default()
	}
	logger.InfoContext(ctx, "Application starting",
		slog.String("name", config.AppName),
		slog.String("version", config.AppVersion))

	paths := cfg.ResolvedPaths()
	if err := paths.EnsureDirectories(); err != nil {
		return nil, fmt.Errorf("failed to ensure directories: %w", err)
	}
	paths.LogPathResolution(logger)

	otelProviders, err := infrastructure.InitializeOTel(infrastructure.OTelConfigFrom(cfg.Telemetry), logger)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize OpenTelemetry: %w", err)
	}
	metrics, err := infrastructure.CreateBusinessMetrics(otelProviders.Meter)
	if err != nil {
		return nil, fmt.Errorf("failed to create business metrics: %w", err)
	}

	a := &Application{
		Config:        cfg,
		Paths:         paths,
		Logger:        logger,
		OTelProviders: otelProviders,
		Metrics:       metrics,
		ErrorHandler:  apperrors.NewErrorHandler(logger, cfg.Logging.Development),
	}
	if err := a.initializeServices(ctx); err != nil {
		return nil, fmt.Errorf("failed to initialize services: %w", err)
	}
	a.setupRouter()
	a.createServer()
	return a, nil
}

// initializeServices initializes all application services
func (a *Application) initializeServices(ctx context.Context) error {
	if !config.FileExists(a.Paths.UsersFile) {
		a.Logger.WarnContext(ctx, "Users file not found, every login will be refused",
			slog.String("path", a.Paths.UsersFile))
	}
	a.Users = auth.NewDirectory(a.Paths.UsersFile, a.Logger)

	store, err := storage.New(ctx, a.Config.Storage, a.Paths, a.Logger)
	if err != nil {
		return fmt.Errorf("failed to initialize artifact store: %w", err)
	}
	a.Store = store
	a.Artifacts = services.NewArtifactRepository(a.Paths.ReportsDir, a.Logger)

	a.WebSocketHub = ws.NewHub(a.Logger, a.Metrics)
	a.WebSocketHub.Start()
	a.WebSocketServer = ws.NewServer(a.WebSocketHub, a.Config.WebSocket, a.Logger)

	workflows, err := services.NewWorkflowService(services.WorkflowDeps{
		Config:    a.Config.Workflow,
		Storage:   a.Config.Storage,
		Artifacts: a.Artifacts,
		Store:     a.Store,
		Events:    a.WebSocketHub,
		Tracer:    a.OTelProviders.Tracer,
		Metrics:   a.Metrics,
		Logger:    a.Logger,
	})
	if err != nil {
		return err
	}
	a.WorkflowService = workflows

	a.HealthService = services.NewHealthService(services.HealthDeps{
		Version:   config.AppVersion,
		BuildTime: BuildTime,
		DataDir:   a.Paths.DataDir,
		Users:     a.Users,
		Store:     a.Store,
		Hub:       a.WebSocketHub,
		Logger:    a.Logger,
	})
	return nil
}

// setupRouter configures the HTTP router with all routes
func (a *Application) setupRouter() {
	r := chi.NewRouter()

	// Middleware that does not wrap the ResponseWriter, so the WebSocket
	// upgrade can still hijack the connection.
	r.Use(customMiddleware.RequestID)
	r.Use(customMiddleware.RealIP)
	r.NotFound(a.ErrorHandler.NotFound)
	r.MethodNotAllowed(a.ErrorHandler.MethodNotAllowed)

	basicAuth := customMiddleware.BasicAuth(a.Users, a.Config.Security.Realm, a.ErrorHandler, a.Logger)
	r.With(basicAuth).Get(config.WebSocketEndpoint, a.handleWebSocket)

	if a.OTelProviders.PrometheusHTTP != nil {
		r.Handle(config.MetricsEndpoint, a.OTelProviders.PrometheusHTTP)
	}

	r.Group(func(r chi.Router) {
		// RequestID → RealIP → OTel → Logger → Recoverer → headers → CORS → rate limit
		r.Use(customMiddleware.NewOTelMiddleware(a.OTelProviders.Tracer, a.Metrics, a.Logger).Handler)
		r.Use(customMiddleware.StructuredLogger(a.Logger))
		r.Use(customMiddleware.Recoverer(a.ErrorHandler))
		r.Use(customMiddleware.SecurityHeaders)
		if a.Config.Security.EnableCORS {
			r.Use(customMiddleware.CORS(a.getCORSConfig()))
		}
		if rl := a.Config.Security.RateLimit; rl.Enabled {
			r.Use(customMiddleware.NewRateLimiter(rl.RPS, rl.Burst, a.ErrorHandler, a.Logger).Handler)
		}

		r.Route(config.APIBasePath, func(r chi.Router) {
			r.Use(render.SetContentType(render.ContentTypeJSON))
			a.setupAPIRoutes(r, basicAuth)
		})
	})

	a.Router = r
}

// setupAPIRoutes configures API endpoints. Health endpoints stay open for
// probes; everything else requires a login.
func (a *Application) setupAPIRoutes(r chi.Router, basicAuth func(http.Handler) http.Handler) {
	healthHandler := handlers.NewHealthHandler(a.HealthService, a.Logger)
	r.Get(config.HealthEndpoint, healthHandler.HealthCheck)
	r.Get(config.HealthEndpoint+"/ready", healthHandler.ReadinessCheck)
	r.Get(config.HealthEndpoint+"/live", healthHandler.LivenessCheck)
	r.Get("/version", healthHandler.Version)

	r.Group(func(r chi.Router) {
		r.Use(basicAuth)

		r.Get("/me", handlers.NewUserHandler(a.ErrorHandler).Me)
		r.Mount("/artifacts", handlers.NewArtifactHandler(a.Artifacts, a.Logger, a.ErrorHandler).Routes())

		// Workflows may run past the read timeout on large batches.
		r.With(chimw.Timeout(a.Config.Server.WriteTimeout)).Mount("/wip",
			handlers.NewWorkflowHandler(a.WorkflowService, customMiddleware.NewValidator(),
				a.Config.Workflow.MaxUploadBytes, a.Logger, a.ErrorHandler).Routes())
	})
}

func (a *Application) getCORSConfig() customMiddleware.CORSConfig {
	return customMiddleware.CORSConfig{
		AllowedOrigins:   a.Config.Security.AllowedOrigins,
		AllowedMethods:   []string{http.MethodGet, http.MethodPost, http.MethodOptions},
		AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type", customMiddleware.RequestIDHeader},
		AllowCredentials: true,
		MaxAge:           300,
	}
}

// handleWebSocket attaches an authenticated browser to the event feed.
func (a *Application) handleWebSocket(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	if err := a.WebSocketServer.ServeWS(w, r); err != nil {
		// The upgrader has already answered the client.
		a.Logger.WarnContext(ctx, "WebSocket upgrade failed",
			slog.String("error", err.Error()),
			slog.String("origin", r.Header.Get("Origin")),
			slog.String("remote_addr", r.RemoteAddr))
		return
	}
	a.Logger.InfoContext(ctx, "WebSocket client connected",
		slog.String("user", customMiddleware.UserEmail(ctx)),
		slog.String("remote_addr", r.RemoteAddr))
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

// Run serves HTTP until ctx is cancelled or the server fails, then shuts
// everything down.
func (a *Application) Run(ctx context.Context) error {
	a.performStartupHealthCheck(ctx)

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		a.Logger.InfoContext(gctx, "HTTP server listening",
			slog.String("address", a.Server.Addr))
		if err := a.Server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return fmt.Errorf("server error: %w", err)
		}
		return nil
	})
	g.Go(func() error {
		<-gctx.Done()
		a.Logger.InfoContext(ctx, "Shutdown requested")
		return a.Stop(context.Background())
	})
	return g.Wait()
}

// Stop gracefully stops the application
func (a *Application) Stop(ctx context.Context) error {
	timeout := a.Config.Server.ShutdownTimeout
	if timeout <= 0 {
		timeout = 30 * time.Second
	}
	shutdownCtx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	var errs []error
	if err := a.Server.Shutdown(shutdownCtx); err != nil {
		errs = append(errs, fmt.Errorf("server shutdown error: %w", err))
	}
	a.WebSocketHub.Stop()
	if err := a.OTelProviders.Shutdown(shutdownCtx); err != nil {
		a.Logger.ErrorContext(ctx, "Error shutting down OpenTelemetry", slog.String("error", err.Error()))
	}

	a.Logger.InfoContext(ctx, "Application shutdown complete")
	return errors.Join(errs...)
}

// performStartupHealthCheck logs every readiness problem found at startup.
// None of them stops the server: users.json may be added while running.
func (a *Application) performStartupHealthCheck(ctx context.Context) {
	status := a.HealthService.ReadinessCheck(ctx)
	if status.Status == services.StatusReady {
		a.Logger.InfoContext(ctx, "Startup health check passed")
		return
	}
	a.Logger.WarnContext(ctx, "Startup health check warnings",
		slog.Any("services", status.Services))
}
