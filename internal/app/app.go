// Package app wires configuration, the dataset store, services and the
// HTTP surface into a runnable application.
package app

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"github.com/go-chi/chi/v5"

	"zeptopulse/internal/config"
	"zeptopulse/internal/dataset"
	apierrors "zeptopulse/internal/errors"
	"zeptopulse/internal/exporter"
	"zeptopulse/internal/infrastructure"
	customMiddleware "zeptopulse/internal/middleware"
	"zeptopulse/internal/services"
	transport "zeptopulse/internal/transport/http"
	"zeptopulse/pkg/contracts"
)

// Application holds all wired components of the dashboard server.
type Application struct {
	Config    *config.Config
	Logger    *slog.Logger
	Metrics   *infrastructure.Metrics
	Store     *dataset.Store
	Dashboard *services.DashboardService
	Router    chi.Router
	Server    *http.Server

	watchCancel context.CancelFunc
}

// NewApplication builds the application from configuration. The dataset
// is loaded eagerly; a missing or unreadable source file fails startup.
func NewApplication(cfg *config.Config) (*Application, error) {
	logger, err := infrastructure.InitializeLogger(cfg.Logging)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize logger: %w", err)
	}

	metrics := infrastructure.NewMetrics()

	store, err := dataset.NewStore(context.Background(), dataset.NewLoader(logger), logger, cfg.Dataset.Path)
	if err != nil {
		return nil, fmt.Errorf("failed to load dataset: %w", err)
	}
	initial := true
	store.SetOnSwap(func(t *dataset.Table) {
		metrics.ObserveDataset(t.Len(), t.RejectedRows())
		if initial {
			// The eager load is not a reload.
			initial = false
			return
		}
		metrics.DatasetReloads.Inc()
	})
	store.SetOnReloadError(func(error) {
		metrics.DatasetReloadErrors.Inc()
	})

	a := &Application{
		Config:    cfg,
		Logger:    logger,
		Metrics:   metrics,
		Store:     store,
		Dashboard: services.NewDashboardService(store, logger),
	}

	a.setupRouter()
	a.createServer()

	return a, nil
}

func (a *Application) setupRouter() {
	r := chi.NewRouter()

	r.Use(customMiddleware.RequestID)
	r.Use(customMiddleware.RealIP)

	r.Group(func(r chi.Router) {
		r.Use(customMiddleware.Metrics(a.Metrics))
		r.Use(customMiddleware.StructuredLogger(a.Logger))
		r.Use(customMiddleware.Recoverer(a.Logger))
		r.Use(customMiddleware.SecurityHeaders)

		if a.Config.Security.EnableCORS {
			r.Use(customMiddleware.CORS(customMiddleware.CORSConfig{
				AllowedOrigins: a.Config.Security.AllowedOrigins,
				Logger:         a.Logger,
			}))
		}

		if a.Config.Security.RateLimit.Enabled {
			r.Use(customMiddleware.NewRateLimiter(
				a.Config.Security.RateLimit.RPS,
				a.Config.Security.RateLimit.Burst,
				a.Logger,
			).Handler)
		}

		r.Use(customMiddleware.Timeout(a.Config.Server.RequestTimeout, a.Logger))

		errorHandler := apierrors.NewErrorHandler(a.Logger)
		dashboard := transport.NewDashboardHandler(a.Dashboard, exporter.New(a.Logger), a.Logger, errorHandler)
		health := transport.NewHealthHandler(a.Dashboard, contracts.Version, a.Logger)

		r.Mount("/api", dashboard.Routes())
		r.Mount("/api/health", health.Routes())
	})

	// Metrics endpoint stays outside the middleware group so scrapes
	// skip logging and rate limiting.
	r.Handle("/metrics", a.Metrics.Handler())

	a.Router = r
}

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

// Start launches the HTTP server and the dataset watcher. A server
// error cancels via the supplied cancel func so Run can unwind.
func (a *Application) Start(ctx context.Context, cancel context.CancelFunc) error {
	a.Logger.InfoContext(ctx, "starting application",
		slog.String("version", contracts.Version),
		slog.Int("port", a.Config.Server.Port),
		slog.String("dataset", a.Config.Dataset.Path))

	if a.Config.Dataset.Watch {
		watchCtx, watchCancel := context.WithCancel(context.Background())
		a.watchCancel = watchCancel
		if err := a.Store.Watch(watchCtx); err != nil {
			watchCancel()
			return fmt.Errorf("failed to start dataset watcher: %w", err)
		}
	}

	go func() {
		if err := a.Server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			a.Logger.ErrorContext(ctx, "server error", slog.String("error", err.Error()))
			cancel()
		}
	}()

	a.Logger.InfoContext(ctx, "application started",
		slog.String("address", fmt.Sprintf("http://localhost:%d", a.Config.Server.Port)))
	return nil
}

// Stop gracefully stops the application.
func (a *Application) Stop(ctx context.Context) error {
	a.Logger.InfoContext(ctx, "shutting down application")

	if a.watchCancel != nil {
		a.watchCancel()
	}

	shutdownCtx, cancel := context.WithTimeout(ctx, a.Config.Server.ShutdownTimeout)
	defer cancel()

	if err := a.Server.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("server shutdown failed: %w", err)
	}

	infrastructure.CloseLogFile()
	return nil
}

// Run starts the application and blocks until an interrupt or server
// failure, then shuts down gracefully.
func (a *Application) Run() error {
	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	if err := a.Start(ctx, cancel); err != nil {
		return err
	}

	<-ctx.Done()

	stopCtx, stopCancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer stopCancel()
	return a.Stop(stopCtx)
}
