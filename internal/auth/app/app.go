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
	"time"

	httpapi "github.com/aussiebroadwan/novastudy/internal/auth/http"
	"github.com/aussiebroadwan/novastudy/internal/auth/metrics"
	"github.com/aussiebroadwan/novastudy/internal/auth/service"
	"github.com/aussiebroadwan/novastudy/internal/auth/store"
	"github.com/aussiebroadwan/novastudy/internal/auth/store/blacklistcache"
	"github.com/aussiebroadwan/novastudy/internal/auth/store/drivers/postgres"
	"github.com/aussiebroadwan/novastudy/internal/auth/store/drivers/sqlite"
	"github.com/aussiebroadwan/novastudy/pkg/cryptox"
	"github.com/aussiebroadwan/novastudy/pkg/jwtx"
	"github.com/aussiebroadwan/novastudy/pkg/slogx"
)

const (
	// BuildVersion should be set at build time via ldflags.
	BuildVersion = "v0.1.0"
)

// Application encapsulates the auth service application with all its dependencies
type Application struct {
	cfg    Config
	logger *slog.Logger

	// Core dependencies
	db       store.Store
	cache    *blacklistcache.Cache // nil without REDIS_ADDR
	signer   *jwtx.HS256Signer
	verifier *jwtx.HS256Verifier
	metrics  *metrics.Metrics
	exporter *metrics.Exporter

	// Services
	tokenService        *service.TokenService
	userService         *service.UserService
	housekeepingService *service.HousekeepingService

	// HTTP server
	server *http.Server
	router *httpapi.Router
}

// New creates a new Application instance with all dependencies initialized
func New(cfg Config) (*Application, error) {
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}

	app := &Application{
		cfg: cfg,
		logger: slogx.New(slogx.Config{
			Service: "auth-service",
			Version: BuildVersion,
			Env:     cfg.Env,
			Level:   cfg.LogLevel,
			Format:  cfg.LogFormat,
		}),
	}

	if err := cryptox.LoadPepper(app.cfg.PepperFile); err != nil {
		return nil, fmt.Errorf("failed to load pepper: %w", err)
	}

	if err := app.initTokens(); err != nil {
		return nil, err
	}

	if err := app.initDatabase(); err != nil {
		return nil, err
	}
	app.initCache()

	app.exporter = metrics.NewExporter()
	m, err := metrics.New(app.exporter.Meter())
	if err != nil {
		_ = app.closeStores()
		return nil, fmt.Errorf("failed to initialize metrics: %w", err)
	}
	app.metrics = m

	app.initServices()
	app.initHTTP()

	return app, nil
}

// Handler exposes the fully wired HTTP handler.
func (app *Application) Handler() http.Handler { return app.router }

// Run starts the application and blocks until shutdown is requested
func (app *Application) Run() error {
	app.housekeepingService.Start()

	app.logger.Info("auth service starting",
		"port", app.cfg.Port,
		"version", BuildVersion,
		"driver", app.cfg.DatabaseDriver,
		"cache", app.cache != nil,
	)

	serverErrors := make(chan error, 1)
	go func() {
		serverErrors <- app.server.ListenAndServe()
	}()

	shutdown := make(chan os.Signal, 1)
	signal.Notify(shutdown, os.Interrupt, syscall.SIGTERM)

	select {
	case err := <-serverErrors:
		app.housekeepingService.Stop()
		_ = app.exporter.Shutdown(context.Background())
		_ = app.closeStores()
		if err != nil && !errors.Is(err, http.ErrServerClosed) {
			return fmt.Errorf("server failed: %w", err)
		}
	case sig := <-shutdown:
		app.logger.Info("shutdown signal received", "signal", sig)

		if err := app.Shutdown(); err != nil {
			return fmt.Errorf("graceful shutdown failed: %w", err)
		}
	}

	return nil
}

// Shutdown gracefully shuts down the application
func (app *Application) Shutdown() error {
	app.logger.Info("shutting down auth service...")

	ctx, cancel := context.WithTimeout(context.Background(), app.cfg.ShutdownGracePeriod)
	defer cancel()

	if err := app.server.Shutdown(ctx); err != nil {
		app.logger.Error("graceful server shutdown failed", "error", err)
		if err := app.server.Close(); err != nil {
			app.logger.Error("error closing server", "error", err)
		}
	}

	app.housekeepingService.Stop()

	if err := app.exporter.Shutdown(ctx); err != nil {
		app.logger.Error("error stopping meter provider", "error", err)
	}

	if err := app.closeStores(); err != nil {
		return err
	}

	app.logger.Info("auth service stopped")
	return nil
}

func (app *Application) closeStores() error {
	if app.cache != nil {
		if err := app.cache.Close(); err != nil {
			app.logger.Error("error closing redis client", "error", err)
		}
	}
	if err := app.db.Close(); err != nil {
		app.logger.Error("error closing database", "error", err)
		return err
	}
	return nil
}

// initTokens builds the HS256 signer and verifier from the shared secret.
func (app *Application) initTokens() error {
	secret, err := LoadSigningSecret(app.cfg, app.logger)
	if err != nil {
		return fmt.Errorf("failed to load JWT secret: %w", err)
	}

	if app.signer, err = jwtx.NewSignerHS256(secret); err != nil {
		return fmt.Errorf("failed to create signer: %w", err)
	}
	if app.verifier, err = jwtx.NewVerifierHS256(secret); err != nil {
		return fmt.Errorf("failed to create verifier: %w", err)
	}
	return nil
}

// initDatabase opens the configured driver and applies migrations
func (app *Application) initDatabase() error {
	var (
		db  store.Store
		err error
	)

	switch app.cfg.DatabaseDriver {
	case DriverPostgres:
		ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		db, err = postgres.NewStore(ctx, app.cfg.DatabaseURL)
	default:
		// Busy timeout and WAL are set by the store itself.
		db, err = sqlite.NewStore(app.cfg.DatabaseFile)
	}
	if err != nil {
		return fmt.Errorf("failed to initialize database: %w", err)
	}
	app.db = db

	if err := db.ApplyMigrations(); err != nil {
		_ = db.Close()
		return fmt.Errorf("failed to apply database migrations: %w", err)
	}

	app.logger.Info("database migrations applied successfully", "driver", app.cfg.DatabaseDriver)
	return nil
}

// initCache puts redis in front of the blacklist when configured. An
// unreachable redis only degrades readiness; every lookup falls back to the
// database.
func (app *Application) initCache() {
	if app.cfg.RedisAddr == "" {
		return
	}

	app.cache = blacklistcache.New(blacklistcache.Config{
		Addr:     app.cfg.RedisAddr,
		Password: app.cfg.RedisPassword,
		DB:       app.cfg.RedisDB,
	}, app.db.Blacklist())

	ctx, cancel := context.WithTimeout(context.Background(), app.cfg.StoreTimeout)
	defer cancel()
	if err := app.cache.Ping(ctx); err != nil {
		app.logger.Warn("redis unreachable, blacklist lookups fall back to database",
			"addr", app.cfg.RedisAddr, "error", err)
		return
	}
	app.logger.Info("blacklist cache enabled", "addr", app.cfg.RedisAddr)
}

// initServices initializes all business logic services
func (app *Application) initServices() {
	app.userService = &service.UserService{Store: app.db}

	app.tokenService = &service.TokenService{
		Users:      app.userService,
		Signer:     app.signer,
		Verifier:   app.verifier,
		Store:      app.db,
		AccessTTL:  app.cfg.AccessTokenTTL,
		RefreshTTL: app.cfg.RefreshTokenTTL,
		Metrics:    app.metrics,
	}
	if app.cache != nil {
		app.tokenService.Cache = app.cache
	}

	app.housekeepingService = service.NewHousekeepingService(
		app.db,
		app.logger,
		app.cfg.HousekeepingInterval,
	)
	app.housekeepingService.Metrics = app.metrics
}

// initHTTP initializes the HTTP router and server
func (app *Application) initHTTP() {
	deps := httpapi.Deps{
		Tokens:    app.tokenService,
		Users:     app.userService,
		Verifier:  app.verifier,
		Blacklist: app.db.Blacklist(),
		Rejects:   app.metrics,
		Database:  app.db,
		Metrics:   app.exporter.Handler(),
		Cookie: httpapi.CookieConfig{
			Secure: app.cfg.CookieSecure,
			MaxAge: app.cfg.RefreshTokenTTL,
		},
		StoreTimeout: app.cfg.StoreTimeout,
	}
	if app.cache != nil {
		deps.Blacklist = app.cache
		deps.Cache = app.cache
	}

	router := httpapi.NewRouter(deps, BuildVersion, app.logger)
	router.ApplyRoutes()
	app.router = router

	app.server = &http.Server{
		Addr:              fmt.Sprintf(":%d", app.cfg.Port),
		Handler:           router,
		ReadHeaderTimeout: 3 * time.Second,
	}
}
