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

	httpapi "github.com/harborpoint/customerd/internal/http"
	"github.com/harborpoint/customerd/internal/service"
	"github.com/harborpoint/customerd/internal/store"
	"github.com/harborpoint/customerd/internal/store/drivers/sqlite"
	"github.com/harborpoint/customerd/internal/web"
	"github.com/harborpoint/customerd/pkg/jwtx"
	"github.com/harborpoint/customerd/pkg/slogx"
)

const (
	// BuildVersion should be set at build time via ldflags. Later problem
	BuildVersion = "v0.1.0"
)

// Application encapsulates the customer service application with all its
// dependencies
type Application struct {
	cfg    Config
	logger *slog.Logger

	// Core dependencies
	db       store.Store
	signer   jwtx.Signer
	verifier jwtx.Verifier

	// Services
	authService     *service.AuthService
	customerService *service.CustomerService

	// HTTP server
	server *http.Server
	router *httpapi.Router
	ui     *web.Handler
}

// New creates a new Application instance with all dependencies initialized
func New(cfg Config) (*Application, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	app := &Application{
		cfg: cfg,
		logger: slogx.New(slogx.Config{
			Service: "customerd",
			Version: BuildVersion,
			Env:     cfg.Env,
			Level:   cfg.LogLevel,
			Format:  cfg.LogFormat,
		}),
	}

	if err := app.initTokens(); err != nil {
		return nil, err
	}
	if err := app.initDatabase(); err != nil {
		return nil, err
	}

	app.initServices()
	app.initHTTP()

	// Seed the bootstrap admin before serving traffic so the first
	// deployment has a usable account.
	ctx := slogx.WithContext(context.Background(), app.logger)
	if err := app.authService.BootstrapAdmin(ctx, cfg.AdminUsername, cfg.AdminPassword); err != nil {
		_ = app.db.Close()
		return nil, fmt.Errorf("failed to bootstrap admin account: %w", err)
	}

	return app, nil
}

// Run starts the application and blocks until shutdown is requested
func (app *Application) Run() error {
	app.logger.Info("customer service starting", "port", app.cfg.Port, "version", BuildVersion)

	// Start server in a goroutine
	serverErrors := make(chan error, 1)
	go func() {
		serverErrors <- app.server.ListenAndServe()
	}()

	// Setup signal handling for graceful shutdown
	shutdown := make(chan os.Signal, 1)
	signal.Notify(shutdown, os.Interrupt, syscall.SIGTERM)

	// Block until we receive a shutdown signal or server error
	select {
	case err := <-serverErrors:
		if err != nil && err != http.ErrServerClosed {
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

// Handler exposes the composed HTTP handler serving both the API and
// the UI. Tests mount it on an httptest server instead of a real port.
func (app *Application) Handler() http.Handler {
	return app.server.Handler
}

// Shutdown gracefully shuts down the application
func (app *Application) Shutdown() error {
	app.logger.Info("shutting down customer service...")

	// Give outstanding requests a deadline for completion
	ctx, cancel := context.WithTimeout(context.Background(), app.cfg.ShutdownGracePeriod)
	defer cancel()

	if err := app.server.Shutdown(ctx); err != nil {
		app.logger.Error("graceful server shutdown failed", "error", err)
		if err := app.server.Close(); err != nil {
			app.logger.Error("error closing server", "error", err)
		}
	}

	if err := app.db.Close(); err != nil {
		app.logger.Error("error closing database", "error", err)
		return err
	}

	app.logger.Info("customer service stopped")
	return nil
}

// initTokens sets up the HS256 signer and verifier from the shared key
func (app *Application) initTokens() error {
	key := []byte(app.cfg.SigningKey)
	audience := []string{app.cfg.Issuer}

	signer, err := jwtx.NewSignerHS256(key)
	if err != nil {
		return fmt.Errorf("failed to initialize token signer: %w", err)
	}
	verifier, err := jwtx.NewVerifierHS256(key, app.cfg.Issuer, audience)
	if err != nil {
		return fmt.Errorf("failed to initialize token verifier: %w", err)
	}

	app.signer = signer
	app.verifier = verifier
	return nil
}

// initDatabase initializes the database and applies migrations
func (app *Application) initDatabase() error {
	host := fmt.Sprintf("file:%s?_busy_timeout=5000&_journal_mode=WAL", app.cfg.DatabaseFile)
	db, err := sqlite.NewStore(host)
	if err != nil {
		return fmt.Errorf("failed to initialize database: %w", err)
	}
	app.db = db

	if err := db.ApplyMigrations(); err != nil {
		_ = db.Close()
		return fmt.Errorf("failed to apply database migrations: %w", err)
	}

	app.logger.Info("database migrations applied successfully")
	return nil
}

// initServices initializes all business logic services
func (app *Application) initServices() {
	app.authService = &service.AuthService{
		Store:    app.db,
		Signer:   app.signer,
		Issuer:   app.cfg.Issuer,
		Audience: []string{app.cfg.Issuer},
		TokenTTL: app.cfg.TokenTTL,
	}
	app.customerService = &service.CustomerService{Store: app.db}
}

// initHTTP initializes the JSON API router, the server-rendered UI, and
// the HTTP server serving both
func (app *Application) initHTTP() {
	router := httpapi.NewRouter(
		app.verifier,
		BuildVersion,
		app.db,
		app.logger,
	)
	router.AuthService = app.authService
	router.CustomerService = app.customerService
	router.ApplyRoutes()
	app.router = router

	app.ui = web.NewHandler(
		app.authService,
		app.customerService,
		[]byte(app.cfg.SessionKey),
		app.logger,
	)

	// The API owns its prefixes; everything else is the UI.
	mux := http.NewServeMux()
	mux.Handle("/api/", router)
	mux.Handle("/swagger/", router)
	mux.Handle("/livez", router)
	mux.Handle("/readyz", router)
	mux.Handle("/", app.ui.Routes())

	app.server = &http.Server{
		Addr:              fmt.Sprintf(":%d", app.cfg.Port),
		Handler:           mux,
		ReadHeaderTimeout: 3 * time.Second,
	}
}
