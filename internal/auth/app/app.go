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

	"github.com/galleria-app/galleria/internal/auth/domain"
	httpapi "github.com/galleria-app/galleria/internal/auth/http"
	"github.com/galleria-app/galleria/internal/auth/service"
	"github.com/galleria-app/galleria/internal/auth/session"
	"github.com/galleria-app/galleria/internal/auth/store"
	"github.com/galleria-app/galleria/internal/auth/store/drivers/sqlite"
	"github.com/galleria-app/galleria/pkg/jwtx"
	"github.com/galleria-app/galleria/pkg/slogx"
)

const (
	// BuildVersion should be set at build time via ldflags.
	BuildVersion = "v0.1.0"
)

// Application encapsulates the auth service with all its dependencies.
type Application struct {
	cfg    Config
	logger *slog.Logger

	db       store.Store
	sessions *session.Store
	clients  *service.ClientRegistry

	tokenService        *service.TokenService
	userService         *service.UserService
	authorizeService    *service.AuthorizeService
	housekeepingService *service.HousekeepingService

	server *http.Server
	router *httpapi.Router
}

// New creates an Application with all dependencies initialized.
func New(cfg Config) (*Application, error) {
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

	if err := app.initDatabase(); err != nil {
		return nil, err
	}

	keyManager, err := InitAuthKeys(app.cfg, app.logger)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize JWT keys: %w", err)
	}

	app.sessions = session.NewStore(cfg.SessionTTL)
	app.clients = service.NewClientRegistry(domain.Client{
		ID:           cfg.ClientID,
		Name:         cfg.ClientName,
		RedirectURIs: cfg.ClientRedirectURIs,
		Scopes:       cfg.ClientScopes,
		Public:       true,
	})

	app.initServices(keyManager)
	app.initHTTP(keyManager)

	return app, nil
}

// Run starts the application and blocks until shutdown is requested.
func (app *Application) Run() error {
	app.housekeepingService.Start()

	app.logger.Info("auth service starting",
		"port", app.cfg.Port,
		"version", BuildVersion,
		"issuer", app.cfg.Issuer,
	)

	serverErrors := make(chan error, 1)
	go func() {
		serverErrors <- app.server.ListenAndServe()
	}()

	shutdown := make(chan os.Signal, 1)
	signal.Notify(shutdown, os.Interrupt, syscall.SIGTERM)

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

// Shutdown gracefully shuts down the application.
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

	if err := app.sessions.Close(); err != nil {
		app.logger.Error("error closing session store", "error", err)
	}

	if err := app.db.Close(); err != nil {
		app.logger.Error("error closing database", "error", err)
		return err
	}

	app.logger.Info("auth service stopped")
	return nil
}

// initDatabase opens the store and applies migrations.
func (app *Application) initDatabase() error {
	db, err := sqlite.NewStore(app.cfg.DatabaseFile)
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

// initServices initializes all business logic services.
func (app *Application) initServices(keyManager *jwtx.KeyManager) {
	app.tokenService = &service.TokenService{
		KeyManager: keyManager,
		Store:      app.db,
		Clients:    app.clients,
		Issuer:     app.cfg.Issuer,
		AccessTTL:  app.cfg.AccessTokenTTL,
	}

	app.userService = &service.UserService{Store: app.db}
	app.authorizeService = &service.AuthorizeService{
		Store:   app.db,
		Clients: app.clients,
		CodeTTL: app.cfg.CodeTTL,
	}

	app.housekeepingService = service.NewHousekeepingService(
		app.db,
		app.logger,
		app.cfg.HousekeepingInterval,
	)
}

// initHTTP initializes the HTTP router and server.
func (app *Application) initHTTP(keyManager *jwtx.KeyManager) {
	router := httpapi.NewRouter(
		keyManager.KeySet,
		app.cfg.Issuer,
		BuildVersion,
		app.db,
		app.sessions,
		app.logger,
	)

	router.TokenService = app.tokenService
	router.UserService = app.userService
	router.AuthorizeService = app.authorizeService
	router.FrontendURL = app.cfg.FrontendURL
	router.SecureCookies = app.cfg.SecureCookies
	router.ApplyRoutes()

	app.router = router

	app.server = &http.Server{
		Addr:              fmt.Sprintf(":%d", app.cfg.Port),
		Handler:           router,
		ReadHeaderTimeout: 3 * time.Second,
	}
}
