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

	httpapi "github.com/galleria-app/galleria/internal/gateway/http"
	"github.com/galleria-app/galleria/pkg/authsdk"
	"github.com/galleria-app/galleria/pkg/jwtx"
	"github.com/galleria-app/galleria/pkg/slogx"
)

const (
	// BuildVersion should be set at build time via ldflags.
	BuildVersion = "v0.1.0"
)

// Application encapsulates the gateway with all its dependencies.
type Application struct {
	cfg    Config
	logger *slog.Logger

	verifier *jwtx.RemoteVerifier

	server *http.Server
	router *httpapi.Router
}

// New creates an Application with all dependencies initialized. It
// fetches the auth service's JWKS before accepting traffic: a gateway
// that cannot verify tokens has nothing useful to serve.
func New(cfg Config) (*Application, error) {
	app := &Application{
		cfg: cfg,
		logger: slogx.New(slogx.Config{
			Service: "gateway",
			Version: BuildVersion,
			Env:     cfg.Env,
			Level:   cfg.LogLevel,
			Format:  cfg.LogFormat,
		}),
	}

	sdk := authsdk.NewSDKClient(cfg.AuthURL)
	app.verifier = jwtx.NewRemoteVerifier(cfg.Issuer, jwksFetcher(sdk))
	app.verifier.Cooldown = cfg.JWKSCooldown

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := app.verifier.Refresh(ctx); err != nil {
		return nil, fmt.Errorf("failed to fetch verification keys from %s: %w", cfg.AuthURL, err)
	}
	app.logger.Info("verification keys loaded", "auth_url", cfg.AuthURL, "issuer", cfg.Issuer)

	if err := app.initHTTP(); err != nil {
		return nil, err
	}

	return app, nil
}

// Run starts the application and blocks until shutdown is requested.
func (app *Application) Run() error {
	app.logger.Info("gateway starting", "port", app.cfg.Port, "version", BuildVersion)

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
	app.logger.Info("shutting down gateway...")

	ctx, cancel := context.WithTimeout(context.Background(), app.cfg.ShutdownGracePeriod)
	defer cancel()

	if err := app.server.Shutdown(ctx); err != nil {
		app.logger.Error("graceful server shutdown failed", "error", err)
		if err := app.server.Close(); err != nil {
			app.logger.Error("error closing server", "error", err)
		}
	}

	app.logger.Info("gateway stopped")
	return nil
}

// initHTTP initializes the HTTP router, upstream proxies, and server.
func (app *Application) initHTTP() error {
	router := httpapi.NewRouter(app.verifier, BuildVersion, app.logger)
	router.Ready = app.verifier.Ready

	upstreams := []struct {
		name   string
		rawURL string
		dest   **httpapi.Upstream
	}{
		{"artist", app.cfg.ArtistURL, &router.Artist},
		{"museum", app.cfg.MuseumURL, &router.Museum},
		{"painting", app.cfg.PaintingURL, &router.Painting},
		{"geo", app.cfg.GeoURL, &router.Geo},
		{"userdata", app.cfg.UserdataURL, &router.Userdata},
	}
	for _, u := range upstreams {
		if u.rawURL == "" {
			app.logger.Warn("upstream disabled", "upstream", u.name)
			continue
		}
		up, err := httpapi.NewUpstream(u.name, u.rawURL)
		if err != nil {
			return fmt.Errorf("invalid %s upstream URL %q: %w", u.name, u.rawURL, err)
		}
		*u.dest = up
	}

	router.ApplyRoutes()
	app.router = router

	app.server = &http.Server{
		Addr:              fmt.Sprintf(":%d", app.cfg.Port),
		Handler:           router,
		ReadHeaderTimeout: 3 * time.Second,
	}
	return nil
}
