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

	"github.com/tutora/platform/internal/token"
	"github.com/tutora/platform/internal/web"
	"github.com/tutora/platform/pkg/httpx"
	"github.com/tutora/platform/pkg/sanitizex"
	"github.com/tutora/platform/pkg/slogx"
)

// BuildVersion should be set at build time via ldflags.
const BuildVersion = "v0.1.0"

// Application wires the request-security core together: token service,
// rate limiter, origin allow-list, sanitizer and the HTTP pipeline.
type Application struct {
	cfg    Config
	logger *slog.Logger

	tokens   *token.Service
	revoked  *token.MemoryRevocationList
	resolver web.SubjectResolver
	db       web.HealthReporter

	server *http.Server
	router *web.Router
}

// New creates an Application with all dependencies initialized. db and
// resolver are collaborators from the persistence layer: db backs the health
// endpoint, resolver supplies tenant/role claims on refresh rotation. Both
// may be nil; with a nil resolver rotated access tokens carry no extra
// claims.
func New(cfg Config, db web.HealthReporter, resolver web.SubjectResolver) (*Application, error) {
	app := &Application{
		cfg:      cfg,
		db:       db,
		resolver: resolver,
		logger: slogx.New(slogx.Config{
			Service: "platform-core",
			Version: BuildVersion,
			Env:     cfg.Env,
			Level:   cfg.LogLevel,
			Format:  cfg.LogFormat,
		}),
	}

	if cfg.JWTSecret == "" && cfg.IsProduction() {
		return nil, fmt.Errorf("JWT_SECRET must be configured in %s", cfg.Env)
	}

	app.initTokenService()
	app.initHTTP()

	return app, nil
}

func (app *Application) initTokenService() {
	app.revoked = token.NewMemoryRevocationList()
	app.tokens = token.NewService(token.Config{
		Secret:     app.cfg.JWTSecret,
		Issuer:     app.cfg.Issuer,
		Audience:   app.cfg.Audience,
		AccessTTL:  app.cfg.AccessTTL,
		RefreshTTL: app.cfg.RefreshTTL,
		Production: app.cfg.IsProduction(),
	}, app.logger, app.revoked)
}

func (app *Application) initHTTP() {
	identity := httpx.ClientIdentity{TrustedHeaders: app.cfg.TrustedProxyHeaders}
	limiter := httpx.NewRateLimiter(app.cfg.RateLimitCeiling, app.cfg.RateLimitWindow)
	origins := httpx.NewOriginAllowList(app.cfg.AllowedOrigins, app.cfg.IsProduction())
	sanitizer := sanitizex.New(sanitizex.NewPolicy(app.cfg.SanitizeSkipPaths, app.cfg.RichTextFields))

	app.router = web.NewRouter(
		app.logger,
		app.tokens,
		app.resolver,
		app.db,
		limiter,
		identity,
		origins,
		sanitizer,
		app.cfg.RateLimitBypass,
	)
	app.router.ApplyRoutes()

	app.server = &http.Server{
		Addr:              fmt.Sprintf(":%d", app.cfg.Port),
		Handler:           app.router,
		ReadHeaderTimeout: 10 * time.Second,
	}
}

// Tokens exposes the token service to collaborators (auth routes, schedulers)
// that are wired outside this core.
func (app *Application) Tokens() *token.Service { return app.tokens }

// Router exposes the composed pipeline so domain route packages can mount
// their handlers onto it.
func (app *Application) Router() *web.Router { return app.router }

// Run starts the HTTP server and blocks until shutdown is requested.
func (app *Application) Run() error {
	app.logger.Info("platform core starting", "port", app.cfg.Port, "version", BuildVersion)

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

// Shutdown gracefully stops the HTTP server.
func (app *Application) Shutdown() error {
	app.logger.Info("shutting down platform core...")

	ctx, cancel := context.WithTimeout(context.Background(), app.cfg.ShutdownGracePeriod)
	defer cancel()

	if err := app.server.Shutdown(ctx); err != nil {
		app.logger.Error("graceful server shutdown failed", "error", err)
		if err := app.server.Close(); err != nil {
			return err
		}
	}

	app.logger.Info("platform core stopped")
	return nil
}
