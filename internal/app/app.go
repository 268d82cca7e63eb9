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

	"golang.org/x/oauth2"

	"github.com/posternauth/postern/internal/domain"
	httpapi "github.com/posternauth/postern/internal/http"
	"github.com/posternauth/postern/internal/service"
	"github.com/posternauth/postern/internal/store"
	"github.com/posternauth/postern/internal/store/sqlite"
	"github.com/posternauth/postern/pkg/authserver"
	"github.com/posternauth/postern/pkg/bearer"
	"github.com/posternauth/postern/pkg/cryptox"
	"github.com/posternauth/postern/pkg/guard"
	"github.com/posternauth/postern/pkg/slogx"
)

const (
	// BuildVersion should be set at build time via ldflags. Later problem
	BuildVersion = "v0.1.0"
)

// Application encapsulates the authorization server with all its dependencies
type Application struct {
	cfg    Config
	logger *slog.Logger

	// Core dependencies
	db    store.Store
	codec *bearer.Codec

	// Services
	accountService *service.AccountService
	clientService  *service.ClientService
	apiKeyService  *service.APIKeyService
	authority      *service.Authority
	janitor        *service.Janitor

	// Protocol engine and session guard
	engine *authserver.Server[domain.Client]
	guard  *guard.Guard[domain.Account]

	// HTTP server
	server *http.Server
	router *httpapi.Router
}

// New creates a new Application instance with all dependencies initialized
func New(cfg Config) (*Application, error) {
	app := &Application{
		cfg: cfg,
		logger: slogx.New(slogx.Config{
			Service: "postern",
			Version: BuildVersion,
			Env:     cfg.Env,
			Level:   cfg.LogLevel,
			Format:  cfg.LogFormat,
		}),
	}

	// Set key material paths before anything hashes or encrypts
	cryptox.SetPepperPath(app.cfg.PepperFile)
	if app.cfg.MasterKeyFile != "" {
		cryptox.SetMasterKeyPath(app.cfg.MasterKeyFile)
	}

	if err := app.initDatabase(); err != nil {
		return nil, err
	}

	if err := app.initCodec(); err != nil {
		_ = app.db.Close()
		return nil, err
	}

	app.initServices()
	app.initGuard()
	app.initEngine()
	app.initHTTP()

	return app, nil
}

// Run starts the application and blocks until shutdown is requested
func (app *Application) Run() error {
	// Start the expired code and token sweeper
	app.janitor.Start()

	app.logger.Info("authorization server starting", "port", app.cfg.Port, "version", BuildVersion)

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

		// Perform graceful shutdown
		if err := app.Shutdown(); err != nil {
			return fmt.Errorf("graceful shutdown failed: %w", err)
		}
	}

	return nil
}

// Shutdown gracefully shuts down the application
func (app *Application) Shutdown() error {
	app.logger.Info("shutting down authorization server...")

	// Give outstanding requests a deadline for completion
	ctx, cancel := context.WithTimeout(context.Background(), app.cfg.ShutdownGracePeriod)
	defer cancel()

	// Shutdown the HTTP server
	if err := app.server.Shutdown(ctx); err != nil {
		app.logger.Error("graceful server shutdown failed", "error", err)
		if err := app.server.Close(); err != nil {
			app.logger.Error("error closing server", "error", err)
		}
	}

	// Stop the janitor
	app.janitor.Stop()

	// Close database connection
	if err := app.db.Close(); err != nil {
		app.logger.Error("error closing database", "error", err)
		return err
	}

	app.logger.Info("authorization server stopped")
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

// initCodec builds the token codec. Without a configured secret every
// outstanding session, access token and authorization code dies with the
// process, so a missing POSTERN_TOKEN_SECRET is loud but not fatal.
func (app *Application) initCodec() error {
	secret := app.cfg.TokenSecret
	if secret == "" {
		generated, err := cryptox.GenerateToken(cryptox.TokenSize256)
		if err != nil {
			return fmt.Errorf("failed to generate token secret: %w", err)
		}
		secret = generated
		app.logger.Warn("POSTERN_TOKEN_SECRET is not set, using a generated secret; issued tokens will not survive a restart")
	}

	app.codec = bearer.NewCodec([]byte(secret))
	return nil
}

// initServices initializes all business logic services
func (app *Application) initServices() {
	app.accountService = &service.AccountService{
		Store:  app.db,
		Issuer: app.cfg.Issuer,
	}

	app.clientService = &service.ClientService{Store: app.db}

	app.authority = &service.Authority{
		Store:      app.db,
		Codec:      app.codec,
		Accounts:   app.accountService,
		AccessTTL:  app.cfg.AccessTTL,
		RefreshTTL: app.cfg.RefreshTTL,
		CodeTTL:    app.cfg.CodeTTL,
	}

	app.apiKeyService = &service.APIKeyService{
		Store:     app.db,
		Codec:     app.codec,
		AccessTTL: app.cfg.AccessTTL,
	}

	app.janitor = service.NewJanitor(app.db, app.logger, app.cfg.JanitorInterval)
}

// initGuard wires the session guard and its login strategies
func (app *Application) initGuard() {
	app.guard = &guard.Guard[domain.Account]{
		Codec: app.codec,
		Serialize: func(a domain.Account) (string, error) {
			return a.ID, nil
		},
		Resolve:    app.accountService.GetByID,
		Lifespan:   app.cfg.SessionTTL,
		BindOrigin: app.cfg.BindSessionOrigin,
		Logger:     app.logger,
	}

	app.guard.Use("password", &service.PasswordStrategy{Accounts: app.accountService})

	if app.cfg.UpstreamEnabled() {
		app.guard.Use("upstream", &service.UpstreamStrategy{
			Config: &oauth2.Config{
				ClientID:     app.cfg.UpstreamClientID,
				ClientSecret: app.cfg.UpstreamClientSecret,
				RedirectURL:  app.cfg.UpstreamRedirectURL,
				Endpoint: oauth2.Endpoint{
					AuthURL:  app.cfg.UpstreamAuthURL,
					TokenURL: app.cfg.UpstreamTokenURL,
				},
			},
			UserInfoURL: app.cfg.UpstreamUserInfoURL,
			Store:       app.db,
		})
		app.logger.Info("federated login enabled", "provider", app.cfg.UpstreamAuthURL)
	}
}

// initEngine builds the protocol engine and registers extension grants
func (app *Application) initEngine() {
	app.engine = &authserver.Server[domain.Client]{
		Provider: app.authority,
		Logger:   app.logger,
	}
	app.engine.RegisterGrant(service.GrantTypeAPIKey, app.apiKeyService.Grant)
}

// initHTTP initializes the HTTP router and server
func (app *Application) initHTTP() {
	router := httpapi.NewRouter(
		app.cfg.Issuer,
		BuildVersion,
		app.db,
		app.logger,
	)

	// Wire services to router
	router.Guard = app.guard
	router.Engine = app.engine
	router.Authority = app.authority
	router.AccountService = app.accountService
	router.ClientService = app.clientService
	router.APIKeyService = app.apiKeyService
	router.UpstreamLogin = app.cfg.UpstreamEnabled()
	router.ApplyRoutes()

	app.router = router

	// Initialize HTTP server
	app.server = &http.Server{
		Addr:              fmt.Sprintf(":%d", app.cfg.Port),
		Handler:           router,
		ReadHeaderTimeout: 3 * time.Second,
	}
}
