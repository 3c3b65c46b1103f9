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

	"github.com/prometheus/client_golang/prometheus"

	httpapi "github.com/traveltalk/server/internal/api/http"
	"github.com/traveltalk/server/internal/api/service"
	"github.com/traveltalk/server/internal/api/store"
	"github.com/traveltalk/server/internal/api/store/drivers/postgrest"
	"github.com/traveltalk/server/internal/api/store/drivers/sqlite"
	"github.com/traveltalk/server/internal/api/upstream/azurespeech"
	"github.com/traveltalk/server/internal/api/upstream/gemini"
	"github.com/traveltalk/server/pkg/slogx"
)

const (
	// BuildVersion should be set at build time via ldflags.
	BuildVersion = "v0.1.0"
)

// Application encapsulates the API server with all its dependencies.
type Application struct {
	cfg    Config
	logger *slog.Logger

	db store.Store

	tokenService        *service.TokenService
	admissionService    *service.AdmissionService
	sessionService      *service.SessionService
	adminService        *service.AdminService
	codeService         *service.CodeService
	userService         *service.UserService
	statsService        *service.StatsService
	historyService      *service.HistoryService
	phrasebookService   *service.PhrasebookService
	housekeepingService *service.HousekeepingService

	gemini *gemini.Client
	azure  *azurespeech.Client

	server *http.Server
	router *httpapi.Router
}

// New creates an Application with all dependencies initialized.
func New(cfg Config) (*Application, error) {
	app := &Application{
		cfg: cfg,
		logger: slogx.New(slogx.Config{
			Service: "traveltalk-api",
			Version: BuildVersion,
			Env:     cfg.Env,
			Level:   cfg.LogLevel,
			Format:  cfg.LogFormat,
		}),
	}

	if err := app.initStore(); err != nil {
		return nil, err
	}

	app.initServices()
	app.initHTTP()

	return app, nil
}

// Run starts the application and blocks until shutdown is requested.
func (app *Application) Run() error {
	app.housekeepingService.Start()

	app.logger.Info("api server starting",
		"port", app.cfg.Port,
		"store_driver", app.cfg.StoreDriver,
		"version", BuildVersion,
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
	app.logger.Info("shutting down api server...")

	ctx, cancel := context.WithTimeout(context.Background(), app.cfg.ShutdownGracePeriod)
	defer cancel()

	if err := app.server.Shutdown(ctx); err != nil {
		app.logger.Error("graceful server shutdown failed", "error", err)
		if err := app.server.Close(); err != nil {
			app.logger.Error("error closing server", "error", err)
		}
	}

	app.housekeepingService.Stop()

	if err := app.db.Close(); err != nil {
		app.logger.Error("error closing store", "error", err)
		return err
	}

	app.logger.Info("api server stopped")
	return nil
}

// initStore connects the configured store driver. The sqlite driver owns
// its schema and migrates on startup; the postgrest driver talks to an
// externally managed schema.
func (app *Application) initStore() error {
	switch app.cfg.StoreDriver {
	case "postgrest":
		if app.cfg.StoreURL == "" || app.cfg.StoreKey == "" {
			return fmt.Errorf("postgrest driver requires STORE_URL and STORE_KEY")
		}
		app.db = postgrest.NewStore(postgrest.Config{
			URL:     app.cfg.StoreURL,
			Key:     app.cfg.StoreKey,
			Timeout: app.cfg.UpstreamTimeout,
		})
		app.logger.Info("using postgrest store", "url", app.cfg.StoreURL)
		return nil

	case "sqlite":
		dsn := fmt.Sprintf("file:%s?_busy_timeout=5000&_journal_mode=WAL", app.cfg.DatabaseFile)
		db, err := sqlite.NewStore(dsn)
		if err != nil {
			return fmt.Errorf("failed to initialize database: %w", err)
		}
		if err := db.ApplyMigrations(); err != nil {
			_ = db.Close()
			return fmt.Errorf("failed to apply database migrations: %w", err)
		}
		app.db = db
		app.logger.Info("database migrations applied successfully")
		return nil

	default:
		return fmt.Errorf("unknown store driver %q", app.cfg.StoreDriver)
	}
}

// initServices initializes all business logic services.
func (app *Application) initServices() {
	app.tokenService = &service.TokenService{
		Store:         app.db,
		SessionTTL:    app.cfg.SessionTTL,
		AdminTokenTTL: app.cfg.AdminTokenTTL,
	}
	app.admissionService = &service.AdmissionService{
		Store:  app.db,
		Tokens: app.tokenService,
	}
	app.sessionService = &service.SessionService{Store: app.db}
	app.adminService = &service.AdminService{
		Store:  app.db,
		Tokens: app.tokenService,
		Secret: app.cfg.AdminSecret,
	}
	app.codeService = &service.CodeService{
		Store:              app.db,
		DeviceLimitDefault: app.cfg.DeviceLimitDefault,
	}
	app.userService = &service.UserService{Store: app.db}
	app.statsService = &service.StatsService{Store: app.db}
	app.historyService = &service.HistoryService{Store: app.db}
	app.phrasebookService = &service.PhrasebookService{Store: app.db}

	app.housekeepingService = service.NewHousekeepingService(
		app.db,
		app.logger,
		app.cfg.HousekeepingInterval,
	)

	app.gemini = gemini.NewClient(gemini.Config{
		APIKey:  app.cfg.GeminiAPIKey,
		Timeout: app.cfg.UpstreamTimeout,
	})
	app.azure = azurespeech.NewClient(azurespeech.Config{
		Key:     app.cfg.AzureSpeechKey,
		Region:  app.cfg.AzureSpeechRegion,
		Timeout: app.cfg.UpstreamTimeout,
	})
}

// initHTTP initializes the HTTP router and server.
func (app *Application) initHTTP() {
	router := httpapi.NewRouter(
		app.cfg.AdminSecret,
		BuildVersion,
		app.db,
		httpapi.NewMetrics(prometheus.DefaultRegisterer),
		app.logger,
	)

	router.AdmissionService = app.admissionService
	router.SessionService = app.sessionService
	router.AdminService = app.adminService
	router.CodeService = app.codeService
	router.UserService = app.userService
	router.StatsService = app.statsService
	router.HistoryService = app.historyService
	router.PhrasebookService = app.phrasebookService
	router.Gemini = app.gemini
	router.Azure = app.azure
	router.ApplyRoutes()

	app.router = router

	app.server = &http.Server{
		Addr:              fmt.Sprintf(":%d", app.cfg.Port),
		Handler:           router,
		ReadHeaderTimeout: 3 * time.Second,
	}
}
