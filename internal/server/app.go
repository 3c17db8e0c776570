// Package server wires configuration, storage backends and services into
// the portal HTTP server and runs it until the process is signalled.
package server

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/bomin1134/gb-ud-portal/internal/directory"
	"github.com/bomin1134/gb-ud-portal/internal/logging"
	"github.com/bomin1134/gb-ud-portal/internal/server/config"
	"github.com/bomin1134/gb-ud-portal/internal/server/geocode"
	"github.com/bomin1134/gb-ud-portal/internal/server/httpapi"
	"github.com/bomin1134/gb-ud-portal/internal/server/objectstore"
	"github.com/bomin1134/gb-ud-portal/internal/server/repositories/repomanager"
	"github.com/bomin1134/gb-ud-portal/internal/server/services"
	"github.com/bomin1134/gb-ud-portal/internal/weeks"
)

const shutdownTimeout = 10 * time.Second

type App struct {
	config  *config.Config
	logger  logging.Logger
	repos   repomanager.RepositoryManager
	handler http.Handler
}

func NewApp(ctx context.Context, c *config.Config) (*App, error) {
	if err := c.Validate(); err != nil {
		return nil, fmt.Errorf("config: %w", err)
	}
	logger := logging.NewJSONLogger(os.Stdout, c.LogLevel)

	dir, err := loadDirectory(c)
	if err != nil {
		return nil, fmt.Errorf("directory: %w", err)
	}
	cal, err := weeks.NewCalendar(c.TimeZone)
	if err != nil {
		return nil, err
	}
	catalog, err := services.DefaultCatalog()
	if err != nil {
		return nil, fmt.Errorf("catalog: %w", err)
	}

	repos, store, err := openBackends(ctx, c)
	if err != nil {
		return nil, err
	}

	geo := geocode.NewClient(c.GeocoderBaseURL, c.NaverClientID, c.NaverClientSecret)
	var resolver services.AddressResolver
	if geo.Configured() {
		resolver = geo
	}

	handler := httpapi.NewServer(
		services.NewAuthService(dir, logger, c),
		services.NewSubmissionService(repos, store, dir, cal, logger, c),
		services.NewNoticeService(repos, logger),
		services.NewFieldReportService(repos, store, catalog, resolver, logger, c),
		dir,
		geocode.NewHandler(geo, logger),
		httpapi.Options{AllowedOrigins: c.AllowedOrigins, MaxUploadBytes: c.MaxUploadBytes, LogLevel: c.LogLevel},
	)

	logger.Info(ctx, "app initialized", "mode", c.Mode, "branches", len(dir.Branches()), "geocoder", geo.Configured())
	return &App{config: c, logger: logger, repos: repos, handler: handler}, nil
}

func loadDirectory(c *config.Config) (*directory.Directory, error) {
	if c.RosterFile != "" {
		return directory.Load(c.RosterFile)
	}
	return directory.Default()
}

// openBackends returns PostgreSQL and S3 in live mode and in-memory stores
// in demo mode.
func openBackends(ctx context.Context, c *config.Config) (repomanager.RepositoryManager, objectstore.Store, error) {
	if c.Mode == config.ModeDemo {
		return repomanager.NewMemoryRepositoryManager(), objectstore.NewMemoryStore(), nil
	}

	db, err := repomanager.Open(ctx, c.DatabaseDSN)
	if err != nil {
		return nil, nil, fmt.Errorf("db init error: %w", err)
	}
	rm, err := repomanager.NewPostgresRepositoryManager(db)
	if err != nil {
		_ = db.Close()
		return nil, nil, fmt.Errorf("db init error: %w", err)
	}
	if err := rm.RunMigrations(ctx); err != nil {
		_ = rm.Close()
		return nil, nil, fmt.Errorf("migrations: %w", err)
	}

	store, err := objectstore.NewS3Store(ctx, objectstore.S3Config{
		Region:    c.S3Region,
		AccessKey: c.S3RootUser,
		SecretKey: c.S3RootPassword,
		Endpoint:  c.S3BaseEndpoint,
		Bucket:    c.S3Bucket,
	})
	if err != nil {
		_ = rm.Close()
		return nil, nil, fmt.Errorf("object store init error: %w", err)
	}
	return rm, store, nil
}

// Run serves HTTP until ctx is cancelled or SIGINT/SIGTERM arrives, then
// drains in-flight requests and closes the database.
func (app *App) Run(ctx context.Context) error {
	ctx, stop := signal.NotifyContext(ctx, syscall.SIGINT, syscall.SIGTERM, syscall.SIGQUIT)
	defer stop()
	defer func() {
		if err := app.repos.Close(); err != nil {
			app.logger.Error(context.Background(), "close repositories", "error", err)
		}
	}()

	srv := &http.Server{
		Addr:              app.config.HTTPAddr,
		Handler:           app.handler,
		ReadHeaderTimeout: 10 * time.Second,
	}

	errc := make(chan error, 1)
	go func() {
		app.logger.Info(ctx, "Starting HTTP server", "address", app.config.HTTPAddr)
		errc <- srv.ListenAndServe()
	}()

	select {
	case err := <-errc:
		return err
	case <-ctx.Done():
	}

	app.logger.Info(context.Background(), "Stopping HTTP server...")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return err
	}
	if err := <-errc; !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	return nil
}
