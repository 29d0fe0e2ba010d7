// Package server initializes and runs the Colisso back-office server.
// It opens the database, applies migrations, wires the services and serves
// the HTTP API until a termination signal arrives.
package server

import (
	"context"
	"database/sql"
	"fmt"
	"os"
	"os/signal"
	"sync"
	"syscall"

	"github.com/dmitrijs2005/colisso/internal/labelpdf"
	"github.com/dmitrijs2005/colisso/internal/logging"
	"github.com/dmitrijs2005/colisso/internal/qrcode"
	"github.com/dmitrijs2005/colisso/internal/server/config"
	"github.com/dmitrijs2005/colisso/internal/server/httpapi"
	"github.com/dmitrijs2005/colisso/internal/server/repositories/repomanager"
	"github.com/dmitrijs2005/colisso/internal/server/services"
	_ "github.com/jackc/pgx/v5/stdlib"
)

type App struct {
	config   *config.Config
	logger   logging.Logger
	db       *sql.DB
	services httpapi.Services
}

// NewApp opens the database, migrates it and builds the service graph.
func NewApp(ctx context.Context, c *config.Config) (*App, error) {
	if err := c.Validate(); err != nil {
		return nil, fmt.Errorf("config: %w", err)
	}

	logger := logging.NewJSONLogger(os.Stdout, c.LogLevel)

	db, err := sql.Open("pgx", c.DatabaseDSN)
	if err != nil {
		return nil, fmt.Errorf("db init error: %w", err)
	}
	if err := db.PingContext(ctx); err != nil {
		db.Close()
		return nil, fmt.Errorf("db ping error: %w", err)
	}

	rm := repomanager.NewPostgresRepositoryManager()
	if err := rm.RunMigrations(ctx, db); err != nil {
		db.Close()
		return nil, fmt.Errorf("migrations: %w", err)
	}

	return &App{
		config:   c,
		logger:   logger,
		db:       db,
		services: buildServices(db, rm, c, logger),
	}, nil
}

func buildServices(db *sql.DB, rm repomanager.RepositoryManager, c *config.Config, logger logging.Logger) httpapi.Services {
	qr := qrcode.NewService()

	var opts []labelpdf.Option
	if qrcode.ParseMode(c.QRPayloadMode) == qrcode.PayloadTrackingURL {
		opts = append(opts, labelpdf.WithTrackingURL(c.PublicBaseURL))
	}
	renderer := labelpdf.NewRenderer(qr, logger, opts...)

	var archive services.Archive
	if c.ArchiveEnabled {
		archive = services.NewS3Archive(c)
	}

	return httpapi.Services{
		Users:     services.NewUserService(db, rm, c),
		Clients:   services.NewClientService(db, rm, logger),
		Labels:    services.NewLabelService(db, rm, c, renderer, qr, archive, logger),
		Packages:  services.NewPackageService(db, rm, logger),
		Dashboard: services.NewDashboardService(db, rm),
		QR:        qr,
	}
}

func (app *App) initSignalHandler(cancelFunc context.CancelFunc) {
	// Channel to catch OS signals.
	sigs := make(chan os.Signal, 1)
	signal.Notify(sigs, syscall.SIGINT, syscall.SIGTERM, syscall.SIGQUIT)

	go func() {
		<-sigs
		cancelFunc()
	}()
}

func (app *App) startHTTPServer(ctx context.Context, cancelFunc context.CancelFunc) {
	s := httpapi.NewHTTPServer(app.config, app.logger, app.services)
	if err := s.Run(ctx); err != nil {
		app.logger.Error(ctx, err.Error())
		cancelFunc()
	}
}

// Run serves until SIGINT/SIGTERM/SIGQUIT or ctx cancellation, then closes
// the database.
func (app *App) Run(ctx context.Context) {
	ctx, cancelFunc := context.WithCancel(ctx)
	defer cancelFunc()

	app.logger.Info(ctx, "Starting app...", "archive", app.config.ArchiveEnabled, "qr_mode", app.config.QRPayloadMode)

	app.initSignalHandler(cancelFunc)

	var wg sync.WaitGroup

	wg.Add(1)
	go func() {
		defer wg.Done()
		app.startHTTPServer(ctx, cancelFunc)
	}()

	wg.Wait()

	if err := app.db.Close(); err != nil {
		app.logger.Error(ctx, "db close", "error", err)
	}
	app.logger.Info(ctx, "Stopped")
}
