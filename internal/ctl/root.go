// Package ctl implements colissoctl, the operator command line: schema
// migrations, account provisioning, offline label and QR rendering and a
// session expiry watcher.
package ctl

import (
	"bufio"
	"context"
	"database/sql"
	"fmt"
	"io"
	"os"

	"github.com/dmitrijs2005/colisso/internal/logging"
	"github.com/dmitrijs2005/colisso/internal/qrcode"
	"github.com/dmitrijs2005/colisso/internal/server/config"
	"github.com/dmitrijs2005/colisso/internal/server/models"
	"github.com/dmitrijs2005/colisso/internal/server/repositories/repomanager"
	"github.com/dmitrijs2005/colisso/internal/server/services"
	_ "github.com/jackc/pgx/v5/stdlib"
	"github.com/spf13/cobra"
)

type userCreator interface {
	CreateUser(ctx context.Context, name, email, password string, role models.Role) (*models.User, error)
}

// App holds what the commands share. Fields are replaced in tests.
type App struct {
	cfg      *config.Config
	in       *bufio.Reader
	out      io.Writer
	logLevel string
	qr       *qrcode.Service
	repos    repomanager.RepositoryManager
	openDB   func(dsn string) (*sql.DB, error)
	newUsers func(db *sql.DB, rm repomanager.RepositoryManager, cfg *config.Config) userCreator
}

func NewApp(cfg *config.Config, in io.Reader, out io.Writer) *App {
	return &App{
		cfg:      cfg,
		in:       bufio.NewReader(in),
		out:      out,
		logLevel: cfg.LogLevel,
		qr:       qrcode.NewService(),
		repos:    repomanager.NewPostgresRepositoryManager(),
		openDB: func(dsn string) (*sql.DB, error) {
			return sql.Open("pgx", dsn)
		},
		newUsers: func(db *sql.DB, rm repomanager.RepositoryManager, cfg *config.Config) userCreator {
			return services.NewUserService(db, rm, cfg)
		},
	}
}

func (a *App) logger() logging.Logger {
	return logging.NewJSONLogger(os.Stderr, a.logLevel)
}

// withDB opens the configured database for the duration of fn.
func (a *App) withDB(ctx context.Context, fn func(db *sql.DB) error) error {
	db, err := a.openDB(a.cfg.DatabaseDSN)
	if err != nil {
		return fmt.Errorf("open database: %w", err)
	}
	defer db.Close()

	if err := db.PingContext(ctx); err != nil {
		return fmt.Errorf("ping database: %w", err)
	}
	return fn(db)
}

// RootCmd builds the colissoctl command tree.
func (a *App) RootCmd() *cobra.Command {
	root := &cobra.Command{
		Use:   "colissoctl",
		Short: "Colisso operator tool",
		Long: `colissoctl administers a Colisso back-office installation.

Settings come from COLISSO_* environment variables (or a .env file) and an
optional JSON file passed with -c; the flags below override them.`,
		SilenceUsage: true,
	}
	root.SetOut(a.out)
	root.SetErr(a.out)

	root.PersistentFlags().StringVar(&a.cfg.DatabaseDSN, "db", a.cfg.DatabaseDSN, "PostgreSQL DSN")
	root.PersistentFlags().StringVar(&a.logLevel, "log-level", a.logLevel, "log level (debug, info, warn, error)")

	root.AddCommand(
		a.migrateCmd(),
		a.userCmd(),
		a.labelCmd(),
		a.qrcodeCmd(),
		a.sessionCmd(),
	)
	return root
}

// Execute runs colissoctl against the process arguments.
func Execute() {
	app := NewApp(config.LoadEnvConfig(), os.Stdin, os.Stdout)
	if err := app.RootCmd().ExecuteContext(context.Background()); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
