// Package repomanager provides a concrete RepositoryManager for PostgreSQL,
// wiring together repository constructors and database migrations (via goose).
package repomanager

import (
	"context"
	"database/sql"

	"github.com/dmitrijs2005/colisso/internal/dbx"
	"github.com/dmitrijs2005/colisso/internal/server/migrations"
	"github.com/dmitrijs2005/colisso/internal/server/repositories/clients"
	"github.com/dmitrijs2005/colisso/internal/server/repositories/dashboard"
	"github.com/dmitrijs2005/colisso/internal/server/repositories/labels"
	"github.com/dmitrijs2005/colisso/internal/server/repositories/packages"
	"github.com/dmitrijs2005/colisso/internal/server/repositories/refreshtokens"
	"github.com/dmitrijs2005/colisso/internal/server/repositories/users"
	_ "github.com/jackc/pgx/v5/stdlib"
	"github.com/pressly/goose/v3"
)

// PostgresRepositoryManager vends PostgreSQL-backed repositories bound to
// whatever DBTX the caller holds, so the same constructors serve plain
// connections and transactions.
type PostgresRepositoryManager struct{}

func (m *PostgresRepositoryManager) Users(db dbx.DBTX) users.Repository {
	return users.NewPostgresRepository(db)
}

func (m *PostgresRepositoryManager) RefreshTokens(db dbx.DBTX) refreshtokens.Repository {
	return refreshtokens.NewPostgresRepository(db)
}

func (m *PostgresRepositoryManager) Clients(db dbx.DBTX) clients.Repository {
	return clients.NewPostgresRepository(db)
}

func (m *PostgresRepositoryManager) Labels(db dbx.DBTX) labels.Repository {
	return labels.NewPostgresRepository(db)
}

func (m *PostgresRepositoryManager) Packages(db dbx.DBTX) packages.Repository {
	return packages.NewPostgresRepository(db)
}

func (m *PostgresRepositoryManager) Dashboard(db dbx.DBTX) dashboard.Repository {
	return dashboard.NewPostgresRepository(db)
}

// seams for testing goose
var (
	gooseUpContext = func(ctx context.Context, db *sql.DB, dir string, opts ...goose.OptionsFunc) error {
		return goose.UpContext(ctx, db, dir, opts...)
	}
	gooseVersionContext = func(ctx context.Context, db *sql.DB) (int64, error) {
		return goose.GetDBVersionContext(ctx, db)
	}
)

func setupGoose() error {
	goose.SetBaseFS(migrations.Migrations)
	return goose.SetDialect("pgx")
}

// RunMigrations applies the embedded migrations to db.
func (m *PostgresRepositoryManager) RunMigrations(ctx context.Context, db *sql.DB) error {
	if err := setupGoose(); err != nil {
		return err
	}
	if err := gooseUpContext(ctx, db, "."); err != nil {
		return err
	}
	return nil
}

// MigrationVersion reports the schema version recorded by goose.
func (m *PostgresRepositoryManager) MigrationVersion(ctx context.Context, db *sql.DB) (int64, error) {
	if err := setupGoose(); err != nil {
		return 0, err
	}
	return gooseVersionContext(ctx, db)
}

// NewPostgresRepositoryManager constructs a PostgreSQL-backed RepositoryManager.
func NewPostgresRepositoryManager() RepositoryManager {
	return &PostgresRepositoryManager{}
}
