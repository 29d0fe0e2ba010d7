package repomanager

import (
	"context"
	"database/sql"

	"github.com/dmitrijs2005/colisso/internal/dbx"
	"github.com/dmitrijs2005/colisso/internal/server/repositories/clients"
	"github.com/dmitrijs2005/colisso/internal/server/repositories/dashboard"
	"github.com/dmitrijs2005/colisso/internal/server/repositories/labels"
	"github.com/dmitrijs2005/colisso/internal/server/repositories/packages"
	"github.com/dmitrijs2005/colisso/internal/server/repositories/refreshtokens"
	"github.com/dmitrijs2005/colisso/internal/server/repositories/users"
)

type RepositoryManager interface {
	RunMigrations(context.Context, *sql.DB) error
	MigrationVersion(context.Context, *sql.DB) (int64, error)
	Users(db dbx.DBTX) users.Repository
	RefreshTokens(db dbx.DBTX) refreshtokens.Repository
	Clients(db dbx.DBTX) clients.Repository
	Labels(db dbx.DBTX) labels.Repository
	Packages(db dbx.DBTX) packages.Repository
	Dashboard(db dbx.DBTX) dashboard.Repository
}
