package server

import (
	"context"
	"testing"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/dmitrijs2005/colisso/internal/logging"
	"github.com/dmitrijs2005/colisso/internal/server/config"
	"github.com/dmitrijs2005/colisso/internal/server/repositories/repomanager"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewApp_InvalidConfig(t *testing.T) {
	cfg := &config.Config{}
	cfg.LoadDefaults()
	cfg.SecretKey = " "

	app, err := NewApp(context.Background(), cfg)

	require.Error(t, err)
	assert.Nil(t, app)
	assert.Contains(t, err.Error(), "config")
}

func TestBuildServices(t *testing.T) {
	db, _, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	cfg := &config.Config{}
	cfg.LoadDefaults()
	cfg.QRPayloadMode = "url"
	cfg.ArchiveEnabled = true

	svc := buildServices(db, repomanager.NewPostgresRepositoryManager(), cfg, logging.Nop())

	assert.NotNil(t, svc.Users)
	assert.NotNil(t, svc.Clients)
	assert.NotNil(t, svc.Labels)
	assert.NotNil(t, svc.Packages)
	assert.NotNil(t, svc.Dashboard)
	assert.NotNil(t, svc.QR)
}
