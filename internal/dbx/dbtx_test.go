package dbx

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"testing"

	"github.com/jackc/pgx/v5/pgconn"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	_ "modernc.org/sqlite"
)

func setupDB(t *testing.T) *sql.DB {
	t.Helper()
	db, err := sql.Open("sqlite", "file:"+t.Name()+"?mode=memory&cache=shared")
	require.NoError(t, err)
	db.SetMaxOpenConns(4)
	db.SetMaxIdleConns(4)
	t.Cleanup(func() { _ = db.Close() })
	_, err = db.Exec(`CREATE TABLE IF NOT EXISTS parcels (id INTEGER PRIMARY KEY, tracking_id TEXT);`)
	require.NoError(t, err)
	return db
}

func countRows(t *testing.T, db *sql.DB) int {
	t.Helper()
	var n int
	require.NoError(t, db.QueryRow(`SELECT COUNT(*) FROM parcels`).Scan(&n))
	return n
}

func TestWithTx_CommitsOnSuccess(t *testing.T) {
	db := setupDB(t)

	err := WithTx(context.Background(), db, nil, func(ctx context.Context, tx DBTX) error {
		_, err := tx.ExecContext(ctx, `INSERT INTO parcels(tracking_id) VALUES ('FRA1')`)
		return err
	})
	require.NoError(t, err)
	require.Equal(t, 1, countRows(t, db))
}

func TestWithTx_RollbackOnFnError(t *testing.T) {
	db := setupDB(t)

	err := WithTx(context.Background(), db, nil, func(ctx context.Context, tx DBTX) error {
		_, e := tx.ExecContext(ctx, `INSERT INTO parcels(tracking_id) VALUES ('FRA2')`)
		require.NoError(t, e)
		return errors.New("boom")
	})
	require.EqualError(t, err, "boom")
	require.Equal(t, 0, countRows(t, db))
}

func TestWithTx_RollbackOnPanic(t *testing.T) {
	db := setupDB(t)

	defer func() {
		if r := recover(); r == nil {
			t.Fatalf("expected panic to propagate")
		}
		require.Equal(t, 0, countRows(t, db))
	}()

	_ = WithTx(context.Background(), db, nil, func(ctx context.Context, tx DBTX) error {
		_, e := tx.ExecContext(ctx, `INSERT INTO parcels(tracking_id) VALUES ('FRA3')`)
		require.NoError(t, e)
		panic("kaput")
	})
}

func TestWithTx_BeginError(t *testing.T) {
	db := setupDB(t)
	require.NoError(t, db.Close())

	err := WithTx(context.Background(), db, nil, func(ctx context.Context, tx DBTX) error {
		return nil
	})
	require.Error(t, err)
}

func TestConstraintProbes(t *testing.T) {
	unique := fmt.Errorf("db error: %w", &pgconn.PgError{Code: "23505", ConstraintName: "labels_tracking_id_key"})
	fk := fmt.Errorf("db error: %w", &pgconn.PgError{Code: "23503", ConstraintName: "labels_client_id_fkey"})
	badUUID := fmt.Errorf("db error: %w", &pgconn.PgError{Code: "22P02"})

	tests := []struct {
		name       string
		err        error
		constraint string
		unique     bool
		foreignKey bool
		invalid    bool
	}{
		{name: "unique any constraint", err: unique, unique: true},
		{name: "unique matching constraint", err: unique, constraint: "labels_tracking_id_key", unique: true},
		{name: "unique other constraint", err: unique, constraint: "clients_name_lower_key"},
		{name: "foreign key", err: fk, foreignKey: true},
		{name: "invalid uuid text", err: badUUID, invalid: true},
		{name: "plain error", err: errors.New("boom")},
		{name: "nil", err: nil},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.unique, IsUniqueViolation(tt.err, tt.constraint))
			assert.Equal(t, tt.foreignKey, IsForeignKeyViolation(tt.err))
			assert.Equal(t, tt.invalid, IsInvalidText(tt.err))
		})
	}
}
