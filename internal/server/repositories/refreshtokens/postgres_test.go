package refreshtokens

import (
	"context"
	"database/sql"
	"errors"
	"regexp"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/dmitrijs2005/colisso/internal/common"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newRepoWithMock(t *testing.T) (*PostgresRepository, sqlmock.Sqlmock, *sql.DB) {
	t.Helper()
	db, mock, err := sqlmock.New(sqlmock.QueryMatcherOption(sqlmock.QueryMatcherRegexp))
	if err != nil {
		t.Fatalf("sqlmock.New error: %v", err)
	}
	return NewPostgresRepository(db), mock, db
}

func TestDigest(t *testing.T) {
	assert.Len(t, Digest("tok123"), 64)
	assert.Equal(t, Digest("tok123"), Digest("tok123"))
	assert.NotEqual(t, Digest("tok123"), Digest("tok124"))
}

func TestCreate_StoresDigest(t *testing.T) {
	repo, mock, db := newRepoWithMock(t)
	defer db.Close()

	now := time.Date(2025, 3, 1, 12, 0, 0, 0, time.UTC)
	repo.now = func() time.Time { return now }

	q := `(?s)^\s*INSERT\s+INTO\s+refresh_tokens\s*\(user_id,\s*token_hash,\s*expires_at\)\s*VALUES\s*\(\$1,\s*\$2,\s*\$3\)\s*$`
	mock.ExpectExec(q).
		WithArgs("u1", Digest("tok123"), now.Add(30*time.Minute)).
		WillReturnResult(sqlmock.NewResult(0, 1))

	require.NoError(t, repo.Create(context.Background(), "u1", "tok123", 30*time.Minute))
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestCreate_DBError(t *testing.T) {
	repo, mock, db := newRepoWithMock(t)
	defer db.Close()

	mock.ExpectExec(`INSERT\s+INTO\s+refresh_tokens`).WillReturnError(errors.New("db down"))

	err := repo.Create(context.Background(), "u1", "tok123", time.Hour)
	if err == nil || !regexp.MustCompile(`db error: .*db down`).MatchString(err.Error()) {
		t.Fatalf("expected wrapped db error, got %v", err)
	}
}

func TestFind(t *testing.T) {
	repo, mock, db := newRepoWithMock(t)
	defer db.Close()

	q := `(?s)^\s*SELECT\s+id,\s*user_id,\s*token_hash,\s*expires_at,\s*created_at\s+FROM\s+refresh_tokens\s+WHERE\s+token_hash\s*=\s*\$1\s*$`
	expires := time.Now().Add(10 * time.Minute)
	mock.ExpectQuery(q).
		WithArgs(Digest("tok123")).
		WillReturnRows(sqlmock.NewRows([]string{"id", "user_id", "token_hash", "expires_at", "created_at"}).
			AddRow("1", "u1", Digest("tok123"), expires, time.Now()))

	got, err := repo.Find(context.Background(), "tok123")
	require.NoError(t, err)
	assert.Equal(t, "u1", got.UserID)
	assert.True(t, got.Expires.Equal(expires))

	mock.ExpectQuery(q).WithArgs(Digest("missing")).WillReturnError(sql.ErrNoRows)
	_, err = repo.Find(context.Background(), "missing")
	assert.True(t, errors.Is(err, common.ErrorNotFound))

	mock.ExpectQuery(q).WithArgs(Digest("tok123")).WillReturnError(errors.New("db err"))
	_, err = repo.Find(context.Background(), "tok123")
	assert.ErrorContains(t, err, "db error: db err")
}

func TestDelete(t *testing.T) {
	repo, mock, db := newRepoWithMock(t)
	defer db.Close()

	mock.ExpectExec(`(?s)DELETE\s+FROM\s+refresh_tokens\s+WHERE\s+token_hash\s*=\s*\$1`).
		WithArgs(Digest("tok123")).
		WillReturnResult(sqlmock.NewResult(0, 1))
	require.NoError(t, repo.Delete(context.Background(), "tok123"))

	mock.ExpectExec(`(?s)DELETE\s+FROM\s+refresh_tokens\s+WHERE\s+token_hash`).
		WillReturnError(errors.New("db err"))
	assert.ErrorContains(t, repo.Delete(context.Background(), "tok123"), "db error: db err")
}

func TestDeleteByUser(t *testing.T) {
	repo, mock, db := newRepoWithMock(t)
	defer db.Close()

	mock.ExpectExec(`(?s)DELETE\s+FROM\s+refresh_tokens\s+WHERE\s+user_id\s*=\s*\$1`).
		WithArgs("u1").
		WillReturnResult(sqlmock.NewResult(0, 3))
	require.NoError(t, repo.DeleteByUser(context.Background(), "u1"))
	require.NoError(t, mock.ExpectationsWereMet())
}
