package services

import (
	"context"
	"database/sql"
	"errors"
	"regexp"
	"testing"
	"time"

	"github.com/dmitrijs2005/colisso/internal/common"
	"github.com/dmitrijs2005/colisso/internal/server/auth"
	"github.com/dmitrijs2005/colisso/internal/server/config"
	"github.com/dmitrijs2005/colisso/internal/server/models"
)

// --- helpers ---

func newUserService(t *testing.T, db *sql.DB, store *memStore) *UserService {
	t.Helper()
	cfg := &config.Config{
		SecretKey:                    "k",
		AccessTokenValidityDuration:  time.Hour,
		RefreshTokenValidityDuration: 2 * time.Hour,
	}
	s := NewUserService(db, &fakeRepoManager{s: store}, cfg)
	s.now = func() time.Time { return store.now }
	return s
}

func registerAlice(t *testing.T, s *UserService) *models.User {
	t.Helper()
	u, err := s.Register(context.Background(), "Alice", "alice@colisso.fr", "correct-horse")
	if err != nil {
		t.Fatalf("Register error: %v", err)
	}
	return u
}

func TestRegister_CreatesUserRole(t *testing.T) {
	db, _ := newSQLMockDB(t)
	store := newMemStore()
	s := newUserService(t, db, store)

	u := registerAlice(t, s)
	if u.ID == "" || u.Role != models.RoleUser || u.Name != "Alice" {
		t.Fatalf("unexpected user: %+v", u)
	}
	if u.PasswordHash == "correct-horse" {
		t.Fatalf("password stored in clear")
	}
	if err := auth.CheckPassword(u.PasswordHash, "correct-horse"); err != nil {
		t.Fatalf("stored hash does not verify: %v", err)
	}
}

func TestCreateUser_Validation(t *testing.T) {
	db, _ := newSQLMockDB(t)
	s := newUserService(t, db, newMemStore())

	cases := []struct {
		name, userName, email, password string
		role                            models.Role
	}{
		{"missing name", " ", "a@b.fr", "longenough", models.RoleUser},
		{"missing email", "A", "", "longenough", models.RoleUser},
		{"invalid email", "A", "not-an-email", "longenough", models.RoleUser},
		{"short password", "A", "a@b.fr", "short", models.RoleUser},
		{"unknown role", "A", "a@b.fr", "longenough", models.Role("ROOT")},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			_, err := s.CreateUser(context.Background(), tc.userName, tc.email, tc.password, tc.role)
			if !errors.Is(err, common.ErrorValidation) {
				t.Fatalf("want validation error, got %v", err)
			}
		})
	}
}

func TestCreateUser_ManagerRole(t *testing.T) {
	db, _ := newSQLMockDB(t)
	s := newUserService(t, db, newMemStore())

	u, err := s.CreateUser(context.Background(), "Boss", "boss@colisso.fr", "longenough", models.RoleManager)
	if err != nil || u.Role != models.RoleManager {
		t.Fatalf("CreateUser: got (%+v, %v)", u, err)
	}
}

func TestCreateUser_DuplicateAndRepoError(t *testing.T) {
	db, _ := newSQLMockDB(t)
	store := newMemStore()
	s := newUserService(t, db, store)
	registerAlice(t, s)

	_, err := s.Register(context.Background(), "Alice 2", "ALICE@colisso.fr", "correct-horse")
	if !errors.Is(err, common.ErrorConflict) {
		t.Fatalf("want conflict, got %v", err)
	}

	store.errs["users.Create"] = errBoom{}
	_, err = s.Register(context.Background(), "Bob", "bob@colisso.fr", "correct-horse")
	if err == nil || !regexp.MustCompile(`error creating user: .*boom`).MatchString(err.Error()) {
		t.Fatalf("expected wrapped error, got %v", err)
	}
}

func TestLogin_Flows(t *testing.T) {
	db, _ := newSQLMockDB(t)
	store := newMemStore()
	s := newUserService(t, db, store)
	alice := registerAlice(t, s)

	// unknown email and wrong password look the same
	if _, err := s.Login(context.Background(), "ghost@colisso.fr", "x"); !errors.Is(err, common.ErrorUnauthorized) {
		t.Fatalf("unknown email → unauthorized, got %v", err)
	}
	if _, err := s.Login(context.Background(), "alice@colisso.fr", "wrong-password"); !errors.Is(err, common.ErrorUnauthorized) {
		t.Fatalf("wrong password → unauthorized, got %v", err)
	}

	pair, err := s.Login(context.Background(), " alice@colisso.fr ", "correct-horse")
	if err != nil || pair.AccessToken == "" || pair.RefreshToken == "" {
		t.Fatalf("Login success: pair=%+v err=%v", pair, err)
	}
	if pair.User.ID != alice.ID {
		t.Fatalf("pair user = %+v", pair.User)
	}
	if _, ok := store.tokens[pair.RefreshToken]; !ok {
		t.Fatalf("refresh token not stored")
	}

	claims, err := auth.ParseToken(pair.AccessToken, []byte("k"))
	if err != nil {
		t.Fatalf("ParseToken error: %v", err)
	}
	if claims.UserID != alice.ID || claims.Role != string(models.RoleUser) {
		t.Fatalf("claims = %+v", claims)
	}

	store.errs["users.GetByEmail"] = errBoom{}
	if _, err := s.Login(context.Background(), "alice@colisso.fr", "correct-horse"); !errors.Is(err, common.ErrorInternal) {
		t.Fatalf("repo failure → ErrorInternal, got %v", err)
	}
}

func TestLogin_TokenStoreFailure(t *testing.T) {
	db, _ := newSQLMockDB(t)
	store := newMemStore()
	s := newUserService(t, db, store)
	registerAlice(t, s)

	store.errs["tokens.Create"] = errBoom{}
	if _, err := s.Login(context.Background(), "alice@colisso.fr", "correct-horse"); !errors.Is(err, common.ErrorInternal) {
		t.Fatalf("want ErrorInternal, got %v", err)
	}
}

func TestRefreshToken_Success(t *testing.T) {
	db, mock := newSQLMockDB(t)
	store := newMemStore()
	s := newUserService(t, db, store)
	registerAlice(t, s)

	pair, err := s.Login(context.Background(), "alice@colisso.fr", "correct-horse")
	if err != nil {
		t.Fatalf("Login error: %v", err)
	}

	mock.ExpectBegin()
	mock.ExpectCommit()

	next, err := s.RefreshToken(context.Background(), pair.RefreshToken)
	if err != nil {
		t.Fatalf("RefreshToken error: %v", err)
	}
	if next.AccessToken == "" || next.RefreshToken == "" || next.RefreshToken == pair.RefreshToken {
		t.Fatalf("tokens not rotated: %+v", next)
	}
	if _, ok := store.tokens[pair.RefreshToken]; ok {
		t.Fatalf("old refresh token still valid")
	}
	if _, ok := store.tokens[next.RefreshToken]; !ok {
		t.Fatalf("new refresh token not stored")
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatalf("sql expectations: %v", err)
	}
}

func TestRefreshToken_Unknown(t *testing.T) {
	db, _ := newSQLMockDB(t)
	s := newUserService(t, db, newMemStore())

	_, err := s.RefreshToken(context.Background(), "nope")
	if !errors.Is(err, common.ErrorUnauthorized) {
		t.Fatalf("want ErrorUnauthorized, got %v", err)
	}
}

func TestRefreshToken_Expired(t *testing.T) {
	db, _ := newSQLMockDB(t)
	store := newMemStore()
	store.tokens["r"] = &models.RefreshToken{UserID: "u1", Expires: store.now.Add(-time.Minute)}
	s := newUserService(t, db, store)

	_, err := s.RefreshToken(context.Background(), "r")
	if !errors.Is(err, common.ErrRefreshTokenExpired) {
		t.Fatalf("want ErrRefreshTokenExpired, got %v", err)
	}
}

func TestRefreshToken_FindErr(t *testing.T) {
	db, _ := newSQLMockDB(t)
	store := newMemStore()
	store.errs["tokens.Find"] = errBoom{}
	s := newUserService(t, db, store)

	_, err := s.RefreshToken(context.Background(), "r")
	if err == nil || !regexp.MustCompile(`error searching refresh token: .*boom`).MatchString(err.Error()) {
		t.Fatalf("expected wrapped find error, got %v", err)
	}
}

func TestRefreshToken_DeleteErr(t *testing.T) {
	db, mock := newSQLMockDB(t)
	store := newMemStore()
	store.tokens["r"] = &models.RefreshToken{UserID: "u1", Expires: store.now.Add(10 * time.Minute)}
	store.errs["tokens.Delete"] = errBoom{}
	s := newUserService(t, db, store)

	mock.ExpectBegin()
	mock.ExpectRollback()

	_, err := s.RefreshToken(context.Background(), "r")
	if err == nil || !regexp.MustCompile(`error deleting refresh token: .*boom`).MatchString(err.Error()) {
		t.Fatalf("expected wrapped delete error, got %v", err)
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatalf("sql expectations: %v", err)
	}
}

func TestRefreshToken_UserGone(t *testing.T) {
	db, mock := newSQLMockDB(t)
	store := newMemStore()
	store.tokens["r"] = &models.RefreshToken{UserID: "deleted", Expires: store.now.Add(10 * time.Minute)}
	s := newUserService(t, db, store)

	mock.ExpectBegin()
	mock.ExpectRollback()

	_, err := s.RefreshToken(context.Background(), "r")
	if !errors.Is(err, common.ErrorNotFound) {
		t.Fatalf("want wrapped not found, got %v", err)
	}
}

func TestLogout(t *testing.T) {
	db, _ := newSQLMockDB(t)
	store := newMemStore()
	store.tokens["r"] = &models.RefreshToken{UserID: "u1"}
	s := newUserService(t, db, store)

	if err := s.Logout(context.Background(), ""); err != nil {
		t.Fatalf("empty token: %v", err)
	}
	if err := s.Logout(context.Background(), "r"); err != nil {
		t.Fatalf("Logout error: %v", err)
	}
	if len(store.tokens) != 0 {
		t.Fatalf("token not revoked")
	}

	store.errs["tokens.Delete"] = errBoom{}
	if err := s.Logout(context.Background(), "r"); err == nil {
		t.Fatalf("expected error")
	}
}
