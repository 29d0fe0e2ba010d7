package services

import (
	"context"
	"database/sql"
	"fmt"
	"strings"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/dmitrijs2005/colisso/internal/common"
	"github.com/dmitrijs2005/colisso/internal/dbx"
	"github.com/dmitrijs2005/colisso/internal/lifecycle"
	"github.com/dmitrijs2005/colisso/internal/logging"
	"github.com/dmitrijs2005/colisso/internal/server/models"
	"github.com/dmitrijs2005/colisso/internal/server/repositories/clients"
	"github.com/dmitrijs2005/colisso/internal/server/repositories/dashboard"
	"github.com/dmitrijs2005/colisso/internal/server/repositories/labels"
	"github.com/dmitrijs2005/colisso/internal/server/repositories/packages"
	"github.com/dmitrijs2005/colisso/internal/server/repositories/refreshtokens"
	"github.com/dmitrijs2005/colisso/internal/server/repositories/users"
)

type errBoom struct{}

func (errBoom) Error() string { return "boom" }

var storeNow = time.Date(2025, 3, 15, 10, 0, 0, 0, time.UTC)

func newSQLMockDB(t *testing.T) (*sql.DB, sqlmock.Sqlmock) {
	t.Helper()
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("sqlmock.New error: %v", err)
	}
	t.Cleanup(func() { _ = db.Close() })
	return db, mock
}

// memStore backs the in-memory repositories. Slices keep insertion order.
type memStore struct {
	seq      int
	now      time.Time
	users    []*models.User
	tokens   map[string]*models.RefreshToken
	clients  []*models.Client
	labels   []*models.Label
	packages []*models.Package
	dash     fakeDashboardRepo

	// errs fails the named operation, e.g. "labels.Update".
	errs map[string]error
	// labelCreateErrs is consumed one entry per labels.Create call.
	labelCreateErrs []error
}

func newMemStore() *memStore {
	return &memStore{
		now:    storeNow,
		tokens: map[string]*models.RefreshToken{},
		errs:   map[string]error{},
	}
}

func (s *memStore) nextID(kind string) string {
	s.seq++
	return fmt.Sprintf("%s-%d", kind, s.seq)
}

func clone[T any](v *T) *T {
	c := *v
	return &c
}

func (s *memStore) seedClient(name string) *models.Client {
	c := &models.Client{ID: s.nextID("client"), Name: name, Address: "1 rue de la Paix", Country: "France", CreatedAt: s.now, UpdatedAt: s.now}
	s.clients = append(s.clients, c)
	return clone(c)
}

func (s *memStore) seedLabel(clientID string, mutate func(l *models.Label)) *models.Label {
	l := &models.Label{
		ID:            s.nextID("label"),
		TrackingID:    fmt.Sprintf("FRATEST%03d", s.seq),
		ClientID:      clientID,
		SenderName:    "Colisso",
		SenderCity:    "Marseille",
		SenderPhone:   "+33760248507",
		RecipientName: "Awa Diop",
		RecipientCity: "Dakar",
		Destination:   "Dakar, Sénégal",
		Weight:        2,
		Length:        30,
		Width:         20,
		Height:        10,
		ServiceCode:   models.DefaultServiceCode,
		ServiceType:   models.DefaultServiceType,
		PaymentStatus: lifecycle.Paid,
		Status:        lifecycle.Draft,
		CreatedAt:     s.now,
		UpdatedAt:     s.now,
	}
	if mutate != nil {
		mutate(l)
	}
	s.labels = append(s.labels, l)
	return clone(l)
}

func (s *memStore) seedPackage(labelID string, weight float64) *models.Package {
	p := &models.Package{ID: s.nextID("pkg"), LabelID: labelID, Weight: weight, Length: 30, Width: 20, Height: 10, CreatedAt: s.now, UpdatedAt: s.now}
	s.packages = append(s.packages, p)
	return clone(p)
}

func (s *memStore) label(id string) *models.Label {
	for _, l := range s.labels {
		if l.ID == id {
			return l
		}
	}
	return nil
}

func (s *memStore) labelPackages(labelID string) []models.Package {
	out := []models.Package{}
	for _, p := range s.packages {
		if p.LabelID == labelID {
			out = append(out, *p)
		}
	}
	return out
}

// --- users ---

type memUsers struct{ s *memStore }

func (r memUsers) Create(_ context.Context, u *models.User) (*models.User, error) {
	if err := r.s.errs["users.Create"]; err != nil {
		return nil, err
	}
	for _, x := range r.s.users {
		if strings.EqualFold(x.Email, u.Email) {
			return nil, common.ErrorConflict
		}
	}
	c := clone(u)
	c.ID, c.CreatedAt, c.UpdatedAt = r.s.nextID("user"), r.s.now, r.s.now
	r.s.users = append(r.s.users, c)
	return clone(c), nil
}

func (r memUsers) GetByEmail(_ context.Context, email string) (*models.User, error) {
	if err := r.s.errs["users.GetByEmail"]; err != nil {
		return nil, err
	}
	for _, u := range r.s.users {
		if strings.EqualFold(u.Email, email) {
			return clone(u), nil
		}
	}
	return nil, common.ErrorNotFound
}

func (r memUsers) GetByID(_ context.Context, id string) (*models.User, error) {
	if err := r.s.errs["users.GetByID"]; err != nil {
		return nil, err
	}
	for _, u := range r.s.users {
		if u.ID == id {
			return clone(u), nil
		}
	}
	return nil, common.ErrorNotFound
}

// --- refresh tokens ---

type memRefreshTokens struct{ s *memStore }

func (r memRefreshTokens) Create(_ context.Context, userID string, token string, validity time.Duration) error {
	if err := r.s.errs["tokens.Create"]; err != nil {
		return err
	}
	r.s.tokens[token] = &models.RefreshToken{ID: r.s.nextID("rt"), UserID: userID, TokenHash: token, Expires: r.s.now.Add(validity), CreatedAt: r.s.now}
	return nil
}

func (r memRefreshTokens) Find(_ context.Context, token string) (*models.RefreshToken, error) {
	if err := r.s.errs["tokens.Find"]; err != nil {
		return nil, err
	}
	t, ok := r.s.tokens[token]
	if !ok {
		return nil, common.ErrorNotFound
	}
	return clone(t), nil
}

func (r memRefreshTokens) Delete(_ context.Context, token string) error {
	if err := r.s.errs["tokens.Delete"]; err != nil {
		return err
	}
	delete(r.s.tokens, token)
	return nil
}

func (r memRefreshTokens) DeleteByUser(_ context.Context, userID string) error {
	for k, t := range r.s.tokens {
		if t.UserID == userID {
			delete(r.s.tokens, k)
		}
	}
	return nil
}

// --- clients ---

type memClients struct{ s *memStore }

func (r memClients) Create(_ context.Context, c *models.Client) (*models.Client, error) {
	if err := r.s.errs["clients.Create"]; err != nil {
		return nil, err
	}
	n := clone(c)
	n.ID, n.CreatedAt, n.UpdatedAt = r.s.nextID("client"), r.s.now, r.s.now
	r.s.clients = append(r.s.clients, n)
	return clone(n), nil
}

func (r memClients) Get(ctx context.Context, id string) (*models.Client, error) {
	if err := r.s.errs["clients.Get"]; err != nil {
		return nil, err
	}
	for _, c := range r.s.clients {
		if c.ID == id {
			out := clone(c)
			out.LabelCount, _ = r.CountLabels(ctx, id)
			return out, nil
		}
	}
	return nil, common.ErrorNotFound
}

func (r memClients) List(_ context.Context) ([]models.Client, error) {
	out := []models.Client{}
	for _, c := range r.s.clients {
		out = append(out, *c)
	}
	return out, nil
}

func (r memClients) Update(_ context.Context, c *models.Client) (*models.Client, error) {
	for i, x := range r.s.clients {
		if x.ID == c.ID {
			n := clone(c)
			n.UpdatedAt = r.s.now.Add(time.Minute)
			r.s.clients[i] = n
			return clone(n), nil
		}
	}
	return nil, common.ErrorNotFound
}

func (r memClients) Delete(_ context.Context, id string) error {
	for i, x := range r.s.clients {
		if x.ID == id {
			r.s.clients = append(r.s.clients[:i], r.s.clients[i+1:]...)
			return nil
		}
	}
	return common.ErrorNotFound
}

func (r memClients) ExistsByName(_ context.Context, name string, excludeID string) (bool, error) {
	for _, c := range r.s.clients {
		if c.ID != excludeID && strings.EqualFold(c.Name, name) {
			return true, nil
		}
	}
	return false, nil
}

func (r memClients) CountLabels(_ context.Context, id string) (int, error) {
	if err := r.s.errs["clients.CountLabels"]; err != nil {
		return 0, err
	}
	n := 0
	for _, l := range r.s.labels {
		if l.ClientID == id {
			n++
		}
	}
	return n, nil
}

// --- labels ---

type memLabels struct{ s *memStore }

func (r memLabels) Create(_ context.Context, l *models.Label) (*models.Label, error) {
	if len(r.s.labelCreateErrs) > 0 {
		err := r.s.labelCreateErrs[0]
		r.s.labelCreateErrs = r.s.labelCreateErrs[1:]
		if err != nil {
			return nil, err
		}
	}
	for _, x := range r.s.labels {
		if x.TrackingID == l.TrackingID {
			return nil, common.ErrTrackingIDCollision
		}
	}
	n := clone(l)
	n.ID, n.CreatedAt, n.UpdatedAt = r.s.nextID("label"), r.s.now, r.s.now
	r.s.labels = append(r.s.labels, n)
	return clone(n), nil
}

func (r memLabels) Get(_ context.Context, id string) (*models.Label, error) {
	if err := r.s.errs["labels.Get"]; err != nil {
		return nil, err
	}
	if l := r.s.label(id); l != nil {
		return clone(l), nil
	}
	return nil, common.ErrorNotFound
}

func (r memLabels) GetByTrackingID(_ context.Context, trackingID string) (*models.Label, error) {
	for _, l := range r.s.labels {
		if l.TrackingID == trackingID {
			return clone(l), nil
		}
	}
	return nil, common.ErrorNotFound
}

func (r memLabels) List(_ context.Context, f models.LabelFilter) ([]models.Label, error) {
	out := []models.Label{}
	for i := len(r.s.labels) - 1; i >= 0; i-- {
		if l := r.s.labels[i]; f.Status == "" || l.Status == f.Status {
			out = append(out, *l)
		}
	}
	return out, nil
}

func (r memLabels) ListByClient(_ context.Context, clientID string) ([]models.Label, error) {
	out := []models.Label{}
	for i := len(r.s.labels) - 1; i >= 0; i-- {
		if l := r.s.labels[i]; l.ClientID == clientID {
			out = append(out, *l)
		}
	}
	return out, nil
}

func (r memLabels) Update(_ context.Context, l *models.Label) (*models.Label, error) {
	if err := r.s.errs["labels.Update"]; err != nil {
		return nil, err
	}
	for i, x := range r.s.labels {
		if x.ID == l.ID {
			n := clone(l)
			n.UpdatedAt = r.s.now.Add(time.Minute)
			r.s.labels[i] = n
			return clone(n), nil
		}
	}
	return nil, common.ErrorNotFound
}

func (r memLabels) UpdateStatus(_ context.Context, id string, status lifecycle.Status, payment lifecycle.PaymentStatus) error {
	if err := r.s.errs["labels.UpdateStatus"]; err != nil {
		return err
	}
	l := r.s.label(id)
	if l == nil {
		return common.ErrorNotFound
	}
	l.Status, l.PaymentStatus = status, payment
	return nil
}

func (r memLabels) SetArchiveKey(_ context.Context, id string, key string) error {
	if err := r.s.errs["labels.SetArchiveKey"]; err != nil {
		return err
	}
	l := r.s.label(id)
	if l == nil {
		return common.ErrorNotFound
	}
	l.ArchiveKey = &key
	return nil
}

func (r memLabels) Delete(_ context.Context, id string) error {
	for i, x := range r.s.labels {
		if x.ID == id {
			r.s.labels = append(r.s.labels[:i], r.s.labels[i+1:]...)
			kept := r.s.packages[:0]
			for _, p := range r.s.packages {
				if p.LabelID != id {
					kept = append(kept, p)
				}
			}
			r.s.packages = kept
			return nil
		}
	}
	return common.ErrorNotFound
}

// --- packages ---

type memPackages struct{ s *memStore }

func (r memPackages) Create(_ context.Context, p *models.Package) (*models.Package, error) {
	if err := r.s.errs["packages.Create"]; err != nil {
		return nil, err
	}
	if r.s.label(p.LabelID) == nil {
		return nil, fmt.Errorf("label does not exist: %w", common.ErrorNotFound)
	}
	n := clone(p)
	n.ID, n.CreatedAt, n.UpdatedAt = r.s.nextID("pkg"), r.s.now, r.s.now
	r.s.packages = append(r.s.packages, n)
	return clone(n), nil
}

func (r memPackages) Get(_ context.Context, id string) (*models.Package, error) {
	for _, p := range r.s.packages {
		if p.ID == id {
			return clone(p), nil
		}
	}
	return nil, common.ErrorNotFound
}

func (r memPackages) ListByLabel(_ context.Context, labelID string) ([]models.Package, error) {
	return r.s.labelPackages(labelID), nil
}

func (r memPackages) Update(_ context.Context, p *models.Package) (*models.Package, error) {
	for i, x := range r.s.packages {
		if x.ID == p.ID {
			n := clone(p)
			n.UpdatedAt = r.s.now.Add(time.Minute)
			r.s.packages[i] = n
			return clone(n), nil
		}
	}
	return nil, common.ErrorNotFound
}

func (r memPackages) Delete(_ context.Context, id string) error {
	for i, x := range r.s.packages {
		if x.ID == id {
			r.s.packages = append(r.s.packages[:i], r.s.packages[i+1:]...)
			return nil
		}
	}
	return common.ErrorNotFound
}

// --- dashboard ---

type fakeDashboardRepo struct {
	buckets []models.MonthlyBucket
	counts  []models.StatusCount
	totals  models.Totals
	recentL []models.RecentLabel
	recentC []models.RecentClient
	err     error

	gotUser  string
	gotSince time.Time
}

func (f *fakeDashboardRepo) MonthlyBuckets(_ context.Context, userID string, since time.Time) ([]models.MonthlyBucket, error) {
	f.gotUser, f.gotSince = userID, since
	return f.buckets, f.err
}

func (f *fakeDashboardRepo) StatusCounts(context.Context, string) ([]models.StatusCount, error) {
	return f.counts, f.err
}

func (f *fakeDashboardRepo) Totals(context.Context, string) (models.Totals, error) {
	return f.totals, f.err
}

func (f *fakeDashboardRepo) RecentLabels(_ context.Context, _ string, limit int) ([]models.RecentLabel, error) {
	if len(f.recentL) > limit {
		return f.recentL[:limit], f.err
	}
	return f.recentL, f.err
}

func (f *fakeDashboardRepo) RecentClients(_ context.Context, _ string, limit int) ([]models.RecentClient, error) {
	if len(f.recentC) > limit {
		return f.recentC[:limit], f.err
	}
	return f.recentC, f.err
}

// --- manager ---

type fakeRepoManager struct{ s *memStore }

func (m *fakeRepoManager) RunMigrations(context.Context, *sql.DB) error { return nil }
func (m *fakeRepoManager) MigrationVersion(context.Context, *sql.DB) (int64, error) {
	return 1, nil
}
func (m *fakeRepoManager) Users(dbx.DBTX) users.Repository { return memUsers{m.s} }
func (m *fakeRepoManager) RefreshTokens(dbx.DBTX) refreshtokens.Repository {
	return memRefreshTokens{m.s}
}
func (m *fakeRepoManager) Clients(dbx.DBTX) clients.Repository     { return memClients{m.s} }
func (m *fakeRepoManager) Labels(dbx.DBTX) labels.Repository       { return memLabels{m.s} }
func (m *fakeRepoManager) Packages(dbx.DBTX) packages.Repository   { return memPackages{m.s} }
func (m *fakeRepoManager) Dashboard(dbx.DBTX) dashboard.Repository { return &m.s.dash }

// --- logger ---

type logEntry struct {
	level string
	msg   string
	args  []any
}

// recordingLogger keeps every entry, including those of its children.
type recordingLogger struct {
	entries *[]logEntry
}

func newRecordingLogger() recordingLogger {
	return recordingLogger{entries: &[]logEntry{}}
}

func (l recordingLogger) add(level, msg string, args []any) {
	*l.entries = append(*l.entries, logEntry{level: level, msg: msg, args: args})
}

func (l recordingLogger) Debug(_ context.Context, msg string, args ...any) { l.add("debug", msg, args) }
func (l recordingLogger) Info(_ context.Context, msg string, args ...any)  { l.add("info", msg, args) }
func (l recordingLogger) Warn(_ context.Context, msg string, args ...any)  { l.add("warn", msg, args) }
func (l recordingLogger) Error(_ context.Context, msg string, args ...any) { l.add("error", msg, args) }
func (l recordingLogger) With(...any) logging.Logger                       { return l }

func (l recordingLogger) count(level, msg string) int {
	n := 0
	for _, e := range *l.entries {
		if e.level == level && e.msg == msg {
			n++
		}
	}
	return n
}
