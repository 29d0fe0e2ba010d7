package services

import (
	"context"
	"database/sql"
	"fmt"
	"math"
	"sort"
	"time"

	"github.com/dmitrijs2005/colisso/internal/lifecycle"
	"github.com/dmitrijs2005/colisso/internal/server/models"
	"github.com/dmitrijs2005/colisso/internal/server/repositories/repomanager"
)

const (
	chartMonths       = 6
	activityPerSource = 5
	activityLimit     = 10

	clientActivityColor = "#0088FE"
)

var frenchMonths = [...]string{"janv.", "févr.", "mars", "avr.", "mai", "juin",
	"juil.", "août", "sept.", "oct.", "nov.", "déc."}

// MonthName is the short French name of m.
func MonthName(m time.Month) string {
	return frenchMonths[m-1]
}

type ChartPoint struct {
	Month   string  `json:"month"`
	Year    int     `json:"year"`
	Labels  int     `json:"labels"`
	Clients int     `json:"clients"`
	Revenue float64 `json:"revenue"`
}

type StatusSlice struct {
	Status lifecycle.Status `json:"status"`
	Name   string           `json:"name"`
	Value  int              `json:"value"`
	Color  string           `json:"color"`
}

type DashboardStats struct {
	TotalLabels        int           `json:"totalLabels"`
	TotalClients       int           `json:"totalClients"`
	LabelsThisMonth    int           `json:"labelsThisMonth"`
	ClientsThisMonth   int           `json:"clientsThisMonth"`
	Revenue            float64       `json:"revenue"`
	RevenueThisMonth   float64       `json:"revenueThisMonth"`
	LabelGrowth        int           `json:"labelGrowth"`
	ClientGrowth       int           `json:"clientGrowth"`
	RevenueGrowth      int           `json:"revenueGrowth"`
	StatusDistribution []StatusSlice `json:"statusDistribution"`
}

type ActivityItem struct {
	ID          string              `json:"id"`
	Kind        models.ActivityKind `json:"type"`
	Title       string              `json:"title"`
	Description string              `json:"description"`
	Timestamp   time.Time           `json:"timestamp"`
	Status      string              `json:"status,omitempty"`
	Color       string              `json:"color"`
}

// DashboardService computes the dashboard figures of one user on demand.
type DashboardService struct {
	db          *sql.DB
	repomanager repomanager.RepositoryManager
	now         func() time.Time
}

func NewDashboardService(db *sql.DB, m repomanager.RepositoryManager) *DashboardService {
	return &DashboardService{db: db, repomanager: m, now: time.Now}
}

func monthStart(t time.Time) time.Time {
	t = t.UTC()
	return time.Date(t.Year(), t.Month(), 1, 0, 0, 0, 0, time.UTC)
}

// Growth is the rounded percentage change from previous to current. A zero
// previous value counts as 100% growth when current is positive, else 0.
func Growth(current, previous float64) int {
	if previous == 0 {
		if current > 0 {
			return 100
		}
		return 0
	}
	return int(math.Round((current - previous) / previous * 100))
}

// fillMonths lays buckets onto the n months ending with the month of now,
// oldest first, with zeroes for months without labels.
func fillMonths(buckets []models.MonthlyBucket, now time.Time, n int) []models.MonthlyBucket {
	byMonth := make(map[time.Time]models.MonthlyBucket, len(buckets))
	for _, b := range buckets {
		byMonth[monthStart(b.Month)] = b
	}

	first := monthStart(now).AddDate(0, -(n - 1), 0)
	out := make([]models.MonthlyBucket, n)
	for i := range out {
		m := first.AddDate(0, i, 0)
		b := byMonth[m]
		b.Month = m
		out[i] = b
	}
	return out
}

func (s *DashboardService) months(ctx context.Context, userID string, n int) ([]models.MonthlyBucket, error) {
	now := s.now()
	since := monthStart(now).AddDate(0, -(n - 1), 0)
	buckets, err := s.repomanager.Dashboard(s.db).MonthlyBuckets(ctx, userID, since)
	if err != nil {
		return nil, fmt.Errorf("monthly buckets: %w", err)
	}
	return fillMonths(buckets, now, n), nil
}

// Charts returns the trailing six months ending with the current one.
func (s *DashboardService) Charts(ctx context.Context, userID string) ([]ChartPoint, error) {
	months, err := s.months(ctx, userID, chartMonths)
	if err != nil {
		return nil, err
	}
	out := make([]ChartPoint, len(months))
	for i, m := range months {
		out[i] = ChartPoint{
			Month:   MonthName(m.Month.Month()),
			Year:    m.Month.Year(),
			Labels:  m.Labels,
			Clients: m.Clients,
			Revenue: m.Revenue,
		}
	}
	return out, nil
}

// statusDistribution orders counts by lifecycle order and drops empty
// statuses. Unknown statuses keep the default colour and go last.
func statusDistribution(counts []models.StatusCount) []StatusSlice {
	byStatus := make(map[lifecycle.Status]int, len(counts))
	for _, c := range counts {
		byStatus[lifecycle.Status(c.Status)] += c.Count
	}

	out := make([]StatusSlice, 0, len(byStatus))
	for _, st := range lifecycle.All() {
		if n := byStatus[st]; n > 0 {
			out = append(out, StatusSlice{Status: st, Name: st.DisplayName(), Value: n, Color: st.Color()})
			delete(byStatus, st)
		}
	}
	rest := make([]StatusSlice, 0, len(byStatus))
	for st, n := range byStatus {
		if n > 0 {
			rest = append(rest, StatusSlice{Status: st, Name: st.DisplayName(), Value: n, Color: st.Color()})
		}
	}
	sort.Slice(rest, func(i, j int) bool { return rest[i].Status < rest[j].Status })
	return append(out, rest...)
}

func (s *DashboardService) Stats(ctx context.Context, userID string) (*DashboardStats, error) {
	repo := s.repomanager.Dashboard(s.db)

	totals, err := repo.Totals(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("totals: %w", err)
	}
	counts, err := repo.StatusCounts(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("status counts: %w", err)
	}
	months, err := s.months(ctx, userID, 2)
	if err != nil {
		return nil, err
	}
	prev, cur := months[0], months[1]

	return &DashboardStats{
		TotalLabels:        totals.Labels,
		TotalClients:       totals.Clients,
		LabelsThisMonth:    cur.Labels,
		ClientsThisMonth:   cur.Clients,
		Revenue:            totals.Revenue,
		RevenueThisMonth:   cur.Revenue,
		LabelGrowth:        Growth(float64(cur.Labels), float64(prev.Labels)),
		ClientGrowth:       Growth(float64(cur.Clients), float64(prev.Clients)),
		RevenueGrowth:      Growth(cur.Revenue, prev.Revenue),
		StatusDistribution: statusDistribution(counts),
	}, nil
}

// mergeActivity interleaves label and client events newest first, capped
// at limit. A label whose timestamps are equal was never edited.
func mergeActivity(labels []models.RecentLabel, clients []models.RecentClient, limit int) []ActivityItem {
	items := make([]ActivityItem, 0, len(labels)+len(clients))
	for _, l := range labels {
		st := lifecycle.Status(l.Status)
		item := ActivityItem{
			ID:          l.ID,
			Kind:        models.ActivityLabelUpdated,
			Title:       "Étiquette " + l.TrackingID,
			Description: fmt.Sprintf("%s · %s", l.ClientName, st.DisplayName()),
			Timestamp:   l.UpdatedAt,
			Status:      l.Status,
			Color:       st.Color(),
		}
		if l.CreatedAt.Equal(l.UpdatedAt) {
			item.Kind = models.ActivityLabelCreated
		}
		items = append(items, item)
	}
	for _, c := range clients {
		items = append(items, ActivityItem{
			ID:          c.ID,
			Kind:        models.ActivityClientCreated,
			Title:       "Nouveau client",
			Description: c.Name,
			Timestamp:   c.CreatedAt,
			Color:       clientActivityColor,
		})
	}

	sort.SliceStable(items, func(i, j int) bool { return items[i].Timestamp.After(items[j].Timestamp) })
	if len(items) > limit {
		items = items[:limit]
	}
	return items
}

func (s *DashboardService) Activity(ctx context.Context, userID string) ([]ActivityItem, error) {
	repo := s.repomanager.Dashboard(s.db)

	labels, err := repo.RecentLabels(ctx, userID, activityPerSource)
	if err != nil {
		return nil, fmt.Errorf("recent labels: %w", err)
	}
	clients, err := repo.RecentClients(ctx, userID, activityPerSource)
	if err != nil {
		return nil, fmt.Errorf("recent clients: %w", err)
	}
	return mergeActivity(labels, clients, activityLimit), nil
}
