package models

import "time"

// MonthlyBucket is one month of label activity for a user.
type MonthlyBucket struct {
	Month   time.Time
	Labels  int
	Clients int
	Revenue float64
}

// StatusCount is the number of a user's labels in a status.
type StatusCount struct {
	Status string
	Count  int
}

// ActivityKind distinguishes entries of the activity feed.
type ActivityKind string

const (
	ActivityLabelCreated  ActivityKind = "label_created"
	ActivityLabelUpdated  ActivityKind = "label_updated"
	ActivityClientCreated ActivityKind = "client_created"
)

// RecentLabel is a label row used by the activity feed.
type RecentLabel struct {
	ID         string
	TrackingID string
	ClientName string
	Status     string
	CreatedAt  time.Time
	UpdatedAt  time.Time
}

// RecentClient is a client row used by the activity feed.
type RecentClient struct {
	ID        string
	Name      string
	CreatedAt time.Time
}

// Totals are the all-time figures of a user.
type Totals struct {
	Labels  int
	Clients int
	Revenue float64
}
