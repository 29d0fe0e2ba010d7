// Package dashboard runs the read-only aggregate queries behind the
// dashboard. Every query is scoped to the labels created by one user.
package dashboard

import (
	"context"
	"time"

	"github.com/dmitrijs2005/colisso/internal/server/models"
)

type Repository interface {
	// MonthlyBuckets returns one row per UTC month, from the month of since
	// onwards, that has at least one label. Empty months are omitted.
	MonthlyBuckets(ctx context.Context, userID string, since time.Time) ([]models.MonthlyBucket, error)
	StatusCounts(ctx context.Context, userID string) ([]models.StatusCount, error)
	Totals(ctx context.Context, userID string) (models.Totals, error)
	RecentLabels(ctx context.Context, userID string, limit int) ([]models.RecentLabel, error)
	RecentClients(ctx context.Context, userID string, limit int) ([]models.RecentClient, error)
}
