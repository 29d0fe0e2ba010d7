package dashboard

import (
	"context"
	"fmt"
	"time"

	"github.com/dmitrijs2005/colisso/internal/dbx"
	"github.com/dmitrijs2005/colisso/internal/server/models"
)

type PostgresRepository struct {
	db dbx.DBTX
}

func NewPostgresRepository(db dbx.DBTX) *PostgresRepository {
	return &PostgresRepository{db: db}
}

func (r *PostgresRepository) MonthlyBuckets(ctx context.Context, userID string, since time.Time) ([]models.MonthlyBucket, error) {
	query := `
		SELECT date_trunc('month', created_at AT TIME ZONE 'UTC') AS month,
		       COUNT(*), COUNT(DISTINCT client_id), COALESCE(SUM(cost), 0)
		FROM labels
		WHERE user_id = $1 AND created_at >= $2
		GROUP BY month
		ORDER BY month
	`
	rows, err := r.db.QueryContext(ctx, query, userID, since.UTC())
	if err != nil {
		return nil, fmt.Errorf("db error: %w", err)
	}
	defer rows.Close()

	out := make([]models.MonthlyBucket, 0)
	for rows.Next() {
		var b models.MonthlyBucket
		if err := rows.Scan(&b.Month, &b.Labels, &b.Clients, &b.Revenue); err != nil {
			return nil, fmt.Errorf("db error: %w", err)
		}
		// timestamp without time zone comes back as UTC wall time
		b.Month = time.Date(b.Month.Year(), b.Month.Month(), 1, 0, 0, 0, 0, time.UTC)
		out = append(out, b)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("db error: %w", err)
	}
	return out, nil
}

func (r *PostgresRepository) StatusCounts(ctx context.Context, userID string) ([]models.StatusCount, error) {
	query := `SELECT status, COUNT(*) FROM labels WHERE user_id = $1 GROUP BY status`

	rows, err := r.db.QueryContext(ctx, query, userID)
	if err != nil {
		return nil, fmt.Errorf("db error: %w", err)
	}
	defer rows.Close()

	out := make([]models.StatusCount, 0)
	for rows.Next() {
		var sc models.StatusCount
		if err := rows.Scan(&sc.Status, &sc.Count); err != nil {
			return nil, fmt.Errorf("db error: %w", err)
		}
		out = append(out, sc)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("db error: %w", err)
	}
	return out, nil
}

func (r *PostgresRepository) Totals(ctx context.Context, userID string) (models.Totals, error) {
	query := `SELECT COUNT(*), COUNT(DISTINCT client_id), COALESCE(SUM(cost), 0) FROM labels WHERE user_id = $1`

	var t models.Totals
	if err := r.db.QueryRowContext(ctx, query, userID).Scan(&t.Labels, &t.Clients, &t.Revenue); err != nil {
		return models.Totals{}, fmt.Errorf("db error: %w", err)
	}
	return t, nil
}

func (r *PostgresRepository) RecentLabels(ctx context.Context, userID string, limit int) ([]models.RecentLabel, error) {
	query := `
		SELECT l.id, l.tracking_id, c.name, l.status, l.created_at, l.updated_at
		FROM labels l
		JOIN clients c ON c.id = l.client_id
		WHERE l.user_id = $1
		ORDER BY l.updated_at DESC
		LIMIT $2
	`
	rows, err := r.db.QueryContext(ctx, query, userID, limit)
	if err != nil {
		return nil, fmt.Errorf("db error: %w", err)
	}
	defer rows.Close()

	out := make([]models.RecentLabel, 0, limit)
	for rows.Next() {
		var l models.RecentLabel
		if err := rows.Scan(&l.ID, &l.TrackingID, &l.ClientName, &l.Status, &l.CreatedAt, &l.UpdatedAt); err != nil {
			return nil, fmt.Errorf("db error: %w", err)
		}
		out = append(out, l)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("db error: %w", err)
	}
	return out, nil
}

func (r *PostgresRepository) RecentClients(ctx context.Context, userID string, limit int) ([]models.RecentClient, error) {
	query := `
		SELECT c.id, c.name, c.created_at
		FROM clients c
		WHERE EXISTS (SELECT 1 FROM labels l WHERE l.client_id = c.id AND l.user_id = $1)
		ORDER BY c.created_at DESC
		LIMIT $2
	`
	rows, err := r.db.QueryContext(ctx, query, userID, limit)
	if err != nil {
		return nil, fmt.Errorf("db error: %w", err)
	}
	defer rows.Close()

	out := make([]models.RecentClient, 0, limit)
	for rows.Next() {
		var c models.RecentClient
		if err := rows.Scan(&c.ID, &c.Name, &c.CreatedAt); err != nil {
			return nil, fmt.Errorf("db error: %w", err)
		}
		out = append(out, c)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("db error: %w", err)
	}
	return out, nil
}
