package labels

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"

	"github.com/dmitrijs2005/colisso/internal/common"
	"github.com/dmitrijs2005/colisso/internal/dbx"
	"github.com/dmitrijs2005/colisso/internal/lifecycle"
	"github.com/dmitrijs2005/colisso/internal/server/models"
	"github.com/google/uuid"
)

const trackingConstraint = "labels_tracking_id_key"

// MaxListLimit caps a single page of List.
const MaxListLimit = 500

const selectColumns = `id, tracking_id, client_id, user_id, sender_name, sender_city, sender_phone,
		recipient_name, recipient_city, recipient_phone, destination,
		weight, length, width, height, service_code, service_type, cost,
		payment_status, status, archive_key, created_at, updated_at`

type PostgresRepository struct {
	db dbx.DBTX
}

func NewPostgresRepository(db dbx.DBTX) *PostgresRepository {
	return &PostgresRepository{db: db}
}

type scanner interface {
	Scan(dest ...any) error
}

func scanLabel(s scanner) (*models.Label, error) {
	l := &models.Label{}
	var payment, status string
	err := s.Scan(&l.ID, &l.TrackingID, &l.ClientID, &l.UserID, &l.SenderName, &l.SenderCity, &l.SenderPhone,
		&l.RecipientName, &l.RecipientCity, &l.RecipientPhone, &l.Destination,
		&l.Weight, &l.Length, &l.Width, &l.Height, &l.ServiceCode, &l.ServiceType, &l.Cost,
		&payment, &status, &l.ArchiveKey, &l.CreatedAt, &l.UpdatedAt)
	if err != nil {
		return nil, err
	}
	l.PaymentStatus = lifecycle.PaymentStatus(payment)
	l.Status = lifecycle.Status(status)
	return l, nil
}

func (r *PostgresRepository) Create(ctx context.Context, l *models.Label) (*models.Label, error) {
	if l.ID == "" {
		l.ID = uuid.NewString()
	}
	query := `
		INSERT INTO labels (id, tracking_id, client_id, user_id, sender_name, sender_city, sender_phone,
			recipient_name, recipient_city, recipient_phone, destination,
			weight, length, width, height, service_code, service_type, cost, payment_status, status)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15, $16, $17, $18, $19, $20)
		RETURNING created_at, updated_at
	`
	err := r.db.QueryRowContext(ctx, query,
		l.ID, l.TrackingID, l.ClientID, l.UserID, l.SenderName, l.SenderCity, l.SenderPhone,
		l.RecipientName, l.RecipientCity, l.RecipientPhone, l.Destination,
		l.Weight, l.Length, l.Width, l.Height, l.ServiceCode, l.ServiceType, l.Cost,
		string(l.PaymentStatus), string(l.Status)).
		Scan(&l.CreatedAt, &l.UpdatedAt)
	if err != nil {
		if dbx.IsUniqueViolation(err, trackingConstraint) {
			return nil, common.ErrTrackingIDCollision
		}
		if dbx.IsForeignKeyViolation(err) {
			return nil, fmt.Errorf("client does not exist: %w", common.ErrorNotFound)
		}
		return nil, fmt.Errorf("db error: %w", err)
	}
	return l, nil
}

func (r *PostgresRepository) getBy(ctx context.Context, column, value string) (*models.Label, error) {
	query := `SELECT ` + selectColumns + ` FROM labels WHERE ` + column + ` = $1`

	l, err := scanLabel(r.db.QueryRowContext(ctx, query, value))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, common.ErrorNotFound
		}
		return nil, fmt.Errorf("db error: %w", err)
	}
	return l, nil
}

func (r *PostgresRepository) Get(ctx context.Context, id string) (*models.Label, error) {
	return r.getBy(ctx, "id", id)
}

func (r *PostgresRepository) GetByTrackingID(ctx context.Context, trackingID string) (*models.Label, error) {
	return r.getBy(ctx, "tracking_id", trackingID)
}

func (r *PostgresRepository) List(ctx context.Context, f models.LabelFilter) ([]models.Label, error) {
	var (
		where []string
		args  []any
	)
	if f.Status != "" {
		args = append(args, string(f.Status))
		where = append(where, fmt.Sprintf("status = $%d", len(args)))
	}

	query := `SELECT ` + selectColumns + ` FROM labels`
	if len(where) > 0 {
		query += ` WHERE ` + strings.Join(where, " AND ")
	}
	query += ` ORDER BY created_at DESC`

	limit := f.Limit
	if limit <= 0 || limit > MaxListLimit {
		limit = MaxListLimit
	}
	args = append(args, limit)
	query += fmt.Sprintf(" LIMIT $%d", len(args))
	if f.Offset > 0 {
		args = append(args, f.Offset)
		query += fmt.Sprintf(" OFFSET $%d", len(args))
	}

	return r.query(ctx, query, args...)
}

func (r *PostgresRepository) ListByClient(ctx context.Context, clientID string) ([]models.Label, error) {
	query := `SELECT ` + selectColumns + ` FROM labels WHERE client_id = $1 ORDER BY created_at DESC`
	return r.query(ctx, query, clientID)
}

func (r *PostgresRepository) query(ctx context.Context, query string, args ...any) ([]models.Label, error) {
	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("db error: %w", err)
	}
	defer rows.Close()

	out := make([]models.Label, 0)
	for rows.Next() {
		l, err := scanLabel(rows)
		if err != nil {
			return nil, fmt.Errorf("db error: %w", err)
		}
		out = append(out, *l)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("db error: %w", err)
	}
	return out, nil
}

// Update rewrites the mutable fields. The tracking ID and owner never change.
func (r *PostgresRepository) Update(ctx context.Context, l *models.Label) (*models.Label, error) {
	query := `
		UPDATE labels
		SET client_id = $2, sender_name = $3, sender_city = $4, sender_phone = $5,
		    recipient_name = $6, recipient_city = $7, recipient_phone = $8, destination = $9,
		    weight = $10, length = $11, width = $12, height = $13,
		    service_code = $14, service_type = $15, cost = $16, payment_status = $17, status = $18,
		    updated_at = now()
		WHERE id = $1
		RETURNING created_at, updated_at
	`
	err := r.db.QueryRowContext(ctx, query,
		l.ID, l.ClientID, l.SenderName, l.SenderCity, l.SenderPhone,
		l.RecipientName, l.RecipientCity, l.RecipientPhone, l.Destination,
		l.Weight, l.Length, l.Width, l.Height,
		l.ServiceCode, l.ServiceType, l.Cost, string(l.PaymentStatus), string(l.Status)).
		Scan(&l.CreatedAt, &l.UpdatedAt)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, common.ErrorNotFound
		}
		if dbx.IsForeignKeyViolation(err) {
			return nil, fmt.Errorf("client does not exist: %w", common.ErrorNotFound)
		}
		return nil, fmt.Errorf("db error: %w", err)
	}
	return l, nil
}

func (r *PostgresRepository) exec(ctx context.Context, query string, args ...any) error {
	res, err := r.db.ExecContext(ctx, query, args...)
	if err != nil {
		return fmt.Errorf("db error: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("db error: %w", err)
	}
	if n == 0 {
		return common.ErrorNotFound
	}
	return nil
}

func (r *PostgresRepository) UpdateStatus(ctx context.Context, id string, status lifecycle.Status, payment lifecycle.PaymentStatus) error {
	query := `UPDATE labels SET status = $2, payment_status = $3, updated_at = now() WHERE id = $1`
	return r.exec(ctx, query, id, string(status), string(payment))
}

func (r *PostgresRepository) SetArchiveKey(ctx context.Context, id string, key string) error {
	return r.exec(ctx, `UPDATE labels SET archive_key = $2 WHERE id = $1`, id, key)
}

// Delete removes the label; its packages go with it.
func (r *PostgresRepository) Delete(ctx context.Context, id string) error {
	return r.exec(ctx, `DELETE FROM labels WHERE id = $1`, id)
}
