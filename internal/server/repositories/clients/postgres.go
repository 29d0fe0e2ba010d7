package clients

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/dmitrijs2005/colisso/internal/common"
	"github.com/dmitrijs2005/colisso/internal/dbx"
	"github.com/dmitrijs2005/colisso/internal/server/models"
	"github.com/google/uuid"
)

const nameConstraint = "clients_name_lower_key"

const selectColumns = `c.id, c.name, c.company, c.address, c.country, c.phone, c.email, c.notes,
		c.created_at, c.updated_at,
		(SELECT COUNT(*) FROM labels l WHERE l.client_id = c.id) AS label_count`

type PostgresRepository struct {
	db dbx.DBTX
}

func NewPostgresRepository(db dbx.DBTX) *PostgresRepository {
	return &PostgresRepository{db: db}
}

type scanner interface {
	Scan(dest ...any) error
}

func scanClient(s scanner) (*models.Client, error) {
	c := &models.Client{}
	err := s.Scan(&c.ID, &c.Name, &c.Company, &c.Address, &c.Country, &c.Phone, &c.Email, &c.Notes,
		&c.CreatedAt, &c.UpdatedAt, &c.LabelCount)
	return c, err
}

func mapWriteError(err error) error {
	if errors.Is(err, sql.ErrNoRows) {
		return common.ErrorNotFound
	}
	if dbx.IsUniqueViolation(err, nameConstraint) {
		return fmt.Errorf("client name already exists: %w", common.ErrorConflict)
	}
	return fmt.Errorf("db error: %w", err)
}

func (r *PostgresRepository) Create(ctx context.Context, c *models.Client) (*models.Client, error) {
	if c.ID == "" {
		c.ID = uuid.NewString()
	}
	query := `
		INSERT INTO clients (id, name, company, address, country, phone, email, notes)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
		RETURNING created_at, updated_at
	`
	err := r.db.QueryRowContext(ctx, query,
		c.ID, c.Name, c.Company, c.Address, c.Country, c.Phone, c.Email, c.Notes).
		Scan(&c.CreatedAt, &c.UpdatedAt)
	if err != nil {
		return nil, mapWriteError(err)
	}
	return c, nil
}

func (r *PostgresRepository) Get(ctx context.Context, id string) (*models.Client, error) {
	query := `SELECT ` + selectColumns + ` FROM clients c WHERE c.id = $1`

	c, err := scanClient(r.db.QueryRowContext(ctx, query, id))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) || dbx.IsInvalidText(err) {
			return nil, common.ErrorNotFound
		}
		return nil, fmt.Errorf("db error: %w", err)
	}
	return c, nil
}

func (r *PostgresRepository) List(ctx context.Context) ([]models.Client, error) {
	query := `SELECT ` + selectColumns + ` FROM clients c ORDER BY c.created_at DESC`

	rows, err := r.db.QueryContext(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("db error: %w", err)
	}
	defer rows.Close()

	out := make([]models.Client, 0)
	for rows.Next() {
		c, err := scanClient(rows)
		if err != nil {
			return nil, fmt.Errorf("db error: %w", err)
		}
		out = append(out, *c)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("db error: %w", err)
	}
	return out, nil
}

func (r *PostgresRepository) Update(ctx context.Context, c *models.Client) (*models.Client, error) {
	query := `
		UPDATE clients
		SET name = $2, company = $3, address = $4, country = $5, phone = $6, email = $7, notes = $8,
		    updated_at = now()
		WHERE id = $1
		RETURNING created_at, updated_at
	`
	err := r.db.QueryRowContext(ctx, query,
		c.ID, c.Name, c.Company, c.Address, c.Country, c.Phone, c.Email, c.Notes).
		Scan(&c.CreatedAt, &c.UpdatedAt)
	if err != nil {
		return nil, mapWriteError(err)
	}
	return c, nil
}

func (r *PostgresRepository) Delete(ctx context.Context, id string) error {
	res, err := r.db.ExecContext(ctx, `DELETE FROM clients WHERE id = $1`, id)
	if err != nil {
		if dbx.IsForeignKeyViolation(err) {
			return fmt.Errorf("client has labels: %w", common.ErrorConflict)
		}
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

func (r *PostgresRepository) ExistsByName(ctx context.Context, name string, excludeID string) (bool, error) {
	query := `SELECT EXISTS (SELECT 1 FROM clients WHERE lower(name) = lower($1) AND id::text <> $2)`

	var exists bool
	if err := r.db.QueryRowContext(ctx, query, name, excludeID).Scan(&exists); err != nil {
		return false, fmt.Errorf("db error: %w", err)
	}
	return exists, nil
}

func (r *PostgresRepository) CountLabels(ctx context.Context, id string) (int, error) {
	var n int
	if err := r.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM labels WHERE client_id = $1`, id).Scan(&n); err != nil {
		return 0, fmt.Errorf("db error: %w", err)
	}
	return n, nil
}
