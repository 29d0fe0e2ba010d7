package packages

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

const selectColumns = `id, label_id, description, weight, length, width, height, value, contents, created_at, updated_at`

type PostgresRepository struct {
	db dbx.DBTX
}

func NewPostgresRepository(db dbx.DBTX) *PostgresRepository {
	return &PostgresRepository{db: db}
}

type scanner interface {
	Scan(dest ...any) error
}

func scanPackage(s scanner) (*models.Package, error) {
	p := &models.Package{}
	err := s.Scan(&p.ID, &p.LabelID, &p.Description, &p.Weight, &p.Length, &p.Width, &p.Height,
		&p.Value, &p.Contents, &p.CreatedAt, &p.UpdatedAt)
	return p, err
}

func (r *PostgresRepository) Create(ctx context.Context, p *models.Package) (*models.Package, error) {
	if p.ID == "" {
		p.ID = uuid.NewString()
	}
	query := `
		INSERT INTO packages (id, label_id, description, weight, length, width, height, value, contents)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
		RETURNING created_at, updated_at
	`
	err := r.db.QueryRowContext(ctx, query,
		p.ID, p.LabelID, p.Description, p.Weight, p.Length, p.Width, p.Height, p.Value, p.Contents).
		Scan(&p.CreatedAt, &p.UpdatedAt)
	if err != nil {
		if dbx.IsForeignKeyViolation(err) {
			return nil, fmt.Errorf("label does not exist: %w", common.ErrorNotFound)
		}
		return nil, fmt.Errorf("db error: %w", err)
	}
	return p, nil
}

func (r *PostgresRepository) Get(ctx context.Context, id string) (*models.Package, error) {
	query := `SELECT ` + selectColumns + ` FROM packages WHERE id = $1`

	p, err := scanPackage(r.db.QueryRowContext(ctx, query, id))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, common.ErrorNotFound
		}
		return nil, fmt.Errorf("db error: %w", err)
	}
	return p, nil
}

func (r *PostgresRepository) ListByLabel(ctx context.Context, labelID string) ([]models.Package, error) {
	query := `SELECT ` + selectColumns + ` FROM packages WHERE label_id = $1 ORDER BY created_at ASC, id ASC`

	rows, err := r.db.QueryContext(ctx, query, labelID)
	if err != nil {
		return nil, fmt.Errorf("db error: %w", err)
	}
	defer rows.Close()

	out := make([]models.Package, 0)
	for rows.Next() {
		p, err := scanPackage(rows)
		if err != nil {
			return nil, fmt.Errorf("db error: %w", err)
		}
		out = append(out, *p)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("db error: %w", err)
	}
	return out, nil
}

func (r *PostgresRepository) Update(ctx context.Context, p *models.Package) (*models.Package, error) {
	query := `
		UPDATE packages
		SET description = $2, weight = $3, length = $4, width = $5, height = $6,
		    value = $7, contents = $8, updated_at = now()
		WHERE id = $1
		RETURNING label_id, created_at, updated_at
	`
	err := r.db.QueryRowContext(ctx, query,
		p.ID, p.Description, p.Weight, p.Length, p.Width, p.Height, p.Value, p.Contents).
		Scan(&p.LabelID, &p.CreatedAt, &p.UpdatedAt)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, common.ErrorNotFound
		}
		return nil, fmt.Errorf("db error: %w", err)
	}
	return p, nil
}

func (r *PostgresRepository) Delete(ctx context.Context, id string) error {
	res, err := r.db.ExecContext(ctx, `DELETE FROM packages WHERE id = $1`, id)
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
