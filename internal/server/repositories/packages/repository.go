// Package packages stores the parcels that make up a label.
package packages

import (
	"context"

	"github.com/dmitrijs2005/colisso/internal/server/models"
)

type Repository interface {
	Create(ctx context.Context, p *models.Package) (*models.Package, error)
	Get(ctx context.Context, id string) (*models.Package, error)
	// ListByLabel returns the label's packages oldest first.
	ListByLabel(ctx context.Context, labelID string) ([]models.Package, error)
	Update(ctx context.Context, p *models.Package) (*models.Package, error)
	Delete(ctx context.Context, id string) error
}
