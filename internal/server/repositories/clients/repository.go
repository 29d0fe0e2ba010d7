// Package clients stores the customers labels are issued for.
package clients

import (
	"context"

	"github.com/dmitrijs2005/colisso/internal/server/models"
)

type Repository interface {
	Create(ctx context.Context, c *models.Client) (*models.Client, error)
	Get(ctx context.Context, id string) (*models.Client, error)
	List(ctx context.Context) ([]models.Client, error)
	Update(ctx context.Context, c *models.Client) (*models.Client, error)
	Delete(ctx context.Context, id string) error

	// ExistsByName matches names case-insensitively, ignoring excludeID.
	ExistsByName(ctx context.Context, name string, excludeID string) (bool, error)
	CountLabels(ctx context.Context, id string) (int, error)
}
