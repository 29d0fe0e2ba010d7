// Package labels stores shipping labels.
package labels

import (
	"context"

	"github.com/dmitrijs2005/colisso/internal/lifecycle"
	"github.com/dmitrijs2005/colisso/internal/server/models"
)

type Repository interface {
	// Create inserts the label. A clash on the tracking ID surfaces as
	// common.ErrTrackingIDCollision so the caller can regenerate it.
	Create(ctx context.Context, l *models.Label) (*models.Label, error)
	Get(ctx context.Context, id string) (*models.Label, error)
	GetByTrackingID(ctx context.Context, trackingID string) (*models.Label, error)
	List(ctx context.Context, f models.LabelFilter) ([]models.Label, error)
	ListByClient(ctx context.Context, clientID string) ([]models.Label, error)
	Update(ctx context.Context, l *models.Label) (*models.Label, error)
	UpdateStatus(ctx context.Context, id string, status lifecycle.Status, payment lifecycle.PaymentStatus) error
	SetArchiveKey(ctx context.Context, id string, key string) error
	Delete(ctx context.Context, id string) error
}
