// Package users declares and implements storage of back-office operators.
package users

import (
	"context"

	"github.com/dmitrijs2005/colisso/internal/server/models"
)

type Repository interface {
	// Create stores user and fills its generated fields. A duplicate email
	// yields common.ErrorConflict.
	Create(ctx context.Context, user *models.User) (*models.User, error)
	GetByEmail(ctx context.Context, email string) (*models.User, error)
	GetByID(ctx context.Context, id string) (*models.User, error)
}
