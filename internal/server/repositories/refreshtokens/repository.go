// Package refreshtokens stores the refresh tokens issued at login.
package refreshtokens

import (
	"context"
	"time"

	"github.com/dmitrijs2005/colisso/internal/server/models"
)

// Repository issues, looks up and revokes refresh tokens. Implementations
// persist a digest of the token, never the token itself.
type Repository interface {
	// Create stores token for userID with an expiry of now+validity.
	Create(ctx context.Context, userID string, token string, validity time.Duration) error

	// Find returns the record of token or common.ErrorNotFound.
	Find(ctx context.Context, token string) (*models.RefreshToken, error)

	// Delete revokes token. Unknown tokens are not an error.
	Delete(ctx context.Context, token string) error

	// DeleteByUser revokes every token of userID.
	DeleteByUser(ctx context.Context, userID string) error
}
