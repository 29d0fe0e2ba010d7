package models

import "time"

// RefreshToken is a server-side record of an issued refresh token. Only the
// token digest is stored.
type RefreshToken struct {
	ID        string
	UserID    string
	TokenHash string
	Expires   time.Time
	CreatedAt time.Time
}
