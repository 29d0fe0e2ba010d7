package models

import "time"

// Client is a customer who ships parcels.
type Client struct {
	ID         string    `json:"id"`
	Name       string    `json:"name"`
	Company    *string   `json:"company"`
	Address    string    `json:"address"`
	Country    string    `json:"country"`
	Phone      *string   `json:"phone"`
	Email      *string   `json:"email"`
	Notes      *string   `json:"notes"`
	CreatedAt  time.Time `json:"createdAt"`
	UpdatedAt  time.Time `json:"updatedAt"`
	LabelCount int       `json:"labelCount"`
}

// ClientDetails is a client with the labels issued for it, newest first.
type ClientDetails struct {
	Client
	Labels []Label `json:"labels"`
}
