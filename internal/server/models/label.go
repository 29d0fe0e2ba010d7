package models

import (
	"time"

	"github.com/dmitrijs2005/colisso/internal/lifecycle"
)

// Default physical attributes applied when a label or package omits them.
const (
	DefaultWeight = 1.0
	DefaultLength = 30.0
	DefaultWidth  = 20.0
	DefaultHeight = 10.0

	DefaultSenderCity  = "Marseille"
	DefaultSenderPhone = "+33760248507"
	DefaultServiceCode = "1049.00"
	DefaultServiceType = "Sous 1 semaine | Colisso"
)

// Label is one shipment. Its own physical fields describe the primary
// parcel; Package rows list every parcel of the shipment.
type Label struct {
	ID             string                  `json:"id"`
	TrackingID     string                  `json:"trackingId"`
	ClientID       string                  `json:"clientId"`
	UserID         *string                 `json:"userId"`
	SenderName     string                  `json:"senderName"`
	SenderCity     string                  `json:"senderCity"`
	SenderPhone    string                  `json:"senderPhone"`
	RecipientName  string                  `json:"recipientName"`
	RecipientCity  string                  `json:"recipientCity"`
	RecipientPhone string                  `json:"recipientPhone"`
	Destination    string                  `json:"destination"`
	Weight         float64                 `json:"weight"`
	Length         float64                 `json:"length"`
	Width          float64                 `json:"width"`
	Height         float64                 `json:"height"`
	ServiceCode    string                  `json:"serviceCode"`
	ServiceType    string                  `json:"serviceType"`
	Cost           *float64                `json:"cost"`
	PaymentStatus  lifecycle.PaymentStatus `json:"paymentStatus"`
	Status         lifecycle.Status        `json:"status"`
	ArchiveKey     *string                 `json:"archiveKey,omitempty"`
	CreatedAt      time.Time               `json:"createdAt"`
	UpdatedAt      time.Time               `json:"updatedAt"`
}

// LabelDetails is a label with its client and packages.
type LabelDetails struct {
	Label
	Client   *Client   `json:"client,omitempty"`
	Packages []Package `json:"packages"`
}

// LabelFilter narrows label listings.
type LabelFilter struct {
	Status lifecycle.Status
	Limit  int
	Offset int
}
