package labelpdf

import (
	"github.com/dmitrijs2005/colisso/internal/server/models"
)

// FromLabel assembles the printable Document of a stored label. client may
// be nil, in which case the recipient block uses the label fields only.
func FromLabel(l *models.Label, client *models.Client, pkgs []models.Package) Document {
	doc := Document{
		TrackingID:    l.TrackingID,
		Sender:        Party{Name: l.SenderName, City: l.SenderCity, Phone: l.SenderPhone},
		Recipient:     Party{Name: l.RecipientName, City: l.RecipientCity, Phone: l.RecipientPhone},
		Destination:   l.Destination,
		Weight:        l.Weight,
		Length:        l.Length,
		Width:         l.Width,
		Height:        l.Height,
		ServiceCode:   l.ServiceCode,
		ServiceType:   l.ServiceType,
		Cost:          l.Cost,
		PaymentStatus: l.PaymentStatus,
		CreatedAt:     l.CreatedAt,
	}
	if doc.Recipient.Phone == "" && client != nil && client.Phone != nil {
		doc.Recipient.Phone = *client.Phone
	}

	for _, p := range pkgs {
		var desc string
		if p.Description != nil {
			desc = *p.Description
		}
		doc.Parcels = append(doc.Parcels, Parcel{
			Description: desc,
			Weight:      p.Weight,
			Length:      p.Length,
			Width:       p.Width,
			Height:      p.Height,
			Value:       p.Value,
		})
	}
	return doc
}
