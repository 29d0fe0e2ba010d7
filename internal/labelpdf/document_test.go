package labelpdf

import (
	"testing"
	"time"

	"github.com/dmitrijs2005/colisso/internal/lifecycle"
	"github.com/dmitrijs2005/colisso/internal/server/models"
	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
)

func TestFromLabel(t *testing.T) {
	cost := 20.0
	value := 15.0
	desc := "Livres"
	phone := "+221771234567"
	created := time.Date(2025, 2, 14, 9, 30, 0, 0, time.UTC)

	l := &models.Label{
		TrackingID: "FRA1", SenderName: "Colisso", SenderCity: "Marseille", SenderPhone: "+33760248507",
		RecipientName: "Amadou Ba", RecipientCity: "Dakar", Destination: "Sénégal",
		Weight: 5.5, Length: 30, Width: 20, Height: 10, ServiceCode: "1049.00", ServiceType: "Express",
		Cost: &cost, PaymentStatus: lifecycle.Paid, CreatedAt: created,
	}
	client := &models.Client{Name: "Jean Dupont", Phone: &phone}
	pkgs := []models.Package{
		{Description: &desc, Weight: 2, Length: 25, Width: 20, Height: 15, Value: &value},
		{Weight: 3.5, Length: 30, Width: 20, Height: 10},
	}

	got := FromLabel(l, client, pkgs)

	want := Document{
		TrackingID:    "FRA1",
		Sender:        Party{Name: "Colisso", City: "Marseille", Phone: "+33760248507"},
		Recipient:     Party{Name: "Amadou Ba", City: "Dakar", Phone: "+221771234567"},
		Destination:   "Sénégal",
		Weight:        5.5,
		Length:        30,
		Width:         20,
		Height:        10,
		ServiceCode:   "1049.00",
		ServiceType:   "Express",
		Cost:          &cost,
		PaymentStatus: lifecycle.Paid,
		CreatedAt:     created,
		Parcels: []Parcel{
			{Description: "Livres", Weight: 2, Length: 25, Width: 20, Height: 15, Value: &value},
			{Weight: 3.5, Length: 30, Width: 20, Height: 10},
		},
	}
	assert.Empty(t, cmp.Diff(want, got))
}

func TestFromLabel_NoPackagesNoClient(t *testing.T) {
	l := &models.Label{TrackingID: "FRA2", RecipientPhone: "+33100000000", Weight: 1, Length: 30, Width: 20, Height: 10}

	got := FromLabel(l, nil, nil)
	assert.Nil(t, got.Parcels)
	assert.Equal(t, "+33100000000", got.Recipient.Phone)
	assert.Len(t, got.parcels(), 1)
}
