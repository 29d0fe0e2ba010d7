package lifecycle

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDisplayMetadata(t *testing.T) {
	tests := []struct {
		status Status
		name   string
		color  string
	}{
		{Draft, "Brouillon", "#8884d8"},
		{Pending, "En attente", "#FFBB28"},
		{Generated, "Générée", "#0088FE"},
		{Shipped, "Expédiée", "#00C49F"},
		{Delivered, "Livrée", "#82ca9d"},
		{Cancelled, "Annulée", "#FF8042"},
		{Status("LOST"), "LOST", DefaultColor},
	}
	for _, tt := range tests {
		t.Run(string(tt.status), func(t *testing.T) {
			assert.Equal(t, tt.name, tt.status.DisplayName())
			assert.Equal(t, tt.color, tt.status.Color())
		})
	}
}

func TestParse(t *testing.T) {
	st, err := Parse("SHIPPED")
	require.NoError(t, err)
	assert.Equal(t, Shipped, st)

	_, err = Parse("shipped")
	assert.Error(t, err)
}

func TestTerminal(t *testing.T) {
	for _, s := range All() {
		assert.Equal(t, s == Delivered || s == Cancelled, s.Terminal(), s)
	}
}

func TestCanTransition(t *testing.T) {
	tests := []struct {
		from, to Status
		want     bool
	}{
		{Draft, Draft, true},
		{Draft, Pending, true},
		{Draft, Shipped, true},
		{Pending, Generated, true},
		{Generated, Delivered, true},
		{Shipped, Pending, false},
		{Generated, Draft, false},
		{Draft, Cancelled, true},
		{Shipped, Cancelled, true},
		{Delivered, Cancelled, false},
		{Cancelled, Draft, false},
		{Cancelled, Cancelled, true},
		{Draft, Status("LOST"), false},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, CanTransition(tt.from, tt.to), "%s -> %s", tt.from, tt.to)
	}
}

func TestAdvanceOnRender_IsMonotonic(t *testing.T) {
	want := map[Status]Status{
		Draft:     Generated,
		Pending:   Generated,
		Generated: Generated,
		Shipped:   Shipped,
		Delivered: Delivered,
		Cancelled: Cancelled,
	}
	for from, to := range want {
		assert.Equal(t, to, AdvanceOnRender(from), from)
		assert.True(t, CanTransition(from, AdvanceOnRender(from)), from)
	}
}

func TestPayment(t *testing.T) {
	p, err := ParsePayment("")
	require.NoError(t, err)
	assert.Equal(t, Paid, p)

	p, err = ParsePayment("Remboursé")
	require.NoError(t, err)
	assert.Equal(t, Refunded, p)

	_, err = ParsePayment("paid")
	assert.Error(t, err)

	assert.True(t, ArtifactsAvailable(Paid))
	assert.False(t, ArtifactsAvailable(Unpaid))
	assert.False(t, ArtifactsAvailable(PaymentPending))
	assert.False(t, ArtifactsAvailable(Refunded))
}
