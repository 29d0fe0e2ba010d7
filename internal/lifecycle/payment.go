package lifecycle

import "fmt"

// PaymentStatus is the free-text payment marker stored on a label.
type PaymentStatus string

const (
	Paid           PaymentStatus = "Payé"
	Unpaid         PaymentStatus = "Non payé"
	PaymentPending PaymentStatus = "En attente"
	Refunded       PaymentStatus = "Remboursé"
)

var paymentStatuses = []PaymentStatus{Paid, Unpaid, PaymentPending, Refunded}

// ParsePayment validates a payment marker. An empty string selects Paid.
func ParsePayment(s string) (PaymentStatus, error) {
	if s == "" {
		return Paid, nil
	}
	for _, p := range paymentStatuses {
		if string(p) == s {
			return p, nil
		}
	}
	return "", fmt.Errorf("unknown payment status %q", s)
}

// ArtifactsAvailable gates PDF and QR downloads. It is independent of the
// lifecycle status.
func ArtifactsAvailable(p PaymentStatus) bool {
	return p == Paid
}
