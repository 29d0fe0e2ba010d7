// Package lifecycle models the shipping label state machine, its payment
// markers and the display metadata shown on dashboards and tracking pages.
//
//	DRAFT -> PENDING -> GENERATED -> SHIPPED -> DELIVERED
//	  \________\___________\___________\-------> CANCELLED
//
// DELIVERED and CANCELLED are terminal.
package lifecycle

import "fmt"

type Status string

const (
	Draft     Status = "DRAFT"
	Pending   Status = "PENDING"
	Generated Status = "GENERATED"
	Shipped   Status = "SHIPPED"
	Delivered Status = "DELIVERED"
	Cancelled Status = "CANCELLED"
)

// DefaultColor is used for statuses without a dedicated chart colour.
const DefaultColor = "#8884d8"

type display struct {
	name  string
	color string
}

// ordered by progression; Cancelled last
var statuses = []Status{Draft, Pending, Generated, Shipped, Delivered, Cancelled}

var displays = map[Status]display{
	Draft:     {name: "Brouillon", color: "#8884d8"},
	Pending:   {name: "En attente", color: "#FFBB28"},
	Generated: {name: "Générée", color: "#0088FE"},
	Shipped:   {name: "Expédiée", color: "#00C49F"},
	Delivered: {name: "Livrée", color: "#82ca9d"},
	Cancelled: {name: "Annulée", color: "#FF8042"},
}

// All returns every status in lifecycle order.
func All() []Status {
	out := make([]Status, len(statuses))
	copy(out, statuses)
	return out
}

// Parse validates a raw status string.
func Parse(s string) (Status, error) {
	st := Status(s)
	if !st.Valid() {
		return "", fmt.Errorf("unknown label status %q", s)
	}
	return st, nil
}

func (s Status) Valid() bool {
	_, ok := displays[s]
	return ok
}

func (s Status) Terminal() bool {
	return s == Delivered || s == Cancelled
}

// DisplayName is the French label shown to operators. Unknown statuses are
// returned verbatim.
func (s Status) DisplayName() string {
	if d, ok := displays[s]; ok {
		return d.name
	}
	return string(s)
}

// Color is the fixed chart colour of the status.
func (s Status) Color() string {
	if d, ok := displays[s]; ok {
		return d.color
	}
	return DefaultColor
}

func (s Status) rank() int {
	for i, st := range statuses {
		if st == s {
			return i
		}
	}
	return -1
}

// CanTransition reports whether a label may move from one status to
// another through an explicit edit. Staying put is always allowed; forward
// moves may skip steps; cancellation is allowed from any non-terminal
// status; nothing leaves a terminal status.
func CanTransition(from, to Status) bool {
	if !from.Valid() || !to.Valid() {
		return false
	}
	if from == to {
		return true
	}
	if from.Terminal() {
		return false
	}
	if to == Cancelled {
		return true
	}
	return to.rank() > from.rank()
}

// AdvanceOnRender is the status a label takes after its document is
// downloaded. Only DRAFT and PENDING move (to GENERATED); later statuses
// are never pulled backwards.
func AdvanceOnRender(s Status) Status {
	if s == Draft || s == Pending {
		return Generated
	}
	return s
}
