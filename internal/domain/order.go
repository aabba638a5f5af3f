package domain

import (
	"time"

	"github.com/shopspring/decimal"
)

// Status is the lifecycle state of a persisted order. Stored values are
// lowercase identifiers; display labels live in Label.
type Status string

const (
	StatusPending    Status = "pending"
	StatusInProgress Status = "in_progress"
	StatusCompleted  Status = "completed"
)

var statusNext = map[Status]Status{
	StatusPending:    StatusInProgress,
	StatusInProgress: StatusCompleted,
}

var statusLabels = map[Status]string{
	StatusPending:    "en attente",
	StatusInProgress: "en préparation",
	StatusCompleted:  "validée",
}

func (s Status) Valid() bool {
	switch s {
	case StatusPending, StatusInProgress, StatusCompleted:
		return true
	}
	return false
}

// Next returns the following lifecycle state. ok is false for the
// terminal state.
func (s Status) Next() (Status, bool) {
	next, ok := statusNext[s]
	return next, ok
}

// CanTransition reports whether from may move directly to to. Only single
// forward steps are legal; there are no reverse transitions.
func CanTransition(from, to Status) bool {
	return statusNext[from] == to && to != ""
}

// Label returns the customer-facing display label for the status.
func (s Status) Label() string {
	return statusLabels[s]
}

type Order struct {
	ID           string
	CustomerName string
	Phone        string
	Email        *string
	TotalPrice   decimal.Decimal
	Status       Status
	CreatedAt    time.Time
}

type OrderItem struct {
	ID          uint
	OrderID     string
	ProductName string
	Options     string
	Quantity    int
	UnitPrice   decimal.Decimal
	TotalPrice  decimal.Decimal
}
