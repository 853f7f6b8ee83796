package invoices

import (
	"errors"
	"time"
)

// ErrInvalidInput flags payloads outside the closed status enum.
var ErrInvalidInput = errors.New("invoices: invalid input")

// Status enumerates invoice payment states.
type Status string

const (
	StatusPaid    Status = "paid"
	StatusUnpaid  Status = "unpaid"
	StatusDelayed Status = "delayed"
)

// Valid reports whether s is a known payment state.
func (s Status) Valid() bool {
	return s == StatusPaid || s == StatusUnpaid || s == StatusDelayed
}

// Invoice is a receivable on a project. Due and paid dates stay as ISO
// strings; a malformed due date simply never triggers the overdue rule.
type Invoice struct {
	ID        int64     `json:"id"`
	ProjectID int64     `json:"project_id"`
	Amount    float64   `json:"amount"`
	Currency  *string   `json:"currency"`
	DueDate   *string   `json:"due_date"`
	PaidDate  *string   `json:"paid_date"`
	Status    Status    `json:"status"`
	Notes     *string   `json:"notes"`
	CreatedAt time.Time `json:"created_at"`
}
