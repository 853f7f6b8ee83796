package projects

import (
	"errors"
	"time"
)

// ErrInvalidInput flags payloads outside the closed status enums.
var ErrInvalidInput = errors.New("projects: invalid input")

// Status enumerates project lifecycle states.
type Status string

const (
	StatusPlanning  Status = "planning"
	StatusExecuting Status = "executing"
	StatusCompleted Status = "completed"
	StatusClosed    Status = "closed"
)

// Statuses returns lifecycle states in lifecycle order.
func Statuses() []Status {
	return []Status{StatusPlanning, StatusExecuting, StatusCompleted, StatusClosed}
}

// Valid reports whether s is a known lifecycle state.
func (s Status) Valid() bool {
	return s == StatusPlanning || s == StatusExecuting || s == StatusCompleted || s == StatusClosed
}

// PaymentStatus tracks how far along the money is.
type PaymentStatus string

const (
	PaymentPaid    PaymentStatus = "paid"
	PaymentUnpaid  PaymentStatus = "unpaid"
	PaymentDelayed PaymentStatus = "delayed"
)

// Valid reports whether p is a known payment state.
func (p PaymentStatus) Valid() bool {
	return p == PaymentPaid || p == PaymentUnpaid || p == PaymentDelayed
}

// Project is a contract executed against an awarded tender. Date fields stay
// as ISO strings so malformed values round-trip and are skipped by the alert
// rules rather than erroring.
type Project struct {
	ID                int64          `json:"id"`
	TenderID          int64          `json:"tender_id"`
	NameEN            string         `json:"name_en"`
	NameAR            *string        `json:"name_ar"`
	StartDate         *string        `json:"start_date"`
	EndDate           *string        `json:"end_date"`
	Status            Status         `json:"status"`
	Currency          *string        `json:"currency"`
	ContractValue     *float64       `json:"contract_value"`
	Cost              *float64       `json:"cost"`
	ExchangeRate      *float64       `json:"exchange_rate"`
	AmountReceived    *float64       `json:"amount_received"`
	AmountInvoiced    *float64       `json:"amount_invoiced"`
	ProfitLocal       *float64       `json:"profit_local"`
	PaymentStatus     *PaymentStatus `json:"payment_status"`
	GuaranteeValue    *float64       `json:"guarantee_value"`
	GuaranteeStart    *string        `json:"guarantee_start"`
	GuaranteeEnd      *string        `json:"guarantee_end"`
	GuaranteeRetained *float64       `json:"guarantee_retained"`
	Notes             *string        `json:"notes"`
	ManagerID         *int64         `json:"manager_id"`

	// Joined display fields from the owning tender.
	TenderTitleEN *string `json:"tender_title_en,omitempty"`
	TenderTitleAR *string `json:"tender_title_ar,omitempty"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// ListFilter narrows project listings.
type ListFilter struct {
	Status        string
	PaymentStatus string
	ManagerID     int64
}
