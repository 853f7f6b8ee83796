package tenders

import (
	"errors"
	"time"
)

// ErrInvalidInput flags payloads outside the closed status/type enums.
var ErrInvalidInput = errors.New("tenders: invalid input")

// Status enumerates tender lifecycle states.
type Status string

const (
	StatusDraft         Status = "draft"
	StatusInPreparation Status = "in_preparation"
	StatusSubmitted     Status = "submitted"
	StatusAwarded       Status = "awarded"
	StatusLost          Status = "lost"
	StatusOnHold        Status = "on_hold"
	StatusCancelled     Status = "cancelled"
)

// Statuses returns lifecycle states in lifecycle order.
func Statuses() []Status {
	return []Status{
		StatusDraft, StatusInPreparation, StatusSubmitted,
		StatusAwarded, StatusLost, StatusOnHold, StatusCancelled,
	}
}

// Valid reports whether s is a known lifecycle state.
func (s Status) Valid() bool {
	for _, known := range Statuses() {
		if s == known {
			return true
		}
	}
	return false
}

// Type enumerates the procurement instruments the portal tracks.
type Type string

const (
	TypeRFQ Type = "RFQ"
	TypeITB Type = "ITB"
	TypeRFP Type = "RFP"
)

// Types returns the supported tender types.
func Types() []Type {
	return []Type{TypeRFQ, TypeITB, TypeRFP}
}

// Valid reports whether t is a supported type.
func (t Type) Valid() bool {
	return t == TypeRFQ || t == TypeITB || t == TypeRFP
}

// Tender is a procurement opportunity. Date fields stay as ISO strings so
// malformed values survive round trips and are simply skipped by the alert
// rules.
type Tender struct {
	ID                 int64    `json:"id"`
	ReferenceCode      *string  `json:"reference_code"`
	TitleEN            string   `json:"title_en"`
	TitleAR            *string  `json:"title_ar"`
	TenderType         Type     `json:"tender_type"`
	Donor              *string  `json:"donor"`
	DescriptionEN      *string  `json:"description_en"`
	DescriptionAR      *string  `json:"description_ar"`
	Status             Status   `json:"status"`
	EstimatedValue     *float64 `json:"estimated_value"`
	Currency           *string  `json:"currency"`
	SubmissionDeadline *string  `json:"submission_deadline"`
	IssueDate          *string  `json:"issue_date"`
	AssignedTo         *int64   `json:"assigned_to"`
	SupplierID         *int64   `json:"supplier_id"`
	CreatedBy          *int64   `json:"created_by"`

	// Joined display fields from users and suppliers.
	AssignedName   *string `json:"assigned_name,omitempty"`
	SupplierNameEN *string `json:"supplier_name_en,omitempty"`
	SupplierNameAR *string `json:"supplier_name_ar,omitempty"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// ListFilter narrows tender listings.
type ListFilter struct {
	Status     string
	TenderType string
	AssignedTo int64
	Search     string
}
