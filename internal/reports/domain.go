package reports

import (
	"time"
)

const (
	calendarWindowDays     = 60
	latestTendersLimit     = 5
	atRiskProjectsLimit    = 5
	guaranteeDueWindowDays = 10
)

// TenderSummary aggregates tenders by status.
type TenderSummary struct {
	ByStatus       map[string]int64 `json:"by_status"`
	TotalEstimated float64          `json:"total_estimated"`
}

// ProjectSummary aggregates projects by payment status.
type ProjectSummary struct {
	ByPaymentStatus map[string]int64 `json:"by_payment_status"`
	TotalProfit     float64          `json:"total_profit"`
}

// FinancialPipeline tracks money across the portfolio.
type FinancialPipeline struct {
	OutstandingInvoices float64 `json:"outstanding_invoices"`
	AmountReceived      float64 `json:"amount_received"`
	AmountInvoiced      float64 `json:"amount_invoiced"`
}

// CalendarItem is an upcoming deadline, either a tender submission or a
// project guarantee expiry.
type CalendarItem struct {
	Type    string  `json:"type"`
	ID      int64   `json:"id"`
	TitleEN string  `json:"title_en"`
	TitleAR *string `json:"title_ar"`
	Date    string  `json:"date"`
}

// LatestTender is a recently created tender on the dashboard.
type LatestTender struct {
	ID                 int64    `json:"id"`
	ReferenceCode      *string  `json:"reference_code"`
	TitleEN            string   `json:"title_en"`
	TitleAR            *string  `json:"title_ar"`
	TenderType         string   `json:"tender_type"`
	Status             string   `json:"status"`
	SubmissionDeadline *string  `json:"submission_deadline"`
	EstimatedValue     *float64 `json:"estimated_value"`
	Currency           *string  `json:"currency"`
	CreatedAt          string   `json:"created_at"`
	AssignedName       *string  `json:"assigned_name"`
	AssignedUsername   *string  `json:"assigned_username"`
}

// AtRiskProject is a project carrying delivery or payment risk flags.
type AtRiskProject struct {
	ID            int64    `json:"id"`
	NameEN        string   `json:"name_en"`
	NameAR        *string  `json:"name_ar"`
	Status        string   `json:"status"`
	PaymentStatus *string  `json:"payment_status"`
	EndDate       *string  `json:"end_date"`
	GuaranteeEnd  *string  `json:"guarantee_end"`
	ContractValue *float64 `json:"contract_value"`
	TenderTitleEN string   `json:"tender_title_en"`
	TenderTitleAR *string  `json:"tender_title_ar"`
	Flags         []string `json:"flags"`
}

// Summary is the dashboard payload.
type Summary struct {
	Tenders        TenderSummary     `json:"tenders"`
	Projects       ProjectSummary    `json:"projects"`
	Finance        FinancialPipeline `json:"finance"`
	Calendar       []CalendarItem    `json:"calendar"`
	RecentTenders  []LatestTender    `json:"recent_tenders"`
	AtRiskProjects []AtRiskProject   `json:"at_risk_projects"`
	GeneratedAt    time.Time         `json:"generated_at"`
}

// riskFlags derives the risk markers for a project. Malformed dates do not
// raise a flag.
func riskFlags(p AtRiskProject, today time.Time) []string {
	flags := []string{}
	if p.PaymentStatus != nil {
		switch *p.PaymentStatus {
		case "delayed":
			flags = append(flags, "payment_delayed")
		case "unpaid":
			flags = append(flags, "payment_unpaid")
		}
	}
	if p.EndDate != nil {
		if end, err := time.ParseInLocation(time.DateOnly, *p.EndDate, time.UTC); err == nil && end.Before(today) {
			flags = append(flags, "milestone_overdue")
		}
	}
	if p.GuaranteeEnd != nil {
		limit := today.AddDate(0, 0, guaranteeDueWindowDays)
		if end, err := time.ParseInLocation(time.DateOnly, *p.GuaranteeEnd, time.UTC); err == nil && !end.After(limit) {
			flags = append(flags, "guarantee_due")
		}
	}
	return flags
}
