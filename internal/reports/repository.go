package reports

import (
	"context"
	"sort"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
)

// Repository defines the aggregate reads behind the dashboard.
type Repository interface {
	TenderSummary(ctx context.Context) (TenderSummary, error)
	ProjectSummary(ctx context.Context) (ProjectSummary, error)
	FinancialPipeline(ctx context.Context) (FinancialPipeline, error)
	CalendarItems(ctx context.Context, from, to time.Time) ([]CalendarItem, error)
	LatestTenders(ctx context.Context, limit int) ([]LatestTender, error)
	AtRiskProjects(ctx context.Context, limit int) ([]AtRiskProject, error)
}

// PGRepository is the PostgreSQL implementation of Repository.
type PGRepository struct {
	pool *pgxpool.Pool
}

// NewPGRepository builds a PGRepository.
func NewPGRepository(pool *pgxpool.Pool) *PGRepository {
	return &PGRepository{pool: pool}
}

// TenderSummary counts tenders per status and totals the pipeline value.
func (r *PGRepository) TenderSummary(ctx context.Context) (TenderSummary, error) {
	summary := TenderSummary{ByStatus: make(map[string]int64)}
	rows, err := r.pool.Query(ctx, `
		SELECT status, COUNT(*), COALESCE(SUM(estimated_value), 0)
		FROM tenders
		GROUP BY status`)
	if err != nil {
		return summary, err
	}
	defer rows.Close()
	for rows.Next() {
		var status string
		var count int64
		var total float64
		if err := rows.Scan(&status, &count, &total); err != nil {
			return summary, err
		}
		summary.ByStatus[status] = count
		summary.TotalEstimated += total
	}
	return summary, rows.Err()
}

// ProjectSummary counts projects per payment status and totals local profit.
func (r *PGRepository) ProjectSummary(ctx context.Context) (ProjectSummary, error) {
	summary := ProjectSummary{ByPaymentStatus: make(map[string]int64)}
	rows, err := r.pool.Query(ctx, `
		SELECT COALESCE(payment_status, 'unpaid'), COUNT(*), COALESCE(SUM(profit_local), 0)
		FROM projects
		GROUP BY payment_status`)
	if err != nil {
		return summary, err
	}
	defer rows.Close()
	for rows.Next() {
		var status string
		var count int64
		var profit float64
		if err := rows.Scan(&status, &count, &profit); err != nil {
			return summary, err
		}
		summary.ByPaymentStatus[status] = count
		summary.TotalProfit += profit
	}
	return summary, rows.Err()
}

// FinancialPipeline totals outstanding invoices and recorded amounts.
func (r *PGRepository) FinancialPipeline(ctx context.Context) (FinancialPipeline, error) {
	var pipeline FinancialPipeline
	err := r.pool.QueryRow(ctx, `
		SELECT
			COALESCE((SELECT SUM(amount) FROM invoices WHERE status <> 'paid'), 0),
			COALESCE((SELECT SUM(amount_received) FROM projects), 0),
			COALESCE((SELECT SUM(amount_invoiced) FROM projects), 0)`,
	).Scan(&pipeline.OutstandingInvoices, &pipeline.AmountReceived, &pipeline.AmountInvoiced)
	return pipeline, err
}

// CalendarItems merges upcoming tender deadlines and guarantee expiries,
// sorted by date.
func (r *PGRepository) CalendarItems(ctx context.Context, from, to time.Time) ([]CalendarItem, error) {
	fromStr := from.Format(time.DateOnly)
	toStr := to.Format(time.DateOnly)

	items := []CalendarItem{}
	rows, err := r.pool.Query(ctx, `
		SELECT id, title_en, title_ar, submission_deadline FROM tenders
		WHERE submission_deadline IS NOT NULL AND submission_deadline BETWEEN $1 AND $2`,
		fromStr, toStr)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	for rows.Next() {
		item := CalendarItem{Type: "tender"}
		if err := rows.Scan(&item.ID, &item.TitleEN, &item.TitleAR, &item.Date); err != nil {
			return nil, err
		}
		items = append(items, item)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	projectRows, err := r.pool.Query(ctx, `
		SELECT id, name_en, name_ar, guarantee_end FROM projects
		WHERE guarantee_end IS NOT NULL AND guarantee_end BETWEEN $1 AND $2`,
		fromStr, toStr)
	if err != nil {
		return nil, err
	}
	defer projectRows.Close()
	for projectRows.Next() {
		item := CalendarItem{Type: "project"}
		if err := projectRows.Scan(&item.ID, &item.TitleEN, &item.TitleAR, &item.Date); err != nil {
			return nil, err
		}
		items = append(items, item)
	}
	if err := projectRows.Err(); err != nil {
		return nil, err
	}

	sort.SliceStable(items, func(i, j int) bool { return items[i].Date < items[j].Date })
	return items, nil
}

// LatestTenders returns the most recently created tenders.
func (r *PGRepository) LatestTenders(ctx context.Context, limit int) ([]LatestTender, error) {
	rows, err := r.pool.Query(ctx, `
		SELECT t.id, t.reference_code, t.title_en, t.title_ar, t.tender_type, t.status,
		       t.submission_deadline, t.estimated_value, t.currency, t.created_at::text,
		       u.full_name, u.username
		FROM tenders t
		LEFT JOIN users u ON t.assigned_to = u.id
		ORDER BY t.created_at DESC
		LIMIT $1`, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var result []LatestTender
	for rows.Next() {
		var t LatestTender
		if err := rows.Scan(
			&t.ID, &t.ReferenceCode, &t.TitleEN, &t.TitleAR, &t.TenderType, &t.Status,
			&t.SubmissionDeadline, &t.EstimatedValue, &t.Currency, &t.CreatedAt,
			&t.AssignedName, &t.AssignedUsername,
		); err != nil {
			return nil, err
		}
		result = append(result, t)
	}
	return result, rows.Err()
}

// AtRiskProjects returns projects ordered by payment trouble first, then by
// nearest end date, with risk flags computed per row.
func (r *PGRepository) AtRiskProjects(ctx context.Context, limit int) ([]AtRiskProject, error) {
	rows, err := r.pool.Query(ctx, `
		SELECT p.id, p.name_en, p.name_ar, p.status, p.payment_status, p.end_date,
		       p.guarantee_end, p.contract_value, t.title_en, t.title_ar
		FROM projects p
		JOIN tenders t ON p.tender_id = t.id
		ORDER BY
			CASE p.payment_status WHEN 'delayed' THEN 0 WHEN 'unpaid' THEN 1 ELSE 2 END,
			p.end_date NULLS LAST
		LIMIT $1`, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	today := time.Now().UTC().Truncate(24 * time.Hour)
	var result []AtRiskProject
	for rows.Next() {
		var p AtRiskProject
		if err := rows.Scan(
			&p.ID, &p.NameEN, &p.NameAR, &p.Status, &p.PaymentStatus, &p.EndDate,
			&p.GuaranteeEnd, &p.ContractValue, &p.TenderTitleEN, &p.TenderTitleAR,
		); err != nil {
			return nil, err
		}
		p.Flags = riskFlags(p, today)
		result = append(result, p)
	}
	return result, rows.Err()
}

var _ Repository = (*PGRepository)(nil)
