package projects

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"strings"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/tenderdesk/tenderdesk/internal/platform/db"
	"github.com/tenderdesk/tenderdesk/internal/shared"
)

// Repository defines project persistence.
type Repository interface {
	List(ctx context.Context, filter ListFilter) ([]Project, error)
	Find(ctx context.Context, id int64) (*Project, error)
	Create(ctx context.Context, p Project) (int64, error)
	Update(ctx context.Context, id int64, changes map[string]any) error
	AssignSuppliers(ctx context.Context, projectID int64, supplierIDs []int64) error
	SupplierIDs(ctx context.Context, projectID int64) ([]int64, error)
}

// PGRepository is the PostgreSQL implementation of Repository.
type PGRepository struct {
	pool *pgxpool.Pool
}

// NewPGRepository builds a PGRepository.
func NewPGRepository(pool *pgxpool.Pool) *PGRepository {
	return &PGRepository{pool: pool}
}

const projectColumns = `
	p.id, p.tender_id, p.name_en, p.name_ar, p.start_date, p.end_date, p.status,
	p.currency, p.contract_value, p.cost, p.exchange_rate, p.amount_received,
	p.amount_invoiced, p.profit_local, p.payment_status, p.guarantee_value,
	p.guarantee_start, p.guarantee_end, p.guarantee_retained, p.notes,
	p.manager_id, p.created_at, p.updated_at`

func scanProject(row pgx.Row, withTender bool) (*Project, error) {
	var p Project
	dest := []any{
		&p.ID, &p.TenderID, &p.NameEN, &p.NameAR, &p.StartDate, &p.EndDate, &p.Status,
		&p.Currency, &p.ContractValue, &p.Cost, &p.ExchangeRate, &p.AmountReceived,
		&p.AmountInvoiced, &p.ProfitLocal, &p.PaymentStatus, &p.GuaranteeValue,
		&p.GuaranteeStart, &p.GuaranteeEnd, &p.GuaranteeRetained, &p.Notes,
		&p.ManagerID, &p.CreatedAt, &p.UpdatedAt,
	}
	if withTender {
		dest = append(dest, &p.TenderTitleEN, &p.TenderTitleAR)
	}
	if err := row.Scan(dest...); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, shared.ErrNotFound
		}
		return nil, err
	}
	return &p, nil
}

// List returns projects matching the filter, earliest end date first with
// open-ended projects last.
func (r *PGRepository) List(ctx context.Context, filter ListFilter) ([]Project, error) {
	query := `SELECT` + projectColumns + `,
		t.title_en AS tender_title_en,
		t.title_ar AS tender_title_ar
	FROM projects p
	JOIN tenders t ON p.tender_id = t.id`

	var clauses []string
	var args []any
	arg := func(v any) string {
		args = append(args, v)
		return fmt.Sprintf("$%d", len(args))
	}
	if filter.Status != "" {
		clauses = append(clauses, "p.status = "+arg(filter.Status))
	}
	if filter.PaymentStatus != "" {
		clauses = append(clauses, "p.payment_status = "+arg(filter.PaymentStatus))
	}
	if filter.ManagerID != 0 {
		clauses = append(clauses, "p.manager_id = "+arg(filter.ManagerID))
	}
	if len(clauses) > 0 {
		query += " WHERE " + strings.Join(clauses, " AND ")
	}
	query += " ORDER BY p.end_date NULLS LAST, p.id"

	rows, err := r.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var result []Project
	for rows.Next() {
		p, err := scanProject(rows, true)
		if err != nil {
			return nil, err
		}
		result = append(result, *p)
	}
	return result, rows.Err()
}

// Find returns a project by id.
func (r *PGRepository) Find(ctx context.Context, id int64) (*Project, error) {
	row := r.pool.QueryRow(ctx, `SELECT`+projectColumns+` FROM projects p WHERE p.id = $1`, id)
	return scanProject(row, false)
}

// Create inserts a project row and returns its id.
func (r *PGRepository) Create(ctx context.Context, p Project) (int64, error) {
	var id int64
	err := r.pool.QueryRow(ctx, `
		INSERT INTO projects (
			tender_id, name_en, name_ar, start_date, end_date, status, currency,
			contract_value, cost, exchange_rate, amount_received, amount_invoiced,
			profit_local, payment_status, guarantee_value, guarantee_start,
			guarantee_end, guarantee_retained, notes, manager_id
		) VALUES (
			$1, $2, $3, $4, $5, $6, $7, $8, $9, $10,
			$11, $12, $13, $14, $15, $16, $17, $18, $19, $20
		)
		RETURNING id`,
		p.TenderID, p.NameEN, p.NameAR, p.StartDate, p.EndDate, p.Status, p.Currency,
		p.ContractValue, p.Cost, p.ExchangeRate, p.AmountReceived, p.AmountInvoiced,
		p.ProfitLocal, p.PaymentStatus, p.GuaranteeValue, p.GuaranteeStart,
		p.GuaranteeEnd, p.GuaranteeRetained, p.Notes, p.ManagerID,
	).Scan(&id)
	return id, err
}

var updatableProjectColumns = map[string]bool{
	"name_en": true, "name_ar": true, "start_date": true, "end_date": true,
	"status": true, "currency": true, "contract_value": true, "cost": true,
	"exchange_rate": true, "amount_received": true, "amount_invoiced": true,
	"profit_local": true, "payment_status": true, "guarantee_value": true,
	"guarantee_start": true, "guarantee_end": true, "guarantee_retained": true,
	"notes": true, "manager_id": true,
}

// Update applies a partial column update, ignoring unknown fields.
func (r *PGRepository) Update(ctx context.Context, id int64, changes map[string]any) error {
	columns := make([]string, 0, len(changes))
	for column := range changes {
		if updatableProjectColumns[column] {
			columns = append(columns, column)
		}
	}
	sort.Strings(columns)
	var assignments []string
	var args []any
	for _, column := range columns {
		args = append(args, changes[column])
		assignments = append(assignments, fmt.Sprintf("%s = $%d", column, len(args)))
	}
	if len(assignments) == 0 {
		return nil
	}
	args = append(args, id)
	query := fmt.Sprintf(
		"UPDATE projects SET %s, updated_at = NOW() WHERE id = $%d",
		strings.Join(assignments, ", "), len(args),
	)
	tag, err := r.pool.Exec(ctx, query, args...)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return shared.ErrNotFound
	}
	return nil
}

// AssignSuppliers replaces the project's supplier links in one transaction.
func (r *PGRepository) AssignSuppliers(ctx context.Context, projectID int64, supplierIDs []int64) error {
	return db.WithTx(ctx, r.pool, func(tx pgx.Tx) error {
		if _, err := tx.Exec(ctx, `DELETE FROM project_suppliers WHERE project_id = $1`, projectID); err != nil {
			return err
		}
		for _, supplierID := range supplierIDs {
			if _, err := tx.Exec(ctx,
				`INSERT INTO project_suppliers (project_id, supplier_id) VALUES ($1, $2) ON CONFLICT DO NOTHING`,
				projectID, supplierID,
			); err != nil {
				return err
			}
		}
		return nil
	})
}

// SupplierIDs returns the ids of suppliers assigned to the project.
func (r *PGRepository) SupplierIDs(ctx context.Context, projectID int64) ([]int64, error) {
	rows, err := r.pool.Query(ctx,
		`SELECT supplier_id FROM project_suppliers WHERE project_id = $1 ORDER BY supplier_id`, projectID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var ids []int64
	for rows.Next() {
		var id int64
		if err := rows.Scan(&id); err != nil {
			return nil, err
		}
		ids = append(ids, id)
	}
	return ids, rows.Err()
}

var _ Repository = (*PGRepository)(nil)
