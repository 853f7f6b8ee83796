package invoices

import (
	"context"
	"fmt"
	"sort"
	"strings"

	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/tenderdesk/tenderdesk/internal/shared"
)

// Repository defines invoice persistence.
type Repository interface {
	ListByProject(ctx context.Context, projectID int64) ([]Invoice, error)
	Create(ctx context.Context, inv Invoice) (int64, error)
	Update(ctx context.Context, id int64, changes map[string]any) error
}

// PGRepository is the PostgreSQL implementation of Repository.
type PGRepository struct {
	pool *pgxpool.Pool
}

// NewPGRepository builds a PGRepository.
func NewPGRepository(pool *pgxpool.Pool) *PGRepository {
	return &PGRepository{pool: pool}
}

// ListByProject returns a project's invoices ordered by due date.
func (r *PGRepository) ListByProject(ctx context.Context, projectID int64) ([]Invoice, error) {
	rows, err := r.pool.Query(ctx, `
		SELECT id, project_id, amount, currency, due_date, paid_date, status, notes, created_at
		FROM invoices
		WHERE project_id = $1
		ORDER BY due_date NULLS LAST, id`, projectID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var result []Invoice
	for rows.Next() {
		var inv Invoice
		if err := rows.Scan(&inv.ID, &inv.ProjectID, &inv.Amount, &inv.Currency, &inv.DueDate, &inv.PaidDate, &inv.Status, &inv.Notes, &inv.CreatedAt); err != nil {
			return nil, err
		}
		result = append(result, inv)
	}
	return result, rows.Err()
}

// Create inserts an invoice row and returns its id.
func (r *PGRepository) Create(ctx context.Context, inv Invoice) (int64, error) {
	var id int64
	err := r.pool.QueryRow(ctx, `
		INSERT INTO invoices (project_id, amount, currency, due_date, paid_date, status, notes)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
		RETURNING id`,
		inv.ProjectID, inv.Amount, inv.Currency, inv.DueDate, inv.PaidDate, inv.Status, inv.Notes,
	).Scan(&id)
	return id, err
}

var updatableInvoiceColumns = map[string]bool{
	"amount": true, "currency": true, "due_date": true,
	"paid_date": true, "status": true, "notes": true,
}

// Update applies a partial column update, ignoring unknown fields.
func (r *PGRepository) Update(ctx context.Context, id int64, changes map[string]any) error {
	columns := make([]string, 0, len(changes))
	for column := range changes {
		if updatableInvoiceColumns[column] {
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
	query := fmt.Sprintf("UPDATE invoices SET %s WHERE id = $%d", strings.Join(assignments, ", "), len(args))
	tag, err := r.pool.Exec(ctx, query, args...)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return shared.ErrNotFound
	}
	return nil
}

var _ Repository = (*PGRepository)(nil)
