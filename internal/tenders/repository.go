package tenders

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"strings"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/tenderdesk/tenderdesk/internal/shared"
)

// Repository defines tender persistence.
type Repository interface {
	List(ctx context.Context, filter ListFilter) ([]Tender, error)
	Find(ctx context.Context, id int64) (*Tender, error)
	Create(ctx context.Context, t Tender) (int64, error)
	Update(ctx context.Context, id int64, changes map[string]any) error
	Delete(ctx context.Context, id int64) error
}

// PGRepository is the PostgreSQL implementation of Repository.
type PGRepository struct {
	pool *pgxpool.Pool
}

// NewPGRepository builds a PGRepository.
func NewPGRepository(pool *pgxpool.Pool) *PGRepository {
	return &PGRepository{pool: pool}
}

const tenderColumns = `
	t.id, t.reference_code, t.title_en, t.title_ar, t.tender_type, t.donor,
	t.description_en, t.description_ar, t.status, t.estimated_value, t.currency,
	t.submission_deadline, t.issue_date, t.assigned_to, t.supplier_id,
	t.created_by, t.created_at, t.updated_at`

func scanTender(row pgx.Row) (*Tender, error) {
	var t Tender
	err := row.Scan(
		&t.ID, &t.ReferenceCode, &t.TitleEN, &t.TitleAR, &t.TenderType, &t.Donor,
		&t.DescriptionEN, &t.DescriptionAR, &t.Status, &t.EstimatedValue, &t.Currency,
		&t.SubmissionDeadline, &t.IssueDate, &t.AssignedTo, &t.SupplierID,
		&t.CreatedBy, &t.CreatedAt, &t.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, shared.ErrNotFound
		}
		return nil, err
	}
	return &t, nil
}

// List returns tenders matching the filter, soonest deadline first with
// undated tenders last.
func (r *PGRepository) List(ctx context.Context, filter ListFilter) ([]Tender, error) {
	query := `SELECT` + tenderColumns + `,
		u.full_name AS assigned_name,
		s.name_en AS supplier_name_en,
		s.name_ar AS supplier_name_ar
	FROM tenders t
	LEFT JOIN users u ON t.assigned_to = u.id
	LEFT JOIN suppliers s ON t.supplier_id = s.id`

	var clauses []string
	var args []any
	arg := func(v any) string {
		args = append(args, v)
		return fmt.Sprintf("$%d", len(args))
	}
	if filter.Status != "" {
		clauses = append(clauses, "t.status = "+arg(filter.Status))
	}
	if filter.TenderType != "" {
		clauses = append(clauses, "t.tender_type = "+arg(filter.TenderType))
	}
	if filter.AssignedTo != 0 {
		clauses = append(clauses, "t.assigned_to = "+arg(filter.AssignedTo))
	}
	if filter.Search != "" {
		term := "%" + filter.Search + "%"
		p := arg(term)
		clauses = append(clauses, fmt.Sprintf("(t.title_en ILIKE %s OR t.title_ar ILIKE %s OR t.reference_code ILIKE %s)", p, p, p))
	}
	if len(clauses) > 0 {
		query += " WHERE " + strings.Join(clauses, " AND ")
	}
	query += " ORDER BY t.submission_deadline NULLS LAST, t.id"

	rows, err := r.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var result []Tender
	for rows.Next() {
		var t Tender
		if err := rows.Scan(
			&t.ID, &t.ReferenceCode, &t.TitleEN, &t.TitleAR, &t.TenderType, &t.Donor,
			&t.DescriptionEN, &t.DescriptionAR, &t.Status, &t.EstimatedValue, &t.Currency,
			&t.SubmissionDeadline, &t.IssueDate, &t.AssignedTo, &t.SupplierID,
			&t.CreatedBy, &t.CreatedAt, &t.UpdatedAt,
			&t.AssignedName, &t.SupplierNameEN, &t.SupplierNameAR,
		); err != nil {
			return nil, err
		}
		result = append(result, t)
	}
	return result, rows.Err()
}

// Find returns a tender by id.
func (r *PGRepository) Find(ctx context.Context, id int64) (*Tender, error) {
	row := r.pool.QueryRow(ctx, `SELECT`+tenderColumns+` FROM tenders t WHERE t.id = $1`, id)
	return scanTender(row)
}

// Create inserts a tender row and returns its id.
func (r *PGRepository) Create(ctx context.Context, t Tender) (int64, error) {
	var id int64
	err := r.pool.QueryRow(ctx, `
		INSERT INTO tenders (
			reference_code, title_en, title_ar, tender_type, donor, description_en,
			description_ar, status, estimated_value, currency, submission_deadline,
			issue_date, assigned_to, supplier_id, created_by
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15)
		RETURNING id`,
		t.ReferenceCode, t.TitleEN, t.TitleAR, t.TenderType, t.Donor, t.DescriptionEN,
		t.DescriptionAR, t.Status, t.EstimatedValue, t.Currency, t.SubmissionDeadline,
		t.IssueDate, t.AssignedTo, t.SupplierID, t.CreatedBy,
	).Scan(&id)
	return id, err
}

var updatableTenderColumns = map[string]bool{
	"reference_code": true, "title_en": true, "title_ar": true,
	"tender_type": true, "donor": true, "description_en": true,
	"description_ar": true, "status": true, "estimated_value": true,
	"currency": true, "submission_deadline": true, "issue_date": true,
	"assigned_to": true, "supplier_id": true,
}

// Update applies a partial column update. Unknown columns are ignored so a
// stray payload field cannot reach the SQL text.
func (r *PGRepository) Update(ctx context.Context, id int64, changes map[string]any) error {
	columns := make([]string, 0, len(changes))
	for column := range changes {
		if updatableTenderColumns[column] {
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
		"UPDATE tenders SET %s, updated_at = NOW() WHERE id = $%d",
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

// Delete removes a tender and cascades to its projects.
func (r *PGRepository) Delete(ctx context.Context, id int64) error {
	tag, err := r.pool.Exec(ctx, `DELETE FROM tenders WHERE id = $1`, id)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return shared.ErrNotFound
	}
	return nil
}

var _ Repository = (*PGRepository)(nil)
