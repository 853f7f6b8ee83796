package notifications

import (
	"context"
	"errors"

	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/tenderdesk/tenderdesk/internal/rbac"
)

// Repository persists and serves notifications.
type Repository interface {
	Inserter
	ListByRole(ctx context.Context, role rbac.Role) ([]Notification, error)
	MarkRead(ctx context.Context, id int64) error
}

// PGRepository implements Repository and the engine's record sources on
// PostgreSQL. uniqueViolation is the postgres error code for a broken
// UNIQUE constraint.
type PGRepository struct {
	pool *pgxpool.Pool
}

const uniqueViolation = "23505"

// NewRepository constructs a PostgreSQL repository.
func NewRepository(pool *pgxpool.Pool) *PGRepository {
	return &PGRepository{pool: pool}
}

// Insert stores a notification. The notifications.unique_key column carries
// a UNIQUE constraint; a conflict means the fact was already materialized
// by an earlier run (or a concurrent one), which is success, not an error.
func (r *PGRepository) Insert(ctx context.Context, n Notification) error {
	_, err := r.pool.Exec(ctx, `
		INSERT INTO notifications (unique_key, target_role, title_en, title_ar, message_en, message_ar, level, related_type, related_id)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)`,
		n.UniqueKey, n.TargetRole, n.TitleEN, n.TitleAR, n.MessageEN, n.MessageAR, n.Level, n.RelatedType, n.RelatedID,
	)
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == uniqueViolation {
			return nil
		}
		return err
	}
	return nil
}

// ListByRole returns notifications targeted at the role, newest first.
func (r *PGRepository) ListByRole(ctx context.Context, role rbac.Role) ([]Notification, error) {
	rows, err := r.pool.Query(ctx, `
		SELECT id, unique_key, target_role, title_en, title_ar, message_en, message_ar, level, related_type, related_id, is_read, created_at
		FROM notifications
		WHERE target_role = $1
		ORDER BY created_at DESC, id DESC`, role)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var result []Notification
	for rows.Next() {
		var n Notification
		if err := rows.Scan(&n.ID, &n.UniqueKey, &n.TargetRole, &n.TitleEN, &n.TitleAR, &n.MessageEN, &n.MessageAR, &n.Level, &n.RelatedType, &n.RelatedID, &n.IsRead, &n.CreatedAt); err != nil {
			return nil, err
		}
		result = append(result, n)
	}
	return result, rows.Err()
}

// MarkRead flips is_read. Absent ids and already-read rows are no-ops.
func (r *PGRepository) MarkRead(ctx context.Context, id int64) error {
	_, err := r.pool.Exec(ctx, `UPDATE notifications SET is_read = TRUE WHERE id = $1`, id)
	return err
}

// OpenTenders lists closing-soon rule candidates.
func (r *PGRepository) OpenTenders(ctx context.Context) ([]TenderFact, error) {
	rows, err := r.pool.Query(ctx, `
		SELECT id, title_en, COALESCE(title_ar, ''), submission_deadline
		FROM tenders
		WHERE submission_deadline IS NOT NULL
		  AND status IN ('draft', 'in_preparation', 'submitted')`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var facts []TenderFact
	for rows.Next() {
		var f TenderFact
		if err := rows.Scan(&f.ID, &f.TitleEN, &f.TitleAR, &f.SubmissionDeadline); err != nil {
			return nil, err
		}
		facts = append(facts, f)
	}
	return facts, rows.Err()
}

// UnpaidInvoices lists overdue rule candidates.
func (r *PGRepository) UnpaidInvoices(ctx context.Context) ([]InvoiceFact, error) {
	rows, err := r.pool.Query(ctx, `
		SELECT i.id, p.name_en, COALESCE(p.name_ar, ''), i.due_date
		FROM invoices i
		JOIN projects p ON i.project_id = p.id
		WHERE i.status <> 'paid' AND i.due_date IS NOT NULL`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var facts []InvoiceFact
	for rows.Next() {
		var f InvoiceFact
		if err := rows.Scan(&f.ID, &f.ProjectNameEN, &f.ProjectNameAR, &f.DueDate); err != nil {
			return nil, err
		}
		facts = append(facts, f)
	}
	return facts, rows.Err()
}

// ProjectsUnderGuarantee lists guarantee-expiry rule candidates.
func (r *PGRepository) ProjectsUnderGuarantee(ctx context.Context) ([]ProjectFact, error) {
	rows, err := r.pool.Query(ctx, `
		SELECT id, name_en, COALESCE(name_ar, ''), guarantee_end
		FROM projects
		WHERE guarantee_end IS NOT NULL`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var facts []ProjectFact
	for rows.Next() {
		var f ProjectFact
		if err := rows.Scan(&f.ID, &f.NameEN, &f.NameAR, &f.GuaranteeEnd); err != nil {
			return nil, err
		}
		facts = append(facts, f)
	}
	return facts, rows.Err()
}

var _ Repository = (*PGRepository)(nil)
var _ TenderSource = (*PGRepository)(nil)
var _ InvoiceSource = (*PGRepository)(nil)
var _ ProjectSource = (*PGRepository)(nil)
