package suppliers

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

// Repository defines supplier persistence.
type Repository interface {
	List(ctx context.Context) ([]Supplier, error)
	Find(ctx context.Context, id int64) (*Supplier, error)
	Create(ctx context.Context, s Supplier) (int64, error)
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

const supplierColumns = `id, name_en, name_ar, contact_name, email, phone, address, notes, created_at`

// List returns the supplier directory ordered by English name.
func (r *PGRepository) List(ctx context.Context) ([]Supplier, error) {
	rows, err := r.pool.Query(ctx, `SELECT `+supplierColumns+` FROM suppliers ORDER BY name_en, id`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var result []Supplier
	for rows.Next() {
		var s Supplier
		if err := rows.Scan(&s.ID, &s.NameEN, &s.NameAR, &s.ContactName, &s.Email, &s.Phone, &s.Address, &s.Notes, &s.CreatedAt); err != nil {
			return nil, err
		}
		result = append(result, s)
	}
	return result, rows.Err()
}

// Find returns a supplier by id.
func (r *PGRepository) Find(ctx context.Context, id int64) (*Supplier, error) {
	var s Supplier
	err := r.pool.QueryRow(ctx, `SELECT `+supplierColumns+` FROM suppliers WHERE id = $1`, id).
		Scan(&s.ID, &s.NameEN, &s.NameAR, &s.ContactName, &s.Email, &s.Phone, &s.Address, &s.Notes, &s.CreatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, shared.ErrNotFound
		}
		return nil, err
	}
	return &s, nil
}

// Create inserts a supplier row and returns its id.
func (r *PGRepository) Create(ctx context.Context, s Supplier) (int64, error) {
	var id int64
	err := r.pool.QueryRow(ctx, `
		INSERT INTO suppliers (name_en, name_ar, contact_name, email, phone, address, notes)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
		RETURNING id`,
		s.NameEN, s.NameAR, s.ContactName, s.Email, s.Phone, s.Address, s.Notes,
	).Scan(&id)
	return id, err
}

var updatableSupplierColumns = map[string]bool{
	"name_en": true, "name_ar": true, "contact_name": true,
	"email": true, "phone": true, "address": true, "notes": true,
}

// Update applies a partial column update, ignoring unknown fields.
func (r *PGRepository) Update(ctx context.Context, id int64, changes map[string]any) error {
	columns := make([]string, 0, len(changes))
	for column := range changes {
		if updatableSupplierColumns[column] {
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
	query := fmt.Sprintf("UPDATE suppliers SET %s WHERE id = $%d", strings.Join(assignments, ", "), len(args))
	tag, err := r.pool.Exec(ctx, query, args...)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return shared.ErrNotFound
	}
	return nil
}

// Delete removes a supplier.
func (r *PGRepository) Delete(ctx context.Context, id int64) error {
	tag, err := r.pool.Exec(ctx, `DELETE FROM suppliers WHERE id = $1`, id)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return shared.ErrNotFound
	}
	return nil
}

var _ Repository = (*PGRepository)(nil)
