package suppliers

import (
	"context"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/tenderdesk/tenderdesk/internal/auth"
	"github.com/tenderdesk/tenderdesk/internal/rbac"
	"github.com/tenderdesk/tenderdesk/internal/shared"
)

type memorySupplierRepo struct {
	suppliers map[int64]Supplier
	nextID    int64
}

func newMemorySupplierRepo() *memorySupplierRepo {
	return &memorySupplierRepo{suppliers: make(map[int64]Supplier)}
}

func (m *memorySupplierRepo) List(ctx context.Context) ([]Supplier, error) {
	var result []Supplier
	for _, s := range m.suppliers {
		result = append(result, s)
	}
	return result, nil
}

func (m *memorySupplierRepo) Find(ctx context.Context, id int64) (*Supplier, error) {
	s, ok := m.suppliers[id]
	if !ok {
		return nil, shared.ErrNotFound
	}
	return &s, nil
}

func (m *memorySupplierRepo) Create(ctx context.Context, s Supplier) (int64, error) {
	m.nextID++
	s.ID = m.nextID
	m.suppliers[s.ID] = s
	return s.ID, nil
}

func (m *memorySupplierRepo) Update(ctx context.Context, id int64, changes map[string]any) error {
	s, ok := m.suppliers[id]
	if !ok {
		return shared.ErrNotFound
	}
	if name, ok := changes["name_en"].(string); ok {
		s.NameEN = name
	}
	m.suppliers[id] = s
	return nil
}

func (m *memorySupplierRepo) Delete(ctx context.Context, id int64) error {
	if _, ok := m.suppliers[id]; !ok {
		return shared.ErrNotFound
	}
	delete(m.suppliers, id)
	return nil
}

var _ Repository = (*memorySupplierRepo)(nil)

func TestSupplierMutationRoles(t *testing.T) {
	repo := newMemorySupplierRepo()
	svc := NewService(repo, nil)

	// Procurement and project managers share the supplier directory.
	for _, role := range []rbac.Role{rbac.RoleAdmin, rbac.RoleProcurement, rbac.RoleProjectManager} {
		_, err := svc.Create(context.Background(), &auth.User{ID: 1, Role: role}, Supplier{NameEN: "Vendor"})
		require.NoError(t, err, "role %s", role)
	}
	for _, role := range []rbac.Role{rbac.RoleFinance, rbac.RoleViewer} {
		_, err := svc.Create(context.Background(), &auth.User{ID: 1, Role: role}, Supplier{NameEN: "Vendor"})
		require.ErrorIs(t, err, shared.ErrPermissionDenied, "role %s", role)
	}
}

func TestSupplierLifecycle(t *testing.T) {
	repo := newMemorySupplierRepo()
	svc := NewService(repo, nil)
	actor := &auth.User{ID: 3, Role: rbac.RoleProcurement}

	id, err := svc.Create(context.Background(), actor, Supplier{NameEN: "Atlas Construction Group"})
	require.NoError(t, err)

	require.NoError(t, svc.Update(context.Background(), actor, id, map[string]any{"name_en": "Atlas Group"}))
	got, err := svc.Get(context.Background(), id)
	require.NoError(t, err)
	require.Equal(t, "Atlas Group", got.NameEN)

	require.NoError(t, svc.Delete(context.Background(), actor, id))
	_, err = svc.Get(context.Background(), id)
	require.ErrorIs(t, err, shared.ErrNotFound)
}
