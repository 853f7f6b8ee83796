package projects

import (
	"context"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/tenderdesk/tenderdesk/internal/auth"
	"github.com/tenderdesk/tenderdesk/internal/rbac"
	"github.com/tenderdesk/tenderdesk/internal/shared"
)

type memoryProjectRepo struct {
	projects  map[int64]Project
	suppliers map[int64][]int64
	nextID    int64
}

func newMemoryProjectRepo() *memoryProjectRepo {
	return &memoryProjectRepo{
		projects:  make(map[int64]Project),
		suppliers: make(map[int64][]int64),
	}
}

func (m *memoryProjectRepo) List(ctx context.Context, filter ListFilter) ([]Project, error) {
	var result []Project
	for _, p := range m.projects {
		if filter.Status != "" && string(p.Status) != filter.Status {
			continue
		}
		result = append(result, p)
	}
	return result, nil
}

func (m *memoryProjectRepo) Find(ctx context.Context, id int64) (*Project, error) {
	p, ok := m.projects[id]
	if !ok {
		return nil, shared.ErrNotFound
	}
	return &p, nil
}

func (m *memoryProjectRepo) Create(ctx context.Context, p Project) (int64, error) {
	m.nextID++
	p.ID = m.nextID
	m.projects[p.ID] = p
	return p.ID, nil
}

func (m *memoryProjectRepo) Update(ctx context.Context, id int64, changes map[string]any) error {
	p, ok := m.projects[id]
	if !ok {
		return shared.ErrNotFound
	}
	if status, ok := changes["status"].(string); ok {
		p.Status = Status(status)
	}
	if payment, ok := changes["payment_status"].(string); ok {
		ps := PaymentStatus(payment)
		p.PaymentStatus = &ps
	}
	m.projects[id] = p
	return nil
}

func (m *memoryProjectRepo) AssignSuppliers(ctx context.Context, projectID int64, supplierIDs []int64) error {
	m.suppliers[projectID] = append([]int64(nil), supplierIDs...)
	return nil
}

func (m *memoryProjectRepo) SupplierIDs(ctx context.Context, projectID int64) ([]int64, error) {
	return m.suppliers[projectID], nil
}

var _ Repository = (*memoryProjectRepo)(nil)

func projectActor(role rbac.Role) *auth.User {
	return &auth.User{ID: 9, Username: "pm", Role: role}
}

func TestCreateDefaults(t *testing.T) {
	repo := newMemoryProjectRepo()
	svc := NewService(repo, nil)

	id, err := svc.Create(context.Background(), projectActor(rbac.RoleProjectManager), Project{
		TenderID: 1,
		NameEN:   "Clinic rehabilitation",
	})
	require.NoError(t, err)

	created := repo.projects[id]
	require.Equal(t, StatusPlanning, created.Status)
	require.NotNil(t, created.PaymentStatus)
	require.Equal(t, PaymentUnpaid, *created.PaymentStatus)
}

func TestProjectMutationRoles(t *testing.T) {
	svc := NewService(newMemoryProjectRepo(), nil)

	// Finance shares the projects area so it can record received amounts.
	for _, role := range []rbac.Role{rbac.RoleAdmin, rbac.RoleProjectManager, rbac.RoleFinance} {
		_, err := svc.Create(context.Background(), projectActor(role), Project{TenderID: 1, NameEN: "x"})
		require.NoError(t, err, "role %s", role)
	}
	for _, role := range []rbac.Role{rbac.RoleProcurement, rbac.RoleViewer} {
		_, err := svc.Create(context.Background(), projectActor(role), Project{TenderID: 1, NameEN: "x"})
		require.ErrorIs(t, err, shared.ErrPermissionDenied, "role %s", role)
	}
}

func TestUpdateValidatesEnums(t *testing.T) {
	repo := newMemoryProjectRepo()
	svc := NewService(repo, nil)
	actor := projectActor(rbac.RoleProjectManager)

	id, err := svc.Create(context.Background(), actor, Project{TenderID: 1, NameEN: "x"})
	require.NoError(t, err)

	require.ErrorIs(t, svc.Update(context.Background(), actor, id, map[string]any{"status": "archived"}), ErrInvalidInput)
	require.ErrorIs(t, svc.Update(context.Background(), actor, id, map[string]any{"payment_status": "pending"}), ErrInvalidInput)

	require.NoError(t, svc.Update(context.Background(), actor, id, map[string]any{"status": "executing", "payment_status": "delayed"}))
	got := repo.projects[id]
	require.Equal(t, StatusExecuting, got.Status)
	require.Equal(t, PaymentDelayed, *got.PaymentStatus)
}

func TestAssignSuppliersReplaces(t *testing.T) {
	repo := newMemoryProjectRepo()
	svc := NewService(repo, nil)
	actor := projectActor(rbac.RoleProjectManager)

	id, err := svc.Create(context.Background(), actor, Project{TenderID: 1, NameEN: "x"})
	require.NoError(t, err)

	require.NoError(t, svc.AssignSuppliers(context.Background(), actor, id, []int64{1, 2}))
	require.NoError(t, svc.AssignSuppliers(context.Background(), actor, id, []int64{3}))

	ids, err := svc.SupplierIDs(context.Background(), id)
	require.NoError(t, err)
	require.Equal(t, []int64{3}, ids)

	require.ErrorIs(t,
		svc.AssignSuppliers(context.Background(), actor, 99, []int64{1}),
		shared.ErrNotFound)
}
