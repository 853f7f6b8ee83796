package tenders

import (
	"context"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/tenderdesk/tenderdesk/internal/auth"
	"github.com/tenderdesk/tenderdesk/internal/rbac"
	"github.com/tenderdesk/tenderdesk/internal/shared"
)

type memoryTenderRepo struct {
	tenders map[int64]Tender
	nextID  int64
}

func newMemoryTenderRepo() *memoryTenderRepo {
	return &memoryTenderRepo{tenders: make(map[int64]Tender)}
}

func (m *memoryTenderRepo) List(ctx context.Context, filter ListFilter) ([]Tender, error) {
	var result []Tender
	for _, t := range m.tenders {
		if filter.Status != "" && string(t.Status) != filter.Status {
			continue
		}
		if filter.TenderType != "" && string(t.TenderType) != filter.TenderType {
			continue
		}
		result = append(result, t)
	}
	return result, nil
}

func (m *memoryTenderRepo) Find(ctx context.Context, id int64) (*Tender, error) {
	t, ok := m.tenders[id]
	if !ok {
		return nil, shared.ErrNotFound
	}
	return &t, nil
}

func (m *memoryTenderRepo) Create(ctx context.Context, t Tender) (int64, error) {
	m.nextID++
	t.ID = m.nextID
	m.tenders[t.ID] = t
	return t.ID, nil
}

func (m *memoryTenderRepo) Update(ctx context.Context, id int64, changes map[string]any) error {
	t, ok := m.tenders[id]
	if !ok {
		return shared.ErrNotFound
	}
	if status, ok := changes["status"].(string); ok {
		t.Status = Status(status)
	}
	if title, ok := changes["title_en"].(string); ok {
		t.TitleEN = title
	}
	m.tenders[id] = t
	return nil
}

func (m *memoryTenderRepo) Delete(ctx context.Context, id int64) error {
	if _, ok := m.tenders[id]; !ok {
		return shared.ErrNotFound
	}
	delete(m.tenders, id)
	return nil
}

var _ Repository = (*memoryTenderRepo)(nil)

func actorWithRole(role rbac.Role) *auth.User {
	return &auth.User{ID: 7, Username: "tester", Role: role}
}

func TestCreateDefaultsToDraft(t *testing.T) {
	repo := newMemoryTenderRepo()
	svc := NewService(repo, nil)

	id, err := svc.Create(context.Background(), actorWithRole(rbac.RoleProcurement), Tender{
		TitleEN:    "Office furniture",
		TenderType: TypeRFQ,
	})
	require.NoError(t, err)

	created := repo.tenders[id]
	require.Equal(t, StatusDraft, created.Status)
	require.NotNil(t, created.CreatedBy)
	require.Equal(t, int64(7), *created.CreatedBy)
}

func TestCreateRejectsUnknownEnums(t *testing.T) {
	svc := NewService(newMemoryTenderRepo(), nil)
	actor := actorWithRole(rbac.RoleAdmin)

	_, err := svc.Create(context.Background(), actor, Tender{TitleEN: "x", TenderType: Type("EOI")})
	require.ErrorIs(t, err, ErrInvalidInput)

	_, err = svc.Create(context.Background(), actor, Tender{TitleEN: "x", TenderType: TypeRFP, Status: Status("archived")})
	require.ErrorIs(t, err, ErrInvalidInput)
}

func TestMutationsRequireTendersArea(t *testing.T) {
	repo := newMemoryTenderRepo()
	svc := NewService(repo, nil)

	for _, role := range []rbac.Role{rbac.RoleViewer, rbac.RoleFinance, rbac.RoleProjectManager} {
		actor := actorWithRole(role)
		_, err := svc.Create(context.Background(), actor, Tender{TitleEN: "x", TenderType: TypeRFQ})
		require.ErrorIs(t, err, shared.ErrPermissionDenied, "role %s", role)

		err = svc.Update(context.Background(), actor, 1, map[string]any{"title_en": "y"})
		require.ErrorIs(t, err, shared.ErrPermissionDenied, "role %s", role)

		err = svc.Delete(context.Background(), actor, 1)
		require.ErrorIs(t, err, shared.ErrPermissionDenied, "role %s", role)
	}
	require.Empty(t, repo.tenders)
}

func TestUpdateValidatesStatus(t *testing.T) {
	repo := newMemoryTenderRepo()
	svc := NewService(repo, nil)
	actor := actorWithRole(rbac.RoleProcurement)

	id, err := svc.Create(context.Background(), actor, Tender{TitleEN: "x", TenderType: TypeITB})
	require.NoError(t, err)

	err = svc.Update(context.Background(), actor, id, map[string]any{"status": "archived"})
	require.ErrorIs(t, err, ErrInvalidInput)

	err = svc.Update(context.Background(), actor, id, map[string]any{"status": "submitted"})
	require.NoError(t, err)
	require.Equal(t, StatusSubmitted, repo.tenders[id].Status)
}

func TestDeleteMissingTender(t *testing.T) {
	svc := NewService(newMemoryTenderRepo(), nil)
	err := svc.Delete(context.Background(), actorWithRole(rbac.RoleAdmin), 42)
	require.ErrorIs(t, err, shared.ErrNotFound)
}
