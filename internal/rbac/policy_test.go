package rbac

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/tenderdesk/tenderdesk/internal/shared"
)

func TestCheckAdminAllAreas(t *testing.T) {
	for _, area := range []Area{AreaTenders, AreaProjects, AreaFinance, AreaSuppliers, AreaReports} {
		require.NoError(t, Check(RoleAdmin, area))
	}
}

func TestCheckViewerDeniedTenders(t *testing.T) {
	err := Check(RoleViewer, AreaTenders)
	require.Error(t, err)
	require.True(t, errors.Is(err, shared.ErrPermissionDenied))

	var pe *PermissionError
	require.True(t, errors.As(err, &pe))
	require.Equal(t, RoleViewer, pe.Role)
	require.Equal(t, AreaTenders, pe.Area)
}

func TestCheckUnknownRoleEmptySet(t *testing.T) {
	err := Check(Role("intern"), AreaReports)
	require.Error(t, err)
	require.True(t, errors.Is(err, shared.ErrPermissionDenied))
}

func TestEveryRoleHasCapabilities(t *testing.T) {
	for _, role := range Roles() {
		require.NotEmpty(t, Capabilities(role), "role %s must map to a non-empty set", role)
	}
}

func TestCapabilitiesSorted(t *testing.T) {
	caps := Capabilities(RoleFinance)
	require.Equal(t, []Area{AreaFinance, AreaProjects, AreaReports}, caps)
}
