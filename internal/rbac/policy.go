package rbac

import (
	"fmt"
	"sort"

	"github.com/tenderdesk/tenderdesk/internal/shared"
)

// policy is the fixed role to area mapping. It is process configuration,
// never persisted or mutated at runtime.
var policy = map[Role]map[Area]struct{}{
	RoleAdmin:          areaSet(AreaTenders, AreaProjects, AreaFinance, AreaSuppliers, AreaReports),
	RoleProcurement:    areaSet(AreaTenders, AreaReports, AreaSuppliers),
	RoleProjectManager: areaSet(AreaProjects, AreaReports, AreaSuppliers),
	RoleFinance:        areaSet(AreaProjects, AreaFinance, AreaReports),
	RoleViewer:         areaSet(AreaReports),
}

func areaSet(areas ...Area) map[Area]struct{} {
	set := make(map[Area]struct{}, len(areas))
	for _, a := range areas {
		set[a] = struct{}{}
	}
	return set
}

// PermissionError reports a role lacking access to an area.
// It unwraps to shared.ErrPermissionDenied so the HTTP boundary can map
// it to 403 without losing role and area for logging.
type PermissionError struct {
	Role Role
	Area Area
}

func (e *PermissionError) Error() string {
	return fmt.Sprintf("role %q does not have access to %s", e.Role, e.Area)
}

func (e *PermissionError) Unwrap() error {
	return shared.ErrPermissionDenied
}

// Check verifies the role may act in the area. Unknown roles get the
// empty set, not an error of a different kind.
func Check(role Role, area Area) error {
	if _, ok := policy[role][area]; !ok {
		return &PermissionError{Role: role, Area: area}
	}
	return nil
}

// Capabilities returns the sorted areas granted to the role.
func Capabilities(role Role) []Area {
	areas := make([]Area, 0, len(policy[role]))
	for a := range policy[role] {
		areas = append(areas, a)
	}
	sort.Slice(areas, func(i, j int) bool { return areas[i] < areas[j] })
	return areas
}
