package rbac

// Role is a closed enum of portal roles.
type Role string

// Portal roles.
const (
	RoleAdmin          Role = "admin"
	RoleProcurement    Role = "procurement"
	RoleProjectManager Role = "project_manager"
	RoleFinance        Role = "finance"
	RoleViewer         Role = "viewer"
)

// Area is a coarse functional permission bucket.
type Area string

// Functional areas.
const (
	AreaTenders   Area = "tenders"
	AreaProjects  Area = "projects"
	AreaFinance   Area = "finance"
	AreaSuppliers Area = "suppliers"
	AreaReports   Area = "reports"
)

// Roles lists every known role.
func Roles() []Role {
	return []Role{RoleAdmin, RoleProcurement, RoleProjectManager, RoleFinance, RoleViewer}
}

// Valid reports whether the role is a member of the closed enum.
func (r Role) Valid() bool {
	switch r {
	case RoleAdmin, RoleProcurement, RoleProjectManager, RoleFinance, RoleViewer:
		return true
	}
	return false
}
