package domain

// EmployeeRole scopes what an authenticated employee may do with cases.
type EmployeeRole string

const (
	RoleAgent      EmployeeRole = "AGENT"
	RoleBackOffice EmployeeRole = "BACK_OFFICE"
	RoleSupervisor EmployeeRole = "SUPERVISOR"
)

// Valid reports whether r is a known role.
func (r EmployeeRole) Valid() bool {
	switch r {
	case RoleAgent, RoleBackOffice, RoleSupervisor:
		return true
	}
	return false
}
