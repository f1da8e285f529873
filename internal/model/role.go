package model

// Role authorization role of a user — stored as users.role
type Role string

const (
	RoleDirector       Role = "director"
	RoleDepartmentHead Role = "department_head"
	RoleStaff          Role = "staff"
	RoleAdmin          Role = "admin"
)

// Roles lists every role in display order.
func Roles() []Role {
	return []Role{RoleDirector, RoleDepartmentHead, RoleStaff, RoleAdmin}
}

// Valid reports whether r is one of the known roles.
func (r Role) Valid() bool {
	switch r {
	case RoleDirector, RoleDepartmentHead, RoleStaff, RoleAdmin:
		return true
	}
	return false
}

// Label is the name shown to staff.
func (r Role) Label() string {
	switch r {
	case RoleDirector:
		return "Director"
	case RoleDepartmentHead:
		return "Jefe de Departamento"
	case RoleStaff:
		return "Funcionario"
	case RoleAdmin:
		return "Admin"
	}
	return string(r)
}
