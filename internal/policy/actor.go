// Package policy holds the authorization core: who is acting, what they may
// see, what they may change, and how a request moves through approval.
// Everything here is pure; callers pass an already-resolved Actor.
package policy

import (
	"intranet-cesfam/backend/internal/model"
	pkgerrors "intranet-cesfam/backend/pkg/errors"
)

// ErrNoActor the caller carries no identity
var ErrNoActor = pkgerrors.New(pkgerrors.ErrUnauthenticated, "authentication required")

// Actor authorization context of the caller.
// DepartmentID is 0 when the user has no department.
type Actor struct {
	UserID       int64
	Role         model.Role
	DepartmentID int64
}

// Valid reports whether the actor carries an identity.
func (a Actor) Valid() bool {
	return a.UserID > 0 && a.Role.Valid()
}

// IsAdmin admin role
func (a Actor) IsAdmin() bool { return a.Role == model.RoleAdmin }

// IsDirector director role
func (a Actor) IsDirector() bool { return a.Role == model.RoleDirector }

// IsDepartmentHead department_head role
func (a Actor) IsDepartmentHead() bool { return a.Role == model.RoleDepartmentHead }

// IsElevated director or admin, the roles with universal rights.
func (a Actor) IsElevated() bool { return a.IsDirector() || a.IsAdmin() }

// Heads reports whether the actor is a department head of departmentID.
func (a Actor) Heads(departmentID int64) bool {
	return a.IsDepartmentHead() && a.DepartmentID > 0 && a.DepartmentID == departmentID
}
