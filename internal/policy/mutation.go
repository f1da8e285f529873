package policy

import (
	"intranet-cesfam/backend/internal/model"
	pkgerrors "intranet-cesfam/backend/pkg/errors"
)

var (
	ErrNotOwner       = pkgerrors.New(pkgerrors.ErrForbidden, "only the owner may change this record")
	ErrSelfDelete     = pkgerrors.New(pkgerrors.ErrForbidden, "you cannot delete your own account")
	ErrGeneralEvent   = pkgerrors.New(pkgerrors.ErrForbidden, "only the director may publish general events")
	ErrCannotAnnounce = pkgerrors.New(pkgerrors.ErrForbidden, "role cannot publish announcements")
	ErrAdminOnly      = pkgerrors.New(pkgerrors.ErrForbidden, "administrator rights required")
)

// CanMutate write check for a record of kind owned by ownerID (in ownerDeptID).
//
//	calendar events:         owner or admin
//	leave records:           owner, director/admin, or head of the owner's department
//	documents, announcements: owner or director/admin
//	requests:                see CanModify
func CanMutate(kind Kind, a Actor, ownerID, ownerDeptID int64) error {
	if !a.Valid() {
		return ErrNoActor
	}
	if ownerID == a.UserID {
		return nil
	}
	switch kind {
	case KindCalendarEvent:
		if a.IsAdmin() {
			return nil
		}
	case KindLeave:
		if a.IsElevated() || a.Heads(ownerDeptID) {
			return nil
		}
	case KindDocument, KindAnnouncement, KindDirectory:
		if a.IsElevated() {
			return nil
		}
	}
	return ErrNotOwner
}

// CanManageUsers create/role/department changes in the directory
func CanManageUsers(a Actor) error {
	if !a.Valid() {
		return ErrNoActor
	}
	if a.IsElevated() {
		return nil
	}
	return ErrAdminOnly
}

// CanDeleteUser elevated roles may delete anyone but themselves
func CanDeleteUser(a Actor, targetID int64) error {
	if err := CanManageUsers(a); err != nil {
		return err
	}
	if targetID == a.UserID {
		return ErrSelfDelete
	}
	return nil
}

// CanPublishGeneral general calendar events are reserved to director and admin
func CanPublishGeneral(a Actor) error {
	if a.IsElevated() {
		return nil
	}
	return ErrGeneralEvent
}

// CanAnnounce announcements are published by director, admin and department heads
func CanAnnounce(a Actor) error {
	switch a.Role {
	case model.RoleDirector, model.RoleAdmin, model.RoleDepartmentHead:
		return nil
	}
	return ErrCannotAnnounce
}

// RequireAdmin password resets, bulk import and the login audit
func RequireAdmin(a Actor) error {
	if !a.Valid() {
		return ErrNoActor
	}
	if a.IsAdmin() {
		return nil
	}
	return ErrAdminOnly
}
