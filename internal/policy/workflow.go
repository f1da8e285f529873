package policy

import (
	"time"

	"intranet-cesfam/backend/internal/model"
	pkgerrors "intranet-cesfam/backend/pkg/errors"
)

// Stage approval step of a request
type Stage string

const (
	StageManager  Stage = "manager"
	StageDirector Stage = "director"
)

// Valid reports whether s is a known stage.
func (s Stage) Valid() bool {
	return s == StageManager || s == StageDirector
}

var (
	ErrAlreadyReviewed   = pkgerrors.New(pkgerrors.ErrInvalidState, "request already reviewed at this stage")
	ErrNotPending        = pkgerrors.New(pkgerrors.ErrInvalidState, "request is no longer pending")
	ErrAwaitingManager   = pkgerrors.New(pkgerrors.ErrInvalidState, "request has not been approved by the department head")
	ErrNotRequester      = pkgerrors.New(pkgerrors.ErrForbidden, "only the requester may change this request")
	ErrOutsideDepartment = pkgerrors.New(pkgerrors.ErrForbidden, "request belongs to another department")
	ErrCannotReview      = pkgerrors.New(pkgerrors.ErrForbidden, "role cannot review at this stage")
)

// DeriveStatus status implied by the two approvals:
// approved iff both are true, rejected iff either is false, pending otherwise.
func DeriveStatus(manager, director *bool) model.RequestStatus {
	if (manager != nil && !*manager) || (director != nil && !*director) {
		return model.RequestRejected
	}
	if manager != nil && *manager && director != nil && *director {
		return model.RequestApproved
	}
	return model.RequestPending
}

// CanReview checks the actor's authority at stage for a requester in requesterDeptID.
// Department heads review only their own department at the manager stage;
// director and admin review anything at either stage.
func CanReview(stage Stage, a Actor, requesterDeptID int64) error {
	if !a.Valid() {
		return ErrNoActor
	}
	if a.IsElevated() {
		return nil
	}
	if stage == StageManager && a.IsDepartmentHead() {
		if a.Heads(requesterDeptID) {
			return nil
		}
		return ErrOutsideDepartment
	}
	return ErrCannotReview
}

// ApplyDecision records approve/reject for stage on r and re-derives its status.
// r is only modified when every guard passes.
func ApplyDecision(r *model.Request, stage Stage, a Actor, requesterDeptID int64, approve bool, now time.Time) error {
	if err := CanReview(stage, a, requesterDeptID); err != nil {
		return err
	}

	switch stage {
	case StageManager:
		if r.ApprovedByManager != nil {
			return ErrAlreadyReviewed
		}
		if r.Status != model.RequestPending {
			return ErrNotPending
		}
		r.ApprovedByManager = boolPtr(approve)
		r.ManagerReviewerID = int64Ptr(a.UserID)
		r.ManagerReviewedAt = timePtr(now)

	case StageDirector:
		if r.ApprovedByDirector != nil {
			return ErrAlreadyReviewed
		}
		if r.Status != model.RequestPending {
			return ErrNotPending
		}
		if r.ApprovedByManager == nil {
			return ErrAwaitingManager
		}
		r.ApprovedByDirector = boolPtr(approve)
		r.DirectorReviewerID = int64Ptr(a.UserID)
		r.DirectorReviewedAt = timePtr(now)

	default:
		return pkgerrors.ErrValidation
	}

	r.Status = DeriveStatus(r.ApprovedByManager, r.ApprovedByDirector)
	return nil
}

// CanModify edit/delete guard: only the requester, only while pending.
func CanModify(r *model.Request, a Actor) error {
	if !a.Valid() {
		return ErrNoActor
	}
	if r.RequesterID != a.UserID {
		return ErrNotRequester
	}
	if r.Status != model.RequestPending {
		return ErrNotPending
	}
	return nil
}

// ReopenManagerReview drops the manager's decision on a pending request so the
// new terms go back to the department head. Reports whether anything was cleared.
func ReopenManagerReview(r *model.Request) bool {
	if r.Status != model.RequestPending || r.ApprovedByManager == nil {
		return false
	}
	r.ApprovedByManager = nil
	r.ManagerReviewerID = nil
	r.ManagerReviewedAt = nil
	return true
}

// AwaitingStage the stage a pending request is waiting on, "" when terminal.
func AwaitingStage(r *model.Request) Stage {
	if r.Status != model.RequestPending {
		return ""
	}
	if r.ApprovedByManager == nil {
		return StageManager
	}
	return StageDirector
}

// ── helpers ──

func boolPtr(b bool) *bool           { return &b }
func int64Ptr(v int64) *int64        { return &v }
func timePtr(t time.Time) *time.Time { return &t }
