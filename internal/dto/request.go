package dto

// ── requests (solicitudes) ──

// CreateRequestRequest new leave/permission request; dates are YYYY-MM-DD
type CreateRequestRequest struct {
	TypeID    int64  `json:"request_type_id" binding:"required,min=1"`
	StartDate string `json:"start_date"      binding:"required"`
	EndDate   string `json:"end_date"        binding:"required"`
	Reason    string `json:"reason"          binding:"omitempty,max=500"`
}

// UpdateRequestRequest requester edit of a pending request
type UpdateRequestRequest struct {
	TypeID    *int64  `json:"request_type_id" binding:"omitempty,min=1"`
	StartDate *string `json:"start_date"`
	EndDate   *string `json:"end_date"`
	Reason    *string `json:"reason"          binding:"omitempty,max=500"`
}

// DecisionRequest approve or reject at one review stage
type DecisionRequest struct {
	Approve *bool `json:"approve" binding:"required"`
}

// RequestListRequest listing filters.
// AwaitingMe narrows to requests waiting on the caller's review.
type RequestListRequest struct {
	PaginationRequest
	Status     string `form:"status"      binding:"omitempty,oneof=pending approved rejected"`
	TypeID     int64  `form:"type_id"     binding:"omitempty,min=1"`
	AwaitingMe bool   `form:"awaiting_me"`
	From       string `form:"from"        binding:"omitempty,datetime=2006-01-02"`
	To         string `form:"to"          binding:"omitempty,datetime=2006-01-02"`
}

// RequestResponse request with approval trail
type RequestResponse struct {
	ID                  int64                `json:"id"`
	Requester           *UserBrief           `json:"requester,omitempty"`
	RequesterDepartment *DepartmentBrief     `json:"requester_department,omitempty"`
	Type                *RequestTypeResponse `json:"type,omitempty"`
	StartDate           string               `json:"start_date"`
	EndDate             string               `json:"end_date"`
	Days                int                  `json:"days"`
	Reason              string               `json:"reason,omitempty"`
	ApprovedByManager   *bool                `json:"approved_by_manager"`
	ApprovedByDirector  *bool                `json:"approved_by_director"`
	ManagerReviewerID   *int64               `json:"manager_reviewer_id,omitempty"`
	ManagerReviewedAt   string               `json:"manager_reviewed_at,omitempty"`
	DirectorReviewerID  *int64               `json:"director_reviewer_id,omitempty"`
	DirectorReviewedAt  string               `json:"director_reviewed_at,omitempty"`
	Status              string               `json:"status"`
	StatusLabel         string               `json:"status_label"`
	AwaitingStage       string               `json:"awaiting_stage,omitempty"`
	Version             int                  `json:"version"`
	CreatedAt           string               `json:"created_at"`
}
