package dto

// ── leave records (licencias) ──

// LeaveRequest multipart form fields; the attachment travels as the "attachment" file part
type LeaveRequest struct {
	StartDate string `form:"start_date" binding:"required,datetime=2006-01-02"`
	EndDate   string `form:"end_date"   binding:"required,datetime=2006-01-02"`
	OwnerID   int64  `form:"owner_id"   binding:"omitempty,min=1"` // registering on behalf of someone else
}

// LeaveListRequest listing filters
type LeaveListRequest struct {
	PaginationRequest
	OwnerID int64 `form:"owner_id" binding:"omitempty,min=1"`
}

// LeaveResponse leave record
type LeaveResponse struct {
	ID             int64      `json:"id"`
	Owner          *UserBrief `json:"owner,omitempty"`
	StartDate      string     `json:"start_date"`
	EndDate        string     `json:"end_date"`
	Days           int        `json:"days"`
	HasAttachment  bool       `json:"has_attachment"`
	AttachmentName string     `json:"attachment_name,omitempty"`
	CreatedAt      string     `json:"created_at"`
}
