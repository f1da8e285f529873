package dto

// ── departments ──

// CreateDepartmentRequest new department with an optional head
type CreateDepartmentRequest struct {
	Name   string `json:"name"    binding:"required,min=2,max=100"`
	HeadID *int64 `json:"head_id" binding:"omitempty,min=1"`
}

// UpdateDepartmentRequest partial update; HeadID 0 clears the head
type UpdateDepartmentRequest struct {
	Name   *string `json:"name"    binding:"omitempty,min=2,max=100"`
	HeadID *int64  `json:"head_id" binding:"omitempty,min=0"`
}

// AssignHeadRequest PUT /departments/:id/head; user_id 0 clears the head
type AssignHeadRequest struct {
	UserID *int64 `json:"user_id" binding:"required,min=0"`
}

// DepartmentResponse department with head and headcount
type DepartmentResponse struct {
	ID          int64      `json:"id"`
	Name        string     `json:"name"`
	Head        *UserBrief `json:"head,omitempty"`
	MemberCount int64      `json:"member_count"`
}
