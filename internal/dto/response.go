package dto

// ── shared responses ──

// UserBrief minimal user reference embedded in other responses
type UserBrief struct {
	ID   int64  `json:"id"`
	Name string `json:"name"`
}

// DepartmentBrief minimal department reference
type DepartmentBrief struct {
	ID   int64  `json:"id"`
	Name string `json:"name"`
}

// UserResponse directory entry (no credentials)
type UserResponse struct {
	ID           int64             `json:"id"`
	RUT          string            `json:"rut"`
	Name         string            `json:"name"`
	Email        string            `json:"email,omitempty"`
	Phone        string            `json:"phone,omitempty"`
	Role         string            `json:"role"`
	RoleLabel    string            `json:"role_label"`
	Department   *DepartmentBrief  `json:"department,omitempty"`
	Position     *PositionResponse `json:"position,omitempty"`
	RegisteredAt string            `json:"registered_at"`
}

// TokenResponse token pair
type TokenResponse struct {
	AccessToken  string       `json:"access_token"`
	RefreshToken string       `json:"refresh_token,omitempty"` // omitted when delivered by cookie
	ExpiresIn    int          `json:"expires_in"`              // access token lifetime in seconds
	User         UserResponse `json:"user"`

	// RefreshExpiresIn refresh token lifetime in seconds; sizes the cookie
	RefreshExpiresIn int `json:"-"`
}

// ── pagination ──

// PaginationRequest common paging parameters
type PaginationRequest struct {
	Page     int `form:"page"      binding:"omitempty,min=1"`
	PageSize int `form:"page_size" binding:"omitempty,min=1,max=100"`
}

// GetPage page number with default
func (p *PaginationRequest) GetPage() int {
	if p.Page <= 0 {
		return 1
	}
	return p.Page
}

// GetPageSize page size with default
func (p *PaginationRequest) GetPageSize() int {
	if p.PageSize <= 0 {
		return 20
	}
	return p.PageSize
}

// GetOffset row offset
func (p *PaginationRequest) GetOffset() int {
	return (p.GetPage() - 1) * p.GetPageSize()
}
