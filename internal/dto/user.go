package dto

// ── directory ──

// CreateUserRequest new staff member.
// An empty password generates a temporary one.
type CreateUserRequest struct {
	RUT          string `json:"rut"           binding:"required,rut"`
	Name         string `json:"name"          binding:"required,min=2,max=100"`
	Email        string `json:"email"         binding:"omitempty,email,max=100"`
	Phone        string `json:"phone"         binding:"omitempty,max=15"`
	Password     string `json:"password"      binding:"omitempty,min=8,max=64"`
	Role         string `json:"role"          binding:"required,oneof=director department_head staff admin"`
	DepartmentID *int64 `json:"department_id" binding:"omitempty,min=1"`
	PositionID   *int64 `json:"position_id"   binding:"omitempty,min=1"`
}

// CreateUserResponse created user plus the generated password, if any
type CreateUserResponse struct {
	User         *UserResponse `json:"user"`
	TempPassword string        `json:"temp_password,omitempty"`
}

// UserListRequest directory query
type UserListRequest struct {
	PaginationRequest
	Initial      string `form:"initial"       binding:"omitempty,max=1"`
	Keyword      string `form:"keyword"       binding:"omitempty,max=50"`
	DepartmentID int64  `form:"department_id" binding:"omitempty,min=1"`
	Role         string `form:"role"          binding:"omitempty,oneof=director department_head staff admin"`
}

// UpdateUserRequest partial update; nil fields are untouched.
// DepartmentID / PositionID 0 clears the reference.
type UpdateUserRequest struct {
	Name         *string `json:"name"          binding:"omitempty,min=2,max=100"`
	Email        *string `json:"email"         binding:"omitempty,email,max=100"`
	Phone        *string `json:"phone"         binding:"omitempty,max=15"`
	Role         *string `json:"role"          binding:"omitempty,oneof=director department_head staff admin"`
	DepartmentID *int64  `json:"department_id" binding:"omitempty,min=0"`
	PositionID   *int64  `json:"position_id"   binding:"omitempty,min=0"`
}

// ResetPasswordResponse generated temporary password
type ResetPasswordResponse struct {
	TempPassword string `json:"temp_password"`
}

// ImportUserResponse spreadsheet import summary
type ImportUserResponse struct {
	Total   int               `json:"total"`
	Success int               `json:"success"`
	Failed  int               `json:"failed"`
	Errors  []ImportUserError `json:"errors,omitempty"`
	// Credentials temporary passwords of the created accounts, shown once
	Credentials []ImportCredential `json:"credentials,omitempty"`
}

// ImportCredential generated password of an imported user
type ImportCredential struct {
	Row          int    `json:"row"`
	RUT          string `json:"rut"`
	TempPassword string `json:"temp_password"`
}

// ImportUserError rejected row
type ImportUserError struct {
	Row    int    `json:"row"`
	Reason string `json:"reason"`
}
