package dto

// ── auth ──

// LoginRequest login by RUT ("12345678-5") and password
type LoginRequest struct {
	RUT        string `json:"rut"      binding:"required,rut"`
	Password   string `json:"password" binding:"required"`
	RememberMe bool   `json:"remember_me"`
}

// RefreshTokenRequest refresh token in the body when no cookie is sent
type RefreshTokenRequest struct {
	RefreshToken string `json:"refresh_token"`
}

// ChangePasswordRequest self-service password change
type ChangePasswordRequest struct {
	OldPassword string `json:"old_password" binding:"required"`
	NewPassword string `json:"new_password" binding:"required,min=8,max=64"`
}

// LoginMeta request attributes recorded in the login audit
type LoginMeta struct {
	IP        string
	UserAgent string
}
