package dto

// ── profiles ──

// UpdateProfileRequest bio change
type UpdateProfileRequest struct {
	Bio *string `json:"bio" binding:"required,max=255"`
}

// ProfileResponse user with profile extension
type ProfileResponse struct {
	User      UserResponse `json:"user"`
	Bio       string       `json:"bio"`
	HasAvatar bool         `json:"has_avatar"`
	AvatarURL string       `json:"avatar_url,omitempty"`
}
