package dto

// ── announcements (avisos) ──

// CreateAnnouncementRequest new announcement
type CreateAnnouncementRequest struct {
	Title string `json:"title" binding:"required,max=100"`
	Body  string `json:"body"  binding:"omitempty,max=500"`
}

// AnnouncementResponse announcement
type AnnouncementResponse struct {
	ID        int64      `json:"id"`
	Title     string     `json:"title"`
	Body      string     `json:"body"`
	Author    *UserBrief `json:"author,omitempty"`
	CreatedAt string     `json:"created_at"`
}
