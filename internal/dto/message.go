package dto

// ── messages ──

// SendMessageRequest new direct message
type SendMessageRequest struct {
	RecipientID int64  `json:"recipient_id" binding:"required,min=1"`
	Body        string `json:"body"         binding:"required,max=1000"`
}

// MessageListRequest inbox/sent paging
type MessageListRequest struct {
	PaginationRequest
	UnreadOnly bool `form:"unread"`
}

// MessageResponse direct message
type MessageResponse struct {
	ID        int64      `json:"id"`
	Sender    *UserBrief `json:"sender,omitempty"`
	Recipient *UserBrief `json:"recipient,omitempty"`
	Body      string     `json:"body"`
	IsRead    bool       `json:"is_read"`
	SentAt    string     `json:"sent_at"`
}

// UnreadCountResponse unread inbox size
type UnreadCountResponse struct {
	Count int64 `json:"count"`
}
