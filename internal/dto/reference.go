package dto

// ── reference data ──

// EnumResponse value/label pair of a closed enumeration
type EnumResponse struct {
	Value string `json:"value"`
	Label string `json:"label"`
}

// PositionResponse job title
type PositionResponse struct {
	ID   int64  `json:"id"`
	Name string `json:"name"`
}

// RequestTypeResponse request type
type RequestTypeResponse struct {
	ID   int64  `json:"id"`
	Name string `json:"name"`
}

// EventTypeResponse calendar category
type EventTypeResponse struct {
	ID   int64  `json:"id"`
	Name string `json:"name"`
}

// ── login audit ──

// LoginRecordListRequest audit query
type LoginRecordListRequest struct {
	PaginationRequest
	UserID int64 `form:"user_id" binding:"omitempty,min=1"`
}

// LoginRecordResponse audit row
type LoginRecordResponse struct {
	ID        int64      `json:"id"`
	User      *UserBrief `json:"user,omitempty"`
	IP        string     `json:"ip,omitempty"`
	UserAgent string     `json:"user_agent,omitempty"`
	LoggedAt  string     `json:"logged_at"`
}
