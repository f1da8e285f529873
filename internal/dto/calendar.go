package dto

// ── calendar ──

// EventRequest create/replace payload.
// Times are HH:MM and must be omitted for all-day events.
type EventRequest struct {
	Title       string  `json:"title"         binding:"required,max=150"`
	Description string  `json:"description"   binding:"omitempty,max=300"`
	Date        string  `json:"date"          binding:"required,datetime=2006-01-02"`
	StartTime   *string `json:"start_time"`
	EndTime     *string `json:"end_time"`
	AllDay      bool    `json:"all_day"`
	IsGeneral   bool    `json:"is_general"`
	Color       string  `json:"color"         binding:"omitempty,hexcolor"`
	Location    string  `json:"location"      binding:"omitempty,max=150"`
	TypeID      *int64  `json:"event_type_id" binding:"omitempty,min=1"`
}

// EventListRequest optional inclusive date window
type EventListRequest struct {
	Start string `form:"start" binding:"omitempty,datetime=2006-01-02"`
	End   string `form:"end"   binding:"omitempty,datetime=2006-01-02"`
}

// EventResponse calendar entry
type EventResponse struct {
	ID          int64              `json:"id"`
	Title       string             `json:"title"`
	Description string             `json:"description,omitempty"`
	Date        string             `json:"date"`
	StartTime   *string            `json:"start_time"`
	EndTime     *string            `json:"end_time"`
	AllDay      bool               `json:"all_day"`
	IsGeneral   bool               `json:"is_general"`
	Owner       *UserBrief         `json:"owner,omitempty"`
	Color       string             `json:"color"`
	Location    string             `json:"location,omitempty"`
	Type        *EventTypeResponse `json:"type,omitempty"`
	CanEdit     bool               `json:"can_edit"`
	CreatedAt   string             `json:"created_at"`
}
