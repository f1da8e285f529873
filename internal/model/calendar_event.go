package model

import "time"

// Default event colors
const (
	ColorGeneral  = "#FF6B6B"
	ColorPersonal = "#3A8DFF"
)

// CalendarEvent shared calendar entry — calendar_events.
// StartTime/EndTime are "HH:MM:SS" and are nil for all-day events.
type CalendarEvent struct {
	ID          int64     `gorm:"primaryKey"                 json:"id"`
	Title       string    `gorm:"type:varchar(150);not null" json:"title"`
	Description string    `gorm:"type:varchar(300)"          json:"description,omitempty"`
	Date        time.Time `gorm:"type:date;not null;index"   json:"date"`
	StartTime   *string   `gorm:"type:time"                  json:"start_time,omitempty"`
	EndTime     *string   `gorm:"type:time"                  json:"end_time,omitempty"`
	AllDay      bool      `gorm:"not null;default:false"     json:"all_day"`
	IsGeneral   bool      `gorm:"not null;default:false"     json:"is_general"`
	OwnerID     int64     `gorm:"not null;index"             json:"owner_id"`
	Color       string    `gorm:"type:varchar(20)"           json:"color"`
	Location    string    `gorm:"type:varchar(150)"          json:"location,omitempty"`
	TypeID      *int64    `gorm:"column:event_type_id"       json:"event_type_id,omitempty"`
	BaseModel

	Owner *User      `gorm:"foreignKey:OwnerID" json:"owner,omitempty"`
	Type  *EventType `gorm:"foreignKey:TypeID"  json:"type,omitempty"`
}

// TableName table name
func (CalendarEvent) TableName() string { return "calendar_events" }
