package model

// Position job title (cargo) — positions
type Position struct {
	ID   int64  `gorm:"primaryKey"                 json:"id"`
	Name string `gorm:"type:varchar(100);not null" json:"name"`
}

// TableName table name
func (Position) TableName() string { return "positions" }

// RequestType kind of leave/permission request — request_types
type RequestType struct {
	ID   int64  `gorm:"primaryKey"                json:"id"`
	Name string `gorm:"type:varchar(50);not null" json:"name"`
}

// TableName table name
func (RequestType) TableName() string { return "request_types" }

// EventType calendar category — event_types
type EventType struct {
	ID   int64  `gorm:"primaryKey"                json:"id"`
	Name string `gorm:"type:varchar(50);not null" json:"name"`
}

// TableName table name
func (EventType) TableName() string { return "event_types" }
