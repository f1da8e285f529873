package model

import "time"

// Announcement organisation notice (aviso) — announcements
type Announcement struct {
	ID        int64     `gorm:"primaryKey"                        json:"id"`
	Title     string    `gorm:"type:varchar(100);not null"        json:"title"`
	Body      string    `gorm:"type:varchar(500)"                 json:"body"`
	AuthorID  int64     `gorm:"not null"                          json:"author_id"`
	CreatedAt time.Time `gorm:"not null;default:CURRENT_TIMESTAMP" json:"created_at"`

	Author *User `gorm:"foreignKey:AuthorID" json:"author,omitempty"`
}

// TableName table name
func (Announcement) TableName() string { return "announcements" }
