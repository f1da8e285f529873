package model

import "time"

// LeaveRecord medical leave (licencia) — leave_records
type LeaveRecord struct {
	ID             int64     `gorm:"primaryKey"           json:"id"`
	OwnerID        int64     `gorm:"not null;index"       json:"owner_id"`
	StartDate      time.Time `gorm:"type:date;not null"   json:"start_date"`
	EndDate        time.Time `gorm:"type:date;not null"   json:"end_date"`
	AttachmentRef  string    `gorm:"type:varchar(255)"    json:"-"`
	AttachmentName string    `gorm:"type:varchar(255)"    json:"attachment_name,omitempty"`
	BaseModel

	Owner *User `gorm:"foreignKey:OwnerID" json:"owner,omitempty"`
}

// TableName table name
func (LeaveRecord) TableName() string { return "leave_records" }
