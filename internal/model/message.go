package model

import "time"

// Message direct message between two users — messages
type Message struct {
	ID          int64     `gorm:"primaryKey"                         json:"id"`
	SenderID    int64     `gorm:"not null;index"                     json:"sender_id"`
	RecipientID int64     `gorm:"not null;index"                     json:"recipient_id"`
	Body        string    `gorm:"type:varchar(1000);not null"        json:"body"`
	IsRead      bool      `gorm:"not null;default:false"             json:"is_read"`
	SentAt      time.Time `gorm:"not null;default:CURRENT_TIMESTAMP" json:"sent_at"`

	Sender    *User `gorm:"foreignKey:SenderID"    json:"sender,omitempty"`
	Recipient *User `gorm:"foreignKey:RecipientID" json:"recipient,omitempty"`
}

// TableName table name
func (Message) TableName() string { return "messages" }

// LoginRecord append-only audit of session starts — login_records
type LoginRecord struct {
	ID        int64     `gorm:"primaryKey"                         json:"id"`
	UserID    int64     `gorm:"not null;index"                     json:"user_id"`
	IP        string    `gorm:"type:varchar(64)"                   json:"ip,omitempty"`
	UserAgent string    `gorm:"type:varchar(255)"                  json:"user_agent,omitempty"`
	LoggedAt  time.Time `gorm:"not null;default:CURRENT_TIMESTAMP" json:"logged_at"`

	User *User `gorm:"foreignKey:UserID" json:"user,omitempty"`
}

// TableName table name
func (LoginRecord) TableName() string { return "login_records" }
