package model

import "time"

// User staff member — users
type User struct {
	ID           int64     `gorm:"primaryKey"                          json:"id"`
	RUT          int       `gorm:"column:rut;not null;uniqueIndex"      json:"rut"`
	DV           string    `gorm:"column:dv;type:char(1);not null"     json:"dv"`
	Name         string    `gorm:"type:varchar(100);not null"          json:"name"`
	Phone        string    `gorm:"type:varchar(15)"                    json:"phone,omitempty"`
	Email        string    `gorm:"type:varchar(100)"                   json:"email,omitempty"`
	PasswordHash string    `gorm:"type:varchar(100);not null"          json:"-"`
	Role         Role      `gorm:"type:varchar(20);not null;default:'staff'" json:"role"`
	DepartmentID *int64    `json:"department_id,omitempty"`
	PositionID   *int64    `json:"position_id,omitempty"`
	RegisteredAt time.Time `gorm:"not null;default:CURRENT_TIMESTAMP"  json:"registered_at"`
	BaseModel

	Department *Department `gorm:"foreignKey:DepartmentID" json:"department,omitempty"`
	Position   *Position   `gorm:"foreignKey:PositionID"   json:"position,omitempty"`
}

// TableName table name
func (User) TableName() string { return "users" }

// DeptID returns the department id, 0 when the user has none.
func (u *User) DeptID() int64 {
	if u == nil || u.DepartmentID == nil {
		return 0
	}
	return *u.DepartmentID
}
