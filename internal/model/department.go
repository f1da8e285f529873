package model

// Department — departments. HeadID is a weak back-reference to the heading user.
type Department struct {
	ID     int64  `gorm:"primaryKey"                 json:"id"`
	Name   string `gorm:"type:varchar(100);not null" json:"name"`
	HeadID *int64 `gorm:"uniqueIndex"                json:"head_id,omitempty"`
	BaseModel

	Head *User `gorm:"foreignKey:HeadID" json:"head,omitempty"`
}

// TableName table name
func (Department) TableName() string { return "departments" }
