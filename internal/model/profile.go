package model

// Profile 1:1 extension of users — profiles
type Profile struct {
	UserID    int64  `gorm:"primaryKey;autoIncrement:false" json:"user_id"`
	AvatarRef string `gorm:"type:varchar(255)"             json:"avatar_ref,omitempty"`
	Bio       string `gorm:"type:varchar(255)"             json:"bio,omitempty"`
	BaseModel
}

// TableName table name
func (Profile) TableName() string { return "profiles" }
