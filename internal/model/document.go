package model

// Document shared file — documents
type Document struct {
	ID          int64  `gorm:"primaryKey"                 json:"id"`
	Name        string `gorm:"type:varchar(150);not null" json:"name"`
	Description string `gorm:"type:varchar(500)"          json:"description,omitempty"`
	FileRef     string `gorm:"type:varchar(255);not null" json:"-"`
	FileName    string `gorm:"type:varchar(255);not null" json:"file_name"`
	FileSize    int64  `gorm:"not null"                   json:"file_size"`
	MimeType    string `gorm:"type:varchar(100)"          json:"mime_type"`
	UploaderID  int64  `gorm:"not null;index"             json:"uploader_id"`
	BaseModel

	Uploader *User `gorm:"foreignKey:UploaderID" json:"uploader,omitempty"`
}

// TableName table name
func (Document) TableName() string { return "documents" }
