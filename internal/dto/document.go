package dto

// ── documents ──

// UploadDocumentRequest multipart form fields; the content is the "file" part
type UploadDocumentRequest struct {
	Name        string `form:"name"        binding:"required,max=150"`
	Description string `form:"description" binding:"omitempty,max=500"`
}

// UpdateDocumentRequest metadata change
type UpdateDocumentRequest struct {
	Name        *string `json:"name"        binding:"omitempty,min=1,max=150"`
	Description *string `json:"description" binding:"omitempty,max=500"`
}

// DocumentListRequest listing filters
type DocumentListRequest struct {
	PaginationRequest
	Keyword string `form:"keyword" binding:"omitempty,max=50"`
}

// DocumentResponse document metadata
type DocumentResponse struct {
	ID          int64      `json:"id"`
	Name        string     `json:"name"`
	Description string     `json:"description,omitempty"`
	FileName    string     `json:"file_name"`
	FileSize    int64      `json:"file_size"`
	MimeType    string     `json:"mime_type"`
	Uploader    *UserBrief `json:"uploader,omitempty"`
	UploadedAt  string     `json:"uploaded_at"`
}
