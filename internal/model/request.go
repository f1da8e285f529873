package model

import "time"

// RequestStatus lifecycle status of a request.
// The set is closed; the column carries a CHECK constraint with the same values.
type RequestStatus string

const (
	RequestPending  RequestStatus = "pending"
	RequestApproved RequestStatus = "approved"
	RequestRejected RequestStatus = "rejected"
)

// RequestStatuses lists every status.
func RequestStatuses() []RequestStatus {
	return []RequestStatus{RequestPending, RequestApproved, RequestRejected}
}

// Valid reports whether s is a known status.
func (s RequestStatus) Valid() bool {
	switch s {
	case RequestPending, RequestApproved, RequestRejected:
		return true
	}
	return false
}

// Label is the name shown to staff.
func (s RequestStatus) Label() string {
	switch s {
	case RequestPending:
		return "Pendiente"
	case RequestApproved:
		return "Aprobada"
	case RequestRejected:
		return "Rechazada"
	}
	return string(s)
}

// Request leave/permission request (solicitud) — requests
type Request struct {
	ID                 int64         `gorm:"primaryKey"                                  json:"id"`
	RequesterID        int64         `gorm:"not null;index"                              json:"requester_id"`
	TypeID             int64         `gorm:"column:request_type_id;not null"             json:"request_type_id"`
	StartDate          time.Time     `gorm:"type:date;not null"                          json:"start_date"`
	EndDate            time.Time     `gorm:"type:date;not null"                          json:"end_date"`
	Reason             string        `gorm:"type:varchar(500)"                           json:"reason,omitempty"`
	ApprovedByManager  *bool         `json:"approved_by_manager"`
	ApprovedByDirector *bool         `json:"approved_by_director"`
	ManagerReviewerID  *int64        `json:"manager_reviewer_id,omitempty"`
	ManagerReviewedAt  *time.Time    `json:"manager_reviewed_at,omitempty"`
	DirectorReviewerID *int64        `json:"director_reviewer_id,omitempty"`
	DirectorReviewedAt *time.Time    `json:"director_reviewed_at,omitempty"`
	Status             RequestStatus `gorm:"type:varchar(20);not null;default:'pending'" json:"status"`
	VersionedModel

	Requester *User        `gorm:"foreignKey:RequesterID" json:"requester,omitempty"`
	Type      *RequestType `gorm:"foreignKey:TypeID"      json:"type,omitempty"`
}

// TableName table name
func (Request) TableName() string { return "requests" }
