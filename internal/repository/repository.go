package repository

import (
	"context"

	"gorm.io/gorm"
)

// Repository aggregate of every repository
type Repository struct {
	db *gorm.DB

	User         UserRepository
	Department   DepartmentRepository
	Reference    ReferenceRepository
	Request      RequestRepository
	Calendar     CalendarRepository
	Leave        LeaveRepository
	Document     DocumentRepository
	Profile      ProfileRepository
	Announcement AnnouncementRepository
	Message      MessageRepository
	LoginRecord  LoginRecordRepository
}

// NewRepository builds the aggregate on db
func NewRepository(db *gorm.DB) *Repository {
	return &Repository{
		db:           db,
		User:         NewUserRepo(db),
		Department:   NewDepartmentRepo(db),
		Reference:    NewReferenceRepo(db),
		Request:      NewRequestRepo(db),
		Calendar:     NewCalendarRepo(db),
		Leave:        NewLeaveRepo(db),
		Document:     NewDocumentRepo(db),
		Profile:      NewProfileRepo(db),
		Announcement: NewAnnouncementRepo(db),
		Message:      NewMessageRepo(db),
		LoginRecord:  NewLoginRecordRepo(db),
	}
}

// BeginTx starts a transaction.
// Returns (nil, nil) for an aggregate built without a database (unit tests).
func (r *Repository) BeginTx(ctx context.Context) (*gorm.DB, error) {
	if r.db == nil {
		return nil, nil
	}
	tx := r.db.WithContext(ctx).Begin()
	if tx.Error != nil {
		return nil, tx.Error
	}
	return tx, nil
}

// WithTx returns an aggregate bound to tx; nil tx returns r itself.
func (r *Repository) WithTx(tx *gorm.DB) *Repository {
	if tx == nil {
		return r
	}
	return NewRepository(tx)
}

// ── pagination ──

// Page offset/limit pair
type Page struct {
	Offset int
	Limit  int
}

func (p Page) apply(q *gorm.DB) *gorm.DB {
	if p.Limit > 0 {
		q = q.Limit(p.Limit)
	}
	if p.Offset > 0 {
		q = q.Offset(p.Offset)
	}
	return q
}
