package repository

import (
	"context"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"intranet-cesfam/backend/internal/model"
	"intranet-cesfam/backend/internal/policy"
)

// LeaveListFilter leave record listing criteria
type LeaveListFilter struct {
	Scope   policy.Scope
	OwnerID int64
}

// LeaveRepository leave record data access
type LeaveRepository interface {
	Create(ctx context.Context, rec *model.LeaveRecord) error
	GetByID(ctx context.Context, id int64) (*model.LeaveRecord, error)
	Update(ctx context.Context, rec *model.LeaveRecord) error
	Delete(ctx context.Context, id int64) error
	List(ctx context.Context, filter LeaveListFilter, page Page) ([]model.LeaveRecord, int64, error)
}

type leaveRepo struct {
	db *gorm.DB
}

// NewLeaveRepo creates a LeaveRepository
func NewLeaveRepo(db *gorm.DB) LeaveRepository {
	return &leaveRepo{db: db}
}

func (r *leaveRepo) Create(ctx context.Context, rec *model.LeaveRecord) error {
	return r.db.WithContext(ctx).Omit(clause.Associations).Create(rec).Error
}

func (r *leaveRepo) GetByID(ctx context.Context, id int64) (*model.LeaveRecord, error) {
	var rec model.LeaveRecord
	err := r.db.WithContext(ctx).
		Preload("Owner").
		Where("id = ?", id).
		First(&rec).Error
	if err != nil {
		return nil, err
	}
	return &rec, nil
}

func (r *leaveRepo) Update(ctx context.Context, rec *model.LeaveRecord) error {
	return r.db.WithContext(ctx).Omit(clause.Associations).Save(rec).Error
}

func (r *leaveRepo) Delete(ctx context.Context, id int64) error {
	return r.db.WithContext(ctx).Where("id = ?", id).Delete(&model.LeaveRecord{}).Error
}

func (r *leaveRepo) List(ctx context.Context, filter LeaveListFilter, page Page) ([]model.LeaveRecord, int64, error) {
	var recs []model.LeaveRecord
	var total int64

	db := applyScope(r.db.WithContext(ctx).Model(&model.LeaveRecord{}), filter.Scope, "owner_id", "")
	if filter.OwnerID > 0 {
		db = db.Where("owner_id = ?", filter.OwnerID)
	}

	if err := db.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	if err := page.apply(db.Preload("Owner")).
		Order("start_date DESC").
		Find(&recs).Error; err != nil {
		return nil, 0, err
	}

	return recs, total, nil
}
