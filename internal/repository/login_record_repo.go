package repository

import (
	"context"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"intranet-cesfam/backend/internal/model"
)

// LoginRecordRepository append-only login audit
type LoginRecordRepository interface {
	Create(ctx context.Context, rec *model.LoginRecord) error
	List(ctx context.Context, userID int64, page Page) ([]model.LoginRecord, int64, error)
}

type loginRecordRepo struct {
	db *gorm.DB
}

// NewLoginRecordRepo creates a LoginRecordRepository
func NewLoginRecordRepo(db *gorm.DB) LoginRecordRepository {
	return &loginRecordRepo{db: db}
}

func (r *loginRecordRepo) Create(ctx context.Context, rec *model.LoginRecord) error {
	return r.db.WithContext(ctx).Omit(clause.Associations).Create(rec).Error
}

func (r *loginRecordRepo) List(ctx context.Context, userID int64, page Page) ([]model.LoginRecord, int64, error) {
	var recs []model.LoginRecord
	var total int64

	db := r.db.WithContext(ctx).Model(&model.LoginRecord{})
	if userID > 0 {
		db = db.Where("user_id = ?", userID)
	}
	if err := db.Count(&total).Error; err != nil {
		return nil, 0, err
	}
	if err := page.apply(db.Preload("User")).
		Order("logged_at DESC").
		Find(&recs).Error; err != nil {
		return nil, 0, err
	}
	return recs, total, nil
}
