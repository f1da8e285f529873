package repository

import (
	"context"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"intranet-cesfam/backend/internal/model"
)

// AnnouncementRepository announcement data access
type AnnouncementRepository interface {
	Create(ctx context.Context, a *model.Announcement) error
	GetByID(ctx context.Context, id int64) (*model.Announcement, error)
	Delete(ctx context.Context, id int64) error
	List(ctx context.Context, page Page) ([]model.Announcement, int64, error)
}

type announcementRepo struct {
	db *gorm.DB
}

// NewAnnouncementRepo creates an AnnouncementRepository
func NewAnnouncementRepo(db *gorm.DB) AnnouncementRepository {
	return &announcementRepo{db: db}
}

func (r *announcementRepo) Create(ctx context.Context, a *model.Announcement) error {
	return r.db.WithContext(ctx).Omit(clause.Associations).Create(a).Error
}

func (r *announcementRepo) GetByID(ctx context.Context, id int64) (*model.Announcement, error) {
	var a model.Announcement
	if err := r.db.WithContext(ctx).Preload("Author").Where("id = ?", id).First(&a).Error; err != nil {
		return nil, err
	}
	return &a, nil
}

func (r *announcementRepo) Delete(ctx context.Context, id int64) error {
	return r.db.WithContext(ctx).Where("id = ?", id).Delete(&model.Announcement{}).Error
}

func (r *announcementRepo) List(ctx context.Context, page Page) ([]model.Announcement, int64, error) {
	var list []model.Announcement
	var total int64

	db := r.db.WithContext(ctx).Model(&model.Announcement{})
	if err := db.Count(&total).Error; err != nil {
		return nil, 0, err
	}
	if err := page.apply(db.Preload("Author")).
		Order("created_at DESC").
		Find(&list).Error; err != nil {
		return nil, 0, err
	}
	return list, total, nil
}
