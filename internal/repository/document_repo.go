package repository

import (
	"context"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"intranet-cesfam/backend/internal/model"
)

// DocumentRepository document data access
type DocumentRepository interface {
	Create(ctx context.Context, doc *model.Document) error
	GetByID(ctx context.Context, id int64) (*model.Document, error)
	Update(ctx context.Context, doc *model.Document) error
	Delete(ctx context.Context, id int64) error
	List(ctx context.Context, keyword string, page Page) ([]model.Document, int64, error)
}

type documentRepo struct {
	db *gorm.DB
}

// NewDocumentRepo creates a DocumentRepository
func NewDocumentRepo(db *gorm.DB) DocumentRepository {
	return &documentRepo{db: db}
}

func (r *documentRepo) Create(ctx context.Context, doc *model.Document) error {
	return r.db.WithContext(ctx).Omit(clause.Associations).Create(doc).Error
}

func (r *documentRepo) GetByID(ctx context.Context, id int64) (*model.Document, error) {
	var doc model.Document
	err := r.db.WithContext(ctx).Preload("Uploader").Where("id = ?", id).First(&doc).Error
	if err != nil {
		return nil, err
	}
	return &doc, nil
}

func (r *documentRepo) Update(ctx context.Context, doc *model.Document) error {
	return r.db.WithContext(ctx).Omit(clause.Associations).Save(doc).Error
}

func (r *documentRepo) Delete(ctx context.Context, id int64) error {
	return r.db.WithContext(ctx).Where("id = ?", id).Delete(&model.Document{}).Error
}

func (r *documentRepo) List(ctx context.Context, keyword string, page Page) ([]model.Document, int64, error) {
	var docs []model.Document
	var total int64

	db := r.db.WithContext(ctx).Model(&model.Document{})
	if keyword != "" {
		kw := "%" + escapeLike(keyword) + "%"
		db = db.Where("(name ILIKE ? OR description ILIKE ?)", kw, kw)
	}

	if err := db.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	if err := page.apply(db.Preload("Uploader")).
		Order("created_at DESC").
		Find(&docs).Error; err != nil {
		return nil, 0, err
	}

	return docs, total, nil
}
