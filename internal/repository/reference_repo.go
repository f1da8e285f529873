package repository

import (
	"context"

	"gorm.io/gorm"

	"intranet-cesfam/backend/internal/model"
)

// ReferenceRepository seeded lookup tables: positions, request types, event types
type ReferenceRepository interface {
	ListPositions(ctx context.Context) ([]model.Position, error)
	GetPosition(ctx context.Context, id int64) (*model.Position, error)
	ListRequestTypes(ctx context.Context) ([]model.RequestType, error)
	GetRequestType(ctx context.Context, id int64) (*model.RequestType, error)
	ListEventTypes(ctx context.Context) ([]model.EventType, error)
	GetEventType(ctx context.Context, id int64) (*model.EventType, error)
}

type referenceRepo struct {
	db *gorm.DB
}

// NewReferenceRepo creates a ReferenceRepository
func NewReferenceRepo(db *gorm.DB) ReferenceRepository {
	return &referenceRepo{db: db}
}

func (r *referenceRepo) ListPositions(ctx context.Context) ([]model.Position, error) {
	var out []model.Position
	err := r.db.WithContext(ctx).Order("name ASC").Find(&out).Error
	return out, err
}

func (r *referenceRepo) GetPosition(ctx context.Context, id int64) (*model.Position, error) {
	var p model.Position
	if err := r.db.WithContext(ctx).Where("id = ?", id).First(&p).Error; err != nil {
		return nil, err
	}
	return &p, nil
}

func (r *referenceRepo) ListRequestTypes(ctx context.Context) ([]model.RequestType, error) {
	var out []model.RequestType
	err := r.db.WithContext(ctx).Order("id ASC").Find(&out).Error
	return out, err
}

func (r *referenceRepo) GetRequestType(ctx context.Context, id int64) (*model.RequestType, error) {
	var t model.RequestType
	if err := r.db.WithContext(ctx).Where("id = ?", id).First(&t).Error; err != nil {
		return nil, err
	}
	return &t, nil
}

func (r *referenceRepo) ListEventTypes(ctx context.Context) ([]model.EventType, error) {
	var out []model.EventType
	err := r.db.WithContext(ctx).Order("id ASC").Find(&out).Error
	return out, err
}

func (r *referenceRepo) GetEventType(ctx context.Context, id int64) (*model.EventType, error) {
	var t model.EventType
	if err := r.db.WithContext(ctx).Where("id = ?", id).First(&t).Error; err != nil {
		return nil, err
	}
	return &t, nil
}
