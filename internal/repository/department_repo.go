package repository

import (
	"context"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"intranet-cesfam/backend/internal/model"
)

// DepartmentRepository department data access
type DepartmentRepository interface {
	Create(ctx context.Context, dept *model.Department) error
	GetByID(ctx context.Context, id int64) (*model.Department, error)
	GetByName(ctx context.Context, name string) (*model.Department, error)
	GetByHead(ctx context.Context, userID int64) (*model.Department, error)
	List(ctx context.Context) ([]model.Department, error)
	Update(ctx context.Context, dept *model.Department) error
	Delete(ctx context.Context, id int64) error
	// SetHead points departmentID at userID (nil clears it).
	SetHead(ctx context.Context, departmentID int64, userID *int64) error
	// ClearHeadship removes userID as head of any department.
	ClearHeadship(ctx context.Context, userID int64) error
}

type departmentRepo struct {
	db *gorm.DB
}

// NewDepartmentRepo creates a DepartmentRepository
func NewDepartmentRepo(db *gorm.DB) DepartmentRepository {
	return &departmentRepo{db: db}
}

func (r *departmentRepo) Create(ctx context.Context, dept *model.Department) error {
	return r.db.WithContext(ctx).Omit(clause.Associations).Create(dept).Error
}

func (r *departmentRepo) GetByID(ctx context.Context, id int64) (*model.Department, error) {
	var dept model.Department
	err := r.db.WithContext(ctx).Preload("Head").Where("id = ?", id).First(&dept).Error
	if err != nil {
		return nil, err
	}
	return &dept, nil
}

func (r *departmentRepo) GetByName(ctx context.Context, name string) (*model.Department, error) {
	var dept model.Department
	err := r.db.WithContext(ctx).Where("name = ?", name).First(&dept).Error
	if err != nil {
		return nil, err
	}
	return &dept, nil
}

func (r *departmentRepo) GetByHead(ctx context.Context, userID int64) (*model.Department, error) {
	var dept model.Department
	err := r.db.WithContext(ctx).Where("head_id = ?", userID).First(&dept).Error
	if err != nil {
		return nil, err
	}
	return &dept, nil
}

func (r *departmentRepo) List(ctx context.Context) ([]model.Department, error) {
	var depts []model.Department
	err := r.db.WithContext(ctx).Preload("Head").Order("name ASC").Find(&depts).Error
	return depts, err
}

func (r *departmentRepo) Update(ctx context.Context, dept *model.Department) error {
	return r.db.WithContext(ctx).Omit(clause.Associations).Save(dept).Error
}

func (r *departmentRepo) Delete(ctx context.Context, id int64) error {
	return r.db.WithContext(ctx).Where("id = ?", id).Delete(&model.Department{}).Error
}

func (r *departmentRepo) SetHead(ctx context.Context, departmentID int64, userID *int64) error {
	result := r.db.WithContext(ctx).Model(&model.Department{}).
		Where("id = ?", departmentID).
		Update("head_id", userID)
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}
	return nil
}

func (r *departmentRepo) ClearHeadship(ctx context.Context, userID int64) error {
	return r.db.WithContext(ctx).Model(&model.Department{}).
		Where("head_id = ?", userID).
		Update("head_id", nil).Error
}
