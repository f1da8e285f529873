package repository

import (
	"context"
	"strings"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"intranet-cesfam/backend/internal/model"
)

// UserListFilter directory filters; zero values are ignored
type UserListFilter struct {
	Initial      string // first letter of the name
	Keyword      string // name, email or RUT fragment
	DepartmentID int64
	Role         model.Role
}

// UserRepository user data access
type UserRepository interface {
	Create(ctx context.Context, user *model.User) error
	GetByID(ctx context.Context, id int64) (*model.User, error)
	GetByRUT(ctx context.Context, rut int) (*model.User, error)
	Update(ctx context.Context, user *model.User) error
	Delete(ctx context.Context, id int64) error
	List(ctx context.Context, filter UserListFilter, page Page) ([]model.User, int64, error)
	CountByDepartment(ctx context.Context, departmentID int64) (int64, error)
}

type userRepo struct {
	db *gorm.DB
}

// NewUserRepo creates a UserRepository
func NewUserRepo(db *gorm.DB) UserRepository {
	return &userRepo{db: db}
}

func (r *userRepo) Create(ctx context.Context, user *model.User) error {
	return r.db.WithContext(ctx).Omit(clause.Associations).Create(user).Error
}

func (r *userRepo) GetByID(ctx context.Context, id int64) (*model.User, error) {
	var user model.User
	err := r.db.WithContext(ctx).
		Preload("Department").
		Preload("Position").
		Where("id = ?", id).
		First(&user).Error
	if err != nil {
		return nil, err
	}
	return &user, nil
}

func (r *userRepo) GetByRUT(ctx context.Context, rut int) (*model.User, error) {
	var user model.User
	err := r.db.WithContext(ctx).
		Preload("Department").
		Where("rut = ?", rut).
		First(&user).Error
	if err != nil {
		return nil, err
	}
	return &user, nil
}

func (r *userRepo) Update(ctx context.Context, user *model.User) error {
	return r.db.WithContext(ctx).Omit(clause.Associations).Save(user).Error
}

func (r *userRepo) Delete(ctx context.Context, id int64) error {
	return r.db.WithContext(ctx).Where("id = ?", id).Delete(&model.User{}).Error
}

func (r *userRepo) List(ctx context.Context, filter UserListFilter, page Page) ([]model.User, int64, error) {
	var users []model.User
	var total int64

	db := r.db.WithContext(ctx).Model(&model.User{})
	if filter.Initial != "" {
		db = db.Where("name ILIKE ?", escapeLike(filter.Initial)+"%")
	}
	if filter.Keyword != "" {
		kw := "%" + escapeLike(filter.Keyword) + "%"
		db = db.Where("(name ILIKE ? OR email ILIKE ? OR CAST(rut AS TEXT) LIKE ?)", kw, kw, kw)
	}
	if filter.DepartmentID > 0 {
		db = db.Where("department_id = ?", filter.DepartmentID)
	}
	if filter.Role != "" {
		db = db.Where("role = ?", filter.Role)
	}

	if err := db.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	if err := page.apply(db.Preload("Department").Preload("Position")).
		Order("name ASC").
		Find(&users).Error; err != nil {
		return nil, 0, err
	}

	return users, total, nil
}

func (r *userRepo) CountByDepartment(ctx context.Context, departmentID int64) (int64, error) {
	var n int64
	err := r.db.WithContext(ctx).Model(&model.User{}).
		Where("department_id = ?", departmentID).
		Count(&n).Error
	return n, err
}

// escapeLike escapes LIKE wildcards in user input
func escapeLike(s string) string {
	return strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`).Replace(s)
}
