package repository

import (
	"context"
	"time"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"intranet-cesfam/backend/internal/model"
	"intranet-cesfam/backend/internal/policy"
	pkgerrors "intranet-cesfam/backend/pkg/errors"
)

// RequestListFilter request listing criteria
type RequestListFilter struct {
	Scope    policy.Scope
	Status   model.RequestStatus
	TypeID   int64
	Awaiting policy.Stage // only requests waiting on this review stage
	From     *time.Time   // start_date >= From
	To       *time.Time   // start_date <= To
}

// RequestRepository request data access
type RequestRepository interface {
	Create(ctx context.Context, req *model.Request) error
	GetByID(ctx context.Context, id int64) (*model.Request, error)
	// Update writes requester-editable fields; version-checked.
	Update(ctx context.Context, req *model.Request) error
	// UpdateDecision writes approvals, reviewers and status; version-checked.
	UpdateDecision(ctx context.Context, req *model.Request) error
	Delete(ctx context.Context, id int64) error
	List(ctx context.Context, filter RequestListFilter, page Page) ([]model.Request, int64, error)
}

type requestRepo struct {
	db *gorm.DB
}

// NewRequestRepo creates a RequestRepository
func NewRequestRepo(db *gorm.DB) RequestRepository {
	return &requestRepo{db: db}
}

func (r *requestRepo) Create(ctx context.Context, req *model.Request) error {
	return r.db.WithContext(ctx).Omit(clause.Associations).Create(req).Error
}

func (r *requestRepo) GetByID(ctx context.Context, id int64) (*model.Request, error) {
	var req model.Request
	err := r.db.WithContext(ctx).
		Preload("Requester").
		Preload("Requester.Department").
		Preload("Type").
		Where("id = ?", id).
		First(&req).Error
	if err != nil {
		return nil, err
	}
	return &req, nil
}

// Update writes the requester-editable fields and the manager review,
// which an edit may have reopened.
func (r *requestRepo) Update(ctx context.Context, req *model.Request) error {
	return r.versioned(ctx, req, map[string]interface{}{
		"request_type_id":     req.TypeID,
		"start_date":          req.StartDate,
		"end_date":            req.EndDate,
		"reason":              req.Reason,
		"approved_by_manager": req.ApprovedByManager,
		"manager_reviewer_id": req.ManagerReviewerID,
		"manager_reviewed_at": req.ManagerReviewedAt,
	})
}

func (r *requestRepo) UpdateDecision(ctx context.Context, req *model.Request) error {
	return r.versioned(ctx, req, map[string]interface{}{
		"approved_by_manager":  req.ApprovedByManager,
		"approved_by_director": req.ApprovedByDirector,
		"manager_reviewer_id":  req.ManagerReviewerID,
		"manager_reviewed_at":  req.ManagerReviewedAt,
		"director_reviewer_id": req.DirectorReviewerID,
		"director_reviewed_at": req.DirectorReviewedAt,
		"status":               req.Status,
	})
}

func (r *requestRepo) versioned(ctx context.Context, req *model.Request, fields map[string]interface{}) error {
	oldVersion := req.Version
	fields["version"] = oldVersion + 1
	fields["updated_at"] = time.Now()

	result := r.db.WithContext(ctx).
		Model(&model.Request{}).
		Where("id = ? AND version = ?", req.ID, oldVersion).
		Updates(fields)
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return pkgerrors.ErrOptimisticLock
	}
	req.Version = oldVersion + 1
	return nil
}

func (r *requestRepo) Delete(ctx context.Context, id int64) error {
	return r.db.WithContext(ctx).Where("id = ?", id).Delete(&model.Request{}).Error
}

func (r *requestRepo) List(ctx context.Context, filter RequestListFilter, page Page) ([]model.Request, int64, error) {
	var reqs []model.Request
	var total int64

	db := applyScope(r.db.WithContext(ctx).Model(&model.Request{}), filter.Scope, "requester_id", "")
	if filter.Status != "" {
		db = db.Where("status = ?", filter.Status)
	}
	if filter.TypeID > 0 {
		db = db.Where("request_type_id = ?", filter.TypeID)
	}
	switch filter.Awaiting {
	case policy.StageManager:
		db = db.Where("status = ? AND approved_by_manager IS NULL", model.RequestPending)
	case policy.StageDirector:
		db = db.Where("status = ? AND approved_by_manager = TRUE AND approved_by_director IS NULL", model.RequestPending)
	}
	if filter.From != nil {
		db = db.Where("start_date >= ?", *filter.From)
	}
	if filter.To != nil {
		db = db.Where("start_date <= ?", *filter.To)
	}

	if err := db.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	if err := page.apply(db.Preload("Requester").Preload("Requester.Department").Preload("Type")).
		Order("created_at DESC").
		Find(&reqs).Error; err != nil {
		return nil, 0, err
	}

	return reqs, total, nil
}
