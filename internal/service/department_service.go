package service

import (
	"context"
	"errors"
	"strings"

	"go.uber.org/zap"
	"gorm.io/gorm"

	"intranet-cesfam/backend/internal/dto"
	"intranet-cesfam/backend/internal/model"
	"intranet-cesfam/backend/internal/policy"
	"intranet-cesfam/backend/internal/repository"
	"intranet-cesfam/backend/internal/validation"
	pkgerrors "intranet-cesfam/backend/pkg/errors"
)

var (
	ErrDepartmentNotFound   = pkgerrors.New(pkgerrors.ErrNotFound, "department not found")
	ErrDepartmentNameExists = pkgerrors.New(pkgerrors.ErrValidation, "department name already exists")
	ErrDepartmentHasMembers = pkgerrors.New(pkgerrors.ErrInvalidState, "department still has members")
	ErrHeadRole             = pkgerrors.New(pkgerrors.ErrValidation, "directors and administrators cannot head a department")
)

// DepartmentService departments and their heads
type DepartmentService interface {
	Create(ctx context.Context, actor policy.Actor, req *dto.CreateDepartmentRequest) (*dto.DepartmentResponse, error)
	GetByID(ctx context.Context, id int64) (*dto.DepartmentResponse, error)
	List(ctx context.Context) ([]dto.DepartmentResponse, error)
	Update(ctx context.Context, actor policy.Actor, id int64, req *dto.UpdateDepartmentRequest) (*dto.DepartmentResponse, error)
	Delete(ctx context.Context, actor policy.Actor, id int64) error
	// ReassignHead makes userID the head of departmentID; userID 0 clears the head.
	ReassignHead(ctx context.Context, actor policy.Actor, departmentID, userID int64) (*dto.DepartmentResponse, error)
}

type departmentService struct {
	repo   *repository.Repository
	logger *zap.Logger
}

// NewDepartmentService creates a DepartmentService
func NewDepartmentService(repo *repository.Repository, logger *zap.Logger) DepartmentService {
	return &departmentService{repo: repo, logger: logger}
}

// ────────────────────── Create ──────────────────────

func (s *departmentService) Create(ctx context.Context, actor policy.Actor, req *dto.CreateDepartmentRequest) (*dto.DepartmentResponse, error) {
	if err := policy.CanManageUsers(actor); err != nil {
		return nil, err
	}

	name := strings.TrimSpace(req.Name)
	if err := s.checkNameFree(ctx, name, 0); err != nil {
		return nil, err
	}

	dept := &model.Department{Name: name}
	err := inTx(ctx, s.repo, s.logger, func(txRepo *repository.Repository) error {
		if err := txRepo.Department.Create(ctx, dept); err != nil {
			return err
		}
		if req.HeadID != nil {
			return reassignHead(ctx, txRepo, dept.ID, *req.HeadID)
		}
		return nil
	})
	if err != nil {
		s.logger.Error("create department failed", zap.String("name", name), zap.Error(err))
		return nil, err
	}

	return s.GetByID(ctx, dept.ID)
}

// ────────────────────── GetByID ──────────────────────

func (s *departmentService) GetByID(ctx context.Context, id int64) (*dto.DepartmentResponse, error) {
	dept, err := s.repo.Department.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrDepartmentNotFound
		}
		s.logger.Error("load department failed", zap.Int64("id", id), zap.Error(err))
		return nil, err
	}
	return s.toResponse(ctx, dept)
}

// ────────────────────── List ──────────────────────

func (s *departmentService) List(ctx context.Context) ([]dto.DepartmentResponse, error) {
	depts, err := s.repo.Department.List(ctx)
	if err != nil {
		s.logger.Error("list departments failed", zap.Error(err))
		return nil, err
	}

	result := make([]dto.DepartmentResponse, 0, len(depts))
	for i := range depts {
		resp, err := s.toResponse(ctx, &depts[i])
		if err != nil {
			return nil, err
		}
		result = append(result, *resp)
	}
	return result, nil
}

// ────────────────────── Update ──────────────────────

func (s *departmentService) Update(ctx context.Context, actor policy.Actor, id int64, req *dto.UpdateDepartmentRequest) (*dto.DepartmentResponse, error) {
	if err := policy.CanManageUsers(actor); err != nil {
		return nil, err
	}

	dept, err := s.repo.Department.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrDepartmentNotFound
		}
		return nil, err
	}

	if req.Name != nil {
		name := strings.TrimSpace(*req.Name)
		if err := s.checkNameFree(ctx, name, id); err != nil {
			return nil, err
		}
		dept.Name = name
	}

	err = inTx(ctx, s.repo, s.logger, func(txRepo *repository.Repository) error {
		if req.Name != nil {
			dept.Head = nil
			if err := txRepo.Department.Update(ctx, dept); err != nil {
				return err
			}
		}
		if req.HeadID != nil {
			return reassignHead(ctx, txRepo, id, *req.HeadID)
		}
		return nil
	})
	if err != nil {
		s.logger.Error("update department failed", zap.Int64("id", id), zap.Error(err))
		return nil, err
	}

	return s.GetByID(ctx, id)
}

// ────────────────────── Delete ──────────────────────

func (s *departmentService) Delete(ctx context.Context, actor policy.Actor, id int64) error {
	if err := policy.CanManageUsers(actor); err != nil {
		return err
	}

	if _, err := s.repo.Department.GetByID(ctx, id); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return ErrDepartmentNotFound
		}
		return err
	}

	members, err := s.repo.User.CountByDepartment(ctx, id)
	if err != nil {
		return err
	}
	if members > 0 {
		return ErrDepartmentHasMembers
	}

	if err := s.repo.Department.Delete(ctx, id); err != nil {
		s.logger.Error("delete department failed", zap.Int64("id", id), zap.Error(err))
		return err
	}
	return nil
}

// ────────────────────── ReassignHead ──────────────────────

func (s *departmentService) ReassignHead(ctx context.Context, actor policy.Actor, departmentID, userID int64) (*dto.DepartmentResponse, error) {
	if err := policy.CanManageUsers(actor); err != nil {
		return nil, err
	}

	err := inTx(ctx, s.repo, s.logger, func(txRepo *repository.Repository) error {
		return reassignHead(ctx, txRepo, departmentID, userID)
	})
	if err != nil {
		if pkgerrors.Kind(err) == nil {
			s.logger.Error("reassign department head failed",
				zap.Int64("department_id", departmentID), zap.Int64("user_id", userID), zap.Error(err))
		}
		return nil, err
	}

	s.logger.Info("department head reassigned",
		zap.Int64("department_id", departmentID), zap.Int64("user_id", userID), zap.Int64("by", actor.UserID))
	return s.GetByID(ctx, departmentID)
}

// reassignHead keeps "one head per department, one department per head" while
// moving headship; repo must be transaction-bound.
//
//   - userID 0 clears the department's head
//   - the previous head is demoted to staff if their role was department_head
//   - the new head leaves any department they headed, joins departmentID and,
//     when staff, is promoted to department_head
//   - already head of departmentID: no-op
func reassignHead(ctx context.Context, repo *repository.Repository, departmentID, userID int64) error {
	dept, err := repo.Department.GetByID(ctx, departmentID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return ErrDepartmentNotFound
		}
		return err
	}

	if dept.HeadID != nil && *dept.HeadID == userID {
		return nil
	}

	var head *model.User
	if userID > 0 {
		head, err = repo.User.GetByID(ctx, userID)
		if err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return validation.Field("user_id", "user not found")
			}
			return err
		}
		if head.Role == model.RoleDirector || head.Role == model.RoleAdmin {
			return ErrHeadRole
		}
	}

	if dept.HeadID != nil {
		if err := demoteHead(ctx, repo, *dept.HeadID); err != nil {
			return err
		}
	}

	if head == nil {
		return repo.Department.SetHead(ctx, departmentID, nil)
	}

	if err := repo.Department.ClearHeadship(ctx, head.ID); err != nil {
		return err
	}
	if err := repo.Department.SetHead(ctx, departmentID, &head.ID); err != nil {
		return err
	}

	head.DepartmentID = &departmentID
	if head.Role == model.RoleStaff {
		head.Role = model.RoleDepartmentHead
	}
	head.Department, head.Position = nil, nil
	return repo.User.Update(ctx, head)
}

// demoteHead returns a former head to staff
func demoteHead(ctx context.Context, repo *repository.Repository, userID int64) error {
	prev, err := repo.User.GetByID(ctx, userID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil
		}
		return err
	}
	if prev.Role != model.RoleDepartmentHead {
		return nil
	}
	prev.Role = model.RoleStaff
	prev.Department, prev.Position = nil, nil
	return repo.User.Update(ctx, prev)
}

// ── helpers ──

func (s *departmentService) checkNameFree(ctx context.Context, name string, selfID int64) error {
	existing, err := s.repo.Department.GetByName(ctx, name)
	if err == nil && existing.ID != selfID {
		return ErrDepartmentNameExists
	}
	if err != nil && !errors.Is(err, gorm.ErrRecordNotFound) {
		return err
	}
	return nil
}

func (s *departmentService) toResponse(ctx context.Context, dept *model.Department) (*dto.DepartmentResponse, error) {
	count, err := s.repo.User.CountByDepartment(ctx, dept.ID)
	if err != nil {
		s.logger.Error("count department members failed", zap.Int64("id", dept.ID), zap.Error(err))
		return nil, err
	}
	return &dto.DepartmentResponse{
		ID:          dept.ID,
		Name:        dept.Name,
		Head:        toUserBrief(dept.Head),
		MemberCount: count,
	}, nil
}
