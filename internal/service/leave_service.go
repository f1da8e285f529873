package service

import (
	"context"
	"errors"
	"io"

	"go.uber.org/zap"
	"gorm.io/gorm"

	"intranet-cesfam/backend/internal/dto"
	"intranet-cesfam/backend/internal/model"
	"intranet-cesfam/backend/internal/policy"
	"intranet-cesfam/backend/internal/repository"
	"intranet-cesfam/backend/internal/validation"
	pkgerrors "intranet-cesfam/backend/pkg/errors"
	"intranet-cesfam/backend/pkg/storage"
)

var (
	ErrLeaveNotFound      = pkgerrors.New(pkgerrors.ErrNotFound, "leave record not found")
	ErrAttachmentNotFound = pkgerrors.New(pkgerrors.ErrNotFound, "leave record has no attachment")
)

const leaveDir = "licencias"

// LeaveService medical leave records
type LeaveService interface {
	// Create registers a leave for actor, or for req.OwnerID when actor may act on their behalf.
	Create(ctx context.Context, actor policy.Actor, req *dto.LeaveRequest, file *FileUpload) (*dto.LeaveResponse, error)
	GetByID(ctx context.Context, actor policy.Actor, id int64) (*dto.LeaveResponse, error)
	List(ctx context.Context, actor policy.Actor, req *dto.LeaveListRequest) ([]dto.LeaveResponse, int64, error)
	// Update changes the dates; a non-nil file replaces the attachment.
	Update(ctx context.Context, actor policy.Actor, id int64, req *dto.LeaveRequest, file *FileUpload) (*dto.LeaveResponse, error)
	Delete(ctx context.Context, actor policy.Actor, id int64) error
	OpenAttachment(ctx context.Context, actor policy.Actor, id int64) (io.ReadCloser, string, error)
}

type leaveService struct {
	repo       *repository.Repository
	store      storage.Storage
	uploadRule validation.UploadRule
	logger     *zap.Logger
}

// NewLeaveService creates a LeaveService; maxBytes caps attachments.
func NewLeaveService(repo *repository.Repository, store storage.Storage, maxBytes int64, logger *zap.Logger) LeaveService {
	return &leaveService{
		repo:       repo,
		store:      store,
		uploadRule: validation.LeaveAttachmentRule(maxBytes),
		logger:     logger,
	}
}

// ────────────────────── Create ──────────────────────

func (s *leaveService) Create(ctx context.Context, actor policy.Actor, req *dto.LeaveRequest, file *FileUpload) (*dto.LeaveResponse, error) {
	if !actor.Valid() {
		return nil, policy.ErrNoActor
	}

	ownerID := actor.UserID
	if req.OwnerID > 0 && req.OwnerID != actor.UserID {
		owner, err := s.repo.User.GetByID(ctx, req.OwnerID)
		if err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return nil, validation.Field("owner_id", "user not found")
			}
			return nil, err
		}
		if err := policy.CanMutate(policy.KindLeave, actor, owner.ID, owner.DeptID()); err != nil {
			return nil, err
		}
		ownerID = owner.ID
	}

	rec := &model.LeaveRecord{OwnerID: ownerID}
	if err := applyLeaveDates(rec, req); err != nil {
		return nil, err
	}

	var storedRef string
	if file != nil {
		ref, err := s.saveAttachment(ctx, file)
		if err != nil {
			return nil, err
		}
		rec.AttachmentRef, rec.AttachmentName = ref, file.Filename
		storedRef = ref
	}

	if err := s.repo.Leave.Create(ctx, rec); err != nil {
		s.logger.Error("create leave record failed", zap.Int64("owner_id", ownerID), zap.Error(err))
		discardFile(ctx, s.store, s.logger, storedRef)
		return nil, err
	}
	return s.GetByID(ctx, actor, rec.ID)
}

// ────────────────────── GetByID ──────────────────────

func (s *leaveService) GetByID(ctx context.Context, actor policy.Actor, id int64) (*dto.LeaveResponse, error) {
	rec, err := s.load(ctx, actor, id)
	if err != nil {
		return nil, err
	}
	return toLeaveResponse(rec), nil
}

// ────────────────────── List ──────────────────────

func (s *leaveService) List(ctx context.Context, actor policy.Actor, req *dto.LeaveListRequest) ([]dto.LeaveResponse, int64, error) {
	if !actor.Valid() {
		return nil, 0, policy.ErrNoActor
	}

	filter := repository.LeaveListFilter{
		Scope:   policy.ScopeFor(policy.KindLeave, actor),
		OwnerID: req.OwnerID,
	}
	recs, total, err := s.repo.Leave.List(ctx, filter, page(&req.PaginationRequest))
	if err != nil {
		s.logger.Error("list leave records failed", zap.Error(err))
		return nil, 0, err
	}

	result := make([]dto.LeaveResponse, 0, len(recs))
	for i := range recs {
		result = append(result, *toLeaveResponse(&recs[i]))
	}
	return result, total, nil
}

// ────────────────────── Update ──────────────────────

func (s *leaveService) Update(ctx context.Context, actor policy.Actor, id int64, req *dto.LeaveRequest, file *FileUpload) (*dto.LeaveResponse, error) {
	rec, err := s.load(ctx, actor, id)
	if err != nil {
		return nil, err
	}
	if err := policy.CanMutate(policy.KindLeave, actor, rec.OwnerID, rec.Owner.DeptID()); err != nil {
		return nil, err
	}
	if err := applyLeaveDates(rec, req); err != nil {
		return nil, err
	}

	oldRef := rec.AttachmentRef
	var newRef string
	if file != nil {
		newRef, err = s.saveAttachment(ctx, file)
		if err != nil {
			return nil, err
		}
		rec.AttachmentRef, rec.AttachmentName = newRef, file.Filename
	}

	rec.Owner = nil
	if err := s.repo.Leave.Update(ctx, rec); err != nil {
		s.logger.Error("update leave record failed", zap.Int64("id", id), zap.Error(err))
		discardFile(ctx, s.store, s.logger, newRef)
		return nil, err
	}
	if newRef != "" {
		discardFile(ctx, s.store, s.logger, oldRef)
	}
	return s.GetByID(ctx, actor, id)
}

// ────────────────────── Delete ──────────────────────

func (s *leaveService) Delete(ctx context.Context, actor policy.Actor, id int64) error {
	rec, err := s.load(ctx, actor, id)
	if err != nil {
		return err
	}
	if err := policy.CanMutate(policy.KindLeave, actor, rec.OwnerID, rec.Owner.DeptID()); err != nil {
		return err
	}

	if err := s.repo.Leave.Delete(ctx, id); err != nil {
		s.logger.Error("delete leave record failed", zap.Int64("id", id), zap.Error(err))
		return err
	}
	discardFile(ctx, s.store, s.logger, rec.AttachmentRef)
	return nil
}

// ────────────────────── OpenAttachment ──────────────────────

func (s *leaveService) OpenAttachment(ctx context.Context, actor policy.Actor, id int64) (io.ReadCloser, string, error) {
	rec, err := s.load(ctx, actor, id)
	if err != nil {
		return nil, "", err
	}
	if rec.AttachmentRef == "" {
		return nil, "", ErrAttachmentNotFound
	}
	rc, err := s.store.Open(ctx, rec.AttachmentRef)
	if err != nil {
		if errors.Is(err, storage.ErrNotFound) {
			return nil, "", ErrAttachmentNotFound
		}
		s.logger.Error("open attachment failed", zap.Int64("id", id), zap.Error(err))
		return nil, "", err
	}
	return rc, rec.AttachmentName, nil
}

// ── helpers ──

func applyLeaveDates(rec *model.LeaveRecord, req *dto.LeaveRequest) error {
	var errs validation.Errors
	start := validation.ParseDate(&errs, "start_date", req.StartDate)
	end := validation.ParseDate(&errs, "end_date", req.EndDate)
	validation.CheckDateRange(&errs, "start_date", "end_date", start, end)
	if err := errs.Err(); err != nil {
		return err
	}
	rec.StartDate, rec.EndDate = start, end
	return nil
}

func (s *leaveService) saveAttachment(ctx context.Context, file *FileUpload) (string, error) {
	mime, body, err := checkUpload(s.uploadRule, file)
	if err != nil {
		return "", err
	}
	ref, err := s.store.Save(ctx, leaveDir, file.Filename, body, file.Size, mime)
	if err != nil {
		s.logger.Error("store attachment failed", zap.String("filename", file.Filename), zap.Error(err))
		return "", err
	}
	return ref, nil
}

func (s *leaveService) load(ctx context.Context, actor policy.Actor, id int64) (*model.LeaveRecord, error) {
	if !actor.Valid() {
		return nil, policy.ErrNoActor
	}
	rec, err := s.repo.Leave.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrLeaveNotFound
		}
		s.logger.Error("load leave record failed", zap.Int64("id", id), zap.Error(err))
		return nil, err
	}
	if !policy.ScopeFor(policy.KindLeave, actor).Allows(rec.OwnerID, rec.Owner.DeptID(), false) {
		return nil, ErrLeaveNotFound
	}
	return rec, nil
}

func toLeaveResponse(rec *model.LeaveRecord) *dto.LeaveResponse {
	return &dto.LeaveResponse{
		ID:             rec.ID,
		Owner:          toUserBrief(rec.Owner),
		StartDate:      formatDate(rec.StartDate),
		EndDate:        formatDate(rec.EndDate),
		Days:           daysInclusive(rec.StartDate, rec.EndDate),
		HasAttachment:  rec.AttachmentRef != "",
		AttachmentName: rec.AttachmentName,
		CreatedAt:      formatTime(rec.CreatedAt),
	}
}
