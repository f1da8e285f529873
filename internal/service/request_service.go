package service

import (
	"context"
	"errors"
	"strings"
	"time"

	"go.uber.org/zap"
	"gorm.io/gorm"

	"intranet-cesfam/backend/internal/dto"
	"intranet-cesfam/backend/internal/model"
	"intranet-cesfam/backend/internal/policy"
	"intranet-cesfam/backend/internal/repository"
	"intranet-cesfam/backend/internal/validation"
	pkgerrors "intranet-cesfam/backend/pkg/errors"
)

var ErrRequestNotFound = pkgerrors.New(pkgerrors.ErrNotFound, "request not found")

// RequestService leave/permission requests and their two-stage approval
type RequestService interface {
	Create(ctx context.Context, actor policy.Actor, req *dto.CreateRequestRequest) (*dto.RequestResponse, error)
	GetByID(ctx context.Context, actor policy.Actor, id int64) (*dto.RequestResponse, error)
	List(ctx context.Context, actor policy.Actor, req *dto.RequestListRequest) ([]dto.RequestResponse, int64, error)
	Update(ctx context.Context, actor policy.Actor, id int64, req *dto.UpdateRequestRequest) (*dto.RequestResponse, error)
	Delete(ctx context.Context, actor policy.Actor, id int64) error
	// Decide records approve/reject at stage.
	Decide(ctx context.Context, actor policy.Actor, id int64, stage policy.Stage, approve bool) (*dto.RequestResponse, error)
}

type requestService struct {
	repo   *repository.Repository
	clock  clock
	logger *zap.Logger
}

// NewRequestService creates a RequestService; loc decides what "today" is.
func NewRequestService(repo *repository.Repository, loc *time.Location, logger *zap.Logger) RequestService {
	return &requestService{repo: repo, clock: newClock(loc), logger: logger}
}

// ────────────────────── Create ──────────────────────

func (s *requestService) Create(ctx context.Context, actor policy.Actor, req *dto.CreateRequestRequest) (*dto.RequestResponse, error) {
	if !actor.Valid() {
		return nil, policy.ErrNoActor
	}

	var errs validation.Errors
	start := validation.ParseDate(&errs, "start_date", req.StartDate)
	end := validation.ParseDate(&errs, "end_date", req.EndDate)
	validation.CheckDateRange(&errs, "start_date", "end_date", start, end)
	validation.CheckNotRetroactive(&errs, "start_date", start, s.clock.today())
	if err := s.checkType(ctx, &errs, req.TypeID); err != nil {
		return nil, err
	}
	if err := errs.Err(); err != nil {
		return nil, err
	}

	r := &model.Request{
		RequesterID: actor.UserID,
		TypeID:      req.TypeID,
		StartDate:   start,
		EndDate:     end,
		Reason:      strings.TrimSpace(req.Reason),
		Status:      model.RequestPending,
	}
	if err := s.repo.Request.Create(ctx, r); err != nil {
		s.logger.Error("create request failed", zap.Int64("requester_id", actor.UserID), zap.Error(err))
		return nil, err
	}

	s.logger.Info("request created", zap.Int64("id", r.ID), zap.Int64("requester_id", actor.UserID))
	return s.GetByID(ctx, actor, r.ID)
}

// ────────────────────── GetByID ──────────────────────

func (s *requestService) GetByID(ctx context.Context, actor policy.Actor, id int64) (*dto.RequestResponse, error) {
	r, err := s.load(ctx, s.repo, actor, id)
	if err != nil {
		return nil, err
	}
	return toRequestResponse(r), nil
}

// ────────────────────── List ──────────────────────

func (s *requestService) List(ctx context.Context, actor policy.Actor, req *dto.RequestListRequest) ([]dto.RequestResponse, int64, error) {
	filter, ok, err := requestFilter(actor, req)
	if err != nil {
		return nil, 0, err
	}
	if !ok {
		return []dto.RequestResponse{}, 0, nil
	}

	reqs, total, err := s.repo.Request.List(ctx, filter, page(&req.PaginationRequest))
	if err != nil {
		s.logger.Error("list requests failed", zap.Error(err))
		return nil, 0, err
	}

	result := make([]dto.RequestResponse, 0, len(reqs))
	for i := range reqs {
		result = append(result, *toRequestResponse(&reqs[i]))
	}
	return result, total, nil
}

// requestFilter builds the scoped listing criteria for actor.
// ok is false when the "awaiting me" view cannot contain anything for actor.
func requestFilter(actor policy.Actor, req *dto.RequestListRequest) (repository.RequestListFilter, bool, error) {
	if !actor.Valid() {
		return repository.RequestListFilter{}, false, policy.ErrNoActor
	}

	filter := repository.RequestListFilter{
		Scope:  policy.ScopeFor(policy.KindRequest, actor),
		Status: model.RequestStatus(req.Status),
		TypeID: req.TypeID,
	}

	var errs validation.Errors
	if req.From != "" {
		from := validation.ParseDate(&errs, "from", req.From)
		filter.From = &from
	}
	if req.To != "" {
		to := validation.ParseDate(&errs, "to", req.To)
		filter.To = &to
	}
	if filter.From != nil && filter.To != nil {
		validation.CheckDateRange(&errs, "from", "to", *filter.From, *filter.To)
	}
	if err := errs.Err(); err != nil {
		return filter, false, err
	}

	if req.AwaitingMe {
		switch {
		case actor.IsElevated():
			filter.Awaiting = policy.StageDirector
		case actor.IsDepartmentHead() && actor.DepartmentID > 0:
			filter.Awaiting = policy.StageManager
			filter.Scope = policy.Scope{DepartmentID: actor.DepartmentID}
		default:
			return filter, false, nil
		}
	}
	return filter, true, nil
}

// ────────────────────── Update ──────────────────────

func (s *requestService) Update(ctx context.Context, actor policy.Actor, id int64, req *dto.UpdateRequestRequest) (*dto.RequestResponse, error) {
	r, err := s.load(ctx, s.repo, actor, id)
	if err != nil {
		return nil, err
	}
	if err := policy.CanModify(r, actor); err != nil {
		return nil, err
	}

	prevType, prevStart, prevEnd := r.TypeID, r.StartDate, r.EndDate

	var errs validation.Errors
	if req.TypeID != nil {
		if err := s.checkType(ctx, &errs, *req.TypeID); err != nil {
			return nil, err
		}
		r.TypeID = *req.TypeID
	}
	if req.StartDate != nil {
		r.StartDate = validation.ParseDate(&errs, "start_date", *req.StartDate)
	}
	if req.EndDate != nil {
		r.EndDate = validation.ParseDate(&errs, "end_date", *req.EndDate)
	}
	validation.CheckDateRange(&errs, "start_date", "end_date", r.StartDate, r.EndDate)
	if req.StartDate != nil {
		validation.CheckNotRetroactive(&errs, "start_date", r.StartDate, s.clock.today())
	}
	if req.Reason != nil {
		r.Reason = strings.TrimSpace(*req.Reason)
	}
	if err := errs.Err(); err != nil {
		return nil, err
	}

	// a head's approval covers the type and dates it was given for
	if r.TypeID != prevType || !r.StartDate.Equal(prevStart) || !r.EndDate.Equal(prevEnd) {
		if policy.ReopenManagerReview(r) {
			s.logger.Info("request terms changed, manager review reopened", zap.Int64("id", id))
		}
	}

	if err := s.repo.Request.Update(ctx, r); err != nil {
		if !errors.Is(err, pkgerrors.ErrOptimisticLock) {
			s.logger.Error("update request failed", zap.Int64("id", id), zap.Error(err))
		}
		return nil, err
	}

	return s.GetByID(ctx, actor, id)
}

// ────────────────────── Delete ──────────────────────

func (s *requestService) Delete(ctx context.Context, actor policy.Actor, id int64) error {
	r, err := s.load(ctx, s.repo, actor, id)
	if err != nil {
		return err
	}
	if err := policy.CanModify(r, actor); err != nil {
		return err
	}

	if err := s.repo.Request.Delete(ctx, id); err != nil {
		s.logger.Error("delete request failed", zap.Int64("id", id), zap.Error(err))
		return err
	}
	return nil
}

// ────────────────────── Decide ──────────────────────

func (s *requestService) Decide(ctx context.Context, actor policy.Actor, id int64, stage policy.Stage, approve bool) (*dto.RequestResponse, error) {
	if !stage.Valid() {
		return nil, validation.Field("stage", "stage must be manager or director")
	}

	var decided *model.Request
	err := inTx(ctx, s.repo, s.logger, func(txRepo *repository.Repository) error {
		r, err := txRepo.Request.GetByID(ctx, id)
		if err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return ErrRequestNotFound
			}
			return err
		}

		if err := policy.ApplyDecision(r, stage, actor, r.Requester.DeptID(), approve, s.clock.now()); err != nil {
			return err
		}

		if err := txRepo.Request.UpdateDecision(ctx, r); err != nil {
			// a concurrent reviewer got there first
			if errors.Is(err, pkgerrors.ErrOptimisticLock) {
				return policy.ErrAlreadyReviewed
			}
			return err
		}
		decided = r
		return nil
	})
	if err != nil {
		if pkgerrors.Kind(err) == nil {
			s.logger.Error("record decision failed", zap.Int64("id", id), zap.Error(err))
		}
		return nil, err
	}

	s.logger.Info("request reviewed",
		zap.Int64("id", id),
		zap.String("stage", string(stage)),
		zap.Bool("approve", approve),
		zap.String("status", string(decided.Status)),
		zap.Int64("reviewer_id", actor.UserID),
	)
	return toRequestResponse(decided), nil
}

// ── helpers ──

// load fetches id and applies the actor's read scope; invisible requests are not found.
func (s *requestService) load(ctx context.Context, repo *repository.Repository, actor policy.Actor, id int64) (*model.Request, error) {
	if !actor.Valid() {
		return nil, policy.ErrNoActor
	}
	r, err := repo.Request.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrRequestNotFound
		}
		s.logger.Error("load request failed", zap.Int64("id", id), zap.Error(err))
		return nil, err
	}
	if !policy.ScopeFor(policy.KindRequest, actor).Allows(r.RequesterID, r.Requester.DeptID(), false) {
		return nil, ErrRequestNotFound
	}
	return r, nil
}

func (s *requestService) checkType(ctx context.Context, errs *validation.Errors, typeID int64) error {
	if _, err := s.repo.Reference.GetRequestType(ctx, typeID); err != nil {
		if !errors.Is(err, gorm.ErrRecordNotFound) {
			return err
		}
		errs.Add("request_type_id", "request type not found")
	}
	return nil
}

func toRequestResponse(r *model.Request) *dto.RequestResponse {
	resp := &dto.RequestResponse{
		ID:                 r.ID,
		Requester:          toUserBrief(r.Requester),
		StartDate:          formatDate(r.StartDate),
		EndDate:            formatDate(r.EndDate),
		Days:               daysInclusive(r.StartDate, r.EndDate),
		Reason:             r.Reason,
		ApprovedByManager:  r.ApprovedByManager,
		ApprovedByDirector: r.ApprovedByDirector,
		ManagerReviewerID:  r.ManagerReviewerID,
		ManagerReviewedAt:  formatTimePtr(r.ManagerReviewedAt),
		DirectorReviewerID: r.DirectorReviewerID,
		DirectorReviewedAt: formatTimePtr(r.DirectorReviewedAt),
		Status:             string(r.Status),
		StatusLabel:        r.Status.Label(),
		AwaitingStage:      string(policy.AwaitingStage(r)),
		Version:            r.Version,
		CreatedAt:          formatTime(r.CreatedAt),
	}
	if r.Requester != nil {
		resp.RequesterDepartment = toDepartmentBrief(r.Requester.Department)
	}
	if r.Type != nil {
		resp.Type = &dto.RequestTypeResponse{ID: r.Type.ID, Name: r.Type.Name}
	}
	return resp
}
