package service

import (
	"context"

	"go.uber.org/zap"

	"intranet-cesfam/backend/internal/dto"
	"intranet-cesfam/backend/internal/policy"
	"intranet-cesfam/backend/internal/repository"
)

// LoginRecordService login audit
type LoginRecordService interface {
	List(ctx context.Context, actor policy.Actor, req *dto.LoginRecordListRequest) ([]dto.LoginRecordResponse, int64, error)
}

type loginRecordService struct {
	repo   *repository.Repository
	logger *zap.Logger
}

// NewLoginRecordService creates a LoginRecordService
func NewLoginRecordService(repo *repository.Repository, logger *zap.Logger) LoginRecordService {
	return &loginRecordService{repo: repo, logger: logger}
}

func (s *loginRecordService) List(ctx context.Context, actor policy.Actor, req *dto.LoginRecordListRequest) ([]dto.LoginRecordResponse, int64, error) {
	if err := policy.RequireAdmin(actor); err != nil {
		return nil, 0, err
	}

	recs, total, err := s.repo.LoginRecord.List(ctx, req.UserID, page(&req.PaginationRequest))
	if err != nil {
		s.logger.Error("list login records failed", zap.Error(err))
		return nil, 0, err
	}

	result := make([]dto.LoginRecordResponse, 0, len(recs))
	for _, r := range recs {
		result = append(result, dto.LoginRecordResponse{
			ID:        r.ID,
			User:      toUserBrief(r.User),
			IP:        r.IP,
			UserAgent: r.UserAgent,
			LoggedAt:  formatTime(r.LoggedAt),
		})
	}
	return result, total, nil
}
