package service

import (
	"context"

	"go.uber.org/zap"

	"intranet-cesfam/backend/internal/dto"
	"intranet-cesfam/backend/internal/model"
	"intranet-cesfam/backend/internal/repository"
)

// ReferenceService read-only lookup data
type ReferenceService interface {
	Roles() []dto.EnumResponse
	RequestStatuses() []dto.EnumResponse
	Positions(ctx context.Context) ([]dto.PositionResponse, error)
	RequestTypes(ctx context.Context) ([]dto.RequestTypeResponse, error)
	EventTypes(ctx context.Context) ([]dto.EventTypeResponse, error)
}

type referenceService struct {
	repo   *repository.Repository
	logger *zap.Logger
}

// NewReferenceService creates a ReferenceService
func NewReferenceService(repo *repository.Repository, logger *zap.Logger) ReferenceService {
	return &referenceService{repo: repo, logger: logger}
}

func (s *referenceService) Roles() []dto.EnumResponse {
	roles := model.Roles()
	out := make([]dto.EnumResponse, 0, len(roles))
	for _, r := range roles {
		out = append(out, dto.EnumResponse{Value: string(r), Label: r.Label()})
	}
	return out
}

func (s *referenceService) RequestStatuses() []dto.EnumResponse {
	statuses := model.RequestStatuses()
	out := make([]dto.EnumResponse, 0, len(statuses))
	for _, st := range statuses {
		out = append(out, dto.EnumResponse{Value: string(st), Label: st.Label()})
	}
	return out
}

func (s *referenceService) Positions(ctx context.Context) ([]dto.PositionResponse, error) {
	items, err := s.repo.Reference.ListPositions(ctx)
	if err != nil {
		s.logger.Error("list positions failed", zap.Error(err))
		return nil, err
	}
	out := make([]dto.PositionResponse, 0, len(items))
	for _, p := range items {
		out = append(out, dto.PositionResponse{ID: p.ID, Name: p.Name})
	}
	return out, nil
}

func (s *referenceService) RequestTypes(ctx context.Context) ([]dto.RequestTypeResponse, error) {
	items, err := s.repo.Reference.ListRequestTypes(ctx)
	if err != nil {
		s.logger.Error("list request types failed", zap.Error(err))
		return nil, err
	}
	out := make([]dto.RequestTypeResponse, 0, len(items))
	for _, t := range items {
		out = append(out, dto.RequestTypeResponse{ID: t.ID, Name: t.Name})
	}
	return out, nil
}

func (s *referenceService) EventTypes(ctx context.Context) ([]dto.EventTypeResponse, error) {
	items, err := s.repo.Reference.ListEventTypes(ctx)
	if err != nil {
		s.logger.Error("list event types failed", zap.Error(err))
		return nil, err
	}
	out := make([]dto.EventTypeResponse, 0, len(items))
	for _, t := range items {
		out = append(out, dto.EventTypeResponse{ID: t.ID, Name: t.Name})
	}
	return out, nil
}
