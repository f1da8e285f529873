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

var ErrAnnouncementNotFound = pkgerrors.New(pkgerrors.ErrNotFound, "announcement not found")

// AnnouncementService notice board
type AnnouncementService interface {
	Create(ctx context.Context, actor policy.Actor, req *dto.CreateAnnouncementRequest) (*dto.AnnouncementResponse, error)
	List(ctx context.Context, req *dto.PaginationRequest) ([]dto.AnnouncementResponse, int64, error)
	Delete(ctx context.Context, actor policy.Actor, id int64) error
}

type announcementService struct {
	repo   *repository.Repository
	logger *zap.Logger
}

// NewAnnouncementService creates an AnnouncementService
func NewAnnouncementService(repo *repository.Repository, logger *zap.Logger) AnnouncementService {
	return &announcementService{repo: repo, logger: logger}
}

func (s *announcementService) Create(ctx context.Context, actor policy.Actor, req *dto.CreateAnnouncementRequest) (*dto.AnnouncementResponse, error) {
	if !actor.Valid() {
		return nil, policy.ErrNoActor
	}
	if err := policy.CanAnnounce(actor); err != nil {
		return nil, err
	}
	title := strings.TrimSpace(req.Title)
	if title == "" {
		return nil, validation.Field("title", "is required")
	}

	a := &model.Announcement{
		Title:     title,
		Body:      strings.TrimSpace(req.Body),
		AuthorID:  actor.UserID,
		CreatedAt: time.Now(),
	}
	if err := s.repo.Announcement.Create(ctx, a); err != nil {
		s.logger.Error("create announcement failed", zap.Int64("author_id", actor.UserID), zap.Error(err))
		return nil, err
	}

	created, err := s.repo.Announcement.GetByID(ctx, a.ID)
	if err != nil {
		return nil, err
	}
	return toAnnouncementResponse(created), nil
}

func (s *announcementService) List(ctx context.Context, req *dto.PaginationRequest) ([]dto.AnnouncementResponse, int64, error) {
	items, total, err := s.repo.Announcement.List(ctx, page(req))
	if err != nil {
		s.logger.Error("list announcements failed", zap.Error(err))
		return nil, 0, err
	}
	result := make([]dto.AnnouncementResponse, 0, len(items))
	for i := range items {
		result = append(result, *toAnnouncementResponse(&items[i]))
	}
	return result, total, nil
}

func (s *announcementService) Delete(ctx context.Context, actor policy.Actor, id int64) error {
	a, err := s.repo.Announcement.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return ErrAnnouncementNotFound
		}
		return err
	}
	if err := policy.CanMutate(policy.KindAnnouncement, actor, a.AuthorID, 0); err != nil {
		return err
	}
	if err := s.repo.Announcement.Delete(ctx, id); err != nil {
		s.logger.Error("delete announcement failed", zap.Int64("id", id), zap.Error(err))
		return err
	}
	return nil
}

func toAnnouncementResponse(a *model.Announcement) *dto.AnnouncementResponse {
	return &dto.AnnouncementResponse{
		ID:        a.ID,
		Title:     a.Title,
		Body:      a.Body,
		Author:    toUserBrief(a.Author),
		CreatedAt: formatTime(a.CreatedAt),
	}
}
