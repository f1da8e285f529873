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

var (
	ErrMessageNotFound = pkgerrors.New(pkgerrors.ErrNotFound, "message not found")
	ErrMessageToSelf   = pkgerrors.New(pkgerrors.ErrValidation, "you cannot message yourself")
)

// MessageService direct messages between staff
type MessageService interface {
	Send(ctx context.Context, actor policy.Actor, req *dto.SendMessageRequest) (*dto.MessageResponse, error)
	Inbox(ctx context.Context, actor policy.Actor, req *dto.MessageListRequest) ([]dto.MessageResponse, int64, error)
	Sent(ctx context.Context, actor policy.Actor, req *dto.MessageListRequest) ([]dto.MessageResponse, int64, error)
	// GetByID is visible to sender and recipient only.
	GetByID(ctx context.Context, actor policy.Actor, id int64) (*dto.MessageResponse, error)
	MarkRead(ctx context.Context, actor policy.Actor, id int64) error
	UnreadCount(ctx context.Context, actor policy.Actor) (int64, error)
}

type messageService struct {
	repo   *repository.Repository
	logger *zap.Logger
}

// NewMessageService creates a MessageService
func NewMessageService(repo *repository.Repository, logger *zap.Logger) MessageService {
	return &messageService{repo: repo, logger: logger}
}

func (s *messageService) Send(ctx context.Context, actor policy.Actor, req *dto.SendMessageRequest) (*dto.MessageResponse, error) {
	if !actor.Valid() {
		return nil, policy.ErrNoActor
	}
	if req.RecipientID == actor.UserID {
		return nil, ErrMessageToSelf
	}
	body := strings.TrimSpace(req.Body)
	if body == "" {
		return nil, validation.Field("body", "is required")
	}
	if _, err := s.repo.User.GetByID(ctx, req.RecipientID); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, validation.Field("recipient_id", "user not found")
		}
		return nil, err
	}

	msg := &model.Message{
		SenderID:    actor.UserID,
		RecipientID: req.RecipientID,
		Body:        body,
		SentAt:      time.Now(),
	}
	if err := s.repo.Message.Create(ctx, msg); err != nil {
		s.logger.Error("send message failed", zap.Int64("sender_id", actor.UserID), zap.Error(err))
		return nil, err
	}
	return s.GetByID(ctx, actor, msg.ID)
}

func (s *messageService) Inbox(ctx context.Context, actor policy.Actor, req *dto.MessageListRequest) ([]dto.MessageResponse, int64, error) {
	if !actor.Valid() {
		return nil, 0, policy.ErrNoActor
	}
	msgs, total, err := s.repo.Message.ListInbox(ctx, actor.UserID, req.UnreadOnly, page(&req.PaginationRequest))
	if err != nil {
		s.logger.Error("list inbox failed", zap.Int64("user_id", actor.UserID), zap.Error(err))
		return nil, 0, err
	}
	return toMessageResponses(msgs), total, nil
}

func (s *messageService) Sent(ctx context.Context, actor policy.Actor, req *dto.MessageListRequest) ([]dto.MessageResponse, int64, error) {
	if !actor.Valid() {
		return nil, 0, policy.ErrNoActor
	}
	msgs, total, err := s.repo.Message.ListSent(ctx, actor.UserID, page(&req.PaginationRequest))
	if err != nil {
		s.logger.Error("list sent messages failed", zap.Int64("user_id", actor.UserID), zap.Error(err))
		return nil, 0, err
	}
	return toMessageResponses(msgs), total, nil
}

func (s *messageService) GetByID(ctx context.Context, actor policy.Actor, id int64) (*dto.MessageResponse, error) {
	msg, err := s.load(ctx, actor, id)
	if err != nil {
		return nil, err
	}
	return toMessageResponse(msg), nil
}

func (s *messageService) MarkRead(ctx context.Context, actor policy.Actor, id int64) error {
	msg, err := s.load(ctx, actor, id)
	if err != nil {
		return err
	}
	if msg.RecipientID != actor.UserID {
		return policy.ErrNotOwner
	}
	if msg.IsRead {
		return nil
	}
	if err := s.repo.Message.MarkRead(ctx, id); err != nil {
		s.logger.Error("mark message read failed", zap.Int64("id", id), zap.Error(err))
		return err
	}
	return nil
}

func (s *messageService) UnreadCount(ctx context.Context, actor policy.Actor) (int64, error) {
	if !actor.Valid() {
		return 0, policy.ErrNoActor
	}
	return s.repo.Message.CountUnread(ctx, actor.UserID)
}

// ── helpers ──

func (s *messageService) load(ctx context.Context, actor policy.Actor, id int64) (*model.Message, error) {
	if !actor.Valid() {
		return nil, policy.ErrNoActor
	}
	msg, err := s.repo.Message.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrMessageNotFound
		}
		return nil, err
	}
	if msg.SenderID != actor.UserID && msg.RecipientID != actor.UserID {
		return nil, ErrMessageNotFound
	}
	return msg, nil
}

func toMessageResponse(m *model.Message) *dto.MessageResponse {
	return &dto.MessageResponse{
		ID:        m.ID,
		Sender:    toUserBrief(m.Sender),
		Recipient: toUserBrief(m.Recipient),
		Body:      m.Body,
		IsRead:    m.IsRead,
		SentAt:    formatTime(m.SentAt),
	}
}

func toMessageResponses(msgs []model.Message) []dto.MessageResponse {
	out := make([]dto.MessageResponse, 0, len(msgs))
	for i := range msgs {
		out = append(out, *toMessageResponse(&msgs[i]))
	}
	return out
}
