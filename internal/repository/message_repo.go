package repository

import (
	"context"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"intranet-cesfam/backend/internal/model"
)

// MessageRepository direct message data access
type MessageRepository interface {
	Create(ctx context.Context, msg *model.Message) error
	GetByID(ctx context.Context, id int64) (*model.Message, error)
	ListInbox(ctx context.Context, recipientID int64, unreadOnly bool, page Page) ([]model.Message, int64, error)
	ListSent(ctx context.Context, senderID int64, page Page) ([]model.Message, int64, error)
	MarkRead(ctx context.Context, id int64) error
	CountUnread(ctx context.Context, recipientID int64) (int64, error)
}

type messageRepo struct {
	db *gorm.DB
}

// NewMessageRepo creates a MessageRepository
func NewMessageRepo(db *gorm.DB) MessageRepository {
	return &messageRepo{db: db}
}

func (r *messageRepo) Create(ctx context.Context, msg *model.Message) error {
	return r.db.WithContext(ctx).Omit(clause.Associations).Create(msg).Error
}

func (r *messageRepo) GetByID(ctx context.Context, id int64) (*model.Message, error) {
	var msg model.Message
	err := r.db.WithContext(ctx).
		Preload("Sender").
		Preload("Recipient").
		Where("id = ?", id).
		First(&msg).Error
	if err != nil {
		return nil, err
	}
	return &msg, nil
}

func (r *messageRepo) ListInbox(ctx context.Context, recipientID int64, unreadOnly bool, page Page) ([]model.Message, int64, error) {
	db := r.db.WithContext(ctx).Model(&model.Message{}).Where("recipient_id = ?", recipientID)
	if unreadOnly {
		db = db.Where("is_read = FALSE")
	}
	return r.list(db.Preload("Sender"), page)
}

func (r *messageRepo) ListSent(ctx context.Context, senderID int64, page Page) ([]model.Message, int64, error) {
	db := r.db.WithContext(ctx).Model(&model.Message{}).Where("sender_id = ?", senderID)
	return r.list(db.Preload("Recipient"), page)
}

func (r *messageRepo) list(db *gorm.DB, page Page) ([]model.Message, int64, error) {
	var msgs []model.Message
	var total int64
	if err := db.Count(&total).Error; err != nil {
		return nil, 0, err
	}
	if err := page.apply(db).Order("sent_at DESC").Find(&msgs).Error; err != nil {
		return nil, 0, err
	}
	return msgs, total, nil
}

func (r *messageRepo) MarkRead(ctx context.Context, id int64) error {
	return r.db.WithContext(ctx).Model(&model.Message{}).
		Where("id = ?", id).
		Update("is_read", true).Error
}

func (r *messageRepo) CountUnread(ctx context.Context, recipientID int64) (int64, error) {
	var n int64
	err := r.db.WithContext(ctx).Model(&model.Message{}).
		Where("recipient_id = ? AND is_read = FALSE", recipientID).
		Count(&n).Error
	return n, err
}
