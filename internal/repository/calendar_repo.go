package repository

import (
	"context"
	"time"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"intranet-cesfam/backend/internal/model"
	"intranet-cesfam/backend/internal/policy"
)

// CalendarListFilter event listing criteria; From/To bound the event date inclusively
type CalendarListFilter struct {
	Scope policy.Scope
	From  *time.Time
	To    *time.Time
}

// CalendarRepository calendar event data access
type CalendarRepository interface {
	Create(ctx context.Context, event *model.CalendarEvent) error
	GetByID(ctx context.Context, id int64) (*model.CalendarEvent, error)
	Update(ctx context.Context, event *model.CalendarEvent) error
	Delete(ctx context.Context, id int64) error
	List(ctx context.Context, filter CalendarListFilter) ([]model.CalendarEvent, error)
}

type calendarRepo struct {
	db *gorm.DB
}

// NewCalendarRepo creates a CalendarRepository
func NewCalendarRepo(db *gorm.DB) CalendarRepository {
	return &calendarRepo{db: db}
}

func (r *calendarRepo) Create(ctx context.Context, event *model.CalendarEvent) error {
	return r.db.WithContext(ctx).Omit(clause.Associations).Create(event).Error
}

func (r *calendarRepo) GetByID(ctx context.Context, id int64) (*model.CalendarEvent, error) {
	var event model.CalendarEvent
	err := r.db.WithContext(ctx).
		Preload("Owner").
		Preload("Type").
		Where("id = ?", id).
		First(&event).Error
	if err != nil {
		return nil, err
	}
	return &event, nil
}

func (r *calendarRepo) Update(ctx context.Context, event *model.CalendarEvent) error {
	return r.db.WithContext(ctx).Omit(clause.Associations).Save(event).Error
}

func (r *calendarRepo) Delete(ctx context.Context, id int64) error {
	return r.db.WithContext(ctx).Where("id = ?", id).Delete(&model.CalendarEvent{}).Error
}

func (r *calendarRepo) List(ctx context.Context, filter CalendarListFilter) ([]model.CalendarEvent, error) {
	var events []model.CalendarEvent

	db := applyScope(r.db.WithContext(ctx).Model(&model.CalendarEvent{}), filter.Scope, "owner_id", "is_general")
	if filter.From != nil {
		db = db.Where("date >= ?", *filter.From)
	}
	if filter.To != nil {
		db = db.Where("date <= ?", *filter.To)
	}

	err := db.Preload("Owner").Preload("Type").
		Order("date ASC").
		Order("start_time ASC NULLS FIRST").
		Find(&events).Error
	return events, err
}
