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

var ErrEventNotFound = pkgerrors.New(pkgerrors.ErrNotFound, "event not found")

// CalendarService shared calendar: general events plus each user's own
type CalendarService interface {
	Create(ctx context.Context, actor policy.Actor, req *dto.EventRequest) (*dto.EventResponse, error)
	GetByID(ctx context.Context, actor policy.Actor, id int64) (*dto.EventResponse, error)
	// List events visible to actor, optionally within [start, end].
	List(ctx context.Context, actor policy.Actor, req *dto.EventListRequest) ([]dto.EventResponse, error)
	Update(ctx context.Context, actor policy.Actor, id int64, req *dto.EventRequest) (*dto.EventResponse, error)
	Delete(ctx context.Context, actor policy.Actor, id int64) error
	// Feed renders the same events as List as an iCalendar document.
	Feed(ctx context.Context, actor policy.Actor, req *dto.EventListRequest) ([]byte, error)
}

type calendarService struct {
	repo   *repository.Repository
	clock  clock
	logger *zap.Logger
}

// NewCalendarService creates a CalendarService; loc is the zone event times are written in.
func NewCalendarService(repo *repository.Repository, loc *time.Location, logger *zap.Logger) CalendarService {
	return &calendarService{repo: repo, clock: newClock(loc), logger: logger}
}

// ────────────────────── Create ──────────────────────

func (s *calendarService) Create(ctx context.Context, actor policy.Actor, req *dto.EventRequest) (*dto.EventResponse, error) {
	if !actor.Valid() {
		return nil, policy.ErrNoActor
	}
	if req.IsGeneral {
		if err := policy.CanPublishGeneral(actor); err != nil {
			return nil, err
		}
	}

	event := &model.CalendarEvent{OwnerID: actor.UserID}
	if err := s.apply(ctx, event, req); err != nil {
		return nil, err
	}

	if err := s.repo.Calendar.Create(ctx, event); err != nil {
		s.logger.Error("create event failed", zap.Int64("owner_id", actor.UserID), zap.Error(err))
		return nil, err
	}
	return s.GetByID(ctx, actor, event.ID)
}

// ────────────────────── GetByID ──────────────────────

func (s *calendarService) GetByID(ctx context.Context, actor policy.Actor, id int64) (*dto.EventResponse, error) {
	event, err := s.load(ctx, actor, id)
	if err != nil {
		return nil, err
	}
	return toEventResponse(event, actor), nil
}

// ────────────────────── List ──────────────────────

func (s *calendarService) List(ctx context.Context, actor policy.Actor, req *dto.EventListRequest) ([]dto.EventResponse, error) {
	events, err := s.query(ctx, actor, req)
	if err != nil {
		return nil, err
	}

	result := make([]dto.EventResponse, 0, len(events))
	for i := range events {
		result = append(result, *toEventResponse(&events[i], actor))
	}
	return result, nil
}

// query loads the events actor may see within the optional window
func (s *calendarService) query(ctx context.Context, actor policy.Actor, req *dto.EventListRequest) ([]model.CalendarEvent, error) {
	if !actor.Valid() {
		return nil, policy.ErrNoActor
	}

	filter := repository.CalendarListFilter{Scope: policy.ScopeFor(policy.KindCalendarEvent, actor)}
	var errs validation.Errors
	if req.Start != "" {
		from := validation.ParseDate(&errs, "start", req.Start)
		filter.From = &from
	}
	if req.End != "" {
		to := validation.ParseDate(&errs, "end", req.End)
		filter.To = &to
	}
	if filter.From != nil && filter.To != nil {
		validation.CheckDateRange(&errs, "start", "end", *filter.From, *filter.To)
	}
	if err := errs.Err(); err != nil {
		return nil, err
	}

	events, err := s.repo.Calendar.List(ctx, filter)
	if err != nil {
		s.logger.Error("list events failed", zap.Error(err))
		return nil, err
	}
	return events, nil
}

// ────────────────────── Update ──────────────────────

func (s *calendarService) Update(ctx context.Context, actor policy.Actor, id int64, req *dto.EventRequest) (*dto.EventResponse, error) {
	event, err := s.load(ctx, actor, id)
	if err != nil {
		return nil, err
	}
	if err := policy.CanMutate(policy.KindCalendarEvent, actor, event.OwnerID, 0); err != nil {
		return nil, err
	}
	// flagging an event general is the director's call, clearing it too
	if req.IsGeneral != event.IsGeneral {
		if err := policy.CanPublishGeneral(actor); err != nil {
			return nil, err
		}
	}

	if err := s.apply(ctx, event, req); err != nil {
		return nil, err
	}

	event.Owner, event.Type = nil, nil
	if err := s.repo.Calendar.Update(ctx, event); err != nil {
		s.logger.Error("update event failed", zap.Int64("id", id), zap.Error(err))
		return nil, err
	}
	return s.GetByID(ctx, actor, id)
}

// ────────────────────── Delete ──────────────────────

func (s *calendarService) Delete(ctx context.Context, actor policy.Actor, id int64) error {
	event, err := s.load(ctx, actor, id)
	if err != nil {
		return err
	}
	if err := policy.CanMutate(policy.KindCalendarEvent, actor, event.OwnerID, 0); err != nil {
		return err
	}

	if err := s.repo.Calendar.Delete(ctx, id); err != nil {
		s.logger.Error("delete event failed", zap.Int64("id", id), zap.Error(err))
		return err
	}
	return nil
}

// ── helpers ──

// apply validates req and copies it onto event
func (s *calendarService) apply(ctx context.Context, event *model.CalendarEvent, req *dto.EventRequest) error {
	var errs validation.Errors

	title := strings.TrimSpace(req.Title)
	if title == "" {
		errs.Add("title", "is required")
	}
	date := validation.ParseDate(&errs, "date", req.Date)
	start, end := validation.CheckEventTimes(&errs, req.AllDay, req.StartTime, req.EndTime)

	if req.TypeID != nil {
		if _, err := s.repo.Reference.GetEventType(ctx, *req.TypeID); err != nil {
			if !errors.Is(err, gorm.ErrRecordNotFound) {
				return err
			}
			errs.Add("event_type_id", "event type not found")
		}
	}
	if err := errs.Err(); err != nil {
		return err
	}

	event.Title = title
	event.Description = strings.TrimSpace(req.Description)
	event.Date = date
	event.StartTime, event.EndTime = start, end
	event.AllDay = req.AllDay
	event.IsGeneral = req.IsGeneral
	event.Location = strings.TrimSpace(req.Location)
	event.TypeID = req.TypeID
	event.Color = req.Color
	if event.Color == "" {
		event.Color = model.ColorPersonal
		if event.IsGeneral {
			event.Color = model.ColorGeneral
		}
	}
	return nil
}

// load fetches id if actor may see it; invisible events are not found.
func (s *calendarService) load(ctx context.Context, actor policy.Actor, id int64) (*model.CalendarEvent, error) {
	if !actor.Valid() {
		return nil, policy.ErrNoActor
	}
	event, err := s.repo.Calendar.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrEventNotFound
		}
		s.logger.Error("load event failed", zap.Int64("id", id), zap.Error(err))
		return nil, err
	}
	if !policy.ScopeFor(policy.KindCalendarEvent, actor).Allows(event.OwnerID, 0, event.IsGeneral) {
		return nil, ErrEventNotFound
	}
	return event, nil
}

func toEventResponse(e *model.CalendarEvent, actor policy.Actor) *dto.EventResponse {
	resp := &dto.EventResponse{
		ID:          e.ID,
		Title:       e.Title,
		Description: e.Description,
		Date:        formatDate(e.Date),
		StartTime:   clockHHMM(e.StartTime),
		EndTime:     clockHHMM(e.EndTime),
		AllDay:      e.AllDay,
		IsGeneral:   e.IsGeneral,
		Owner:       toUserBrief(e.Owner),
		Color:       e.Color,
		Location:    e.Location,
		CanEdit:     policy.CanMutate(policy.KindCalendarEvent, actor, e.OwnerID, 0) == nil,
		CreatedAt:   formatTime(e.CreatedAt),
	}
	if e.Type != nil {
		resp.Type = &dto.EventTypeResponse{ID: e.Type.ID, Name: e.Type.Name}
	}
	return resp
}

// clockHHMM renders a stored "HH:MM:SS" as "HH:MM"
func clockHHMM(s *string) *string {
	if s == nil {
		return nil
	}
	d, ok := validation.ParseClock(*s)
	if !ok {
		return s
	}
	out := time.Time{}.Add(d).Format("15:04")
	return &out
}
