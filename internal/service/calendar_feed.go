package service

import (
	"context"
	"fmt"
	"time"

	ics "github.com/arran4/golang-ical"

	"intranet-cesfam/backend/internal/dto"
	"intranet-cesfam/backend/internal/model"
	"intranet-cesfam/backend/internal/policy"
	"intranet-cesfam/backend/internal/validation"
)

const feedProductID = "-//CESFAM//Intranet Calendario//ES"

// Feed writes every visible event as a VEVENT. Timed events are anchored in
// the configured zone; all-day events use DATE values with an exclusive end.
func (s *calendarService) Feed(ctx context.Context, actor policy.Actor, req *dto.EventListRequest) ([]byte, error) {
	events, err := s.query(ctx, actor, req)
	if err != nil {
		return nil, err
	}

	cal := ics.NewCalendar()
	cal.SetMethod(ics.MethodPublish)
	cal.SetProductId(feedProductID)
	cal.SetXWRCalName("Calendario CESFAM")
	cal.SetXWRTimezone(s.clock.loc.String())

	stamp := s.clock.now().UTC()
	for i := range events {
		s.addFeedEvent(cal, &events[i], stamp)
	}
	return []byte(cal.Serialize()), nil
}

func (s *calendarService) addFeedEvent(cal *ics.Calendar, e *model.CalendarEvent, stamp time.Time) {
	vevent := cal.AddEvent(fmt.Sprintf("event-%d@intranet-cesfam", e.ID))
	vevent.SetDtStampTime(stamp)
	if !e.CreatedAt.IsZero() {
		vevent.SetCreatedTime(e.CreatedAt)
	}
	if !e.UpdatedAt.IsZero() {
		vevent.SetModifiedAt(e.UpdatedAt)
	}
	vevent.SetSummary(e.Title)
	if e.Description != "" {
		vevent.SetDescription(e.Description)
	}
	if e.Location != "" {
		vevent.SetLocation(e.Location)
	}
	if e.IsGeneral {
		vevent.SetProperty(ics.ComponentPropertyCategories, "General")
	}

	start, startOK := s.eventInstant(e.Date, e.StartTime)
	if e.AllDay || !startOK {
		vevent.SetAllDayStartAt(e.Date)
		vevent.SetAllDayEndAt(e.Date.AddDate(0, 0, 1))
		return
	}
	vevent.SetStartAt(start)
	if end, ok := s.eventInstant(e.Date, e.EndTime); ok {
		vevent.SetEndAt(end)
	}
}

// eventInstant combines a calendar date with a stored clock value in the configured zone
func (s *calendarService) eventInstant(date time.Time, clockValue *string) (time.Time, bool) {
	if clockValue == nil {
		return time.Time{}, false
	}
	d, ok := validation.ParseClock(*clockValue)
	if !ok {
		return time.Time{}, false
	}
	y, m, day := date.Date()
	return time.Date(y, m, day, 0, 0, 0, 0, s.clock.loc).Add(d), true
}
