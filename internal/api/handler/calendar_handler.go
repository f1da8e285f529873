package handler

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"intranet-cesfam/backend/internal/dto"
	"intranet-cesfam/backend/internal/policy"
	"intranet-cesfam/backend/internal/service"
	"intranet-cesfam/backend/pkg/response"
)

// CalendarHandler calendar event endpoints
type CalendarHandler struct {
	calendarSvc service.CalendarService
}

// NewCalendarHandler creates a CalendarHandler
func NewCalendarHandler(calendarSvc service.CalendarService) *CalendarHandler {
	return &CalendarHandler{calendarSvc: calendarSvc}
}

// ListEvents visible events in an optional [start, end] window
// GET /api/v1/events
func (h *CalendarHandler) ListEvents(c *gin.Context) {
	actor, ok := MustGetActor(c)
	if !ok {
		return
	}
	var req dto.EventListRequest
	if !bindQuery(c, &req) {
		return
	}

	events, err := h.calendarSvc.List(c.Request.Context(), actor, &req)
	if err != nil {
		h.handleCalendarError(c, err)
		return
	}

	response.OK(c, gin.H{"list": events})
}

// FeedEvents the ListEvents window as an iCalendar file
// GET /api/v1/events/calendar.ics
func (h *CalendarHandler) FeedEvents(c *gin.Context) {
	actor, ok := MustGetActor(c)
	if !ok {
		return
	}
	var req dto.EventListRequest
	if !bindQuery(c, &req) {
		return
	}

	feed, err := h.calendarSvc.Feed(c.Request.Context(), actor, &req)
	if err != nil {
		h.handleCalendarError(c, err)
		return
	}

	sendAttachment(c, "calendario.ics")
	c.Data(http.StatusOK, "text/calendar; charset=utf-8", feed)
}

// GetEvent GET /api/v1/events/:id
func (h *CalendarHandler) GetEvent(c *gin.Context) {
	actor, ok := MustGetActor(c)
	if !ok {
		return
	}
	id, ok := parseID(c, "id")
	if !ok {
		return
	}

	event, err := h.calendarSvc.GetByID(c.Request.Context(), actor, id)
	if err != nil {
		h.handleCalendarError(c, err)
		return
	}

	response.OK(c, event)
}

// CreateEvent POST /api/v1/events
func (h *CalendarHandler) CreateEvent(c *gin.Context) {
	actor, ok := MustGetActor(c)
	if !ok {
		return
	}
	var req dto.EventRequest
	if !bindJSON(c, &req) {
		return
	}

	event, err := h.calendarSvc.Create(c.Request.Context(), actor, &req)
	if err != nil {
		h.handleCalendarError(c, err)
		return
	}

	response.Created(c, event)
}

// UpdateEvent full replacement
// PUT /api/v1/events/:id
func (h *CalendarHandler) UpdateEvent(c *gin.Context) {
	actor, ok := MustGetActor(c)
	if !ok {
		return
	}
	id, ok := parseID(c, "id")
	if !ok {
		return
	}
	var req dto.EventRequest
	if !bindJSON(c, &req) {
		return
	}

	event, err := h.calendarSvc.Update(c.Request.Context(), actor, id, &req)
	if err != nil {
		h.handleCalendarError(c, err)
		return
	}

	response.OK(c, event)
}

// DeleteEvent DELETE /api/v1/events/:id
func (h *CalendarHandler) DeleteEvent(c *gin.Context) {
	actor, ok := MustGetActor(c)
	if !ok {
		return
	}
	id, ok := parseID(c, "id")
	if !ok {
		return
	}

	if err := h.calendarSvc.Delete(c.Request.Context(), actor, id); err != nil {
		h.handleCalendarError(c, err)
		return
	}

	response.OK(c, nil)
}

func (h *CalendarHandler) handleCalendarError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, service.ErrEventNotFound):
		response.NotFound(c, 15001, "event not found")
	case errors.Is(err, policy.ErrGeneralEvent):
		response.Forbidden(c, 15002, "only the director may publish general events")
	case errors.Is(err, policy.ErrNotOwner):
		response.Forbidden(c, 15003, "only the owner may change this event")
	default:
		handleError(c, err)
	}
}
