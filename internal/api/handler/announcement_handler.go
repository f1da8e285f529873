package handler

import (
	"errors"

	"github.com/gin-gonic/gin"

	"intranet-cesfam/backend/internal/dto"
	"intranet-cesfam/backend/internal/policy"
	"intranet-cesfam/backend/internal/service"
	"intranet-cesfam/backend/pkg/response"
)

// AnnouncementHandler board endpoints
type AnnouncementHandler struct {
	announcementSvc service.AnnouncementService
}

// NewAnnouncementHandler creates an AnnouncementHandler
func NewAnnouncementHandler(announcementSvc service.AnnouncementService) *AnnouncementHandler {
	return &AnnouncementHandler{announcementSvc: announcementSvc}
}

// ListAnnouncements GET /api/v1/announcements
func (h *AnnouncementHandler) ListAnnouncements(c *gin.Context) {
	var req dto.PaginationRequest
	if !bindQuery(c, &req) {
		return
	}

	items, total, err := h.announcementSvc.List(c.Request.Context(), &req)
	if err != nil {
		h.handleAnnouncementError(c, err)
		return
	}

	response.OKPage(c, items, total, req.GetPage(), req.GetPageSize())
}

// CreateAnnouncement POST /api/v1/announcements
func (h *AnnouncementHandler) CreateAnnouncement(c *gin.Context) {
	actor, ok := MustGetActor(c)
	if !ok {
		return
	}
	var req dto.CreateAnnouncementRequest
	if !bindJSON(c, &req) {
		return
	}

	item, err := h.announcementSvc.Create(c.Request.Context(), actor, &req)
	if err != nil {
		h.handleAnnouncementError(c, err)
		return
	}

	response.Created(c, item)
}

// DeleteAnnouncement DELETE /api/v1/announcements/:id
func (h *AnnouncementHandler) DeleteAnnouncement(c *gin.Context) {
	actor, ok := MustGetActor(c)
	if !ok {
		return
	}
	id, ok := parseID(c, "id")
	if !ok {
		return
	}

	if err := h.announcementSvc.Delete(c.Request.Context(), actor, id); err != nil {
		h.handleAnnouncementError(c, err)
		return
	}

	response.OK(c, nil)
}

func (h *AnnouncementHandler) handleAnnouncementError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, service.ErrAnnouncementNotFound):
		response.NotFound(c, 19001, "announcement not found")
	case errors.Is(err, policy.ErrCannotAnnounce):
		response.Forbidden(c, 19002, "your role cannot publish announcements")
	case errors.Is(err, policy.ErrNotOwner):
		response.Forbidden(c, 19003, "only the author may remove this announcement")
	default:
		handleError(c, err)
	}
}
