package handler

import (
	"errors"
	"mime"
	"net/http"
	"path/filepath"

	"github.com/gin-gonic/gin"

	"intranet-cesfam/backend/internal/dto"
	"intranet-cesfam/backend/internal/policy"
	"intranet-cesfam/backend/internal/service"
	"intranet-cesfam/backend/pkg/response"
)

// LeaveHandler medical leave endpoints
type LeaveHandler struct {
	leaveSvc service.LeaveService
}

// NewLeaveHandler creates a LeaveHandler
func NewLeaveHandler(leaveSvc service.LeaveService) *LeaveHandler {
	return &LeaveHandler{leaveSvc: leaveSvc}
}

// ListLeaves GET /api/v1/leaves
func (h *LeaveHandler) ListLeaves(c *gin.Context) {
	actor, ok := MustGetActor(c)
	if !ok {
		return
	}
	var req dto.LeaveListRequest
	if !bindQuery(c, &req) {
		return
	}

	items, total, err := h.leaveSvc.List(c.Request.Context(), actor, &req)
	if err != nil {
		h.handleLeaveError(c, err)
		return
	}

	response.OKPage(c, items, total, req.GetPage(), req.GetPageSize())
}

// GetLeave GET /api/v1/leaves/:id
func (h *LeaveHandler) GetLeave(c *gin.Context) {
	actor, ok := MustGetActor(c)
	if !ok {
		return
	}
	id, ok := parseID(c, "id")
	if !ok {
		return
	}

	rec, err := h.leaveSvc.GetByID(c.Request.Context(), actor, id)
	if err != nil {
		h.handleLeaveError(c, err)
		return
	}

	response.OK(c, rec)
}

// CreateLeave multipart: start_date, end_date, owner_id?, attachment?
// POST /api/v1/leaves
func (h *LeaveHandler) CreateLeave(c *gin.Context) {
	actor, ok := MustGetActor(c)
	if !ok {
		return
	}
	var req dto.LeaveRequest
	if !bindForm(c, &req) {
		return
	}
	file, closeFile, ok := formFile(c, "attachment")
	if !ok {
		return
	}
	defer closeFile()

	rec, err := h.leaveSvc.Create(c.Request.Context(), actor, &req, file)
	if err != nil {
		h.handleLeaveError(c, err)
		return
	}

	response.Created(c, rec)
}

// UpdateLeave multipart; a new attachment replaces the old one
// PUT /api/v1/leaves/:id
func (h *LeaveHandler) UpdateLeave(c *gin.Context) {
	actor, ok := MustGetActor(c)
	if !ok {
		return
	}
	id, ok := parseID(c, "id")
	if !ok {
		return
	}
	var req dto.LeaveRequest
	if !bindForm(c, &req) {
		return
	}
	file, closeFile, ok := formFile(c, "attachment")
	if !ok {
		return
	}
	defer closeFile()

	rec, err := h.leaveSvc.Update(c.Request.Context(), actor, id, &req, file)
	if err != nil {
		h.handleLeaveError(c, err)
		return
	}

	response.OK(c, rec)
}

// DeleteLeave DELETE /api/v1/leaves/:id
func (h *LeaveHandler) DeleteLeave(c *gin.Context) {
	actor, ok := MustGetActor(c)
	if !ok {
		return
	}
	id, ok := parseID(c, "id")
	if !ok {
		return
	}

	if err := h.leaveSvc.Delete(c.Request.Context(), actor, id); err != nil {
		h.handleLeaveError(c, err)
		return
	}

	response.OK(c, nil)
}

// DownloadAttachment GET /api/v1/leaves/:id/attachment
func (h *LeaveHandler) DownloadAttachment(c *gin.Context) {
	actor, ok := MustGetActor(c)
	if !ok {
		return
	}
	id, ok := parseID(c, "id")
	if !ok {
		return
	}

	rc, name, err := h.leaveSvc.OpenAttachment(c.Request.Context(), actor, id)
	if err != nil {
		h.handleLeaveError(c, err)
		return
	}
	defer rc.Close()

	contentType := mime.TypeByExtension(filepath.Ext(name))
	if contentType == "" {
		contentType = "application/octet-stream"
	}
	sendAttachment(c, name)
	c.DataFromReader(http.StatusOK, -1, contentType, rc, nil)
}

func (h *LeaveHandler) handleLeaveError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, service.ErrLeaveNotFound):
		response.NotFound(c, 16001, "leave record not found")
	case errors.Is(err, service.ErrAttachmentNotFound):
		response.NotFound(c, 16002, "leave record has no attachment")
	case errors.Is(err, policy.ErrNotOwner):
		response.Forbidden(c, 16003, "you cannot change this leave record")
	default:
		handleError(c, err)
	}
}
