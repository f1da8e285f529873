package handler

import (
	"github.com/gin-gonic/gin"

	"intranet-cesfam/backend/internal/dto"
	"intranet-cesfam/backend/internal/service"
	"intranet-cesfam/backend/pkg/response"
)

// ReferenceHandler read-only reference data and the login audit
type ReferenceHandler struct {
	refSvc   service.ReferenceService
	loginSvc service.LoginRecordService
}

// NewReferenceHandler creates a ReferenceHandler
func NewReferenceHandler(refSvc service.ReferenceService, loginSvc service.LoginRecordService) *ReferenceHandler {
	return &ReferenceHandler{refSvc: refSvc, loginSvc: loginSvc}
}

// ListRoles GET /api/v1/reference/roles
func (h *ReferenceHandler) ListRoles(c *gin.Context) {
	response.OK(c, gin.H{"list": h.refSvc.Roles()})
}

// ListRequestStatuses GET /api/v1/reference/request-statuses
func (h *ReferenceHandler) ListRequestStatuses(c *gin.Context) {
	response.OK(c, gin.H{"list": h.refSvc.RequestStatuses()})
}

// ListPositions GET /api/v1/reference/positions
func (h *ReferenceHandler) ListPositions(c *gin.Context) {
	items, err := h.refSvc.Positions(c.Request.Context())
	if err != nil {
		handleError(c, err)
		return
	}
	response.OK(c, gin.H{"list": items})
}

// ListRequestTypes GET /api/v1/reference/request-types
func (h *ReferenceHandler) ListRequestTypes(c *gin.Context) {
	items, err := h.refSvc.RequestTypes(c.Request.Context())
	if err != nil {
		handleError(c, err)
		return
	}
	response.OK(c, gin.H{"list": items})
}

// ListEventTypes GET /api/v1/reference/event-types
func (h *ReferenceHandler) ListEventTypes(c *gin.Context) {
	items, err := h.refSvc.EventTypes(c.Request.Context())
	if err != nil {
		handleError(c, err)
		return
	}
	response.OK(c, gin.H{"list": items})
}

// ListLoginRecords recent logins (admin)
// GET /api/v1/login-records
func (h *ReferenceHandler) ListLoginRecords(c *gin.Context) {
	actor, ok := MustGetActor(c)
	if !ok {
		return
	}
	var req dto.LoginRecordListRequest
	if !bindQuery(c, &req) {
		return
	}

	items, total, err := h.loginSvc.List(c.Request.Context(), actor, &req)
	if err != nil {
		handleError(c, err)
		return
	}

	response.OKPage(c, items, total, req.GetPage(), req.GetPageSize())
}
