package handler

import (
	"errors"

	"github.com/gin-gonic/gin"

	"intranet-cesfam/backend/internal/dto"
	"intranet-cesfam/backend/internal/policy"
	"intranet-cesfam/backend/internal/service"
	"intranet-cesfam/backend/pkg/response"
)

// RequestHandler leave/permission request endpoints
type RequestHandler struct {
	requestSvc service.RequestService
}

// NewRequestHandler creates a RequestHandler
func NewRequestHandler(requestSvc service.RequestService) *RequestHandler {
	return &RequestHandler{requestSvc: requestSvc}
}

// ListRequests requests visible to the caller; awaiting_me=true narrows to the review queue
// GET /api/v1/requests
func (h *RequestHandler) ListRequests(c *gin.Context) {
	actor, ok := MustGetActor(c)
	if !ok {
		return
	}
	var req dto.RequestListRequest
	if !bindQuery(c, &req) {
		return
	}

	items, total, err := h.requestSvc.List(c.Request.Context(), actor, &req)
	if err != nil {
		h.handleRequestError(c, err)
		return
	}

	response.OKPage(c, items, total, req.GetPage(), req.GetPageSize())
}

// GetRequest GET /api/v1/requests/:id
func (h *RequestHandler) GetRequest(c *gin.Context) {
	actor, ok := MustGetActor(c)
	if !ok {
		return
	}
	id, ok := parseID(c, "id")
	if !ok {
		return
	}

	result, err := h.requestSvc.GetByID(c.Request.Context(), actor, id)
	if err != nil {
		h.handleRequestError(c, err)
		return
	}

	response.OK(c, result)
}

// CreateRequest POST /api/v1/requests
func (h *RequestHandler) CreateRequest(c *gin.Context) {
	actor, ok := MustGetActor(c)
	if !ok {
		return
	}
	var req dto.CreateRequestRequest
	if !bindJSON(c, &req) {
		return
	}

	result, err := h.requestSvc.Create(c.Request.Context(), actor, &req)
	if err != nil {
		h.handleRequestError(c, err)
		return
	}

	response.Created(c, result)
}

// UpdateRequest requester edit while pending
// PUT /api/v1/requests/:id
func (h *RequestHandler) UpdateRequest(c *gin.Context) {
	actor, ok := MustGetActor(c)
	if !ok {
		return
	}
	id, ok := parseID(c, "id")
	if !ok {
		return
	}
	var req dto.UpdateRequestRequest
	if !bindJSON(c, &req) {
		return
	}

	result, err := h.requestSvc.Update(c.Request.Context(), actor, id, &req)
	if err != nil {
		h.handleRequestError(c, err)
		return
	}

	response.OK(c, result)
}

// DeleteRequest requester withdrawal while pending
// DELETE /api/v1/requests/:id
func (h *RequestHandler) DeleteRequest(c *gin.Context) {
	actor, ok := MustGetActor(c)
	if !ok {
		return
	}
	id, ok := parseID(c, "id")
	if !ok {
		return
	}

	if err := h.requestSvc.Delete(c.Request.Context(), actor, id); err != nil {
		h.handleRequestError(c, err)
		return
	}

	response.OK(c, nil)
}

// Decide approve or reject at one stage (manager | director)
// POST /api/v1/requests/:id/decisions/:stage
func (h *RequestHandler) Decide(c *gin.Context) {
	actor, ok := MustGetActor(c)
	if !ok {
		return
	}
	id, ok := parseID(c, "id")
	if !ok {
		return
	}
	var req dto.DecisionRequest
	if !bindJSON(c, &req) {
		return
	}

	result, err := h.requestSvc.Decide(c.Request.Context(), actor, id, policy.Stage(c.Param("stage")), *req.Approve)
	if err != nil {
		h.handleRequestError(c, err)
		return
	}

	response.OK(c, result)
}

func (h *RequestHandler) handleRequestError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, service.ErrRequestNotFound):
		response.NotFound(c, 14001, "request not found")
	case errors.Is(err, policy.ErrAlreadyReviewed):
		response.Conflict(c, 14002, "request already reviewed at this stage")
	case errors.Is(err, policy.ErrNotPending):
		response.Conflict(c, 14003, "request is no longer pending")
	case errors.Is(err, policy.ErrAwaitingManager):
		response.Conflict(c, 14004, "request has not been approved by the department head")
	case errors.Is(err, policy.ErrNotRequester):
		response.Forbidden(c, 14005, "only the requester may change this request")
	case errors.Is(err, policy.ErrOutsideDepartment):
		response.Forbidden(c, 14006, "request belongs to another department")
	case errors.Is(err, policy.ErrCannotReview):
		response.Forbidden(c, 14007, "role cannot review at this stage")
	default:
		handleError(c, err)
	}
}
