package handler

import (
	"errors"

	"github.com/gin-gonic/gin"

	"intranet-cesfam/backend/internal/dto"
	"intranet-cesfam/backend/internal/service"
	"intranet-cesfam/backend/pkg/response"
)

// MessageHandler direct message endpoints
type MessageHandler struct {
	messageSvc service.MessageService
}

// NewMessageHandler creates a MessageHandler
func NewMessageHandler(messageSvc service.MessageService) *MessageHandler {
	return &MessageHandler{messageSvc: messageSvc}
}

// SendMessage POST /api/v1/messages
func (h *MessageHandler) SendMessage(c *gin.Context) {
	actor, ok := MustGetActor(c)
	if !ok {
		return
	}
	var req dto.SendMessageRequest
	if !bindJSON(c, &req) {
		return
	}

	msg, err := h.messageSvc.Send(c.Request.Context(), actor, &req)
	if err != nil {
		h.handleMessageError(c, err)
		return
	}

	response.Created(c, msg)
}

// Inbox GET /api/v1/messages/inbox?unread=true
func (h *MessageHandler) Inbox(c *gin.Context) {
	actor, ok := MustGetActor(c)
	if !ok {
		return
	}
	var req dto.MessageListRequest
	if !bindQuery(c, &req) {
		return
	}

	items, total, err := h.messageSvc.Inbox(c.Request.Context(), actor, &req)
	if err != nil {
		h.handleMessageError(c, err)
		return
	}

	response.OKPage(c, items, total, req.GetPage(), req.GetPageSize())
}

// Sent GET /api/v1/messages/sent
func (h *MessageHandler) Sent(c *gin.Context) {
	actor, ok := MustGetActor(c)
	if !ok {
		return
	}
	var req dto.MessageListRequest
	if !bindQuery(c, &req) {
		return
	}

	items, total, err := h.messageSvc.Sent(c.Request.Context(), actor, &req)
	if err != nil {
		h.handleMessageError(c, err)
		return
	}

	response.OKPage(c, items, total, req.GetPage(), req.GetPageSize())
}

// UnreadCount GET /api/v1/messages/unread-count
func (h *MessageHandler) UnreadCount(c *gin.Context) {
	actor, ok := MustGetActor(c)
	if !ok {
		return
	}

	n, err := h.messageSvc.UnreadCount(c.Request.Context(), actor)
	if err != nil {
		h.handleMessageError(c, err)
		return
	}

	response.OK(c, dto.UnreadCountResponse{Count: n})
}

// GetMessage GET /api/v1/messages/:id
func (h *MessageHandler) GetMessage(c *gin.Context) {
	actor, ok := MustGetActor(c)
	if !ok {
		return
	}
	id, ok := parseID(c, "id")
	if !ok {
		return
	}

	msg, err := h.messageSvc.GetByID(c.Request.Context(), actor, id)
	if err != nil {
		h.handleMessageError(c, err)
		return
	}

	response.OK(c, msg)
}

// MarkRead POST /api/v1/messages/:id/read
func (h *MessageHandler) MarkRead(c *gin.Context) {
	actor, ok := MustGetActor(c)
	if !ok {
		return
	}
	id, ok := parseID(c, "id")
	if !ok {
		return
	}

	if err := h.messageSvc.MarkRead(c.Request.Context(), actor, id); err != nil {
		h.handleMessageError(c, err)
		return
	}

	response.OK(c, nil)
}

func (h *MessageHandler) handleMessageError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, service.ErrMessageNotFound):
		response.NotFound(c, 20001, "message not found")
	case errors.Is(err, service.ErrMessageToSelf):
		response.BadRequest(c, 20002, "you cannot message yourself")
	default:
		handleError(c, err)
	}
}
