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

// DocumentHandler shared document endpoints
type DocumentHandler struct {
	documentSvc service.DocumentService
}

// NewDocumentHandler creates a DocumentHandler
func NewDocumentHandler(documentSvc service.DocumentService) *DocumentHandler {
	return &DocumentHandler{documentSvc: documentSvc}
}

// ListDocuments newest first, optional keyword on the name
// GET /api/v1/documents
func (h *DocumentHandler) ListDocuments(c *gin.Context) {
	var req dto.DocumentListRequest
	if !bindQuery(c, &req) {
		return
	}

	docs, total, err := h.documentSvc.List(c.Request.Context(), &req)
	if err != nil {
		h.handleDocumentError(c, err)
		return
	}

	response.OKPage(c, docs, total, req.GetPage(), req.GetPageSize())
}

// GetDocument metadata
// GET /api/v1/documents/:id
func (h *DocumentHandler) GetDocument(c *gin.Context) {
	id, ok := parseID(c, "id")
	if !ok {
		return
	}

	doc, err := h.documentSvc.GetByID(c.Request.Context(), id)
	if err != nil {
		h.handleDocumentError(c, err)
		return
	}

	response.OK(c, doc)
}

// UploadDocument multipart: name, description?, file
// POST /api/v1/documents
func (h *DocumentHandler) UploadDocument(c *gin.Context) {
	actor, ok := MustGetActor(c)
	if !ok {
		return
	}
	var req dto.UploadDocumentRequest
	if !bindForm(c, &req) {
		return
	}
	file, closeFile, ok := formFile(c, "file")
	if !ok {
		return
	}
	defer closeFile()

	doc, err := h.documentSvc.Upload(c.Request.Context(), actor, &req, file)
	if err != nil {
		h.handleDocumentError(c, err)
		return
	}

	response.Created(c, doc)
}

// DownloadDocument streams the stored file
// GET /api/v1/documents/:id/download
func (h *DocumentHandler) DownloadDocument(c *gin.Context) {
	id, ok := parseID(c, "id")
	if !ok {
		return
	}

	rc, doc, err := h.documentSvc.Open(c.Request.Context(), id)
	if err != nil {
		h.handleDocumentError(c, err)
		return
	}
	defer rc.Close()

	sendAttachment(c, doc.FileName)
	c.DataFromReader(http.StatusOK, doc.FileSize, doc.MimeType, rc, nil)
}

// UpdateDocument metadata only
// PUT /api/v1/documents/:id
func (h *DocumentHandler) UpdateDocument(c *gin.Context) {
	actor, ok := MustGetActor(c)
	if !ok {
		return
	}
	id, ok := parseID(c, "id")
	if !ok {
		return
	}
	var req dto.UpdateDocumentRequest
	if !bindJSON(c, &req) {
		return
	}

	doc, err := h.documentSvc.Update(c.Request.Context(), actor, id, &req)
	if err != nil {
		h.handleDocumentError(c, err)
		return
	}

	response.OK(c, doc)
}

// DeleteDocument DELETE /api/v1/documents/:id
func (h *DocumentHandler) DeleteDocument(c *gin.Context) {
	actor, ok := MustGetActor(c)
	if !ok {
		return
	}
	id, ok := parseID(c, "id")
	if !ok {
		return
	}

	if err := h.documentSvc.Delete(c.Request.Context(), actor, id); err != nil {
		h.handleDocumentError(c, err)
		return
	}

	response.OK(c, nil)
}

func (h *DocumentHandler) handleDocumentError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, service.ErrDocumentNotFound):
		response.NotFound(c, 17001, "document not found")
	case errors.Is(err, policy.ErrNotOwner):
		response.Forbidden(c, 17002, "only the uploader may change this document")
	default:
		handleError(c, err)
	}
}
