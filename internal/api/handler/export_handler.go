package handler

import (
	"errors"
	"net/http"
	"net/url"

	"github.com/gin-gonic/gin"

	"intranet-cesfam/backend/internal/dto"
	"intranet-cesfam/backend/internal/service"
	"intranet-cesfam/backend/pkg/response"
)

const xlsxContentType = "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"

// ExportHandler spreadsheet downloads
type ExportHandler struct {
	exportSvc service.ExportService
}

// NewExportHandler creates an ExportHandler
func NewExportHandler(exportSvc service.ExportService) *ExportHandler {
	return &ExportHandler{exportSvc: exportSvc}
}

// ExportRequests request report, same filters as the listing
// GET /api/v1/export/requests?status=&type_id=&from=&to=
func (h *ExportHandler) ExportRequests(c *gin.Context) {
	actor, ok := MustGetActor(c)
	if !ok {
		return
	}
	var req dto.RequestListRequest
	if !bindQuery(c, &req) {
		return
	}

	buf, filename, err := h.exportSvc.ExportRequests(c.Request.Context(), actor, &req)
	if err != nil {
		h.handleExportError(c, err)
		return
	}

	sendAttachment(c, filename)
	c.Data(http.StatusOK, xlsxContentType, buf.Bytes())
}

func (h *ExportHandler) handleExportError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, service.ErrExportForbidden):
		response.Forbidden(c, 14101, "only the director or an administrator may export requests")
	case errors.Is(err, service.ErrExportGenerateFail):
		response.InternalError(c)
	default:
		handleError(c, err)
	}
}

// sendAttachment download headers with an RFC 5987 encoded filename
func sendAttachment(c *gin.Context, filename string) {
	c.Header("Content-Description", "File Transfer")
	c.Header("Content-Disposition", "attachment; filename*=UTF-8''"+url.PathEscape(filename))
}
