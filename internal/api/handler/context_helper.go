package handler

import (
	"errors"
	"mime/multipart"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"intranet-cesfam/backend/internal/model"
	"intranet-cesfam/backend/internal/policy"
	"intranet-cesfam/backend/internal/service"
	"intranet-cesfam/backend/internal/validation"
	pkgerrors "intranet-cesfam/backend/pkg/errors"
	"intranet-cesfam/backend/pkg/response"
)

// MustGetActor builds the caller's policy.Actor from what JWTAuth injected.
// On failure a 401 has been written and the caller should return.
func MustGetActor(c *gin.Context) (policy.Actor, bool) {
	uid, ok := c.Get("user_id")
	if !ok {
		response.Unauthorized(c, 10002, "not authenticated")
		return policy.Actor{}, false
	}
	userID, _ := uid.(int64)
	role := model.Role(c.GetString("role"))
	deptID, _ := c.Get("department_id")
	departmentID, _ := deptID.(int64)

	actor := policy.Actor{UserID: userID, Role: role, DepartmentID: departmentID}
	if !actor.Valid() {
		response.Unauthorized(c, 10002, "not authenticated")
		return policy.Actor{}, false
	}
	return actor, true
}

// parseID reads a positive int64 path parameter; writes 400 otherwise.
func parseID(c *gin.Context, name string) (int64, bool) {
	id, err := strconv.ParseInt(c.Param(name), 10, 64)
	if err != nil || id <= 0 {
		response.ValidationFailed(c, 10001, "validation failed", []response.FieldError{{Field: name, Message: "must be a positive integer"}})
		return 0, false
	}
	return id, true
}

// bindJSON binds the body and renders field errors on failure.
func bindJSON(c *gin.Context, obj interface{}) bool {
	if err := c.ShouldBindJSON(obj); err != nil {
		renderValidation(c, validation.FromBinding(err))
		return false
	}
	return true
}

// bindQuery binds query parameters and renders field errors on failure.
func bindQuery(c *gin.Context, obj interface{}) bool {
	if err := c.ShouldBindQuery(obj); err != nil {
		renderValidation(c, validation.FromBinding(err))
		return false
	}
	return true
}

// bindForm binds multipart form fields.
func bindForm(c *gin.Context, obj interface{}) bool {
	if err := c.ShouldBind(obj); err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			response.Error(c, http.StatusRequestEntityTooLarge, 10005, "request body too large")
			return false
		}
		renderValidation(c, validation.FromBinding(err))
		return false
	}
	return true
}

// formFile returns the named multipart file, or nil when absent.
// A body over the size limit is reported as 413.
func formFile(c *gin.Context, field string) (*service.FileUpload, func(), bool) {
	fh, err := c.FormFile(field)
	if err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			response.Error(c, http.StatusRequestEntityTooLarge, 10005, "request body too large")
			return nil, nil, false
		}
		return nil, func() {}, true
	}
	return openUpload(c, fh)
}

func openUpload(c *gin.Context, fh *multipart.FileHeader) (*service.FileUpload, func(), bool) {
	f, err := fh.Open()
	if err != nil {
		response.BadRequest(c, 10001, "cannot read uploaded file")
		return nil, nil, false
	}
	upload := &service.FileUpload{Filename: fh.Filename, Size: fh.Size, Content: f}
	return upload, func() { f.Close() }, true
}

func renderValidation(c *gin.Context, errs validation.Errors) {
	fields := make([]response.FieldError, 0, len(errs))
	for _, fe := range errs {
		fields = append(fields, response.FieldError{Field: fe.Field, Message: fe.Message})
	}
	response.ValidationFailed(c, 10001, "validation failed", fields)
}

// handleError renders err by its kind. Module handlers call it after
// mapping their own sentinels.
func handleError(c *gin.Context, err error) {
	var verrs validation.Errors
	if errors.As(err, &verrs) {
		renderValidation(c, verrs)
		return
	}

	switch pkgerrors.Kind(err) {
	case pkgerrors.ErrValidation:
		response.BadRequest(c, 10001, err.Error())
	case pkgerrors.ErrUnauthenticated:
		response.Unauthorized(c, 10002, err.Error())
	case pkgerrors.ErrForbidden:
		response.Forbidden(c, 10003, err.Error())
	case pkgerrors.ErrNotFound:
		response.NotFound(c, 10006, err.Error())
	case pkgerrors.ErrInvalidState:
		response.Conflict(c, 10007, err.Error())
	case pkgerrors.ErrOptimisticLock:
		response.Conflict(c, 10008, err.Error())
	default:
		_ = c.Error(err)
		response.InternalError(c)
	}
}
