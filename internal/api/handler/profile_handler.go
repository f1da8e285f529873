package handler

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"intranet-cesfam/backend/internal/dto"
	"intranet-cesfam/backend/internal/service"
	"intranet-cesfam/backend/pkg/response"
)

// ProfileHandler user profile endpoints
type ProfileHandler struct {
	profileSvc service.ProfileService
}

// NewProfileHandler creates a ProfileHandler
func NewProfileHandler(profileSvc service.ProfileService) *ProfileHandler {
	return &ProfileHandler{profileSvc: profileSvc}
}

// GetProfile GET /api/v1/profiles/:id
func (h *ProfileHandler) GetProfile(c *gin.Context) {
	id, ok := parseID(c, "id")
	if !ok {
		return
	}

	profile, err := h.profileSvc.Get(c.Request.Context(), id)
	if err != nil {
		h.handleProfileError(c, err)
		return
	}

	response.OK(c, profile)
}

// GetMyProfile GET /api/v1/profiles/me
func (h *ProfileHandler) GetMyProfile(c *gin.Context) {
	actor, ok := MustGetActor(c)
	if !ok {
		return
	}

	profile, err := h.profileSvc.Get(c.Request.Context(), actor.UserID)
	if err != nil {
		h.handleProfileError(c, err)
		return
	}

	response.OK(c, profile)
}

// UpdateBio PUT /api/v1/profiles/me
func (h *ProfileHandler) UpdateBio(c *gin.Context) {
	actor, ok := MustGetActor(c)
	if !ok {
		return
	}
	var req dto.UpdateProfileRequest
	if !bindJSON(c, &req) {
		return
	}

	profile, err := h.profileSvc.UpdateBio(c.Request.Context(), actor, &req)
	if err != nil {
		h.handleProfileError(c, err)
		return
	}

	response.OK(c, profile)
}

// UploadAvatar multipart field "avatar"
// PUT /api/v1/profiles/me/avatar
func (h *ProfileHandler) UploadAvatar(c *gin.Context) {
	actor, ok := MustGetActor(c)
	if !ok {
		return
	}
	file, closeFile, ok := formFile(c, "avatar")
	if !ok {
		return
	}
	defer closeFile()

	profile, err := h.profileSvc.ReplaceAvatar(c.Request.Context(), actor, file)
	if err != nil {
		h.handleProfileError(c, err)
		return
	}

	response.OK(c, profile)
}

// GetAvatar streams the stored image
// GET /api/v1/profiles/:id/avatar
func (h *ProfileHandler) GetAvatar(c *gin.Context) {
	id, ok := parseID(c, "id")
	if !ok {
		return
	}

	rc, contentType, err := h.profileSvc.OpenAvatar(c.Request.Context(), id)
	if err != nil {
		h.handleProfileError(c, err)
		return
	}
	defer rc.Close()

	c.Header("Cache-Control", "private, max-age=300")
	c.DataFromReader(http.StatusOK, -1, contentType, rc, nil)
}

func (h *ProfileHandler) handleProfileError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, service.ErrUserNotFound):
		response.NotFound(c, 18001, "user not found")
	case errors.Is(err, service.ErrAvatarNotFound):
		response.NotFound(c, 18002, "user has no avatar")
	default:
		handleError(c, err)
	}
}
