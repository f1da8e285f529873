package handler

import (
	"errors"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"intranet-cesfam/backend/config"
	"intranet-cesfam/backend/internal/api/middleware"
	"intranet-cesfam/backend/internal/dto"
	"intranet-cesfam/backend/internal/service"
	"intranet-cesfam/backend/pkg/jwt"
	"intranet-cesfam/backend/pkg/response"
)

const (
	refreshCookieName = "refresh_token"
	refreshCookiePath = "/api/v1/auth"
)

// AuthHandler authentication endpoints
type AuthHandler struct {
	authSvc service.AuthService
	cookie  config.CookieConfig
}

// NewAuthHandler creates an AuthHandler; cookie may be nil in tests.
func NewAuthHandler(authSvc service.AuthService, cookie *config.CookieConfig) *AuthHandler {
	h := &AuthHandler{authSvc: authSvc, cookie: config.CookieConfig{SameSite: "Lax"}}
	if cookie != nil {
		h.cookie = *cookie
	}
	return h
}

// Login RUT + password
// POST /api/v1/auth/login
func (h *AuthHandler) Login(c *gin.Context) {
	var req dto.LoginRequest
	if !bindJSON(c, &req) {
		return
	}

	meta := dto.LoginMeta{IP: c.ClientIP(), UserAgent: c.Request.UserAgent()}
	result, err := h.authSvc.Login(c.Request.Context(), &req, meta)
	if err != nil {
		h.handleAuthError(c, err)
		return
	}

	h.setRefreshCookie(c, result.RefreshToken, result.RefreshExpiresIn)
	result.RefreshToken = ""
	response.OK(c, result)
}

// RefreshToken rotates the token pair; the refresh token comes from the cookie or the body.
// POST /api/v1/auth/refresh
func (h *AuthHandler) RefreshToken(c *gin.Context) {
	token, _ := c.Cookie(refreshCookieName)
	if token == "" {
		var req dto.RefreshTokenRequest
		_ = c.ShouldBindJSON(&req)
		token = strings.TrimSpace(req.RefreshToken)
	}
	if token == "" {
		response.BadRequest(c, 10001, "refresh token is required")
		return
	}

	result, err := h.authSvc.Refresh(c.Request.Context(), token)
	if err != nil {
		if errors.Is(err, service.ErrInvalidRefreshToken) {
			h.clearRefreshCookie(c)
		}
		h.handleAuthError(c, err)
		return
	}

	h.setRefreshCookie(c, result.RefreshToken, result.RefreshExpiresIn)
	result.RefreshToken = ""
	response.OK(c, result)
}

// Logout revokes the current access token and the refresh cookie
// POST /api/v1/auth/logout
func (h *AuthHandler) Logout(c *gin.Context) {
	v, _ := c.Get(middleware.ClaimsKey)
	claims, ok := v.(*jwt.Claims)
	if !ok {
		response.Unauthorized(c, 10002, "not authenticated")
		return
	}
	refresh, _ := c.Cookie(refreshCookieName)

	if err := h.authSvc.Logout(c.Request.Context(), claims, refresh); err != nil {
		h.handleAuthError(c, err)
		return
	}

	h.clearRefreshCookie(c)
	response.OK(c, nil)
}

// GetCurrentUser caller's own account
// GET /api/v1/auth/me
func (h *AuthHandler) GetCurrentUser(c *gin.Context) {
	actor, ok := MustGetActor(c)
	if !ok {
		return
	}

	user, err := h.authSvc.Me(c.Request.Context(), actor)
	if err != nil {
		h.handleAuthError(c, err)
		return
	}

	response.OK(c, user)
}

// ChangePassword self-service password change
// PUT /api/v1/auth/password
func (h *AuthHandler) ChangePassword(c *gin.Context) {
	actor, ok := MustGetActor(c)
	if !ok {
		return
	}
	var req dto.ChangePasswordRequest
	if !bindJSON(c, &req) {
		return
	}

	if err := h.authSvc.ChangePassword(c.Request.Context(), actor, &req); err != nil {
		h.handleAuthError(c, err)
		return
	}

	response.OK(c, nil)
}

// ── helpers ──

func (h *AuthHandler) setRefreshCookie(c *gin.Context, token string, maxAge int) {
	c.SetSameSite(sameSite(h.cookie.SameSite))
	c.SetCookie(refreshCookieName, token, maxAge, refreshCookiePath, h.cookie.Domain, h.cookie.Secure, true)
}

func (h *AuthHandler) clearRefreshCookie(c *gin.Context) {
	c.SetSameSite(sameSite(h.cookie.SameSite))
	c.SetCookie(refreshCookieName, "", -1, refreshCookiePath, h.cookie.Domain, h.cookie.Secure, true)
}

func sameSite(v string) http.SameSite {
	switch strings.ToLower(v) {
	case "strict":
		return http.SameSiteStrictMode
	case "none":
		return http.SameSiteNoneMode
	default:
		return http.SameSiteLaxMode
	}
}

func (h *AuthHandler) handleAuthError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, service.ErrInvalidCredentials):
		response.Unauthorized(c, 11001, "RUT or password is incorrect")
	case errors.Is(err, service.ErrInvalidRefreshToken):
		response.Unauthorized(c, 11002, "refresh token is invalid or expired")
	case errors.Is(err, service.ErrUserNotFound):
		response.NotFound(c, 11003, "user not found")
	default:
		handleError(c, err)
	}
}
