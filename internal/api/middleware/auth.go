package middleware

import (
	"context"
	"errors"
	"strings"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"

	"intranet-cesfam/backend/internal/model"
	"intranet-cesfam/backend/pkg/jwt"
	"intranet-cesfam/backend/pkg/response"
)

// ClaimsKey context key of the parsed access token
const ClaimsKey = "claims"

// RevocationChecker revoked-token lookup; implemented by the redis client.
type RevocationChecker interface {
	IsBlacklisted(ctx context.Context, jti string) (bool, error)
}

// UserLookup loads the stored account behind a token; implemented by the user repository.
type UserLookup interface {
	GetByID(ctx context.Context, id int64) (*model.User, error)
}

// JWTAuth validates "Authorization: Bearer <token>" access tokens.
// revoked may be nil; lookup errors let the request through.
// With users set, role and department come from the stored account rather
// than the token, and a deleted account is rejected.
func JWTAuth(jwtMgr *jwt.Manager, revoked RevocationChecker, users UserLookup) gin.HandlerFunc {
	return func(c *gin.Context) {
		authHeader := c.GetHeader("Authorization")
		if authHeader == "" {
			response.Unauthorized(c, 10002, "missing authorization header")
			c.Abort()
			return
		}

		parts := strings.SplitN(authHeader, " ", 2)
		if len(parts) != 2 || parts[0] != "Bearer" {
			response.Unauthorized(c, 10002, "malformed authorization header")
			c.Abort()
			return
		}

		claims, err := jwtMgr.ParseToken(parts[1])
		if err != nil {
			response.Unauthorized(c, 10002, "token invalid or expired")
			c.Abort()
			return
		}

		if claims.TokenType != "access" {
			response.Unauthorized(c, 10002, "wrong token type")
			c.Abort()
			return
		}

		if revoked != nil && claims.ID != "" {
			if hit, err := revoked.IsBlacklisted(c.Request.Context(), claims.ID); err == nil && hit {
				response.Unauthorized(c, 10002, "token has been revoked")
				c.Abort()
				return
			}
		}

		role, departmentID := claims.Role, claims.DepartmentID
		if users != nil {
			user, err := users.GetByID(c.Request.Context(), claims.UserID)
			if err != nil {
				if errors.Is(err, gorm.ErrRecordNotFound) {
					response.Unauthorized(c, 10002, "account no longer exists")
				} else {
					_ = c.Error(err)
					response.InternalError(c)
				}
				c.Abort()
				return
			}
			role, departmentID = string(user.Role), user.DeptID()
		}

		c.Set("user_id", claims.UserID)
		c.Set("role", role)
		c.Set("department_id", departmentID)
		c.Set(ClaimsKey, claims)

		c.Next()
	}
}

// RoleAuth lets through only the listed roles
func RoleAuth(allowedRoles ...model.Role) gin.HandlerFunc {
	return func(c *gin.Context) {
		role, exists := c.Get("role")
		if !exists {
			response.Unauthorized(c, 10002, "not authenticated")
			c.Abort()
			return
		}

		userRole := model.Role(role.(string))
		for _, r := range allowedRoles {
			if userRole == r {
				c.Next()
				return
			}
		}

		response.Forbidden(c, 10003, "insufficient role")
		c.Abort()
	}
}
