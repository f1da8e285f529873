package router

import (
	"net/http"

	"github.com/gin-contrib/gzip"
	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"intranet-cesfam/backend/config"
	"intranet-cesfam/backend/internal/api/handler"
	"intranet-cesfam/backend/internal/api/middleware"
	"intranet-cesfam/backend/internal/model"
	"intranet-cesfam/backend/pkg/jwt"
	"intranet-cesfam/backend/pkg/redis"
)

// Setup builds the gin engine with every route; users resolves the caller on each request
func Setup(cfg *config.Config, h *handler.Handler, jwtMgr *jwt.Manager, rdb *redis.Client, users middleware.UserLookup, logger *zap.Logger) *gin.Engine {
	gin.SetMode(gin.ReleaseMode)

	r := gin.New()

	// ── global middleware ──
	r.Use(gin.Recovery())
	r.Use(middleware.RequestID())
	r.Use(middleware.Logger(logger))
	r.Use(middleware.SecurityHeaders())
	r.Use(middleware.CORS(cfg.Server.CORS.AllowOrigins))
	// downloads are already compressed or streamed with a known length
	r.Use(gzip.Gzip(gzip.DefaultCompression, gzip.WithExcludedPathsRegexs([]string{
		`/download$`, `/attachment$`, `/avatar$`, `^/api/v1/export/`,
	})))
	r.Use(middleware.BodyLimit(maxBodyBytes(cfg)))

	r.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})

	// revocation stays off without redis; a typed nil would pass the nil check
	var revoked middleware.RevocationChecker
	if rdb != nil {
		revoked = rdb
	}

	elevated := middleware.RoleAuth(model.RoleDirector, model.RoleAdmin)
	adminOnly := middleware.RoleAuth(model.RoleAdmin)

	v1 := r.Group("/api/v1")
	{
		auth := v1.Group("/auth")
		{
			auth.POST("/login", middleware.RateLimit(rdb, cfg.Auth.LoginRateLimit, cfg.Auth.LoginRateWindow), h.Auth.Login)
			auth.POST("/refresh", h.Auth.RefreshToken)
		}

		authorized := v1.Group("")
		authorized.Use(middleware.JWTAuth(jwtMgr, revoked, users))
		{
			authorized.POST("/auth/logout", h.Auth.Logout)
			authorized.GET("/auth/me", h.Auth.GetCurrentUser)
			authorized.PUT("/auth/password", h.Auth.ChangePassword)

			// directory
			users := authorized.Group("/users")
			{
				users.GET("", h.User.ListUsers)
				users.GET("/:id", h.User.GetUser)
				users.POST("", elevated, h.User.CreateUser)
				users.PUT("/:id", h.User.UpdateUser) // self for contact fields, checked in the service
				users.DELETE("/:id", elevated, h.User.DeleteUser)
				users.POST("/:id/reset-password", adminOnly, h.User.ResetPassword)
				users.POST("/import", adminOnly, h.User.ImportUsers)
			}

			departments := authorized.Group("/departments")
			{
				departments.GET("", h.Department.ListDepartments)
				departments.GET("/:id", h.Department.GetDepartment)
				departments.POST("", elevated, h.Department.CreateDepartment)
				departments.PUT("/:id", elevated, h.Department.UpdateDepartment)
				departments.PUT("/:id/head", elevated, h.Department.AssignHead)
				departments.DELETE("/:id", elevated, h.Department.DeleteDepartment)
			}

			reference := authorized.Group("/reference")
			{
				reference.GET("/roles", h.Reference.ListRoles)
				reference.GET("/request-statuses", h.Reference.ListRequestStatuses)
				reference.GET("/positions", h.Reference.ListPositions)
				reference.GET("/request-types", h.Reference.ListRequestTypes)
				reference.GET("/event-types", h.Reference.ListEventTypes)
			}
			authorized.GET("/login-records", adminOnly, h.Reference.ListLoginRecords)

			// requests and their two-stage review
			requests := authorized.Group("/requests")
			{
				requests.GET("", h.Request.ListRequests)
				requests.GET("/:id", h.Request.GetRequest)
				requests.POST("", h.Request.CreateRequest)
				requests.PUT("/:id", h.Request.UpdateRequest)
				requests.DELETE("/:id", h.Request.DeleteRequest)
				requests.POST("/:id/decisions/:stage", h.Request.Decide)
			}

			export := authorized.Group("/export")
			{
				export.GET("/requests", elevated, h.Export.ExportRequests)
			}

			events := authorized.Group("/events")
			{
				events.GET("", h.Calendar.ListEvents)
				events.GET("/calendar.ics", h.Calendar.FeedEvents)
				events.GET("/:id", h.Calendar.GetEvent)
				events.POST("", h.Calendar.CreateEvent)
				events.PUT("/:id", h.Calendar.UpdateEvent)
				events.DELETE("/:id", h.Calendar.DeleteEvent)
			}

			leaves := authorized.Group("/leaves")
			{
				leaves.GET("", h.Leave.ListLeaves)
				leaves.GET("/:id", h.Leave.GetLeave)
				leaves.GET("/:id/attachment", h.Leave.DownloadAttachment)
				leaves.POST("", h.Leave.CreateLeave)
				leaves.PUT("/:id", h.Leave.UpdateLeave)
				leaves.DELETE("/:id", h.Leave.DeleteLeave)
			}

			documents := authorized.Group("/documents")
			{
				documents.GET("", h.Document.ListDocuments)
				documents.GET("/:id", h.Document.GetDocument)
				documents.GET("/:id/download", h.Document.DownloadDocument)
				documents.POST("", h.Document.UploadDocument)
				documents.PUT("/:id", h.Document.UpdateDocument)
				documents.DELETE("/:id", h.Document.DeleteDocument)
			}

			profiles := authorized.Group("/profiles")
			{
				profiles.GET("/me", h.Profile.GetMyProfile)
				profiles.PUT("/me", h.Profile.UpdateBio)
				profiles.PUT("/me/avatar", h.Profile.UploadAvatar)
				profiles.GET("/:id", h.Profile.GetProfile)
				profiles.GET("/:id/avatar", h.Profile.GetAvatar)
			}

			announcements := authorized.Group("/announcements")
			{
				announcements.GET("", h.Announcement.ListAnnouncements)
				announcements.POST("", h.Announcement.CreateAnnouncement)
				announcements.DELETE("/:id", h.Announcement.DeleteAnnouncement)
			}

			messages := authorized.Group("/messages")
			{
				messages.POST("", h.Message.SendMessage)
				messages.GET("/inbox", h.Message.Inbox)
				messages.GET("/sent", h.Message.Sent)
				messages.GET("/unread-count", h.Message.UnreadCount)
				messages.GET("/:id", h.Message.GetMessage)
				messages.POST("/:id/read", h.Message.MarkRead)
			}
		}
	}

	return r
}

// maxBodyBytes largest configured upload plus room for the other multipart fields
func maxBodyBytes(cfg *config.Config) int64 {
	limit := cfg.Upload.DocumentMaxBytes
	if cfg.Upload.LeaveMaxBytes > limit {
		limit = cfg.Upload.LeaveMaxBytes
	}
	if cfg.Upload.AvatarMaxBytes > limit {
		limit = cfg.Upload.AvatarMaxBytes
	}
	return limit + 1<<20
}
