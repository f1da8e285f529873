package handler

import (
	"intranet-cesfam/backend/config"
	"intranet-cesfam/backend/internal/service"
)

// Handler aggregate of every HTTP handler
type Handler struct {
	Auth         *AuthHandler
	User         *UserHandler
	Department   *DepartmentHandler
	Reference    *ReferenceHandler
	Request      *RequestHandler
	Export       *ExportHandler
	Calendar     *CalendarHandler
	Leave        *LeaveHandler
	Document     *DocumentHandler
	Profile      *ProfileHandler
	Announcement *AnnouncementHandler
	Message      *MessageHandler
}

// NewHandler creates the handler aggregate
func NewHandler(cfg *config.Config, svc *service.Service) *Handler {
	return &Handler{
		Auth:         NewAuthHandler(svc.Auth, &cfg.Auth.Cookie),
		User:         NewUserHandler(svc.User),
		Department:   NewDepartmentHandler(svc.Department),
		Reference:    NewReferenceHandler(svc.Reference, svc.LoginRecord),
		Request:      NewRequestHandler(svc.Request),
		Export:       NewExportHandler(svc.Export),
		Calendar:     NewCalendarHandler(svc.Calendar),
		Leave:        NewLeaveHandler(svc.Leave),
		Document:     NewDocumentHandler(svc.Document),
		Profile:      NewProfileHandler(svc.Profile),
		Announcement: NewAnnouncementHandler(svc.Announcement),
		Message:      NewMessageHandler(svc.Message),
	}
}
