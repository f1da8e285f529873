package service

import (
	"go.uber.org/zap"

	"intranet-cesfam/backend/config"
	"intranet-cesfam/backend/internal/repository"
	"intranet-cesfam/backend/pkg/jwt"
	"intranet-cesfam/backend/pkg/storage"
)

// Service aggregate of every service
type Service struct {
	Auth         AuthService
	User         UserService
	Department   DepartmentService
	Reference    ReferenceService
	Request      RequestService
	Export       ExportService
	Calendar     CalendarService
	Leave        LeaveService
	Document     DocumentService
	Profile      ProfileService
	Announcement AnnouncementService
	Message      MessageService
	LoginRecord  LoginRecordService
}

// NewService wires the services; blacklist may be nil when redis is not configured.
func NewService(
	cfg *config.Config,
	repo *repository.Repository,
	jwtMgr *jwt.Manager,
	store storage.Storage,
	blacklist TokenBlacklist,
	logger *zap.Logger,
) *Service {
	return &Service{
		Auth:         NewAuthService(repo, jwtMgr, blacklist, logger),
		User:         NewUserService(repo, logger),
		Department:   NewDepartmentService(repo, logger),
		Reference:    NewReferenceService(repo, logger),
		Request:      NewRequestService(repo, cfg.Location(), logger),
		Export:       NewExportService(repo, logger),
		Calendar:     NewCalendarService(repo, cfg.Location(), logger),
		Leave:        NewLeaveService(repo, store, cfg.Upload.LeaveMaxBytes, logger),
		Document:     NewDocumentService(repo, store, cfg.Upload.DocumentMaxBytes, logger),
		Profile:      NewProfileService(repo, store, cfg.Upload.AvatarMaxBytes, logger),
		Announcement: NewAnnouncementService(repo, logger),
		Message:      NewMessageService(repo, logger),
		LoginRecord:  NewLoginRecordService(repo, logger),
	}
}
