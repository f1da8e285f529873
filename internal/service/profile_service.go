package service

import (
	"context"
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/gabriel-vasile/mimetype"
	"go.uber.org/zap"
	"gorm.io/gorm"

	"intranet-cesfam/backend/internal/dto"
	"intranet-cesfam/backend/internal/model"
	"intranet-cesfam/backend/internal/policy"
	"intranet-cesfam/backend/internal/repository"
	"intranet-cesfam/backend/internal/validation"
	pkgerrors "intranet-cesfam/backend/pkg/errors"
	"intranet-cesfam/backend/pkg/storage"
)

var ErrAvatarNotFound = pkgerrors.New(pkgerrors.ErrNotFound, "user has no avatar")

const avatarDir = "avatars"

// ProfileService user profiles (bio and avatar)
type ProfileService interface {
	// Get returns userID's profile, creating an empty one on first access.
	Get(ctx context.Context, userID int64) (*dto.ProfileResponse, error)
	UpdateBio(ctx context.Context, actor policy.Actor, req *dto.UpdateProfileRequest) (*dto.ProfileResponse, error)
	// ReplaceAvatar stores the new image, then swaps the reference in a transaction.
	// The previous image is removed after commit; the new one is removed if the swap fails.
	ReplaceAvatar(ctx context.Context, actor policy.Actor, file *FileUpload) (*dto.ProfileResponse, error)
	// OpenAvatar streams userID's avatar with its detected content type.
	OpenAvatar(ctx context.Context, userID int64) (io.ReadCloser, string, error)
}

type profileService struct {
	repo       *repository.Repository
	store      storage.Storage
	uploadRule validation.UploadRule
	logger     *zap.Logger
}

// NewProfileService creates a ProfileService; maxBytes caps avatars.
func NewProfileService(repo *repository.Repository, store storage.Storage, maxBytes int64, logger *zap.Logger) ProfileService {
	return &profileService{
		repo:       repo,
		store:      store,
		uploadRule: validation.AvatarRule(maxBytes),
		logger:     logger,
	}
}

// ────────────────────── Get ──────────────────────

func (s *profileService) Get(ctx context.Context, userID int64) (*dto.ProfileResponse, error) {
	user, err := s.repo.User.GetByID(ctx, userID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrUserNotFound
		}
		return nil, err
	}

	profile, err := getOrCreateProfile(ctx, s.repo, userID)
	if err != nil {
		s.logger.Error("load profile failed", zap.Int64("user_id", userID), zap.Error(err))
		return nil, err
	}
	return toProfileResponse(user, profile), nil
}

// ────────────────────── UpdateBio ──────────────────────

func (s *profileService) UpdateBio(ctx context.Context, actor policy.Actor, req *dto.UpdateProfileRequest) (*dto.ProfileResponse, error) {
	if !actor.Valid() {
		return nil, policy.ErrNoActor
	}

	profile, err := getOrCreateProfile(ctx, s.repo, actor.UserID)
	if err != nil {
		return nil, err
	}
	if req.Bio != nil {
		profile.Bio = strings.TrimSpace(*req.Bio)
	}
	if err := s.repo.Profile.Update(ctx, profile); err != nil {
		s.logger.Error("update profile failed", zap.Int64("user_id", actor.UserID), zap.Error(err))
		return nil, err
	}
	return s.Get(ctx, actor.UserID)
}

// ────────────────────── ReplaceAvatar ──────────────────────

func (s *profileService) ReplaceAvatar(ctx context.Context, actor policy.Actor, file *FileUpload) (*dto.ProfileResponse, error) {
	if !actor.Valid() {
		return nil, policy.ErrNoActor
	}
	if file == nil {
		return nil, validation.Field(s.uploadRule.Field, "file is required")
	}

	mime, body, err := checkUpload(s.uploadRule, file)
	if err != nil {
		return nil, err
	}
	newRef, err := s.store.Save(ctx, avatarDir, file.Filename, body, file.Size, mime)
	if err != nil {
		s.logger.Error("store avatar failed", zap.Int64("user_id", actor.UserID), zap.Error(err))
		return nil, err
	}

	var oldRef string
	err = inTx(ctx, s.repo, s.logger, func(txRepo *repository.Repository) error {
		profile, err := getOrCreateProfile(ctx, txRepo, actor.UserID)
		if err != nil {
			return err
		}
		oldRef = profile.AvatarRef
		profile.AvatarRef = newRef
		return txRepo.Profile.Update(ctx, profile)
	})
	if err != nil {
		s.logger.Error("swap avatar failed", zap.Int64("user_id", actor.UserID), zap.Error(err))
		discardFile(ctx, s.store, s.logger, newRef)
		return nil, err
	}

	discardFile(ctx, s.store, s.logger, oldRef)
	s.logger.Info("avatar replaced", zap.Int64("user_id", actor.UserID))
	return s.Get(ctx, actor.UserID)
}

// ────────────────────── OpenAvatar ──────────────────────

func (s *profileService) OpenAvatar(ctx context.Context, userID int64) (io.ReadCloser, string, error) {
	profile, err := s.repo.Profile.GetByUserID(ctx, userID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, "", ErrAvatarNotFound
		}
		return nil, "", err
	}
	if profile.AvatarRef == "" {
		return nil, "", ErrAvatarNotFound
	}

	rc, err := s.store.Open(ctx, profile.AvatarRef)
	if err != nil {
		if errors.Is(err, storage.ErrNotFound) {
			return nil, "", ErrAvatarNotFound
		}
		s.logger.Error("open avatar failed", zap.Int64("user_id", userID), zap.Error(err))
		return nil, "", err
	}

	head, full, err := validation.Sniff(rc)
	if err != nil {
		rc.Close()
		return nil, "", err
	}
	return readCloser{Reader: full, Closer: rc}, mimetype.Detect(head).String(), nil
}

// ── helpers ──

type readCloser struct {
	io.Reader
	io.Closer
}

func getOrCreateProfile(ctx context.Context, repo *repository.Repository, userID int64) (*model.Profile, error) {
	profile, err := repo.Profile.GetByUserID(ctx, userID)
	if err == nil {
		return profile, nil
	}
	if !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, err
	}
	profile = &model.Profile{UserID: userID}
	if err := repo.Profile.Create(ctx, profile); err != nil {
		return nil, err
	}
	return profile, nil
}

func toProfileResponse(user *model.User, profile *model.Profile) *dto.ProfileResponse {
	resp := &dto.ProfileResponse{
		User:      *toUserResponse(user),
		Bio:       profile.Bio,
		HasAvatar: profile.AvatarRef != "",
	}
	if resp.HasAvatar {
		resp.AvatarURL = fmt.Sprintf("/api/v1/profiles/%d/avatar", user.ID)
	}
	return resp
}
