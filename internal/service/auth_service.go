package service

import (
	"context"
	"errors"
	"strings"
	"sync"
	"time"
	"unicode/utf8"

	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"

	"intranet-cesfam/backend/internal/dto"
	"intranet-cesfam/backend/internal/model"
	"intranet-cesfam/backend/internal/policy"
	"intranet-cesfam/backend/internal/repository"
	"intranet-cesfam/backend/internal/validation"
	pkgerrors "intranet-cesfam/backend/pkg/errors"
	"intranet-cesfam/backend/pkg/jwt"
)

var (
	ErrInvalidCredentials  = pkgerrors.New(pkgerrors.ErrUnauthenticated, "RUT or password is incorrect")
	ErrInvalidRefreshToken = pkgerrors.New(pkgerrors.ErrUnauthenticated, "refresh token is invalid or expired")
	ErrUserNotFound        = pkgerrors.New(pkgerrors.ErrNotFound, "user not found")
)

// TokenBlacklist revoked-token store; implemented by the redis client.
type TokenBlacklist interface {
	BlacklistToken(ctx context.Context, jti string, ttl time.Duration) error
	IsBlacklisted(ctx context.Context, jti string) (bool, error)
}

// AuthService authentication
type AuthService interface {
	Login(ctx context.Context, req *dto.LoginRequest, meta dto.LoginMeta) (*dto.TokenResponse, error)
	Refresh(ctx context.Context, refreshToken string) (*dto.TokenResponse, error)
	// Logout revokes the access token and, when given, the refresh token.
	Logout(ctx context.Context, access *jwt.Claims, refreshToken string) error
	Me(ctx context.Context, actor policy.Actor) (*dto.UserResponse, error)
	ChangePassword(ctx context.Context, actor policy.Actor, req *dto.ChangePasswordRequest) error
}

type authService struct {
	repo      *repository.Repository
	jwtMgr    *jwt.Manager
	blacklist TokenBlacklist // nil when redis is not configured
	logger    *zap.Logger
}

// NewAuthService creates an AuthService
func NewAuthService(
	repo *repository.Repository,
	jwtMgr *jwt.Manager,
	blacklist TokenBlacklist,
	logger *zap.Logger,
) AuthService {
	return &authService{
		repo:      repo,
		jwtMgr:    jwtMgr,
		blacklist: blacklist,
		logger:    logger,
	}
}

// ────────────────────── Login ──────────────────────

func (s *authService) Login(ctx context.Context, req *dto.LoginRequest, meta dto.LoginMeta) (*dto.TokenResponse, error) {
	rut, dv, ok := validation.ParseRUT(req.RUT)
	if !ok {
		return nil, ErrInvalidCredentials
	}

	user, err := s.repo.User.GetByRUT(ctx, rut)
	if err != nil && !errors.Is(err, gorm.ErrRecordNotFound) {
		s.logger.Error("load user for login failed", zap.Error(err))
		return nil, err
	}

	// one bcrypt comparison per attempt whether or not the RUT exists
	hash, known := placeholderHash(), false
	if user != nil && strings.EqualFold(user.DV, dv) {
		hash, known = []byte(user.PasswordHash), true
	}
	if err := comparePassword(hash, []byte(req.Password)); err != nil || !known {
		return nil, ErrInvalidCredentials
	}

	resp, err := s.issueTokens(user, req.RememberMe)
	if err != nil {
		return nil, err
	}

	// the audit row never blocks a login
	record := &model.LoginRecord{
		UserID:    user.ID,
		IP:        meta.IP,
		UserAgent: truncate(meta.UserAgent, 255),
		LoggedAt:  time.Now(),
	}
	if err := s.repo.LoginRecord.Create(ctx, record); err != nil {
		s.logger.Warn("record login failed", zap.Int64("user_id", user.ID), zap.Error(err))
	}

	s.logger.Info("user logged in", zap.Int64("user_id", user.ID), zap.String("ip", meta.IP))
	return resp, nil
}

// ────────────────────── Refresh ──────────────────────

func (s *authService) Refresh(ctx context.Context, refreshToken string) (*dto.TokenResponse, error) {
	if refreshToken == "" {
		return nil, ErrInvalidRefreshToken
	}
	claims, err := s.jwtMgr.ParseToken(refreshToken)
	if err != nil || claims.TokenType != jwt.TokenTypeRefresh {
		return nil, ErrInvalidRefreshToken
	}
	if s.revoked(ctx, claims.ID) {
		return nil, ErrInvalidRefreshToken
	}

	// role and department may have changed since the token was issued
	user, err := s.repo.User.GetByID(ctx, claims.UserID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrInvalidRefreshToken
		}
		s.logger.Error("load user for refresh failed", zap.Int64("user_id", claims.UserID), zap.Error(err))
		return nil, err
	}

	resp, err := s.issueTokens(user, claims.RememberMe)
	if err != nil {
		return nil, err
	}

	// rotation: the old refresh token is single-use
	s.revoke(ctx, claims)
	return resp, nil
}

// ────────────────────── Logout ──────────────────────

func (s *authService) Logout(ctx context.Context, access *jwt.Claims, refreshToken string) error {
	if access != nil {
		s.revoke(ctx, access)
	}
	if refreshToken != "" {
		if claims, err := s.jwtMgr.ParseToken(refreshToken); err == nil && claims.TokenType == jwt.TokenTypeRefresh {
			s.revoke(ctx, claims)
		}
	}
	return nil
}

// ────────────────────── Me ──────────────────────

func (s *authService) Me(ctx context.Context, actor policy.Actor) (*dto.UserResponse, error) {
	if !actor.Valid() {
		return nil, policy.ErrNoActor
	}
	user, err := s.repo.User.GetByID(ctx, actor.UserID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrUserNotFound
		}
		s.logger.Error("load current user failed", zap.Int64("user_id", actor.UserID), zap.Error(err))
		return nil, err
	}
	return toUserResponse(user), nil
}

// ────────────────────── ChangePassword ──────────────────────

func (s *authService) ChangePassword(ctx context.Context, actor policy.Actor, req *dto.ChangePasswordRequest) error {
	if !actor.Valid() {
		return policy.ErrNoActor
	}
	user, err := s.repo.User.GetByID(ctx, actor.UserID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return ErrUserNotFound
		}
		return err
	}

	if err := comparePassword([]byte(user.PasswordHash), []byte(req.OldPassword)); err != nil {
		return validation.Field("old_password", "current password is incorrect")
	}
	if req.OldPassword == req.NewPassword {
		return validation.Field("new_password", "new password must differ from the current one")
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(req.NewPassword), bcrypt.DefaultCost)
	if err != nil {
		s.logger.Error("hash password failed", zap.Error(err))
		return err
	}
	user.PasswordHash = string(hash)
	if err := s.repo.User.Update(ctx, user); err != nil {
		s.logger.Error("update password failed", zap.Int64("user_id", user.ID), zap.Error(err))
		return err
	}
	return nil
}

// ── helpers ──

func (s *authService) issueTokens(user *model.User, rememberMe bool) (*dto.TokenResponse, error) {
	sub := jwt.Subject{UserID: user.ID, Role: string(user.Role), DepartmentID: user.DeptID()}

	accessToken, err := s.jwtMgr.GenerateAccessToken(sub)
	if err != nil {
		s.logger.Error("generate access token failed", zap.Error(err))
		return nil, err
	}
	refreshToken, err := s.jwtMgr.GenerateRefreshToken(sub, rememberMe)
	if err != nil {
		s.logger.Error("generate refresh token failed", zap.Error(err))
		return nil, err
	}

	return &dto.TokenResponse{
		AccessToken:  accessToken,
		RefreshToken: refreshToken,
		ExpiresIn:    int(s.jwtMgr.AccessTokenTTL().Seconds()),
		User:         *toUserResponse(user),

		RefreshExpiresIn: int(s.jwtMgr.RefreshTokenTTL(rememberMe).Seconds()),
	}, nil
}

func (s *authService) revoke(ctx context.Context, claims *jwt.Claims) {
	if s.blacklist == nil || claims.ID == "" {
		return
	}
	ttl := claims.RemainingTTL()
	if ttl <= 0 {
		return
	}
	if err := s.blacklist.BlacklistToken(ctx, claims.ID, ttl); err != nil {
		s.logger.Warn("blacklist token failed", zap.String("jti", claims.ID), zap.Error(err))
	}
}

func (s *authService) revoked(ctx context.Context, jti string) bool {
	if s.blacklist == nil || jti == "" {
		return false
	}
	ok, err := s.blacklist.IsBlacklisted(ctx, jti)
	if err != nil {
		// fail open: an unreachable redis must not lock everyone out
		s.logger.Warn("check token blacklist failed", zap.Error(err))
		return false
	}
	return ok
}

// truncate cuts s to at most n bytes without splitting a UTF-8 sequence
func truncate(s string, n int) string {
	s = strings.ToValidUTF8(s, "")
	if len(s) <= n {
		return s
	}
	for n > 0 && !utf8.RuneStart(s[n]) {
		n--
	}
	return s[:n]
}

// comparePassword is a variable so tests can count comparisons
var comparePassword = bcrypt.CompareHashAndPassword

var (
	placeholderOnce sync.Once
	placeholder     []byte
)

// placeholderHash is compared against when no account matches the RUT.
// It uses the same cost as stored hashes.
func placeholderHash() []byte {
	placeholderOnce.Do(func() {
		placeholder, _ = bcrypt.GenerateFromPassword([]byte("intranet-cesfam-no-account"), bcrypt.DefaultCost)
	})
	return placeholder
}
