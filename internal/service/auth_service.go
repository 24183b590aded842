package service

import (
	"context"
	"errors"
	"time"

	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"

	"teaching-eval/backend/config"
	"teaching-eval/backend/internal/dto"
	"teaching-eval/backend/internal/model"
	"teaching-eval/backend/internal/repository"
	"teaching-eval/backend/pkg/apperrors"
	"teaching-eval/backend/pkg/jwt"
	"teaching-eval/backend/pkg/redis"
)

// AuthService 认证业务接口
type AuthService interface {
	Login(ctx context.Context, req *dto.LoginRequest) (*dto.LoginResponse, error)
	Refresh(ctx context.Context, req *dto.RefreshRequest) (*dto.RefreshResponse, error)
	// Logout 将当前 access token 的 JTI 拉黑，剩余有效期内不可再用
	Logout(ctx context.Context, claims *jwt.Claims) error
	ChangePassword(ctx context.Context, userID int64, req *dto.ChangePasswordRequest) error
}

type authService struct {
	cfg    *config.Config
	repo   *repository.Repository
	jwtMgr *jwt.Manager
	rdb    *redis.Client
	logger *zap.Logger
}

// NewAuthService 创建 AuthService 实例
func NewAuthService(
	cfg *config.Config,
	repo *repository.Repository,
	jwtMgr *jwt.Manager,
	rdb *redis.Client,
	logger *zap.Logger,
) AuthService {
	return &authService{
		cfg:    cfg,
		repo:   repo,
		jwtMgr: jwtMgr,
		rdb:    rdb,
		logger: logger,
	}
}

func (s *authService) Login(ctx context.Context, req *dto.LoginRequest) (*dto.LoginResponse, error) {
	// 1. 查询用户
	user, err := s.repo.User.GetByUserNo(ctx, req.UserNo)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperrors.InvalidInput("工号或密码错误")
		}
		s.logger.Error("查询用户失败", zap.Error(err))
		return nil, apperrors.Unavailable("查询用户失败", err)
	}
	if user.Status != model.UserStatusActive {
		return nil, apperrors.Forbidden("账号已停用")
	}

	// 2. 验证密码 (bcrypt)
	if err := bcrypt.CompareHashAndPassword([]byte(user.Password), []byte(req.Password)); err != nil {
		return nil, apperrors.InvalidInput("工号或密码错误")
	}

	// 3. 生成 Token 对
	accessToken, err := s.jwtMgr.GenerateAccessToken(user.ID, user.UserNo)
	if err != nil {
		s.logger.Error("生成 AccessToken 失败", zap.Error(err))
		return nil, apperrors.Unavailable("生成 Token 失败", err)
	}
	refreshToken, err := s.jwtMgr.GenerateRefreshToken(user.ID, user.UserNo)
	if err != nil {
		s.logger.Error("生成 RefreshToken 失败", zap.Error(err))
		return nil, apperrors.Unavailable("生成 Token 失败", err)
	}

	roleCodes, err := s.repo.User.RoleCodes(ctx, user.ID)
	if err != nil {
		s.logger.Error("查询用户角色失败", zap.Error(err))
		return nil, apperrors.Unavailable("查询用户角色失败", err)
	}

	resp := &dto.LoginResponse{
		AccessToken:  accessToken,
		RefreshToken: refreshToken,
		User: dto.UserResponse{
			ID:        user.ID,
			UserNo:    user.UserNo,
			UserName:  user.UserName,
			CollegeID: user.CollegeID,
			Status:    user.Status,
			RoleCodes: roleCodes,
		},
	}
	if user.College != nil {
		resp.User.CollegeName = user.College.CollegeName
	}
	return resp, nil
}

func (s *authService) Refresh(ctx context.Context, req *dto.RefreshRequest) (*dto.RefreshResponse, error) {
	claims, err := s.jwtMgr.ParseToken(req.RefreshToken)
	if err != nil || claims.TokenType != "refresh" {
		return nil, apperrors.InvalidInput("无效的 refresh token")
	}

	if s.rdb != nil {
		blacklisted, err := s.rdb.IsBlacklisted(ctx, claims.ID)
		if err != nil {
			s.logger.Error("黑名单检查失败", zap.Error(err))
			return nil, apperrors.Unavailable("黑名单检查失败", err)
		}
		if blacklisted {
			return nil, apperrors.InvalidInput("refresh token 已失效")
		}
	}

	// 用户仍需存活且可用
	user, err := s.repo.User.GetByID(ctx, claims.UserID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperrors.NotFound("用户不存在")
		}
		return nil, apperrors.Unavailable("查询用户失败", err)
	}
	if user.Status != model.UserStatusActive {
		return nil, apperrors.Forbidden("账号已停用")
	}

	accessToken, err := s.jwtMgr.GenerateAccessToken(user.ID, user.UserNo)
	if err != nil {
		return nil, apperrors.Unavailable("生成 Token 失败", err)
	}
	refreshToken, err := s.jwtMgr.GenerateRefreshToken(user.ID, user.UserNo)
	if err != nil {
		return nil, apperrors.Unavailable("生成 Token 失败", err)
	}

	// 旧 refresh token 作废，一次一换
	if s.rdb != nil {
		ttl := time.Until(claims.ExpiresAt.Time)
		if err := s.rdb.BlacklistToken(ctx, claims.ID, ttl); err != nil {
			s.logger.Warn("拉黑旧 refresh token 失败", zap.Error(err))
		}
	}

	return &dto.RefreshResponse{
		AccessToken:  accessToken,
		RefreshToken: refreshToken,
	}, nil
}

func (s *authService) Logout(ctx context.Context, claims *jwt.Claims) error {
	if s.rdb == nil {
		return nil
	}
	ttl := time.Until(claims.ExpiresAt.Time)
	if err := s.rdb.BlacklistToken(ctx, claims.ID, ttl); err != nil {
		s.logger.Error("拉黑 token 失败", zap.Error(err))
		return apperrors.Unavailable("登出失败", err)
	}
	return nil
}

func (s *authService) ChangePassword(ctx context.Context, userID int64, req *dto.ChangePasswordRequest) error {
	user, err := s.repo.User.GetByID(ctx, userID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return apperrors.NotFound("用户不存在")
		}
		return apperrors.Unavailable("查询用户失败", err)
	}

	if err := bcrypt.CompareHashAndPassword([]byte(user.Password), []byte(req.OldPassword)); err != nil {
		return apperrors.InvalidInput("原密码错误")
	}

	hashed, err := bcrypt.GenerateFromPassword([]byte(req.NewPassword), bcrypt.DefaultCost)
	if err != nil {
		return apperrors.Unavailable("密码加密失败", err)
	}
	user.Password = string(hashed)
	if err := s.repo.User.Update(ctx, user); err != nil {
		return apperrors.Unavailable("更新密码失败", err)
	}

	s.logger.Info("用户密码已修改", zap.Int64("user_id", userID))
	return nil
}
