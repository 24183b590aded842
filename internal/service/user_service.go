package service

import (
	"context"
	"errors"

	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"

	"teaching-eval/backend/internal/dto"
	"teaching-eval/backend/internal/model"
	"teaching-eval/backend/internal/repository"
	"teaching-eval/backend/pkg/apperrors"
)

// UserService 用户管理业务接口
type UserService interface {
	Create(ctx context.Context, req *dto.CreateUserRequest) (*dto.UserResponse, error)
	GetByID(ctx context.Context, id int64) (*dto.UserResponse, error)
	List(ctx context.Context, collegeID *int64, offset, limit int) ([]dto.UserResponse, int64, error)
	Update(ctx context.Context, id int64, req *dto.UpdateUserRequest) (*dto.UserResponse, error)
	Delete(ctx context.Context, id int64) error
	AssignRoles(ctx context.Context, id int64, req *dto.AssignRolesRequest) error
}

type userService struct {
	repo   *repository.Repository
	logger *zap.Logger
}

// NewUserService 创建 UserService 实例
func NewUserService(repo *repository.Repository, logger *zap.Logger) UserService {
	return &userService{repo: repo, logger: logger}
}

func (s *userService) Create(ctx context.Context, req *dto.CreateUserRequest) (*dto.UserResponse, error) {
	if _, err := s.repo.User.GetByUserNo(ctx, req.UserNo); err == nil {
		return nil, apperrors.Conflict("工号已存在")
	} else if !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, apperrors.Unavailable("查询用户失败", err)
	}

	if req.CollegeID != nil {
		if _, err := s.repo.College.GetByID(ctx, *req.CollegeID); err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return nil, apperrors.NotFound("学院不存在")
			}
			return nil, apperrors.Unavailable("查询学院失败", err)
		}
	}

	hashed, err := bcrypt.GenerateFromPassword([]byte(req.Password), bcrypt.DefaultCost)
	if err != nil {
		return nil, apperrors.Unavailable("密码加密失败", err)
	}

	user := &model.User{
		UserNo:    req.UserNo,
		UserName:  req.UserName,
		Password:  string(hashed),
		CollegeID: req.CollegeID,
		Status:    model.UserStatusActive,
	}
	if err := s.repo.User.Create(ctx, user); err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			return nil, apperrors.Conflict("工号已存在")
		}
		return nil, apperrors.Unavailable("创建用户失败", err)
	}

	for _, code := range req.RoleCodes {
		role, err := s.repo.Role.GetByCode(ctx, code)
		if err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return nil, apperrors.NotFound("角色不存在: " + code)
			}
			return nil, apperrors.Unavailable("查询角色失败", err)
		}
		if err := s.repo.User.AssignRole(ctx, user.ID, role.ID); err != nil {
			return nil, apperrors.Unavailable("分配角色失败", err)
		}
	}

	s.logger.Info("用户已创建", zap.Int64("user_id", user.ID), zap.String("user_no", user.UserNo))
	return s.toUserResponse(ctx, user)
}

func (s *userService) GetByID(ctx context.Context, id int64) (*dto.UserResponse, error) {
	user, err := s.repo.User.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperrors.NotFound("用户不存在")
		}
		return nil, apperrors.Unavailable("查询用户失败", err)
	}
	return s.toUserResponse(ctx, user)
}

func (s *userService) List(ctx context.Context, collegeID *int64, offset, limit int) ([]dto.UserResponse, int64, error) {
	users, total, err := s.repo.User.List(ctx, collegeID, offset, limit)
	if err != nil {
		return nil, 0, apperrors.Unavailable("查询用户列表失败", err)
	}
	result := make([]dto.UserResponse, 0, len(users))
	for i := range users {
		resp := dto.UserResponse{
			ID:        users[i].ID,
			UserNo:    users[i].UserNo,
			UserName:  users[i].UserName,
			CollegeID: users[i].CollegeID,
			Status:    users[i].Status,
		}
		if users[i].College != nil {
			resp.CollegeName = users[i].College.CollegeName
		}
		result = append(result, resp)
	}
	return result, total, nil
}

func (s *userService) Update(ctx context.Context, id int64, req *dto.UpdateUserRequest) (*dto.UserResponse, error) {
	user, err := s.repo.User.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperrors.NotFound("用户不存在")
		}
		return nil, apperrors.Unavailable("查询用户失败", err)
	}

	if req.UserName != nil {
		user.UserName = *req.UserName
	}
	if req.CollegeID != nil {
		if _, err := s.repo.College.GetByID(ctx, *req.CollegeID); err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return nil, apperrors.NotFound("学院不存在")
			}
			return nil, apperrors.Unavailable("查询学院失败", err)
		}
		user.CollegeID = req.CollegeID
	}
	if req.Status != nil {
		user.Status = *req.Status
	}

	if err := s.repo.User.Update(ctx, user); err != nil {
		return nil, apperrors.Unavailable("更新用户失败", err)
	}
	return s.toUserResponse(ctx, user)
}

func (s *userService) Delete(ctx context.Context, id int64) error {
	if _, err := s.repo.User.GetByID(ctx, id); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return apperrors.NotFound("用户不存在")
		}
		return apperrors.Unavailable("查询用户失败", err)
	}
	if err := s.repo.User.SoftDelete(ctx, id); err != nil {
		return apperrors.Unavailable("删除用户失败", err)
	}
	s.logger.Info("用户已删除", zap.Int64("user_id", id))
	return nil
}

// AssignRoles 整体替换用户角色集合
func (s *userService) AssignRoles(ctx context.Context, id int64, req *dto.AssignRolesRequest) error {
	user, err := s.repo.User.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return apperrors.NotFound("用户不存在")
		}
		return apperrors.Unavailable("查询用户失败", err)
	}

	wanted := make(map[string]int64, len(req.RoleCodes))
	for _, code := range req.RoleCodes {
		role, err := s.repo.Role.GetByCode(ctx, code)
		if err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return apperrors.NotFound("角色不存在: " + code)
			}
			return apperrors.Unavailable("查询角色失败", err)
		}
		wanted[code] = role.ID
	}

	current, err := s.repo.User.RoleCodes(ctx, user.ID)
	if err != nil {
		return apperrors.Unavailable("查询用户角色失败", err)
	}
	currentSet := make(map[string]struct{}, len(current))
	for _, code := range current {
		currentSet[code] = struct{}{}
	}

	for code, roleID := range wanted {
		if _, ok := currentSet[code]; !ok {
			if err := s.repo.User.AssignRole(ctx, user.ID, roleID); err != nil {
				return apperrors.Unavailable("分配角色失败", err)
			}
		}
	}
	for _, code := range current {
		if _, ok := wanted[code]; !ok {
			role, err := s.repo.Role.GetByCode(ctx, code)
			if err != nil {
				continue
			}
			if err := s.repo.User.RevokeRole(ctx, user.ID, role.ID); err != nil {
				return apperrors.Unavailable("撤销角色失败", err)
			}
		}
	}

	s.logger.Info("用户角色已更新", zap.Int64("user_id", id), zap.Strings("role_codes", req.RoleCodes))
	return nil
}

func (s *userService) toUserResponse(ctx context.Context, user *model.User) (*dto.UserResponse, error) {
	roleCodes, err := s.repo.User.RoleCodes(ctx, user.ID)
	if err != nil {
		return nil, apperrors.Unavailable("查询用户角色失败", err)
	}
	resp := &dto.UserResponse{
		ID:        user.ID,
		UserNo:    user.UserNo,
		UserName:  user.UserName,
		CollegeID: user.CollegeID,
		Status:    user.Status,
		RoleCodes: roleCodes,
	}
	if user.College != nil {
		resp.CollegeName = user.College.CollegeName
	}
	return resp, nil
}
