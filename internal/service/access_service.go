package service

import (
	"context"
	"errors"

	"go.uber.org/zap"
	"gorm.io/gorm"

	"teaching-eval/backend/internal/dto"
	"teaching-eval/backend/internal/model"
	"teaching-eval/backend/internal/repository"
	"teaching-eval/backend/pkg/apperrors"
)

// Principal 请求主体：中间件从 JWT 解出，角色权限在校验时实时查库
type Principal struct {
	UserID int64
	UserNo string
}

// Decision 通过校验后的授权决策，携带主体的角色与权限集合
type Decision struct {
	Roles       []string
	Permissions []string
}

// IsSchoolAdmin 是否具备校级管理员角色（行级范围过滤的旁路条件）
func (d *Decision) IsSchoolAdmin() bool {
	for _, r := range d.Roles {
		if r == model.RoleSchoolAdmin {
			return true
		}
	}
	return false
}

// ResolvedScope 督导生效范围
type ResolvedScope struct {
	CollegeIDs      []int64
	ResearchRoomIDs []int64
	Fallback        bool // 由所属学院回落得到
}

// Empty 两个集合均为空：调用方必须视为"无可见数据"，而非"不过滤"
func (s *ResolvedScope) Empty() bool {
	return len(s.CollegeIDs) == 0 && len(s.ResearchRoomIDs) == 0
}

// AccessService 授权与范围解析业务接口
type AccessService interface {
	// Authorize 两段校验：角色命中任一 + 权限全部具备；
	// 任一不满足返回带缺失明细的 Forbidden
	Authorize(ctx context.Context, p *Principal, rolesAny []string, permsAll []string) (*Decision, error)

	// ResolveScope 解析督导负责范围；无显式范围行时回落到所属学院。
	// 解析本身不报错：空范围是合法的（限制性）结果
	ResolveScope(ctx context.Context, supervisorUserID int64) (*ResolvedScope, error)

	// EffectiveCollegeIDs 范围归一成学院 ID 集合：显式学院 ∪ 教研室所属学院
	EffectiveCollegeIDs(ctx context.Context, scope *ResolvedScope) ([]int64, error)

	// CheckCollegeFilter 行级范围校验：请求的学院过滤必须是范围子集。
	// school_admin 旁路；requested 为空时返回范围本身作为隐式过滤。
	// 返回值 nil 表示不过滤（仅校级管理员）
	CheckCollegeFilter(ctx context.Context, p *Principal, d *Decision, requested []int64) ([]int64, error)

	// ReplaceScope 整体替换督导范围（单事务软删旧行 + 插入新行）
	ReplaceScope(ctx context.Context, supervisorUserID int64, req *dto.ReplaceScopeRequest) (*dto.ScopeResponse, error)

	// GetScope 查询督导当前生效范围
	GetScope(ctx context.Context, supervisorUserID int64) (*dto.ScopeResponse, error)
}

type accessService struct {
	repo   *repository.Repository
	logger *zap.Logger
}

// NewAccessService 创建 AccessService 实例
func NewAccessService(repo *repository.Repository, logger *zap.Logger) AccessService {
	return &accessService{repo: repo, logger: logger}
}

// ────────────────────── Authorize ──────────────────────

func (s *accessService) Authorize(ctx context.Context, p *Principal, rolesAny []string, permsAll []string) (*Decision, error) {
	roles, err := s.repo.User.RoleCodes(ctx, p.UserID)
	if err != nil {
		s.logger.Error("查询用户角色失败", zap.Int64("user_id", p.UserID), zap.Error(err))
		return nil, apperrors.Unavailable("查询用户角色失败", err)
	}

	// 角色校验：要求为空即通过，否则至少命中一个
	if len(rolesAny) > 0 {
		hit := false
		roleSet := make(map[string]struct{}, len(roles))
		for _, r := range roles {
			roleSet[r] = struct{}{}
		}
		for _, want := range rolesAny {
			if _, ok := roleSet[want]; ok {
				hit = true
				break
			}
		}
		if !hit {
			return nil, apperrors.MissingRoles(rolesAny)
		}
	}

	perms, err := s.repo.User.PermissionCodes(ctx, p.UserID)
	if err != nil {
		s.logger.Error("查询用户权限失败", zap.Int64("user_id", p.UserID), zap.Error(err))
		return nil, apperrors.Unavailable("查询用户权限失败", err)
	}

	// 权限校验：角色可达权限并集 ⊇ 要求集合
	if len(permsAll) > 0 {
		permSet := make(map[string]struct{}, len(perms))
		for _, code := range perms {
			permSet[code] = struct{}{}
		}
		var missing []string
		for _, want := range permsAll {
			if _, ok := permSet[want]; !ok {
				missing = append(missing, want)
			}
		}
		if len(missing) > 0 {
			return nil, apperrors.MissingPermissions(missing)
		}
	}

	return &Decision{Roles: roles, Permissions: perms}, nil
}

// ────────────────────── ResolveScope ──────────────────────

func (s *accessService) ResolveScope(ctx context.Context, supervisorUserID int64) (*ResolvedScope, error) {
	rows, err := s.repo.Scope.ListLive(ctx, supervisorUserID)
	if err != nil {
		return nil, apperrors.Unavailable("查询督导范围失败", err)
	}

	scope := &ResolvedScope{}
	for _, row := range rows {
		switch row.ScopeType {
		case model.ScopeTypeCollege:
			scope.CollegeIDs = append(scope.CollegeIDs, row.ScopeID)
		case model.ScopeTypeResearchRoom:
			scope.ResearchRoomIDs = append(scope.ResearchRoomIDs, row.ScopeID)
		}
	}

	if len(scope.CollegeIDs) > 0 || len(scope.ResearchRoomIDs) > 0 {
		return scope, nil
	}

	// 无显式范围：回落到所属学院，历史账号无需配置范围表即可工作
	user, err := s.repo.User.GetByID(ctx, supervisorUserID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return scope, nil // 用户不存在按空范围处理，由上层权限校验兜底
		}
		return nil, apperrors.Unavailable("查询用户失败", err)
	}
	if user.CollegeID != nil {
		scope.CollegeIDs = []int64{*user.CollegeID}
		scope.Fallback = true
	}
	return scope, nil
}

func (s *accessService) EffectiveCollegeIDs(ctx context.Context, scope *ResolvedScope) ([]int64, error) {
	ids := make([]int64, 0, len(scope.CollegeIDs))
	seen := make(map[int64]struct{}, len(scope.CollegeIDs))
	for _, id := range scope.CollegeIDs {
		if _, ok := seen[id]; !ok {
			seen[id] = struct{}{}
			ids = append(ids, id)
		}
	}

	if len(scope.ResearchRoomIDs) > 0 {
		roomColleges, err := s.repo.ResearchRoom.CollegeIDsOf(ctx, scope.ResearchRoomIDs)
		if err != nil {
			return nil, apperrors.Unavailable("解析教研室所属学院失败", err)
		}
		for _, id := range roomColleges {
			if _, ok := seen[id]; !ok {
				seen[id] = struct{}{}
				ids = append(ids, id)
			}
		}
	}
	return ids, nil
}

// ────────────────────── CheckCollegeFilter ──────────────────────

func (s *accessService) CheckCollegeFilter(ctx context.Context, p *Principal, d *Decision, requested []int64) ([]int64, error) {
	if d.IsSchoolAdmin() {
		if len(requested) > 0 {
			return requested, nil
		}
		return nil, nil // 全量可见，不加过滤
	}

	scope, err := s.ResolveScope(ctx, p.UserID)
	if err != nil {
		return nil, err
	}
	allowed, err := s.EffectiveCollegeIDs(ctx, scope)
	if err != nil {
		return nil, err
	}

	if len(requested) == 0 {
		if len(allowed) == 0 {
			// 角色校验通过但无任何范围：看不到任何数据
			return nil, apperrors.OutOfScope("未配置评价范围，无可见数据")
		}
		return allowed, nil
	}

	allowedSet := make(map[int64]struct{}, len(allowed))
	for _, id := range allowed {
		allowedSet[id] = struct{}{}
	}
	for _, id := range requested {
		if _, ok := allowedSet[id]; !ok {
			return nil, apperrors.OutOfScope("请求的学院超出负责范围")
		}
	}
	return requested, nil
}

// ────────────────────── ReplaceScope / GetScope ──────────────────────

func (s *accessService) ReplaceScope(ctx context.Context, supervisorUserID int64, req *dto.ReplaceScopeRequest) (*dto.ScopeResponse, error) {
	if _, err := s.repo.User.GetByID(ctx, supervisorUserID); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperrors.NotFound("督导不存在")
		}
		return nil, apperrors.Unavailable("查询用户失败", err)
	}

	// 同一请求内去重，避免撞存活行唯一约束
	seen := make(map[[2]interface{}]struct{}, len(req.Scopes))
	scopes := make([]model.SupervisorScope, 0, len(req.Scopes))
	for _, item := range req.Scopes {
		key := [2]interface{}{item.ScopeType, item.ScopeID}
		if _, ok := seen[key]; ok {
			continue
		}
		seen[key] = struct{}{}

		// 引用校验：范围目标必须存在
		switch item.ScopeType {
		case model.ScopeTypeCollege:
			if _, err := s.repo.College.GetByID(ctx, item.ScopeID); err != nil {
				if errors.Is(err, gorm.ErrRecordNotFound) {
					return nil, apperrors.NotFound("学院不存在")
				}
				return nil, apperrors.Unavailable("查询学院失败", err)
			}
		case model.ScopeTypeResearchRoom:
			if _, err := s.repo.ResearchRoom.GetByID(ctx, item.ScopeID); err != nil {
				if errors.Is(err, gorm.ErrRecordNotFound) {
					return nil, apperrors.NotFound("教研室不存在")
				}
				return nil, apperrors.Unavailable("查询教研室失败", err)
			}
		}

		scopes = append(scopes, model.SupervisorScope{
			SupervisorUserID: supervisorUserID,
			ScopeType:        item.ScopeType,
			ScopeID:          item.ScopeID,
		})
	}

	if err := s.repo.Scope.Replace(ctx, supervisorUserID, scopes); err != nil {
		s.logger.Error("替换督导范围失败", zap.Int64("supervisor_user_id", supervisorUserID), zap.Error(err))
		return nil, apperrors.Unavailable("替换督导范围失败", err)
	}

	s.logger.Info("督导范围已替换",
		zap.Int64("supervisor_user_id", supervisorUserID),
		zap.Int("scope_count", len(scopes)),
	)

	return s.GetScope(ctx, supervisorUserID)
}

func (s *accessService) GetScope(ctx context.Context, supervisorUserID int64) (*dto.ScopeResponse, error) {
	scope, err := s.ResolveScope(ctx, supervisorUserID)
	if err != nil {
		return nil, err
	}
	resp := &dto.ScopeResponse{
		SupervisorUserID: supervisorUserID,
		CollegeIDs:       scope.CollegeIDs,
		ResearchRoomIDs:  scope.ResearchRoomIDs,
		Fallback:         scope.Fallback,
	}
	if resp.CollegeIDs == nil {
		resp.CollegeIDs = []int64{}
	}
	if resp.ResearchRoomIDs == nil {
		resp.ResearchRoomIDs = []int64{}
	}
	return resp, nil
}
