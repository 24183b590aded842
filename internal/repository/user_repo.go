package repository

import (
	"context"

	"gorm.io/gorm"

	"teaching-eval/backend/internal/model"
)

// UserRepository 用户数据访问接口
// 角色编码/权限编码查询也挂在这里：它们是"某个用户的"派生视图
type UserRepository interface {
	Create(ctx context.Context, user *model.User) error
	GetByID(ctx context.Context, id int64) (*model.User, error)
	GetByUserNo(ctx context.Context, userNo string) (*model.User, error)
	Update(ctx context.Context, user *model.User) error
	SoftDelete(ctx context.Context, id int64) error
	List(ctx context.Context, collegeID *int64, offset, limit int) ([]model.User, int64, error)
	ListByColleges(ctx context.Context, collegeIDs []int64) ([]model.User, error)

	// 角色/权限派生视图
	RoleCodes(ctx context.Context, userID int64) ([]string, error)
	PermissionCodes(ctx context.Context, userID int64) ([]string, error)
	AssignRole(ctx context.Context, userID, roleID int64) error
	RevokeRole(ctx context.Context, userID, roleID int64) error
}

type userRepo struct {
	db *gorm.DB
}

// NewUserRepo 创建 UserRepository 实例
func NewUserRepo(db *gorm.DB) UserRepository {
	return &userRepo{db: db}
}

func (r *userRepo) Create(ctx context.Context, user *model.User) error {
	return r.db.WithContext(ctx).Create(user).Error
}

func (r *userRepo) GetByID(ctx context.Context, id int64) (*model.User, error) {
	var user model.User
	err := r.db.WithContext(ctx).
		Preload("College").
		Where("id = ? AND is_delete = false", id).
		First(&user).Error
	if err != nil {
		return nil, err
	}
	return &user, nil
}

func (r *userRepo) GetByUserNo(ctx context.Context, userNo string) (*model.User, error) {
	var user model.User
	err := r.db.WithContext(ctx).
		Preload("College").
		Where("user_no = ? AND is_delete = false", userNo).
		First(&user).Error
	if err != nil {
		return nil, err
	}
	return &user, nil
}

func (r *userRepo) Update(ctx context.Context, user *model.User) error {
	return r.db.WithContext(ctx).Save(user).Error
}

func (r *userRepo) SoftDelete(ctx context.Context, id int64) error {
	return r.db.WithContext(ctx).Model(&model.User{}).
		Where("id = ?", id).
		Update("is_delete", true).Error
}

func (r *userRepo) List(ctx context.Context, collegeID *int64, offset, limit int) ([]model.User, int64, error) {
	var users []model.User
	var total int64

	db := r.db.WithContext(ctx).Model(&model.User{}).Where("is_delete = false")
	if collegeID != nil {
		db = db.Where("college_id = ?", *collegeID)
	}

	if err := db.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	if err := db.Preload("College").
		Offset(offset).Limit(limit).
		Order("id ASC").
		Find(&users).Error; err != nil {
		return nil, 0, err
	}

	return users, total, nil
}

func (r *userRepo) ListByColleges(ctx context.Context, collegeIDs []int64) ([]model.User, error) {
	if len(collegeIDs) == 0 {
		return nil, nil
	}
	var users []model.User
	err := r.db.WithContext(ctx).
		Where("college_id IN ? AND is_delete = false", collegeIDs).
		Order("id ASC").
		Find(&users).Error
	return users, err
}

func (r *userRepo) RoleCodes(ctx context.Context, userID int64) ([]string, error) {
	var codes []string
	err := r.db.WithContext(ctx).
		Model(&model.Role{}).
		Joins("JOIN user_roles ON user_roles.role_id = roles.id").
		Where("user_roles.user_id = ? AND roles.is_delete = false AND roles.status = 1", userID).
		Pluck("roles.role_code", &codes).Error
	return codes, err
}

func (r *userRepo) PermissionCodes(ctx context.Context, userID int64) ([]string, error) {
	// 用户 → 角色 → 权限 的并集，纯查询 + 集合运算
	var codes []string
	err := r.db.WithContext(ctx).
		Model(&model.Permission{}).
		Distinct("permissions.permission_code").
		Joins("JOIN role_permissions ON role_permissions.permission_id = permissions.id").
		Joins("JOIN user_roles ON user_roles.role_id = role_permissions.role_id").
		Where("user_roles.user_id = ? AND permissions.is_delete = false", userID).
		Pluck("permissions.permission_code", &codes).Error
	return codes, err
}

func (r *userRepo) AssignRole(ctx context.Context, userID, roleID int64) error {
	return r.db.WithContext(ctx).Create(&model.UserRole{UserID: userID, RoleID: roleID}).Error
}

func (r *userRepo) RevokeRole(ctx context.Context, userID, roleID int64) error {
	return r.db.WithContext(ctx).
		Where("user_id = ? AND role_id = ?", userID, roleID).
		Delete(&model.UserRole{}).Error
}
