package repository

import (
	"context"

	"gorm.io/gorm"

	"teaching-eval/backend/internal/model"
)

// RoleRepository 角色数据访问接口
type RoleRepository interface {
	Create(ctx context.Context, role *model.Role) error
	GetByID(ctx context.Context, id int64) (*model.Role, error)
	GetByCode(ctx context.Context, code string) (*model.Role, error)
	List(ctx context.Context, maxLevel *int) ([]model.Role, error)
	Update(ctx context.Context, role *model.Role) error
	SoftDelete(ctx context.Context, id int64) error
	GrantPermission(ctx context.Context, roleID, permissionID int64) error
	RevokePermission(ctx context.Context, roleID, permissionID int64) error
}

type roleRepo struct {
	db *gorm.DB
}

// NewRoleRepo 创建 RoleRepository 实例
func NewRoleRepo(db *gorm.DB) RoleRepository {
	return &roleRepo{db: db}
}

func (r *roleRepo) Create(ctx context.Context, role *model.Role) error {
	return r.db.WithContext(ctx).Create(role).Error
}

func (r *roleRepo) GetByID(ctx context.Context, id int64) (*model.Role, error) {
	var role model.Role
	err := r.db.WithContext(ctx).
		Where("id = ? AND is_delete = false", id).
		First(&role).Error
	if err != nil {
		return nil, err
	}
	return &role, nil
}

func (r *roleRepo) GetByCode(ctx context.Context, code string) (*model.Role, error) {
	var role model.Role
	err := r.db.WithContext(ctx).
		Where("role_code = ? AND is_delete = false", code).
		First(&role).Error
	if err != nil {
		return nil, err
	}
	return &role, nil
}

// List 列出角色；maxLevel 非空时只返回 role_level >= maxLevel 的角色
// （数值越小权限越高，"不高于本级"即数值不小于本级）
func (r *roleRepo) List(ctx context.Context, maxLevel *int) ([]model.Role, error) {
	var roles []model.Role
	db := r.db.WithContext(ctx).Where("is_delete = false")
	if maxLevel != nil {
		db = db.Where("role_level >= ?", *maxLevel)
	}
	err := db.Order("role_level ASC, id ASC").Find(&roles).Error
	return roles, err
}

func (r *roleRepo) Update(ctx context.Context, role *model.Role) error {
	return r.db.WithContext(ctx).Save(role).Error
}

func (r *roleRepo) SoftDelete(ctx context.Context, id int64) error {
	return r.db.WithContext(ctx).Model(&model.Role{}).
		Where("id = ?", id).
		Update("is_delete", true).Error
}

func (r *roleRepo) GrantPermission(ctx context.Context, roleID, permissionID int64) error {
	return r.db.WithContext(ctx).Create(&model.RolePermission{RoleID: roleID, PermissionID: permissionID}).Error
}

func (r *roleRepo) RevokePermission(ctx context.Context, roleID, permissionID int64) error {
	return r.db.WithContext(ctx).
		Where("role_id = ? AND permission_id = ?", roleID, permissionID).
		Delete(&model.RolePermission{}).Error
}
