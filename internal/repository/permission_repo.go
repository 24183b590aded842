package repository

import (
	"context"

	"gorm.io/gorm"

	"teaching-eval/backend/internal/model"
)

// PermissionRepository 权限字典数据访问接口
type PermissionRepository interface {
	Create(ctx context.Context, perm *model.Permission) error
	GetByCode(ctx context.Context, code string) (*model.Permission, error)
	List(ctx context.Context) ([]model.Permission, error)
	SoftDelete(ctx context.Context, id int64) error
}

type permissionRepo struct {
	db *gorm.DB
}

// NewPermissionRepo 创建 PermissionRepository 实例
func NewPermissionRepo(db *gorm.DB) PermissionRepository {
	return &permissionRepo{db: db}
}

func (r *permissionRepo) Create(ctx context.Context, perm *model.Permission) error {
	return r.db.WithContext(ctx).Create(perm).Error
}

func (r *permissionRepo) GetByCode(ctx context.Context, code string) (*model.Permission, error) {
	var perm model.Permission
	err := r.db.WithContext(ctx).
		Where("permission_code = ? AND is_delete = false", code).
		First(&perm).Error
	if err != nil {
		return nil, err
	}
	return &perm, nil
}

// List 列出全部存活权限，按树形展示排序（父节点在前）
func (r *permissionRepo) List(ctx context.Context) ([]model.Permission, error) {
	var perms []model.Permission
	err := r.db.WithContext(ctx).
		Where("is_delete = false").
		Order("parent_id ASC NULLS FIRST, sort_order ASC, id ASC").
		Find(&perms).Error
	return perms, err
}

func (r *permissionRepo) SoftDelete(ctx context.Context, id int64) error {
	return r.db.WithContext(ctx).Model(&model.Permission{}).
		Where("id = ?", id).
		Update("is_delete", true).Error
}
