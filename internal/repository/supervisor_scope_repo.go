package repository

import (
	"context"

	"gorm.io/gorm"

	"teaching-eval/backend/internal/model"
)

// SupervisorScopeRepository 督导负责范围数据访问接口
type SupervisorScopeRepository interface {
	// ListLive 查询某督导全部存活范围行
	ListLive(ctx context.Context, supervisorUserID int64) ([]model.SupervisorScope, error)
	// Replace 整体替换范围：单事务内软删除全部旧存活行后插入新行，
	// 并发读取不会观察到中途的空范围
	Replace(ctx context.Context, supervisorUserID int64, scopes []model.SupervisorScope) error
}

type supervisorScopeRepo struct {
	db *gorm.DB
}

// NewSupervisorScopeRepo 创建 SupervisorScopeRepository 实例
func NewSupervisorScopeRepo(db *gorm.DB) SupervisorScopeRepository {
	return &supervisorScopeRepo{db: db}
}

func (r *supervisorScopeRepo) ListLive(ctx context.Context, supervisorUserID int64) ([]model.SupervisorScope, error) {
	var scopes []model.SupervisorScope
	err := r.db.WithContext(ctx).
		Where("supervisor_user_id = ? AND is_delete = false", supervisorUserID).
		Order("id ASC").
		Find(&scopes).Error
	return scopes, err
}

func (r *supervisorScopeRepo) Replace(ctx context.Context, supervisorUserID int64, scopes []model.SupervisorScope) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Model(&model.SupervisorScope{}).
			Where("supervisor_user_id = ? AND is_delete = false", supervisorUserID).
			Update("is_delete", true).Error; err != nil {
			return err
		}
		if len(scopes) > 0 {
			for i := range scopes {
				scopes[i].SupervisorUserID = supervisorUserID
				scopes[i].IsDelete = false
			}
			if err := tx.Create(&scopes).Error; err != nil {
				return err
			}
		}
		return nil
	})
}
