package repository

import (
	"context"

	"gorm.io/gorm"

	"teaching-eval/backend/internal/model"
)

// DimensionRepository 评价维度配置数据访问接口（核心流程只读）
type DimensionRepository interface {
	ListActive(ctx context.Context) ([]model.EvaluationDimension, error)
	GetByCode(ctx context.Context, code string) (*model.EvaluationDimension, error)
}

type dimensionRepo struct {
	db *gorm.DB
}

// NewDimensionRepo 创建 DimensionRepository 实例
func NewDimensionRepo(db *gorm.DB) DimensionRepository {
	return &dimensionRepo{db: db}
}

func (r *dimensionRepo) ListActive(ctx context.Context) ([]model.EvaluationDimension, error) {
	var dims []model.EvaluationDimension
	err := r.db.WithContext(ctx).
		Where("status = 1 AND is_delete = false").
		Order("sort_order ASC, id ASC").
		Find(&dims).Error
	return dims, err
}

func (r *dimensionRepo) GetByCode(ctx context.Context, code string) (*model.EvaluationDimension, error) {
	var dim model.EvaluationDimension
	err := r.db.WithContext(ctx).
		Where("dimension_code = ? AND is_delete = false", code).
		First(&dim).Error
	if err != nil {
		return nil, err
	}
	return &dim, nil
}
