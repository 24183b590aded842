package repository

import (
	"context"

	"gorm.io/gorm"

	"teaching-eval/backend/internal/model"
)

// CollegeRepository 学院数据访问接口
type CollegeRepository interface {
	Create(ctx context.Context, college *model.College) error
	GetByID(ctx context.Context, id int64) (*model.College, error)
	GetByCode(ctx context.Context, code string) (*model.College, error)
	List(ctx context.Context) ([]model.College, error)
	Update(ctx context.Context, college *model.College) error
	SoftDelete(ctx context.Context, id int64) error
}

type collegeRepo struct {
	db *gorm.DB
}

// NewCollegeRepo 创建 CollegeRepository 实例
func NewCollegeRepo(db *gorm.DB) CollegeRepository {
	return &collegeRepo{db: db}
}

func (r *collegeRepo) Create(ctx context.Context, college *model.College) error {
	return r.db.WithContext(ctx).Create(college).Error
}

func (r *collegeRepo) GetByID(ctx context.Context, id int64) (*model.College, error) {
	var college model.College
	err := r.db.WithContext(ctx).
		Where("id = ? AND is_delete = false", id).
		First(&college).Error
	if err != nil {
		return nil, err
	}
	return &college, nil
}

func (r *collegeRepo) GetByCode(ctx context.Context, code string) (*model.College, error) {
	var college model.College
	err := r.db.WithContext(ctx).
		Where("college_code = ? AND is_delete = false", code).
		First(&college).Error
	if err != nil {
		return nil, err
	}
	return &college, nil
}

func (r *collegeRepo) List(ctx context.Context) ([]model.College, error) {
	var colleges []model.College
	err := r.db.WithContext(ctx).
		Where("is_delete = false").
		Order("id ASC").
		Find(&colleges).Error
	return colleges, err
}

func (r *collegeRepo) Update(ctx context.Context, college *model.College) error {
	return r.db.WithContext(ctx).Save(college).Error
}

func (r *collegeRepo) SoftDelete(ctx context.Context, id int64) error {
	return r.db.WithContext(ctx).Model(&model.College{}).
		Where("id = ?", id).
		Update("is_delete", true).Error
}
