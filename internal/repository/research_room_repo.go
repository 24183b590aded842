package repository

import (
	"context"

	"gorm.io/gorm"

	"teaching-eval/backend/internal/model"
)

// ResearchRoomRepository 教研室数据访问接口
type ResearchRoomRepository interface {
	Create(ctx context.Context, room *model.ResearchRoom) error
	GetByID(ctx context.Context, id int64) (*model.ResearchRoom, error)
	GetByCode(ctx context.Context, code string) (*model.ResearchRoom, error)
	ListByCollege(ctx context.Context, collegeID int64) ([]model.ResearchRoom, error)
	Update(ctx context.Context, room *model.ResearchRoom) error
	SoftDelete(ctx context.Context, id int64) error
	// CollegeIDsOf 解析一组教研室所属的学院 ID（范围解析用）
	CollegeIDsOf(ctx context.Context, roomIDs []int64) ([]int64, error)
}

type researchRoomRepo struct {
	db *gorm.DB
}

// NewResearchRoomRepo 创建 ResearchRoomRepository 实例
func NewResearchRoomRepo(db *gorm.DB) ResearchRoomRepository {
	return &researchRoomRepo{db: db}
}

func (r *researchRoomRepo) Create(ctx context.Context, room *model.ResearchRoom) error {
	return r.db.WithContext(ctx).Create(room).Error
}

func (r *researchRoomRepo) GetByID(ctx context.Context, id int64) (*model.ResearchRoom, error) {
	var room model.ResearchRoom
	err := r.db.WithContext(ctx).
		Preload("College").
		Where("id = ? AND is_delete = false", id).
		First(&room).Error
	if err != nil {
		return nil, err
	}
	return &room, nil
}

func (r *researchRoomRepo) GetByCode(ctx context.Context, code string) (*model.ResearchRoom, error) {
	var room model.ResearchRoom
	err := r.db.WithContext(ctx).
		Where("room_code = ? AND is_delete = false", code).
		First(&room).Error
	if err != nil {
		return nil, err
	}
	return &room, nil
}

func (r *researchRoomRepo) ListByCollege(ctx context.Context, collegeID int64) ([]model.ResearchRoom, error) {
	var rooms []model.ResearchRoom
	err := r.db.WithContext(ctx).
		Where("college_id = ? AND is_delete = false", collegeID).
		Order("id ASC").
		Find(&rooms).Error
	return rooms, err
}

func (r *researchRoomRepo) Update(ctx context.Context, room *model.ResearchRoom) error {
	return r.db.WithContext(ctx).Save(room).Error
}

func (r *researchRoomRepo) SoftDelete(ctx context.Context, id int64) error {
	return r.db.WithContext(ctx).Model(&model.ResearchRoom{}).
		Where("id = ?", id).
		Update("is_delete", true).Error
}

func (r *researchRoomRepo) CollegeIDsOf(ctx context.Context, roomIDs []int64) ([]int64, error) {
	if len(roomIDs) == 0 {
		return nil, nil
	}
	var ids []int64
	err := r.db.WithContext(ctx).
		Model(&model.ResearchRoom{}).
		Distinct("college_id").
		Where("id IN ? AND is_delete = false", roomIDs).
		Pluck("college_id", &ids).Error
	return ids, err
}
