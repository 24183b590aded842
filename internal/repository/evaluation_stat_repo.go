package repository

import (
	"context"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"teaching-eval/backend/internal/model"
)

// EvaluationStatRepository 统计快照数据访问接口
// 快照是纯缓存：可随时删除重算，不作为任何查询的事实来源
type EvaluationStatRepository interface {
	UpsertTeacherStat(ctx context.Context, stat *model.TeacherEvaluationStat) error
	GetTeacherStat(ctx context.Context, teacherID int64, statYear string, statSemester int) (*model.TeacherEvaluationStat, error)
	UpsertCollegeStat(ctx context.Context, stat *model.CollegeEvaluationStat) error
	GetCollegeStat(ctx context.Context, collegeID int64, statYear string, statSemester int) (*model.CollegeEvaluationStat, error)
}

type evaluationStatRepo struct {
	db *gorm.DB
}

// NewEvaluationStatRepo 创建 EvaluationStatRepository 实例
func NewEvaluationStatRepo(db *gorm.DB) EvaluationStatRepository {
	return &evaluationStatRepo{db: db}
}

func (r *evaluationStatRepo) UpsertTeacherStat(ctx context.Context, stat *model.TeacherEvaluationStat) error {
	return r.db.WithContext(ctx).Clauses(clause.OnConflict{
		Columns: []clause.Column{{Name: "teacher_id"}, {Name: "stat_year"}, {Name: "stat_semester"}},
		DoUpdates: clause.AssignmentColumns([]string{
			"college_id", "total_evaluation_num", "avg_total_score",
			"max_score", "min_score", "dimension_avg_scores", "updated_at",
		}),
	}).Create(stat).Error
}

func (r *evaluationStatRepo) GetTeacherStat(ctx context.Context, teacherID int64, statYear string, statSemester int) (*model.TeacherEvaluationStat, error) {
	var stat model.TeacherEvaluationStat
	err := r.db.WithContext(ctx).
		Where("teacher_id = ? AND stat_year = ? AND stat_semester = ?", teacherID, statYear, statSemester).
		First(&stat).Error
	if err != nil {
		return nil, err
	}
	return &stat, nil
}

func (r *evaluationStatRepo) UpsertCollegeStat(ctx context.Context, stat *model.CollegeEvaluationStat) error {
	return r.db.WithContext(ctx).Clauses(clause.OnConflict{
		Columns: []clause.Column{{Name: "college_id"}, {Name: "stat_year"}, {Name: "stat_semester"}},
		DoUpdates: clause.AssignmentColumns([]string{
			"total_evaluation_num", "avg_total_score", "dimension_avg_scores", "updated_at",
		}),
	}).Create(stat).Error
}

func (r *evaluationStatRepo) GetCollegeStat(ctx context.Context, collegeID int64, statYear string, statSemester int) (*model.CollegeEvaluationStat, error) {
	var stat model.CollegeEvaluationStat
	err := r.db.WithContext(ctx).
		Where("college_id = ? AND stat_year = ? AND stat_semester = ?", collegeID, statYear, statSemester).
		First(&stat).Error
	if err != nil {
		return nil, err
	}
	return &stat, nil
}
