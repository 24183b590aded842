package repository

import (
	"context"
	"time"

	"gorm.io/gorm"

	"teaching-eval/backend/internal/model"
)

// EvaluationListQuery 评教记录列表查询条件
type EvaluationListQuery struct {
	ListenTeacherID *int64
	TeachTeacherID  *int64
	TimetableID     *int64
	Status          *int
	ScoreLevel      string
	EvalSource      string  // peer | supervisor；空串不过滤
	CollegeIDs      []int64 // 按课表学院过滤（行级范围）；空切片表示不过滤
	StartDate       *time.Time
	EndDate         *time.Time
	AcademicYear    string // 非空时联 timetables 过滤
	Semester        int
	Offset          int
	Limit           int
}

// EvaluationStatsQuery 统计聚合取数条件
// 统计在 Service 层内存聚合，Repository 只负责取已过滤的记录集
type EvaluationStatsQuery struct {
	TeachTeacherID  *int64
	ListenTeacherID *int64 // 督导口径统计时限定提交者
	CollegeIDs     []int64 // 按课表学院过滤；空切片表示不过滤
	AcademicYear   string
	Semester       int
	Statuses       []int
	SupervisorOnly bool // 仅督导提交口径（eval_source=supervisor 或 NULL）
}

// EvaluationRepository 评教记录数据访问接口
type EvaluationRepository interface {
	Create(ctx context.Context, ev *model.TeachingEvaluation) error
	GetByID(ctx context.Context, id int64) (*model.TeachingEvaluation, error)
	Update(ctx context.Context, ev *model.TeachingEvaluation) error
	SoftDelete(ctx context.Context, id int64) error

	// ExistsLive 存活行重复检查：(timetable, listener, listen_date)
	ExistsLive(ctx context.Context, timetableID, listenTeacherID int64, listenDate time.Time) (bool, error)

	// FindPendingPlaceholder 查找任务分配产生的待评教占位记录
	// （status=2 且尚无得分），提交评教时就地填充而非新插入
	FindPendingPlaceholder(ctx context.Context, timetableID, listenTeacherID int64) (*model.TeachingEvaluation, error)

	List(ctx context.Context, q EvaluationListQuery) ([]model.TeachingEvaluation, int64, error)
	ListForStats(ctx context.Context, q EvaluationStatsQuery) ([]model.TeachingEvaluation, error)
}

type evaluationRepo struct {
	db *gorm.DB
}

// NewEvaluationRepo 创建 EvaluationRepository 实例
func NewEvaluationRepo(db *gorm.DB) EvaluationRepository {
	return &evaluationRepo{db: db}
}

func (r *evaluationRepo) Create(ctx context.Context, ev *model.TeachingEvaluation) error {
	return r.db.WithContext(ctx).Create(ev).Error
}

func (r *evaluationRepo) GetByID(ctx context.Context, id int64) (*model.TeachingEvaluation, error) {
	var ev model.TeachingEvaluation
	err := r.db.WithContext(ctx).
		Preload("Timetable").
		Preload("TeachTeacher").
		Preload("ListenTeacher").
		Where("id = ? AND is_delete = false", id).
		First(&ev).Error
	if err != nil {
		return nil, err
	}
	return &ev, nil
}

func (r *evaluationRepo) Update(ctx context.Context, ev *model.TeachingEvaluation) error {
	return r.db.WithContext(ctx).Save(ev).Error
}

func (r *evaluationRepo) SoftDelete(ctx context.Context, id int64) error {
	return r.db.WithContext(ctx).Model(&model.TeachingEvaluation{}).
		Where("id = ?", id).
		Update("is_delete", true).Error
}

func (r *evaluationRepo) ExistsLive(ctx context.Context, timetableID, listenTeacherID int64, listenDate time.Time) (bool, error) {
	var count int64
	err := r.db.WithContext(ctx).Model(&model.TeachingEvaluation{}).
		Where("timetable_id = ? AND listen_teacher_id = ? AND listen_date = ? AND is_delete = false",
			timetableID, listenTeacherID, listenDate).
		Count(&count).Error
	return count > 0, err
}

func (r *evaluationRepo) FindPendingPlaceholder(ctx context.Context, timetableID, listenTeacherID int64) (*model.TeachingEvaluation, error) {
	var ev model.TeachingEvaluation
	err := r.db.WithContext(ctx).
		Where("timetable_id = ? AND listen_teacher_id = ? AND status = ? AND total_score = 0 AND is_delete = false",
			timetableID, listenTeacherID, model.EvalStatusPendingReview).
		Order("id ASC").
		First(&ev).Error
	if err != nil {
		return nil, err
	}
	return &ev, nil
}

func (r *evaluationRepo) List(ctx context.Context, q EvaluationListQuery) ([]model.TeachingEvaluation, int64, error) {
	db := r.db.WithContext(ctx).Model(&model.TeachingEvaluation{}).
		Where("teaching_evaluations.is_delete = false")

	if q.ListenTeacherID != nil {
		db = db.Where("teaching_evaluations.listen_teacher_id = ?", *q.ListenTeacherID)
	}
	if q.TeachTeacherID != nil {
		db = db.Where("teaching_evaluations.teach_teacher_id = ?", *q.TeachTeacherID)
	}
	if q.TimetableID != nil {
		db = db.Where("teaching_evaluations.timetable_id = ?", *q.TimetableID)
	}
	if q.Status != nil {
		db = db.Where("teaching_evaluations.status = ?", *q.Status)
	}
	if q.ScoreLevel != "" {
		db = db.Where("teaching_evaluations.score_level = ?", q.ScoreLevel)
	}
	if q.EvalSource != "" {
		db = db.Where("teaching_evaluations.eval_source = ?", q.EvalSource)
	}
	if q.StartDate != nil {
		db = db.Where("teaching_evaluations.listen_date >= ?", *q.StartDate)
	}
	if q.EndDate != nil {
		db = db.Where("teaching_evaluations.listen_date <= ?", *q.EndDate)
	}
	if (q.AcademicYear != "" && q.Semester != 0) || len(q.CollegeIDs) > 0 {
		db = db.Joins("JOIN timetables ON timetables.id = teaching_evaluations.timetable_id")
		if q.AcademicYear != "" && q.Semester != 0 {
			db = db.Where("timetables.academic_year = ? AND timetables.semester = ?", q.AcademicYear, q.Semester)
		}
		if len(q.CollegeIDs) > 0 {
			db = db.Where("timetables.college_id IN ?", q.CollegeIDs)
		}
	}

	var total int64
	if err := db.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	var items []model.TeachingEvaluation
	if err := db.Preload("Timetable").
		Preload("TeachTeacher").
		Preload("ListenTeacher").
		Offset(q.Offset).Limit(q.Limit).
		Order("teaching_evaluations.submit_time DESC").
		Find(&items).Error; err != nil {
		return nil, 0, err
	}
	return items, total, nil
}

func (r *evaluationRepo) ListForStats(ctx context.Context, q EvaluationStatsQuery) ([]model.TeachingEvaluation, error) {
	db := r.db.WithContext(ctx).Model(&model.TeachingEvaluation{}).
		Joins("JOIN timetables ON timetables.id = teaching_evaluations.timetable_id").
		Where("teaching_evaluations.is_delete = false").
		Where("timetables.is_delete = false")

	if q.TeachTeacherID != nil {
		db = db.Where("teaching_evaluations.teach_teacher_id = ?", *q.TeachTeacherID)
	}
	if q.ListenTeacherID != nil {
		db = db.Where("teaching_evaluations.listen_teacher_id = ?", *q.ListenTeacherID)
	}
	if len(q.CollegeIDs) > 0 {
		db = db.Where("timetables.college_id IN ?", q.CollegeIDs)
	}
	if q.AcademicYear != "" {
		db = db.Where("timetables.academic_year = ?", q.AcademicYear)
	}
	if q.Semester != 0 {
		db = db.Where("timetables.semester = ?", q.Semester)
	}
	if len(q.Statuses) > 0 {
		db = db.Where("teaching_evaluations.status IN ?", q.Statuses)
	}
	if q.SupervisorOnly {
		db = db.Where("teaching_evaluations.eval_source = ? OR teaching_evaluations.eval_source IS NULL",
			model.EvalSourceSupervisor)
	}

	var items []model.TeachingEvaluation
	err := db.Preload("Timetable").
		Preload("Timetable.College").
		Preload("TeachTeacher").
		Order("teaching_evaluations.id ASC").
		Find(&items).Error
	return items, err
}
