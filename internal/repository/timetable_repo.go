package repository

import (
	"context"

	"gorm.io/gorm"

	"teaching-eval/backend/internal/model"
)

// TimetableManualKey 手工录入课表的自然复合键
// classroom 为空时以空串参与匹配
type TimetableManualKey struct {
	AcademicYear string
	Semester     int
	TeacherID    int64
	ClassName    string
	CourseName   string
	Weekday      int
	Period       int
	SectionTime  string
	WeekInfo     string
	Classroom    string
}

// TimetableQuery 课表列表查询条件
type TimetableQuery struct {
	TeacherID    *int64
	CollegeIDs   []int64 // 空切片表示不过滤
	AcademicYear string
	Semester     int
	Offset       int
	Limit        int
}

// TimetableRepository 课表数据访问接口
type TimetableRepository interface {
	Create(ctx context.Context, tt *model.Timetable) error
	GetByID(ctx context.Context, id int64) (*model.Timetable, error)
	Update(ctx context.Context, tt *model.Timetable) error
	SoftDelete(ctx context.Context, id int64) error

	// 幂等身份键匹配：命中即更新路径（包含已软删行，复活与否由调用方决定）
	FindBySyncIdentity(ctx context.Context, syncSource int, externalID string) (*model.Timetable, error)
	FindByManualKey(ctx context.Context, key TimetableManualKey) (*model.Timetable, error)

	List(ctx context.Context, q TimetableQuery) ([]model.Timetable, int64, error)
	// ListPendingForListener 某听课教师的待评课表：非本人授课且尚无其存活评教记录
	ListPendingForListener(ctx context.Context, listenerID int64, q TimetableQuery) ([]model.Timetable, int64, error)
	// ListCompletedForListener 某听课教师已评过的课表
	ListCompletedForListener(ctx context.Context, listenerID int64, q TimetableQuery) ([]model.Timetable, int64, error)
}

type timetableRepo struct {
	db *gorm.DB
}

// NewTimetableRepo 创建 TimetableRepository 实例
func NewTimetableRepo(db *gorm.DB) TimetableRepository {
	return &timetableRepo{db: db}
}

func (r *timetableRepo) Create(ctx context.Context, tt *model.Timetable) error {
	return r.db.WithContext(ctx).Create(tt).Error
}

func (r *timetableRepo) GetByID(ctx context.Context, id int64) (*model.Timetable, error) {
	var tt model.Timetable
	err := r.db.WithContext(ctx).
		Preload("Teacher").
		Preload("College").
		Where("id = ? AND is_delete = false", id).
		First(&tt).Error
	if err != nil {
		return nil, err
	}
	return &tt, nil
}

func (r *timetableRepo) Update(ctx context.Context, tt *model.Timetable) error {
	return r.db.WithContext(ctx).Save(tt).Error
}

func (r *timetableRepo) SoftDelete(ctx context.Context, id int64) error {
	return r.db.WithContext(ctx).Model(&model.Timetable{}).
		Where("id = ?", id).
		Update("is_delete", true).Error
}

func (r *timetableRepo) FindBySyncIdentity(ctx context.Context, syncSource int, externalID string) (*model.Timetable, error) {
	var tt model.Timetable
	err := r.db.WithContext(ctx).
		Where("sync_source = ? AND external_id = ?", syncSource, externalID).
		Order("is_delete ASC, id ASC"). // 有存活行优先命中存活行
		First(&tt).Error
	if err != nil {
		return nil, err
	}
	return &tt, nil
}

func (r *timetableRepo) FindByManualKey(ctx context.Context, key TimetableManualKey) (*model.Timetable, error) {
	var tt model.Timetable
	err := r.db.WithContext(ctx).
		Where(map[string]interface{}{
			"academic_year": key.AcademicYear,
			"semester":      key.Semester,
			"teacher_id":    key.TeacherID,
			"class_name":    key.ClassName,
			"course_name":   key.CourseName,
			"weekday":       key.Weekday,
			"period":        key.Period,
			"section_time":  key.SectionTime,
			"week_info":     key.WeekInfo,
			"classroom":     key.Classroom,
		}).
		Order("is_delete ASC, id ASC").
		First(&tt).Error
	if err != nil {
		return nil, err
	}
	return &tt, nil
}

func (r *timetableRepo) baseQuery(ctx context.Context, q TimetableQuery) *gorm.DB {
	db := r.db.WithContext(ctx).Model(&model.Timetable{}).Where("timetables.is_delete = false")
	if q.TeacherID != nil {
		db = db.Where("timetables.teacher_id = ?", *q.TeacherID)
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
	return db
}

func (r *timetableRepo) List(ctx context.Context, q TimetableQuery) ([]model.Timetable, int64, error) {
	db := r.baseQuery(ctx, q)

	var total int64
	if err := db.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	var items []model.Timetable
	if err := db.Preload("Teacher").Preload("College").
		Offset(q.Offset).Limit(q.Limit).
		Order("timetables.weekday ASC, timetables.period ASC, timetables.id ASC").
		Find(&items).Error; err != nil {
		return nil, 0, err
	}
	return items, total, nil
}

// evaluatedExists 构造"该课表已被此听课教师评教过"的 EXISTS 子查询
func (r *timetableRepo) evaluatedExists(listenerID int64) *gorm.DB {
	return r.db.Model(&model.TeachingEvaluation{}).
		Select("1").
		Where("teaching_evaluations.timetable_id = timetables.id").
		Where("teaching_evaluations.listen_teacher_id = ?", listenerID).
		Where("teaching_evaluations.is_delete = false")
}

func (r *timetableRepo) ListPendingForListener(ctx context.Context, listenerID int64, q TimetableQuery) ([]model.Timetable, int64, error) {
	db := r.baseQuery(ctx, q).
		Where("timetables.teacher_id <> ?", listenerID).
		Where("NOT EXISTS (?)", r.evaluatedExists(listenerID))

	var total int64
	if err := db.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	var items []model.Timetable
	if err := db.Preload("Teacher").Preload("College").
		Offset(q.Offset).Limit(q.Limit).
		Order("timetables.academic_year DESC, timetables.semester DESC, timetables.id ASC").
		Find(&items).Error; err != nil {
		return nil, 0, err
	}
	return items, total, nil
}

func (r *timetableRepo) ListCompletedForListener(ctx context.Context, listenerID int64, q TimetableQuery) ([]model.Timetable, int64, error) {
	db := r.baseQuery(ctx, q).
		Where("EXISTS (?)", r.evaluatedExists(listenerID))

	var total int64
	if err := db.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	var items []model.Timetable
	if err := db.Preload("Teacher").Preload("College").
		Offset(q.Offset).Limit(q.Limit).
		Order("timetables.academic_year DESC, timetables.semester DESC, timetables.id ASC").
		Find(&items).Error; err != nil {
		return nil, 0, err
	}
	return items, total, nil
}
