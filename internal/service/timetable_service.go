package service

import (
	"context"
	"errors"

	"go.uber.org/zap"
	"gorm.io/gorm"

	"teaching-eval/backend/internal/dto"
	"teaching-eval/backend/internal/model"
	"teaching-eval/backend/internal/repository"
	"teaching-eval/backend/pkg/apperrors"
)

// TimetableService 课表业务接口
type TimetableService interface {
	// Upsert 幂等创建或更新：同一身份键（同步键或手工复合键）
	// 多次提交只产生一条存活行；并发撞键按更新重试一次
	Upsert(ctx context.Context, req *dto.UpsertTimetableRequest) (*dto.TimetableResponse, error)

	GetByID(ctx context.Context, id int64) (*dto.TimetableResponse, error)
	List(ctx context.Context, q repository.TimetableQuery) ([]dto.TimetableResponse, int64, error)
	Delete(ctx context.Context, id int64) error

	// ListPending / ListCompleted 某听课教师的待评/已评课表
	ListPending(ctx context.Context, listenerID int64, q repository.TimetableQuery) ([]dto.TimetableResponse, int64, error)
	ListCompleted(ctx context.Context, listenerID int64, q repository.TimetableQuery) ([]dto.TimetableResponse, int64, error)
}

type timetableService struct {
	repo   *repository.Repository
	logger *zap.Logger
}

// NewTimetableService 创建 TimetableService 实例
func NewTimetableService(repo *repository.Repository, logger *zap.Logger) TimetableService {
	return &timetableService{repo: repo, logger: logger}
}

// ────────────────────── Upsert ──────────────────────

func (s *timetableService) Upsert(ctx context.Context, req *dto.UpsertTimetableRequest) (*dto.TimetableResponse, error) {
	if _, err := s.repo.User.GetByID(ctx, req.TeacherID); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperrors.NotFound("授课教师不存在")
		}
		return nil, apperrors.Unavailable("查询教师失败", err)
	}
	if _, err := s.repo.College.GetByID(ctx, req.CollegeID); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperrors.NotFound("学院不存在")
		}
		return nil, apperrors.Unavailable("查询学院失败", err)
	}

	tt, err := s.upsertOnce(ctx, req)
	if errors.Is(err, gorm.ErrDuplicatedKey) {
		// 并发插入撞唯一键：对方已建行，重走一次匹配即命中更新路径
		tt, err = s.upsertOnce(ctx, req)
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			return nil, apperrors.Conflict("课表已存在，重复提交冲突")
		}
	}
	if err != nil {
		return nil, err
	}
	return s.toTimetableResponse(tt), nil
}

func (s *timetableService) upsertOnce(ctx context.Context, req *dto.UpsertTimetableRequest) (*model.Timetable, error) {
	existing, err := s.matchExisting(ctx, req)
	if err != nil {
		return nil, err
	}

	if existing != nil && !existing.IsDelete {
		// 更新路径：覆盖入参字段，is_delete 不参与（不隐式复活软删行）
		existing.AcademicYear = req.AcademicYear
		existing.Semester = req.Semester
		existing.TeacherID = req.TeacherID
		existing.CollegeID = req.CollegeID
		existing.ClassName = req.ClassName
		existing.CourseName = req.CourseName
		existing.CourseType = req.CourseType
		existing.Weekday = req.Weekday
		existing.Period = req.Period
		existing.SectionTime = req.SectionTime
		existing.WeekInfo = req.WeekInfo
		existing.Classroom = req.Classroom
		existing.SyncSource = req.SyncSource
		existing.ExternalID = req.ExternalID
		existing.SyncStatus = 1
		if err := s.repo.Timetable.Update(ctx, existing); err != nil {
			return nil, apperrors.Unavailable("更新课表失败", err)
		}
		return existing, nil
	}

	// 命中的是软删行或无匹配：插入新行（软删行保留，不复活）
	tt := &model.Timetable{
		AcademicYear: req.AcademicYear,
		Semester:     req.Semester,
		TeacherID:    req.TeacherID,
		CollegeID:    req.CollegeID,
		ClassName:    req.ClassName,
		CourseName:   req.CourseName,
		CourseType:   req.CourseType,
		Weekday:      req.Weekday,
		Period:       req.Period,
		SectionTime:  req.SectionTime,
		WeekInfo:     req.WeekInfo,
		Classroom:    req.Classroom,
		SyncSource:   req.SyncSource,
		ExternalID:   req.ExternalID,
		SyncStatus:   1,
	}
	if err := s.repo.Timetable.Create(ctx, tt); err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			return nil, gorm.ErrDuplicatedKey
		}
		return nil, apperrors.Unavailable("创建课表失败", err)
	}
	return tt, nil
}

// matchExisting 按身份键匹配既有行：同步键优先，否则手工复合键
func (s *timetableService) matchExisting(ctx context.Context, req *dto.UpsertTimetableRequest) (*model.Timetable, error) {
	var (
		tt  *model.Timetable
		err error
	)
	if req.SyncSource != model.SyncSourceManual && req.ExternalID != "" {
		tt, err = s.repo.Timetable.FindBySyncIdentity(ctx, req.SyncSource, req.ExternalID)
	} else {
		tt, err = s.repo.Timetable.FindByManualKey(ctx, repository.TimetableManualKey{
			AcademicYear: req.AcademicYear,
			Semester:     req.Semester,
			TeacherID:    req.TeacherID,
			ClassName:    req.ClassName,
			CourseName:   req.CourseName,
			Weekday:      req.Weekday,
			Period:       req.Period,
			SectionTime:  req.SectionTime,
			WeekInfo:     req.WeekInfo,
			Classroom:    req.Classroom,
		})
	}
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, apperrors.Unavailable("匹配课表失败", err)
	}
	return tt, nil
}

// ────────────────────── 查询 ──────────────────────

func (s *timetableService) GetByID(ctx context.Context, id int64) (*dto.TimetableResponse, error) {
	tt, err := s.repo.Timetable.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperrors.NotFound("课表不存在")
		}
		return nil, apperrors.Unavailable("查询课表失败", err)
	}
	return s.toTimetableResponse(tt), nil
}

func (s *timetableService) List(ctx context.Context, q repository.TimetableQuery) ([]dto.TimetableResponse, int64, error) {
	items, total, err := s.repo.Timetable.List(ctx, q)
	if err != nil {
		return nil, 0, apperrors.Unavailable("查询课表列表失败", err)
	}
	return s.toTimetableResponses(items), total, nil
}

func (s *timetableService) Delete(ctx context.Context, id int64) error {
	if _, err := s.repo.Timetable.GetByID(ctx, id); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return apperrors.NotFound("课表不存在")
		}
		return apperrors.Unavailable("查询课表失败", err)
	}
	if err := s.repo.Timetable.SoftDelete(ctx, id); err != nil {
		return apperrors.Unavailable("删除课表失败", err)
	}
	return nil
}

func (s *timetableService) ListPending(ctx context.Context, listenerID int64, q repository.TimetableQuery) ([]dto.TimetableResponse, int64, error) {
	items, total, err := s.repo.Timetable.ListPendingForListener(ctx, listenerID, q)
	if err != nil {
		return nil, 0, apperrors.Unavailable("查询待评课表失败", err)
	}
	return s.toTimetableResponses(items), total, nil
}

func (s *timetableService) ListCompleted(ctx context.Context, listenerID int64, q repository.TimetableQuery) ([]dto.TimetableResponse, int64, error) {
	items, total, err := s.repo.Timetable.ListCompletedForListener(ctx, listenerID, q)
	if err != nil {
		return nil, 0, apperrors.Unavailable("查询已评课表失败", err)
	}
	return s.toTimetableResponses(items), total, nil
}

// ────────────────────── 转换 ──────────────────────

func (s *timetableService) toTimetableResponse(tt *model.Timetable) *dto.TimetableResponse {
	resp := &dto.TimetableResponse{
		ID:           tt.ID,
		AcademicYear: tt.AcademicYear,
		Semester:     tt.Semester,
		TeacherID:    tt.TeacherID,
		CollegeID:    tt.CollegeID,
		ClassName:    tt.ClassName,
		CourseName:   tt.CourseName,
		CourseType:   tt.CourseType,
		Weekday:      tt.Weekday,
		Period:       tt.Period,
		SectionTime:  tt.SectionTime,
		WeekInfo:     tt.WeekInfo,
		Classroom:    tt.Classroom,
		SyncSource:   tt.SyncSource,
		ExternalID:   tt.ExternalID,
	}
	if tt.Teacher != nil {
		resp.TeacherName = tt.Teacher.UserName
	}
	if tt.College != nil {
		resp.CollegeName = tt.College.CollegeName
	}
	return resp
}

func (s *timetableService) toTimetableResponses(items []model.Timetable) []dto.TimetableResponse {
	result := make([]dto.TimetableResponse, 0, len(items))
	for i := range items {
		result = append(result, *s.toTimetableResponse(&items[i]))
	}
	return result
}
