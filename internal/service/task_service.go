package service

import (
	"context"
	"errors"
	"time"

	"go.uber.org/zap"
	"gorm.io/gorm"

	"teaching-eval/backend/internal/dto"
	"teaching-eval/backend/internal/model"
	"teaching-eval/backend/internal/repository"
	"teaching-eval/backend/pkg/apperrors"
)

// TaskService 督导评教任务分配业务接口
// 任务即占位评价记录：status=2、得分为 0、来源为督导，提交评教时就地填充
type TaskService interface {
	// Assign 为每个督导 × 每张课表建一条占位记录；
	// 自评组合与已有记录的组合静默跳过。
	// allowedColleges 非 nil 时课表必须落在其中（行级范围），越界整体拒绝
	Assign(ctx context.Context, req *dto.AssignTasksRequest, allowedColleges []int64) (*dto.AssignTasksResponse, error)

	// ListTasks 督导任务列表；supervisorID 非空时限定某督导，status 非空时按状态过滤，
	// collegeIDs 非空时按课表学院过滤（行级范围）
	ListTasks(ctx context.Context, supervisorID *int64, status *int, collegeIDs []int64, offset, limit int) ([]dto.TaskItem, int64, error)
}

type taskService struct {
	repo   *repository.Repository
	logger *zap.Logger
}

// NewTaskService 创建 TaskService 实例
func NewTaskService(repo *repository.Repository, logger *zap.Logger) TaskService {
	return &taskService{repo: repo, logger: logger}
}

// ────────────────────── Assign ──────────────────────

func (s *taskService) Assign(ctx context.Context, req *dto.AssignTasksRequest, allowedColleges []int64) (*dto.AssignTasksResponse, error) {
	allowed := make(map[int64]struct{}, len(allowedColleges))
	for _, id := range allowedColleges {
		allowed[id] = struct{}{}
	}

	// 先整体校验引用，避免批量建一半失败
	for _, supervisorID := range req.SupervisorUserIDs {
		if _, err := s.repo.User.GetByID(ctx, supervisorID); err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return nil, apperrors.NotFound("督导不存在")
			}
			return nil, apperrors.Unavailable("查询督导失败", err)
		}
	}
	timetables := make(map[int64]*model.Timetable, len(req.TimetableIDs))
	for _, ttID := range req.TimetableIDs {
		tt, err := s.repo.Timetable.GetByID(ctx, ttID)
		if err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return nil, apperrors.NotFound("课表不存在")
			}
			return nil, apperrors.Unavailable("查询课表失败", err)
		}
		if allowedColleges != nil {
			if _, ok := allowed[tt.CollegeID]; !ok {
				return nil, apperrors.OutOfScope("课表超出负责范围")
			}
		}
		timetables[ttID] = tt
	}

	// 占位记录的听课日期：截止日或分配当日
	placeholderDate := time.Now()
	if req.Deadline != nil {
		placeholderDate = *req.Deadline
	}

	source := model.EvalSourceSupervisor
	created := 0
	for _, supervisorID := range req.SupervisorUserIDs {
		for _, ttID := range req.TimetableIDs {
			tt := timetables[ttID]
			if tt.TeacherID == supervisorID {
				continue // 不给督导分配自己的课
			}
			if _, err := s.repo.Evaluation.FindPendingPlaceholder(ctx, ttID, supervisorID); err == nil {
				continue // 已有待评任务
			} else if !errors.Is(err, gorm.ErrRecordNotFound) {
				return nil, apperrors.Unavailable("查询占位记录失败", err)
			}

			ev := &model.TeachingEvaluation{
				EvaluationNo:    newEvaluationNo(),
				TimetableID:     ttID,
				TeachTeacherID:  tt.TeacherID,
				ListenTeacherID: supervisorID,
				TotalScore:      0,
				ListenDate:      placeholderDate,
				EvalSource:      &source,
				Status:          model.EvalStatusPendingReview,
				ReviewComment:   req.Note,
				SubmitTime:      time.Now(),
			}
			if err := s.repo.Evaluation.Create(ctx, ev); err != nil {
				if errors.Is(err, gorm.ErrDuplicatedKey) {
					continue // 并发分配撞键，视为已存在
				}
				return nil, apperrors.Unavailable("创建任务占位记录失败", err)
			}
			created++
		}
	}

	s.logger.Info("督导任务已分配",
		zap.Int("assignments_created", created),
		zap.Int("supervisor_count", len(req.SupervisorUserIDs)),
		zap.Int("timetable_count", len(req.TimetableIDs)),
	)

	return &dto.AssignTasksResponse{
		AssignmentsCreated: created,
		SupervisorCount:    len(req.SupervisorUserIDs),
		TimetableCount:     len(req.TimetableIDs),
	}, nil
}

// ────────────────────── ListTasks ──────────────────────

func (s *taskService) ListTasks(ctx context.Context, supervisorID *int64, status *int, collegeIDs []int64, offset, limit int) ([]dto.TaskItem, int64, error) {
	records, total, err := s.repo.Evaluation.List(ctx, repository.EvaluationListQuery{
		ListenTeacherID: supervisorID,
		Status:          status,
		EvalSource:      model.EvalSourceSupervisor,
		CollegeIDs:      collegeIDs,
		Offset:          offset,
		Limit:           limit,
	})
	if err != nil {
		return nil, 0, apperrors.Unavailable("查询任务列表失败", err)
	}

	items := make([]dto.TaskItem, 0, len(records))
	for i := range records {
		ev := &records[i]
		item := dto.TaskItem{
			ID:           ev.ID,
			TimetableID:  ev.TimetableID,
			SupervisorID: ev.ListenTeacherID,
			Status:       ev.Status,
			StatusText:   taskStatusText(ev.Status),
			AssignTime:   ev.CreatedAt.Format("2006-01-02 15:04:05"),
			Note:         ev.ReviewComment,
		}
		if ev.Timetable != nil {
			item.CourseName = ev.Timetable.CourseName
			item.ClassName = ev.Timetable.ClassName
			item.AcademicYear = ev.Timetable.AcademicYear
			item.Semester = ev.Timetable.Semester
		}
		if ev.ListenTeacher != nil {
			item.SupervisorName = ev.ListenTeacher.UserName
		}
		items = append(items, item)
	}
	return items, total, nil
}

func taskStatusText(status int) string {
	switch status {
	case model.EvalStatusPendingReview:
		return "待评教"
	case model.EvalStatusValid:
		return "已完成"
	default:
		return "已作废"
	}
}
