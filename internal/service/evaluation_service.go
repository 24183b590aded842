package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"
	"gorm.io/gorm"

	"teaching-eval/backend/internal/dto"
	"teaching-eval/backend/internal/model"
	"teaching-eval/backend/internal/repository"
	"teaching-eval/backend/pkg/apperrors"
)

// ScoreLevelFor 总分到得分等级的全映射（边界 90/75/60 左闭）
func ScoreLevelFor(totalScore int) string {
	switch {
	case totalScore >= 90:
		return model.ScoreLevelExcellent
	case totalScore >= 75:
		return model.ScoreLevelGood
	case totalScore >= 60:
		return model.ScoreLevelPassing
	default:
		return model.ScoreLevelFailing
	}
}

// EvaluationService 评教业务接口
type EvaluationService interface {
	// Submit 提交评教。前置校验按序：课表存在 → 非自评 → 非重复。
	// 撞 (timetable, listener, date) 唯一键并发竞态时返回重复评价冲突；
	// 评价编号碰撞重新生成一次
	Submit(ctx context.Context, listenerID int64, req *dto.SubmitEvaluationRequest, evalSource string) (*dto.EvaluationResponse, error)

	// Review 审核：三个状态间无迁移限制，动作本身记审计日志
	Review(ctx context.Context, reviewerID, evaluationID int64, req *dto.ReviewEvaluationRequest) (*dto.EvaluationResponse, error)

	// SoftDelete 仅作者本人或管理员可删
	SoftDelete(ctx context.Context, actorID, evaluationID int64, actorIsAdmin bool) error

	GetByID(ctx context.Context, id int64) (*dto.EvaluationResponse, error)
	List(ctx context.Context, q repository.EvaluationListQuery) ([]dto.EvaluationResponse, int64, error)

	// ListDimensions 启用中的评价维度配置
	ListDimensions(ctx context.Context) ([]dto.DimensionResponse, error)
}

type evaluationService struct {
	repo   *repository.Repository
	logger *zap.Logger
}

// NewEvaluationService 创建 EvaluationService 实例
func NewEvaluationService(repo *repository.Repository, logger *zap.Logger) EvaluationService {
	return &evaluationService{repo: repo, logger: logger}
}

// ────────────────────── Submit ──────────────────────

func (s *evaluationService) Submit(ctx context.Context, listenerID int64, req *dto.SubmitEvaluationRequest, evalSource string) (*dto.EvaluationResponse, error) {
	if req.TotalScore < 0 || req.TotalScore > 100 {
		return nil, apperrors.InvalidInput("总分必须在 0-100 之间")
	}
	for code, score := range req.DimensionScores {
		if score < 0 || score > 100 {
			return nil, apperrors.InvalidInput(fmt.Sprintf("维度 %s 得分必须在 0-100 之间", code))
		}
	}
	listenDate, err := time.Parse("2006-01-02", req.ListenDate)
	if err != nil {
		return nil, apperrors.InvalidInput("听课日期格式应为 YYYY-MM-DD")
	}

	// 1. 课表必须存在且存活
	tt, err := s.repo.Timetable.GetByID(ctx, req.TimetableID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperrors.NotFound("课表不存在")
		}
		return nil, apperrors.Unavailable("查询课表失败", err)
	}

	// 2. 禁止自评
	if tt.TeacherID == listenerID {
		return nil, apperrors.Forbidden("不能评价自己的课程")
	}

	// 3. 同键重复检查
	exists, err := s.repo.Evaluation.ExistsLive(ctx, req.TimetableID, listenerID, listenDate)
	if err != nil {
		return nil, apperrors.Unavailable("重复评价检查失败", err)
	}
	if exists {
		return nil, apperrors.Conflict("已对该课程提交过当日评价，不能重复提交")
	}

	// 任务分配产生的待评教占位记录就地填充，不新插入
	if placeholder, err := s.repo.Evaluation.FindPendingPlaceholder(ctx, req.TimetableID, listenerID); err == nil {
		return s.fillPlaceholder(ctx, placeholder, req, listenDate)
	} else if !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, apperrors.Unavailable("查询占位记录失败", err)
	}

	ev := &model.TeachingEvaluation{
		EvaluationNo:      newEvaluationNo(),
		TimetableID:       req.TimetableID,
		TeachTeacherID:    tt.TeacherID,
		ListenTeacherID:   listenerID,
		TotalScore:        req.TotalScore,
		DimensionScores:   toJSONMap(req.DimensionScores),
		ScoreLevel:        ScoreLevelFor(req.TotalScore),
		AdvantageContent:  req.AdvantageContent,
		ProblemContent:    req.ProblemContent,
		ImproveSuggestion: req.ImproveSuggestion,
		ListenDate:        listenDate,
		ListenDuration:    req.ListenDuration,
		ListenLocation:    req.ListenLocation,
		IsAnonymous:       req.IsAnonymous,
		EvalSource:        &evalSource,
		Status:            model.EvalStatusValid,
		SubmitTime:        time.Now(),
	}

	if err := s.repo.Evaluation.Create(ctx, ev); err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			// 撞键两种可能：并发重复提交，或评价编号碰撞。
			// 先复查重复键，命中则按重复冲突返回；否则换编号重试一次
			exists, checkErr := s.repo.Evaluation.ExistsLive(ctx, req.TimetableID, listenerID, listenDate)
			if checkErr == nil && exists {
				return nil, apperrors.Conflict("已对该课程提交过当日评价，不能重复提交")
			}
			ev.EvaluationNo = newEvaluationNo()
			if err := s.repo.Evaluation.Create(ctx, ev); err != nil {
				if errors.Is(err, gorm.ErrDuplicatedKey) {
					return nil, apperrors.Conflict("评价提交冲突，请重试")
				}
				return nil, apperrors.Unavailable("保存评价失败", err)
			}
		} else {
			return nil, apperrors.Unavailable("保存评价失败", err)
		}
	}

	s.logger.Info("评教已提交",
		zap.String("evaluation_no", ev.EvaluationNo),
		zap.Int64("timetable_id", ev.TimetableID),
		zap.Int64("listen_teacher_id", listenerID),
		zap.Int("total_score", ev.TotalScore),
	)

	return s.toEvaluationResponse(ev, true), nil
}

// fillPlaceholder 将评分写入任务占位记录并转为有效状态
func (s *evaluationService) fillPlaceholder(ctx context.Context, ev *model.TeachingEvaluation, req *dto.SubmitEvaluationRequest, listenDate time.Time) (*dto.EvaluationResponse, error) {
	ev.TotalScore = req.TotalScore
	ev.DimensionScores = toJSONMap(req.DimensionScores)
	ev.ScoreLevel = ScoreLevelFor(req.TotalScore)
	ev.AdvantageContent = req.AdvantageContent
	ev.ProblemContent = req.ProblemContent
	ev.ImproveSuggestion = req.ImproveSuggestion
	ev.ListenDate = listenDate
	ev.ListenDuration = req.ListenDuration
	ev.ListenLocation = req.ListenLocation
	ev.IsAnonymous = req.IsAnonymous
	ev.Status = model.EvalStatusValid
	ev.SubmitTime = time.Now()

	if err := s.repo.Evaluation.Update(ctx, ev); err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			return nil, apperrors.Conflict("已对该课程提交过当日评价，不能重复提交")
		}
		return nil, apperrors.Unavailable("保存评价失败", err)
	}

	s.logger.Info("督导任务评教已完成",
		zap.String("evaluation_no", ev.EvaluationNo),
		zap.Int64("timetable_id", ev.TimetableID),
	)
	return s.toEvaluationResponse(ev, true), nil
}

// newEvaluationNo 评价编号：时间前缀 + 随机后缀，唯一性尽力而为，碰撞由调用方重试
func newEvaluationNo() string {
	id := uuid.New()
	return fmt.Sprintf("EVAL-%s-%X", time.Now().Format("20060102150405"), id[:4])
}

// ────────────────────── Review ──────────────────────

func (s *evaluationService) Review(ctx context.Context, reviewerID, evaluationID int64, req *dto.ReviewEvaluationRequest) (*dto.EvaluationResponse, error) {
	ev, err := s.repo.Evaluation.GetByID(ctx, evaluationID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperrors.NotFound("评价记录不存在")
		}
		return nil, apperrors.Unavailable("查询评价失败", err)
	}

	oldStatus := ev.Status
	ev.Status = req.Status
	ev.ReviewComment = req.ReviewComment
	if err := s.repo.Evaluation.Update(ctx, ev); err != nil {
		return nil, apperrors.Unavailable("更新评价状态失败", err)
	}

	// 状态迁移无限制，靠审计日志追责
	s.logger.Info("评教已审核",
		zap.Int64("evaluation_id", evaluationID),
		zap.Int64("reviewer_id", reviewerID),
		zap.Int("old_status", oldStatus),
		zap.Int("new_status", req.Status),
	)

	return s.toEvaluationResponse(ev, true), nil
}

// ────────────────────── SoftDelete ──────────────────────

func (s *evaluationService) SoftDelete(ctx context.Context, actorID, evaluationID int64, actorIsAdmin bool) error {
	ev, err := s.repo.Evaluation.GetByID(ctx, evaluationID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return apperrors.NotFound("评价记录不存在")
		}
		return apperrors.Unavailable("查询评价失败", err)
	}

	if ev.ListenTeacherID != actorID && !actorIsAdmin {
		return apperrors.Forbidden("只能删除本人提交的评价")
	}

	if err := s.repo.Evaluation.SoftDelete(ctx, evaluationID); err != nil {
		return apperrors.Unavailable("删除评价失败", err)
	}

	s.logger.Info("评教已删除",
		zap.Int64("evaluation_id", evaluationID),
		zap.Int64("actor_id", actorID),
	)
	return nil
}

// ────────────────────── 查询 ──────────────────────

func (s *evaluationService) GetByID(ctx context.Context, id int64) (*dto.EvaluationResponse, error) {
	ev, err := s.repo.Evaluation.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperrors.NotFound("评价记录不存在")
		}
		return nil, apperrors.Unavailable("查询评价失败", err)
	}
	return s.toEvaluationResponse(ev, true), nil
}

func (s *evaluationService) List(ctx context.Context, q repository.EvaluationListQuery) ([]dto.EvaluationResponse, int64, error) {
	items, total, err := s.repo.Evaluation.List(ctx, q)
	if err != nil {
		return nil, 0, apperrors.Unavailable("查询评价列表失败", err)
	}
	result := make([]dto.EvaluationResponse, 0, len(items))
	for i := range items {
		result = append(result, *s.toEvaluationResponse(&items[i], false))
	}
	return result, total, nil
}

func (s *evaluationService) ListDimensions(ctx context.Context) ([]dto.DimensionResponse, error) {
	dims, err := s.repo.Dimension.ListActive(ctx)
	if err != nil {
		return nil, apperrors.Unavailable("查询评价维度失败", err)
	}
	result := make([]dto.DimensionResponse, 0, len(dims))
	for _, d := range dims {
		result = append(result, dto.DimensionResponse{
			ID:            d.ID,
			DimensionCode: d.DimensionCode,
			DimensionName: d.DimensionName,
			MaxScore:      d.MaxScore,
			Weight:        d.Weight,
			IsRequired:    d.IsRequired,
			SortOrder:     d.SortOrder,
		})
	}
	return result, nil
}

// ────────────────────── 转换 ──────────────────────

// toEvaluationResponse revealListener 为 false 时按匿名标记隐藏听课教师姓名
func (s *evaluationService) toEvaluationResponse(ev *model.TeachingEvaluation, revealListener bool) *dto.EvaluationResponse {
	resp := &dto.EvaluationResponse{
		ID:                ev.ID,
		EvaluationNo:      ev.EvaluationNo,
		TimetableID:       ev.TimetableID,
		TeachTeacherID:    ev.TeachTeacherID,
		ListenTeacherID:   ev.ListenTeacherID,
		TotalScore:        ev.TotalScore,
		DimensionScores:   fromJSONMap(ev.DimensionScores),
		ScoreLevel:        ev.ScoreLevel,
		AdvantageContent:  ev.AdvantageContent,
		ProblemContent:    ev.ProblemContent,
		ImproveSuggestion: ev.ImproveSuggestion,
		ListenDate:        ev.ListenDate.Format("2006-01-02"),
		ListenDuration:    ev.ListenDuration,
		ListenLocation:    ev.ListenLocation,
		IsAnonymous:       ev.IsAnonymous,
		Status:            ev.Status,
		ReviewComment:     ev.ReviewComment,
		SubmitTime:        ev.SubmitTime,
	}
	if ev.EvalSource != nil {
		resp.EvalSource = *ev.EvalSource
	}
	if ev.TeachTeacher != nil {
		resp.TeachTeacherName = ev.TeachTeacher.UserName
	}
	if ev.ListenTeacher != nil && (revealListener || !ev.IsAnonymous) {
		resp.ListenTeacherName = ev.ListenTeacher.UserName
	}
	if ev.Timetable != nil {
		resp.Timetable = &dto.TimetableResponse{
			ID:           ev.Timetable.ID,
			AcademicYear: ev.Timetable.AcademicYear,
			Semester:     ev.Timetable.Semester,
			TeacherID:    ev.Timetable.TeacherID,
			CollegeID:    ev.Timetable.CollegeID,
			ClassName:    ev.Timetable.ClassName,
			CourseName:   ev.Timetable.CourseName,
			Weekday:      ev.Timetable.Weekday,
			Period:       ev.Timetable.Period,
			SectionTime:  ev.Timetable.SectionTime,
			WeekInfo:     ev.Timetable.WeekInfo,
			Classroom:    ev.Timetable.Classroom,
		}
	}
	return resp
}
