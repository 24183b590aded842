package service

import (
	"context"
	"testing"
	"time"

	"go.uber.org/zap"
	"gorm.io/gorm"

	"teaching-eval/backend/internal/dto"
	"teaching-eval/backend/internal/model"
	"teaching-eval/backend/internal/repository"
	"teaching-eval/backend/pkg/apperrors"
)

// ── 测试辅助 ──

func setupTestEvaluationService() (EvaluationService, *mockRepos) {
	repo, m := newMockRepository()
	svc := NewEvaluationService(repo, zap.NewNop())

	m.College.colleges[1] = &model.College{ID: 1, CollegeCode: "CS", CollegeName: "计算机学院"}
	collegeID := int64(1)
	m.User.users[10] = &model.User{ID: 10, UserNo: "T010", UserName: "张老师", CollegeID: &collegeID, Status: model.UserStatusActive}
	m.User.users[20] = &model.User{ID: 20, UserNo: "T020", UserName: "李老师", CollegeID: &collegeID, Status: model.UserStatusActive}
	m.User.nextID = 21
	m.Timetable.timetables[1] = &model.Timetable{
		ID: 1, AcademicYear: "2024-2025", Semester: 1,
		TeacherID: 10, CollegeID: 1,
		ClassName: "软工2101", CourseName: "操作系统",
		Weekday: 3, Period: 2, SectionTime: "10:00-11:40", WeekInfo: "1-16周",
	}
	m.Timetable.nextID = 2
	return svc, m
}

func submitReq() *dto.SubmitEvaluationRequest {
	return &dto.SubmitEvaluationRequest{
		TimetableID: 1,
		TotalScore:  92,
		DimensionScores: map[string]float64{
			"teach_attitude": 95,
			"teach_content":  90,
		},
		ListenDate:     "2025-03-10",
		ProblemContent: "板书偏快",
	}
}

// ── ScoreLevelFor 测试 ──

func TestScoreLevelFor_Boundaries(t *testing.T) {
	cases := []struct {
		score int
		want  string
	}{
		{100, model.ScoreLevelExcellent},
		{90, model.ScoreLevelExcellent},
		{89, model.ScoreLevelGood},
		{75, model.ScoreLevelGood},
		{74, model.ScoreLevelPassing},
		{60, model.ScoreLevelPassing},
		{59, model.ScoreLevelFailing},
		{0, model.ScoreLevelFailing},
	}
	for _, c := range cases {
		if got := ScoreLevelFor(c.score); got != c.want {
			t.Errorf("ScoreLevelFor(%d)=%s，期望=%s", c.score, got, c.want)
		}
	}
}

// ── Submit 测试 ──

func TestEvaluationService_Submit_Success(t *testing.T) {
	svc, _ := setupTestEvaluationService()

	resp, err := svc.Submit(context.Background(), 20, submitReq(), model.EvalSourcePeer)
	if err != nil {
		t.Fatalf("Submit 应成功: %v", err)
	}
	if resp.ScoreLevel != model.ScoreLevelExcellent {
		t.Errorf("92 分应为优秀，实际=%s", resp.ScoreLevel)
	}
	if resp.Status != model.EvalStatusValid {
		t.Errorf("新提交应为有效状态，实际=%d", resp.Status)
	}
	if resp.EvaluationNo == "" {
		t.Error("应生成评价编号")
	}
	if resp.TeachTeacherID != 10 {
		t.Errorf("被评教师应取自课表，实际=%d", resp.TeachTeacherID)
	}
}

func TestEvaluationService_Submit_TimetableNotFound(t *testing.T) {
	svc, _ := setupTestEvaluationService()

	req := submitReq()
	req.TimetableID = 404
	_, err := svc.Submit(context.Background(), 20, req, model.EvalSourcePeer)
	ae := apperrors.AsError(err)
	if ae == nil || ae.Kind != apperrors.KindNotFound {
		t.Fatalf("课表不存在应返回 NotFound，实际=%v", err)
	}
}

func TestEvaluationService_Submit_SelfEvaluationForbidden(t *testing.T) {
	svc, _ := setupTestEvaluationService()

	// 听课人 = 授课人
	_, err := svc.Submit(context.Background(), 10, submitReq(), model.EvalSourcePeer)
	ae := apperrors.AsError(err)
	if ae == nil || ae.Kind != apperrors.KindForbidden {
		t.Fatalf("自评应被拒绝，实际=%v", err)
	}
}

func TestEvaluationService_Submit_Duplicate(t *testing.T) {
	svc, _ := setupTestEvaluationService()

	if _, err := svc.Submit(context.Background(), 20, submitReq(), model.EvalSourcePeer); err != nil {
		t.Fatalf("首次提交应成功: %v", err)
	}
	_, err := svc.Submit(context.Background(), 20, submitReq(), model.EvalSourcePeer)
	ae := apperrors.AsError(err)
	if ae == nil || ae.Kind != apperrors.KindConflict {
		t.Fatalf("同人同课同日重复提交应返回 Conflict，实际=%v", err)
	}
}

func TestEvaluationService_Submit_PreconditionOrder(t *testing.T) {
	svc, _ := setupTestEvaluationService()

	// 课表不存在的校验先于自评校验
	req := submitReq()
	req.TimetableID = 404
	_, err := svc.Submit(context.Background(), 10, req, model.EvalSourcePeer)
	ae := apperrors.AsError(err)
	if ae == nil || ae.Kind != apperrors.KindNotFound {
		t.Fatalf("课表不存在应先于自评校验，实际=%v", err)
	}
}

func TestEvaluationService_Submit_InvalidScore(t *testing.T) {
	svc, _ := setupTestEvaluationService()

	req := submitReq()
	req.DimensionScores = map[string]float64{"teach_attitude": 120}
	_, err := svc.Submit(context.Background(), 20, req, model.EvalSourcePeer)
	ae := apperrors.AsError(err)
	if ae == nil || ae.Kind != apperrors.KindInvalidInput {
		t.Fatalf("维度得分越界应返回 InvalidInput，实际=%v", err)
	}
}

func TestEvaluationService_Submit_RetriesOnNumberCollision(t *testing.T) {
	svc, m := setupTestEvaluationService()

	// 首次入库撞键但复查无同键记录，按编号碰撞处理：换号重试应成功
	calls := 0
	var firstNo string
	m.Evaluation.createHook = func(ev *model.TeachingEvaluation) error {
		calls++
		if calls == 1 {
			firstNo = ev.EvaluationNo
			return gorm.ErrDuplicatedKey
		}
		return nil
	}

	resp, err := svc.Submit(context.Background(), 20, submitReq(), model.EvalSourcePeer)
	if err != nil {
		t.Fatalf("编号碰撞应换号重试成功: %v", err)
	}
	if calls != 2 {
		t.Errorf("期望 Create 调用 2 次，实际=%d", calls)
	}
	if resp.EvaluationNo == firstNo {
		t.Error("重试应换新编号")
	}
	if len(m.Evaluation.evaluations) != 1 {
		t.Errorf("重试成功后应只有 1 条记录，实际=%d", len(m.Evaluation.evaluations))
	}
}

func TestEvaluationService_Submit_ConcurrentDuplicateConflict(t *testing.T) {
	svc, m := setupTestEvaluationService()

	// 入库前另一请求已写入同键记录：撞键后复查命中，按重复提交返回 Conflict
	listenDate, _ := time.Parse("2006-01-02", submitReq().ListenDate)
	fired := false
	m.Evaluation.createHook = func(_ *model.TeachingEvaluation) error {
		if fired {
			return nil
		}
		fired = true
		winner := &model.TeachingEvaluation{
			ID: 99, EvaluationNo: "EV-winner", TimetableID: 1,
			TeachTeacherID: 10, ListenTeacherID: 20,
			TotalScore: 88, ListenDate: listenDate,
			Status: model.EvalStatusValid, SubmitTime: time.Now(),
		}
		m.Evaluation.evaluations[winner.ID] = winner
		return gorm.ErrDuplicatedKey
	}

	_, err := svc.Submit(context.Background(), 20, submitReq(), model.EvalSourcePeer)
	ae := apperrors.AsError(err)
	if ae == nil || ae.Kind != apperrors.KindConflict {
		t.Fatalf("并发重复提交应返回 Conflict，实际=%v", err)
	}
	if len(m.Evaluation.evaluations) != 1 {
		t.Errorf("失败方不应再写入记录，实际=%d", len(m.Evaluation.evaluations))
	}
}

func TestEvaluationService_Submit_SecondCollisionSurfacesConflict(t *testing.T) {
	svc, m := setupTestEvaluationService()

	// 换号重试仍撞键：放弃并返回 Conflict
	m.Evaluation.createHook = func(_ *model.TeachingEvaluation) error {
		return gorm.ErrDuplicatedKey
	}

	_, err := svc.Submit(context.Background(), 20, submitReq(), model.EvalSourcePeer)
	ae := apperrors.AsError(err)
	if ae == nil || ae.Kind != apperrors.KindConflict {
		t.Fatalf("二次撞键应返回 Conflict，实际=%v", err)
	}
	if len(m.Evaluation.evaluations) != 0 {
		t.Errorf("失败时不应留下记录，实际=%d", len(m.Evaluation.evaluations))
	}
}

func TestEvaluationService_Submit_FillsPendingPlaceholder(t *testing.T) {
	svc, m := setupTestEvaluationService()

	// 任务分配产生的占位记录
	supervisor := model.EvalSourceSupervisor
	m.Evaluation.evaluations[1] = &model.TeachingEvaluation{
		ID: 1, EvaluationNo: "EVAL-PLACEHOLDER-1",
		TimetableID: 1, TeachTeacherID: 10, ListenTeacherID: 20,
		TotalScore: 0, Status: model.EvalStatusPendingReview,
		EvalSource: &supervisor,
		ListenDate: time.Date(2025, 3, 1, 0, 0, 0, 0, time.UTC),
		SubmitTime: time.Now(),
	}
	m.Evaluation.nextID = 2

	resp, err := svc.Submit(context.Background(), 20, submitReq(), model.EvalSourceSupervisor)
	if err != nil {
		t.Fatalf("Submit 应成功: %v", err)
	}
	if resp.ID != 1 {
		t.Errorf("应就地填充占位记录而非新建，实际 ID=%d", resp.ID)
	}
	if resp.Status != model.EvalStatusValid {
		t.Errorf("填充后应转为有效状态，实际=%d", resp.Status)
	}
	if resp.TotalScore != 92 {
		t.Errorf("期望得分 92，实际=%d", resp.TotalScore)
	}
}

// ── Review 测试 ──

func TestEvaluationService_Review_AnyTransition(t *testing.T) {
	svc, _ := setupTestEvaluationService()

	created, err := svc.Submit(context.Background(), 20, submitReq(), model.EvalSourcePeer)
	if err != nil {
		t.Fatalf("Submit 应成功: %v", err)
	}

	// 有效 → 作废
	resp, err := svc.Review(context.Background(), 1, created.ID, &dto.ReviewEvaluationRequest{
		Status: model.EvalStatusVoid, ReviewComment: "数据异常",
	})
	if err != nil {
		t.Fatalf("Review 应成功: %v", err)
	}
	if resp.Status != model.EvalStatusVoid {
		t.Errorf("期望作废状态，实际=%d", resp.Status)
	}
	if resp.ReviewComment != "数据异常" {
		t.Errorf("审核意见应保存，实际=%s", resp.ReviewComment)
	}

	// 作废 → 有效（无迁移限制）
	resp, err = svc.Review(context.Background(), 1, created.ID, &dto.ReviewEvaluationRequest{
		Status: model.EvalStatusValid,
	})
	if err != nil {
		t.Fatalf("Review 应成功: %v", err)
	}
	if resp.Status != model.EvalStatusValid {
		t.Errorf("期望恢复有效状态，实际=%d", resp.Status)
	}
}

// ── SoftDelete 测试 ──

func TestEvaluationService_SoftDelete_AuthorOnly(t *testing.T) {
	svc, m := setupTestEvaluationService()

	created, err := svc.Submit(context.Background(), 20, submitReq(), model.EvalSourcePeer)
	if err != nil {
		t.Fatalf("Submit 应成功: %v", err)
	}

	// 非作者非管理员
	err = svc.SoftDelete(context.Background(), 10, created.ID, false)
	ae := apperrors.AsError(err)
	if ae == nil || ae.Kind != apperrors.KindForbidden {
		t.Fatalf("非作者删除应被拒绝，实际=%v", err)
	}

	// 作者本人
	if err := svc.SoftDelete(context.Background(), 20, created.ID, false); err != nil {
		t.Fatalf("作者本人删除应成功: %v", err)
	}
	if ev := m.Evaluation.evaluations[created.ID]; ev == nil || !ev.IsDelete {
		t.Error("记录应为软删状态")
	}
}

func TestEvaluationService_SoftDelete_AdminBypass(t *testing.T) {
	svc, _ := setupTestEvaluationService()

	created, err := svc.Submit(context.Background(), 20, submitReq(), model.EvalSourcePeer)
	if err != nil {
		t.Fatalf("Submit 应成功: %v", err)
	}
	if err := svc.SoftDelete(context.Background(), 99, created.ID, true); err != nil {
		t.Fatalf("管理员删除应成功: %v", err)
	}
}

func TestEvaluationService_DeleteThenResubmitSameDay(t *testing.T) {
	svc, _ := setupTestEvaluationService()

	created, err := svc.Submit(context.Background(), 20, submitReq(), model.EvalSourcePeer)
	if err != nil {
		t.Fatalf("Submit 应成功: %v", err)
	}
	if err := svc.SoftDelete(context.Background(), 20, created.ID, false); err != nil {
		t.Fatalf("删除应成功: %v", err)
	}

	// 软删后唯一键释放，可重新提交
	again, err := svc.Submit(context.Background(), 20, submitReq(), model.EvalSourcePeer)
	if err != nil {
		t.Fatalf("删除后重新提交应成功: %v", err)
	}
	if again.ID == created.ID {
		t.Error("重新提交应为新行")
	}
}

// ── 匿名 / 列表 测试 ──

func TestEvaluationService_List_AnonymousHidesListener(t *testing.T) {
	svc, _ := setupTestEvaluationService()

	req := submitReq()
	req.IsAnonymous = true
	if _, err := svc.Submit(context.Background(), 20, req, model.EvalSourcePeer); err != nil {
		t.Fatalf("Submit 应成功: %v", err)
	}

	list, total, err := svc.List(context.Background(), repository.EvaluationListQuery{Limit: 10})
	if err != nil {
		t.Fatalf("List 应成功: %v", err)
	}
	if total != 1 || len(list) != 1 {
		t.Fatalf("期望 1 条记录，实际 total=%d len=%d", total, len(list))
	}
	if list[0].ListenTeacherName != "" {
		t.Errorf("匿名记录不应暴露听课教师姓名，实际=%s", list[0].ListenTeacherName)
	}
	if !list[0].IsAnonymous {
		t.Error("匿名标记应保留")
	}
}

func TestEvaluationService_List_CollegeScope(t *testing.T) {
	svc, m := setupTestEvaluationService()

	// 学院 2 的课表与记录
	m.College.colleges[2] = &model.College{ID: 2, CollegeCode: "MA", CollegeName: "数学学院"}
	m.Timetable.timetables[2] = &model.Timetable{
		ID: 2, AcademicYear: "2024-2025", Semester: 1,
		TeacherID: 10, CollegeID: 2,
		ClassName: "数学2101", CourseName: "高等代数", Weekday: 4, Period: 3,
	}
	m.Timetable.nextID = 3

	if _, err := svc.Submit(context.Background(), 20, submitReq(), model.EvalSourcePeer); err != nil {
		t.Fatalf("Submit 应成功: %v", err)
	}
	req2 := submitReq()
	req2.TimetableID = 2
	if _, err := svc.Submit(context.Background(), 20, req2, model.EvalSourcePeer); err != nil {
		t.Fatalf("Submit 应成功: %v", err)
	}

	// 限定学院 2 后只剩数学学院的记录
	list, total, err := svc.List(context.Background(), repository.EvaluationListQuery{CollegeIDs: []int64{2}, Limit: 10})
	if err != nil {
		t.Fatalf("List 应成功: %v", err)
	}
	if total != 1 || len(list) != 1 {
		t.Fatalf("限定学院后期望 1 条，实际 total=%d len=%d", total, len(list))
	}
	if list[0].TimetableID != 2 {
		t.Errorf("应只返回学院 2 的记录: %+v", list[0])
	}

	// 不过滤时两条都在
	_, total, err = svc.List(context.Background(), repository.EvaluationListQuery{Limit: 10})
	if err != nil {
		t.Fatalf("List 应成功: %v", err)
	}
	if total != 2 {
		t.Errorf("不过滤时期望 2 条，实际=%d", total)
	}
}
