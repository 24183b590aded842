package service

import (
	"context"
	"strconv"
	"testing"
	"time"

	"go.uber.org/zap"

	"teaching-eval/backend/config"
	"teaching-eval/backend/internal/dto"
	"teaching-eval/backend/internal/model"
	"teaching-eval/backend/pkg/apperrors"
)

// ── 测试辅助 ──

func setupTestStatsService() (StatsService, *mockRepos) {
	repo, m := newMockRepository()
	svc := NewStatsService(repo, nil, &config.StatsConfig{}, zap.NewNop())

	m.College.colleges[1] = &model.College{ID: 1, CollegeCode: "CS", CollegeName: "计算机学院"}
	m.College.colleges[2] = &model.College{ID: 2, CollegeCode: "MATH", CollegeName: "数学学院"}
	cs, math := int64(1), int64(2)
	m.User.users[10] = &model.User{ID: 10, UserNo: "T010", UserName: "张老师", CollegeID: &cs, Status: model.UserStatusActive}
	m.User.users[11] = &model.User{ID: 11, UserNo: "T011", UserName: "王老师", CollegeID: &math, Status: model.UserStatusActive}
	m.User.users[20] = &model.User{ID: 20, UserNo: "T020", UserName: "李督导", CollegeID: &cs, Status: model.UserStatusActive}
	m.User.nextID = 21
	m.Timetable.timetables[1] = &model.Timetable{
		ID: 1, AcademicYear: "2024-2025", Semester: 1, TeacherID: 10, CollegeID: 1,
		ClassName: "软工2101", CourseName: "操作系统", Weekday: 3, Period: 2,
	}
	m.Timetable.timetables[2] = &model.Timetable{
		ID: 2, AcademicYear: "2024-2025", Semester: 1, TeacherID: 11, CollegeID: 2,
		ClassName: "应数2102", CourseName: "高等代数", Weekday: 2, Period: 1,
	}
	m.Timetable.nextID = 3
	return svc, m
}

type evalFixture struct {
	timetableID int64
	teacherID   int64
	listenerID  int64
	score       int
	status      int
	evalSource  *string // nil 表示历史督导数据
	listenDate  time.Time
	dimensions  map[string]float64
	problem     string
	suggestion  string
}

func addEvaluation(m *mockRepos, f evalFixture) int64 {
	id := m.Evaluation.nextID
	m.Evaluation.nextID++
	m.Evaluation.evaluations[id] = &model.TeachingEvaluation{
		ID:                id,
		EvaluationNo:      "EVAL-TEST-" + strconv.FormatInt(id, 10),
		TimetableID:       f.timetableID,
		TeachTeacherID:    f.teacherID,
		ListenTeacherID:   f.listenerID,
		TotalScore:        f.score,
		DimensionScores:   toJSONMap(f.dimensions),
		ScoreLevel:        ScoreLevelFor(f.score),
		ProblemContent:    f.problem,
		ImproveSuggestion: f.suggestion,
		ListenDate:        f.listenDate,
		EvalSource:        f.evalSource,
		Status:            f.status,
		SubmitTime:        f.listenDate,
	}
	return id
}

func day(d int) time.Time {
	return time.Date(2025, 3, d, 0, 0, 0, 0, time.UTC)
}

func peerEval(m *mockRepos, timetableID, teacherID, listenerID int64, score int, d time.Time) int64 {
	peer := model.EvalSourcePeer
	return addEvaluation(m, evalFixture{
		timetableID: timetableID, teacherID: teacherID, listenerID: listenerID,
		score: score, status: model.EvalStatusValid, evalSource: &peer, listenDate: d,
	})
}

// ── 教师统计 ──

func TestStatsService_TeacherStats_NoEvaluations(t *testing.T) {
	svc, _ := setupTestStatsService()

	resp, err := svc.TeacherStats(context.Background(), 10, "", 0)
	if err != nil {
		t.Fatalf("无评价不应报错: %v", err)
	}
	if resp.TotalEvaluationNum != 0 {
		t.Errorf("期望 count=0，实际=%d", resp.TotalEvaluationNum)
	}
	if resp.AvgTotalScore != nil {
		t.Errorf("无评价时均分应缺省，实际=%v", *resp.AvgTotalScore)
	}
	if resp.MaxScore != nil || resp.MinScore != nil {
		t.Error("无评价时最高最低分应缺省")
	}
	d := resp.ScoreDistribution
	if d.Excellent != 0 || d.Good != 0 || d.Passing != 0 || d.Failing != 0 {
		t.Errorf("无评价时分布应全零，实际=%+v", d)
	}
}

func TestStatsService_TeacherStats_TeacherNotFound(t *testing.T) {
	svc, _ := setupTestStatsService()

	_, err := svc.TeacherStats(context.Background(), 404, "", 0)
	ae := apperrors.AsError(err)
	if ae == nil || ae.Kind != apperrors.KindNotFound {
		t.Fatalf("教师不存在应返回 NotFound，实际=%v", err)
	}
}

func TestStatsService_TeacherStats_Aggregation(t *testing.T) {
	svc, m := setupTestStatsService()

	peerEval(m, 1, 10, 20, 95, day(1))
	peerEval(m, 1, 10, 11, 70, day(2))

	resp, err := svc.TeacherStats(context.Background(), 10, "2024-2025", 1)
	if err != nil {
		t.Fatalf("TeacherStats 应成功: %v", err)
	}
	if resp.TotalEvaluationNum != 2 {
		t.Fatalf("期望 2 条有效评价，实际=%d", resp.TotalEvaluationNum)
	}
	if resp.AvgTotalScore == nil || *resp.AvgTotalScore != 82.5 {
		t.Errorf("期望均分 82.5，实际=%v", resp.AvgTotalScore)
	}
	if resp.MaxScore == nil || *resp.MaxScore != 95 {
		t.Errorf("期望最高分 95，实际=%v", resp.MaxScore)
	}
	if resp.MinScore == nil || *resp.MinScore != 70 {
		t.Errorf("期望最低分 70，实际=%v", resp.MinScore)
	}
	d := resp.ScoreDistribution
	if d.Excellent != 1 || d.Good != 0 || d.Passing != 1 || d.Failing != 0 {
		t.Errorf("期望分布 优秀1/合格1，实际=%+v", d)
	}
}

func TestStatsService_TeacherStats_HeterogeneousDimensionKeys(t *testing.T) {
	svc, m := setupTestStatsService()

	peer := model.EvalSourcePeer
	addEvaluation(m, evalFixture{
		timetableID: 1, teacherID: 10, listenerID: 20, score: 90,
		status: model.EvalStatusValid, evalSource: &peer, listenDate: day(1),
		dimensions: map[string]float64{"attitude": 90, "content": 80},
	})
	addEvaluation(m, evalFixture{
		timetableID: 1, teacherID: 10, listenerID: 11, score: 80,
		status: model.EvalStatusValid, evalSource: &peer, listenDate: day(2),
		dimensions: map[string]float64{"attitude": 70},
	})

	resp, err := svc.TeacherStats(context.Background(), 10, "", 0)
	if err != nil {
		t.Fatalf("TeacherStats 应成功: %v", err)
	}
	// 维度均分只除以含该键的记录数
	if got := resp.DimensionAvgScores["attitude"]; got != 80 {
		t.Errorf("attitude 均分期望 80，实际=%v", got)
	}
	if got := resp.DimensionAvgScores["content"]; got != 80 {
		t.Errorf("content 均分期望 80（单条记录），实际=%v", got)
	}
}

func TestStatsService_TeacherStats_MonthlyTrendOrdered(t *testing.T) {
	svc, m := setupTestStatsService()

	peerEval(m, 1, 10, 20, 88, time.Date(2025, 4, 1, 0, 0, 0, 0, time.UTC))
	peerEval(m, 1, 10, 11, 92, time.Date(2025, 3, 15, 0, 0, 0, 0, time.UTC))
	peerEval(m, 1, 10, 20, 80, time.Date(2025, 3, 20, 0, 0, 0, 0, time.UTC))

	resp, err := svc.TeacherStats(context.Background(), 10, "", 0)
	if err != nil {
		t.Fatalf("TeacherStats 应成功: %v", err)
	}
	if len(resp.MonthlyTrend) != 2 {
		t.Fatalf("期望 2 个月度点，实际=%d", len(resp.MonthlyTrend))
	}
	if resp.MonthlyTrend[0].Month != "2025-03" || resp.MonthlyTrend[1].Month != "2025-04" {
		t.Errorf("月度趋势应按月份升序，实际=%s, %s",
			resp.MonthlyTrend[0].Month, resp.MonthlyTrend[1].Month)
	}
	if resp.MonthlyTrend[0].Count != 2 || resp.MonthlyTrend[0].AvgScore != 86 {
		t.Errorf("2025-03 期望 count=2 avg=86，实际=%+v", resp.MonthlyTrend[0])
	}
}

func TestStatsService_TeacherStats_ExcludesPendingAndVoid(t *testing.T) {
	svc, m := setupTestStatsService()

	peer := model.EvalSourcePeer
	peerEval(m, 1, 10, 20, 95, day(1))
	addEvaluation(m, evalFixture{
		timetableID: 1, teacherID: 10, listenerID: 11, score: 0,
		status: model.EvalStatusPendingReview, evalSource: &peer, listenDate: day(2),
	})
	addEvaluation(m, evalFixture{
		timetableID: 1, teacherID: 10, listenerID: 20, score: 50,
		status: model.EvalStatusVoid, evalSource: &peer, listenDate: day(3),
	})

	resp, err := svc.TeacherStats(context.Background(), 10, "", 0)
	if err != nil {
		t.Fatalf("TeacherStats 应成功: %v", err)
	}
	if resp.TotalEvaluationNum != 1 {
		t.Errorf("仅有效评价计入分数统计，期望 1，实际=%d", resp.TotalEvaluationNum)
	}
	if resp.PendingNum != 1 {
		t.Errorf("待处理计数期望 1，实际=%d", resp.PendingNum)
	}
	if resp.AvgTotalScore == nil || *resp.AvgTotalScore != 95 {
		t.Errorf("作废记录不应拉低均分，实际=%v", resp.AvgTotalScore)
	}
}

// ── 高频文本 ──

func TestTopTexts_FirstSeenTieBreak(t *testing.T) {
	texts := []string{"语速偏快", "", "板书不清", "语速偏快", "互动不足", "板书不清", "例题偏少"}
	got := topTexts(texts, 2)
	if len(got) != 2 {
		t.Fatalf("期望取前 2，实际=%d", len(got))
	}
	// 语速偏快与板书不清同频（2 次），先出现者在前
	if got[0] != "语速偏快" || got[1] != "板书不清" {
		t.Errorf("同频按首次出现排序，实际=%v", got)
	}
}

func TestTopTexts_SkipsEmptyAndLimits(t *testing.T) {
	texts := []string{"", "a", "b", "c", "d", "e", "f"}
	got := topTexts(texts, 5)
	if len(got) != 5 {
		t.Fatalf("期望截断为 5，实际=%d", len(got))
	}
	if got[0] != "a" {
		t.Errorf("空文本应被跳过，首位应为 a，实际=%s", got[0])
	}
}

// ── 学院统计 ──

func TestStatsService_CollegeStats_RankingAndExcellenceRate(t *testing.T) {
	svc, m := setupTestStatsService()

	// 学院 1 增加第二位教师的课表
	cs := int64(1)
	m.User.users[12] = &model.User{ID: 12, UserNo: "T012", UserName: "赵老师", CollegeID: &cs, Status: model.UserStatusActive}
	m.Timetable.timetables[3] = &model.Timetable{
		ID: 3, AcademicYear: "2024-2025", Semester: 1, TeacherID: 12, CollegeID: 1,
		ClassName: "软工2102", CourseName: "编译原理", Weekday: 4, Period: 3,
	}
	m.Timetable.nextID = 4

	peerEval(m, 1, 10, 20, 92, day(1))
	peerEval(m, 1, 10, 11, 88, day(2))
	peerEval(m, 3, 12, 20, 90, day(3))

	resp, err := svc.CollegeStats(context.Background(), 1, "2024-2025", 1)
	if err != nil {
		t.Fatalf("CollegeStats 应成功: %v", err)
	}
	if resp.TotalEvaluationNum != 3 {
		t.Fatalf("期望 3 条记录，实际=%d", resp.TotalEvaluationNum)
	}
	// 优秀 2 / 3
	if resp.ExcellenceRate != 66.67 {
		t.Errorf("优秀率期望 66.67，实际=%v", resp.ExcellenceRate)
	}
	if len(resp.TeacherRanking) != 2 {
		t.Fatalf("期望 2 位教师入榜，实际=%d", len(resp.TeacherRanking))
	}
	// 均分：教师10 = 90，教师12 = 90，同分按 ID 升序
	if resp.TeacherRanking[0].TeacherID != 10 || resp.TeacherRanking[1].TeacherID != 12 {
		t.Errorf("同均分应按教师 ID 升序，实际=%d, %d",
			resp.TeacherRanking[0].TeacherID, resp.TeacherRanking[1].TeacherID)
	}
	if resp.TeacherRanking[0].Rank != 1 || resp.TeacherRanking[1].Rank != 2 {
		t.Error("名次应从 1 连续编号")
	}
}

func TestStatsService_CollegeStats_CollegeNotFound(t *testing.T) {
	svc, _ := setupTestStatsService()

	_, err := svc.CollegeStats(context.Background(), 404, "", 0)
	ae := apperrors.AsError(err)
	if ae == nil || ae.Kind != apperrors.KindNotFound {
		t.Fatalf("学院不存在应返回 NotFound，实际=%v", err)
	}
}

// ── 全校统计 ──

func TestStatsService_SchoolStats_CollegeRanking(t *testing.T) {
	svc, m := setupTestStatsService()

	peerEval(m, 1, 10, 20, 95, day(1)) // 学院 1
	peerEval(m, 2, 11, 20, 80, day(2)) // 学院 2

	resp, err := svc.SchoolStats(context.Background(), "2024-2025", 1, nil)
	if err != nil {
		t.Fatalf("SchoolStats 应成功: %v", err)
	}
	if resp.TotalEvaluationNum != 2 {
		t.Fatalf("期望 2 条记录，实际=%d", resp.TotalEvaluationNum)
	}
	if len(resp.CollegeRanking) != 2 {
		t.Fatalf("期望 2 个学院入榜，实际=%d", len(resp.CollegeRanking))
	}
	if resp.CollegeRanking[0].CollegeID != 1 || resp.CollegeRanking[1].CollegeID != 2 {
		t.Errorf("学院排名应按均分降序，实际=%d, %d",
			resp.CollegeRanking[0].CollegeID, resp.CollegeRanking[1].CollegeID)
	}
}

func TestStatsService_SchoolStats_CollegeFilter(t *testing.T) {
	svc, m := setupTestStatsService()

	peerEval(m, 1, 10, 20, 95, day(1))
	peerEval(m, 2, 11, 20, 80, day(2))

	resp, err := svc.SchoolStats(context.Background(), "", 0, []int64{2})
	if err != nil {
		t.Fatalf("SchoolStats 应成功: %v", err)
	}
	if resp.TotalEvaluationNum != 1 {
		t.Errorf("学院过滤后期望 1 条，实际=%d", resp.TotalEvaluationNum)
	}
	if resp.AvgTotalScore == nil || *resp.AvgTotalScore != 80 {
		t.Errorf("期望均分 80，实际=%v", resp.AvgTotalScore)
	}
}

// ── 督导口径统计 ──

func TestStatsService_SupervisorStats_DualProjection(t *testing.T) {
	svc, m := setupTestStatsService()

	supervisor := model.EvalSourceSupervisor
	peer := model.EvalSourcePeer

	// 显式督导来源
	addEvaluation(m, evalFixture{
		timetableID: 1, teacherID: 10, listenerID: 20, score: 92,
		status: model.EvalStatusValid, evalSource: &supervisor, listenDate: day(1),
	})
	// eval_source 为 NULL 的历史督导数据也计入
	addEvaluation(m, evalFixture{
		timetableID: 1, teacherID: 10, listenerID: 20, score: 70,
		status: model.EvalStatusValid, evalSource: nil, listenDate: day(2),
	})
	// 同行评价不计入
	addEvaluation(m, evalFixture{
		timetableID: 2, teacherID: 11, listenerID: 20, score: 85,
		status: model.EvalStatusValid, evalSource: &peer, listenDate: day(3),
	})

	resp, err := svc.SupervisorStats(context.Background(), nil, "", 0, nil)
	if err != nil {
		t.Fatalf("SupervisorStats 应成功: %v", err)
	}
	if resp.TotalNum != 2 {
		t.Fatalf("督导口径期望 2 条（含 NULL 来源），实际=%d", resp.TotalNum)
	}
	if len(resp.ByTeacher) != 1 {
		t.Fatalf("期望 1 个（学院,教师）分组，实际=%d", len(resp.ByTeacher))
	}
	bt := resp.ByTeacher[0]
	if bt.TeacherID != 10 || bt.Count != 2 || bt.AvgScore != 81 {
		t.Errorf("分组聚合异常: %+v", bt)
	}
	// 等级投影：92→优秀、70→合格，各一条
	if len(resp.ByLevel) != 2 {
		t.Fatalf("期望 2 个等级分组，实际=%d", len(resp.ByLevel))
	}
	if resp.ByLevel[0].ScoreLevel != model.ScoreLevelExcellent || resp.ByLevel[0].Count != 1 {
		t.Errorf("等级分组应按优秀在前，实际=%+v", resp.ByLevel[0])
	}
	if resp.ByLevel[1].ScoreLevel != model.ScoreLevelPassing || resp.ByLevel[1].Count != 1 {
		t.Errorf("第二等级应为合格，实际=%+v", resp.ByLevel[1])
	}
}

func TestStatsService_SupervisorStats_FilterBySubmitter(t *testing.T) {
	svc, m := setupTestStatsService()

	supervisor := model.EvalSourceSupervisor
	addEvaluation(m, evalFixture{
		timetableID: 1, teacherID: 10, listenerID: 20, score: 92,
		status: model.EvalStatusValid, evalSource: &supervisor, listenDate: day(1),
	})
	addEvaluation(m, evalFixture{
		timetableID: 2, teacherID: 11, listenerID: 11, score: 75,
		status: model.EvalStatusValid, evalSource: &supervisor, listenDate: day(2),
	})

	submitter := int64(20)
	resp, err := svc.SupervisorStats(context.Background(), &submitter, "", 0, nil)
	if err != nil {
		t.Fatalf("SupervisorStats 应成功: %v", err)
	}
	if resp.TotalNum != 1 {
		t.Errorf("限定提交者后期望 1 条，实际=%d", resp.TotalNum)
	}
	if resp.SupervisorUserID != 20 {
		t.Errorf("响应应带回提交者 ID，实际=%d", resp.SupervisorUserID)
	}
}

func TestStatsService_SupervisorStats_EmptyIsNotError(t *testing.T) {
	svc, _ := setupTestStatsService()

	resp, err := svc.SupervisorStats(context.Background(), nil, "", 0, nil)
	if err != nil {
		t.Fatalf("空结果不应报错: %v", err)
	}
	if resp.TotalNum != 0 {
		t.Errorf("期望 0 条，实际=%d", resp.TotalNum)
	}
	if resp.ByTeacher == nil || resp.ByLevel == nil {
		t.Error("空结果分组应为空切片而非 nil")
	}
}

// ── 提交到统计的端到端场景 ──

func TestStatsService_SubmitThenAggregate(t *testing.T) {
	repo, m := newMockRepository()
	evalSvc := NewEvaluationService(repo, zap.NewNop())
	statsSvc := NewStatsService(repo, nil, &config.StatsConfig{}, zap.NewNop())

	m.College.colleges[1] = &model.College{ID: 1, CollegeCode: "CS", CollegeName: "计算机学院"}
	cs := int64(1)
	m.User.users[10] = &model.User{ID: 10, UserNo: "T010", UserName: "张老师", CollegeID: &cs, Status: model.UserStatusActive}
	m.User.users[20] = &model.User{ID: 20, UserNo: "T020", UserName: "李老师", CollegeID: &cs, Status: model.UserStatusActive}
	m.User.nextID = 21
	m.Timetable.timetables[1] = &model.Timetable{
		ID: 1, AcademicYear: "2024-2025", Semester: 1, TeacherID: 10, CollegeID: 1,
		ClassName: "软工2101", CourseName: "操作系统", Weekday: 3, Period: 2,
	}
	m.Timetable.nextID = 2

	if _, err := evalSvc.Submit(context.Background(), 20, &dto.SubmitEvaluationRequest{
		TimetableID:     1,
		TotalScore:      92,
		DimensionScores: map[string]float64{"teach_attitude": 92},
		ListenDate:      "2025-03-01",
	}, model.EvalSourcePeer); err != nil {
		t.Fatalf("Submit 应成功: %v", err)
	}

	resp, err := statsSvc.TeacherStats(context.Background(), 10, "2024-2025", 1)
	if err != nil {
		t.Fatalf("TeacherStats 应成功: %v", err)
	}
	if resp.TotalEvaluationNum != 1 {
		t.Fatalf("期望 count=1，实际=%d", resp.TotalEvaluationNum)
	}
	if resp.AvgTotalScore == nil || *resp.AvgTotalScore != 92 {
		t.Errorf("期望均分 92，实际=%v", resp.AvgTotalScore)
	}
	d := resp.ScoreDistribution
	if d.Excellent != 1 || d.Good != 0 || d.Passing != 0 || d.Failing != 0 {
		t.Errorf("期望分布仅优秀 1，实际=%+v", d)
	}
}

// ── 快照重算 ──

func TestStatsService_RefreshTeacherSnapshot(t *testing.T) {
	svc, m := setupTestStatsService()

	peerEval(m, 1, 10, 20, 95, day(1))
	peerEval(m, 1, 10, 11, 85, day(2))

	if err := svc.RefreshTeacherSnapshot(context.Background(), 10, "2024-2025", 1); err != nil {
		t.Fatalf("RefreshTeacherSnapshot 应成功: %v", err)
	}
	stat, err := m.Stat.GetTeacherStat(context.Background(), 10, "2024-2025", 1)
	if err != nil {
		t.Fatalf("快照应已写入: %v", err)
	}
	if stat.TotalEvaluationNum != 2 {
		t.Errorf("快照期望 2 条记录，实际=%d", stat.TotalEvaluationNum)
	}
	if stat.AvgTotalScore == nil || *stat.AvgTotalScore != 90 {
		t.Errorf("快照均分期望 90，实际=%v", stat.AvgTotalScore)
	}
}

func TestStatsService_RefreshCollegeSnapshot(t *testing.T) {
	svc, m := setupTestStatsService()

	peerEval(m, 1, 10, 20, 92, day(1))

	if err := svc.RefreshCollegeSnapshot(context.Background(), 1, "2024-2025", 1); err != nil {
		t.Fatalf("RefreshCollegeSnapshot 应成功: %v", err)
	}
	stat, err := m.Stat.GetCollegeStat(context.Background(), 1, "2024-2025", 1)
	if err != nil {
		t.Fatalf("快照应已写入: %v", err)
	}
	if stat.TotalEvaluationNum != 1 {
		t.Errorf("快照期望 1 条记录，实际=%d", stat.TotalEvaluationNum)
	}
}
