package service

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"sort"

	"go.uber.org/zap"
	"gorm.io/gorm"

	"teaching-eval/backend/config"
	"teaching-eval/backend/internal/dto"
	"teaching-eval/backend/internal/model"
	"teaching-eval/backend/internal/repository"
	"teaching-eval/backend/pkg/apperrors"
	"teaching-eval/backend/pkg/redis"
)

// StatsService 评教统计业务接口
// 统计总是基于明细实时计算；快照表只是可重建的缓存，不作为事实来源。
// 行级范围（collegeIDs 过滤）由调用方结合 AccessService 先行裁决后传入
type StatsService interface {
	TeacherStats(ctx context.Context, teacherID int64, year string, semester int) (*dto.TeacherStatsResponse, error)
	CollegeStats(ctx context.Context, collegeID int64, year string, semester int) (*dto.CollegeStatsResponse, error)
	SchoolStats(ctx context.Context, year string, semester int, collegeIDs []int64) (*dto.SchoolStatsResponse, error)

	// SupervisorStats 督导提交口径：同一记录集的（学院,教师）与（等级,学院,教师）双投影。
	// supervisorUserID 非空时限定提交者
	SupervisorStats(ctx context.Context, supervisorUserID *int64, year string, semester int, collegeIDs []int64) (*dto.SupervisorStatsResponse, error)

	// RefreshTeacherSnapshot / RefreshCollegeSnapshot 重算统计快照
	RefreshTeacherSnapshot(ctx context.Context, teacherID int64, year string, semester int) error
	RefreshCollegeSnapshot(ctx context.Context, collegeID int64, year string, semester int) error

	// InvalidateCache 评价变更后清掉 Redis 统计缓存
	InvalidateCache(ctx context.Context)
}

type statsService struct {
	repo   *repository.Repository
	cache  *redis.Client
	cfg    *config.StatsConfig
	logger *zap.Logger
}

// NewStatsService 创建 StatsService 实例；cache 可为 nil（纯实时计算）
func NewStatsService(repo *repository.Repository, cache *redis.Client, cfg *config.StatsConfig, logger *zap.Logger) StatsService {
	return &statsService{repo: repo, cache: cache, cfg: cfg, logger: logger}
}

// ────────────────────── 聚合核心 ──────────────────────

// scoreAggregate 一组有效评价的内存聚合中间态
type scoreAggregate struct {
	count      int
	sum        int
	max        int
	min        int
	dimSums    map[string]float64
	dimCounts  map[string]int
	dist       dto.ScoreDistribution
	monthSum   map[string]float64
	monthCount map[string]int
}

func newScoreAggregate() *scoreAggregate {
	return &scoreAggregate{
		dimSums:    make(map[string]float64),
		dimCounts:  make(map[string]int),
		monthSum:   make(map[string]float64),
		monthCount: make(map[string]int),
	}
}

func (a *scoreAggregate) add(ev *model.TeachingEvaluation) {
	score := ev.TotalScore
	if a.count == 0 {
		a.max, a.min = score, score
	} else {
		if score > a.max {
			a.max = score
		}
		if score < a.min {
			a.min = score
		}
	}
	a.count++
	a.sum += score

	switch {
	case score >= 90:
		a.dist.Excellent++
	case score >= 75:
		a.dist.Good++
	case score >= 60:
		a.dist.Passing++
	default:
		a.dist.Failing++
	}

	// 维度均分只统计含该键的记录，键集允许记录间不同
	for code, v := range fromJSONMap(ev.DimensionScores) {
		a.dimSums[code] += v
		a.dimCounts[code]++
	}

	month := ev.ListenDate.Format("2006-01")
	a.monthSum[month] += float64(score)
	a.monthCount[month]++
}

// avg 无记录时返回 nil，调用方不做除零
func (a *scoreAggregate) avg() *float64 {
	if a.count == 0 {
		return nil
	}
	v := round2(float64(a.sum) / float64(a.count))
	return &v
}

func (a *scoreAggregate) maxPtr() *int {
	if a.count == 0 {
		return nil
	}
	v := a.max
	return &v
}

func (a *scoreAggregate) minPtr() *int {
	if a.count == 0 {
		return nil
	}
	v := a.min
	return &v
}

func (a *scoreAggregate) dimensionMeans() map[string]float64 {
	if len(a.dimSums) == 0 {
		return nil
	}
	means := make(map[string]float64, len(a.dimSums))
	for code, sum := range a.dimSums {
		means[code] = round2(sum / float64(a.dimCounts[code]))
	}
	return means
}

func (a *scoreAggregate) monthlyTrend() []dto.TrendPoint {
	if len(a.monthSum) == 0 {
		return nil
	}
	months := make([]string, 0, len(a.monthSum))
	for m := range a.monthSum {
		months = append(months, m)
	}
	sort.Strings(months)

	trend := make([]dto.TrendPoint, 0, len(months))
	for _, m := range months {
		trend = append(trend, dto.TrendPoint{
			Month:    m,
			AvgScore: round2(a.monthSum[m] / float64(a.monthCount[m])),
			Count:    a.monthCount[m],
		})
	}
	return trend
}

func round2(v float64) float64 {
	return float64(int(v*100+0.5)) / 100
}

// topTexts 非空文本按出现次数取前 n，同频按首次出现顺序
func topTexts(texts []string, n int) []string {
	type entry struct {
		text      string
		count     int
		firstSeen int
	}
	counts := make(map[string]*entry)
	var order []*entry
	for i, t := range texts {
		if t == "" {
			continue
		}
		if e, ok := counts[t]; ok {
			e.count++
			continue
		}
		e := &entry{text: t, count: 1, firstSeen: i}
		counts[t] = e
		order = append(order, e)
	}
	sort.SliceStable(order, func(i, j int) bool {
		if order[i].count != order[j].count {
			return order[i].count > order[j].count
		}
		return order[i].firstSeen < order[j].firstSeen
	})
	if len(order) > n {
		order = order[:n]
	}
	result := make([]string, 0, len(order))
	for _, e := range order {
		result = append(result, e.text)
	}
	return result
}

// ────────────────────── 取数 ──────────────────────

func (s *statsService) validRecords(ctx context.Context, q repository.EvaluationStatsQuery) ([]model.TeachingEvaluation, error) {
	q.Statuses = []int{model.EvalStatusValid}
	records, err := s.repo.Evaluation.ListForStats(ctx, q)
	if err != nil {
		return nil, apperrors.Unavailable("查询评价记录失败", err)
	}
	return records, nil
}

func (s *statsService) pendingCount(ctx context.Context, q repository.EvaluationStatsQuery) (int, error) {
	q.Statuses = []int{model.EvalStatusPendingReview}
	records, err := s.repo.Evaluation.ListForStats(ctx, q)
	if err != nil {
		return 0, apperrors.Unavailable("查询待处理评价失败", err)
	}
	return len(records), nil
}

// ────────────────────── 教师统计 ──────────────────────

func (s *statsService) TeacherStats(ctx context.Context, teacherID int64, year string, semester int) (*dto.TeacherStatsResponse, error) {
	cacheKey := fmt.Sprintf("teacher:%d:%s:%d", teacherID, year, semester)
	var cached dto.TeacherStatsResponse
	if s.readCache(ctx, cacheKey, &cached) {
		return &cached, nil
	}

	teacher, err := s.repo.User.GetByID(ctx, teacherID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperrors.NotFound("教师不存在")
		}
		return nil, apperrors.Unavailable("查询教师失败", err)
	}

	baseQuery := repository.EvaluationStatsQuery{
		TeachTeacherID: &teacherID,
		AcademicYear:   year,
		Semester:       semester,
	}
	records, err := s.validRecords(ctx, baseQuery)
	if err != nil {
		return nil, err
	}
	pending, err := s.pendingCount(ctx, baseQuery)
	if err != nil {
		return nil, err
	}

	agg := newScoreAggregate()
	var problems, suggestions []string
	for i := range records {
		agg.add(&records[i])
		problems = append(problems, records[i].ProblemContent)
		suggestions = append(suggestions, records[i].ImproveSuggestion)
	}

	resp := &dto.TeacherStatsResponse{
		TeacherID:           teacherID,
		TeacherName:         teacher.UserName,
		CollegeID:           teacher.CollegeID,
		AcademicYear:        year,
		Semester:            semester,
		TotalEvaluationNum:  agg.count,
		PendingNum:          pending,
		AvgTotalScore:       agg.avg(),
		MaxScore:            agg.maxPtr(),
		MinScore:            agg.minPtr(),
		DimensionAvgScores:  agg.dimensionMeans(),
		ScoreDistribution:   agg.dist,
		MonthlyTrend:        agg.monthlyTrend(),
		HighFreqProblems:    topTexts(problems, 5),
		HighFreqSuggestions: topTexts(suggestions, 5),
	}
	if teacher.College != nil {
		resp.CollegeName = teacher.College.CollegeName
	}

	s.writeCache(ctx, cacheKey, resp)
	return resp, nil
}

// ────────────────────── 学院统计 ──────────────────────

func (s *statsService) CollegeStats(ctx context.Context, collegeID int64, year string, semester int) (*dto.CollegeStatsResponse, error) {
	cacheKey := fmt.Sprintf("college:%d:%s:%d", collegeID, year, semester)
	var cached dto.CollegeStatsResponse
	if s.readCache(ctx, cacheKey, &cached) {
		return &cached, nil
	}

	college, err := s.repo.College.GetByID(ctx, collegeID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperrors.NotFound("学院不存在")
		}
		return nil, apperrors.Unavailable("查询学院失败", err)
	}

	baseQuery := repository.EvaluationStatsQuery{
		CollegeIDs:   []int64{collegeID},
		AcademicYear: year,
		Semester:     semester,
	}
	records, err := s.validRecords(ctx, baseQuery)
	if err != nil {
		return nil, err
	}
	pending, err := s.pendingCount(ctx, baseQuery)
	if err != nil {
		return nil, err
	}

	agg := newScoreAggregate()
	var problems, suggestions []string
	for i := range records {
		agg.add(&records[i])
		problems = append(problems, records[i].ProblemContent)
		suggestions = append(suggestions, records[i].ImproveSuggestion)
	}

	excellenceRate := 0.0
	if agg.count > 0 {
		excellenceRate = round2(float64(agg.dist.Excellent) / float64(agg.count) * 100)
	}

	resp := &dto.CollegeStatsResponse{
		CollegeID:           collegeID,
		CollegeName:         college.CollegeName,
		AcademicYear:        year,
		Semester:            semester,
		TotalEvaluationNum:  agg.count,
		PendingNum:          pending,
		AvgTotalScore:       agg.avg(),
		MaxScore:            agg.maxPtr(),
		MinScore:            agg.minPtr(),
		ExcellenceRate:      excellenceRate,
		DimensionAvgScores:  agg.dimensionMeans(),
		ScoreDistribution:   agg.dist,
		MonthlyTrend:        agg.monthlyTrend(),
		TeacherRanking:      teacherRanking(records),
		HighFreqProblems:    topTexts(problems, 5),
		HighFreqSuggestions: topTexts(suggestions, 5),
	}

	s.writeCache(ctx, cacheKey, resp)
	return resp, nil
}

// teacherRanking 按均分降序，同分教师 ID 升序
func teacherRanking(records []model.TeachingEvaluation) []dto.TeacherRankItem {
	type acc struct {
		sum   int
		count int
		name  string
	}
	byTeacher := make(map[int64]*acc)
	for i := range records {
		ev := &records[i]
		a, ok := byTeacher[ev.TeachTeacherID]
		if !ok {
			a = &acc{}
			if ev.TeachTeacher != nil {
				a.name = ev.TeachTeacher.UserName
			}
			byTeacher[ev.TeachTeacherID] = a
		}
		a.sum += ev.TotalScore
		a.count++
	}
	if len(byTeacher) == 0 {
		return nil
	}

	items := make([]dto.TeacherRankItem, 0, len(byTeacher))
	for id, a := range byTeacher {
		items = append(items, dto.TeacherRankItem{
			TeacherID:       id,
			TeacherName:     a.name,
			AvgScore:        round2(float64(a.sum) / float64(a.count)),
			EvaluationCount: a.count,
		})
	}
	sort.Slice(items, func(i, j int) bool {
		if items[i].AvgScore != items[j].AvgScore {
			return items[i].AvgScore > items[j].AvgScore
		}
		return items[i].TeacherID < items[j].TeacherID
	})
	for i := range items {
		items[i].Rank = i + 1
	}
	return items
}

// ────────────────────── 全校统计 ──────────────────────

func (s *statsService) SchoolStats(ctx context.Context, year string, semester int, collegeIDs []int64) (*dto.SchoolStatsResponse, error) {
	cacheKey := fmt.Sprintf("school:%s:%d:%v", year, semester, collegeIDs)
	var cached dto.SchoolStatsResponse
	if s.readCache(ctx, cacheKey, &cached) {
		return &cached, nil
	}

	baseQuery := repository.EvaluationStatsQuery{
		CollegeIDs:   collegeIDs,
		AcademicYear: year,
		Semester:     semester,
	}
	records, err := s.validRecords(ctx, baseQuery)
	if err != nil {
		return nil, err
	}
	pending, err := s.pendingCount(ctx, baseQuery)
	if err != nil {
		return nil, err
	}

	agg := newScoreAggregate()
	for i := range records {
		agg.add(&records[i])
	}

	resp := &dto.SchoolStatsResponse{
		AcademicYear:       year,
		Semester:           semester,
		TotalEvaluationNum: agg.count,
		PendingNum:         pending,
		AvgTotalScore:      agg.avg(),
		MaxScore:           agg.maxPtr(),
		MinScore:           agg.minPtr(),
		DimensionAvgScores: agg.dimensionMeans(),
		ScoreDistribution:  agg.dist,
		MonthlyTrend:       agg.monthlyTrend(),
		CollegeRanking:     collegeRanking(records),
	}

	s.writeCache(ctx, cacheKey, resp)
	return resp, nil
}

func collegeRanking(records []model.TeachingEvaluation) []dto.CollegeRankItem {
	type acc struct {
		sum   int
		count int
		name  string
	}
	byCollege := make(map[int64]*acc)
	for i := range records {
		ev := &records[i]
		if ev.Timetable == nil {
			continue
		}
		collegeID := ev.Timetable.CollegeID
		a, ok := byCollege[collegeID]
		if !ok {
			a = &acc{}
			if ev.Timetable.College != nil {
				a.name = ev.Timetable.College.CollegeName
			}
			byCollege[collegeID] = a
		}
		a.sum += ev.TotalScore
		a.count++
	}
	if len(byCollege) == 0 {
		return nil
	}

	items := make([]dto.CollegeRankItem, 0, len(byCollege))
	for id, a := range byCollege {
		items = append(items, dto.CollegeRankItem{
			CollegeID:       id,
			CollegeName:     a.name,
			AvgScore:        round2(float64(a.sum) / float64(a.count)),
			EvaluationCount: a.count,
		})
	}
	sort.Slice(items, func(i, j int) bool {
		if items[i].AvgScore != items[j].AvgScore {
			return items[i].AvgScore > items[j].AvgScore
		}
		return items[i].CollegeID < items[j].CollegeID
	})
	for i := range items {
		items[i].Rank = i + 1
	}
	return items
}

// ────────────────────── 督导口径统计 ──────────────────────

func (s *statsService) SupervisorStats(ctx context.Context, supervisorUserID *int64, year string, semester int, collegeIDs []int64) (*dto.SupervisorStatsResponse, error) {
	records, err := s.validRecords(ctx, repository.EvaluationStatsQuery{
		ListenTeacherID: supervisorUserID,
		CollegeIDs:      collegeIDs,
		AcademicYear:    year,
		Semester:        semester,
		SupervisorOnly:  true,
	})
	if err != nil {
		return nil, err
	}

	resp := &dto.SupervisorStatsResponse{
		AcademicYear: year,
		Semester:     semester,
		TotalNum:     len(records),
		ByTeacher:    []dto.SupervisorGroupItem{},
		ByLevel:      []dto.SupervisorLevelGroupItem{},
	}
	if supervisorUserID != nil {
		resp.SupervisorUserID = *supervisorUserID
	}
	if len(records) == 0 {
		return resp, nil
	}

	// 同一记录集的两种分组投影
	type teacherKey struct {
		collegeID int64
		teacherID int64
	}
	type levelKey struct {
		level     string
		collegeID int64
		teacherID int64
	}
	type acc struct {
		sum         int
		count       int
		collegeName string
		teacherName string
	}

	byTeacher := make(map[teacherKey]*acc)
	byLevel := make(map[levelKey]*acc)
	for i := range records {
		ev := &records[i]
		var collegeID int64
		var collegeName string
		if ev.Timetable != nil {
			collegeID = ev.Timetable.CollegeID
			if ev.Timetable.College != nil {
				collegeName = ev.Timetable.College.CollegeName
			}
		}
		var teacherName string
		if ev.TeachTeacher != nil {
			teacherName = ev.TeachTeacher.UserName
		}

		tk := teacherKey{collegeID: collegeID, teacherID: ev.TeachTeacherID}
		a, ok := byTeacher[tk]
		if !ok {
			a = &acc{collegeName: collegeName, teacherName: teacherName}
			byTeacher[tk] = a
		}
		a.sum += ev.TotalScore
		a.count++

		lk := levelKey{level: ev.ScoreLevel, collegeID: collegeID, teacherID: ev.TeachTeacherID}
		la, ok := byLevel[lk]
		if !ok {
			la = &acc{collegeName: collegeName, teacherName: teacherName}
			byLevel[lk] = la
		}
		la.count++
	}

	for k, a := range byTeacher {
		resp.ByTeacher = append(resp.ByTeacher, dto.SupervisorGroupItem{
			CollegeID:   k.collegeID,
			CollegeName: a.collegeName,
			TeacherID:   k.teacherID,
			TeacherName: a.teacherName,
			Count:       a.count,
			AvgScore:    round2(float64(a.sum) / float64(a.count)),
		})
	}
	sort.Slice(resp.ByTeacher, func(i, j int) bool {
		if resp.ByTeacher[i].CollegeID != resp.ByTeacher[j].CollegeID {
			return resp.ByTeacher[i].CollegeID < resp.ByTeacher[j].CollegeID
		}
		return resp.ByTeacher[i].TeacherID < resp.ByTeacher[j].TeacherID
	})

	levelOrder := map[string]int{
		model.ScoreLevelExcellent: 0,
		model.ScoreLevelGood:      1,
		model.ScoreLevelPassing:   2,
		model.ScoreLevelFailing:   3,
	}
	for k, a := range byLevel {
		resp.ByLevel = append(resp.ByLevel, dto.SupervisorLevelGroupItem{
			ScoreLevel:  k.level,
			CollegeID:   k.collegeID,
			CollegeName: a.collegeName,
			TeacherID:   k.teacherID,
			TeacherName: a.teacherName,
			Count:       a.count,
		})
	}
	sort.Slice(resp.ByLevel, func(i, j int) bool {
		li, lj := levelOrder[resp.ByLevel[i].ScoreLevel], levelOrder[resp.ByLevel[j].ScoreLevel]
		if li != lj {
			return li < lj
		}
		if resp.ByLevel[i].CollegeID != resp.ByLevel[j].CollegeID {
			return resp.ByLevel[i].CollegeID < resp.ByLevel[j].CollegeID
		}
		return resp.ByLevel[i].TeacherID < resp.ByLevel[j].TeacherID
	})

	return resp, nil
}

// ────────────────────── 快照重算 ──────────────────────

func (s *statsService) RefreshTeacherSnapshot(ctx context.Context, teacherID int64, year string, semester int) error {
	teacher, err := s.repo.User.GetByID(ctx, teacherID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return apperrors.NotFound("教师不存在")
		}
		return apperrors.Unavailable("查询教师失败", err)
	}

	records, err := s.validRecords(ctx, repository.EvaluationStatsQuery{
		TeachTeacherID: &teacherID,
		AcademicYear:   year,
		Semester:       semester,
	})
	if err != nil {
		return err
	}

	agg := newScoreAggregate()
	for i := range records {
		agg.add(&records[i])
	}

	stat := &model.TeacherEvaluationStat{
		TeacherID:          teacherID,
		StatYear:           year,
		StatSemester:       semester,
		TotalEvaluationNum: agg.count,
		AvgTotalScore:      agg.avg(),
		MaxScore:           agg.maxPtr(),
		MinScore:           agg.minPtr(),
		DimensionAvgScores: toJSONMap(agg.dimensionMeans()),
	}
	if teacher.CollegeID != nil {
		stat.CollegeID = *teacher.CollegeID
	}
	if err := s.repo.Stat.UpsertTeacherStat(ctx, stat); err != nil {
		return apperrors.Unavailable("写入教师统计快照失败", err)
	}
	return nil
}

func (s *statsService) RefreshCollegeSnapshot(ctx context.Context, collegeID int64, year string, semester int) error {
	if _, err := s.repo.College.GetByID(ctx, collegeID); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return apperrors.NotFound("学院不存在")
		}
		return apperrors.Unavailable("查询学院失败", err)
	}

	records, err := s.validRecords(ctx, repository.EvaluationStatsQuery{
		CollegeIDs:   []int64{collegeID},
		AcademicYear: year,
		Semester:     semester,
	})
	if err != nil {
		return err
	}

	agg := newScoreAggregate()
	for i := range records {
		agg.add(&records[i])
	}

	stat := &model.CollegeEvaluationStat{
		CollegeID:          collegeID,
		StatYear:           year,
		StatSemester:       semester,
		TotalEvaluationNum: agg.count,
		AvgTotalScore:      agg.avg(),
		DimensionAvgScores: toJSONMap(agg.dimensionMeans()),
	}
	if err := s.repo.Stat.UpsertCollegeStat(ctx, stat); err != nil {
		return apperrors.Unavailable("写入学院统计快照失败", err)
	}
	return nil
}

// ────────────────────── Redis 缓存 ──────────────────────

func (s *statsService) readCache(ctx context.Context, key string, out interface{}) bool {
	if s.cache == nil || s.cfg.CacheTTL <= 0 {
		return false
	}
	val, err := s.cache.GetStatsCache(ctx, key)
	if err != nil || val == "" {
		return false
	}
	if err := json.Unmarshal([]byte(val), out); err != nil {
		return false
	}
	return true
}

func (s *statsService) writeCache(ctx context.Context, key string, v interface{}) {
	if s.cache == nil || s.cfg.CacheTTL <= 0 {
		return
	}
	data, err := json.Marshal(v)
	if err != nil {
		return
	}
	if err := s.cache.SetStatsCache(ctx, key, string(data), s.cfg.CacheTTL); err != nil {
		s.logger.Warn("写入统计缓存失败", zap.String("key", key), zap.Error(err))
	}
}

func (s *statsService) InvalidateCache(ctx context.Context) {
	if s.cache == nil {
		return
	}
	if err := s.cache.InvalidateStatsCache(ctx, ""); err != nil {
		s.logger.Warn("清理统计缓存失败", zap.Error(err))
	}
}
