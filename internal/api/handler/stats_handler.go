package handler

import (
	"strconv"

	"github.com/gin-gonic/gin"

	"teaching-eval/backend/internal/dto"
	"teaching-eval/backend/internal/service"
	"teaching-eval/backend/pkg/apperrors"
	"teaching-eval/backend/pkg/response"
)

// StatsHandler 统计模块 HTTP 处理器
type StatsHandler struct {
	statsSvc  service.StatsService
	accessSvc service.AccessService
}

// NewStatsHandler 创建 StatsHandler
func NewStatsHandler(statsSvc service.StatsService, accessSvc service.AccessService) *StatsHandler {
	return &StatsHandler{statsSvc: statsSvc, accessSvc: accessSvc}
}

// GetTeacherStats 教师评教统计
// GET /api/v1/stats/teachers/:id?academic_year=&semester=
func (h *StatsHandler) GetTeacherStats(c *gin.Context) {
	teacherID, ok := ParseIDParam(c, "id")
	if !ok {
		return
	}
	year, semester, ok := bindPeriod(c)
	if !ok {
		return
	}

	p, ok := MustGetPrincipal(c)
	if !ok {
		return
	}
	decision, ok := MustGetDecision(c)
	if !ok {
		return
	}

	// 行级范围：允许集合非 nil 时被查教师的学院必须落在其中
	allowed, err := h.accessSvc.CheckCollegeFilter(c.Request.Context(), p, decision, nil)
	if err != nil {
		response.FromError(c, err)
		return
	}

	stats, err := h.statsSvc.TeacherStats(c.Request.Context(), teacherID, year, semester)
	if err != nil {
		response.FromError(c, err)
		return
	}

	if allowed != nil && p.UserID != teacherID {
		inScope := false
		if stats.CollegeID != nil {
			for _, id := range allowed {
				if id == *stats.CollegeID {
					inScope = true
					break
				}
			}
		}
		if !inScope {
			response.FromError(c, apperrors.OutOfScope("该教师超出负责范围"))
			return
		}
	}

	response.OK(c, stats)
}

// GetMyStats 当前教师本人统计
// GET /api/v1/stats/me?academic_year=&semester=
func (h *StatsHandler) GetMyStats(c *gin.Context) {
	userID, ok := MustGetUserID(c)
	if !ok {
		return
	}
	year, semester, ok := bindPeriod(c)
	if !ok {
		return
	}

	stats, err := h.statsSvc.TeacherStats(c.Request.Context(), userID, year, semester)
	if err != nil {
		response.FromError(c, err)
		return
	}

	response.OK(c, stats)
}

// GetCollegeStats 学院评教统计
// GET /api/v1/stats/colleges/:id?academic_year=&semester=
func (h *StatsHandler) GetCollegeStats(c *gin.Context) {
	collegeID, ok := ParseIDParam(c, "id")
	if !ok {
		return
	}
	year, semester, ok := bindPeriod(c)
	if !ok {
		return
	}

	p, ok := MustGetPrincipal(c)
	if !ok {
		return
	}
	decision, ok := MustGetDecision(c)
	if !ok {
		return
	}

	if _, err := h.accessSvc.CheckCollegeFilter(c.Request.Context(), p, decision, []int64{collegeID}); err != nil {
		response.FromError(c, err)
		return
	}

	stats, err := h.statsSvc.CollegeStats(c.Request.Context(), collegeID, year, semester)
	if err != nil {
		response.FromError(c, err)
		return
	}

	response.OK(c, stats)
}

// GetSchoolStats 全校评教统计，非校级管理员自动收敛到负责范围
// GET /api/v1/stats/school?academic_year=&semester=&college_ids=
func (h *StatsHandler) GetSchoolStats(c *gin.Context) {
	year, semester, ok := bindPeriod(c)
	if !ok {
		return
	}

	p, ok := MustGetPrincipal(c)
	if !ok {
		return
	}
	decision, ok := MustGetDecision(c)
	if !ok {
		return
	}

	collegeIDs, err := h.accessSvc.CheckCollegeFilter(c.Request.Context(), p, decision, parseCollegeIDsQuery(c))
	if err != nil {
		response.FromError(c, err)
		return
	}

	stats, err := h.statsSvc.SchoolStats(c.Request.Context(), year, semester, collegeIDs)
	if err != nil {
		response.FromError(c, err)
		return
	}

	response.OK(c, stats)
}

// GetSupervisorStats 督导提交口径统计（双分组投影）
// GET /api/v1/stats/supervisors?supervisor_id=&academic_year=&semester=&college_ids=
func (h *StatsHandler) GetSupervisorStats(c *gin.Context) {
	year, semester, ok := bindPeriod(c)
	if !ok {
		return
	}

	var supervisorID *int64
	if raw := c.Query("supervisor_id"); raw != "" {
		id, err := strconv.ParseInt(raw, 10, 64)
		if err != nil || id <= 0 {
			response.BadRequest(c, "supervisor_id 参数无效")
			return
		}
		supervisorID = &id
	}

	p, ok := MustGetPrincipal(c)
	if !ok {
		return
	}
	decision, ok := MustGetDecision(c)
	if !ok {
		return
	}

	collegeIDs, err := h.accessSvc.CheckCollegeFilter(c.Request.Context(), p, decision, parseCollegeIDsQuery(c))
	if err != nil {
		response.FromError(c, err)
		return
	}

	stats, err := h.statsSvc.SupervisorStats(c.Request.Context(), supervisorID, year, semester, collegeIDs)
	if err != nil {
		response.FromError(c, err)
		return
	}

	response.OK(c, stats)
}

// GetMySupervisorStats 督导查询本人提交统计
// GET /api/v1/stats/supervisors/me?academic_year=&semester=
func (h *StatsHandler) GetMySupervisorStats(c *gin.Context) {
	userID, ok := MustGetUserID(c)
	if !ok {
		return
	}
	year, semester, ok := bindPeriod(c)
	if !ok {
		return
	}

	stats, err := h.statsSvc.SupervisorStats(c.Request.Context(), &userID, year, semester, nil)
	if err != nil {
		response.FromError(c, err)
		return
	}

	response.OK(c, stats)
}

// RefreshTeacherSnapshot 重算教师统计快照
// POST /api/v1/stats/teachers/:id/refresh?academic_year=&semester=
func (h *StatsHandler) RefreshTeacherSnapshot(c *gin.Context) {
	teacherID, ok := ParseIDParam(c, "id")
	if !ok {
		return
	}
	year, semester, ok := bindPeriod(c)
	if !ok {
		return
	}

	if err := h.statsSvc.RefreshTeacherSnapshot(c.Request.Context(), teacherID, year, semester); err != nil {
		response.FromError(c, err)
		return
	}

	response.OK(c, nil)
}

// RefreshCollegeSnapshot 重算学院统计快照
// POST /api/v1/stats/colleges/:id/refresh?academic_year=&semester=
func (h *StatsHandler) RefreshCollegeSnapshot(c *gin.Context) {
	collegeID, ok := ParseIDParam(c, "id")
	if !ok {
		return
	}
	year, semester, ok := bindPeriod(c)
	if !ok {
		return
	}

	if err := h.statsSvc.RefreshCollegeSnapshot(c.Request.Context(), collegeID, year, semester); err != nil {
		response.FromError(c, err)
		return
	}

	response.OK(c, nil)
}

// bindPeriod 解析统计周期参数，失败时写入 400
func bindPeriod(c *gin.Context) (string, int, bool) {
	var req dto.StatsPeriodRequest
	if err := c.ShouldBindQuery(&req); err != nil {
		response.BadRequest(c, "统计周期参数无效")
		return "", 0, false
	}
	return req.AcademicYear, req.Semester, true
}
