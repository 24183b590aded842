package handler

import (
	"strconv"
	"time"

	"github.com/gin-gonic/gin"

	"teaching-eval/backend/internal/dto"
	"teaching-eval/backend/internal/model"
	"teaching-eval/backend/internal/repository"
	"teaching-eval/backend/internal/service"
	"teaching-eval/backend/pkg/apperrors"
	"teaching-eval/backend/pkg/response"
)

// EvaluationHandler 评教模块 HTTP 处理器
type EvaluationHandler struct {
	evalSvc   service.EvaluationService
	statsSvc  service.StatsService
	accessSvc service.AccessService
}

// NewEvaluationHandler 创建 EvaluationHandler
func NewEvaluationHandler(evalSvc service.EvaluationService, statsSvc service.StatsService, accessSvc service.AccessService) *EvaluationHandler {
	return &EvaluationHandler{evalSvc: evalSvc, statsSvc: statsSvc, accessSvc: accessSvc}
}

// SubmitEvaluation 提交评教
// 督导角色的提交记为督导口径，其余记为同行互评
// POST /api/v1/evaluations
func (h *EvaluationHandler) SubmitEvaluation(c *gin.Context) {
	var req dto.SubmitEvaluationRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, "参数校验失败")
		return
	}

	userID, ok := MustGetUserID(c)
	if !ok {
		return
	}
	decision, ok := MustGetDecision(c)
	if !ok {
		return
	}

	evalSource := model.EvalSourcePeer
	for _, r := range decision.Roles {
		if r == model.RoleSupervisor {
			evalSource = model.EvalSourceSupervisor
			break
		}
	}

	ev, err := h.evalSvc.Submit(c.Request.Context(), userID, &req, evalSource)
	if err != nil {
		response.FromError(c, err)
		return
	}

	h.statsSvc.InvalidateCache(c.Request.Context())
	response.Created(c, ev)
}

// ReviewEvaluation 审核评教，三态间任意迁移
// PUT /api/v1/evaluations/:id/review
func (h *EvaluationHandler) ReviewEvaluation(c *gin.Context) {
	id, ok := ParseIDParam(c, "id")
	if !ok {
		return
	}

	var req dto.ReviewEvaluationRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, "参数校验失败")
		return
	}

	reviewerID, ok := MustGetUserID(c)
	if !ok {
		return
	}

	ev, err := h.evalSvc.Review(c.Request.Context(), reviewerID, id, &req)
	if err != nil {
		response.FromError(c, err)
		return
	}

	h.statsSvc.InvalidateCache(c.Request.Context())
	response.OK(c, ev)
}

// DeleteEvaluation 删除评教记录（软删，作者本人或校级管理员）
// DELETE /api/v1/evaluations/:id
func (h *EvaluationHandler) DeleteEvaluation(c *gin.Context) {
	id, ok := ParseIDParam(c, "id")
	if !ok {
		return
	}

	userID, ok := MustGetUserID(c)
	if !ok {
		return
	}
	decision, ok := MustGetDecision(c)
	if !ok {
		return
	}

	if err := h.evalSvc.SoftDelete(c.Request.Context(), userID, id, decision.IsSchoolAdmin()); err != nil {
		response.FromError(c, err)
		return
	}

	h.statsSvc.InvalidateCache(c.Request.Context())
	response.OK(c, nil)
}

// GetEvaluation 评教记录详情
// GET /api/v1/evaluations/:id
func (h *EvaluationHandler) GetEvaluation(c *gin.Context) {
	id, ok := ParseIDParam(c, "id")
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
	allowed, err := h.accessSvc.CheckCollegeFilter(c.Request.Context(), p, decision, nil)
	if err != nil {
		response.FromError(c, err)
		return
	}

	ev, err := h.evalSvc.GetByID(c.Request.Context(), id)
	if err != nil {
		response.FromError(c, err)
		return
	}

	// 行级范围：本人记录（提交或被评）不受限，其余按课表学院校验
	if allowed != nil && p.UserID != ev.ListenTeacherID && p.UserID != ev.TeachTeacherID {
		inScope := false
		if ev.Timetable != nil {
			for _, cid := range allowed {
				if cid == ev.Timetable.CollegeID {
					inScope = true
					break
				}
			}
		}
		if !inScope {
			response.FromError(c, apperrors.OutOfScope("该评价记录超出负责范围"))
			return
		}
	}

	response.OK(c, ev)
}

// ListEvaluations 评教记录列表（管理口径）
// GET /api/v1/evaluations
func (h *EvaluationHandler) ListEvaluations(c *gin.Context) {
	var req dto.EvaluationListRequest
	if err := c.ShouldBindQuery(&req); err != nil {
		response.BadRequest(c, "参数校验失败")
		return
	}

	q, ok := h.buildListQuery(c, &req)
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
	// 行级范围：非校级管理员只能看到负责学院的记录
	allowed, err := h.accessSvc.CheckCollegeFilter(c.Request.Context(), p, decision, parseCollegeIDsQuery(c))
	if err != nil {
		response.FromError(c, err)
		return
	}
	q.CollegeIDs = allowed

	page, pageSize := ParsePageQuery(c)
	q.Offset = (page - 1) * pageSize
	q.Limit = pageSize

	list, total, err := h.evalSvc.List(c.Request.Context(), q)
	if err != nil {
		response.FromError(c, err)
		return
	}

	response.OKPage(c, list, total, page, pageSize)
}

// ListMyEvaluations 当前用户提交的评教记录
// GET /api/v1/evaluations/mine
func (h *EvaluationHandler) ListMyEvaluations(c *gin.Context) {
	userID, ok := MustGetUserID(c)
	if !ok {
		return
	}

	var req dto.EvaluationListRequest
	if err := c.ShouldBindQuery(&req); err != nil {
		response.BadRequest(c, "参数校验失败")
		return
	}

	q, ok := h.buildListQuery(c, &req)
	if !ok {
		return
	}
	q.ListenTeacherID = &userID

	page, pageSize := ParsePageQuery(c)
	q.Offset = (page - 1) * pageSize
	q.Limit = pageSize

	list, total, err := h.evalSvc.List(c.Request.Context(), q)
	if err != nil {
		response.FromError(c, err)
		return
	}

	response.OKPage(c, list, total, page, pageSize)
}

// ListDimensions 启用中的评价维度配置
// GET /api/v1/evaluations/dimensions
func (h *EvaluationHandler) ListDimensions(c *gin.Context) {
	dims, err := h.evalSvc.ListDimensions(c.Request.Context())
	if err != nil {
		response.FromError(c, err)
		return
	}

	response.OK(c, gin.H{"list": dims})
}

func (h *EvaluationHandler) buildListQuery(c *gin.Context, req *dto.EvaluationListRequest) (repository.EvaluationListQuery, bool) {
	q := repository.EvaluationListQuery{
		Status:       req.Status,
		ScoreLevel:   req.ScoreLevel,
		AcademicYear: req.AcademicYear,
		Semester:     req.Semester,
	}

	if req.StartDate != "" {
		t, err := time.Parse("2006-01-02", req.StartDate)
		if err != nil {
			response.BadRequest(c, "start_date 格式无效")
			return q, false
		}
		q.StartDate = &t
	}
	if req.EndDate != "" {
		t, err := time.Parse("2006-01-02", req.EndDate)
		if err != nil {
			response.BadRequest(c, "end_date 格式无效")
			return q, false
		}
		q.EndDate = &t
	}
	if raw := c.Query("teach_teacher_id"); raw != "" {
		id, err := strconv.ParseInt(raw, 10, 64)
		if err != nil || id <= 0 {
			response.BadRequest(c, "teach_teacher_id 参数无效")
			return q, false
		}
		q.TeachTeacherID = &id
	}
	if raw := c.Query("timetable_id"); raw != "" {
		id, err := strconv.ParseInt(raw, 10, 64)
		if err != nil || id <= 0 {
			response.BadRequest(c, "timetable_id 参数无效")
			return q, false
		}
		q.TimetableID = &id
	}

	return q, true
}
