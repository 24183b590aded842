package handler

import (
	"strconv"

	"github.com/gin-gonic/gin"

	"teaching-eval/backend/internal/dto"
	"teaching-eval/backend/internal/service"
	"teaching-eval/backend/pkg/response"
)

// TaskHandler 督导任务分配 HTTP 处理器
type TaskHandler struct {
	taskSvc   service.TaskService
	accessSvc service.AccessService
}

// NewTaskHandler 创建 TaskHandler
func NewTaskHandler(taskSvc service.TaskService, accessSvc service.AccessService) *TaskHandler {
	return &TaskHandler{taskSvc: taskSvc, accessSvc: accessSvc}
}

// AssignTasks 批量分配督导评教任务
// POST /api/v1/tasks/assign
func (h *TaskHandler) AssignTasks(c *gin.Context) {
	var req dto.AssignTasksRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, "参数校验失败")
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
	// 行级范围：院级管理员只能给负责学院的课表派任务
	allowed, err := h.accessSvc.CheckCollegeFilter(c.Request.Context(), p, decision, nil)
	if err != nil {
		response.FromError(c, err)
		return
	}

	result, err := h.taskSvc.Assign(c.Request.Context(), &req, allowed)
	if err != nil {
		response.FromError(c, err)
		return
	}

	response.OK(c, result)
}

// ListTasks 任务列表（管理口径，可按督导与状态过滤）
// GET /api/v1/tasks?supervisor_id=&status=
func (h *TaskHandler) ListTasks(c *gin.Context) {
	var supervisorID *int64
	if raw := c.Query("supervisor_id"); raw != "" {
		id, err := strconv.ParseInt(raw, 10, 64)
		if err != nil || id <= 0 {
			response.BadRequest(c, "supervisor_id 参数无效")
			return
		}
		supervisorID = &id
	}

	status, ok := parseStatusQuery(c)
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
	// 行级范围：非校级管理员只能看到负责学院的任务
	allowed, err := h.accessSvc.CheckCollegeFilter(c.Request.Context(), p, decision, parseCollegeIDsQuery(c))
	if err != nil {
		response.FromError(c, err)
		return
	}

	page, pageSize := ParsePageQuery(c)
	list, total, err := h.taskSvc.ListTasks(c.Request.Context(), supervisorID, status, allowed, (page-1)*pageSize, pageSize)
	if err != nil {
		response.FromError(c, err)
		return
	}

	response.OKPage(c, list, total, page, pageSize)
}

// ListMyTasks 督导查询本人任务
// GET /api/v1/tasks/mine?status=
func (h *TaskHandler) ListMyTasks(c *gin.Context) {
	userID, ok := MustGetUserID(c)
	if !ok {
		return
	}

	status, ok := parseStatusQuery(c)
	if !ok {
		return
	}

	page, pageSize := ParsePageQuery(c)
	list, total, err := h.taskSvc.ListTasks(c.Request.Context(), &userID, status, nil, (page-1)*pageSize, pageSize)
	if err != nil {
		response.FromError(c, err)
		return
	}

	response.OKPage(c, list, total, page, pageSize)
}

func parseStatusQuery(c *gin.Context) (*int, bool) {
	raw := c.Query("status")
	if raw == "" {
		return nil, true
	}
	s, err := strconv.Atoi(raw)
	if err != nil || s < 0 || s > 2 {
		response.BadRequest(c, "status 参数无效")
		return nil, false
	}
	return &s, true
}
