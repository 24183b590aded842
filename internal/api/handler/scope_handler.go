package handler

import (
	"github.com/gin-gonic/gin"

	"teaching-eval/backend/internal/dto"
	"teaching-eval/backend/internal/service"
	"teaching-eval/backend/pkg/response"
)

// ScopeHandler 督导负责范围 HTTP 处理器
type ScopeHandler struct {
	accessSvc service.AccessService
}

// NewScopeHandler 创建 ScopeHandler
func NewScopeHandler(accessSvc service.AccessService) *ScopeHandler {
	return &ScopeHandler{accessSvc: accessSvc}
}

// GetScope 查询督导当前生效范围
// GET /api/v1/supervisors/:id/scope
func (h *ScopeHandler) GetScope(c *gin.Context) {
	supervisorID, ok := ParseIDParam(c, "id")
	if !ok {
		return
	}

	scope, err := h.accessSvc.GetScope(c.Request.Context(), supervisorID)
	if err != nil {
		response.FromError(c, err)
		return
	}

	response.OK(c, scope)
}

// ReplaceScope 整体替换督导负责范围
// 空列表表示清空显式配置，回落到督导所属学院
// PUT /api/v1/supervisors/:id/scope
func (h *ScopeHandler) ReplaceScope(c *gin.Context) {
	supervisorID, ok := ParseIDParam(c, "id")
	if !ok {
		return
	}

	var req dto.ReplaceScopeRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, "参数校验失败")
		return
	}

	scope, err := h.accessSvc.ReplaceScope(c.Request.Context(), supervisorID, &req)
	if err != nil {
		response.FromError(c, err)
		return
	}

	response.OK(c, scope)
}

// GetMyScope 督导查询本人生效范围
// GET /api/v1/supervisors/me/scope
func (h *ScopeHandler) GetMyScope(c *gin.Context) {
	userID, ok := MustGetUserID(c)
	if !ok {
		return
	}

	scope, err := h.accessSvc.GetScope(c.Request.Context(), userID)
	if err != nil {
		response.FromError(c, err)
		return
	}

	response.OK(c, scope)
}
