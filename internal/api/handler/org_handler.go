package handler

import (
	"strconv"

	"github.com/gin-gonic/gin"

	"teaching-eval/backend/internal/dto"
	"teaching-eval/backend/internal/service"
	"teaching-eval/backend/pkg/response"
)

// OrgHandler 组织架构模块 HTTP 处理器（学院 + 教研室）
type OrgHandler struct {
	orgSvc service.OrgService
}

// NewOrgHandler 创建 OrgHandler
func NewOrgHandler(orgSvc service.OrgService) *OrgHandler {
	return &OrgHandler{orgSvc: orgSvc}
}

// ────────────────────── 学院 ──────────────────────

// CreateCollege 创建学院
// POST /api/v1/colleges
func (h *OrgHandler) CreateCollege(c *gin.Context) {
	var req dto.CreateCollegeRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, "参数校验失败")
		return
	}

	college, err := h.orgSvc.CreateCollege(c.Request.Context(), &req)
	if err != nil {
		response.FromError(c, err)
		return
	}

	response.Created(c, college)
}

// ListColleges 学院列表
// GET /api/v1/colleges
func (h *OrgHandler) ListColleges(c *gin.Context) {
	colleges, err := h.orgSvc.ListColleges(c.Request.Context())
	if err != nil {
		response.FromError(c, err)
		return
	}

	response.OK(c, gin.H{"list": colleges})
}

// UpdateCollege 更新学院
// PUT /api/v1/colleges/:id
func (h *OrgHandler) UpdateCollege(c *gin.Context) {
	id, ok := ParseIDParam(c, "id")
	if !ok {
		return
	}

	var req dto.UpdateCollegeRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, "参数校验失败")
		return
	}

	college, err := h.orgSvc.UpdateCollege(c.Request.Context(), id, &req)
	if err != nil {
		response.FromError(c, err)
		return
	}

	response.OK(c, college)
}

// DeleteCollege 删除学院（软删）
// DELETE /api/v1/colleges/:id
func (h *OrgHandler) DeleteCollege(c *gin.Context) {
	id, ok := ParseIDParam(c, "id")
	if !ok {
		return
	}

	if err := h.orgSvc.DeleteCollege(c.Request.Context(), id); err != nil {
		response.FromError(c, err)
		return
	}

	response.OK(c, nil)
}

// ────────────────────── 教研室 ──────────────────────

// CreateResearchRoom 创建教研室
// POST /api/v1/research-rooms
func (h *OrgHandler) CreateResearchRoom(c *gin.Context) {
	var req dto.CreateResearchRoomRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, "参数校验失败")
		return
	}

	room, err := h.orgSvc.CreateResearchRoom(c.Request.Context(), &req)
	if err != nil {
		response.FromError(c, err)
		return
	}

	response.Created(c, room)
}

// ListResearchRooms 教研室列表，college_id=0 表示全部
// GET /api/v1/research-rooms?college_id=
func (h *OrgHandler) ListResearchRooms(c *gin.Context) {
	var collegeID int64
	if raw := c.Query("college_id"); raw != "" {
		id, err := strconv.ParseInt(raw, 10, 64)
		if err != nil || id <= 0 {
			response.BadRequest(c, "college_id 参数无效")
			return
		}
		collegeID = id
	}

	rooms, err := h.orgSvc.ListResearchRooms(c.Request.Context(), collegeID)
	if err != nil {
		response.FromError(c, err)
		return
	}

	response.OK(c, gin.H{"list": rooms})
}

// UpdateResearchRoom 更新教研室
// PUT /api/v1/research-rooms/:id
func (h *OrgHandler) UpdateResearchRoom(c *gin.Context) {
	id, ok := ParseIDParam(c, "id")
	if !ok {
		return
	}

	var req dto.UpdateResearchRoomRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, "参数校验失败")
		return
	}

	room, err := h.orgSvc.UpdateResearchRoom(c.Request.Context(), id, &req)
	if err != nil {
		response.FromError(c, err)
		return
	}

	response.OK(c, room)
}

// DeleteResearchRoom 删除教研室（软删）
// DELETE /api/v1/research-rooms/:id
func (h *OrgHandler) DeleteResearchRoom(c *gin.Context) {
	id, ok := ParseIDParam(c, "id")
	if !ok {
		return
	}

	if err := h.orgSvc.DeleteResearchRoom(c.Request.Context(), id); err != nil {
		response.FromError(c, err)
		return
	}

	response.OK(c, nil)
}
