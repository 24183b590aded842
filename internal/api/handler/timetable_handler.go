package handler

import (
	"strconv"

	"github.com/gin-gonic/gin"

	"teaching-eval/backend/internal/dto"
	"teaching-eval/backend/internal/repository"
	"teaching-eval/backend/internal/service"
	"teaching-eval/backend/pkg/response"
)

// TimetableHandler 课表模块 HTTP 处理器
type TimetableHandler struct {
	timetableSvc service.TimetableService
	importSvc    service.TimetableImportService
	icsSvc       service.ICSFeedService
	accessSvc    service.AccessService
}

// NewTimetableHandler 创建 TimetableHandler
func NewTimetableHandler(
	timetableSvc service.TimetableService,
	importSvc service.TimetableImportService,
	icsSvc service.ICSFeedService,
	accessSvc service.AccessService,
) *TimetableHandler {
	return &TimetableHandler{
		timetableSvc: timetableSvc,
		importSvc:    importSvc,
		icsSvc:       icsSvc,
		accessSvc:    accessSvc,
	}
}

// UpsertTimetable 幂等创建或更新课表
// POST /api/v1/timetables
func (h *TimetableHandler) UpsertTimetable(c *gin.Context) {
	var req dto.UpsertTimetableRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, "参数校验失败")
		return
	}

	tt, err := h.timetableSvc.Upsert(c.Request.Context(), &req)
	if err != nil {
		response.FromError(c, err)
		return
	}

	response.OK(c, tt)
}

// GetTimetable 课表详情
// GET /api/v1/timetables/:id
func (h *TimetableHandler) GetTimetable(c *gin.Context) {
	id, ok := ParseIDParam(c, "id")
	if !ok {
		return
	}

	tt, err := h.timetableSvc.GetByID(c.Request.Context(), id)
	if err != nil {
		response.FromError(c, err)
		return
	}

	response.OK(c, tt)
}

// ListTimetables 课表分页列表，行级学院范围过滤
// GET /api/v1/timetables?college_ids=&teacher_id=&academic_year=&semester=
func (h *TimetableHandler) ListTimetables(c *gin.Context) {
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

	page, pageSize := ParsePageQuery(c)
	q := repository.TimetableQuery{
		CollegeIDs:   collegeIDs,
		AcademicYear: c.Query("academic_year"),
		Offset:       (page - 1) * pageSize,
		Limit:        pageSize,
	}
	if raw := c.Query("teacher_id"); raw != "" {
		id, err := strconv.ParseInt(raw, 10, 64)
		if err != nil || id <= 0 {
			response.BadRequest(c, "teacher_id 参数无效")
			return
		}
		q.TeacherID = &id
	}
	if raw := c.Query("semester"); raw != "" {
		sem, err := strconv.Atoi(raw)
		if err != nil || (sem != 1 && sem != 2) {
			response.BadRequest(c, "semester 参数无效")
			return
		}
		q.Semester = sem
	}

	list, total, err := h.timetableSvc.List(c.Request.Context(), q)
	if err != nil {
		response.FromError(c, err)
		return
	}

	response.OKPage(c, list, total, page, pageSize)
}

// DeleteTimetable 删除课表（软删，身份键占用随之释放）
// DELETE /api/v1/timetables/:id
func (h *TimetableHandler) DeleteTimetable(c *gin.Context) {
	id, ok := ParseIDParam(c, "id")
	if !ok {
		return
	}

	if err := h.timetableSvc.Delete(c.Request.Context(), id); err != nil {
		response.FromError(c, err)
		return
	}

	response.OK(c, nil)
}

// ImportTimetables Excel 批量导入课表
// POST /api/v1/timetables/import（multipart 字段名 file）
func (h *TimetableHandler) ImportTimetables(c *gin.Context) {
	fileHeader, err := c.FormFile("file")
	if err != nil {
		response.BadRequest(c, "缺少上传文件")
		return
	}

	f, err := fileHeader.Open()
	if err != nil {
		response.BadRequest(c, "无法读取上传文件")
		return
	}
	defer f.Close()

	result, err := h.importSvc.Import(c.Request.Context(), f)
	if err != nil {
		response.FromError(c, err)
		return
	}

	response.OK(c, result)
}

// ListMyPending 当前用户的待评课表
// GET /api/v1/timetables/pending
func (h *TimetableHandler) ListMyPending(c *gin.Context) {
	userID, ok := MustGetUserID(c)
	if !ok {
		return
	}

	page, pageSize := ParsePageQuery(c)
	list, total, err := h.timetableSvc.ListPending(c.Request.Context(), userID, repository.TimetableQuery{
		Offset: (page - 1) * pageSize,
		Limit:  pageSize,
	})
	if err != nil {
		response.FromError(c, err)
		return
	}

	response.OKPage(c, list, total, page, pageSize)
}

// ListMyCompleted 当前用户已评过的课表
// GET /api/v1/timetables/completed
func (h *TimetableHandler) ListMyCompleted(c *gin.Context) {
	userID, ok := MustGetUserID(c)
	if !ok {
		return
	}

	page, pageSize := ParsePageQuery(c)
	list, total, err := h.timetableSvc.ListCompleted(c.Request.Context(), userID, repository.TimetableQuery{
		Offset: (page - 1) * pageSize,
		Limit:  pageSize,
	})
	if err != nil {
		response.FromError(c, err)
		return
	}

	response.OKPage(c, list, total, page, pageSize)
}

// PendingFeed 待评课表的 iCalendar 订阅
// GET /api/v1/timetables/pending.ics
func (h *TimetableHandler) PendingFeed(c *gin.Context) {
	userID, ok := MustGetUserID(c)
	if !ok {
		return
	}

	feed, err := h.icsSvc.PendingFeed(c.Request.Context(), userID)
	if err != nil {
		response.FromError(c, err)
		return
	}

	c.Header("Content-Disposition", `attachment; filename="pending.ics"`)
	c.Data(200, "text/calendar; charset=utf-8", []byte(feed))
}
