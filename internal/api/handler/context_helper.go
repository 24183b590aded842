package handler

import (
	"strconv"
	"strings"

	"github.com/gin-gonic/gin"

	"teaching-eval/backend/internal/api/middleware"
	"teaching-eval/backend/internal/service"
	"teaching-eval/backend/pkg/jwt"
	"teaching-eval/backend/pkg/response"
)

// MustGetUserID 从 Gin 上下文中安全提取 user_id。
// 如果 JWT 中间件未正确注入 user_id，返回 false 并写入 401 响应。
// 调用方应在 ok=false 时直接 return。
func MustGetUserID(c *gin.Context) (int64, bool) {
	v, exists := c.Get("user_id")
	if !exists {
		response.Unauthorized(c, "未认证")
		return 0, false
	}
	id, ok := v.(int64)
	if !ok || id == 0 {
		response.Unauthorized(c, "未认证")
		return 0, false
	}
	return id, true
}

// MustGetPrincipal 组装请求主体，user_id 缺失时写入 401
func MustGetPrincipal(c *gin.Context) (*service.Principal, bool) {
	id, ok := MustGetUserID(c)
	if !ok {
		return nil, false
	}
	return &service.Principal{UserID: id, UserNo: c.GetString("user_no")}, true
}

// MustGetClaims 提取 JWT 中间件注入的完整声明（登出时需要 JTI）
func MustGetClaims(c *gin.Context) (*jwt.Claims, bool) {
	v, exists := c.Get("claims")
	if !exists {
		response.Unauthorized(c, "未认证")
		return nil, false
	}
	claims, ok := v.(*jwt.Claims)
	if !ok {
		response.Unauthorized(c, "未认证")
		return nil, false
	}
	return claims, true
}

// MustGetDecision 提取 Authorize 中间件注入的授权决策。
// 路由未挂 Authorize 中间件属于接线错误，按 401 处理
func MustGetDecision(c *gin.Context) (*service.Decision, bool) {
	d := middleware.GetDecision(c)
	if d == nil {
		response.Unauthorized(c, "未认证")
		return nil, false
	}
	return d, true
}

// ParseIDParam 解析路径参数中的数字 ID，失败时写入 400
func ParseIDParam(c *gin.Context, name string) (int64, bool) {
	id, err := strconv.ParseInt(c.Param(name), 10, 64)
	if err != nil || id <= 0 {
		response.BadRequest(c, "ID 参数无效")
		return 0, false
	}
	return id, true
}

// ParsePageQuery 解析分页参数，缺省 page=1 page_size=20，上限 100
func ParsePageQuery(c *gin.Context) (page, pageSize int) {
	page, _ = strconv.Atoi(c.DefaultQuery("page", "1"))
	pageSize, _ = strconv.Atoi(c.DefaultQuery("page_size", "20"))
	if page < 1 {
		page = 1
	}
	if pageSize < 1 || pageSize > 100 {
		pageSize = 20
	}
	return page, pageSize
}

// parseCollegeIDsQuery 解析 college_ids=1,2,3 形式的过滤参数
func parseCollegeIDsQuery(c *gin.Context) []int64 {
	raw := c.Query("college_ids")
	if raw == "" {
		return nil
	}
	var ids []int64
	for _, part := range strings.Split(raw, ",") {
		if id, err := strconv.ParseInt(strings.TrimSpace(part), 10, 64); err == nil && id > 0 {
			ids = append(ids, id)
		}
	}
	return ids
}
