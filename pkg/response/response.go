package response

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"teaching-eval/backend/pkg/apperrors"
)

// Response 统一响应结构
type Response struct {
	Code    int         `json:"code"`
	Message string      `json:"message"`
	Data    interface{} `json:"data,omitempty"`
	Details interface{} `json:"details,omitempty"`
}

// Pagination 分页元数据
type Pagination struct {
	Page       int   `json:"page"`
	PageSize   int   `json:"page_size"`
	Total      int64 `json:"total"`
	TotalPages int   `json:"total_pages"`
}

// PageData 分页响应数据
type PageData struct {
	List       interface{} `json:"list"`
	Pagination Pagination  `json:"pagination"`
}

// ── 业务响应码 ──

const (
	CodeOK                = 0
	CodeInvalidInput      = 40001
	CodeUnauthorized      = 40101
	CodeMissingRole       = 40301
	CodeMissingPermission = 40302
	CodeOutOfScope        = 40303
	CodeNotFound          = 40401
	CodeConflict          = 40901
	CodeInternal          = 50000
)

// ── 成功响应 ──

// OK 200 成功响应
func OK(c *gin.Context, data interface{}) {
	c.JSON(http.StatusOK, Response{
		Code:    CodeOK,
		Message: "success",
		Data:    data,
	})
}

// Created 201 创建成功
func Created(c *gin.Context, data interface{}) {
	c.JSON(http.StatusCreated, Response{
		Code:    CodeOK,
		Message: "success",
		Data:    data,
	})
}

// OKPage 200 分页成功
func OKPage(c *gin.Context, list interface{}, total int64, page, pageSize int) {
	totalPages := int(total) / pageSize
	if int(total)%pageSize > 0 {
		totalPages++
	}
	c.JSON(http.StatusOK, Response{
		Code:    CodeOK,
		Message: "success",
		Data: PageData{
			List: list,
			Pagination: Pagination{
				Page:       page,
				PageSize:   pageSize,
				Total:      total,
				TotalPages: totalPages,
			},
		},
	})
}

// ── 错误响应 ──

// Error 通用错误响应
func Error(c *gin.Context, httpStatus int, code int, message string) {
	c.JSON(httpStatus, Response{
		Code:    code,
		Message: message,
	})
}

// BadRequest 400
func BadRequest(c *gin.Context, message string) {
	Error(c, http.StatusBadRequest, CodeInvalidInput, message)
}

// Unauthorized 401
func Unauthorized(c *gin.Context, message string) {
	Error(c, http.StatusUnauthorized, CodeUnauthorized, message)
}

// InternalError 500
func InternalError(c *gin.Context) {
	Error(c, http.StatusInternalServerError, CodeInternal, "服务器内部错误")
}

// FromError 将业务错误映射为 HTTP 响应
// Forbidden 细分原因带入 details，便于前端提示缺了什么
func FromError(c *gin.Context, err error) {
	ae := apperrors.AsError(err)
	if ae == nil {
		InternalError(c)
		return
	}

	switch ae.Kind {
	case apperrors.KindNotFound:
		Error(c, http.StatusNotFound, CodeNotFound, ae.Message)
	case apperrors.KindConflict:
		Error(c, http.StatusConflict, CodeConflict, ae.Message)
	case apperrors.KindInvalidInput:
		Error(c, http.StatusBadRequest, CodeInvalidInput, ae.Message)
	case apperrors.KindForbidden:
		code := CodeMissingRole
		var details interface{}
		switch ae.Reason {
		case apperrors.ReasonMissingPermission:
			code = CodeMissingPermission
			details = gin.H{"missing_permissions": ae.MissingPermissions}
		case apperrors.ReasonOutOfScope:
			code = CodeOutOfScope
		case apperrors.ReasonMissingRole:
			details = gin.H{"missing_roles": ae.MissingRoles}
		}
		c.JSON(http.StatusForbidden, Response{Code: code, Message: ae.Message, Details: details})
	default:
		InternalError(c)
	}
}
