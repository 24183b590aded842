package apperrors

import (
	"errors"
	"fmt"
	"strings"
)

// Kind 业务错误分类
// Handler 层据此映射 HTTP 状态码与响应码
type Kind int

const (
	KindNotFound     Kind = iota + 1 // 引用的实体不存在或已软删除
	KindForbidden                    // 角色/权限/数据范围校验失败
	KindConflict                     // 重复提交、唯一约束冲突
	KindInvalidInput                 // 入参不合法
	KindUnavailable                  // 底层存储错误
)

// ForbiddenReason Forbidden 的细分原因，便于诊断响应区分
type ForbiddenReason int

const (
	ReasonNone              ForbiddenReason = iota
	ReasonMissingRole                       // 缺少角色
	ReasonMissingPermission                 // 缺少权限
	ReasonOutOfScope                        // 请求的数据超出负责范围
)

// Error 带分类的业务错误
type Error struct {
	Kind    Kind
	Reason  ForbiddenReason
	Message string

	// Forbidden 细节：缺失的角色/权限编码（诊断用）
	MissingRoles       []string
	MissingPermissions []string

	cause error
}

func (e *Error) Error() string {
	if e.cause != nil {
		return fmt.Sprintf("%s: %v", e.Message, e.cause)
	}
	return e.Message
}

func (e *Error) Unwrap() error { return e.cause }

// ── 构造函数 ──

// NotFound 实体不存在
func NotFound(message string) *Error {
	return &Error{Kind: KindNotFound, Message: message}
}

// Conflict 唯一性冲突
func Conflict(message string) *Error {
	return &Error{Kind: KindConflict, Message: message}
}

// InvalidInput 入参不合法
func InvalidInput(message string) *Error {
	return &Error{Kind: KindInvalidInput, Message: message}
}

// Unavailable 底层存储错误，保留原始错误链
func Unavailable(message string, cause error) *Error {
	return &Error{Kind: KindUnavailable, Message: message, cause: cause}
}

// Forbidden 不带细分原因的 Forbidden（如只允许作者本人操作）
func Forbidden(message string) *Error {
	return &Error{Kind: KindForbidden, Message: message}
}

// MissingRoles 缺少角色的 Forbidden
func MissingRoles(roles []string) *Error {
	return &Error{
		Kind:         KindForbidden,
		Reason:       ReasonMissingRole,
		Message:      fmt.Sprintf("需要以下角色之一: %s", strings.Join(roles, ", ")),
		MissingRoles: roles,
	}
}

// MissingPermissions 缺少权限的 Forbidden
func MissingPermissions(perms []string) *Error {
	return &Error{
		Kind:               KindForbidden,
		Reason:             ReasonMissingPermission,
		Message:            fmt.Sprintf("缺少权限: %s", strings.Join(perms, ", ")),
		MissingPermissions: perms,
	}
}

// OutOfScope 请求数据超出负责范围的 Forbidden
func OutOfScope(message string) *Error {
	return &Error{Kind: KindForbidden, Reason: ReasonOutOfScope, Message: message}
}

// ── 判定辅助 ──

// KindOf 提取错误分类；非业务错误归为 Unavailable
func KindOf(err error) Kind {
	var ae *Error
	if errors.As(err, &ae) {
		return ae.Kind
	}
	return KindUnavailable
}

// IsKind 判断错误是否属于指定分类
func IsKind(err error, kind Kind) bool {
	var ae *Error
	return errors.As(err, &ae) && ae.Kind == kind
}

// AsError 提取 *Error（不存在时返回 nil）
func AsError(err error) *Error {
	var ae *Error
	if errors.As(err, &ae) {
		return ae
	}
	return nil
}
