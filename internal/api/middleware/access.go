package middleware

import (
	"github.com/gin-gonic/gin"

	"teaching-eval/backend/internal/service"
	"teaching-eval/backend/pkg/response"
)

const decisionKey = "access_decision"

// Authorize 访问策略中间件
// rolesAny 命中任一角色 且 permsAll 权限全部具备才放行；
// 通过后的授权决策注入上下文，供 Handler 做行级范围过滤
func Authorize(access service.AccessService, rolesAny []string, permsAll ...string) gin.HandlerFunc {
	return func(c *gin.Context) {
		v, exists := c.Get("user_id")
		if !exists {
			response.Unauthorized(c, "未认证")
			c.Abort()
			return
		}
		userID, _ := v.(int64)
		userNo := c.GetString("user_no")

		p := &service.Principal{UserID: userID, UserNo: userNo}
		decision, err := access.Authorize(c.Request.Context(), p, rolesAny, permsAll)
		if err != nil {
			response.FromError(c, err)
			c.Abort()
			return
		}

		c.Set(decisionKey, decision)
		c.Next()
	}
}

// GetDecision 取出 Authorize 注入的授权决策；未经过 Authorize 的路由返回 nil
func GetDecision(c *gin.Context) *service.Decision {
	v, exists := c.Get(decisionKey)
	if !exists {
		return nil
	}
	d, _ := v.(*service.Decision)
	return d
}
