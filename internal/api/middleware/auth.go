package middleware

import (
	"strings"

	"github.com/gin-gonic/gin"

	"teaching-eval/backend/pkg/jwt"
	"teaching-eval/backend/pkg/redis"
	"teaching-eval/backend/pkg/response"
)

// JWTAuth JWT 认证中间件
// 从 Authorization: Bearer <token> 中提取并验证 Access Token，
// 已登出的 Token（JTI 在 Redis 黑名单中）同样拒绝
func JWTAuth(jwtMgr *jwt.Manager, rdb *redis.Client) gin.HandlerFunc {
	return func(c *gin.Context) {
		authHeader := c.GetHeader("Authorization")
		if authHeader == "" {
			response.Unauthorized(c, "缺少认证头")
			c.Abort()
			return
		}

		parts := strings.SplitN(authHeader, " ", 2)
		if len(parts) != 2 || parts[0] != "Bearer" {
			response.Unauthorized(c, "认证头格式无效")
			c.Abort()
			return
		}

		claims, err := jwtMgr.ParseToken(parts[1])
		if err != nil {
			response.Unauthorized(c, "Token 无效或已过期")
			c.Abort()
			return
		}

		if claims.TokenType != "access" {
			response.Unauthorized(c, "Token 类型无效")
			c.Abort()
			return
		}

		// Redis 不可用时降级放行，黑名单查询失败不阻断请求
		if rdb != nil {
			if blocked, err := rdb.IsBlacklisted(c.Request.Context(), claims.ID); err == nil && blocked {
				response.Unauthorized(c, "Token 已失效")
				c.Abort()
				return
			}
		}

		// 将用户信息注入上下文
		c.Set("user_id", claims.UserID)
		c.Set("user_no", claims.UserNo)
		c.Set("claims", claims)

		c.Next()
	}
}
