package middleware

import (
	"fmt"
	"time"

	"github.com/gin-gonic/gin"

	"culture-points/pkg/redis"
	"culture-points/pkg/response"
)

// RateLimit 基于 Redis 滑动窗口的速率限制中间件
// 已登录请求按员工计数，否则按客户端 IP 计数
// rdb 为 nil 或 Redis 出错时降级放行
func RateLimit(rdb *redis.Client, scope string, limit int, window time.Duration) gin.HandlerFunc {
	return func(c *gin.Context) {
		if rdb == nil || limit <= 0 {
			c.Next()
			return
		}

		subject := c.ClientIP()
		if id := c.GetString(ContextStaffID); id != "" {
			subject = id
		}

		key := fmt.Sprintf("rate_limit:%s:%s", scope, subject)
		allowed, err := rdb.CheckRateLimit(c.Request.Context(), key, limit, window)
		if err != nil {
			c.Next()
			return
		}

		if !allowed {
			response.TooManyRequests(c, 10004, "请求过于频繁，请稍后再试")
			c.Abort()
			return
		}

		c.Next()
	}
}
