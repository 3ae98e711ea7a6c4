package middleware

import (
	"fmt"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/otee21c/learning-system-sub000/pkg/redis"
	"github.com/otee21c/learning-system-sub000/pkg/response"
)

// RateLimit Redis 슬라이딩 윈도우 요청 제한
// 인증 뒤에 두면 사용자별로, 앞에 두면 IP 별로 센다. rdb 가 nil 이거나 Redis 오류면 통과시킨다.
func RateLimit(rdb *redis.Client, limit int, window time.Duration) gin.HandlerFunc {
	return func(c *gin.Context) {
		if rdb == nil {
			c.Next()
			return
		}

		who := c.GetString("user_id")
		if who == "" {
			who = c.ClientIP()
		}
		key := fmt.Sprintf("rate_limit:%s:%s", who, c.FullPath())

		allowed, err := rdb.CheckRateLimit(c.Request.Context(), key, limit, window)
		if err != nil {
			c.Next()
			return
		}

		if !allowed {
			response.TooManyRequests(c, 10004, "요청이 너무 많습니다. 잠시 후 다시 시도하세요")
			c.Abort()
			return
		}

		c.Next()
	}
}
