package middleware

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/otee21c/learning-system-sub000/pkg/response"
)

// BodyLimit 요청 본문 크기 제한. MMS 이미지(base64)가 본문에 실리므로 여유를 둔다.
func BodyLimit(maxBytes int64) gin.HandlerFunc {
	return func(c *gin.Context) {
		if c.Request.ContentLength > maxBytes {
			response.TooLarge(c, 10005, "요청 본문이 너무 큽니다")
			c.Abort()
			return
		}
		if c.Request.Body != nil {
			c.Request.Body = http.MaxBytesReader(c.Writer, c.Request.Body, maxBytes)
		}

		c.Next()
	}
}
