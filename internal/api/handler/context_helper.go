package handler

import (
	"github.com/gin-gonic/gin"

	"github.com/otee21c/learning-system-sub000/pkg/response"
)

// MustGetUserID gin 컨텍스트에서 user_id 를 꺼낸다.
// 인증 미들웨어가 넣지 않았으면 401 을 쓰고 false 를 돌려준다. 호출자는 바로 return 한다.
func MustGetUserID(c *gin.Context) (string, bool) {
	return mustGetString(c, "user_id")
}

func mustGetString(c *gin.Context, key string) (string, bool) {
	v, exists := c.Get(key)
	if !exists {
		response.Unauthorized(c, 10002, "인증되지 않았습니다")
		return "", false
	}
	s, ok := v.(string)
	if !ok || s == "" {
		response.Unauthorized(c, 10002, "인증되지 않았습니다")
		return "", false
	}
	return s, true
}
