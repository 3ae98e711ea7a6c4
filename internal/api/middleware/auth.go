package middleware

import (
	"errors"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/otee21c/learning-system-sub000/pkg/jwt"
	"github.com/otee21c/learning-system-sub000/pkg/redis"
	"github.com/otee21c/learning-system-sub000/pkg/response"
)

// 역할
const (
	RoleAdmin   = "admin"
	RoleTeacher = "teacher"
)

// JWTAuth Authorization: Bearer <token> 의 액세스 토큰을 검증한다
// rdb 가 nil 이면 폐기 토큰 확인을 건너뛴다
func JWTAuth(jwtMgr *jwt.Manager, rdb *redis.Client) gin.HandlerFunc {
	return func(c *gin.Context) {
		authHeader := c.GetHeader("Authorization")
		if authHeader == "" {
			response.Unauthorized(c, 10002, "인증 헤더가 없습니다")
			c.Abort()
			return
		}

		parts := strings.SplitN(authHeader, " ", 2)
		if len(parts) != 2 || parts[0] != "Bearer" {
			response.Unauthorized(c, 10002, "인증 헤더 형식이 올바르지 않습니다")
			c.Abort()
			return
		}

		claims, err := jwtMgr.ParseToken(parts[1])
		if err != nil {
			if errors.Is(err, jwt.ErrTokenExpired) {
				response.Unauthorized(c, 10006, "토큰이 만료되었습니다")
			} else {
				response.Unauthorized(c, 10002, "유효하지 않은 토큰입니다")
			}
			c.Abort()
			return
		}

		if claims.TokenType != "access" {
			response.Unauthorized(c, 10002, "토큰 종류가 올바르지 않습니다")
			c.Abort()
			return
		}

		if rdb != nil && claims.ID != "" {
			// Redis 오류는 통과시킨다
			if revoked, err := rdb.IsBlacklisted(c.Request.Context(), claims.ID); err == nil && revoked {
				response.Unauthorized(c, 10002, "폐기된 토큰입니다")
				c.Abort()
				return
			}
		}

		c.Set("user_id", claims.UserID)
		c.Set("role", claims.Role)
		c.Set("branch", claims.Branch)

		c.Next()
	}
}

// RoleAuth 허용된 역할 중 하나인지 확인한다
func RoleAuth(allowedRoles ...string) gin.HandlerFunc {
	return func(c *gin.Context) {
		userRole := c.GetString("role")
		if userRole == "" {
			response.Unauthorized(c, 10002, "인증되지 않았습니다")
			c.Abort()
			return
		}

		for _, r := range allowedRoles {
			if userRole == r {
				c.Next()
				return
			}
		}

		response.Forbidden(c, 10003, "접근 권한이 없습니다")
		c.Abort()
	}
}
