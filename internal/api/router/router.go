package router

import (
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/otee21c/learning-system-sub000/config"
	"github.com/otee21c/learning-system-sub000/internal/api/handler"
	"github.com/otee21c/learning-system-sub000/internal/api/middleware"
	"github.com/otee21c/learning-system-sub000/pkg/jwt"
	"github.com/otee21c/learning-system-sub000/pkg/redis"
)

// bodyLimit MMS 이미지 base64 를 담을 수 있는 크기
const bodyLimit = 4 << 20

// Setup gin 엔진 생성
func Setup(cfg *config.Config, h *handler.Handler, jwtMgr *jwt.Manager, rdb *redis.Client, logger *zap.Logger) *gin.Engine {
	gin.SetMode(gin.ReleaseMode)

	r := gin.New()

	// ── 전역 미들웨어 ──
	r.Use(middleware.RequestID())
	r.Use(gin.Recovery())
	r.Use(middleware.Logger(logger))
	r.Use(middleware.CORS(cfg.Server.CORS.AllowOrigins))
	r.Use(middleware.SecurityHeaders())
	r.Use(middleware.BodyLimit(bodyLimit))

	r.GET("/health", func(c *gin.Context) {
		c.JSON(200, gin.H{"status": "ok"})
	})

	// ── API v1 ──
	v1 := r.Group("/api/v1")
	authorized := v1.Group("")
	authorized.Use(middleware.JWTAuth(jwtMgr, rdb))
	authorized.Use(middleware.RoleAuth(middleware.RoleAdmin, middleware.RoleTeacher))
	{
		// 발송 요청은 게이트웨이 비용이 드므로 사용자별로 제한한다
		sendLimit := middleware.RateLimit(rdb, 10, time.Minute)

		notifications := authorized.Group("/notifications")
		{
			notifications.POST("/preview", h.Notification.Preview)
			notifications.POST("/batch", sendLimit, h.Notification.SendBatch)
			notifications.GET("/runs/:id/progress", h.Notification.GetProgress)
			notifications.POST("/direct", sendLimit, h.Notification.SendDirect)
			notifications.POST("/absence", sendLimit, h.Notification.NotifyAbsence)
			notifications.GET("/logs", h.Notification.ListLogs)
			notifications.GET("/logs/export", h.Export.ExportLogs)
			notifications.PUT("/logs/:id/read", h.Notification.MarkRead)
		}

		schedules := authorized.Group("/schedules")
		{
			schedules.GET("", h.Schedule.List)
			schedules.POST("", h.Schedule.Create)
			schedules.GET("/calendar.ics", h.Export.ExportCalendar)
			schedules.GET("/:id", h.Schedule.GetByID)
			schedules.PUT("/:id", h.Schedule.Update)
			schedules.DELETE("/:id", middleware.RoleAuth(middleware.RoleAdmin), h.Schedule.Delete)
			schedules.GET("/:id/run-config", h.Schedule.RunConfig)
			schedules.POST("/:id/run", sendLimit, h.Schedule.RunNow)
		}

		reports := authorized.Group("/reports")
		{
			reports.POST("/preview", h.Report.Preview)
			reports.POST("/image", h.Report.Image)
			reports.POST("/send", sendLimit, h.Report.Send)
		}

		homework := authorized.Group("/homework")
		{
			homework.POST("/reminders/run", middleware.RoleAuth(middleware.RoleAdmin), sendLimit, h.Homework.RunReminder)
		}
	}

	return r
}
