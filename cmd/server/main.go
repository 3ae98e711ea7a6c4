package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"go.uber.org/zap"

	"github.com/otee21c/learning-system-sub000/config"
	"github.com/otee21c/learning-system-sub000/internal/api/handler"
	"github.com/otee21c/learning-system-sub000/internal/api/router"
	"github.com/otee21c/learning-system-sub000/internal/repository"
	"github.com/otee21c/learning-system-sub000/internal/scheduler"
	"github.com/otee21c/learning-system-sub000/internal/service"
	"github.com/otee21c/learning-system-sub000/pkg/database"
	"github.com/otee21c/learning-system-sub000/pkg/jwt"
	applogger "github.com/otee21c/learning-system-sub000/pkg/logger"
	"github.com/otee21c/learning-system-sub000/pkg/redis"
	"github.com/otee21c/learning-system-sub000/pkg/reportimage"
	"github.com/otee21c/learning-system-sub000/pkg/sms"
)

func main() {
	// 1. 설정
	cfg, err := config.Load("")
	if err != nil {
		fmt.Fprintf(os.Stderr, "설정 로드 실패: %v\n", err)
		os.Exit(1)
	}

	// 2. 로그
	logger, err := applogger.NewLogger(&cfg.Log)
	if err != nil {
		fmt.Fprintf(os.Stderr, "로그 초기화 실패: %v\n", err)
		os.Exit(1)
	}
	defer logger.Sync()

	logger.Info("서버 시작 중",
		zap.Int("port", cfg.Server.Port),
		zap.String("log_level", cfg.Log.Level),
		zap.Bool("sms_test_mode", cfg.SMS.TestMode),
	)

	loc, err := time.LoadLocation(cfg.Scheduler.Timezone)
	if err != nil {
		logger.Fatal("시간대 로드 실패", zap.String("timezone", cfg.Scheduler.Timezone), zap.Error(err))
	}

	// 3. 데이터베이스
	db, err := database.NewDB(&cfg.Database, cfg.Log.Level, logger)
	if err != nil {
		logger.Fatal("데이터베이스 연결 실패", zap.Error(err))
	}
	logger.Info("데이터베이스 연결 성공")

	sqlDB, err := db.DB()
	if err != nil {
		logger.Fatal("sql.DB 획득 실패", zap.Error(err))
	}
	if err := database.RunMigrations(sqlDB, logger); err != nil {
		logger.Fatal("마이그레이션 실패", zap.Error(err))
	}

	// 4. Redis (실패해도 계속 실행)
	rdb, err := redis.NewClient(&cfg.Redis, logger)
	if err != nil {
		logger.Warn("Redis 연결 실패: 토큰 폐기 확인과 요청 제한 없이 실행합니다", zap.Error(err))
		rdb = nil
	}

	// 5. 외부 자원
	gateway, err := sms.New(sms.ConfigFrom(&cfg.SMS), logger)
	if err != nil {
		logger.Fatal("문자 게이트웨이 설정 오류", zap.Error(err))
	}
	renderer, err := reportimage.NewRenderer(cfg.Report.FontPath)
	if err != nil {
		logger.Warn("리포트 글꼴 로드 실패: 기본 글꼴로 그립니다", zap.Error(err))
		renderer, _ = reportimage.NewRenderer("")
	}
	jwtMgr := jwt.NewManager(&cfg.Auth)

	// 6. Repository → Service → Handler
	repo := repository.NewRepository(db)
	svc := service.NewService(cfg, repo, service.Deps{
		Gateway:  gateway,
		Tracker:  service.NewProgressTracker(rdb, cfg.Dispatch.ProgressTTL, logger),
		Renderer: renderer,
		Location: loc,
	}, logger)
	h := handler.NewHandler(svc, loc)

	// 7. 스케줄러
	var sched *scheduler.Scheduler
	if cfg.Scheduler.Enabled {
		sched, err = scheduler.New(cfg, svc, loc, logger)
		if err != nil {
			logger.Fatal("스케줄러 초기화 실패", zap.Error(err))
		}
		sched.Start()
	}

	// 8. HTTP 서버
	engine := router.Setup(cfg, h, jwtMgr, rdb, logger)
	srv := &http.Server{
		Addr:         fmt.Sprintf(":%d", cfg.Server.Port),
		Handler:      engine,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 60 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	go func() {
		logger.Info("HTTP 서버 시작", zap.String("addr", srv.Addr))
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Fatal("HTTP 서버 오류", zap.Error(err))
		}
	}()

	// 9. 종료 신호
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	sig := <-quit

	logger.Info("종료 신호 수신", zap.String("signal", sig.String()))

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := srv.Shutdown(ctx); err != nil {
		logger.Error("HTTP 서버 종료 오류", zap.Error(err))
	}
	if sched != nil {
		if err := sched.Stop(ctx); err != nil {
			logger.Error("스케줄러 종료 대기 시간 초과", zap.Error(err))
		}
	}
	// 진행 중인 일괄 발송이 끝나야 발송 기록이 남는다
	if err := svc.Runner.Wait(ctx); err != nil {
		logger.Error("일괄 발송 종료 대기 시간 초과", zap.Error(err))
	}

	if sqlDB != nil {
		sqlDB.Close()
	}
	if rdb != nil {
		rdb.Close()
	}

	logger.Info("서버 종료")
}
