package service

import (
	"net/url"
	"time"

	"go.uber.org/zap"

	"github.com/otee21c/learning-system-sub000/config"
	"github.com/otee21c/learning-system-sub000/internal/repository"
	"github.com/otee21c/learning-system-sub000/pkg/reportimage"
	"github.com/otee21c/learning-system-sub000/pkg/sms"
)

// Service 모든 서비스 묶음
type Service struct {
	Notification     NotificationService
	Schedule         ScheduleService
	Report           ReportService
	HomeworkReminder HomeworkReminderService
	Export           ExportService
	Calendar         CalendarService

	// Runner 백그라운드 발송. 종료 시 Wait 로 남은 발송을 기다린다.
	Runner *Runner
}

// Deps 서비스 생성에 필요한 외부 자원
type Deps struct {
	Gateway  sms.Client
	Tracker  ProgressTracker
	Renderer *reportimage.Renderer
	Location *time.Location
	// Sleeper 비어 있으면 타이머로 대기한다
	Sleeper Sleeper
}

// NewService 서비스 묶음 생성
func NewService(
	cfg *config.Config,
	repo *repository.Repository,
	deps Deps,
	logger *zap.Logger,
) *Service {
	dispatcher := NewDispatcher(deps.Gateway, repo.NotificationLog, cfg.Dispatch.PacingInterval, logger)
	if deps.Sleeper != nil {
		dispatcher.WithSleeper(deps.Sleeper)
	}
	runner := NewRunner(dispatcher, deps.Tracker, logger)
	aggregator := NewAggregator(repo, logger)

	loc := deps.Location
	if loc == nil {
		loc = time.Local
	}

	notification := NewNotificationService(cfg, repo, aggregator, dispatcher, runner, deps.Renderer, logger)
	return &Service{
		Notification:     notification,
		Schedule:         NewScheduleService(repo, notification, logger),
		Report:           NewReportService(cfg, repo, dispatcher, deps.Renderer, logger),
		HomeworkReminder: NewHomeworkReminderService(cfg, repo, runner, logger),
		Export:           NewExportService(repo, logger),
		Calendar:         NewCalendarService(repo, loc, calendarHost(cfg.Server.BaseURL), logger),
		Runner:           runner,
	}
}

func calendarHost(baseURL string) string {
	if u, err := url.Parse(baseURL); err == nil && u.Hostname() != "" {
		return u.Hostname()
	}
	return "academy-notify"
}
