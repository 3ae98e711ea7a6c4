// Package scheduler 는 예약 발송과 과제 미제출 알림을 정해진 시각에 실행한다.
package scheduler

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/robfig/cron/v3"
	"go.uber.org/zap"

	"github.com/otee21c/learning-system-sub000/config"
	"github.com/otee21c/learning-system-sub000/internal/model"
	"github.com/otee21c/learning-system-sub000/internal/service"
)

// scheduleTriggerSpec 예약 발송 확인 주기. 예약 시각은 분 단위다.
const scheduleTriggerSpec = "* * * * *"

// maxCatchUp 앞선 발송이 길어져 건너뛴 분을 몇 분까지 되짚어 확인할지
const maxCatchUp = 3 * time.Hour

// Scheduler cron 작업 묶음
type Scheduler struct {
	cron          *cron.Cron
	schedules     service.ScheduleService
	notifications service.NotificationService
	reminders     service.HomeworkReminderService
	loc           *time.Location
	logger        *zap.Logger

	mu          sync.Mutex
	lastChecked time.Time // 마지막으로 확인한 분
}

// New 기능 스위치에 따라 작업을 등록한다. Start 전에는 아무것도 실행하지 않는다.
func New(
	cfg *config.Config,
	svc *service.Service,
	loc *time.Location,
	logger *zap.Logger,
) (*Scheduler, error) {
	s := &Scheduler{
		schedules:     svc.Schedule,
		notifications: svc.Notification,
		reminders:     svc.HomeworkReminder,
		loc:           loc,
		logger:        logger,
	}

	cl := cronLogger{logger.Sugar()}
	s.cron = cron.New(
		cron.WithLocation(loc),
		cron.WithLogger(cl),
		cron.WithChain(cron.Recover(cl), cron.SkipIfStillRunning(cl)),
	)

	if cfg.Feature.ScheduleTriggerEnabled {
		if _, err := s.cron.AddFunc(scheduleTriggerSpec, func() {
			s.RunDueSchedules(context.Background(), time.Now().In(loc))
		}); err != nil {
			return nil, fmt.Errorf("예약 발송 작업 등록 실패: %w", err)
		}
	}
	if cfg.Feature.HomeworkReminderEnabled {
		if _, err := s.cron.AddFunc(cfg.Scheduler.HomeworkReminderSpec, func() {
			s.RunHomeworkReminder(context.Background(), time.Now().In(loc))
		}); err != nil {
			return nil, fmt.Errorf("과제 알림 작업 등록 실패 (%q): %w", cfg.Scheduler.HomeworkReminderSpec, err)
		}
	}

	logger.Info("스케줄러 준비",
		zap.String("timezone", loc.String()),
		zap.Bool("schedule_trigger", cfg.Feature.ScheduleTriggerEnabled),
		zap.Bool("homework_reminder", cfg.Feature.HomeworkReminderEnabled),
		zap.String("homework_reminder_spec", cfg.Scheduler.HomeworkReminderSpec),
	)
	return s, nil
}

// Start 작업 시작
func (s *Scheduler) Start() {
	s.cron.Start()
}

// Stop 새 작업을 막고 실행 중인 작업이 끝나기를 ctx 만큼 기다린다
func (s *Scheduler) Stop(ctx context.Context) error {
	done := s.cron.Stop()
	select {
	case <-done.Done():
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

// RunDueSchedules 지난 확인 다음 분부터 now 까지 분마다 예약을 찾아 순서대로 보낸다.
// 발송이 1분을 넘겨 cron 이 틱을 건너뛰어도 그 사이 예약 시각을 놓치지 않는다.
// 예약 하나가 실패해도 나머지는 계속 보낸다.
func (s *Scheduler) RunDueSchedules(ctx context.Context, now time.Time) int {
	ran := 0
	for _, minute := range s.pendingMinutes(now) {
		ran += s.runDueAt(ctx, minute)
	}
	return ran
}

// pendingMinutes (lastChecked, now] 구간의 분 목록. 첫 호출이면 now 한 번.
// 이미 확인한 분은 다시 돌려주지 않는다.
func (s *Scheduler) pendingMinutes(now time.Time) []time.Time {
	now = now.Truncate(time.Minute)

	s.mu.Lock()
	defer s.mu.Unlock()

	from := now
	if !s.lastChecked.IsZero() {
		if !s.lastChecked.Before(now) {
			return nil
		}
		from = s.lastChecked.Add(time.Minute)
		if now.Sub(from) > maxCatchUp {
			s.logger.Warn("예약 확인 공백이 너무 깁니다. 최근 구간만 확인합니다",
				zap.Time("last_checked", s.lastChecked),
				zap.Time("now", now),
			)
			from = now.Add(-maxCatchUp)
		}
		if from.Before(now) {
			s.logger.Info("건너뛴 예약 시각 확인", zap.Time("from", from), zap.Time("to", now))
		}
	}

	minutes := make([]time.Time, 0, int(now.Sub(from)/time.Minute)+1)
	for m := from; !m.After(now); m = m.Add(time.Minute) {
		minutes = append(minutes, m)
	}
	s.lastChecked = now
	return minutes
}

func (s *Scheduler) runDueAt(ctx context.Context, minute time.Time) int {
	due, err := s.schedules.DueAt(ctx, minute)
	if err != nil {
		s.logger.Error("예약 발송 조회 실패", zap.Time("minute", minute), zap.Error(err))
		return 0
	}

	period := model.PeriodOf(minute)
	ran := 0
	for i := range due {
		sc := &due[i]
		summary, err := s.notifications.Run(ctx, service.ApplyToRunConfig(sc, period))
		if err != nil {
			if errors.Is(err, service.ErrNoRecipientsSelected) {
				s.logger.Warn("예약 발송 대상 없음", zap.String("schedule_id", sc.ScheduleID))
				continue
			}
			s.logger.Error("예약 발송 실패", zap.String("schedule_id", sc.ScheduleID), zap.Error(err))
			continue
		}
		ran++
		s.logger.Info("예약 발송 완료",
			zap.String("schedule_id", sc.ScheduleID),
			zap.String("run_id", summary.RunID),
			zap.Int("sent", summary.Sent),
			zap.Int("failed", summary.Failed),
			zap.Int("recipient_success", summary.RecipientSuccess),
			zap.Int("recipient_failure", summary.RecipientFailure),
		)
	}
	return ran
}

// RunHomeworkReminder 전날 마감 과제의 미제출 알림
func (s *Scheduler) RunHomeworkReminder(ctx context.Context, now time.Time) {
	summary, err := s.reminders.RunForDate(ctx, now, "")
	if err != nil {
		s.logger.Error("과제 미제출 알림 실패", zap.Error(err))
		return
	}
	s.logger.Info("과제 미제출 알림 완료",
		zap.Int("total", summary.Total),
		zap.Int("sent", summary.Sent),
		zap.Int("failed", summary.Failed),
	)
}

// cronLogger cron.Logger 를 zap 으로 연결
type cronLogger struct {
	s *zap.SugaredLogger
}

func (l cronLogger) Info(msg string, keysAndValues ...interface{}) {
	l.s.Debugw(msg, keysAndValues...)
}

func (l cronLogger) Error(err error, msg string, keysAndValues ...interface{}) {
	l.s.Errorw(msg, append(keysAndValues, "error", err)...)
}
