package scheduler

import (
	"context"
	"errors"
	"testing"
	"time"

	"go.uber.org/zap"

	"github.com/otee21c/learning-system-sub000/config"
	"github.com/otee21c/learning-system-sub000/internal/model"
	"github.com/otee21c/learning-system-sub000/internal/service"
)

// ── 테스트 보조 ──

type fakeSchedules struct {
	service.ScheduleService
	due      []model.NotificationSchedule
	byMinute map[string][]model.NotificationSchedule // "15:04" 별 예약. 있으면 due 대신 쓴다
	at       []time.Time
}

func (f *fakeSchedules) DueAt(_ context.Context, now time.Time) ([]model.NotificationSchedule, error) {
	f.at = append(f.at, now)
	if f.byMinute != nil {
		return f.byMinute[now.Format("15:04")], nil
	}
	return f.due, nil
}

type fakeNotifications struct {
	service.NotificationService
	runs  []service.RunConfig
	errs  map[string]error // TargetGrade 별 오류
	onRun func()           // 발송 중에 일어나는 일
}

func (f *fakeNotifications) Run(_ context.Context, cfg service.RunConfig) (*service.DispatchSummary, error) {
	if err, ok := f.errs[cfg.TargetGrade]; ok {
		return nil, err
	}
	if f.onRun != nil {
		f.onRun()
	}
	f.runs = append(f.runs, cfg)
	return &service.DispatchSummary{RunID: "run", Total: 1, Sent: 1}, nil
}

type fakeReminders struct {
	days []time.Time
}

func (f *fakeReminders) RunForDate(_ context.Context, day time.Time, _ model.SenderType) (*service.DispatchSummary, error) {
	f.days = append(f.days, day)
	return &service.DispatchSummary{}, nil
}

func setupTestScheduler(t *testing.T, feature config.FeatureConfig) (*Scheduler, *fakeSchedules, *fakeNotifications, *fakeReminders) {
	schedules := &fakeSchedules{}
	notifications := &fakeNotifications{errs: map[string]error{}}
	reminders := &fakeReminders{}

	cfg := &config.Config{
		Scheduler: config.SchedulerConfig{HomeworkReminderSpec: "0 13 * * *"},
		Feature:   feature,
	}
	svc := &service.Service{Schedule: schedules, Notification: notifications, HomeworkReminder: reminders}

	s, err := New(cfg, svc, time.UTC, zap.NewNop())
	if err != nil {
		t.Fatalf("New 실패: %v", err)
	}
	return s, schedules, notifications, reminders
}

// ── 테스트 ──

func TestNew_RegistersEnabledJobs(t *testing.T) {
	tests := []struct {
		name    string
		feature config.FeatureConfig
		want    int
	}{
		{"모두 켬", config.FeatureConfig{ScheduleTriggerEnabled: true, HomeworkReminderEnabled: true}, 2},
		{"예약만", config.FeatureConfig{ScheduleTriggerEnabled: true}, 1},
		{"모두 끔", config.FeatureConfig{}, 0},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s, _, _, _ := setupTestScheduler(t, tt.feature)
			if got := len(s.cron.Entries()); got != tt.want {
				t.Errorf("작업 수 = %d, want %d", got, tt.want)
			}
		})
	}
}

func TestNew_InvalidReminderSpec(t *testing.T) {
	cfg := &config.Config{
		Scheduler: config.SchedulerConfig{HomeworkReminderSpec: "매일 오후 1시"},
		Feature:   config.FeatureConfig{HomeworkReminderEnabled: true},
	}
	if _, err := New(cfg, &service.Service{}, time.UTC, zap.NewNop()); err == nil {
		t.Error("잘못된 cron 식은 오류여야 합니다")
	}
}

func TestRunDueSchedules(t *testing.T) {
	s, schedules, notifications, _ := setupTestScheduler(t, config.FeatureConfig{})
	schedules.due = []model.NotificationSchedule{
		{ScheduleID: "a", TargetGrade: "고1", RecipientTarget: model.TargetParent},
		{ScheduleID: "b", TargetGrade: "빈 학년", RecipientTarget: model.TargetParent},
		{ScheduleID: "c", TargetGrade: "고3", RecipientTarget: model.TargetBoth},
	}
	notifications.errs["빈 학년"] = service.ErrNoRecipientsSelected

	now := time.Date(2024, 11, 15, 18, 30, 0, 0, time.UTC)
	ran := s.RunDueSchedules(context.Background(), now)

	if ran != 2 || len(notifications.runs) != 2 {
		t.Fatalf("실행 수 = %d, want 2", ran)
	}
	// 15일은 3주차
	for _, cfg := range notifications.runs {
		if cfg.Period != (model.Period{Month: 11, Week: 3}) {
			t.Errorf("기간 = %v", cfg.Period)
		}
	}
	if notifications.runs[1].TargetGrade != "고3" {
		t.Error("실패한 예약 뒤의 예약도 보내야 합니다")
	}
	if !schedules.at[0].Equal(now) {
		t.Errorf("조회 시각 = %v", schedules.at[0])
	}
}

func TestRunDueSchedules_OtherErrorContinues(t *testing.T) {
	s, schedules, notifications, _ := setupTestScheduler(t, config.FeatureConfig{})
	schedules.due = []model.NotificationSchedule{
		{ScheduleID: "a", TargetGrade: "오류"},
		{ScheduleID: "b", TargetGrade: "고2"},
	}
	notifications.errs["오류"] = errors.New("db down")

	if ran := s.RunDueSchedules(context.Background(), time.Now()); ran != 1 {
		t.Errorf("실행 수 = %d, want 1", ran)
	}
}

func TestRunDueSchedules_CatchesUpSkippedMinutes(t *testing.T) {
	s, schedules, notifications, _ := setupTestScheduler(t, config.FeatureConfig{ScheduleTriggerEnabled: true})
	schedules.byMinute = map[string][]model.NotificationSchedule{
		"16:00": {{ScheduleID: "long", TargetGrade: "고1"}},
		"16:01": {{ScheduleID: "next", TargetGrade: "고2"}},
	}
	start := time.Date(2024, 11, 15, 16, 0, 0, 0, time.UTC)

	// 16:00 발송이 90초 걸려 cron 이 16:01 틱을 건너뛴다
	clock := start
	notifications.onRun = func() { clock = clock.Add(90 * time.Second) }

	if ran := s.RunDueSchedules(context.Background(), start); ran != 1 {
		t.Fatalf("16:00 실행 수 = %d, want 1", ran)
	}
	notifications.onRun = nil
	if !clock.After(start.Add(time.Minute)) {
		t.Fatalf("첫 발송이 다음 틱을 넘겨야 합니다: %v", clock)
	}

	// 다음 틱은 16:02
	if ran := s.RunDueSchedules(context.Background(), start.Add(2*time.Minute+3*time.Second)); ran != 1 {
		t.Fatalf("16:02 실행 수 = %d, want 1", ran)
	}
	if len(notifications.runs) != 2 || notifications.runs[1].TargetGrade != "고2" {
		t.Errorf("건너뛴 16:01 예약이 발송되지 않았습니다: %+v", notifications.runs)
	}

	var checked []string
	for _, at := range schedules.at {
		checked = append(checked, at.Format("15:04:05"))
	}
	want := []string{"16:00:00", "16:01:00", "16:02:00"}
	if len(checked) != len(want) {
		t.Fatalf("확인한 분 = %v, want %v", checked, want)
	}
	for i := range want {
		if checked[i] != want[i] {
			t.Errorf("확인한 분 = %v, want %v", checked, want)
			break
		}
	}
}

func TestRunDueSchedules_SameMinuteOnce(t *testing.T) {
	s, schedules, notifications, _ := setupTestScheduler(t, config.FeatureConfig{})
	schedules.due = []model.NotificationSchedule{{ScheduleID: "a", TargetGrade: "고1"}}
	now := time.Date(2024, 11, 15, 18, 30, 5, 0, time.UTC)

	s.RunDueSchedules(context.Background(), now)
	s.RunDueSchedules(context.Background(), now.Add(40*time.Second))

	if len(notifications.runs) != 1 || len(schedules.at) != 1 {
		t.Errorf("같은 분은 한 번만 확인해야 합니다: runs=%d checks=%d", len(notifications.runs), len(schedules.at))
	}
}

func TestRunDueSchedules_CatchUpIsCapped(t *testing.T) {
	s, schedules, _, _ := setupTestScheduler(t, config.FeatureConfig{})
	start := time.Date(2024, 11, 15, 0, 0, 0, 0, time.UTC)

	s.RunDueSchedules(context.Background(), start)
	s.RunDueSchedules(context.Background(), start.Add(24*time.Hour))

	want := 1 + int(maxCatchUp/time.Minute) + 1
	if len(schedules.at) != want {
		t.Errorf("확인 횟수 = %d, want %d", len(schedules.at), want)
	}
}

func TestRunHomeworkReminder(t *testing.T) {
	s, _, _, reminders := setupTestScheduler(t, config.FeatureConfig{})
	now := time.Date(2024, 11, 15, 13, 0, 0, 0, time.UTC)

	s.RunHomeworkReminder(context.Background(), now)

	if len(reminders.days) != 1 || !reminders.days[0].Equal(now) {
		t.Errorf("호출 = %v", reminders.days)
	}
}

func TestStartStop(t *testing.T) {
	s, _, _, _ := setupTestScheduler(t, config.FeatureConfig{ScheduleTriggerEnabled: true})
	s.Start()

	ctx, cancel := context.WithTimeout(context.Background(), time.Second)
	defer cancel()
	if err := s.Stop(ctx); err != nil {
		t.Errorf("Stop 실패: %v", err)
	}
}
