package service

import (
	"context"
	"fmt"
	"strings"
	"time"

	ics "github.com/arran4/golang-ical"
	"go.uber.org/zap"

	"github.com/otee21c/learning-system-sub000/internal/model"
	"github.com/otee21c/learning-system-sub000/internal/repository"
)

// ── 예약 발송 캘린더 ──
//
// 활성 예약마다 매주 반복되는 VEVENT 하나를 만든다.
// 캘린더 앱에서 예약 발송 시각을 구독하는 용도다.

const calendarEventLength = 10 * time.Minute

var icsWeekdays = [...]string{"SU", "MO", "TU", "WE", "TH", "FR", "SA"}

var weekdayNames = [...]string{"일", "월", "화", "수", "목", "금", "토"}

// CalendarService 예약 발송 iCalendar 피드
type CalendarService interface {
	ExportSchedules(ctx context.Context, now time.Time) ([]byte, error)
}

type calendarService struct {
	repo   *repository.Repository
	loc    *time.Location
	host   string
	logger *zap.Logger
}

// NewCalendarService 생성. UID 는 host 를 도메인으로 쓴다.
func NewCalendarService(repo *repository.Repository, loc *time.Location, host string, logger *zap.Logger) CalendarService {
	return &calendarService{repo: repo, loc: loc, host: host, logger: logger}
}

func (s *calendarService) ExportSchedules(ctx context.Context, now time.Time) ([]byte, error) {
	schedules, err := s.repo.Schedule.List(ctx, true)
	if err != nil {
		s.logger.Error("예약 발송 목록 조회 실패", zap.Error(err))
		return nil, err
	}

	cal := ics.NewCalendar()
	cal.SetMethod(ics.MethodPublish)
	cal.SetProductId("-//academy-notify//schedules//KO")
	cal.SetName("예약 발송")
	cal.SetTimezoneId(s.loc.String())

	now = now.In(s.loc)
	for i := range schedules {
		sc := &schedules[i]
		start, ok := nextOccurrence(now, sc.DayOfWeek, sc.SendTime)
		if !ok {
			continue
		}

		event := cal.AddEvent(fmt.Sprintf("%s@%s", sc.ScheduleID, s.host))
		event.SetDtStampTime(now)
		event.SetStartAt(start)
		event.SetEndAt(start.Add(calendarEventLength))
		event.SetSummary(fmt.Sprintf("[예약 발송] %s", sc.Name))
		event.SetDescription(describeSchedule(sc))
		event.AddRrule("FREQ=WEEKLY;BYDAY=" + icsWeekdays[sc.DayOfWeek])
	}

	return []byte(cal.Serialize()), nil
}

// nextOccurrence now 이후(같은 분 포함) 첫 발송 시각
func nextOccurrence(now time.Time, dayOfWeek int, sendTime string) (time.Time, bool) {
	if dayOfWeek < 0 || dayOfWeek > 6 {
		return time.Time{}, false
	}
	hm, err := time.Parse("15:04", sendTime)
	if err != nil {
		return time.Time{}, false
	}

	days := (dayOfWeek - int(now.Weekday()) + 7) % 7
	start := time.Date(now.Year(), now.Month(), now.Day()+days, hm.Hour(), hm.Minute(), 0, 0, now.Location())
	if start.Before(now.Truncate(time.Minute)) {
		start = start.AddDate(0, 0, 7)
	}
	return start, true
}

func describeSchedule(sc *model.NotificationSchedule) string {
	var items []string
	if sc.Include.Curriculum {
		items = append(items, "진도")
	}
	if sc.Include.Attendance {
		items = append(items, "출결")
	}
	if sc.Include.Exam {
		items = append(items, "시험")
	}
	if sc.Include.Homework {
		items = append(items, "과제")
	}
	if sc.Include.Memo {
		items = append(items, "메모")
	}

	grade := sc.TargetGrade
	if grade == "" {
		grade = "전체"
	}
	return fmt.Sprintf("매주 %s요일 %s / 대상: %s / 항목: %s / 수신: %s",
		weekdayNames[sc.DayOfWeek], sc.SendTime, grade, strings.Join(items, ", "), sc.RecipientTarget)
}
