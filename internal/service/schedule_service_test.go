package service

import (
	"context"
	"errors"
	"reflect"
	"testing"
	"time"

	"github.com/otee21c/learning-system-sub000/internal/dto"
	"github.com/otee21c/learning-system-sub000/internal/model"
)

// ── 테스트 보조 ──

func setupTestScheduleService() (ScheduleService, *testEnv) {
	env := setupTestEnv()
	return env.svc.Schedule, env
}

func validCreateRequest() *dto.CreateScheduleRequest {
	return &dto.CreateScheduleRequest{
		Name:               "고1 주간 알림장",
		DayOfWeek:          5,
		SendTime:           "18:30",
		TargetGrade:        "고1",
		ExcludedStudentIDs: []string{"stu-x"},
		Include:            dto.ContentFlagsDTO{Attendance: true, Exam: true},
		RecipientTarget:    "parent",
	}
}

// ── Create ──

func TestScheduleService_Create_Defaults(t *testing.T) {
	svc, env := setupTestScheduleService()

	resp, err := svc.Create(context.Background(), validCreateRequest(), "admin-1")
	if err != nil {
		t.Fatalf("Create 실패: %v", err)
	}

	if resp.ID == "" || resp.Version != 1 || !resp.IsActive {
		t.Errorf("기본값이 잘못되었습니다: %+v", resp)
	}
	if resp.ExamScope != "recent" || resp.Channel != "sms" || resp.SenderType != "personal" {
		t.Errorf("기본 설정 = %s/%s/%s", resp.ExamScope, resp.Channel, resp.SenderType)
	}
	stored := env.repos.schedule.schedules[resp.ID]
	if stored == nil || *stored.CreatedBy != "admin-1" {
		t.Errorf("작성자가 저장되지 않았습니다")
	}
}

func TestScheduleService_Create_Invalid(t *testing.T) {
	svc, _ := setupTestScheduleService()

	tests := []struct {
		name   string
		modify func(r *dto.CreateScheduleRequest)
	}{
		{"시각 형식", func(r *dto.CreateScheduleRequest) { r.SendTime = "25:00" }},
		{"요일 범위", func(r *dto.CreateScheduleRequest) { r.DayOfWeek = 7 }},
		{"수신 대상", func(r *dto.CreateScheduleRequest) { r.RecipientTarget = "teacher" }},
		{"이름 없음", func(r *dto.CreateScheduleRequest) { r.Name = "" }},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := validCreateRequest()
			tt.modify(req)
			if _, err := svc.Create(context.Background(), req, "admin-1"); !errors.Is(err, ErrScheduleInvalid) {
				t.Errorf("ErrScheduleInvalid 기대, 실제: %v", err)
			}
		})
	}
}

// ── Query ──

func TestScheduleService_GetByID_NotFound(t *testing.T) {
	svc, _ := setupTestScheduleService()

	if _, err := svc.GetByID(context.Background(), "none"); !errors.Is(err, ErrScheduleNotFound) {
		t.Errorf("ErrScheduleNotFound 기대, 실제: %v", err)
	}
}

func TestScheduleService_List_ActiveOnly(t *testing.T) {
	svc, _ := setupTestScheduleService()
	ctx := context.Background()

	inactive := false
	req := validCreateRequest()
	req.IsActive = &inactive
	svc.Create(ctx, validCreateRequest(), "admin-1")
	svc.Create(ctx, req, "admin-1")

	all, _ := svc.List(ctx, &dto.ScheduleListRequest{})
	active, _ := svc.List(ctx, &dto.ScheduleListRequest{ActiveOnly: true})

	if len(all) != 2 || len(active) != 1 {
		t.Errorf("전체 %d건 / 활성 %d건, want 2/1", len(all), len(active))
	}
}

// ── Update ──

func TestScheduleService_Update(t *testing.T) {
	svc, _ := setupTestScheduleService()
	ctx := context.Background()
	created, _ := svc.Create(ctx, validCreateRequest(), "admin-1")

	newTime := "20:00"
	updated, err := svc.Update(ctx, created.ID, &dto.UpdateScheduleRequest{
		Version:  created.Version,
		SendTime: &newTime,
	}, "admin-2")
	if err != nil {
		t.Fatalf("Update 실패: %v", err)
	}
	if updated.SendTime != "20:00" || updated.Version != 2 {
		t.Errorf("수정 결과 = %s v%d", updated.SendTime, updated.Version)
	}
	if updated.Name != created.Name {
		t.Error("지정하지 않은 필드는 유지되어야 합니다")
	}
}

func TestScheduleService_Update_VersionConflict(t *testing.T) {
	svc, _ := setupTestScheduleService()
	ctx := context.Background()
	created, _ := svc.Create(ctx, validCreateRequest(), "admin-1")

	name := "첫 수정"
	if _, err := svc.Update(ctx, created.ID, &dto.UpdateScheduleRequest{Version: 1, Name: &name}, "a"); err != nil {
		t.Fatalf("첫 수정 실패: %v", err)
	}

	// 예전 버전으로 다시 수정
	name = "늦은 수정"
	_, err := svc.Update(ctx, created.ID, &dto.UpdateScheduleRequest{Version: 1, Name: &name}, "b")
	if !errors.Is(err, ErrScheduleConflict) {
		t.Errorf("ErrScheduleConflict 기대, 실제: %v", err)
	}
}

// ── Delete ──

func TestScheduleService_Delete(t *testing.T) {
	svc, _ := setupTestScheduleService()
	ctx := context.Background()
	created, _ := svc.Create(ctx, validCreateRequest(), "admin-1")

	if err := svc.Delete(ctx, created.ID, "admin-1"); err != nil {
		t.Fatalf("Delete 실패: %v", err)
	}
	if _, err := svc.GetByID(ctx, created.ID); !errors.Is(err, ErrScheduleNotFound) {
		t.Errorf("삭제 후 조회는 ErrScheduleNotFound 여야 합니다: %v", err)
	}
	if err := svc.Delete(ctx, created.ID, "admin-1"); !errors.Is(err, ErrScheduleNotFound) {
		t.Errorf("두 번째 삭제 = %v", err)
	}
}

// ── Apply ──

func TestApplyToRunConfig_IsPure(t *testing.T) {
	schedule := &model.NotificationSchedule{
		Name:               "중3 알림장",
		TargetGrade:        "중3",
		ExcludedStudentIDs: []string{"a", "b"},
		Include:            model.ContentFlags{Curriculum: true, Homework: true},
		ExamScope:          model.ExamScopePeriod,
		RecipientTarget:    model.TargetBoth,
		Channel:            model.ChannelSMS,
		SenderType:         model.SenderMain,
		AdditionalText:     "방학 특강 안내",
	}
	before := *schedule
	period := model.Period{Month: 7, Week: 2}

	first := ApplyToRunConfig(schedule, period)
	second := ApplyToRunConfig(schedule, period)

	if !reflect.DeepEqual(first, second) {
		t.Error("같은 입력에 다른 실행 설정")
	}
	if !reflect.DeepEqual(*schedule, before) {
		t.Error("예약 설정이 바뀌었습니다")
	}
	if first.Period != period || first.TargetGrade != "중3" || first.AdditionalText != "방학 특강 안내" {
		t.Errorf("실행 설정 = %+v", first)
	}

	first.ExcludedStudentIDs[0] = "changed"
	if schedule.ExcludedStudentIDs[0] != "a" {
		t.Error("실행 설정이 예약의 제외 목록을 공유합니다")
	}
}

func TestApplyToRunConfig_FillsDefaults(t *testing.T) {
	cfg := ApplyToRunConfig(&model.NotificationSchedule{RecipientTarget: model.TargetParent}, model.Period{Month: 1, Week: 1})

	if cfg.ExamScope != model.ExamScopeRecent || cfg.Channel != model.ChannelSMS || cfg.SenderType != model.SenderPersonal {
		t.Errorf("기본값 = %+v", cfg)
	}
}

func TestScheduleService_RunConfigDoesNotSend(t *testing.T) {
	svc, env := setupTestScheduleService()
	ctx := context.Background()
	created, _ := svc.Create(ctx, validCreateRequest(), "admin-1")

	resp, err := svc.RunConfig(ctx, created.ID, model.Period{Month: 4, Week: 3})
	if err != nil {
		t.Fatalf("RunConfig 실패: %v", err)
	}
	if resp.Period.Month != 4 || resp.Period.Week != 3 || resp.RecipientTarget != "parent" {
		t.Errorf("실행 설정 = %+v", resp)
	}
	if len(env.gateway.sent) != 0 || env.repos.logs.count() != 0 {
		t.Error("설정 적용만으로 발송되면 안 됩니다")
	}
}

func TestScheduleService_DueAt(t *testing.T) {
	svc, _ := setupTestScheduleService()
	ctx := context.Background()

	friday := validCreateRequest() // 금 18:30
	other := validCreateRequest()
	other.SendTime = "09:00"
	sunday := validCreateRequest()
	sunday.DayOfWeek = 0
	off := false
	disabled := validCreateRequest()
	disabled.IsActive = &off

	for _, r := range []*dto.CreateScheduleRequest{friday, other, sunday, disabled} {
		if _, err := svc.Create(ctx, r, "admin-1"); err != nil {
			t.Fatalf("Create 실패: %v", err)
		}
	}

	now := time.Date(2024, 11, 15, 18, 30, 0, 0, time.UTC) // 금요일
	due, err := svc.DueAt(ctx, now)
	if err != nil {
		t.Fatalf("DueAt 실패: %v", err)
	}
	if len(due) != 1 || due[0].SendTime != "18:30" || due[0].DayOfWeek != 5 {
		t.Errorf("대상 예약 = %+v", due)
	}
}
