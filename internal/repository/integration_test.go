//go:build integration

package repository_test

import (
	"context"
	"errors"
	"fmt"
	"os"
	"testing"

	"github.com/google/uuid"
	"go.uber.org/zap"
	"gorm.io/datatypes"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"github.com/otee21c/learning-system-sub000/internal/model"
	"github.com/otee21c/learning-system-sub000/internal/repository"
	"github.com/otee21c/learning-system-sub000/pkg/database"
	pkgerrors "github.com/otee21c/learning-system-sub000/pkg/errors"
)

// ═══════════════════════════════════════════════════════════
// Test Setup
// ═══════════════════════════════════════════════════════════

var (
	testDB   *gorm.DB
	testRepo *repository.Repository
)

func TestMain(m *testing.M) {
	dsn := os.Getenv("TEST_DATABASE_DSN")
	if dsn == "" {
		dsn = "host=localhost port=5433 user=academy password=academy_password dbname=academy_test sslmode=disable TimeZone=Asia/Seoul"
	}

	var err error
	testDB, err = gorm.Open(postgres.Open(dsn), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	if err != nil {
		fmt.Fprintf(os.Stderr, "테스트 DB 연결 실패: %v\n", err)
		os.Exit(1)
	}

	sqlDB, err := testDB.DB()
	if err != nil {
		fmt.Fprintf(os.Stderr, "sql.DB 획득 실패: %v\n", err)
		os.Exit(1)
	}
	if err := database.RunMigrations(sqlDB, zap.NewNop()); err != nil {
		fmt.Fprintf(os.Stderr, "마이그레이션 실패: %v\n", err)
		os.Exit(1)
	}

	testRepo = repository.NewRepository(testDB)
	os.Exit(m.Run())
}

// createStudents 테스트마다 고유한 학년으로 학생을 만든다
func createStudents(t *testing.T, names ...string) (string, []model.Student) {
	t.Helper()
	grade := "T" + uuid.NewString()[:8]

	students := make([]model.Student, 0, len(names))
	for i, name := range names {
		s := model.Student{
			StudentID:   uuid.NewString(),
			Name:        name,
			Grade:       grade,
			Phone:       fmt.Sprintf("010-1000-%04d", i),
			ParentPhone: fmt.Sprintf("010-2000-%04d", i),
		}
		if err := testDB.Create(&s).Error; err != nil {
			t.Fatalf("학생 생성 실패: %v", err)
		}
		students = append(students, s)
	}
	t.Cleanup(func() {
		testDB.Unscoped().Where("grade = ?", grade).Delete(&model.Student{})
	})
	return grade, students
}

func createSchedule(t *testing.T) *model.NotificationSchedule {
	t.Helper()
	s := &model.NotificationSchedule{
		Name:            "통합 테스트 예약 " + uuid.NewString()[:8],
		DayOfWeek:       5,
		SendTime:        "18:30",
		TargetGrade:     "고1",
		Include:         model.ContentFlags{Attendance: true},
		ExamScope:       model.ExamScopeRecent,
		RecipientTarget: model.TargetParent,
		Channel:         model.ChannelSMS,
		SenderType:      model.SenderPersonal,
		IsActive:        true,
	}
	if err := testRepo.Schedule.Create(context.Background(), s); err != nil {
		t.Fatalf("예약 생성 실패: %v", err)
	}
	t.Cleanup(func() {
		testDB.Unscoped().Where("schedule_id = ?", s.ScheduleID).Delete(&model.NotificationSchedule{})
	})
	return s
}

// ═══════════════════════════════════════════════════════════
// Student
// ═══════════════════════════════════════════════════════════

func TestStudent_ListOrderAndFilter(t *testing.T) {
	ctx := context.Background()
	grade, students := createStudents(t, "다인", "가윤", "나은")

	list, err := testRepo.Student.List(ctx, repository.StudentFilter{Grade: grade})
	if err != nil {
		t.Fatalf("List 실패: %v", err)
	}
	if len(list) != 3 || list[0].Name != "가윤" || list[2].Name != "다인" {
		t.Errorf("이름순이 아닙니다: %v", list)
	}

	list, _ = testRepo.Student.List(ctx, repository.StudentFilter{Grade: grade, IDs: []string{students[0].StudentID}})
	if len(list) != 1 || list[0].Name != "다인" {
		t.Errorf("ID 조건 = %v", list)
	}

	// 선택한 순서가 이름순보다 앞선다
	ids := []string{students[2].StudentID, students[0].StudentID, students[1].StudentID}
	list, err = testRepo.Student.List(ctx, repository.StudentFilter{IDs: ids})
	if err != nil {
		t.Fatalf("List 실패: %v", err)
	}
	if len(list) != 3 || list[0].Name != "나은" || list[1].Name != "다인" || list[2].Name != "가윤" {
		t.Errorf("선택 순서가 아닙니다: %v", list)
	}
}

func TestStudent_ExamsJSON(t *testing.T) {
	ctx := context.Background()
	_, students := createStudents(t, "민준")
	score := 85.0

	exams := []model.ExamRecord{{Title: "11월 모의고사", Date: "2024-11-14", Score: &score}}
	if err := testDB.Model(&model.Student{}).Where("student_id = ?", students[0].StudentID).
		Update("exams", datatypes.NewJSONSlice(exams)).Error; err != nil {
		t.Fatalf("시험 저장 실패: %v", err)
	}

	got, err := testRepo.Student.GetByID(ctx, students[0].StudentID)
	if err != nil {
		t.Fatalf("GetByID 실패: %v", err)
	}
	if len(got.Exams) != 1 || got.Exams[0].Score == nil || *got.Exams[0].Score != 85 {
		t.Errorf("시험 = %+v", got.Exams)
	}
}

// ═══════════════════════════════════════════════════════════
// Attendance
// ═══════════════════════════════════════════════════════════

func TestAttendance_FindByStudentAndPeriods(t *testing.T) {
	ctx := context.Background()
	_, students := createStudents(t, "가윤")
	sid := students[0].StudentID

	for _, a := range []model.Attendance{
		{StudentID: sid, Month: 11, Week: 1, Status: model.AttendancePresent},
		{StudentID: sid, Month: 11, Week: 2, Status: model.AttendanceAbsent},
		{StudentID: sid, Month: 12, Week: 1, Status: model.AttendanceLate},
	} {
		if err := testDB.Create(&a).Error; err != nil {
			t.Fatalf("출결 생성 실패: %v", err)
		}
	}
	t.Cleanup(func() { testDB.Where("student_id = ?", sid).Delete(&model.Attendance{}) })

	got, err := testRepo.Attendance.FindByStudentAndPeriods(ctx, sid, []model.Period{{Month: 11, Week: 1}, {Month: 12, Week: 1}})
	if err != nil {
		t.Fatalf("조회 실패: %v", err)
	}
	if len(got) != 2 {
		t.Errorf("기록 수 = %d, want 2", len(got))
	}
}

// ═══════════════════════════════════════════════════════════
// NotificationSchedule
// ═══════════════════════════════════════════════════════════

func TestOptimisticLock_Schedule_ConflictDetected(t *testing.T) {
	ctx := context.Background()
	s := createSchedule(t)

	first, _ := testRepo.Schedule.GetByID(ctx, s.ScheduleID)
	second, _ := testRepo.Schedule.GetByID(ctx, s.ScheduleID)

	first.Name = "먼저 저장"
	if err := testRepo.Schedule.Update(ctx, first); err != nil {
		t.Fatalf("첫 수정 실패: %v", err)
	}

	second.Name = "나중 저장"
	if err := testRepo.Schedule.Update(ctx, second); !errors.Is(err, pkgerrors.ErrOptimisticLock) {
		t.Errorf("ErrOptimisticLock 기대, 실제: %v", err)
	}
}

func TestOptimisticLock_VersionIncrement(t *testing.T) {
	ctx := context.Background()
	s := createSchedule(t)

	for i := 0; i < 2; i++ {
		s.SendTime = fmt.Sprintf("19:%02d", i)
		if err := testRepo.Schedule.Update(ctx, s); err != nil {
			t.Fatalf("%d번째 수정 실패: %v", i+1, err)
		}
	}

	got, _ := testRepo.Schedule.GetByID(ctx, s.ScheduleID)
	if got.Version != 3 || s.Version != 3 {
		t.Errorf("version = %d/%d, want 3", got.Version, s.Version)
	}
	if got.SendTime != "19:01" {
		t.Errorf("send_time = %s", got.SendTime)
	}
}

func TestSchedule_SoftDelete(t *testing.T) {
	ctx := context.Background()
	s := createSchedule(t)

	if err := testRepo.Schedule.Delete(ctx, s.ScheduleID, "admin-1"); err != nil {
		t.Fatalf("삭제 실패: %v", err)
	}

	if _, err := testRepo.Schedule.GetByID(ctx, s.ScheduleID); !errors.Is(err, gorm.ErrRecordNotFound) {
		t.Errorf("삭제 후 조회는 ErrRecordNotFound 여야 합니다: %v", err)
	}

	var raw model.NotificationSchedule
	testDB.Unscoped().Where("schedule_id = ?", s.ScheduleID).First(&raw)
	if raw.DeletedBy == nil || *raw.DeletedBy != "admin-1" {
		t.Errorf("deleted_by = %v", raw.DeletedBy)
	}
}

func TestSchedule_ListActiveByDay(t *testing.T) {
	ctx := context.Background()
	s := createSchedule(t)

	list, err := testRepo.Schedule.ListActiveByDay(ctx, 5)
	if err != nil {
		t.Fatalf("조회 실패: %v", err)
	}
	found := false
	for _, item := range list {
		if item.ScheduleID == s.ScheduleID {
			found = true
			if item.Include != s.Include || len(item.ExcludedStudentIDs) != 0 {
				t.Errorf("저장값 = %+v", item)
			}
		}
	}
	if !found {
		t.Error("금요일 활성 예약에 없습니다")
	}
}

// ═══════════════════════════════════════════════════════════
// NotificationLog
// ═══════════════════════════════════════════════════════════

func TestNotificationLog_CreateListMarkRead(t *testing.T) {
	ctx := context.Background()
	runID := uuid.NewString()
	t.Cleanup(func() { testDB.Where("run_id = ?", runID).Delete(&model.NotificationLog{}) })

	for i, status := range []model.MessageStatus{model.MessageSent, model.MessageFailed, model.MessageSent} {
		log := &model.NotificationLog{
			RunID:          &runID,
			Kind:           model.KindNotice,
			StudentName:    fmt.Sprintf("학생%d", i),
			Content:        "본문",
			Month:          11,
			Week:           2,
			Channel:        model.ChannelSMS,
			RecipientCount: 1,
			Status:         status,
			IsBatch:        true,
		}
		if err := testRepo.NotificationLog.Create(ctx, log); err != nil {
			t.Fatalf("기록 생성 실패: %v", err)
		}
	}

	list, total, err := testRepo.NotificationLog.List(ctx, repository.NotificationLogFilter{RunID: runID, Limit: 2})
	if err != nil {
		t.Fatalf("목록 실패: %v", err)
	}
	if total != 3 || len(list) != 2 {
		t.Errorf("total=%d len=%d", total, len(list))
	}

	if err := testRepo.NotificationLog.MarkRead(ctx, list[0].LogID); err != nil {
		t.Fatalf("읽음 처리 실패: %v", err)
	}
	got, _ := testRepo.NotificationLog.GetByID(ctx, list[0].LogID)
	if !got.IsRead {
		t.Error("is_read 가 바뀌지 않았습니다")
	}

	if err := testRepo.NotificationLog.MarkRead(ctx, uuid.NewString()); !errors.Is(err, gorm.ErrRecordNotFound) {
		t.Errorf("없는 기록은 ErrRecordNotFound 여야 합니다: %v", err)
	}
}
