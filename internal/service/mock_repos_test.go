package service

import (
	"context"
	"fmt"
	"slices"
	"sort"
	"sync"
	"time"

	"gorm.io/gorm"

	"github.com/otee21c/learning-system-sub000/internal/model"
	"github.com/otee21c/learning-system-sub000/internal/repository"
	pkgerrors "github.com/otee21c/learning-system-sub000/pkg/errors"
	"github.com/otee21c/learning-system-sub000/pkg/sms"
)

// ── Mock StudentRepository ──

type mockStudentRepo struct {
	students map[string]*model.Student
}

func newMockStudentRepo() *mockStudentRepo {
	return &mockStudentRepo{students: make(map[string]*model.Student)}
}

func (m *mockStudentRepo) add(s *model.Student) {
	m.students[s.StudentID] = s
}

func (m *mockStudentRepo) GetByID(_ context.Context, id string) (*model.Student, error) {
	if s, ok := m.students[id]; ok {
		return s, nil
	}
	return nil, gorm.ErrRecordNotFound
}

func (m *mockStudentRepo) List(_ context.Context, filter repository.StudentFilter) ([]model.Student, error) {
	var result []model.Student
	for _, s := range m.students {
		if filter.Grade != "" && s.Grade != filter.Grade {
			continue
		}
		if filter.Branch != "" && s.Branch != filter.Branch {
			continue
		}
		if len(filter.IDs) > 0 && !slices.Contains(filter.IDs, s.StudentID) {
			continue
		}
		result = append(result, *s)
	}
	if len(filter.IDs) > 0 {
		sort.SliceStable(result, func(i, j int) bool {
			return slices.Index(filter.IDs, result[i].StudentID) < slices.Index(filter.IDs, result[j].StudentID)
		})
		return result, nil
	}
	sort.Slice(result, func(i, j int) bool {
		if result[i].Name != result[j].Name {
			return result[i].Name < result[j].Name
		}
		return result[i].StudentID < result[j].StudentID
	})
	return result, nil
}

// ── Mock AttendanceRepository ──

type mockAttendanceRepo struct {
	records []model.Attendance
}

func newMockAttendanceRepo() *mockAttendanceRepo {
	return &mockAttendanceRepo{}
}

func (m *mockAttendanceRepo) FindByStudentAndPeriod(_ context.Context, studentID string, p model.Period) ([]model.Attendance, error) {
	var result []model.Attendance
	for _, r := range m.records {
		if r.StudentID == studentID && r.Period() == p {
			result = append(result, r)
		}
	}
	return result, nil
}

func (m *mockAttendanceRepo) FindByStudentAndPeriods(_ context.Context, studentID string, periods []model.Period) ([]model.Attendance, error) {
	var result []model.Attendance
	for _, r := range m.records {
		if r.StudentID == studentID && slices.Contains(periods, r.Period()) {
			result = append(result, r)
		}
	}
	return result, nil
}

// ── Mock CurriculumRepository ──

type mockCurriculumRepo struct {
	items []model.CurriculumAssignment
}

func newMockCurriculumRepo() *mockCurriculumRepo {
	return &mockCurriculumRepo{}
}

func (m *mockCurriculumRepo) FindByPeriod(_ context.Context, p model.Period) ([]model.CurriculumAssignment, error) {
	var result []model.CurriculumAssignment
	for _, c := range m.items {
		if c.Period() == p {
			result = append(result, c)
		}
	}
	return result, nil
}

func (m *mockCurriculumRepo) FindByPeriods(_ context.Context, periods []model.Period) ([]model.CurriculumAssignment, error) {
	var result []model.CurriculumAssignment
	for _, c := range m.items {
		if slices.Contains(periods, c.Period()) {
			result = append(result, c)
		}
	}
	return result, nil
}

// ── Mock HomeworkRepository ──

type mockHomeworkRepo struct {
	assignments []model.HomeworkAssignment
	submissions []model.HomeworkSubmission
}

func newMockHomeworkRepo() *mockHomeworkRepo {
	return &mockHomeworkRepo{}
}

func (m *mockHomeworkRepo) FindAssignmentsByPeriod(_ context.Context, p model.Period) ([]model.HomeworkAssignment, error) {
	var result []model.HomeworkAssignment
	for _, a := range m.assignments {
		if a.Period() == p {
			result = append(result, a)
		}
	}
	return result, nil
}

func (m *mockHomeworkRepo) FindAssignmentsDueOn(_ context.Context, dueDate string, status model.HomeworkStatus) ([]model.HomeworkAssignment, error) {
	var result []model.HomeworkAssignment
	for _, a := range m.assignments {
		if a.DueDate == dueDate && a.Status == status {
			result = append(result, a)
		}
	}
	return result, nil
}

func (m *mockHomeworkRepo) FindSubmissionsByStudentAndPeriod(_ context.Context, studentID string, p model.Period) ([]model.HomeworkSubmission, error) {
	var result []model.HomeworkSubmission
	for _, s := range m.submissions {
		if s.StudentID == studentID && s.Month == p.Month && s.Week == p.Week {
			result = append(result, s)
		}
	}
	return result, nil
}

func (m *mockHomeworkRepo) FindSubmissionsForAssignment(_ context.Context, a *model.HomeworkAssignment) ([]model.HomeworkSubmission, error) {
	var result []model.HomeworkSubmission
	for _, s := range m.submissions {
		if s.Matches(a) {
			result = append(result, s)
		}
	}
	return result, nil
}

// ── Mock MemoRepository ──

type mockMemoRepo struct {
	memos []model.StudentMemo
}

func newMockMemoRepo() *mockMemoRepo {
	return &mockMemoRepo{}
}

// 최신순 정렬은 저장소 책임이므로 테스트 데이터는 최신순으로 넣는다
func (m *mockMemoRepo) FindByStudentAndPeriod(_ context.Context, studentID string, p model.Period) ([]model.StudentMemo, error) {
	var result []model.StudentMemo
	for _, memo := range m.memos {
		if memo.StudentID == studentID && memo.Month == p.Month && memo.Week == p.Week {
			result = append(result, memo)
		}
	}
	return result, nil
}

func (m *mockMemoRepo) FindByStudentAndPeriods(_ context.Context, studentID string, periods []model.Period) ([]model.StudentMemo, error) {
	var result []model.StudentMemo
	for _, memo := range m.memos {
		p := model.Period{Month: memo.Month, Week: memo.Week}
		if memo.StudentID == studentID && slices.Contains(periods, p) {
			result = append(result, memo)
		}
	}
	return result, nil
}

// ── Mock NotificationLogRepository ──

type mockNotificationLogRepo struct {
	mu      sync.Mutex
	logs    []*model.NotificationLog
	failing bool
}

func newMockNotificationLogRepo() *mockNotificationLogRepo {
	return &mockNotificationLogRepo{}
}

func (m *mockNotificationLogRepo) Create(_ context.Context, log *model.NotificationLog) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.failing {
		return fmt.Errorf("db down")
	}
	if log.LogID == "" {
		log.LogID = fmt.Sprintf("log-%d", len(m.logs)+1)
	}
	log.CreatedAt = time.Now()
	m.logs = append(m.logs, log)
	return nil
}

func (m *mockNotificationLogRepo) GetByID(_ context.Context, id string) (*model.NotificationLog, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, l := range m.logs {
		if l.LogID == id {
			return l, nil
		}
	}
	return nil, gorm.ErrRecordNotFound
}

func (m *mockNotificationLogRepo) List(_ context.Context, filter repository.NotificationLogFilter) ([]model.NotificationLog, int64, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var result []model.NotificationLog
	for _, l := range m.logs {
		if filter.Kind != "" && l.Kind != filter.Kind {
			continue
		}
		if filter.StudentID != "" && (l.StudentID == nil || *l.StudentID != filter.StudentID) {
			continue
		}
		if filter.IsBatch != nil && l.IsBatch != *filter.IsBatch {
			continue
		}
		result = append(result, *l)
	}
	return result, int64(len(result)), nil
}

func (m *mockNotificationLogRepo) MarkRead(_ context.Context, id string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, l := range m.logs {
		if l.LogID == id {
			l.IsRead = true
			return nil
		}
	}
	return gorm.ErrRecordNotFound
}

func (m *mockNotificationLogRepo) count() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.logs)
}

// ── Mock ScheduleRepository ──

type mockScheduleRepo struct {
	schedules map[string]*model.NotificationSchedule
	seq       int
}

func newMockScheduleRepo() *mockScheduleRepo {
	return &mockScheduleRepo{schedules: make(map[string]*model.NotificationSchedule)}
}

func (m *mockScheduleRepo) Create(_ context.Context, s *model.NotificationSchedule) error {
	if s.ScheduleID == "" {
		m.seq++
		s.ScheduleID = fmt.Sprintf("sched-%d", m.seq)
	}
	cp := *s
	m.schedules[s.ScheduleID] = &cp
	return nil
}

func (m *mockScheduleRepo) GetByID(_ context.Context, id string) (*model.NotificationSchedule, error) {
	if s, ok := m.schedules[id]; ok && !s.DeletedAt.Valid {
		cp := *s
		return &cp, nil
	}
	return nil, gorm.ErrRecordNotFound
}

func (m *mockScheduleRepo) List(_ context.Context, activeOnly bool) ([]model.NotificationSchedule, error) {
	var result []model.NotificationSchedule
	for _, s := range m.schedules {
		if s.DeletedAt.Valid || (activeOnly && !s.IsActive) {
			continue
		}
		result = append(result, *s)
	}
	sort.Slice(result, func(i, j int) bool { return result[i].ScheduleID < result[j].ScheduleID })
	return result, nil
}

func (m *mockScheduleRepo) ListActiveByDay(ctx context.Context, dayOfWeek int) ([]model.NotificationSchedule, error) {
	all, _ := m.List(ctx, true)
	var result []model.NotificationSchedule
	for _, s := range all {
		if s.DayOfWeek == dayOfWeek {
			result = append(result, s)
		}
	}
	return result, nil
}

func (m *mockScheduleRepo) Update(_ context.Context, s *model.NotificationSchedule) error {
	cur, ok := m.schedules[s.ScheduleID]
	if !ok || cur.DeletedAt.Valid || cur.Version != s.Version {
		return pkgerrors.ErrOptimisticLock
	}
	s.Version++
	cp := *s
	m.schedules[s.ScheduleID] = &cp
	return nil
}

func (m *mockScheduleRepo) Delete(_ context.Context, id string, deletedBy string) error {
	if s, ok := m.schedules[id]; ok {
		s.DeletedAt = gorm.DeletedAt{Time: time.Now(), Valid: true}
		s.DeletedBy = &deletedBy
	}
	return nil
}

// ── 테스트 저장소 묶음 ──

type testRepos struct {
	student    *mockStudentRepo
	attendance *mockAttendanceRepo
	curriculum *mockCurriculumRepo
	homework   *mockHomeworkRepo
	memo       *mockMemoRepo
	logs       *mockNotificationLogRepo
	schedule   *mockScheduleRepo
}

func newTestRepos() *testRepos {
	return &testRepos{
		student:    newMockStudentRepo(),
		attendance: newMockAttendanceRepo(),
		curriculum: newMockCurriculumRepo(),
		homework:   newMockHomeworkRepo(),
		memo:       newMockMemoRepo(),
		logs:       newMockNotificationLogRepo(),
		schedule:   newMockScheduleRepo(),
	}
}

func (r *testRepos) toRepository() *repository.Repository {
	return &repository.Repository{
		Student:         r.student,
		Attendance:      r.attendance,
		Curriculum:      r.curriculum,
		Homework:        r.homework,
		Memo:            r.memo,
		NotificationLog: r.logs,
		Schedule:        r.schedule,
	}
}

// ── Fake 문자 게이트웨이 ──

// fakeGateway 수신번호별 결과 코드를 정해 둘 수 있다. 기본은 성공("1").
type fakeGateway struct {
	mu    sync.Mutex
	codes map[string]string
	errs  map[string]error
	sent  []sms.Message
}

func newFakeGateway() *fakeGateway {
	return &fakeGateway{codes: make(map[string]string), errs: make(map[string]error)}
}

func (g *fakeGateway) Send(_ context.Context, msg sms.Message) (*sms.Result, error) {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.sent = append(g.sent, msg)

	if err, ok := g.errs[msg.Receiver]; ok {
		return nil, err
	}
	code := "1"
	if c, ok := g.codes[msg.Receiver]; ok {
		code = c
	}
	res := &sms.Result{Message: "ok"}
	if err := res.Code.UnmarshalJSON([]byte(`"` + code + `"`)); err != nil {
		return nil, err
	}
	if !res.OK() {
		return res, &sms.ResultError{Code: code, Message: "fail"}
	}
	return res, nil
}

func (g *fakeGateway) receivers() []string {
	g.mu.Lock()
	defer g.mu.Unlock()
	out := make([]string, 0, len(g.sent))
	for _, m := range g.sent {
		out = append(out, m.Receiver)
	}
	return out
}

// fakeSleeper 대기 없이 호출 횟수만 센다
type fakeSleeper struct {
	mu    sync.Mutex
	calls []time.Duration
}

func (s *fakeSleeper) sleep(_ context.Context, d time.Duration) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.calls = append(s.calls, d)
}

func (s *fakeSleeper) count() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.calls)
}

// ── 공통 데이터 ──

func ptrFloat(v float64) *float64 { return &v }

func ptrString(v string) *string { return &v }
