package service

import (
	"context"
	"strings"

	"go.uber.org/zap"

	"github.com/otee21c/learning-system-sub000/internal/model"
	"github.com/otee21c/learning-system-sub000/internal/repository"
)

// ── 학생별 기간 자료 수집 ──

// Facts 한 학생의 한 기간 자료. 선택되지 않은 항목은 비어 있다.
type Facts struct {
	Period     model.Period
	ExamScope  model.ExamScope
	Curriculum *CurriculumFact
	Attendance AttendanceFact
	Exams      []ExamFact
	Homework   []HomeworkFact
	Memo       string
}

// CurriculumFact 해당 주차 진도
type CurriculumFact struct {
	Week   int
	Title  string
	Topics []string
}

// AttendanceFact 출결 집계. 상태가 비어 있는 기록은 Total 에서 빠진다.
type AttendanceFact struct {
	Present int
	Total   int
}

// Rate 출석률(%) 반올림. Total 0 이면 0.
func (a AttendanceFact) Rate() int {
	if a.Total <= 0 {
		return 0
	}
	return (a.Present*200 + a.Total) / (2 * a.Total)
}

// ExamFact 시험 한 건
type ExamFact struct {
	Title  string
	Date   string
	Period model.Period
	Result model.ExamResult
}

// HomeworkFact 과제 한 건과 제출 여부
type HomeworkFact struct {
	Title     string
	DueDate   string
	Submitted bool
}

// RunContext 한 번의 발송에서 모든 학생이 공유하는 조회 결과
// 진도와 과제는 기간 단위라 학생마다 다시 읽지 않는다
type RunContext struct {
	Period    model.Period
	Include   model.ContentFlags
	ExamScope model.ExamScope

	curricula []model.CurriculumAssignment
	homework  []model.HomeworkAssignment
}

// Aggregator 저장소에서 학생별 자료를 모은다
type Aggregator struct {
	repo   *repository.Repository
	logger *zap.Logger
}

// NewAggregator 생성
func NewAggregator(repo *repository.Repository, logger *zap.Logger) *Aggregator {
	return &Aggregator{repo: repo, logger: logger}
}

// NewRunContext 기간 공통 자료를 한 번 읽는다
func (a *Aggregator) NewRunContext(ctx context.Context, period model.Period, include model.ContentFlags, scope model.ExamScope) (*RunContext, error) {
	if scope == "" {
		scope = model.ExamScopeRecent
	}
	rc := &RunContext{Period: period, Include: include, ExamScope: scope}

	if include.Curriculum {
		curricula, err := a.repo.Curriculum.FindByPeriod(ctx, period)
		if err != nil {
			a.logger.Error("진도 조회 실패", zap.Stringer("period", period), zap.Error(err))
			return nil, err
		}
		rc.curricula = curricula
	}

	if include.Homework {
		assignments, err := a.repo.Homework.FindAssignmentsByPeriod(ctx, period)
		if err != nil {
			a.logger.Error("과제 조회 실패", zap.Stringer("period", period), zap.Error(err))
			return nil, err
		}
		rc.homework = assignments
	}

	return rc, nil
}

// Aggregate 학생 한 명의 자료. 자료가 없는 항목은 오류가 아니라 빈 값이다.
func (a *Aggregator) Aggregate(ctx context.Context, rc *RunContext, student *model.Student) (*Facts, error) {
	facts := &Facts{Period: rc.Period, ExamScope: rc.ExamScope}

	if rc.Include.Curriculum {
		facts.Curriculum = pickCurriculum(rc.curricula, student.StudentID)
	}

	if rc.Include.Attendance {
		records, err := a.repo.Attendance.FindByStudentAndPeriod(ctx, student.StudentID, rc.Period)
		if err != nil {
			a.logger.Error("출결 조회 실패", zap.String("student_id", student.StudentID), zap.Error(err))
			return nil, err
		}
		facts.Attendance = countAttendance(records)
	}

	if rc.Include.Exam {
		facts.Exams = selectExams(student.Exams, rc.ExamScope, rc.Period)
	}

	if rc.Include.Homework {
		submissions, err := a.repo.Homework.FindSubmissionsByStudentAndPeriod(ctx, student.StudentID, rc.Period)
		if err != nil {
			a.logger.Error("과제 제출 조회 실패", zap.String("student_id", student.StudentID), zap.Error(err))
			return nil, err
		}
		facts.Homework = homeworkFacts(rc.homework, submissions, student)
	}

	if rc.Include.Memo {
		memos, err := a.repo.Memo.FindByStudentAndPeriod(ctx, student.StudentID, rc.Period)
		if err != nil {
			a.logger.Error("메모 조회 실패", zap.String("student_id", student.StudentID), zap.Error(err))
			return nil, err
		}
		facts.Memo = latestMemo(memos)
	}

	return facts, nil
}

func pickCurriculum(curricula []model.CurriculumAssignment, studentID string) *CurriculumFact {
	for _, c := range curricula {
		if !c.Covers(studentID) {
			continue
		}
		return &CurriculumFact{
			Week:   c.Week,
			Title:  c.Title,
			Topics: append([]string(nil), c.Topics...),
		}
	}
	return nil
}

func countAttendance(records []model.Attendance) AttendanceFact {
	var fact AttendanceFact
	for _, r := range records {
		if r.Status == model.AttendanceUnset {
			continue
		}
		fact.Total++
		if r.Status.CountsAsPresent() {
			fact.Present++
		}
	}
	return fact
}

// selectExams recent: 기간이 가장 늦은 시험 1건(같으면 나중 기록), period: 대상 기간 시험 전체
func selectExams(exams []model.ExamRecord, scope model.ExamScope, period model.Period) []ExamFact {
	if len(exams) == 0 {
		return nil
	}

	if scope == model.ExamScopePeriod {
		var out []ExamFact
		for _, e := range exams {
			p, ok := e.Period()
			if !ok || p != period {
				continue
			}
			out = append(out, examFact(e, p))
		}
		return out
	}

	best := -1
	var bestPeriod model.Period
	for i, e := range exams {
		p, ok := e.Period()
		if !ok {
			continue
		}
		if best < 0 || p.Compare(bestPeriod) >= 0 {
			best, bestPeriod = i, p
		}
	}
	if best < 0 {
		// 기간을 알 수 없는 기록뿐이면 마지막 기록
		last := exams[len(exams)-1]
		return []ExamFact{examFact(last, model.Period{})}
	}
	return []ExamFact{examFact(exams[best], bestPeriod)}
}

func examFact(e model.ExamRecord, p model.Period) ExamFact {
	return ExamFact{Title: e.Title, Date: e.Date, Period: p, Result: e.Result()}
}

func homeworkFacts(assignments []model.HomeworkAssignment, submissions []model.HomeworkSubmission, student *model.Student) []HomeworkFact {
	var out []HomeworkFact
	for i := range assignments {
		a := &assignments[i]
		if !a.Covers(student) {
			continue
		}
		out = append(out, HomeworkFact{
			Title:     a.Title,
			DueDate:   a.DueDate,
			Submitted: submittedFor(a, submissions),
		})
	}
	return out
}

func submittedFor(a *model.HomeworkAssignment, submissions []model.HomeworkSubmission) bool {
	for _, s := range submissions {
		if s.Matches(a) && s.Done() {
			return true
		}
	}
	return false
}

// latestMemo 최신순 목록에서 내용이 있는 첫 메모
func latestMemo(memos []model.StudentMemo) string {
	for _, m := range memos {
		if text := strings.TrimSpace(m.Content); text != "" {
			return text
		}
	}
	return ""
}
