package service

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/otee21c/learning-system-sub000/internal/model"
)

// ── 알림장 본문 조립 ──
//
// 항목 순서: 머리말 → 진도 → 출결 → 시험 → 과제 → 메모 → 추가 문구
// 같은 입력이면 같은 바이트열이 나온다.

type section struct {
	enabled func(model.ContentFlags) bool
	render  func(b *strings.Builder, student *model.Student, facts *Facts)
}

var sections = []section{
	{func(f model.ContentFlags) bool { return f.Curriculum }, renderCurriculum},
	{func(f model.ContentFlags) bool { return f.Attendance }, renderAttendance},
	{func(f model.ContentFlags) bool { return f.Exam }, renderExams},
	{func(f model.ContentFlags) bool { return f.Homework }, renderHomework},
	{func(f model.ContentFlags) bool { return f.Memo }, renderMemo},
}

// Compile 학생 한 명의 알림장 본문
func Compile(student *model.Student, facts *Facts, include model.ContentFlags, additionalText string) string {
	var b strings.Builder
	fmt.Fprintf(&b, "📢 %s 학생 알림장\n\n", student.Name)

	for _, s := range sections {
		if s.enabled(include) {
			s.render(&b, student, facts)
		}
	}

	if strings.TrimSpace(additionalText) != "" {
		b.WriteString(additionalText)
		b.WriteString("\n")
	}
	return b.String()
}

func renderCurriculum(b *strings.Builder, _ *model.Student, facts *Facts) {
	fmt.Fprintf(b, "📅 %s 진도\n", facts.Period.Label())
	c := facts.Curriculum
	if c == nil {
		b.WriteString("- 등록된 진도가 없습니다.\n\n")
		return
	}
	fmt.Fprintf(b, "- %d주차: %s\n", c.Week, c.Title)
	if len(c.Topics) > 0 {
		fmt.Fprintf(b, "- 학습 주제: %s\n", strings.Join(c.Topics, ", "))
	}
	b.WriteString("\n")
}

func renderAttendance(b *strings.Builder, _ *model.Student, facts *Facts) {
	fmt.Fprintf(b, "📊 %s 출결 현황\n", facts.Period.Label())
	a := facts.Attendance
	if a.Total == 0 {
		b.WriteString("- 해당 기간 출석 기록이 없습니다.\n\n")
		return
	}
	fmt.Fprintf(b, "- 출석: %d/%d회 (%d%%)\n\n", a.Present, a.Total, a.Rate())
}

func renderExams(b *strings.Builder, _ *model.Student, facts *Facts) {
	if facts.ExamScope == model.ExamScopePeriod {
		fmt.Fprintf(b, "📝 %s 시험 결과\n", facts.Period.Label())
	} else {
		b.WriteString("📝 최근 시험 결과\n")
	}

	if len(facts.Exams) == 0 {
		b.WriteString("- 등록된 시험 결과가 없습니다.\n\n")
		return
	}
	for _, e := range facts.Exams {
		fmt.Fprintf(b, "- 시험명: %s\n", e.Title)
		writeExamResult(b, e.Result)
		if e.Date != "" {
			fmt.Fprintf(b, "- 날짜: %s\n", e.Date)
		}
	}
	b.WriteString("\n")
}

func writeExamResult(b *strings.Builder, result model.ExamResult) {
	switch r := result.(type) {
	case model.ScoredExam:
		writeScore(b, r)
	case model.ScoredNotedExam:
		writeScore(b, r.ScoredExam)
		fmt.Fprintf(b, "- 비고: %s\n", r.Note)
	case model.NotedExam:
		fmt.Fprintf(b, "- 결과: %s\n", r.Note)
	case model.PendingExam:
		b.WriteString("- 점수: 미입력\n")
	default:
		panic(fmt.Sprintf("알 수 없는 시험 결과 형식: %T", result))
	}
}

func writeScore(b *strings.Builder, s model.ScoredExam) {
	fmt.Fprintf(b, "- 점수: %s점", formatNumber(s.Score))
	if s.MaxScore > 0 {
		fmt.Fprintf(b, " / %s점", formatNumber(s.MaxScore))
	}
	if s.HasPercentage {
		fmt.Fprintf(b, " (%s%%)", formatNumber(s.Percentage))
	}
	b.WriteString("\n")
}

func formatNumber(v float64) string {
	return strconv.FormatFloat(v, 'f', -1, 64)
}

func renderHomework(b *strings.Builder, _ *model.Student, facts *Facts) {
	fmt.Fprintf(b, "📚 %s 과제\n", facts.Period.Label())
	if len(facts.Homework) == 0 {
		b.WriteString("- 등록된 과제가 없습니다.\n\n")
		return
	}
	for _, h := range facts.Homework {
		state := "미제출"
		if h.Submitted {
			state = "제출 완료"
		}
		fmt.Fprintf(b, "- %s (마감: %s)\n  제출 상태: %s\n", h.Title, h.DueDate, state)
	}
	b.WriteString("\n")
}

// renderMemo 메모가 없으면 항목 자체를 생략한다
func renderMemo(b *strings.Builder, _ *model.Student, facts *Facts) {
	if facts.Memo == "" {
		return
	}
	fmt.Fprintf(b, "🗒 학습 메모\n%s\n\n", facts.Memo)
}
