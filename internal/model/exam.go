package model

import "math"

// ExamRecord 학생 문서에 포함된 시험 기록 (JSON)
//
// 점수와 비고는 서로 독립적으로 비어 있을 수 있다.
// 결석처럼 점수 대신 비고만 남는 경우가 있다.
type ExamRecord struct {
	Title       string   `json:"examTitle"`
	Date        string   `json:"date"`
	Month       int      `json:"month,omitempty"`
	Week        int      `json:"week,omitempty"`
	Score       *float64 `json:"totalScore,omitempty"`
	MaxScore    *float64 `json:"maxScore,omitempty"`
	Percentage  *float64 `json:"percentage,omitempty"`
	Note        *string  `json:"note,omitempty"`
	ManualEntry bool     `json:"manualEntry,omitempty"`
}

// Period 시험이 속한 기간
// 수기 입력은 저장된 월/주차를, 나머지는 날짜에서 계산한 값을 쓴다
func (e ExamRecord) Period() (Period, bool) {
	if e.ManualEntry {
		p := Period{Month: e.Month, Week: e.Week}
		return p, p.Valid()
	}
	return ParsePeriodDate(e.Date)
}

// Result 표시용 결과 변형
func (e ExamRecord) Result() ExamResult {
	note := ""
	if e.Note != nil {
		note = *e.Note
	}

	if e.Score == nil {
		if note != "" {
			return NotedExam{Note: note}
		}
		return PendingExam{}
	}

	scored := ScoredExam{Score: *e.Score}
	if e.MaxScore != nil && *e.MaxScore > 0 {
		scored.MaxScore = *e.MaxScore
	}
	switch {
	case e.Percentage != nil:
		scored.Percentage = *e.Percentage
		scored.HasPercentage = true
	case scored.MaxScore > 0:
		scored.Percentage = math.Round(scored.Score / scored.MaxScore * 100)
		scored.HasPercentage = true
	}

	if note != "" {
		return ScoredNotedExam{ScoredExam: scored, Note: note}
	}
	return scored
}

// ExamResult 시험 결과 변형: ScoredExam | NotedExam | ScoredNotedExam | PendingExam
type ExamResult interface {
	examResult()
}

// ScoredExam 점수만 있는 결과. MaxScore 0 은 만점 미상.
type ScoredExam struct {
	Score         float64
	MaxScore      float64
	Percentage    float64
	HasPercentage bool
}

// NotedExam 점수 없이 비고만 있는 결과 (예: 결석)
type NotedExam struct {
	Note string
}

// ScoredNotedExam 점수와 비고가 모두 있는 결과
type ScoredNotedExam struct {
	ScoredExam
	Note string
}

// PendingExam 점수와 비고가 모두 비어 있는 결과
type PendingExam struct{}

func (ScoredExam) examResult()      {}
func (NotedExam) examResult()       {}
func (ScoredNotedExam) examResult() {}
func (PendingExam) examResult()     {}
