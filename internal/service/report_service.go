package service

import (
	"context"
	"errors"
	"fmt"

	"go.uber.org/zap"

	"github.com/otee21c/learning-system-sub000/config"
	"github.com/otee21c/learning-system-sub000/internal/dto"
	"github.com/otee21c/learning-system-sub000/internal/model"
	"github.com/otee21c/learning-system-sub000/internal/repository"
	"github.com/otee21c/learning-system-sub000/pkg/reportimage"
)

// ── 진단 리포트 업무 오류 ──

var (
	ErrReportRangeInvalid = errors.New("리포트 기간이 올바르지 않습니다")
	ErrRendererMissing    = errors.New("리포트 이미지 렌더러가 설정되지 않았습니다")
)

// MaxReportWeeks 사용자 지정 기간의 최대 주차 수
const MaxReportWeeks = 60

// ReportRange 리포트 기간
type ReportRange struct {
	Mode  string // monthly | custom
	Month int
	Start model.Period
	End   model.Period
}

// Periods 기간에 속한 주차 목록
func (r ReportRange) Periods() ([]model.Period, error) {
	switch r.Mode {
	case "monthly":
		if r.Month < 1 || r.Month > 12 {
			return nil, ErrReportRangeInvalid
		}
		return model.MonthPeriods(r.Month), nil
	case "custom":
		if !r.Start.Valid() || !r.End.Valid() {
			return nil, ErrReportRangeInvalid
		}
		return model.PeriodRange(r.Start, r.End, MaxReportWeeks), nil
	}
	return nil, ErrReportRangeInvalid
}

// Text 문자와 카드에 쓰는 기간 표기
func (r ReportRange) Text() string {
	if r.Mode == "monthly" {
		return fmt.Sprintf("%d월", r.Month)
	}
	return fmt.Sprintf("%s ~ %s", r.Start.Label(), r.End.Label())
}

// ReportWeek 주차별 행
type ReportWeek struct {
	Period     model.Period
	Curriculum string
	Exams      []string
	Memo       string
}

func (w ReportWeek) hasData() bool {
	return w.Curriculum != "" || len(w.Exams) > 0 || w.Memo != ""
}

// ReportData 한 학생의 기간 리포트
type ReportData struct {
	Student    *model.Student
	PeriodText string
	Attendance AttendanceFact
	Weeks      []ReportWeek
}

// ReportService 기간 리포트 작성과 MMS 발송
type ReportService interface {
	Build(ctx context.Context, studentID string, rng ReportRange) (*ReportData, error)
	Preview(ctx context.Context, req *dto.ReportPreviewRequest) (*dto.ReportResponse, error)
	RenderPNG(ctx context.Context, req *dto.ReportPreviewRequest) ([]byte, error)
	Send(ctx context.Context, req *dto.ReportSendRequest) (*dto.DispatchSummaryResponse, error)
}

type reportService struct {
	repo       *repository.Repository
	dispatcher *Dispatcher
	renderer   *reportimage.Renderer
	academy    string
	logger     *zap.Logger
}

// NewReportService 생성
func NewReportService(cfg *config.Config, repo *repository.Repository, dispatcher *Dispatcher, renderer *reportimage.Renderer, logger *zap.Logger) ReportService {
	return &reportService{
		repo:       repo,
		dispatcher: dispatcher,
		renderer:   renderer,
		academy:    cfg.Report.AcademyName,
		logger:     logger,
	}
}

// RangeFromDTO 요청 기간 변환
func RangeFromDTO(r dto.ReportRangeRequest) ReportRange {
	out := ReportRange{Mode: r.Mode, Month: r.Month}
	if r.Start != nil {
		out.Start = model.Period{Month: r.Start.Month, Week: r.Start.Week}
	}
	if r.End != nil {
		out.End = model.Period{Month: r.End.Month, Week: r.End.Week}
	}
	return out
}

// ────────────────────── Build ──────────────────────

func (s *reportService) Build(ctx context.Context, studentID string, rng ReportRange) (*ReportData, error) {
	periods, err := rng.Periods()
	if err != nil {
		return nil, err
	}

	student, err := findStudent(ctx, s.repo, s.logger, studentID)
	if err != nil {
		return nil, err
	}

	attendance, err := s.repo.Attendance.FindByStudentAndPeriods(ctx, studentID, periods)
	if err != nil {
		s.logger.Error("리포트 출결 조회 실패", zap.String("student_id", studentID), zap.Error(err))
		return nil, err
	}
	curricula, err := s.repo.Curriculum.FindByPeriods(ctx, periods)
	if err != nil {
		s.logger.Error("리포트 진도 조회 실패", zap.Error(err))
		return nil, err
	}
	memos, err := s.repo.Memo.FindByStudentAndPeriods(ctx, studentID, periods)
	if err != nil {
		s.logger.Error("리포트 메모 조회 실패", zap.String("student_id", studentID), zap.Error(err))
		return nil, err
	}

	weeks := make([]ReportWeek, 0, len(periods))
	for _, p := range periods {
		week := ReportWeek{Period: p}
		for _, c := range curricula {
			if c.Period() == p && c.Covers(studentID) {
				week.Curriculum = c.Title
				break
			}
		}
		for _, e := range student.Exams {
			if ep, ok := e.Period(); ok && ep == p {
				week.Exams = append(week.Exams, examLine(e))
			}
		}
		var weekMemos []model.StudentMemo
		for _, m := range memos {
			if m.Month == p.Month && m.Week == p.Week {
				weekMemos = append(weekMemos, m)
			}
		}
		week.Memo = latestMemo(weekMemos)
		weeks = append(weeks, week)
	}

	return &ReportData{
		Student:    student,
		PeriodText: rng.Text(),
		Attendance: countAttendance(attendance),
		Weeks:      keepWeeksWithData(weeks),
	}, nil
}

// keepWeeksWithData 자료가 있는 주차만 남긴다. 모두 비어 있으면 전체를 둔다.
func keepWeeksWithData(weeks []ReportWeek) []ReportWeek {
	var out []ReportWeek
	for _, w := range weeks {
		if w.hasData() {
			out = append(out, w)
		}
	}
	if len(out) == 0 {
		return weeks
	}
	return out
}

// examLine 리포트 한 줄 요약
func examLine(e model.ExamRecord) string {
	switch r := e.Result().(type) {
	case model.ScoredExam:
		return e.Title + " " + scoreText(r)
	case model.ScoredNotedExam:
		return fmt.Sprintf("%s %s (%s)", e.Title, scoreText(r.ScoredExam), r.Note)
	case model.NotedExam:
		return fmt.Sprintf("%s %s", e.Title, r.Note)
	case model.PendingExam:
		return e.Title + " 미입력"
	default:
		panic(fmt.Sprintf("알 수 없는 시험 결과 형식: %T", r))
	}
}

func scoreText(s model.ScoredExam) string {
	out := formatNumber(s.Score) + "점"
	if s.MaxScore > 0 {
		out += "/" + formatNumber(s.MaxScore) + "점"
	}
	return out
}

// ────────────────────── Preview ──────────────────────

func (s *reportService) Preview(ctx context.Context, req *dto.ReportPreviewRequest) (*dto.ReportResponse, error) {
	data, err := s.Build(ctx, req.StudentID, RangeFromDTO(req.Range))
	if err != nil {
		return nil, err
	}

	resp := &dto.ReportResponse{
		StudentID:   data.Student.StudentID,
		StudentName: data.Student.Name,
		PeriodText:  data.PeriodText,
		Present:     data.Attendance.Present,
		Total:       data.Attendance.Total,
		Rate:        data.Attendance.Rate(),
		Weeks:       make([]dto.ReportWeekResponse, 0, len(data.Weeks)),
	}
	for _, w := range data.Weeks {
		exams := w.Exams
		if exams == nil {
			exams = []string{}
		}
		resp.Weeks = append(resp.Weeks, dto.ReportWeekResponse{
			Period:     dto.PeriodDTO{Month: w.Period.Month, Week: w.Period.Week},
			Label:      w.Period.Label(),
			Curriculum: w.Curriculum,
			Exams:      exams,
			Memo:       w.Memo,
		})
	}
	return resp, nil
}

func (s *reportService) RenderPNG(ctx context.Context, req *dto.ReportPreviewRequest) ([]byte, error) {
	data, err := s.Build(ctx, req.StudentID, RangeFromDTO(req.Range))
	if err != nil {
		return nil, err
	}
	return s.render(data)
}

func (s *reportService) render(data *ReportData) ([]byte, error) {
	if s.renderer == nil {
		return nil, ErrRendererMissing
	}
	card := reportimage.Card{
		Academy:     s.academy,
		StudentName: data.Student.Name,
		PeriodText:  data.PeriodText,
		Attendance: reportimage.AttendanceSummary{
			Present: data.Attendance.Present,
			Total:   data.Attendance.Total,
			Rate:    data.Attendance.Rate(),
		},
	}
	for _, w := range data.Weeks {
		card.Rows = append(card.Rows, reportimage.Row{
			Label:      w.Period.Label(),
			Curriculum: w.Curriculum,
			Exams:      w.Exams,
			Memo:       w.Memo,
		})
	}

	img, err := s.renderer.RenderReport(card)
	if err != nil {
		s.logger.Error("리포트 이미지 생성 실패", zap.String("student_id", data.Student.StudentID), zap.Error(err))
		return nil, err
	}
	return img, nil
}

// ReportText 리포트 MMS 본문
func ReportText(academy, name, periodText string) string {
	return fmt.Sprintf("[%s]\n%s 학생 %s 진단 리포트입니다.", academy, name, periodText)
}

// ────────────────────── Send ──────────────────────

// Send 학생마다 리포트를 만들어 개별 발송한다. 학생 사이에는 발송 간격을 둔다.
// 리포트를 만들 수 없는 학생이 있으면 아무것도 보내지 않는다.
func (s *reportService) Send(ctx context.Context, req *dto.ReportSendRequest) (*dto.DispatchSummaryResponse, error) {
	rng := RangeFromDTO(req.Range)
	periods, err := rng.Periods()
	if err != nil {
		return nil, err
	}
	target := model.RecipientTarget(req.RecipientTarget)

	msgs := make([]*PreparedMessage, 0, len(req.StudentIDs))
	for _, id := range req.StudentIDs {
		data, err := s.Build(ctx, id, rng)
		if err != nil {
			return nil, err
		}
		img, err := s.render(data)
		if err != nil {
			return nil, err
		}
		msgs = append(msgs, &PreparedMessage{
			StudentID:   data.Student.StudentID,
			StudentName: data.Student.Name,
			Content:     ReportText(s.academy, data.Student.Name, data.PeriodText),
			Recipients:  ResolveRecipients(data.Student, target),
			Image:       img,
			Period:      periods[len(periods)-1],
		})
	}

	opts := DispatchOptions{
		Kind:            model.KindReport,
		Channel:         model.ChannelMMS,
		SenderType:      senderOrDefault(req.SenderType),
		RecipientTarget: target,
		Title:           fmt.Sprintf("[%s] 진단 리포트", s.academy),
	}

	runCtx := context.WithoutCancel(ctx)
	summary := &DispatchSummary{Total: len(msgs)}
	for i, msg := range msgs {
		summary.add(s.dispatcher.SendDirect(runCtx, msg, opts))
		if i < len(msgs)-1 {
			s.dispatcher.Pause(runCtx)
		}
	}
	return ToSummaryDTO(summary), nil
}
