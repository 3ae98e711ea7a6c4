package service

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/xuri/excelize/v2"
	"go.uber.org/zap"

	"github.com/otee21c/learning-system-sub000/internal/dto"
	"github.com/otee21c/learning-system-sub000/internal/model"
	"github.com/otee21c/learning-system-sub000/internal/repository"
)

// ── 내보내기 업무 오류 ──

var (
	ErrExportNoLogs       = errors.New("내보낼 발송 기록이 없습니다")
	ErrExportGenerateFail = errors.New("엑셀 파일 생성에 실패했습니다")
)

// exportRowLimit 한 번에 내보내는 최대 행 수
const exportRowLimit = 10000

// ExportService 발송 기록 엑셀 내보내기
//
// 결과는 bytes.Buffer 로 돌려주고 응답 헤더는 핸들러가 설정한다.
type ExportService interface {
	ExportLogs(ctx context.Context, req *dto.NotificationLogListRequest) (*bytes.Buffer, string, error)
}

type exportService struct {
	repo   *repository.Repository
	logger *zap.Logger
}

// NewExportService 생성
func NewExportService(repo *repository.Repository, logger *zap.Logger) ExportService {
	return &exportService{repo: repo, logger: logger}
}

var logColumns = []struct {
	title string
	width float64
}{
	{"발송 시각", 20},
	{"종류", 10},
	{"학생", 12},
	{"기간", 14},
	{"채널", 8},
	{"수신 대상", 10},
	{"수신자 수", 10},
	{"성공", 8},
	{"실패", 8},
	{"상태", 8},
	{"일괄", 8},
	{"내용", 60},
}

var kindNames = map[model.NotificationKind]string{
	model.KindNotice:   "알림장",
	model.KindReport:   "리포트",
	model.KindReminder: "과제 알림",
	model.KindAbsence:  "결석 안내",
	model.KindDirect:   "개별 문자",
}

var statusNames = map[model.MessageStatus]string{
	model.MessagePending: "대기",
	model.MessageSent:    "성공",
	model.MessageFailed:  "실패",
}

// ═══════════════════════════════════════════════════════════
// ExportLogs 발송 기록을 엑셀로 내보낸다
// ═══════════════════════════════════════════════════════════
//
// 시트 "발송 기록": 1행 제목, 2행 머리글, 3행부터 최신순 기록
// 반환값: buf(엑셀 내용), filename(권장 파일명), error

func (s *exportService) ExportLogs(ctx context.Context, req *dto.NotificationLogListRequest) (*bytes.Buffer, string, error) {
	logs, _, err := s.repo.NotificationLog.List(ctx, repository.NotificationLogFilter{
		StudentID: req.StudentID,
		RunID:     req.RunID,
		Kind:      model.NotificationKind(req.Kind),
		Month:     req.Month,
		Week:      req.Week,
		IsBatch:   req.IsBatch,
		Limit:     exportRowLimit,
	})
	if err != nil {
		s.logger.Error("발송 기록 조회 실패", zap.Error(err))
		return nil, "", err
	}
	if len(logs) == 0 {
		return nil, "", ErrExportNoLogs
	}

	f := excelize.NewFile()
	defer f.Close()

	sheetName := "발송 기록"
	idx, _ := f.NewSheet(sheetName)
	f.SetActiveSheet(idx)
	f.DeleteSheet("Sheet1")

	for i, c := range logColumns {
		col := colName(i)
		f.SetColWidth(sheetName, col, col, c.width)
	}

	headerStyle, _ := f.NewStyle(&excelize.Style{
		Font:      &excelize.Font{Bold: true, Size: 11, Color: "#FFFFFF"},
		Fill:      excelize.Fill{Type: "pattern", Color: []string{"#4F46E5"}, Pattern: 1},
		Alignment: &excelize.Alignment{Horizontal: "center", Vertical: "center"},
	})
	wrapStyle, _ := f.NewStyle(&excelize.Style{
		Alignment: &excelize.Alignment{WrapText: true, Vertical: "top"},
	})

	// 제목
	f.SetCellValue(sheetName, "A1", fmt.Sprintf("발송 기록 (%d건)", len(logs)))
	f.MergeCell(sheetName, "A1", cell(colName(len(logColumns)-1), 1))
	f.SetCellStyle(sheetName, "A1", "A1", headerStyle)

	// 머리글
	for i, c := range logColumns {
		f.SetCellValue(sheetName, cell(colName(i), 2), c.title)
	}
	f.SetCellStyle(sheetName, "A2", cell(colName(len(logColumns)-1), 2), headerStyle)

	// 기록
	row := 3
	for _, l := range logs {
		period := "-"
		if l.Month > 0 && l.Week > 0 {
			period = model.Period{Month: l.Month, Week: l.Week}.Label()
		}
		batch := "N"
		if l.IsBatch {
			batch = "Y"
		}
		values := []any{
			l.CreatedAt.Format("2006-01-02 15:04:05"),
			kindNames[l.Kind],
			l.StudentName,
			period,
			string(l.Channel),
			string(l.RecipientTarget),
			l.RecipientCount,
			l.SuccessCount,
			l.FailureCount,
			statusNames[l.Status],
			batch,
			l.Content,
		}
		for i, v := range values {
			f.SetCellValue(sheetName, cell(colName(i), row), v)
		}
		row++
	}
	contentCol := colName(len(logColumns) - 1)
	f.SetCellStyle(sheetName, cell(contentCol, 3), cell(contentCol, row-1), wrapStyle)

	buf := new(bytes.Buffer)
	if err := f.Write(buf); err != nil {
		s.logger.Error("엑셀 쓰기 실패", zap.Error(err))
		return nil, "", ErrExportGenerateFail
	}

	filename := fmt.Sprintf("발송기록_%s.xlsx", time.Now().Format("20060102_1504"))
	return buf, filename, nil
}

// ── 보조 함수 ──

// colName 0 부터 시작하는 열 번호 → "A", "B", ...
func colName(idx int) string {
	name, _ := excelize.ColumnNumberToName(idx + 1)
	return name
}

func cell(col string, row int) string {
	return fmt.Sprintf("%s%d", col, row)
}
