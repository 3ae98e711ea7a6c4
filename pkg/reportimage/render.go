// Package reportimage 는 진단 리포트와 알림장을 PNG 카드로 그린다.
package reportimage

import (
	"bytes"
	"fmt"
	"image/color"
	"os"
	"strings"

	"github.com/fogleman/gg"
	"github.com/golang/freetype/truetype"
	"golang.org/x/image/font"
)

const (
	cardWidth   = 800
	padding     = 40.0
	lineSpacing = 1.5
)

var (
	colorBackground = color.NRGBA{R: 0xFF, G: 0xFF, B: 0xFF, A: 0xFF}
	colorHeader     = color.NRGBA{R: 0x4F, G: 0x46, B: 0xE5, A: 0xFF}
	colorText       = color.NRGBA{R: 0x1F, G: 0x29, B: 0x37, A: 0xFF}
	colorMuted      = color.NRGBA{R: 0x6B, G: 0x72, B: 0x80, A: 0xFF}
	colorDivider    = color.NRGBA{R: 0xE5, G: 0xE7, B: 0xEB, A: 0xFF}
)

// Card 리포트 카드 내용
type Card struct {
	Academy     string
	StudentName string
	PeriodText  string
	Attendance  AttendanceSummary
	Rows        []Row
}

// AttendanceSummary 기간 출결 요약
type AttendanceSummary struct {
	Present int
	Total   int
	Rate    int
}

// Row 주차별 한 줄
type Row struct {
	Label      string
	Curriculum string
	Exams      []string
	Memo       string
}

// Renderer PNG 렌더러. 글꼴 경로가 없으면 gg 기본 글꼴을 쓴다.
type Renderer struct {
	font *truetype.Font
}

// NewRenderer 글꼴을 한 번 읽어 둔다
func NewRenderer(fontPath string) (*Renderer, error) {
	if strings.TrimSpace(fontPath) == "" {
		return &Renderer{}, nil
	}
	raw, err := os.ReadFile(fontPath)
	if err != nil {
		return nil, fmt.Errorf("글꼴 파일 읽기 실패: %w", err)
	}
	f, err := truetype.Parse(raw)
	if err != nil {
		return nil, fmt.Errorf("TTF 해석 실패: %w", err)
	}
	return &Renderer{font: f}, nil
}

func (r *Renderer) face(size float64) font.Face {
	if r == nil || r.font == nil {
		return nil
	}
	return truetype.NewFace(r.font, &truetype.Options{
		Size:    size,
		DPI:     72,
		Hinting: font.HintingNone,
	})
}

func (r *Renderer) use(dc *gg.Context, size float64) {
	if f := r.face(size); f != nil {
		dc.SetFontFace(f)
	}
}

// RenderReport 기간 진단 리포트 카드
func (r *Renderer) RenderReport(card Card) ([]byte, error) {
	height := 220.0 + 110.0
	for _, row := range card.Rows {
		height += rowHeight(row)
	}
	height += padding

	dc := gg.NewContext(cardWidth, int(height))
	dc.SetColor(colorBackground)
	dc.Clear()

	// ── 머리글 ──
	dc.SetColor(colorHeader)
	dc.DrawRectangle(0, 0, cardWidth, 150)
	dc.Fill()

	dc.SetColor(colorBackground)
	r.use(dc, 22)
	dc.DrawString(card.Academy, padding, 55)
	r.use(dc, 32)
	dc.DrawString(fmt.Sprintf("%s 학생 진단 리포트", card.StudentName), padding, 100)
	r.use(dc, 18)
	dc.DrawString(card.PeriodText, padding, 132)

	// ── 출결 ──
	y := 200.0
	dc.SetColor(colorText)
	r.use(dc, 22)
	dc.DrawString("출결 현황", padding, y)
	y += 40
	r.use(dc, 20)
	if card.Attendance.Total == 0 {
		dc.SetColor(colorMuted)
		dc.DrawString("해당 기간 출석 기록이 없습니다.", padding, y)
	} else {
		dc.DrawString(fmt.Sprintf("출석 %d/%d회 (%d%%)", card.Attendance.Present, card.Attendance.Total, card.Attendance.Rate), padding, y)
		drawBar(dc, padding+260, y-16, 400, 18, card.Attendance.Rate)
	}
	y += 40
	divider(dc, y)
	y += 50

	// ── 주차별 ──
	for _, row := range card.Rows {
		dc.SetColor(colorHeader)
		r.use(dc, 20)
		dc.DrawString(row.Label, padding, y)
		y += 32

		dc.SetColor(colorText)
		r.use(dc, 17)
		for _, line := range rowLines(row) {
			dc.DrawStringWrapped(line, padding+16, y-14, 0, 0, cardWidth-padding*2-16, lineSpacing, gg.AlignLeft)
			y += 28
		}
		y += 12
		divider(dc, y)
		y += 40
	}

	return encode(dc)
}

// RenderNotice 알림장 본문을 그대로 옮긴 카드
func (r *Renderer) RenderNotice(title, body string) ([]byte, error) {
	lines := strings.Split(strings.TrimRight(body, "\n"), "\n")
	height := 130.0 + float64(len(lines))*30 + padding

	dc := gg.NewContext(cardWidth, int(height))
	dc.SetColor(colorBackground)
	dc.Clear()

	dc.SetColor(colorHeader)
	dc.DrawRectangle(0, 0, cardWidth, 90)
	dc.Fill()
	dc.SetColor(colorBackground)
	r.use(dc, 26)
	dc.DrawString(title, padding, 58)

	dc.SetColor(colorText)
	r.use(dc, 18)
	y := 130.0
	for _, line := range lines {
		dc.DrawString(line, padding, y)
		y += 30
	}

	return encode(dc)
}

func rowLines(row Row) []string {
	var lines []string
	if row.Curriculum != "" {
		lines = append(lines, "진도: "+row.Curriculum)
	}
	for _, e := range row.Exams {
		lines = append(lines, "시험: "+e)
	}
	if row.Memo != "" {
		lines = append(lines, "메모: "+row.Memo)
	}
	if len(lines) == 0 {
		lines = append(lines, "기록 없음")
	}
	return lines
}

func rowHeight(row Row) float64 {
	return 32 + float64(len(rowLines(row)))*28 + 12 + 40
}

func drawBar(dc *gg.Context, x, y, w, h float64, rate int) {
	dc.SetColor(colorDivider)
	dc.DrawRoundedRectangle(x, y, w, h, h/2)
	dc.Fill()
	if rate <= 0 {
		return
	}
	if rate > 100 {
		rate = 100
	}
	dc.SetColor(colorHeader)
	dc.DrawRoundedRectangle(x, y, w*float64(rate)/100, h, h/2)
	dc.Fill()
}

func divider(dc *gg.Context, y float64) {
	dc.SetColor(colorDivider)
	dc.SetLineWidth(1)
	dc.DrawLine(padding, y, cardWidth-padding, y)
	dc.Stroke()
}

func encode(dc *gg.Context) ([]byte, error) {
	var buf bytes.Buffer
	if err := dc.EncodePNG(&buf); err != nil {
		return nil, fmt.Errorf("PNG 인코딩 실패: %w", err)
	}
	return buf.Bytes(), nil
}
