package handler

import (
	"errors"
	"net/http"
	"net/url"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/otee21c/learning-system-sub000/internal/dto"
	"github.com/otee21c/learning-system-sub000/internal/service"
	"github.com/otee21c/learning-system-sub000/pkg/response"
)

const xlsxContentType = "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"

// ExportHandler 파일 내보내기 HTTP 처리
type ExportHandler struct {
	exportSvc   service.ExportService
	calendarSvc service.CalendarService
	loc         *time.Location
	now         func() time.Time
}

// NewExportHandler 생성
func NewExportHandler(exportSvc service.ExportService, calendarSvc service.CalendarService, loc *time.Location) *ExportHandler {
	return &ExportHandler{exportSvc: exportSvc, calendarSvc: calendarSvc, loc: loc, now: time.Now}
}

// ExportLogs 발송 기록 엑셀
// GET /api/v1/notifications/logs/export
func (h *ExportHandler) ExportLogs(c *gin.Context) {
	var req dto.NotificationLogListRequest
	if err := c.ShouldBindQuery(&req); err != nil {
		response.BadRequest(c, 16001, "요청 형식이 올바르지 않습니다")
		return
	}

	buf, filename, err := h.exportSvc.ExportLogs(c.Request.Context(), &req)
	if err != nil {
		h.handleExportError(c, err)
		return
	}

	attachment(c, filename)
	c.Data(http.StatusOK, xlsxContentType, buf.Bytes())
}

// ExportCalendar 예약 발송 일정 iCalendar
// GET /api/v1/schedules/calendar.ics
func (h *ExportHandler) ExportCalendar(c *gin.Context) {
	data, err := h.calendarSvc.ExportSchedules(c.Request.Context(), h.now().In(h.loc))
	if err != nil {
		h.handleExportError(c, err)
		return
	}

	attachment(c, "schedules.ics")
	c.Data(http.StatusOK, "text/calendar; charset=utf-8", data)
}

func attachment(c *gin.Context, filename string) {
	c.Header("Content-Description", "File Transfer")
	c.Header("Content-Disposition", "attachment; filename*=UTF-8''"+url.QueryEscape(filename))
}

func (h *ExportHandler) handleExportError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, service.ErrExportNoLogs):
		response.NotFound(c, 16101, err.Error())
	case errors.Is(err, service.ErrExportGenerateFail):
		response.InternalError(c)
	default:
		response.InternalError(c)
	}
}
