package handler

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/otee21c/learning-system-sub000/internal/dto"
	"github.com/otee21c/learning-system-sub000/internal/service"
	"github.com/otee21c/learning-system-sub000/pkg/response"
)

// ReportHandler 진단 리포트 HTTP 처리
type ReportHandler struct {
	reportSvc service.ReportService
}

// NewReportHandler 생성
func NewReportHandler(reportSvc service.ReportService) *ReportHandler {
	return &ReportHandler{reportSvc: reportSvc}
}

// Preview 리포트 데이터
// POST /api/v1/reports/preview
func (h *ReportHandler) Preview(c *gin.Context) {
	var req dto.ReportPreviewRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, 15001, "요청 형식이 올바르지 않습니다")
		return
	}

	result, err := h.reportSvc.Preview(c.Request.Context(), &req)
	if err != nil {
		h.handleReportError(c, err)
		return
	}

	response.OK(c, result)
}

// Image 리포트 PNG
// POST /api/v1/reports/image
func (h *ReportHandler) Image(c *gin.Context) {
	var req dto.ReportPreviewRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, 15001, "요청 형식이 올바르지 않습니다")
		return
	}

	png, err := h.reportSvc.RenderPNG(c.Request.Context(), &req)
	if err != nil {
		h.handleReportError(c, err)
		return
	}

	c.Data(http.StatusOK, "image/png", png)
}

// Send 리포트 MMS 발송
// POST /api/v1/reports/send
func (h *ReportHandler) Send(c *gin.Context) {
	var req dto.ReportSendRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, 15001, "요청 형식이 올바르지 않습니다")
		return
	}

	result, err := h.reportSvc.Send(c.Request.Context(), &req)
	if err != nil {
		h.handleReportError(c, err)
		return
	}

	response.OK(c, result)
}

func (h *ReportHandler) handleReportError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, service.ErrReportRangeInvalid):
		response.BadRequest(c, 15002, err.Error())
	case errors.Is(err, service.ErrInvalidRunConfig):
		response.ErrorWithDetails(c, http.StatusBadRequest, 14002, "발송 설정이 올바르지 않습니다", err.Error())
	case errors.Is(err, service.ErrStudentNotFound):
		response.NotFound(c, 14101, err.Error())
	case errors.Is(err, service.ErrRendererMissing):
		response.Unavailable(c, 15301, err.Error())
	default:
		response.InternalError(c)
	}
}
