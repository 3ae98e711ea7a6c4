package handler

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/otee21c/learning-system-sub000/internal/dto"
	"github.com/otee21c/learning-system-sub000/internal/service"
	"github.com/otee21c/learning-system-sub000/pkg/response"
)

// NotificationHandler 알림장 발송 HTTP 처리
type NotificationHandler struct {
	notificationSvc service.NotificationService
}

// NewNotificationHandler 생성
func NewNotificationHandler(notificationSvc service.NotificationService) *NotificationHandler {
	return &NotificationHandler{notificationSvc: notificationSvc}
}

// Preview 한 학생의 알림장 미리보기
// POST /api/v1/notifications/preview
func (h *NotificationHandler) Preview(c *gin.Context) {
	var req dto.PreviewRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, 14001, "요청 형식이 올바르지 않습니다")
		return
	}

	result, err := h.notificationSvc.Preview(c.Request.Context(), &req)
	if err != nil {
		h.handleNotificationError(c, err)
		return
	}

	response.OK(c, result)
}

// SendBatch 일괄 발송 시작. 진행률은 run_id 로 조회한다.
// POST /api/v1/notifications/batch
func (h *NotificationHandler) SendBatch(c *gin.Context) {
	var req dto.BatchSendRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, 14001, "요청 형식이 올바르지 않습니다")
		return
	}

	result, err := h.notificationSvc.SendBatch(c.Request.Context(), &req)
	if err != nil {
		h.handleNotificationError(c, err)
		return
	}

	response.Accepted(c, result)
}

// GetProgress 발송 진행률
// GET /api/v1/notifications/runs/:id/progress
func (h *NotificationHandler) GetProgress(c *gin.Context) {
	progress, err := h.notificationSvc.GetProgress(c.Request.Context(), c.Param("id"))
	if err != nil {
		h.handleNotificationError(c, err)
		return
	}

	response.OK(c, progress)
}

// SendDirect 개별 문자
// POST /api/v1/notifications/direct
func (h *NotificationHandler) SendDirect(c *gin.Context) {
	var req dto.DirectSendRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, 14001, "요청 형식이 올바르지 않습니다")
		return
	}

	result, err := h.notificationSvc.SendDirect(c.Request.Context(), &req)
	if err != nil {
		h.handleNotificationError(c, err)
		return
	}

	response.OK(c, result)
}

// NotifyAbsence 결석 안내
// POST /api/v1/notifications/absence
func (h *NotificationHandler) NotifyAbsence(c *gin.Context) {
	var req dto.AbsenceNoticeRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, 14001, "요청 형식이 올바르지 않습니다")
		return
	}

	result, err := h.notificationSvc.NotifyAbsence(c.Request.Context(), &req)
	if err != nil {
		h.handleNotificationError(c, err)
		return
	}

	response.OK(c, result)
}

// ListLogs 발송 기록 목록
// GET /api/v1/notifications/logs
func (h *NotificationHandler) ListLogs(c *gin.Context) {
	var req dto.NotificationLogListRequest
	if err := c.ShouldBindQuery(&req); err != nil {
		response.BadRequest(c, 14001, "요청 형식이 올바르지 않습니다")
		return
	}

	list, total, err := h.notificationSvc.ListLogs(c.Request.Context(), &req)
	if err != nil {
		h.handleNotificationError(c, err)
		return
	}

	response.OKPage(c, list, total, req.GetPage(), req.GetPageSize())
}

// MarkRead 발송 기록 읽음 처리
// PUT /api/v1/notifications/logs/:id/read
func (h *NotificationHandler) MarkRead(c *gin.Context) {
	if err := h.notificationSvc.MarkRead(c.Request.Context(), c.Param("id")); err != nil {
		h.handleNotificationError(c, err)
		return
	}

	response.OK(c, nil)
}

func (h *NotificationHandler) handleNotificationError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, service.ErrInvalidRunConfig):
		response.ErrorWithDetails(c, http.StatusBadRequest, 14002, "발송 설정이 올바르지 않습니다", err.Error())
	case errors.Is(err, service.ErrNoContentSelected):
		response.BadRequest(c, 14003, err.Error())
	case errors.Is(err, service.ErrNoRecipientsSelected):
		response.BadRequest(c, 14004, err.Error())
	case errors.Is(err, service.ErrMissingImage):
		response.BadRequest(c, 14005, err.Error())
	case errors.Is(err, service.ErrInvalidImage):
		response.BadRequest(c, 14006, err.Error())
	case errors.Is(err, service.ErrInvalidDate):
		response.BadRequest(c, 14007, err.Error())
	case errors.Is(err, service.ErrStudentNotFound):
		response.NotFound(c, 14101, err.Error())
	case errors.Is(err, service.ErrRunNotFound):
		response.NotFound(c, 14102, err.Error())
	case errors.Is(err, service.ErrLogNotFound):
		response.NotFound(c, 14103, err.Error())
	default:
		response.InternalError(c)
	}
}
