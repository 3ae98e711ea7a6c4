package handler

import (
	"time"

	"github.com/gin-gonic/gin"

	"github.com/otee21c/learning-system-sub000/internal/dto"
	"github.com/otee21c/learning-system-sub000/internal/model"
	"github.com/otee21c/learning-system-sub000/internal/service"
	"github.com/otee21c/learning-system-sub000/pkg/response"
)

// HomeworkHandler 과제 미제출 알림 HTTP 처리
type HomeworkHandler struct {
	reminderSvc service.HomeworkReminderService
	loc         *time.Location
	now         func() time.Time
}

// NewHomeworkHandler 생성
func NewHomeworkHandler(reminderSvc service.HomeworkReminderService, loc *time.Location) *HomeworkHandler {
	return &HomeworkHandler{reminderSvc: reminderSvc, loc: loc, now: time.Now}
}

// RunReminder 과제 미제출 알림을 지금 실행한다. date 의 전날이 마감인 과제가 대상이다.
// POST /api/v1/homework/reminders/run
func (h *HomeworkHandler) RunReminder(c *gin.Context) {
	var req dto.HomeworkReminderRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, 17001, "요청 형식이 올바르지 않습니다")
		return
	}

	day := h.now().In(h.loc)
	if req.Date != "" {
		d, err := time.ParseInLocation("2006-01-02", req.Date, h.loc)
		if err != nil {
			response.BadRequest(c, 17001, service.ErrInvalidDate.Error())
			return
		}
		day = d
	}

	summary, err := h.reminderSvc.RunForDate(c.Request.Context(), day, model.SenderType(req.SenderType))
	if err != nil {
		response.InternalError(c)
		return
	}

	response.OK(c, service.ToSummaryDTO(summary))
}
