package handler

import (
	"errors"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/otee21c/learning-system-sub000/internal/dto"
	"github.com/otee21c/learning-system-sub000/internal/model"
	"github.com/otee21c/learning-system-sub000/internal/service"
	"github.com/otee21c/learning-system-sub000/pkg/response"
)

// ScheduleHandler 예약 발송 HTTP 처리
type ScheduleHandler struct {
	scheduleSvc service.ScheduleService
	loc         *time.Location
	now         func() time.Time
}

// NewScheduleHandler 생성
func NewScheduleHandler(scheduleSvc service.ScheduleService, loc *time.Location) *ScheduleHandler {
	return &ScheduleHandler{scheduleSvc: scheduleSvc, loc: loc, now: time.Now}
}

// Create 예약 생성
// POST /api/v1/schedules
func (h *ScheduleHandler) Create(c *gin.Context) {
	var req dto.CreateScheduleRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, 13001, "요청 형식이 올바르지 않습니다")
		return
	}

	callerID, ok := MustGetUserID(c)
	if !ok {
		return
	}

	result, err := h.scheduleSvc.Create(c.Request.Context(), &req, callerID)
	if err != nil {
		h.handleScheduleError(c, err)
		return
	}

	response.Created(c, result)
}

// List 예약 목록
// GET /api/v1/schedules
func (h *ScheduleHandler) List(c *gin.Context) {
	var req dto.ScheduleListRequest
	if err := c.ShouldBindQuery(&req); err != nil {
		response.BadRequest(c, 13001, "요청 형식이 올바르지 않습니다")
		return
	}

	list, err := h.scheduleSvc.List(c.Request.Context(), &req)
	if err != nil {
		h.handleScheduleError(c, err)
		return
	}

	response.OK(c, gin.H{"list": list})
}

// GetByID 예약 상세
// GET /api/v1/schedules/:id
func (h *ScheduleHandler) GetByID(c *gin.Context) {
	result, err := h.scheduleSvc.GetByID(c.Request.Context(), c.Param("id"))
	if err != nil {
		h.handleScheduleError(c, err)
		return
	}

	response.OK(c, result)
}

// Update 예약 수정
// PUT /api/v1/schedules/:id
func (h *ScheduleHandler) Update(c *gin.Context) {
	var req dto.UpdateScheduleRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, 13001, "요청 형식이 올바르지 않습니다")
		return
	}

	callerID, ok := MustGetUserID(c)
	if !ok {
		return
	}

	result, err := h.scheduleSvc.Update(c.Request.Context(), c.Param("id"), &req, callerID)
	if err != nil {
		h.handleScheduleError(c, err)
		return
	}

	response.OK(c, result)
}

// Delete 예약 삭제
// DELETE /api/v1/schedules/:id
func (h *ScheduleHandler) Delete(c *gin.Context) {
	callerID, ok := MustGetUserID(c)
	if !ok {
		return
	}

	if err := h.scheduleSvc.Delete(c.Request.Context(), c.Param("id"), callerID); err != nil {
		h.handleScheduleError(c, err)
		return
	}

	response.OK(c, nil)
}

// RunConfig 예약에서 만든 실행 설정. month/week 를 비우면 오늘 기준.
// GET /api/v1/schedules/:id/run-config
func (h *ScheduleHandler) RunConfig(c *gin.Context) {
	var req dto.RunConfigRequest
	if err := c.ShouldBindQuery(&req); err != nil {
		response.BadRequest(c, 13001, "요청 형식이 올바르지 않습니다")
		return
	}

	period := model.PeriodOf(h.now().In(h.loc))
	if req.Month != 0 || req.Week != 0 {
		if req.Month == 0 || req.Week == 0 {
			response.BadRequest(c, 13001, "month 와 week 는 함께 지정해야 합니다")
			return
		}
		period = model.Period{Month: req.Month, Week: req.Week}
	}

	result, err := h.scheduleSvc.RunConfig(c.Request.Context(), c.Param("id"), period)
	if err != nil {
		h.handleScheduleError(c, err)
		return
	}

	response.OK(c, result)
}

// RunNow 예약 설정으로 즉시 발송
// POST /api/v1/schedules/:id/run
func (h *ScheduleHandler) RunNow(c *gin.Context) {
	result, err := h.scheduleSvc.RunNow(c.Request.Context(), c.Param("id"), h.now().In(h.loc))
	if err != nil {
		h.handleScheduleError(c, err)
		return
	}

	response.Accepted(c, result)
}

func (h *ScheduleHandler) handleScheduleError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, service.ErrScheduleInvalid):
		response.ErrorWithDetails(c, http.StatusBadRequest, 13002, "예약 발송 설정이 올바르지 않습니다", err.Error())
	case errors.Is(err, service.ErrScheduleNotFound):
		response.NotFound(c, 13101, err.Error())
	case errors.Is(err, service.ErrScheduleConflict):
		response.Conflict(c, 13201, err.Error())
	case errors.Is(err, service.ErrNoRecipientsSelected):
		response.BadRequest(c, 14004, err.Error())
	case errors.Is(err, service.ErrNoContentSelected):
		response.BadRequest(c, 14003, err.Error())
	case errors.Is(err, service.ErrInvalidRunConfig):
		response.ErrorWithDetails(c, http.StatusBadRequest, 14002, "발송 설정이 올바르지 않습니다", err.Error())
	default:
		response.InternalError(c)
	}
}
