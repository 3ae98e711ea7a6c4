package handler

import (
	"time"

	"github.com/otee21c/learning-system-sub000/internal/service"
)

// Handler 모든 Handler 묶음
type Handler struct {
	Notification *NotificationHandler
	Schedule     *ScheduleHandler
	Report       *ReportHandler
	Homework     *HomeworkHandler
	Export       *ExportHandler
}

// NewHandler Handler 묶음 생성. loc 은 날짜 파라미터 해석 기준이다.
func NewHandler(svc *service.Service, loc *time.Location) *Handler {
	return &Handler{
		Notification: NewNotificationHandler(svc.Notification),
		Schedule:     NewScheduleHandler(svc.Schedule, loc),
		Report:       NewReportHandler(svc.Report),
		Homework:     NewHomeworkHandler(svc.HomeworkReminder, loc),
		Export:       NewExportHandler(svc.Export, svc.Calendar, loc),
	}
}
