package dto

// HomeworkReminderRequest 과제 미제출 알림 수동 실행
// date 를 비우면 오늘 기준(어제 마감 과제)
type HomeworkReminderRequest struct {
	Date       string `json:"date"        binding:"omitempty,datetime=2006-01-02"`
	SenderType string `json:"sender_type" binding:"omitempty,oneof=main sub personal"`
}
