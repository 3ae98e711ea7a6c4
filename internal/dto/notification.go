package dto

// ── 알림장 DTO ──

// PreviewRequest 한 학생 알림장 미리보기
type PreviewRequest struct {
	StudentID       string          `json:"student_id"       binding:"required"`
	Period          PeriodDTO       `json:"period"           binding:"required"`
	Include         ContentFlagsDTO `json:"include"`
	ExamScope       string          `json:"exam_scope"       binding:"omitempty,oneof=recent period"`
	RecipientTarget string          `json:"recipient_target" binding:"omitempty,oneof=student parent both"`
	AdditionalText  string          `json:"additional_text"  binding:"max=2000"`
}

// PreviewResponse 미리보기 결과
type PreviewResponse struct {
	StudentID   string         `json:"student_id"`
	StudentName string         `json:"student_name"`
	Content     string         `json:"content"`
	Recipients  []RecipientDTO `json:"recipients"`
}

// BatchSendRequest 일괄 발송
// student_ids 와 target_grade 가 모두 비어 있으면 전체 학생이 대상이다
type BatchSendRequest struct {
	Period             PeriodDTO       `json:"period"               binding:"required"`
	StudentIDs         []string        `json:"student_ids"`
	TargetGrade        string          `json:"target_grade"         binding:"max=20"`
	ExcludedStudentIDs []string        `json:"excluded_student_ids"`
	Include            ContentFlagsDTO `json:"include"`
	ExamScope          string          `json:"exam_scope"           binding:"omitempty,oneof=recent period"`
	RecipientTarget    string          `json:"recipient_target"     binding:"required,oneof=student parent both"`
	Channel            string          `json:"channel"              binding:"omitempty,oneof=sms mms"`
	SenderType         string          `json:"sender_type"          binding:"omitempty,oneof=main sub personal"`
	AdditionalText     string          `json:"additional_text"      binding:"max=2000"`
	ImageBase64        string          `json:"image_base64"`
}

// RunStartedResponse 백그라운드 발송 시작
type RunStartedResponse struct {
	RunID string `json:"run_id"`
	Total int    `json:"total"`
}

// DirectSendRequest 개별 문자
type DirectSendRequest struct {
	Receivers   []string `json:"receivers"    binding:"required,min=1,max=20,dive,required,max=20"`
	Message     string   `json:"message"      binding:"required,max=2000"`
	SenderType  string   `json:"sender_type"  binding:"omitempty,oneof=main sub personal"`
	ImageBase64 string   `json:"image_base64"`
}

// AbsenceNoticeRequest 결석 안내
type AbsenceNoticeRequest struct {
	StudentID       string `json:"student_id"       binding:"required"`
	Date            string `json:"date"             binding:"required,datetime=2006-01-02"`
	RecipientTarget string `json:"recipient_target" binding:"omitempty,oneof=student parent both"`
	SenderType      string `json:"sender_type"      binding:"omitempty,oneof=main sub personal"`
}

// RecipientOutcomeResponse 수신자별 결과
type RecipientOutcomeResponse struct {
	Role  string `json:"role"`
	Phone string `json:"phone"`
	OK    bool   `json:"ok"`
	Error string `json:"error,omitempty"`
}

// MessageOutcomeResponse 메시지별 결과
type MessageOutcomeResponse struct {
	StudentID   string                     `json:"student_id,omitempty"`
	StudentName string                     `json:"student_name,omitempty"`
	Status      string                     `json:"status"`
	Recipients  []RecipientOutcomeResponse `json:"recipients"`
}

// DispatchSummaryResponse 발송 집계
type DispatchSummaryResponse struct {
	RunID            string                   `json:"run_id"`
	Total            int                      `json:"total"`
	Sent             int                      `json:"sent"`
	Failed           int                      `json:"failed"`
	RecipientSuccess int                      `json:"recipient_success"`
	RecipientFailure int                      `json:"recipient_failure"`
	Messages         []MessageOutcomeResponse `json:"messages"`
}

// ProgressResponse 발송 진행률
type ProgressResponse struct {
	RunID            string `json:"run_id"`
	Current          int    `json:"current"`
	Total            int    `json:"total"`
	Sent             int    `json:"sent"`
	Failed           int    `json:"failed"`
	RecipientSuccess int    `json:"recipient_success"`
	RecipientFailure int    `json:"recipient_failure"`
	Done             bool   `json:"done"`
	UpdatedAt        string `json:"updated_at"`
}

// NotificationLogListRequest 발송 기록 목록 조건
type NotificationLogListRequest struct {
	PaginationRequest
	StudentID string `form:"student_id"`
	RunID     string `form:"run_id"`
	Kind      string `form:"kind"     binding:"omitempty,oneof=notice report reminder absence direct"`
	Month     int    `form:"month"    binding:"omitempty,min=1,max=12"`
	Week      int    `form:"week"     binding:"omitempty,min=1,max=5"`
	IsBatch   *bool  `form:"is_batch"`
}

// NotificationLogResponse 발송 기록
type NotificationLogResponse struct {
	ID              string          `json:"id"`
	RunID           string          `json:"run_id,omitempty"`
	Kind            string          `json:"kind"`
	StudentID       string          `json:"student_id,omitempty"`
	StudentName     string          `json:"student_name"`
	Content         string          `json:"content"`
	Include         ContentFlagsDTO `json:"include"`
	Month           int             `json:"month"`
	Week            int             `json:"week"`
	Channel         string          `json:"channel"`
	RecipientTarget string          `json:"recipient_target"`
	RecipientCount  int             `json:"recipient_count"`
	SuccessCount    int             `json:"success_count"`
	FailureCount    int             `json:"failure_count"`
	Status          string          `json:"status"`
	IsRead          bool            `json:"is_read"`
	IsBatch         bool            `json:"is_batch"`
	CreatedAt       string          `json:"created_at"`
}
