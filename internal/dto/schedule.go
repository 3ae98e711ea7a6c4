package dto

// ── 예약 발송 DTO ──

// CreateScheduleRequest 예약 생성
type CreateScheduleRequest struct {
	Name               string          `json:"name"                 binding:"required,min=1,max=100"`
	DayOfWeek          int             `json:"day_of_week"          binding:"min=0,max=6"`
	SendTime           string          `json:"send_time"            binding:"required,datetime=15:04"`
	TargetGrade        string          `json:"target_grade"         binding:"max=20"`
	ExcludedStudentIDs []string        `json:"excluded_student_ids"`
	Include            ContentFlagsDTO `json:"include"`
	ExamScope          string          `json:"exam_scope"           binding:"omitempty,oneof=recent period"`
	RecipientTarget    string          `json:"recipient_target"     binding:"required,oneof=student parent both"`
	Channel            string          `json:"channel"              binding:"omitempty,oneof=sms mms"`
	SenderType         string          `json:"sender_type"          binding:"omitempty,oneof=main sub personal"`
	AdditionalText     string          `json:"additional_text"      binding:"max=2000"`
	IsActive           *bool           `json:"is_active"`
}

// UpdateScheduleRequest 예약 수정. version 은 낙관적 잠금용.
type UpdateScheduleRequest struct {
	Version            int              `json:"version"              binding:"required,min=1"`
	Name               *string          `json:"name"                 binding:"omitempty,min=1,max=100"`
	DayOfWeek          *int             `json:"day_of_week"          binding:"omitempty,min=0,max=6"`
	SendTime           *string          `json:"send_time"            binding:"omitempty,datetime=15:04"`
	TargetGrade        *string          `json:"target_grade"         binding:"omitempty,max=20"`
	ExcludedStudentIDs []string         `json:"excluded_student_ids"`
	Include            *ContentFlagsDTO `json:"include"`
	ExamScope          *string          `json:"exam_scope"           binding:"omitempty,oneof=recent period"`
	RecipientTarget    *string          `json:"recipient_target"     binding:"omitempty,oneof=student parent both"`
	Channel            *string          `json:"channel"              binding:"omitempty,oneof=sms mms"`
	SenderType         *string          `json:"sender_type"          binding:"omitempty,oneof=main sub personal"`
	AdditionalText     *string          `json:"additional_text"      binding:"omitempty,max=2000"`
	IsActive           *bool            `json:"is_active"`
}

// ScheduleListRequest 목록 조건
type ScheduleListRequest struct {
	ActiveOnly bool `form:"active_only"`
}

// RunConfigRequest 예약을 실행 설정으로 바꿀 기준 기간. 비우면 오늘 기준.
type RunConfigRequest struct {
	Month int `form:"month" binding:"omitempty,min=1,max=12"`
	Week  int `form:"week"  binding:"omitempty,min=1,max=5"`
}

// ScheduleResponse 예약 정보
type ScheduleResponse struct {
	ID                 string          `json:"id"`
	Name               string          `json:"name"`
	DayOfWeek          int             `json:"day_of_week"`
	SendTime           string          `json:"send_time"`
	TargetGrade        string          `json:"target_grade"`
	ExcludedStudentIDs []string        `json:"excluded_student_ids"`
	Include            ContentFlagsDTO `json:"include"`
	ExamScope          string          `json:"exam_scope"`
	RecipientTarget    string          `json:"recipient_target"`
	Channel            string          `json:"channel"`
	SenderType         string          `json:"sender_type"`
	AdditionalText     string          `json:"additional_text"`
	IsActive           bool            `json:"is_active"`
	Version            int             `json:"version"`
	CreatedAt          string          `json:"created_at"`
	UpdatedAt          string          `json:"updated_at"`
}

// RunConfigResponse 예약에서 만든 실행 설정
type RunConfigResponse struct {
	Period             PeriodDTO       `json:"period"`
	TargetGrade        string          `json:"target_grade"`
	ExcludedStudentIDs []string        `json:"excluded_student_ids"`
	Include            ContentFlagsDTO `json:"include"`
	ExamScope          string          `json:"exam_scope"`
	RecipientTarget    string          `json:"recipient_target"`
	Channel            string          `json:"channel"`
	SenderType         string          `json:"sender_type"`
	AdditionalText     string          `json:"additional_text"`
}
