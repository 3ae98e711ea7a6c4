package dto

// ── 진단 리포트 DTO ──

// ReportRangeRequest 리포트 기간
// monthly: month 의 1~5주차, custom: start~end
type ReportRangeRequest struct {
	Mode  string     `json:"mode"  binding:"required,oneof=monthly custom"`
	Month int        `json:"month" binding:"omitempty,min=1,max=12"`
	Start *PeriodDTO `json:"start"`
	End   *PeriodDTO `json:"end"`
}

// ReportPreviewRequest 한 학생 리포트
type ReportPreviewRequest struct {
	StudentID string             `json:"student_id" binding:"required"`
	Range     ReportRangeRequest `json:"range"      binding:"required"`
}

// ReportSendRequest 리포트 MMS 발송
type ReportSendRequest struct {
	StudentIDs      []string           `json:"student_ids"      binding:"required,min=1,max=200"`
	Range           ReportRangeRequest `json:"range"            binding:"required"`
	RecipientTarget string             `json:"recipient_target" binding:"required,oneof=student parent both"`
	SenderType      string             `json:"sender_type"      binding:"omitempty,oneof=main sub personal"`
}

// ReportWeekResponse 주차별 행
type ReportWeekResponse struct {
	Period     PeriodDTO `json:"period"`
	Label      string    `json:"label"`
	Curriculum string    `json:"curriculum,omitempty"`
	Exams      []string  `json:"exams"`
	Memo       string    `json:"memo,omitempty"`
}

// ReportResponse 리포트 데이터
type ReportResponse struct {
	StudentID   string               `json:"student_id"`
	StudentName string               `json:"student_name"`
	PeriodText  string               `json:"period_text"`
	Present     int                  `json:"present"`
	Total       int                  `json:"total"`
	Rate        int                  `json:"rate"`
	Weeks       []ReportWeekResponse `json:"weeks"`
}
