package dto

// ── 페이지 요청 ──

// PaginationRequest 공통 페이지 파라미터
type PaginationRequest struct {
	Page     int `form:"page"      binding:"omitempty,min=1"`
	PageSize int `form:"page_size" binding:"omitempty,min=1,max=100"`
}

// GetPage 기본값 1
func (p *PaginationRequest) GetPage() int {
	if p.Page <= 0 {
		return 1
	}
	return p.Page
}

// GetPageSize 기본값 20
func (p *PaginationRequest) GetPageSize() int {
	if p.PageSize <= 0 {
		return 20
	}
	return p.PageSize
}

// GetOffset 오프셋
func (p *PaginationRequest) GetOffset() int {
	return (p.GetPage() - 1) * p.GetPageSize()
}

// PeriodDTO 월/주차
type PeriodDTO struct {
	Month int `json:"month" form:"month" binding:"required,min=1,max=12"`
	Week  int `json:"week"  form:"week"  binding:"required,min=1,max=5"`
}

// ContentFlagsDTO 포함 항목
type ContentFlagsDTO struct {
	Curriculum bool `json:"curriculum"`
	Attendance bool `json:"attendance"`
	Exam       bool `json:"exam"`
	Homework   bool `json:"homework"`
	Memo       bool `json:"memo"`
}

// RecipientDTO 수신자
type RecipientDTO struct {
	Role  string `json:"role"`
	Phone string `json:"phone"`
}
