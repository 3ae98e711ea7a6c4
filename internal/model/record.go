package model

import (
	"slices"

	"github.com/lib/pq"
)

// ── 출결 ──

// AttendanceStatus 출결 상태
type AttendanceStatus string

const (
	AttendancePresent    AttendanceStatus = "출석"
	AttendanceLate       AttendanceStatus = "지각"
	AttendanceAbsent     AttendanceStatus = "결석"
	AttendanceEarlyLeave AttendanceStatus = "조퇴"
	AttendanceUnset      AttendanceStatus = ""
)

// CountsAsPresent 출석률 분자에 포함되는 상태인지 (출석, 지각)
func (s AttendanceStatus) CountsAsPresent() bool {
	return s == AttendancePresent || s == AttendanceLate
}

// Attendance 출결 기록 (attendances)
type Attendance struct {
	AttendanceID string           `gorm:"type:uuid;primaryKey;default:gen_random_uuid()" json:"attendance_id"`
	StudentID    string           `gorm:"type:uuid;not null;index"                       json:"student_id"`
	Date         string           `gorm:"type:varchar(10);not null;default:''"           json:"date"`
	Month        int              `gorm:"type:smallint;not null"                         json:"month"`
	Week         int              `gorm:"type:smallint;not null"                         json:"week"`
	Status       AttendanceStatus `gorm:"type:varchar(10);not null;default:''"           json:"status"`
	BaseModel
}

// TableName 테이블 이름
func (Attendance) TableName() string { return "attendances" }

// Period 기록의 기간
func (a Attendance) Period() Period { return Period{Month: a.Month, Week: a.Week} }

// ── 진도 ──

// CurriculumAssignment 주차별 진도 (curriculums)
// StudentIDs 가 비어 있으면 전체 학생 대상이다
type CurriculumAssignment struct {
	CurriculumID string         `gorm:"type:uuid;primaryKey;default:gen_random_uuid()" json:"curriculum_id"`
	Month        int            `gorm:"type:smallint;not null"                         json:"month"`
	Week         int            `gorm:"type:smallint;not null"                         json:"week"`
	Title        string         `gorm:"type:varchar(200);not null"                     json:"title"`
	Topics       pq.StringArray `gorm:"type:text[];not null;default:'{}'"              json:"topics"`
	StudentIDs   pq.StringArray `gorm:"type:text[];not null;default:'{}'"              json:"student_ids"`
	BaseModel
}

// TableName 테이블 이름
func (CurriculumAssignment) TableName() string { return "curriculums" }

// Period 진도의 기간
func (c CurriculumAssignment) Period() Period { return Period{Month: c.Month, Week: c.Week} }

// Covers 학생이 진도 대상인지
func (c CurriculumAssignment) Covers(studentID string) bool {
	return len(c.StudentIDs) == 0 || slices.Contains(c.StudentIDs, studentID)
}

// ── 과제 ──

// HomeworkStatus 과제 상태
type HomeworkStatus string

const (
	HomeworkActive HomeworkStatus = "active"
	HomeworkClosed HomeworkStatus = "closed"
)

// HomeworkAssignment 과제 (homework_assignments)
type HomeworkAssignment struct {
	AssignmentID  string         `gorm:"type:uuid;primaryKey;default:gen_random_uuid()" json:"assignment_id"`
	Title         string         `gorm:"type:varchar(200);not null"                     json:"title"`
	TaskCode      string         `gorm:"type:varchar(50);not null;default:''"           json:"task_code"`
	DueDate       string         `gorm:"type:varchar(10);not null;default:''"           json:"due_date"`
	Month         int            `gorm:"type:smallint;not null"                         json:"month"`
	Week          int            `gorm:"type:smallint;not null"                         json:"week"`
	Branch        string         `gorm:"type:varchar(50);not null;default:''"           json:"branch"`
	StudentIDs    pq.StringArray `gorm:"type:text[];not null;default:'{}'"              json:"student_ids"`
	SendToStudent bool           `gorm:"not null"                                       json:"send_to_student"`
	SendToParent  bool           `gorm:"not null"                                       json:"send_to_parent"`
	Status        HomeworkStatus `gorm:"type:varchar(10);not null;default:'active'"     json:"status"`
	BaseModel
}

// TableName 테이블 이름
func (HomeworkAssignment) TableName() string { return "homework_assignments" }

// Period 과제의 기간
func (h HomeworkAssignment) Period() Period { return Period{Month: h.Month, Week: h.Week} }

// Covers 학생이 과제 대상인지. 지점이 지정된 과제는 같은 지점 학생만 대상이다.
func (h HomeworkAssignment) Covers(s *Student) bool {
	if h.Branch != "" && s.Branch != h.Branch {
		return false
	}
	return len(h.StudentIDs) == 0 || slices.Contains(h.StudentIDs, s.StudentID)
}

// ManualStatus 수기 확인 상태
type ManualStatus string

const (
	ManualStatusNone      ManualStatus = ""
	ManualStatusPending   ManualStatus = "pending"
	ManualStatusConfirmed ManualStatus = "confirmed"
)

// HomeworkSubmission 과제 제출 (homework_submissions)
type HomeworkSubmission struct {
	SubmissionID   string         `gorm:"type:uuid;primaryKey;default:gen_random_uuid()" json:"submission_id"`
	StudentID      string         `gorm:"type:uuid;not null;index"                       json:"student_id"`
	AssignmentID   *string        `gorm:"type:uuid"                                      json:"assignment_id,omitempty"`
	TaskCode       string         `gorm:"type:varchar(50);not null;default:''"           json:"task_code"`
	Month          int            `gorm:"type:smallint;not null"                         json:"month"`
	Week           int            `gorm:"type:smallint;not null"                         json:"week"`
	Submitted      bool           `gorm:"not null;default:false"                         json:"submitted"`
	ManualStatus   ManualStatus   `gorm:"type:varchar(10);not null;default:''"           json:"manual_status"`
	AttachmentURLs pq.StringArray `gorm:"type:text[];not null;default:'{}'"              json:"attachment_urls"`
	BaseModel
}

// TableName 테이블 이름
func (HomeworkSubmission) TableName() string { return "homework_submissions" }

// Done 제출 완료로 보는지: 제출 플래그 또는 수기 확인 완료
func (s HomeworkSubmission) Done() bool {
	return s.Submitted || s.ManualStatus == ManualStatusConfirmed
}

// Matches 제출이 과제에 해당하는지
// 과제 ID 가 같거나, 과제 코드와 기간이 모두 같으면 같은 과제로 본다
func (s HomeworkSubmission) Matches(a *HomeworkAssignment) bool {
	if s.AssignmentID != nil && *s.AssignmentID == a.AssignmentID {
		return true
	}
	return a.TaskCode != "" && s.TaskCode == a.TaskCode &&
		s.Month == a.Month && s.Week == a.Week
}

// ── 메모 ──

// StudentMemo 학생 주차별 메모 (student_memos)
type StudentMemo struct {
	MemoID    string `gorm:"type:uuid;primaryKey;default:gen_random_uuid()" json:"memo_id"`
	StudentID string `gorm:"type:uuid;not null;index"                       json:"student_id"`
	Month     int    `gorm:"type:smallint;not null"                         json:"month"`
	Week      int    `gorm:"type:smallint;not null"                         json:"week"`
	Content   string `gorm:"type:text;not null;default:''"                  json:"content"`
	BaseModel
}

// TableName 테이블 이름
func (StudentMemo) TableName() string { return "student_memos" }
