package model

import "time"

// ContentFlags 알림장에 포함할 항목
type ContentFlags struct {
	Curriculum bool `gorm:"not null;default:false" json:"curriculum"`
	Attendance bool `gorm:"not null;default:false" json:"attendance"`
	Exam       bool `gorm:"not null;default:false" json:"exam"`
	Homework   bool `gorm:"not null;default:false" json:"homework"`
	Memo       bool `gorm:"not null;default:false" json:"memo"`
}

// Any 하나라도 선택되었는지
func (f ContentFlags) Any() bool {
	return f.Curriculum || f.Attendance || f.Exam || f.Homework || f.Memo
}

// RecipientTarget 수신 대상 선택
type RecipientTarget string

const (
	TargetStudent RecipientTarget = "student"
	TargetParent  RecipientTarget = "parent"
	TargetBoth    RecipientTarget = "both"
)

// RecipientRole 수신자 역할
type RecipientRole string

const (
	RoleStudent RecipientRole = "student"
	RoleParent  RecipientRole = "parent"
)

// Channel 발송 채널
type Channel string

const (
	ChannelSMS Channel = "sms"
	ChannelMMS Channel = "mms"
)

// SenderType 사전 등록된 발신번호 구분
type SenderType string

const (
	SenderMain     SenderType = "main"
	SenderSub      SenderType = "sub"
	SenderPersonal SenderType = "personal"
)

// ExamScope 시험 항목 범위
type ExamScope string

const (
	ExamScopeRecent ExamScope = "recent" // 가장 최근 시험 1건
	ExamScopePeriod ExamScope = "period" // 대상 기간의 시험 전체
)

// MessageStatus 메시지 발송 상태. pending 에서 sent/failed 로 한 번만 바뀐다.
type MessageStatus string

const (
	MessagePending MessageStatus = "pending"
	MessageSent    MessageStatus = "sent"
	MessageFailed  MessageStatus = "failed"
)

// NotificationKind 발송 종류
type NotificationKind string

const (
	KindNotice   NotificationKind = "notice"   // 알림장
	KindReport   NotificationKind = "report"   // 진단 리포트
	KindReminder NotificationKind = "reminder" // 과제 미제출 알림
	KindAbsence  NotificationKind = "absence"  // 결석 안내
	KindDirect   NotificationKind = "direct"   // 개별 문자
)

// NotificationLog 발송 기록 (notification_logs)
// 메시지마다 한 건만 기록되며 이후에는 is_read 만 바뀐다
type NotificationLog struct {
	LogID           string           `gorm:"type:uuid;primaryKey;default:gen_random_uuid()" json:"log_id"`
	RunID           *string          `gorm:"type:uuid;index"                                json:"run_id,omitempty"`
	Kind            NotificationKind `gorm:"type:varchar(20);not null;default:'notice'"     json:"kind"`
	StudentID       *string          `gorm:"type:uuid"                                      json:"student_id,omitempty"`
	StudentName     string           `gorm:"type:varchar(50);not null;default:''"           json:"student_name"`
	Content         string           `gorm:"type:text;not null"                             json:"content"`
	Include         ContentFlags     `gorm:"embedded;embeddedPrefix:include_"               json:"include"`
	Month           int              `gorm:"type:smallint;not null;default:0"               json:"month"`
	Week            int              `gorm:"type:smallint;not null;default:0"               json:"week"`
	Channel         Channel          `gorm:"type:varchar(10);not null;default:'sms'"        json:"channel"`
	RecipientTarget RecipientTarget  `gorm:"type:varchar(10);not null;default:''"           json:"recipient_target"`
	RecipientCount  int              `gorm:"not null;default:0"                             json:"recipient_count"`
	SuccessCount    int              `gorm:"not null;default:0"                             json:"success_count"`
	FailureCount    int              `gorm:"not null;default:0"                             json:"failure_count"`
	Status          MessageStatus    `gorm:"type:varchar(10);not null"                      json:"status"`
	IsRead          bool             `gorm:"not null;default:false"                         json:"is_read"`
	IsBatch         bool             `gorm:"not null;default:false"                         json:"is_batch"`
	CreatedAt       time.Time        `gorm:"not null;default:CURRENT_TIMESTAMP"             json:"created_at"`
}

// TableName 테이블 이름
func (NotificationLog) TableName() string { return "notification_logs" }
