package model

import "github.com/lib/pq"

// NotificationSchedule 예약 발송 설정 (notification_schedules)
// 설정을 저장만 하며, 적용해도 발송이 일어나지 않는다
type NotificationSchedule struct {
	ScheduleID         string          `gorm:"type:uuid;primaryKey;default:gen_random_uuid()" json:"schedule_id"`
	Name               string          `gorm:"type:varchar(100);not null"                     json:"name"`
	DayOfWeek          int             `gorm:"type:smallint;not null"                         json:"day_of_week"` // 0=일요일
	SendTime           string          `gorm:"type:varchar(5);not null;default:''"            json:"send_time"`   // HH:MM
	TargetGrade        string          `gorm:"type:varchar(20);not null;default:''"           json:"target_grade"`
	ExcludedStudentIDs pq.StringArray  `gorm:"type:text[];not null;default:'{}'"              json:"excluded_student_ids"`
	Include            ContentFlags    `gorm:"embedded;embeddedPrefix:include_"               json:"include"`
	ExamScope          ExamScope       `gorm:"type:varchar(10);not null;default:'recent'"     json:"exam_scope"`
	RecipientTarget    RecipientTarget `gorm:"type:varchar(10);not null;default:'parent'"     json:"recipient_target"`
	Channel            Channel         `gorm:"type:varchar(10);not null;default:'sms'"        json:"channel"`
	SenderType         SenderType      `gorm:"type:varchar(10);not null;default:'personal'"   json:"sender_type"`
	AdditionalText     string          `gorm:"type:text;not null;default:''"                  json:"additional_text"`
	IsActive           bool            `gorm:"not null"                                       json:"is_active"`
	VersionedModel
}

// TableName 테이블 이름
func (NotificationSchedule) TableName() string { return "notification_schedules" }
