package model

import (
	"gorm.io/datatypes"
	"gorm.io/gorm"
)

// Student 학생 (students)
// 학생 정보는 외부 관리 화면이 소유하며 이 서비스는 읽기만 한다
type Student struct {
	StudentID   string                          `gorm:"type:uuid;primaryKey;default:gen_random_uuid()" json:"student_id"`
	Name        string                          `gorm:"type:varchar(50);not null"                      json:"name"`
	Grade       string                          `gorm:"type:varchar(20);not null;default:''"           json:"grade"`
	School      string                          `gorm:"type:varchar(100);not null;default:''"          json:"school"`
	Phone       string                          `gorm:"type:varchar(20);not null;default:''"           json:"phone"`
	ParentPhone string                          `gorm:"type:varchar(20);not null;default:''"           json:"parent_phone"`
	Branch      string                          `gorm:"type:varchar(50);not null;default:''"           json:"branch"`
	Exams       datatypes.JSONSlice[ExamRecord] `gorm:"type:jsonb;not null;default:'[]'"               json:"exams"`
	BaseModel
	DeletedAt gorm.DeletedAt `gorm:"index" json:"-"`
}

// TableName 테이블 이름
func (Student) TableName() string { return "students" }
