package model

import (
	"time"

	"gorm.io/gorm"
)

// BaseModel 생성/수정 시각
type BaseModel struct {
	CreatedAt time.Time `gorm:"not null;default:CURRENT_TIMESTAMP" json:"created_at"`
	UpdatedAt time.Time `gorm:"not null;default:CURRENT_TIMESTAMP" json:"updated_at"`
}

// AuditModel 작업자 기록이 필요한 모델
// 사용자 ID 는 외부 인증 시스템의 식별자를 그대로 저장한다
type AuditModel struct {
	BaseModel
	CreatedBy *string `gorm:"type:varchar(64)" json:"created_by,omitempty"`
	UpdatedBy *string `gorm:"type:varchar(64)" json:"updated_by,omitempty"`
}

// SoftDeleteModel 소프트 삭제 지원
type SoftDeleteModel struct {
	AuditModel
	DeletedAt gorm.DeletedAt `gorm:"index"            json:"deleted_at,omitempty"`
	DeletedBy *string        `gorm:"type:varchar(64)" json:"deleted_by,omitempty"`
}

// VersionedModel 낙관적 잠금을 쓰는 소프트 삭제 모델
type VersionedModel struct {
	SoftDeleteModel
	Version int `gorm:"not null;default:1" json:"version"`
}
