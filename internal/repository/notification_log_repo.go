package repository

import (
	"context"

	"gorm.io/gorm"

	"github.com/otee21c/learning-system-sub000/internal/model"
)

// NotificationLogFilter 발송 기록 조회 조건
type NotificationLogFilter struct {
	StudentID string
	RunID     string
	Kind      model.NotificationKind
	Month     int
	Week      int
	IsBatch   *bool
	Offset    int
	Limit     int
}

// NotificationLogRepository 발송 기록
// 기록은 추가만 하며 읽음 표시 외에는 수정하지 않는다
type NotificationLogRepository interface {
	Create(ctx context.Context, log *model.NotificationLog) error
	GetByID(ctx context.Context, id string) (*model.NotificationLog, error)
	List(ctx context.Context, filter NotificationLogFilter) ([]model.NotificationLog, int64, error)
	MarkRead(ctx context.Context, id string) error
}

type notificationLogRepo struct {
	db *gorm.DB
}

// NewNotificationLogRepo 생성
func NewNotificationLogRepo(db *gorm.DB) NotificationLogRepository {
	return &notificationLogRepo{db: db}
}

func (r *notificationLogRepo) Create(ctx context.Context, log *model.NotificationLog) error {
	return r.db.WithContext(ctx).Create(log).Error
}

func (r *notificationLogRepo) GetByID(ctx context.Context, id string) (*model.NotificationLog, error) {
	var log model.NotificationLog
	if err := r.db.WithContext(ctx).Where("log_id = ?", id).First(&log).Error; err != nil {
		return nil, err
	}
	return &log, nil
}

func (r *notificationLogRepo) List(ctx context.Context, filter NotificationLogFilter) ([]model.NotificationLog, int64, error) {
	var (
		logs  []model.NotificationLog
		total int64
	)

	db := r.db.WithContext(ctx).Model(&model.NotificationLog{})
	if filter.StudentID != "" {
		db = db.Where("student_id = ?", filter.StudentID)
	}
	if filter.RunID != "" {
		db = db.Where("run_id = ?", filter.RunID)
	}
	if filter.Kind != "" {
		db = db.Where("kind = ?", filter.Kind)
	}
	if filter.Month > 0 {
		db = db.Where("month = ?", filter.Month)
	}
	if filter.Week > 0 {
		db = db.Where("week = ?", filter.Week)
	}
	if filter.IsBatch != nil {
		db = db.Where("is_batch = ?", *filter.IsBatch)
	}

	if err := db.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	db = db.Order("created_at DESC")
	if filter.Limit > 0 {
		db = db.Offset(filter.Offset).Limit(filter.Limit)
	}
	if err := db.Find(&logs).Error; err != nil {
		return nil, 0, err
	}
	return logs, total, nil
}

func (r *notificationLogRepo) MarkRead(ctx context.Context, id string) error {
	result := r.db.WithContext(ctx).
		Model(&model.NotificationLog{}).
		Where("log_id = ?", id).
		Update("is_read", true)
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}
	return nil
}
