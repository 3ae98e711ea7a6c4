package repository

import (
	"context"

	"gorm.io/gorm"

	"github.com/otee21c/learning-system-sub000/internal/model"
	pkgerrors "github.com/otee21c/learning-system-sub000/pkg/errors"
)

// ScheduleRepository 예약 발송 설정
type ScheduleRepository interface {
	Create(ctx context.Context, s *model.NotificationSchedule) error
	GetByID(ctx context.Context, id string) (*model.NotificationSchedule, error)
	List(ctx context.Context, activeOnly bool) ([]model.NotificationSchedule, error)
	ListActiveByDay(ctx context.Context, dayOfWeek int) ([]model.NotificationSchedule, error)
	Update(ctx context.Context, s *model.NotificationSchedule) error
	Delete(ctx context.Context, id string, deletedBy string) error
}

type scheduleRepo struct {
	db *gorm.DB
}

// NewScheduleRepo 생성
func NewScheduleRepo(db *gorm.DB) ScheduleRepository {
	return &scheduleRepo{db: db}
}

func (r *scheduleRepo) Create(ctx context.Context, s *model.NotificationSchedule) error {
	return r.db.WithContext(ctx).Create(s).Error
}

func (r *scheduleRepo) GetByID(ctx context.Context, id string) (*model.NotificationSchedule, error) {
	var s model.NotificationSchedule
	if err := r.db.WithContext(ctx).Where("schedule_id = ?", id).First(&s).Error; err != nil {
		return nil, err
	}
	return &s, nil
}

func (r *scheduleRepo) List(ctx context.Context, activeOnly bool) ([]model.NotificationSchedule, error) {
	var list []model.NotificationSchedule
	db := r.db.WithContext(ctx)
	if activeOnly {
		db = db.Where("is_active = ?", true)
	}
	err := db.Order("day_of_week ASC, send_time ASC, name ASC").Find(&list).Error
	return list, err
}

func (r *scheduleRepo) ListActiveByDay(ctx context.Context, dayOfWeek int) ([]model.NotificationSchedule, error) {
	var list []model.NotificationSchedule
	err := r.db.WithContext(ctx).
		Where("day_of_week = ? AND is_active = ?", dayOfWeek, true).
		Order("send_time ASC").
		Find(&list).Error
	return list, err
}

// Update version 이 일치할 때만 갱신한다
func (r *scheduleRepo) Update(ctx context.Context, s *model.NotificationSchedule) error {
	oldVersion := s.Version
	result := r.db.WithContext(ctx).
		Model(&model.NotificationSchedule{}).
		Where("schedule_id = ? AND version = ?", s.ScheduleID, oldVersion).
		Updates(map[string]interface{}{
			"name":                 s.Name,
			"day_of_week":          s.DayOfWeek,
			"send_time":            s.SendTime,
			"target_grade":         s.TargetGrade,
			"excluded_student_ids": s.ExcludedStudentIDs,
			"include_curriculum":   s.Include.Curriculum,
			"include_attendance":   s.Include.Attendance,
			"include_exam":         s.Include.Exam,
			"include_homework":     s.Include.Homework,
			"include_memo":         s.Include.Memo,
			"exam_scope":           s.ExamScope,
			"recipient_target":     s.RecipientTarget,
			"channel":              s.Channel,
			"sender_type":          s.SenderType,
			"additional_text":      s.AdditionalText,
			"is_active":            s.IsActive,
			"updated_by":           s.UpdatedBy,
			"updated_at":           gorm.Expr("NOW()"),
			"version":              oldVersion + 1,
		})
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return pkgerrors.ErrOptimisticLock
	}
	s.Version = oldVersion + 1
	return nil
}

func (r *scheduleRepo) Delete(ctx context.Context, id string, deletedBy string) error {
	return r.db.WithContext(ctx).
		Model(&model.NotificationSchedule{}).
		Where("schedule_id = ?", id).
		Updates(map[string]interface{}{
			"deleted_by": deletedBy,
			"deleted_at": gorm.Expr("NOW()"),
		}).Error
}
