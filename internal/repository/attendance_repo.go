package repository

import (
	"context"

	"gorm.io/gorm"

	"github.com/otee21c/learning-system-sub000/internal/model"
)

// AttendanceRepository 출결 조회
type AttendanceRepository interface {
	FindByStudentAndPeriod(ctx context.Context, studentID string, p model.Period) ([]model.Attendance, error)
	FindByStudentAndPeriods(ctx context.Context, studentID string, periods []model.Period) ([]model.Attendance, error)
}

type attendanceRepo struct {
	db *gorm.DB
}

// NewAttendanceRepo 생성
func NewAttendanceRepo(db *gorm.DB) AttendanceRepository {
	return &attendanceRepo{db: db}
}

func (r *attendanceRepo) FindByStudentAndPeriod(ctx context.Context, studentID string, p model.Period) ([]model.Attendance, error) {
	var records []model.Attendance
	err := r.db.WithContext(ctx).
		Where("student_id = ? AND month = ? AND week = ?", studentID, p.Month, p.Week).
		Order("date ASC, created_at ASC").
		Find(&records).Error
	return records, err
}

func (r *attendanceRepo) FindByStudentAndPeriods(ctx context.Context, studentID string, periods []model.Period) ([]model.Attendance, error) {
	var records []model.Attendance
	if len(periods) == 0 {
		return records, nil
	}
	err := r.db.WithContext(ctx).
		Where("student_id = ?", studentID).
		Where("(month, week) IN ?", periodTuples(periods)).
		Order("date ASC, created_at ASC").
		Find(&records).Error
	return records, err
}
