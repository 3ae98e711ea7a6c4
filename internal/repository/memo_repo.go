package repository

import (
	"context"

	"gorm.io/gorm"

	"github.com/otee21c/learning-system-sub000/internal/model"
)

// MemoRepository 학생 메모 조회
type MemoRepository interface {
	FindByStudentAndPeriod(ctx context.Context, studentID string, p model.Period) ([]model.StudentMemo, error)
	FindByStudentAndPeriods(ctx context.Context, studentID string, periods []model.Period) ([]model.StudentMemo, error)
}

type memoRepo struct {
	db *gorm.DB
}

// NewMemoRepo 생성
func NewMemoRepo(db *gorm.DB) MemoRepository {
	return &memoRepo{db: db}
}

func (r *memoRepo) FindByStudentAndPeriod(ctx context.Context, studentID string, p model.Period) ([]model.StudentMemo, error) {
	var list []model.StudentMemo
	err := r.db.WithContext(ctx).
		Where("student_id = ? AND month = ? AND week = ?", studentID, p.Month, p.Week).
		Order("updated_at DESC").
		Find(&list).Error
	return list, err
}

func (r *memoRepo) FindByStudentAndPeriods(ctx context.Context, studentID string, periods []model.Period) ([]model.StudentMemo, error) {
	var list []model.StudentMemo
	if len(periods) == 0 {
		return list, nil
	}
	err := r.db.WithContext(ctx).
		Where("student_id = ?", studentID).
		Where("(month, week) IN ?", periodTuples(periods)).
		Order("updated_at DESC").
		Find(&list).Error
	return list, err
}
