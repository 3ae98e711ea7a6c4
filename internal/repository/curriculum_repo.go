package repository

import (
	"context"

	"gorm.io/gorm"

	"github.com/otee21c/learning-system-sub000/internal/model"
)

// CurriculumRepository 진도 조회
type CurriculumRepository interface {
	FindByPeriod(ctx context.Context, p model.Period) ([]model.CurriculumAssignment, error)
	FindByPeriods(ctx context.Context, periods []model.Period) ([]model.CurriculumAssignment, error)
}

type curriculumRepo struct {
	db *gorm.DB
}

// NewCurriculumRepo 생성
func NewCurriculumRepo(db *gorm.DB) CurriculumRepository {
	return &curriculumRepo{db: db}
}

func (r *curriculumRepo) FindByPeriod(ctx context.Context, p model.Period) ([]model.CurriculumAssignment, error) {
	var list []model.CurriculumAssignment
	err := r.db.WithContext(ctx).
		Where("month = ? AND week = ?", p.Month, p.Week).
		Order("created_at ASC").
		Find(&list).Error
	return list, err
}

func (r *curriculumRepo) FindByPeriods(ctx context.Context, periods []model.Period) ([]model.CurriculumAssignment, error) {
	var list []model.CurriculumAssignment
	if len(periods) == 0 {
		return list, nil
	}
	err := r.db.WithContext(ctx).
		Where("(month, week) IN ?", periodTuples(periods)).
		Order("created_at ASC").
		Find(&list).Error
	return list, err
}
