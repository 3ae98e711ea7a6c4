package repository

import (
	"context"

	"github.com/lib/pq"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/otee21c/learning-system-sub000/internal/model"
)

// StudentFilter 학생 조회 조건. 빈 값은 조건 없음.
type StudentFilter struct {
	Grade  string
	Branch string
	IDs    []string
}

// StudentRepository 학생 조회
type StudentRepository interface {
	GetByID(ctx context.Context, id string) (*model.Student, error)
	List(ctx context.Context, filter StudentFilter) ([]model.Student, error)
}

type studentRepo struct {
	db *gorm.DB
}

// NewStudentRepo 생성
func NewStudentRepo(db *gorm.DB) StudentRepository {
	return &studentRepo{db: db}
}

func (r *studentRepo) GetByID(ctx context.Context, id string) (*model.Student, error) {
	var s model.Student
	if err := r.db.WithContext(ctx).Where("student_id = ?", id).First(&s).Error; err != nil {
		return nil, err
	}
	return &s, nil
}

// List 발송 순서대로 돌려준다. IDs 를 주면 그 순서, 아니면 이름순.
func (r *studentRepo) List(ctx context.Context, filter StudentFilter) ([]model.Student, error) {
	var students []model.Student
	db := r.db.WithContext(ctx)

	if filter.Grade != "" {
		db = db.Where("grade = ?", filter.Grade)
	}
	if filter.Branch != "" {
		db = db.Where("branch = ?", filter.Branch)
	}
	if len(filter.IDs) > 0 {
		db = db.Where("student_id IN ?", filter.IDs).Clauses(clause.OrderBy{
			Expression: clause.Expr{
				SQL:                "array_position(?::text[], student_id::text)",
				Vars:               []interface{}{pq.StringArray(filter.IDs)},
				WithoutParentheses: true,
			},
		})
	} else {
		db = db.Order("name ASC, student_id ASC")
	}

	err := db.Find(&students).Error
	return students, err
}
