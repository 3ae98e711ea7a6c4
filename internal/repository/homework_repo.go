package repository

import (
	"context"

	"gorm.io/gorm"

	"github.com/otee21c/learning-system-sub000/internal/model"
)

// HomeworkRepository 과제와 제출 조회
type HomeworkRepository interface {
	FindAssignmentsByPeriod(ctx context.Context, p model.Period) ([]model.HomeworkAssignment, error)
	FindAssignmentsDueOn(ctx context.Context, dueDate string, status model.HomeworkStatus) ([]model.HomeworkAssignment, error)
	FindSubmissionsByStudentAndPeriod(ctx context.Context, studentID string, p model.Period) ([]model.HomeworkSubmission, error)
	FindSubmissionsForAssignment(ctx context.Context, a *model.HomeworkAssignment) ([]model.HomeworkSubmission, error)
}

type homeworkRepo struct {
	db *gorm.DB
}

// NewHomeworkRepo 생성
func NewHomeworkRepo(db *gorm.DB) HomeworkRepository {
	return &homeworkRepo{db: db}
}

func (r *homeworkRepo) FindAssignmentsByPeriod(ctx context.Context, p model.Period) ([]model.HomeworkAssignment, error) {
	var list []model.HomeworkAssignment
	err := r.db.WithContext(ctx).
		Where("month = ? AND week = ?", p.Month, p.Week).
		Order("due_date ASC, created_at ASC").
		Find(&list).Error
	return list, err
}

func (r *homeworkRepo) FindAssignmentsDueOn(ctx context.Context, dueDate string, status model.HomeworkStatus) ([]model.HomeworkAssignment, error) {
	var list []model.HomeworkAssignment
	err := r.db.WithContext(ctx).
		Where("due_date = ? AND status = ?", dueDate, status).
		Order("created_at ASC").
		Find(&list).Error
	return list, err
}

func (r *homeworkRepo) FindSubmissionsByStudentAndPeriod(ctx context.Context, studentID string, p model.Period) ([]model.HomeworkSubmission, error) {
	var list []model.HomeworkSubmission
	err := r.db.WithContext(ctx).
		Where("student_id = ? AND month = ? AND week = ?", studentID, p.Month, p.Week).
		Find(&list).Error
	return list, err
}

// FindSubmissionsForAssignment 과제 ID 또는 과제 코드+기간이 같은 제출
func (r *homeworkRepo) FindSubmissionsForAssignment(ctx context.Context, a *model.HomeworkAssignment) ([]model.HomeworkSubmission, error) {
	var list []model.HomeworkSubmission
	db := r.db.WithContext(ctx)
	if a.TaskCode != "" {
		db = db.Where("assignment_id = ? OR (task_code = ? AND month = ? AND week = ?)",
			a.AssignmentID, a.TaskCode, a.Month, a.Week)
	} else {
		db = db.Where("assignment_id = ?", a.AssignmentID)
	}
	err := db.Find(&list).Error
	return list, err
}
