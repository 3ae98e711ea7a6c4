package repository

import (
	"gorm.io/gorm"

	"github.com/otee21c/learning-system-sub000/internal/model"
)

// Repository 모든 저장소 묶음
type Repository struct {
	Student         StudentRepository
	Attendance      AttendanceRepository
	Curriculum      CurriculumRepository
	Homework        HomeworkRepository
	Memo            MemoRepository
	NotificationLog NotificationLogRepository
	Schedule        ScheduleRepository
}

// NewRepository 저장소 묶음 생성
func NewRepository(db *gorm.DB) *Repository {
	return &Repository{
		Student:         NewStudentRepo(db),
		Attendance:      NewAttendanceRepo(db),
		Curriculum:      NewCurriculumRepo(db),
		Homework:        NewHomeworkRepo(db),
		Memo:            NewMemoRepo(db),
		NotificationLog: NewNotificationLogRepo(db),
		Schedule:        NewScheduleRepo(db),
	}
}

// periodTuples (month, week) IN ? 조건에 넣을 값
func periodTuples(periods []model.Period) [][]interface{} {
	out := make([][]interface{}, 0, len(periods))
	for _, p := range periods {
		out = append(out, []interface{}{p.Month, p.Week})
	}
	return out
}
