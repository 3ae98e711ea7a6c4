package service

import (
	"context"
	"fmt"
	"time"

	"go.uber.org/zap"

	"github.com/otee21c/learning-system-sub000/config"
	"github.com/otee21c/learning-system-sub000/internal/model"
	"github.com/otee21c/learning-system-sub000/internal/repository"
)

// HomeworkReminderService 과제 미제출 알림
type HomeworkReminderService interface {
	// RunForDate day 전날이 마감인 진행 중 과제의 미제출 학생에게 알린다
	RunForDate(ctx context.Context, day time.Time, sender model.SenderType) (*DispatchSummary, error)
}

type homeworkReminderService struct {
	repo    *repository.Repository
	runner  *Runner
	academy string
	logger  *zap.Logger
}

// NewHomeworkReminderService 생성
func NewHomeworkReminderService(cfg *config.Config, repo *repository.Repository, runner *Runner, logger *zap.Logger) HomeworkReminderService {
	return &homeworkReminderService{
		repo:    repo,
		runner:  runner,
		academy: cfg.Report.AcademyName,
		logger:  logger,
	}
}

// ReminderText 미제출 알림 문구
func ReminderText(academy, name, title string) string {
	return fmt.Sprintf("안녕하세요. %s입니다.\n%s 학생의 '%s' 과제가 아직 제출되지 않았습니다.\n확인 부탁드립니다.", academy, name, title)
}

// reminderTarget 과제의 발송 대상 설정. 둘 다 꺼져 있으면 false.
func reminderTarget(a *model.HomeworkAssignment) (model.RecipientTarget, bool) {
	switch {
	case a.SendToStudent && a.SendToParent:
		return model.TargetBoth, true
	case a.SendToStudent:
		return model.TargetStudent, true
	case a.SendToParent:
		return model.TargetParent, true
	}
	return "", false
}

func (s *homeworkReminderService) RunForDate(ctx context.Context, day time.Time, sender model.SenderType) (*DispatchSummary, error) {
	if sender == "" {
		sender = model.SenderPersonal
	}
	dueDate := day.AddDate(0, 0, -1).Format("2006-01-02")

	assignments, err := s.repo.Homework.FindAssignmentsDueOn(ctx, dueDate, model.HomeworkActive)
	if err != nil {
		s.logger.Error("마감 과제 조회 실패", zap.String("due_date", dueDate), zap.Error(err))
		return nil, err
	}

	var msgs []*PreparedMessage
	for i := range assignments {
		a := &assignments[i]
		target, ok := reminderTarget(a)
		if !ok {
			continue
		}
		pending, err := s.pendingStudents(ctx, a)
		if err != nil {
			return nil, err
		}
		for j := range pending {
			st := &pending[j]
			msgs = append(msgs, &PreparedMessage{
				StudentID:   st.StudentID,
				StudentName: st.Name,
				Content:     ReminderText(s.academy, st.Name, a.Title),
				Recipients:  ResolveRecipients(st, target),
				Period:      a.Period(),
			})
		}
	}

	s.logger.Info("과제 미제출 알림 대상",
		zap.String("due_date", dueDate),
		zap.Int("assignments", len(assignments)),
		zap.Int("messages", len(msgs)),
	)
	if len(msgs) == 0 {
		return &DispatchSummary{}, nil
	}

	// 과제마다 대상이 달라 기록의 recipient_target 은 비워 둔다
	return s.runner.RunSync(ctx, msgs, DispatchOptions{
		Kind:       model.KindReminder,
		Channel:    model.ChannelSMS,
		SenderType: sender,
		IsBatch:    true,
	}), nil
}

// pendingStudents 과제 대상 중 완료된 제출이 없는 학생
func (s *homeworkReminderService) pendingStudents(ctx context.Context, a *model.HomeworkAssignment) ([]model.Student, error) {
	students, err := s.repo.Student.List(ctx, repository.StudentFilter{
		Branch: a.Branch,
		IDs:    a.StudentIDs,
	})
	if err != nil {
		s.logger.Error("과제 대상 학생 조회 실패", zap.String("assignment_id", a.AssignmentID), zap.Error(err))
		return nil, err
	}
	submissions, err := s.repo.Homework.FindSubmissionsForAssignment(ctx, a)
	if err != nil {
		s.logger.Error("과제 제출 조회 실패", zap.String("assignment_id", a.AssignmentID), zap.Error(err))
		return nil, err
	}

	done := make(map[string]bool)
	for _, sub := range submissions {
		if sub.Matches(a) && sub.Done() {
			done[sub.StudentID] = true
		}
	}

	var out []model.Student
	for _, st := range students {
		if !a.Covers(&st) || done[st.StudentID] {
			continue
		}
		out = append(out, st)
	}
	return out, nil
}
