package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.uber.org/zap"
	"gorm.io/gorm"

	"github.com/otee21c/learning-system-sub000/internal/dto"
	"github.com/otee21c/learning-system-sub000/internal/model"
	"github.com/otee21c/learning-system-sub000/internal/repository"
	pkgerrors "github.com/otee21c/learning-system-sub000/pkg/errors"
)

// ── 예약 발송 업무 오류 ──

var (
	ErrScheduleNotFound = errors.New("예약 발송 설정을 찾을 수 없습니다")
	ErrScheduleInvalid  = errors.New("예약 발송 설정이 올바르지 않습니다")
	ErrScheduleConflict = errors.New("다른 사용자가 먼저 수정했습니다. 새로고침 후 다시 시도하세요")
)

// ScheduleService 예약 발송 설정 관리
// 설정을 저장하고 실행 설정으로 바꿀 뿐이며, 저장이나 적용만으로는 발송하지 않는다
type ScheduleService interface {
	Create(ctx context.Context, req *dto.CreateScheduleRequest, callerID string) (*dto.ScheduleResponse, error)
	GetByID(ctx context.Context, id string) (*dto.ScheduleResponse, error)
	List(ctx context.Context, req *dto.ScheduleListRequest) ([]dto.ScheduleResponse, error)
	Update(ctx context.Context, id string, req *dto.UpdateScheduleRequest, callerID string) (*dto.ScheduleResponse, error)
	Delete(ctx context.Context, id string, callerID string) error
	// RunConfig 예약을 주어진 기간의 실행 설정으로 바꾼다
	RunConfig(ctx context.Context, id string, period model.Period) (*dto.RunConfigResponse, error)
	// RunNow 예약 설정으로 즉시 백그라운드 발송을 시작한다
	RunNow(ctx context.Context, id string, now time.Time) (*dto.RunStartedResponse, error)
	// DueAt now 의 요일과 시각(HH:MM)에 해당하는 활성 예약
	DueAt(ctx context.Context, now time.Time) ([]model.NotificationSchedule, error)
}

type scheduleService struct {
	repo          *repository.Repository
	notifications NotificationService
	logger        *zap.Logger
}

// NewScheduleService 생성
func NewScheduleService(repo *repository.Repository, notifications NotificationService, logger *zap.Logger) ScheduleService {
	return &scheduleService{repo: repo, notifications: notifications, logger: logger}
}

// scheduleRules 저장 전 검증
type scheduleRules struct {
	Name            string `validate:"required,max=100"`
	DayOfWeek       int    `validate:"min=0,max=6"`
	SendTime        string `validate:"required,hhmm"`
	ExamScope       string `validate:"oneof=recent period"`
	RecipientTarget string `validate:"oneof=student parent both"`
	Channel         string `validate:"oneof=sms mms"`
	SenderType      string `validate:"oneof=main sub personal"`
}

func validateSchedule(s *model.NotificationSchedule) error {
	err := validate.Struct(scheduleRules{
		Name:            s.Name,
		DayOfWeek:       s.DayOfWeek,
		SendTime:        s.SendTime,
		ExamScope:       string(s.ExamScope),
		RecipientTarget: string(s.RecipientTarget),
		Channel:         string(s.Channel),
		SenderType:      string(s.SenderType),
	})
	if err != nil {
		return fmt.Errorf("%w: %s", ErrScheduleInvalid, describeValidation(err))
	}
	return nil
}

// ────────────────────── Create ──────────────────────

func (s *scheduleService) Create(ctx context.Context, req *dto.CreateScheduleRequest, callerID string) (*dto.ScheduleResponse, error) {
	schedule := &model.NotificationSchedule{
		Name:               req.Name,
		DayOfWeek:          req.DayOfWeek,
		SendTime:           req.SendTime,
		TargetGrade:        req.TargetGrade,
		ExcludedStudentIDs: req.ExcludedStudentIDs,
		Include:            toContentFlags(req.Include),
		ExamScope:          model.ExamScope(orDefault(req.ExamScope, string(model.ExamScopeRecent))),
		RecipientTarget:    model.RecipientTarget(req.RecipientTarget),
		Channel:            model.Channel(orDefault(req.Channel, string(model.ChannelSMS))),
		SenderType:         model.SenderType(orDefault(req.SenderType, string(model.SenderPersonal))),
		AdditionalText:     req.AdditionalText,
		IsActive:           true,
	}
	if schedule.ExcludedStudentIDs == nil {
		schedule.ExcludedStudentIDs = []string{}
	}
	if req.IsActive != nil {
		schedule.IsActive = *req.IsActive
	}
	schedule.CreatedBy = &callerID
	schedule.UpdatedBy = &callerID
	schedule.Version = 1

	if err := validateSchedule(schedule); err != nil {
		return nil, err
	}
	if err := s.repo.Schedule.Create(ctx, schedule); err != nil {
		s.logger.Error("예약 발송 생성 실패", zap.Error(err))
		return nil, err
	}
	return toScheduleResponse(schedule), nil
}

// ────────────────────── Query ──────────────────────

func (s *scheduleService) GetByID(ctx context.Context, id string) (*dto.ScheduleResponse, error) {
	schedule, err := s.get(ctx, id)
	if err != nil {
		return nil, err
	}
	return toScheduleResponse(schedule), nil
}

func (s *scheduleService) List(ctx context.Context, req *dto.ScheduleListRequest) ([]dto.ScheduleResponse, error) {
	list, err := s.repo.Schedule.List(ctx, req.ActiveOnly)
	if err != nil {
		s.logger.Error("예약 발송 목록 조회 실패", zap.Error(err))
		return nil, err
	}
	out := make([]dto.ScheduleResponse, 0, len(list))
	for i := range list {
		out = append(out, *toScheduleResponse(&list[i]))
	}
	return out, nil
}

func (s *scheduleService) get(ctx context.Context, id string) (*model.NotificationSchedule, error) {
	schedule, err := s.repo.Schedule.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrScheduleNotFound
		}
		s.logger.Error("예약 발송 조회 실패", zap.String("id", id), zap.Error(err))
		return nil, err
	}
	return schedule, nil
}

// ────────────────────── Update ──────────────────────

func (s *scheduleService) Update(ctx context.Context, id string, req *dto.UpdateScheduleRequest, callerID string) (*dto.ScheduleResponse, error) {
	schedule, err := s.get(ctx, id)
	if err != nil {
		return nil, err
	}
	if schedule.Version != req.Version {
		return nil, ErrScheduleConflict
	}

	if req.Name != nil {
		schedule.Name = *req.Name
	}
	if req.DayOfWeek != nil {
		schedule.DayOfWeek = *req.DayOfWeek
	}
	if req.SendTime != nil {
		schedule.SendTime = *req.SendTime
	}
	if req.TargetGrade != nil {
		schedule.TargetGrade = *req.TargetGrade
	}
	if req.ExcludedStudentIDs != nil {
		schedule.ExcludedStudentIDs = req.ExcludedStudentIDs
	}
	if req.Include != nil {
		schedule.Include = toContentFlags(*req.Include)
	}
	if req.ExamScope != nil {
		schedule.ExamScope = model.ExamScope(*req.ExamScope)
	}
	if req.RecipientTarget != nil {
		schedule.RecipientTarget = model.RecipientTarget(*req.RecipientTarget)
	}
	if req.Channel != nil {
		schedule.Channel = model.Channel(*req.Channel)
	}
	if req.SenderType != nil {
		schedule.SenderType = model.SenderType(*req.SenderType)
	}
	if req.AdditionalText != nil {
		schedule.AdditionalText = *req.AdditionalText
	}
	if req.IsActive != nil {
		schedule.IsActive = *req.IsActive
	}
	schedule.UpdatedBy = &callerID

	if err := validateSchedule(schedule); err != nil {
		return nil, err
	}
	if err := s.repo.Schedule.Update(ctx, schedule); err != nil {
		if errors.Is(err, pkgerrors.ErrOptimisticLock) {
			return nil, ErrScheduleConflict
		}
		s.logger.Error("예약 발송 수정 실패", zap.String("id", id), zap.Error(err))
		return nil, err
	}
	return toScheduleResponse(schedule), nil
}

// ────────────────────── Delete ──────────────────────

func (s *scheduleService) Delete(ctx context.Context, id string, callerID string) error {
	if _, err := s.get(ctx, id); err != nil {
		return err
	}
	if err := s.repo.Schedule.Delete(ctx, id, callerID); err != nil {
		s.logger.Error("예약 발송 삭제 실패", zap.String("id", id), zap.Error(err))
		return err
	}
	return nil
}

// ────────────────────── Apply ──────────────────────

func (s *scheduleService) RunConfig(ctx context.Context, id string, period model.Period) (*dto.RunConfigResponse, error) {
	schedule, err := s.get(ctx, id)
	if err != nil {
		return nil, err
	}
	cfg := ApplyToRunConfig(schedule, period)
	return &dto.RunConfigResponse{
		Period:             dto.PeriodDTO{Month: cfg.Period.Month, Week: cfg.Period.Week},
		TargetGrade:        cfg.TargetGrade,
		ExcludedStudentIDs: cfg.ExcludedStudentIDs,
		Include:            toContentFlagsDTO(cfg.Include),
		ExamScope:          string(cfg.ExamScope),
		RecipientTarget:    string(cfg.RecipientTarget),
		Channel:            string(cfg.Channel),
		SenderType:         string(cfg.SenderType),
		AdditionalText:     cfg.AdditionalText,
	}, nil
}

func (s *scheduleService) RunNow(ctx context.Context, id string, now time.Time) (*dto.RunStartedResponse, error) {
	schedule, err := s.get(ctx, id)
	if err != nil {
		return nil, err
	}
	return s.notifications.StartRun(ctx, ApplyToRunConfig(schedule, model.PeriodOf(now)))
}

func (s *scheduleService) DueAt(ctx context.Context, now time.Time) ([]model.NotificationSchedule, error) {
	list, err := s.repo.Schedule.ListActiveByDay(ctx, int(now.Weekday()))
	if err != nil {
		s.logger.Error("요일별 예약 조회 실패", zap.Error(err))
		return nil, err
	}
	hhmm := now.Format("15:04")
	due := list[:0]
	for _, sc := range list {
		if sc.SendTime == hhmm {
			due = append(due, sc)
		}
	}
	return due, nil
}

// ApplyToRunConfig 저장된 예약을 실행 설정으로 바꾼다. 부수 효과가 없다.
func ApplyToRunConfig(s *model.NotificationSchedule, period model.Period) RunConfig {
	return RunConfig{
		Period:             period,
		TargetGrade:        s.TargetGrade,
		ExcludedStudentIDs: append([]string(nil), s.ExcludedStudentIDs...),
		Include:            s.Include,
		ExamScope:          s.ExamScope,
		RecipientTarget:    s.RecipientTarget,
		Channel:            s.Channel,
		SenderType:         s.SenderType,
		AdditionalText:     s.AdditionalText,
	}.withDefaults()
}

func orDefault(v, def string) string {
	if v == "" {
		return def
	}
	return v
}

func toScheduleResponse(s *model.NotificationSchedule) *dto.ScheduleResponse {
	excluded := []string(s.ExcludedStudentIDs)
	if excluded == nil {
		excluded = []string{}
	}
	return &dto.ScheduleResponse{
		ID:                 s.ScheduleID,
		Name:               s.Name,
		DayOfWeek:          s.DayOfWeek,
		SendTime:           s.SendTime,
		TargetGrade:        s.TargetGrade,
		ExcludedStudentIDs: excluded,
		Include:            toContentFlagsDTO(s.Include),
		ExamScope:          string(s.ExamScope),
		RecipientTarget:    string(s.RecipientTarget),
		Channel:            string(s.Channel),
		SenderType:         string(s.SenderType),
		AdditionalText:     s.AdditionalText,
		IsActive:           s.IsActive,
		Version:            s.Version,
		CreatedAt:          s.CreatedAt.Format(time.RFC3339),
		UpdatedAt:          s.UpdatedAt.Format(time.RFC3339),
	}
}
