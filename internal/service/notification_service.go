package service

import (
	"context"
	"encoding/base64"
	"errors"
	"fmt"
	"strings"
	"time"

	"go.uber.org/zap"
	"gorm.io/gorm"

	"github.com/otee21c/learning-system-sub000/config"
	"github.com/otee21c/learning-system-sub000/internal/dto"
	"github.com/otee21c/learning-system-sub000/internal/model"
	"github.com/otee21c/learning-system-sub000/internal/repository"
	"github.com/otee21c/learning-system-sub000/pkg/reportimage"
)

// ── 알림장 업무 오류 ──

var (
	ErrNoRecipientsSelected = errors.New("발송 대상 학생이 없습니다")
	ErrNoContentSelected    = errors.New("포함할 항목이나 추가 문구를 하나 이상 선택해야 합니다")
	ErrInvalidRunConfig     = errors.New("발송 설정이 올바르지 않습니다")
	ErrStudentNotFound      = errors.New("학생을 찾을 수 없습니다")
	ErrLogNotFound          = errors.New("발송 기록을 찾을 수 없습니다")
	ErrMissingImage         = errors.New("이미지 문자에 사용할 이미지가 없습니다")
	ErrInvalidImage         = errors.New("이미지 데이터가 올바르지 않습니다")
	ErrInvalidDate          = errors.New("날짜 형식이 올바르지 않습니다 (YYYY-MM-DD)")
)

// NotificationService 알림장 작성과 발송
type NotificationService interface {
	// Preview 한 학생의 알림장을 보내지 않고 만든다
	Preview(ctx context.Context, req *dto.PreviewRequest) (*dto.PreviewResponse, error)
	// SendBatch 준비까지 마친 뒤 백그라운드에서 발송한다
	SendBatch(ctx context.Context, req *dto.BatchSendRequest) (*dto.RunStartedResponse, error)
	// StartRun 설정으로 백그라운드 발송을 시작한다
	StartRun(ctx context.Context, cfg RunConfig) (*dto.RunStartedResponse, error)
	// Run 설정으로 발송을 끝까지 진행한다
	Run(ctx context.Context, cfg RunConfig) (*DispatchSummary, error)
	GetProgress(ctx context.Context, runID string) (*dto.ProgressResponse, error)
	SendDirect(ctx context.Context, req *dto.DirectSendRequest) (*dto.MessageOutcomeResponse, error)
	NotifyAbsence(ctx context.Context, req *dto.AbsenceNoticeRequest) (*dto.MessageOutcomeResponse, error)
	ListLogs(ctx context.Context, req *dto.NotificationLogListRequest) ([]dto.NotificationLogResponse, int64, error)
	MarkRead(ctx context.Context, logID string) error
}

type notificationService struct {
	repo       *repository.Repository
	aggregator *Aggregator
	dispatcher *Dispatcher
	runner     *Runner
	renderer   *reportimage.Renderer
	academy    string
	logger     *zap.Logger
}

// NewNotificationService 생성
func NewNotificationService(
	cfg *config.Config,
	repo *repository.Repository,
	aggregator *Aggregator,
	dispatcher *Dispatcher,
	runner *Runner,
	renderer *reportimage.Renderer,
	logger *zap.Logger,
) NotificationService {
	return &notificationService{
		repo:       repo,
		aggregator: aggregator,
		dispatcher: dispatcher,
		runner:     runner,
		renderer:   renderer,
		academy:    cfg.Report.AcademyName,
		logger:     logger,
	}
}

// ────────────────────── Preview ──────────────────────

func (s *notificationService) Preview(ctx context.Context, req *dto.PreviewRequest) (*dto.PreviewResponse, error) {
	student, err := s.getStudent(ctx, req.StudentID)
	if err != nil {
		return nil, err
	}

	include := toContentFlags(req.Include)
	if !include.Any() && strings.TrimSpace(req.AdditionalText) == "" {
		return nil, ErrNoContentSelected
	}
	period := model.Period{Month: req.Period.Month, Week: req.Period.Week}

	rc, err := s.aggregator.NewRunContext(ctx, period, include, model.ExamScope(req.ExamScope))
	if err != nil {
		return nil, err
	}
	facts, err := s.aggregator.Aggregate(ctx, rc, student)
	if err != nil {
		return nil, err
	}

	target := model.RecipientTarget(req.RecipientTarget)
	if target == "" {
		target = model.TargetBoth
	}
	return &dto.PreviewResponse{
		StudentID:   student.StudentID,
		StudentName: student.Name,
		Content:     Compile(student, facts, include, req.AdditionalText),
		Recipients:  toRecipientDTOs(ResolveRecipients(student, target)),
	}, nil
}

// ────────────────────── Batch ──────────────────────

func (s *notificationService) SendBatch(ctx context.Context, req *dto.BatchSendRequest) (*dto.RunStartedResponse, error) {
	cfg := RunConfig{
		Period:             model.Period{Month: req.Period.Month, Week: req.Period.Week},
		TargetGrade:        req.TargetGrade,
		StudentIDs:         req.StudentIDs,
		ExcludedStudentIDs: req.ExcludedStudentIDs,
		Include:            toContentFlags(req.Include),
		ExamScope:          model.ExamScope(req.ExamScope),
		RecipientTarget:    model.RecipientTarget(req.RecipientTarget),
		Channel:            model.Channel(req.Channel),
		SenderType:         model.SenderType(req.SenderType),
		AdditionalText:     req.AdditionalText,
	}
	if req.ImageBase64 != "" {
		img, err := decodeImage(req.ImageBase64)
		if err != nil {
			return nil, err
		}
		cfg.Image = img
	}
	return s.StartRun(ctx, cfg)
}

func (s *notificationService) StartRun(ctx context.Context, cfg RunConfig) (*dto.RunStartedResponse, error) {
	cfg = cfg.withDefaults()
	msgs, err := s.prepare(ctx, cfg)
	if err != nil {
		return nil, err
	}
	runID, total := s.runner.Start(ctx, msgs, s.batchOptions(cfg))
	return &dto.RunStartedResponse{RunID: runID, Total: total}, nil
}

func (s *notificationService) Run(ctx context.Context, cfg RunConfig) (*DispatchSummary, error) {
	cfg = cfg.withDefaults()
	msgs, err := s.prepare(ctx, cfg)
	if err != nil {
		return nil, err
	}
	return s.runner.RunSync(ctx, msgs, s.batchOptions(cfg)), nil
}

func (s *notificationService) batchOptions(cfg RunConfig) DispatchOptions {
	return DispatchOptions{
		Kind:            model.KindNotice,
		Channel:         cfg.Channel,
		SenderType:      cfg.SenderType,
		RecipientTarget: cfg.RecipientTarget,
		Title:           s.noticeTitle(),
		IsBatch:         true,
	}
}

// prepare 대상 학생마다 본문과 수신자를 만든다. 발송은 하지 않는다.
func (s *notificationService) prepare(ctx context.Context, cfg RunConfig) ([]*PreparedMessage, error) {
	if err := validateRunConfig(cfg); err != nil {
		return nil, err
	}

	students, err := s.repo.Student.List(ctx, repository.StudentFilter{
		Grade: cfg.TargetGrade,
		IDs:   cfg.StudentIDs,
	})
	if err != nil {
		s.logger.Error("학생 목록 조회 실패", zap.Error(err))
		return nil, err
	}
	students = ApplyExclusion(students, cfg.ExcludedStudentIDs)
	if len(students) == 0 {
		return nil, ErrNoRecipientsSelected
	}

	rc, err := s.aggregator.NewRunContext(ctx, cfg.Period, cfg.Include, cfg.ExamScope)
	if err != nil {
		return nil, err
	}

	msgs := make([]*PreparedMessage, 0, len(students))
	for i := range students {
		student := &students[i]
		facts, err := s.aggregator.Aggregate(ctx, rc, student)
		if err != nil {
			return nil, err
		}
		msg := &PreparedMessage{
			StudentID:   student.StudentID,
			StudentName: student.Name,
			Content:     Compile(student, facts, cfg.Include, cfg.AdditionalText),
			Recipients:  ResolveRecipients(student, cfg.RecipientTarget),
			Period:      cfg.Period,
			Include:     cfg.Include,
		}
		if cfg.Channel == model.ChannelMMS {
			img, err := s.imageFor(cfg.Image, msg.Content)
			if err != nil {
				return nil, err
			}
			msg.Image = img
		}
		msgs = append(msgs, msg)
	}
	return msgs, nil
}

// imageFor 업로드 이미지가 없으면 본문을 카드로 그린다
func (s *notificationService) imageFor(uploaded []byte, content string) ([]byte, error) {
	if len(uploaded) > 0 {
		return uploaded, nil
	}
	if s.renderer == nil {
		return nil, ErrMissingImage
	}
	img, err := s.renderer.RenderNotice(s.noticeTitle(), content)
	if err != nil {
		s.logger.Error("알림장 이미지 생성 실패", zap.Error(err))
		return nil, err
	}
	return img, nil
}

func (s *notificationService) noticeTitle() string {
	return fmt.Sprintf("[%s] 알림장", s.academy)
}

func (s *notificationService) GetProgress(ctx context.Context, runID string) (*dto.ProgressResponse, error) {
	p, err := s.runner.Progress(ctx, runID)
	if err != nil {
		return nil, err
	}
	return &dto.ProgressResponse{
		RunID:            p.RunID,
		Current:          p.Current,
		Total:            p.Total,
		Sent:             p.Sent,
		Failed:           p.Failed,
		RecipientSuccess: p.RecipientSuccess,
		RecipientFailure: p.RecipientFailure,
		Done:             p.Done,
		UpdatedAt:        p.UpdatedAt.Format(time.RFC3339),
	}, nil
}

// ────────────────────── Direct ──────────────────────

func (s *notificationService) SendDirect(ctx context.Context, req *dto.DirectSendRequest) (*dto.MessageOutcomeResponse, error) {
	recipients := directRecipients(req.Receivers)
	if len(recipients) == 0 {
		return nil, ErrNoRecipientsSelected
	}
	if strings.TrimSpace(req.Message) == "" {
		return nil, ErrNoContentSelected
	}

	opts := DispatchOptions{
		Kind:       model.KindDirect,
		Channel:    model.ChannelSMS,
		SenderType: senderOrDefault(req.SenderType),
	}
	msg := &PreparedMessage{Content: req.Message, Recipients: recipients}
	if req.ImageBase64 != "" {
		img, err := decodeImage(req.ImageBase64)
		if err != nil {
			return nil, err
		}
		msg.Image = img
		opts.Channel = model.ChannelMMS
	}

	outcome := s.dispatcher.SendDirect(context.WithoutCancel(ctx), msg, opts)
	return toOutcomeDTO(outcome), nil
}

// ────────────────────── Absence ──────────────────────

func (s *notificationService) NotifyAbsence(ctx context.Context, req *dto.AbsenceNoticeRequest) (*dto.MessageOutcomeResponse, error) {
	student, err := s.getStudent(ctx, req.StudentID)
	if err != nil {
		return nil, err
	}
	date, err := time.Parse("2006-01-02", req.Date)
	if err != nil {
		return nil, ErrInvalidDate
	}

	target := model.RecipientTarget(req.RecipientTarget)
	if target == "" {
		target = model.TargetParent
	}

	msg := &PreparedMessage{
		StudentID:   student.StudentID,
		StudentName: student.Name,
		Content:     AbsenceText(s.academy, student.Name, date),
		Recipients:  ResolveRecipients(student, target),
		Period:      model.PeriodOf(date),
	}
	outcome := s.dispatcher.SendDirect(context.WithoutCancel(ctx), msg, DispatchOptions{
		Kind:            model.KindAbsence,
		Channel:         model.ChannelSMS,
		SenderType:      senderOrDefault(req.SenderType),
		RecipientTarget: target,
	})
	return toOutcomeDTO(outcome), nil
}

// AbsenceText 결석 안내 문구
func AbsenceText(academy, name string, date time.Time) string {
	return fmt.Sprintf("[%s] %s 학생이 %d월 %d일 수업에 결석하였습니다.", academy, name, int(date.Month()), date.Day())
}

// ────────────────────── Logs ──────────────────────

func (s *notificationService) ListLogs(ctx context.Context, req *dto.NotificationLogListRequest) ([]dto.NotificationLogResponse, int64, error) {
	logs, total, err := s.repo.NotificationLog.List(ctx, repository.NotificationLogFilter{
		StudentID: req.StudentID,
		RunID:     req.RunID,
		Kind:      model.NotificationKind(req.Kind),
		Month:     req.Month,
		Week:      req.Week,
		IsBatch:   req.IsBatch,
		Offset:    req.GetOffset(),
		Limit:     req.GetPageSize(),
	})
	if err != nil {
		s.logger.Error("발송 기록 조회 실패", zap.Error(err))
		return nil, 0, err
	}

	out := make([]dto.NotificationLogResponse, 0, len(logs))
	for i := range logs {
		out = append(out, toLogDTO(&logs[i]))
	}
	return out, total, nil
}

func (s *notificationService) MarkRead(ctx context.Context, logID string) error {
	if err := s.repo.NotificationLog.MarkRead(ctx, logID); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return ErrLogNotFound
		}
		s.logger.Error("읽음 표시 실패", zap.String("log_id", logID), zap.Error(err))
		return err
	}
	return nil
}

// ── 공통 ──

func (s *notificationService) getStudent(ctx context.Context, id string) (*model.Student, error) {
	return findStudent(ctx, s.repo, s.logger, id)
}

func findStudent(ctx context.Context, repo *repository.Repository, logger *zap.Logger, id string) (*model.Student, error) {
	student, err := repo.Student.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrStudentNotFound
		}
		logger.Error("학생 조회 실패", zap.String("student_id", id), zap.Error(err))
		return nil, err
	}
	return student, nil
}

func senderOrDefault(v string) model.SenderType {
	if v == "" {
		return model.SenderPersonal
	}
	return model.SenderType(v)
}

// decodeImage data URL 접두어가 있으면 떼고 해석한다
func decodeImage(encoded string) ([]byte, error) {
	if i := strings.Index(encoded, ","); i >= 0 && strings.HasPrefix(encoded, "data:") {
		encoded = encoded[i+1:]
	}
	img, err := base64.StdEncoding.DecodeString(encoded)
	if err != nil || len(img) == 0 {
		return nil, ErrInvalidImage
	}
	return img, nil
}

func toContentFlags(f dto.ContentFlagsDTO) model.ContentFlags {
	return model.ContentFlags{
		Curriculum: f.Curriculum,
		Attendance: f.Attendance,
		Exam:       f.Exam,
		Homework:   f.Homework,
		Memo:       f.Memo,
	}
}

func toContentFlagsDTO(f model.ContentFlags) dto.ContentFlagsDTO {
	return dto.ContentFlagsDTO{
		Curriculum: f.Curriculum,
		Attendance: f.Attendance,
		Exam:       f.Exam,
		Homework:   f.Homework,
		Memo:       f.Memo,
	}
}

func toRecipientDTOs(rs []Recipient) []dto.RecipientDTO {
	out := make([]dto.RecipientDTO, 0, len(rs))
	for _, r := range rs {
		out = append(out, dto.RecipientDTO{Role: string(r.Role), Phone: r.Phone})
	}
	return out
}

func toOutcomeDTO(o MessageOutcome) *dto.MessageOutcomeResponse {
	resp := &dto.MessageOutcomeResponse{
		StudentID:   o.StudentID,
		StudentName: o.StudentName,
		Status:      string(o.Status),
		Recipients:  make([]dto.RecipientOutcomeResponse, 0, len(o.Recipients)),
	}
	for _, r := range o.Recipients {
		resp.Recipients = append(resp.Recipients, dto.RecipientOutcomeResponse{
			Role:  string(r.Role),
			Phone: r.Phone,
			OK:    r.OK,
			Error: r.Error,
		})
	}
	return resp
}

// ToSummaryDTO 실행 결과 응답 변환
func ToSummaryDTO(s *DispatchSummary) *dto.DispatchSummaryResponse {
	resp := &dto.DispatchSummaryResponse{
		RunID:            s.RunID,
		Total:            s.Total,
		Sent:             s.Sent,
		Failed:           s.Failed,
		RecipientSuccess: s.RecipientSuccess,
		RecipientFailure: s.RecipientFailure,
		Messages:         make([]dto.MessageOutcomeResponse, 0, len(s.Messages)),
	}
	for _, m := range s.Messages {
		resp.Messages = append(resp.Messages, *toOutcomeDTO(m))
	}
	return resp
}

func toLogDTO(l *model.NotificationLog) dto.NotificationLogResponse {
	resp := dto.NotificationLogResponse{
		ID:              l.LogID,
		Kind:            string(l.Kind),
		StudentName:     l.StudentName,
		Content:         l.Content,
		Include:         toContentFlagsDTO(l.Include),
		Month:           l.Month,
		Week:            l.Week,
		Channel:         string(l.Channel),
		RecipientTarget: string(l.RecipientTarget),
		RecipientCount:  l.RecipientCount,
		SuccessCount:    l.SuccessCount,
		FailureCount:    l.FailureCount,
		Status:          string(l.Status),
		IsRead:          l.IsRead,
		IsBatch:         l.IsBatch,
		CreatedAt:       l.CreatedAt.Format(time.RFC3339),
	}
	if l.RunID != nil {
		resp.RunID = *l.RunID
	}
	if l.StudentID != nil {
		resp.StudentID = *l.StudentID
	}
	return resp
}
