package service

import (
	"context"
	"errors"
	"time"

	"go.uber.org/zap"

	"github.com/otee21c/learning-system-sub000/internal/model"
	"github.com/otee21c/learning-system-sub000/internal/repository"
	"github.com/otee21c/learning-system-sub000/pkg/sms"
)

// ── 순차 발송 엔진 ──
//
// 메시지는 호출자가 준 순서대로 한 건씩 보낸다.
// 메시지마다 모든 수신자에게 시도하고 발송 기록 한 건을 남긴다.
// 메시지 사이에는 고정 간격만큼 쉬며, 재시도나 중단은 없다.

// PreparedMessage 발송 직전 메시지
type PreparedMessage struct {
	StudentID   string
	StudentName string
	Content     string
	Recipients  []Recipient
	Image       []byte
	Period      model.Period
	Include     model.ContentFlags

	status  model.MessageStatus
	results []RecipientResult
}

// Status 발송 상태. 보내기 전에는 pending.
func (m *PreparedMessage) Status() model.MessageStatus {
	if m.status == "" {
		return model.MessagePending
	}
	return m.status
}

// Results 수신자별 결과
func (m *PreparedMessage) Results() []RecipientResult {
	return m.results
}

// settle pending 에서 한 번만 바뀐다
func (m *PreparedMessage) settle(results []RecipientResult) {
	if m.Status() != model.MessagePending {
		return
	}
	m.results = results
	m.status = model.MessageSent
	for _, r := range results {
		if !r.OK() {
			m.status = model.MessageFailed
			break
		}
	}
}

// RecipientResult 수신자 한 명의 발송 결과
type RecipientResult struct {
	Recipient
	Err error
}

// OK 성공 여부
func (r RecipientResult) OK() bool { return r.Err == nil }

// DispatchOptions 실행 단위 설정
type DispatchOptions struct {
	RunID           string
	Kind            model.NotificationKind
	Channel         model.Channel
	SenderType      model.SenderType
	RecipientTarget model.RecipientTarget
	Title           string
	IsBatch         bool
	OnProgress      func(Progress)
}

// RecipientOutcome 수신자별 결과 요약
type RecipientOutcome struct {
	Role  model.RecipientRole
	Phone string
	OK    bool
	Error string
}

// MessageOutcome 메시지별 결과 요약
type MessageOutcome struct {
	StudentID   string
	StudentName string
	Status      model.MessageStatus
	Recipients  []RecipientOutcome
}

// DispatchSummary 실행 결과 집계. 실행은 실패하지 않고 항상 이 값을 돌려준다.
type DispatchSummary struct {
	RunID            string
	Total            int
	Sent             int
	Failed           int
	RecipientSuccess int
	RecipientFailure int
	Messages         []MessageOutcome
	StartedAt        time.Time
	FinishedAt       time.Time
}

// Sleeper 발송 간격 대기
type Sleeper func(ctx context.Context, d time.Duration)

func timerSleep(ctx context.Context, d time.Duration) {
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-t.C:
	case <-ctx.Done():
	}
}

// Dispatcher 문자 게이트웨이와 발송 기록 저장소를 묶는다
type Dispatcher struct {
	gateway sms.Client
	logs    repository.NotificationLogRepository
	pacing  time.Duration
	sleep   Sleeper
	logger  *zap.Logger
}

// NewDispatcher 생성
func NewDispatcher(gateway sms.Client, logs repository.NotificationLogRepository, pacing time.Duration, logger *zap.Logger) *Dispatcher {
	return &Dispatcher{
		gateway: gateway,
		logs:    logs,
		pacing:  pacing,
		sleep:   timerSleep,
		logger:  logger,
	}
}

// WithSleeper 대기 함수 교체
func (d *Dispatcher) WithSleeper(s Sleeper) *Dispatcher {
	d.sleep = s
	return d
}

// Pause 메시지 사이 간격만큼 대기
func (d *Dispatcher) Pause(ctx context.Context) {
	if d.pacing > 0 {
		d.sleep(ctx, d.pacing)
	}
}

// ═══════════════════════════════════════════════════════════
// Run 일괄 발송
// ═══════════════════════════════════════════════════════════

// Run msgs 를 순서대로 보낸다. 메시지 n 건이면 기록 n 건, 대기 n-1 회.
func (d *Dispatcher) Run(ctx context.Context, msgs []*PreparedMessage, opts DispatchOptions) *DispatchSummary {
	summary := &DispatchSummary{
		RunID:     opts.RunID,
		Total:     len(msgs),
		Messages:  make([]MessageOutcome, 0, len(msgs)),
		StartedAt: time.Now(),
	}

	for i, msg := range msgs {
		outcome := d.deliver(ctx, msg, opts)
		summary.add(outcome)

		if opts.OnProgress != nil {
			opts.OnProgress(Progress{
				RunID:            opts.RunID,
				Current:          i + 1,
				Total:            len(msgs),
				Sent:             summary.Sent,
				Failed:           summary.Failed,
				RecipientSuccess: summary.RecipientSuccess,
				RecipientFailure: summary.RecipientFailure,
				Done:             i == len(msgs)-1,
				UpdatedAt:        time.Now(),
			})
		}

		if i < len(msgs)-1 {
			d.Pause(ctx)
		}
	}

	summary.FinishedAt = time.Now()
	d.logger.Info("일괄 발송 완료",
		zap.String("run_id", opts.RunID),
		zap.String("kind", string(opts.Kind)),
		zap.Int("total", summary.Total),
		zap.Int("sent", summary.Sent),
		zap.Int("failed", summary.Failed),
		zap.Int("recipient_success", summary.RecipientSuccess),
		zap.Int("recipient_failure", summary.RecipientFailure),
		zap.Duration("elapsed", summary.FinishedAt.Sub(summary.StartedAt)),
	)
	return summary
}

// SendDirect 메시지 한 건. 진행률 보고 없이 is_batch=false 로 기록된다.
func (d *Dispatcher) SendDirect(ctx context.Context, msg *PreparedMessage, opts DispatchOptions) MessageOutcome {
	opts.IsBatch = false
	opts.OnProgress = nil
	return d.deliver(ctx, msg, opts)
}

// deliver 모든 수신자에게 시도한 뒤 결과와 함께 기록 한 건을 남긴다
func (d *Dispatcher) deliver(ctx context.Context, msg *PreparedMessage, opts DispatchOptions) MessageOutcome {
	results := make([]RecipientResult, 0, len(msg.Recipients))
	for _, r := range msg.Recipients {
		results = append(results, RecipientResult{Recipient: r, Err: d.sendOne(ctx, msg, r, opts)})
	}
	msg.settle(results)

	d.writeLog(ctx, msg, opts)

	outcome := MessageOutcome{
		StudentID:   msg.StudentID,
		StudentName: msg.StudentName,
		Status:      msg.Status(),
		Recipients:  make([]RecipientOutcome, 0, len(results)),
	}
	for _, r := range results {
		ro := RecipientOutcome{Role: r.Role, Phone: r.Phone, OK: r.OK()}
		if r.Err != nil {
			ro.Error = r.Err.Error()
		}
		outcome.Recipients = append(outcome.Recipients, ro)
	}
	return outcome
}

func (d *Dispatcher) sendOne(ctx context.Context, msg *PreparedMessage, r Recipient, opts DispatchOptions) error {
	out := sms.Message{
		Sender:   string(opts.SenderType),
		Receiver: r.Phone,
		Body:     msg.Content,
		Title:    opts.Title,
	}
	if opts.Channel == model.ChannelMMS {
		out.Image = msg.Image
	}

	res, err := d.gateway.Send(ctx, out)
	if err == nil && !res.OK() {
		err = errors.New("sms: 게이트웨이가 성공 코드를 돌려주지 않았습니다")
	}
	if err != nil {
		d.logger.Warn("수신자 발송 실패",
			zap.String("run_id", opts.RunID),
			zap.String("student_id", msg.StudentID),
			zap.String("role", string(r.Role)),
			zap.Error(err),
		)
	}
	return err
}

// writeLog 기록 실패는 로그만 남기고 발송을 계속한다
func (d *Dispatcher) writeLog(ctx context.Context, msg *PreparedMessage, opts DispatchOptions) {
	entry := &model.NotificationLog{
		Kind:            opts.Kind,
		StudentName:     msg.StudentName,
		Content:         msg.Content,
		Include:         msg.Include,
		Month:           msg.Period.Month,
		Week:            msg.Period.Week,
		Channel:         opts.Channel,
		RecipientTarget: opts.RecipientTarget,
		RecipientCount:  len(msg.results),
		Status:          msg.Status(),
		IsBatch:         opts.IsBatch,
	}
	if opts.RunID != "" {
		entry.RunID = &opts.RunID
	}
	if msg.StudentID != "" {
		id := msg.StudentID
		entry.StudentID = &id
	}
	for _, r := range msg.results {
		if r.OK() {
			entry.SuccessCount++
		} else {
			entry.FailureCount++
		}
	}

	if err := d.logs.Create(ctx, entry); err != nil {
		d.logger.Error("발송 기록 저장 실패",
			zap.String("run_id", opts.RunID),
			zap.String("student_id", msg.StudentID),
			zap.Error(err),
		)
	}
}

func (s *DispatchSummary) add(o MessageOutcome) {
	s.Messages = append(s.Messages, o)
	if o.Status == model.MessageSent {
		s.Sent++
	} else {
		s.Failed++
	}
	for _, r := range o.Recipients {
		if r.OK {
			s.RecipientSuccess++
		} else {
			s.RecipientFailure++
		}
	}
}
