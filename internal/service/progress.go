package service

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/otee21c/learning-system-sub000/pkg/redis"
)

// ErrRunNotFound 진행률이 없거나 만료됨
var ErrRunNotFound = errors.New("발송 실행을 찾을 수 없습니다")

// Progress 일괄 발송 진행률. Sent/Failed 는 메시지, Recipient* 는 수신자 단위다.
type Progress struct {
	RunID            string    `json:"run_id"`
	Current          int       `json:"current"`
	Total            int       `json:"total"`
	Sent             int       `json:"sent"`
	Failed           int       `json:"failed"`
	RecipientSuccess int       `json:"recipient_success"`
	RecipientFailure int       `json:"recipient_failure"`
	Done             bool      `json:"done"`
	UpdatedAt        time.Time `json:"updated_at"`
}

// ProgressTracker 진행률 저장소
type ProgressTracker interface {
	Save(ctx context.Context, p Progress) error
	Get(ctx context.Context, runID string) (*Progress, error)
}

// NewProgressTracker Redis 가 없으면 메모리 저장소를 쓴다
func NewProgressTracker(rdb *redis.Client, ttl time.Duration, logger *zap.Logger) ProgressTracker {
	if rdb == nil {
		logger.Warn("Redis 미사용: 발송 진행률을 메모리에 보관합니다")
		return newMemoryTracker(ttl)
	}
	return &redisTracker{rdb: rdb, ttl: ttl}
}

// ── Redis ──

type redisTracker struct {
	rdb *redis.Client
	ttl time.Duration
}

func (t *redisTracker) Save(ctx context.Context, p Progress) error {
	return t.rdb.SetJSON(ctx, redis.ProgressKey(p.RunID), p, t.ttl)
}

func (t *redisTracker) Get(ctx context.Context, runID string) (*Progress, error) {
	var p Progress
	if err := t.rdb.GetJSON(ctx, redis.ProgressKey(runID), &p); err != nil {
		if errors.Is(err, redis.ErrNotFound) {
			return nil, ErrRunNotFound
		}
		return nil, err
	}
	return &p, nil
}

// ── 메모리 ──

type memoryTracker struct {
	mu    sync.RWMutex
	ttl   time.Duration
	items map[string]Progress
}

func newMemoryTracker(ttl time.Duration) *memoryTracker {
	return &memoryTracker{ttl: ttl, items: make(map[string]Progress)}
}

func (t *memoryTracker) Save(_ context.Context, p Progress) error {
	t.mu.Lock()
	defer t.mu.Unlock()

	// 만료된 항목 정리
	if t.ttl > 0 {
		for id, item := range t.items {
			if time.Since(item.UpdatedAt) > t.ttl {
				delete(t.items, id)
			}
		}
	}
	t.items[p.RunID] = p
	return nil
}

func (t *memoryTracker) Get(_ context.Context, runID string) (*Progress, error) {
	t.mu.RLock()
	defer t.mu.RUnlock()

	p, ok := t.items[runID]
	if !ok || (t.ttl > 0 && time.Since(p.UpdatedAt) > t.ttl) {
		return nil, ErrRunNotFound
	}
	return &p, nil
}

// ── 백그라운드 실행 ──

// Runner 준비된 메시지를 요청과 분리된 고루틴에서 보낸다
// 실행마다 고루틴 하나이며 실행 안에서는 순차 발송이다
type Runner struct {
	dispatcher *Dispatcher
	tracker    ProgressTracker
	logger     *zap.Logger
	wg         sync.WaitGroup
}

// NewRunner 생성
func NewRunner(dispatcher *Dispatcher, tracker ProgressTracker, logger *zap.Logger) *Runner {
	return &Runner{dispatcher: dispatcher, tracker: tracker, logger: logger}
}

// Start 실행 ID 를 발급하고 발송을 시작한다
// 요청이 끊겨도 시작된 발송은 끝까지 진행한다
func (r *Runner) Start(ctx context.Context, msgs []*PreparedMessage, opts DispatchOptions) (string, int) {
	opts.RunID = uuid.NewString()
	r.save(ctx, Progress{RunID: opts.RunID, Total: len(msgs), Done: len(msgs) == 0, UpdatedAt: time.Now()})

	runCtx := context.WithoutCancel(ctx)
	opts.OnProgress = func(p Progress) { r.save(runCtx, p) }

	r.wg.Add(1)
	go func() {
		defer r.wg.Done()
		r.dispatcher.Run(runCtx, msgs, opts)
	}()
	return opts.RunID, len(msgs)
}

// RunSync 현재 고루틴에서 끝까지 보낸다
func (r *Runner) RunSync(ctx context.Context, msgs []*PreparedMessage, opts DispatchOptions) *DispatchSummary {
	opts.RunID = uuid.NewString()
	opts.OnProgress = func(p Progress) { r.save(ctx, p) }
	return r.dispatcher.Run(ctx, msgs, opts)
}

// Progress 진행률 조회
func (r *Runner) Progress(ctx context.Context, runID string) (*Progress, error) {
	return r.tracker.Get(ctx, runID)
}

// Wait 진행 중인 실행이 모두 끝나거나 ctx 가 끝날 때까지 기다린다
func (r *Runner) Wait(ctx context.Context) error {
	done := make(chan struct{})
	go func() {
		r.wg.Wait()
		close(done)
	}()
	select {
	case <-done:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

func (r *Runner) save(ctx context.Context, p Progress) {
	if err := r.tracker.Save(ctx, p); err != nil {
		r.logger.Warn("진행률 저장 실패", zap.String("run_id", p.RunID), zap.Error(err))
	}
}
