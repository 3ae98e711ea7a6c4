package redis

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strconv"
	"time"

	goredis "github.com/redis/go-redis/v9"
	"go.uber.org/zap"

	"github.com/otee21c/learning-system-sub000/config"
)

// ErrNotFound 키가 없음
var ErrNotFound = errors.New("redis: 키가 없습니다")

// Client Redis 래퍼
// 토큰 블랙리스트, 요청 속도 제한, 발송 진행률 저장에 쓴다
type Client struct {
	rdb    *goredis.Client
	logger *zap.Logger
}

// NewClient 연결 후 Ping 으로 확인한다
func NewClient(cfg *config.RedisConfig, logger *zap.Logger) (*Client, error) {
	rdb := goredis.NewClient(&goredis.Options{
		Addr:     cfg.Addr,
		Password: cfg.Password,
		DB:       cfg.DB,
	})

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := rdb.Ping(ctx).Err(); err != nil {
		return nil, fmt.Errorf("Redis 연결 실패: %w", err)
	}

	logger.Info("Redis 연결 성공", zap.String("addr", cfg.Addr))

	return &Client{rdb: rdb, logger: logger}, nil
}

// NewFromClient 이미 만든 go-redis 클라이언트를 감싼다
func NewFromClient(rdb *goredis.Client, logger *zap.Logger) *Client {
	return &Client{rdb: rdb, logger: logger}
}

// ── 토큰 블랙리스트 ──

const blacklistPrefix = "token:blacklist:"

// IsBlacklisted 외부 인증 시스템이 폐기한 JWT ID 인지
func (c *Client) IsBlacklisted(ctx context.Context, jti string) (bool, error) {
	n, err := c.rdb.Exists(ctx, blacklistPrefix+jti).Result()
	if err != nil {
		return false, err
	}
	return n > 0, nil
}

// ── 속도 제한 ──

// CheckRateLimit 슬라이딩 윈도 방식. 허용되면 true.
func (c *Client) CheckRateLimit(ctx context.Context, key string, limit int, window time.Duration) (bool, error) {
	now := time.Now()
	member := strconv.FormatInt(now.UnixNano(), 10)
	floor := strconv.FormatInt(now.Add(-window).UnixNano(), 10)

	pipe := c.rdb.TxPipeline()
	pipe.ZRemRangeByScore(ctx, key, "0", floor)
	card := pipe.ZCard(ctx, key)
	pipe.ZAdd(ctx, key, goredis.Z{Score: float64(now.UnixNano()), Member: member})
	pipe.Expire(ctx, key, window)
	if _, err := pipe.Exec(ctx); err != nil {
		return false, err
	}
	return card.Val() < int64(limit), nil
}

// ── 발송 진행률 ──

const progressPrefix = "dispatch:progress:"

// SetJSON 값을 JSON 으로 저장
func (c *Client) SetJSON(ctx context.Context, key string, v any, ttl time.Duration) error {
	raw, err := json.Marshal(v)
	if err != nil {
		return err
	}
	return c.rdb.Set(ctx, key, raw, ttl).Err()
}

// GetJSON 저장된 JSON 을 v 로 읽는다. 없으면 ErrNotFound.
func (c *Client) GetJSON(ctx context.Context, key string, v any) error {
	raw, err := c.rdb.Get(ctx, key).Bytes()
	if err != nil {
		if errors.Is(err, goredis.Nil) {
			return ErrNotFound
		}
		return err
	}
	return json.Unmarshal(raw, v)
}

// ProgressKey 발송 진행률 키
func ProgressKey(runID string) string {
	return progressPrefix + runID
}

// Close 연결 종료
func (c *Client) Close() error {
	return c.rdb.Close()
}
